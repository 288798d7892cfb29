package journal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/transcription"
)

// manualScheduler queues tasks until the test runs them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	mu        sync.Mutex
	delay     time.Duration
	fn        func()
	cancelled bool
	ran       bool
}

func (t *manualTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ran || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

func (t *manualTask) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.ran && !t.cancelled
}

func (s *manualScheduler) After(d time.Duration, fn func()) Handle {
	t := &manualTask{delay: d, fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t
}

// pending returns tasks that are neither run nor cancelled.
func (s *manualScheduler) pending() []*manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTask
	for _, t := range s.tasks {
		if t.live() {
			out = append(out, t)
		}
	}
	return out
}

// last returns the most recently scheduled task, live or not.
func (s *manualScheduler) last() *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

// runNext runs the oldest live task and reports whether there was one.
func (s *manualScheduler) runNext() bool {
	p := s.pending()
	if len(p) == 0 {
		return false
	}
	t := p[0]
	t.mu.Lock()
	t.ran = true
	t.mu.Unlock()
	t.fn()
	return true
}

// force runs a task even if it was cancelled, simulating a late delivery.
func (t *manualTask) force() { t.fn() }

type jobResult struct {
	job *transcription.Job
	err error
}

// fakeProvider replays scripted GetJob results per job id.
type fakeProvider struct {
	mu        sync.Mutex
	createErr []error
	creates   int
	gets      int
	results   map[string][]jobResult
	onGet     func(jobID string)
	onCreate  func()
	lastAudio []byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{results: make(map[string][]jobResult)}
}

func (f *fakeProvider) script(jobID string, rs ...jobResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[jobID] = append(f.results[jobID], rs...)
}

func (f *fakeProvider) Name() string                     { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) CreateJob(_ context.Context, req transcription.AudioRequest) (string, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.lastAudio = req.Audio
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("J%d", f.creates), nil
}

func (f *fakeProvider) GetJob(_ context.Context, id string) (*transcription.Job, error) {
	f.mu.Lock()
	f.gets++
	queue := f.results[id]
	var r jobResult
	if len(queue) > 0 {
		r = queue[0]
		f.results[id] = queue[1:]
	} else {
		r = jobResult{job: &transcription.Job{ID: id, Status: transcription.StatusProcessing}}
	}
	hook := f.onGet
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return r.job, r.err
}

func (f *fakeProvider) counts() (creates, gets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.gets
}

func status(id string, s transcription.Status, text string) jobResult {
	return jobResult{job: &transcription.Job{ID: id, Status: s, Text: text}}
}

type harness struct {
	ctrl    *Controller
	prov    *fakeProvider
	sched   *manualScheduler
	archive *provider.MemoryStore[Archive]

	mu     sync.Mutex
	events []Event
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		prov:    newFakeProvider(),
		sched:   &manualScheduler{},
		archive: provider.NewMemoryStore[Archive](),
	}
	clock := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	h.ctrl = NewController(h.prov, cfg,
		WithScheduler(h.sched),
		WithLogger(logger.Nop()),
		WithArchive(h.archive),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		WithObserver(func(ev Event) {
			h.mu.Lock()
			h.events = append(h.events, ev)
			h.mu.Unlock()
		}),
	)
	return h
}

func (h *harness) sawState(id string, s State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range h.events {
		if ev.RecordingID == id && !ev.Deleted && ev.To == s {
			return true
		}
	}
	return false
}

func (h *harness) mustGet(t *testing.T, id string) Recording {
	t.Helper()
	rec, err := h.ctrl.Get(id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	if err := rec.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken for %s: %v", id, err)
	}
	return rec
}
