package journal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/transcription"
)

// Event reports a state change. Deleted events carry the last state in
// both From and To.
type Event struct {
	RecordingID string
	UserID      string
	JobID       string
	From        State
	To          State
	Err         *Error
	Deleted     bool
}

// Observer receives events synchronously, in order per recording.
type Observer func(Event)

// Option customizes a Controller.
type Option func(*Controller)

func WithStore(s *Store) Option                   { return func(c *Controller) { c.store = s } }
func WithScheduler(s Scheduler) Option            { return func(c *Controller) { c.sched = s } }
func WithLogger(l *logger.Logger) Option          { return func(c *Controller) { c.log = l } }
func WithMetrics(m *observability.Metrics) Option { return func(c *Controller) { c.metrics = m } }
func WithObserver(o Observer) Option              { return func(c *Controller) { c.observers = append(c.observers, o) } }
func WithClock(now func() time.Time) Option       { return func(c *Controller) { c.now = now } }

// WithArchive persists completed transcripts per user.
func WithArchive(store provider.ContextStore[Archive]) Option {
	return func(c *Controller) { c.archive = store }
}

// Controller drives recordings through remote transcription. Each
// recording advances independently; a failure in one never touches
// another.
type Controller struct {
	provider  transcription.Provider
	cfg       Config
	store     *Store
	sched     Scheduler
	log       *logger.Logger
	metrics   *observability.Metrics
	observers []Observer
	now       func() time.Time

	archive   provider.ContextStore[Archive]
	archiveMu sync.Mutex

	closed atomic.Bool
}

// NewController creates a Controller submitting to p.
func NewController(p transcription.Provider, cfg Config, opts ...Option) *Controller {
	cfg.ApplyDefaults()
	c := &Controller{
		provider: p,
		cfg:      cfg,
		sched:    TimerScheduler{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.log == nil {
		c.log = logger.Get("journal")
	}
	return c
}

// CaptureOption adjusts a recording at capture.
type CaptureOption func(*Recording)

// WithRecordingID overrides the generated id.
func WithRecordingID(id string) CaptureOption { return func(r *Recording) { r.ID = id } }

// WithContentType sets the audio MIME type. The default is audio/webm.
func WithContentType(ct string) CaptureOption { return func(r *Recording) { r.ContentType = ct } }

// Capture stores a finished clip as NotSubmitted. Empty audio is accepted
// here and rejected by Submit.
func (c *Controller) Capture(userID string, audio []byte, opts ...CaptureOption) (Recording, error) {
	rec := Recording{
		ID:          uuid.NewString(),
		UserID:      userID,
		Audio:       audio,
		ContentType: "audio/webm",
		CreatedAt:   c.now(),
		State:       NotSubmitted,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	rec, err := c.store.Create(rec)
	if err != nil {
		return Recording{}, err
	}
	c.log.Debug("recording captured", logger.Fields(
		logger.FieldRecordingID, rec.ID,
		logger.FieldUserID, userID,
		"bytes", len(audio),
	))
	return rec, nil
}

// Get returns a snapshot of the recording.
func (c *Controller) Get(id string) (Recording, error) {
	rec, ok := c.store.Get(id)
	if !ok {
		return Recording{}, apperrors.NotFound("recording", id)
	}
	return rec, nil
}

// List returns a user's recordings, newest first.
func (c *Controller) List(userID string) []Recording { return c.store.List(userID) }

// Submit creates the remote job for a NotSubmitted recording and starts
// polling. It makes exactly one CreateJob call and never retries; on
// failure the recording is Failed and the returned error is a *Error of
// KindSubmission. Empty audio fails without a network call.
func (c *Controller) Submit(ctx context.Context, id string) error {
	if c.closed.Load() {
		return apperrors.ServiceUnavailable("journal")
	}
	var (
		gen     uint64
		req     transcription.AudioRequest
		callCtx context.Context
		cancel  context.CancelFunc
		failure *Error
		reject  error
		events  []Event
	)
	found := c.store.with(id, 0, func(sl *slot) {
		if sl.rec.State != NotSubmitted {
			reject = apperrors.Conflict(fmt.Sprintf("recording %s is %s", id, sl.rec.State))
			return
		}
		if len(sl.rec.Audio) == 0 {
			failure = &Error{Kind: KindSubmission, RecordingID: id, Message: "audio is empty"}
			events = append(events, c.transition(sl, Failed, failure))
			return
		}
		gen = c.store.nextGen(sl)
		sl.done = make(chan struct{})
		callCtx, cancel = context.WithCancel(ctx)
		sl.cancel = cancel
		req = transcription.AudioRequest{
			Audio:       sl.rec.Audio,
			FileName:    sl.rec.FileName(),
			ContentType: sl.rec.ContentType,
		}
		events = append(events, c.transition(sl, Submitting, nil))
	})
	if !found {
		return apperrors.NotFound("recording", id)
	}
	c.emit(events)
	if reject != nil {
		return reject
	}
	if failure != nil {
		c.log.Warn("submission rejected", logger.Fields(logger.FieldRecordingID, id, logger.FieldError, failure.Message))
		return failure
	}

	jobID, err := c.provider.CreateJob(callCtx, req)
	cancel()

	events = nil
	var result error
	applied := c.store.with(id, gen, func(sl *slot) {
		sl.cancel = nil
		if sl.rec.State != Submitting {
			result = ErrDeleted
			if sl.rec.Err != nil {
				result = sl.rec.Err
			}
			return
		}
		if err != nil {
			fe := &Error{Kind: KindSubmission, RecordingID: id, Message: "could not create transcription job", Err: err}
			events = append(events, c.transition(sl, Failed, fe))
			sl.finish()
			result = fe
			return
		}
		sl.rec.JobID = jobID
		sl.rec.Polls = 0
		events = append(events, c.transition(sl, Pending, nil))
		c.schedule(sl, id, gen, c.cfg.FirstPollDelay)
	})
	if !applied {
		c.log.Debug("submission result discarded", logger.RecordingFields(id, jobID))
		return ErrDeleted
	}
	c.emit(events)

	fields := logger.RecordingFields(id, jobID)
	if result != nil {
		fields[logger.FieldError] = result.Error()
		c.log.Warn("submission failed", fields)
		return result
	}
	c.log.Info("transcription job created", fields)
	return nil
}

func (c *Controller) schedule(sl *slot, id string, gen uint64, d time.Duration) {
	if c.closed.Load() {
		return
	}
	sl.handle = c.sched.After(d, func() { c.poll(id, gen) })
}

// poll makes one status query for the chain gen. Results for a deleted
// recording, or one whose chain was replaced, are dropped.
func (c *Controller) poll(id string, gen uint64) {
	var (
		ready   bool
		jobID   string
		attempt int
		ctx     context.Context
		cancel  context.CancelFunc
	)
	c.store.with(id, gen, func(sl *slot) {
		if sl.rec.State != Pending {
			return
		}
		sl.handle = nil
		sl.rec.Polls++
		attempt = sl.rec.Polls
		jobID = sl.rec.JobID
		ctx, cancel = context.WithTimeout(context.Background(), c.cfg.PollTimeout)
		sl.cancel = cancel
		ready = true
	})
	if !ready {
		return
	}

	job, err := c.provider.GetJob(ctx, jobID)
	cancel()
	if err == nil && job == nil {
		err = fmt.Errorf("backend returned no job for %s", jobID)
	}

	var (
		events    []Event
		completed *Recording
		outcome   string
	)
	applied := c.store.with(id, gen, func(sl *slot) {
		sl.cancel = nil
		if sl.rec.State != Pending {
			return
		}
		switch {
		case err != nil:
			outcome = "transport_error"
			events = c.continueOrTimeout(sl, id, gen, attempt)
		case job.Status.Phase() == transcription.PhaseInProgress:
			outcome = "in_progress"
			events = c.continueOrTimeout(sl, id, gen, attempt)
		case job.Status.Phase() == transcription.PhaseCompleted:
			outcome = "completed"
			text := job.Text
			sl.rec.Transcript = &text
			events = append(events, c.transition(sl, Completed, nil))
			sl.finish()
			snap := sl.rec.clone()
			completed = &snap
		default:
			outcome = "failed"
			msg := job.Error
			if msg == "" {
				msg = fmt.Sprintf("job ended with status %q", job.Status)
			}
			failure := &Error{Kind: KindJobFailed, RecordingID: id, JobID: jobID, Message: msg}
			events = append(events, c.transition(sl, Failed, failure))
			sl.finish()
		}
	})

	fields := logger.RecordingFields(id, jobID)
	fields[logger.FieldAttempt] = attempt
	if !applied || outcome == "" {
		c.log.Debug("poll result discarded", fields)
		return
	}
	c.metrics.RecordPoll(context.Background(), outcome)
	if err != nil {
		transport := &Error{Kind: KindPollTransport, RecordingID: id, JobID: jobID, Message: "status query failed", Err: err}
		fields[logger.FieldError] = transport.Error()
		c.log.Warn("poll failed, will retry", fields)
	}
	c.emit(events)
	if completed != nil {
		c.log.Info("transcription completed", fields)
		c.archiveTranscript(*completed)
	}
}

func (c *Controller) continueOrTimeout(sl *slot, id string, gen uint64, attempt int) []Event {
	if attempt >= c.cfg.MaxPolls {
		failure := &Error{
			Kind:        KindPollTimeout,
			RecordingID: id,
			JobID:       sl.rec.JobID,
			Message:     fmt.Sprintf("no result after %d polls", attempt),
		}
		ev := c.transition(sl, Failed, failure)
		sl.finish()
		return []Event{ev}
	}
	c.schedule(sl, id, gen, c.cfg.PollInterval)
	return nil
}

// Delete removes the recording and abandons its poll chain. Responses that
// arrive later are discarded.
func (c *Controller) Delete(id string) error {
	rec, ok := c.store.Delete(id)
	if !ok {
		return apperrors.NotFound("recording", id)
	}
	c.log.Info("recording deleted", logger.RecordingFields(id, rec.JobID))
	c.emit([]Event{{
		RecordingID: id,
		UserID:      rec.UserID,
		JobID:       rec.JobID,
		From:        rec.State,
		To:          rec.State,
		Deleted:     true,
	}})
	return nil
}

// Retry moves a Failed recording back to NotSubmitted, clearing its job
// id and error, so it can be submitted again.
func (c *Controller) Retry(id string) error {
	var (
		reject error
		events []Event
	)
	found := c.store.with(id, 0, func(sl *slot) {
		if sl.rec.State != Failed {
			reject = apperrors.Conflict(fmt.Sprintf("recording %s is %s, only failed recordings can be retried", id, sl.rec.State))
			return
		}
		c.store.nextGen(sl)
		sl.rec.JobID = ""
		sl.rec.Transcript = nil
		sl.rec.Polls = 0
		events = append(events, c.transition(sl, NotSubmitted, nil))
	})
	if !found {
		return apperrors.NotFound("recording", id)
	}
	if reject != nil {
		return reject
	}
	c.emit(events)
	return nil
}

// Await blocks until the recording's current chain ends or ctx is done.
// A NotSubmitted recording is returned immediately. A Failed recording is
// returned with its *Error.
func (c *Controller) Await(ctx context.Context, id string) (Recording, error) {
	for first := true; ; first = false {
		var (
			snap Recording
			done chan struct{}
		)
		found := c.store.with(id, 0, func(sl *slot) {
			snap = sl.rec.clone()
			done = sl.done
		})
		switch {
		case !found && first:
			return Recording{}, apperrors.NotFound("recording", id)
		case !found:
			return Recording{}, ErrDeleted
		case done == nil:
			if snap.Err != nil {
				return snap, snap.Err
			}
			return snap, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Close cancels every scheduled poll and in-flight call. Recordings that
// were Submitting or Pending become Failed with KindClosed, which releases
// their waiters. Other recordings keep their state.
func (c *Controller) Close() {
	if c.closed.Swap(true) {
		return
	}
	var events []Event
	c.store.each(func(sl *slot) {
		sl.stop()
		if sl.rec.State != Submitting && sl.rec.State != Pending {
			return
		}
		failure := &Error{
			Kind:        KindClosed,
			RecordingID: sl.rec.ID,
			JobID:       sl.rec.JobID,
			Message:     "controller closed before the transcript arrived",
		}
		events = append(events, c.transition(sl, Failed, failure))
		sl.finish()
	})
	c.emit(events)
	if len(events) > 0 {
		c.log.Info("journal closed", logger.Fields("abandoned", len(events)))
	}
}

// transition moves sl to state to. Callers hold the store lock.
func (c *Controller) transition(sl *slot, to State, err *Error) Event {
	from := sl.rec.State
	sl.rec.State = to
	sl.rec.Err = err
	c.metrics.RecordTransition(context.Background(), from.String(), to.String())
	return Event{
		RecordingID: sl.rec.ID,
		UserID:      sl.rec.UserID,
		JobID:       sl.rec.JobID,
		From:        from,
		To:          to,
		Err:         err,
	}
}

func (c *Controller) emit(events []Event) {
	for _, ev := range events {
		for _, o := range c.observers {
			o(ev)
		}
	}
}
