package journal

import (
	"cmp"
	"context"
	"slices"
	"sync"

	apperrors "github.com/kbukum/mindease/errors"
)

// Store owns recordings and the bookkeeping of their transcription chains.
// Reads return snapshots; only the controller mutates entries.
type Store struct {
	mu    sync.Mutex
	slots map[string]*slot
	gen   uint64
}

// slot keeps a recording alongside its scheduled poll and in-flight call.
type slot struct {
	rec Recording
	// gen identifies the active chain. Continuations compare it before
	// applying a result.
	gen    uint64
	handle Handle
	cancel context.CancelFunc
	// done is closed when the chain reaches a terminal state or the
	// recording is deleted.
	done chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{slots: make(map[string]*slot)}
}

// Create adds rec, keeping a private copy of its audio.
func (s *Store) Create(rec Recording) (Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[rec.ID]; ok {
		return Recording{}, apperrors.Conflict("recording " + rec.ID + " already exists")
	}
	s.gen++
	sl := &slot{rec: rec.clone(), gen: s.gen}
	s.slots[rec.ID] = sl
	return sl.rec.clone(), nil
}

// Get returns a snapshot of the recording.
func (s *Store) Get(id string) (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return Recording{}, false
	}
	return sl.rec.clone(), true
}

// Delete removes the recording, cancels its scheduled poll and in-flight
// call, and wakes any waiters.
func (s *Store) Delete(id string) (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return Recording{}, false
	}
	delete(s.slots, id)
	sl.stop()
	sl.finish()
	return sl.rec, true
}

// List returns the user's recordings, newest first. An empty userID lists
// every recording. Audio is omitted from the snapshots.
func (s *Store) List(userID string) []Recording {
	s.mu.Lock()
	out := make([]Recording, 0, len(s.slots))
	for _, sl := range s.slots {
		if userID != "" && sl.rec.UserID != userID {
			continue
		}
		rec := sl.rec.clone()
		rec.Audio = nil
		out = append(out, rec)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Recording) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of recordings.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// with runs fn on the slot under the lock. When gen is non-zero the slot
// must still belong to that chain. It reports whether fn ran.
func (s *Store) with(id string, gen uint64, fn func(*slot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok || (gen != 0 && sl.gen != gen) {
		return false
	}
	fn(sl)
	return true
}

// nextGen starts a new chain for sl. Callers hold s.mu via with.
func (s *Store) nextGen(sl *slot) uint64 {
	s.gen++
	sl.gen = s.gen
	return sl.gen
}

// each runs fn on every slot under the store lock.
func (s *Store) each(fn func(sl *slot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		fn(sl)
	}
}

func (sl *slot) stop() {
	if sl.handle != nil {
		sl.handle.Cancel()
		sl.handle = nil
	}
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
}

func (sl *slot) finish() {
	if sl.done != nil {
		close(sl.done)
		sl.done = nil
	}
}
