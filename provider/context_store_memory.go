package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a process-local ContextStore. It is the default backing
// store when redis is disabled.
type MemoryStore[C any] struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{items: make(map[string]memEntry), now: time.Now}
}

// Load returns (nil, nil) for missing or expired keys.
func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.Lock()
	entry, ok := s.items[key]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.items, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var val C
	if err := json.Unmarshal(entry.data, &val); err != nil {
		return nil, fmt.Errorf("memory store: decode %q: %w", key, err)
	}
	return &val, nil
}

// Save stores val, replacing any previous value.
func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("memory store: encode %q: %w", key, err)
	}
	entry := memEntry{data: data}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len counts stored entries, expired ones included until next Load.
func (s *MemoryStore[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ ContextStore[struct{}] = (*MemoryStore[struct{}])(nil)
