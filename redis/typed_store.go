package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/mindease/provider"
)

// TypedStore implements provider.ContextStore[C] on Redis strings holding
// JSON. Keys get the client's prefix.
type TypedStore[C any] struct {
	client *Client
}

// NewTypedStore creates a TypedStore on client.
func NewTypedStore[C any](client *Client) *TypedStore[C] {
	return &TypedStore[C]{client: client}
}

// Load returns (nil, nil) for a missing key.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	var val C
	err := s.client.GetJSON(ctx, s.client.Key(key), &val)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}
	return &val, nil
}

// Save stores val with ttl; 0 means no expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	if err := s.client.SetJSON(ctx, s.client.Key(key), val, ttl); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.Key(key)); err != nil {
		return fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return nil
}

var _ provider.ContextStore[any] = (*TypedStore[any])(nil)
