package provider

import (
	"context"
	"time"
)

// ContextStore persists typed values under opaque string keys. Callers own
// the key schema, for example "ai_chat:<user>". A TTL of 0 means no
// expiration. Values round-trip through JSON in every implementation, so a
// loaded value never aliases a saved one.
type ContextStore[C any] interface {
	// Load returns (nil, nil) when the key does not exist.
	Load(ctx context.Context, key string) (*C, error)
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
