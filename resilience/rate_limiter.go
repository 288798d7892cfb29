package resilience

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by Execute when no token is available.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	Name  string  `yaml:"name" mapstructure:"name"`
	Rate  float64 `yaml:"rate" mapstructure:"rate"` // tokens per second
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

// ApplyDefaults fills zero fields.
func (c *RateLimiterConfig) ApplyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 10
	}
	if c.Burst <= 0 {
		c.Burst = max(1, int(c.Rate))
	}
}

// RateLimiter wraps golang.org/x/time/rate with the package's Execute
// conventions.
type RateLimiter struct {
	name    string
	limiter *rate.Limiter
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	cfg.ApplyDefaults()
	return &RateLimiter{
		name:    cfg.Name,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool { return rl.limiter.Allow() }

// Wait blocks until a token is available or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error { return rl.limiter.Wait(ctx) }

// Execute runs fn if a token is available, else returns ErrRateLimited.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// ExecuteWait waits for a token, then runs fn.
func (rl *RateLimiter) ExecuteWait(ctx context.Context, fn func() error) error {
	if err := rl.Wait(ctx); err != nil {
		return err
	}
	return fn()
}

// Name identifies the limiter in logs.
func (rl *RateLimiter) Name() string { return rl.name }
