// Package resilience provides retry, circuit breaker and rate limiting
// primitives used by the outbound HTTP client.
//
// Retry delegates backoff timing to cenkalti/backoff and RateLimiter to
// golang.org/x/time/rate; CircuitBreaker is implemented here.
package resilience
