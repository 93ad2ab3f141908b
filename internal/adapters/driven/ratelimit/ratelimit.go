// Package ratelimit provides client-side throttling for outbound API calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration for an API client.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// Limiter throttles requests to an external API.
// It uses a token bucket algorithm with a backoff window for 429 responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter. Zero config fields fall back to conservative
// defaults (5 requests/second, burst of 10).
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5.0
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 10
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError records a rate limit error and sets a backoff period.
// Call this when receiving a 429 response from the API.
func (l *Limiter) RecordRateLimitError(retryAfterSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfterSeconds <= 0 {
		// Default backoff when the server gives no Retry-After
		retryAfterSeconds = 30
	}

	l.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}
