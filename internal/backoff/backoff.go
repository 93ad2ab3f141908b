// Package backoff computes retry delays for outbound API calls.
package backoff

import (
	"math/rand/v2"
	"time"
)

// maxDelay caps exponential growth.
const maxDelay = 30 * time.Second

// Delay returns the exponential backoff delay for a retry attempt with
// random jitter of up to ±25%. Attempt 1 is the first retry; attempt 0
// or below means no delay.
func Delay(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}
	// Cap the shift to avoid overflow
	if attempt > 30 {
		attempt = 30
	}

	d := base * time.Duration(1<<uint(attempt))
	if d > maxDelay || d <= 0 {
		d = maxDelay
	}

	jitter := time.Duration(rand.Int64N(int64(d)/2)) - d/4
	return d + jitter
}
