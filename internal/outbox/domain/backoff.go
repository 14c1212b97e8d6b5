package domain

import "time"

// DefaultBackoffCap is the default ceiling for retry delays.
const DefaultBackoffCap = 30 * time.Minute

// BackoffPolicy maps an attempt number to the delay before the next retry:
// min(cap, 2^(attempt-1) minutes). Deterministic, no jitter; with multiple
// worker replicas consider adding jitter to avoid retry synchronization.
type BackoffPolicy struct {
	// Cap is the maximum delay. Zero means DefaultBackoffCap.
	Cap time.Duration
}

// Delay returns the retry delay for the given attempt number. Attempt
// numbers start at 1; values below 1 are treated as 1.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	cap := p.Cap
	if cap <= 0 {
		cap = DefaultBackoffCap
	}

	exp := attempt - 1
	if exp < 0 {
		exp = 0
	}
	// 2^28 minutes already overflows int64 nanoseconds; 2^27 minutes
	// (~255 years) is the largest shift that still fits, and exceeds any
	// representable cap.
	if exp > 27 {
		return cap
	}

	delay := time.Duration(1<<uint(exp)) * time.Minute
	if delay > cap {
		return cap
	}
	return delay
}
