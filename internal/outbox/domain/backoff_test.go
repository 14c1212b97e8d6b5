package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffPolicy_Delay(t *testing.T) {
	policy := BackoffPolicy{Cap: 30 * time.Minute}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{6, 30 * time.Minute}, // 32 capped
		{10, 30 * time.Minute},
		{100, 30 * time.Minute}, // way past any shift overflow
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestBackoffPolicy_Delay_NonDecreasing(t *testing.T) {
	policy := BackoffPolicy{Cap: 30 * time.Minute}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 50; attempt++ {
		delay := policy.Delay(attempt)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, 30*time.Minute, "attempt %d", attempt)
		prev = delay
	}
}

func TestBackoffPolicy_Delay_LargeAttemptsStayCapped(t *testing.T) {
	policy := BackoffPolicy{Cap: 30 * time.Minute}

	// Attempts 28-31 straddle the point where the naive shift would
	// overflow int64 nanoseconds and go negative.
	for attempt := 28; attempt <= 31; attempt++ {
		delay := policy.Delay(attempt)
		assert.Equal(t, 30*time.Minute, delay, "attempt %d", attempt)
		assert.GreaterOrEqual(t, delay, time.Duration(0), "attempt %d", attempt)
	}
}

func TestBackoffPolicy_Delay_ZeroAndNegativeAttempts(t *testing.T) {
	policy := BackoffPolicy{Cap: 30 * time.Minute}

	assert.Equal(t, time.Minute, policy.Delay(0))
	assert.Equal(t, time.Minute, policy.Delay(-3))
}

func TestBackoffPolicy_Delay_DefaultCap(t *testing.T) {
	var policy BackoffPolicy

	assert.Equal(t, time.Minute, policy.Delay(1))
	assert.Equal(t, DefaultBackoffCap, policy.Delay(60))
}

func TestBackoffPolicy_Delay_CustomCap(t *testing.T) {
	policy := BackoffPolicy{Cap: 5 * time.Minute}

	assert.Equal(t, 4*time.Minute, policy.Delay(3))
	assert.Equal(t, 5*time.Minute, policy.Delay(4))
	assert.Equal(t, 5*time.Minute, policy.Delay(20))
}
