package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 1, 3, 3, 3},
		{"exceeding burst blocks", 1, 2, 5, 2},
		{"login budget", PerMinute(10), 5, 8, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("alice") {
					passed++
				}
			}

			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("bob"))
}

func TestKeyedRateLimiter_Reset(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("alice"))
	require.False(t, rl.Allow("alice"))

	rl.Reset("alice")

	assert.True(t, rl.Allow("alice"))
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	rl := NewWithTTL(1, 1, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(2 * time.Minute)
	rl.Allow("fresh")

	rl.evictIdle()

	assert.Equal(t, 1, rl.Len())
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "k"))
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
