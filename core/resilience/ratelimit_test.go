package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/resilience"
)

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows up to capacity then denies", func(t *testing.T) {
		t.Parallel()

		// No refill within the test window.
		limiter := resilience.NewRateLimiter(3, 0)
		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.Check())
		}
		assert.ErrorIs(t, limiter.Check(), resilience.ErrRateLimitExceeded)
	})

	t.Run("zero capacity denies every call", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewRateLimiter(0, 100)
		assert.ErrorIs(t, limiter.Check(), resilience.ErrRateLimitExceeded)
		assert.ErrorIs(t, limiter.Check(), resilience.ErrRateLimitExceeded)
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewRateLimiter(1, 50) // one token every 20ms
		require.NoError(t, limiter.Check())
		require.ErrorIs(t, limiter.Check(), resilience.ErrRateLimitExceeded)

		time.Sleep(50 * time.Millisecond)
		assert.NoError(t, limiter.Check())
	})

	t.Run("status reports remaining tokens", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewRateLimiter(5, 0)
		require.NoError(t, limiter.Check())
		require.NoError(t, limiter.Check())

		status := limiter.Status()
		assert.Equal(t, 5, status.Capacity)
		assert.Equal(t, 3, status.Remaining)
	})
}

func TestKeyedRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("buckets are independent per key", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewKeyedRateLimiter(1, 0)
		require.NoError(t, limiter.Check("alice"))
		require.ErrorIs(t, limiter.Check("alice"), resilience.ErrRateLimitExceeded)

		// A different key has its own bucket.
		assert.NoError(t, limiter.Check("bob"))
		assert.Equal(t, 2, limiter.Keys())
	})

	t.Run("idle keys are evicted", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewKeyedRateLimiter(1, 0,
			resilience.WithIdleTimeout(30*time.Millisecond),
			resilience.WithCleanupInterval(10*time.Millisecond))

		require.NoError(t, limiter.Check("alice"))
		require.Equal(t, 1, limiter.Keys())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = limiter.Start(ctx) }()

		require.Eventually(t, func() bool {
			return limiter.Keys() == 0
		}, time.Second, 10*time.Millisecond)

		// A fresh bucket is created on next use.
		assert.NoError(t, limiter.Check("alice"))
	})
}

func TestAdaptiveRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("failures halve the rate down to the floor", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewAdaptiveRateLimiter(10, 100, 10)
		require.Equal(t, 100.0, limiter.CurrentRate())

		limiter.ReportFailure()
		assert.Equal(t, 50.0, limiter.CurrentRate())
		limiter.ReportFailure()
		assert.Equal(t, 25.0, limiter.CurrentRate())

		for i := 0; i < 10; i++ {
			limiter.ReportFailure()
		}
		assert.Equal(t, 10.0, limiter.CurrentRate())
	})

	t.Run("successes restore the rate up to the base", func(t *testing.T) {
		t.Parallel()

		limiter := resilience.NewAdaptiveRateLimiter(10, 100, 10)
		limiter.ReportFailure() // 50

		for i := 0; i < 10; i++ {
			limiter.ReportSuccess()
		}
		assert.Equal(t, 100.0, limiter.CurrentRate())
	})
}
