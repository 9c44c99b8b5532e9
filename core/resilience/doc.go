// Package resilience provides fault-tolerance primitives: retry with
// exponential backoff and budgets, token-bucket rate limiting, circuit
// breakers, and offline-aware dispatch with store-and-forward queueing.
//
// Retry with exponential backoff and jitter:
//
//	executor, err := resilience.NewRetryExecutor(resilience.RetryConfig{
//		MaxAttempts:    5,
//		BaseDelay:      100 * time.Millisecond,
//		MaxDelay:       5 * time.Second,
//		Multiplier:     2.0,
//		JitterFraction: 0.2,
//	})
//	err = executor.Execute(ctx, "fetch_data", func(ctx context.Context) error {
//		return fetch(ctx)
//	})
//
// Rate limiting:
//
//	limiter := resilience.NewRateLimiter(100, 10) // capacity 100, 10 tokens/s
//	if err := limiter.Check(); err != nil {
//		// resilience.ErrRateLimitExceeded
//	}
//
// Circuit breaking:
//
//	cb, err := resilience.NewCircuitBreaker("external_api", resilience.BreakerConfig{
//		FailureThreshold:  3,
//		Window:            10 * time.Second,
//		Cooldown:          30 * time.Second,
//		HalfOpenSuccesses: 2,
//	})
//	out, err := cb.Execute(func() (any, error) { return callAPI() })
//
// Offline-first deployments combine a connectivity probe with queueing:
// calls made while offline are queued instead of rejected and replayed in
// FIFO order by Drain once connectivity returns.
package resilience
