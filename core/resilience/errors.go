package resilience

import "errors"

var (
	// ErrRateLimitExceeded is returned when the rate limiter has no tokens left.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrCircuitOpen is returned when a circuit breaker denies the call.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrRetryBudgetExhausted is returned when the retry budget denies further retries.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// ErrInvalidConfig is returned when a primitive is constructed with an unusable configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)
