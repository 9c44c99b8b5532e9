package resilience

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/all-source-os/allframe/core/logger"
)

// RetryConfig controls the retry schedule. The delay before attempt n is
// min(BaseDelay * Multiplier^n, MaxDelay) scaled by a random factor in
// [1-JitterFraction, 1+JitterFraction].
type RetryConfig struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Multiplier is the exponential growth factor. Must be >= 1.
	Multiplier float64
	// JitterFraction randomizes each delay. Must be in [0, 1).
	JitterFraction float64
	// RetryIf decides whether an error is retriable. Nil retries everything.
	RetryIf func(error) bool
}

// DefaultRetryConfig returns a schedule of 3 attempts starting at 100ms,
// doubling up to 5s, with 20% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

func (c RetryConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be >= 1, got %g", ErrInvalidConfig, c.Multiplier)
	}
	if c.JitterFraction < 0 || c.JitterFraction >= 1 {
		return fmt.Errorf("%w: jitter fraction must be in [0, 1), got %g", ErrInvalidConfig, c.JitterFraction)
	}
	return nil
}

// RetryExecutor retries failed operations according to its configuration.
// Attempts for a single call are sequential; the executor itself is safe for
// concurrent use.
type RetryExecutor struct {
	cfg    RetryConfig
	budget *RetryBudget
	logger *slog.Logger
}

// RetryOption configures a RetryExecutor.
type RetryOption func(*RetryExecutor)

// WithRetryBudget bounds retries across calls. When the budget is exhausted,
// new calls fail fast after their first attempt.
func WithRetryBudget(b *RetryBudget) RetryOption {
	return func(e *RetryExecutor) {
		e.budget = b
	}
}

// WithRetryLogger configures structured logging for retry attempts.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(e *RetryExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewRetryExecutor creates a retry executor with the given schedule.
func NewRetryExecutor(cfg RetryConfig, opts ...RetryOption) (*RetryExecutor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &RetryExecutor{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Execute runs fn until it succeeds, the schedule is exhausted, the error is
// classified non-retriable, or ctx is cancelled. The name labels the
// operation in logs.
func (e *RetryExecutor) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return e.execute(ctx, name, fn, e.cfg.Multiplier)
}

func (e *RetryExecutor) execute(ctx context.Context, name string, fn func(ctx context.Context) error, multiplier float64) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.BaseDelay
	bo.MaxInterval = e.cfg.MaxDelay
	bo.Multiplier = multiplier
	bo.RandomizationFactor = e.cfg.JitterFraction
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxAttempts, not wall clock
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if e.cfg.RetryIf != nil && !e.cfg.RetryIf(lastErr) {
			return lastErr
		}
		if attempt == e.cfg.MaxAttempts {
			break
		}
		if e.budget != nil && !e.budget.Allow() {
			return fmt.Errorf("%w: %s after attempt %d: %w", ErrRetryBudgetExhausted, name, attempt, lastErr)
		}

		delay := bo.NextBackOff()
		e.logger.DebugContext(ctx, "retrying operation",
			slog.String("operation", name),
			logger.RetryAttempt(attempt),
			slog.Duration("delay", delay),
			logger.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, e.cfg.MaxAttempts, lastErr)
}

// RetryBudget bounds the total number of retries across calls within a
// sliding window. Tokens refill continuously at capacity per window.
type RetryBudget struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRetryBudget creates a budget of capacity retries per window.
func NewRetryBudget(capacity int, window time.Duration) *RetryBudget {
	if capacity < 0 {
		capacity = 0
	}
	if window <= 0 {
		window = time.Second
	}
	return &RetryBudget{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(capacity) / window.Seconds(),
		lastRefill: time.Now(),
	}
}

// Allow consumes one retry token, reporting whether a retry is permitted.
func (b *RetryBudget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.capacity, b.tokens+b.refillRate*now.Sub(b.lastRefill).Seconds())
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// AdaptiveRetry wraps a RetryExecutor and dampens the backoff multiplier
// when the observed success rate exceeds a threshold: a mostly-healthy
// downstream does not need aggressive exponential growth.
type AdaptiveRetry struct {
	executor *RetryExecutor

	// successThreshold is the success rate above which damping applies.
	successThreshold float64
	// dampingFactor scales the multiplier when damping applies; in (0, 1].
	dampingFactor float64

	successes atomic.Int64
	failures  atomic.Int64
}

// NewAdaptiveRetry creates an adaptive retry around the given executor.
// With a success rate above threshold, the backoff multiplier is scaled by
// damping (floored at 1.0, i.e. constant delays).
func NewAdaptiveRetry(executor *RetryExecutor, threshold, damping float64) (*AdaptiveRetry, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: success threshold must be in (0, 1], got %g", ErrInvalidConfig, threshold)
	}
	if damping <= 0 || damping > 1 {
		return nil, fmt.Errorf("%w: damping factor must be in (0, 1], got %g", ErrInvalidConfig, damping)
	}
	return &AdaptiveRetry{
		executor:         executor,
		successThreshold: threshold,
		dampingFactor:    damping,
	}, nil
}

// Execute runs fn with the adaptive schedule and records the outcome.
func (a *AdaptiveRetry) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	err := a.executor.execute(ctx, name, fn, a.multiplier())
	if err != nil {
		a.failures.Add(1)
	} else {
		a.successes.Add(1)
	}
	return err
}

// SuccessRate reports the observed success rate; 1.0 before any calls.
func (a *AdaptiveRetry) SuccessRate() float64 {
	s, f := a.successes.Load(), a.failures.Load()
	if s+f == 0 {
		return 1.0
	}
	return float64(s) / float64(s+f)
}

func (a *AdaptiveRetry) multiplier() float64 {
	m := a.executor.cfg.Multiplier
	if a.SuccessRate() > a.successThreshold {
		m = max(1.0, m*a.dampingFactor)
	}
	return m
}
