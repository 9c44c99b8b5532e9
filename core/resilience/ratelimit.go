package resilience

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter is a token bucket: Check consumes one token or fails with
// ErrRateLimitExceeded. Tokens refill continuously at the configured rate up
// to the bucket capacity. A zero-capacity limiter denies every call.
type RateLimiter struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// RateLimiterStatus is a point-in-time view of a limiter.
type RateLimiterStatus struct {
	Capacity  int
	Remaining int
}

// NewRateLimiter creates a token bucket with the given capacity and refill
// rate in tokens per second.
func NewRateLimiter(capacity int, refillPerSecond float64) *RateLimiter {
	if capacity < 0 {
		capacity = 0
	}
	if refillPerSecond < 0 {
		refillPerSecond = 0
	}
	return &RateLimiter{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillPerSecond,
		lastRefill: time.Now(),
	}
}

// Check consumes one token, failing with ErrRateLimitExceeded when the
// bucket is empty.
func (l *RateLimiter) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())
	if l.tokens < 1 {
		return ErrRateLimitExceeded
	}
	l.tokens--
	return nil
}

// Status reports the current capacity and remaining tokens.
func (l *RateLimiter) Status() RateLimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())
	return RateLimiterStatus{
		Capacity:  int(l.capacity),
		Remaining: int(l.tokens),
	}
}

// setRate adjusts the refill rate; used by the adaptive limiter.
func (l *RateLimiter) setRate(refillPerSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())
	l.refillRate = refillPerSecond
}

func (l *RateLimiter) refill(now time.Time) {
	l.tokens = min(l.capacity, l.tokens+l.refillRate*now.Sub(l.lastRefill).Seconds())
	l.lastRefill = now
}

// KeyedRateLimiter maintains one bucket per key with background eviction of
// idle keys. Call Start to run the eviction loop; it blocks until the
// context is cancelled.
type KeyedRateLimiter struct {
	capacity        int
	refillPerSecond float64
	idleTimeout     time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger

	mu      sync.Mutex
	buckets map[string]*keyedBucket
}

type keyedBucket struct {
	limiter    *RateLimiter
	lastAccess time.Time
}

// KeyedRateLimiterOption configures a KeyedRateLimiter.
type KeyedRateLimiterOption func(*KeyedRateLimiter)

// WithIdleTimeout sets how long an untouched key survives before eviction.
// Default is 10 minutes.
func WithIdleTimeout(d time.Duration) KeyedRateLimiterOption {
	return func(l *KeyedRateLimiter) {
		if d > 0 {
			l.idleTimeout = d
		}
	}
}

// WithCleanupInterval sets the eviction scan interval. Default is 1 minute.
func WithCleanupInterval(d time.Duration) KeyedRateLimiterOption {
	return func(l *KeyedRateLimiter) {
		if d > 0 {
			l.cleanupInterval = d
		}
	}
}

// WithKeyedLimiterLogger configures structured logging for eviction.
func WithKeyedLimiterLogger(logger *slog.Logger) KeyedRateLimiterOption {
	return func(l *KeyedRateLimiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewKeyedRateLimiter creates a per-key limiter; every key gets its own
// bucket with the same capacity and refill rate.
func NewKeyedRateLimiter(capacity int, refillPerSecond float64, opts ...KeyedRateLimiterOption) *KeyedRateLimiter {
	l := &KeyedRateLimiter{
		capacity:        capacity,
		refillPerSecond: refillPerSecond,
		idleTimeout:     10 * time.Minute,
		cleanupInterval: time.Minute,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		buckets:         make(map[string]*keyedBucket),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Check consumes one token from the key's bucket, creating it on first use.
func (l *KeyedRateLimiter) Check(key string) error {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &keyedBucket{limiter: NewRateLimiter(l.capacity, l.refillPerSecond)}
		l.buckets[key] = b
	}
	b.lastAccess = time.Now()
	l.mu.Unlock()

	if err := b.limiter.Check(); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

// Keys returns the number of live buckets.
func (l *KeyedRateLimiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}

// Start runs the idle-key eviction loop until ctx is cancelled.
func (l *KeyedRateLimiter) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *KeyedRateLimiter) evictIdle() {
	cutoff := time.Now().Add(-l.idleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
			l.logger.Debug("evicted idle rate limit bucket", slog.String("key", key))
		}
	}
}

// AdaptiveRateLimiter lowers its refill rate on downstream failure signals
// and restores it gradually on successes. The rate stays within
// [minRate, baseRate].
type AdaptiveRateLimiter struct {
	limiter  *RateLimiter
	baseRate float64
	minRate  float64
	step     float64

	mu          sync.Mutex
	currentRate float64
}

// NewAdaptiveRateLimiter creates an adaptive limiter. On each failure signal
// the rate is halved (floored at minRate); each success signal restores it
// by step tokens/second (capped at the base rate).
func NewAdaptiveRateLimiter(capacity int, baseRate, minRate float64) *AdaptiveRateLimiter {
	if minRate < 0 {
		minRate = 0
	}
	if baseRate < minRate {
		baseRate = minRate
	}
	return &AdaptiveRateLimiter{
		limiter:     NewRateLimiter(capacity, baseRate),
		baseRate:    baseRate,
		minRate:     minRate,
		step:        baseRate / 10,
		currentRate: baseRate,
	}
}

// Check consumes one token at the current adaptive rate.
func (l *AdaptiveRateLimiter) Check() error {
	return l.limiter.Check()
}

// ReportFailure signals downstream pressure; the refill rate is halved.
func (l *AdaptiveRateLimiter) ReportFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRate = max(l.minRate, l.currentRate/2)
	l.limiter.setRate(l.currentRate)
}

// ReportSuccess signals a healthy downstream; the refill rate recovers one
// step toward the base rate.
func (l *AdaptiveRateLimiter) ReportSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRate = min(l.baseRate, l.currentRate+l.step)
	l.limiter.setRate(l.currentRate)
}

// CurrentRate reports the adaptive refill rate in tokens per second.
func (l *AdaptiveRateLimiter) CurrentRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.currentRate
}
