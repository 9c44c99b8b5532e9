package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitState describes a breaker's current state.
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

// BreakerConfig controls circuit breaker transitions: Closed moves to Open
// after FailureThreshold failures within Window; Open moves to HalfOpen
// after Cooldown; HalfOpen moves back to Closed after HalfOpenSuccesses
// consecutive successes, or to Open on any failure.
type BreakerConfig struct {
	// FailureThreshold is the failure count that trips the breaker. Must be >= 1.
	FailureThreshold uint32
	// Window is the rolling interval over which failures are counted in the
	// closed state. Zero counts over the breaker's whole closed period.
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// HalfOpenSuccesses is the number of consecutive successful probes that
	// close the breaker again. Zero defaults to 1.
	HalfOpenSuccesses uint32
}

// DefaultBreakerConfig trips after 5 failures in 10s, cools down for 30s,
// and closes after 2 successful probes.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:  5,
		Window:            10 * time.Second,
		Cooldown:          30 * time.Second,
		HalfOpenSuccesses: 2,
	}
}

// BreakerStats is a point-in-time view of a breaker's counters.
type BreakerStats struct {
	State                CircuitState
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
}

// CircuitBreaker denies calls fast while a downstream is failing. While
// open, Execute returns ErrCircuitOpen without invoking the target.
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a named breaker. A zero failure threshold is
// rejected: it would trip the breaker on the first failure.
func NewCircuitBreaker(name string, cfg BreakerConfig) (*CircuitBreaker, error) {
	if cfg.FailureThreshold == 0 {
		return nil, fmt.Errorf("%w: failure threshold must be >= 1", ErrInvalidConfig)
	}
	if cfg.HalfOpenSuccesses == 0 {
		cfg.HalfOpenSuccesses = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenSuccesses,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.TotalFailures >= cfg.FailureThreshold
		},
	}

	return &CircuitBreaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}, nil
}

// Name returns the breaker's name.
func (b *CircuitBreaker) Name() string { return b.name }

// Execute runs fn through the breaker. While the breaker is open (or the
// half-open probe quota is spent) it returns ErrCircuitOpen without
// invoking fn.
func (b *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
	}
	return out, err
}

// State reports the breaker's current state.
func (b *CircuitBreaker) State() CircuitState {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// Stats reports the breaker's counters alongside its state.
func (b *CircuitBreaker) Stats() BreakerStats {
	counts := b.cb.Counts()
	return BreakerStats{
		State:                b.State(),
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
	}
}

// BreakerManager hands out named breakers sharing one policy, creating them
// on first use.
type BreakerManager struct {
	cfg BreakerConfig

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewBreakerManager creates a manager with a shared breaker policy.
func NewBreakerManager(cfg BreakerConfig) (*BreakerManager, error) {
	if cfg.FailureThreshold == 0 {
		return nil, fmt.Errorf("%w: failure threshold must be >= 1", ErrInvalidConfig)
	}
	return &BreakerManager{
		cfg:      cfg,
		breakers: make(map[string]*CircuitBreaker),
	}, nil
}

// Get returns the breaker registered under name, creating it if needed.
func (m *BreakerManager) Get(name string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.breakers[name]
	if !ok {
		// Config was validated at manager construction.
		b, _ = NewCircuitBreaker(name, m.cfg)
		m.breakers[name] = b
	}
	return b
}

// Names returns the names of all breakers created so far.
func (m *BreakerManager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.breakers))
	for name := range m.breakers {
		names = append(names, name)
	}
	return names
}
