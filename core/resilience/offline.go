package resilience

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/all-source-os/allframe/core/logger"
)

// ConnectivityKind classifies a probe result.
type ConnectivityKind int

const (
	// ConnectivityOnline means the network path is fully available.
	ConnectivityOnline ConnectivityKind = iota
	// ConnectivityOffline means there is no connectivity.
	ConnectivityOffline
	// ConnectivityDegraded means partial connectivity; Reason explains why.
	ConnectivityDegraded
)

// ConnectivityStatus is the result of a connectivity probe.
type ConnectivityStatus struct {
	Kind   ConnectivityKind
	Reason string
}

// Online reports full connectivity.
func Online() ConnectivityStatus { return ConnectivityStatus{Kind: ConnectivityOnline} }

// Offline reports no connectivity.
func Offline() ConnectivityStatus { return ConnectivityStatus{Kind: ConnectivityOffline} }

// Degraded reports partial connectivity with a reason.
func Degraded(reason string) ConnectivityStatus {
	return ConnectivityStatus{Kind: ConnectivityDegraded, Reason: reason}
}

// ConnectivityProbe checks the current network state. Anything other than
// Online is treated as not safe to dispatch.
type ConnectivityProbe interface {
	Check(ctx context.Context) ConnectivityStatus
}

// ProbeFunc adapts a function to the ConnectivityProbe interface.
type ProbeFunc func(ctx context.Context) ConnectivityStatus

func (f ProbeFunc) Check(ctx context.Context) ConnectivityStatus { return f(ctx) }

// AlwaysOnline is a probe that always reports full connectivity.
var AlwaysOnline ConnectivityProbe = ProbeFunc(func(ctx context.Context) ConnectivityStatus {
	return Online()
})

// CallOutcome tells whether an offline breaker executed or queued a call.
type CallOutcome int

const (
	// CallExecuted means the function ran; its error is the call's error.
	CallExecuted CallOutcome = iota
	// CallQueued means the function was queued for a later Drain. Not an error.
	CallQueued
)

// OfflineCircuitBreaker queues work instead of rejecting it when
// connectivity is absent. Queued calls are fire-and-forget: their results
// are observed through side effects, not return values.
type OfflineCircuitBreaker struct {
	name   string
	probe  ConnectivityProbe
	logger *slog.Logger

	mu    sync.Mutex
	queue []func(ctx context.Context)
}

// OfflineBreakerOption configures an OfflineCircuitBreaker.
type OfflineBreakerOption func(*OfflineCircuitBreaker)

// WithOfflineBreakerLogger configures structured logging for queue activity.
func WithOfflineBreakerLogger(logger *slog.Logger) OfflineBreakerOption {
	return func(b *OfflineCircuitBreaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewOfflineCircuitBreaker creates an offline-aware breaker using the given
// connectivity probe.
func NewOfflineCircuitBreaker(name string, probe ConnectivityProbe, opts ...OfflineBreakerOption) *OfflineCircuitBreaker {
	b := &OfflineCircuitBreaker{
		name:   name,
		probe:  probe,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Call executes fn when the probe reports Online; otherwise it queues fn and
// returns CallQueued. The returned error is fn's error and is only
// meaningful for CallExecuted.
func (b *OfflineCircuitBreaker) Call(ctx context.Context, fn func(ctx context.Context) error) (CallOutcome, error) {
	if b.probe.Check(ctx).Kind == ConnectivityOnline {
		return CallExecuted, fn(ctx)
	}

	b.mu.Lock()
	b.queue = append(b.queue, func(ctx context.Context) {
		// Fire-and-forget: replay success is observed through fn's side effects.
		_ = fn(ctx)
	})
	queued := len(b.queue)
	b.mu.Unlock()

	b.logger.DebugContext(ctx, "call queued while offline",
		slog.String("breaker", b.name),
		slog.Int("queued", queued))
	return CallQueued, nil
}

// QueuedCount returns the number of queued calls.
func (b *OfflineCircuitBreaker) QueuedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.queue)
}

// Drain replays queued calls in FIFO order until the queue is empty,
// including calls queued while draining.
func (b *OfflineCircuitBreaker) Drain(ctx context.Context) error {
	for {
		b.mu.Lock()
		ops := b.queue
		b.queue = nil
		b.mu.Unlock()

		if len(ops) == 0 {
			return nil
		}

		for i, op := range ops {
			if ctx.Err() != nil {
				// Re-queue the remainder so nothing is lost.
				b.mu.Lock()
				b.queue = append(ops[i:], b.queue...)
				b.mu.Unlock()
				return ctx.Err()
			}
			op(ctx)
		}
	}
}

// PendingOperation is a unit of work parked in a store-and-forward queue.
type PendingOperation struct {
	ID string
}

// ReplayReport tallies a store-and-forward replay pass.
type ReplayReport struct {
	Replayed int
	Failed   int
}

// StoreAndForward runs operations immediately and parks the identifiers of
// failed ones for later replay. The pending queue is FIFO.
type StoreAndForward struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending []PendingOperation
}

// StoreAndForwardOption configures a StoreAndForward.
type StoreAndForwardOption func(*StoreAndForward)

// WithStoreAndForwardLogger configures structured logging for replays.
func WithStoreAndForwardLogger(logger *slog.Logger) StoreAndForwardOption {
	return func(s *StoreAndForward) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStoreAndForward creates an empty store-and-forward queue.
func NewStoreAndForward(opts ...StoreAndForwardOption) *StoreAndForward {
	s := &StoreAndForward{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute runs fn; on failure the operation id is parked for replay. An
// empty id gets a generated one. Returns fn's error.
func (s *StoreAndForward) Execute(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	if id == "" {
		id = uuid.New().String()
	}

	err := fn(ctx)
	if err != nil {
		s.mu.Lock()
		s.pending = append(s.pending, PendingOperation{ID: id})
		s.mu.Unlock()

		s.logger.DebugContext(ctx, "operation parked for replay",
			slog.String("operation_id", id),
			logger.Error(err))
	}
	return err
}

// PendingCount returns the number of parked operations.
func (s *StoreAndForward) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// PeekPending returns the parked operations in FIFO order without removing them.
func (s *StoreAndForward) PeekPending() []PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PendingOperation, len(s.pending))
	copy(out, s.pending)
	return out
}

// ReplayAll drains the pending queue in FIFO order, invoking handler per
// operation id, and tallies the outcomes. Operations that fail again are
// counted but not re-queued; callers decide whether to park them anew.
func (s *StoreAndForward) ReplayAll(ctx context.Context, handler func(ctx context.Context, id string) error) (ReplayReport, error) {
	s.mu.Lock()
	ops := s.pending
	s.pending = nil
	s.mu.Unlock()

	var report ReplayReport
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			// Park the remainder again before giving up.
			s.mu.Lock()
			s.pending = append(ops[report.Replayed+report.Failed:], s.pending...)
			s.mu.Unlock()
			return report, fmt.Errorf("replay interrupted: %w", err)
		}
		if err := handler(ctx, op.ID); err != nil {
			report.Failed++
		} else {
			report.Replayed++
		}
	}
	return report, nil
}
