package eventstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/all-source-os/allframe/core/logger"
)

// Store wraps a backend with subscriber fan-out. It exclusively owns the
// backend; subscribers receive clones of appended events over buffered
// channels.
//
// Append persists first and fans out second, so a backend failure never
// leaks events to subscribers. Fan-out sends are non-blocking: a subscriber
// whose channel is full misses events for that append (slow-consumer
// tolerance) and is expected to re-derive state from the backend.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBackend sets the storage backend. Default is an in-memory backend.
func WithBackend(b Backend) StoreOption {
	return func(s *Store) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithStoreLogger configures structured logging for store operations.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an event store. Without options it uses an in-memory backend.
//
// Example:
//
//	backend, err := eventstore.NewSQLiteBackend("events.db")
//	if err != nil {
//		return err
//	}
//	store := eventstore.New(eventstore.WithBackend(backend))
//	defer store.Close()
func New(opts ...StoreOption) *Store {
	s := &Store{
		backend: NewMemoryBackend(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Append appends the batch to the aggregate's stream and notifies
// subscribers. An empty batch is a no-op.
func (s *Store) Append(ctx context.Context, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}

	if err := s.backend.Append(ctx, aggregateID, events); err != nil {
		return fmt.Errorf("append to %s: %w", aggregateID, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		for _, e := range events {
			e.AggregateID = aggregateID
			select {
			case ch <- e:
			default:
				s.logger.DebugContext(ctx, "subscriber channel full, dropping event",
					logger.AggregateID(aggregateID),
					logger.EventID(e.ID))
			}
		}
	}
	return nil
}

// Subscribe registers a new subscriber and returns its event channel.
// The channel is closed when the store closes.
func (s *Store) Subscribe(buffer int) <-chan Event {
	if buffer < 0 {
		buffer = 0
	}

	ch := make(chan Event, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Close closes all subscriber channels. Further appends fail with
// ErrStoreClosed; reads remain available.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

// GetEvents returns the aggregate's full stream in insertion order.
func (s *Store) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	return s.backend.GetEvents(ctx, aggregateID)
}

// GetAllEvents returns every event across every stream.
func (s *Store) GetAllEvents(ctx context.Context) ([]Event, error) {
	return s.backend.GetAllEvents(ctx)
}

// GetEventsAfter returns the aggregate's events at index >= version.
func (s *Store) GetEventsAfter(ctx context.Context, aggregateID string, version uint64) ([]Event, error) {
	return s.backend.GetEventsAfter(ctx, aggregateID, version)
}

// SaveSnapshot stores a snapshot of the aggregate at the given version.
func (s *Store) SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error {
	return s.backend.SaveSnapshot(ctx, aggregateID, state, version)
}

// GetLatestSnapshot returns the most recent snapshot for the aggregate.
func (s *Store) GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error) {
	return s.backend.GetLatestSnapshot(ctx, aggregateID)
}

// Flush persists any buffered backend writes.
func (s *Store) Flush(ctx context.Context) error {
	return s.backend.Flush(ctx)
}

// Stats reports backend statistics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	return s.backend.Stats(ctx)
}
