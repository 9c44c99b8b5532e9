package eventstore

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend stores streams in process memory behind a reader-writer
// lock. It offers no durability and is intended for tests, development, and
// as the local side of a sync pair.
type MemoryBackend struct {
	mu        sync.RWMutex
	events    map[string][]Event
	snapshots map[string]Snapshot
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		events:    make(map[string][]Event),
		snapshots: make(map[string]Snapshot),
	}
}

// Append implements Backend. The whole batch becomes visible atomically
// under the write lock.
func (b *MemoryBackend) Append(ctx context.Context, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	stream := b.events[aggregateID]
	base := uint64(len(stream))
	for i, e := range events {
		e.AggregateID = aggregateID
		e.Version = base + uint64(i)
		stream = append(stream, e)
	}
	b.events[aggregateID] = stream
	return nil
}

// GetEvents implements Backend.
func (b *MemoryBackend) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.events[aggregateID]), nil
}

// GetAllEvents implements Backend.
func (b *MemoryBackend) GetAllEvents(ctx context.Context) ([]Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var all []Event
	for _, stream := range b.events {
		all = append(all, stream...)
	}
	return all, nil
}

// GetEventsAfter implements Backend.
func (b *MemoryBackend) GetEventsAfter(ctx context.Context, aggregateID string, version uint64) ([]Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stream := b.events[aggregateID]
	if version >= uint64(len(stream)) {
		return nil, nil
	}
	return slices.Clone(stream[version:]), nil
}

// SaveSnapshot implements Backend.
func (b *MemoryBackend) SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshots[aggregateID] = Snapshot{State: slices.Clone(state), Version: version}
	return nil
}

// GetLatestSnapshot implements Backend.
func (b *MemoryBackend) GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.snapshots[aggregateID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return s, nil
}

// Flush implements Backend. Memory writes are immediately visible.
func (b *MemoryBackend) Flush(ctx context.Context) error {
	return nil
}

// Stats implements Backend.
func (b *MemoryBackend) Stats(ctx context.Context) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	for _, stream := range b.events {
		total += uint64(len(stream))
	}
	return Stats{
		TotalEvents:     total,
		TotalAggregates: uint64(len(b.events)),
		TotalSnapshots:  uint64(len(b.snapshots)),
		BackendSpecific: map[string]string{"backend_type": "memory"},
	}, nil
}
