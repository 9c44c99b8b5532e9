package eventstore

import "context"

// Backend is the storage plane of the event store. Implementations must make
// Append atomic per call: either every event in the batch becomes visible or
// none does. After a successful Append, GetEvents returns the batch as a
// contiguous suffix of the stream.
type Backend interface {
	// Append appends the ordered batch to the aggregate's stream, stamping
	// each event's AggregateID and Version. An empty batch is a no-op.
	Append(ctx context.Context, aggregateID string, events []Event) error

	// GetEvents returns the aggregate's full stream in insertion order.
	// An unknown aggregate yields an empty slice, not an error.
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)

	// GetAllEvents returns every event across every stream. Order across
	// aggregates is unspecified; within each aggregate it is preserved.
	GetAllEvents(ctx context.Context) ([]Event, error)

	// GetEventsAfter returns the aggregate's events at index >= version.
	GetEventsAfter(ctx context.Context, aggregateID string, version uint64) ([]Event, error)

	// SaveSnapshot stores a snapshot of the aggregate at the given version.
	// Backends without snapshot support return ErrSnapshotsUnsupported.
	SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error

	// GetLatestSnapshot returns the most recent snapshot for the aggregate.
	// Returns ErrSnapshotNotFound when none exists, or
	// ErrSnapshotsUnsupported when the backend has no snapshot support.
	GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error)

	// Flush persists any buffered writes.
	Flush(ctx context.Context) error

	// Stats reports storage statistics.
	Stats(ctx context.Context) (Stats, error)
}

// Stats describes a backend's contents.
type Stats struct {
	TotalEvents     uint64            `json:"total_events"`
	TotalAggregates uint64            `json:"total_aggregates"`
	TotalSnapshots  uint64            `json:"total_snapshots"`
	BackendSpecific map[string]string `json:"backend_specific,omitempty"`
}

// NoSnapshots can be embedded by backends that do not support snapshots to
// satisfy the optional part of the Backend contract.
type NoSnapshots struct{}

func (NoSnapshots) SaveSnapshot(ctx context.Context, aggregateID string, state []byte, version uint64) error {
	return ErrSnapshotsUnsupported
}

func (NoSnapshots) GetLatestSnapshot(ctx context.Context, aggregateID string) (Snapshot, error) {
	return Snapshot{}, ErrSnapshotsUnsupported
}
