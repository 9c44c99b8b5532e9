package eventstore

import "errors"

var (
	// ErrSnapshotsUnsupported is returned by backends without snapshot support.
	ErrSnapshotsUnsupported = errors.New("snapshots not supported by this backend")

	// ErrSnapshotNotFound is returned when no snapshot exists for an aggregate.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrStoreClosed is returned when appending to a closed store.
	ErrStoreClosed = errors.New("event store closed")
)
