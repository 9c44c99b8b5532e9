package eventstore

import (
	"context"
	"fmt"
	"sync"
)

// ReplicatedStreamID is the reserved aggregate id under which the sync
// engine appends replicated batches. The "_sync/" prefix keeps it out of the
// application's aggregate namespace.
const ReplicatedStreamID = "_sync/replicated"

// SyncCursor records how much of each side has already been reconciled.
type SyncCursor struct {
	LocalVersion  uint64 `json:"local_version"`
	RemoteVersion uint64 `json:"remote_version"`
}

// SyncReport summarizes one sync pass.
type SyncReport struct {
	Pushed    int `json:"pushed"`
	Pulled    int `json:"pulled"`
	Conflicts int `json:"conflicts"`
}

// ConflictResolver merges conflicting local and remote event sets. Callers
// detect overlap externally and invoke ResolveConflicts explicitly; the sync
// pass itself is conflict-free.
type ConflictResolver interface {
	Resolve(ctx context.Context, local, remote []Event) ([]Event, error)
}

// LastWriteWins resolves conflicts by discarding local events outright.
type LastWriteWins struct{}

func (LastWriteWins) Resolve(ctx context.Context, local, remote []Event) ([]Event, error) {
	out := make([]Event, len(remote))
	copy(out, remote)
	return out, nil
}

// AppendOnly keeps all events from both sides. The caller guarantees that
// events commute.
type AppendOnly struct{}

func (AppendOnly) Resolve(ctx context.Context, local, remote []Event) ([]Event, error) {
	merged := make([]Event, 0, len(local)+len(remote))
	merged = append(merged, local...)
	merged = append(merged, remote...)
	return merged, nil
}

// ManualResolver delegates conflict resolution to a caller-provided function.
type ManualResolver func(ctx context.Context, local, remote []Event) ([]Event, error)

func (f ManualResolver) Resolve(ctx context.Context, local, remote []Event) ([]Event, error) {
	return f(ctx, local, remote)
}

// SyncEngine drives bidirectional replication between a local and a remote
// store. Only one Sync may be in flight per engine; the cursor is guarded by
// the engine's mutex.
type SyncEngine struct {
	local    *Store
	remote   *Store
	resolver ConflictResolver

	mu     sync.Mutex
	cursor SyncCursor
}

// SyncOption configures a SyncEngine.
type SyncOption func(*SyncEngine)

// WithResolver sets the conflict resolver. Default is LastWriteWins.
func WithResolver(r ConflictResolver) SyncOption {
	return func(e *SyncEngine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// NewSyncEngine creates a sync engine between two stores.
func NewSyncEngine(local, remote *Store, opts ...SyncOption) *SyncEngine {
	e := &SyncEngine{
		local:    local,
		remote:   remote,
		resolver: LastWriteWins{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Cursor returns the current sync cursor.
func (e *SyncEngine) Cursor() SyncCursor {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cursor
}

// Sync pushes new local events to the remote store and pulls new remote
// events to the local store, then advances the cursor to the new totals.
// Replicated batches are appended under ReplicatedStreamID.
func (e *SyncEngine) Sync(ctx context.Context) (SyncReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	localEvents, err := e.local.GetAllEvents(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read local events: %w", err)
	}
	remoteEvents, err := e.remote.GetAllEvents(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read remote events: %w", err)
	}

	var localNew, remoteNew []Event
	if n := uint64(len(localEvents)); n > e.cursor.LocalVersion {
		localNew = localEvents[e.cursor.LocalVersion:]
	}
	if n := uint64(len(remoteEvents)); n > e.cursor.RemoteVersion {
		remoteNew = remoteEvents[e.cursor.RemoteVersion:]
	}

	if len(localNew) > 0 {
		if err := e.remote.Append(ctx, ReplicatedStreamID, localNew); err != nil {
			return SyncReport{}, fmt.Errorf("push to remote: %w", err)
		}
	}
	if len(remoteNew) > 0 {
		if err := e.local.Append(ctx, ReplicatedStreamID, remoteNew); err != nil {
			return SyncReport{}, fmt.Errorf("pull to local: %w", err)
		}
	}

	// Advance the cursor to the post-sync totals so replicated events are
	// not re-synced on the next pass.
	localEvents, err = e.local.GetAllEvents(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read local events: %w", err)
	}
	remoteEvents, err = e.remote.GetAllEvents(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read remote events: %w", err)
	}
	e.cursor.LocalVersion = uint64(len(localEvents))
	e.cursor.RemoteVersion = uint64(len(remoteEvents))

	return SyncReport{
		Pushed:    len(localNew),
		Pulled:    len(remoteNew),
		Conflicts: 0,
	}, nil
}

// ResolveConflicts merges conflicting event sets through the configured
// resolver. Call it when both sides modified the same aggregate; the sync
// pass itself does not detect overlap.
func (e *SyncEngine) ResolveConflicts(ctx context.Context, local, remote []Event) ([]Event, error) {
	return e.resolver.Resolve(ctx, local, remote)
}
