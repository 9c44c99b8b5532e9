package eventstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/eventstore"
)

func TestSyncEngineBidirectional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := eventstore.New()
	remote := eventstore.New()
	engine := eventstore.NewSyncEngine(local, remote)

	require.NoError(t, local.Append(ctx, "todo-1", noteEvents(t, "a", "b")))
	require.NoError(t, remote.Append(ctx, "todo-2", noteEvents(t, "c")))

	report, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pushed)
	assert.Equal(t, 1, report.Pulled)
	assert.Zero(t, report.Conflicts)

	// Replicated batches land under the reserved stream id.
	pushed, err := remote.GetEvents(ctx, eventstore.ReplicatedStreamID)
	require.NoError(t, err)
	assert.Len(t, pushed, 2)

	pulled, err := local.GetEvents(ctx, eventstore.ReplicatedStreamID)
	require.NoError(t, err)
	assert.Len(t, pulled, 1)

	// The cursor advanced to the post-sync totals.
	cursor := engine.Cursor()
	assert.Equal(t, uint64(3), cursor.LocalVersion)
	assert.Equal(t, uint64(3), cursor.RemoteVersion)
}

func TestSyncEngineIdempotentWhenIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := eventstore.New()
	remote := eventstore.New()
	engine := eventstore.NewSyncEngine(local, remote)

	require.NoError(t, local.Append(ctx, "todo-1", noteEvents(t, "a")))

	_, err := engine.Sync(ctx)
	require.NoError(t, err)

	// Nothing new on either side: the second pass moves nothing.
	report, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Pushed)
	assert.Zero(t, report.Pulled)

	all, err := remote.GetAllEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncEngineIncrementalPasses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := eventstore.New()
	remote := eventstore.New()
	engine := eventstore.NewSyncEngine(local, remote)

	require.NoError(t, local.Append(ctx, "todo-1", noteEvents(t, "a")))
	_, err := engine.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, local.Append(ctx, "todo-1", noteEvents(t, "b")))
	report, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pushed)
	assert.Zero(t, report.Pulled)

	pushed, err := remote.GetEvents(ctx, eventstore.ReplicatedStreamID)
	require.NoError(t, err)
	assert.Len(t, pushed, 2)
}

func TestConflictResolvers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localEvents := noteEvents(t, "l1", "l2")
	remoteEvents := noteEvents(t, "r1")

	t.Run("last write wins keeps remote", func(t *testing.T) {
		t.Parallel()

		engine := eventstore.NewSyncEngine(eventstore.New(), eventstore.New(),
			eventstore.WithResolver(eventstore.LastWriteWins{}))

		merged, err := engine.ResolveConflicts(ctx, localEvents, remoteEvents)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.Equal(t, remoteEvents[0].ID, merged[0].ID)
	})

	t.Run("append only keeps both sides", func(t *testing.T) {
		t.Parallel()

		engine := eventstore.NewSyncEngine(eventstore.New(), eventstore.New(),
			eventstore.WithResolver(eventstore.AppendOnly{}))

		merged, err := engine.ResolveConflicts(ctx, localEvents, remoteEvents)
		require.NoError(t, err)
		require.Len(t, merged, 3)
		assert.Equal(t, localEvents[0].ID, merged[0].ID)
		assert.Equal(t, remoteEvents[0].ID, merged[2].ID)
	})

	t.Run("manual resolver delegates to the callback", func(t *testing.T) {
		t.Parallel()

		engine := eventstore.NewSyncEngine(eventstore.New(), eventstore.New(),
			eventstore.WithResolver(eventstore.ManualResolver(
				func(ctx context.Context, local, remote []eventstore.Event) ([]eventstore.Event, error) {
					return local[:1], nil
				})))

		merged, err := engine.ResolveConflicts(ctx, localEvents, remoteEvents)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.Equal(t, localEvents[0].ID, merged[0].ID)
	})
}
