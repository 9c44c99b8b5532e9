package eventstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/eventstore"
)

func TestMemoryBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("append then read returns batch as contiguous suffix", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		require.NoError(t, b.Append(ctx, "a1", noteEvents(t, "x", "y")))

		batch := noteEvents(t, "p", "q", "r")
		require.NoError(t, b.Append(ctx, "a1", batch))

		events, err := b.GetEvents(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, e := range batch {
			assert.Equal(t, e.ID, events[2+i].ID)
		}
	})

	t.Run("versions are per-aggregate and monotonic", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		require.NoError(t, b.Append(ctx, "a1", noteEvents(t, "x", "y")))
		require.NoError(t, b.Append(ctx, "a2", noteEvents(t, "z")))
		require.NoError(t, b.Append(ctx, "a1", noteEvents(t, "w")))

		events, err := b.GetEvents(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, events, 3)
		for i, e := range events {
			assert.Equal(t, uint64(i), e.Version)
			assert.Equal(t, "a1", e.AggregateID)
		}
	})

	t.Run("empty append is a no-op", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		require.NoError(t, b.Append(ctx, "a1", nil))

		stats, err := b.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalEvents)
		assert.Zero(t, stats.TotalAggregates)
	})

	t.Run("unknown aggregate reads empty", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		events, err := b.GetEvents(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("get events after version", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		require.NoError(t, b.Append(ctx, "a1", noteEvents(t, "a", "b", "c", "d")))

		tail, err := b.GetEventsAfter(ctx, "a1", 2)
		require.NoError(t, err)
		require.Len(t, tail, 2)
		assert.Equal(t, uint64(2), tail[0].Version)

		empty, err := b.GetEventsAfter(ctx, "a1", 10)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("snapshots round-trip", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		_, err := b.GetLatestSnapshot(ctx, "a1")
		assert.ErrorIs(t, err, eventstore.ErrSnapshotNotFound)

		require.NoError(t, b.SaveSnapshot(ctx, "a1", []byte(`{"count":3}`), 3))
		snap, err := b.GetLatestSnapshot(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"count":3}`), snap.State)
		assert.Equal(t, uint64(3), snap.Version)
	})

	t.Run("get all events preserves per-stream order", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		require.NoError(t, b.Append(ctx, "a1", noteEvents(t, "1a", "1b")))
		require.NoError(t, b.Append(ctx, "a2", noteEvents(t, "2a")))

		all, err := b.GetAllEvents(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		// Cross-aggregate order is unspecified; within a stream it holds.
		var a1Versions []uint64
		for _, e := range all {
			if e.AggregateID == "a1" {
				a1Versions = append(a1Versions, e.Version)
			}
		}
		assert.Equal(t, []uint64{0, 1}, a1Versions)
	})

	t.Run("concurrent appends to distinct streams", func(t *testing.T) {
		t.Parallel()

		b := eventstore.NewMemoryBackend()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					e, err := eventstore.NewEvent(notePayload{Value: "v"})
					if err != nil {
						continue
					}
					_ = b.Append(ctx, id, []eventstore.Event{e})
				}
			}(string(rune('a' + i)))
		}
		wg.Wait()

		stats, err := b.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), stats.TotalEvents)
		assert.Equal(t, uint64(10), stats.TotalAggregates)
	})
}
