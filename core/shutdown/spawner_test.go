package shutdown_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/shutdown"
)

func TestSpawnerCancelsTasksOnShutdown(t *testing.T) {
	t.Parallel()

	gs := shutdown.New()
	spawner := shutdown.NewSpawner(gs)

	cancelled := make(chan struct{})
	task := spawner.Spawn("sleeper", func(ctx context.Context) {
		select {
		case <-ctx.Done():
			close(cancelled)
		case <-time.After(60 * time.Second):
		}
	})

	gs.Shutdown()

	select {
	case <-cancelled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("task did not observe cancellation within 200ms")
	}

	select {
	case <-task.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("join handle did not resolve")
	}
}

func TestSpawnWithResult(t *testing.T) {
	t.Parallel()

	t.Run("completed task yields its value", func(t *testing.T) {
		t.Parallel()

		gs := shutdown.New()
		spawner := shutdown.NewSpawner(gs)

		handle := shutdown.SpawnWithResult(spawner, "checker", func(ctx context.Context) string {
			return "all_checks_passed"
		})

		result, ok := handle.Await()
		require.True(t, ok)
		assert.Equal(t, "all_checks_passed", result)
	})

	t.Run("cancelled task yields ok false", func(t *testing.T) {
		t.Parallel()

		gs := shutdown.New()
		spawner := shutdown.NewSpawner(gs)

		started := make(chan struct{})
		handle := shutdown.SpawnWithResult(spawner, "sleeper", func(ctx context.Context) int {
			close(started)
			select {
			case <-ctx.Done():
			case <-time.After(60 * time.Second):
			}
			return 42
		})

		<-started
		gs.Shutdown()

		deadline := time.After(200 * time.Millisecond)
		done := make(chan struct{})
		var result int
		var ok bool
		go func() {
			result, ok = handle.Await()
			close(done)
		}()

		select {
		case <-done:
		case <-deadline:
			t.Fatal("handle did not resolve within 200ms of shutdown")
		}
		assert.False(t, ok)
		assert.Zero(t, result)
	})
}

func TestSpawnBackgroundAndWaitAll(t *testing.T) {
	t.Parallel()

	gs := shutdown.New()
	spawner := shutdown.NewSpawner(gs)

	var finished atomic.Int32
	for i := 0; i < 5; i++ {
		spawner.SpawnBackground("worker", func(ctx context.Context) {
			<-ctx.Done()
			finished.Add(1)
		})
	}

	gs.Shutdown()
	spawner.WaitAll()
	assert.Equal(t, int32(5), finished.Load())
}

func TestSpawnedTaskRunsToCompletionWithoutShutdown(t *testing.T) {
	t.Parallel()

	gs := shutdown.New()
	spawner := shutdown.NewSpawner(gs)

	var ran atomic.Bool
	task := spawner.Spawn("quick", func(ctx context.Context) {
		ran.Store(true)
	})
	task.Wait()

	assert.True(t, ran.Load())
	assert.Equal(t, "quick", task.Name())
}
