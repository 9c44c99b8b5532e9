package shutdown

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Task is a join handle for a spawned task.
type Task struct {
	name string
	done chan struct{}
}

// Name returns the task's label.
func (t *Task) Name() string { return t.name }

// Done returns a channel closed when the task returns.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task returns.
func (t *Task) Wait() {
	<-t.done
}

// ResultTask is a join handle for a task that produces a value. Await yields
// the value with ok = true, or the zero value with ok = false when shutdown
// fired before the task completed.
type ResultTask[T any] struct {
	done   chan struct{}
	result T
	ok     bool
}

// Await blocks until the task completes or shutdown wins the race.
func (t *ResultTask[T]) Await() (T, bool) {
	<-t.done
	return t.result, t.ok
}

// Spawner launches tasks wired to a GracefulShutdown: every task receives a
// context cancelled when shutdown triggers. Tasks are not forcibly aborted;
// they observe cancellation and return cooperatively.
type Spawner struct {
	shutdown *GracefulShutdown
	logger   *slog.Logger

	wg sync.WaitGroup
}

// SpawnerOption configures a Spawner.
type SpawnerOption func(*Spawner)

// WithSpawnerLogger configures structured logging for task lifecycles.
func WithSpawnerLogger(logger *slog.Logger) SpawnerOption {
	return func(s *Spawner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpawner creates a spawner tied to the given coordinator.
func NewSpawner(shutdown *GracefulShutdown, opts ...SpawnerOption) *Spawner {
	s := &Spawner{
		shutdown: shutdown,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Spawn runs fn in a background goroutine and returns its join handle. The
// task's context is cancelled when shutdown triggers.
func (s *Spawner) Spawn(name string, fn func(ctx context.Context)) *Task {
	task := &Task{name: name, done: make(chan struct{})}

	s.wg.Add(1)
	go func() {
		defer close(task.done)
		defer s.wg.Done()

		s.logger.Debug("task started", slog.String("task", name))
		fn(s.shutdown.Token().Context())
		s.logger.Debug("task finished", slog.String("task", name))
	}()

	return task
}

// SpawnBackground runs fn detached; the caller does not await it.
func (s *Spawner) SpawnBackground(name string, fn func(ctx context.Context)) {
	s.Spawn(name, fn)
}

// WaitAll blocks until every spawned task has returned.
func (s *Spawner) WaitAll() {
	s.wg.Wait()
}

// SpawnWithResult runs fn and returns a handle racing its completion against
// shutdown. When shutdown fires first, Await yields ok = false and fn's
// context is cancelled; fn is left to unwind cooperatively.
func SpawnWithResult[T any](s *Spawner, name string, fn func(ctx context.Context) T) *ResultTask[T] {
	task := &ResultTask[T]{done: make(chan struct{})}
	token := s.shutdown.Token()

	s.wg.Add(1)
	go func() {
		defer close(task.done)
		defer s.wg.Done()

		result, ok, _ := RunUntilShutdown(context.Background(), token,
			func(ctx context.Context) (T, error) {
				return fn(ctx), nil
			})
		if !ok {
			s.logger.Debug("task cancelled before completion", slog.String("task", name))
			return
		}
		task.result = result
		task.ok = true
	}()

	return task
}
