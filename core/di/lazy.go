package di

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory produces a dependency. It runs at most once concurrently per
// provider; the winning call's context is the one observed by the factory.
type Factory[T any] func(ctx context.Context) (T, error)

// LazyProvider is a single-initialization async cell. The slot transitions
// once from empty to filled with the factory's result; concurrent Get calls
// race into the slot, the winner runs the factory, and losers wait for its
// completion and observe the same result.
//
// A factory failure leaves the slot empty and is returned to every caller
// sharing that run; subsequent Get calls retry.
type LazyProvider[T any] struct {
	factory Factory[T]
	group   singleflight.Group

	mu     sync.RWMutex
	value  T
	filled bool
}

// NewLazyProvider creates a provider around the given factory.
func NewLazyProvider[T any](factory Factory[T]) *LazyProvider[T] {
	return &LazyProvider[T]{factory: factory}
}

// Get returns the slot's value, initializing it on first call.
func (p *LazyProvider[T]) Get(ctx context.Context) (T, error) {
	p.mu.RLock()
	if p.filled {
		defer p.mu.RUnlock()
		return p.value, nil
	}
	p.mu.RUnlock()

	out, err, _ := p.group.Do("init", func() (any, error) {
		// A racer may have filled the slot between the fast path and here.
		p.mu.RLock()
		if p.filled {
			defer p.mu.RUnlock()
			return p.value, nil
		}
		p.mu.RUnlock()

		value, err := p.factory(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.value = value
		p.filled = true
		p.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// IsInitialized reports whether the slot is filled, without initializing it.
func (p *LazyProvider[T]) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.filled
}

// Init forces initialization, discarding the value. It implements the
// type-erased initializer used by LazyContainer.
func (p *LazyProvider[T]) Init(ctx context.Context) error {
	_, err := p.Get(ctx)
	return err
}
