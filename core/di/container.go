package di

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Initializer is the type-erased face of a lazy provider, letting the
// container hold providers of different value types together.
type Initializer interface {
	Init(ctx context.Context) error
}

type containerEntry struct {
	name string
	init Initializer
}

// LazyContainer registers named lazy providers and warms them up in
// parallel.
type LazyContainer struct {
	mu      sync.Mutex
	entries []containerEntry
}

// NewLazyContainer creates an empty container.
func NewLazyContainer() *LazyContainer {
	return &LazyContainer{}
}

// Register adds a named initializer to the container.
func (c *LazyContainer) Register(name string, init Initializer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, containerEntry{name: name, init: init})
}

// RegisterLazy creates a provider from the factory, registers it under the
// name, and returns it for direct use.
func RegisterLazy[T any](c *LazyContainer, name string, factory Factory[T]) *LazyProvider[T] {
	provider := NewLazyProvider(factory)
	c.Register(name, provider)
	return provider
}

// Len returns the number of registered providers.
func (c *LazyContainer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Names returns the registered provider names in registration order.
func (c *LazyContainer) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	return names
}

// WarmUp initializes every registered provider in parallel and waits for all
// of them to finish. Every initialization runs regardless of other failures;
// the first failure is reported.
func (c *LazyContainer) WarmUp(ctx context.Context) error {
	c.mu.Lock()
	entries := make([]containerEntry, len(c.entries))
	copy(entries, c.entries)
	c.mu.Unlock()

	var g errgroup.Group
	for _, e := range entries {
		g.Go(func() error {
			if err := e.init.Init(ctx); err != nil {
				return fmt.Errorf("initialize %s: %w", e.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
