package router

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Handler is a named async callable: it receives an opaque payload string and
// returns a payload string or an error. Hosts choose the serialization; JSON
// is conventional.
type Handler func(ctx context.Context, payload string) (string, error)

// Registry stores handlers under globally unique names. Registration is
// last-write-wins: re-registering a name replaces the handler but keeps the
// name's original position in iteration order.
//
// The registry is safe for concurrent use. Handlers execute on the caller's
// goroutine; the registry performs no synchronization beyond protecting the
// map, so handlers themselves may run concurrently.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register stores a handler under the given name. A duplicate name overwrites
// the previous entry.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
}

// Unregister removes the handler registered under name. Removing an unknown
// name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; !exists {
		return
	}
	delete(r.handlers, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	return h, ok
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// Names returns handler names in first-registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Call invokes the handler registered under name with the given payload.
func (r *Registry) Call(ctx context.Context, name, payload string) (string, error) {
	h, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}
	return h(ctx, payload)
}
