package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/all-source-os/allframe/core/logger"
)

// Router composes the handler registry, route metadata, and protocol
// adapters. One handler set is shared by every adapter; requests are
// dispatched by protocol name.
type Router struct {
	registry *Registry
	metadata *MetadataStore
	logger   *slog.Logger

	mu       sync.RWMutex
	adapters map[string]Adapter
}

// Option configures a Router.
type Option func(*Router)

// WithLogger configures structured logging for request dispatch.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a router with an empty handler registry and metadata store.
//
// Example:
//
//	r := router.New()
//	r.Register("get_user", getUserHandler)
//	r.AddAdapter(router.NewRESTAdapter(r.Registry()))
func New(opts ...Option) *Router {
	r := &Router{
		registry: NewRegistry(),
		metadata: NewMetadataStore(),
		adapters: make(map[string]Adapter),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Registry returns the shared handler registry. Adapters hold this reference
// immutably; they do not own it.
func (r *Router) Registry() *Registry { return r.registry }

// Metadata returns the shared route metadata store.
func (r *Router) Metadata() *MetadataStore { return r.metadata }

// Register stores a handler under the given name. A duplicate name
// overwrites the previous entry.
func (r *Router) Register(name string, h Handler) {
	r.registry.Register(name, h)
}

// AddAdapter registers a protocol adapter under its Name.
func (r *Router) AddAdapter(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[a.Name()] = a
}

// RouteRequest dispatches a protocol-shaped request string through the
// adapter registered for the protocol name.
func (r *Router) RouteRequest(ctx context.Context, protocol, request string) (string, error) {
	r.mu.RLock()
	a, ok := r.adapters[protocol]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAdapterNotFound, protocol)
	}

	out, err := a.Handle(ctx, request)
	if err != nil {
		r.logger.DebugContext(ctx, "request failed",
			logger.Protocol(protocol),
			logger.Error(err))
		return "", err
	}
	return out, nil
}

// CallHandler invokes a handler directly, bypassing protocol translation.
// In-process hosts (desktop IPC, tool servers) use this path.
func (r *Router) CallHandler(ctx context.Context, name, payload string) (string, error) {
	return r.registry.Call(ctx, name, payload)
}
