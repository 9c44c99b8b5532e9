package router

import (
	"encoding/json"
	"fmt"
	"sync"
)

// RouteMetadata describes a registered route for documentation generation.
// Schemas are opaque JSON consumed by external generators; this layer does
// not validate their content.
type RouteMetadata struct {
	// Path is the route path (e.g. "/users", "/users/{id}") for REST, the
	// field name for GraphQL, or "Service.Method" for gRPC.
	Path string `json:"path"`

	// Method is the HTTP verb for REST routes, "query"/"mutation" for
	// GraphQL, or the call kind ("unary", "server_streaming", ...) for gRPC.
	Method string `json:"method"`

	// Protocol is one of "rest", "graphql", "grpc".
	Protocol string `json:"protocol"`

	// Description is optional free-form documentation text.
	Description string `json:"description,omitempty"`

	// RequestSchema is an optional JSON Schema for the request payload.
	RequestSchema json.RawMessage `json:"request_schema,omitempty"`

	// ResponseSchema is an optional JSON Schema for the response payload.
	ResponseSchema json.RawMessage `json:"response_schema,omitempty"`
}

// NewRouteMetadata creates metadata for a route.
func NewRouteMetadata(path, method, protocol string) RouteMetadata {
	return RouteMetadata{
		Path:     path,
		Method:   method,
		Protocol: protocol,
	}
}

// WithDescription returns a copy with the description set.
func (m RouteMetadata) WithDescription(description string) RouteMetadata {
	m.Description = description
	return m
}

// WithRequestSchema returns a copy with the request schema set.
func (m RouteMetadata) WithRequestSchema(schema json.RawMessage) RouteMetadata {
	m.RequestSchema = schema
	return m
}

// WithResponseSchema returns a copy with the response schema set.
func (m RouteMetadata) WithResponseSchema(schema json.RawMessage) RouteMetadata {
	m.ResponseSchema = schema
	return m
}

type routeKey struct {
	protocol string
	path     string
	method   string
}

// MetadataStore maps (protocol, path, method) to route metadata with a
// reverse lookup from handler name. Metadata is read-only after registration.
type MetadataStore struct {
	mu      sync.RWMutex
	routes  map[routeKey]RouteMetadata
	byName  map[string][]RouteMetadata
	ordered []routeKey
}

// NewMetadataStore creates an empty metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		routes: make(map[routeKey]RouteMetadata),
		byName: make(map[string][]RouteMetadata),
	}
}

// Add records metadata for a handler. Registering the same
// (protocol, path, method) tuple twice is rejected so that documentation
// generation stays injective.
func (s *MetadataStore) Add(handlerName string, m RouteMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := routeKey{protocol: m.Protocol, path: m.Path, method: m.Method}
	if _, exists := s.routes[key]; exists {
		return fmt.Errorf("%w: %s %s %s", ErrDuplicateRoute, m.Protocol, m.Method, m.Path)
	}
	s.routes[key] = m
	s.byName[handlerName] = append(s.byName[handlerName], m)
	s.ordered = append(s.ordered, key)
	return nil
}

// Lookup returns the metadata registered for (protocol, path, method).
func (s *MetadataStore) Lookup(protocol, path, method string) (RouteMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.routes[routeKey{protocol: protocol, path: path, method: method}]
	return m, ok
}

// ByHandler returns all route metadata registered for a handler name.
func (s *MetadataStore) ByHandler(handlerName string) []RouteMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	routes := s.byName[handlerName]
	out := make([]RouteMetadata, len(routes))
	copy(out, routes)
	return out
}

// All returns every registered route in registration order.
func (s *MetadataStore) All() []RouteMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RouteMetadata, 0, len(s.ordered))
	for _, key := range s.ordered {
		out = append(out, s.routes[key])
	}
	return out
}

// Count returns the number of registered routes.
func (s *MetadataStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.routes)
}
