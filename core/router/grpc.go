package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GRPCCallKind classifies a gRPC method's streaming mode.
type GRPCCallKind string

const (
	CallKindUnary           GRPCCallKind = "unary"
	CallKindServerStreaming GRPCCallKind = "server_streaming"
	CallKindClientStreaming GRPCCallKind = "client_streaming"
	CallKindBidiStreaming   GRPCCallKind = "bidi_streaming"
)

// gRPC status tokens recognized at the start of handler error messages.
// Any other failure maps to INTERNAL.
var grpcStatusTokens = []string{
	"NOT_FOUND",
	"INVALID_ARGUMENT",
	"UNIMPLEMENTED",
	"INTERNAL",
	"UNAVAILABLE",
	"UNAUTHENTICATED",
}

// GRPCError carries a gRPC status code alongside an error message.
type GRPCError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *GRPCError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type grpcMethod struct {
	service     string
	method      string
	kind        GRPCCallKind
	handlerName string
}

// GRPCAdapter dispatches "<Service>.<Method>:<payload>" request strings to
// handlers. A transport layer maps gRPC frames to this form; the adapter
// itself is wire-agnostic.
type GRPCAdapter struct {
	registry *Registry
	metadata *MetadataStore
	methods  map[string]grpcMethod
	// Registration order, for deterministic proto output.
	order []string
}

// GRPCOption configures a GRPCAdapter.
type GRPCOption func(*GRPCAdapter)

// WithGRPCMetadata attaches a metadata store; registered methods are
// recorded into it for documentation generation.
func WithGRPCMetadata(store *MetadataStore) GRPCOption {
	return func(a *GRPCAdapter) {
		if store != nil {
			a.metadata = store
		}
	}
}

// NewGRPCAdapter creates a gRPC adapter dispatching into the given registry.
func NewGRPCAdapter(registry *Registry, opts ...GRPCOption) *GRPCAdapter {
	a := &GRPCAdapter{
		registry: registry,
		methods:  make(map[string]grpcMethod),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name implements Adapter.
func (a *GRPCAdapter) Name() string { return "grpc" }

// Unary registers a unary method resolved by the named handler.
func (a *GRPCAdapter) Unary(service, method, handlerName string) error {
	return a.register(service, method, CallKindUnary, handlerName)
}

// ServerStreaming registers a server-streaming method.
func (a *GRPCAdapter) ServerStreaming(service, method, handlerName string) error {
	return a.register(service, method, CallKindServerStreaming, handlerName)
}

// ClientStreaming registers a client-streaming method.
func (a *GRPCAdapter) ClientStreaming(service, method, handlerName string) error {
	return a.register(service, method, CallKindClientStreaming, handlerName)
}

// BidiStreaming registers a bidirectional-streaming method.
func (a *GRPCAdapter) BidiStreaming(service, method, handlerName string) error {
	return a.register(service, method, CallKindBidiStreaming, handlerName)
}

func (a *GRPCAdapter) register(service, method string, kind GRPCCallKind, handlerName string) error {
	key := service + "." + method
	if a.metadata != nil {
		if err := a.metadata.Add(handlerName, NewRouteMetadata(key, string(kind), "grpc")); err != nil {
			return err
		}
	}

	if _, exists := a.methods[key]; !exists {
		a.order = append(a.order, key)
	}
	a.methods[key] = grpcMethod{
		service:     service,
		method:      method,
		kind:        kind,
		handlerName: handlerName,
	}
	return nil
}

// GenerateProto emits a .proto descriptor enumerating registered services
// and methods. Requests and responses are typed as an opaque bytes payload
// at this level.
func (a *GRPCAdapter) GenerateProto() string {
	var b strings.Builder
	b.WriteString("syntax = \"proto3\";\n\n")
	b.WriteString("message Payload {\n  bytes data = 1;\n}\n")

	// Group methods by service, preserving registration order.
	var services []string
	methodsByService := make(map[string][]grpcMethod)
	for _, key := range a.order {
		m := a.methods[key]
		if _, seen := methodsByService[m.service]; !seen {
			services = append(services, m.service)
		}
		methodsByService[m.service] = append(methodsByService[m.service], m)
	}

	for _, service := range services {
		fmt.Fprintf(&b, "\nservice %s {\n", service)
		for _, m := range methodsByService[service] {
			req, resp := "Payload", "Payload"
			switch m.kind {
			case CallKindServerStreaming:
				resp = "stream Payload"
			case CallKindClientStreaming:
				req = "stream Payload"
			case CallKindBidiStreaming:
				req, resp = "stream Payload", "stream Payload"
			}
			fmt.Fprintf(&b, "  rpc %s (%s) returns (%s);\n", m.method, req, resp)
		}
		b.WriteString("}\n")
	}

	return b.String()
}

// Handle implements Adapter. The request wire form is
// "<Service>.<Method>:<payload>"; the response string is the handler output
// verbatim. Handler error messages beginning with a recognized status token
// keep that status; other failures map to INTERNAL.
func (a *GRPCAdapter) Handle(ctx context.Context, request string) (string, error) {
	target, payload, ok := strings.Cut(request, ":")
	if !ok {
		// A request without a payload separator is still a valid call with
		// an empty payload.
		target = request
	}

	target = strings.TrimSpace(target)
	dot := strings.LastIndexByte(target, '.')
	if dot <= 0 || dot == len(target)-1 {
		return "", &GRPCError{Code: "INVALID_ARGUMENT", Message: fmt.Sprintf("malformed method target %q", target)}
	}

	m, exists := a.methods[target]
	if !exists {
		return "", &GRPCError{Code: "NOT_FOUND", Message: fmt.Sprintf("unknown method %s", target)}
	}

	out, err := a.registry.Call(ctx, m.handlerName, payload)
	if err != nil {
		return "", mapGRPCError(err)
	}
	return out, nil
}

func mapGRPCError(err error) *GRPCError {
	var grpcErr *GRPCError
	if errors.As(err, &grpcErr) {
		return grpcErr
	}
	if errors.Is(err, ErrHandlerNotFound) {
		return &GRPCError{Code: "NOT_FOUND", Message: err.Error()}
	}

	msg := err.Error()
	for _, token := range grpcStatusTokens {
		if strings.HasPrefix(msg, token) {
			return &GRPCError{Code: token, Message: strings.TrimLeft(strings.TrimPrefix(msg, token), ": ")}
		}
	}
	return &GRPCError{Code: "INTERNAL", Message: msg}
}
