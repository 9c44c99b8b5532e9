package router

import "context"

// Adapter translates protocol-specific requests into handler calls.
//
// An adapter is responsible for parsing the incoming request format,
// extracting handler inputs, invoking the handler through the shared
// registry, and shaping the result back into the protocol's response format.
type Adapter interface {
	// Name identifies the protocol this adapter serves (e.g. "rest",
	// "graphql", "grpc"). The router dispatches by matching this name.
	Name() string

	// Handle processes a protocol-shaped request string and returns the
	// protocol-shaped response.
	Handle(ctx context.Context, request string) (string, error)
}
