package router

import "errors"

var (
	// ErrHandlerNotFound is returned when no handler is registered under the requested name.
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrAdapterNotFound is returned when no adapter matches the requested protocol name.
	ErrAdapterNotFound = errors.New("protocol adapter not found")

	// ErrNoMatchingRoute is returned by the REST adapter when no route matches the request.
	ErrNoMatchingRoute = errors.New("no matching route")

	// ErrInvalidRequest is returned when an adapter cannot parse its input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidMethod is returned when a route is registered with an unsupported HTTP method.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrDuplicateRoute is returned when route metadata collides with an existing registration.
	ErrDuplicateRoute = errors.New("duplicate route")
)
