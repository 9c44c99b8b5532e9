package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// HTTPError carries an HTTP status code alongside an error message. REST
// handlers may return it to control the response status explicitly instead
// of relying on message classification.
type HTTPError struct {
	Status  int
	Message string
}

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

var restMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {},
	"PATCH": {}, "HEAD": {}, "OPTIONS": {},
}

type restRoute struct {
	method      string
	path        string
	segments    []string
	handlerName string
}

// RESTAdapter dispatches "<METHOD> <PATH>" request strings to handlers by
// matching registered routes. Path segments of the form "{param}" or
// ":param" match any non-slash run; matched values and query parameters are
// passed to the handler as a JSON object payload.
type RESTAdapter struct {
	registry *Registry
	metadata *MetadataStore
	routes   []restRoute
}

// RESTOption configures a RESTAdapter.
type RESTOption func(*RESTAdapter)

// WithRESTMetadata attaches a metadata store; registered routes are recorded
// into it for documentation generation.
func WithRESTMetadata(store *MetadataStore) RESTOption {
	return func(a *RESTAdapter) {
		if store != nil {
			a.metadata = store
		}
	}
}

// NewRESTAdapter creates a REST adapter dispatching into the given registry.
func NewRESTAdapter(registry *Registry, opts ...RESTOption) *RESTAdapter {
	a := &RESTAdapter{registry: registry}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name implements Adapter.
func (a *RESTAdapter) Name() string { return "rest" }

// Route registers a REST route mapping method+path to a handler name.
// Method must be one of GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS.
func (a *RESTAdapter) Route(method, path, handlerName string) error {
	method = strings.ToUpper(method)
	if _, ok := restMethods[method]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidMethod, method)
	}

	if a.metadata != nil {
		if err := a.metadata.Add(handlerName, NewRouteMetadata(path, method, "rest")); err != nil {
			return err
		}
	}

	a.routes = append(a.routes, restRoute{
		method:      method,
		path:        path,
		segments:    splitPath(path),
		handlerName: handlerName,
	})
	return nil
}

// RouteWithMetadata registers a route together with pre-built metadata.
// The metadata's path, method, and protocol are overwritten to match the
// registration.
func (a *RESTAdapter) RouteWithMetadata(method, path, handlerName string, m RouteMetadata) error {
	method = strings.ToUpper(method)
	if _, ok := restMethods[method]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidMethod, method)
	}

	if a.metadata != nil {
		m.Path = path
		m.Method = method
		m.Protocol = "rest"
		if err := a.metadata.Add(handlerName, m); err != nil {
			return err
		}
	}

	a.routes = append(a.routes, restRoute{
		method:      method,
		path:        path,
		segments:    splitPath(path),
		handlerName: handlerName,
	})
	return nil
}

// Handle implements Adapter. The request wire form is "<METHOD> <PATH>";
// the first matching route wins. Handler errors are classified into HTTP
// statuses: messages containing "not found" map to 404, "invalid" or "bad"
// to 400, anything else to 500.
func (a *RESTAdapter) Handle(ctx context.Context, request string) (string, error) {
	method, rawPath, ok := strings.Cut(strings.TrimSpace(request), " ")
	if !ok || rawPath == "" {
		return "", NewHTTPError(400, fmt.Sprintf("invalid request: %q", request))
	}
	method = strings.ToUpper(method)

	path, rawQuery, _ := strings.Cut(rawPath, "?")
	segments := splitPath(path)

	for _, r := range a.routes {
		if r.method != method {
			continue
		}
		params, matched := matchSegments(r.segments, segments)
		if !matched {
			continue
		}

		payload, err := buildRESTPayload(params, rawQuery)
		if err != nil {
			return "", NewHTTPError(400, err.Error())
		}

		out, err := a.registry.Call(ctx, r.handlerName, payload)
		if err != nil {
			return "", classifyRESTError(err)
		}
		return out, nil
	}

	return "", NewHTTPError(404, fmt.Sprintf("no route for %s %s", method, path))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matchSegments matches request segments against a route pattern. Typed
// segments ("{param}" or ":param") capture the request segment under the
// parameter name in occurrence order.
func matchSegments(pattern, actual []string) ([][2]string, bool) {
	if len(pattern) != len(actual) {
		return nil, false
	}

	var params [][2]string
	for i, seg := range pattern {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			params = append(params, [2]string{seg[1 : len(seg)-1], actual[i]})
		case strings.HasPrefix(seg, ":"):
			params = append(params, [2]string{seg[1:], actual[i]})
		case seg != actual[i]:
			return nil, false
		}
	}
	return params, true
}

// buildRESTPayload serializes path and query parameters into the handler's
// input payload. Routes without parameters produce an empty payload.
func buildRESTPayload(params [][2]string, rawQuery string) (string, error) {
	merged := make(map[string]string, len(params))
	for _, p := range params {
		merged[p[0]] = p[1]
	}

	if rawQuery != "" {
		values, err := url.ParseQuery(rawQuery)
		if err != nil {
			return "", fmt.Errorf("invalid query string: %w", err)
		}
		for k, v := range values {
			if _, exists := merged[k]; !exists && len(v) > 0 {
				merged[k] = v[0]
			}
		}
	}

	if len(merged) == 0 {
		return "", nil
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}
	return string(data), nil
}

func classifyRESTError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "not found"):
		return NewHTTPError(404, msg)
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "bad"):
		return NewHTTPError(400, msg)
	default:
		return NewHTTPError(500, msg)
	}
}
