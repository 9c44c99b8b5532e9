package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// GraphQLAdapter dispatches GraphQL document strings to handlers. The
// minimal executor reads the operation kind (query/mutation; a bare
// selection set implies query) and the outermost field name, dispatches by
// that name, and wraps the handler output in a GraphQL data envelope.
//
// Malformed input and handler failures are reported as GraphQL error
// documents, not transport errors.
type GraphQLAdapter struct {
	registry  *Registry
	metadata  *MetadataStore
	queries   map[string]string
	mutations map[string]string
	// Registration order, for deterministic schema output.
	queryOrder    []string
	mutationOrder []string
}

// GraphQLOption configures a GraphQLAdapter.
type GraphQLOption func(*GraphQLAdapter)

// WithGraphQLMetadata attaches a metadata store; registered fields are
// recorded into it for documentation generation.
func WithGraphQLMetadata(store *MetadataStore) GraphQLOption {
	return func(a *GraphQLAdapter) {
		if store != nil {
			a.metadata = store
		}
	}
}

// NewGraphQLAdapter creates a GraphQL adapter dispatching into the given registry.
func NewGraphQLAdapter(registry *Registry, opts ...GraphQLOption) *GraphQLAdapter {
	a := &GraphQLAdapter{
		registry:  registry,
		queries:   make(map[string]string),
		mutations: make(map[string]string),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name implements Adapter.
func (a *GraphQLAdapter) Name() string { return "graphql" }

// Query registers a query field resolved by the named handler.
func (a *GraphQLAdapter) Query(field, handlerName string) error {
	if a.metadata != nil {
		if err := a.metadata.Add(handlerName, NewRouteMetadata(field, "query", "graphql")); err != nil {
			return err
		}
	}

	if _, exists := a.queries[field]; !exists {
		a.queryOrder = append(a.queryOrder, field)
	}
	a.queries[field] = handlerName
	return nil
}

// Mutation registers a mutation field resolved by the named handler.
func (a *GraphQLAdapter) Mutation(field, handlerName string) error {
	if a.metadata != nil {
		if err := a.metadata.Add(handlerName, NewRouteMetadata(field, "mutation", "graphql")); err != nil {
			return err
		}
	}

	if _, exists := a.mutations[field]; !exists {
		a.mutationOrder = append(a.mutationOrder, field)
	}
	a.mutations[field] = handlerName
	return nil
}

// GenerateSchema emits SDL for the registered fields. All fields are typed
// String at this level; schema-aware hosts refine the types externally.
func (a *GraphQLAdapter) GenerateSchema() string {
	var b strings.Builder

	b.WriteString("type Query {\n")
	for _, field := range a.queryOrder {
		fmt.Fprintf(&b, "  %s: String\n", field)
	}
	b.WriteString("}\n")

	if len(a.mutationOrder) > 0 {
		b.WriteString("\ntype Mutation {\n")
		for _, field := range a.mutationOrder {
			fmt.Fprintf(&b, "  %s: String\n", field)
		}
		b.WriteString("}\n")
	}

	return b.String()
}

// Handle implements Adapter.
func (a *GraphQLAdapter) Handle(ctx context.Context, request string) (string, error) {
	op, field, err := parseGraphQLRequest(request)
	if err != nil {
		return graphqlErrors(err.Error()), nil
	}

	fields := a.queries
	if op == "mutation" {
		fields = a.mutations
	}

	handlerName, ok := fields[field]
	if !ok {
		rootType := "Query"
		if op == "mutation" {
			rootType = "Mutation"
		}
		return graphqlErrors(fmt.Sprintf("Cannot query field %q on type %q", field, rootType)), nil
	}

	out, err := a.registry.Call(ctx, handlerName, "")
	if err != nil {
		return graphqlErrors(err.Error()), nil
	}

	return fmt.Sprintf(`{"data":{%q:%q}}`, field, out), nil
}

// parseGraphQLRequest extracts the operation kind and the first field name
// from a GraphQL document. A document without a leading keyword is treated
// as a query.
func parseGraphQLRequest(request string) (op, field string, err error) {
	doc := strings.TrimSpace(request)
	if doc == "" {
		return "", "", fmt.Errorf("empty document")
	}

	op = "query"
	switch {
	case strings.HasPrefix(doc, "mutation"):
		op = "mutation"
	case strings.HasPrefix(doc, "query"):
	case strings.HasPrefix(doc, "{"):
	default:
		return "", "", fmt.Errorf("unsupported operation in document")
	}

	open := strings.IndexByte(doc, '{')
	if open < 0 {
		return "", "", fmt.Errorf("missing selection set")
	}

	rest := strings.TrimSpace(doc[open+1:])
	field = leadingIdentifier(rest)
	if field == "" {
		return "", "", fmt.Errorf("missing field in selection set")
	}

	return op, field, nil
}

func leadingIdentifier(s string) string {
	end := 0
	for end < len(s) {
		c := rune(s[end])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		end++
	}
	return s[:end]
}

func graphqlErrors(message string) string {
	return fmt.Sprintf(`{"errors":[{"message":%q}]}`, message)
}
