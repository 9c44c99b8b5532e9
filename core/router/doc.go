// Package router provides protocol-agnostic request routing: handlers are
// registered once by name and exposed simultaneously over REST, GraphQL, and
// gRPC through pluggable protocol adapters.
//
// A handler is an async callable taking an opaque payload string and
// returning a payload string or an error. Adapters translate protocol-shaped
// requests into handler calls and shape the results back into the protocol's
// response format.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/router"
//
//	r := router.New()
//	r.Register("get_user", func(ctx context.Context, payload string) (string, error) {
//		return "User data", nil
//	})
//
//	rest := router.NewRESTAdapter(r.Registry())
//	rest.Route("GET", "/users/:id", "get_user")
//	r.AddAdapter(rest)
//
//	gql := router.NewGraphQLAdapter(r.Registry())
//	gql.Query("user", "get_user")
//	r.AddAdapter(gql)
//
//	grpc := router.NewGRPCAdapter(r.Registry())
//	grpc.Unary("UserService", "GetUser", "get_user")
//	r.AddAdapter(grpc)
//
//	out, err := r.RouteRequest(ctx, "rest", "GET /users/42")
//
// The router does not own a network listener. Hosts terminate transport
// themselves and hand the adapter-level request strings to RouteRequest, or
// bypass protocol translation entirely with CallHandler for in-process
// dispatch.
//
// # Documentation Generation
//
// Route metadata registered alongside handlers feeds the documentation
// generators: GenerateOpenAPI emits an OpenAPI 3.1 document for REST routes,
// GraphQLAdapter.GenerateSchema emits SDL, and GRPCAdapter.GenerateProto
// emits a .proto descriptor.
package router
