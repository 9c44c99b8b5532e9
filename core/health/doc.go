// Package health aggregates dependency checks into a JSON health report and
// serves the standard probe endpoints.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/health"
//
//	reporter := health.NewReporter()
//	reporter.AddCheck("postgres", backend.Healthcheck())
//	reporter.AddCheck("redis", func(ctx context.Context) error {
//		return client.Ping(ctx).Err()
//	})
//
//	mux.Handle("/", health.Handler(reporter))
//
// The handler serves /health and /healthz with the aggregate report (200
// when every check passes, 503 otherwise) and /ready, /readyz, /live,
// /livez as static 200s unless the host overrides readiness to aggregate.
//
// The framework does not own a listener; mount the handler on whatever
// server the host runs.
package health
