// Package di provides lazy-initialization primitives for dependency
// injection: single-initialization async cells and a container that warms
// them up concurrently.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/di"
//
//	pool := di.NewLazyProvider(func(ctx context.Context) (*pgxpool.Pool, error) {
//		return pgxpool.New(ctx, connString)
//	})
//
//	// First call runs the factory; concurrent callers share the one run.
//	p, err := pool.Get(ctx)
//
// Factory failures are not cached: the slot stays empty and the next Get
// retries. Successful values are cached for the provider's lifetime.
//
// A container warms up every registered provider in parallel at startup:
//
//	container := di.NewLazyContainer()
//	di.RegisterLazy(container, "db", dbFactory)
//	di.RegisterLazy(container, "cache", cacheFactory)
//	if err := container.WarmUp(ctx); err != nil {
//		log.Fatal(err)
//	}
package di
