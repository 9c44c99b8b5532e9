// Package cache provides a byte-oriented cache abstraction with in-memory
// and Redis implementations.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/cache"
//
//	c := cache.NewMemory()
//	defer c.Stop()
//
//	_ = c.Set(ctx, "user:42", payload, time.Minute)
//	value, found, err := c.Get(ctx, "user:42")
//
// The Redis implementation wraps a go-redis client:
//
//	c := cache.NewRedis(client)
//	healthCheck := cache.RedisHealthcheck(client)
//
// Values are opaque byte slices; hosts choose the serialization.
package cache
