package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional
// expiration. A zero TTL means the entry does not expire.
type Cache interface {
	// Get returns the value stored under key. The boolean reports whether
	// the key exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists reports whether the key exists and has not expired.
	Exists(ctx context.Context, key string) (bool, error)
}
