package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/cache"
)

func newRedisCache(t *testing.T, opts ...cache.RedisOption) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedis(client, opts...), server
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set get round-trip", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedisCache(t)
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

		value, found, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("v"), value)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedisCache(t)
		_, found, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		t.Parallel()

		c, server := newRedisCache(t)
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		server.FastForward(2 * time.Minute)

		_, found, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete and exists", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedisCache(t)
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		require.True(t, exists)

		existed, err := c.Delete(ctx, "k")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = c.Delete(ctx, "k")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("key prefix namespaces entries", func(t *testing.T) {
		t.Parallel()

		c, server := newRedisCache(t, cache.WithKeyPrefix("allframe"))
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

		assert.True(t, server.Exists("allframe:k"))
		assert.False(t, server.Exists("k"))
	})

	t.Run("healthcheck", func(t *testing.T) {
		t.Parallel()

		server := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		check := cache.RedisHealthcheck(client)
		require.NoError(t, check(ctx))

		server.Close()
		assert.Error(t, check(ctx))
	})
}
