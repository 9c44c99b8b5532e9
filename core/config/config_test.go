package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/config"
)

// Environment-dependent tests cannot run in parallel.

type storeConfig struct {
	Path          string        `env:"TEST_EVENTSTORE_PATH" envDefault:"events.db"`
	FlushInterval time.Duration `env:"TEST_EVENTSTORE_FLUSH_INTERVAL" envDefault:"30s"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg storeConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "events.db", cfg.Path)
	assert.Equal(t, 30*time.Second, cfg.FlushInterval)
}

func TestLoadCachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CACHED_VALUE" envDefault:"first"`
	}

	t.Setenv("TEST_CACHED_VALUE", "first")
	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// A changed environment is not observed: the type is cached.
	t.Setenv("TEST_CACHED_VALUE", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoadRequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.Error(t, err)
}

func TestMustLoadPanicsOnFailure(t *testing.T) {
	type mustConfig struct {
		Token string `env:"TEST_MUST_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg mustConfig
		config.MustLoad(&cfg)
	})
}
