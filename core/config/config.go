package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. The first call for a given
// type reads the environment (loading .env beforehand); later calls return
// the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config target must not be nil")
	}

	// Missing .env files are not an error; explicit environment wins anyway.
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeOf(*cfg)

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse %s from environment: %w", key, err)
	}

	cache[key] = *cfg
	return nil
}

// MustLoad is Load panicking on failure; use it during startup wiring.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
