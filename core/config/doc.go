// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct
// fields.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/config"
//
//	type EventStoreConfig struct {
//		Path          string        `env:"EVENTSTORE_PATH" envDefault:"events.db"`
//		FlushInterval time.Duration `env:"EVENTSTORE_FLUSH_INTERVAL" envDefault:"30s"`
//	}
//
//	func main() {
//		var cfg EventStoreConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 EventStoreConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 EventStoreConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently.
package config
