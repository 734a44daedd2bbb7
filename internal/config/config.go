// Package config holds the typed runtime settings shared by pastestack
// commands. Values are loaded by the CLI through viper; this package only
// defines them and their defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"go.klb.dev/pastestack/internal/capture"
	"go.klb.dev/pastestack/internal/store"
)

// Clipboard backends selectable with "backend".
const (
	BackendSystem = "system"
	BackendMemory = "memory"
)

// Config is the resolved configuration.
type Config struct {
	DB          string
	Driver      string
	Interval    time.Duration
	MaxRetained int
	Backend     string
	ExitOnError bool
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		DB:          store.DefaultPath(),
		Driver:      store.DriverCGO,
		Interval:    capture.DefaultInterval,
		MaxRetained: store.DefaultMaxRetained,
		Backend:     BackendSystem,
	}
}

// Normalize fills zero or out-of-range values with defaults and validates the
// enumerated fields.
func (c *Config) Normalize() error {
	if c.DB == "" {
		c.DB = store.DefaultPath()
	}
	if c.Interval <= 0 {
		c.Interval = capture.DefaultInterval
	}
	if c.MaxRetained <= 0 {
		c.MaxRetained = store.DefaultMaxRetained
	}

	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "":
		c.Driver = store.DriverCGO
	case store.DriverCGO, store.DriverPure:
	default:
		return fmt.Errorf("config: unknown driver %q (want %s or %s)", c.Driver, store.DriverCGO, store.DriverPure)
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = BackendSystem
	case BackendSystem, BackendMemory:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendSystem, BackendMemory)
	}
	return nil
}

// StoreOptions returns the store options implied by c.
func (c Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithDriver(c.Driver),
		store.WithMaxRetained(c.MaxRetained),
	}
}
