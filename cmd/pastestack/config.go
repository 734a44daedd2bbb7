package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastestack/internal/clip"
	"go.klb.dev/pastestack/internal/config"
	"go.klb.dev/pastestack/internal/logging"
	"go.klb.dev/pastestack/internal/store"
)

// envKeyReplacer maps flag names like max-retained to PASTESTACK_MAX_RETAINED.
var envKeyReplacer = strings.NewReplacer("-", "_")

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and PASTESTACK_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → PASTESTACK_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("pastestack")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/pastestack/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/pastestack", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("PASTESTACK")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
	cmd.Flags().String("log-file", "", "append logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStoreFlags adds the history database flags to a command.
func addStoreFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().String("db", d.DB, "history database path")
	cmd.Flags().String("driver", d.Driver, "sqlite driver: sqlite3 (cgo) | sqlite (pure Go)")
	cmd.Flags().Int("max-retained", d.MaxRetained, "number of distinct events kept")
}

// addBackendFlag adds the --backend flag to a command.
func addBackendFlag(cmd *cobra.Command) {
	cmd.Flags().String("backend", config.BackendSystem, "clipboard backend: system|memory")
}

// setupLogging reads the logging keys from v and installs the default
// slog logger. The caller closes the result when the command ends.
func setupLogging(v *viper.Viper) (io.Closer, error) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	fallback := slog.LevelInfo
	if interactive {
		fallback = slog.LevelDebug
	}
	return logging.Setup(logging.Options{
		Format: logging.ParseFormat(v.GetString("log-format")),
		Level:  logging.ParseLevel(v.GetString("log-level"), fallback),
		File:   v.GetString("log-file"),
	})
}

// loadConfig resolves the typed configuration from v. Keys a command does
// not register keep their defaults.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg := config.Default()
	if v.IsSet("db") {
		cfg.DB = v.GetString("db")
	}
	if v.IsSet("driver") {
		cfg.Driver = v.GetString("driver")
	}
	if v.IsSet("max-retained") {
		cfg.MaxRetained = v.GetInt("max-retained")
	}
	if v.IsSet("interval") {
		cfg.Interval = v.GetDuration("interval")
	}
	if v.IsSet("backend") {
		cfg.Backend = v.GetString("backend")
	}
	cfg.ExitOnError = v.GetBool("exit-on-error")

	if err := cfg.Normalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the history database described by cfg.
func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.DB, cfg.StoreOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", cfg.DB, err)
	}
	return st, nil
}

// newBackend returns the clipboard backend named by cfg.
func newBackend(cfg config.Config) clip.Backend {
	if cfg.Backend == config.BackendMemory {
		return clip.NewMemory()
	}
	return clip.New()
}
