// Package config resolves pkb settings from built-in defaults, an optional
// YAML file and PKB_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the cli package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Maxsatbek/my-home/internal/store"
)

// Environment variables.
const (
	EnvConfig        = "PKB_CONFIG"
	EnvDatabase      = "PKB_DB"
	EnvDefaultsFile  = "PKB_DEFAULTS"
	EnvKeepSnapshots = "PKB_KEEP_SNAPSHOTS"
	EnvLogLevel      = "PKB_LOG_LEVEL"
	EnvIntervalDays  = "PKB_INTERVAL_DAYS"
)

// DefaultDatabase is the database path used when nothing else is configured.
const DefaultDatabase = "pkb.db"

// LogLevels are the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config holds resolved settings.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database"`

	// DefaultsFile replaces the bundled default dataset when set.
	DefaultsFile string `yaml:"defaults_file"`

	// KeepSnapshots is how many snapshots the store retains.
	KeepSnapshots int `yaml:"keep_snapshots"`

	// LogLevel is one of LogLevels.
	LogLevel string `yaml:"log_level"`

	// IntervalDays overrides the database review interval when positive.
	IntervalDays int `yaml:"interval_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:      DefaultDatabase,
		KeepSnapshots: store.DefaultKeep,
		LogLevel:      "info",
	}
}

// Load resolves the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then the environment. The result is
// validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}
	cfg, err := cfg.ApplyEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML file over base. Unknown keys are rejected.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data, base)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over base with strict field validation (catches typos
// like "keep_snapshot:" vs "keep_snapshots:"). An empty document leaves
// base unchanged.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays PKB_* variables found by lookup.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup(EnvDefaultsFile); ok && v != "" {
		c.DefaultsFile = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	var err error
	if c.KeepSnapshots, err = envInt(lookup, EnvKeepSnapshots, c.KeepSnapshots); err != nil {
		return Config{}, err
	}
	if c.IntervalDays, err = envInt(lookup, EnvIntervalDays, c.IntervalDays); err != nil {
		return Config{}, err
	}
	return c, nil
}

func envInt(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("database path is required")
	}
	if c.KeepSnapshots < 1 {
		return fmt.Errorf("keep_snapshots must be at least 1, got %d", c.KeepSnapshots)
	}
	if c.IntervalDays < 0 {
		return fmt.Errorf("interval_days must not be negative, got %d", c.IntervalDays)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q: must be one of %v", s, LogLevels)
	}
}

// Level returns the configured slog level, Info when unparseable.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// StoreOptions translates the configuration into store options. The
// defaults file, when set, is read here.
func (c Config) StoreOptions() ([]store.Option, error) {
	opts := []store.Option{store.WithKeep(c.KeepSnapshots)}
	if c.DefaultsFile != "" {
		data, err := os.ReadFile(c.DefaultsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read defaults file: %w", err)
		}
		opts = append(opts, store.WithDefaults(data))
	}
	return opts, nil
}
