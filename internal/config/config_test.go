package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maxsatbek/my-home/internal/store"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "pkb.db", cfg.Database)
	assert.Equal(t, store.DefaultKeep, cfg.KeepSnapshots)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.NoError(t, cfg.Validate())
}

func TestParse_OverBase(t *testing.T) {
	cfg, err := Parse([]byte("database: /tmp/kb.db\nkeep_snapshots: 5\nlog_level: debug\n"), Default())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb.db", cfg.Database)
	assert.Equal(t, 5, cfg.KeepSnapshots)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Zero(t, cfg.IntervalDays)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil, Default())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("keep_snapshot: 5\n"), Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep_snapshot")
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Default().ApplyEnv(env(map[string]string{
		EnvDatabase:      "env.db",
		EnvKeepSnapshots: " 7 ",
		EnvLogLevel:      "WARN",
		EnvIntervalDays:  "14",
		EnvDefaultsFile:  "seed.json",
	}))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Database:      "env.db",
		DefaultsFile:  "seed.json",
		KeepSnapshots: 7,
		LogLevel:      "warn",
		IntervalDays:  14,
	}, cfg)
}

func TestApplyEnv_EmptyValuesKeepBase(t *testing.T) {
	cfg, err := Default().ApplyEnv(env(map[string]string{EnvDatabase: "", EnvKeepSnapshots: ""}))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_BadInteger(t *testing.T) {
	_, err := Default().ApplyEnv(env(map[string]string{EnvIntervalDays: "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvIntervalDays)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "pkb.yaml", "database: file.db\ninterval_days: 5\n")
	t.Setenv(EnvDatabase, "env.db")
	t.Setenv(EnvIntervalDays, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database)
	assert.Equal(t, 5, cfg.IntervalDays)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, "bad.yaml", "keep_snapshots: 0\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep_snapshots")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database", func(c *Config) { c.Database = "" }},
		{"zero keep", func(c *Config) { c.KeepSnapshots = 0 }},
		{"negative interval", func(c *Config) { c.IntervalDays = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStoreOptions(t *testing.T) {
	opts, err := Default().StoreOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	cfg := Default()
	cfg.DefaultsFile = writeFile(t, "seed.json", `{"sections": []}`)
	opts, err = cfg.StoreOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	cfg.DefaultsFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = cfg.StoreOptions()
	assert.Error(t, err)
}
