package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestDefaultConfig tests that the built-in defaults validate.
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "room.json", cfg.Room.Path)
	assert.Equal(t, []string{"en"}, cfg.Room.Languages)
	assert.Equal(t, time.Second, cfg.Room.Debounce)
	assert.Equal(t, "inventory", cfg.Inventory.Dir)
	assert.Equal(t, 48, cfg.HAR.PageLimit)
	assert.Equal(t, "table", cfg.Display.Format)
}

// TestManagerLoad tests loading configuration files.
func TestManagerLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		configContent string
		wantErr       bool
		errMsg        string
		validate      func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			configContent: `
logging:
  level: debug
  format: json
room:
  path: exports/room.json
  languages: [fr, en]
  debounce: 2s
inventory:
  dir: pages
  catalog:
    ttl: 10m
    shards: 128
    max_size_mb: 16
har:
  outdir: pages
  page_limit: 24
display:
  format: json
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "exports/room.json", cfg.Room.Path)
				assert.Equal(t, []string{"fr", "en"}, cfg.Room.Languages)
				assert.Equal(t, 2*time.Second, cfg.Room.Debounce)
				assert.Equal(t, "pages", cfg.Inventory.Dir)
				assert.Equal(t, 10*time.Minute, cfg.Inventory.Catalog.TTL)
				assert.Equal(t, 128, cfg.Inventory.Catalog.Shards)
				assert.Equal(t, 16, cfg.Inventory.Catalog.MaxSizeMB)
				assert.Equal(t, 24, cfg.HAR.PageLimit)
				assert.Equal(t, "json", cfg.Display.Format)
			},
		},
		{
			name: "partial config keeps defaults",
			configContent: `
logging:
  level: warn
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Format)
				assert.Equal(t, "room.json", cfg.Room.Path)
				assert.Equal(t, 48, cfg.HAR.PageLimit)
			},
		},
		{
			name:          "invalid yaml",
			configContent: "logging: [broken",
			wantErr:       true,
			errMsg:        "failed to parse YAML config",
		},
		{
			name: "invalid values",
			configContent: `
logging:
  level: loud
`,
			wantErr: true,
			errMsg:  "configuration validation failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "roompower.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.configContent), 0644))

			manager, err := NewManager(zap.NewNop(), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, manager.Get())
			}
		})
	}
}

// TestManagerMissingFile tests that an absent config file falls back to
// defaults instead of failing.
func TestManagerMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "roompower.yaml")
	manager, err := NewManager(zap.NewNop(), path)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), manager.Get())
	assert.Equal(t, path, manager.Path())
}

// TestEnvironmentOverrides tests ROOMPOWER_ variables on top of file values.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ROOMPOWER_LOGGING_LEVEL", "debug")
	t.Setenv("ROOMPOWER_ROOM_PATH", "env/room.json")
	t.Setenv("ROOMPOWER_ROOM_LANGUAGES", "fr, en")
	t.Setenv("ROOMPOWER_ROOM_DEBOUNCE", "3s")
	t.Setenv("ROOMPOWER_INVENTORY_CATALOG_SHARDS", "128")
	t.Setenv("ROOMPOWER_HAR_PAGE_LIMIT", "24")

	path := filepath.Join(t.TempDir(), "roompower.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	manager, err := NewManager(zap.NewNop(), path)
	require.NoError(t, err)

	cfg := manager.Get()
	assert.Equal(t, "debug", cfg.Logging.Level, "environment beats the file")
	assert.Equal(t, "env/room.json", cfg.Room.Path)
	assert.Equal(t, []string{"fr", "en"}, cfg.Room.Languages, "list values split on commas and trim")
	assert.Equal(t, 3*time.Second, cfg.Room.Debounce)
	assert.Equal(t, 128, cfg.Inventory.Catalog.Shards)
	assert.Equal(t, 24, cfg.HAR.PageLimit)
}

// TestEnvironmentBadValues tests that malformed overrides fail the load.
func TestEnvironmentBadValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
		errMsg string
	}{
		{name: "bad duration", envVar: "ROOMPOWER_ROOM_DEBOUNCE", value: "fast", errMsg: "invalid duration"},
		{name: "bad integer", envVar: "ROOMPOWER_HAR_PAGE_LIMIT", value: "many", errMsg: "invalid integer"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			_, err := NewManager(zap.NewNop(), filepath.Join(t.TempDir(), "roompower.yaml"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestManagerSave tests the save and reload round trip.
func TestManagerSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "roompower.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	manager, err := NewManager(zap.NewNop(), path)
	require.NoError(t, err)
	require.NoError(t, manager.Save())

	// A fresh manager reads back what was saved.
	reloaded, err := NewManager(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, manager.Get(), reloaded.Get())

	// The write lands via rename, leaving no temp file.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

// TestWriteDefault tests generating a fresh default config file.
func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "roompower.yaml")
	require.NoError(t, WriteDefault(path))

	manager, err := NewManager(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), manager.Get())
}

// TestValidation tests the per-section rules.
func TestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *Config)
		errMsg string
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:   "bad log level",
			mutate: func(cfg *Config) { cfg.Logging.Level = "loud" },
			errMsg: "invalid log level",
		},
		{
			name:   "bad log format",
			mutate: func(cfg *Config) { cfg.Logging.Format = "xml" },
			errMsg: "invalid log format",
		},
		{
			name:   "empty room path",
			mutate: func(cfg *Config) { cfg.Room.Path = "" },
			errMsg: "room config: path is required",
		},
		{
			name:   "no languages",
			mutate: func(cfg *Config) { cfg.Room.Languages = nil },
			errMsg: "at least one tag",
		},
		{
			name:   "bad language tag",
			mutate: func(cfg *Config) { cfg.Room.Languages = []string{"!!"} },
			errMsg: "invalid language tag",
		},
		{
			name:   "negative debounce",
			mutate: func(cfg *Config) { cfg.Room.Debounce = -time.Second },
			errMsg: "debounce must not be negative",
		},
		{
			name:   "empty inventory dir",
			mutate: func(cfg *Config) { cfg.Inventory.Dir = "" },
			errMsg: "inventory config: dir is required",
		},
		{
			name:   "negative catalog ttl",
			mutate: func(cfg *Config) { cfg.Inventory.Catalog.TTL = -time.Minute },
			errMsg: "ttl must not be negative",
		},
		{
			name:   "shards not a power of two",
			mutate: func(cfg *Config) { cfg.Inventory.Catalog.Shards = 100 },
			errMsg: "power of two",
		},
		{
			name:   "negative shards",
			mutate: func(cfg *Config) { cfg.Inventory.Catalog.Shards = -2 },
			errMsg: "power of two",
		},
		{
			name:   "empty har outdir",
			mutate: func(cfg *Config) { cfg.HAR.OutDir = "" },
			errMsg: "outdir is required",
		},
		{
			name:   "negative page limit",
			mutate: func(cfg *Config) { cfg.HAR.PageLimit = -1 },
			errMsg: "page_limit must not be negative",
		},
		{
			name:   "bad display format",
			mutate: func(cfg *Config) { cfg.Display.Format = "csv" },
			errMsg: "invalid output format",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := NewValidator().Validate(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// BenchmarkManagerLoad benchmarks a full load from disk.
func BenchmarkManagerLoad(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "roompower.yaml")
	if err := WriteDefault(path); err != nil {
		b.Fatal(err)
	}

	manager, err := NewManager(zap.NewNop(), path)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := manager.Load(); err != nil {
			b.Fatal(err)
		}
	}
}
