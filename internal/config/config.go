// Package config handles the tool's configuration file: defaults, YAML
// loading, environment overrides, and validation.
package config

import (
	"time"

	"github.com/tomokisaito/roompower/internal/inventory"
)

// DefaultFileName is the config file looked up in the working directory
// when no --config flag is given.
const DefaultFileName = "roompower.yaml"

// Config is the full tool configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Room      RoomConfig      `yaml:"room"`
	Inventory InventoryConfig `yaml:"inventory"`
	HAR       HARConfig       `yaml:"har"`
	Display   DisplayConfig   `yaml:"display"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// RoomConfig carries room snapshot defaults.
type RoomConfig struct {
	// Path is the room snapshot used when a command gets no --file flag.
	Path string `yaml:"path"`

	// Languages orders the resolution of localized item names.
	Languages []string `yaml:"languages"`

	// Debounce is how long watch mode lets a changed file settle.
	Debounce time.Duration `yaml:"debounce"`
}

// InventoryConfig carries inventory page defaults.
type InventoryConfig struct {
	// Dir holds extracted inventory page files.
	Dir string `yaml:"dir"`

	Catalog inventory.CatalogConfig `yaml:"catalog"`
}

// HARConfig carries HAR extraction defaults.
type HARConfig struct {
	OutDir    string `yaml:"outdir"`
	PageLimit int    `yaml:"page_limit"`
}

// DisplayConfig carries output defaults.
type DisplayConfig struct {
	Format string `yaml:"format"`
}

// WriteDefault writes a fresh default configuration file at path.
func WriteDefault(path string) error {
	return writeConfigFile(path, DefaultConfig())
}

// DefaultConfig returns the configuration used before any file or
// environment override.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Room: RoomConfig{
			Path:      "room.json",
			Languages: []string{"en"},
			Debounce:  time.Second,
		},
		Inventory: InventoryConfig{
			Dir: "inventory",
			Catalog: inventory.CatalogConfig{
				TTL:       30 * time.Minute,
				Shards:    64,
				MaxSizeMB: 32,
			},
		},
		HAR: HARConfig{
			OutDir:    "inventory",
			PageLimit: 48,
		},
		Display: DisplayConfig{
			Format: "table",
		},
	}
}
