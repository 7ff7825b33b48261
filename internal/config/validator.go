package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/display"
)

// Validator checks that a configuration is usable before it is applied.
type Validator struct{}

// NewValidator creates a configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every section, reporting the first problem found.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := v.validateRoom(&cfg.Room); err != nil {
		return fmt.Errorf("room config: %w", err)
	}
	if err := v.validateInventory(&cfg.Inventory); err != nil {
		return fmt.Errorf("inventory config: %w", err)
	}
	if err := v.validateHAR(&cfg.HAR); err != nil {
		return fmt.Errorf("har config: %w", err)
	}
	if err := v.validateDisplay(&cfg.Display); err != nil {
		return fmt.Errorf("display config: %w", err)
	}
	return nil
}

func (v *Validator) validateLogging(cfg *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	validFormats := []string{"console", "json"}
	if !contains(validFormats, cfg.Format) {
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return nil
}

func (v *Validator) validateRoom(cfg *RoomConfig) error {
	if cfg.Path == "" {
		return errors.New("path is required")
	}
	if len(cfg.Languages) == 0 {
		return errors.New("languages must list at least one tag")
	}
	for _, lang := range cfg.Languages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("invalid language tag %q: %w", lang, err)
		}
	}
	if cfg.Debounce < 0 {
		return errors.New("debounce must not be negative")
	}
	return nil
}

func (v *Validator) validateInventory(cfg *InventoryConfig) error {
	if cfg.Dir == "" {
		return errors.New("dir is required")
	}
	if cfg.Catalog.TTL < 0 {
		return errors.New("catalog ttl must not be negative")
	}
	if cfg.Catalog.MaxSizeMB < 0 {
		return errors.New("catalog max_size_mb must not be negative")
	}
	// The cache shards its keyspace by bitmask.
	if s := cfg.Catalog.Shards; s < 0 || (s != 0 && s&(s-1) != 0) {
		return fmt.Errorf("catalog shards must be a power of two, got %d", s)
	}
	return nil
}

func (v *Validator) validateHAR(cfg *HARConfig) error {
	if cfg.OutDir == "" {
		return errors.New("outdir is required")
	}
	if cfg.PageLimit < 0 {
		return errors.New("page_limit must not be negative")
	}
	return nil
}

func (v *Validator) validateDisplay(cfg *DisplayConfig) error {
	if !display.ValidFormat(cfg.Format) {
		return fmt.Errorf("invalid output format: %s", cfg.Format)
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
