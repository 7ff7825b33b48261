package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager owns the configuration lifecycle: loading, saving, and handing
// out consistent snapshots.
type Manager struct {
	logger     *zap.Logger
	configPath string

	config   *Config
	configMu sync.RWMutex

	validator *Validator
	envLoader *EnvLoader
}

// NewManager creates a manager and performs the initial load. A missing
// file is not an error; defaults and environment overrides still apply.
func NewManager(logger *zap.Logger, configPath string) (*Manager, error) {
	m := &Manager{
		logger:     logger.Named("config"),
		configPath: configPath,
		validator:  NewValidator(),
		envLoader:  NewEnvLoader("ROOMPOWER"),
	}

	if err := m.Load(); err != nil {
		return nil, fmt.Errorf("initial config load failed: %w", err)
	}
	return m, nil
}

// Load reads the file if present, applies environment overrides, validates
// the result, and swaps it in.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := m.envLoader.Load(cfg); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := m.validator.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.configMu.Lock()
	m.config = cfg
	m.configMu.Unlock()

	m.logger.Debug("Configuration loaded", zap.String("path", m.configPath))
	return nil
}

// Save writes the current configuration through a temp file and a rename
// so a crash cannot leave a half-written file behind.
func (m *Manager) Save() error {
	m.configMu.RLock()
	configToSave := m.config
	m.configMu.RUnlock()

	if err := writeConfigFile(m.configPath, configToSave); err != nil {
		return err
	}

	m.logger.Info("Configuration saved", zap.String("path", m.configPath))
	return nil
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		return fmt.Errorf("failed to rename temp config file: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.configMu.RLock()
	defer m.configMu.RUnlock()

	cfgCopy := *m.config
	return &cfgCopy
}

// Path returns the config file location this manager reads and writes.
func (m *Manager) Path() string {
	return m.configPath
}
