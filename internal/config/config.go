package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// MaxWorkers caps concurrent renames per batch
const MaxWorkers = 64

// Config holds all namesink configuration
type Config struct {
	LogLevel string       `toml:"log_level"` // quiet, normal, verbose
	Rename   RenameConfig `toml:"rename"`
	UI       UIConfig     `toml:"ui"`
}

// RenameConfig controls batch execution
type RenameConfig struct {
	Workers int  `toml:"workers"` // concurrent renames, 1 = sequential
	DryRun  bool `toml:"dry_run"`
	Journal bool `toml:"journal"` // record renames so they can be undone
}

// UIConfig controls interactive behaviour
type UIConfig struct {
	Confirm bool `toml:"confirm"` // ask yes/no before a CLI batch runs
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "normal",
		Rename: RenameConfig{
			Workers: 4,
			DryRun:  false,
			Journal: true,
		},
		UI: UIConfig{
			Confirm: true,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	return filepath.Join(configDir, "namesink", "config.toml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load reads the default config file, creating it with defaults if it doesn't exist
func Load() (*Config, error) {
	configFile, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if err := EnsureConfigDir(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	return LoadFrom(configFile)
}

// LoadFrom reads a config file at an explicit path.
// Keys missing from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default location
func Save(cfg *Config) error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	return SaveTo(cfg, configFile)
}

// SaveTo writes the config to path
func SaveTo(cfg *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
	}

	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be quiet, normal, or verbose)", c.LogLevel)
	}

	if c.Rename.Workers < 1 || c.Rename.Workers > MaxWorkers {
		return fmt.Errorf("invalid worker count: %d (must be 1-%d)", c.Rename.Workers, MaxWorkers)
	}

	return nil
}
