package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "normal" {
		t.Errorf("expected log level 'normal', got '%s'", cfg.LogLevel)
	}

	if cfg.Rename.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Rename.Workers)
	}

	if !cfg.Rename.Journal {
		t.Error("expected journal to be enabled")
	}

	if cfg.Rename.DryRun {
		t.Error("expected dry run to be disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"quiet", func(c *Config) { c.LogLevel = "quiet" }, false},
		{"verbose", func(c *Config) { c.LogLevel = "verbose" }, false},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"sequential", func(c *Config) { c.Rename.Workers = 1 }, false},
		{"zero workers", func(c *Config) { c.Rename.Workers = 0 }, true},
		{"too many workers", func(c *Config) { c.Rename.Workers = MaxWorkers + 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	cfg.Rename.Workers = 8
	cfg.Rename.DryRun = true

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if loaded.LogLevel != "verbose" || loaded.Rename.Workers != 8 || !loaded.Rename.DryRun {
		t.Errorf("loaded config does not match saved: %+v", loaded)
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[rename]\nworkers = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Rename.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Rename.Workers)
	}
	if cfg.LogLevel != "normal" || !cfg.Rename.Journal || !cfg.UI.Confirm {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("log_level = \"shouting\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(bad); err == nil {
		t.Error("expected error for invalid log level")
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[rename\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(broken); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Rename.Workers != 4 {
		t.Errorf("expected default config, got %+v", cfg)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created at %s: %v", path, err)
	}
}
