package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Storage.DBPath == "" {
		t.Error("DBPath not set")
	}

	if cfg.Export.Dir == "" {
		t.Error("Export.Dir not set")
	}

	if cfg.Display.DefaultFormat == "" {
		t.Error("DefaultFormat not set")
	}

	if cfg.Logging.Level == "" {
		t.Error("Log level not set")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid default config",
			mutate: func(c *Config) {},
		},
		{
			name:    "no db path",
			mutate:  func(c *Config) { c.Storage.DBPath = "" },
			wantErr: ErrNoDBPath,
		},
		{
			name:    "invalid display format",
			mutate:  func(c *Config) { c.Display.DefaultFormat = "fancy" },
			wantErr: ErrInvalidDisplayFormat,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `storage:
  db_path: /tmp/custom.db
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Storage.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want /tmp/custom.db", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	// Unset fields keep defaults.
	if cfg.Display.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", cfg.Display.DefaultFormat)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("storage: [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EVLOG_DB", "/tmp/env.db")
	t.Setenv("EVLOG_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("DBPath = %q, want /tmp/env.db", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Export.Dir = "/tmp/exports"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if loaded.Export.Dir != "/tmp/exports" {
		t.Errorf("Export.Dir = %q, want /tmp/exports", loaded.Export.Dir)
	}
}
