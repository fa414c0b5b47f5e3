// Package config provides application configuration for evlog.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Environment variables
// 2. Configuration file
// 3. Default values
//
// This is the ambient application config (database path, logging, output
// defaults). The domain cost settings (per-kWh prices, comparison
// assumptions, fuel price history) live inside the persisted document and
// are managed by the store, not here.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("database: %s\n", cfg.Storage.DBPath)
package config

// Config represents the complete application configuration.
//
// Invariants:
// - Storage.DBPath must be non-empty
// - Display.DefaultFormat must be table, json, or simple
// - Logging.Level must be debug, info, warn, or error
// - Logging.Format must be text or json.
type Config struct {
	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB database file holding the ledger document
	DBPath string `yaml:"db_path"`
}

// ExportConfig contains CSV/backup export settings.
type ExportConfig struct {
	// Directory CSV exports are written to
	Dir string `yaml:"dir"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Default output format (table, json, simple)
	DefaultFormat string `yaml:"default_format"`

	// Enable colored output where the terminal supports it
	ColorEnabled bool `yaml:"color_enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Returns an error if any invariant is violated.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return ErrNoDBPath
	}

	validFormats := map[string]bool{
		"table":  true,
		"json":   true,
		"simple": true,
	}
	if !validFormats[c.Display.DefaultFormat] {
		return ErrInvalidDisplayFormat
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Display: DisplayConfig{
			DefaultFormat: "table",
			ColorEnabled:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
