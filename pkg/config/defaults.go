package config

import (
	"os"
	"path/filepath"
)

// defaultDBPath returns the default database file path.
//
// Returns: ~/.config/evlog/ledger.db.
func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./ledger.db"
	}

	return filepath.Join(homeDir, ".config", "evlog", "ledger.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/evlog/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "evlog", "config.yaml")
}
