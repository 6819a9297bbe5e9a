package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigFileName is read from the base directory when present.
const ConfigFileName = "config.yaml"

// Paths contains commonly used file paths.
type Paths struct {
	Database  string // Main SQLite database
	Config    string // Optional config file
	Backups   string // Copies taken before uninstall/update
	Logs      string // Log files
	Downloads string // Release assets being extracted
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database:  filepath.Join(cfg.BaseDir, "idapm.db"),
		Config:    filepath.Join(cfg.BaseDir, ConfigFileName),
		Backups:   filepath.Join(cfg.BaseDir, "backups"),
		Logs:      filepath.Join(cfg.BaseDir, "logs"),
		Downloads: filepath.Join(cfg.BaseDir, "tmp"),
	}
}

// DefaultBaseDir returns the default base directory ($XDG_DATA_HOME/idapm).
func DefaultBaseDir() string {
	return filepath.Join(xdg.DataHome, "idapm")
}
