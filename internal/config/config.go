// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. IDAPM_LOG_LEVEL.
const EnvPrefix = "IDAPM"

// Config holds all application configuration.
type Config struct {
	// Base directory for all idapm data ($XDG_DATA_HOME/idapm)
	BaseDir string `mapstructure:"base_dir" validate:"required"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	GitHub  GitHubConfig  `mapstructure:"github"`
	IDA     IDAConfig     `mapstructure:"ida"`
	Install InstallConfig `mapstructure:"install"`
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
	// Requests per minute
	RateLimit int `mapstructure:"rate_limit" validate:"min=1"`
	// How long repository lookups are cached in memory
	CacheTTL          time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
	IncludePrerelease bool          `mapstructure:"include_prerelease"`
}

// IDAConfig locates the IDA installation and its plugin directories.
type IDAConfig struct {
	// Explicit installation directory; detected when empty
	InstallPath   string `mapstructure:"install_path"`
	PreferUserDir bool   `mapstructure:"prefer_user_dir"`
}

// InstallConfig controls how plugins are installed and removed.
type InstallConfig struct {
	BackupOnUninstall bool   `mapstructure:"backup_on_uninstall"`
	DefaultMethod     string `mapstructure:"default_method" validate:"oneof=clone release"`
	// Glob patterns tried before the built-in asset preference order
	PreferredAssets []string `mapstructure:"preferred_assets"`
}

// Load reads configuration from defaults, the optional config file in the
// base directory and IDAPM_* environment variables, in increasing priority.
// GITHUB_TOKEN is honoured when IDAPM_GITHUB_TOKEN is unset.
func Load() (*Config, error) {
	v := newViper()

	if path := filepath.Join(v.GetString("base_dir"), ConfigFileName); fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	return v
}

// Validate checks value constraints declared on the config structs.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	paths := GetPaths(cfg)
	for _, dir := range []string{cfg.BaseDir, paths.Logs, paths.Backups, paths.Downloads} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
