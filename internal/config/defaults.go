package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:  DefaultBaseDir(),
		LogLevel: "info",

		GitHub: GitHubConfig{
			RateLimit: 30,
			CacheTTL:  10 * time.Minute,
		},

		IDA: IDAConfig{
			PreferUserDir: true,
		},

		Install: InstallConfig{
			BackupOnUninstall: true,
			DefaultMethod:     "clone",
		},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("base_dir", d.BaseDir)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.rate_limit", d.GitHub.RateLimit)
	v.SetDefault("github.cache_ttl", d.GitHub.CacheTTL)
	v.SetDefault("github.include_prerelease", d.GitHub.IncludePrerelease)

	v.SetDefault("ida.install_path", d.IDA.InstallPath)
	v.SetDefault("ida.prefer_user_dir", d.IDA.PreferUserDir)

	v.SetDefault("install.backup_on_uninstall", d.Install.BackupOnUninstall)
	v.SetDefault("install.default_method", d.Install.DefaultMethod)
	v.SetDefault("install.preferred_assets", d.Install.PreferredAssets)
}
