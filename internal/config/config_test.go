package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the base directory at a temp dir and clears overrides
// that may be set in the developer's environment.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("IDAPM_BASE_DIR", base)
	for _, key := range []string{"GITHUB_TOKEN", "IDAPM_GITHUB_TOKEN", "IDAPM_LOG_LEVEL"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return base
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.GitHub.RateLimit)
	assert.True(t, cfg.IDA.PreferUserDir)
	assert.True(t, cfg.Install.BackupOnUninstall)
	assert.Equal(t, "clone", cfg.Install.DefaultMethod)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_Defaults(t *testing.T) {
	base := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, base, cfg.BaseDir)
	assert.Equal(t, 10*time.Minute, cfg.GitHub.CacheTTL)
	assert.Empty(t, cfg.GitHub.Token)

	paths := GetPaths(cfg)
	assert.DirExists(t, paths.Logs)
	assert.DirExists(t, paths.Backups)
	assert.Equal(t, filepath.Join(base, "idapm.db"), paths.Database)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("IDAPM_LOG_LEVEL", "debug")
	t.Setenv("IDAPM_IDA_PREFER_USER_DIR", "false")
	t.Setenv("IDAPM_INSTALL_PREFERRED_ASSETS", "*-ida9.zip,*.py")
	t.Setenv("IDAPM_GITHUB_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.IDA.PreferUserDir)
	assert.Equal(t, []string{"*-ida9.zip", "*.py"}, cfg.Install.PreferredAssets)
	assert.Equal(t, 90*time.Second, cfg.GitHub.CacheTTL)
}

func TestLoad_GitHubToken(t *testing.T) {
	tests := []struct {
		name   string
		plain  string
		prefix string
		want   string
	}{
		{"plain", "ghp_plain", "", "ghp_plain"},
		{"prefixed wins", "ghp_plain", "ghp_prefixed", "ghp_prefixed"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if tt.plain != "" {
				t.Setenv("GITHUB_TOKEN", tt.plain)
			}
			if tt.prefix != "" {
				t.Setenv("IDAPM_GITHUB_TOKEN", tt.prefix)
			}

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.GitHub.Token)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	base := isolate(t)
	content := `
log_level: warn
github:
  rate_limit: 5
install:
  preferred_assets:
    - "*-linux.zip"
`
	require.NoError(t, os.WriteFile(filepath.Join(base, ConfigFileName), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5, cfg.GitHub.RateLimit)
	assert.Equal(t, []string{"*-linux.zip"}, cfg.Install.PreferredAssets)

	// Environment beats the file.
	t.Setenv("IDAPM_LOG_LEVEL", "error")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"IDAPM_LOG_LEVEL", "verbose"},
		{"IDAPM_GITHUB_RATE_LIMIT", "0"},
		{"IDAPM_INSTALL_DEFAULT_METHOD", "copy"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}
