// Package locator resolves IDA's user directories and the plugin directory a
// plugin should be installed into, following IDA's own loading order: every
// IDAUSR directory first, then the installation directory.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// EnvUserDir is the environment variable IDA reads its user directories from.
const EnvUserDir = "IDAUSR"

// PluginsSubdir is the plugin folder name inside a user or install directory.
const PluginsSubdir = "plugins"

// ErrCreateDirectory is returned when the fallback plugin directory cannot be created.
var ErrCreateDirectory = errors.New("cannot create plugin directory")

// Locator finds IDA directories. The zero value is not usable; use New.
type Locator struct {
	Getenv func(string) string
	GOOS   string
	Home   string
}

// New returns a Locator bound to the running process environment.
func New() *Locator {
	return &Locator{
		Getenv: os.Getenv,
		GOOS:   runtime.GOOS,
		Home:   xdg.Home,
	}
}

func (l *Locator) separator() string {
	if l.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// DefaultUserDirectory is the per-user directory IDA uses when IDAUSR is unset.
func (l *Locator) DefaultUserDirectory() string {
	if l.GOOS == "windows" {
		appData := l.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(l.Home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Hex-Rays", "IDA Pro")
	}
	return filepath.Join(l.Home, ".idapro")
}

// UserDirectories returns the IDA user directories in search order. Paths that
// do not exist are dropped, except the first candidate which is always kept so
// the caller can create it.
func (l *Locator) UserDirectories() []string {
	var candidates []string
	if raw := l.Getenv(EnvUserDir); strings.TrimSpace(raw) != "" {
		for _, p := range strings.Split(raw, l.separator()) {
			if p = strings.TrimSpace(p); p != "" {
				candidates = append(candidates, filepath.Clean(p))
			}
		}
	}
	if len(candidates) == 0 {
		candidates = []string{l.DefaultUserDirectory()}
	}

	dirs := []string{candidates[0]}
	seen := map[string]bool{candidates[0]: true}
	for _, c := range candidates[1:] {
		if seen[c] || !isDir(c) {
			continue
		}
		seen[c] = true
		dirs = append(dirs, c)
	}
	return dirs
}

// ResolvePluginDirectory picks the directory a new plugin is installed into.
// With preferUser set, the first existing <user dir>/plugins wins. Otherwise,
// or when none exists, <installPath>/plugins is used if present. As a last
// resort the first user directory's plugins folder is created.
func (l *Locator) ResolvePluginDirectory(installPath string, preferUser bool) (string, error) {
	users := l.UserDirectories()

	if preferUser {
		for _, u := range users {
			if p := filepath.Join(u, PluginsSubdir); isDir(p) {
				return p, nil
			}
		}
	}

	if installPath != "" {
		if p := filepath.Join(installPath, PluginsSubdir); isDir(p) {
			return p, nil
		}
	}

	fallback := filepath.Join(users[0], PluginsSubdir)
	if err := os.MkdirAll(fallback, 0755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCreateDirectory, fallback, err)
	}
	return fallback, nil
}

// AllPluginDirectories lists every existing plugin directory IDA would load
// from: user directories in order, then the installation directory.
func (l *Locator) AllPluginDirectories(installPath string) []string {
	var dirs []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] && isDir(p) {
			seen[p] = true
			dirs = append(dirs, p)
		}
	}

	for _, u := range l.UserDirectories() {
		add(filepath.Join(u, PluginsSubdir))
	}
	if installPath != "" {
		add(filepath.Join(installPath, PluginsSubdir))
	}
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
