// Package detect finds an IDA installation on the local machine.
package detect

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/adrg/xdg"

	"github.com/asteroid-belt/idapm/pkg/version"
)

// ErrNotFound is returned when no valid IDA installation can be located.
var ErrNotFound = errors.New("no IDA installation found")

// Sources describing how an installation was found.
const (
	SourceConfig    = "config"
	SourcePath      = "path"
	SourceCandidate = "candidate"
)

// Installation describes a detected IDA installation.
type Installation struct {
	Path       string // installation directory
	Executable string // IDA binary inside Path
	Version    string // parsed from the directory name, may be empty
	Source     string
}

// Detector locates IDA. Fields are injectable for tests.
type Detector struct {
	GOOS     string
	Home     string
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Glob     func(string) ([]string, error)
}

// NewDetector returns a Detector bound to the running system.
func NewDetector() *Detector {
	return &Detector{
		GOOS:     runtime.GOOS,
		Home:     xdg.Home,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		Glob:     filepath.Glob,
	}
}

// Detect returns the first valid installation. An explicitly configured path
// wins, then IDA binaries on PATH, then well-known install locations.
func (d *Detector) Detect(configured string) (*Installation, error) {
	if configured != "" {
		if inst := d.inspect(configured, SourceConfig); inst != nil {
			return inst, nil
		}
	}

	for _, bin := range d.executableNames() {
		p, err := d.LookPath(bin)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			p = resolved
		}
		if inst := d.inspect(filepath.Dir(p), SourcePath); inst != nil {
			return inst, nil
		}
	}

	for _, c := range d.Candidates() {
		if inst := d.inspect(c, SourceCandidate); inst != nil {
			return inst, nil
		}
	}

	return nil, ErrNotFound
}

// Candidates expands the OS-specific install patterns, newest version first.
func (d *Detector) Candidates() []string {
	var matches []string
	seen := make(map[string]bool)
	for _, pattern := range d.patterns() {
		found, err := d.Glob(pattern)
		if err != nil {
			continue
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return version.CompareStrings(VersionFromPath(matches[i]), VersionFromPath(matches[j])) == version.Greater
	})
	return matches
}

func (d *Detector) patterns() []string {
	switch d.GOOS {
	case "windows":
		p := []string{
			"C:/Program Files/IDA Pro*",
			"C:/Program Files/IDA Professional*",
			filepath.Join(d.Home, "IDA*"),
		}
		if local := d.Getenv("LOCALAPPDATA"); local != "" {
			p = append(p, filepath.Join(local, "Programs", "IDA*"))
		}
		return p
	case "darwin":
		return []string{
			"/Applications/IDA*.app/Contents/MacOS",
			filepath.Join(d.Home, "Applications", "IDA*.app", "Contents", "MacOS"),
		}
	default:
		return []string{
			filepath.Join(d.Home, "ida*"),
			filepath.Join(d.Home, "IDA*"),
			"/opt/ida*",
			"/opt/IDA*",
		}
	}
}

func (d *Detector) executableNames() []string {
	names := []string{"ida64", "idat64", "ida", "idat"}
	if d.GOOS == "windows" {
		for i, n := range names {
			names[i] = n + ".exe"
		}
	}
	return names
}

func (d *Detector) inspect(dir, source string) *Installation {
	exe, ok := Validate(dir, d.executableNames())
	if !ok {
		return nil
	}
	return &Installation{
		Path:       dir,
		Executable: exe,
		Version:    VersionFromPath(dir),
		Source:     source,
	}
}

// Validate checks that dir holds one of the IDA executables and a plugins
// directory. It returns the executable found.
func Validate(dir string, executables []string) (string, bool) {
	info, err := os.Stat(filepath.Join(dir, "plugins"))
	if err != nil || !info.IsDir() {
		return "", false
	}
	for _, name := range executables {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

var (
	idaProVersion = regexp.MustCompile(`(?i)IDA\s*(?:Pro|Professional|Home|Free)?\s+(\d+\.\d+)`)
	bareVersion   = regexp.MustCompile(`(\d+\.\d+)`)
)

// VersionFromPath extracts an IDA version from an installation path such as
// "C:/Program Files/IDA Pro 9.1" or "/opt/ida-8.4". It returns "" when none is present.
func VersionFromPath(path string) string {
	clean := filepath.ToSlash(path)
	clean = strings.TrimSuffix(clean, "/Contents/MacOS")
	base := clean
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		base = clean[i+1:]
	}

	if m := idaProVersion.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	if m := bareVersion.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return ""
}
