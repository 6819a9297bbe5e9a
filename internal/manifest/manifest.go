// Package manifest exports the plugin catalog to a portable file and
// imports it back on another machine.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/asteroid-belt/idapm/internal/models"
)

const (
	// FileName is the default manifest file name.
	FileName = "idapm.json"

	// CurrentVersion is the current manifest format version.
	CurrentVersion = 1
)

// Entry records where a plugin comes from and how it was installed.
type Entry struct {
	URL     string `json:"url" yaml:"url"`
	Method  string `json:"method,omitempty" yaml:"method,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// ManifestFile maps plugin identifiers (owner/repo) to entries.
type ManifestFile struct {
	Version int              `json:"version" yaml:"version"`
	Plugins map[string]Entry `json:"plugins" yaml:"plugins"`
}

// IsYAML reports whether path is written as YAML rather than JSON.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Read reads a manifest. The format follows the file extension.
// Returns nil, nil if the file does not exist.
func Read(path string) (*ManifestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var mf ManifestFile
	if IsYAML(path) {
		err = yaml.Unmarshal(data, &mf)
	} else {
		err = json.Unmarshal(data, &mf)
	}
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if mf.Version > CurrentVersion {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", mf.Version, CurrentVersion)
	}

	if mf.Plugins == nil {
		mf.Plugins = make(map[string]Entry)
	}

	return &mf, nil
}

// Write writes a manifest using atomic file operations.
func Write(path string, mf *ManifestFile) error {
	if mf.Version == 0 {
		mf.Version = CurrentVersion
	}
	if mf.Plugins == nil {
		mf.Plugins = make(map[string]Entry)
	}

	var data []byte
	var err error
	if IsYAML(path) {
		data, err = yaml.Marshal(mf)
	} else {
		data, err = json.MarshalIndent(mf, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Atomic write: temp file + rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}

	return nil
}

// New creates a new empty manifest.
func New() *ManifestFile {
	return &ManifestFile{
		Version: CurrentVersion,
		Plugins: make(map[string]Entry),
	}
}

// FromPlugins builds a manifest from catalog records. Method and version are
// only recorded for installed plugins.
func FromPlugins(plugins []models.Plugin) *ManifestFile {
	mf := New()
	for i := range plugins {
		p := &plugins[i]
		e := Entry{URL: p.RepositoryURL}
		if p.Status == models.StatusInstalled {
			if p.Method != models.MethodUnknown {
				e.Method = string(p.Method)
			}
			if p.InstalledVersion != nil {
				e.Version = *p.InstalledVersion
			}
		}
		mf.Plugins[p.ID] = e
	}
	return mf
}

// PluginCount returns the number of plugins in the manifest.
func (mf *ManifestFile) PluginCount() int {
	return len(mf.Plugins)
}

// SortedIDs returns plugin identifiers in alphabetical order.
func (mf *ManifestFile) SortedIDs() []string {
	ids := make([]string, 0, len(mf.Plugins))
	for id := range mf.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
