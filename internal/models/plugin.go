// Package models defines the core data structures for idapm.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the installation status of a catalog plugin.
type Status string

const (
	StatusNotInstalled Status = "not_installed"
	StatusInstalled    Status = "installed"
	StatusFailed       Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotInstalled, StatusInstalled, StatusFailed:
		return true
	}
	return false
}

// Method is how a plugin's files were obtained.
type Method string

const (
	MethodClone   Method = "clone"
	MethodRelease Method = "release"
	MethodUnknown Method = "unknown"
)

// ParseMethod converts user input into a Method. Only clone and release are accepted.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodClone:
		return MethodClone, nil
	case MethodRelease:
		return MethodRelease, nil
	}
	return MethodUnknown, fmt.Errorf("unknown installation method %q (want clone or release)", s)
}

// Format is the plugin layout understood by IDA.
type Format string

const (
	FormatLegacy Format = "legacy"
	FormatModern Format = "modern"
)

// MaxDisplayTags is how many tags a listing shows per plugin.
const MaxDisplayTags = 3

// Metadata is a caller-defined bag of primitive values stored as JSON.
type Metadata map[string]any

// String returns the value under key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Plugin is a catalog entry backed by a GitHub repository.
type Plugin struct {
	ID            string `gorm:"primaryKey;size:200" json:"id"` // owner/repo, lowercased
	Name          string `gorm:"size:255;index" json:"name"`
	Description   string `gorm:"size:1000" json:"description"`
	Author        string `gorm:"size:255;index" json:"author"`
	RepositoryURL string `gorm:"size:500;not null" json:"repository_url"`
	Format        Format `gorm:"size:10;default:legacy" json:"format"`

	// Compatible IDA version range, inclusive. Nil means unbounded.
	IDAVersionMin *string `gorm:"column:ida_version_min;size:20" json:"ida_version_min,omitempty"`
	IDAVersionMax *string `gorm:"column:ida_version_max;size:20" json:"ida_version_max,omitempty"`

	InstalledVersion *string `gorm:"size:100" json:"installed_version,omitempty"`
	LatestVersion    *string `gorm:"size:100" json:"latest_version,omitempty"`

	Status       Status  `gorm:"size:20;index;not null;default:not_installed" json:"status"`
	Method       Method  `gorm:"size:10;not null;default:unknown" json:"installation_method"`
	ErrorMessage *string `gorm:"size:2000" json:"error_message,omitempty"`
	InstallPath  *string `gorm:"size:1000" json:"install_path,omitempty"`

	Metadata Metadata `gorm:"serializer:json" json:"metadata,omitempty"`
	Tags     []string `gorm:"serializer:json" json:"tags"`

	AddedAt     time.Time  `json:"added_at"`
	LastUpdated *time.Time `json:"last_updated,omitempty"` // last known push to the remote
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	History []InstallationHistory `gorm:"foreignKey:PluginID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Plugin) TableName() string {
	return "plugins"
}

// PluginID derives the catalog identifier for a repository.
func PluginID(owner, repo string) string {
	return strings.ToLower(owner + "/" + repo)
}

// OwnerRepo splits the identifier back into owner and repository name.
func (p *Plugin) OwnerRepo() (string, string) {
	owner, repo, _ := strings.Cut(p.ID, "/")
	return owner, repo
}

// MarkInstalled records a successful installation.
func (p *Plugin) MarkInstalled(version, path string, method Method) {
	p.Status = StatusInstalled
	p.InstalledVersion = &version
	p.InstallPath = &path
	p.Method = method
	p.ErrorMessage = nil
}

// MarkFailed records a failed install or update. The failure reason is kept
// until the next successful operation.
func (p *Plugin) MarkFailed(reason string) {
	p.Status = StatusFailed
	p.ErrorMessage = &reason
	p.InstalledVersion = nil
	p.InstallPath = nil
}

// MarkNotInstalled clears all installation state but keeps catalog membership.
func (p *Plugin) MarkNotInstalled() {
	p.Status = StatusNotInstalled
	p.InstalledVersion = nil
	p.InstallPath = nil
	p.ErrorMessage = nil
}

// Check verifies the field invariants tied to Status.
func (p *Plugin) Check() error {
	if !p.Status.Valid() {
		return fmt.Errorf("plugin %s: invalid status %q", p.ID, p.Status)
	}
	switch p.Status {
	case StatusInstalled:
		if p.InstalledVersion == nil || p.InstallPath == nil {
			return fmt.Errorf("plugin %s: installed without version or path", p.ID)
		}
		if p.Method == MethodUnknown || p.Method == "" {
			return fmt.Errorf("plugin %s: installed with unknown method", p.ID)
		}
		if p.ErrorMessage != nil {
			return fmt.Errorf("plugin %s: installed with error message", p.ID)
		}
	case StatusNotInstalled:
		if p.InstalledVersion != nil || p.InstallPath != nil {
			return fmt.Errorf("plugin %s: not installed but has version or path", p.ID)
		}
		if p.ErrorMessage != nil {
			return fmt.Errorf("plugin %s: not installed with error message", p.ID)
		}
	case StatusFailed:
		if p.InstalledVersion != nil || p.InstallPath != nil {
			return fmt.Errorf("plugin %s: failed but has version or path", p.ID)
		}
	}
	return nil
}

// PluginFilter narrows catalog listings. Zero fields match everything.
type PluginFilter struct {
	Status Status
	Tag    string
	Query  string // substring of name, description or author
}
