package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/models"
)

// DiscrepancyKind classifies a mismatch between the catalog and the disk.
type DiscrepancyKind string

const (
	// UntrackedOnDisk is a plugin in an IDA plugin directory that no
	// installed catalog record points at.
	UntrackedOnDisk DiscrepancyKind = "untracked_on_disk"
	// MissingOnDisk is an installed record whose files are gone.
	MissingOnDisk DiscrepancyKind = "missing_on_disk"
	// InstalledElsewhere is an installed record whose files exist outside
	// every directory IDA loads plugins from.
	InstalledElsewhere DiscrepancyKind = "installed_elsewhere"
)

// Discrepancy is one mismatch found by ReconcileLocalScan.
type Discrepancy struct {
	Kind     DiscrepancyKind
	PluginID string // empty when an untracked entry matches no catalog plugin
	Path     string
	Format   models.Format // detected on disk, empty for MissingOnDisk
}

// ReconcileLocalScan compares installed catalog records with the contents of
// every IDA plugin directory. It only reports; the catalog is not changed.
func (s *Service) ReconcileLocalScan(ctx context.Context) ([]Discrepancy, error) {
	all, err := s.store.FindAll(models.PluginFilter{})
	if err != nil {
		return nil, opErr("scan", "", ErrStoreRead, err)
	}

	dirs := s.dirs.AllPluginDirectories(s.opts.IDAPath)

	tracked := make(map[string]bool)
	byName := make(map[string]string)
	var out []Discrepancy

	for _, p := range all {
		byName[strings.ToLower(installDirName(&p))] = p.ID
		if p.Status != models.StatusInstalled || p.InstallPath == nil {
			continue
		}
		path := filepath.Clean(*p.InstallPath)
		tracked[path] = true

		if _, err := os.Stat(path); err != nil {
			out = append(out, Discrepancy{Kind: MissingOnDisk, PluginID: p.ID, Path: path})
			continue
		}
		if !within(path, dirs) {
			d := Discrepancy{Kind: InstalledElsewhere, PluginID: p.ID, Path: path}
			if info, err := installer.DetectFormat(path); err == nil {
				d.Format = info.Format
			}
			out = append(out, d)
		}
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("cannot read plugin directory")
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__") {
				continue
			}
			path := filepath.Clean(filepath.Join(dir, name))
			if tracked[path] {
				continue
			}
			info, err := installer.DetectFormat(path)
			if err != nil {
				continue
			}
			key := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
			if e.IsDir() {
				key = strings.ToLower(name)
			}
			out = append(out, Discrepancy{
				Kind:     UntrackedOnDisk,
				PluginID: byName[key],
				Path:     path,
				Format:   info.Format,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// within reports whether path sits directly inside one of dirs.
func within(path string, dirs []string) bool {
	parent := filepath.Dir(path)
	for _, d := range dirs {
		if filepath.Clean(d) == parent {
			return true
		}
	}
	return false
}
