package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/pkg/version"
)

// DeltaCommit marks an update between two commits of a clone install.
const DeltaCommit = "commit"

// DefaultCheckConcurrency bounds parallel remote lookups in CheckAllUpdates.
const DefaultCheckConcurrency = 4

// UpdateInfo describes whether an installed plugin has something newer.
type UpdateInfo struct {
	PluginID   string
	Method     models.Method
	HasUpdate  bool
	Current    string
	Latest     string
	Delta      string // major, minor, patch, commit or ""
	Changelog  string // release notes of the latest release
	ReleaseURL string
	Err        error // set by CheckAllUpdates when this plugin could not be checked
}

// updateInfoFor compares the installed version with snap. Clone installs
// compare the short commit hash for inequality since hashes are not ordered;
// release installs compare the version extracted from the latest tag.
func updateInfoFor(p *models.Plugin, snap *models.RepositorySnapshot) *UpdateInfo {
	info := &UpdateInfo{PluginID: p.ID, Method: p.Method}
	if p.InstalledVersion != nil {
		info.Current = *p.InstalledVersion
	}

	if p.Method == models.MethodClone {
		if snap.LatestCommit == "" {
			return info
		}
		info.Latest = installer.ShortHash(snap.LatestCommit)
		info.HasUpdate = info.Latest != info.Current
		if info.HasUpdate {
			info.Delta = DeltaCommit
		}
		return info
	}

	rel := snap.LatestRelease
	if rel == nil {
		return info
	}
	info.Latest = version.ExtractFromTag(rel.Tag)
	info.Changelog = rel.Body
	info.ReleaseURL = rel.HTMLURL
	info.HasUpdate = version.IsNewer(info.Current, info.Latest)
	if info.HasUpdate {
		info.Delta = version.Delta(info.Current, info.Latest)
	}
	return info
}

// CheckPluginUpdate reports whether an installed plugin has an update. It
// reads remote state only.
func (s *Service) CheckPluginUpdate(ctx context.Context, id string) (*UpdateInfo, error) {
	p, err := s.load("check", id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusInstalled {
		return nil, opErr("check", id, ErrNotInstalled, nil)
	}

	owner, repo := p.OwnerRepo()
	snap, err := s.fetchSnapshot(ctx, owner, repo)
	if err != nil {
		return nil, opErr("check", id, ErrRemoteUnavailable, err)
	}
	return updateInfoFor(p, snap), nil
}

// CheckAllUpdates checks every installed plugin with at most concurrency
// lookups in flight. Per-plugin failures are reported in UpdateInfo.Err;
// the returned error is set only when the catalog cannot be read or ctx ends.
func (s *Service) CheckAllUpdates(ctx context.Context, concurrency int) ([]UpdateInfo, error) {
	plugins, err := s.store.FindAll(models.PluginFilter{Status: models.StatusInstalled})
	if err != nil {
		return nil, opErr("check", "", ErrStoreRead, err)
	}
	if concurrency <= 0 {
		concurrency = DefaultCheckConcurrency
	}

	results := make([]UpdateInfo, len(plugins))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range plugins {
		p := &plugins[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			owner, repo := p.OwnerRepo()
			snap, err := s.fetchSnapshot(gctx, owner, repo)
			if err != nil {
				results[i] = UpdateInfo{PluginID: p.ID, Method: p.Method, Err: opErr("check", p.ID, ErrRemoteUnavailable, err)}
				return nil
			}
			results[i] = *updateInfoFor(p, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.store.SetSetting(models.SettingLastUpdateCheck, s.now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record update check time")
	}
	return results, nil
}

// LastUpdateCheck returns when CheckAllUpdates last completed, or the zero time.
func (s *Service) LastUpdateCheck() (time.Time, error) {
	v, err := s.store.GetSetting(models.SettingLastUpdateCheck)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
