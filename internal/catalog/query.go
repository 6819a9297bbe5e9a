package catalog

import (
	"context"
	"strings"

	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/internal/remote"
	"github.com/asteroid-belt/idapm/pkg/version"
)

// DefaultSearchLimit bounds catalog and discovery searches.
const DefaultSearchLimit = 30

// GetPlugin returns a single plugin.
func (s *Service) GetPlugin(id string) (*models.Plugin, error) {
	return s.load("get", id)
}

// ListPlugins returns catalog plugins matching filter.
func (s *Service) ListPlugins(filter models.PluginFilter) ([]models.Plugin, error) {
	plugins, err := s.store.FindAll(filter)
	if err != nil {
		return nil, opErr("list", "", ErrStoreRead, err)
	}
	return plugins, nil
}

// SearchPlugins ranks catalog plugins by relevance to query. When full-text
// search is unavailable it falls back to substring matching.
func (s *Service) SearchPlugins(query string) ([]models.Plugin, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListPlugins(models.PluginFilter{})
	}
	plugins, err := s.store.SearchPlugins(query, DefaultSearchLimit)
	if err != nil {
		s.logger.Debug().Err(err).Str("query", query).Msg("full-text search failed, using substring match")
		return s.ListPlugins(models.PluginFilter{Query: query})
	}
	return plugins, nil
}

// IsCompatible reports whether plugin id declares support for idaVersion.
// Missing bounds are unbounded.
func (s *Service) IsCompatible(id, idaVersion string) (bool, error) {
	p, err := s.load("compat", id)
	if err != nil {
		return false, err
	}
	return compatible(p, idaVersion), nil
}

// CompatiblePlugins lists catalog plugins that support idaVersion.
func (s *Service) CompatiblePlugins(idaVersion string) ([]models.Plugin, error) {
	all, err := s.ListPlugins(models.PluginFilter{})
	if err != nil {
		return nil, err
	}
	var out []models.Plugin
	for i := range all {
		if compatible(&all[i], idaVersion) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func compatible(p *models.Plugin, idaVersion string) bool {
	return version.InRangeStrings(idaVersion, p.IDAVersionMin, p.IDAVersionMax)
}

// History returns a plugin's history, oldest first. A plugin that is not in
// the catalog has no history.
func (s *Service) History(id string) ([]models.InstallationHistory, error) {
	id = normalizeID(id)
	entries, err := s.store.FindHistory(id)
	if err != nil {
		return nil, opErr("history", id, ErrStoreRead, err)
	}
	return entries, nil
}

// Discovery is a repository found on GitHub.
type Discovery struct {
	models.Repository
	PluginID  string
	InCatalog bool
}

// DiscoverPlugins searches GitHub for IDA plugin repositories, most starred
// first. An empty query searches the ida-pro-plugin topic.
func (s *Service) DiscoverPlugins(ctx context.Context, query string, limit int) ([]Discovery, error) {
	if strings.TrimSpace(query) == "" {
		query = remote.DefaultDiscoveryQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	repos, err := s.gateway.SearchRepositories(ctx, query, limit)
	if err != nil {
		return nil, opErr("discover", "", ErrRemoteUnavailable, err)
	}

	out := make([]Discovery, 0, len(repos))
	for _, r := range repos {
		id := models.PluginID(r.Owner, r.Name)
		existing, err := s.store.FindByID(id)
		if err != nil {
			return nil, opErr("discover", id, ErrStoreRead, err)
		}
		out = append(out, Discovery{Repository: r, PluginID: id, InCatalog: existing != nil})
	}
	return out, nil
}
