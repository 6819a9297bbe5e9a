// Package catalog owns the plugin catalog: adding repositories, installing,
// updating, uninstalling and removing plugins, and comparing the catalog with
// what is actually present in IDA's plugin directories.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asteroid-belt/idapm/internal/db"
	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/internal/remote"
	"github.com/asteroid-belt/idapm/internal/tagger"
	"github.com/asteroid-belt/idapm/pkg/version"
)

// Store is durable storage for plugins, their history and settings.
type Store interface {
	FindByID(id string) (*models.Plugin, error)
	FindAll(filter models.PluginFilter) ([]models.Plugin, error)
	CreatePlugin(p *models.Plugin) error
	Save(p *models.Plugin) error
	Delete(id string) (bool, error)
	AppendHistory(entry *models.InstallationHistory) error
	FindHistory(pluginID string) ([]models.InstallationHistory, error)
	SearchPlugins(query string, limit int) ([]models.Plugin, error)
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Gateway reports remote repository state.
type Gateway interface {
	GetRepository(ctx context.Context, owner, name string) (*models.Repository, error)
	GetLatestRelease(ctx context.Context, owner, name string) (*models.Release, error)
	GetLatestCommit(ctx context.Context, owner, name, branch string) (string, error)
	GetReadme(ctx context.Context, owner, name string) (string, error)
	SearchRepositories(ctx context.Context, query string, limit int) ([]models.Repository, error)
}

// Executor performs file-level installs and removals.
type Executor interface {
	InstallByClone(ctx context.Context, url, dest, branch string) (*installer.Installation, error)
	InstallByRelease(ctx context.Context, req installer.ReleaseRequest, dest string) (*installer.Installation, error)
	Uninstall(path string, backup bool) (bool, error)
	Refresh(ctx context.Context, path string) (string, error)
}

// DirectoryResolver finds IDA plugin directories.
type DirectoryResolver interface {
	ResolvePluginDirectory(installPath string, preferUser bool) (string, error)
	AllPluginDirectories(installPath string) []string
}

// DefaultBranch is assumed when a repository reports none.
const DefaultBranch = "main"

// Options configures a Service.
type Options struct {
	IDAPath         string   // IDA installation directory, may be empty
	PreferUserDir   bool     // install into IDAUSR plugins before the install directory
	BackupOnUpdate  bool     // back up plugin files before an update replaces them
	PreferredAssets []string // glob patterns tried first when picking a release asset
	Logger          *zerolog.Logger
	Now             func() time.Time
	NewID           func() string
}

// Service is the single owner of plugin state transitions.
type Service struct {
	store    Store
	gateway  Gateway
	executor Executor
	dirs     DirectoryResolver
	readme   *remote.ReadmeParser
	opts     Options
	logger   zerolog.Logger
	locks    *keyedMutex
	now      func() time.Time
	newID    func() string
}

// NewService wires a Service to its collaborators.
func NewService(store Store, gateway Gateway, executor Executor, dirs DirectoryResolver, opts Options) *Service {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &Service{
		store:    store,
		gateway:  gateway,
		executor: executor,
		dirs:     dirs,
		readme:   remote.NewReadmeParser(),
		opts:     opts,
		logger:   logger.With().Str("component", "catalog").Logger(),
		locks:    newKeyedMutex(),
		now:      now,
		newID:    newID,
	}
}

// Result describes the outcome of a state-changing operation.
type Result struct {
	PluginID    string
	OperationID string
	Success     bool
	Status      models.Status
	Version     string
	Path        string
	Method      models.Method
	Message     string
	UpToDate    bool // update found nothing newer
}

func resultFor(p *models.Plugin, opID string, success bool, msg string) *Result {
	r := &Result{
		PluginID:    p.ID,
		OperationID: opID,
		Success:     success,
		Status:      p.Status,
		Method:      p.Method,
		Message:     msg,
	}
	if p.InstalledVersion != nil {
		r.Version = *p.InstalledVersion
	}
	if p.InstallPath != nil {
		r.Path = *p.InstallPath
	}
	return r
}

// AddPluginToCatalog validates rawURL, fetches the repository and stores a new
// not_installed plugin. An identifier already in the catalog is
// ErrDuplicatePlugin and leaves the existing record untouched.
func (s *Service) AddPluginToCatalog(ctx context.Context, rawURL string) (*models.Plugin, error) {
	ref, err := remote.ParseRepositoryURL(rawURL)
	if err != nil {
		return nil, opErr("add", "", ErrInvalidURL, err)
	}
	id := ref.ID()

	unlock := s.locks.lock(id)
	defer unlock()

	existing, err := s.store.FindByID(id)
	if err != nil {
		return nil, opErr("add", id, ErrStoreRead, err)
	}
	if existing != nil {
		return nil, opErr("add", id, ErrDuplicatePlugin, nil)
	}

	snap, err := s.fetchSnapshot(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return nil, opErr("add", id, ErrRemoteUnavailable, err)
	}

	p := &models.Plugin{
		ID:            id,
		RepositoryURL: ref.URL,
		Format:        models.FormatLegacy,
		Status:        models.StatusNotInstalled,
		Method:        models.MethodUnknown,
		AddedAt:       s.now(),
	}
	s.applySnapshot(p, snap)

	if err := s.store.CreatePlugin(p); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, opErr("add", id, ErrDuplicatePlugin, nil)
		}
		return nil, opErr("add", id, ErrStoreWrite, err)
	}

	s.logger.Info().Str("plugin", id).Strs("tags", p.Tags).Msg("added plugin to catalog")
	return p, nil
}

// fetchSnapshot gathers remote state. Only the repository lookup is
// required; release, commit and README failures leave those fields empty.
func (s *Service) fetchSnapshot(ctx context.Context, owner, name string) (*models.RepositorySnapshot, error) {
	repo, err := s.gateway.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = DefaultBranch
	}
	snap := &models.RepositorySnapshot{Repository: *repo}

	if rel, err := s.gateway.GetLatestRelease(ctx, owner, name); err != nil {
		s.logger.Warn().Err(err).Str("repo", owner+"/"+name).Msg("latest release unavailable")
	} else {
		snap.LatestRelease = rel
	}

	if commit, err := s.gateway.GetLatestCommit(ctx, owner, name, repo.DefaultBranch); err != nil {
		s.logger.Warn().Err(err).Str("repo", owner+"/"+name).Msg("latest commit unavailable")
	} else {
		snap.LatestCommit = commit
	}

	if readme, err := s.gateway.GetReadme(ctx, owner, name); err != nil {
		s.logger.Debug().Err(err).Str("repo", owner+"/"+name).Msg("readme unavailable")
	} else {
		snap.Readme = readme
	}

	return snap, nil
}

// applySnapshot copies remote facts onto p. Installation state is not touched.
func (s *Service) applySnapshot(p *models.Plugin, snap *models.RepositorySnapshot) {
	info := s.readme.Parse(snap.Readme)

	p.Name = snap.Name
	p.Author = snap.Owner
	p.Description = snap.Description
	if p.Description == "" {
		p.Description = info.Description
	}
	if !snap.PushedAt.IsZero() {
		pushed := snap.PushedAt
		p.LastUpdated = &pushed
	}

	p.Tags = tagger.Extract(tagger.Input{
		Topics:      append(append([]string(nil), snap.Topics...), info.Tags...),
		Description: p.Description,
		Readme:      snap.Readme,
		Name:        snap.Name,
	})

	if p.Metadata == nil {
		p.Metadata = models.Metadata{}
	}
	p.Metadata["stars"] = snap.Stars
	p.Metadata["default_branch"] = snap.DefaultBranch
	p.Metadata["html_url"] = snap.HTMLURL
	if snap.LatestCommit != "" {
		p.Metadata["latest_commit"] = snap.LatestCommit
	}

	var latest string
	if snap.LatestRelease != nil {
		p.Metadata["latest_release_tag"] = snap.LatestRelease.Tag
		latest = version.ExtractFromTag(snap.LatestRelease.Tag)
	} else {
		delete(p.Metadata, "latest_release_tag")
		if snap.LatestCommit != "" {
			latest = installer.ShortHash(snap.LatestCommit)
		}
	}
	if latest != "" {
		p.LatestVersion = &latest
	}
}

// InstallPlugin installs a not_installed or failed plugin. method may be
// MethodUnknown to pick release when an installable asset exists and clone
// otherwise. ref is the branch for clone installs and an optional tag for
// release installs. An installed plugin is ErrAlreadyInstalled and nothing
// is touched.
func (s *Service) InstallPlugin(ctx context.Context, id string, method models.Method, ref string) (*Result, error) {
	id = normalizeID(id)
	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.load("install", id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusInstalled {
		return resultFor(p, "", false, "already installed"), opErr("install", id, ErrAlreadyInstalled, nil)
	}

	opID := s.newID()
	if p.Status == models.StatusFailed {
		if _, err := s.transition(p, EventRetry); err != nil {
			return nil, opErr("install", id, ErrIllegalTransition, err)
		}
	}

	dir, err := s.dirs.ResolvePluginDirectory(s.opts.IDAPath, s.opts.PreferUserDir)
	if err != nil {
		return s.failInstall(p, opID, models.ActionInstall, opErr("install", id, ErrDirectoryResolution, err))
	}
	dest := filepath.Join(dir, installDirName(p))

	inst, err := s.runInstall(ctx, p, method, ref, dest)
	if err != nil {
		return s.failInstall(p, opID, models.ActionInstall, opErr("install", id, kindOf(err), err))
	}

	from := p.Status
	if _, err := s.transition(p, EventInstallSucceeded); err != nil {
		return nil, opErr("install", id, ErrIllegalTransition, err)
	}
	s.applyInstallation(p, inst)

	entry := s.entry(p.ID, opID, models.ActionInstall, &inst.Version, nil)
	if err := s.commit(p, entry); err != nil {
		return resultFor(p, opID, true, "installed, catalog not updated"), opErr("install", id, ErrStoreWrite, err)
	}

	s.logTransition(p.ID, "install", from, p.Status)
	return resultFor(p, opID, true, fmt.Sprintf("installed %s via %s", inst.Version, inst.Method)), nil
}

// runInstall resolves method and hands off to the executor.
func (s *Service) runInstall(ctx context.Context, p *models.Plugin, method models.Method, ref, dest string) (*installer.Installation, error) {
	owner, repo := p.OwnerRepo()

	var rel *models.Release
	if method == models.MethodRelease || method == models.MethodUnknown || method == "" {
		r, err := s.gateway.GetLatestRelease(ctx, owner, repo)
		if err != nil {
			if method == models.MethodRelease {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("plugin", p.ID).Msg("release lookup failed, falling back to clone")
		}
		rel = r
		if method != models.MethodRelease {
			method = models.MethodClone
			if rel != nil {
				if _, ok := installer.SelectAsset(rel.Assets, s.opts.PreferredAssets); ok {
					method = models.MethodRelease
				}
			}
		}
	}

	if method == models.MethodClone {
		branch := ref
		if branch == "" {
			branch = p.Metadata.String("branch")
		}
		if branch == "" {
			branch = p.Metadata.String("default_branch")
		}
		if branch == "" {
			branch = DefaultBranch
		}
		cloneURL := p.RepositoryURL
		if r, err := remote.ParseRepositoryURL(p.RepositoryURL); err == nil {
			cloneURL = r.CloneURL
		}
		return s.executor.InstallByClone(ctx, cloneURL, dest, branch)
	}

	if rel == nil {
		return nil, fmt.Errorf("%w: %s has no releases", ErrNoRelease, p.ID)
	}
	if ref != "" && version.ExtractFromTag(ref) != version.ExtractFromTag(rel.Tag) {
		return nil, fmt.Errorf("%w: %s is not the latest release (%s)", ErrNoRelease, ref, rel.Tag)
	}
	asset, ok := installer.SelectAsset(rel.Assets, s.opts.PreferredAssets)
	if !ok {
		return nil, fmt.Errorf("%w: release %s has no zip, py or tar.gz asset", ErrNoRelease, rel.Tag)
	}
	return s.executor.InstallByRelease(ctx, installer.ReleaseRequest{
		Owner: owner,
		Repo:  repo,
		Tag:   rel.Tag,
		Asset: asset,
	}, dest)
}

// applyInstallation records a successful install on p.
func (s *Service) applyInstallation(p *models.Plugin, inst *installer.Installation) {
	p.MarkInstalled(inst.Version, inst.Path, inst.Method)
	if p.Metadata == nil {
		p.Metadata = models.Metadata{}
	}
	delete(p.Metadata, "branch")
	delete(p.Metadata, "asset_sha256")
	if inst.Branch != "" {
		p.Metadata["branch"] = inst.Branch
	}
	if inst.Digest != "" {
		p.Metadata["asset_sha256"] = inst.Digest
	}
	if inst.Info == nil {
		return
	}
	p.Format = inst.Info.Format
	if inst.Info.EntryPoint != "" {
		p.Metadata["entry_point"] = inst.Info.EntryPoint
	}
	if inst.Info.IDAVersionMin != "" {
		v := inst.Info.IDAVersionMin
		p.IDAVersionMin = &v
	}
	if inst.Info.IDAVersionMax != "" {
		v := inst.Info.IDAVersionMax
		p.IDAVersionMax = &v
	}
}

// failInstall moves p to failed and records the failure under action.
func (s *Service) failInstall(p *models.Plugin, opID string, action models.Action, cause *OpError) (*Result, error) {
	from := p.Status
	if _, err := s.transition(p, EventInstallFailed); err != nil {
		s.logger.Error().Err(err).Str("plugin", p.ID).Msg("failure transition rejected")
	}
	reason := cause.Error()
	p.MarkFailed(reason)

	entry := s.entry(p.ID, opID, action, nil, &reason)
	if err := s.commit(p, entry); err != nil {
		s.logger.Error().Err(err).Str("plugin", p.ID).Msg("failed to record failure")
	}

	s.logger.Warn().Str("plugin", p.ID).Str("op", cause.Op).Err(cause.Err).Msg("operation failed")
	s.logTransition(p.ID, cause.Op, from, p.Status)
	return resultFor(p, opID, false, reason), cause
}

// UpdatePlugin reinstalls an installed plugin when the remote has something
// newer. With nothing newer the result has UpToDate set and neither files nor
// history change. A plugin that is not installed is ErrNotInstalled.
func (s *Service) UpdatePlugin(ctx context.Context, id string) (*Result, error) {
	id = normalizeID(id)
	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.load("update", id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusInstalled {
		return resultFor(p, "", false, "not installed"), opErr("update", id, ErrNotInstalled, nil)
	}

	owner, repo := p.OwnerRepo()
	snap, err := s.fetchSnapshot(ctx, owner, repo)
	if err != nil {
		return resultFor(p, "", false, "remote unavailable"), opErr("update", id, ErrRemoteUnavailable, err)
	}
	s.applySnapshot(p, snap)
	info := updateInfoFor(p, snap)

	if !info.HasUpdate {
		if err := s.store.Save(p); err != nil {
			s.logger.Warn().Err(err).Str("plugin", id).Msg("failed to store latest version")
		}
		r := resultFor(p, "", true, "already up to date")
		r.UpToDate = true
		return r, nil
	}

	opID := s.newID()
	oldVersion := *p.InstalledVersion
	path := *p.InstallPath
	method := p.Method

	if _, err := s.executor.Uninstall(path, s.opts.BackupOnUpdate); err != nil {
		cause := opErr("update", id, kindOf(err), err)
		reason := cause.Error()
		entry := s.entry(id, opID, models.ActionUpdate, &oldVersion, &reason)
		if err := s.commit(p, entry); err != nil {
			s.logger.Error().Err(err).Str("plugin", id).Msg("failed to record update failure")
		}
		return resultFor(p, opID, false, reason), cause
	}
	removed := s.entry(id, opID, models.ActionUninstall, &oldVersion, nil)
	if err := s.store.AppendHistory(&removed); err != nil {
		s.logger.Error().Err(err).Str("plugin", id).Msg("failed to record uninstall half of update")
	}

	ref := ""
	if method == models.MethodClone {
		ref = p.Metadata.String("branch")
	}
	inst, err := s.runInstall(ctx, p, method, ref, path)
	if err != nil {
		return s.failInstall(p, opID, models.ActionUpdate, opErr("update", id, kindOf(err), err))
	}

	s.applyInstallation(p, inst)
	entry := s.entry(id, opID, models.ActionInstall, &inst.Version, nil)
	if err := s.commit(p, entry); err != nil {
		return resultFor(p, opID, true, "updated, catalog not updated"), opErr("update", id, ErrStoreWrite, err)
	}

	s.logger.Info().Str("plugin", id).Str("from", oldVersion).Str("to", inst.Version).Msg("updated plugin")
	return resultFor(p, opID, true, fmt.Sprintf("updated %s -> %s", oldVersion, inst.Version)), nil
}

// RefreshPlugin pulls a clone install in place. A plugin installed from a
// release is ErrNotCloned. A failed pull leaves the plugin installed at its
// previous version.
func (s *Service) RefreshPlugin(ctx context.Context, id string) (*Result, error) {
	id = normalizeID(id)
	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.load("refresh", id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusInstalled {
		return resultFor(p, "", false, "not installed"), opErr("refresh", id, ErrNotInstalled, nil)
	}
	if p.Method != models.MethodClone {
		return resultFor(p, "", false, "not a clone install"), opErr("refresh", id, ErrNotCloned, nil)
	}

	opID := s.newID()
	oldVersion := *p.InstalledVersion
	newVersion, err := s.executor.Refresh(ctx, *p.InstallPath)
	if err != nil {
		cause := opErr("refresh", id, kindOf(err), err)
		reason := cause.Error()
		entry := s.entry(id, opID, models.ActionUpdate, &oldVersion, &reason)
		if err := s.store.AppendHistory(&entry); err != nil {
			s.logger.Error().Err(err).Str("plugin", id).Msg("failed to record refresh failure")
		}
		return resultFor(p, opID, false, reason), cause
	}

	if newVersion == oldVersion {
		r := resultFor(p, opID, true, "already up to date")
		r.UpToDate = true
		return r, nil
	}

	p.MarkInstalled(newVersion, *p.InstallPath, models.MethodClone)
	entry := s.entry(id, opID, models.ActionUpdate, &newVersion, nil)
	if err := s.commit(p, entry); err != nil {
		return resultFor(p, opID, true, "refreshed, catalog not updated"), opErr("refresh", id, ErrStoreWrite, err)
	}
	return resultFor(p, opID, true, fmt.Sprintf("refreshed %s -> %s", oldVersion, newVersion)), nil
}

// UninstallPlugin removes an installed or failed plugin's files and returns it
// to not_installed. Uninstalling a not_installed plugin succeeds without
// touching the filesystem. Every call writes one history entry. A failed
// backup aborts before anything is deleted and the status is kept.
func (s *Service) UninstallPlugin(ctx context.Context, id string, backup bool) (*Result, error) {
	id = normalizeID(id)
	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.load("uninstall", id)
	if err != nil {
		return nil, err
	}

	opID := s.newID()
	if p.Status == models.StatusNotInstalled {
		entry := s.entry(id, opID, models.ActionUninstall, nil, nil)
		if err := s.store.AppendHistory(&entry); err != nil {
			s.logger.Error().Err(err).Str("plugin", id).Msg("failed to record uninstall")
		}
		return resultFor(p, opID, true, "not installed"), nil
	}

	var oldVersion *string
	if p.InstalledVersion != nil {
		v := *p.InstalledVersion
		oldVersion = &v
	}

	removed := false
	if p.InstallPath != nil {
		removed, err = s.executor.Uninstall(*p.InstallPath, backup)
		if err != nil {
			cause := opErr("uninstall", id, kindOf(err), err)
			reason := cause.Error()
			entry := s.entry(id, opID, models.ActionUninstall, oldVersion, &reason)
			if err := s.store.AppendHistory(&entry); err != nil {
				s.logger.Error().Err(err).Str("plugin", id).Msg("failed to record uninstall failure")
			}
			return resultFor(p, opID, false, reason), cause
		}
	}

	from := p.Status
	if _, err := s.transition(p, EventUninstall); err != nil {
		return nil, opErr("uninstall", id, ErrIllegalTransition, err)
	}
	p.MarkNotInstalled()

	entry := s.entry(id, opID, models.ActionUninstall, oldVersion, nil)
	if err := s.commit(p, entry); err != nil {
		return resultFor(p, opID, true, "uninstalled, catalog not updated"), opErr("uninstall", id, ErrStoreWrite, err)
	}

	s.logTransition(id, "uninstall", from, p.Status)
	msg := "uninstalled"
	if !removed {
		msg = "uninstalled (no files on disk)"
	}
	return resultFor(p, opID, true, msg), nil
}

// RemoveFromCatalog deletes a plugin and its history from any status. Files
// on disk are not touched.
func (s *Service) RemoveFromCatalog(id string) error {
	id = normalizeID(id)
	unlock := s.locks.lock(id)
	defer unlock()

	found, err := s.store.Delete(id)
	if err != nil {
		return opErr("remove", id, ErrStoreWrite, err)
	}
	if !found {
		return opErr("remove", id, ErrPluginNotFound, nil)
	}
	s.logger.Info().Str("plugin", id).Msg("removed plugin from catalog")
	return nil
}

// normalizeID maps an owner/repo identifier or a repository URL onto the
// catalog key.
func normalizeID(raw string) string {
	if ref, err := remote.ParseRepositoryURL(raw); err == nil {
		return ref.ID()
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func (s *Service) load(op, id string) (*models.Plugin, error) {
	id = normalizeID(id)
	p, err := s.store.FindByID(id)
	if err != nil {
		return nil, opErr(op, id, ErrStoreRead, err)
	}
	if p == nil {
		return nil, opErr(op, id, ErrPluginNotFound, nil)
	}
	return p, nil
}

// transition moves p.Status through the lifecycle machine.
func (s *Service) transition(p *models.Plugin, event statekit.EventType) (models.Status, error) {
	to, err := advance(p.ID, p.Status, event)
	if err != nil {
		return p.Status, err
	}
	p.Status = to
	return to, nil
}

func (s *Service) entry(id, opID string, action models.Action, v, errMsg *string) models.InstallationHistory {
	return models.InstallationHistory{
		PluginID:     id,
		OperationID:  opID,
		Action:       action,
		Version:      v,
		Timestamp:    s.now(),
		Success:      errMsg == nil,
		ErrorMessage: errMsg,
	}
}

// commit writes history first, then the plugin. Both writes are attempted;
// the plugin write error is returned.
func (s *Service) commit(p *models.Plugin, entries ...models.InstallationHistory) error {
	for i := range entries {
		if err := s.store.AppendHistory(&entries[i]); err != nil {
			s.logger.Error().Err(err).Str("plugin", p.ID).Str("action", string(entries[i].Action)).Msg("history write failed")
		}
	}
	if err := p.Check(); err != nil {
		s.logger.Error().Err(err).Msg("plugin invariant violated")
	}
	if err := s.store.Save(p); err != nil {
		s.logger.Error().Err(err).Str("plugin", p.ID).Msg("plugin write failed")
		return err
	}
	return nil
}

func (s *Service) logTransition(id, op string, from, to models.Status) {
	s.logger.Info().Str("plugin", id).Str("op", op).Str("from", string(from)).Str("to", string(to)).Msg("plugin transition")
}

// installDirName is the directory a plugin is installed under.
func installDirName(p *models.Plugin) string {
	_, repo := p.OwnerRepo()
	name := strings.TrimSpace(repo)
	if name == "" {
		name = p.Name
	}
	return name
}
