package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/asteroid-belt/idapm/internal/models"
)

// ErrFakeNotFound is returned by fakes for unknown keys.
var ErrFakeNotFound = errors.New("fake: not found")

// DefaultPluginFiles is what FakeGit writes on a successful clone.
var DefaultPluginFiles = map[string]string{
	"plugin.py": "def PLUGIN_ENTRY():\n    return None\n",
}

// CloneCall records one FakeGit.Clone invocation.
type CloneCall struct {
	URL     string
	Dest    string
	Branch  string
	Shallow bool
}

// FakeGit is an in-memory git collaborator. A successful clone writes Files
// into the destination.
type FakeGit struct {
	mu       sync.Mutex
	Commit   string
	Files    map[string]string
	CloneErr error
	PullErr  error
	// Partial leaves a half-written destination behind when CloneErr is set.
	Partial bool
	Clones  []CloneCall
	Pulls   []string
}

// NewFakeGit returns a FakeGit reporting commit as HEAD.
func NewFakeGit(commit string) *FakeGit {
	return &FakeGit{Commit: commit, Files: DefaultPluginFiles}
}

// SetCommit changes the HEAD reported for future clones and pulls.
func (g *FakeGit) SetCommit(commit string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Commit = commit
}

// Clone implements installer.GitClient.
func (g *FakeGit) Clone(_ context.Context, url, dest, branch string, shallow bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Clones = append(g.Clones, CloneCall{URL: url, Dest: dest, Branch: branch, Shallow: shallow})

	if g.CloneErr != nil {
		if g.Partial {
			_ = os.MkdirAll(filepath.Join(dest, ".git"), 0755)
		}
		return g.CloneErr
	}

	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0755); err != nil {
		return err
	}
	for name, content := range g.Files {
		p := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	return os.WriteFile(filepath.Join(dest, ".git", "HEAD"), []byte(g.Commit), 0644)
}

// CurrentCommitHash implements installer.GitClient. It reads back the hash
// written at clone time so each working copy keeps its own version.
func (g *FakeGit) CurrentCommitHash(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(path, ".git", "HEAD"))
	if err != nil {
		return "", fmt.Errorf("not a repository: %w", err)
	}
	return string(data), nil
}

// Pull implements installer.GitClient by moving the working copy to Commit.
func (g *FakeGit) Pull(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Pulls = append(g.Pulls, path)
	if g.PullErr != nil {
		return g.PullErr
	}
	return os.WriteFile(filepath.Join(path, ".git", "HEAD"), []byte(g.Commit), 0644)
}

// CloneCount returns the number of clone attempts.
func (g *FakeGit) CloneCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Clones)
}

// FakeDownloader serves release assets from memory, keyed by asset name.
type FakeDownloader struct {
	mu     sync.Mutex
	Assets map[string][]byte
	Err    error
	Calls  int
}

// Download implements installer.Downloader.
func (d *FakeDownloader) Download(_ context.Context, _, _ string, asset models.ReleaseAsset) (io.ReadCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	data, ok := d.Assets[asset.Name]
	if !ok {
		return nil, fmt.Errorf("%w: asset %s", ErrFakeNotFound, asset.Name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// FakeGateway is an in-memory repository metadata gateway keyed by "owner/name".
type FakeGateway struct {
	mu       sync.Mutex
	Repos    map[string]*models.Repository
	Releases map[string]*models.Release
	Commits  map[string]string // "owner/name@branch" or "owner/name"
	Readmes  map[string]string
	Search   []models.Repository

	RepoErr    error
	ReleaseErr error
	CommitErr  error
	ReadmeErr  error

	RepoCalls int
}

// NewFakeGateway returns an empty gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Repos:    make(map[string]*models.Repository),
		Releases: make(map[string]*models.Release),
		Commits:  make(map[string]string),
		Readmes:  make(map[string]string),
	}
}

// AddRepo registers a repository with its default branch head.
func (g *FakeGateway) AddRepo(owner, name, branch, commit string) *models.Repository {
	g.mu.Lock()
	defer g.mu.Unlock()

	repo := &models.Repository{
		Owner:         owner,
		Name:          name,
		DefaultBranch: branch,
		HTMLURL:       fmt.Sprintf("https://github.com/%s/%s", owner, name),
	}
	g.Repos[owner+"/"+name] = repo
	if commit != "" {
		g.Commits[owner+"/"+name+"@"+branch] = commit
	}
	return repo
}

// SetCommit moves the head of branch.
func (g *FakeGateway) SetCommit(owner, name, branch, commit string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Commits[owner+"/"+name+"@"+branch] = commit
}

// SetRelease replaces the latest release.
func (g *FakeGateway) SetRelease(owner, name string, rel *models.Release) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Releases[owner+"/"+name] = rel
}

// GetRepository implements catalog.Gateway.
func (g *FakeGateway) GetRepository(_ context.Context, owner, name string) (*models.Repository, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.RepoCalls++
	if g.RepoErr != nil {
		return nil, g.RepoErr
	}
	repo, ok := g.Repos[owner+"/"+name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrFakeNotFound, owner, name)
	}
	cp := *repo
	return &cp, nil
}

// GetLatestRelease implements catalog.Gateway.
func (g *FakeGateway) GetLatestRelease(_ context.Context, owner, name string) (*models.Release, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ReleaseErr != nil {
		return nil, g.ReleaseErr
	}
	return g.Releases[owner+"/"+name], nil
}

// GetLatestCommit implements catalog.Gateway.
func (g *FakeGateway) GetLatestCommit(_ context.Context, owner, name, branch string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CommitErr != nil {
		return "", g.CommitErr
	}
	if c, ok := g.Commits[owner+"/"+name+"@"+branch]; ok {
		return c, nil
	}
	return g.Commits[owner+"/"+name], nil
}

// GetReadme implements catalog.Gateway.
func (g *FakeGateway) GetReadme(_ context.Context, owner, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ReadmeErr != nil {
		return "", g.ReadmeErr
	}
	return g.Readmes[owner+"/"+name], nil
}

// SearchRepositories implements catalog.Gateway.
func (g *FakeGateway) SearchRepositories(_ context.Context, _ string, limit int) ([]models.Repository, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if limit > 0 && len(g.Search) > limit {
		return append([]models.Repository(nil), g.Search[:limit]...), nil
	}
	return append([]models.Repository(nil), g.Search...), nil
}
