package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asteroid-belt/idapm/internal/models"
)

// ErrInvalidURL is returned when a repository URL does not identify a GitHub owner and repository.
var ErrInvalidURL = errors.New("invalid repository URL")

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner    string
	Repo     string
	URL      string // canonical https URL
	CloneURL string
}

// ID returns the catalog identifier for the repository.
func (r RepoRef) ID() string {
	return models.PluginID(r.Owner, r.Repo)
}

// ParseRepositoryURL parses a repository URL in various formats.
// Supported formats:
// - owner/repo
// - https://github.com/owner/repo
// - https://github.com/owner/repo.git
// - https://github.com/owner/repo/
// - git@github.com:owner/repo.git
func ParseRepositoryURL(urlStr string) (RepoRef, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return RepoRef{}, fmt.Errorf("%w: repository URL cannot be empty", ErrInvalidURL)
	}

	var owner, repo string

	switch {
	case !strings.Contains(urlStr, "://") && !strings.Contains(urlStr, "git@"):
		// Short format: owner/repo
		parts := strings.Split(urlStr, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return RepoRef{}, fmt.Errorf("%w: expected 'owner/repo', got '%s'", ErrInvalidURL, urlStr)
		}
		owner, repo = parts[0], parts[1]
	case strings.HasPrefix(urlStr, "https://github.com/") || strings.HasPrefix(urlStr, "http://github.com/"):
		rest := strings.TrimPrefix(urlStr, "https://")
		rest = strings.TrimPrefix(rest, "http://")
		rest = strings.TrimPrefix(rest, "github.com/")
		rest = strings.TrimSuffix(rest, "/")

		// Exactly owner/repo: deeper paths (tree/, blob/) are ambiguous
		pathParts := strings.Split(rest, "/")
		if len(pathParts) != 2 {
			return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, urlStr)
		}
		owner, repo = pathParts[0], pathParts[1]
	case strings.HasPrefix(urlStr, "git@github.com:"):
		pathParts := strings.Split(strings.TrimPrefix(urlStr, "git@github.com:"), "/")
		if len(pathParts) != 2 {
			return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, urlStr)
		}
		owner, repo = pathParts[0], pathParts[1]
	default:
		return RepoRef{}, fmt.Errorf("%w: unsupported format: %s", ErrInvalidURL, urlStr)
	}

	repo = strings.TrimSuffix(repo, ".git")

	if !isValidGitHubName(owner) || !isValidRepoName(repo) {
		return RepoRef{}, fmt.Errorf("%w: invalid owner or repo name: owner=%s, repo=%s", ErrInvalidURL, owner, repo)
	}

	return RepoRef{
		Owner:    owner,
		Repo:     repo,
		URL:      fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		CloneURL: fmt.Sprintf("https://github.com/%s/%s.git", owner, repo),
	}, nil
}

// isValidGitHubName validates a GitHub username.
// GitHub names must:
// - Start and end with alphanumeric character
// - Contain only alphanumeric characters, hyphens, and underscores
// - Be 1-39 characters long
func isValidGitHubName(name string) bool {
	if len(name) == 0 || len(name) > 39 {
		return false
	}

	if !isAlphanumeric(rune(name[0])) || !isAlphanumeric(rune(name[len(name)-1])) {
		return false
	}

	for _, ch := range name {
		if !isAlphanumeric(ch) && ch != '-' && ch != '_' {
			return false
		}
	}

	return true
}

// isValidRepoName validates a repository name. Repositories also allow dots
// (e.g. "ida.py"), but not "." or "..".
func isValidRepoName(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > 100 {
		return false
	}
	for _, ch := range name {
		if !isAlphanumeric(ch) && ch != '-' && ch != '_' && ch != '.' {
			return false
		}
	}
	return true
}

// isAlphanumeric checks if a rune is alphanumeric.
func isAlphanumeric(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
