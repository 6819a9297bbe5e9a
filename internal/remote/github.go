// Package remote talks to GitHub: repository metadata through the REST API and
// working copies through go-git.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/pkg/version"
)

const (
	// DefaultCacheTTL is the default TTL for cached responses.
	DefaultCacheTTL = 15 * time.Minute

	// DefaultCacheSize bounds the number of cached responses.
	DefaultCacheSize = 512

	// AuthenticatedRateLimit is requests per minute with token.
	AuthenticatedRateLimit = 60

	// UnauthenticatedRateLimit is requests per minute without token.
	UnauthenticatedRateLimit = 10

	// DefaultDiscoveryQuery finds repositories tagged as IDA plugins.
	DefaultDiscoveryQuery = "topic:ida-pro-plugin"
)

var (
	// ErrNotFound is returned when a repository does not exist or is not visible.
	ErrNotFound = errors.New("repository not found")

	// ErrRateLimited is returned when GitHub refuses requests for the current window.
	ErrRateLimited = errors.New("github rate limit exceeded")
)

// Options configures a GitHubClient.
type Options struct {
	Token             string
	RateLimit         int // requests per minute, 0 picks a default from Token
	CacheTTL          time.Duration
	CacheSize         int
	IncludePrerelease bool
	BaseURL           string // API root override, used by tests and GitHub Enterprise
	Logger            *zerolog.Logger
}

// GitHubClient wraps the GitHub API with rate limiting and caching.
type GitHubClient struct {
	rest              *github.Client
	httpClient        *http.Client
	limiter           *rate.Limiter
	cache             *expirable.LRU[string, any]
	group             singleflight.Group
	includePrerelease bool
	logger            zerolog.Logger

	mu           sync.Mutex
	requestCount int
	cacheHits    int
	cacheMisses  int
}

// NewGitHubClient creates a new GitHub client with optional authentication.
func NewGitHubClient(opts Options) (*GitHubClient, error) {
	httpClient := http.DefaultClient
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		if opts.Token != "" {
			rateLimit = AuthenticatedRateLimit
		} else {
			rateLimit = UnauthenticatedRateLimit
		}
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	rest := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		rest.BaseURL = u
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &GitHubClient{
		rest:              rest,
		httpClient:        httpClient,
		limiter:           rate.NewLimiter(rate.Every(time.Minute/time.Duration(rateLimit)), rateLimit),
		cache:             expirable.NewLRU[string, any](size, nil, ttl),
		includePrerelease: opts.IncludePrerelease,
		logger:            logger.With().Str("component", "github").Logger(),
	}, nil
}

// cached serves key from the response cache, or runs fetch once per key across
// concurrent callers and caches the result.
func cached[T any](ctx context.Context, c *GitHubClient, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		c.mu.Lock()
		c.cacheHits++
		c.mu.Unlock()
		t, _ := v.(T)
		return t, nil
	}

	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		c.mu.Lock()
		c.requestCount++
		c.mu.Unlock()

		res, err := fetch()
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, res)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

// GetRepository fetches repository metadata.
func (c *GitHubClient) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	key := fmt.Sprintf("repo:%s/%s", owner, name)
	return cached(ctx, c, key, func() (*models.Repository, error) {
		repo, resp, err := c.rest.Repositories.Get(ctx, owner, name)
		if err != nil {
			return nil, &RepoError{Owner: owner, Repo: name, Op: "get", Err: c.classify(err)}
		}
		c.checkRate(resp)
		return toRepository(repo), nil
	})
}

// GetLatestRelease returns the newest published release, or nil when the
// repository has none. Drafts are ignored; prereleases only count when the
// client was configured to include them.
func (c *GitHubClient) GetLatestRelease(ctx context.Context, owner, name string) (*models.Release, error) {
	key := fmt.Sprintf("release:%s/%s:%t", owner, name, c.includePrerelease)
	return cached(ctx, c, key, func() (*models.Release, error) {
		if !c.includePrerelease {
			rel, _, err := c.rest.Repositories.GetLatestRelease(ctx, owner, name)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, &RepoError{Owner: owner, Repo: name, Op: "latest-release", Err: c.classify(err)}
			}
			return toRelease(rel), nil
		}

		releases, _, err := c.rest.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{PerPage: 30})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, &RepoError{Owner: owner, Repo: name, Op: "list-releases", Err: c.classify(err)}
		}
		return newestRelease(releases), nil
	})
}

// newestRelease picks the highest-versioned non-draft release.
func newestRelease(releases []*github.RepositoryRelease) *models.Release {
	byTag := make(map[string]*github.RepositoryRelease, len(releases))
	var tags []string
	for _, r := range releases {
		if r.GetDraft() || r.GetTagName() == "" {
			continue
		}
		byTag[r.GetTagName()] = r
		tags = append(tags, r.GetTagName())
	}
	if len(tags) == 0 {
		return nil
	}
	return toRelease(byTag[version.SortTags(tags)[0]])
}

// GetLatestCommit returns the head commit SHA of branch, or "" when the branch does not exist.
func (c *GitHubClient) GetLatestCommit(ctx context.Context, owner, name, branch string) (string, error) {
	key := fmt.Sprintf("commit:%s/%s@%s", owner, name, branch)
	return cached(ctx, c, key, func() (string, error) {
		b, resp, err := c.rest.Repositories.GetBranch(ctx, owner, name, branch, 0)
		if err != nil {
			if notFound(resp, err) {
				return "", nil
			}
			return "", &RepoError{Owner: owner, Repo: name, Op: "branch", Err: c.classify(err)}
		}
		if b == nil || b.Commit == nil {
			return "", nil
		}
		return b.Commit.GetSHA(), nil
	})
}

// GetReadme returns the decoded README, or "" when the repository has none.
func (c *GitHubClient) GetReadme(ctx context.Context, owner, name string) (string, error) {
	key := fmt.Sprintf("readme:%s/%s", owner, name)
	return cached(ctx, c, key, func() (string, error) {
		content, _, err := c.rest.Repositories.GetReadme(ctx, owner, name, nil)
		if err != nil {
			if isNotFound(err) {
				return "", nil
			}
			return "", &RepoError{Owner: owner, Repo: name, Op: "readme", Err: c.classify(err)}
		}
		text, err := content.GetContent()
		if err != nil {
			return "", &RepoError{Owner: owner, Repo: name, Op: "readme", Err: fmt.Errorf("decode content: %w", err)}
		}
		return text, nil
	})
}

// SearchRepositories runs a repository search sorted by stars. An empty query
// uses DefaultDiscoveryQuery.
func (c *GitHubClient) SearchRepositories(ctx context.Context, query string, limit int) ([]models.Repository, error) {
	if query == "" {
		query = DefaultDiscoveryQuery
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	key := fmt.Sprintf("search:%s:%d", query, limit)
	return cached(ctx, c, key, func() ([]models.Repository, error) {
		opts := &github.SearchOptions{
			Sort:        "stars",
			Order:       "desc",
			ListOptions: github.ListOptions{PerPage: limit},
		}
		result, resp, err := c.rest.Search.Repositories(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("search repositories: %w", c.classify(err))
		}
		c.checkRate(resp)

		repos := make([]models.Repository, 0, len(result.Repositories))
		for _, r := range result.Repositories {
			repos = append(repos, *toRepository(r))
		}
		return repos, nil
	})
}

// Download streams a release asset. The caller closes the reader.
func (c *GitHubClient) Download(ctx context.Context, owner, name string, asset models.ReleaseAsset) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	c.mu.Lock()
	c.requestCount++
	c.mu.Unlock()

	if asset.ID != 0 {
		rc, _, err := c.rest.Repositories.DownloadReleaseAsset(ctx, owner, name, asset.ID, c.httpClient)
		if err == nil {
			return rc, nil
		}
		if asset.DownloadURL == "" {
			return nil, &RepoError{Owner: owner, Repo: name, Op: "download", Err: c.classify(err)}
		}
		c.logger.Debug().Err(err).Str("asset", asset.Name).Msg("asset API download failed, using browser URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return nil, &RepoError{Owner: owner, Repo: name, Op: "download", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RepoError{Owner: owner, Repo: name, Op: "download", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &RepoError{Owner: owner, Repo: name, Op: "download", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return resp.Body, nil
}

// Stats returns client statistics.
func (c *GitHubClient) Stats() (requests, cacheHits, cacheMisses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestCount, c.cacheHits, c.cacheMisses
}

// classify maps API errors onto package sentinels.
func (c *GitHubClient) classify(err error) error {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return fmt.Errorf("%w, retry after %v", ErrRateLimited, rle.Rate.Reset.Time)
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func (c *GitHubClient) checkRate(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		c.logger.Warn().Int("remaining", resp.Rate.Remaining).Msg("github rate limit low")
	}
}

// notFound also covers calls that report a bare status error with the
// response attached, as GetBranch does when redirects are not followed.
func notFound(resp *github.Response, err error) bool {
	if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	return isNotFound(err)
}

func isNotFound(err error) bool {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func toRepository(r *github.Repository) *models.Repository {
	return &models.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		DefaultBranch: r.GetDefaultBranch(),
		Description:   r.GetDescription(),
		Topics:        r.Topics,
		Stars:         r.GetStargazersCount(),
		HTMLURL:       r.GetHTMLURL(),
		PushedAt:      r.GetPushedAt().Time,
	}
}

func toRelease(r *github.RepositoryRelease) *models.Release {
	rel := &models.Release{
		Tag:         r.GetTagName(),
		Name:        r.GetName(),
		Body:        r.GetBody(),
		HTMLURL:     r.GetHTMLURL(),
		Prerelease:  r.GetPrerelease(),
		PublishedAt: r.GetPublishedAt().Time,
	}
	for _, a := range r.Assets {
		rel.Assets = append(rel.Assets, models.ReleaseAsset{
			ID:          a.GetID(),
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
			ContentType: a.GetContentType(),
			Size:        int64(a.GetSize()),
		})
	}
	return rel
}
