package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/testutil"
)

// A small, long-lived public IDA plugin repository.
const (
	liveOwner = "hex-rays"
	liveRepo  = "ida-sdk"
)

func TestGitHubClient_Live(t *testing.T) {
	testutil.SkipNetworkTests(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := NewGitHubClient(Options{Token: os.Getenv("GITHUB_TOKEN")})
	require.NoError(t, err)

	repo, err := c.GetRepository(ctx, liveOwner, liveRepo)
	require.NoError(t, err)
	assert.Equal(t, liveRepo, repo.Name)
	assert.NotEmpty(t, repo.DefaultBranch)

	commit, err := c.GetLatestCommit(ctx, liveOwner, liveRepo, repo.DefaultBranch)
	require.NoError(t, err)
	assert.Len(t, commit, 40)

	// Second lookup is served from the cache.
	_, err = c.GetRepository(ctx, liveOwner, liveRepo)
	require.NoError(t, err)
	_, hits, _ := c.Stats()
	assert.GreaterOrEqual(t, hits, 1)

	found, err := c.SearchRepositories(ctx, DefaultDiscoveryQuery, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, found)
	assert.LessOrEqual(t, len(found), 5)
}

func TestGit_LiveShallowClone(t *testing.T) {
	testutil.SkipNetworkTests(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dest := filepath.Join(t.TempDir(), "flare-ida")
	g := NewGit(os.Getenv("GITHUB_TOKEN"))

	// flare-ida has no main branch; the clone falls back to master.
	require.NoError(t, g.Clone(ctx, "https://github.com/mandiant/flare-ida.git", dest, "main", true))

	hash, err := g.CurrentCommitHash(dest)
	require.NoError(t, err)
	assert.Len(t, hash, 40)
}
