package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitHttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// DefaultRepoTimeout is the per-repository timeout for clone/pull operations.
const DefaultRepoTimeout = 5 * time.Minute

// ErrDestinationNotEmpty is returned when a clone target already holds files.
var ErrDestinationNotEmpty = errors.New("destination exists and is not empty")

// RepoError represents repository operation errors.
type RepoError struct {
	Owner string
	Repo  string
	Op    string // "clone", "pull", "open", "head", "get", ...
	Err   error
}

func (e *RepoError) Error() string {
	if e.Owner == "" && e.Repo == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s failed: %v", e.Owner, e.Repo, e.Op, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

// Git performs working copy operations with go-git.
type Git struct {
	token string
}

// NewGit creates a git client. The token, when set, authenticates https remotes.
func NewGit(token string) *Git {
	return &Git{token: token}
}

// Clone materializes url at dest. When branch is "main" or "master" and does not
// exist on the remote, the other name is tried. Any partial directory is removed
// on failure; an existing non-empty dest is rejected and left untouched.
func (g *Git) Clone(ctx context.Context, url, dest, branch string, shallow bool) error {
	if nonEmpty(dest) {
		return &RepoError{Op: "clone", Err: fmt.Errorf("%w: %s", ErrDestinationNotEmpty, dest)}
	}

	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > DefaultRepoTimeout {
		ctx, cancel = context.WithTimeout(ctx, DefaultRepoTimeout)
		defer cancel()
	}

	err := g.clone(ctx, url, dest, branch, shallow)
	if err != nil && isMissingRef(err) {
		if alt := alternateBranch(branch); alt != "" {
			err = g.clone(ctx, url, dest, alt, shallow)
		}
	}
	if err != nil {
		return &RepoError{Op: "clone", Err: err}
	}
	return nil
}

func (g *Git) clone(ctx context.Context, url, dest, branch string, shallow bool) error {
	opts := &git.CloneOptions{
		URL:          url,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if shallow {
		opts.Depth = 1
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	if g.token != "" && strings.HasPrefix(url, "https://") {
		opts.Auth = &gitHttp.BasicAuth{
			Username: "oauth2",
			Password: g.token,
		}
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		// Clean up partial clone on failure (best-effort)
		_ = os.RemoveAll(dest)
		return err
	}
	return nil
}

// CurrentCommitHash returns the HEAD commit of the working copy at path.
func (g *Git) CurrentCommitHash(path string) (string, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return "", &RepoError{Op: "open", Err: err}
	}
	ref, err := r.Head()
	if err != nil {
		return "", &RepoError{Op: "head", Err: err}
	}
	return ref.Hash().String(), nil
}

// Pull fast-forwards the working copy at path. Already up to date is success.
func (g *Git) Pull(ctx context.Context, path string) error {
	r, err := git.PlainOpen(path)
	if err != nil {
		return &RepoError{Op: "open", Err: err}
	}
	w, err := r.Worktree()
	if err != nil {
		return &RepoError{Op: "worktree", Err: err}
	}

	opts := &git.PullOptions{RemoteName: "origin"}
	if head, err := r.Head(); err == nil && head.Name().IsBranch() {
		opts.ReferenceName = head.Name()
		opts.SingleBranch = true
	}
	if g.token != "" {
		if remote, err := r.Remote("origin"); err == nil {
			if urls := remote.Config().URLs; len(urls) > 0 && strings.HasPrefix(urls[0], "https://") {
				opts.Auth = &gitHttp.BasicAuth{Username: "oauth2", Password: g.token}
			}
		}
	}

	err = w.PullContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &RepoError{Op: "pull", Err: err}
	}
	return nil
}

func isMissingRef(err error) bool {
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "couldn't find remote ref") || strings.Contains(msg, "reference not found")
}

func alternateBranch(branch string) string {
	switch branch {
	case "main":
		return "master"
	case "master":
		return "main"
	}
	return ""
}

func nonEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
