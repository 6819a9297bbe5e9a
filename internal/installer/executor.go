// Package installer performs the file-level work of installing and removing
// IDA plugins: cloning repositories, unpacking release assets, and deleting
// plugin directories with an optional backup.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/idapm/internal/hash"
	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/pkg/version"
)

// ShortHashLength is the length of a commit hash used as an installed version.
const ShortHashLength = 8

// GitClient materializes and inspects working copies.
type GitClient interface {
	Clone(ctx context.Context, url, dest, branch string, shallow bool) error
	CurrentCommitHash(path string) (string, error)
	Pull(ctx context.Context, path string) error
}

// Downloader streams release assets.
type Downloader interface {
	Download(ctx context.Context, owner, repo string, asset models.ReleaseAsset) (io.ReadCloser, error)
}

// Installation is the outcome of a successful install.
type Installation struct {
	Path    string
	Version string
	Method  models.Method
	Branch  string // clone installs
	Digest  string // SHA256 of the release asset
	Info    *PluginInfo
}

// ReleaseRequest names the release asset to install.
type ReleaseRequest struct {
	Owner string
	Repo  string
	Tag   string
	Asset models.ReleaseAsset
}

// Options configures an Executor.
type Options struct {
	BackupDir string // where uninstall backups go, defaults to a temp directory
	TempDir   string // scratch space for downloads, defaults to os.TempDir
	Logger    *zerolog.Logger
}

// Executor installs and removes plugin files.
type Executor struct {
	git        GitClient
	downloader Downloader
	backupDir  string
	tempDir    string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewExecutor creates an executor backed by the given collaborators.
func NewExecutor(git GitClient, downloader Downloader, opts Options) *Executor {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	backupDir := opts.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(os.TempDir(), "idapm-backups")
	}
	return &Executor{
		git:        git,
		downloader: downloader,
		backupDir:  backupDir,
		tempDir:    opts.TempDir,
		logger:     logger.With().Str("component", "installer").Logger(),
		now:        time.Now,
	}
}

// ShortHash truncates a commit hash to ShortHashLength characters.
func ShortHash(h string) string {
	if len(h) > ShortHashLength {
		return h[:ShortHashLength]
	}
	return h
}

// InstallByClone clones url at dest and reports the short HEAD hash as the
// version. On any failure no directory is left at dest, except when dest held
// files beforehand, in which case it is not touched.
func (e *Executor) InstallByClone(ctx context.Context, url, dest, branch string) (*Installation, error) {
	if nonEmpty(dest) {
		return nil, cloneErr("clone", dest, ErrDestinationNotEmpty)
	}

	if err := e.git.Clone(ctx, url, dest, branch, true); err != nil {
		_ = os.RemoveAll(dest)
		return nil, cloneErr("clone", dest, err)
	}

	commit, err := e.git.CurrentCommitHash(dest)
	if err != nil {
		_ = os.RemoveAll(dest)
		return nil, cloneErr("clone", dest, err)
	}

	info, err := DetectFormat(dest)
	if err != nil {
		_ = os.RemoveAll(dest)
		return nil, cloneErr("validate", dest, err)
	}

	e.logger.Info().Str("url", url).Str("path", dest).Str("commit", ShortHash(commit)).Msg("cloned plugin")
	return &Installation{
		Path:    dest,
		Version: ShortHash(commit),
		Method:  models.MethodClone,
		Branch:  branch,
		Info:    info,
	}, nil
}

// InstallByRelease downloads req.Asset and unpacks it into dest. A single
// top-level directory inside an archive is flattened. A .py asset is written
// next to dest as a loose script, since IDA only loads top-level scripts.
// On failure nothing is left at the install path.
func (e *Executor) InstallByRelease(ctx context.Context, req ReleaseRequest, dest string) (*Installation, error) {
	kind := AssetKind(req.Asset.Name)
	if kind == "" {
		return nil, extractErr("download", dest, fmt.Errorf("%w: %s", ErrUnsupportedAsset, req.Asset.Name))
	}

	target := dest
	if kind == KindScript {
		target = filepath.Join(filepath.Dir(dest), filepath.Base(req.Asset.Name))
		if exists(target) {
			return nil, extractErr("extract", target, ErrDestinationNotEmpty)
		}
	} else if nonEmpty(dest) {
		return nil, extractErr("extract", dest, ErrDestinationNotEmpty)
	}

	scratch, err := os.MkdirTemp(e.tempDir, "idapm-release-*")
	if err != nil {
		return nil, extractErr("download", target, err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	archive := filepath.Join(scratch, filepath.Base(req.Asset.Name))
	digest, err := e.download(ctx, req, archive)
	if err != nil {
		return nil, extractErr("download", target, err)
	}

	switch kind {
	case KindZip:
		err = extractZip(archive, dest)
	case KindTarGz:
		err = extractTarGz(archive, dest)
	case KindScript:
		err = copyTree(archive, target)
	}
	if err == nil && kind != KindScript {
		err = flatten(dest)
	}
	if err != nil {
		_ = os.RemoveAll(target)
		return nil, extractErr("extract", target, err)
	}

	info, err := DetectFormat(target)
	if err != nil {
		_ = os.RemoveAll(target)
		return nil, extractErr("validate", target, err)
	}

	v := version.ExtractFromTag(req.Tag)
	e.logger.Info().Str("asset", req.Asset.Name).Str("path", target).Str("version", v).Msg("installed release")
	return &Installation{
		Path:    target,
		Version: v,
		Method:  models.MethodRelease,
		Digest:  digest,
		Info:    info,
	}, nil
}

func (e *Executor) download(ctx context.Context, req ReleaseRequest, path string) (string, error) {
	if e.downloader == nil {
		return "", fmt.Errorf("no downloader configured")
	}
	rc, err := e.downloader.Download(ctx, req.Owner, req.Repo, req.Asset)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	digest, n, err := hash.CopySHA256(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	e.logger.Debug().Str("asset", req.Asset.Name).Int64("bytes", n).Str("sha256", digest).Msg("downloaded asset")
	return digest, nil
}

// Uninstall removes path, a directory or a single script. A missing path is
// success with removed=false. With backup set, a copy is written to the
// backup directory first; a failed backup aborts before anything is deleted.
func (e *Executor) Uninstall(path string, backup bool) (removed bool, err error) {
	if path == "" || !exists(path) {
		return false, nil
	}

	var backupPath string
	if backup {
		backupPath, err = e.Backup(path)
		if err != nil {
			return false, &InstallError{Op: "backup", Path: path, Err: fmt.Errorf("%w: %w", ErrBackupFailed, err)}
		}
	}

	if err := os.RemoveAll(path); err != nil {
		if backupPath != "" {
			if restoreErr := copyTree(backupPath, path); restoreErr != nil {
				e.logger.Error().Err(restoreErr).Str("path", path).Msg("restore from backup failed")
			}
		}
		return false, &InstallError{Op: "remove", Path: path, Err: fmt.Errorf("%w: %w", ErrUninstallFailed, err)}
	}

	e.logger.Info().Str("path", path).Str("backup", backupPath).Msg("removed plugin files")
	return true, nil
}

// Backup copies path into the backup directory under a timestamped name and
// returns the copy's location.
func (e *Executor) Backup(path string) (string, error) {
	if err := os.MkdirAll(e.backupDir, 0755); err != nil {
		return "", err
	}
	stamp := e.now().UTC().Format("20060102T150405.000000000")
	dst := filepath.Join(e.backupDir, fmt.Sprintf("%s-%s", filepath.Base(path), stamp))
	if err := copyTree(path, dst); err != nil {
		_ = os.RemoveAll(dst)
		return "", err
	}
	return dst, nil
}

// Refresh pulls a clone install in place and returns its new short hash.
func (e *Executor) Refresh(ctx context.Context, path string) (string, error) {
	if err := e.git.Pull(ctx, path); err != nil {
		return "", cloneErr("pull", path, err)
	}
	commit, err := e.git.CurrentCommitHash(path)
	if err != nil {
		return "", cloneErr("pull", path, err)
	}
	return ShortHash(commit), nil
}
