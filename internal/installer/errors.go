package installer

import (
	"errors"
	"fmt"
)

var (
	// ErrCloneFailed is returned when a clone install cannot materialize a plugin.
	ErrCloneFailed = errors.New("clone failed")

	// ErrExtractionFailed is returned when a release asset cannot be downloaded or unpacked.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrBackupFailed is returned when a pre-uninstall backup cannot be written.
	// The plugin files are left untouched.
	ErrBackupFailed = errors.New("backup failed")

	// ErrUninstallFailed is returned when plugin files cannot be removed.
	ErrUninstallFailed = errors.New("uninstall failed")

	// ErrDestinationNotEmpty is returned when the install target already holds files.
	ErrDestinationNotEmpty = errors.New("destination exists and is not empty")

	// ErrInvalidStructure is returned when a directory does not look like an IDA plugin.
	ErrInvalidStructure = errors.New("no valid plugin structure found")

	// ErrUnsafePath is returned for archive entries that would escape the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")

	// ErrUnsupportedAsset is returned for release assets that are not zip, tar.gz or py.
	ErrUnsupportedAsset = errors.New("unsupported release asset")
)

// InstallError carries the failing step and path.
type InstallError struct {
	Op   string // "clone", "download", "extract", "validate", "backup", "remove"
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// cloneErr tags err as a clone failure.
func cloneErr(op, path string, err error) error {
	return &InstallError{Op: op, Path: path, Err: fmt.Errorf("%w: %w", ErrCloneFailed, err)}
}

// extractErr tags err as an extraction failure.
func extractErr(op, path string, err error) error {
	return &InstallError{Op: op, Path: path, Err: fmt.Errorf("%w: %w", ErrExtractionFailed, err)}
}
