package catalog

import (
	"errors"
	"fmt"

	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/locator"
	"github.com/asteroid-belt/idapm/internal/remote"
)

// Error kinds surfaced by Service operations. Test with errors.Is.
var (
	ErrDuplicatePlugin     = errors.New("plugin already in catalog")
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrAlreadyInstalled    = errors.New("plugin already installed")
	ErrNotInstalled        = errors.New("plugin not installed")
	ErrDirectoryResolution = errors.New("cannot resolve plugin directory")
	ErrRemoteUnavailable   = errors.New("remote unavailable")
	ErrNoRelease           = errors.New("no installable release")
	ErrNotCloned           = errors.New("plugin was not installed by clone")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrStoreRead           = errors.New("catalog read failed")
	ErrStoreWrite          = errors.New("catalog write failed")

	ErrInvalidURL       = remote.ErrInvalidURL
	ErrCloneFailed      = installer.ErrCloneFailed
	ErrExtractionFailed = installer.ErrExtractionFailed
	ErrBackupFailed     = installer.ErrBackupFailed
	ErrUninstallFailed  = installer.ErrUninstallFailed
)

// OpError reports a failed catalog operation. Kind is one of the sentinels
// above; Err carries the underlying cause when there is one.
type OpError struct {
	Op       string
	PluginID string
	Kind     error
	Err      error
}

func (e *OpError) Error() string {
	subject := e.Op
	if e.PluginID != "" {
		subject += " " + e.PluginID
	}
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", subject, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", subject, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", subject, e.Kind, e.Err)
	}
}

func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func opErr(op, id string, kind, err error) *OpError {
	return &OpError{Op: op, PluginID: id, Kind: kind, Err: err}
}

// kindOf maps a collaborator failure onto an error kind.
func kindOf(err error) error {
	if errors.Is(err, locator.ErrCreateDirectory) {
		return ErrDirectoryResolution
	}
	for _, k := range []error{
		ErrBackupFailed,
		ErrUninstallFailed,
		ErrCloneFailed,
		ErrExtractionFailed,
		ErrDirectoryResolution,
		ErrNoRelease,
		ErrNotCloned,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrRemoteUnavailable
}
