// Package cli provides the command-line interface for idapm.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/pkg/version"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idapm",
		Short: "Plugin manager for IDA Pro",
		Long: `Plugin manager for IDA Pro

Keeps a local catalog of IDA plugins hosted on GitHub, installs them into
IDA's plugin directories by git clone or from release assets, and tracks
every install, update and removal.

Configuration is read from $XDG_DATA_HOME/idapm/config.yaml and IDAPM_*
environment variables. GITHUB_TOKEN raises the GitHub API rate limit.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newAddCmd(),
		newInstallCmd(),
		newUpdateCmd(),
		newUninstallCmd(),
		newRemoveCmd(),
		newListCmd(),
		newSearchCmd(),
		newInfoCmd(),
		newHistoryCmd(),
		newScanCmd(),
		newOutdatedCmd(),
		newDetectCmd(),
		newDiscoverCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return cmd
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context) error {
	return fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.Commit),
	)
}

// ExitCode maps an error returned by Execute onto a process exit status.
// Expected catalog failures exit 1; anything unexpected exits 2.
func ExitCode(err error) int {
	var opErr *catalog.OpError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &opErr):
		return 1
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 2
	}
}

// isInteractive checks if we're running in an interactive terminal.
var isInteractive = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
