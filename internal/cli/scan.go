package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Compare the catalog with IDA's plugin directories",
		Long: `Scan every IDA plugin directory and report differences with the catalog:

  untracked            a plugin on disk that the catalog does not track
  missing              an installed plugin whose files are gone
  installed elsewhere  an installed plugin outside every plugin directory

The catalog is not changed.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		found, err := a.svc.ReconcileLocalScan(cmd.Context())
		if err != nil {
			return err
		}

		dirs := a.locator.AllPluginDirectories(idaPath(a))
		_, _ = fmt.Fprintf(out, "Scanned %d plugin director%s\n", len(dirs), plural(len(dirs), "y", "ies"))
		for _, d := range dirs {
			_, _ = fmt.Fprintf(out, "  %s\n", dimStyle.Render(d))
		}

		if len(found) == 0 {
			_, _ = fmt.Fprintln(out, successStyle.Render("\nCatalog and disk agree."))
			return nil
		}

		_, _ = fmt.Fprintln(out)
		for _, d := range found {
			label := discrepancyLabel(d.Kind)
			line := fmt.Sprintf("%s %s", label, d.Path)
			if d.PluginID != "" {
				line += " " + idStyle.Render(d.PluginID)
			}
			if d.Format != "" {
				line += dimStyle.Render(" (" + string(d.Format) + ")")
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	})
}

func discrepancyLabel(k catalog.DiscrepancyKind) string {
	switch k {
	case catalog.UntrackedOnDisk:
		return warnStyle.Render(fmt.Sprintf("%-20s", "untracked"))
	case catalog.MissingOnDisk:
		return errorStyle.Render(fmt.Sprintf("%-20s", "missing"))
	default:
		return warnStyle.Render(fmt.Sprintf("%-20s", "installed elsewhere"))
	}
}

func idaPath(a *app) string {
	if a.ida != nil {
		return a.ida.Path
	}
	return a.cfg.IDA.InstallPath
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
