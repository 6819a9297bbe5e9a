package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Show the detected IDA installation and plugin directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				if a.ida == nil {
					_, _ = fmt.Fprintln(out, warnStyle.Render("No IDA installation found."))
					_, _ = fmt.Fprintln(out, "Set ida.install_path in config.yaml or IDAPM_IDA_INSTALL_PATH.")
				} else {
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "IDA:", a.ida.Path)
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "Executable:", a.ida.Executable)
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "Version:", orDash(a.ida.Version))
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "Found via:", a.ida.Source)
				}

				dir, err := a.locator.ResolvePluginDirectory(idaPath(a), a.cfg.IDA.PreferUserDir)
				if err != nil {
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "Install into:", errorStyle.Render(err.Error()))
				} else {
					_, _ = fmt.Fprintf(out, "%-13s %s\n", "Install into:", dir)
				}

				if stats, err := a.store.GetStats(); err == nil {
					_, _ = fmt.Fprintf(out, "%-13s %s (%d plugins, %d installed, %d failed)\n",
						"Catalog:", a.store.Path(), stats.Total, stats.Installed, stats.Failed)
				}

				_, _ = fmt.Fprintln(out, "\nPlugin directories:")
				for _, d := range a.locator.AllPluginDirectories(idaPath(a)) {
					_, _ = fmt.Fprintf(out, "  %s\n", d)
				}
				return nil
			})
		},
	}
}
