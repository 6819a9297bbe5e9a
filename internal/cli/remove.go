package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/models"
)

func newRemoveCmd() *cobra.Command {
	var yes, uninstall bool

	cmd := &cobra.Command{
		Use:   "remove <plugin>",
		Short: "Remove a plugin from the catalog",
		Long: `Remove a plugin and its history from the catalog.

Installed files are left in place unless --uninstall is given, in which case
the plugin is uninstalled first.

Examples:
  idapm remove acme/widget
  idapm remove acme/widget --uninstall -y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0], yes, uninstall)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&uninstall, "uninstall", false, "Uninstall the plugin's files first")
	return cmd
}

func runRemove(cmd *cobra.Command, id string, yes, uninstall bool) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.GetPlugin(id)
		if err != nil {
			return err
		}

		desc := "The plugin and its history are deleted from the catalog."
		if p.Status == models.StatusInstalled && !uninstall {
			desc += " Installed files stay at " + deref(p.InstallPath) + "."
		}
		ok, err := confirmed(yes, fmt.Sprintf("Remove %s from the catalog?", p.ID), desc)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		if uninstall && p.Status != models.StatusNotInstalled {
			res, err := a.svc.UninstallPlugin(cmd.Context(), p.ID, a.cfg.Install.BackupOnUninstall)
			if err != nil {
				return err
			}
			printResult(out, "UNINSTALLED", res)
		}

		if err := a.svc.RemoveFromCatalog(p.ID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("REMOVED"), idStyle.Render(p.ID))
		return nil
	})
}
