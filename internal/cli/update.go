package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/models"
)

func newUpdateCmd() *cobra.Command {
	var all, refresh bool

	cmd := &cobra.Command{
		Use:   "update [plugin...]",
		Short: "Update installed plugins",
		Long: `Update installed plugins to the latest release or commit.

An update removes the installed files and installs the latest version with
the same method. With --refresh a clone install is pulled in place instead.

Examples:
  idapm update acme/widget
  idapm update --all
  idapm update acme/widget --refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("name plugins to update or pass --all")
			}
			return runUpdate(cmd, args, all, refresh)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Update every installed plugin")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Pull clone installs in place instead of reinstalling")
	return cmd
}

func runUpdate(cmd *cobra.Command, ids []string, all, refresh bool) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		if all {
			installed, err := a.svc.ListPlugins(models.PluginFilter{Status: models.StatusInstalled})
			if err != nil {
				return err
			}
			ids = ids[:0]
			for _, p := range installed {
				if refresh && p.Method != models.MethodClone {
					continue
				}
				ids = append(ids, p.ID)
			}
			if len(ids) == 0 {
				_, _ = fmt.Fprintln(out, "No installed plugins to update.")
				return nil
			}
		}

		var firstErr error
		for _, id := range ids {
			var res *catalog.Result
			var err error
			if refresh {
				res, err = a.svc.RefreshPlugin(cmd.Context(), id)
			} else {
				res, err = a.svc.UpdatePlugin(cmd.Context(), id)
			}

			switch {
			case err != nil:
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errorStyle.Render("FAILED"), err)
				if firstErr == nil {
					firstErr = err
				}
			case res.UpToDate:
				_, _ = fmt.Fprintf(out, "%s %s %s\n", dimStyle.Render("CURRENT"), idStyle.Render(id), res.Version)
			default:
				printResult(out, "UPDATED", res)
			}
		}
		return firstErr
	})
}
