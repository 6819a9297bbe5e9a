package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/models"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [plugin]",
		Short: "Show installation history",
		Long: `Show the installation history of one plugin, oldest first, or the most
recent entries across the whole catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				var entries []models.InstallationHistory
				var err error
				if len(args) == 1 {
					entries, err = a.svc.History(args[0])
				} else {
					entries, err = a.store.RecentHistory(limit)
				}
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(out, "No history.")
					return nil
				}
				printHistory(out, entries)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Entries to show without a plugin argument")
	return cmd
}

func printHistory(w io.Writer, entries []models.InstallationHistory) {
	t := newTable("TIME", "PLUGIN", "ACTION", "VERSION", "RESULT")
	for _, e := range entries {
		result := successStyle.Render("ok")
		if !e.Success {
			result = errorStyle.Render("failed")
			if e.ErrorMessage != nil {
				result += dimStyle.Render(": " + *e.ErrorMessage)
			}
		}
		t.Row(
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.PluginID,
			string(e.Action),
			orDash(deref(e.Version)),
			result,
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
}
