package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
)

func newOutdatedCmd() *cobra.Command {
	var concurrency int
	var changelog bool

	cmd := &cobra.Command{
		Use:   "outdated",
		Short: "Check installed plugins for updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				if last, err := a.svc.LastUpdateCheck(); err == nil && !last.IsZero() {
					_, _ = fmt.Fprintln(out, dimStyle.Render("Last checked "+formatTimeSince(last, time.Now())))
				}

				infos, err := a.svc.CheckAllUpdates(cmd.Context(), concurrency)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					_, _ = fmt.Fprintln(out, "No installed plugins.")
					return nil
				}

				var outdated int
				t := newTable("PLUGIN", "METHOD", "CURRENT", "LATEST", "CHANGE")
				for _, info := range infos {
					if info.Err != nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warnStyle.Render("SKIPPED"), info.Err)
						continue
					}
					if !info.HasUpdate {
						continue
					}
					outdated++
					t.Row(info.PluginID, string(info.Method), info.Current, info.Latest, deltaLabel(info.Delta))
				}

				if outdated == 0 {
					_, _ = fmt.Fprintln(out, successStyle.Render("All plugins are up to date."))
					return nil
				}
				_, _ = fmt.Fprintln(out, t.String())

				if changelog {
					for _, info := range infos {
						if info.HasUpdate && info.Changelog != "" {
							_, _ = fmt.Fprintf(out, "\n%s %s\n", headerStyle.Render(info.PluginID), dimStyle.Render(info.ReleaseURL))
							_, _ = fmt.Fprint(out, renderMarkdown(info.Changelog))
						}
					}
				}
				_, _ = fmt.Fprintf(out, "\nRun 'idapm update --all' to update %d plugin(s).\n", outdated)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", catalog.DefaultCheckConcurrency, "Parallel GitHub lookups")
	cmd.Flags().BoolVar(&changelog, "changelog", false, "Show release notes of available updates")
	return cmd
}

func deltaLabel(delta string) string {
	switch delta {
	case "major":
		return errorStyle.Render(delta)
	case "minor":
		return warnStyle.Render(delta)
	default:
		return dimStyle.Render(orDash(delta))
	}
}
