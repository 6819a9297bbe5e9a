package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
)

func newDiscoverCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "discover [query]",
		Short: "Search GitHub for IDA plugins",
		Long: `Search GitHub for IDA plugin repositories, most starred first.

Without a query, repositories tagged with the ida-pro-plugin topic are
listed. Plugins already in the catalog are marked.

Examples:
  idapm discover
  idapm discover "decompiler topic:ida-pro"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				found, err := a.svc.DiscoverPlugins(cmd.Context(), strings.Join(args, " "), limit)
				if err != nil {
					return err
				}
				if len(found) == 0 {
					_, _ = fmt.Fprintln(out, "No repositories found.")
					return nil
				}

				t := newTable("", "REPOSITORY", "STARS", "DESCRIPTION")
				for _, d := range found {
					t.Row(catalogMark(d), d.PluginID, strconv.Itoa(d.Stars), truncate(d.Description, 60))
				}
				_, _ = fmt.Fprintln(out, t.String())
				_, _ = fmt.Fprintln(out, dimStyle.Render("* in catalog. Use 'idapm add <owner/repo>' to add one."))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", catalog.DefaultSearchLimit, "Maximum repositories to list")
	return cmd
}

func catalogMark(d catalog.Discovery) string {
	if d.InCatalog {
		return successStyle.Render("*")
	}
	return " "
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
