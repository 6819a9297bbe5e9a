package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/internal/tagger"
)

func newListCmd() *cobra.Command {
	var status, tag, query, compatible string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog plugins",
		Long: `List plugins in the catalog with their status and version.

Examples:
  idapm list
  idapm list --status installed
  idapm list --tag decompiler
  idapm list --compatible 9.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.PluginFilter{Tag: tag, Query: query}
			if status != "" {
				s := models.Status(strings.ToLower(status))
				if !s.Valid() {
					return fmt.Errorf("unknown status %q (want not_installed, installed or failed)", status)
				}
				filter.Status = s
			}
			return runList(cmd, filter, compatible)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only plugins with this status")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only plugins with this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Substring of name, description or author")
	cmd.Flags().StringVar(&compatible, "compatible", "", "Only plugins supporting this IDA version")
	return cmd
}

func runList(cmd *cobra.Command, filter models.PluginFilter, idaVersion string) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		plugins, err := a.svc.ListPlugins(filter)
		if err != nil {
			return err
		}
		if idaVersion != "" {
			var kept []models.Plugin
			for i := range plugins {
				ok, err := a.svc.IsCompatible(plugins[i].ID, idaVersion)
				if err == nil && ok {
					kept = append(kept, plugins[i])
				}
			}
			plugins = kept
		}

		if len(plugins) == 0 {
			_, _ = fmt.Fprintln(out, "No plugins found.")
			_, _ = fmt.Fprintln(out, "\nUse 'idapm add <github-url>' to add a repository.")
			return nil
		}

		printPluginTable(out, plugins)
		return nil
	})
}

func printPluginTable(w io.Writer, plugins []models.Plugin) {
	t := newTable("PLUGIN", "STATUS", "VERSION", "LATEST", "IDA", "TAGS")
	for i := range plugins {
		p := &plugins[i]
		t.Row(
			p.ID,
			statusStyle(p.Status).Render(string(p.Status)),
			orDash(deref(p.InstalledVersion)),
			orDash(deref(p.LatestVersion)),
			versionRange(p),
			strings.Join(tagger.Display(p.Tags), ", "),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintf(w, "%d plugin(s)\n", len(plugins))
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search catalog plugins by name, description and author",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				plugins, err := a.svc.SearchPlugins(strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(out, "No plugins found.")
					return nil
				}
				printPluginTable(out, plugins)
				return nil
			})
		},
	}
}
