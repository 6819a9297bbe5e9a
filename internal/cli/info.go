package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/models"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func newInfoCmd() *cobra.Command {
	var readme, copyURL bool

	cmd := &cobra.Command{
		Use:   "info <plugin>",
		Short: "Show detailed information about a plugin",
		Long: `Display everything the catalog knows about a plugin.

With --readme the repository README is fetched and rendered. With --copy the
repository URL is copied to the clipboard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], readme, copyURL)
		},
	}

	cmd.Flags().BoolVarP(&readme, "readme", "r", false, "Render the repository README")
	cmd.Flags().BoolVarP(&copyURL, "copy", "c", false, "Copy the repository URL to the clipboard")
	return cmd
}

func runInfo(cmd *cobra.Command, id string, readme, copyURL bool) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.GetPlugin(id)
		if err != nil {
			return err
		}

		printPluginInfo(out, p, time.Now())

		if copyURL {
			if err := copyToClipboard(p.RepositoryURL); err != nil {
				a.logger.Warn().Err(err).Msg("clipboard unavailable")
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Could not copy to clipboard: "+err.Error()))
			} else {
				_, _ = fmt.Fprintln(out, dimStyle.Render("Copied "+p.RepositoryURL))
			}
		}

		if readme {
			owner, repo := p.OwnerRepo()
			text, err := a.gateway.GetReadme(cmd.Context(), owner, repo)
			if err != nil {
				return fmt.Errorf("fetch README: %w", err)
			}
			if text == "" {
				_, _ = fmt.Fprintln(out, "\nNo README.")
				return nil
			}
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprint(out, renderMarkdown(text))
		}
		return nil
	})
}

func printPluginInfo(w io.Writer, p *models.Plugin, now time.Time) {
	field := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(w, "%-13s %s\n", label+":", value)
		}
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(p.Name)+" "+idStyle.Render(p.ID))
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "\n  %s\n\n", p.Description)
	}

	field("Author", p.Author)
	field("Repository", p.RepositoryURL)
	field("Status", statusStyle(p.Status).Render(string(p.Status)))
	if p.Status == models.StatusInstalled {
		field("Installed", deref(p.InstalledVersion))
		field("Method", string(p.Method))
		field("Path", deref(p.InstallPath))
		field("Format", string(p.Format))
	}
	field("Latest", deref(p.LatestVersion))
	field("IDA", versionRange(p))
	if len(p.Tags) > 0 {
		field("Tags", strings.Join(p.Tags, ", "))
	}
	if p.LastUpdated != nil {
		field("Last push", formatTimeSince(*p.LastUpdated, now))
	}
	field("Added", p.AddedAt.Format("2006-01-02"))
	if p.ErrorMessage != nil {
		field("Error", errorStyle.Render(*p.ErrorMessage))
	}

	if len(p.Metadata) > 0 {
		keys := make([]string, 0, len(p.Metadata))
		for k := range p.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		_, _ = fmt.Fprintln(w, "\nMetadata:")
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Metadata.String(k))
		}
	}
}
