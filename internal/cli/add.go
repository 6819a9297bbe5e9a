package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/tagger"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <repository_url>...",
		Short: "Add GitHub repositories to the plugin catalog",
		Long: `Add one or more GitHub repositories to the plugin catalog.

Repository metadata, tags and the latest release or commit are fetched from
GitHub. Nothing is installed.

Supported URL formats:
  owner/repo
  https://github.com/owner/repo
  https://github.com/owner/repo.git
  git@github.com:owner/repo.git`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		var failed int
		for _, url := range args {
			p, err := a.svc.AddPluginToCatalog(cmd.Context(), url)
			if err != nil {
				failed++
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errorStyle.Render("FAILED"), err)
				continue
			}
			line := fmt.Sprintf("%s %s", successStyle.Render("ADDED"), idStyle.Render(p.ID))
			if tags := tagger.Display(p.Tags); len(tags) > 0 {
				line += dimStyle.Render(fmt.Sprintf(" %v", tags))
			}
			_, _ = fmt.Fprintln(out, line)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d repositories could not be added", failed, len(args))
		}
		return nil
	})
}
