package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/manifest"
	"github.com/asteroid-belt/idapm/internal/models"
)

func newExportCmd() *cobra.Command {
	var installedOnly bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the catalog to a manifest file",
		Long: `Write every catalog plugin to a manifest file that 'idapm import' can
read on another machine. Files ending in .yaml or .yml are written as YAML,
everything else as JSON. The default file is idapm.json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest.FileName
			if len(args) == 1 {
				path = args[0]
			}
			out := cmd.OutOrStdout()
			return withApp(cmd, func(a *app) error {
				filter := models.PluginFilter{}
				if installedOnly {
					filter.Status = models.StatusInstalled
				}
				plugins, err := a.svc.ListPlugins(filter)
				if err != nil {
					return err
				}

				mf := manifest.FromPlugins(plugins)
				if err := manifest.Write(path, mf); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s %d plugin(s) to %s\n", successStyle.Render("EXPORTED"), mf.PluginCount(), path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&installedOnly, "installed", false, "Only export installed plugins")
	return cmd
}

func newImportCmd() *cobra.Command {
	var install bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Add the plugins listed in a manifest file",
		Long: `Add every plugin listed in a manifest file to the catalog. Plugins already
in the catalog are reported and skipped. With --install, plugins that are not
installed yet are installed with the method recorded in the manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest.FileName
			if len(args) == 1 {
				path = args[0]
			}
			return runImport(cmd, path, install)
		},
	}

	cmd.Flags().BoolVarP(&install, "install", "i", false, "Install imported plugins")
	return cmd
}

func runImport(cmd *cobra.Command, path string, install bool) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	return withApp(cmd, func(a *app) error {
		mf, err := manifest.Read(path)
		if err != nil {
			return err
		}
		if mf == nil {
			return fmt.Errorf("manifest %s not found", path)
		}

		res, err := manifest.Import(cmd.Context(), a.svc, mf)
		if err != nil {
			return err
		}
		for _, id := range res.Added {
			_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("ADDED"), idStyle.Render(id))
		}
		for _, id := range res.Duplicates {
			_, _ = fmt.Fprintf(out, "%s %s\n", dimStyle.Render("EXISTS"), idStyle.Render(id))
		}
		for _, id := range mf.SortedIDs() {
			if err := res.Failed[id]; err != nil {
				_, _ = fmt.Fprintf(errOut, "%s %v\n", errorStyle.Render("FAILED"), err)
			}
		}

		var installFailed int
		if install {
			for _, id := range mf.SortedIDs() {
				if res.Failed[id] != nil {
					continue
				}
				p, err := a.svc.GetPlugin(id)
				if err != nil || p.Status == models.StatusInstalled {
					continue
				}
				method, err := parseMethod(mf.Plugins[id].Method, a.cfg.Install.DefaultMethod)
				if err != nil {
					method = models.MethodUnknown
				}
				r, err := a.svc.InstallPlugin(cmd.Context(), id, method, "")
				if err != nil {
					installFailed++
					_, _ = fmt.Fprintf(errOut, "%s %v\n", errorStyle.Render("FAILED"), err)
					continue
				}
				printResult(out, "INSTALLED", r)
			}
		}

		_, _ = fmt.Fprintf(out, "\n%d added, %d already present, %d failed\n", len(res.Added), len(res.Duplicates), len(res.Failed))
		if n := len(res.Failed) + installFailed; n > 0 {
			return fmt.Errorf("%d plugin(s) could not be imported", n)
		}
		return nil
	})
}
