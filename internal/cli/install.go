package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/internal/remote"
)

// methodAuto lets the catalog choose release or clone.
const methodAuto = "auto"

func newInstallCmd() *cobra.Command {
	var method, ref string

	cmd := &cobra.Command{
		Use:   "install <plugin>",
		Short: "Install a plugin into IDA's plugin directory",
		Long: `Install a catalog plugin by git clone or from a release asset.

The plugin is identified by owner/repo. A repository that is not in the
catalog yet is added first.

Methods:
  clone    shallow clone of a branch (--ref, default: the repository's default branch)
  release  download the latest release asset (.zip, .py, .tar.gz)
  auto     release when one with an installable asset exists, otherwise clone

Examples:
  idapm install acme/widget
  idapm install acme/widget --method release
  idapm install https://github.com/acme/widget --ref develop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], method, ref)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "",
		"Installation method: clone, release or auto (default from config)")
	cmd.Flags().StringVar(&ref, "ref", "", "Branch to clone, or release tag to install")
	return cmd
}

// parseMethod resolves the --method flag against the configured default.
func parseMethod(flag, configured string) (models.Method, error) {
	v := strings.ToLower(strings.TrimSpace(flag))
	if v == "" {
		v = configured
	}
	if v == methodAuto {
		return models.MethodUnknown, nil
	}
	return models.ParseMethod(v)
}

func runInstall(cmd *cobra.Command, target, methodFlag, ref string) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		method, err := parseMethod(methodFlag, a.cfg.Install.DefaultMethod)
		if err != nil {
			return err
		}

		id, err := ensureInCatalog(cmd, a, target)
		if err != nil {
			return err
		}

		res, err := a.svc.InstallPlugin(cmd.Context(), id, method, ref)
		if err != nil {
			return err
		}
		printResult(out, "INSTALLED", res)
		return nil
	})
}

// ensureInCatalog returns the plugin id for target, adding the repository
// when it is not in the catalog yet.
func ensureInCatalog(cmd *cobra.Command, a *app, target string) (string, error) {
	ref, err := remote.ParseRepositoryURL(target)
	if err != nil {
		return "", err
	}
	id := ref.ID()

	p, err := a.store.FindByID(id)
	if err != nil {
		return "", err
	}
	if p != nil {
		return id, nil
	}

	added, err := a.svc.AddPluginToCatalog(cmd.Context(), target)
	if err != nil && !errors.Is(err, catalog.ErrDuplicatePlugin) {
		return "", err
	}
	if added != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("ADDED"), idStyle.Render(added.ID))
	}
	return id, nil
}
