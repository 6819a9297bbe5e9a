package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// confirm asks a yes/no question. Tests replace it.
var confirm = func(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

// confirmed returns true when the user skipped or accepted the prompt.
func confirmed(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !isInteractive() {
		return false, fmt.Errorf("confirmation requires a terminal, use -y flag")
	}
	return confirm(title, description)
}

func newUninstallCmd() *cobra.Command {
	var yes, noBackup bool

	cmd := &cobra.Command{
		Use:   "uninstall <plugin>",
		Short: "Remove a plugin's files from IDA",
		Long: `Uninstall a plugin by deleting its files from the plugin directory.

The plugin stays in the catalog and can be installed again. A backup copy is
taken first unless --no-backup is given or install.backup_on_uninstall is
false.

Examples:
  idapm uninstall acme/widget
  idapm uninstall acme/widget -y --no-backup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd, args[0], yes, noBackup)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not back up files before deleting them")
	return cmd
}

func runUninstall(cmd *cobra.Command, id string, yes, noBackup bool) error {
	out := cmd.OutOrStdout()
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.GetPlugin(id)
		if err != nil {
			return err
		}

		if p.InstallPath != nil {
			ok, err := confirmed(yes, fmt.Sprintf("Uninstall %s?", p.ID), "Deletes "+*p.InstallPath)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		backup := a.cfg.Install.BackupOnUninstall && !noBackup
		res, err := a.svc.UninstallPlugin(cmd.Context(), p.ID, backup)
		if err != nil {
			return err
		}
		printResult(out, "UNINSTALLED", res)
		return nil
	})
}
