package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Bring launchd on this machine in line with the registry",
	Long: `Install enabled tasks designated to this machine that launchd has not
loaded, uninstall disabled ones, and remove jobs under the label prefix
that no longer have a task here (for example after a task was moved or
removed from the other machine).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Manager().Reconcile(cmd.Context())
		printReport(cmd.OutOrStdout(), report)
		return err
	},
}

func printReport(w io.Writer, report manager.ReconcileReport) {
	for _, name := range report.Installed {
		fmt.Fprintf(w, constants.MsgReconcileInstalled, name)
	}
	for _, name := range report.Updated {
		fmt.Fprintf(w, constants.MsgReconcileUpdated, name)
	}
	for _, name := range report.Uninstalled {
		fmt.Fprintf(w, constants.MsgReconcileUninstalled, name)
	}
	for _, name := range report.Orphans {
		fmt.Fprintf(w, constants.MsgReconcileOrphan, name)
	}
	if !report.Changed() {
		fmt.Fprintf(w, constants.MsgReconcileInSync, report.Unchanged)
	}
}
