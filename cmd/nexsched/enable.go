package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/task"
)

var enableName string

var enableCmd = &cobra.Command{
	Use:   "enable [name]",
	Short: "Enable a task",
	Long:  `Mark the task enabled and, on its designated machine, install its launchd job.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, taskName(enableName, args), (*manager.Manager).Enable, constants.MsgTaskEnabled)
	},
}

func init() {
	enableCmd.Flags().StringVarP(&enableName, "name", "n", "", "task name")
}

type toggleFunc func(m *manager.Manager, ctx context.Context, name string) (task.Record, error)

// runToggle is shared by enable and disable.
func runToggle(cmd *cobra.Command, name string, toggle toggleFunc, format string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := toggle(a.Manager(), cmd.Context(), name)
	if rec.Name == "" {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, format, rec.Name)
	if !a.Machines().IsLocal(rec.Machine) {
		fmt.Fprintf(out, constants.MsgRemoteNote, rec.Name, rec.Machine)
	}
	return err
}
