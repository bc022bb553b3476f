package main

import (
	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var disableName string

var disableCmd = &cobra.Command{
	Use:   "disable [name]",
	Short: "Disable a task",
	Long: `Mark the task disabled and, on its designated machine, unload and delete
its launchd job. The task stays in the registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, taskName(disableName, args), (*manager.Manager).Disable, constants.MsgTaskDisabled)
	},
}

func init() {
	disableCmd.Flags().StringVarP(&disableName, "name", "n", "", "task name")
}
