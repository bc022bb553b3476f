package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
)

var removeName string

var removeCmd = &cobra.Command{
	Use:     "remove [name]",
	Aliases: []string{"rm"},
	Short:   "Remove a task",
	Long: `Unload and delete the task's launchd job when it runs on this machine,
then delete the task from the registry. If launchd refuses, the record is
kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		name := taskName(removeName, args)
		if err := a.Manager().Remove(cmd.Context(), name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), constants.MsgTaskRemoved, name)
		return nil
	},
}

func init() {
	removeCmd.Flags().StringVarP(&removeName, "name", "n", "", "task name")
}
