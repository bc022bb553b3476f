package main

import (
	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var (
	editName     string
	editCommand  string
	editMachine  string
	editSchedule scheduleFlags
)

var editCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Change a task",
	Long: `Change only the given fields of a task. Other fields keep their values.

--weekday and --day replace each other; --daily drops both. --interval
replaces a calendar schedule and any calendar flag replaces an interval.
An enabled task on this machine gets its launchd job regenerated.`,
	Example: `  nexsched edit morning-brief --hour 10 --minute 30
  nexsched edit sync --machine studio`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "task name")
	editCmd.Flags().StringVar(&editCommand, "command", "", "new shell command")
	editCmd.Flags().StringVar(&editMachine, "machine", "", "new designated machine")
	editSchedule.register(editCmd, true)
}

func runEdit(cmd *cobra.Command, args []string) error {
	fields, err := editSchedule.fields(cmd)
	if err != nil {
		return err
	}
	req := manager.EditRequest{Schedule: fields}
	if cmd.Flags().Changed("command") {
		req.Command = &editCommand
	}
	if cmd.Flags().Changed("machine") {
		req.Machine = &editMachine
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Manager().Edit(cmd.Context(), taskName(editName, args), req)
	if rec.Name != "" {
		printSaved(cmd, a, constants.MsgTaskUpdated, rec)
	}
	return err
}
