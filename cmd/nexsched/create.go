package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/app"
	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/task"
)

var (
	createName     string
	createCommand  string
	createMachine  string
	createSchedule scheduleFlags
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a scheduled task",
	Long: `Create a task and, when it is designated to this machine, install and
load its launchd job.

A schedule is either a calendar time (--hour and --minute, optionally with
--weekday or --day) or a fixed --interval in seconds.`,
	Example: `  nexsched create --name morning-brief --hour 7 --minute 30 \
    --command 'claude -p "/morning-brief"'
  nexsched create --name sync --interval 900 --command 'make -C ~/notes sync' --machine laptop`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "unique task name")
	createCmd.Flags().StringVar(&createCommand, "command", "", "shell command to run")
	createCmd.Flags().StringVar(&createMachine, "machine", "", "designated machine (default: this machine)")
	createSchedule.register(createCmd, false)
}

func runCreate(cmd *cobra.Command, args []string) error {
	fields, err := createSchedule.fields(cmd)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Manager().Create(cmd.Context(), manager.CreateRequest{
		Name:     createName,
		Command:  createCommand,
		Schedule: fields,
		Machine:  createMachine,
	})
	if rec.Name != "" {
		printSaved(cmd, a, constants.MsgTaskCreated, rec)
	}
	return err
}

// printSaved confirms a stored record and notes when its job lives elsewhere.
func printSaved(cmd *cobra.Command, a *app.App, format string, rec task.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, format, rec.Name, rec.Schedule.String(), rec.Machine)
	if !a.Machines().IsLocal(rec.Machine) {
		fmt.Fprintf(out, constants.MsgTaskCreatedRemote, rec.Machine)
	}
}
