package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var (
	runName   string
	runDetach bool
)

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a task now",
	Long: `Run the task's command immediately in the foreground through the
configured shell. Output is shown here and appended to the task's log
files, and nexsched exits with the command's exit code.

With --detach, launchd is asked to start the loaded job instead; this only
works on the task's designated machine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		name := taskName(runName, args)
		status := cmd.ErrOrStderr()

		result, err := a.Manager().Run(cmd.Context(), name, manager.RunOptions{
			Detach: runDetach,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		if result.Detached {
			fmt.Fprintf(status, constants.MsgRunDetached, name)
			return nil
		}
		fmt.Fprintf(status, constants.MsgRunFinished, name, result.RunID, result.ExitCode, result.Duration.Round(time.Millisecond))
		if result.ExitCode != 0 {
			return &commandExitError{code: result.ExitCode}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "task name")
	runCmd.Flags().BoolVarP(&runDetach, "detach", "d", false, "ask launchd to start the loaded job")
}
