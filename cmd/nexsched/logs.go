package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var (
	logsName  string
	logsLines int
)

var logsCmd = &cobra.Command{
	Use:   "logs [name]",
	Short: "Show the last lines of a task's logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		stdout, stderr, err := a.Manager().Logs(taskName(logsName, args), logsLines)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTail(out, "stdout", stdout)
		fmt.Fprintln(out)
		printTail(out, "stderr", stderr)
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVarP(&logsName, "name", "n", "", "task name")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "l", manager.DefaultLogLines, "number of lines per log")
}

func printTail(w io.Writer, stream string, tail manager.LogTail) {
	fmt.Fprintf(w, constants.MsgLogHeader, stream, tail.Path)
	if !tail.Exists {
		fmt.Fprintln(w, constants.MsgNoLogFile)
		return
	}
	for _, line := range tail.Lines {
		fmt.Fprintln(w, line)
	}
}
