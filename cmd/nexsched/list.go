package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/constants"
	"github.com/aatumaykin/nexsched/internal/manager"
)

var (
	listJSON bool
	listNext bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all scheduled tasks",
	Long: `List every task in the registry with its status on this machine:
active, unloaded (should run here but launchd has no job), disabled or
remote (designated to another machine).`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print tasks as JSON")
	listCmd.Flags().BoolVar(&listNext, "next", false, "add the next run time")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	views, err := a.Manager().List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		tasks := make([]taskJSON, 0, len(views))
		for _, v := range views {
			tasks = append(tasks, toJSON(v))
		}
		return writeJSON(out, tasks)
	}

	if len(views) == 0 {
		fmt.Fprint(out, constants.MsgNoTasks)
		return nil
	}

	header := []string{"NAME", "SCHEDULE", "MACHINE", "STATUS"}
	if listNext {
		header = append(header, "NEXT RUN")
	}
	header = append(header, "COMMAND")

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		row := []string{v.Record.Name, v.Record.Schedule.String(), v.Machine, string(v.Status)}
		if listNext {
			next := "-"
			if v.Record.Enabled {
				next = formatTime(v.Next)
			}
			row = append(row, next)
		}
		row = append(row, truncate(v.Record.Command, constants.ListCommandWidth))
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = displayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	printRow := func(cells []string, status manager.Status) {
		parts := make([]string, len(cells))
		last := len(cells) - 1
		for i, cell := range cells {
			if i == last {
				parts[i] = cell
				continue
			}
			parts[i] = pad(cell, widths[i])
			if i == 3 && status != "" {
				parts[i] = colorStatus(status, parts[i])
			}
		}
		fmt.Fprintln(out, strings.Join(parts, "  "))
	}

	printRow(header, "")
	for i, row := range rows {
		printRow(row, views[i].Status)
	}
	fmt.Fprintf(out, constants.MsgTasksTotal, len(views))
	return nil
}
