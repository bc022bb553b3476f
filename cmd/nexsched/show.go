package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/manager"
)

var (
	showName string
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one task in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showName, "name", "n", "", "task name")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the task as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.Manager().Get(cmd.Context(), taskName(showName, args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, toJSON(v))
	}

	machine := v.Machine
	if v.Local {
		machine += " (this machine)"
	}
	next := "-"
	if v.Record.Enabled {
		next = formatTime(v.Next)
	}
	modified := "-"
	if v.Record.Modified != nil {
		modified = formatTime(v.Record.Modified.Time)
	}
	live := "-"
	if v.Local {
		live = v.Live.String()
	}

	fields := []struct {
		label string
		value string
	}{
		{"Name", v.Record.Name},
		{"Command", v.Record.Command},
		{"Schedule", v.Record.Schedule.String()},
		{"Machine", machine},
		{"Enabled", fmt.Sprint(v.Record.Enabled)},
		{"Status", colorStatus(v.Status, string(v.Status))},
		{"launchd", live},
		{"Next run", next},
		{"Created", formatTime(v.Record.Created.Time)},
		{"Modified", modified},
		{"Artifact", v.Record.ArtifactPath},
		{"Stdout log", v.StdoutLog},
		{"Stderr log", v.StderrLog},
	}
	for _, f := range fields {
		fmt.Fprintf(out, "%-11s %s\n", f.label+":", f.value)
	}

	if v.Status == manager.StatusUnloaded {
		fmt.Fprintln(out, "\nThe job should run here but launchd has not loaded it; run 'nexsched reconcile'.")
	}
	return nil
}
