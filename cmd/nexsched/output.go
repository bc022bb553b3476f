package main

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/schedule"
)

const ellipsis = "..."

var statusColors = map[manager.Status]*color.Color{
	manager.StatusActive:   color.New(color.FgGreen),
	manager.StatusUnloaded: color.New(color.FgYellow, color.Bold),
	manager.StatusDisabled: color.New(color.FgHiBlack),
	manager.StatusRemote:   color.New(color.FgCyan),
}

// displayWidth counts terminal columns: wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// truncate shortens s to at most max columns, ending with "...".
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if displayWidth(s) <= max {
		return s
	}

	limit := max - len(ellipsis)
	var sb strings.Builder
	used := 0
	for _, r := range s {
		w := displayWidth(string(r))
		if used+w > limit {
			break
		}
		sb.WriteRune(r)
		used += w
	}
	return sb.String() + ellipsis
}

// pad appends spaces up to w columns. Color codes are added after padding.
func pad(s string, w int) string {
	if gap := w - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func colorStatus(s manager.Status, padded string) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(padded)
	}
	return padded
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// taskJSON is the machine-readable form of a task used by --json.
type taskJSON struct {
	Name         string              `json:"name"`
	Command      string              `json:"command"`
	Schedule     schedule.Descriptor `json:"schedule"`
	ScheduleText string              `json:"schedule_text"`
	Machine      string              `json:"machine"`
	Local        bool                `json:"local"`
	Enabled      bool                `json:"enabled"`
	Status       manager.Status      `json:"status"`
	Live         string              `json:"live,omitempty"`
	NextRun      *time.Time          `json:"next_run,omitempty"`
	Created      time.Time           `json:"created"`
	Modified     *time.Time          `json:"modified,omitempty"`
	ArtifactPath string              `json:"plist_path"`
	StdoutLog    string              `json:"stdout_log"`
	StderrLog    string              `json:"stderr_log"`
}

func toJSON(v manager.View) taskJSON {
	out := taskJSON{
		Name:         v.Record.Name,
		Command:      v.Record.Command,
		Schedule:     v.Record.Schedule,
		ScheduleText: v.Record.Schedule.String(),
		Machine:      v.Machine,
		Local:        v.Local,
		Enabled:      v.Record.Enabled,
		Status:       v.Status,
		Created:      v.Record.Created.Time,
		ArtifactPath: v.Record.ArtifactPath,
		StdoutLog:    v.StdoutLog,
		StderrLog:    v.StderrLog,
	}
	if v.Local {
		out.Live = v.Live.String()
	}
	if !v.Next.IsZero() {
		next := v.Next
		out.NextRun = &next
	}
	if v.Record.Modified != nil {
		modified := v.Record.Modified.Time
		out.Modified = &modified
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
