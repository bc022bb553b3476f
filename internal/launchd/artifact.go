// Package launchd projects task records onto launchd agent property lists
// and drives launchctl to load and unload them.
//
// The plist is a derived artifact: it is always regenerated in full from the
// record and never read back as a source of truth.
package launchd

import (
	"fmt"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"github.com/aatumaykin/nexsched/internal/task"
)

// ArtifactExt is the file extension of launchd agent definitions.
const ArtifactExt = ".plist"

// Config holds the fixed locations and namespace for generated jobs.
type Config struct {
	AgentsDir   string // ~/Library/LaunchAgents
	LabelPrefix string // com.claude.scheduled
	LogDir      string // /tmp
	LogPrefix   string // claude-scheduled
	Shell       string // /bin/bash
	PathEnv     string // optional PATH for the job environment
}

// Job is the on-disk launchd agent definition.
type Job struct {
	Label                 string            `plist:"Label"`
	ProgramArguments      []string          `plist:"ProgramArguments"`
	StandardOutPath       string            `plist:"StandardOutPath"`
	StandardErrorPath     string            `plist:"StandardErrorPath"`
	RunAtLoad             bool              `plist:"RunAtLoad"`
	StartInterval         int               `plist:"StartInterval,omitempty"`
	StartCalendarInterval map[string]int    `plist:"StartCalendarInterval,omitempty"`
	EnvironmentVariables  map[string]string `plist:"EnvironmentVariables,omitempty"`
}

// Label returns the launchd label of a task.
func (c Config) Label(name string) string {
	return c.LabelPrefix + "." + name
}

// NameFromLabel strips the namespace prefix. ok is false for foreign labels.
func (c Config) NameFromLabel(label string) (string, bool) {
	prefix := c.LabelPrefix + "."
	if !strings.HasPrefix(label, prefix) || len(label) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(label, prefix), true
}

// ArtifactPath returns where the plist of a task lives.
func (c Config) ArtifactPath(name string) string {
	return filepath.Join(c.AgentsDir, c.Label(name)+ArtifactExt)
}

// LogPaths returns the stdout and stderr log files of a task.
func (c Config) LogPaths(name string) (stdout, stderr string) {
	base := filepath.Join(c.LogDir, c.LogPrefix+"-"+name)
	return base + ".log", base + ".err"
}

// Render builds the job definition for rec.
func (c Config) Render(rec task.Record) (Job, error) {
	if err := rec.Validate(); err != nil {
		return Job{}, err
	}

	shell := c.Shell
	if shell == "" {
		shell = "/bin/bash"
	}
	stdout, stderr := c.LogPaths(rec.Name)

	job := Job{
		Label:             c.Label(rec.Name),
		ProgramArguments:  []string{shell, "-c", rec.Command},
		StandardOutPath:   stdout,
		StandardErrorPath: stderr,
		RunAtLoad:         false,
	}
	if seconds, ok := rec.Schedule.IntervalSeconds(); ok {
		job.StartInterval = seconds
	} else {
		job.StartCalendarInterval = rec.Schedule.Calendar()
	}
	if c.PathEnv != "" {
		job.EnvironmentVariables = map[string]string{"PATH": c.PathEnv}
	}
	return job, nil
}

// Encode serializes job as an XML property list.
func Encode(job Job) ([]byte, error) {
	data, err := plist.MarshalIndent(job, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plist: %w", err)
	}
	return data, nil
}

// Decode parses a property list written by Encode or by hand.
func Decode(data []byte) (Job, error) {
	var job Job
	if _, err := plist.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to decode plist: %w", err)
	}
	return job, nil
}
