// Package task defines the persisted definition of one scheduled task.
package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wasilibs/go-re2"

	"github.com/aatumaykin/nexsched/internal/schedule"
)

// MaxNameLength bounds task names so labels and file names stay short.
const MaxNameLength = 128

// Names become the suffix of a reverse-DNS launchd label and of file names
// under the LaunchAgents and log directories.
var namePattern = re2.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Record is the authoritative definition of a scheduled task.
type Record struct {
	Name         string              `json:"name"`
	Command      string              `json:"command"`
	Schedule     schedule.Descriptor `json:"schedule"`
	Machine      string              `json:"machine,omitempty"`
	Enabled      bool                `json:"enabled"`
	Created      Timestamp           `json:"created"`
	Modified     *Timestamp          `json:"modified,omitempty"`
	ArtifactPath string              `json:"plist_path"`

	// Extra keeps fields written by newer versions so they survive a
	// load/save cycle.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownKeys lists the JSON keys owned by Record.
var knownKeys = []string{"name", "command", "schedule", "machine", "enabled", "created", "modified", "plist_path"}

// ValidateName checks that name is usable as a label suffix and file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, MaxNameLength)
	}
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q (use letters, digits, dots, dashes and underscores only)", ErrInvalidName, name)
	}
	return nil
}

// ValidateCommand rejects blank commands. The command is otherwise opaque.
func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	return nil
}

// Validate checks name, command and schedule.
func (r Record) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateCommand(r.Command); err != nil {
		return err
	}
	return r.Schedule.Validate()
}

type recordJSON struct {
	Name         string              `json:"name"`
	Command      string              `json:"command"`
	Schedule     schedule.Descriptor `json:"schedule"`
	Machine      string              `json:"machine,omitempty"`
	Enabled      *bool               `json:"enabled,omitempty"`
	Created      Timestamp           `json:"created"`
	Modified     *Timestamp          `json:"modified,omitempty"`
	ArtifactPath string              `json:"plist_path"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	enabled := r.Enabled
	data, err := json.Marshal(recordJSON{
		Name:         r.Name,
		Command:      r.Command,
		Schedule:     r.Schedule,
		Machine:      r.Machine,
		Enabled:      &enabled,
		Created:      r.Created,
		Modified:     r.Modified,
		ArtifactPath: r.ArtifactPath,
	})
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	fields := make(map[string]json.RawMessage, len(r.Extra)+len(knownKeys))
	for k, v := range r.Extra {
		fields[k] = v
	}
	var own map[string]json.RawMessage
	if err := json.Unmarshal(data, &own); err != nil {
		return nil, err
	}
	for k, v := range own {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes a record. A missing "enabled" key means enabled,
// matching registries written before the flag existed.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(fields, k)
	}
	if len(fields) == 0 {
		fields = nil
	}

	*r = Record{
		Name:         raw.Name,
		Command:      raw.Command,
		Schedule:     raw.Schedule,
		Machine:      raw.Machine,
		Enabled:      raw.Enabled == nil || *raw.Enabled,
		Created:      raw.Created,
		Modified:     raw.Modified,
		ArtifactPath: raw.ArtifactPath,
		Extra:        fields,
	}
	return nil
}
