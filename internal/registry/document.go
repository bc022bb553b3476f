package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aatumaykin/nexsched/internal/task"
)

// Document is the whole registry file: a mapping of task name to record.
type Document struct {
	Tasks map[string]task.Record

	// Extra keeps unknown top-level keys written by newer versions.
	Extra map[string]json.RawMessage
}

// NewDocument returns an empty registry.
func NewDocument() *Document {
	return &Document{Tasks: make(map[string]task.Record)}
}

// Get returns the record stored under name.
func (d *Document) Get(name string) (task.Record, error) {
	rec, ok := d.Tasks[name]
	if !ok {
		return task.Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, nil
}

// Has reports whether a record with name exists.
func (d *Document) Has(name string) bool {
	_, ok := d.Tasks[name]
	return ok
}

// Insert adds a new record and fails if the name is taken.
func (d *Document) Insert(rec task.Record) error {
	if d.Has(rec.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, rec.Name)
	}
	d.Upsert(rec)
	return nil
}

// Upsert stores rec under its name, replacing any previous record.
func (d *Document) Upsert(rec task.Record) {
	if d.Tasks == nil {
		d.Tasks = make(map[string]task.Record)
	}
	d.Tasks[rec.Name] = rec
}

// Delete removes the record stored under name.
func (d *Document) Delete(name string) error {
	if !d.Has(name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(d.Tasks, name)
	return nil
}

// Names returns task names in lexical order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Tasks))
	for name := range d.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns records ordered by name.
func (d *Document) Records() []task.Record {
	names := d.Names()
	out := make([]task.Record, 0, len(names))
	for _, name := range names {
		out = append(out, d.Tasks[name])
	}
	return out
}

func (d *Document) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+1)
	for k, v := range d.Extra {
		fields[k] = v
	}
	tasks := d.Tasks
	if tasks == nil {
		tasks = map[string]task.Record{}
	}
	fields["tasks"] = tasks
	return json.Marshal(fields)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("registry root must be an object")
	}

	tasks := make(map[string]task.Record)
	if raw, ok := fields["tasks"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return fmt.Errorf("tasks: %w", err)
		}
	}
	delete(fields, "tasks")

	for key, rec := range tasks {
		switch rec.Name {
		case "":
			rec.Name = key
			tasks[key] = rec
		case key:
		default:
			return fmt.Errorf("tasks: entry %q carries name %q", key, rec.Name)
		}
	}

	if len(fields) == 0 {
		fields = nil
	}
	d.Tasks = tasks
	d.Extra = fields
	return nil
}
