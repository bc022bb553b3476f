// Package manager implements the task operations behind the command line:
// create, inspect, edit, enable, disable, remove, logs, run and reconcile.
//
// The registry is the source of truth. Every mutation is a whole-document
// read-modify-write, and launchd artifacts are regenerated from the stored
// record only on the machine the task is designated to.
package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/logger"
	"github.com/aatumaykin/nexsched/internal/machine"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/schedule"
	"github.com/aatumaykin/nexsched/internal/task"
)

var (
	// ErrNoChanges is returned by Edit when no field was supplied
	ErrNoChanges = errors.New("nothing to change")

	// ErrRemoteTask is returned when an operation needs the task's own machine
	ErrRemoteTask = errors.New("task is designated to another machine")

	// errUnchanged aborts a registry update without saving
	errUnchanged = errors.New("unchanged")
)

// Scheduler is the native scheduler adapter.
type Scheduler interface {
	Install(ctx context.Context, rec task.Record) error
	Uninstall(ctx context.Context, name string) error
	InSync(rec task.Record) (bool, error)
	Statuses(ctx context.Context, names []string) (map[string]launchd.State, error)
	Start(ctx context.Context, name string) error
	InstalledNames(ctx context.Context) ([]string, error)
	ArtifactPath(name string) string
	LogPaths(name string) (stdout, stderr string)
}

// CommandChecker validates a command line before it is stored.
type CommandChecker interface {
	Check(command string) error
}

// Options configures a Manager.
type Options struct {
	Store     *registry.Store
	Scheduler Scheduler
	Machines  *machine.Set
	Checker   CommandChecker // optional
	Shell     string         // shell for foreground runs
	PathEnv   string         // PATH for foreground runs, empty keeps the caller's
	Logger    *logger.Logger
	Now       func() time.Time
}

// Manager composes the registry, the scheduler adapter and machine identity.
type Manager struct {
	store     *registry.Store
	scheduler Scheduler
	machines  *machine.Set
	checker   CommandChecker
	shell     string
	pathEnv   string
	logger    *logger.Logger
	now       func() time.Time
}

// New creates a Manager.
func New(opts Options) *Manager {
	m := &Manager{
		store:     opts.Store,
		scheduler: opts.Scheduler,
		machines:  opts.Machines,
		checker:   opts.Checker,
		shell:     opts.Shell,
		pathEnv:   opts.PathEnv,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if m.logger == nil {
		m.logger = logger.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.shell == "" {
		m.shell = "/bin/bash"
	}
	return m
}

// Machines returns the machine identity set.
func (m *Manager) Machines() *machine.Set {
	return m.machines
}

// CreateRequest describes a new task.
type CreateRequest struct {
	Name     string
	Command  string
	Schedule schedule.Fields
	Machine  string // empty means the current machine
}

// Create validates and stores a new enabled task and installs it when it is
// designated to this machine. A scheduler failure is returned together with
// the stored record: the registry change stays committed.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (task.Record, error) {
	if err := task.ValidateName(req.Name); err != nil {
		return task.Record{}, err
	}
	if err := task.ValidateCommand(req.Command); err != nil {
		return task.Record{}, err
	}
	sched, err := schedule.New(req.Schedule)
	if err != nil {
		return task.Record{}, err
	}
	target, err := m.machines.Resolve(req.Machine)
	if err != nil {
		return task.Record{}, err
	}
	if err := m.checkCommand(req.Command); err != nil {
		return task.Record{}, err
	}

	rec := task.Record{
		Name:         req.Name,
		Command:      req.Command,
		Schedule:     sched,
		Machine:      target,
		Enabled:      true,
		Created:      task.Timestamp{Time: m.now()},
		ArtifactPath: m.scheduler.ArtifactPath(req.Name),
	}
	if err := m.store.Update(func(doc *registry.Document) error {
		return doc.Insert(rec)
	}); err != nil {
		return task.Record{}, err
	}

	m.logger.Info("task created",
		logger.Field{Key: "task", Value: rec.Name},
		logger.Field{Key: "machine", Value: rec.Machine},
		logger.Field{Key: "schedule", Value: rec.Schedule.String()})

	if m.machines.IsLocal(rec.Machine) {
		if err := m.scheduler.Install(ctx, rec); err != nil {
			return rec, fmt.Errorf("task %s saved but not installed: %w", rec.Name, err)
		}
	}
	return rec, nil
}

// Get returns the stored record of name with its derived status.
func (m *Manager) Get(ctx context.Context, name string) (View, error) {
	doc, err := m.store.Load()
	if err != nil {
		return View{}, err
	}
	rec, err := doc.Get(name)
	if err != nil {
		return View{}, err
	}
	views, err := m.views(ctx, []task.Record{rec})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// List returns all tasks in name order with their derived status.
func (m *Manager) List(ctx context.Context) ([]View, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return m.views(ctx, doc.Records())
}

// EditRequest carries the fields to change. Nil and empty values keep the
// stored value.
type EditRequest struct {
	Command  *string
	Schedule schedule.Fields
	Machine  *string
}

func (r EditRequest) empty() bool {
	return r.Command == nil && r.Machine == nil && r.Schedule.Empty()
}

// Edit applies a partial update, stamps the modification time and, when the
// task is enabled, moves or regenerates its artifact on this machine.
func (m *Manager) Edit(ctx context.Context, name string, req EditRequest) (task.Record, error) {
	if req.empty() {
		return task.Record{}, ErrNoChanges
	}
	if req.Command != nil {
		if err := task.ValidateCommand(*req.Command); err != nil {
			return task.Record{}, err
		}
		if err := m.checkCommand(*req.Command); err != nil {
			return task.Record{}, err
		}
	}

	var before, after task.Record
	err := m.store.Update(func(doc *registry.Document) error {
		rec, err := doc.Get(name)
		if err != nil {
			return err
		}
		before = rec

		if req.Command != nil {
			rec.Command = *req.Command
		}
		if !req.Schedule.Empty() {
			sched, err := schedule.Merge(rec.Schedule, req.Schedule)
			if err != nil {
				return err
			}
			rec.Schedule = sched
		}
		if req.Machine != nil {
			target, err := m.machines.Resolve(*req.Machine)
			if err != nil {
				return err
			}
			rec.Machine = target
		}
		if err := rec.Validate(); err != nil {
			return err
		}

		modified := task.Timestamp{Time: m.now()}
		rec.Modified = &modified
		rec.ArtifactPath = m.scheduler.ArtifactPath(rec.Name)
		doc.Upsert(rec)
		after = rec
		return nil
	})
	if err != nil {
		return task.Record{}, err
	}

	m.logger.Info("task edited", logger.Field{Key: "task", Value: name})

	if !after.Enabled {
		return after, nil
	}
	wasLocal := m.machines.IsLocal(before.Machine)
	isLocal := m.machines.IsLocal(after.Machine)
	if wasLocal {
		if err := m.scheduler.Uninstall(ctx, name); err != nil {
			return after, fmt.Errorf("task %s saved but old job not removed: %w", name, err)
		}
	}
	if isLocal {
		if err := m.scheduler.Install(ctx, after); err != nil {
			return after, fmt.Errorf("task %s saved but not installed: %w", name, err)
		}
	}
	return after, nil
}

// Remove uninstalls a local task and deletes its record. If the uninstall
// fails the record is kept so the job is not orphaned.
func (m *Manager) Remove(ctx context.Context, name string) error {
	doc, err := m.store.Load()
	if err != nil {
		return err
	}
	rec, err := doc.Get(name)
	if err != nil {
		return err
	}

	if m.machines.IsLocal(rec.Machine) {
		if err := m.scheduler.Uninstall(ctx, name); err != nil {
			return fmt.Errorf("failed to uninstall %s, record kept: %w", name, err)
		}
	}

	if err := m.store.Update(func(doc *registry.Document) error {
		return doc.Delete(name)
	}); err != nil {
		return err
	}

	m.logger.Info("task removed", logger.Field{Key: "task", Value: name})
	return nil
}

// Enable marks the task enabled and installs it when local.
func (m *Manager) Enable(ctx context.Context, name string) (task.Record, error) {
	return m.setEnabled(ctx, name, true)
}

// Disable marks the task disabled and uninstalls it when local.
func (m *Manager) Disable(ctx context.Context, name string) (task.Record, error) {
	return m.setEnabled(ctx, name, false)
}

func (m *Manager) setEnabled(ctx context.Context, name string, enabled bool) (task.Record, error) {
	var rec task.Record
	err := m.store.Update(func(doc *registry.Document) error {
		r, err := doc.Get(name)
		if err != nil {
			return err
		}
		rec = r
		if r.Enabled == enabled {
			return errUnchanged
		}
		rec.Enabled = enabled
		doc.Upsert(rec)
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return task.Record{}, err
	}

	m.logger.Info("task enabled flag set",
		logger.Field{Key: "task", Value: name},
		logger.Field{Key: "enabled", Value: enabled})

	// the artifact is re-synced even when the flag did not change
	if !m.machines.IsLocal(rec.Machine) {
		return rec, nil
	}
	if enabled {
		err = m.scheduler.Install(ctx, rec)
	} else {
		err = m.scheduler.Uninstall(ctx, name)
	}
	if err != nil {
		return rec, fmt.Errorf("task %s saved but scheduler not updated: %w", name, err)
	}
	return rec, nil
}

func (m *Manager) checkCommand(command string) error {
	if m.checker == nil {
		return nil
	}
	return m.checker.Check(command)
}
