package launchd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/aatumaykin/nexsched/internal/logger"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/task"
)

// State is the live launchd state of one task.
type State int

const (
	// NotInstalled: no plist and no loaded job.
	NotInstalled State = iota
	// Unloaded: the plist exists but launchd has no such job.
	Unloaded
	// Active: launchd has the job loaded.
	Active
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Unloaded:
		return "unloaded"
	default:
		return "not-installed"
	}
}

// Adapter installs, removes and inspects launchd jobs for task records.
type Adapter struct {
	cfg    Config
	ctl    Controller
	logger *logger.Logger
}

// NewAdapter creates an Adapter.
func NewAdapter(cfg Config, ctl Controller, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{cfg: cfg, ctl: ctl, logger: log}
}

// Config returns the adapter's path configuration.
func (a *Adapter) Config() Config {
	return a.cfg
}

// ArtifactPath returns the plist location for a task name.
func (a *Adapter) ArtifactPath(name string) string {
	return a.cfg.ArtifactPath(name)
}

// LogPaths returns the stdout and stderr log files of a task.
func (a *Adapter) LogPaths(name string) (string, string) {
	return a.cfg.LogPaths(name)
}

// Install renders the plist, replaces any loaded job with the same label and
// loads the new definition.
func (a *Adapter) Install(ctx context.Context, rec task.Record) error {
	job, err := a.cfg.Render(rec)
	if err != nil {
		return err
	}
	data, err := Encode(job)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.LogDir, 0755); err != nil {
		return fmt.Errorf("%w: create log directory %s: %v", ErrArtifactWrite, a.cfg.LogDir, err)
	}

	// launchd keeps the old definition until the job is unloaded
	if err := a.unloadIfLoaded(ctx, rec.Name); err != nil {
		return err
	}

	path := a.cfg.ArtifactPath(rec.Name)
	if err := registry.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	if err := a.ctl.Load(ctx, path); err != nil {
		return err
	}

	a.logger.Debug("job installed",
		logger.Field{Key: "label", Value: job.Label},
		logger.Field{Key: "file", Value: path})
	return nil
}

// InSync reports whether the plist on disk describes the same job that
// Render produces for rec. A missing or unreadable plist is out of sync.
func (a *Adapter) InSync(rec task.Record) (bool, error) {
	want, err := a.cfg.Render(rec)
	if err != nil {
		return false, err
	}
	path := a.cfg.ArtifactPath(rec.Name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	have, err := Decode(data)
	if err != nil {
		a.logger.Warn("unreadable plist, will rewrite",
			logger.Field{Key: "file", Value: path},
			logger.Field{Key: "error", Value: err})
		return false, nil
	}

	// round-trip so both sides carry the same zero values
	encoded, err := Encode(want)
	if err != nil {
		return false, err
	}
	if want, err = Decode(encoded); err != nil {
		return false, err
	}
	return reflect.DeepEqual(have, want), nil
}

// Uninstall unloads the job and deletes its plist. Neither a missing job nor
// a missing file is an error.
func (a *Adapter) Uninstall(ctx context.Context, name string) error {
	if err := a.unloadIfLoaded(ctx, name); err != nil {
		return err
	}

	path := a.cfg.ArtifactPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", ErrArtifactWrite, path, err)
	}

	a.logger.Debug("job uninstalled", logger.Field{Key: "label", Value: a.cfg.Label(name)})
	return nil
}

// Status queries launchd for the job of name.
func (a *Adapter) Status(ctx context.Context, name string) (State, error) {
	loaded, err := a.LoadedNames(ctx)
	if err != nil {
		return NotInstalled, err
	}
	return a.state(name, loaded), nil
}

// Statuses queries launchd once and reports the state of every name.
func (a *Adapter) Statuses(ctx context.Context, names []string) (map[string]State, error) {
	loaded, err := a.LoadedNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]State, len(names))
	for _, name := range names {
		out[name] = a.state(name, loaded)
	}
	return out, nil
}

// Start asks launchd to run the loaded job of name now.
func (a *Adapter) Start(ctx context.Context, name string) error {
	return a.ctl.Start(ctx, a.cfg.Label(name))
}

// LoadedNames returns task names of loaded jobs under the label prefix.
func (a *Adapter) LoadedNames(ctx context.Context) (map[string]bool, error) {
	labels, err := a.ctl.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool)
	for _, label := range labels {
		if name, ok := a.cfg.NameFromLabel(label); ok {
			names[name] = true
		}
	}
	return names, nil
}

// InstalledNames lists task names that have a plist in the agents directory
// or a loaded job, sorted.
func (a *Adapter) InstalledNames(ctx context.Context) ([]string, error) {
	set, err := a.LoadedNames(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(a.cfg.AgentsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", a.cfg.AgentsDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ArtifactExt) {
			continue
		}
		if name, ok := a.cfg.NameFromLabel(strings.TrimSuffix(entry.Name(), ArtifactExt)); ok {
			set[name] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *Adapter) state(name string, loaded map[string]bool) State {
	if loaded[name] {
		return Active
	}
	if fileExists(a.cfg.ArtifactPath(name)) {
		return Unloaded
	}
	return NotInstalled
}

func (a *Adapter) unloadIfLoaded(ctx context.Context, name string) error {
	loaded, err := a.LoadedNames(ctx)
	if err != nil {
		return err
	}
	if !loaded[name] {
		return nil
	}

	path := a.cfg.ArtifactPath(name)
	if fileExists(path) {
		return a.ctl.Unload(ctx, path)
	}
	return a.ctl.Remove(ctx, a.cfg.Label(name))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
