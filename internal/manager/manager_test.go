package manager

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexsched/internal/directive"
	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/machine"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/schedule"
	"github.com/aatumaykin/nexsched/internal/task"
)

// fakeScheduler models artifacts and loaded jobs in memory.
type fakeScheduler struct {
	artifacts    map[string]task.Record
	loaded       map[string]bool
	calls        []string
	installErr   error
	uninstallErr error
	logDir       string
}

func newFakeScheduler(logDir string) *fakeScheduler {
	return &fakeScheduler{
		artifacts: make(map[string]task.Record),
		loaded:    make(map[string]bool),
		logDir:    logDir,
	}
}

func (f *fakeScheduler) Install(_ context.Context, rec task.Record) error {
	f.calls = append(f.calls, "install "+rec.Name)
	if f.installErr != nil {
		return f.installErr
	}
	f.artifacts[rec.Name] = rec
	f.loaded[rec.Name] = true
	return nil
}

func (f *fakeScheduler) Uninstall(_ context.Context, name string) error {
	f.calls = append(f.calls, "uninstall "+name)
	if f.uninstallErr != nil {
		return f.uninstallErr
	}
	delete(f.artifacts, name)
	delete(f.loaded, name)
	return nil
}

func (f *fakeScheduler) Statuses(_ context.Context, names []string) (map[string]launchd.State, error) {
	out := make(map[string]launchd.State, len(names))
	for _, name := range names {
		switch {
		case f.loaded[name]:
			out[name] = launchd.Active
		case f.hasArtifact(name):
			out[name] = launchd.Unloaded
		default:
			out[name] = launchd.NotInstalled
		}
	}
	return out, nil
}

func (f *fakeScheduler) hasArtifact(name string) bool {
	_, ok := f.artifacts[name]
	return ok
}

func (f *fakeScheduler) InSync(rec task.Record) (bool, error) {
	have, ok := f.artifacts[rec.Name]
	if !ok {
		return false, nil
	}
	return have.Command == rec.Command && have.Schedule.Equal(rec.Schedule), nil
}

func (f *fakeScheduler) Start(_ context.Context, name string) error {
	f.calls = append(f.calls, "start "+name)
	return nil
}

func (f *fakeScheduler) InstalledNames(context.Context) ([]string, error) {
	set := make(map[string]bool)
	for name := range f.artifacts {
		set[name] = true
	}
	for name := range f.loaded {
		set[name] = true
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeScheduler) ArtifactPath(name string) string {
	return "/agents/com.claude.scheduled." + name + ".plist"
}

func (f *fakeScheduler) LogPaths(name string) (string, string) {
	base := filepath.Join(f.logDir, "claude-scheduled-"+name)
	return base + ".log", base + ".err"
}

var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)

type fixture struct {
	mgr   *Manager
	sched *fakeScheduler
	store *registry.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	machines, err := machine.New(machine.Options{Current: "studio", Known: []string{"studio", "laptop"}})
	require.NoError(t, err)

	dirs := directive.NewRegistry()
	dirs.Add(directive.Directive{Name: "morning-brief", Aliases: []string{"mb"}})

	sched := newFakeScheduler(filepath.Join(dir, "logs"))
	store := registry.NewStore(filepath.Join(dir, "registry.json"), nil)
	mgr := New(Options{
		Store:     store,
		Scheduler: sched,
		Machines:  machines,
		Checker:   directive.NewChecker("claude", dirs, nil),
		Shell:     "/bin/sh",
		Now:       func() time.Time { return testNow },
	})
	return &fixture{mgr: mgr, sched: sched, store: store}
}

func daily(hour, minute int) schedule.Fields {
	return schedule.Fields{Hour: &hour, Minute: &minute}
}

func ptr[T any](v T) *T {
	return &v
}

func (fx *fixture) create(t *testing.T, name, machineName string) task.Record {
	t.Helper()
	rec, err := fx.mgr.Create(context.Background(), CreateRequest{
		Name:     name,
		Command:  "echo hi",
		Schedule: daily(9, 0),
		Machine:  machineName,
	})
	require.NoError(t, err)
	return rec
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestCreate_DailyHello(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	rec := fx.create(t, "daily-hello", "")
	assert.Equal(t, "studio", rec.Machine)
	assert.True(t, rec.Enabled)
	assert.True(t, testNow.Equal(rec.Created.Time))
	assert.Equal(t, "/agents/com.claude.scheduled.daily-hello.plist", rec.ArtifactPath)

	var raw struct {
		Tasks map[string]struct {
			Schedule map[string]int `json:"schedule"`
			Enabled  bool           `json:"enabled"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(readFile(t, fx.store.Path()), &raw))
	require.Len(t, raw.Tasks, 1)
	assert.Equal(t, map[string]int{"hour": 9, "minute": 0}, raw.Tasks["daily-hello"].Schedule)
	assert.True(t, raw.Tasks["daily-hello"].Enabled)

	views, err := fx.mgr.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, StatusActive, views[0].Status)
	assert.Equal(t, []string{"install daily-hello"}, fx.sched.calls)
}

func TestCreate_DuplicateLeavesRegistryUnchanged(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, "daily-hello", "")
	before := readFile(t, fx.store.Path())

	_, err := fx.mgr.Create(context.Background(), CreateRequest{Name: "daily-hello", Command: "echo other", Schedule: daily(10, 0)})
	assert.ErrorIs(t, err, registry.ErrDuplicateName)
	assert.Equal(t, before, readFile(t, fx.store.Path()))
	assert.Equal(t, []string{"install daily-hello"}, fx.sched.calls)
}

func TestCreate_AliasRejected(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.mgr.Create(context.Background(), CreateRequest{
		Name:     "brief",
		Command:  `claude -p "/mb"`,
		Schedule: daily(7, 0),
	})
	require.ErrorIs(t, err, directive.ErrAliasNotAllowed)

	var aliasErr *directive.AliasError
	require.ErrorAs(t, err, &aliasErr)
	assert.Equal(t, "morning-brief", aliasErr.Canonical)

	assert.NoFileExists(t, fx.store.Path())
	assert.Empty(t, fx.sched.calls)
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{
			name: "empty command",
			req:  CreateRequest{Name: "x", Command: "   ", Schedule: daily(9, 0)},
			want: task.ErrEmptyCommand,
		},
		{
			name: "bad hour",
			req:  CreateRequest{Name: "x", Command: "true", Schedule: daily(24, 0)},
			want: schedule.ErrInvalidSchedule,
		},
		{
			name: "interval mixed with hour",
			req:  CreateRequest{Name: "x", Command: "true", Schedule: schedule.Fields{Hour: ptr(1), Minute: ptr(0), Interval: ptr(60)}},
			want: schedule.ErrInvalidSchedule,
		},
		{
			name: "no schedule",
			req:  CreateRequest{Name: "x", Command: "true"},
			want: schedule.ErrInvalidSchedule,
		},
		{
			name: "bad name",
			req:  CreateRequest{Name: "../x", Command: "true", Schedule: daily(9, 0)},
			want: task.ErrInvalidName,
		},
		{
			name: "unknown machine",
			req:  CreateRequest{Name: "x", Command: "true", Schedule: daily(9, 0), Machine: "desktop"},
			want: machine.ErrUnknownMachine,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.mgr.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.NoFileExists(t, fx.store.Path())
		})
	}
}

func TestCreate_RemoteIsNotInstalled(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, "laptop-job", "laptop")
	assert.Empty(t, fx.sched.calls)

	view, err := fx.mgr.Get(context.Background(), "laptop-job")
	require.NoError(t, err)
	assert.Equal(t, StatusRemote, view.Status)
	assert.Equal(t, "laptop", view.Machine)
	assert.False(t, view.Local)
}

func TestCreate_InstallFailureKeepsRecord(t *testing.T) {
	fx := newFixture(t)
	fx.sched.installErr = &launchd.ControlError{Args: []string{"load"}, ExitCode: 1}

	rec, err := fx.mgr.Create(context.Background(), CreateRequest{Name: "daily-hello", Command: "echo hi", Schedule: daily(9, 0)})
	assert.ErrorIs(t, err, launchd.ErrControl)
	assert.Equal(t, "daily-hello", rec.Name)

	view, err := fx.mgr.Get(context.Background(), "daily-hello")
	require.NoError(t, err)
	assert.Equal(t, StatusUnloaded, view.Status)
}

func TestEdit_HourMinutePreservesOtherFields(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created := fx.create(t, "daily-hello", "")

	later := testNow.Add(time.Hour)
	fx.mgr.now = func() time.Time { return later }

	rec, err := fx.mgr.Edit(ctx, "daily-hello", EditRequest{Schedule: daily(10, 30)})
	require.NoError(t, err)

	assert.Equal(t, "echo hi", rec.Command)
	assert.Equal(t, "studio", rec.Machine)
	assert.Equal(t, 10, *rec.Schedule.Hour)
	assert.Equal(t, 30, *rec.Schedule.Minute)
	assert.True(t, created.Created.Equal(rec.Created.Time), "created %v, got %v", created.Created.Time, rec.Created.Time)
	require.NotNil(t, rec.Modified)
	assert.True(t, later.Equal(rec.Modified.Time), "modified %v, want %v", rec.Modified.Time, later)

	assert.Equal(t, []string{"install daily-hello", "uninstall daily-hello", "install daily-hello"}, fx.sched.calls)
	assert.Equal(t, 10, *fx.sched.artifacts["daily-hello"].Schedule.Hour)
}

func TestEdit_Errors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "daily-hello", "")
	before := readFile(t, fx.store.Path())

	_, err := fx.mgr.Edit(ctx, "daily-hello", EditRequest{})
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = fx.mgr.Edit(ctx, "ghost", EditRequest{Command: ptr("true")})
	assert.ErrorIs(t, err, registry.ErrNotFound)

	_, err = fx.mgr.Edit(ctx, "daily-hello", EditRequest{Schedule: schedule.Fields{Minute: ptr(75)}})
	assert.ErrorIs(t, err, schedule.ErrInvalidSchedule)

	_, err = fx.mgr.Edit(ctx, "daily-hello", EditRequest{Command: ptr(`claude -p /mb`)})
	assert.ErrorIs(t, err, directive.ErrAliasNotAllowed)

	_, err = fx.mgr.Edit(ctx, "daily-hello", EditRequest{Machine: ptr("desktop")})
	assert.ErrorIs(t, err, machine.ErrUnknownMachine)

	assert.Equal(t, before, readFile(t, fx.store.Path()))
}

func TestEdit_MachineMove(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "job", "")

	_, err := fx.mgr.Edit(ctx, "job", EditRequest{Machine: ptr("laptop")})
	require.NoError(t, err)
	assert.False(t, fx.sched.hasArtifact("job"))

	fx.sched.calls = nil
	_, err = fx.mgr.Edit(ctx, "job", EditRequest{Machine: ptr("studio")})
	require.NoError(t, err)
	assert.Equal(t, []string{"install job"}, fx.sched.calls)
}

func TestEdit_DisabledIsNotInstalled(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "job", "")
	_, err := fx.mgr.Disable(ctx, "job")
	require.NoError(t, err)

	fx.sched.calls = nil
	_, err = fx.mgr.Edit(ctx, "job", EditRequest{Command: ptr("echo new")})
	require.NoError(t, err)
	assert.Empty(t, fx.sched.calls)
}

func TestRemove_GhostLeavesFileIdentical(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, "daily-hello", "")
	before := readFile(t, fx.store.Path())

	err := fx.mgr.Remove(context.Background(), "ghost")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, before, readFile(t, fx.store.Path()))
}

func TestRemove_Local(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "daily-hello", "")

	require.NoError(t, fx.mgr.Remove(ctx, "daily-hello"))
	assert.False(t, fx.sched.hasArtifact("daily-hello"))

	_, err := fx.mgr.Get(ctx, "daily-hello")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRemove_UninstallFailureKeepsRecord(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "daily-hello", "")
	fx.sched.uninstallErr = &launchd.ControlError{Args: []string{"unload"}, ExitCode: 1}

	err := fx.mgr.Remove(ctx, "daily-hello")
	assert.ErrorIs(t, err, launchd.ErrControl)

	_, err = fx.mgr.Get(ctx, "daily-hello")
	assert.NoError(t, err)
}

func TestRemove_RemoteDoesNotTouchScheduler(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, "laptop-job", "laptop")

	require.NoError(t, fx.mgr.Remove(context.Background(), "laptop-job"))
	assert.Empty(t, fx.sched.calls)
}

func TestEnableDisable(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "daily-hello", "")

	rec, err := fx.mgr.Disable(ctx, "daily-hello")
	require.NoError(t, err)
	assert.False(t, rec.Enabled)
	assert.False(t, fx.sched.hasArtifact("daily-hello"))

	view, err := fx.mgr.Get(ctx, "daily-hello")
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, view.Status)

	// disabling twice keeps the file as is
	before := readFile(t, fx.store.Path())
	_, err = fx.mgr.Disable(ctx, "daily-hello")
	require.NoError(t, err)
	assert.Equal(t, before, readFile(t, fx.store.Path()))

	rec, err = fx.mgr.Enable(ctx, "daily-hello")
	require.NoError(t, err)
	assert.True(t, rec.Enabled)

	view, err = fx.mgr.Get(ctx, "daily-hello")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, view.Status)

	_, err = fx.mgr.Enable(ctx, "ghost")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestEnableDisable_RemoteOnlyUpdatesRegistry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "laptop-job", "laptop")

	rec, err := fx.mgr.Disable(ctx, "laptop-job")
	require.NoError(t, err)
	assert.False(t, rec.Enabled)
	assert.Empty(t, fx.sched.calls)

	doc, err := fx.store.Load()
	require.NoError(t, err)
	assert.False(t, doc.Tasks["laptop-job"].Enabled)
}

func TestEnable_ControlFailureCommitsRegistry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, "job", "")
	_, err := fx.mgr.Disable(ctx, "job")
	require.NoError(t, err)

	fx.sched.installErr = &launchd.ControlError{Args: []string{"load"}, ExitCode: 1}
	_, err = fx.mgr.Enable(ctx, "job")
	assert.ErrorIs(t, err, launchd.ErrControl)

	doc, err := fx.store.Load()
	require.NoError(t, err)
	assert.True(t, doc.Tasks["job"].Enabled)
}

func TestList_LegacyRecords(t *testing.T) {
	fx := newFixture(t)
	legacy := `{
  "tasks": {
    "old": {
      "name": "old",
      "command": "echo old",
      "schedule": {"weekday": 1, "hour": 7, "minute": 30},
      "created": "2025-01-05T09:00:00.123456",
      "plist_path": "/agents/com.claude.scheduled.old.plist"
    }
  }
}
`
	require.NoError(t, os.WriteFile(fx.store.Path(), []byte(legacy), 0644))

	views, err := fx.mgr.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "studio", views[0].Machine)
	assert.True(t, views[0].Local)
	assert.Equal(t, StatusUnloaded, views[0].Status)
	assert.Equal(t, time.Date(2026, 3, 9, 7, 30, 0, 0, time.Local), views[0].Next)
}

func TestList_CorruptRegistry(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.store.Path(), []byte("{not json"), 0644))

	_, err := fx.mgr.List(context.Background())
	assert.ErrorIs(t, err, registry.ErrCorrupt)

	_, err = fx.mgr.Create(context.Background(), CreateRequest{Name: "x", Command: "true", Schedule: daily(9, 0)})
	assert.ErrorIs(t, err, registry.ErrCorrupt)
	assert.Equal(t, "{not json", string(readFile(t, fx.store.Path())))
}
