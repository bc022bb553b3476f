package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexsched/internal/app"
	"github.com/aatumaykin/nexsched/internal/launchd"
)

// fakeController stands in for launchctl: it keeps loaded labels in memory
// and reads the label from each plist it loads.
type fakeController struct {
	mu      sync.Mutex
	loaded  map[string]bool
	calls   []string
	loadErr error
}

func newFakeController() *fakeController {
	return &fakeController{loaded: make(map[string]bool)}
}

func labelAt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	job, err := launchd.Decode(data)
	if err != nil {
		return "", err
	}
	return job.Label, nil
}

func (f *fakeController) Load(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "load "+filepath.Base(path))
	if f.loadErr != nil {
		return f.loadErr
	}
	label, err := labelAt(path)
	if err != nil {
		return err
	}
	f.loaded[label] = true
	return nil
}

func (f *fakeController) Unload(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "unload "+filepath.Base(path))
	label, err := labelAt(path)
	if err != nil {
		return err
	}
	delete(f.loaded, label)
	return nil
}

func (f *fakeController) Remove(_ context.Context, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove "+label)
	delete(f.loaded, label)
	return nil
}

func (f *fakeController) Start(_ context.Context, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start "+label)
	return nil
}

func (f *fakeController) List(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	labels := make([]string, 0, len(f.loaded))
	for label := range f.loaded {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

func (f *fakeController) isLoaded(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded["com.claude.scheduled."+name]
}

func (f *fakeController) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testEnv is an isolated home directory with a config file and a fake
// launchctl.
type testEnv struct {
	dir      string
	cfgPath  string
	registry string
	agents   string
	logs     string
	ctl      *fakeController
}

const testConfigTemplate = `[registry]
path = %q

[launchd]
agents_dir = %q
log_dir = %q
shell = "/bin/sh"

[machines]
current = "studio"
known = ["studio", "laptop"]

[agent]
binary = "claude"
skill_dirs = [%q]
command_dirs = [%q]

[agent.aliases]
mb = "morning-brief"

[logging]
level = "error"
output = "discard"
`

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("NEXSCHED_CONFIG", "")

	env := &testEnv{
		dir:      dir,
		cfgPath:  filepath.Join(dir, "config.toml"),
		registry: filepath.Join(dir, "sync", "registry.json"),
		agents:   filepath.Join(dir, "LaunchAgents"),
		logs:     filepath.Join(dir, "logs"),
		ctl:      newFakeController(),
	}

	skills := filepath.Join(dir, "skills")
	skill := filepath.Join(skills, "morning-brief", "SKILL.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(skill), 0755))
	require.NoError(t, os.WriteFile(skill, []byte("---\nname: morning-brief\n---\n"), 0644))

	content := fmt.Sprintf(testConfigTemplate, env.registry, env.agents, env.logs,
		skills, filepath.Join(dir, "commands"))
	require.NoError(t, os.WriteFile(env.cfgPath, []byte(content), 0644))

	appOptions = []app.Option{
		app.WithController(env.ctl),
		app.WithHostname(func() (string, error) { return "studio.local", nil }),
	}
	t.Cleanup(func() { appOptions = nil })
	return env
}

// run executes nexsched in-process and returns stdout, stderr and the exit
// code.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.cfgPath, "--no-color"}, args...)
	code := execute(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun fails the test unless the command exits 0.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, code := e.run(t, args...)
	require.Equal(t, 0, code, "nexsched %v\nstdout:\n%s\nstderr:\n%s", args, stdout, stderr)
	return stdout
}

func (e *testEnv) readRegistry(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(e.registry)
	require.NoError(t, err)
	return data
}

// resetFlags restores every flag to its default between in-process runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
