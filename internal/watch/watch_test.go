package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, cfg Config, fn func(ctx context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(cfg, fn).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// let the watcher register before the test writes
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")

	var calls atomic.Int32
	fired := make(chan struct{}, 10)
	startWatcher(t, Config{Path: path, Debounce: 100 * time.Millisecond}, func(context.Context) error {
		calls.Add(1)
		fired <- struct{}{}
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"tasks":{}}`), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("change handler was not called")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")

	var calls atomic.Int32
	startWatcher(t, Config{Path: path, Debounce: 20 * time.Millisecond}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_RunOnStartAndHandlerErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")

	fired := make(chan struct{}, 10)
	startWatcher(t, Config{Path: path, Debounce: 20 * time.Millisecond, RunOnStart: true}, func(context.Context) error {
		fired <- struct{}{}
		return errors.New("registry is corrupt")
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("handler did not run on start")
	}

	// the watcher keeps going after a failing handler
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run after change")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(Config{Path: filepath.Join(t.TempDir(), "missing", "registry.json")}, func(context.Context) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
