package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/nexsched/internal/logger"
)

// RunOptions controls a manual run.
type RunOptions struct {
	// Detach asks launchd to start the loaded job instead of running the
	// command in the foreground.
	Detach bool
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult reports a finished foreground run.
type RunResult struct {
	RunID    string
	ExitCode int
	Duration time.Duration
	Detached bool
}

// Run executes the task's command now. In the foreground the command runs
// through the configured shell, its output goes both to the given writers
// and to the task's log files, and Run waits for it to exit with no timeout.
// A non-zero exit is reported in RunResult, not as an error.
func (m *Manager) Run(ctx context.Context, name string, opts RunOptions) (RunResult, error) {
	doc, err := m.store.Load()
	if err != nil {
		return RunResult{}, err
	}
	rec, err := doc.Get(name)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{RunID: uuid.NewString()}
	log := m.logger.With(
		logger.Field{Key: "task", Value: name},
		logger.Field{Key: "run_id", Value: result.RunID})

	if opts.Detach {
		if !m.machines.IsLocal(rec.Machine) {
			return RunResult{}, fmt.Errorf("%w: %s runs on %s", ErrRemoteTask, name, rec.Machine)
		}
		if err := m.scheduler.Start(ctx, name); err != nil {
			return RunResult{}, err
		}
		log.Info("job started by launchd")
		result.Detached = true
		return result, nil
	}

	stdoutPath, stderrPath := m.scheduler.LogPaths(name)
	outLog, err := openLog(stdoutPath)
	if err != nil {
		return RunResult{}, err
	}
	defer outLog.Close()
	errLog, err := openLog(stderrPath)
	if err != nil {
		return RunResult{}, err
	}
	defer errLog.Close()

	started := m.now()
	fmt.Fprintf(outLog, "--- manual run %s at %s ---\n", result.RunID, started.Format(time.RFC3339))

	cmd := exec.CommandContext(ctx, m.shell, "-c", rec.Command)
	cmd.Stdout = io.MultiWriter(writerOrDiscard(opts.Stdout), outLog)
	cmd.Stderr = io.MultiWriter(writerOrDiscard(opts.Stderr), errLog)
	cmd.Env = append(os.Environ(),
		"NEXSCHED_TASK="+name,
		"NEXSCHED_RUN_ID="+result.RunID)
	if m.pathEnv != "" {
		cmd.Env = append(cmd.Env, "PATH="+m.pathEnv)
	}

	log.Info("running task in foreground")
	err = cmd.Run()
	result.Duration = m.now().Sub(started)

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}

	log.Info("task finished",
		logger.Field{Key: "exit_code", Value: result.ExitCode},
		logger.Field{Key: "duration", Value: result.Duration.String()})
	return result, nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	return f, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
