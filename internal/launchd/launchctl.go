package launchd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aatumaykin/nexsched/internal/logger"
	"github.com/aatumaykin/nexsched/internal/retry"
)

var (
	// ErrControl is returned when a launchctl command fails
	ErrControl = errors.New("scheduler control command failed")

	// ErrArtifactWrite is returned when a plist cannot be written or removed
	ErrArtifactWrite = errors.New("failed to write scheduler artifact")
)

// ControlError describes a failed launchctl invocation.
type ControlError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ControlError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("launchctl %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ControlError) Unwrap() error {
	return ErrControl
}

// Controller is the launchd control plane.
type Controller interface {
	Load(ctx context.Context, artifactPath string) error
	Unload(ctx context.Context, artifactPath string) error
	Remove(ctx context.Context, label string) error
	Start(ctx context.Context, label string) error
	List(ctx context.Context) ([]string, error)
}

// RunFunc executes a program and returns its output and exit code. A non-nil
// error means the program could not be run at all.
type RunFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)

// Launchctl implements Controller by shelling out to launchctl.
type Launchctl struct {
	path   string
	retry  retry.Config
	run    RunFunc
	logger *logger.Logger
}

// LaunchctlOption configures Launchctl.
type LaunchctlOption func(*Launchctl)

// WithRunner replaces process execution, used by tests.
func WithRunner(run RunFunc) LaunchctlOption {
	return func(l *Launchctl) { l.run = run }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg retry.Config) LaunchctlOption {
	return func(l *Launchctl) { l.retry = cfg }
}

// NewLaunchctl creates a controller for the launchctl binary at path.
func NewLaunchctl(path string, log *logger.Logger, opts ...LaunchctlOption) *Launchctl {
	if path == "" {
		path = "launchctl"
	}
	if log == nil {
		log = logger.Nop()
	}
	l := &Launchctl{path: path, run: execRun, logger: log}
	for _, opt := range opts {
		opt(l)
	}
	l.retry.Logger = log
	l.retry.Retryable = isTransient
	return l
}

// Load loads the agent at artifactPath. launchctl reports some load failures
// on stderr while exiting 0; those count as failures too.
func (l *Launchctl) Load(ctx context.Context, artifactPath string) error {
	return l.exec(ctx, "load", artifactPath)
}

// Unload unloads the agent defined at artifactPath.
func (l *Launchctl) Unload(ctx context.Context, artifactPath string) error {
	return l.exec(ctx, "unload", artifactPath)
}

// Remove removes a loaded job by label, for jobs whose plist is gone.
func (l *Launchctl) Remove(ctx context.Context, label string) error {
	return l.exec(ctx, "remove", label)
}

// Start asks launchd to run a loaded job now.
func (l *Launchctl) Start(ctx context.Context, label string) error {
	return l.exec(ctx, "start", label)
}

// List returns the labels of all jobs loaded in the user domain.
func (l *Launchctl) List(ctx context.Context) ([]string, error) {
	var out []byte
	err := retry.Do(ctx, l.retry, func() error {
		stdout, stderr, code, err := l.invoke(ctx, "list")
		if err != nil {
			return err
		}
		if code != 0 {
			return &ControlError{Args: []string{"list"}, ExitCode: code, Stderr: string(stderr)}
		}
		out = stdout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parseList(out), nil
}

func (l *Launchctl) exec(ctx context.Context, args ...string) error {
	return retry.Do(ctx, l.retry, func() error {
		_, stderr, code, err := l.invoke(ctx, args...)
		if err != nil {
			return err
		}
		msg := string(stderr)
		if code != 0 || strings.Contains(msg, "Load failed") {
			return &ControlError{Args: args, ExitCode: code, Stderr: msg}
		}
		return nil
	})
}

func (l *Launchctl) invoke(ctx context.Context, args ...string) ([]byte, []byte, int, error) {
	l.logger.Debug("running launchctl",
		logger.Field{Key: "path", Value: l.path},
		logger.Field{Key: "args", Value: args})

	stdout, stderr, code, err := l.run(ctx, l.path, args...)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %s %s: %v", ErrControl, l.path, strings.Join(args, " "), err)
	}
	return stdout, stderr, code, nil
}

// parseList extracts labels from "PID\tStatus\tLabel" lines.
func parseList(out []byte) []string {
	var labels []string
	for i, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if i == 0 && fields[0] == "PID" {
			continue
		}
		labels = append(labels, fields[len(fields)-1])
	}
	return labels
}

func isTransient(err error) bool {
	var ce *ControlError
	if !errors.As(err, &ce) {
		return false
	}
	return retry.IsRetryable(errors.New(ce.Stderr))
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return nil, nil, 0, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}
