// Package app wires configuration, logging and the scheduling collaborators
// into a task manager for one command invocation.
package app

import (
	"context"
	"os"
	"time"

	"github.com/aatumaykin/nexsched/internal/config"
	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/logger"
	"github.com/aatumaykin/nexsched/internal/machine"
	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/watch"
)

// App holds the components built from one configuration.
type App struct {
	config *config.Config
	logger *logger.Logger

	controller launchd.Controller
	hostname   func() (string, error)
	now        func() time.Time

	machines  *machine.Set
	store     *registry.Store
	scheduler *launchd.Adapter
	manager   *manager.Manager
}

// Option customizes how an App builds its components.
type Option func(*App)

// WithController replaces the launchctl-backed controller.
func WithController(ctl launchd.Controller) Option {
	return func(a *App) {
		a.controller = ctl
	}
}

// WithHostname replaces os.Hostname for machine detection.
func WithHostname(fn func() (string, error)) Option {
	return func(a *App) {
		a.hostname = fn
	}
}

// WithClock sets the clock used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// New creates a new App instance with the provided configuration and logger.
// Components are built by Initialize.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) *App {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{
		config:   cfg,
		logger:   log,
		hostname: os.Hostname,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.logger
}

// Manager returns the task manager. Initialize must have succeeded.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// Machines returns the machine identity set. Initialize must have succeeded.
func (a *App) Machines() *machine.Set {
	return a.machines
}

// Scheduler returns the launchd adapter. Initialize must have succeeded.
func (a *App) Scheduler() *launchd.Adapter {
	return a.scheduler
}

// Close releases the log file, if one was opened.
func (a *App) Close() error {
	return a.logger.Close()
}

// Watcher returns a registry watcher that reconciles this machine on every
// change. A zero debounce uses the watcher default.
func (a *App) Watcher(debounce time.Duration) *watch.Watcher {
	return watch.New(watch.Config{
		Path:       a.store.Path(),
		Debounce:   debounce,
		RunOnStart: true,
		Logger:     a.logger,
	}, func(ctx context.Context) error {
		_, err := a.manager.Reconcile(ctx)
		return err
	})
}
