package app

import (
	"fmt"

	"github.com/aatumaykin/nexsched/internal/directive"
	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/machine"
	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/registry"
	"github.com/aatumaykin/nexsched/internal/retry"
)

// Initialize builds all components.
func (a *App) Initialize() error {
	// 1. Machine identity
	machines, err := machine.New(machine.Options{
		Current:  a.config.Machines.Current,
		Known:    a.config.Machines.Known,
		Hosts:    a.config.Machines.Hosts,
		Hostname: a.hostname,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve machine identity: %w", err)
	}
	a.machines = machines

	// 2. Registry store
	a.store = registry.NewStore(a.config.Registry.Path, a.logger)

	// 3. launchd adapter
	a.scheduler = a.buildScheduler()

	// 4. Directive checker
	checker, err := a.buildChecker()
	if err != nil {
		return err
	}

	// 5. Manager
	a.manager = manager.New(manager.Options{
		Store:     a.store,
		Scheduler: a.scheduler,
		Machines:  a.machines,
		Checker:   checker,
		Shell:     a.config.Launchd.Shell,
		PathEnv:   a.config.Launchd.PathEnv,
		Logger:    a.logger,
		Now:       a.now,
	})

	a.logger.Debug("app initialized")
	return nil
}

func (a *App) buildScheduler() *launchd.Adapter {
	lc := a.config.Launchd
	ctl := a.controller
	if ctl == nil {
		ctl = launchd.NewLaunchctl(lc.Launchctl, a.logger,
			launchd.WithRetry(retry.Config{MaxAttempts: lc.RetryAttempts}))
	}

	return launchd.NewAdapter(launchd.Config{
		AgentsDir:   lc.AgentsDir,
		LabelPrefix: lc.LabelPrefix,
		LogDir:      lc.LogDir,
		LogPrefix:   lc.LogPrefix,
		Shell:       lc.Shell,
		PathEnv:     lc.PathEnv,
	}, ctl, a.logger)
}

func (a *App) buildChecker() (*directive.Checker, error) {
	loader := directive.NewLoader(directive.LoaderConfig{
		SkillDirs:   a.config.Agent.SkillDirs,
		CommandDirs: a.config.Agent.CommandDirs,
		Aliases:     a.config.Agent.Aliases,
		Logger:      a.logger,
	})
	dirs, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load directives: %w", err)
	}
	return directive.NewChecker(a.config.Agent.Binary, dirs, a.logger), nil
}
