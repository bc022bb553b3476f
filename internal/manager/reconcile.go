package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/logger"
)

// ReconcileReport lists what Reconcile changed.
type ReconcileReport struct {
	Installed   []string
	Updated     []string // active jobs whose plist no longer matched the record
	Uninstalled []string
	Orphans     []string // jobs with no local record, removed
	Unchanged   int
}

// Changed reports whether anything was installed, rewritten or removed.
func (r ReconcileReport) Changed() bool {
	return len(r.Installed)+len(r.Updated)+len(r.Uninstalled)+len(r.Orphans) > 0
}

// Reconcile brings launchd on this machine in line with the registry:
// enabled local tasks that are not active are installed, active ones whose
// plist differs from the record (edited on another machine) are reinstalled,
// disabled local
// tasks with an artifact or job are uninstalled, and jobs under the label
// prefix without a local record are removed. Per-task failures are
// collected and do not stop the pass.
func (m *Manager) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	doc, err := m.store.Load()
	if err != nil {
		return report, err
	}

	records := doc.Records()
	local := make(map[string]bool)
	var names []string
	for _, rec := range records {
		if m.machines.IsLocal(rec.Machine) {
			local[rec.Name] = true
			names = append(names, rec.Name)
		}
	}

	states, err := m.scheduler.Statuses(ctx, names)
	if err != nil {
		return report, err
	}

	var errs []error
	for _, rec := range records {
		if !local[rec.Name] {
			continue
		}
		state := states[rec.Name]
		switch {
		case rec.Enabled && state != launchd.Active:
			if err := m.scheduler.Install(ctx, rec); err != nil {
				errs = append(errs, fmt.Errorf("install %s: %w", rec.Name, err))
				continue
			}
			report.Installed = append(report.Installed, rec.Name)
		case rec.Enabled:
			inSync, err := m.scheduler.InSync(rec)
			if err != nil {
				errs = append(errs, fmt.Errorf("compare %s: %w", rec.Name, err))
				continue
			}
			if inSync {
				report.Unchanged++
				continue
			}
			if err := m.scheduler.Install(ctx, rec); err != nil {
				errs = append(errs, fmt.Errorf("update %s: %w", rec.Name, err))
				continue
			}
			report.Updated = append(report.Updated, rec.Name)
		case !rec.Enabled && state != launchd.NotInstalled:
			if err := m.scheduler.Uninstall(ctx, rec.Name); err != nil {
				errs = append(errs, fmt.Errorf("uninstall %s: %w", rec.Name, err))
				continue
			}
			report.Uninstalled = append(report.Uninstalled, rec.Name)
		default:
			report.Unchanged++
		}
	}

	installed, err := m.scheduler.InstalledNames(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, name := range installed {
		if local[name] {
			continue
		}
		if err := m.scheduler.Uninstall(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("remove orphan %s: %w", name, err))
			continue
		}
		report.Orphans = append(report.Orphans, name)
	}

	if report.Changed() {
		m.logger.Info("reconciled",
			logger.Field{Key: "installed", Value: report.Installed},
			logger.Field{Key: "updated", Value: report.Updated},
			logger.Field{Key: "uninstalled", Value: report.Uninstalled},
			logger.Field{Key: "orphans", Value: report.Orphans})
	}
	return report, errors.Join(errs...)
}
