package manager

import (
	"context"
	"time"

	"github.com/aatumaykin/nexsched/internal/launchd"
	"github.com/aatumaykin/nexsched/internal/task"
)

// Status is the displayed state of a task. It is derived on every query and
// never stored.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
	StatusRemote   Status = "remote"
	StatusUnloaded Status = "unloaded"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusActive, StatusUnloaded, StatusDisabled, StatusRemote}

// Derive combines the enabled flag, machine match and live launchd state.
// live is only consulted for enabled local tasks.
func Derive(enabled, local bool, live launchd.State) Status {
	switch {
	case !enabled:
		return StatusDisabled
	case !local:
		return StatusRemote
	case live == launchd.Active:
		return StatusActive
	default:
		return StatusUnloaded
	}
}

// View is a record together with what was derived for it at query time.
type View struct {
	Record    task.Record
	Machine   string // designated machine, legacy empty value resolved
	Local     bool
	Status    Status
	Live      launchd.State // meaningful only when Local
	Next      time.Time     // zero when the schedule has no next run
	StdoutLog string
	StderrLog string
}

func (m *Manager) views(ctx context.Context, records []task.Record) ([]View, error) {
	var local []string
	for _, rec := range records {
		if m.machines.IsLocal(rec.Machine) {
			local = append(local, rec.Name)
		}
	}

	live := map[string]launchd.State{}
	if len(local) > 0 {
		states, err := m.scheduler.Statuses(ctx, local)
		if err != nil {
			return nil, err
		}
		live = states
	}

	now := m.now()
	views := make([]View, 0, len(records))
	for _, rec := range records {
		v := View{
			Record:  rec,
			Machine: rec.Machine,
			Local:   m.machines.IsLocal(rec.Machine),
		}
		if v.Machine == "" {
			v.Machine = m.machines.Current()
		}
		v.Live = live[rec.Name]
		v.Status = Derive(rec.Enabled, v.Local, v.Live)
		if next, err := rec.Schedule.Next(now); err == nil {
			v.Next = next
		}
		v.StdoutLog, v.StderrLog = m.scheduler.LogPaths(rec.Name)
		views = append(views, v)
	}
	return views, nil
}
