// Package metrics exports derived task status as Prometheus gauges for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/aatumaykin/nexsched/internal/manager"
)

// Namespace prefixes every metric name.
const Namespace = "nexsched"

// Exporter holds a private registry with the task gauges.
type Exporter struct {
	registry *prometheus.Registry
	taskInfo *prometheus.GaugeVec
	tasks    *prometheus.GaugeVec
	nextRun  *prometheus.GaugeVec
}

// NewExporter creates an Exporter with its gauges registered.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		taskInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "task_info",
				Help:      "Scheduled task with its designated machine and derived status, always 1",
			},
			[]string{"name", "machine", "status"},
		),
		tasks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "tasks",
				Help:      "Number of tasks per derived status",
			},
			[]string{"status"},
		),
		nextRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "task_next_run_timestamp_seconds",
				Help:      "Unix time of the next scheduled run of enabled tasks",
			},
			[]string{"name"},
		),
	}

	e.registry.MustRegister(e.taskInfo, e.tasks, e.nextRun)
	return e
}

// Observe replaces all gauges with the state of views.
func (e *Exporter) Observe(views []manager.View) {
	e.taskInfo.Reset()
	e.tasks.Reset()
	e.nextRun.Reset()

	for _, status := range manager.AllStatuses {
		e.tasks.WithLabelValues(string(status)).Set(0)
	}
	for _, v := range views {
		e.taskInfo.WithLabelValues(v.Record.Name, v.Machine, string(v.Status)).Set(1)
		e.tasks.WithLabelValues(string(v.Status)).Inc()
		if v.Record.Enabled && !v.Next.IsZero() {
			e.nextRun.WithLabelValues(v.Record.Name).Set(float64(v.Next.Unix()))
		}
	}
}

// WriteTextfile atomically writes the metrics to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Write encodes the metrics in the text exposition format.
func (e *Exporter) Write(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
