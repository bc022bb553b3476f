package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexsched/internal/manager"
	"github.com/aatumaykin/nexsched/internal/task"
)

func testViews() []manager.View {
	next := time.Unix(1772618400, 0)
	return []manager.View{
		{Record: task.Record{Name: "a", Enabled: true}, Machine: "studio", Status: manager.StatusActive, Next: next},
		{Record: task.Record{Name: "b", Enabled: true}, Machine: "laptop", Status: manager.StatusRemote, Next: next},
		{Record: task.Record{Name: "c", Enabled: false}, Machine: "studio", Status: manager.StatusDisabled, Next: next},
	}
}

func render(t *testing.T, e *Exporter) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, e.Write(&sb))
	return sb.String()
}

func TestExporter_Observe(t *testing.T) {
	e := NewExporter()
	e.Observe(testViews())
	out := render(t, e)

	assert.Contains(t, out, "# TYPE nexsched_tasks gauge")
	assert.Contains(t, out, `nexsched_tasks{status="active"} 1`)
	assert.Contains(t, out, `nexsched_tasks{status="remote"} 1`)
	assert.Contains(t, out, `nexsched_tasks{status="disabled"} 1`)
	assert.Contains(t, out, `nexsched_tasks{status="unloaded"} 0`)
	assert.Contains(t, out, `nexsched_task_info{machine="studio",name="a",status="active"} 1`)
	assert.Contains(t, out, `nexsched_task_info{machine="laptop",name="b",status="remote"} 1`)
	assert.Contains(t, out, `nexsched_task_next_run_timestamp_seconds{name="a"}`)
	assert.NotContains(t, out, `nexsched_task_next_run_timestamp_seconds{name="c"}`)
}

func TestExporter_ObserveReplaces(t *testing.T) {
	e := NewExporter()
	e.Observe(testViews())
	e.Observe(testViews()[:1])
	out := render(t, e)

	assert.NotContains(t, out, `name="b"`)
	assert.Contains(t, out, `nexsched_tasks{status="remote"} 0`)
}

func TestExporter_WriteTextfile(t *testing.T) {
	e := NewExporter()
	e.Observe(testViews())

	path := filepath.Join(t.TempDir(), "nexsched.prom")
	require.NoError(t, e.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `nexsched_task_info{machine="studio",name="c",status="disabled"} 1`)
}
