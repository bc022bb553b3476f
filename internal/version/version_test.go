package version

import (
	"strings"
	"testing"
)

func saveInfo(t *testing.T) {
	t.Helper()
	v, bt, gc, gv := Version, BuildTime, GitCommit, GoVersion
	t.Cleanup(func() {
		Version, BuildTime, GitCommit, GoVersion = v, bt, gc, gv
	})
}

func TestSetInfo(t *testing.T) {
	saveInfo(t)

	SetInfo("1.0.0", "2026-01-01T00:00:00Z", "abc123", "go1.24")

	if Version != "1.0.0" {
		t.Errorf("Version = %s, want 1.0.0", Version)
	}
	if BuildTime != "2026-01-01T00:00:00Z" {
		t.Errorf("BuildTime = %s, want 2026-01-01T00:00:00Z", BuildTime)
	}
	if GitCommit != "abc123" {
		t.Errorf("GitCommit = %s, want abc123", GitCommit)
	}
	if GoVersion != "go1.24" {
		t.Errorf("GoVersion = %s, want go1.24", GoVersion)
	}
}

func TestSetInfoEmptyValues(t *testing.T) {
	saveInfo(t)

	Version = "test-version"
	SetInfo("", "", "", "")

	if Version != "test-version" {
		t.Errorf("Version should not change with empty value, got %s", Version)
	}
}

func TestFormat(t *testing.T) {
	saveInfo(t)
	SetInfo("2.1.0", "2026-02-03", "deadbeef", "go1.24")

	out := Format()
	for _, want := range []string{"nexsched 2.1.0", "2026-02-03", "deadbeef", "go1.24"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if Short() != "2.1.0 (deadbeef)" {
		t.Errorf("Short() = %q", Short())
	}
}
