package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexsched/internal/logger"
	"github.com/aatumaykin/nexsched/internal/schedule"
	"github.com/aatumaykin/nexsched/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "sync", "registry.json"), logger.Nop())
}

func testRecord(t *testing.T, name string) task.Record {
	t.Helper()
	daily, err := schedule.Daily(9, 0)
	require.NoError(t, err)
	return task.Record{
		Name:         name,
		Command:      "echo " + name,
		Schedule:     daily,
		Machine:      "studio",
		Enabled:      true,
		Created:      task.Timestamp{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		ArtifactPath: "/tmp/" + name + ".plist",
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	doc := NewDocument()
	require.NoError(t, doc.Insert(testRecord(t, "b-task")))
	require.NoError(t, doc.Insert(testRecord(t, "a-task")))
	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a-task", "b-task"}, loaded.Names())
	assert.Equal(t, doc.Tasks["a-task"].Command, loaded.Tasks["a-task"].Command)
	assert.True(t, doc.Tasks["a-task"].Created.Equal(loaded.Tasks["a-task"].Created.Time))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_RoundTripIsNoOp(t *testing.T) {
	store := newTestStore(t)
	original := `{
  "tasks": {
    "morning": {
      "name": "morning",
      "command": "echo hi",
      "schedule": {"hour": 9, "minute": 0},
      "created": "2025-01-05T09:00:00Z",
      "enabled": true,
      "plist_path": "/x/com.claude.scheduled.morning.plist",
      "notes": "kept"
    },
    "poll": {
      "name": "poll",
      "command": "curl -s example.com",
      "schedule": {"interval": 300},
      "machine": "laptop",
      "created": "2025-01-06T10:00:00Z",
      "enabled": false,
      "plist_path": "/x/com.claude.scheduled.poll.plist"
    }
  },
  "version": 2
}`
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(original), 0644))

	doc, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(doc))

	saved, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, original, string(saved))
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"tasks": {"a": {"name": "a"`},
		{"empty file", ""},
		{"array root", `[]`},
		{"bad schedule type", `{"tasks": {"a": {"name": "a", "schedule": {"hour": "nine"}}}}`},
		{"name mismatch", `{"tasks": {"a": {"name": "b"}}}`},
		{"bad timestamp", `{"tasks": {"a": {"name": "a", "created": "soon"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0644))

			_, err := store.Load()
			assert.ErrorIs(t, err, ErrCorrupt)

			// A failed update must never overwrite the unreadable file.
			err = store.Update(func(doc *Document) error {
				doc.Upsert(testRecord(t, "new"))
				return nil
			})
			assert.ErrorIs(t, err, ErrCorrupt)

			after, err := os.ReadFile(store.Path())
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(after))
		})
	}
}

func TestStore_LoadFillsMissingNames(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"tasks": {"a": {"command": "x", "schedule": {"interval": 5}}}}`), 0644))

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Tasks["a"].Name)
}

func TestStore_UpdateAbortsOnError(t *testing.T) {
	store := newTestStore(t)
	doc := NewDocument()
	require.NoError(t, doc.Insert(testRecord(t, "keep")))
	require.NoError(t, store.Save(doc))

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	err = store.Update(func(doc *Document) error {
		return doc.Delete("ghost")
	})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDocument_Operations(t *testing.T) {
	doc := NewDocument()

	require.NoError(t, doc.Insert(testRecord(t, "one")))
	assert.ErrorIs(t, doc.Insert(testRecord(t, "one")), ErrDuplicateName)

	rec, err := doc.Get("one")
	require.NoError(t, err)
	rec.Command = "changed"
	doc.Upsert(rec)
	got, err := doc.Get("one")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Command)

	_, err = doc.Get("two")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, doc.Delete("one"))
	assert.ErrorIs(t, doc.Delete("one"), ErrNotFound)
	assert.Empty(t, doc.Records())
}

func TestDocument_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(&Document{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks": {}}`, string(data))
}

func TestWriteFileAtomic_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
