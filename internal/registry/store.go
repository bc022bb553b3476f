// Package registry persists the task registry as a single JSON document.
//
// The file is usually replicated between machines by a file-sync tool that
// may read it at any moment, so every save goes through a temporary file in
// the same directory followed by a rename. There is no locking: the last
// writer wins.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aatumaykin/nexsched/internal/logger"
)

var (
	// ErrNotFound is returned when a task name is absent from the registry
	ErrNotFound = errors.New("task not found")

	// ErrDuplicateName is returned when creating a task whose name exists
	ErrDuplicateName = errors.New("task already exists")

	// ErrCorrupt is returned when the registry file cannot be parsed. The
	// file is left untouched.
	ErrCorrupt = errors.New("registry is corrupt")
)

// Store reads and writes the registry file.
type Store struct {
	path   string
	logger *logger.Logger
}

// NewStore creates a Store for the registry file at path.
func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{path: path, logger: log}
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole registry. A missing file yields an empty registry;
// any parse failure yields ErrCorrupt.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("registry file not found, starting empty",
				logger.Field{Key: "file", Value: s.path})
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.path)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Error("failed to parse registry", err,
			logger.Field{Key: "file", Value: s.path})
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return doc, nil
}

// Save writes the whole registry atomically.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	data = append(data, '\n')

	if err := WriteFileAtomic(s.path, data, 0644); err != nil {
		s.logger.Error("failed to save registry", err,
			logger.Field{Key: "file", Value: s.path})
		return err
	}

	s.logger.Debug("registry saved",
		logger.Field{Key: "tasks", Value: len(doc.Tasks)},
		logger.Field{Key: "file", Value: s.path})
	return nil
}

// Update runs a read-modify-write cycle. The registry is saved only when
// fn returns nil.
func (s *Store) Update(fn func(doc *Document) error) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.Save(doc)
}

// WriteFileAtomic writes data to a temporary file in the target directory,
// syncs it and renames it over path, so readers see either the old or the
// new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, path, err)
	}
	committed = true
	return nil
}
