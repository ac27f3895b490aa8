package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/clauseease/clauseease/internal/session"
)

// FileStore persists the session snapshot as a JSON file, the terminal
// client's stand-in for browser local storage.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. The parent directory is created on
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot. The file is user-readable only: it holds a
// session token.
func (s *FileStore) Save(p session.Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the snapshot. A missing file is not an error.
func (s *FileStore) Load() (*session.Persisted, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p session.Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Clear removes the snapshot.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
