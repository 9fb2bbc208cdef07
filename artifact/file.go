package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists artifacts under <dir>/<runID>/<name>. Directories are
// created on demand; writes replace existing files atomically enough for a
// single-writer pipeline (one orchestrator owns each run).
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store's root directory.
func (f *FileStore) Dir() string { return f.dir }

// Save implements Store.
func (f *FileStore) Save(runID, name string, data []byte) error {
	runDir := filepath.Join(f.dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, name), data, 0o644)
}

// Get implements Store.
func (f *FileStore) Get(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, runID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List implements Store.
func (f *FileStore) List(runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.dir, runID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Delete implements Store.
func (f *FileStore) Delete(runID, name string) error {
	err := os.Remove(filepath.Join(f.dir, runID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*FileStore)(nil)
