package credstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores each key as one file inside a state directory. The
// one-file-per-key layout is what lets other processes observe individual
// key changes through the directory watcher.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the state directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the watched state directory.
func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key)
}

// Get reads the value for key; a missing key reads as (nil, nil).
func (f *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (f *FileBackend) Set(key string, value []byte) error {
	return os.WriteFile(f.path(key), value, 0o600)
}

// Delete removes the key's file; deleting an absent key is not an error.
func (f *FileBackend) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
