package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wit-platform/witpanel/pkg/errors"
)

// File stores each record as <dir>/<key>.json.
// Writes go to a temporary file that is renamed over the old record, so a
// crash mid-write leaves the previous layout intact.
type File struct {
	mu  sync.RWMutex
	dir string
}

// NewFile creates a file backend rooted at dir.
// The directory will be created if it doesn't exist.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file storage needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) Name() string { return "file" }

// Dir returns the directory holding the records.
func (f *File) Dir() string { return f.dir }

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the record for key.
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := errors.ValidateStorageKey(key); err != nil {
		return nil, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Set atomically replaces the record for key.
func (f *File) Set(ctx context.Context, key string, data []byte) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the record for key.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file storage.
func (f *File) Close() error {
	return nil
}

var _ Backend = (*File)(nil)
