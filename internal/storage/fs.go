package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/starford/pulse/internal/apperr"
)

// validKey rejects keys that could escape the state directory or collide
// with temp files.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FS implements Provider with one JSON file per slice key inside a
// single state directory.
type FS struct {
	root string // absolute path to the state directory
}

// NewFS creates an FS provider rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute state directory path. The store watcher
// observes it for writes by other processes.
func (f *FS) Root() string {
	return f.root
}

// KeyFromPath maps a file path inside the state directory back to its
// slice key, or "" when the path is not a slice file.
func KeyFromPath(path string) string {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".json" {
		return ""
	}
	key := base[:len(base)-len(".json")]
	if !validKey.MatchString(key) {
		return ""
	}
	return key
}

func (f *FS) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(f.root, key+".json"), nil
}

// Read returns the stored value for key, or apperr.ErrNotFound.
func (f *FS) Read(key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: %s: %w", key, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Write atomically replaces key's value: tmp file → fsync → rename.
func (f *FS) Write(key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".pulse-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes key's file. Absent keys are a no-op.
func (f *FS) Delete(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *FS) Close() error {
	return nil
}
