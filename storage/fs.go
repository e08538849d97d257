package storage

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// FSStore implements Store on a local directory. Used for development and as the
// default backend.
type FSStore struct {
	// baseDir is the directory all paths are relative to
	baseDir string
}

// NewFSStore creates a store rooted at baseDir, creating the directory if needed
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FSStore{baseDir: baseDir}, nil
}

// resolve maps a store path onto the filesystem, refusing paths which escape baseDir
func (s *FSStore) resolve(p string) (string, error) {
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", fmt.Errorf("path \"%s\" escapes the store", p)
		}
	}

	return filepath.Join(s.baseDir, filepath.FromSlash(p)), nil
}

// Exists implements Store
func (s *FSStore) Exists(ctx context.Context, p string) (bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// DeleteRecursive implements Store
func (s *FSStore) DeleteRecursive(ctx context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	if full == filepath.Clean(s.baseDir) {
		return fmt.Errorf("refusing to delete the store root")
	}

	return os.RemoveAll(full)
}

// Put implements Store. Content is written to a temporary file which is then
// renamed over the destination.
func (s *FSStore) Put(ctx context.Context, p string, content []byte) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := ioutil.TempFile(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("failed to move into place: %w", err)
	}

	return nil
}

// BaseDir returns the directory the store is rooted at
func (s *FSStore) BaseDir() string {
	return s.baseDir
}
