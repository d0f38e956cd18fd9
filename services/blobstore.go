package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBlobStore serves document bytes from a local directory. It fills the
// BlobStore port where a managed object store would sit in a cloud
// deployment.
type FileBlobStore struct {
	Dir string // absolute path to the documents directory
}

// NewFileBlobStore resolves dir and verifies it exists.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve documents directory %q: %w", dir, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("documents directory %q is not accessible: %w", absPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents path %q is not a directory", absPath)
	}
	return &FileBlobStore{Dir: absPath}, nil
}

// resolve keeps blob names inside the documents directory.
func (s *FileBlobStore) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: blob name is empty", ErrValidation)
	}
	cleanPath := filepath.Join(s.Dir, filepath.Base(name))
	if !strings.HasPrefix(cleanPath, s.Dir) {
		return "", fmt.Errorf("%w: blob name %q escapes the documents directory", ErrValidation, name)
	}
	return cleanPath, nil
}

// Fetch returns the raw bytes of the named document.
func (s *FileBlobStore) Fetch(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read document %q: %w", name, err)
	}
	return data, nil
}
