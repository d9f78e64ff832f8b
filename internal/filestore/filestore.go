// Package filestore keeps uploaded file bytes on local disk under generated names.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploads into a single directory.
type Store struct {
	dir string
}

// New creates dir if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save copies r into a new file named <uuid><ext>, keeping the extension of originalName.
// At most limit bytes are accepted when limit > 0.
func (s *Store) Save(r io.Reader, originalName string, limit int64) (path string, size int64, err error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	dst := filepath.Join(s.dir, uuid.New().String()+ext)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close upload: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
			path, size = "", 0
		}
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	size, err = io.Copy(f, src)
	if err != nil {
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if limit > 0 && size > limit {
		return "", 0, fmt.Errorf("upload exceeds %d bytes", limit)
	}
	return dst, size, nil
}

// Open opens a stored file. The path must be inside the store directory.
func (s *Store) Open(path string) (*os.File, error) {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside the upload directory", path)
	}
	return os.Open(path)
}

// Remove deletes a stored file. Missing files are ignored.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
