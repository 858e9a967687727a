package viewer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists the files of an exported document tree.
type Storage interface {
	Store(ctx context.Context, name string, content io.Reader) error
}

// FileStorage persists to a local file system.
type FileStorage struct {
	baseDir string
}

// NewFileStorage returns an initialized FileStorage.
func NewFileStorage(baseDir string) *FileStorage {
	return &FileStorage{baseDir}
}

var ErrEmptyName = fmt.Errorf("name must not be empty")

// Store implements Storage.
func (s *FileStorage) Store(ctx context.Context, name string, content io.Reader) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Cleaning the rooted name drops all parent directory references,
	// so nothing is written outside of baseDir.
	destPath := filepath.Join(s.baseDir, filepath.Clean("/"+name))
	err := os.MkdirAll(filepath.Dir(destPath), 0o755)
	if err != nil {
		return err
	}
	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	_, err = io.Copy(dest, content)
	if err != nil {
		dest.Close()
		return err
	}

	return dest.Close()
}
