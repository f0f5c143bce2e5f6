package fskit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/fskit/internal/mmap"
)

// Local implements FileSystem on the local disk, rooted at a directory.
// All paths are resolved below the root; escaping paths are rejected.
type Local struct {
	root string
}

var _ FileSystem = (*Local)(nil)

// NewLocal creates a local filesystem rooted at root. The root directory is
// created if it does not exist.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(name string) (string, error) {
	name = Normalize(name)
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return filepath.Join(l.root, filepath.FromSlash(name)), nil
}

// Exists reports whether a file or directory exists at name.
func (l *Local) Exists(_ context.Context, name string) (bool, error) {
	p, err := l.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Read returns the full content of the file at name.
func (l *Local) Read(_ context.Context, name string) ([]byte, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write stores data at name atomically: the bytes are written to a temp file
// in the same directory and renamed into place, so readers never observe a
// partial file.
func (l *Local) Write(_ context.Context, name string, data []byte) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp := p + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Delete removes the file at name. Absent files are ignored.
func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stat returns metadata for name.
func (l *Local) Stat(_ context.Context, name string) (FileInfo, error) {
	p, err := l.path(name)
	if err != nil {
		return FileInfo{}, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{}, ErrNotFound
		}
		return FileInfo{}, err
	}
	return FileInfo{Size: fi.Size(), ModTime: fi.ModTime(), IsDir: fi.IsDir()}, nil
}

// List returns the sorted immediate children of dir. An absent directory
// yields an empty slice.
func (l *Local) List(_ context.Context, dir string) ([]string, error) {
	p, err := l.path(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// MkdirAll ensures dir and its parents exist.
func (l *Local) MkdirAll(_ context.Context, dir string) error {
	p, err := l.path(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

// RemoveAll removes dir and everything below it.
func (l *Local) RemoveAll(_ context.Context, dir string) error {
	p, err := l.path(dir)
	if err != nil {
		return err
	}
	return os.RemoveAll(p)
}

// OpenMapped memory-maps the file at name for zero-copy access. The caller
// must Close the mapping; its bytes are invalid afterwards. Used by CopyTree
// to stream large files without buffering them twice.
func (l *Local) OpenMapped(name string) (*mmap.Mapping, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}
