package fskit

import (
	"context"
	"errors"
	"os"
	gopath "path"
	"strings"
	"time"
)

// ErrInvalidPath is returned for paths that escape the filesystem root.
var ErrInvalidPath = errors.New("invalid path")

// ErrNotFound is returned when a file does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// FileInfo describes a file or directory.
type FileInfo struct {
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FileSystem is the minimal storage capability implemented by every backend
// and decorator in this module.
//
// Paths are slash-separated and relative to the filesystem root. Implementations
// must be safe for concurrent use.
type FileSystem interface {
	// Exists reports whether a file exists at name.
	Exists(ctx context.Context, name string) (bool, error)

	// Read returns the full content of the file at name.
	// Returns ErrNotFound if the file does not exist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write stores data at name, creating parent directories as needed.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes the file at name. Deleting an absent file is not an error.
	Delete(ctx context.Context, name string) error

	// Stat returns metadata for the file or directory at name.
	// Returns ErrNotFound if nothing exists at name.
	Stat(ctx context.Context, name string) (FileInfo, error)

	// List returns the sorted names of the immediate children of dir.
	// An empty or absent directory yields an empty slice, not an error.
	List(ctx context.Context, dir string) ([]string, error)

	// MkdirAll ensures the directory dir (and its parents) exists.
	MkdirAll(ctx context.Context, dir string) error

	// RemoveAll removes dir and everything below it.
	// Removing an absent directory is not an error.
	RemoveAll(ctx context.Context, dir string) error
}

// Normalize canonicalizes a path for use as a storage key: forward slashes,
// no leading "./", no trailing separator. The empty path and "." normalize
// to "" (the root).
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = gopath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

// parentDir returns the directory containing name ("" for top-level names).
func parentDir(name string) string {
	dir := gopath.Dir(name)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
