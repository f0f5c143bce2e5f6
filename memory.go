package fskit

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory FileSystem implementation for testing and ephemeral
// use. It stores files in a map without any filesystem dependency.
// Thread-safe for concurrent reads and writes.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memoryFile
	dirs  map[string]time.Time // explicitly created directories
}

type memoryFile struct {
	data    []byte
	modTime time.Time
}

var _ FileSystem = (*Memory)(nil)

// NewMemory creates a new in-memory filesystem.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]memoryFile),
		dirs:  make(map[string]time.Time),
	}
}

// Exists reports whether a file or directory exists at name.
func (m *Memory) Exists(_ context.Context, name string) (bool, error) {
	name = Normalize(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[name]; ok {
		return true, nil
	}
	return m.isDirLocked(name), nil
}

// Read returns a copy of the file content at name.
func (m *Memory) Read(_ context.Context, name string) ([]byte, error) {
	name = Normalize(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(f.data), nil
}

// Write stores a copy of data at name.
func (m *Memory) Write(_ context.Context, name string, data []byte) error {
	name = Normalize(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[name] = memoryFile{data: bytes.Clone(data), modTime: time.Now()}
	return nil
}

// Delete removes the file at name. Absent files are ignored.
func (m *Memory) Delete(_ context.Context, name string) error {
	name = Normalize(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, name)
	return nil
}

// Stat returns metadata for name.
func (m *Memory) Stat(_ context.Context, name string) (FileInfo, error) {
	name = Normalize(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if f, ok := m.files[name]; ok {
		return FileInfo{Size: int64(len(f.data)), ModTime: f.modTime, IsDir: false}, nil
	}
	if m.isDirLocked(name) {
		return FileInfo{ModTime: m.dirs[name], IsDir: true}, nil
	}
	return FileInfo{}, ErrNotFound
}

// List returns the sorted immediate children of dir.
func (m *Memory) List(_ context.Context, dir string) ([]string, error) {
	dir = Normalize(dir)

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	collect := func(name string) {
		child, ok := childOf(dir, name)
		if ok {
			seen[child] = struct{}{}
		}
	}
	for name := range m.files {
		collect(name)
	}
	for name := range m.dirs {
		collect(name)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MkdirAll records dir and its ancestors as existing directories.
func (m *Memory) MkdirAll(_ context.Context, dir string) error {
	dir = Normalize(dir)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for dir != "" {
		if _, ok := m.dirs[dir]; !ok {
			m.dirs[dir] = now
		}
		dir = parentDir(dir)
	}
	return nil
}

// RemoveAll removes dir and everything below it. The root empties the whole
// filesystem.
func (m *Memory) RemoveAll(_ context.Context, dir string) error {
	dir = Normalize(dir)

	m.mu.Lock()
	defer m.mu.Unlock()

	if dir == "" {
		m.files = make(map[string]memoryFile)
		m.dirs = make(map[string]time.Time)
		return nil
	}

	for name := range m.files {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			delete(m.files, name)
		}
	}
	for name := range m.dirs {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			delete(m.dirs, name)
		}
	}
	return nil
}

// isDirLocked reports whether name is a directory, either explicitly created
// or implied by a deeper file. The root always exists.
func (m *Memory) isDirLocked(name string) bool {
	if name == "" {
		return true
	}
	if _, ok := m.dirs[name]; ok {
		return true
	}
	for file := range m.files {
		if strings.HasPrefix(file, name+"/") {
			return true
		}
	}
	return false
}

// childOf returns the first path segment of name below dir.
func childOf(dir, name string) (string, bool) {
	if name == "" || name == dir {
		return "", false
	}
	rest := name
	if dir != "" {
		if !strings.HasPrefix(name, dir+"/") {
			return "", false
		}
		rest = name[len(dir)+1:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}
