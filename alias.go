package fskit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/fskit/codec"
)

const aliasIndexName = "aliases.json"

// AliasFS maps logical paths to deterministic, collision-resistant object
// names before delegating to the wrapped filesystem. This flattens arbitrary
// path hierarchies into a fixed fan-out layout, which keeps object stores
// with per-prefix rate limits and filesystems with per-directory entry limits
// happy regardless of the logical tree shape.
//
// The logical-path index is persisted in the wrapped filesystem so listings
// and existence checks survive restarts.
type AliasFS struct {
	inner FileSystem
	codec codec.Codec

	mu     sync.Mutex
	index  map[string]string // logical path -> object name
	loaded bool
}

var _ FileSystem = (*AliasFS)(nil)

// NewAliasFS creates an alias-mapping decorator around inner.
// A nil codec uses codec.Default for index persistence.
func NewAliasFS(inner FileSystem, c codec.Codec) *AliasFS {
	if c == nil {
		c = codec.Default
	}
	return &AliasFS{
		inner: inner,
		codec: c,
		index: make(map[string]string),
	}
}

// ObjectName returns the deterministic storage name for a logical path.
// The first hex byte shards objects into 256 fixed directories.
func ObjectName(name string) string {
	sum := xxhash.Sum64String(Normalize(name))
	hex := fmt.Sprintf("%016x", sum)
	return "objects/" + hex[:2] + "/" + hex
}

func (a *AliasFS) load(ctx context.Context) error {
	if a.loaded {
		return nil
	}
	data, err := a.inner.Read(ctx, aliasIndexName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.loaded = true
			return nil
		}
		return err
	}
	index := make(map[string]string)
	if err := a.codec.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("decode alias index: %w", err)
	}
	a.index = index
	a.loaded = true
	return nil
}

func (a *AliasFS) save(ctx context.Context) error {
	data, err := a.codec.Marshal(a.index)
	if err != nil {
		return fmt.Errorf("encode alias index: %w", err)
	}
	return a.inner.Write(ctx, aliasIndexName, data)
}

func (a *AliasFS) Exists(ctx context.Context, name string) (bool, error) {
	name = Normalize(name)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.load(ctx); err != nil {
		return false, err
	}
	if _, ok := a.index[name]; ok {
		return true, nil
	}
	// Directories are implied by deeper entries.
	for logical := range a.index {
		if strings.HasPrefix(logical, name+"/") {
			return true, nil
		}
	}
	return false, nil
}

func (a *AliasFS) Read(ctx context.Context, name string) ([]byte, error) {
	name = Normalize(name)

	a.mu.Lock()
	if err := a.load(ctx); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	object, ok := a.index[name]
	a.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return a.inner.Read(ctx, object)
}

func (a *AliasFS) Write(ctx context.Context, name string, data []byte) error {
	name = Normalize(name)
	object := ObjectName(name)

	if err := a.inner.Write(ctx, object, data); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.load(ctx); err != nil {
		return err
	}
	a.index[name] = object
	return a.save(ctx)
}

func (a *AliasFS) Delete(ctx context.Context, name string) error {
	name = Normalize(name)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.load(ctx); err != nil {
		return err
	}
	object, ok := a.index[name]
	if !ok {
		return nil
	}
	if err := a.inner.Delete(ctx, object); err != nil {
		return err
	}
	delete(a.index, name)
	return a.save(ctx)
}

func (a *AliasFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	name = Normalize(name)

	a.mu.Lock()
	if err := a.load(ctx); err != nil {
		a.mu.Unlock()
		return FileInfo{}, err
	}
	object, ok := a.index[name]
	var isDir bool
	if !ok {
		for logical := range a.index {
			if strings.HasPrefix(logical, name+"/") {
				isDir = true
				break
			}
		}
	}
	a.mu.Unlock()

	if ok {
		return a.inner.Stat(ctx, object)
	}
	if isDir || name == "" {
		return FileInfo{IsDir: true}, nil
	}
	return FileInfo{}, ErrNotFound
}

func (a *AliasFS) List(ctx context.Context, dir string) ([]string, error) {
	dir = Normalize(dir)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.load(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for logical := range a.index {
		if child, ok := childOf(dir, logical); ok {
			seen[child] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MkdirAll is a no-op: directories exist implicitly through the index.
func (a *AliasFS) MkdirAll(_ context.Context, _ string) error {
	return nil
}

func (a *AliasFS) RemoveAll(ctx context.Context, dir string) error {
	dir = Normalize(dir)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.load(ctx); err != nil {
		return err
	}
	for logical, object := range a.index {
		if dir == "" || logical == dir || strings.HasPrefix(logical, dir+"/") {
			if err := a.inner.Delete(ctx, object); err != nil {
				return err
			}
			delete(a.index, logical)
		}
	}
	return a.save(ctx)
}
