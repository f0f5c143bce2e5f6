package fskit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFS wraps a FileSystem and counts backend calls per operation so
// tests can assert whether the cache actually absorbed traffic.
type countingFS struct {
	inner FileSystem

	reads   atomic.Int64
	writes  atomic.Int64
	deletes atomic.Int64
	exists  atomic.Int64
	lists   atomic.Int64
}

var _ FileSystem = (*countingFS)(nil)

func newCountingFS(inner FileSystem) *countingFS {
	return &countingFS{inner: inner}
}

func (f *countingFS) Exists(ctx context.Context, name string) (bool, error) {
	f.exists.Add(1)
	return f.inner.Exists(ctx, name)
}

func (f *countingFS) Read(ctx context.Context, name string) ([]byte, error) {
	f.reads.Add(1)
	return f.inner.Read(ctx, name)
}

func (f *countingFS) Write(ctx context.Context, name string, data []byte) error {
	f.writes.Add(1)
	return f.inner.Write(ctx, name, data)
}

func (f *countingFS) Delete(ctx context.Context, name string) error {
	f.deletes.Add(1)
	return f.inner.Delete(ctx, name)
}

func (f *countingFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	return f.inner.Stat(ctx, name)
}

func (f *countingFS) List(ctx context.Context, dir string) ([]string, error) {
	f.lists.Add(1)
	return f.inner.List(ctx, dir)
}

func (f *countingFS) MkdirAll(ctx context.Context, dir string) error {
	return f.inner.MkdirAll(ctx, dir)
}

func (f *countingFS) RemoveAll(ctx context.Context, dir string) error {
	return f.inner.RemoveAll(ctx, dir)
}

func TestCachedFSReadThrough(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, backend.Write(ctx, "file.txt", []byte("hello")))
	backend.writes.Store(0)

	data, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Second read is served from cache.
	data, err = fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, int64(1), backend.reads.Load())
}

func TestCachedFSWriteThrough(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("v1")))

	// The read after a write never touches the backend.
	data, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
	assert.Equal(t, int64(0), backend.reads.Load())

	// Overwrite refreshes the cached content.
	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("v2")))

	data, err = fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
	assert.Equal(t, int64(0), backend.reads.Load())
}

func TestCachedFSReturnsCopies(t *testing.T) {
	ctx := context.Background()
	fsys := NewCachedFS(NewMemory())

	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("abc")))

	data, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestCachedFSSizeInvariant(t *testing.T) {
	ctx := context.Background()
	fsys := NewCachedFS(NewMemory(), WithMaxSize(3))

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, fsys.Write(ctx, name, []byte(name)))
	}

	stats := fsys.Stats()
	assert.Equal(t, 3, stats.Content.Size)
	assert.Equal(t, 3, stats.Content.Capacity)
	assert.LessOrEqual(t, stats.Exists.Size, 3)
}

func TestCachedFSLRUEviction(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend, WithMaxSize(3))

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, backend.Write(ctx, name, []byte(name)))
	}

	// Fill the cache with a, b, c, touch a so b becomes least recently used,
	// then read d. b must be the entry that falls out.
	for _, name := range []string{"a", "b", "c"} {
		_, err := fsys.Read(ctx, name)
		require.NoError(t, err)
	}
	_, err := fsys.Read(ctx, "a")
	require.NoError(t, err)
	_, err = fsys.Read(ctx, "d")
	require.NoError(t, err)

	assert.Equal(t, []string{"d", "a", "c"}, fsys.Stats().Content.Keys)

	// Reading b again goes back to the backend.
	before := backend.reads.Load()
	_, err = fsys.Read(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, before+1, backend.reads.Load())
}

func TestCachedFSTTLExpiry(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())

	now := time.Now()
	clock := func() time.Time { return now }

	fsys := NewCachedFS(backend, WithTTL(time.Minute), WithClock(clock))

	require.NoError(t, backend.Write(ctx, "file.txt", []byte("x")))
	_, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)

	// Still fresh just before the deadline.
	now = now.Add(time.Minute - time.Millisecond)
	_, err = fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.reads.Load())

	// Expired at the deadline; the next read refetches.
	now = now.Add(time.Millisecond)
	_, err = fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(2), backend.reads.Load())
}

func TestCachedFSNegativeExistsCaching(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	for i := 0; i < 3; i++ {
		ok, err := fsys.Exists(ctx, "ghost.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, int64(1), backend.exists.Load())

	// A write flips the cached negative entry without a backend probe.
	require.NoError(t, fsys.Write(ctx, "ghost.txt", []byte("boo")))

	ok, err := fsys.Exists(ctx, "ghost.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), backend.exists.Load())
}

func TestCachedFSDeleteCachesAbsence(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("x")))
	require.NoError(t, fsys.Delete(ctx, "file.txt"))

	ok, err := fsys.Exists(ctx, "file.txt")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), backend.exists.Load())

	_, err = fsys.Read(ctx, "file.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedFSListCaching(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, backend.Write(ctx, "dir/a.txt", nil))
	require.NoError(t, backend.Write(ctx, "dir/b.txt", nil))

	names, err := fsys.List(ctx, "dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	_, err = fsys.List(ctx, "dir")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.lists.Load())

	// A write into the directory invalidates its cached listing.
	require.NoError(t, fsys.Write(ctx, "dir/c.txt", nil))

	names, err = fsys.List(ctx, "dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, names)
	assert.Equal(t, int64(2), backend.lists.Load())

	// So does a delete.
	require.NoError(t, fsys.Delete(ctx, "dir/a.txt"))

	names, err = fsys.List(ctx, "dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "c.txt"}, names)
	assert.Equal(t, int64(3), backend.lists.Load())
}

func TestCachedFSListingsDisjointFromContent(t *testing.T) {
	ctx := context.Background()
	fsys := NewCachedFS(NewMemory())

	// A file and a directory with the same path must not collide across
	// the content and listing caches.
	require.NoError(t, fsys.Write(ctx, "shared", []byte("file content")))
	_, err := fsys.List(ctx, "shared")
	require.NoError(t, err)

	data, err := fsys.Read(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("file content"), data)
}

func TestCachedFSRemoveAllInvalidatesSubtree(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "tree/a.txt", []byte("a")))
	require.NoError(t, fsys.Write(ctx, "tree/sub/b.txt", []byte("b")))
	require.NoError(t, fsys.Write(ctx, "other/keep.txt", []byte("k")))

	require.NoError(t, fsys.RemoveAll(ctx, "tree"))

	_, err := fsys.Read(ctx, "tree/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fsys.Read(ctx, "tree/sub/b.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := fsys.Exists(ctx, "tree")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unrelated entries survive, still cached.
	before := backend.reads.Load()
	data, err := fsys.Read(ctx, "other/keep.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), data)
	assert.Equal(t, before, backend.reads.Load())
}

func TestCachedFSRemoveAllRoot(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "a.txt", []byte("v1")))
	require.NoError(t, fsys.Write(ctx, "dir/b.txt", []byte("v2")))
	_, err := fsys.List(ctx, "")
	require.NoError(t, err)

	// Removing the root must flush every cached entry, not just keys under a
	// non-empty prefix.
	require.NoError(t, fsys.RemoveAll(ctx, ""))

	_, err = fsys.Read(ctx, "a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fsys.Read(ctx, "dir/b.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := fsys.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	// The root itself always exists; it must not be cached as absent.
	ok, err := fsys.Exists(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCachedFSInvalidateDirectoryRoot(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "a.txt", []byte("a")))
	require.NoError(t, fsys.Write(ctx, "dir/b.txt", []byte("b")))

	fsys.InvalidateDirectory("")

	stats := fsys.Stats()
	assert.Zero(t, stats.Content.Size)
	assert.Zero(t, stats.Exists.Size)
	assert.Zero(t, stats.Listings.Size)

	_, err := fsys.Read(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.reads.Load())
}

func TestCachedFSInvalidateDirectorySparesSiblings(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "directory/d", []byte("inside")))
	require.NoError(t, fsys.Write(ctx, "directory2/d", []byte("sibling")))

	fsys.InvalidateDirectory("directory")

	// The sibling whose name shares the prefix string stays cached.
	data, err := fsys.Read(ctx, "directory2/d")
	require.NoError(t, err)
	assert.Equal(t, []byte("sibling"), data)
	assert.Equal(t, int64(0), backend.reads.Load())

	_, err = fsys.Read(ctx, "directory/d")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.reads.Load())
}

func TestCachedFSInvalidateFile(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("x")))
	fsys.InvalidateFile("file.txt")

	_, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.reads.Load())
}

func TestCachedFSClearCache(t *testing.T) {
	ctx := context.Background()
	fsys := NewCachedFS(NewMemory())

	require.NoError(t, fsys.Write(ctx, "a", []byte("a")))
	require.NoError(t, fsys.Write(ctx, "b", []byte("b")))
	_, err := fsys.List(ctx, "")
	require.NoError(t, err)

	fsys.ClearCache()

	stats := fsys.Stats()
	assert.Zero(t, stats.Content.Size)
	assert.Zero(t, stats.Exists.Size)
	assert.Zero(t, stats.Listings.Size)

	// Clearing an empty cache is a no-op.
	fsys.ClearCache()
	assert.Zero(t, fsys.Stats().Content.Size)
}

func TestCachedFSBackendErrorsLeaveCacheUntouched(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	faulty := NewFaultFS(backend)
	fsys := NewCachedFS(faulty)

	require.NoError(t, fsys.Write(ctx, "file.txt", []byte("good")))

	faulty.FailWith("write", nil)
	err := fsys.Write(ctx, "file.txt", []byte("bad"))
	assert.ErrorIs(t, err, ErrInjected)

	// The failed write must not have reached the cache.
	data, err := fsys.Read(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("good"), data)

	faulty.FailWith("delete", nil)
	err = fsys.Delete(ctx, "file.txt")
	assert.ErrorIs(t, err, ErrInjected)

	ok, err := fsys.Exists(ctx, "file.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	faulty.Clear()
}

func TestCachedFSReadErrorNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	_, err := fsys.Read(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fsys.Read(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Errors are never cached; both reads hit the backend.
	assert.Equal(t, int64(2), backend.reads.Load())
}

func TestCachedFSMkdirAllDropsNegativeEntry(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	ok, err := fsys.Exists(ctx, "newdir")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fsys.MkdirAll(ctx, "newdir"))

	ok, err = fsys.Exists(ctx, "newdir")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCachedFSExistsCachingDisabled(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend, WithExistsCaching(false))

	for i := 0; i < 3; i++ {
		_, err := fsys.Exists(ctx, "file.txt")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), backend.exists.Load())
	assert.Zero(t, fsys.Stats().Exists.Size)
}

func TestCachedFSListCachingDisabled(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend, WithListCaching(false))

	require.NoError(t, backend.Write(ctx, "dir/a.txt", nil))

	for i := 0; i < 3; i++ {
		_, err := fsys.List(ctx, "dir")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), backend.lists.Load())
	assert.Zero(t, fsys.Stats().Listings.Size)
}

func TestCachedFSStatNotCached(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	fsys := NewCachedFS(backend)

	require.NoError(t, backend.Write(context.Background(), "file.txt", []byte("12345")))

	fi, err := fsys.Stat(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), fi.Size)

	// Backend changes are visible immediately.
	require.NoError(t, backend.Write(context.Background(), "file.txt", []byte("123456789")))

	fi, err = fsys.Stat(ctx, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(9), fi.Size)
}

func TestCachedFSNormalizesPaths(t *testing.T) {
	ctx := context.Background()
	backend := newCountingFS(NewMemory())
	fsys := NewCachedFS(backend)

	require.NoError(t, fsys.Write(ctx, "dir/file.txt", []byte("x")))

	// Equivalent spellings hit the same cache entry.
	for _, name := range []string{"dir/file.txt", "/dir/file.txt", "dir//file.txt", "dir\\file.txt", "./dir/file.txt"} {
		data, err := fsys.Read(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, []byte("x"), data, name)
	}
	assert.Equal(t, int64(0), backend.reads.Load())
}
