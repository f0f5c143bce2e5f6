package fskit

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/fskit/cache"
)

type cachedOptions struct {
	maxSize       int
	ttl           time.Duration
	cacheExists   bool
	cacheListings bool
	logger        *Logger
	now           func() time.Time
}

// CachedOption configures a CachedFS. The configuration is immutable after
// construction.
type CachedOption func(*cachedOptions)

// WithMaxSize sets the per-cache entry bound before LRU eviction triggers.
// Non-positive values fall back to the default (128).
func WithMaxSize(n int) CachedOption {
	return func(o *cachedOptions) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithTTL sets the lazy expiry window per entry. 0 (the default) disables
// expiry.
func WithTTL(d time.Duration) CachedOption {
	return func(o *cachedOptions) {
		o.ttl = d
	}
}

// WithExistsCaching toggles caching of existence checks, including negative
// results. Enabled by default.
func WithExistsCaching(enabled bool) CachedOption {
	return func(o *cachedOptions) {
		o.cacheExists = enabled
	}
}

// WithListCaching toggles caching of directory listings. Enabled by default.
func WithListCaching(enabled bool) CachedOption {
	return func(o *cachedOptions) {
		o.cacheListings = enabled
	}
}

// WithLogger attaches a logger for cache lifecycle events.
func WithLogger(l *Logger) CachedOption {
	return func(o *cachedOptions) {
		o.logger = l
	}
}

// WithClock overrides the clock used for TTL bookkeeping. Test hook.
func WithClock(now func() time.Time) CachedOption {
	return func(o *cachedOptions) {
		o.now = now
	}
}

// CachedFS wraps a FileSystem and adds bounded, time-bound, write-coherent
// caching of file content, existence checks, and directory listings.
//
// The wrapped filesystem stays authoritative: writes and deletes reach it
// first and cache side effects happen only after it has succeeded, so a
// failed backend operation can never poison the cache. Within one process a
// Write followed by a Read of the same path always returns the written bytes
// without a backend round trip.
//
// A caller cannot distinguish a hit from a miss by return value or error,
// only by latency. Backend errors propagate unchanged; the cache itself never
// fails.
type CachedFS struct {
	inner FileSystem
	opts  cachedOptions

	// mu guards all three caches as one unit so that a lookup and any
	// eviction it triggers form a single critical section. It is never held
	// across a backend call.
	mu       sync.Mutex
	content  *cache.LRU[[]byte]
	exists   *cache.LRU[bool]
	listings *cache.LRU[[]string]
}

var _ FileSystem = (*CachedFS)(nil)

// NewCachedFS creates a caching decorator around inner. The inner filesystem
// is referenced, not owned; its lifetime is managed by the caller.
func NewCachedFS(inner FileSystem, optFns ...CachedOption) *CachedFS {
	opts := cachedOptions{
		maxSize:       128,
		cacheExists:   true,
		cacheListings: true,
		logger:        NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := cache.Config{Capacity: opts.maxSize, TTL: opts.ttl, Now: opts.now}

	return &CachedFS{
		inner:    inner,
		opts:     opts,
		content:  cache.New[[]byte](cfg),
		exists:   cache.New[bool](cfg),
		listings: cache.New[[]string](cfg),
	}
}

// Exists reports whether name exists, serving repeated checks (including
// negative ones) from the existence cache. A cached false entry is flipped by
// a subsequent Write to the same path.
func (c *CachedFS) Exists(ctx context.Context, name string) (bool, error) {
	name = Normalize(name)

	if !c.opts.cacheExists {
		return c.inner.Exists(ctx, name)
	}

	c.mu.Lock()
	if ok, hit := c.exists.Get(name); hit {
		c.mu.Unlock()
		return ok, nil
	}
	c.mu.Unlock()

	ok, err := c.inner.Exists(ctx, name)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.exists.Put(name, ok)
	c.mu.Unlock()

	return ok, nil
}

// Read returns the content of name, read-through cached. A successful read
// also records that the path exists.
func (c *CachedFS) Read(ctx context.Context, name string) ([]byte, error) {
	name = Normalize(name)

	c.mu.Lock()
	if data, hit := c.content.Get(name); hit {
		c.mu.Unlock()
		return bytes.Clone(data), nil
	}
	c.mu.Unlock()

	data, err := c.inner.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.content.Put(name, bytes.Clone(data))
	if c.opts.cacheExists {
		c.exists.Put(name, true)
	}
	c.mu.Unlock()

	return data, nil
}

// Write stores data in the wrapped filesystem first, then writes through to
// the content cache so an immediately following Read is both fast and
// correct. The immediate parent directory's cached listing is dropped since
// it may no longer be complete; listings cached for higher ancestors are not
// touched, so a write that creates intermediate directories can leave an
// ancestor's listing stale until it expires or is invalidated.
func (c *CachedFS) Write(ctx context.Context, name string, data []byte) error {
	name = Normalize(name)

	if err := c.inner.Write(ctx, name, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.content.Put(name, bytes.Clone(data))
	if c.opts.cacheExists {
		c.exists.Put(name, true)
	}
	c.listings.Delete(parentDir(name))
	c.mu.Unlock()

	return nil
}

// Delete removes name from the wrapped filesystem and, on success, from the
// content cache. The existence cache records false rather than dropping the
// entry: the delete is an authoritative negative result. As with Write, only
// the immediate parent's cached listing is invalidated.
func (c *CachedFS) Delete(ctx context.Context, name string) error {
	name = Normalize(name)

	if err := c.inner.Delete(ctx, name); err != nil {
		return err
	}

	c.mu.Lock()
	c.content.Delete(name)
	if c.opts.cacheExists {
		c.exists.Put(name, false)
	}
	c.listings.Delete(parentDir(name))
	c.mu.Unlock()

	return nil
}

// Stat delegates to the wrapped filesystem. Metadata is never cached.
func (c *CachedFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	return c.inner.Stat(ctx, Normalize(name))
}

// List returns the immediate children of dir, read-through cached in a key
// space disjoint from file content.
func (c *CachedFS) List(ctx context.Context, dir string) ([]string, error) {
	dir = Normalize(dir)

	if !c.opts.cacheListings {
		return c.inner.List(ctx, dir)
	}

	c.mu.Lock()
	if names, hit := c.listings.Get(dir); hit {
		c.mu.Unlock()
		return slices.Clone(names), nil
	}
	c.mu.Unlock()

	names, err := c.inner.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.listings.Put(dir, slices.Clone(names))
	c.mu.Unlock()

	return names, nil
}

// MkdirAll ensures dir exists in the wrapped filesystem and drops any stale
// negative existence entry for it along with the parent's cached listing.
func (c *CachedFS) MkdirAll(ctx context.Context, dir string) error {
	dir = Normalize(dir)

	if err := c.inner.MkdirAll(ctx, dir); err != nil {
		return err
	}

	c.mu.Lock()
	c.exists.Delete(dir)
	c.listings.Delete(parentDir(dir))
	c.mu.Unlock()

	return nil
}

// RemoveAll removes dir recursively from the wrapped filesystem and
// invalidates everything cached at or below it.
func (c *CachedFS) RemoveAll(ctx context.Context, dir string) error {
	dir = Normalize(dir)

	if err := c.inner.RemoveAll(ctx, dir); err != nil {
		return err
	}

	c.mu.Lock()
	c.content.DeletePrefix(dir)
	c.exists.DeletePrefix(dir)
	c.listings.DeletePrefix(dir)
	// The root always exists, so it never gets a negative entry.
	if dir != "" && c.opts.cacheExists {
		c.exists.Put(dir, false)
	}
	c.listings.Delete(parentDir(dir))
	c.mu.Unlock()

	return nil
}

// InvalidateFile removes name from all caches unconditionally. No backend
// call is made. Use when the backend changed out-of-band.
func (c *CachedFS) InvalidateFile(name string) {
	name = Normalize(name)

	c.mu.Lock()
	c.content.Delete(name)
	c.exists.Delete(name)
	c.listings.Delete(name)
	c.mu.Unlock()
}

// InvalidateDirectory removes every cached entry at or below dir. No backend
// call is made.
func (c *CachedFS) InvalidateDirectory(dir string) {
	dir = Normalize(dir)

	c.mu.Lock()
	c.content.DeletePrefix(dir)
	c.exists.DeletePrefix(dir)
	c.listings.DeletePrefix(dir)
	c.mu.Unlock()

	c.opts.logger.Debug("directory invalidated", "dir", dir)
}

// ClearCache drops all cached entries. Backend state is unaffected.
func (c *CachedFS) ClearCache() {
	c.mu.Lock()
	c.content.Clear()
	c.exists.Clear()
	c.listings.Clear()
	c.mu.Unlock()

	c.opts.logger.Debug("cache cleared")
}

// CacheInfo is a read-only view of one cache.
type CacheInfo struct {
	Size     int
	Capacity int
	TTL      time.Duration
	// Keys are ordered from most- to least-recently used.
	Keys []string
}

// CacheStats is a point-in-time snapshot of all caches. Monitoring surface
// only; it must not drive program logic.
type CacheStats struct {
	Content  CacheInfo
	Exists   CacheInfo
	Listings CacheInfo
}

// Stats returns a snapshot of the current cache state.
func (c *CachedFS) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Content:  snapshot(c.content),
		Exists:   snapshot(c.exists),
		Listings: snapshot(c.listings),
	}
}

func snapshot[V any](c *cache.LRU[V]) CacheInfo {
	return CacheInfo{
		Size:     c.Len(),
		Capacity: c.Capacity(),
		TTL:      c.TTL(),
		Keys:     c.Keys(),
	}
}
