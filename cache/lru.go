package cache

import (
	"container/list"
	"strings"
	"time"
)

// Config controls capacity and expiry behavior.
type Config struct {
	// Capacity is the maximum number of entries. Must be > 0.
	Capacity int

	// TTL is the maximum age of an entry. 0 means entries never expire.
	TTL time.Duration

	// Now overrides the clock. Nil means time.Now. Test hook.
	Now func() time.Time
}

// LRU is a bounded key-value store with least-recently-used eviction and
// lazy per-entry TTL expiry.
//
// LRU is not safe for concurrent use: callers that share an instance across
// goroutines must serialize access. The cached filesystem coordinator guards
// all of its caches with a single mutex so that a lookup and any eviction it
// triggers form one critical section.
type LRU[V any] struct {
	capacity  int
	ttl       time.Duration
	now       func() time.Time
	items     map[string]*list.Element
	evictList *list.List // Front = most recently used, Back = least recently used
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// New creates an LRU with the given configuration.
// A non-positive capacity is treated as 1.
func New[V any](cfg Config) *LRU[V] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &LRU[V]{
		capacity:  cfg.Capacity,
		ttl:       cfg.TTL,
		now:       now,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the live value for key and promotes it to most-recently-used.
// An expired entry is purged and reported as a miss.
func (c *LRU[V]) Get(key string) (V, bool) {
	var zero V

	ent, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := ent.Value.(*entry[V])
	if c.expired(e) {
		c.removeElement(ent)
		return zero, false
	}
	c.evictList.MoveToFront(ent)
	return e.value, true
}

// Put inserts or overwrites the entry for key with a fresh timestamp and
// marks it most-recently-used, evicting from the least-recently-used end
// until the size bound holds.
func (c *LRU[V]) Put(key string, value V) {
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[V])
		e.value = value
		e.insertedAt = c.now()
		return
	}

	ent := &entry[V]{key: key, value: value, insertedAt: c.now()}
	c.items[key] = c.evictList.PushFront(ent)

	for c.evictList.Len() > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}
}

// Delete removes the entry for key if present.
func (c *LRU[V]) Delete(key string) {
	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// DeletePrefix removes every entry whose key equals prefix or starts with
// prefix followed by a path separator. The empty prefix is the root and
// removes everything.
func (c *LRU[V]) DeletePrefix(prefix string) {
	if prefix == "" {
		c.Clear()
		return
	}

	var toRemove []*list.Element
	for key, ent := range c.items {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			toRemove = append(toRemove, ent)
		}
	}
	for _, ent := range toRemove {
		c.removeElement(ent)
	}
}

// Clear removes all entries.
func (c *LRU[V]) Clear() {
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Len returns the number of entries currently held, including entries whose
// TTL has elapsed but which have not been observed (and purged) yet.
func (c *LRU[V]) Len() int {
	return c.evictList.Len()
}

// Keys returns the cached keys ordered from most- to least-recently used.
func (c *LRU[V]) Keys() []string {
	keys := make([]string, 0, c.evictList.Len())
	for ent := c.evictList.Front(); ent != nil; ent = ent.Next() {
		keys = append(keys, ent.Value.(*entry[V]).key)
	}
	return keys
}

// Capacity returns the configured entry bound.
func (c *LRU[V]) Capacity() int {
	return c.capacity
}

// TTL returns the configured entry lifetime (0 = never expires).
func (c *LRU[V]) TTL() time.Duration {
	return c.ttl
}

func (c *LRU[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.insertedAt) >= c.ttl
}

func (c *LRU[V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	delete(c.items, ent.Value.(*entry[V]).key)
}
