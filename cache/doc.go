// Package cache provides the bounded LRU+TTL store backing the cached
// filesystem decorator.
//
// The store is a plain map plus a doubly-linked recency list: O(1) lookup,
// O(1) promotion and eviction. Expiry is lazy: an entry older than the
// configured TTL is purged by the access that observes it, never by a
// background sweep.
//
// All operations are total: a miss is a normal return value, never an error.
package cache
