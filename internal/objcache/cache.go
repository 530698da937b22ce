// Package objcache is a small sharded in-memory cache for decompressed
// object payloads. It exists to avoid re-reading and re-inflating the
// same loose object (or the same pack base object) repeatedly: the
// object store consults it before touching disk, and the pack parser
// consults it while resolving a chain of ref-deltas within one pack.
package objcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const numShards = 32

// Key is a raw 20-byte object id. It is defined independently of any
// hashing package so that objcache has no dependency on the object
// store it serves.
type Key [20]byte

// Entry is a cached object's kind and decompressed payload.
type Entry struct {
	Kind string
	Data []byte
}

type shard struct {
	mu   sync.RWMutex
	objs map[Key]Entry
}

// Cache is a fixed set of independently-locked shards, selected by the
// low bits of an xxhash of the key. Sharding exists to reduce lock
// contention when the pack parser and a concurrent CLI reader both
// touch the cache; a single repository's working set easily fits in
// memory, so entries are never evicted.
type Cache struct {
	shards [numShards]*shard
}

// New creates an empty cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{objs: make(map[Key]Entry)}
	}
	return c
}

func (c *Cache) shardFor(key Key) *shard {
	h := xxhash.Sum64(key[:])
	return c.shards[h%uint64(numShards)]
}

// Get returns the cached entry for key, if present.
func (c *Cache) Get(key Key) (Entry, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objs[key]
	return e, ok
}

// Put stores an entry for key, overwriting any previous value.
func (c *Cache) Put(key Key, e Entry) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = e
}

// Len returns the total number of cached entries across all shards.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.objs)
		s.mu.RUnlock()
	}
	return n
}
