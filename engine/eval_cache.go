package engine

import (
	"unsafe"
)

const (
	clusterSize = 4

	// DefaultCacheEntries sizes the evaluation cache when no capacity is configured.
	DefaultCacheEntries = 1 << 20
)

type cacheEntry struct {
	Hash  uint64
	Score Score
	// stamp is the access time used for LRU replacement inside a cluster; 0 marks an
	// empty slot.
	stamp uint32
}

// EvalCache memoizes static evaluations by position hash. It is a set-associative table:
// a hash maps to one cluster of entries and, when the cluster is full, the least recently
// used entry is replaced. Search results are never stored here.
type EvalCache struct {
	entries      []cacheEntry
	clusterCount uint64
	clock        uint32
	used         int

	probes    uint64
	hits      uint64
	stores    uint64
	evictions uint64
}

// CacheStats are observational counters.
type CacheStats struct {
	Probes    uint64
	Hits      uint64
	Stores    uint64
	Evictions uint64
	Entries   int
	Capacity  int
}

func (s CacheStats) HitRate() float64 {
	if s.Probes == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Probes)
}

// NewEvalCache allocates room for roughly capacity entries, rounded up to whole clusters.
func NewEvalCache(capacity int) *EvalCache {
	if capacity <= 0 {
		capacity = DefaultCacheEntries
	}
	clusterCount := uint64((capacity + clusterSize - 1) / clusterSize)
	return &EvalCache{
		entries:      make([]cacheEntry, clusterCount*clusterSize),
		clusterCount: clusterCount,
	}
}

// CacheEntriesForMB converts a memory size, the way UCI's Hash option is expressed, into
// a number of entries.
func CacheEntriesForMB(mb int) int {
	return mb * 1024 * 1024 / int(unsafe.Sizeof(cacheEntry{}))
}

// CacheMBForEntries is the inverse of CacheEntriesForMB, rounded down.
func CacheMBForEntries(entries int) int {
	return entries * int(unsafe.Sizeof(cacheEntry{})) / (1024 * 1024)
}

func NewEvalCacheMB(mb int) *EvalCache {
	return NewEvalCache(CacheEntriesForMB(mb))
}

func (c *EvalCache) cluster(hash uint64) []cacheEntry {
	base := (hash % c.clusterCount) * clusterSize
	return c.entries[base : base+clusterSize]
}

func (c *EvalCache) tick() uint32 {
	c.clock++
	if c.clock == 0 {
		// Wrapped: age every live entry down to the same stamp and continue.
		for i := range c.entries {
			if c.entries[i].stamp != 0 {
				c.entries[i].stamp = 1
			}
		}
		c.clock = 2
	}
	return c.clock
}

// Probe returns the cached score for the hash, if any.
func (c *EvalCache) Probe(hash uint64) (Score, bool) {
	c.probes++
	cl := c.cluster(hash)
	for i := range cl {
		if cl[i].stamp != 0 && cl[i].Hash == hash {
			cl[i].stamp = c.tick()
			c.hits++
			return cl[i].Score, true
		}
	}
	return 0, false
}

// Store records a score, replacing the least recently used entry of a full cluster.
func (c *EvalCache) Store(hash uint64, score Score) {
	c.stores++
	cl := c.cluster(hash)
	target := -1

	// Prefer updating existing entry
	for i := range cl {
		if cl[i].stamp != 0 && cl[i].Hash == hash {
			target = i
			break
		}
	}
	// Next look for an empty slot
	if target == -1 {
		for i := range cl {
			if cl[i].stamp == 0 {
				target = i
				c.used++
				break
			}
		}
	}
	// Otherwise evict the oldest
	if target == -1 {
		target = 0
		for i := 1; i < len(cl); i++ {
			if cl[i].stamp < cl[target].stamp {
				target = i
			}
		}
		c.evictions++
	}
	cl[target] = cacheEntry{Hash: hash, Score: score, stamp: c.tick()}
}

// Clear drops every entry and resets the counters.
func (c *EvalCache) Clear() {
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
	c.clock, c.used = 0, 0
	c.probes, c.hits, c.stores, c.evictions = 0, 0, 0, 0
}

// Len returns the number of occupied entries.
func (c *EvalCache) Len() int { return c.used }

func (c *EvalCache) Capacity() int { return len(c.entries) }

func (c *EvalCache) Stats() CacheStats {
	return CacheStats{
		Probes:    c.probes,
		Hits:      c.hits,
		Stores:    c.stores,
		Evictions: c.evictions,
		Entries:   c.used,
		Capacity:  len(c.entries),
	}
}
