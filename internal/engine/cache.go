package engine

import (
	"math"
	"sync"
)

// Cache stores analysis results keyed by file identity. A hit is
// authoritative: the engine skips recomputation entirely. Persistence
// beyond process lifetime belongs to the caller.
type Cache interface {
	Get(key string) (*Result, bool)
	Put(key string, r *Result)
	Delete(key string)
}

// MemoryCache is the in-process Cache used by the CLI and batch runner.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Result
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Result)}
}

func (c *MemoryCache) Get(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *MemoryCache) Put(key string, r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = r
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stale reports whether a cached result holds numbers that should
// never have been stored: a missing estimate or a non-finite or
// negative weight. Such entries are invalidated before reuse.
func Stale(r *Result) bool {
	if r == nil || r.Estimate == nil {
		return true
	}
	w := r.Estimate.WeightGrams
	return math.IsNaN(w) || math.IsInf(w, 0) || w < 0
}

// AnalyzeCached consults the cache before running the pipeline. Stale
// hits are evicted and recomputed; fresh hits are returned untouched.
func (e *Engine) AnalyzeCached(cache Cache, key string, data []byte, sizeMB float64) *Result {
	if r, ok := cache.Get(key); ok {
		if !Stale(r) {
			return r
		}
		cache.Delete(key)
	}
	r := e.Analyze(data, sizeMB)
	cache.Put(key, r)
	return r
}
