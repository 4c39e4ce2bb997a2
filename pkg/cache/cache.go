// Package cache memoizes rendered SQL keyed by template identity and
// canonicalized parameter content, with bounded size and hit/miss accounting.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dynasql/dynasql/pkg/params"
)

// DefaultCapacity bounds the cache when no explicit capacity is configured.
const DefaultCapacity = 100

// Stats is a point-in-time snapshot of cache accounting. Hits and misses are
// process-lifetime counters, reset only by Clear.
type Stats struct {
	Size     int     `json:"size"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// RenderCache is a bounded, concurrency-safe map from cache key to rendered
// SQL. Eviction is deterministic (least recently used) and never lets the
// entry count exceed the configured capacity.
type RenderCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, string]
	hits    int64
	misses  int64
}

// New creates a RenderCache with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *RenderCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		// lru.New only fails on non-positive sizes, which are normalized above.
		panic("cache: " + err.Error())
	}
	return &RenderCache{entries: entries}
}

// Key derives an order-independent cache key from a template ID and parameter
// set: entries are sorted by name, values take their canonical string form,
// and the whole is hashed. Two parameter maps with equal name→value content
// always produce the same key.
func Key(templateID string, supplied map[string]params.Value) string {
	names := make([]string, 0, len(supplied))
	for name := range supplied {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(templateID)
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(supplied[name].Text())
	}

	digest := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(digest[:])
}

// Get returns the cached SQL for key and counts the lookup as a hit or miss.
func (c *RenderCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sqlText, ok := c.entries.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return sqlText, ok
}

// Put stores rendered SQL under key, evicting an existing entry first when
// the cache is at capacity.
func (c *RenderCache) Put(key, sqlText string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, sqlText)
}

// Clear drops every entry and resets the hit/miss counters.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.hits = 0
	c.misses = 0
}

// Stats returns a snapshot of current size and counters.
func (c *RenderCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:   c.entries.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}
