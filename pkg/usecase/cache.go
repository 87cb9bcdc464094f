package usecase

import (
	"sync"
	"time"

	"github.com/kagami-lab/kagami/pkg/domain/types"
)

const (
	// DefaultCacheTTL is how long an analysis result stays reusable
	DefaultCacheTTL = time.Hour

	// DefaultCacheSize caps the number of cached analysis results
	DefaultCacheSize = 100
)

type cacheEntry struct {
	value    string
	storedAt time.Time
}

// analysisCache is a bounded TTL cache over analysis results. Eviction order
// is insertion time: re-reading an entry does not refresh its priority.
// Expired entries are dropped lazily on read.
type analysisCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func newAnalysisCache(ttl time.Duration, maxSize int, now func() time.Time) *analysisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if now == nil {
		now = time.Now
	}
	return &analysisCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     now,
	}
}

// cacheKey derives the cache fingerprint for an analysis request
func cacheKey(content, template string, style types.Style) string {
	return content + ":" + template + ":" + string(style)
}

func (c *analysisCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.value, true
}

func (c *analysisCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{
		value:    value,
		storedAt: c.now(),
	}
}

// evictOldestLocked removes the entry with the smallest storedAt
func (c *analysisCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *analysisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func (c *analysisCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *analysisCache) TTL() time.Duration {
	return c.ttl
}
