package analytics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultCacheTTL = 5 * time.Minute

// openBound is the serialized form of an open window side so that reports
// with half-open windows still produce a stable cache key.
const openBound = "open"

type cacheEntry struct {
	report    Report
	expiresAt time.Time
}

// ReportCache holds computed reports keyed by scope and resolved window. A
// get is a hit only while now is strictly before the entry's expiry; stale
// entries are left in place and treated as absent, each put overwrites
// whatever was there.
type ReportCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewReportCache builds an empty cache with the given TTL (defaulted when
// non-positive).
func NewReportCache(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ReportCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// CacheKey builds the deterministic key for a category report over a resolved
// window.
func CacheKey(categoryID uuid.UUID, window Window) string {
	return fmt.Sprintf("category:%s:%s:%s", categoryID, boundKey(window.Start), boundKey(window.End))
}

func boundKey(bound time.Time) string {
	if bound.IsZero() {
		return openBound
	}
	return strconv.FormatInt(bound.Unix(), 10)
}

// Get returns the cached report for key if it has not expired as of now.
func (c *ReportCache) Get(key string, now time.Time) (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		return Report{}, false
	}
	return entry.report, true
}

// Put stores the report under key with an expiry of now plus the cache TTL.
func (c *ReportCache) Put(key string, report Report, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		report:    report,
		expiresAt: now.Add(c.ttl),
	}
}

// Len reports the number of entries held, stale ones included.
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
