package assist

import (
	"sync"
	"time"

	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/segment"
)

// CacheEntry holds the last-known checker results for one unit.
// It is valid only while UnitHash equals the unit's freshly recomputed
// hash; hash equality is the sole validity rule, there is no expiry.
type CacheEntry struct {
	UnitHash    string
	Suggestions []checker.RawSuggestion // unit-relative offsets
	Timestamp   time.Time
}

// Cache maps (category, unit ID) to the suggestions last computed for that
// unit. A unit whose hash no longer matches its entry is dirty and must be
// re-sent to the checker; clean units reuse their entry as-is.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[int]CacheEntry
	now     func() time.Time
}

// NewCache creates an empty result cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]map[int]CacheEntry),
		now:     time.Now,
	}
}

// Lookup returns the cached entry for a unit if its hash still matches.
func (c *Cache) Lookup(category string, u segment.Unit) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byUnit, ok := c.entries[category]
	if !ok {
		return CacheEntry{}, false
	}
	entry, ok := byUnit[u.ID]
	if !ok || entry.UnitHash != u.Hash {
		return CacheEntry{}, false
	}
	return entry, true
}

// Store records checker results for a unit, overwriting any prior entry.
func (c *Cache) Store(category string, u segment.Unit, suggestions []checker.RawSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byUnit, ok := c.entries[category]
	if !ok {
		byUnit = make(map[int]CacheEntry)
		c.entries[category] = byUnit
	}
	byUnit[u.ID] = CacheEntry{
		UnitHash:    u.Hash,
		Suggestions: suggestions,
		Timestamp:   c.now(),
	}
}

// Partition splits units into clean (cache hit) and dirty (must re-check).
func (c *Cache) Partition(category string, units []segment.Unit) (clean, dirty []segment.Unit) {
	for _, u := range units {
		if _, ok := c.Lookup(category, u); ok {
			clean = append(clean, u)
		} else {
			dirty = append(dirty, u)
		}
	}
	return clean, dirty
}

// Clear drops all entries for a category, or every entry when category is
// empty.
func (c *Cache) Clear(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if category == "" {
		c.entries = make(map[string]map[int]CacheEntry)
		return
	}
	delete(c.entries, category)
}

// Len returns the number of cached entries for a category.
func (c *Cache) Len(category string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[category])
}
