package catalog

import (
	"sync"

	"github.com/varoOP/seasonshare/internal/domain"
)

// Cache holds every season fetched during the session. Entries are stored once
// and never evicted; the catalog is small and the cache dies with the process.
type Cache struct {
	mu      sync.RWMutex
	entries map[domain.SeasonKey]cacheEntry
}

type cacheEntry struct {
	list        []domain.AnimeEntry
	generatedAt domain.Timestamp
}

func NewCache() *Cache {
	return &Cache{entries: make(map[domain.SeasonKey]cacheEntry)}
}

// Get returns a copy of the cached list for key
func (c *Cache) Get(key domain.SeasonKey) ([]domain.AnimeEntry, domain.Timestamp, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, domain.Timestamp{}, false
	}
	return copyList(e.list), e.generatedAt, true
}

// Put stores list under key unless the key is already present.
// It reports whether the list was stored.
func (c *Cache) Put(key domain.SeasonKey, list []domain.AnimeEntry, generatedAt domain.Timestamp) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = cacheEntry{list: copyList(list), generatedAt: generatedAt}
	return true
}

// Len returns the number of cached seasons
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyList(list []domain.AnimeEntry) []domain.AnimeEntry {
	out := make([]domain.AnimeEntry, len(list))
	copy(out, list)
	return out
}
