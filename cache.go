package skymatch

import (
	"golang.org/x/exp/maps"
)

// Cache holds named artifacts derived from a coordinate collection, most
// importantly cartesian k-d trees built over it. Each collection exclusively
// owns one cache with the same lifetime as the collection; a stored tree may
// be shared read-only by later queries against the same collection.
//
// Writes are last-write-wins with no internal locking. Callers issuing
// concurrent queries against the same collection must synchronize externally
// or disable caching with NoCache.
type Cache struct {
	entries map[string]any
}

func NewCache() *Cache {
	return &Cache{entries: map[string]any{}}
}

func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Set(key string, value any) {
	c.entries[key] = value
}

func (c *Cache) Delete(key string) {
	delete(c.entries, key)
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Keys() []string {
	return maps.Keys(c.entries)
}
