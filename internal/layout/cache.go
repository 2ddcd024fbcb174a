package layout

import "sync"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// cache is keyed by the textual form of a type, which is unique for named
// structs and structural for everything else.
type cache struct {
	mu     sync.RWMutex
	byType map[string]*cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[string]*cacheEntry, 64)}
}

func (c *cache) get(key string) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byType[key]
	return e, ok
}

func (c *cache) put(key string, e *cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e == nil {
		delete(c.byType, key)
		return
	}
	c.byType[key] = e
}

// invalidate drops a cached entry, used when an opaque struct gets its body.
func (c *cache) invalidate(key string) {
	c.put(key, nil)
}
