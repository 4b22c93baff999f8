package lang

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// DefaultCacheSize is the number of parsed tokens an [Expander] keeps.
const DefaultCacheSize = 4096

// specCache memoizes [ParseSpec] by token hash, holding at most size
// entries and evicting the oldest first. Entries keep the token so a hash
// collision falls back to parsing.
type specCache struct {
	mu    sync.Mutex
	size  int
	m     map[uint64]cacheEntry
	order []uint64 // ring of keys in insertion order
	next  int
}

type cacheEntry struct {
	token string
	spec  Spec
}

func newSpecCache(size int) *specCache {
	return &specCache{
		size:  size,
		m:     make(map[uint64]cacheEntry, size),
		order: make([]uint64, 0, size),
	}
}

func (c *specCache) parse(token string) (Spec, bool) {
	key := xxh3.HashString(token)

	c.mu.Lock()
	e, ok := c.m[key]
	c.mu.Unlock()

	if ok {
		if e.token == token {
			return e.spec, true
		}

		return ParseSpec(token), false
	}

	spec := ParseSpec(token)
	c.store(key, cacheEntry{token: token, spec: spec})

	return spec, false
}

func (c *specCache) store(key uint64, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.m[key]; ok {
		return
	}

	if len(c.order) < c.size {
		c.order = append(c.order, key)
	} else {
		delete(c.m, c.order[c.next])
		c.order[c.next] = key
		c.next = (c.next + 1) % c.size
	}

	c.m[key] = e
}

func (c *specCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.m)
}

func (c *specCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.m)
	c.order = c.order[:0]
	c.next = 0
}
