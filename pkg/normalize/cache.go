package normalize

import lru "github.com/hashicorp/golang-lru/v2"

// DefaultCacheSize bounds the memo cache. A region has a few hundred
// communes; 4096 leaves room for noisy raw spellings.
const DefaultCacheSize = 4096

// Cache memoizes Canonical for string inputs. Commune values repeat across
// thousands of features per file, so a handful of raw strings dominate a
// batch run.
type Cache struct {
	lru *lru.Cache[string, cached]
}

type cached struct {
	value   string
	present bool
}

// NewCache creates a memoizing canonicalizer. size <= 0 uses DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, _ := lru.New[string, cached](size)
	return &Cache{lru: c}
}

// Canonical is Canonical with memoization for string inputs. Non-string
// scalars bypass the cache.
func (c *Cache) Canonical(v any) (string, bool) {
	s, isStr := v.(string)
	if !isStr {
		return Canonical(v)
	}
	if e, ok := c.lru.Get(s); ok {
		return e.value, e.present
	}
	value, present := Canonical(s)
	c.lru.Add(s, cached{value: value, present: present})
	return value, present
}
