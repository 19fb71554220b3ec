package embcache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the default bound for both cache tiers.
const DefaultCapacity = 512

// TextCache is a bounded least-recently-used cache of embeddings keyed
// by exact normalized text. It memoizes embeddings for texts that recur
// across detection calls, such as search snippets. Safe for concurrent
// use.
type TextCache struct {
	cache *lru.Cache[string, []float32]
}

// NewTextCache creates a text cache bounded to capacity entries.
func NewTextCache(capacity int) (*TextCache, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &TextCache{cache: cache}, nil
}

// Get returns the cached embedding for text, if present.
func (c *TextCache) Get(text string) ([]float32, bool) {
	return c.cache.Get(text)
}

// Put stores an embedding, evicting the least recently used entry when
// the cache is at capacity. Embeddings are immutable values, so an
// evicted entry costs only a recomputation on the next miss.
func (c *TextCache) Put(text string, vector []float32) {
	c.cache.Add(text, vector)
}

// Len returns the number of cached entries.
func (c *TextCache) Len() int {
	return c.cache.Len()
}

// Purge removes all entries.
func (c *TextCache) Purge() {
	c.cache.Purge()
}
