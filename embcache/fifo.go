package embcache

import "sync"

// SegmentCache is a bounded first-in-first-out cache of segment
// embeddings. One instance belongs to one detector: the same segment
// text recurs when a document is re-analyzed or ingested into the
// corpus after detection, and FIFO keeps the bookkeeping at a ring
// buffer plus an index. Safe for concurrent use.
type SegmentCache struct {
	mu       sync.Mutex
	capacity int
	index    map[string][]float32
	ring     []string
	next     int
	count    int
}

// NewSegmentCache creates a segment cache bounded to capacity entries.
func NewSegmentCache(capacity int) (*SegmentCache, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &SegmentCache{
		capacity: capacity,
		index:    make(map[string][]float32, capacity),
		ring:     make([]string, capacity),
	}, nil
}

// Get returns the cached embedding for text, if present. Lookups do
// not affect eviction order.
func (c *SegmentCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vector, ok := c.index[text]
	return vector, ok
}

// Put stores an embedding. When the cache is full, the oldest inserted
// entry is evicted first. Storing a text that is already cached updates
// its value without changing its insertion position.
func (c *SegmentCache) Put(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[text]; ok {
		c.index[text] = vector
		return
	}

	if c.count == c.capacity {
		delete(c.index, c.ring[c.next])
	} else {
		c.count++
	}

	c.ring[c.next] = text
	c.next = (c.next + 1) % c.capacity
	c.index[text] = vector
}

// Len returns the number of cached entries.
func (c *SegmentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
