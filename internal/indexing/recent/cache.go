// Package recent keeps a short history of user-queried block hashes.
package recent

import "sync"

// DefaultCapacity is the number of keys kept.
const DefaultCapacity = 10

// Cache is a fixed-capacity FIFO of distinct keys. Re-adding a key is a
// no-op and does not move it.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	keys     []string // oldest first
}

// NewCache creates a cache holding up to capacity keys.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		keys:     make([]string, 0, capacity),
	}
}

// Add records key, evicting the oldest key when full. It reports whether
// the key was new.
func (c *Cache) Add(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range c.keys {
		if k == key {
			return false
		}
	}

	if len(c.keys) >= c.capacity {
		copy(c.keys, c.keys[1:])
		c.keys = c.keys[:len(c.keys)-1]
	}
	c.keys = append(c.keys, key)
	return true
}

// Recent returns the keys newest first.
func (c *Cache) Recent() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.keys))
	for i, k := range c.keys {
		out[len(c.keys)-1-i] = k
	}
	return out
}

// Len returns the number of keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// Capacity returns the maximum number of keys.
func (c *Cache) Capacity() int {
	return c.capacity
}
