package cache

import "time"

// LayeredCache keeps hot entries in memory and durable ones on disk.
// Fetched pages and oracle verdicts survive across runs. Search answers
// stay in memory only: result rankings drift and a rate-limited search
// page must not outlive the run that saw it.
type LayeredCache struct {
	memory   Cache
	disk     Cache
	volatile map[string]bool // Kinds never written to disk
}

// NewLayeredCache creates a memory cache in front of a disk cache in diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory:   NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:     NewDiskCache(diskDir, diskTTL),
		volatile: map[string]bool{KindSearch: true},
	}
}

// Get checks memory first. A disk hit is promoted into memory with the
// memory layer's default TTL.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	if c.volatile[KindOf(key)] {
		return nil, false
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in memory and, unless its kind is volatile, on disk.
// A zero ttl lets each layer apply its own default.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	if c.volatile[KindOf(key)] {
		return nil
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
