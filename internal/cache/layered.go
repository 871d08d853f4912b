package cache

import (
	"errors"
	"io/fs"
	"time"
)

// LayeredCache stacks caches from fastest to most durable. Generated chunks
// survive restarts in the disk layer and are served from memory within a
// run.
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache creates a memory layer over a disk layer
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		layers: []Cache{
			NewMemoryCache(memoryTTL, 10*time.Minute),
			NewDiskCache(diskDir, diskTTL),
		},
	}
}

// Get returns the value from the first layer that has it and copies it into
// every faster layer
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for _, faster := range c.layers[:i] {
			_ = faster.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set writes the most durable layer first so a failed write never leaves a
// value that only lives in memory
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if err := c.layers[i].Set(key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key from every layer. A key missing from a layer is not an
// error.
func (c *LayeredCache) Delete(key string) error {
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Delete(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear empties every layer
func (c *LayeredCache) Clear() error {
	var errs []error
	for _, layer := range c.layers {
		if err := layer.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
