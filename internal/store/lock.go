package store

import (
	"path/filepath"
	"sync"
)

var (
	rootLocksMu sync.Mutex
	rootLocks   = make(map[string]*sync.Mutex)
)

// Acquire takes the process-wide lock for an output root and returns the
// function that releases it. Two passes over the same root never interleave.
func Acquire(root string) func() {
	key := filepath.Clean(root)

	rootLocksMu.Lock()
	mu, ok := rootLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		rootLocks[key] = mu
	}
	rootLocksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
