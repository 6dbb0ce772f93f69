// Package oncecache implements the single-builder lazy cache primitive
// spec.md §5 requires for ConstructorIndex, reverse adjacency, and
// DominatorMap: each is expensive to build and most commands need only one
// of them, so each is constructed on first demand and cached for the
// session's lifetime, with at most one builder running per cache — other
// callers that arrive while a build is in flight wait for its result
// instead of racing to build it twice.
//
// Adapted from the teacher's internal/memory/cache.go guarded-build-once
// shape, generalized with a type parameter so every lazy cache in this
// repository shares one implementation instead of three hand-rolled mutexes.
package oncecache

import "sync"

// Cache lazily builds and caches a single value of type T.
type Cache[T any] struct {
	mu      sync.Mutex
	built   bool
	value   T
	err     error
	pending chan struct{} // non-nil while a build is in flight
}

// Get returns the cached value, building it via build if this is the first
// call. If a build is already in flight on another goroutine, Get waits for
// it rather than starting a second one. A failed build is not cached: the
// next Get retries.
func (c *Cache[T]) Get(build func() (T, error)) (T, error) {
	for {
		c.mu.Lock()
		if c.built {
			v, e := c.value, c.err
			c.mu.Unlock()
			return v, e
		}
		if c.pending != nil {
			wait := c.pending
			c.mu.Unlock()
			<-wait
			continue
		}
		c.pending = make(chan struct{})
		done := c.pending
		c.mu.Unlock()

		v, err := build()

		c.mu.Lock()
		if err == nil {
			c.built = true
			c.value = v
		}
		c.err = err
		c.pending = nil
		c.mu.Unlock()
		close(done)
		return v, err
	}
}

// Reset clears any cached value or in-flight build result, forcing the next
// Get to rebuild. Not used by the core (SnapshotRaw is immutable for the
// lifetime of a session) but useful in tests that reuse a Cache across
// fixtures.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	var zero T
	c.value = zero
	c.err = nil
}
