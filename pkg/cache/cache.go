package cache

import (
	"sync"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/google/uuid"
)

// LoadFunc resolves a key to a resource on a cache miss.
type LoadFunc[K comparable, V any] func(key K) (V, error)

// WriteBackFunc is invoked when a resource's refcount drops to zero.
type WriteBackFunc[K comparable, V any] func(key K, value V)

type entry[V any] struct {
	value V
	refs  int
}

// Cache is a generic reference-counted, single-flight cache keyed by K.
// Capacity 0 means unbounded; a positive capacity makes Acquire fail with
// dberrors.ErrCacheFull when the key is absent and the cache is full.
type Cache[K comparable, V any] struct {
	name     string
	capacity int

	mu      sync.Mutex
	cond    *sync.Cond
	entries map[K]*entry[V]
	loading map[K]string

	load      LoadFunc[K, V]
	writeBack WriteBackFunc[K, V]
}

// New creates a cache named for metrics purposes, with the given capacity
// (0 = unbounded), load and write-back hooks.
func New[K comparable, V any](name string, capacity int, load LoadFunc[K, V], writeBack WriteBackFunc[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		name:      name,
		capacity:  capacity,
		entries:   make(map[K]*entry[V]),
		loading:   make(map[K]string),
		load:      load,
		writeBack: writeBack,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Acquire returns the resource for key, loading it on a miss, and
// increments its reference count. Callers must call Release exactly once
// per successful Acquire.
func (c *Cache[K, V]) Acquire(key K) (V, error) {
	c.mu.Lock()
	for {
		if e, ok := c.entries[key]; ok {
			e.refs++
			c.mu.Unlock()
			metrics.CacheHits.WithLabelValues(c.name).Inc()
			metrics.CacheResident.WithLabelValues(c.name).Set(float64(len(c.entries)))
			return e.value, nil
		}
		if _, inFlight := c.loading[key]; inFlight {
			c.cond.Wait()
			continue
		}
		if c.capacity > 0 && len(c.entries) >= c.capacity {
			c.mu.Unlock()
			var zero V
			return zero, dberrors.Storage(dberrors.ErrCacheFull, c.name)
		}
		c.loading[key] = uuid.NewString()
		c.mu.Unlock()

		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		value, err := c.load(key)

		c.mu.Lock()
		delete(c.loading, key)
		if err != nil {
			c.cond.Broadcast()
			c.mu.Unlock()
			var zero V
			return zero, err
		}
		c.entries[key] = &entry[V]{value: value, refs: 1}
		c.cond.Broadcast()
		c.mu.Unlock()
		metrics.CacheResident.WithLabelValues(c.name).Set(float64(len(c.entries)))
		return value, nil
	}
}

// Release decrements key's reference count, evicting and invoking the
// write-back hook when it reaches zero.
func (c *Cache[K, V]) Release(key K) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.entries, key)
	c.mu.Unlock()
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	metrics.CacheResident.WithLabelValues(c.name).Set(float64(len(c.entries)))
	c.writeBack(key, e.value)
}

// Close forces write-back of every resident entry, regardless of
// refcount. Used when the owning subsystem shuts down.
func (c *Cache[K, V]) Close() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]*entry[V])
	c.mu.Unlock()
	for key, e := range entries {
		c.writeBack(key, e.value)
	}
}

// Len returns the number of currently resident entries (for tests and
// diagnostics).
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
