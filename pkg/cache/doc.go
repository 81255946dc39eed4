/*
Package cache implements the reference-counted cache framework shared by
the page cache and the data-item cache.

# Architecture

	┌─────────────────── REFERENCE-COUNTED CACHE ───────────────────┐
	│                                                                  │
	│  Acquire(key)                                                   │
	│    ┌─ resident? ─────────────── refcount++, return value        │
	│    ├─ another acquirer loading? ── wait on condition variable    │
	│    ├─ at capacity, key absent? ── ErrCacheFull                   │
	│    └─ else: mark loading, call Load(key) outside the lock,       │
	│             install the result, wake waiters                    │
	│                                                                  │
	│  Release(key)                                                   │
	│    refcount--; at zero: evict and call WriteBack(key, value)     │
	│                                                                  │
	│  Close()                                                        │
	│    force WriteBack for every still-resident entry                │
	└──────────────────────────────────────────────────────────────┘

Only one load per key is ever in flight: concurrent acquirers of a key
that is mid-load block on a sync.Cond rather than polling. Capacity 0
means unbounded.
*/
package cache
