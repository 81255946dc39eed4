package page

import "sync"

// Size is the fixed page size in bytes.
const Size = 8192

// PageOneNo is the reserved validity-marker page. Page numbering starts
// at 1.
const PageOneNo uint32 = 1

// Page is the in-memory handle for one on-disk page. It is owned by the
// page cache; callers obtain it via Acquire and must Release it.
type Page struct {
	No    uint32
	Data  []byte // always len == Size
	Dirty bool

	mu sync.Mutex
}

// New wraps raw page bytes (which must be exactly Size long) for page
// number no.
func New(no uint32, data []byte) *Page {
	if len(data) != Size {
		panic("page: data must be exactly Size bytes")
	}
	return &Page{No: no, Data: data}
}

// Lock serializes mutation of this page's bytes. The page cache's own
// refcounting keeps the *Page alive while a caller holds this lock.
func (p *Page) Lock() { p.mu.Lock() }

// Unlock releases the page's mutation lock.
func (p *Page) Unlock() { p.mu.Unlock() }

// SetDirty marks the page as needing write-back on eviction.
func (p *Page) SetDirty(dirty bool) {
	p.Dirty = dirty
}
