package pageindex

import (
	"sync"

	"github.com/cuemby/quill/pkg/page"
)

const numBuckets = 41

// quantum is the free-space width of one bucket.
const quantum = page.Size / 40

// Index is the free-space histogram. Zero value is ready to use.
type Index struct {
	mu      sync.Mutex
	buckets [numBuckets][]uint32
}

// New returns an empty page index.
func New() *Index {
	return &Index{}
}

func bucketFor(free uint16) int {
	b := int(free) / quantum
	if b >= numBuckets {
		b = numBuckets - 1
	}
	return b
}

// Add records that pgno currently has free bytes of free space.
func (idx *Index) Add(pgno uint32, free uint16) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	b := bucketFor(free)
	idx.buckets[b] = append(idx.buckets[b], pgno)
}

// Select removes and returns a page number known to have at least need
// bytes free, searching from the smallest bucket that can guarantee it
// upward. ok is false if no such page is currently indexed.
func (idx *Index) Select(need uint16) (pgno uint32, ok bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := int(need)/quantum + 1
	if start >= numBuckets {
		return 0, false
	}
	for b := start; b < numBuckets; b++ {
		if len(idx.buckets[b]) == 0 {
			continue
		}
		last := len(idx.buckets[b]) - 1
		pgno = idx.buckets[b][last]
		idx.buckets[b] = idx.buckets[b][:last]
		return pgno, true
	}
	return 0, false
}
