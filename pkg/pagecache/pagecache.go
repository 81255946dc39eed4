package pagecache

import (
	"os"
	"sync"

	"github.com/cuemby/quill/pkg/cache"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/page"
	"github.com/rs/zerolog"
)

// PageCache owns a database's data file and hands out reference-counted
// *page.Page handles.
type PageCache struct {
	mu        sync.Mutex // guards file IO and pageCount together (the page file lock)
	file      *os.File
	pageCount uint32

	cache *cache.Cache[uint32, *page.Page]
	log   zerolog.Logger
}

// Open opens (or creates) the data file at path. capacity is the maximum
// number of resident pages (0 = unbounded).
func Open(path string, capacity int) (*PageCache, error) {
	lg := log.WithComponent("pagecache")

	_, statErr := os.Stat(path)
	create := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}

	pc := &PageCache{file: f, log: lg}
	pc.cache = cache.New[uint32, *page.Page]("page", capacity, pc.getForCache, pc.writeBack)

	if create {
		pc.pageCount = 0
		return pc, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	pc.pageCount = uint32(info.Size() / page.Size)
	return pc, nil
}

// PageCount returns the number of pages currently in the file.
func (pc *PageCache) PageCount() uint32 {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.pageCount
}

// NewPage appends a new page initialized with init (which must be exactly
// page.Size bytes) and flushes it immediately, returning its page number.
func (pc *PageCache) NewPage(init []byte) (uint32, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pgno := pc.pageCount + 1
	if _, err := pc.file.WriteAt(init, int64(pgno-1)*page.Size); err != nil {
		return 0, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	if err := pc.file.Sync(); err != nil {
		return 0, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	pc.pageCount = pgno
	metrics.PageAllocationsTotal.Inc()
	return pgno, nil
}

// GetPage acquires a reference-counted handle for pgno, reading it from
// disk on a cache miss.
func (pc *PageCache) GetPage(pgno uint32) (*page.Page, error) {
	return pc.cache.Acquire(pgno)
}

// Release decrements pgno's reference count, writing it back to disk if
// dirty once the count reaches zero.
func (pc *PageCache) Release(p *page.Page) {
	pc.cache.Release(p.No)
}

func (pc *PageCache) getForCache(pgno uint32) (*page.Page, error) {
	buf := make([]byte, page.Size)
	pc.mu.Lock()
	_, err := pc.file.ReadAt(buf, int64(pgno-1)*page.Size)
	pc.mu.Unlock()
	if err != nil {
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	return page.New(pgno, buf), nil
}

func (pc *PageCache) writeBack(pgno uint32, p *page.Page) {
	if !p.Dirty {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if _, err := pc.file.WriteAt(p.Data, int64(pgno-1)*page.Size); err != nil {
		dberrors.Fatal("failed to write back dirty page", err)
		return
	}
	if err := pc.file.Sync(); err != nil {
		dberrors.Fatal("failed to sync dirty page write-back", err)
		return
	}
	p.Dirty = false
}

// TruncateByPgno sets the file length to m pages and resets the page
// counter. Used only by recovery before log replay.
func (pc *PageCache) TruncateByPgno(m uint32) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.file.Truncate(int64(m) * page.Size); err != nil {
		return dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	pc.pageCount = m
	return nil
}

// Close flushes all resident dirty pages and closes the data file.
func (pc *PageCache) Close() error {
	pc.cache.Close()
	return pc.file.Close()
}
