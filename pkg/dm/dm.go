package dm

import (
	"github.com/cuemby/quill/pkg/cache"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/page"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/pageindex"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/rs/zerolog"
)

const maxInsertAttempts = 5

// DM is the data-item layer: it allocates, reads, and mutates DataItems
// stored inside pages owned by a PageCache, journaling every mutation to
// a Logger first.
type DM struct {
	pc  *pagecache.PageCache
	lg  *wal.Logger
	idx *pageindex.Index

	cache *cache.Cache[uint64, *Item]
	log   zerolog.Logger
}

// Open wires a DM over an already-open page cache and logger. capacity is
// the maximum number of resident items (0 = unbounded).
func Open(pc *pagecache.PageCache, lg *wal.Logger, capacity int) *DM {
	dm := &DM{pc: pc, lg: lg, idx: pageindex.New(), log: log.WithComponent("dm")}
	dm.cache = cache.New[uint64, *Item]("dataitem", capacity, dm.getForCache, dm.writeBack)
	return dm
}

// IndexPage records pgno as having free bytes of free space, seeding the
// page index's knowledge of a page it did not itself allocate (used when
// reopening an existing database: every data page must be scanned once
// and re-added to the free-space histogram before Insert can place new
// items there).
func (dm *DM) IndexPage(pgno uint32, free uint16) {
	dm.idx.Add(pgno, free)
}

func (dm *DM) getForCache(uid uint64) (*Item, error) {
	pgno, offset := uidPgno(uid), uidOffset(uid)
	p, err := dm.pc.GetPage(pgno)
	if err != nil {
		return nil, err
	}
	return &Item{uid: uid, pgno: pgno, offset: offset, page: p}, nil
}

func (dm *DM) writeBack(_ uint64, it *Item) {
	dm.pc.Release(it.page)
}

// Insert wraps payload as a new DataItem, places it on a page with
// sufficient free space (allocating one if needed), journals the insert,
// and returns the new item's UID.
func (dm *DM) Insert(xid uint64, payload []byte) (uint64, error) {
	wrapped := wrapItem(payload)
	if len(wrapped) > page.Size-page.OrdinaryHeaderSize {
		return 0, dberrors.Storage(dberrors.ErrDataTooLarge, "")
	}

	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		pgno, ok := dm.idx.Select(uint16(len(wrapped)))
		if !ok {
			newPgno, err := dm.pc.NewPage(page.InitOrdinaryRaw())
			if err != nil {
				return 0, err
			}
			dm.idx.Add(newPgno, page.FreeSpace(page.InitOrdinaryRaw()))
			continue
		}

		p, err := dm.pc.GetPage(pgno)
		if err != nil {
			return 0, err
		}

		p.Lock()
		if page.FreeSpace(p.Data) < uint16(len(wrapped)) {
			free := page.FreeSpace(p.Data)
			p.Unlock()
			dm.pc.Release(p)
			dm.idx.Add(pgno, free)
			continue
		}

		offset := page.GetFSO(p.Data)
		if err := dm.lg.Append(wal.EncodeInsert(xid, pgno, offset, wrapped)); err != nil {
			p.Unlock()
			dm.pc.Release(p)
			return 0, err
		}
		page.Insert(p.Data, wrapped)
		p.SetDirty(true)
		free := page.FreeSpace(p.Data)
		p.Unlock()
		dm.pc.Release(p)
		dm.idx.Add(pgno, free)

		return newUID(pgno, offset), nil
	}

	return 0, dberrors.Storage(dberrors.ErrDatabaseBusy, "")
}

// Read returns a copy of the live payload at uid, or
// dberrors.ErrNullEntry if the item is tombstoned.
func (dm *DM) Read(uid uint64) ([]byte, error) {
	it, err := dm.cache.Acquire(uid)
	if err != nil {
		return nil, err
	}
	defer dm.cache.Release(uid)

	it.mu.RLock()
	defer it.mu.RUnlock()

	it.page.Lock()
	defer it.page.Unlock()

	valid, _ := readHeader(it.page.Data, it.offset)
	if valid != 0 {
		return nil, dberrors.Logical(dberrors.ErrNullEntry, "")
	}
	payload := payloadAt(it.page.Data, it.offset)
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp, nil
}

// Before write-locks the item at uid, snapshots its current bytes for a
// potential UnBefore, and returns the item alongside its mutable payload
// slice. The caller must edit that slice in place and then call exactly
// one of After or UnBefore.
func (dm *DM) Before(uid uint64) (*Item, []byte, error) {
	it, err := dm.cache.Acquire(uid)
	if err != nil {
		return nil, nil, err
	}

	it.mu.Lock()

	it.page.Lock()
	it.oldRaw = append([]byte(nil), rawAt(it.page.Data, it.offset)...)
	it.page.SetDirty(true)
	payload := payloadAt(it.page.Data, it.offset)
	it.page.Unlock()

	return it, payload, nil
}

// After logs the mutation made since Before under xid and releases the
// item's write lock.
func (dm *DM) After(xid uint64, it *Item) error {
	it.page.Lock()
	newRaw := append([]byte(nil), rawAt(it.page.Data, it.offset)...)
	it.page.Unlock()

	err := dm.lg.Append(wal.EncodeUpdate(xid, it.uid, it.oldRaw, newRaw))
	it.oldRaw = nil
	it.mu.Unlock()
	dm.cache.Release(it.uid)
	return err
}

// UnBefore restores the item's pre-Before bytes and releases its write
// lock, discarding the in-progress edit.
func (dm *DM) UnBefore(it *Item) {
	it.page.Lock()
	page.RecoverUpdate(it.page.Data, it.oldRaw, it.offset)
	it.page.Unlock()

	it.oldRaw = nil
	it.mu.Unlock()
	dm.cache.Release(it.uid)
}

// Close flushes the item cache, writing back every resident page
// reference.
func (dm *DM) Close() {
	dm.cache.Close()
}
