package locktable

import (
	"sync"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/rs/zerolog"
)

// LockTable tracks which XID holds each UID, the FIFO of XIDs waiting on
// each UID, and the chain an XID is waiting through, detecting deadlocks
// as new wait edges are added.
type LockTable struct {
	mu sync.Mutex

	held      map[uint64]map[uint64]struct{} // xid -> set of held uids
	holder    map[uint64]uint64              // uid -> holder xid
	waiters   map[uint64][]uint64            // uid -> FIFO waiting xids
	waitedOn  map[uint64]uint64              // xid -> uid it is waiting on
	waitLatch map[uint64]chan struct{}       // xid -> channel closed when granted

	stamp     map[uint64]int
	timestamp int

	log zerolog.Logger
}

// New returns an empty lock table.
func New() *LockTable {
	return &LockTable{
		held:      make(map[uint64]map[uint64]struct{}),
		holder:    make(map[uint64]uint64),
		waiters:   make(map[uint64][]uint64),
		waitedOn:  make(map[uint64]uint64),
		waitLatch: make(map[uint64]chan struct{}),
		stamp:     make(map[uint64]int),
		log:       log.WithComponent("locktable"),
	}
}

// Add records that xid wants uid. If uid is free or already held by xid,
// it returns a nil channel (caller may proceed immediately). Otherwise
// xid is enrolled as a waiter and a channel is returned that closes once
// xid becomes the holder — unless doing so would complete a deadlock
// cycle, in which case the edge is rolled back and ErrDeadlock returned.
func (lt *LockTable) Add(xid, uid uint64) (<-chan struct{}, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if _, ok := lt.held[xid][uid]; ok {
		return nil, nil
	}

	if _, ok := lt.holder[uid]; !ok {
		lt.grant(xid, uid)
		return nil, nil
	}

	lt.waiters[uid] = append(lt.waiters[uid], xid)
	lt.waitedOn[xid] = uid

	if lt.hasCycle(xid) {
		lt.removeWaiter(uid, xid)
		delete(lt.waitedOn, xid)
		metrics.DeadlocksTotal.Inc()
		return nil, dberrors.Concurrency(dberrors.ErrDeadlock, "")
	}

	ch := make(chan struct{})
	lt.waitLatch[xid] = ch
	return ch, nil
}

func (lt *LockTable) grant(xid, uid uint64) {
	lt.holder[uid] = xid
	if lt.held[xid] == nil {
		lt.held[xid] = make(map[uint64]struct{})
	}
	lt.held[xid][uid] = struct{}{}
}

func (lt *LockTable) removeWaiter(uid, xid uint64) {
	queue := lt.waiters[uid]
	for i, w := range queue {
		if w == xid {
			lt.waiters[uid] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// hasCycle walks the chain xid -> waitedOn[xid] -> holder[...] -> ... ,
// returning true if it revisits a node already marked in this walk. The
// wait-for relation here is functional (each xid waits on at most one
// uid, each uid has at most one holder) so this single walk is
// equivalent to a full DFS over the graph.
func (lt *LockTable) hasCycle(xid uint64) bool {
	lt.timestamp++
	ts := lt.timestamp
	cur := xid
	for {
		if lt.stamp[cur] == ts {
			return true
		}
		lt.stamp[cur] = ts
		uid, ok := lt.waitedOn[cur]
		if !ok {
			return false
		}
		holder, ok := lt.holder[uid]
		if !ok {
			return false
		}
		cur = holder
	}
}

// Remove releases every UID xid holds, handing each to the first live
// waiter in its FIFO queue, and clears xid's own waiting state.
func (lt *LockTable) Remove(xid uint64) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	for uid := range lt.held[xid] {
		delete(lt.holder, uid)
		queue := lt.waiters[uid]
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			ch, ok := lt.waitLatch[next]
			if !ok {
				continue
			}
			lt.grant(next, uid)
			delete(lt.waitLatch, next)
			delete(lt.waitedOn, next)
			close(ch)
			break
		}
		lt.waiters[uid] = queue
	}

	delete(lt.held, xid)
	delete(lt.waitedOn, xid)
	delete(lt.waitLatch, xid)
}
