package bplustree

import (
	"sync"

	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/rs/zerolog"
)

// Tree is an on-disk B+ tree keyed by 64-bit signed integers, mapping
// each key to a 64-bit UID (typically a VM entry's UID).
type Tree struct {
	dm      *dm.DM
	bootUID uint64 // UID of the DataItem holding the current root's UID

	mu  sync.Mutex // boot latch: serializes root pointer updates
	log zerolog.Logger
}

// Create allocates a fresh, empty tree (a single leaf node plus its boot
// pointer) and returns it.
func Create(d *dm.DM) (*Tree, error) {
	rootUID, err := d.Insert(tm.SuperXID, newLeafRaw())
	if err != nil {
		return nil, err
	}
	bootUID, err := d.Insert(tm.SuperXID, bin.Uint64ToBytes(rootUID))
	if err != nil {
		return nil, err
	}
	return &Tree{dm: d, bootUID: bootUID, log: log.WithComponent("bplustree")}, nil
}

// Open wraps an existing tree given its boot DataItem's UID, as
// persisted in a Field's indexRootUid. The name is historical: the
// stored value is this boot pointer, not a literal root node UID,
// since splits relocate the root.
func Open(d *dm.DM, bootUID uint64) *Tree {
	return &Tree{dm: d, bootUID: bootUID, log: log.WithComponent("bplustree")}
}

// BootUID returns the tree's boot DataItem UID, for persisting as a
// Field's index pointer.
func (t *Tree) BootUID() uint64 { return t.bootUID }

func (t *Tree) rootUID() (uint64, error) {
	raw, err := t.dm.Read(t.bootUID)
	if err != nil {
		return 0, err
	}
	return bin.BytesToUint64(raw), nil
}

func (t *Tree) setRootUID(newRoot uint64) error {
	it, payload, err := t.dm.Before(t.bootUID)
	if err != nil {
		return err
	}
	copy(payload, bin.Uint64ToBytes(newRoot))
	return t.dm.After(tm.SuperXID, it)
}

func (t *Tree) readNode(uid uint64) (*node, error) {
	raw, err := t.dm.Read(uid)
	if err != nil {
		return nil, err
	}
	return newNode(raw), nil
}

// Search returns the UID stored under key, if any.
func (t *Tree) Search(key int64) (uint64, bool, error) {
	uids, err := t.SearchRange(key, key)
	if err != nil || len(uids) == 0 {
		return 0, false, err
	}
	return uids[0], true, nil
}

// SearchRange returns every UID whose key lies in [lo, hi], in ascending
// key order.
func (t *Tree) SearchRange(lo, hi int64) ([]uint64, error) {
	root, err := t.rootUID()
	if err != nil {
		return nil, err
	}

	leafUID, err := t.descendToLeaf(root, lo)
	if err != nil {
		return nil, err
	}

	var results []uint64
	for leafUID != 0 {
		n, err := t.readNode(leafUID)
		if err != nil {
			return nil, err
		}
		exhausted := true
		for i := 0; i < n.NoKeys(); i++ {
			k := n.Key(i)
			if k < lo {
				continue
			}
			if k > hi {
				exhausted = false
				break
			}
			results = append(results, n.Son(i))
		}
		if exhausted && n.Sibling() != 0 {
			leafUID = n.Sibling()
			continue
		}
		break
	}
	return results, nil
}

// descendToLeaf walks from uid to the leaf that would contain key,
// falling back to a node's right sibling if its routing entries are
// stale — a safety net against a concurrent split mid-descent.
func (t *Tree) descendToLeaf(uid uint64, key int64) (uint64, error) {
	for {
		n, err := t.readNode(uid)
		if err != nil {
			return 0, err
		}
		if n.IsLeaf() {
			return uid, nil
		}
		son, ok := findSon(n, key)
		if !ok {
			uid = n.Sibling()
			continue
		}
		uid = son
	}
}

// Insert places key -> uid into the tree, splitting nodes as needed and
// growing the tree's height if the root itself splits.
func (t *Tree) Insert(key int64, uid uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.rootUID()
	if err != nil {
		return err
	}

	newSon, newKey, split, err := t.insertInto(root, key, uid)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}

	newRootUID, err := t.dm.Insert(tm.SuperXID, newInternalRaw(root, newKey, newSon))
	if err != nil {
		return err
	}
	return t.setRootUID(newRootUID)
}

// insertInto recursively inserts key->uid starting at nodeUID, returning
// (newSonUID, newKey, true) when nodeUID's node split and the caller
// must propagate a new routing entry upward.
func (t *Tree) insertInto(nodeUID uint64, key int64, uid uint64) (uint64, int64, bool, error) {
	it, payload, err := t.dm.Before(nodeUID)
	if err != nil {
		return 0, 0, false, err
	}
	n := newNode(payload)

	if n.IsLeaf() {
		if n.NoKeys() > 0 && key > n.Key(n.NoKeys()-1) && n.Sibling() != 0 {
			sibling := n.Sibling()
			t.dm.UnBefore(it)
			return t.insertInto(sibling, key, uid)
		}

		insertEntry(n, key, uid)
		return t.maybeSplitAndCommit(it, n, true)
	}

	son, ok := findSon(n, key)
	if !ok {
		sibling := n.Sibling()
		t.dm.UnBefore(it)
		return t.insertInto(sibling, key, uid)
	}
	t.dm.UnBefore(it)

	childNewSon, childNewKey, childSplit, err := t.insertInto(son, key, uid)
	if err != nil {
		return 0, 0, false, err
	}
	if !childSplit {
		return 0, 0, false, nil
	}

	it2, payload2, err := t.dm.Before(nodeUID)
	if err != nil {
		return 0, 0, false, err
	}
	n2 := newNode(payload2)
	// The child that split keeps its slot with childNewKey as its new
	// upper bound; the new upper-half node takes the child's old key in
	// the slot right after it.
	pos := 0
	for pos < n2.NoKeys() && n2.Key(pos) < childNewKey {
		pos++
	}
	insertEntry(n2, childNewKey, son)
	n2.SetSon(pos+1, childNewSon)
	return t.maybeSplitAndCommit(it2, n2, false)
}

func (t *Tree) maybeSplitAndCommit(it *dm.Item, n *node, isLeaf bool) (uint64, int64, bool, error) {
	if n.NoKeys() < 2*Balance {
		if err := t.dm.After(tm.SuperXID, it); err != nil {
			return 0, 0, false, err
		}
		return 0, 0, false, nil
	}

	newRaw, newKey := split(n, isLeaf)
	newUID, err := t.dm.Insert(tm.SuperXID, newRaw)
	if err != nil {
		t.dm.UnBefore(it)
		return 0, 0, false, err
	}
	trimAfterSplit(n, newUID)

	if err := t.dm.After(tm.SuperXID, it); err != nil {
		return 0, 0, false, err
	}
	metrics.BTreeSplitsTotal.Inc()
	return newUID, newKey, true, nil
}
