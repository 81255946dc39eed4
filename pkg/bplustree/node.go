package bplustree

import (
	"math"

	"github.com/cuemby/quill/pkg/bin"
)

// Balance is the B+ tree fan-out parameter: nodes split once they reach
// 2*Balance real entries, producing two nodes of Balance entries each.
const Balance = 32

// SentinelKey terminates every node: a trailing entry with this key
// guarantees a descending search always finds a son to follow.
const SentinelKey = int64(math.MaxInt64)

const (
	headerLen = 1 + 2 + 8 // isLeaf + noKeys + sibling
	entryLen  = 8 + 8      // son + key
	// capacity holds 2*Balance real entries and their sentinel (the most
	// a node holds, right before it splits) plus one further slot that
	// is never written.
	capacity = 2*Balance + 2
)

// NodeSize is the fixed on-disk size of a B+ tree node's payload.
const NodeSize = headerLen + entryLen*capacity

// node is a typed, bounds-checked view over a node's raw bytes, which
// must be exactly NodeSize long.
type node struct {
	raw []byte
}

func newNode(raw []byte) *node { return &node{raw: raw} }

func (n *node) IsLeaf() bool {
	return n.raw[0] == 1
}

func (n *node) SetLeaf(leaf bool) {
	if leaf {
		n.raw[0] = 1
	} else {
		n.raw[0] = 0
	}
}

func (n *node) NoKeys() int {
	return int(bin.BytesToUint16(n.raw[1:3]))
}

func (n *node) SetNoKeys(v int) {
	copy(n.raw[1:3], bin.Uint16ToBytes(uint16(v)))
}

func (n *node) Sibling() uint64 {
	return bin.BytesToUint64(n.raw[3:11])
}

func (n *node) SetSibling(v uint64) {
	copy(n.raw[3:11], bin.Uint64ToBytes(v))
}

func entryOffset(i int) int {
	off := headerLen + i*entryLen
	return off
}

func (n *node) Son(i int) uint64 {
	off := entryOffset(i)
	return bin.BytesToUint64(n.raw[off : off+8])
}

func (n *node) SetSon(i int, v uint64) {
	off := entryOffset(i)
	copy(n.raw[off:off+8], bin.Uint64ToBytes(v))
}

func (n *node) Key(i int) int64 {
	off := entryOffset(i) + 8
	return bin.BytesToInt64(n.raw[off : off+8])
}

func (n *node) SetKey(i int, v int64) {
	off := entryOffset(i) + 8
	copy(n.raw[off:off+8], bin.Int64ToBytes(v))
}

// newLeafRaw returns a blank leaf node: no real entries, just the
// sentinel.
func newLeafRaw() []byte {
	raw := make([]byte, NodeSize)
	n := newNode(raw)
	n.SetLeaf(true)
	n.SetNoKeys(0)
	n.SetSibling(0)
	n.SetSon(0, 0)
	n.SetKey(0, SentinelKey)
	return raw
}

// newInternalRaw returns a fresh internal node with exactly one real
// entry (leftUID, splitKey) plus its sentinel routing to rightUID — the
// shape of a brand-new root after its only child split.
func newInternalRaw(leftUID uint64, splitKey int64, rightUID uint64) []byte {
	raw := make([]byte, NodeSize)
	n := newNode(raw)
	n.SetLeaf(false)
	n.SetNoKeys(1)
	n.SetSibling(0)
	n.SetSon(0, leftUID)
	n.SetKey(0, splitKey)
	n.SetSon(1, rightUID)
	n.SetKey(1, SentinelKey)
	return raw
}

// findSon returns the son to follow for key: the first entry (among the
// noKeys real entries plus the sentinel) whose key is >= key. ok is
// false only if the node's invariants are violated (no sentinel found),
// signaling the caller to fall back to the right sibling.
func findSon(n *node, key int64) (uint64, bool) {
	for i := 0; i <= n.NoKeys(); i++ {
		if n.Key(i) >= key {
			return n.Son(i), true
		}
	}
	return 0, false
}

// insertEntry inserts (key, son) into n at its sorted position, shifting
// later entries (including the sentinel) right by one slot. The caller
// must check NoKeys() against 2*Balance afterward to decide whether to
// split.
func insertEntry(n *node, key int64, son uint64) {
	count := n.NoKeys()
	pos := 0
	for pos < count && n.Key(pos) < key {
		pos++
	}
	for i := count; i >= pos; i-- {
		n.SetSon(i+1, n.Son(i))
		n.SetKey(i+1, n.Key(i))
	}
	n.SetSon(pos, son)
	n.SetKey(pos, key)
	n.SetNoKeys(count + 1)
}

// split copies n's upper half (entries [Balance, 2*Balance), plus the
// sentinel's rightmost child for an internal node) into a fresh node of
// the same kind, returning the fresh node's raw bytes and the separator
// key the parent should use to route between the two halves (the new
// node's first key). The caller inserts the new node to obtain its UID.
func split(n *node, isLeaf bool) (newRaw []byte, newKey int64) {
	newRaw = make([]byte, NodeSize)
	nn := newNode(newRaw)
	nn.SetLeaf(isLeaf)
	for i := 0; i < Balance; i++ {
		nn.SetSon(i, n.Son(Balance+i))
		nn.SetKey(i, n.Key(Balance+i))
	}
	nn.SetNoKeys(Balance)
	nn.SetSon(Balance, 0)
	if !isLeaf {
		nn.SetSon(Balance, n.Son(2*Balance))
	}
	nn.SetKey(Balance, SentinelKey)
	nn.SetSibling(n.Sibling())

	newKey = nn.Key(0)
	return newRaw, newKey
}

// trimAfterSplit shrinks n down to its lower half (the first Balance
// entries) and points its sibling at newUID, called after the upper
// half has already been copied out by split. An internal node keeps the
// child at slot Balance as its sentinel's son, since the parent routes
// keys up to the separator to this node.
func trimAfterSplit(n *node, newUID uint64) {
	n.SetNoKeys(Balance)
	if n.IsLeaf() {
		n.SetSon(Balance, 0)
	}
	n.SetKey(Balance, SentinelKey)
	n.SetSibling(newUID)
}
