/*
Package bplustree implements the on-disk B+ tree index: fixed-size
nodes, each living in exactly one pkg/dm DataItem, mapping a 64-bit
signed key to a 64-bit UID.

Node layout:

	[isLeaf:1][noKeys:2][sibling:8] { [son:8][key:8] }*

followed by a sentinel entry (key=SentinelKey) one slot past the noKeys
real entries, whose son is 0 in a leaf and the rightmost child in an
internal node — the convention that guarantees a descending search
always finds a son to follow without a separate "not found" branch. At
leaf level "son" holds the indexed row's UID; at internal level it holds
a child node's UID. BALANCE is 32: nodes split once they reach 2*BALANCE
real entries, producing two nodes of BALANCE entries each.

A tree's root can move (a root split allocates a new root), so every
tree keeps a small boot DataItem holding the current root UID, updated
atomically under the tree's own latch whenever a split reaches the root.
All tree mutations run under the super XID, so index maintenance never
interacts with user-visible MVCC visibility; pkg/dm's Before/After
protocol gives each node write crash-safe, WAL-logged atomicity.
*/
package bplustree
