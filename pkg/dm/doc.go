/*
Package dm implements the data-item layer: the smallest unit of storage
DM hands callers is a DataItem, a validity-tagged, length-prefixed byte
slice living inside an ordinary page:

	[valid:1][size:2][data:size]

A DataItem's UID is (pgno<<32)|offset, matching pkg/page's layout.

Insert places a new item using pkg/pageindex to pick a page with enough
free space (allocating a fresh page whenever the index has none), appends a
pre-image-free insert log record, then mutates the page.

Mutation goes through a Before/After/UnBefore protocol: Before
write-locks the item and snapshots its current bytes; the caller edits
the returned payload in place; After logs the update (old bytes, new
bytes) and releases the lock, while UnBefore restores the snapshot
instead (used when a mutator decides not to commit its edit, e.g. a
failed lock-table acquisition higher up the stack). This guarantees that
every on-disk mutation is preceded by a durable log record
(write-ahead-log-before-page), and that concurrent readers never
observe a partial edit.
*/
package dm
