/*
Package wal implements the write-ahead log: an append-only file of
checksummed records guarded by a global checksum prefix, plus the typed
insert/update log record formats data items append before mutating a
page.

File layout:

	[xchecksum:4] { [size:4][checksum:4][data:size] }*

xchecksum is the fold (seed 13331) of every record's data in sequence; it
is recomputed and fsynced in place on every append, so a half-written
final record is detectable at the next open without needing a separate
"is this the last record" marker. A per-record checksum guards each
record independently; the first record that fails its own checksum ends
the valid log (bad-tail truncation) regardless of what bytes follow.

Appends are serialized by a single latch (the global logger latch).
Scanning (Rewind/Next) is for sequential recovery replay and is not
meant to run concurrently with Append.
*/
package wal
