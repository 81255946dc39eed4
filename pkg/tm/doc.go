/*
Package tm implements the transaction manager: it assigns monotonically
increasing transaction ids (XIDs) and durably tracks each XID's status
(active, committed, or aborted) in a dedicated file.

File layout:

	[count:8][status(xid=1)][status(xid=2)]...[status(xid=count)]

XID 0 is the "super" transaction: always treated as committed, never
recorded. Every mutation (begin, commit, abort) fsyncs before returning,
so TM state changes are durable before the call returns.
*/
package tm
