/*
Package vm implements multi-version concurrency control on top of
pkg/dm. Every row is stored as an Entry:

	[xmin:8][xmax:8][payload:*]

xmin is the XID that created the version; xmax is the XID that deleted
it (0 while live). VM never rewrites a row's payload and never removes
an Entry's DataItem — update is modeled as delete-then-insert, and
delete only ever sets xmax via the DM Before/After protocol, so every
mutation remains a single WAL-logged write.

Visibility is decided by the Read Committed and Repeatable Read
formulas, computed against pkg/tm for commit status and a
Transaction's frozen snapshot for RR. Concurrent deletes are arbitrated
through pkg/locktable: a transaction about to delete a row first
acquires the row's UID as a lock-table edge, blocking on the returned
wait channel if another transaction holds it, then re-reads the row,
treats it as already deleted if its xmax is the caller's own XID, and
checks the RR-only version-skip condition before committing to the
delete.
Both deadlock and version-skip end the same way: the transaction's err
field is set, it is auto-aborted, and the error propagates to the
caller.
*/
package vm
