/*
Package executor implements the statement dispatch loop: one Executor
per client connection, holding at most one outstanding
transaction at a time. Begin/Commit/Abort manage that transaction
directly; every other statement kind opens an implicit transaction if
none is current, runs through pkg/catalog, and commits on success or
aborts on error — so a bare `select`/`insert`/etc. behaves like
autocommit SQL while an explicit `begin` lets a client group several
statements into one transaction.
*/
package executor
