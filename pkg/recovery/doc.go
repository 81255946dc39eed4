/*
Package recovery implements the WAL-driven redo/undo pass, run once at
database open whenever page one's validity marker indicates an unclean
shutdown.

The algorithm:

 1. Scan the log once to find the highest page number any record touches,
    and truncate the data file to that many pages (at least 1) — pages
    beyond that point were never durably referenced and may be partially
    written.
 2. Redo: scan forward again; for every record whose XID is no longer
    active (committed or aborted before the crash), reapply it — inserts
    rewrite their raw bytes at (pgno, offset), updates rewrite newRaw.
 3. Undo: bucket every record by XID for XIDs still active at crash time,
    then for each such XID walk its records in reverse, undoing them —
    inserts are tombstoned, updates are rewritten with oldRaw — and mark
    the XID aborted once its records are fully reversed.

Recovery operates directly on raw page bytes via pkg/page rather than
through the data-item layer: it runs before any cache is warm, against
exactly the pages named in the log, and only ever needs the page.Recover*
helpers and the data item's one-byte validity tag.
*/
package recovery
