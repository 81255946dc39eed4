/*
Package dberrors centralizes the engine's error taxonomy.

Errors fall into three kinds:

  - KindStorage: file and storage failures — an unreadable or corrupt
    file, a failed write or fsync, a full cache, an item too large for a
    page. These are returned as ordinary errors. The failures the engine
    cannot continue past (an unreadable XID status, a failed dirty-page
    write-back) call Fatal instead, which logs and exits the process.
  - KindLogical: propagate to the executor and back to the caller; the
    current transaction is aborted if it was implicit.
  - KindConcurrency: deadlock or version-skip. The transaction's err field
    is set and it is auto-aborted; subsequent calls on the same XID observe
    the sentinel and refuse to proceed.

Every sentinel is a plain package-level error value so callers can compare
with errors.Is, and Wrap attaches a Kind plus a free-form message without
losing the sentinel identity.
*/
package dberrors
