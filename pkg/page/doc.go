/*
Package page defines quill's fixed-size 8 KiB page and its two on-disk
layouts:

  - Page: the in-memory handle the page cache hands out — a page number,
    an 8192-byte buffer, a dirty flag, and a mutex guarding in-place
    mutation. Pages are owned by the page cache; callers never allocate
    one directly.
  - OrdinaryPage: a 2-byte free-space offset (FSO) at byte 0 followed by
    an append-only, suffix-free sequence of payload records. Used by every
    page except page 1.
  - PageOne: the reserved first page. Bytes [100:108) are the "open"
    marker (rewritten to fresh random bytes every time the database
    opens) and bytes [108:116) are the "close" marker (copied from the
    open marker only on a clean close). The two windows match if and only
    if the previous shutdown was clean; recovery uses this to decide
    whether to replay the log.
*/
package page
