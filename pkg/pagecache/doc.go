/*
Package pagecache implements the fixed-size page cache over a database's
`.db` file: it owns page numbering (starting at 1), reads and writes
exactly page.Size bytes at a time, and defers dirty write-back to
eviction via pkg/cache.

	┌────────────────── PAGE CACHE ──────────────────┐
	│  GetPage(pgno)  ──▶ cache.Acquire(pgno)          │
	│                      miss ▶ read (pgno-1)*8192   │
	│  NewPage(init)  ──▶ append + immediate flush      │
	│  Release(p)     ──▶ cache.Release(pgno)           │
	│                      refs==0 ▶ writeBack if dirty │
	│  TruncateByPgno(m) ──▶ recovery-only: file.Truncate│
	└──────────────────────────────────────────────────┘

TruncateByPgno is used only by the recovery pass before log replay
begins, never during normal operation.
*/
package pagecache
