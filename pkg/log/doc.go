/*
Package log provides structured logging for quill using zerolog.

Every subsystem (tm, pagecache, wal, dm, vm, locktable, bplustree, catalog,
executor) obtains a component-scoped child logger at construction time and
logs through it, never through the bare global logger. This keeps every log
line attributable to the subsystem and transaction that produced it.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - zerolog.Logger instance                  │          │
	│  │  - Initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("wal"), WithComponent("vm")│          │
	│  │  - WithXID(xid), WithUID(uid), WithTable()  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON: {"level":"info","component":"wal",…} │          │
	│  │  Console: 10:30AM INF redo applied xid=7    │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	walLog := log.WithComponent("wal")
	walLog.Info().Int("records", n).Msg("redo pass complete")

	txLog := log.WithXID(xid)
	txLog.Warn().Msg("version skip, aborting")

Fatal-level logs (pkg/dberrors.Fatal) terminate the process; they exist only
for unrecoverable storage errors (corrupt XID file, fsync failure, WAL
corruption past the bad-tail boundary) — never for logical or concurrency
errors, which always return through an ordinary error value.
*/
package log
