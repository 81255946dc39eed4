package recovery

import (
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/page"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/rs/zerolog"
)

// Run performs the redo/undo recovery pass against pc, using lg as the
// source of truth and t to classify each record's XID.
// Callers should invoke this only when page.CheckVc has already reported
// an unclean shutdown.
func Run(pc *pagecache.PageCache, lg *wal.Logger, t *tm.TM) error {
	lgr := log.WithComponent("recovery")
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RecoveryDuration)

	maxPgno, err := maxReferencedPage(lg)
	if err != nil {
		return err
	}
	if maxPgno < 1 {
		maxPgno = 1
	}
	if err := pc.TruncateByPgno(maxPgno); err != nil {
		return err
	}
	lgr.Info().Uint32("max_pgno", maxPgno).Msg("truncated data file before replay")

	if err := redo(pc, lg, t, lgr); err != nil {
		return err
	}
	if err := undo(pc, lg, t, lgr); err != nil {
		return err
	}
	return nil
}

// maxReferencedPage scans the whole log once to find the highest page
// number touched by any insert or update record.
func maxReferencedPage(lg *wal.Logger) (uint32, error) {
	var max uint32
	lg.Rewind()
	for {
		data, ok := lg.Next()
		if !ok {
			break
		}
		pgno, err := recordPgno(data)
		if err != nil {
			return 0, err
		}
		if pgno > max {
			max = pgno
		}
	}
	return max, nil
}

func recordPgno(data []byte) (uint32, error) {
	switch data[0] {
	case wal.LogTypeInsert:
		rec, err := wal.DecodeInsert(data)
		if err != nil {
			return 0, err
		}
		return rec.Pgno, nil
	case wal.LogTypeUpdate:
		rec, err := wal.DecodeUpdate(data)
		if err != nil {
			return 0, err
		}
		return uidPgno(rec.UID), nil
	default:
		return 0, nil
	}
}

func uidPgno(uid uint64) uint32   { return uint32(uid >> 32) }
func uidOffset(uid uint64) uint16 { return uint16(uid) }

// redo reapplies every record whose XID is no longer active: it was
// either committed (durable even if the page write lagged the log) or
// aborted (harmless to reapply, since the undo pass does not touch it).
func redo(pc *pagecache.PageCache, lg *wal.Logger, t *tm.TM, lgr zerolog.Logger) error {
	lg.Rewind()
	applied := 0
	for {
		data, ok := lg.Next()
		if !ok {
			break
		}
		xid, err := wal.RecordXID(data)
		if err != nil {
			return err
		}
		if t.IsActive(xid) {
			continue
		}
		if err := applyInsertOrUpdate(pc, data, false); err != nil {
			return err
		}
		applied++
	}
	lgr.Info().Int("records", applied).Msg("redo pass complete")
	return nil
}

// undo reverses every record belonging to a XID that is still active
// (a loser transaction in progress at crash time), walking each XID's
// records in reverse order, then marks it aborted.
func undo(pc *pagecache.PageCache, lg *wal.Logger, t *tm.TM, lgr zerolog.Logger) error {
	perXID := make(map[uint64][][]byte)
	order := make([]uint64, 0)

	lg.Rewind()
	for {
		data, ok := lg.Next()
		if !ok {
			break
		}
		xid, err := wal.RecordXID(data)
		if err != nil {
			return err
		}
		if !t.IsActive(xid) {
			continue
		}
		if _, seen := perXID[xid]; !seen {
			order = append(order, xid)
		}
		perXID[xid] = append(perXID[xid], data)
	}

	for _, xid := range order {
		records := perXID[xid]
		for i := len(records) - 1; i >= 0; i-- {
			if err := applyInsertOrUpdate(pc, records[i], true); err != nil {
				return err
			}
		}
		if err := t.Abort(xid); err != nil {
			return err
		}
	}
	lgr.Info().Int("transactions", len(order)).Msg("undo pass complete")
	return nil
}

// applyInsertOrUpdate applies one log record to its target page. When
// undo is false this is the redo direction (insert: rewrite raw; update:
// rewrite newRaw). When undo is true, inserts are tombstoned and updates
// are rewritten with oldRaw.
func applyInsertOrUpdate(pc *pagecache.PageCache, data []byte, undo bool) error {
	switch data[0] {
	case wal.LogTypeInsert:
		rec, err := wal.DecodeInsert(data)
		if err != nil {
			return err
		}
		p, err := pc.GetPage(rec.Pgno)
		if err != nil {
			return err
		}
		p.Lock()
		if undo {
			page.TombstoneItem(p.Data, rec.Offset)
		} else {
			page.RecoverInsert(p.Data, rec.Raw, rec.Offset)
		}
		p.SetDirty(true)
		p.Unlock()
		pc.Release(p)
		return nil

	case wal.LogTypeUpdate:
		rec, err := wal.DecodeUpdate(data)
		if err != nil {
			return err
		}
		pgno := uidPgno(rec.UID)
		offset := uidOffset(rec.UID)
		p, err := pc.GetPage(pgno)
		if err != nil {
			return err
		}
		p.Lock()
		if undo {
			page.RecoverUpdate(p.Data, rec.OldRaw, offset)
		} else {
			page.RecoverUpdate(p.Data, rec.NewRaw, offset)
		}
		p.SetDirty(true)
		p.Unlock()
		pc.Release(p)
		return nil

	default:
		return nil
	}
}
