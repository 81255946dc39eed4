package recovery

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/quill/pkg/page"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryRedoesCommittedAndUndoesActive(t *testing.T) {
	dir := t.TempDir()

	tMgr, err := tm.Open(filepath.Join(dir, "test.xid"))
	require.NoError(t, err)
	defer tMgr.Close()

	pc, err := pagecache.Open(filepath.Join(dir, "test.db"), 0)
	require.NoError(t, err)
	defer pc.Close()

	lg, err := wal.Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	defer lg.Close()

	pgno, err := pc.NewPage(page.InitOrdinaryRaw())
	require.NoError(t, err)

	committedXID, _ := tMgr.Begin()
	committedRaw := []byte{0, 0, 5, 'a', 'l', 'i', 'c', 'e'} // valid=0, size=5, "alice"
	committedOffset := uint16(page.OrdinaryHeaderSize)
	require.NoError(t, lg.Append(wal.EncodeInsert(committedXID, pgno, committedOffset, committedRaw)))
	p, _ := pc.GetPage(pgno)
	p.Lock()
	page.Insert(p.Data, committedRaw)
	p.SetDirty(true)
	p.Unlock()
	pc.Release(p)
	require.NoError(t, tMgr.Commit(committedXID))

	activeXID, _ := tMgr.Begin()
	activeRaw := []byte{0, 0, 3, 'b', 'o', 'b'}
	activeOffset := committedOffset + uint16(len(committedRaw))
	require.NoError(t, lg.Append(wal.EncodeInsert(activeXID, pgno, activeOffset, activeRaw)))
	p2, _ := pc.GetPage(pgno)
	p2.Lock()
	page.Insert(p2.Data, activeRaw)
	p2.SetDirty(true)
	p2.Unlock()
	pc.Release(p2)
	// activeXID is never committed or aborted: simulates a crash mid-transaction.

	// Simulate the crash: truncate the data file back so the redo pass has
	// work to do (as if the page write-back never reached disk).
	require.NoError(t, pc.TruncateByPgno(0), "simulate crash truncate")
	raw := page.InitOrdinaryRaw()
	_, err = pc.NewPage(raw)
	require.NoError(t, err, "recreate blank page")

	require.NoError(t, Run(pc, lg, tMgr))

	p3, err := pc.GetPage(pgno)
	require.NoError(t, err, "GetPage after recovery")
	defer pc.Release(p3)

	gotCommitted := p3.Data[committedOffset : committedOffset+uint16(len(committedRaw))]
	assert.Equal(t, string(committedRaw), string(gotCommitted), "committed insert not redone")

	assert.True(t, page.ItemValid(p3.Data, committedOffset), "committed item should remain valid")
	assert.False(t, page.ItemValid(p3.Data, activeOffset), "active-at-crash item should have been tombstoned by undo")

	assert.True(t, tMgr.IsAborted(activeXID), "active-at-crash XID should be marked aborted after recovery")
	assert.True(t, tMgr.IsCommitted(committedXID), "committed XID should remain committed after recovery")
}
