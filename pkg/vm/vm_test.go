package vm

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/locktable"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestVM(t *testing.T) *VM {
	t.Helper()
	dir := t.TempDir()

	pc, err := pagecache.Open(filepath.Join(dir, "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	lg, err := wal.Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	t.Cleanup(func() { lg.Close() })

	tMgr, err := tm.Open(filepath.Join(dir, "test.xid"))
	require.NoError(t, err)
	t.Cleanup(func() { tMgr.Close() })

	d := dm.Open(pc, lg, 0)
	lt := locktable.New()
	return Open(d, tMgr, lt)
}

func TestInsertReadOwnWrite(t *testing.T) {
	v := openTestVM(t)
	tx, err := v.Begin(ReadCommitted)
	require.NoError(t, err)
	uid, err := v.Insert(tx, []byte("alice"))
	require.NoError(t, err)
	got, err := v.Read(tx, uid)
	require.NoError(t, err, "Read own write")
	assert.Equal(t, "alice", string(got))
	require.NoError(t, v.Commit(tx))
}

func TestReadCommittedSeesCommittedUpdate(t *testing.T) {
	v := openTestVM(t)

	tx1, _ := v.Begin(ReadCommitted)
	uid, _ := v.Insert(tx1, []byte("alice"))
	v.Commit(tx1)

	tx2, _ := v.Begin(ReadCommitted)
	ok, err := v.Delete(tx2, uid)
	require.NoError(t, err)
	require.True(t, ok)
	newUID, _ := v.Insert(tx2, []byte("carol"))
	v.Commit(tx2)

	tx3, _ := v.Begin(ReadCommitted)
	_, err = v.Read(tx3, uid)
	assert.Error(t, err, "old row should no longer be visible after commit")
	got, err := v.Read(tx3, newUID)
	require.NoError(t, err, "Read new row")
	assert.Equal(t, "carol", string(got))
	v.Commit(tx3)
}

func TestRepeatableReadSnapshotIsolation(t *testing.T) {
	v := openTestVM(t)

	setup, _ := v.Begin(ReadCommitted)
	uid, _ := v.Insert(setup, []byte("alice"))
	v.Commit(setup)

	t1, err := v.Begin(RepeatableRead)
	require.NoError(t, err)
	got, err := v.Read(t1, uid)
	require.NoError(t, err, "T1 initial read")
	assert.Equal(t, "alice", string(got))

	t2, _ := v.Begin(ReadCommitted)
	ok, err := v.Delete(t2, uid)
	require.NoError(t, err)
	require.True(t, ok)
	v.Insert(t2, []byte("carol"))
	require.NoError(t, v.Commit(t2))

	got2, err := v.Read(t1, uid)
	require.NoError(t, err, "T1 re-read (RR snapshot)")
	assert.Equal(t, "alice", string(got2))
	require.NoError(t, v.Commit(t1))
}

func TestDeadlockDetectionAbortsOneSide(t *testing.T) {
	v := openTestVM(t)

	setup, _ := v.Begin(ReadCommitted)
	uid1, _ := v.Insert(setup, []byte("row1"))
	uid2, _ := v.Insert(setup, []byte("row2"))
	v.Commit(setup)

	t1, _ := v.Begin(ReadCommitted)
	t2, _ := v.Begin(ReadCommitted)

	ok, err := v.Delete(t1, uid1)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = v.Delete(t2, uid2)
	require.NoError(t, err)
	require.True(t, ok)

	done := make(chan struct{ ok bool }, 1)
	go func() {
		ok, err := v.Delete(t1, uid2)
		done <- struct{ ok bool }{ok && err == nil}
	}()

	time.Sleep(20 * time.Millisecond)
	ok2, err2 := v.Delete(t2, uid1)

	var result struct{ ok bool }
	select {
	case result = <-done:
	case <-time.After(time.Second):
		t.Fatal("T1's delete never returned: deadlock not broken")
	}

	t1Succeeded := result.ok
	t2Succeeded := err2 == nil && ok2

	assert.NotEqual(t, t1Succeeded, t2Succeeded, "expected exactly one side to succeed")

	if t1Succeeded {
		v.Commit(t1)
		v.Abort(t2)
	} else {
		v.Commit(t2)
		v.Abort(t1)
	}
}

func TestVersionSkipAbortsRR(t *testing.T) {
	v := openTestVM(t)

	setup, _ := v.Begin(ReadCommitted)
	uid, _ := v.Insert(setup, []byte("alice"))
	v.Commit(setup)

	t1, _ := v.Begin(RepeatableRead)
	_, err := v.Read(t1, uid)
	require.NoError(t, err, "T1 initial read")

	t2, _ := v.Begin(ReadCommitted)
	ok, err := v.Delete(t2, uid)
	require.NoError(t, err)
	require.True(t, ok)
	v.Insert(t2, []byte("carol"))
	require.NoError(t, v.Commit(t2))

	_, err = v.Delete(t1, uid)
	assert.Error(t, err, "T1 delete should fail with a version-skip conflict")
	assert.True(t, t1.AutoAborted(), "T1 should be marked auto-aborted")
	assert.NoError(t, v.Abort(t1), "Abort of an auto-aborted tx should be a no-op")
}
