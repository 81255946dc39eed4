package dm

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDM(t *testing.T) *DM {
	t.Helper()
	dir := t.TempDir()
	pc, err := pagecache.Open(filepath.Join(dir, "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	lg, err := wal.Open(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	t.Cleanup(func() { lg.Close() })

	return Open(pc, lg, 0)
}

func TestInsertReadRoundTrip(t *testing.T) {
	d := openTestDM(t)

	uid, err := d.Insert(1, []byte("hello world"))
	require.NoError(t, err)

	got, err := d.Read(uid)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestBeforeAfterCommitsEdit(t *testing.T) {
	d := openTestDM(t)

	uid, _ := d.Insert(1, []byte("before"))

	it, payload, err := d.Before(uid)
	require.NoError(t, err)
	copy(payload, []byte("after!"))
	require.NoError(t, d.After(2, it))

	got, err := d.Read(uid)
	require.NoError(t, err)
	assert.Equal(t, "after!", string(got))
}

func TestUnBeforeRevertsEdit(t *testing.T) {
	d := openTestDM(t)

	uid, _ := d.Insert(1, []byte("stable"))

	it, payload, err := d.Before(uid)
	require.NoError(t, err)
	copy(payload, []byte("ruined"))
	d.UnBefore(it)

	got, err := d.Read(uid)
	require.NoError(t, err)
	assert.Equal(t, "stable", string(got))
}

func TestReadTombstonedItemFails(t *testing.T) {
	d := openTestDM(t)

	uid, _ := d.Insert(1, []byte("gone-soon"))
	it, err := d.cache.Acquire(uid)
	require.NoError(t, err)
	it.page.Lock()
	tombstone(it.page.Data, it.offset)
	it.page.Unlock()
	d.cache.Release(uid)

	_, err = d.Read(uid)
	require.Error(t, err, "Read should fail for a tombstoned item")
	var dbErr *dberrors.Error
	require.True(t, asDBError(err, &dbErr))
	assert.Equal(t, dberrors.ErrNullEntry, dbErr.Err)
}

func TestInsertAcrossMultiplePages(t *testing.T) {
	d := openTestDM(t)

	payload := make([]byte, 6000)
	for i := range payload {
		payload[i] = byte(i)
	}

	var uids []uint64
	for i := 0; i < 5; i++ {
		uid, err := d.Insert(1, payload)
		require.NoError(t, err)
		uids = append(uids, uid)
	}

	for _, uid := range uids {
		got, err := d.Read(uid)
		require.NoError(t, err)
		assert.Len(t, got, len(payload))
	}
}

func tombstone(data []byte, offset uint16) {
	data[offset] = 1
}

func asDBError(err error, target **dberrors.Error) bool {
	e, ok := err.(*dberrors.Error)
	if ok {
		*target = e
	}
	return ok
}
