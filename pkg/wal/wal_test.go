package wal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wal")
	l, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestAppendScanRoundTrip(t *testing.T) {
	l, _ := openTestLog(t)

	records := [][]byte{
		EncodeInsert(1, 1, 0, []byte("hello")),
		EncodeUpdate(1, (1<<32)|0, []byte("old12"), []byte("new34")),
		EncodeInsert(2, 1, 5, []byte("world")),
	}
	for _, r := range records {
		require.NoError(t, l.Append(r))
	}

	l.Rewind()
	for i, want := range records {
		got, ok := l.Next()
		require.True(t, ok, "Next() stopped early at record %d", i)
		assert.Equal(t, string(want), string(got))
	}
	_, ok := l.Next()
	assert.False(t, ok, "Next() returned a record past the end of the log")
}

func TestInsertEncodeDecodeRoundTrip(t *testing.T) {
	raw := []byte("payload-bytes")
	data := EncodeInsert(42, 7, 100, raw)

	rec, err := DecodeInsert(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rec.XID)
	assert.Equal(t, uint32(7), rec.Pgno)
	assert.Equal(t, uint16(100), rec.Offset)
	assert.Equal(t, string(raw), string(rec.Raw))
}

func TestUpdateEncodeDecodeRoundTrip(t *testing.T) {
	oldRaw := []byte("before")
	newRaw := []byte("after!")
	data := EncodeUpdate(9, 12345, oldRaw, newRaw)

	rec, err := DecodeUpdate(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), rec.XID)
	assert.Equal(t, uint64(12345), rec.UID)
	assert.Equal(t, string(oldRaw), string(rec.OldRaw))
	assert.Equal(t, string(newRaw), string(rec.NewRaw))
}

func TestBadTailTruncatedOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wal")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(EncodeInsert(1, 1, 0, []byte("good"))))
	goodSize := l.size
	l.Close()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02})
	require.NoError(t, err)
	f.Close()

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	assert.Equal(t, goodSize, l2.size)

	l2.Rewind()
	got, ok := l2.Next()
	require.True(t, ok, "expected the good record to survive truncation")
	assert.Equal(t, string(EncodeInsert(1, 1, 0, []byte("good"))), string(got))

	_, ok = l2.Next()
	assert.False(t, ok, "garbage tail was not truncated")
}
