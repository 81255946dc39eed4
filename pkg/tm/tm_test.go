package tm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTM(t *testing.T) *TM {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xid")
	tm, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { tm.Close() })
	return tm
}

func TestBeginAssignsIncreasingXIDs(t *testing.T) {
	tm := openTestTM(t)

	x1, err := tm.Begin()
	require.NoError(t, err)
	assert.EqualValues(t, 1, x1)
	x2, err := tm.Begin()
	require.NoError(t, err)
	assert.EqualValues(t, 2, x2)

	assert.True(t, tm.IsActive(x1))
	assert.True(t, tm.IsActive(x2))
}

func TestCommitAbortTransitions(t *testing.T) {
	tm := openTestTM(t)

	x1, _ := tm.Begin()
	require.NoError(t, tm.Commit(x1))
	assert.True(t, tm.IsCommitted(x1))
	assert.False(t, tm.IsActive(x1))
	assert.False(t, tm.IsAborted(x1))

	x2, _ := tm.Begin()
	require.NoError(t, tm.Abort(x2))
	assert.True(t, tm.IsAborted(x2))
	assert.False(t, tm.IsActive(x2))
	assert.False(t, tm.IsCommitted(x2))
}

func TestSuperXIDAlwaysCommitted(t *testing.T) {
	tm := openTestTM(t)
	assert.True(t, tm.IsCommitted(SuperXID))
	assert.False(t, tm.IsActive(SuperXID))
	assert.False(t, tm.IsAborted(SuperXID))
}

func TestReopenPreservesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xid")
	tm1, err := Open(path)
	require.NoError(t, err)
	x1, _ := tm1.Begin()
	tm1.Commit(x1)
	tm1.Close()

	tm2, err := Open(path)
	require.NoError(t, err)
	defer tm2.Close()

	assert.True(t, tm2.IsCommitted(x1), "reopened tm should see committed xid")

	x2, err := tm2.Begin()
	require.NoError(t, err)
	assert.EqualValues(t, 2, x2)
}
