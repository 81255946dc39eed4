package executor

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/locktable"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/statement"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/vm"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestExecutor(t *testing.T) *Executor {
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
	v := vm.Open(d, tMgr, lt)

	c, err := catalog.Open(d, v, filepath.Join(dir, "test.bt"))
	require.NoError(t, err)
	return New(c, v)
}

func mustCreate(t *testing.T, e *Executor) {
	t.Helper()
	_, err := e.Execute(statement.Create("users", []catalog.FieldDef{
		{Name: "id", Type: catalog.TypeInt64, Indexed: true},
		{Name: "name", Type: catalog.TypeString},
	}))
	require.NoError(t, err)
}

func TestImplicitTransactionCommitsOnSuccess(t *testing.T) {
	e := openTestExecutor(t)
	mustCreate(t, e)

	_, err := e.Execute(statement.Insert("users", []catalog.Value{
		catalog.Int64Value(1), catalog.StringValue("ada"),
	}))
	require.NoError(t, err)

	res, err := e.Execute(statement.Select("users", catalog.Equals("id", catalog.Int64Value(1))))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
}

func TestExplicitTransactionGroupsStatements(t *testing.T) {
	e := openTestExecutor(t)
	mustCreate(t, e)

	_, err := e.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	_, err = e.Execute(statement.Insert("users", []catalog.Value{
		catalog.Int64Value(1), catalog.StringValue("ada"),
	}))
	require.NoError(t, err)
	_, err = e.Execute(statement.Commit())
	require.NoError(t, err)

	res, err := e.Execute(statement.Select("users", nil))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
}

func TestNestedBeginFails(t *testing.T) {
	e := openTestExecutor(t)
	_, err := e.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	_, err = e.Execute(statement.Begin(vm.ReadCommitted))
	assert.Error(t, err, "expected nested begin to fail")
}

func TestCommitWithoutTransactionFails(t *testing.T) {
	e := openTestExecutor(t)
	_, err := e.Execute(statement.Commit())
	assert.Error(t, err, "expected commit without a transaction to fail")
}

func TestAbortRollsBackExplicitTransaction(t *testing.T) {
	e := openTestExecutor(t)
	mustCreate(t, e)

	_, err := e.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	_, err = e.Execute(statement.Insert("users", []catalog.Value{
		catalog.Int64Value(1), catalog.StringValue("ada"),
	}))
	require.NoError(t, err)
	_, err = e.Execute(statement.Abort())
	require.NoError(t, err)

	res, err := e.Execute(statement.Select("users", nil))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestShowListsTables(t *testing.T) {
	e := openTestExecutor(t)
	mustCreate(t, e)

	res, err := e.Execute(statement.Show())
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "users", res.Tables[0])
}

func TestDropIsRejected(t *testing.T) {
	e := openTestExecutor(t)
	mustCreate(t, e)
	_, err := e.Execute(statement.Drop("users"))
	assert.Error(t, err, "expected drop to be rejected")
}
