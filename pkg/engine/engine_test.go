package engine

import (
	"testing"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/config"
	"github.com/cuemby/quill/pkg/statement"
	"github.com/cuemby/quill/pkg/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersFields() []catalog.FieldDef {
	return []catalog.FieldDef{
		{Name: "id", Type: catalog.TypeInt32, Indexed: true},
		{Name: "name", Type: catalog.TypeString},
	}
}

// TestCreateInsertSelectRoundTrip exercises a full create/insert/select
// round trip through the executor.
func TestCreateInsertSelectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(config.Default(dir))
	require.NoError(t, err)
	defer e.Close()

	ex := e.NewExecutor()
	_, err = ex.Execute(statement.Create("t", usersFields()))
	require.NoError(t, err)

	_, err = ex.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	_, err = ex.Execute(statement.Insert("t", []catalog.Value{
		catalog.Int32Value(1), catalog.StringValue("alice"),
	}))
	require.NoError(t, err)
	_, err = ex.Execute(statement.Insert("t", []catalog.Value{
		catalog.Int32Value(2), catalog.StringValue("bob"),
	}))
	require.NoError(t, err)
	_, err = ex.Execute(statement.Commit())
	require.NoError(t, err)

	res, err := ex.Execute(statement.Select("t", catalog.Equals("id", catalog.Int32Value(1))))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "alice", res.Rows[0][1].Str)

	res, err = ex.Execute(statement.Select("t", catalog.GreaterThan("id", catalog.Int32Value(0))))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

// TestCrashRecoveryPreservesOnlyCommittedRows covers an engine
// abandoned mid-transaction (never closed): on reopen it must run
// recovery and surface only the committed rows.
func TestCrashRecoveryPreservesOnlyCommittedRows(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)

	e1, err := Open(cfg)
	require.NoError(t, err)

	ex1 := e1.NewExecutor()
	_, err = ex1.Execute(statement.Create("t", usersFields()))
	require.NoError(t, err)

	_, err = ex1.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = ex1.Execute(statement.Insert("t", []catalog.Value{
			catalog.Int32Value(int32(i)), catalog.StringValue("committed"),
		}))
		require.NoError(t, err)
	}
	_, err = ex1.Execute(statement.Commit())
	require.NoError(t, err)

	ex2 := e1.NewExecutor()
	_, err = ex2.Execute(statement.Begin(vm.ReadCommitted))
	require.NoError(t, err)
	for i := 100; i < 102; i++ {
		_, err = ex2.Execute(statement.Insert("t", []catalog.Value{
			catalog.Int32Value(int32(i)), catalog.StringValue("uncommitted"),
		}))
		require.NoError(t, err)
	}
	// Simulate a crash: abandon e1 without calling Close (no clean
	// shutdown marker, no final flush of t2's uncommitted writes).

	e2, err := Open(cfg)
	require.NoError(t, err)
	defer e2.Close()

	assert.True(t, e2.Recovered, "expected reopen to detect an unclean shutdown")

	ex3 := e2.NewExecutor()
	res, err := ex3.Execute(statement.Select("t", nil))
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	for _, row := range res.Rows {
		assert.Equal(t, "committed", row[1].Str)
	}
}
