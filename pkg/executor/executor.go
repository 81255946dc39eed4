package executor

import (
	"sync"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/statement"
	"github.com/cuemby/quill/pkg/vm"
	"github.com/rs/zerolog"
)

// Executor dispatches statements against a Catalog, holding at most one
// outstanding transaction at a time.
type Executor struct {
	catalog *catalog.Catalog
	vm      *vm.VM

	mu sync.Mutex
	tx *vm.Transaction

	log zerolog.Logger
}

// New wires an Executor over an already-open Catalog and VM.
func New(c *catalog.Catalog, v *vm.VM) *Executor {
	return &Executor{catalog: c, vm: v, log: log.WithComponent("executor")}
}

// Execute runs one statement and returns its result.
func (e *Executor) Execute(stmt *statement.Statement) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch stmt.Kind {
	case statement.KindBegin:
		return e.begin(stmt)
	case statement.KindCommit:
		return e.commit()
	case statement.KindAbort:
		return e.abort()
	case statement.KindShow:
		return &Result{Tables: e.catalog.TableNames()}, nil
	default:
		return e.executeImplicit(stmt)
	}
}

func (e *Executor) begin(stmt *statement.Statement) (*Result, error) {
	if e.tx != nil {
		return nil, dberrors.Concurrency(dberrors.ErrNestedTransaction, "")
	}
	tx, err := e.vm.Begin(stmt.Level)
	if err != nil {
		return nil, err
	}
	e.tx = tx
	return &Result{}, nil
}

func (e *Executor) commit() (*Result, error) {
	if e.tx == nil {
		return nil, dberrors.Concurrency(dberrors.ErrNoTransaction, "")
	}
	tx := e.tx
	e.tx = nil
	if err := e.vm.Commit(tx); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func (e *Executor) abort() (*Result, error) {
	if e.tx == nil {
		return nil, dberrors.Concurrency(dberrors.ErrNoTransaction, "")
	}
	tx := e.tx
	e.tx = nil
	if err := e.vm.Abort(tx); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

// executeImplicit runs a Create/Drop/Select/Insert/Delete/Update against
// the current transaction, opening and committing (or aborting) an
// implicit one if none was already explicitly begun.
func (e *Executor) executeImplicit(stmt *statement.Statement) (*Result, error) {
	implicit := e.tx == nil
	tx := e.tx
	if implicit {
		var err error
		tx, err = e.vm.Begin(vm.ReadCommitted)
		if err != nil {
			return nil, err
		}
	}

	result, err := e.dispatch(tx, stmt)

	if implicit {
		if err != nil {
			if abortErr := e.vm.Abort(tx); abortErr != nil {
				e.log.Error().Err(abortErr).Msg("failed to abort implicit transaction")
			}
			return nil, err
		}
		if commitErr := e.vm.Commit(tx); commitErr != nil {
			return nil, commitErr
		}
		return result, nil
	}

	if err != nil && tx.AutoAborted() {
		// VM already tore down the transaction (deadlock/version-skip);
		// this executor no longer has one outstanding.
		e.tx = nil
	}
	return result, err
}

func (e *Executor) dispatch(tx *vm.Transaction, stmt *statement.Statement) (*Result, error) {
	switch stmt.Kind {
	case statement.KindCreate:
		if err := e.catalog.CreateTable(stmt.Table, stmt.Fields); err != nil {
			return nil, err
		}
		return &Result{}, nil

	case statement.KindDrop:
		if err := e.catalog.DropTable(stmt.Table); err != nil {
			return nil, err
		}
		return &Result{}, nil

	case statement.KindSelect:
		rows, err := e.catalog.Select(tx, stmt.Table, stmt.Where)
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil

	case statement.KindInsert:
		if _, err := e.catalog.Insert(tx, stmt.Table, stmt.Values); err != nil {
			return nil, err
		}
		metrics.RowsInsertedTotal.Inc()
		return &Result{Affected: 1}, nil

	case statement.KindDelete:
		n, err := e.catalog.Delete(tx, stmt.Table, stmt.Where)
		if err != nil {
			return nil, err
		}
		return &Result{Affected: n}, nil

	case statement.KindUpdate:
		n, err := e.catalog.Update(tx, stmt.Table, stmt.SetField, stmt.SetValue, stmt.Where)
		if err != nil {
			return nil, err
		}
		return &Result{Affected: n}, nil

	default:
		return nil, dberrors.Logical(dberrors.ErrInvalidCommand, string(stmt.Kind))
	}
}
