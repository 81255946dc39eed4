package vm

import (
	"sync"
	"time"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/locktable"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/rs/zerolog"
)

// VM is the version manager: it layers MVCC visibility and conflict
// arbitration over pkg/dm's DataItems.
type VM struct {
	dm *dm.DM
	tm *tm.TM
	lt *locktable.LockTable

	mu     sync.Mutex
	active map[uint64]*Transaction

	log zerolog.Logger
}

// Open wires a VM over an already-open DM, TM, and LockTable.
func Open(d *dm.DM, t *tm.TM, lt *locktable.LockTable) *VM {
	return &VM{
		dm:     d,
		tm:     t,
		lt:     lt,
		active: make(map[uint64]*Transaction),
		log:    log.WithComponent("vm"),
	}
}

// Begin starts a new transaction at the given isolation level.
func (vm *VM) Begin(level Level) (*Transaction, error) {
	xid, err := vm.tm.Begin()
	if err != nil {
		return nil, err
	}
	tx := &Transaction{XID: xid, Level: level}

	vm.mu.Lock()
	if level == RepeatableRead {
		snap := make(map[uint64]struct{}, len(vm.active))
		for activeXID := range vm.active {
			snap[activeXID] = struct{}{}
		}
		tx.Snapshot = snap
	}
	vm.active[xid] = tx
	vm.mu.Unlock()

	metrics.TxActive.Inc()
	return tx, nil
}

// Insert wraps data as a fresh Entry created by tx and returns its UID.
func (vm *VM) Insert(tx *Transaction, data []byte) (uint64, error) {
	wrapped := wrapEntry(tx.XID, 0, data)
	return vm.dm.Insert(tx.XID, wrapped)
}

// Read returns a copy of the payload at uid if it is visible to tx, or
// dberrors.ErrNullEntry if it is not (deleted, not yet committed, or
// outside tx's snapshot).
func (vm *VM) Read(tx *Transaction, uid uint64) ([]byte, error) {
	raw, err := vm.dm.Read(uid)
	if err != nil {
		return nil, err
	}
	if !vm.visible(tx, entryXmin(raw), entryXmax(raw)) {
		return nil, dberrors.Logical(dberrors.ErrNullEntry, "")
	}
	payload := entryPayload(raw)
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp, nil
}

// Delete marks the row at uid deleted by tx. It
// returns (false, nil) if the row was not visible to tx or the delete
// is idempotent (tx already deleted it); it returns (false, err) with
// tx auto-aborted if a deadlock or version-skip is detected.
func (vm *VM) Delete(tx *Transaction, uid uint64) (bool, error) {
	raw, err := vm.dm.Read(uid)
	if err != nil {
		return false, nil
	}
	if !vm.visible(tx, entryXmin(raw), entryXmax(raw)) {
		return false, nil
	}

	waitCh, err := vm.lt.Add(tx.XID, uid)
	if err != nil {
		vm.autoAbort(tx, err)
		return false, err
	}
	if waitCh != nil {
		start := time.Now()
		<-waitCh
		metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	}

	raw, err = vm.dm.Read(uid)
	if err != nil {
		return false, nil
	}
	xmax := entryXmax(raw)
	if xmax == tx.XID {
		return false, nil
	}

	if tx.Level == RepeatableRead && vm.versionSkip(tx, xmax) {
		metrics.VersionSkipsTotal.Inc()
		skipErr := dberrors.Concurrency(dberrors.ErrConcurrentUpdate, "version skip")
		vm.autoAbort(tx, skipErr)
		return false, skipErr
	}

	it, payload, err := vm.dm.Before(uid)
	if err != nil {
		return false, err
	}
	entrySetXmax(payload, tx.XID)
	if err := vm.dm.After(tx.XID, it); err != nil {
		return false, err
	}
	return true, nil
}

// Commit removes tx from the active set and the lock table and marks
// its XID committed.
func (vm *VM) Commit(tx *Transaction) error {
	vm.mu.Lock()
	delete(vm.active, tx.XID)
	vm.mu.Unlock()
	vm.lt.Remove(tx.XID)
	metrics.TxActive.Dec()
	metrics.TxCommittedTotal.Inc()
	return vm.tm.Commit(tx.XID)
}

// Abort removes tx from the active set and the lock table and marks its
// XID aborted. It is a no-op if tx was already auto-aborted.
func (vm *VM) Abort(tx *Transaction) error {
	if tx.autoAborted {
		return nil
	}
	vm.mu.Lock()
	delete(vm.active, tx.XID)
	vm.mu.Unlock()
	vm.lt.Remove(tx.XID)
	metrics.TxActive.Dec()
	metrics.TxAbortedTotal.Inc()
	return vm.tm.Abort(tx.XID)
}

func (vm *VM) autoAbort(tx *Transaction, err error) {
	tx.err = err
	tx.autoAborted = true
	vm.mu.Lock()
	delete(vm.active, tx.XID)
	vm.mu.Unlock()
	vm.lt.Remove(tx.XID)
	metrics.TxActive.Dec()
	metrics.TxAbortedTotal.Inc()
	if abortErr := vm.tm.Abort(tx.XID); abortErr != nil {
		vm.log.Error().Err(abortErr).Uint64("xid", tx.XID).Msg("failed to persist auto-abort")
	}
}

// visible implements the Read Committed / Repeatable Read visibility
// formulas.
func (vm *VM) visible(tx *Transaction, xmin, xmax uint64) bool {
	if xmin == tx.XID && xmax == 0 {
		return true
	}

	if tx.Level == ReadCommitted {
		if !vm.tm.IsCommitted(xmin) {
			return false
		}
		return xmax == 0 || (xmax != tx.XID && !vm.tm.IsCommitted(xmax))
	}

	if !vm.tm.IsCommitted(xmin) || xmin >= tx.XID || tx.inSnapshot(xmin) {
		return false
	}
	if xmax == 0 {
		return true
	}
	return xmax != tx.XID && (!vm.tm.IsCommitted(xmax) || xmax > tx.XID || tx.inSnapshot(xmax))
}

// versionSkip is the RR-only condition: a committed deleter newer than
// tx's snapshot means proceeding would silently lose a committed update.
func (vm *VM) versionSkip(tx *Transaction, xmax uint64) bool {
	if xmax == 0 {
		return false
	}
	return vm.tm.IsCommitted(xmax) && (xmax > tx.XID || tx.inSnapshot(xmax))
}
