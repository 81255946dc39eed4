package tm

import (
	"fmt"
	"os"
	"sync"

	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/rs/zerolog"
)

// Status is the on-disk state of an XID.
type Status byte

const (
	StatusActive    Status = 0
	StatusCommitted Status = 1
	StatusAborted   Status = 2
)

const (
	lenCounter = 8
	// SuperXID is always considered committed and is never recorded.
	SuperXID uint64 = 0
)

// TM is the transaction manager. It owns the XID status file and is safe
// for concurrent use.
type TM struct {
	mu      sync.Mutex
	file    *os.File
	counter uint64
	log     zerolog.Logger
}

// Open opens (creating if absent) the XID file at path and validates its
// size against the persisted counter.
func Open(path string) (*TM, error) {
	lg := log.WithComponent("tm")

	_, statErr := os.Stat(path)
	create := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}

	t := &TM{file: f, log: lg}

	if create {
		if err := t.writeCounter(0); err != nil {
			f.Close()
			return nil, err
		}
		t.counter = 0
		return t, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}
	if info.Size() < lenCounter {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrBadXIDFile, "file shorter than counter header")
	}

	counterBuf := make([]byte, lenCounter)
	if _, err := f.ReadAt(counterBuf, 0); err != nil {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrBadXIDFile, err.Error())
	}
	counter := bin.BytesToUint64(counterBuf)

	if info.Size() != lenCounter+int64(counter) {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrBadXIDFile,
			fmt.Sprintf("file size %d does not match counter %d", info.Size(), counter))
	}

	t.counter = counter
	return t, nil
}

func (t *TM) writeCounter(v uint64) error {
	if _, err := t.file.WriteAt(bin.Uint64ToBytes(v), 0); err != nil {
		return dberrors.Storage(dberrors.ErrBadXIDFile, err.Error())
	}
	return t.file.Sync()
}

func statusOffset(xid uint64) int64 {
	return lenCounter + int64(xid-1)
}

func (t *TM) writeStatus(xid uint64, s Status) error {
	if _, err := t.file.WriteAt([]byte{byte(s)}, statusOffset(xid)); err != nil {
		return dberrors.Storage(dberrors.ErrBadXIDFile, err.Error())
	}
	return t.file.Sync()
}

func (t *TM) readStatus(xid uint64) (Status, error) {
	buf := make([]byte, 1)
	if _, err := t.file.ReadAt(buf, statusOffset(xid)); err != nil {
		return 0, dberrors.Storage(dberrors.ErrBadXIDFile, err.Error())
	}
	return Status(buf[0]), nil
}

// Begin allocates a new XID, persists it as active, and returns it.
func (t *TM) Begin() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	xid := t.counter + 1
	if err := t.writeStatus(xid, StatusActive); err != nil {
		return 0, err
	}
	if err := t.writeCounter(xid); err != nil {
		return 0, err
	}
	t.counter = xid
	t.log.Debug().Uint64("xid", xid).Msg("began transaction")
	return xid, nil
}

// Commit marks xid committed.
func (t *TM) Commit(xid uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writeStatus(xid, StatusCommitted); err != nil {
		return err
	}
	t.log.Debug().Uint64("xid", xid).Msg("committed transaction")
	return nil
}

// Abort marks xid aborted.
func (t *TM) Abort(xid uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writeStatus(xid, StatusAborted); err != nil {
		return err
	}
	t.log.Debug().Uint64("xid", xid).Msg("aborted transaction")
	return nil
}

func (t *TM) isStatus(xid uint64, want Status) bool {
	if xid == SuperXID {
		return want == StatusCommitted
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.readStatus(xid)
	if err != nil {
		dberrors.Fatal("failed to read xid status", err)
	}
	return s == want
}

// IsActive reports whether xid is currently active. XID 0 is never active.
func (t *TM) IsActive(xid uint64) bool {
	if xid == SuperXID {
		return false
	}
	return t.isStatus(xid, StatusActive)
}

// IsCommitted reports whether xid committed. XID 0 is always committed.
func (t *TM) IsCommitted(xid uint64) bool {
	return t.isStatus(xid, StatusCommitted)
}

// IsAborted reports whether xid aborted. XID 0 is never aborted.
func (t *TM) IsAborted(xid uint64) bool {
	if xid == SuperXID {
		return false
	}
	return t.isStatus(xid, StatusAborted)
}

// Close releases the underlying file handle.
func (t *TM) Close() error {
	return t.file.Close()
}
