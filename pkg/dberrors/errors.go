package dberrors

import (
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/quill/pkg/log"
)

// Kind classifies an error for the engine's propagation policy.
type Kind int

const (
	KindStorage Kind = iota
	KindLogical
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindLogical:
		return "logical"
	case KindConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Storage/file sentinels.
var (
	ErrFileExists     = errors.New("file already exists")
	ErrFileNotExists  = errors.New("file does not exist")
	ErrFileCannotRW   = errors.New("file cannot be opened for read/write")
	ErrBadXIDFile     = errors.New("xid file is corrupted")
	ErrBadLogFile     = errors.New("log file is corrupted")
	ErrMemTooSmall    = errors.New("memory capacity too small")
	ErrDataTooLarge   = errors.New("data item too large for a page")
	ErrDatabaseBusy   = errors.New("database busy, no page with enough free space")
	ErrCacheFull      = errors.New("cache at capacity")
)

// Logical sentinels.
var (
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidField    = errors.New("invalid field definition")
	ErrInvalidValues   = errors.New("invalid values")
	ErrInvalidLogOp    = errors.New("invalid log record operation")
	ErrFieldNotFound   = errors.New("field not found")
	ErrFieldNotIndexed = errors.New("field is not indexed")
	ErrTableNotFound   = errors.New("table not found")
	ErrTableNoIndex    = errors.New("table has no indexed field")
	ErrDuplicatedTable = errors.New("table already exists")
	ErrNullEntry       = errors.New("entry does not exist")
	ErrInvalidPkgData  = errors.New("invalid transport packet data")
	ErrNotImplemented  = errors.New("not implemented")
)

// Concurrency sentinels.
var (
	ErrConcurrentUpdate  = errors.New("concurrent update conflict")
	ErrDeadlock          = errors.New("deadlock detected")
	ErrNestedTransaction = errors.New("nested transaction not allowed")
	ErrNoTransaction     = errors.New("no transaction in progress")
)

// Error wraps a sentinel with a Kind and contextual message so callers
// upstream (the executor) can map straight to a transport flag without
// string matching.
type Error struct {
	Kind Kind
	Err  error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches a Kind and message to a sentinel error.
func Wrap(kind Kind, sentinel error, msg string) *Error {
	return &Error{Kind: kind, Err: sentinel, Msg: msg}
}

// Storage is a convenience constructor for KindStorage errors.
func Storage(sentinel error, msg string) *Error {
	return Wrap(KindStorage, sentinel, msg)
}

// Logical is a convenience constructor for KindLogical errors.
func Logical(sentinel error, msg string) *Error {
	return Wrap(KindLogical, sentinel, msg)
}

// Concurrency is a convenience constructor for KindConcurrency errors.
func Concurrency(sentinel error, msg string) *Error {
	return Wrap(KindConcurrency, sentinel, msg)
}

// Fatal logs msg and err at fatal level and terminates the process. It is
// reserved for unrecoverable storage errors the core cannot continue
// past: a corrupt XID file, a failed fsync, or WAL corruption beyond the
// bad-tail boundary.
func Fatal(msg string, err error) {
	log.Logger.Fatal().Err(err).Msg(msg)
	// log.Logger.Fatal() already calls os.Exit(1); this is an explicit
	// backstop for loggers constructed without the fatal hook wired up
	// (e.g. a zero-value zerolog.Logger in a unit test harness).
	os.Exit(1)
}
