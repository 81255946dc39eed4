package wal

import (
	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dberrors"
)

// Log record type tags.
const (
	LogTypeInsert byte = 0
	LogTypeUpdate byte = 1
)

const (
	insertHeaderLen = 1 + 8 + 4 + 2 // type + xid + pgno + offset
	updateHeaderLen = 1 + 8 + 8     // type + xid + uid
)

// InsertRecord is the decoded form of an insert log record:
// [type=0:1][xid:8][pgno:4][offset:2][raw:*].
type InsertRecord struct {
	XID    uint64
	Pgno   uint32
	Offset uint16
	Raw    []byte
}

// EncodeInsert builds the byte form of an insert log record.
func EncodeInsert(xid uint64, pgno uint32, offset uint16, raw []byte) []byte {
	out := make([]byte, insertHeaderLen+len(raw))
	out[0] = LogTypeInsert
	copy(out[1:9], bin.Uint64ToBytes(xid))
	copy(out[9:13], bin.Uint32ToBytes(pgno))
	copy(out[13:15], bin.Uint16ToBytes(offset))
	copy(out[15:], raw)
	return out
}

// DecodeInsert parses an insert log record body.
func DecodeInsert(data []byte) (InsertRecord, error) {
	if len(data) < insertHeaderLen || data[0] != LogTypeInsert {
		return InsertRecord{}, dberrors.Logical(dberrors.ErrInvalidLogOp, "not an insert record")
	}
	return InsertRecord{
		XID:    bin.BytesToUint64(data[1:9]),
		Pgno:   bin.BytesToUint32(data[9:13]),
		Offset: bin.BytesToUint16(data[13:15]),
		Raw:    data[15:],
	}, nil
}

// UpdateRecord is the decoded form of an update log record:
// [type=1:1][xid:8][uid:8][oldRaw:N][newRaw:N].
type UpdateRecord struct {
	XID    uint64
	UID    uint64
	OldRaw []byte
	NewRaw []byte
}

// EncodeUpdate builds the byte form of an update log record. oldRaw and
// newRaw must be the same length (a DataItem's raw payload never changes
// size across an update).
func EncodeUpdate(xid uint64, uid uint64, oldRaw, newRaw []byte) []byte {
	out := make([]byte, updateHeaderLen+len(oldRaw)+len(newRaw))
	out[0] = LogTypeUpdate
	copy(out[1:9], bin.Uint64ToBytes(xid))
	copy(out[9:17], bin.Uint64ToBytes(uid))
	copy(out[17:17+len(oldRaw)], oldRaw)
	copy(out[17+len(oldRaw):], newRaw)
	return out
}

// DecodeUpdate parses an update log record body. N = (len(data)-17)/2.
func DecodeUpdate(data []byte) (UpdateRecord, error) {
	if len(data) < updateHeaderLen || data[0] != LogTypeUpdate {
		return UpdateRecord{}, dberrors.Logical(dberrors.ErrInvalidLogOp, "not an update record")
	}
	n := (len(data) - updateHeaderLen) / 2
	return UpdateRecord{
		XID:    bin.BytesToUint64(data[1:9]),
		UID:    bin.BytesToUint64(data[9:17]),
		OldRaw: data[updateHeaderLen : updateHeaderLen+n],
		NewRaw: data[updateHeaderLen+n:],
	}, nil
}

// RecordXID extracts the XID from either record type without fully
// decoding it, for the recovery pass's redo/undo bucketing.
func RecordXID(data []byte) (uint64, error) {
	if len(data) < 9 {
		return 0, dberrors.Logical(dberrors.ErrInvalidLogOp, "record too short")
	}
	switch data[0] {
	case LogTypeInsert, LogTypeUpdate:
		return bin.BytesToUint64(data[1:9]), nil
	default:
		return 0, dberrors.Logical(dberrors.ErrInvalidLogOp, "unknown log record type")
	}
}
