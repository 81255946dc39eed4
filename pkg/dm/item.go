package dm

import (
	"sync"

	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/page"
)

// itemHeaderLen is the width of a DataItem's [valid:1][size:2] header.
const itemHeaderLen = 3

// Item is a resident handle onto one DataItem. It holds a reference to
// its owning page for as long as it is cached.
type Item struct {
	uid    uint64
	pgno   uint32
	offset uint16

	page *page.Page

	mu     sync.RWMutex
	oldRaw []byte // set between Before and After/UnBefore
}

// UID returns the item's UID.
func (it *Item) UID() uint64 { return it.uid }

func newUID(pgno uint32, offset uint16) uint64 {
	return uint64(pgno)<<32 | uint64(offset)
}

func uidPgno(uid uint64) uint32   { return uint32(uid >> 32) }
func uidOffset(uid uint64) uint16 { return uint16(uid) }

func wrapItem(payload []byte) []byte {
	out := make([]byte, itemHeaderLen+len(payload))
	out[0] = 0 // valid
	copy(out[1:itemHeaderLen], bin.Uint16ToBytes(uint16(len(payload))))
	copy(out[itemHeaderLen:], payload)
	return out
}

// readHeader reads the valid flag and payload size from data at offset.
func readHeader(data []byte, offset uint16) (valid byte, size uint16) {
	valid = data[offset]
	size = bin.BytesToUint16(data[offset+1 : offset+itemHeaderLen])
	return
}

// rawAt returns the full wrapped item bytes (header+payload) at offset.
func rawAt(data []byte, offset uint16) []byte {
	_, size := readHeader(data, offset)
	total := itemHeaderLen + size
	return data[offset : offset+total]
}

// payloadAt returns the payload slice (no header) at offset.
func payloadAt(data []byte, offset uint16) []byte {
	_, size := readHeader(data, offset)
	start := offset + itemHeaderLen
	return data[start : start+size]
}
