package page

import "github.com/cuemby/quill/pkg/bin"

// fsoLen is the width of the free-space-offset header at the start of
// every ordinary page.
const fsoLen = 2

// OrdinaryHeaderSize is the number of header bytes before payload data
// begins on an ordinary page.
const OrdinaryHeaderSize = fsoLen

// InitOrdinaryRaw returns a blank ordinary page: FSO set to just past the
// header, no payload.
func InitOrdinaryRaw() []byte {
	data := make([]byte, Size)
	SetFSO(data, OrdinaryHeaderSize)
	return data
}

// GetFSO reads the free-space offset from an ordinary page's bytes.
func GetFSO(data []byte) uint16 {
	return bin.BytesToUint16(data[:fsoLen])
}

// SetFSO writes the free-space offset into an ordinary page's bytes.
func SetFSO(data []byte, fso uint16) {
	copy(data[:fsoLen], bin.Uint16ToBytes(fso))
}

// FreeSpace returns the number of unused bytes remaining on the page.
func FreeSpace(data []byte) uint16 {
	return uint16(Size) - GetFSO(data)
}

// Insert appends raw to the page's payload at the current FSO, advances
// FSO, and returns the offset raw was written at. The caller is
// responsible for verifying raw fits (len(raw) <= FreeSpace(data)).
func Insert(data []byte, raw []byte) uint16 {
	offset := GetFSO(data)
	copy(data[offset:], raw)
	SetFSO(data, offset+uint16(len(raw)))
	return offset
}

// RecoverInsert rewrites raw at a specific offset during redo/undo
// replay, raising FSO only if the write extends past the current one.
func RecoverInsert(data []byte, raw []byte, offset uint16) {
	copy(data[offset:], raw)
	if end := offset + uint16(len(raw)); end > GetFSO(data) {
		SetFSO(data, end)
	}
}

// RecoverUpdate rewrites raw at a specific offset during redo/undo
// replay. Unlike RecoverInsert, the write never needs to move FSO: the
// record already existed at that offset with the same length.
func RecoverUpdate(data []byte, raw []byte, offset uint16) {
	copy(data[offset:], raw)
}
