package vm

import "github.com/cuemby/quill/pkg/bin"

// entryHeaderLen is the width of an Entry's [xmin:8][xmax:8] header.
const entryHeaderLen = 16

func wrapEntry(xmin, xmax uint64, payload []byte) []byte {
	out := make([]byte, entryHeaderLen+len(payload))
	copy(out[0:8], bin.Uint64ToBytes(xmin))
	copy(out[8:16], bin.Uint64ToBytes(xmax))
	copy(out[entryHeaderLen:], payload)
	return out
}

func entryXmin(raw []byte) uint64 { return bin.BytesToUint64(raw[0:8]) }
func entryXmax(raw []byte) uint64 { return bin.BytesToUint64(raw[8:16]) }

func entrySetXmax(raw []byte, xmax uint64) {
	copy(raw[8:16], bin.Uint64ToBytes(xmax))
}

func entryPayload(raw []byte) []byte { return raw[entryHeaderLen:] }
