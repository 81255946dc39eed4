package bin

import "encoding/binary"

// Int32ToBytes encodes a signed 32-bit integer as 4 big-endian bytes.
func Int32ToBytes(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

// BytesToInt32 is the inverse of Int32ToBytes.
func BytesToInt32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

// Int64ToBytes encodes a signed 64-bit integer as 8 big-endian bytes.
func Int64ToBytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// BytesToInt64 is the inverse of Int64ToBytes.
func BytesToInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// Uint64ToBytes encodes an unsigned 64-bit integer (XIDs, UIDs) as 8
// big-endian bytes.
func Uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// BytesToUint64 is the inverse of Uint64ToBytes.
func BytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// Uint32ToBytes encodes an unsigned 32-bit integer as 4 big-endian bytes.
func Uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// BytesToUint32 is the inverse of Uint32ToBytes.
func BytesToUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// Uint16ToBytes encodes an unsigned 16-bit integer as 2 big-endian bytes.
func Uint16ToBytes(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// BytesToUint16 is the inverse of Uint16ToBytes.
func BytesToUint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// StringToBytes encodes s as a 4-byte big-endian length prefix followed by
// its UTF-8 bytes.
func StringToBytes(s string) []byte {
	raw := []byte(s)
	out := make([]byte, 4+len(raw))
	binary.BigEndian.PutUint32(out, uint32(len(raw)))
	copy(out[4:], raw)
	return out
}

// BytesToString decodes a length-prefixed string produced by StringToBytes
// and returns the string along with the number of bytes consumed.
func BytesToString(b []byte) (string, int) {
	n := binary.BigEndian.Uint32(b[:4])
	return string(b[4 : 4+n]), int(4 + n)
}
