package catalog

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dberrors"
)

// FieldType enumerates the value kinds a Field can hold.
type FieldType int

const (
	TypeInt32 FieldType = iota
	TypeInt64
	TypeString
)

func (t FieldType) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// ParseFieldType is the inverse of FieldType.String, used when decoding a
// persisted Field record.
func ParseFieldType(s string) (FieldType, bool) {
	switch s {
	case "int32":
		return TypeInt32, true
	case "int64":
		return TypeInt64, true
	case "string":
		return TypeString, true
	default:
		return 0, false
	}
}

// Value is a typed row value, tagged by FieldType so encode/decode never
// need a separate schema lookup once a Value exists in memory.
type Value struct {
	Type  FieldType
	Int32 int32
	Int64 int64
	Str   string
}

func Int32Value(v int32) Value { return Value{Type: TypeInt32, Int32: v} }
func Int64Value(v int64) Value { return Value{Type: TypeInt64, Int64: v} }
func StringValue(v string) Value { return Value{Type: TypeString, Str: v} }

// encodeValue appends v's on-disk encoding: fixed-width for the integer
// types, length-prefixed for strings.
func encodeValue(v Value) []byte {
	switch v.Type {
	case TypeInt32:
		return bin.Int32ToBytes(v.Int32)
	case TypeInt64:
		return bin.Int64ToBytes(v.Int64)
	case TypeString:
		return bin.StringToBytes(v.Str)
	default:
		return nil
	}
}

// decodeValue reads one value of the given type from the front of data,
// returning the value and the number of bytes consumed.
func decodeValue(t FieldType, data []byte) (Value, int) {
	switch t {
	case TypeInt32:
		return Int32Value(bin.BytesToInt32(data[:4])), 4
	case TypeInt64:
		return Int64Value(bin.BytesToInt64(data[:8])), 8
	case TypeString:
		s, n := bin.BytesToString(data)
		return StringValue(s), n
	default:
		return Value{}, 0
	}
}

// value2Key maps a typed Value onto the signed 64-bit key space
// pkg/bplustree indexes on: an int32 sign-extends, an int64 passes
// through, and a string folds through a 64-bit hash. The hash fold
// means two distinct strings can collide onto the same key — an
// accepted, documented limitation (see DESIGN.md), not a bug to fix here.
func value2Key(v Value) int64 {
	switch v.Type {
	case TypeInt32:
		return int64(v.Int32)
	case TypeInt64:
		return v.Int64
	case TypeString:
		return int64(xxhash.Sum64String(v.Str))
	default:
		return 0
	}
}

func valuesEncode(fields []*Field, values []Value) ([]byte, error) {
	if len(values) != len(fields) {
		return nil, dberrors.Logical(dberrors.ErrInvalidValues, "value count does not match field count")
	}
	var out []byte
	for i, f := range fields {
		if values[i].Type != f.Type {
			return nil, dberrors.Logical(dberrors.ErrInvalidValues, "value type does not match field "+f.Name)
		}
		out = append(out, encodeValue(values[i])...)
	}
	return out, nil
}

func valuesDecode(fields []*Field, raw []byte) []Value {
	values := make([]Value, len(fields))
	for i, f := range fields {
		v, n := decodeValue(f.Type, raw)
		values[i] = v
		raw = raw[n:]
	}
	return values
}
