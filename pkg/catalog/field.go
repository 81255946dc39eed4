package catalog

import (
	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/bplustree"
	"github.com/cuemby/quill/pkg/dberrors"
)

// Field is one column of a Table: a name, a value type, and — if indexed
// — the boot UID of the pkg/bplustree.Tree keyed by value2Key(value).
type Field struct {
	Name         string
	Type         FieldType
	IndexBootUID uint64 // 0 if this field carries no index

	tree *bplustree.Tree
}

// encodeField persists a Field as:
//
//	[name:len+bytes][type:len+bytes][indexBootUid:8]
func encodeField(f *Field) []byte {
	out := bin.StringToBytes(f.Name)
	out = append(out, bin.StringToBytes(f.Type.String())...)
	out = append(out, bin.Uint64ToBytes(f.IndexBootUID)...)
	return out
}

func decodeField(raw []byte) (*Field, error) {
	name, n := bin.BytesToString(raw)
	raw = raw[n:]
	typeStr, n := bin.BytesToString(raw)
	raw = raw[n:]
	ft, ok := ParseFieldType(typeStr)
	if !ok {
		return nil, dberrors.Logical(dberrors.ErrInvalidField, "unknown field type "+typeStr)
	}
	bootUID := bin.BytesToUint64(raw[:8])
	return &Field{Name: name, Type: ft, IndexBootUID: bootUID}, nil
}

func findField(fields []*Field, name string) *Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
