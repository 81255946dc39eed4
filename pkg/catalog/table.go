package catalog

import "github.com/cuemby/quill/pkg/bin"

// Table is one table's metadata: its ordered Fields and its position in
// the catalog's singly-linked chain (NextTableUID).
type Table struct {
	Name         string
	NextTableUID uint64
	FieldUIDs    []uint64
	Fields       []*Field

	selfUID uint64 // this Table record's own VM UID, not persisted inline
}

// FieldDef describes a column at CREATE TABLE time.
type FieldDef struct {
	Name    string
	Type    FieldType
	Indexed bool
}

// Field returns the named field, or nil if the table has none by that
// name.
func (t *Table) Field(name string) *Field {
	return findField(t.Fields, name)
}

// encodeTable persists a Table as:
//
//	[name:len+bytes][nextTableUid:8]{[fieldUid:8]}*
func encodeTable(t *Table) []byte {
	out := bin.StringToBytes(t.Name)
	out = append(out, bin.Uint64ToBytes(t.NextTableUID)...)
	for _, fu := range t.FieldUIDs {
		out = append(out, bin.Uint64ToBytes(fu)...)
	}
	return out
}

func decodeTable(raw []byte) *Table {
	name, n := bin.BytesToString(raw)
	raw = raw[n:]
	next := bin.BytesToUint64(raw[:8])
	raw = raw[8:]
	var fieldUIDs []uint64
	for len(raw) >= 8 {
		fieldUIDs = append(fieldUIDs, bin.BytesToUint64(raw[:8]))
		raw = raw[8:]
	}
	return &Table{Name: name, NextTableUID: next, FieldUIDs: fieldUIDs}
}
