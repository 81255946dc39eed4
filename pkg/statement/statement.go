package statement

import (
	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/vm"
)

// Kind tags which statement variant a Statement carries, mirroring the
// op-string-plus-payload dispatch the rest of this codebase's lineage
// uses for command records.
type Kind string

const (
	KindBegin  Kind = "begin"
	KindCommit Kind = "commit"
	KindAbort  Kind = "abort"
	KindShow   Kind = "show"
	KindCreate Kind = "create"
	KindDrop   Kind = "drop"
	KindSelect Kind = "select"
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
	KindUpdate Kind = "update"
)

// Statement is a tagged record produced by a SQL frontend (out of scope
// for this engine) and consumed by pkg/executor. Only the fields
// relevant to Kind are populated.
type Statement struct {
	Kind Kind

	// Begin
	Level vm.Level

	// Show / Create / Drop / Select / Insert / Delete / Update
	Table string

	// Create
	Fields []catalog.FieldDef

	// Select / Delete / Update
	Where *catalog.Where

	// Insert
	Values []catalog.Value

	// Update
	SetField string
	SetValue catalog.Value
}

func Begin(level vm.Level) *Statement { return &Statement{Kind: KindBegin, Level: level} }
func Commit() *Statement               { return &Statement{Kind: KindCommit} }
func Abort() *Statement                { return &Statement{Kind: KindAbort} }
func Show() *Statement                 { return &Statement{Kind: KindShow} }

func Create(table string, fields []catalog.FieldDef) *Statement {
	return &Statement{Kind: KindCreate, Table: table, Fields: fields}
}

func Drop(table string) *Statement {
	return &Statement{Kind: KindDrop, Table: table}
}

func Select(table string, where *catalog.Where) *Statement {
	return &Statement{Kind: KindSelect, Table: table, Where: where}
}

func Insert(table string, values []catalog.Value) *Statement {
	return &Statement{Kind: KindInsert, Table: table, Values: values}
}

func Delete(table string, where *catalog.Where) *Statement {
	return &Statement{Kind: KindDelete, Table: table, Where: where}
}

func Update(table, setField string, setValue catalog.Value, where *catalog.Where) *Statement {
	return &Statement{Kind: KindUpdate, Table: table, SetField: setField, SetValue: setValue, Where: where}
}
