package catalog

import (
	"math"
	"sync"

	"github.com/cuemby/quill/pkg/bplustree"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/vm"
	"github.com/rs/zerolog"
)

// superTx is the pseudo-transaction every catalog operation uses to talk
// to pkg/vm: DDL runs under the super XID, which pkg/tm always reports
// committed and pkg/vm's Read Committed formula always finds visible
// (xmax is never set on Table/Field records), so no real vm.Begin is
// needed.
var superTx = &vm.Transaction{XID: tm.SuperXID, Level: vm.ReadCommitted}

// Catalog is the table/field metadata layer: it tracks every table's
// field list and owns each indexed field's B+ tree.
type Catalog struct {
	d        *dm.DM
	vm       *vm.VM
	bootPath string

	mu      sync.RWMutex
	tables  map[string]*Table
	headUID uint64

	log zerolog.Logger
}

// Open loads every table reachable from the boot file's chain.
func Open(d *dm.DM, v *vm.VM, bootPath string) (*Catalog, error) {
	headUID, err := readBootFile(bootPath)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		d:        d,
		vm:       v,
		bootPath: bootPath,
		tables:   make(map[string]*Table),
		headUID:  headUID,
		log:      log.WithComponent("catalog"),
	}

	uid := headUID
	for uid != 0 {
		raw, err := v.Read(superTx, uid)
		if err != nil {
			return nil, err
		}
		table := decodeTable(raw)
		table.selfUID = uid

		for _, fuid := range table.FieldUIDs {
			fraw, err := v.Read(superTx, fuid)
			if err != nil {
				return nil, err
			}
			field, err := decodeField(fraw)
			if err != nil {
				return nil, err
			}
			if field.IndexBootUID != 0 {
				field.tree = bplustree.Open(d, field.IndexBootUID)
			}
			table.Fields = append(table.Fields, field)
		}

		c.tables[table.Name] = table
		uid = table.NextTableUID
	}

	return c, nil
}

// Table returns the named table's metadata, or nil if it does not exist.
func (c *Catalog) Table(name string) *Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[name]
}

// TableNames lists every table currently in the catalog.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// CreateTable persists a new table's Fields and Table record, builds a
// pkg/bplustree index for every FieldDef marked Indexed, and links the
// table in at the head of the catalog's chain.
func (c *Catalog) CreateTable(name string, defs []FieldDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return dberrors.Logical(dberrors.ErrDuplicatedTable, name)
	}

	fields := make([]*Field, 0, len(defs))
	fieldUIDs := make([]uint64, 0, len(defs))
	for _, def := range defs {
		field := &Field{Name: def.Name, Type: def.Type}
		if def.Indexed {
			tree, err := bplustree.Create(c.d)
			if err != nil {
				return err
			}
			field.IndexBootUID = tree.BootUID()
			field.tree = tree
		}
		fuid, err := c.vm.Insert(superTx, encodeField(field))
		if err != nil {
			return err
		}
		fieldUIDs = append(fieldUIDs, fuid)
		fields = append(fields, field)
	}

	table := &Table{Name: name, NextTableUID: c.headUID, FieldUIDs: fieldUIDs, Fields: fields}
	tuid, err := c.vm.Insert(superTx, encodeTable(table))
	if err != nil {
		return err
	}
	table.selfUID = tuid

	if err := writeBootFileAtomic(c.bootPath, tuid); err != nil {
		return err
	}

	c.headUID = tuid
	c.tables[name] = table
	c.log.Info().Str("table", name).Int("fields", len(fields)).Msg("table created")
	return nil
}

// DropTable is not supported: removing a table would strand its indexed
// B+ trees and its row entries with no way to unlink them from the boot
// chain without a second metadata rewrite pass. Decided in DESIGN.md:
// reject rather than silently leak storage.
func (c *Catalog) DropTable(name string) error {
	return dberrors.Logical(dberrors.ErrNotImplemented, "drop table "+name)
}

// Insert encodes values against table's field list and inserts the row
// via pkg/vm under tx, adding an index entry for every indexed field.
func (c *Catalog) Insert(tx *vm.Transaction, tableName string, values []Value) (uint64, error) {
	table := c.Table(tableName)
	if table == nil {
		return 0, dberrors.Logical(dberrors.ErrTableNotFound, tableName)
	}

	payload, err := valuesEncode(table.Fields, values)
	if err != nil {
		return 0, err
	}

	uid, err := c.vm.Insert(tx, payload)
	if err != nil {
		return 0, err
	}

	for i, f := range table.Fields {
		if f.tree == nil {
			continue
		}
		if err := f.tree.Insert(value2Key(values[i]), uid); err != nil {
			return 0, err
		}
	}
	return uid, nil
}

// Select resolves where (or, if nil, scans the first indexed field's
// full range) and returns every visible row as a slice of typed Values.
func (c *Catalog) Select(tx *vm.Transaction, tableName string, where *Where) ([][]Value, error) {
	table := c.Table(tableName)
	if table == nil {
		return nil, dberrors.Logical(dberrors.ErrTableNotFound, tableName)
	}

	uids, err := c.resolveRowUIDs(table, where)
	if err != nil {
		return nil, err
	}

	var rows [][]Value
	for _, uid := range uids {
		raw, err := c.vm.Read(tx, uid)
		if err != nil {
			continue // not visible to tx: deleted, or not yet committed
		}
		rows = append(rows, valuesDecode(table.Fields, raw))
	}
	return rows, nil
}

// Update resolves where, and for each visible row deletes the old
// version and inserts the new one with setField replaced by setValue,
// adding a fresh index entry for every indexed field (stale index
// entries from the deleted version are left in place — decided in
// DESIGN.md as "never compact", since SearchRange callers already
// re-check visibility via vm.Read).
func (c *Catalog) Update(tx *vm.Transaction, tableName, setField string, setValue Value, where *Where) (int, error) {
	table := c.Table(tableName)
	if table == nil {
		return 0, dberrors.Logical(dberrors.ErrTableNotFound, tableName)
	}

	uids, err := c.resolveRowUIDs(table, where)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, uid := range uids {
		raw, err := c.vm.Read(tx, uid)
		if err != nil {
			continue
		}
		row := valuesDecode(table.Fields, raw)
		for i, f := range table.Fields {
			if f.Name == setField {
				row[i] = setValue
			}
		}

		ok, err := c.vm.Delete(tx, uid)
		if err != nil {
			return count, err
		}
		if !ok {
			continue
		}

		newPayload, err := valuesEncode(table.Fields, row)
		if err != nil {
			return count, err
		}
		newUID, err := c.vm.Insert(tx, newPayload)
		if err != nil {
			return count, err
		}
		for i, f := range table.Fields {
			if f.tree == nil {
				continue
			}
			if err := f.tree.Insert(value2Key(row[i]), newUID); err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

// Delete resolves where and deletes every visible row via pkg/vm,
// returning the number of rows actually removed.
func (c *Catalog) Delete(tx *vm.Transaction, tableName string, where *Where) (int, error) {
	table := c.Table(tableName)
	if table == nil {
		return 0, dberrors.Logical(dberrors.ErrTableNotFound, tableName)
	}

	uids, err := c.resolveRowUIDs(table, where)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, uid := range uids {
		ok, err := c.vm.Delete(tx, uid)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// resolveRowUIDs returns the candidate row UIDs for where, or (if where
// is nil) every UID in the first indexed field's full key range.
func (c *Catalog) resolveRowUIDs(table *Table, where *Where) ([]uint64, error) {
	if where == nil {
		var idx *Field
		for _, f := range table.Fields {
			if f.tree != nil {
				idx = f
				break
			}
		}
		if idx == nil {
			return nil, dberrors.Logical(dberrors.ErrTableNoIndex, table.Name)
		}
		return idx.tree.SearchRange(-math.MaxInt64, math.MaxInt64)
	}
	return c.resolveWhere(table, where)
}

func (c *Catalog) resolveWhere(table *Table, w *Where) ([]uint64, error) {
	switch w.Op {
	case "and":
		left, err := c.resolveWhere(table, w.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.resolveWhere(table, w.Right)
		if err != nil {
			return nil, err
		}
		return intersectUIDs(left, right), nil
	case "or":
		left, err := c.resolveWhere(table, w.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.resolveWhere(table, w.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	default:
		field := findField(table.Fields, w.Field)
		if field == nil {
			return nil, dberrors.Logical(dberrors.ErrFieldNotFound, w.Field)
		}
		if field.tree == nil {
			return nil, dberrors.Logical(dberrors.ErrFieldNotIndexed, w.Field)
		}
		lo, hi := rangeFor(w.Op, value2Key(w.Literal))
		return field.tree.SearchRange(lo, hi)
	}
}
