package storage

import (
	"github.com/swarnim-deepsource/entstore/internal/base"
	"github.com/swarnim-deepsource/entstore/internal/index"
)

// TableData holds a table's rows: one type-erased column per component in
// the table's signature plus the parallel entity array. A TableData is
// owned either by a live table or by a snapshot capture, never both.
type TableData struct {
	entities []base.Entity
	columns  []Column
}

// NewData returns empty row storage with one column per info.
func NewData(infos []*base.TypeInfo, capacity int) *TableData {
	cols := make([]Column, len(infos))
	for i, info := range infos {
		cols[i] = NewColumn(info, capacity)
	}
	return &TableData{
		entities: make([]base.Entity, 0, capacity),
		columns:  cols,
	}
}

// NewCapturedData bundles duplicated columns and an entity array copy into
// snapshot-owned row storage.
func NewCapturedData(entities []base.Entity, columns []Column) *TableData {
	return &TableData{entities: entities, columns: columns}
}

func (d *TableData) Count() int { return len(d.entities) }

// Entities exposes the entity array. Callers must treat it as read-only.
func (d *TableData) Entities() []base.Entity { return d.entities }

func (d *TableData) NumColumns() int { return len(d.columns) }

func (d *TableData) Column(i int) *Column { return &d.columns[i] }

// Release destructs every element of every column and drops the rows.
// Used when discarding snapshot-owned data without restoring it.
func (d *TableData) Release() {
	for i := range d.columns {
		d.columns[i].Truncate(true)
	}
	d.entities = nil
}

// Table is one archetype: all entities sharing an identical ordered set of
// component types, stored columnar. Tables are created and destroyed only
// through their Store.
type Table struct {
	id      base.TableID
	epoch   uint64 // creation stamp; detects stale captures referencing a reused identity
	typ     base.Type
	infos   []*base.TypeInfo
	builtin bool
	dead    bool
	data    *TableData
}

func (t *Table) ID() base.TableID { return t.id }

func (t *Table) Epoch() uint64 { return t.epoch }

// Type returns the table's signature. Read-only.
func (t *Table) Type() base.Type { return t.typ }

// Builtin reports whether the table is store-internal bookkeeping. Builtin
// tables are never snapshotted.
func (t *Table) Builtin() bool { return t.builtin }

func (t *Table) Count() int { return t.data.Count() }

func (t *Table) Data() *TableData { return t.data }

// ColumnOf returns the column index of component id, or -1 when the table's
// signature does not include it. Column order matches signature order.
func (t *Table) ColumnOf(id base.ComponentID) int {
	for i, c := range t.typ {
		if c == id {
			return i
		}
		if c > id {
			break
		}
	}
	return -1
}

// AppendRow adds a zeroed, ctor'd row for e and binds e's index record to
// it. Returns the new row.
func (t *Table) AppendRow(x *index.Index, e base.Entity) int32 {
	row := int32(len(t.data.entities))
	t.data.entities = append(t.data.entities, e)
	for i := range t.data.columns {
		t.data.columns[i].AppendZero()
	}
	x.Rebind(e, t.id, row)
	return row
}

// SwapDelete removes a row without firing any removal notification. The
// moved-up row's index record is rebound; the removed entity's record is
// left to the caller (released on delete, rebound on merge).
func (t *Table) SwapDelete(x *index.Index, row int32, destruct bool) {
	t.swapDelete(x, row, func(base.ComponentID) bool { return destruct })
}

func (t *Table) swapDelete(x *index.Index, row int32, destructFor func(base.ComponentID) bool) {
	last := int32(len(t.data.entities) - 1)
	base.Assertf(row >= 0 && row <= last, "row %d out of range in table %d", row, t.id)
	for i := range t.data.columns {
		c := &t.data.columns[i]
		c.SwapDelete(int(row), destructFor(c.info.ID))
	}
	if row != last {
		moved := t.data.entities[last]
		t.data.entities[row] = moved
		x.Rebind(moved, t.id, row)
	}
	t.data.entities = t.data.entities[:last]
}

// ClearData drops every row without touching the entity index and without
// firing removal notifications. The cleared entities may no longer be
// valid, or may be about to be restored into a different table.
func (t *Table) ClearData(destruct bool) {
	for i := range t.data.columns {
		t.data.columns[i].Truncate(destruct)
	}
	t.data.entities = t.data.entities[:0]
}

// ReplaceData destructs the table's current rows and adopts data as its
// storage, rebinding the index record of every adopted row. Ownership of
// data transfers to the table.
func (t *Table) ReplaceData(x *index.Index, data *TableData) {
	base.Assertf(len(data.columns) == len(t.typ),
		"replace data column count %d does not match table %d signature %s",
		len(data.columns), t.id, t.typ)
	t.ClearData(true)
	t.data = data
	for row, e := range data.entities {
		x.Rebind(e, t.id, int32(row))
	}
}

// Merge bulk-appends data's rows onto the table and rebinds their index
// records. Ownership of the row values transfers to the table; the caller
// drops data without destructing it. Returns the appended row range.
func (t *Table) Merge(x *index.Index, data *TableData) (start, end int32) {
	base.Assertf(len(data.columns) == len(t.typ),
		"merge column count %d does not match table %d signature %s",
		len(data.columns), t.id, t.typ)
	start = int32(len(t.data.entities))
	for i := range t.data.columns {
		t.data.columns[i].AppendAll(&data.columns[i])
	}
	t.data.entities = append(t.data.entities, data.entities...)
	end = int32(len(t.data.entities))
	for i, e := range data.entities {
		x.Rebind(e, t.id, start+int32(i))
	}
	return start, end
}

// MoveRow transfers the row at srcRow from src to dst, carrying shared
// column values with it, ctor'ing columns dst adds, and destructing columns
// dst drops. Returns the destination row.
func MoveRow(x *index.Index, src, dst *Table, srcRow int32) int32 {
	e := src.data.entities[srcRow]
	newRow := int32(len(dst.data.entities))
	dst.data.entities = append(dst.data.entities, e)
	for i := range dst.data.columns {
		dc := &dst.data.columns[i]
		if si := src.ColumnOf(dc.info.ID); si >= 0 {
			dc.AppendFrom(src.data.Column(si), int(srcRow))
		} else {
			dc.AppendZero()
		}
	}
	x.Rebind(e, dst.id, newRow)
	src.swapDelete(x, srcRow, func(id base.ComponentID) bool {
		return dst.ColumnOf(id) < 0 // value moved unless dst drops the component
	})
	return newRow
}
