package entstore

import (
	"github.com/google/uuid"

	"github.com/swarnim-deepsource/entstore/internal/base"
	"github.com/swarnim-deepsource/entstore/internal/index"
	"github.com/swarnim-deepsource/entstore/internal/storage"
)

// tableRef is a weak, identity-only reference to the table a capture was
// taken from: identifier plus creation epoch. Valid to compare, never to
// assume liveness; the table may have been destroyed since capture.
type tableRef struct {
	id    TableID
	epoch uint64
}

// tableCapture is one slot of a snapshot's dense table array. typ is an
// owned, independently allocated signature copy; data is nil iff the table
// had zero rows at capture time.
type tableCapture struct {
	ok   bool
	ref  tableRef
	typ  Type
	data *storage.TableData
}

// drop releases a consumed slot. Row values were either transferred to the
// live store or destructed by the caller beforehand.
func (c *tableCapture) drop() {
	c.ok = false
	c.typ = nil
	c.data = nil
}

// Snapshot is a point-in-time capture of a store. A full snapshot carries a
// copy of the entity index and can reconcile the whole store back to the
// captured state; a filtered snapshot restores only the captured entities.
// A Snapshot owns every signature and row buffer it holds until it is
// consumed by Restore or released by Free.
type Snapshot struct {
	id       uuid.UUID
	world    *World
	index    *index.Index // nil for filtered captures
	lastID   uint32       // entity id watermark at capture time
	tables   []tableCapture
	consumed bool
}

// ID identifies the snapshot in log output.
func (s *Snapshot) ID() uuid.UUID { return s.id }

// Filtered reports whether the snapshot was taken through an iterator and
// therefore restores per-entity instead of wholesale.
func (s *Snapshot) Filtered() bool { return s.index == nil }

// Snapshot captures the entire store: every non-builtin table, the entity
// index, and the identifier watermark. Any mutations deferred by
// notification handlers are flushed first so the capture never observes a
// store with in-flight deferred operations.
func (w *World) Snapshot() *Snapshot {
	w.quiesce()
	s := w.newSnapshot()
	s.index = w.index.Copy()
	for i := 0; i < w.store.Len(); i++ {
		if t := w.store.Table(TableID(i)); t != nil {
			s.captureTable(t)
		}
	}
	w.log.Info("snapshot taken", "snapshot", s.id, "tables", s.occupied(), "entities", w.index.Count())
	return s
}

// Filter selects tables for a filtered capture: a table matches when its
// signature contains every listed component.
type Filter struct {
	All []ComponentID
}

func (f Filter) match(t *storage.Table) bool {
	return t.Type().HasAll(NewType(f.All...))
}

// SnapshotFiltered captures only the tables matched by f. The result has
// no entity index copy; restoring it reconciles the captured entities and
// leaves every other live entity untouched.
func (w *World) SnapshotFiltered(f Filter) *Snapshot {
	w.quiesce()
	s := w.newSnapshot()
	for i := 0; i < w.store.Len(); i++ {
		t := w.store.Table(TableID(i))
		if t == nil || t.Builtin() || !f.match(t) {
			continue
		}
		s.captureTable(t)
	}
	w.log.Info("filtered snapshot taken", "snapshot", s.id, "tables", s.occupied())
	return s
}

func (w *World) newSnapshot() *Snapshot {
	return &Snapshot{
		id:     uuid.New(),
		world:  w,
		lastID: w.index.LastID(),
		// Sized to the highest table identifier so slot lookup is O(1);
		// identifiers without a captured table stay holes.
		tables: make([]tableCapture, w.store.Len()),
	}
}

// captureTable writes the slot for t. Builtin tables are store-internal
// bookkeeping and are never snapshotted.
func (s *Snapshot) captureTable(t *storage.Table) {
	if t.Builtin() {
		return
	}
	slot := &s.tables[t.ID()]
	slot.ok = true
	slot.ref = tableRef{id: t.ID(), epoch: t.Epoch()}
	slot.typ = t.Type().Clone()
	slot.data = duplicateData(t)
}

func (s *Snapshot) occupied() int {
	n := 0
	for i := range s.tables {
		if s.tables[i].ok {
			n++
		}
	}
	return n
}

// Free releases the snapshot without restoring it, destructing captured
// row values through their dtor hooks. It never touches the live store.
// A snapshot consumed by Restore cannot be freed again.
func (s *Snapshot) Free() {
	base.Assertf(!s.consumed, "snapshot %v already consumed", s.id)
	s.consumed = true
	for i := range s.tables {
		slot := &s.tables[i]
		if !slot.ok {
			continue
		}
		if slot.data != nil {
			slot.data.Release()
		}
		slot.drop()
	}
	s.index = nil
	s.tables = nil
}
