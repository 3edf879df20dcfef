// Package entstore is an in-memory, archetype-based entity-component store
// with point-in-time snapshot and restore.
//
// Entities are identifier+generation handles; component values live in
// columnar archetype tables. A Snapshot is a copy-on-write capture of the
// whole store or a filtered subset, taken with World.Snapshot or
// World.SnapshotFiltered and later replayed with World.Restore, inspected
// with Snapshot.Iter, or dropped with Snapshot.Free.
package entstore

import (
	"reflect"

	"github.com/swarnim-deepsource/entstore/internal/base"
	"github.com/swarnim-deepsource/entstore/internal/index"
	"github.com/swarnim-deepsource/entstore/internal/storage"
)

// Re-exported primitives so callers never import internal packages.
type (
	// Entity is an identifier+generation handle to one stored entity.
	Entity = base.Entity
	// ComponentID identifies a registered component type.
	ComponentID = base.ComponentID
	// TableID addresses one archetype table.
	TableID = base.TableID
	// Type is the ordered, duplicate-free component set of an archetype.
	Type = base.Type
)

// NewType builds a signature from component ids, sorting and deduplicating.
func NewType(ids ...ComponentID) Type { return base.NewType(ids...) }

// SetObserver is a value-set notification handler. It runs synchronously on
// the mutating goroutine with the store in a consistent state; entities is
// a read-only view that must not be retained. Mutations made from inside a
// handler are deferred and applied when the outermost notification returns.
type SetObserver func(table TableID, entities []Entity)

type cmdKind uint8

const (
	cmdSet cmdKind = iota
	cmdAdd
	cmdRemove
	cmdDelete
)

type command struct {
	kind cmdKind
	e    Entity
	id   ComponentID
	val  reflect.Value
}

// World is the live store: the table arena, the entity index, the component
// registry, and the value-set observer lists. A World is not safe for
// concurrent use; snapshot and restore additionally require that no
// deferred mutations are in flight, which they enforce by flushing the
// queue on entry.
type World struct {
	store     *storage.Store
	index     *index.Index
	byType    map[reflect.Type]ComponentID
	observers map[ComponentID][]SetObserver

	queue       []command
	notifyDepth int
	flushing    bool

	log  Logger
	opts WorldOptions
}

// NewWorld creates an empty store.
func NewWorld(options ...WorldOption) *World {
	opts := DefaultWorldOptions()
	for _, opt := range options {
		opt(&opts)
	}
	return &World{
		store:     storage.NewStore(opts.archetypeCacheSize, opts.initialCapacity),
		index:     index.New(),
		byType:    make(map[reflect.Type]ComponentID),
		observers: make(map[ComponentID][]SetObserver),
		log:       opts.logger,
		opts:      opts,
	}
}

// NewEntity creates an entity with the given components, zero-valued (or
// ctor-initialized where the type registers a ctor). An entity with no
// components lives in the empty archetype. While a notification is being
// delivered the handle is allocated in the empty archetype immediately and
// the component additions are queued like any other handler mutation.
func (w *World) NewEntity(ids ...ComponentID) Entity {
	if w.deferring() {
		e := w.index.Alloc()
		w.store.FindOrCreate(NewType()).AppendRow(w.index, e)
		for _, id := range ids {
			w.queue = append(w.queue, command{kind: cmdAdd, e: e, id: id})
		}
		return e
	}
	e := w.index.Alloc()
	t := w.store.FindOrCreate(NewType(ids...))
	t.AppendRow(w.index, e)
	return e
}

// Alive reports whether e refers to a live entity with a matching
// generation.
func (w *World) Alive(e Entity) bool {
	return w.index.Alive(e)
}

// Delete removes e and all its component values. Deferred while a
// notification is being delivered.
func (w *World) Delete(e Entity) {
	if w.deferring() {
		w.queue = append(w.queue, command{kind: cmdDelete, e: e})
		return
	}
	rec, ok := w.index.Get(e)
	base.Assertf(ok, "delete of dead or stale entity %v", e)
	t := w.store.Table(rec.Table)
	t.SwapDelete(w.index, rec.Row, true)
	w.index.Release(e)
}

// TableOf returns the table currently holding e.
func (w *World) TableOf(e Entity) (TableID, bool) {
	rec, ok := w.index.Get(e)
	if !ok {
		return 0, false
	}
	return rec.Table, true
}

// TableType returns the signature of a live table.
func (w *World) TableType(id TableID) (Type, bool) {
	t := w.store.Table(id)
	if t == nil {
		return nil, false
	}
	return t.Type(), true
}

// TableCount returns the row count of a live table, or -1 for a hole.
func (w *World) TableCount(id TableID) int {
	t := w.store.Table(id)
	if t == nil {
		return -1
	}
	return t.Count()
}

// Tables returns the identifiers of all live non-builtin tables.
func (w *World) Tables() []TableID {
	var out []TableID
	for i := 0; i < w.store.Len(); i++ {
		if t := w.store.Table(TableID(i)); t != nil && !t.Builtin() {
			out = append(out, t.ID())
		}
	}
	return out
}

// DeleteEmptyTables destroys every non-builtin table that currently has
// zero rows, leaving permanent holes in the identifier space. Returns the
// number of tables destroyed. Periodic cleanup for long-lived stores whose
// entity population shifts between archetypes.
func (w *World) DeleteEmptyTables() int {
	w.quiesce()
	n := 0
	for i := 0; i < w.store.Len(); i++ {
		t := w.store.Table(TableID(i))
		if t == nil || t.Builtin() || t.Count() > 0 {
			continue
		}
		w.store.Destroy(t)
		n++
	}
	return n
}

// EntityCount returns the number of live entities, component-registry
// descriptors included.
func (w *World) EntityCount() int {
	return w.index.Count()
}

// ObserveSet registers a value-set observer for one component id. The
// observer fires whenever rows holding that component are assigned,
// including the replay pass at the end of a restore.
func (w *World) ObserveSet(id ComponentID, fn SetObserver) {
	w.observers[id] = append(w.observers[id], fn)
}

// Flush applies any mutations deferred by observer callbacks. Inside a
// handler it is a no-op; the queue drains when the outermost notification
// returns. Calling it with nothing queued is also a no-op.
func (w *World) Flush() {
	if w.deferring() {
		return
	}
	w.flushQueue()
}

// deferring reports whether mutations must be queued instead of applied.
func (w *World) deferring() bool {
	return w.notifyDepth > 0
}

// quiesce forces the store out of deferred mode, applying every queued
// mutation. Capture and restore both start here; running them from inside
// a notification handler is a contract violation.
func (w *World) quiesce() {
	base.Assertf(w.notifyDepth == 0, "snapshot/restore invoked from inside a notification handler")
	w.flushQueue()
}

func (w *World) flushQueue() {
	if w.flushing {
		return
	}
	w.flushing = true
	defer func() { w.flushing = false }()
	for len(w.queue) > 0 {
		q := w.queue
		w.queue = nil
		for i := range q {
			w.apply(&q[i])
		}
	}
}

func (w *World) apply(c *command) {
	if !w.index.Alive(c.e) {
		// The entity died between queueing and flush; drop the command.
		return
	}
	switch c.kind {
	case cmdSet:
		w.applySet(c.e, c.id, c.val)
	case cmdAdd:
		w.applyAdd(c.e, c.id)
	case cmdRemove:
		w.applyRemove(c.e, c.id)
	case cmdDelete:
		w.Delete(c.e)
	}
}

// applySet writes a component value on e, moving it to the archetype that
// adds the component when e's table lacks it, then fires the value-set
// notification for that single row.
func (w *World) applySet(e Entity, id ComponentID, val reflect.Value) {
	rec, ok := w.index.Get(e)
	base.Assertf(ok, "set on dead or stale entity %v", e)
	t := w.store.Table(rec.Table)
	row := rec.Row
	ci := t.ColumnOf(id)
	if ci < 0 {
		dst := w.store.FindOrCreate(t.Type().With(id))
		row = storage.MoveRow(w.index, t, dst, row)
		t = dst
		ci = t.ColumnOf(id)
	}
	w.writeColumn(t, ci, int(row), val)
	w.notifySet(t, row, row+1, Type{id})
}

// applyAdd moves e into the archetype that adds id, ctor-initializing the
// new column. No value-set notification fires; nothing was assigned.
func (w *World) applyAdd(e Entity, id ComponentID) {
	rec, ok := w.index.Get(e)
	base.Assertf(ok, "add on dead or stale entity %v", e)
	t := w.store.Table(rec.Table)
	if t.ColumnOf(id) >= 0 {
		return
	}
	dst := w.store.FindOrCreate(t.Type().With(id))
	storage.MoveRow(w.index, t, dst, rec.Row)
}

func (w *World) applyRemove(e Entity, id ComponentID) {
	rec, ok := w.index.Get(e)
	base.Assertf(ok, "remove on dead or stale entity %v", e)
	t := w.store.Table(rec.Table)
	if t.ColumnOf(id) < 0 {
		return
	}
	dst := w.store.FindOrCreate(t.Type().Without(id))
	storage.MoveRow(w.index, t, dst, rec.Row)
}

// writeColumn assigns val into one cell, routing through the type's copy
// hook when registered.
func (w *World) writeColumn(t *storage.Table, col, row int, val reflect.Value) {
	c := t.Data().Column(col)
	dst := c.At(row)
	if cp := c.Info().Hooks.Copy; cp != nil {
		// Copy hooks require an addressable source.
		src := reflect.New(val.Type()).Elem()
		src.Set(val)
		cp(dst, src)
		return
	}
	dst.Set(val)
}

// notifySet fires the value-set observers for rows [start,end) of t, one
// component id at a time. Mutations made by handlers are queued and applied
// when the outermost notification returns, so handlers always observe a
// consistent store.
func (w *World) notifySet(t *storage.Table, start, end int32, ids Type) {
	if len(w.observers) == 0 {
		return
	}
	w.notifyDepth++
	entities := t.Data().Entities()[start:end]
	for _, id := range ids {
		for _, fn := range w.observers[id] {
			fn(t.ID(), entities)
		}
	}
	w.notifyDepth--
	if w.notifyDepth == 0 {
		w.flushQueue()
	}
}
