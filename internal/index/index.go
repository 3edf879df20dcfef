// Package index implements the global entity index: the sparse map from
// entity identifier to current storage location and generation.
package index

import (
	"github.com/swarnim-deepsource/entstore/internal/base"
)

// Record is one entity slot. Table and Row are meaningful only while Alive;
// Gen survives death so stale handles can be detected and so a generation
// can be re-stamped by a filtered restore.
type Record struct {
	Table base.TableID
	Row   int32
	Gen   uint32
	Alive bool
}

// Index maps entity ids to Records. Slot 0 is never allocated so the zero
// Entity is always invalid. Not safe for concurrent use; the store's
// external quiescing contract serializes all access.
type Index struct {
	records []Record
	free    []uint32
	lastID  uint32 // highest id ever issued
}

func New() *Index {
	return &Index{
		records: make([]Record, 1, 64), // slot 0 reserved
	}
}

// Alloc issues a fresh entity. Dead slots are reused with a bumped
// generation; slots resurrected since being freed are skipped.
func (x *Index) Alloc() base.Entity {
	for len(x.free) > 0 {
		id := x.free[len(x.free)-1]
		x.free = x.free[:len(x.free)-1]
		r := &x.records[id]
		if r.Alive {
			// Resurrected by a restore while parked on the free list.
			continue
		}
		r.Gen++
		r.Alive = true
		r.Row = -1
		return base.Entity{ID: id, Gen: r.Gen}
	}
	x.records = append(x.records, Record{Row: -1, Alive: true})
	id := uint32(len(x.records) - 1)
	x.lastID = id
	return base.Entity{ID: id, Gen: 0}
}

// Get returns the record for a live entity whose generation matches.
func (x *Index) Get(e base.Entity) (Record, bool) {
	if e.ID == 0 || int(e.ID) >= len(x.records) {
		return Record{}, false
	}
	r := x.records[e.ID]
	if !r.Alive || r.Gen != e.Gen {
		return Record{}, false
	}
	return r, true
}

// Lookup resolves an identifier alone, ignoring the generation. Used by a
// filtered restore to find the row currently occupying a captured entity's
// slot even when the slot has been reused by a newer entity since capture.
func (x *Index) Lookup(id uint32) (Record, bool) {
	if id == 0 || int(id) >= len(x.records) {
		return Record{}, false
	}
	r := x.records[id]
	if !r.Alive {
		return Record{}, false
	}
	return r, true
}

// Alive reports whether e refers to a live entity.
func (x *Index) Alive(e base.Entity) bool {
	_, ok := x.Get(e)
	return ok
}

// Rebind points e's slot at the given storage location, marking it alive
// and stamping the generation carried by e. Grows the index when e was
// issued by a copy this index has not seen.
func (x *Index) Rebind(e base.Entity, table base.TableID, row int32) {
	for int(e.ID) >= len(x.records) {
		x.records = append(x.records, Record{Row: -1})
	}
	if e.ID > x.lastID {
		x.lastID = e.ID
	}
	x.records[e.ID] = Record{Table: table, Row: row, Gen: e.Gen, Alive: true}
}

// Release marks e dead and parks its slot for reuse. The generation is
// bumped on the next Alloc of the slot, not here.
func (x *Index) Release(e base.Entity) {
	base.Assertf(x.Alive(e), "release of dead or stale entity %v", e)
	r := &x.records[e.ID]
	r.Alive = false
	r.Row = -1
	x.free = append(x.free, e.ID)
}

// SetGeneration re-stamps the generation of e's slot to e.Gen without
// changing liveness or materializing a row.
func (x *Index) SetGeneration(e base.Entity) {
	for int(e.ID) >= len(x.records) {
		x.records = append(x.records, Record{Row: -1})
	}
	x.records[e.ID].Gen = e.Gen
}

// Generation returns the current generation of the slot addressed by id.
func (x *Index) Generation(id uint32) uint32 {
	if int(id) >= len(x.records) {
		return 0
	}
	return x.records[id].Gen
}

// LastID is the highest entity id issued so far.
func (x *Index) LastID() uint32 { return x.lastID }

// SetLastID restores the id watermark; subsequent Allocs stay consistent
// with it.
func (x *Index) SetLastID(id uint32) {
	x.lastID = id
	for int(id) >= len(x.records) {
		x.records = append(x.records, Record{Row: -1})
	}
}

// Copy returns a structurally independent duplicate. The copy and the
// original never alias mutable state.
func (x *Index) Copy() *Index {
	c := &Index{
		records: make([]Record, len(x.records)),
		free:    make([]uint32, len(x.free)),
		lastID:  x.lastID,
	}
	copy(c.records, x.records)
	copy(c.free, x.free)
	return c
}

// RestoreFrom replaces this index's contents wholesale with those of the
// copy. The copy must not be used afterwards.
func (x *Index) RestoreFrom(c *Index) {
	x.records = c.records
	x.free = c.free
	x.lastID = c.lastID
}

// Count returns the number of live entities.
func (x *Index) Count() int {
	n := 0
	for i := 1; i < len(x.records); i++ {
		if x.records[i].Alive {
			n++
		}
	}
	return n
}
