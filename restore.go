package entstore

import (
	"github.com/swarnim-deepsource/entstore/internal/base"
)

// Restore reconciles the live store back to the captured state, consuming
// the snapshot. A full snapshot replaces the entity index wholesale and
// runs a three-way diff over table identifiers; a filtered snapshot
// restores only the captured entities. Either way the store is quiesced
// first, and value-set notifications fire only once the affected tables
// are structurally consistent.
func (w *World) Restore(s *Snapshot) {
	base.Assertf(!s.consumed, "snapshot %v already consumed", s.id)
	base.Assertf(s.world == w, "snapshot %v restored into a different store", s.id)
	w.quiesce()

	if s.index != nil {
		w.restoreUnfiltered(s)
	} else {
		w.restoreFiltered(s)
	}

	s.consumed = true
	s.index = nil
	s.tables = nil
	w.log.Info("snapshot restored", "snapshot", s.id)
}

// restoreUnfiltered replaces the entity index, then reconciles the table
// population: tables created since capture are destroyed first, tables
// destroyed since capture are recreated, tables present in both are reset
// to the captured rows. Value-set notifications are deferred to a final
// pass so handlers only ever observe the fully reconciled store.
func (w *World) restoreUnfiltered(s *Snapshot) {
	w.index.RestoreFrom(s.index)
	w.index.SetLastID(s.lastID)

	// Pass 1: drop tables created since capture. Clearing runs without
	// removal notifications: the rows' entities may no longer be valid, or
	// may be restored into a different table below. This pass must finish
	// before any recreate, so that an archetype recreated by signature can
	// never resolve to a table that is itself about to be destroyed.
	for i := 0; i < w.store.Len(); i++ {
		live := w.store.Table(TableID(i))
		if live == nil || live.Builtin() {
			continue
		}
		if i < len(s.tables) && s.tables[i].ok {
			continue
		}
		live.ClearData(true)
		w.store.Destroy(live)
	}

	// Pass 2: install captured data per slot.
	for i := range s.tables {
		slot := &s.tables[i]
		if !slot.ok {
			continue
		}
		if live := w.store.Table(TableID(i)); live == nil {
			// Destroyed since capture: recreate by signature. An equivalent
			// archetype living under a different identifier is reused.
			t := w.store.FindOrCreate(slot.typ)
			if slot.data != nil {
				t.ReplaceData(w.index, slot.data)
			}
		} else {
			base.Assertf(slot.ref.id == live.ID() && slot.ref.epoch == live.Epoch(),
				"capture identity mismatch for table %d", i)
			if slot.data != nil {
				live.ReplaceData(w.index, slot.data)
			} else {
				// Empty at capture: drop whatever accumulated since.
				live.ClearData(true)
			}
		}
		slot.drop()
	}

	// All tables reconciled; replay value-set notifications per table.
	for i := 0; i < w.store.Len(); i++ {
		t := w.store.Table(TableID(i))
		if t == nil || t.Builtin() || t.Count() == 0 {
			continue
		}
		w.notifySet(t, 0, int32(t.Count()), t.Type())
	}
}

// restoreFiltered reconciles only the captured entities. For each captured
// row's entity: a live row is deleted (no removal notification, so the
// reinsert is not double-counted), a dead entity gets its generation
// re-stamped so identifier reuse stays safe. The captured rows are then
// bulk-merged into the still-live table the capture references, and the
// value-set notification fires for exactly the merged range.
func (w *World) restoreFiltered(s *Snapshot) {
	for i := range s.tables {
		slot := &s.tables[i]
		if !slot.ok {
			continue
		}
		if slot.data == nil {
			slot.drop()
			continue
		}

		t := w.store.Table(slot.ref.id)
		base.Assertf(t != nil && t.Epoch() == slot.ref.epoch,
			"filtered capture references destroyed table %d", slot.ref.id)

		for _, e := range slot.data.Entities() {
			// Resolve by identifier alone: the slot may have been reused by
			// a newer entity since capture, and the occupying row must go
			// either way or the merge below would orphan it.
			if rec, ok := w.index.Lookup(e.ID); ok {
				w.store.Table(rec.Table).SwapDelete(w.index, rec.Row, true)
			} else {
				w.index.SetGeneration(e)
			}
		}

		start, end := t.Merge(w.index, slot.data)
		if end > start {
			w.notifySet(t, start, end, t.Type())
		}
		slot.drop()
	}
}
