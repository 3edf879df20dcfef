package entstore

// SnapshotIter is a forward cursor over a snapshot's captured tables. It
// yields one batch per occupied slot without copying or consuming the
// snapshot; restarting requires a new iterator.
type SnapshotIter struct {
	s   *Snapshot
	pos int
	cur *tableCapture
}

// Iter returns a cursor positioned before the first captured table.
func (s *Snapshot) Iter() *SnapshotIter {
	return &SnapshotIter{s: s}
}

// Next advances to the next captured table, skipping holes. Returns false
// once the sequence is exhausted.
func (it *SnapshotIter) Next() bool {
	for ; it.pos < len(it.s.tables); it.pos++ {
		slot := &it.s.tables[it.pos]
		if !slot.ok {
			continue
		}
		it.cur = slot
		it.pos++
		return true
	}
	it.cur = nil
	return false
}

// Table returns the identifier of the table the current batch was captured
// from. The table may have been destroyed since capture; the identifier is
// for identity only.
func (it *SnapshotIter) Table() TableID { return it.cur.ref.id }

// Type returns the current batch's signature. Read-only.
func (it *SnapshotIter) Type() Type { return it.cur.typ }

// Count returns the number of captured rows in the current batch.
func (it *SnapshotIter) Count() int {
	if it.cur.data == nil {
		return 0
	}
	return it.cur.data.Count()
}

// Entities returns the captured entity array of the current batch, or nil
// when the table was empty at capture. Read-only view; no copy is made.
func (it *SnapshotIter) Entities() []Entity {
	if it.cur.data == nil {
		return nil
	}
	return it.cur.data.Entities()
}
