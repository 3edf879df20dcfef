package entstore

import (
	"github.com/swarnim-deepsource/entstore/internal/storage"
)

// duplicateData deep-copies a table's row storage, honoring per-type
// lifecycle hooks. Columns whose type registers a copy hook get a fresh
// buffer that is ctor'd (when a ctor is registered) and then copied
// element-wise; columns without a copy hook are duplicated bitwise, which
// the store's registration contract guarantees is safe for such types.
// Returns nil when the table has no rows.
func duplicateData(t *storage.Table) *storage.TableData {
	n := t.Count()
	if n == 0 {
		return nil
	}
	src := t.Data()

	// The entity array is always raw-duplicated.
	entities := make([]Entity, n)
	copy(entities, src.Entities())

	columns := make([]storage.Column, src.NumColumns())
	for ci := range columns {
		sc := src.Column(ci)
		info := sc.Info()
		if info.Hooks.Copy == nil {
			columns[ci] = sc.RawClone()
			continue
		}
		dc := storage.NewColumnN(info, n)
		if ctor := info.Hooks.Ctor; ctor != nil {
			for i := 0; i < n; i++ {
				ctor(dc.At(i))
			}
		}
		for i := 0; i < n; i++ {
			info.Hooks.Copy(dc.At(i), sc.At(i))
		}
		columns[ci] = dc
	}
	return storage.NewCapturedData(entities, columns)
}
