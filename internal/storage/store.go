// Package storage implements the archetype table engine: type-erased
// columnar row storage, the identifier-addressed table arena, and the
// replace/clear/merge/delete primitives the snapshot subsystem reconciles
// with.
package storage

import (
	"reflect"

	"github.com/elastic/go-freelru"

	"github.com/swarnim-deepsource/entstore/internal/base"
	"github.com/swarnim-deepsource/entstore/internal/index"
)

// componentDesc is the row type of the builtin registry table: one row per
// registered component type.
type componentDesc struct {
	ID   base.ComponentID
	Name string
}

// Store is the table arena. Tables are addressed by numeric identifier;
// identifiers are issued monotonically and never reused, so a destroyed
// table leaves a permanent hole and a stale capture can be detected by
// epoch. Slot 0 is the builtin component-registry table.
type Store struct {
	tables []*Table
	byHash map[uint64][]*Table // signature hash -> live tables, collision chain
	cache  *freelru.LRU[uint64, *Table]
	types  []*base.TypeInfo // indexed by ComponentID
	epoch  uint64
	capPer int // initial per-table row capacity
}

// NewStore creates an arena holding only the builtin registry table.
// cacheSize bounds the archetype lookup cache in front of the chain map.
func NewStore(cacheSize uint32, initialCapacity int) *Store {
	cache, err := freelru.New[uint64, *Table](cacheSize, func(k uint64) uint32 {
		return uint32(k ^ k>>32)
	})
	base.Assertf(err == nil, "archetype cache init: %v", err)

	s := &Store{
		byHash: make(map[uint64][]*Table),
		cache:  cache,
		capPer: initialCapacity,
	}
	meta := &base.TypeInfo{
		ID:   base.MetaComponentID,
		Name: "entstore.Component",
		Elem: reflect.TypeOf(componentDesc{}),
	}
	s.types = append(s.types, meta)
	s.createTable(base.NewType(base.MetaComponentID), true)
	return s
}

// RegisterType interns a component type, assigns its id, and records a
// descriptor row for it in the builtin registry table.
func (s *Store) RegisterType(x *index.Index, info *base.TypeInfo) base.ComponentID {
	base.Assertf(info.Elem != nil, "component type %q has no Go type", info.Name)
	id := base.ComponentID(len(s.types))
	info.ID = id
	s.types = append(s.types, info)

	reg := s.tables[0]
	e := x.Alloc()
	row := reg.AppendRow(x, e)
	reg.data.columns[0].At(int(row)).Set(reflect.ValueOf(componentDesc{ID: id, Name: info.Name}))
	return id
}

// TypeInfo returns the descriptor for a registered component id.
func (s *Store) TypeInfo(id base.ComponentID) *base.TypeInfo {
	base.Assertf(int(id) < len(s.types), "unregistered component id %d", id)
	return s.types[id]
}

// NumTypes returns the number of registered component types, the builtin
// meta component included.
func (s *Store) NumTypes() int { return len(s.types) }

// Len returns the arena size: highest table identifier issued plus one.
func (s *Store) Len() int { return len(s.tables) }

// LastTableID is the highest table identifier issued so far.
func (s *Store) LastTableID() base.TableID { return base.TableID(len(s.tables) - 1) }

// Table returns the live table at slot id, or nil for a hole.
func (s *Store) Table(id base.TableID) *Table {
	if int(id) >= len(s.tables) {
		return nil
	}
	return s.tables[id]
}

// FindOrCreate returns the live table for the given signature, creating it
// when no equivalent archetype exists. An equivalent archetype under any
// identifier is reused. The signature is cloned on create; the caller keeps
// ownership of typ.
func (s *Store) FindOrCreate(typ base.Type) *Table {
	h := typ.Hash()
	if t, ok := s.cache.Get(h); ok && !t.dead && t.typ.Equal(typ) {
		return t
	}
	for _, t := range s.byHash[h] {
		if t.typ.Equal(typ) {
			s.cache.Add(h, t)
			return t
		}
	}
	t := s.createTable(typ, false)
	s.cache.Add(h, t)
	return t
}

func (s *Store) createTable(typ base.Type, builtin bool) *Table {
	infos := make([]*base.TypeInfo, len(typ))
	for i, id := range typ {
		infos[i] = s.TypeInfo(id)
	}
	s.epoch++
	t := &Table{
		id:      base.TableID(len(s.tables)),
		epoch:   s.epoch,
		typ:     typ.Clone(),
		infos:   infos,
		builtin: builtin,
		data:    NewData(infos, s.capPer),
	}
	s.tables = append(s.tables, t)
	h := t.typ.Hash()
	s.byHash[h] = append(s.byHash[h], t)
	return t
}

// Destroy removes a table from the arena. The slot becomes a permanent
// hole. The table must already be empty; clearing it is the caller's
// responsibility so that no removal notifications fire here.
func (s *Store) Destroy(t *Table) {
	base.Assertf(!t.builtin, "destroy of builtin table %d", t.id)
	base.Assertf(!t.dead, "double destroy of table %d", t.id)
	base.Assertf(t.Count() == 0, "destroy of non-empty table %d", t.id)

	h := t.typ.Hash()
	chain := s.byHash[h]
	for i, c := range chain {
		if c == t {
			s.byHash[h] = append(chain[:i], chain[i+1:]...)
			break
		}
	}
	if len(s.byHash[h]) == 0 {
		delete(s.byHash, h)
	}
	s.cache.Remove(h)
	t.dead = true
	s.tables[t.id] = nil
}
