package base

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ComponentID identifies a registered component type within one World.
type ComponentID uint32

// MetaComponentID is reserved for the component-descriptor rows kept in the
// builtin registry table. Never handed out by registration.
const MetaComponentID ComponentID = 0

// Type is the ordered, duplicate-free list of component ids that defines an
// archetype. A Type is immutable once built; Clone before mutating.
type Type []ComponentID

// NewType returns a sorted, deduplicated Type for the given ids.
func NewType(ids ...ComponentID) Type {
	t := make(Type, len(ids))
	copy(t, ids)
	sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
	out := t[:0]
	for i, id := range t {
		if i > 0 && id == t[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Clone returns an independently allocated copy.
func (t Type) Clone() Type {
	if t == nil {
		return nil
	}
	c := make(Type, len(t))
	copy(c, t)
	return c
}

func (t Type) Equal(other Type) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Has reports whether id is part of the signature. Binary search; Type is
// always sorted.
func (t Type) Has(id ComponentID) bool {
	i := sort.Search(len(t), func(i int) bool { return t[i] >= id })
	return i < len(t) && t[i] == id
}

// HasAll reports whether every id in sub is part of the signature.
func (t Type) HasAll(sub Type) bool {
	for _, id := range sub {
		if !t.Has(id) {
			return false
		}
	}
	return true
}

// With returns a new Type with id added (or t unchanged if already present).
func (t Type) With(id ComponentID) Type {
	if t.Has(id) {
		return t
	}
	out := make(Type, 0, len(t)+1)
	out = append(out, t...)
	out = append(out, id)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Without returns a new Type with id removed (or t unchanged if absent).
func (t Type) Without(id ComponentID) Type {
	if !t.Has(id) {
		return t
	}
	out := make(Type, 0, len(t)-1)
	for _, c := range t {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}

// Hash returns a 64-bit digest of the signature, used as the key for
// archetype lookup. Collisions are resolved by the caller with Equal.
func (t Type) Hash() uint64 {
	d := xxhash.New()
	var buf [4]byte
	for _, id := range t {
		buf[0] = byte(id)
		buf[1] = byte(id >> 8)
		buf[2] = byte(id >> 16)
		buf[3] = byte(id >> 24)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func (t Type) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Hooks are the optional lifecycle callbacks attached to a component type.
// All three operate on addressable reflect.Values of the component's type.
// A type without a Copy hook is treated as plain data and duplicated
// bitwise; the store requires that such types carry no ownership semantics.
type Hooks struct {
	// Ctor initializes a freshly allocated destination element before any
	// copy into it.
	Ctor func(dst reflect.Value)
	// Copy duplicates src into dst. dst has been Ctor'd if a Ctor is set.
	Copy func(dst, src reflect.Value)
	// Dtor releases resources held by v before its storage is dropped.
	Dtor func(v reflect.Value)
}

// TypeInfo describes one registered component type.
type TypeInfo struct {
	ID    ComponentID
	Name  string
	Elem  reflect.Type // the component's Go type
	Hooks Hooks
}
