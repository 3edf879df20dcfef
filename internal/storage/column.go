package storage

import (
	"reflect"

	"github.com/swarnim-deepsource/entstore/internal/base"
)

// Column is one type-erased component column: a reflect-backed slice of the
// component's Go type, parallel to the table's entity array. Lifecycle hooks
// from the column's TypeInfo are applied by the operations that need them;
// a column whose type has no Copy hook is plain data and may be duplicated
// bitwise.
type Column struct {
	info *base.TypeInfo
	data reflect.Value // slice of info.Elem
}

// NewColumn returns an empty column for the given component type.
func NewColumn(info *base.TypeInfo, capacity int) Column {
	return Column{
		info: info,
		data: reflect.MakeSlice(reflect.SliceOf(info.Elem), 0, capacity),
	}
}

// NewColumnN returns a column with n zeroed elements, ready for the
// duplicator's ctor/copy sequence.
func NewColumnN(info *base.TypeInfo, n int) Column {
	return Column{
		info: info,
		data: reflect.MakeSlice(reflect.SliceOf(info.Elem), n, n),
	}
}

func (c *Column) Info() *base.TypeInfo { return c.info }

func (c *Column) Len() int { return c.data.Len() }

// At returns the addressable element at row i.
func (c *Column) At(i int) reflect.Value { return c.data.Index(i) }

// AppendZero grows the column by one zero element and returns its row,
// running the type's ctor when one is registered.
func (c *Column) AppendZero() int {
	c.data = reflect.Append(c.data, reflect.Zero(c.info.Elem))
	i := c.data.Len() - 1
	if ctor := c.info.Hooks.Ctor; ctor != nil {
		ctor(c.data.Index(i))
	}
	return i
}

// AppendFrom transfers element i of src onto the end of c without invoking
// hooks. Used when a row moves between tables: ownership of the value moves
// with it.
func (c *Column) AppendFrom(src *Column, i int) {
	c.data = reflect.Append(c.data, src.data.Index(i))
}

// AppendAll bulk-appends every element of src without invoking hooks.
// Ownership of src's values transfers to c; the caller must not destruct
// src afterwards.
func (c *Column) AppendAll(src *Column) {
	c.data = reflect.AppendSlice(c.data, src.data)
}

// RawClone returns a bitwise duplicate of the column. Only valid for types
// without ownership semantics; the duplicator routes hook-carrying types
// through ctor/copy instead.
func (c *Column) RawClone() Column {
	dst := reflect.MakeSlice(c.data.Type(), c.data.Len(), c.data.Len())
	reflect.Copy(dst, c.data)
	return Column{info: c.info, data: dst}
}

// SwapDelete removes row i by moving the last element into it. The removed
// value is destructed first when destruct is set and the type has a dtor.
func (c *Column) SwapDelete(i int, destruct bool) {
	if destruct {
		if dtor := c.info.Hooks.Dtor; dtor != nil {
			dtor(c.data.Index(i))
		}
	}
	last := c.data.Len() - 1
	if i != last {
		c.data.Index(i).Set(c.data.Index(last))
	}
	c.data = c.data.Slice(0, last)
}

// Truncate drops every element, destructing each when destruct is set.
func (c *Column) Truncate(destruct bool) {
	if destruct {
		if dtor := c.info.Hooks.Dtor; dtor != nil {
			for i := 0; i < c.data.Len(); i++ {
				dtor(c.data.Index(i))
			}
		}
	}
	c.data = c.data.Slice(0, 0)
}
