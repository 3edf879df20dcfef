package entstore

import (
	"reflect"

	"github.com/swarnim-deepsource/entstore/internal/base"
)

// Hooks are the optional typed lifecycle callbacks for a component type.
// Ctor initializes a freshly allocated value, Copy deep-duplicates src into
// dst, Dtor releases resources before storage is dropped. A type without a
// Copy hook is duplicated bitwise on capture; register one for any type
// holding owned references.
type Hooks[T any] struct {
	Ctor func(v *T)
	Copy func(dst, src *T)
	Dtor func(v *T)
}

// Register interns T as a component type of w and returns its id.
// Registering the same type twice returns the existing id.
func Register[T any](w *World) ComponentID {
	return RegisterHooks[T](w, Hooks[T]{})
}

// RegisterHooks interns T with lifecycle hooks. Hooks on an already
// registered type are ignored; registration order fixes the id.
func RegisterHooks[T any](w *World, h Hooks[T]) ComponentID {
	var zero T
	rt := reflect.TypeOf(zero)
	if id, ok := w.byType[rt]; ok {
		return id
	}
	info := &base.TypeInfo{
		Name:  rt.String(),
		Elem:  rt,
		Hooks: eraseHooks(h),
	}
	id := w.store.RegisterType(w.index, info)
	w.byType[rt] = id
	w.log.Info("component registered", "component", info.Name, "id", id)
	return id
}

// ID returns the component id of a registered type.
func ID[T any](w *World) (ComponentID, bool) {
	var zero T
	id, ok := w.byType[reflect.TypeOf(zero)]
	return id, ok
}

// Set assigns a component value on e, adding the component (and moving e to
// the matching archetype) when absent. Fires the value-set notification for
// e's row. Deferred while a notification is being delivered.
func Set[T any](w *World, e Entity, v T) {
	id := mustID[T](w)
	if w.deferring() {
		w.queue = append(w.queue, command{kind: cmdSet, e: e, id: id, val: reflect.ValueOf(v)})
		return
	}
	w.applySet(e, id, reflect.ValueOf(v))
}

// Get reads e's value of component T.
func Get[T any](w *World, e Entity) (T, bool) {
	var zero T
	id, ok := ID[T](w)
	if !ok {
		return zero, false
	}
	rec, ok := w.index.Get(e)
	if !ok {
		return zero, false
	}
	t := w.store.Table(rec.Table)
	ci := t.ColumnOf(id)
	if ci < 0 {
		return zero, false
	}
	return t.Data().Column(ci).At(int(rec.Row)).Interface().(T), true
}

// Remove drops component T from e, moving it to the archetype without the
// component. A no-op when e does not hold T. Deferred while a notification
// is being delivered.
func Remove[T any](w *World, e Entity) {
	id := mustID[T](w)
	if w.deferring() {
		w.queue = append(w.queue, command{kind: cmdRemove, e: e, id: id})
		return
	}
	w.applyRemove(e, id)
}

func mustID[T any](w *World) ComponentID {
	id, ok := ID[T](w)
	var zero T
	base.Assertf(ok, "component type %T not registered", zero)
	return id
}

// eraseHooks wraps typed hooks into the reflect-level callbacks the storage
// layer dispatches on.
func eraseHooks[T any](h Hooks[T]) base.Hooks {
	var out base.Hooks
	if h.Ctor != nil {
		ctor := h.Ctor
		out.Ctor = func(dst reflect.Value) {
			ctor(dst.Addr().Interface().(*T))
		}
	}
	if h.Copy != nil {
		cp := h.Copy
		out.Copy = func(dst, src reflect.Value) {
			cp(dst.Addr().Interface().(*T), src.Addr().Interface().(*T))
		}
	}
	if h.Dtor != nil {
		dtor := h.Dtor
		out.Dtor = func(v reflect.Value) {
			dtor(v.Addr().Interface().(*T))
		}
	}
	return out
}
