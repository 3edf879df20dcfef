package entstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Blob owns its byte slice, so it registers the full hook set; capturing it
// must go through ctor+copy instead of a bitwise clone.
type Blob struct{ Data []byte }

type hookCounters struct {
	ctors, copies, dtors int
	events               []string
}

func registerBlob(w *World, c *hookCounters) ComponentID {
	return RegisterHooks(w, Hooks[Blob]{
		Ctor: func(b *Blob) {
			c.ctors++
			c.events = append(c.events, "ctor")
		},
		Copy: func(dst, src *Blob) {
			c.copies++
			c.events = append(c.events, "copy")
			dst.Data = append(dst.Data[:0], src.Data...)
		},
		Dtor: func(b *Blob) {
			c.dtors++
			c.events = append(c.events, "dtor")
			b.Data = nil
		},
	})
}

func TestDuplicatorInvokesHooks(t *testing.T) {
	t.Parallel()
	w := NewWorld()
	var c hookCounters
	blobID := registerBlob(w, &c)

	e := w.NewEntity(blobID)
	Set(w, e, Blob{Data: []byte("abc")})

	c = hookCounters{}
	s := w.Snapshot()

	assert.Equal(t, 1, c.ctors, "destination range ctor'd before copy")
	assert.Equal(t, 1, c.copies)
	assert.Zero(t, c.dtors, "capture must not destruct live data")
	assert.Equal(t, []string{"ctor", "copy"}, c.events)
	s.Free()
}

func TestCaptureIsDeepCopy(t *testing.T) {
	t.Parallel()
	w := NewWorld()
	var c hookCounters
	blobID := registerBlob(w, &c)

	e := w.NewEntity(blobID)
	Set(w, e, Blob{Data: []byte("abc")})

	s := w.Snapshot()

	// Corrupt the live value through its shared backing array.
	live, ok := Get[Blob](w, e)
	require.True(t, ok)
	live.Data[0] = 'z'

	w.Restore(s)

	got, ok := Get[Blob](w, e)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got.Data), "captured copy is independent of the live buffer")
}

func TestFreeDestructsCapturedData(t *testing.T) {
	t.Parallel()
	w := NewWorld()
	var c hookCounters
	blobID := registerBlob(w, &c)

	e := w.NewEntity(blobID)
	Set(w, e, Blob{Data: []byte("abc")})

	s := w.Snapshot()
	c = hookCounters{}
	s.Free()

	assert.Equal(t, 1, c.dtors, "discard destructs the captured copy")

	// The live value is untouched.
	got, ok := Get[Blob](w, e)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got.Data))
}

func TestRestoreDestructsReplacedRows(t *testing.T) {
	t.Parallel()
	w := NewWorld()
	var c hookCounters
	blobID := registerBlob(w, &c)

	e := w.NewEntity(blobID)
	Set(w, e, Blob{Data: []byte("old")})
	s := w.Snapshot()

	Set(w, e, Blob{Data: []byte("new")})
	c = hookCounters{}
	w.Restore(s)

	// The live row is destructed exactly once when the captured storage is
	// installed in its place; the captured values transfer without another
	// copy.
	assert.Equal(t, 1, c.dtors)
	assert.Zero(t, c.copies)

	got, _ := Get[Blob](w, e)
	assert.Equal(t, "old", string(got.Data))
}

func TestDeleteDestructsOwnedValue(t *testing.T) {
	t.Parallel()
	w := NewWorld()
	var c hookCounters
	blobID := registerBlob(w, &c)

	e := w.NewEntity(blobID)
	Set(w, e, Blob{Data: []byte("abc")})
	c = hookCounters{}
	w.Delete(e)
	assert.Equal(t, 1, c.dtors)
}

func TestPlainTypesSkipHooks(t *testing.T) {
	t.Parallel()
	w, posID, _, _ := setup(t)

	e := w.NewEntity(posID)
	Set(w, e, Position{X: 1})

	// No hooks registered: capture is a bitwise clone and must still be
	// independent of the live column.
	s := w.Snapshot()
	Set(w, e, Position{X: 2})
	w.Restore(s)

	got, _ := Get[Position](w, e)
	assert.Equal(t, Position{X: 1}, got)
}
