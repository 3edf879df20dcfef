package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarnim-deepsource/entstore/internal/base"
)

func TestAllocRelease(t *testing.T) {
	t.Parallel()
	x := New()

	e1 := x.Alloc()
	e2 := x.Alloc()
	require.NotEqual(t, e1.ID, e2.ID)
	require.NotZero(t, e1.ID, "slot 0 must never be issued")
	assert.True(t, x.Alive(e1))
	assert.True(t, x.Alive(e2))
	assert.Equal(t, 2, x.Count())

	x.Release(e1)
	assert.False(t, x.Alive(e1))
	assert.Equal(t, 1, x.Count())
}

func TestReuseBumpsGeneration(t *testing.T) {
	t.Parallel()
	x := New()

	e1 := x.Alloc()
	x.Release(e1)
	e2 := x.Alloc()
	require.Equal(t, e1.ID, e2.ID, "dead slot should be reused")
	assert.Greater(t, e2.Gen, e1.Gen)
	assert.False(t, x.Alive(e1), "stale handle must not see the new entity")
	assert.True(t, x.Alive(e2))
}

func TestAllocSkipsResurrectedSlots(t *testing.T) {
	t.Parallel()
	x := New()

	e := x.Alloc()
	x.Release(e)
	// A restore can bring a freed slot back to life while it is still
	// parked on the free list.
	x.Rebind(e, 3, 0)
	require.True(t, x.Alive(e))

	fresh := x.Alloc()
	assert.NotEqual(t, e.ID, fresh.ID)
	assert.True(t, x.Alive(e))
}

func TestLookupIgnoresGeneration(t *testing.T) {
	t.Parallel()
	x := New()

	e1 := x.Alloc()
	x.Rebind(e1, 4, 2)
	x.Release(e1)
	e2 := x.Alloc()
	require.Equal(t, e1.ID, e2.ID, "dead slot should be reused")
	x.Rebind(e2, 6, 0)

	// The stale handle misses, but the identifier still resolves to the
	// occupying entity's row.
	require.False(t, x.Alive(e1))
	rec, ok := x.Lookup(e1.ID)
	require.True(t, ok)
	assert.Equal(t, base.TableID(6), rec.Table)
	assert.Equal(t, int32(0), rec.Row)

	x.Release(e2)
	_, ok = x.Lookup(e1.ID)
	assert.False(t, ok, "dead slots do not resolve")
	_, ok = x.Lookup(0)
	assert.False(t, ok)
}

func TestSetGeneration(t *testing.T) {
	t.Parallel()
	x := New()

	e := x.Alloc()
	x.Release(e)
	x.SetGeneration(base.Entity{ID: e.ID, Gen: 9})
	assert.Equal(t, uint32(9), x.Generation(e.ID))
	assert.False(t, x.Alive(base.Entity{ID: e.ID, Gen: 9}), "re-stamp must not resurrect")
}

func TestCopyIsIndependent(t *testing.T) {
	t.Parallel()
	x := New()

	e1 := x.Alloc()
	e2 := x.Alloc()
	x.Rebind(e1, 1, 0)
	x.Rebind(e2, 1, 1)

	c := x.Copy()

	// Mutate the original; the copy must not move.
	x.Release(e1)
	e3 := x.Alloc()
	x.Rebind(e3, 2, 0)

	require.True(t, c.Alive(e1))
	rec, ok := c.Get(e1)
	require.True(t, ok)
	assert.Equal(t, base.TableID(1), rec.Table)
	assert.Equal(t, int32(0), rec.Row)
}

func TestRestoreFrom(t *testing.T) {
	t.Parallel()
	x := New()

	e1 := x.Alloc()
	x.Rebind(e1, 1, 0)
	c := x.Copy()
	watermark := x.LastID()

	x.Release(e1)
	x.Alloc()
	x.Alloc()

	x.RestoreFrom(c)
	x.SetLastID(watermark)
	assert.True(t, x.Alive(e1))
	assert.Equal(t, watermark, x.LastID())
	assert.Equal(t, 1, x.Count())
}

func TestRebindGrows(t *testing.T) {
	t.Parallel()
	x := New()

	e := base.Entity{ID: 40, Gen: 2}
	x.Rebind(e, 5, 7)
	rec, ok := x.Get(e)
	require.True(t, ok)
	assert.Equal(t, base.TableID(5), rec.Table)
	assert.Equal(t, int32(7), rec.Row)
	assert.GreaterOrEqual(t, x.LastID(), uint32(40))
}
