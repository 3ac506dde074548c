package rplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCRecyclesUnreachable(t *testing.T) {
	rt := New()
	_, err := rt.NewDecimalFromInt64(1) // garbage: never pushed or guarded
	require.NoError(t, err)
	_, err = rt.NewDecimalFromInt64(2) // garbage too
	require.NoError(t, err)

	before := rt.tempEnd
	recycled, err := rt.GC()
	require.NoError(t, err)
	assert.Equal(t, uint(before-rt.globalsEnd), recycled)
	assert.Equal(t, rt.globalsEnd, rt.tempEnd)
}

func TestGCPreservesStackEntry(t *testing.T) {
	rt := New()
	_, err := rt.NewDecimalFromInt64(99) // garbage beneath the survivor
	require.NoError(t, err)
	survivor, err := rt.NewDecimalFromInt64(42)
	require.NoError(t, err)
	rt.Push(survivor)

	_, err = rt.GC()
	require.NoError(t, err)

	top, err := rt.Peek(0)
	require.NoError(t, err)
	v, err := rt.decimalAt(mustPayload(t, rt, top))
	require.NoError(t, err)
	assert.Equal(t, "42", v.renderEditing())
}

func TestGCPreservesGuardedHandle(t *testing.T) {
	rt := New()
	_, err := rt.NewDecimalFromInt64(1) // garbage
	require.NoError(t, err)
	survivor, err := rt.NewDecimalFromInt64(7)
	require.NoError(t, err)
	g := rt.Protect(survivor)
	defer g.Release()

	_, err = rt.GC()
	require.NoError(t, err)

	v, err := rt.decimalAt(mustPayload(t, rt, g.Ref()))
	require.NoError(t, err)
	assert.Equal(t, "7", v.renderEditing())
}

func TestGCNoOpWhenAllReachable(t *testing.T) {
	rt := New()
	a, err := rt.NewDecimalFromInt64(1)
	require.NoError(t, err)
	rt.Push(a)

	recycled, err := rt.GC()
	require.NoError(t, err)
	assert.Equal(t, uint(0), recycled)
}

func TestAllocationTriggersGCUnderCapacity(t *testing.T) {
	// A tight capacity forces allocate() to collect garbage before it can
	// satisfy a later allocation.
	rt := New(WithCapacity(256), WithChunkSize(64))
	for i := 0; i < 20; i++ {
		_, err := rt.NewDecimalFromInt64(int64(i)) // all garbage
		require.NoError(t, err)
	}
	survivor, err := rt.NewDecimalFromInt64(123)
	require.NoError(t, err)
	rt.Push(survivor)

	for i := 0; i < 20; i++ {
		_, err := rt.NewDecimalFromInt64(int64(i))
		require.NoError(t, err)
	}

	top, err := rt.Peek(0)
	require.NoError(t, err)
	v, err := rt.decimalAt(mustPayload(t, rt, top))
	require.NoError(t, err)
	assert.Equal(t, "123", v.renderEditing())
}
