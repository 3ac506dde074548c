package rplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopPeek(t *testing.T) {
	rt := New()
	a, err := rt.NewDecimalFromInt64(1)
	require.NoError(t, err)
	b, err := rt.NewDecimalFromInt64(2)
	require.NoError(t, err)

	rt.Push(a)
	rt.Push(b)
	assert.Equal(t, 2, rt.Depth())

	top, err := rt.Peek(0)
	require.NoError(t, err)
	assert.Equal(t, b, top)

	got, err := rt.Pop()
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.Equal(t, 1, rt.Depth())

	rt.Drop(5) // clamps rather than erroring
	assert.Equal(t, 0, rt.Depth())

	_, err = rt.Pop()
	assert.Equal(t, ErrStackUnderflow{}, err)
}

func TestGuardLIFOPanic(t *testing.T) {
	rt := New()
	a, _ := rt.NewDecimalFromInt64(1)
	g1 := rt.Protect(a)
	g2 := rt.Protect(a)

	assert.Panics(t, func() { g1.Release() })
	g2.Release()
	g1.Release()
}

func TestStoreRecallShadowing(t *testing.T) {
	rt := New()
	v1, err := rt.NewDecimalFromInt64(1)
	require.NoError(t, err)
	require.NoError(t, rt.Store("x", v1))

	ref, err := rt.Recall("x")
	require.NoError(t, err)
	got, err := rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "1", got.renderEditing())

	v2, err := rt.NewDecimalFromInt64(2)
	require.NoError(t, err)
	require.NoError(t, rt.Store("x", v2))

	ref, err = rt.Recall("x")
	require.NoError(t, err)
	got, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "2", got.renderEditing())
}

// TestStoreDoesNotClobberLiveTemporary covers the case where Store is
// called while a Temporary allocated after the last Globals growth is
// still referenced from the stack: storeBinding must slide that
// temporary (and the stack entry pointing at it) out of the way rather
// than overwrite it.
func TestStoreDoesNotClobberLiveTemporary(t *testing.T) {
	rt := New()
	a, err := rt.NewDecimalFromInt64(10)
	require.NoError(t, err)
	rt.Push(a)

	b, err := rt.NewDecimalFromInt64(5)
	require.NoError(t, err)
	require.NoError(t, rt.Store("x", b))

	top, err := rt.RenderTop()
	require.NoError(t, err)
	assert.Equal(t, "10", top)

	ref, err := rt.Recall("x")
	require.NoError(t, err)
	got, err := rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "5", got.renderEditing())
}

func TestRecallNotFound(t *testing.T) {
	rt := New()
	_, err := rt.Recall("nope")
	assert.Equal(t, ErrNotFound{Name: "nope"}, err)
}

func mustPayload(t *testing.T, rt *Runtime, obj Ref) Ref {
	t.Helper()
	_, _, payload, err := rt.kindAt(obj)
	require.NoError(t, err)
	return payload
}
