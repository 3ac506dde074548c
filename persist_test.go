package rplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadGlobalsRoundTrip(t *testing.T) {
	rt := New()
	v, err := rt.NewDecimalFromInt64(42)
	require.NoError(t, err)
	require.NoError(t, rt.Store("x", v))
	v2, err := rt.NewDecimalFromInt64(7)
	require.NoError(t, err)
	require.NoError(t, rt.Store("y", v2))

	blob, err := rt.SaveGlobals()
	require.NoError(t, err)

	rt2 := New()
	require.NoError(t, rt2.LoadGlobals(blob))

	ref, err := rt2.Recall("x")
	require.NoError(t, err)
	val, err := rt2.decimalAt(mustPayload(t, rt2, ref))
	require.NoError(t, err)
	assert.Equal(t, "42", val.renderEditing())

	ref, err = rt2.Recall("y")
	require.NoError(t, err)
	val, err = rt2.decimalAt(mustPayload(t, rt2, ref))
	require.NoError(t, err)
	assert.Equal(t, "7", val.renderEditing())
}

func TestLoadGlobalsRejectsTruncatedHeader(t *testing.T) {
	rt := New()
	err := rt.LoadGlobals([]byte{1, 2})
	assert.Error(t, err)
}
