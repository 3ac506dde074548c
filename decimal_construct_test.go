package rplcore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalConstructors(t *testing.T) {
	rt := New()

	ref, err := rt.NewDecimalFromUint64(7)
	require.NoError(t, err)
	v, err := rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "7", v.renderEditing())

	ref, err = rt.NewDecimalFromInt32(-3)
	require.NoError(t, err)
	v, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "-3", v.renderEditing())

	ref, err = rt.NewDecimalFromUint32(9)
	require.NoError(t, err)
	v, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "9", v.renderEditing())

	ref, err = rt.NewDecimalFromSignMagnitude(true, 0)
	require.NoError(t, err)
	v, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, NegativeZero, v.class())

	big123, _ := new(big.Int).SetString("123456789012345678901234", 10)
	ref, err = rt.NewDecimalFromBigInt(big123)
	require.NoError(t, err)
	v, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234", v.renderEditing())

	ref, err = rt.NewDecimalFromDecimal64(false, 125, -2)
	require.NoError(t, err)
	v, err = rt.decimalAt(mustPayload(t, rt, ref))
	require.NoError(t, err)
	assert.Equal(t, "1.25", v.renderEditing())
}

func TestBigIntOverflowClamps(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := bits128FromBigInt(huge)
	assert.IsType(t, ErrArithmetic{}, err)
}
