package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/rplcore/internal/leb128"
)

func TestRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 63, 64, 127, 128, 129, 16383, 16384, 1 << 20, 1<<63 - 1}
	for _, n := range cases {
		buf := leb128.Encode(nil, n)
		assert.Equal(t, leb128.Size(n), len(buf), "size for %d", n)
		got, size, ok := leb128.Decode(buf)
		assert.True(t, ok)
		assert.Equal(t, len(buf), size)
		assert.Equal(t, n, got)
	}
}

func TestZeroIsOneByte(t *testing.T) {
	buf := leb128.Encode(nil, 0)
	assert.Equal(t, []byte{0}, buf)
}

func TestDecodeTruncated(t *testing.T) {
	_, _, ok := leb128.Decode([]byte{0x80, 0x80})
	assert.False(t, ok)
}

func TestDecodeEmpty(t *testing.T) {
	_, _, ok := leb128.Decode(nil)
	assert.False(t, ok)
}
