package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/leb128"
)

func TestReadUint32(t *testing.T) {
	for i, test := range []struct {
		in   []byte
		want uint32
		n    int
		err  error
	}{
		{in: []byte{0x00}, want: 0, n: 1},
		{in: []byte{0x7f}, want: 0x7f, n: 1},
		{in: []byte{0x80, 0x01}, want: 0x80, n: 2},
		{in: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, want: 0xffffffff, n: 5},
		{in: []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, err: leb128.ErrOverflow},
		{in: []byte{0xff, 0xff, 0xff, 0xff, 0x8f}, err: leb128.ErrOverflow},
		{in: []byte{0x80}, err: leb128.ErrUnexpectedEOF},
		{in: []byte{}, err: leb128.ErrUnexpectedEOF},
	} {
		got, n, err := leb128.ReadUint32(test.in)
		if test.err != nil {
			require.ErrorIs(t, err, test.err, "case %d", i)
			continue
		}
		require.NoError(t, err, "case %d", i)
		require.Equal(t, test.want, got, "case %d", i)
		require.Equal(t, test.n, n, "case %d", i)
	}
}

func TestReadInt32RoundTrip(t *testing.T) {
	samples := []int32{0, 1, -1, 63, -64, 64, -65, 1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31)}
	for _, v := range samples {
		buf := encodeSigned(int64(v), 32)
		got, n, err := leb128.ReadInt32(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

func TestReadInt64RoundTrip(t *testing.T) {
	samples := []int64{0, 1, -1, 1 << 40, -(1 << 40), 1<<62 - 1, -(1 << 62)}
	for _, v := range samples {
		buf := encodeSigned(v, 64)
		got, n, err := leb128.ReadInt64(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

func TestReadInt33Range(t *testing.T) {
	buf := encodeSigned(1<<32-1, 33)
	got, _, err := leb128.ReadInt33(buf)
	require.NoError(t, err)
	require.Equal(t, int64(1<<32-1), got)
}

func TestReadUint32TrailingGarbageRejected(t *testing.T) {
	_, _, err := leb128.ReadUint32([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.ErrorIs(t, err, leb128.ErrOverflow)
}

// encodeSigned is a minimal reference encoder used only by these tests to
// produce canonical LEB128 bit patterns to feed back into the decoder.
func encodeSigned(value int64, width uint) []byte {
	var out []byte
	more := true
	for more {
		b := byte(value & 0x7f)
		value >>= 7
		signBitSet := b&0x40 != 0
		if (value == 0 && !signBitSet) || (value == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
