package decode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/decode"
	"github.com/tinywasm/core/wasm"
)

func TestReadValueTypeLeavesPositionOnFailure(t *testing.T) {
	c := decode.NewCursor([]byte{0x00})
	_, err := c.ReadValueType()
	require.Error(t, err)
	require.Equal(t, 0, c.Position())
}

func TestReadValueTypeAdvancesOnSuccess(t *testing.T) {
	c := decode.NewCursor([]byte{0x7F, 0x7E})
	vt, err := c.ReadValueType()
	require.NoError(t, err)
	require.Equal(t, wasm.ValueTypeI32, vt)
	require.Equal(t, 1, c.Position())

	vt, err = c.ReadValueType()
	require.NoError(t, err)
	require.Equal(t, wasm.ValueTypeI64, vt)
}

func TestReadLimitsNoMax(t *testing.T) {
	c := decode.NewCursor([]byte{0x00, 0x05})
	lim, err := c.ReadLimits()
	require.NoError(t, err)
	require.False(t, lim.HasMax)
	require.Equal(t, uint32(5), lim.Min)
}

func TestReadLimitsWithMax(t *testing.T) {
	c := decode.NewCursor([]byte{0x01, 0x02, 0x08})
	lim, err := c.ReadLimits()
	require.NoError(t, err)
	require.True(t, lim.HasMax)
	require.Equal(t, uint32(2), lim.Min)
	require.Equal(t, uint32(8), lim.Max)
}

func TestReadLimitsBadFlag(t *testing.T) {
	c := decode.NewCursor([]byte{0x02})
	_, err := c.ReadLimits()
	require.Error(t, err)
}

func TestReadTableTypeRejectsNonFuncref(t *testing.T) {
	c := decode.NewCursor([]byte{0x7F, 0x00, 0x01})
	_, err := c.ReadTableType()
	require.Error(t, err)
}

func TestReadFunctionType(t *testing.T) {
	// (i32, i32) -> (i32)
	c := decode.NewCursor([]byte{0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F})
	ft, err := c.ReadFunctionType()
	require.NoError(t, err)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, ft.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, ft.Results)
}

func TestReadFunctionTypeBadLeadingByte(t *testing.T) {
	c := decode.NewCursor([]byte{0x61})
	_, err := c.ReadFunctionType()
	require.Error(t, err)
}

func TestReadFixedU32LE(t *testing.T) {
	c := decode.NewCursor([]byte{0x00, 0x61, 0x73, 0x6D})
	v, err := c.ReadFixedU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(0x6D736100), v)
}

func TestReadStringRejectsInvalidUTF8(t *testing.T) {
	c := decode.NewCursor([]byte{0x02, 0xff, 0xfe})
	_, err := c.ReadString()
	require.Error(t, err)
}

func TestReadLengthPrefixedBytesEOF(t *testing.T) {
	c := decode.NewCursor([]byte{0x05, 0x01})
	_, err := c.ReadLengthPrefixedBytes()
	require.Error(t, err)
}

func TestCursorEOF(t *testing.T) {
	c := decode.NewCursor([]byte{0x01})
	require.False(t, c.EOF())
	_, err := c.ReadByte()
	require.NoError(t, err)
	require.True(t, c.EOF())
}
