package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

func TestInstructionReaderLocalGetEnd(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0x20, 0x00, 0x0B})

	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpLocalGet, inst.Op)
	require.Equal(t, wasm.LocalIndex(0), inst.LocalIdx)
	require.False(t, r.EOF())

	inst, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpEnd, inst.Op)
	require.True(t, r.EOF())
}

func TestInstructionReaderI32Const(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0x41, 0x05, 0x0B})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpI32Const, inst.Op)
	require.Equal(t, int32(5), inst.I32)
}

func TestInstructionReaderBlockTypeEmpty(t *testing.T) {
	// block (empty) ... end end
	r := parser.NewInstructionReader([]byte{0x02, 0x40, 0x0B, 0x0B})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpBlock, inst.Op)
	require.Equal(t, wasm.BlockTypeKindEmpty, inst.Block.Kind)
}

func TestInstructionReaderBlockTypeValue(t *testing.T) {
	// block (result i32) end end
	r := parser.NewInstructionReader([]byte{0x02, 0x7F, 0x0B, 0x0B})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.BlockTypeKindValue, inst.Block.Kind)
	require.Equal(t, wasm.ValueTypeI32, inst.Block.Value)
}

func TestInstructionReaderBlockTypeIndex(t *testing.T) {
	// block (type 3) end, encoded as s33 value 3 -> single byte 0x03.
	r := parser.NewInstructionReader([]byte{0x02, 0x03, 0x0B})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.BlockTypeKindTypeIndex, inst.Block.Kind)
	require.Equal(t, wasm.TypeIndex(3), inst.Block.Index)
}

func TestInstructionReaderCallIndirectRequiresZeroByte(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0x11, 0x02, 0x01})
	_, err := r.Read()
	require.Error(t, err)
}

func TestInstructionReaderMemoryGrowRequiresZeroByte(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0x40, 0x01})
	_, err := r.Read()
	require.Error(t, err)
}

func TestInstructionReaderLoadStoreMemArg(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0x28, 0x02, 0x04})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpI32Load, inst.Op)
	require.Equal(t, uint32(2), inst.Mem.Align)
	require.Equal(t, uint32(4), inst.Mem.Offset)
}

func TestInstructionReaderTruncSat(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0xFC, 0x00})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.OpTruncSatPrefix, inst.Op)
	require.Equal(t, wasm.SatOpI32TruncF32S, inst.SatOp)
}

func TestInstructionReaderInvalidTruncSatSubOp(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0xFC, 0x08})
	_, err := r.Read()
	require.Error(t, err)
}

func TestInstructionReaderBrTable(t *testing.T) {
	// br_table with 2 targets [1, 2] and default 0.
	r := parser.NewInstructionReader([]byte{0x0E, 0x02, 0x01, 0x02, 0x00})
	inst, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, []wasm.LabelIndex{1, 2}, inst.Labels)
	require.Equal(t, wasm.LabelIndex(0), inst.Default)

	bt := parser.NewBranchTableReader(inst.Labels, inst.Default)
	require.Equal(t, []wasm.LabelIndex{1, 2}, bt.Targets())
	require.Equal(t, wasm.LabelIndex(0), bt.Default())
}

func TestInstructionReaderUnknownOpcode(t *testing.T) {
	r := parser.NewInstructionReader([]byte{0xFF})
	_, err := r.Read()
	require.Error(t, err)
}
