package parser

import (
	"github.com/tinywasm/core/decode"
	"github.com/tinywasm/core/wasm"
)

// InstructionReader decodes one opcode at a time from a borrowed region
// that a section sub-reader has already restricted to exactly the bytes of
// an expression terminated by End (0x0B). It is cheap to construct over any
// sub-slice, which is how the Global/Element/Data initializer regions and
// a Code entry's body are all read with the same type.
type InstructionReader struct {
	c *decode.Cursor
}

// NewInstructionReader wraps buf, a borrowed slice expected to contain a
// sequence of instructions ending in one trailing End.
func NewInstructionReader(buf []byte) *InstructionReader {
	return &InstructionReader{c: decode.NewCursor(buf)}
}

// EOF reports whether every byte of the region has been consumed.
func (r *InstructionReader) EOF() bool { return r.c.EOF() }

// Position returns how many bytes of the region have been consumed.
func (r *InstructionReader) Position() int { return r.c.Position() }

// Read decodes and returns the next instruction.
func (r *InstructionReader) Read() (wasm.Instruction, error) {
	opByte, err := r.c.ReadByte()
	if err != nil {
		return wasm.Instruction{}, err
	}
	op := wasm.Opcode(opByte)
	inst := wasm.Instruction{Op: op}

	switch op {
	case wasm.OpUnreachable, wasm.OpNop, wasm.OpElse, wasm.OpEnd, wasm.OpReturn,
		wasm.OpDrop, wasm.OpSelect,
		wasm.OpMemorySize, wasm.OpMemoryGrow:
		if op == wasm.OpMemorySize || op == wasm.OpMemoryGrow {
			if err := r.readMemoryIndexZeroByte(); err != nil {
				return wasm.Instruction{}, err
			}
		}
		return inst, nil

	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
		bt, err := r.readBlockType()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.Block = bt
		return inst, nil

	case wasm.OpBr, wasm.OpBrIf:
		l, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.Label = wasm.LabelIndex(l)
		return inst, nil

	case wasm.OpBrTable:
		n, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		labels := make([]wasm.LabelIndex, n)
		for i := range labels {
			l, err := r.c.ReadLEB128U32()
			if err != nil {
				return wasm.Instruction{}, err
			}
			labels[i] = wasm.LabelIndex(l)
		}
		def, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.Labels = labels
		inst.Default = wasm.LabelIndex(def)
		return inst, nil

	case wasm.OpCall:
		f, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.FuncIdx = wasm.FuncIndex(f)
		return inst, nil

	case wasm.OpCallIndirect:
		t, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.TypeIdx = wasm.TypeIndex(t)
		if err := r.readTableIndexZeroByte(); err != nil {
			return wasm.Instruction{}, err
		}
		return inst, nil

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		l, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.LocalIdx = wasm.LocalIndex(l)
		return inst, nil

	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		g, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.GlobalIdx = wasm.GlobalIndex(g)
		return inst, nil

	case wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
		wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
		wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U,
		wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
		wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
		mem, err := r.readMemoryArgument()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.Mem = mem
		return inst, nil

	case wasm.OpI32Const:
		v, err := r.c.ReadLEB128S32()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.I32 = v
		return inst, nil

	case wasm.OpI64Const:
		v, err := r.c.ReadLEB128S64()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.I64 = v
		return inst, nil

	case wasm.OpF32Const:
		v, err := r.c.ReadFixedF32LE()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.F32 = v
		return inst, nil

	case wasm.OpF64Const:
		v, err := r.c.ReadFixedF64LE()
		if err != nil {
			return wasm.Instruction{}, err
		}
		inst.F64 = v
		return inst, nil

	case wasm.OpTruncSatPrefix:
		sub, err := r.c.ReadByte()
		if err != nil {
			return wasm.Instruction{}, err
		}
		if sub > byte(wasm.SatOpI64TruncF64U) {
			return wasm.Instruction{}, r.wrapErr(wasm.InvalidSatOpCodeError(sub))
		}
		inst.SatOp = wasm.SatOp(sub)
		return inst, nil

	default:
		if isNullaryNumeric(op) {
			return inst, nil
		}
		return wasm.Instruction{}, r.wrapErr(wasm.InvalidInstructionError(opByte))
	}
}

// isNullaryNumeric reports whether op is one of the comparison / arithmetic
// / conversion / sign-extension opcodes that carry no immediate (0x45-0xBF,
// 0xC0-0xC4).
func isNullaryNumeric(op wasm.Opcode) bool {
	return (op >= wasm.OpI32Eqz && op <= wasm.OpF64ReinterpretI64) ||
		(op >= wasm.OpI32Extend8S && op <= wasm.OpI64Extend32S)
}

func (r *InstructionReader) readMemoryArgument() (wasm.MemoryArgument, error) {
	align, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.MemoryArgument{}, err
	}
	offset, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.MemoryArgument{}, err
	}
	return wasm.MemoryArgument{Align: align, Offset: offset}, nil
}

// readMemoryIndexZeroByte consumes the required 0x00 memory-index byte
// that follows memory.size / memory.grow.
func (r *InstructionReader) readMemoryIndexZeroByte() error {
	b, err := r.c.ReadByte()
	if err != nil {
		return err
	}
	if b != 0x00 {
		return r.wrapErr(wasm.InvalidMemorySizeByteError(b))
	}
	return nil
}

// readTableIndexZeroByte consumes the required 0x00 table-index byte that
// follows call_indirect's type index.
func (r *InstructionReader) readTableIndexZeroByte() error {
	b, err := r.c.ReadByte()
	if err != nil {
		return err
	}
	if b != 0x00 {
		return r.wrapErr(wasm.InvalidTableZeroByteError(b))
	}
	return nil
}

// readBlockType implements §4.5's BlockType decoding: try a value type
// without consuming on failure, then try the 0x40 empty marker, then fall
// back to an s33 type index.
func (r *InstructionReader) readBlockType() (wasm.BlockType, error) {
	if vt, err := r.c.ReadValueType(); err == nil {
		return wasm.BlockType{Kind: wasm.BlockTypeKindValue, Value: vt}, nil
	}

	b, err := r.c.ReadByte()
	if err != nil {
		return wasm.BlockType{}, err
	}
	if b == 0x40 {
		return wasm.BlockType{Kind: wasm.BlockTypeKindEmpty}, nil
	}

	// b wasn't the 0x40 empty marker; rewind so the s33 decoder sees the
	// byte as the start of its own encoding rather than skipping it.
	r.c.Rewind(1)
	n, err := r.c.ReadLEB128S33()
	if err != nil {
		return wasm.BlockType{}, err
	}
	if n < 0 || n > int64(^uint32(0)) {
		return wasm.BlockType{}, r.wrapErr(wasm.InvalidBlockTypeIndexError{})
	}
	return wasm.BlockType{Kind: wasm.BlockTypeKindTypeIndex, Index: wasm.TypeIndex(n)}, nil
}

func (r *InstructionReader) wrapErr(err error) error {
	return wasm.DecodeError{Offset: r.c.Position(), Err: err}
}

// BranchTableReader gives read access to a br_table's label list, which
// the primary instruction decode already consumed into
// Instruction.Labels/Default. It holds that decoded slice, not a byte
// sub-slice of the code, so reading it never touches the code cursor. The
// validator's br_table check reads Instruction.Labels/Default directly
// and does not use this type.
type BranchTableReader struct {
	labels  []wasm.LabelIndex
	def     wasm.LabelIndex
	hasDone bool
}

// NewBranchTableReader wraps an already-decoded label list; re-traversal
// just replays the slice instead of re-parsing LEB128 bytes, since the
// primary InstructionReader has already paid that cost once.
func NewBranchTableReader(labels []wasm.LabelIndex, def wasm.LabelIndex) *BranchTableReader {
	return &BranchTableReader{labels: labels, def: def}
}

// Targets returns the table's non-default labels.
func (b *BranchTableReader) Targets() []wasm.LabelIndex { return b.labels }

// Default returns the table's default label.
func (b *BranchTableReader) Default() wasm.LabelIndex { return b.def }
