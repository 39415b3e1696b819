package parser

import (
	"github.com/tinywasm/core/decode"
	"github.com/tinywasm/core/wasm"
)

// itemReader is the shared shape of every section that begins with a
// LEB128 u32 count followed by exactly that many items: it owns the
// cursor over the section's body and tracks how many items have been
// handed out so Read can refuse to run past the declared count.
type itemReader struct {
	c     *decode.Cursor
	count uint32
	read  uint32
}

func newItemReader(buf []byte) (itemReader, error) {
	c := decode.NewCursor(buf)
	n, err := c.ReadLEB128U32()
	if err != nil {
		return itemReader{}, err
	}
	return itemReader{c: c, count: n}, nil
}

// Count reports how many items this section declares.
func (r *itemReader) Count() int { return int(r.count) }

// Remaining reports how many items are still unread.
func (r *itemReader) Remaining() int { return int(r.count - r.read) }

// reset rewinds the reader to its first item by re-wrapping buf and
// skipping its count prefix again. Nothing in this package calls it, and
// the section readers don't keep their body slice, so readers handed out
// by the parser are single-pass.
func (r *itemReader) reset(buf []byte) {
	// buf must be the same body slice Count() was computed from.
	r.c = decode.NewCursor(buf)
	r.c.ReadLEB128U32() //nolint:errcheck // count prefix already validated once
	r.read = 0
}

func (r *itemReader) checkBounds() error {
	if r.read >= r.count {
		return errSectionExhausted
	}
	r.read++
	return nil
}

var errSectionExhausted = wasm.UnneededBytesError{}

// --- Custom (id 0) ---

// CustomSectionReader exposes a custom section's name and opaque payload.
// Custom sections aren't an item vector, so Count reports -1.
type CustomSectionReader struct {
	Name string
	Data []byte
}

// NewCustomSectionReader reads the section's name, then treats the
// remainder of buf as the section's opaque payload.
func NewCustomSectionReader(buf []byte) (*CustomSectionReader, error) {
	c := decode.NewCursor(buf)
	name, err := c.ReadString()
	if err != nil {
		return nil, err
	}
	return &CustomSectionReader{Name: name, Data: c.Rest()}, nil
}

func (r *CustomSectionReader) Count() int { return -1 }

// --- Unknown (any id not 0-11) ---

// UnknownSectionReader carries the raw body of a section whose id the
// format doesn't assign a meaning to; the parser still hands it to the
// caller rather than refusing to parse.
type UnknownSectionReader struct {
	ID   byte
	Data []byte
}

func NewUnknownSectionReader(id byte, buf []byte) *UnknownSectionReader {
	return &UnknownSectionReader{ID: id, Data: buf}
}

func (r *UnknownSectionReader) Count() int { return -1 }

// --- Type (id 1) ---

type TypeSectionReader struct{ itemReader }

func NewTypeSectionReader(buf []byte) (*TypeSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &TypeSectionReader{ir}, nil
}

func (r *TypeSectionReader) Read() (wasm.FunctionType, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.FunctionType{}, err
	}
	return r.c.ReadFunctionType()
}

// --- Import (id 2) ---

type ImportSectionReader struct{ itemReader }

func NewImportSectionReader(buf []byte) (*ImportSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &ImportSectionReader{ir}, nil
}

func (r *ImportSectionReader) Read() (wasm.Import, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.Import{}, err
	}
	mod, err := r.c.ReadString()
	if err != nil {
		return wasm.Import{}, err
	}
	name, err := r.c.ReadString()
	if err != nil {
		return wasm.Import{}, err
	}
	tag, err := r.c.ReadByte()
	if err != nil {
		return wasm.Import{}, err
	}
	imp := wasm.Import{Module: mod, Name: name}
	switch tag {
	case 0:
		imp.Kind = wasm.ImportKindFunc
		idx, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.Import{}, err
		}
		imp.FuncType = wasm.TypeIndex(idx)
	case 1:
		imp.Kind = wasm.ImportKindTable
		imp.TableType, err = r.c.ReadTableType()
		if err != nil {
			return wasm.Import{}, err
		}
	case 2:
		imp.Kind = wasm.ImportKindMemory
		imp.MemoryType, err = r.c.ReadMemoryType()
		if err != nil {
			return wasm.Import{}, err
		}
	case 3:
		imp.Kind = wasm.ImportKindGlobal
		imp.GlobalType, err = r.c.ReadGlobalType()
		if err != nil {
			return wasm.Import{}, err
		}
	default:
		return wasm.Import{}, wasm.InvalidImportDescByteError(tag)
	}
	return imp, nil
}

// --- Function (id 3) ---

type FunctionSectionReader struct{ itemReader }

func NewFunctionSectionReader(buf []byte) (*FunctionSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &FunctionSectionReader{ir}, nil
}

func (r *FunctionSectionReader) Read() (wasm.TypeIndex, error) {
	if err := r.checkBounds(); err != nil {
		return 0, err
	}
	idx, err := r.c.ReadLEB128U32()
	if err != nil {
		return 0, err
	}
	return wasm.TypeIndex(idx), nil
}

// --- Table (id 4) ---

type TableSectionReader struct{ itemReader }

func NewTableSectionReader(buf []byte) (*TableSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &TableSectionReader{ir}, nil
}

func (r *TableSectionReader) Read() (wasm.TableType, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.TableType{}, err
	}
	return r.c.ReadTableType()
}

// --- Memory (id 5) ---

type MemorySectionReader struct{ itemReader }

func NewMemorySectionReader(buf []byte) (*MemorySectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &MemorySectionReader{ir}, nil
}

func (r *MemorySectionReader) Read() (wasm.MemoryType, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.MemoryType{}, err
	}
	return r.c.ReadMemoryType()
}

// --- Global (id 6) ---

type GlobalSectionReader struct{ itemReader }

func NewGlobalSectionReader(buf []byte) (*GlobalSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &GlobalSectionReader{ir}, nil
}

func (r *GlobalSectionReader) Read() (wasm.GlobalSegment, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.GlobalSegment{}, err
	}
	gt, err := r.c.ReadGlobalType()
	if err != nil {
		return wasm.GlobalSegment{}, err
	}
	init, err := readInstructionRegion(r.c)
	if err != nil {
		return wasm.GlobalSegment{}, err
	}
	return wasm.GlobalSegment{Type: gt, Init: init}, nil
}

// --- Export (id 7) ---

type ExportSectionReader struct{ itemReader }

func NewExportSectionReader(buf []byte) (*ExportSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &ExportSectionReader{ir}, nil
}

func (r *ExportSectionReader) Read() (wasm.Export, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.Export{}, err
	}
	name, err := r.c.ReadString()
	if err != nil {
		return wasm.Export{}, err
	}
	tag, err := r.c.ReadByte()
	if err != nil {
		return wasm.Export{}, err
	}
	var kind wasm.ExportDescKind
	switch tag {
	case 0:
		kind = wasm.ExportKindFunc
	case 1:
		kind = wasm.ExportKindTable
	case 2:
		kind = wasm.ExportKindMemory
	case 3:
		kind = wasm.ExportKindGlobal
	default:
		return wasm.Export{}, wasm.InvalidExportDescByteError(tag)
	}
	idx, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.Export{}, err
	}
	return wasm.Export{Name: name, Kind: kind, Index: idx}, nil
}

// --- Start (id 8) ---

// StartSectionReader carries the single FuncIndex a start section holds;
// it isn't an item vector, so Count reports -1.
type StartSectionReader struct {
	Func wasm.FuncIndex
}

func NewStartSectionReader(buf []byte) (*StartSectionReader, error) {
	c := decode.NewCursor(buf)
	idx, err := c.ReadLEB128U32()
	if err != nil {
		return nil, err
	}
	return &StartSectionReader{Func: wasm.FuncIndex(idx)}, nil
}

func (r *StartSectionReader) Count() int { return -1 }

// --- Element (id 9) ---

type ElementSectionReader struct{ itemReader }

func NewElementSectionReader(buf []byte) (*ElementSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &ElementSectionReader{ir}, nil
}

func (r *ElementSectionReader) Read() (wasm.ElementSegment, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.ElementSegment{}, err
	}
	tblIdx, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.ElementSegment{}, err
	}
	offset, err := readInstructionRegion(r.c)
	if err != nil {
		return wasm.ElementSegment{}, err
	}
	n, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.ElementSegment{}, err
	}
	funcs := make([]wasm.FuncIndex, n)
	for i := range funcs {
		f, err := r.c.ReadLEB128U32()
		if err != nil {
			return wasm.ElementSegment{}, err
		}
		funcs[i] = wasm.FuncIndex(f)
	}
	return wasm.ElementSegment{
		TableIndex: wasm.TableIndex(tblIdx),
		Offset:     offset,
		Funcs:      funcs,
	}, nil
}

// --- Code (id 10) ---

type CodeSectionReader struct{ itemReader }

func NewCodeSectionReader(buf []byte) (*CodeSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &CodeSectionReader{ir}, nil
}

func (r *CodeSectionReader) Read() (wasm.Code, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.Code{}, err
	}
	size, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.Code{}, err
	}
	body, err := r.c.ReadBytes(int(size))
	if err != nil {
		return wasm.Code{}, err
	}

	bc := decode.NewCursor(body)
	nRuns, err := bc.ReadLEB128U32()
	if err != nil {
		return wasm.Code{}, err
	}
	locals := make([]wasm.Locals, nRuns)
	for i := range locals {
		count, err := bc.ReadLEB128U32()
		if err != nil {
			return wasm.Code{}, err
		}
		vt, err := bc.ReadValueType()
		if err != nil {
			return wasm.Code{}, err
		}
		locals[i] = wasm.Locals{Count: count, Type: vt}
	}

	return wasm.Code{
		Locals:         locals,
		Instructions:   bc.Rest(),
		InstructionPos: bc.Position(),
	}, nil
}

// --- Data (id 11) ---

type DataSectionReader struct{ itemReader }

func NewDataSectionReader(buf []byte) (*DataSectionReader, error) {
	ir, err := newItemReader(buf)
	if err != nil {
		return nil, err
	}
	return &DataSectionReader{ir}, nil
}

func (r *DataSectionReader) Read() (wasm.DataSegment, error) {
	if err := r.checkBounds(); err != nil {
		return wasm.DataSegment{}, err
	}
	memIdx, err := r.c.ReadLEB128U32()
	if err != nil {
		return wasm.DataSegment{}, err
	}
	offset, err := readInstructionRegion(r.c)
	if err != nil {
		return wasm.DataSegment{}, err
	}
	data, err := r.c.ReadLengthPrefixedBytes()
	if err != nil {
		return wasm.DataSegment{}, err
	}
	return wasm.DataSegment{
		MemoryIndex: wasm.MemoryIndex(memIdx),
		Offset:      offset,
		Data:        data,
	}, nil
}
