package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

func TestCustomSectionReader(t *testing.T) {
	// name "hi" (2 bytes) + opaque payload.
	buf := []byte{0x02, 'h', 'i', 0xDE, 0xAD}
	r, err := parser.NewCustomSectionReader(buf)
	require.NoError(t, err)
	require.Equal(t, "hi", r.Name)
	require.Equal(t, []byte{0xDE, 0xAD}, r.Data)
	require.Equal(t, -1, r.Count())
}

func TestImportSectionReaderFunc(t *testing.T) {
	// module "m", name "f", func import of type 2.
	buf := []byte{
		0x01, 'm',
		0x01, 'f',
		0x00, 0x02,
	}
	body := append([]byte{0x01}, buf...)
	r, err := parser.NewImportSectionReader(body)
	require.NoError(t, err)
	require.Equal(t, 1, r.Count())

	imp, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, "m", imp.Module)
	require.Equal(t, "f", imp.Name)
	require.Equal(t, wasm.ImportKindFunc, imp.Kind)
	require.Equal(t, wasm.TypeIndex(2), imp.FuncType)
}

func TestImportSectionReaderGlobal(t *testing.T) {
	body := []byte{
		0x01,      // count
		0x01, 'm', // module
		0x01, 'g', // name
		0x03, 0x7F, 0x00, // global import: i32, immutable
	}
	r, err := parser.NewImportSectionReader(body)
	require.NoError(t, err)
	imp, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.ImportKindGlobal, imp.Kind)
	require.Equal(t, wasm.ValueTypeI32, imp.GlobalType.ValType)
	require.False(t, imp.GlobalType.Mutable)
}

func TestExportSectionReader(t *testing.T) {
	body := []byte{
		0x01,      // count
		0x01, 'x', // name "x"
		0x00, 0x05, // func export, index 5
	}
	r, err := parser.NewExportSectionReader(body)
	require.NoError(t, err)
	exp, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, "x", exp.Name)
	require.Equal(t, wasm.ExportKindFunc, exp.Kind)
	require.Equal(t, uint32(5), exp.Index)
}

func TestGlobalSectionReader(t *testing.T) {
	// i32 mutable global, init i32.const 7 end.
	body := []byte{
		0x01,       // count
		0x7F, 0x01, // global type: i32, mutable
		0x41, 0x07, 0x0B, // init expr
	}
	r, err := parser.NewGlobalSectionReader(body)
	require.NoError(t, err)
	seg, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.ValueTypeI32, seg.Type.ValType)
	require.True(t, seg.Type.Mutable)
	require.Equal(t, []byte{0x41, 0x07, 0x0B}, seg.Init)
}

func TestElementSectionReader(t *testing.T) {
	body := []byte{
		0x01,             // count
		0x00,             // table index 0
		0x41, 0x00, 0x0B, // offset: i32.const 0 end
		0x02, 0x01, 0x02, // 2 func indices: 1, 2
	}
	r, err := parser.NewElementSectionReader(body)
	require.NoError(t, err)
	seg, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.TableIndex(0), seg.TableIndex)
	require.Equal(t, []byte{0x41, 0x00, 0x0B}, seg.Offset)
	require.Equal(t, []wasm.FuncIndex{1, 2}, seg.Funcs)
}

func TestDataSectionReader(t *testing.T) {
	body := []byte{
		0x01,             // count
		0x00,             // memory index 0
		0x41, 0x00, 0x0B, // offset: i32.const 0 end
		0x03, 'a', 'b', 'c',
	}
	r, err := parser.NewDataSectionReader(body)
	require.NoError(t, err)
	seg, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wasm.MemoryIndex(0), seg.MemoryIndex)
	require.Equal(t, []byte("abc"), seg.Data)
}

func TestCodeSectionReader(t *testing.T) {
	// body: 0 local-runs, instructions "local.get 0 end".
	entryBody := []byte{0x00, 0x20, 0x00, 0x0B}
	section := append([]byte{byte(len(entryBody))}, entryBody...)
	body := append([]byte{0x01}, section...)

	r, err := parser.NewCodeSectionReader(body)
	require.NoError(t, err)
	code, err := r.Read()
	require.NoError(t, err)
	require.Empty(t, code.Locals)
	require.Equal(t, []byte{0x20, 0x00, 0x0B}, code.Instructions)
}

func TestCodeSectionReaderWithLocals(t *testing.T) {
	// 1 run of 2 i32 locals, body "end".
	entryBody := []byte{0x01, 0x02, 0x7F, 0x0B}
	section := append([]byte{byte(len(entryBody))}, entryBody...)
	body := append([]byte{0x01}, section...)

	r, err := parser.NewCodeSectionReader(body)
	require.NoError(t, err)
	code, err := r.Read()
	require.NoError(t, err)
	require.Len(t, code.Locals, 1)
	require.Equal(t, uint32(2), code.Locals[0].Count)
	require.Equal(t, wasm.ValueTypeI32, code.Locals[0].Type)
	require.Equal(t, []byte{0x0B}, code.Instructions)
}

func TestSectionReaderExhaustion(t *testing.T) {
	body := []byte{0x00} // 0 entries
	r, err := parser.NewTypeSectionReader(body)
	require.NoError(t, err)
	require.Equal(t, 0, r.Count())
	_, err = r.Read()
	require.Error(t, err)
}
