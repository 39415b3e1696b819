package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

func TestParsePreambleThenDone(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	p := parser.NewParser()

	n, chunk, err := p.Parse(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, parser.ChunkPreamble, chunk.Kind)
	require.Equal(t, [4]byte{0x00, 0x61, 0x73, 0x6D}, chunk.Magic)
	require.Equal(t, uint32(1), chunk.Version)

	n, chunk, err = p.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, parser.ChunkDone, chunk.Kind)

	// Done is sticky: another empty call still reports Done.
	_, chunk, err = p.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, parser.ChunkDone, chunk.Kind)
}

func TestParseUnneededBytesAfterDone(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	p := parser.NewParser()
	_, _, err := p.Parse(buf)
	require.NoError(t, err)
	_, _, err = p.Parse(nil) // -> End
	require.NoError(t, err)

	_, _, err = p.Parse([]byte{0x01})
	require.ErrorAs(t, err, &wasm.UnneededBytesError{})
}

func TestParseTypeSection(t *testing.T) {
	// (i32) -> (i32), one entry.
	body := []byte{0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F}
	section := append([]byte{byte(wasm.SectionIDType), byte(len(body))}, body...)

	p := parser.NewParser()
	_, _, err := p.Parse([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)

	n, chunk, err := p.Parse(section)
	require.NoError(t, err)
	require.Equal(t, len(section), n)
	require.Equal(t, parser.ChunkSection, chunk.Kind)
	require.Equal(t, wasm.SectionIDType, chunk.SectionID)

	tr, ok := chunk.Section.(*parser.TypeSectionReader)
	require.True(t, ok)
	require.Equal(t, 1, tr.Count())

	ft, err := tr.Read()
	require.NoError(t, err)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, ft.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, ft.Results)
}

func TestParseUnknownSectionID(t *testing.T) {
	section := []byte{200, 0x02, 0xAA, 0xBB}
	p := parser.NewParser()
	_, _, err := p.Parse([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)

	_, chunk, err := p.Parse(section)
	require.NoError(t, err)
	ur, ok := chunk.Section.(*parser.UnknownSectionReader)
	require.True(t, ok)
	require.Equal(t, byte(200), ur.ID)
	require.Equal(t, []byte{0xAA, 0xBB}, ur.Data)
}
