package parser

import "github.com/tinywasm/core/wasm"

// ChunkKind tags the variant carried by a Chunk.
type ChunkKind uint8

const (
	ChunkPreamble ChunkKind = iota
	ChunkSection
	ChunkDone
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkPreamble:
		return "preamble"
	case ChunkSection:
		return "section"
	case ChunkDone:
		return "done"
	default:
		return "unknown"
	}
}

// Chunk is one step of the parser's output: exactly one of its fields is
// meaningful, selected by Kind. A Chunk borrows from the buffer the caller
// passed to Parse; the caller must finish validating it before reusing or
// releasing that buffer.
type Chunk struct {
	Kind ChunkKind

	// ChunkPreamble
	Magic   [4]byte
	Version uint32

	// ChunkSection
	SectionID SectionID
	Section   SectionReader
}

// SectionID is an alias of wasm.SectionID. It carries the raw id byte, so
// ids the format doesn't assign a meaning to keep their value; the parser
// hands the caller an UnknownSectionReader for those rather than refusing
// to parse.
type SectionID = wasm.SectionID

// SectionReader is implemented by every per-section body reader. Count
// reports how many items the section declares; a concrete reader's own
// Read method (not part of this interface, since each section yields a
// different item type) advances one item at a time.
type SectionReader interface {
	// Count returns the number of items the reader will yield, or -1 for
	// section kinds (Custom, Start) that aren't item vectors.
	Count() int
}
