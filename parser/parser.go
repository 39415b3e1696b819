// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"github.com/tinywasm/core/decode"
	"github.com/tinywasm/core/wasm"
)

type state uint8

const (
	stateModuleHeader state = iota
	stateSection
	stateEnd
)

// Parser drives the 3-state machine (ModuleHeader -> Section* -> End): it
// holds no buffer of its own, only which state it's in, so the caller
// remains in control of I/O and buffering. Parse is a synchronous,
// deterministic step function: the same byte prefix always yields the
// same (consumed, Chunk).
type Parser struct {
	st state
}

// NewParser returns a Parser positioned at ModuleHeader.
func NewParser() *Parser {
	return &Parser{st: stateModuleHeader}
}

// Parse advances the state machine by one step against buf, which must
// hold at least the bytes the step will consume — the 8-byte preamble, or
// one whole section (id byte + size LEB128 + size bytes of body). It
// returns how many bytes of buf the step consumed and the resulting
// Chunk; the caller drains that many bytes before calling Parse again.
func (p *Parser) Parse(buf []byte) (int, Chunk, error) {
	switch p.st {
	case stateModuleHeader:
		return p.parseModuleHeader(buf)
	case stateSection:
		return p.parseSection(buf)
	default:
		return p.parseEnd(buf)
	}
}

func (p *Parser) parseModuleHeader(buf []byte) (int, Chunk, error) {
	c := decode.NewCursor(buf)
	magic, version, err := ReadPreamble(c)
	if err != nil {
		return c.Position(), Chunk{}, err
	}
	p.st = stateSection
	return c.Position(), Chunk{Kind: ChunkPreamble, Magic: magic, Version: version}, nil
}

func (p *Parser) parseSection(buf []byte) (int, Chunk, error) {
	if len(buf) == 0 {
		p.st = stateEnd
		return 0, Chunk{Kind: ChunkDone}, nil
	}

	c := decode.NewCursor(buf)
	idByte, err := c.ReadByte()
	if err != nil {
		return c.Position(), Chunk{}, err
	}
	size, err := c.ReadLEB128U32()
	if err != nil {
		return c.Position(), Chunk{}, err
	}
	body, err := c.ReadBytes(int(size))
	if err != nil {
		return c.Position(), Chunk{}, err
	}

	sid := wasm.SectionID(idByte)
	reader, err := newSectionReader(sid, body)
	if err != nil {
		return c.Position(), Chunk{}, err
	}

	return c.Position(), Chunk{Kind: ChunkSection, SectionID: sid, Section: reader}, nil
}

func (p *Parser) parseEnd(buf []byte) (int, Chunk, error) {
	if len(buf) == 0 {
		return 0, Chunk{Kind: ChunkDone}, nil
	}
	return 0, Chunk{Kind: ChunkDone}, wasm.UnneededBytesError{}
}

// newSectionReader builds the sub-reader matching id. Ids outside the
// twelve numbered sections are handed to the caller as an
// UnknownSectionReader rather than rejected: the parser doesn't judge
// section-id validity, only the validator does (UnknownSectionError).
func newSectionReader(id wasm.SectionID, body []byte) (SectionReader, error) {
	switch id {
	case wasm.SectionIDCustom:
		return NewCustomSectionReader(body)
	case wasm.SectionIDType:
		return NewTypeSectionReader(body)
	case wasm.SectionIDImport:
		return NewImportSectionReader(body)
	case wasm.SectionIDFunction:
		return NewFunctionSectionReader(body)
	case wasm.SectionIDTable:
		return NewTableSectionReader(body)
	case wasm.SectionIDMemory:
		return NewMemorySectionReader(body)
	case wasm.SectionIDGlobal:
		return NewGlobalSectionReader(body)
	case wasm.SectionIDExport:
		return NewExportSectionReader(body)
	case wasm.SectionIDStart:
		return NewStartSectionReader(body)
	case wasm.SectionIDElement:
		return NewElementSectionReader(body)
	case wasm.SectionIDCode:
		return NewCodeSectionReader(body)
	case wasm.SectionIDData:
		return NewDataSectionReader(body)
	default:
		return NewUnknownSectionReader(byte(id), body), nil
	}
}
