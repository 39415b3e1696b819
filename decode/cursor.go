// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode implements the byte cursor (L0): bounds-checked,
// allocation-free advancement over a byte slice borrowed from the caller,
// plus the fixed-width, LEB128, and typed-container primitives every
// section and instruction reader is built from.
package decode

import (
	"unicode/utf8"

	"github.com/tinywasm/core/leb128"
	"github.com/tinywasm/core/wasm"
)

// Cursor reads Wasm primitives out of a borrowed byte slice without
// allocating or copying the slice's backing array. The zero value is not
// usable; construct with NewCursor.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf. The returned Cursor borrows buf: buf must not be
// mutated or reallocated while the Cursor (or anything decoded from it) is
// alive.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Position returns the number of bytes consumed so far.
func (c *Cursor) Position() int { return c.pos }

// Len returns the number of unread bytes remaining.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// EOF reports whether the cursor has consumed the entire buffer.
func (c *Cursor) EOF() bool { return c.pos >= len(c.buf) }

// Rest returns the unread remainder of the buffer, without advancing.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:] }

func (c *Cursor) wrap(err error) error {
	return wasm.DecodeError{Offset: c.pos, Err: err}
}

// ensure reports an UnexpectedEOF-flavored error if fewer than n bytes
// remain.
func (c *Cursor) ensure(n int) error {
	if c.Len() < n {
		return c.wrap(leb128.ErrUnexpectedEOF)
	}
	return nil
}

// ReadByte consumes and returns a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.ensure(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Rewind moves the cursor back n bytes. It is used where a reader must
// probe a byte, decide it doesn't match an expected marker, and re-decode
// the same bytes through a different primitive (BlockType's value-type/
// empty-marker/type-index fallback chain).
func (c *Cursor) Rewind(n int) {
	c.pos -= n
	if c.pos < 0 {
		c.pos = 0
	}
}

// ReadBytes returns a borrowed sub-slice of the next n bytes, advancing
// the cursor past them. The returned slice aliases the Cursor's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, c.wrap(leb128.ErrUnexpectedEOF)
	}
	if err := c.ensure(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadFixedU32LE reads a 4-byte little-endian unsigned integer.
func (c *Cursor) ReadFixedU32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadFixedF32LE reads a 4-byte little-endian IEEE-754 single, returned as
// its raw bit pattern (the validator and any numeric layer decide how to
// interpret it; the decoder stays representation-agnostic).
func (c *Cursor) ReadFixedF32LE() (uint32, error) {
	return c.ReadFixedU32LE()
}

// ReadFixedU64LE reads an 8-byte little-endian unsigned integer.
func (c *Cursor) ReadFixedU64LE() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadFixedF64LE reads an 8-byte little-endian IEEE-754 double, returned
// as its raw bit pattern.
func (c *Cursor) ReadFixedF64LE() (uint64, error) {
	return c.ReadFixedU64LE()
}

// ReadLEB128U32 decodes an unsigned LEB128 u32 (§4.1).
func (c *Cursor) ReadLEB128U32() (uint32, error) {
	v, n, err := leb128.ReadUint32(c.Rest())
	if err != nil {
		return 0, c.advanceErr(n, err, wasm.InvalidU32Error{})
	}
	c.pos += n
	return v, nil
}

// ReadLEB128S32 decodes a signed LEB128 s32.
func (c *Cursor) ReadLEB128S32() (int32, error) {
	v, n, err := leb128.ReadInt32(c.Rest())
	if err != nil {
		return 0, c.advanceErr(n, err, wasm.InvalidS32Error{})
	}
	c.pos += n
	return v, nil
}

// ReadLEB128S33 decodes a signed LEB128 s33, used by BlockType's
// type-index encoding. The result is widened to int64 so the caller can
// range-check it against [0, 2^32-1] before narrowing to a u32 index.
func (c *Cursor) ReadLEB128S33() (int64, error) {
	v, n, err := leb128.ReadInt33(c.Rest())
	if err != nil {
		return 0, c.advanceErr(n, err, wasm.InvalidS33Error{})
	}
	c.pos += n
	return v, nil
}

// ReadLEB128S64 decodes a signed LEB128 s64.
func (c *Cursor) ReadLEB128S64() (int64, error) {
	v, n, err := leb128.ReadInt64(c.Rest())
	if err != nil {
		return 0, c.advanceErr(n, err, wasm.InvalidS64Error{})
	}
	c.pos += n
	return v, nil
}

// advanceErr turns a leb128 package error into the wasm-layer typed error
// (a plain EOF is kept as EOF), while still advancing the cursor past
// whatever bytes were examined, so Position() reflects where decoding
// failed.
func (c *Cursor) advanceErr(consumed int, err error, typed error) error {
	if err == leb128.ErrUnexpectedEOF {
		c.pos += consumed
		return c.wrap(err)
	}
	c.pos += consumed
	return c.wrap(typed)
}

// ReadString reads a LEB128-length-prefixed UTF-8 string.
func (c *Cursor) ReadString() (string, error) {
	b, err := c.ReadLengthPrefixedBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", c.wrap(wasm.InvalidUTF8Error{})
	}
	return string(b), nil
}

// ReadLengthPrefixedBytes reads a LEB128 u32 length followed by that many
// bytes, returning a borrowed sub-slice.
func (c *Cursor) ReadLengthPrefixedBytes() ([]byte, error) {
	n, err := c.ReadLEB128U32()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(int(n))
}

// ReadValueType decodes one of the four MVP value types. On an invalid
// byte the cursor position is left unchanged, so BlockType decoding can
// attempt a value type and fall back without losing its place.
func (c *Cursor) ReadValueType() (wasm.ValueType, error) {
	if c.EOF() {
		return 0, c.wrap(leb128.ErrUnexpectedEOF)
	}
	b := c.buf[c.pos]
	t := wasm.ValueType(b)
	if !t.IsValid() {
		return 0, c.wrap(wasm.InvalidValueTypeByteError(b))
	}
	c.pos++
	return t, nil
}

// ReadLimits decodes a Limits structure (§3.3, §4.1).
func (c *Cursor) ReadLimits() (wasm.Limits, error) {
	flag, err := c.ReadByte()
	if err != nil {
		return wasm.Limits{}, err
	}
	var lim wasm.Limits
	switch flag {
	case 0x00:
		lim.HasMax = false
	case 0x01:
		lim.HasMax = true
	default:
		return wasm.Limits{}, c.wrap(wasm.InvalidLimitsByteError(flag))
	}
	lim.Min, err = c.ReadLEB128U32()
	if err != nil {
		return wasm.Limits{}, err
	}
	if lim.HasMax {
		lim.Max, err = c.ReadLEB128U32()
		if err != nil {
			return wasm.Limits{}, err
		}
	}
	return lim, nil
}

// ReadTableType decodes a TableType.
func (c *Cursor) ReadTableType() (wasm.TableType, error) {
	elemType, err := c.ReadByte()
	if err != nil {
		return wasm.TableType{}, err
	}
	if elemType != wasm.TableElemTypeFuncref {
		return wasm.TableType{}, c.wrap(wasm.InvalidElementTypeByteError(elemType))
	}
	lim, err := c.ReadLimits()
	if err != nil {
		return wasm.TableType{}, err
	}
	return wasm.TableType{ElemType: elemType, Limits: lim}, nil
}

// ReadMemoryType decodes a MemoryType.
func (c *Cursor) ReadMemoryType() (wasm.MemoryType, error) {
	lim, err := c.ReadLimits()
	if err != nil {
		return wasm.MemoryType{}, err
	}
	return wasm.MemoryType{Limits: lim}, nil
}

// ReadMutable decodes a global-mutability flag byte.
func (c *Cursor) ReadMutable() (bool, error) {
	b, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, c.wrap(wasm.InvalidMutableByteError(b))
	}
}

// ReadGlobalType decodes a GlobalType: a value type followed by a
// mutability flag.
func (c *Cursor) ReadGlobalType() (wasm.GlobalType, error) {
	vt, err := c.ReadValueType()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	mut, err := c.ReadMutable()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	return wasm.GlobalType{ValType: vt, Mutable: mut}, nil
}
