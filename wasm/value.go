// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import "fmt"

// ValueType is one of the four scalar types the Wasm v1 MVP operates on.
// Its value is the byte the binary format uses to encode it, so decoding
// is a direct comparison rather than a translation table lookup.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7F
	ValueTypeI64 ValueType = 0x7E
	ValueTypeF32 ValueType = 0x7D
	ValueTypeF64 ValueType = 0x7C
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return fmt.Sprintf("<unknown value_type 0x%02x>", byte(t))
	}
}

// IsValid reports whether t is one of the four MVP value types.
func (t ValueType) IsValid() bool {
	switch t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return true
	}
	return false
}

// BlockTypeKind distinguishes the three BlockType forms (§3.3).
type BlockTypeKind uint8

const (
	BlockTypeKindEmpty BlockTypeKind = iota
	BlockTypeKindValue
	BlockTypeKindTypeIndex
)

// BlockType is the signature attached to block/loop/if. Exactly one of
// Value/Index is meaningful, selected by Kind.
type BlockType struct {
	Kind  BlockTypeKind
	Value ValueType
	Index TypeIndex
}

func (b BlockType) String() string {
	switch b.Kind {
	case BlockTypeKindEmpty:
		return "<empty block>"
	case BlockTypeKindValue:
		return b.Value.String()
	default:
		return fmt.Sprintf("<type index %d>", uint32(b.Index))
	}
}
