// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import "fmt"

// FunctionType describes the signature of a declared or imported function:
// an ordered sequence of parameter value types and an ordered sequence of
// result value types.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

func (f FunctionType) String() string {
	return fmt.Sprintf("<func %v -> %v>", f.Params, f.Results)
}

// Limits bounds the size of a table or linear memory. Max is only
// meaningful when HasMax is true.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// TableElemTypeFuncref is the only element type the MVP permits (0x70).
const TableElemTypeFuncref byte = 0x70

// TableType describes a table: an element-type tag plus Limits.
type TableType struct {
	ElemType byte
	Limits   Limits
}

// MemoryType describes a linear memory: Limits counted in 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// ImportDescKind tags which of the four import descriptor shapes an Import
// carries.
type ImportDescKind uint8

const (
	ImportKindFunc ImportDescKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
)

// Import describes one entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportDescKind

	FuncType   TypeIndex  // valid when Kind == ImportKindFunc
	TableType  TableType  // valid when Kind == ImportKindTable
	MemoryType MemoryType // valid when Kind == ImportKindMemory
	GlobalType GlobalType // valid when Kind == ImportKindGlobal
}

// ExportDescKind tags which of the four export descriptor shapes an Export
// carries.
type ExportDescKind uint8

const (
	ExportKindFunc ExportDescKind = iota
	ExportKindTable
	ExportKindMemory
	ExportKindGlobal
)

// Export describes one entry of the export section.
type Export struct {
	Name  string
	Kind  ExportDescKind
	Index uint32 // interpreted per Kind as a Func/Table/Memory/GlobalIndex
}

// MemoryArgument is the alignment/offset immediate pair carried by every
// memory load/store instruction.
type MemoryArgument struct {
	Align  uint32 // log2 of the claimed alignment, in bytes
	Offset uint32
}

// Locals is one run-length pair within a code entry's local declarations:
// Count repetitions of Type.
type Locals struct {
	Count uint32
	Type  ValueType
}

// Code is a borrowed function body: the locals declarations followed by the
// instruction bytes (including the trailing `end` that closes the body).
type Code struct {
	Locals         []Locals
	Instructions   []byte
	InstructionPos int // byte offset of Instructions within this code entry's body (after its size prefix), for diagnostics
}
