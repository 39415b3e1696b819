// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validate implements the module validator (L3): a validation
// context accumulated across parser Chunks, per-section structural checks,
// the constant-expression checker, and the algorithmic, stack-polymorphic
// function-body type checker.
package validate

import "github.com/tinywasm/core/wasm"

// Context is the validator's running state, built up one Chunk at a time
// in the same order the parser emits them. Its vectors are append-only and
// mirror Wasm definition order: imported entities precede module-defined
// ones for indexing purposes (spec.md §3.5, §9).
type Context struct {
	FunctionTypes []wasm.FunctionType

	// FunctionTypeIndices holds one TypeIndex per function in the
	// module's function index space: imported functions first (in
	// import order), then module-defined functions (in Function-section
	// order). This ordering is spec.md §9's "known source gap" that a
	// faithful implementation must preserve.
	FunctionTypeIndices []wasm.TypeIndex
	ImportedFuncCount   int
	ModuleFuncCount     int

	Globals             []wasm.GlobalType
	ImportedGlobalCount int

	TableCount  int
	MemoryCount int

	ExportedNames map[string]bool

	CodeCount int

	lastNonCustomSectionID int // -1 until a non-custom section has been seen
	preambleSeen           bool
}

// NewContext returns an empty Context ready to validate a module from its
// first Chunk.
func NewContext() *Context {
	return &Context{
		ExportedNames:          make(map[string]bool),
		lastNonCustomSectionID: -1,
	}
}

// HasMemory reports whether any memory has been imported or defined so
// far.
func (c *Context) HasMemory() bool { return c.MemoryCount > 0 }

// HasTable reports whether any table has been imported or defined so far.
func (c *Context) HasTable() bool { return c.TableCount > 0 }

// FunctionType resolves a function index (covering both imported and
// module-defined functions) to its FunctionType, or reports
// InvalidFunctionIndexError.
func (c *Context) FunctionType(idx wasm.FuncIndex) (wasm.FunctionType, error) {
	if int(idx) >= len(c.FunctionTypeIndices) {
		return wasm.FunctionType{}, wasm.InvalidFunctionIndexError(idx)
	}
	ti := c.FunctionTypeIndices[idx]
	if int(ti) >= len(c.FunctionTypes) {
		return wasm.FunctionType{}, wasm.InvalidTypeIndexError(ti)
	}
	return c.FunctionTypes[ti], nil
}

// Type resolves a raw TypeIndex to its FunctionType.
func (c *Context) Type(idx wasm.TypeIndex) (wasm.FunctionType, error) {
	if int(idx) >= len(c.FunctionTypes) {
		return wasm.FunctionType{}, wasm.InvalidTypeIndexError(idx)
	}
	return c.FunctionTypes[idx], nil
}

// Global resolves a GlobalIndex to its GlobalType.
func (c *Context) Global(idx wasm.GlobalIndex) (wasm.GlobalType, error) {
	if int(idx) >= len(c.Globals) {
		return wasm.GlobalType{}, wasm.InvalidGlobalIndexError(idx)
	}
	return c.Globals[idx], nil
}

// checkSectionOrder enforces SPEC_FULL §4.9: non-custom sections must
// appear at most once and in strictly increasing id order. Custom sections
// (id 0) are exempt and may appear anywhere.
func (c *Context) checkSectionOrder(id wasm.SectionID) error {
	if id == wasm.SectionIDCustom {
		return nil
	}
	if int(id) <= c.lastNonCustomSectionID {
		return wasm.UnexpectedSectionOrderError{
			SectionID: byte(id),
			Previous:  byte(c.lastNonCustomSectionID),
		}
	}
	c.lastNonCustomSectionID = int(id)
	return nil
}
