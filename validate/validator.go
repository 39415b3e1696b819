// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

// Validator consumes parser Chunks in the exact order the parser emits
// them, validating each against a Context accumulated across the whole
// module. A Validator is single-owner: callers must serialize calls to
// Validate for a given instance (spec.md §5).
type Validator struct {
	ctx *Context
}

// NewValidator returns a Validator ready to validate a module from its
// first Chunk.
func NewValidator() *Validator {
	return &Validator{ctx: NewContext()}
}

// Context exposes the validator's accumulated state. Useful for a
// diagnostics sink or CLI summary that wants to report section counts
// after a successful validation run.
func (v *Validator) Context() *Context { return v.ctx }

// Validate checks one Chunk against the validator's accumulated state.
func (v *Validator) Validate(chunk *parser.Chunk) error {
	switch chunk.Kind {
	case parser.ChunkPreamble:
		return v.validatePreamble(chunk.Magic, chunk.Version)
	case parser.ChunkSection:
		return v.validateSection(chunk.SectionID, chunk.Section)
	case parser.ChunkDone:
		return v.validateDone()
	default:
		return nil
	}
}

func (v *Validator) validatePreamble(magic [4]byte, version uint32) error {
	if magic != [4]byte{0x00, 'a', 's', 'm'} {
		return wasm.BadMagicNumberError{Got: magic}
	}
	if version != 1 {
		return wasm.BadVersionError{Got: version}
	}
	return nil
}

func (v *Validator) validateSection(id wasm.SectionID, sr parser.SectionReader) error {
	if err := v.ctx.checkSectionOrder(id); err != nil {
		return err
	}
	switch r := sr.(type) {
	case *parser.CustomSectionReader:
		return nil
	case *parser.TypeSectionReader:
		return validateType(v.ctx, r)
	case *parser.ImportSectionReader:
		return validateImport(v.ctx, r)
	case *parser.FunctionSectionReader:
		return validateFunction(v.ctx, r)
	case *parser.TableSectionReader:
		return validateTable(v.ctx, r)
	case *parser.MemorySectionReader:
		return validateMemory(v.ctx, r)
	case *parser.GlobalSectionReader:
		return validateGlobal(v.ctx, r)
	case *parser.ExportSectionReader:
		return validateExport(v.ctx, r)
	case *parser.StartSectionReader:
		return validateStart(v.ctx, r)
	case *parser.ElementSectionReader:
		return validateElement(v.ctx, r)
	case *parser.CodeSectionReader:
		return validateCode(v.ctx, r)
	case *parser.DataSectionReader:
		return validateData(v.ctx, r)
	case *parser.UnknownSectionReader:
		return wasm.UnknownSectionError(r.ID)
	default:
		return nil
	}
}

func (v *Validator) validateDone() error {
	if v.ctx.CodeCount != v.ctx.ModuleFuncCount {
		return wasm.CodeFunctionCountMismatchError{Code: v.ctx.CodeCount, Function: v.ctx.ModuleFuncCount}
	}
	return nil
}
