package validate

import (
	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

func validateType(ctx *Context, r *parser.TypeSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		ft, err := r.Read()
		if err != nil {
			return err
		}
		ctx.FunctionTypes = append(ctx.FunctionTypes, ft)
	}
	return nil
}

// validateImport appends each import's effect into the matching index
// space. Func imports are appended to FunctionTypeIndices here, before any
// module-defined function (validateFunction runs on a later section), which
// preserves the imports-precede-definitions ordering spec.md §9 requires.
func validateImport(ctx *Context, r *parser.ImportSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		imp, err := r.Read()
		if err != nil {
			return err
		}
		switch imp.Kind {
		case wasm.ImportKindFunc:
			if int(imp.FuncType) >= len(ctx.FunctionTypes) {
				return wasm.InvalidTypeIndexError(imp.FuncType)
			}
			ctx.FunctionTypeIndices = append(ctx.FunctionTypeIndices, imp.FuncType)
			ctx.ImportedFuncCount++
		case wasm.ImportKindTable:
			if err := validateTableLimits(imp.TableType.Limits); err != nil {
				return err
			}
			if ctx.TableCount >= 1 {
				return wasm.MultipleTablesError{}
			}
			ctx.TableCount++
		case wasm.ImportKindMemory:
			if err := validateMemoryLimits(imp.MemoryType.Limits); err != nil {
				return err
			}
			if ctx.MemoryCount >= 1 {
				return wasm.MultipleMemoriesError{}
			}
			ctx.MemoryCount++
		case wasm.ImportKindGlobal:
			ctx.Globals = append(ctx.Globals, imp.GlobalType)
			ctx.ImportedGlobalCount++
		}
	}
	return nil
}

func validateFunction(ctx *Context, r *parser.FunctionSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		ti, err := r.Read()
		if err != nil {
			return err
		}
		if int(ti) >= len(ctx.FunctionTypes) {
			return wasm.InvalidTypeIndexError(ti)
		}
		ctx.FunctionTypeIndices = append(ctx.FunctionTypeIndices, ti)
		ctx.ModuleFuncCount++
	}
	return nil
}

func validateTable(ctx *Context, r *parser.TableSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		tt, err := r.Read()
		if err != nil {
			return err
		}
		if err := validateTableLimits(tt.Limits); err != nil {
			return err
		}
		if ctx.TableCount >= 1 {
			return wasm.MultipleTablesError{}
		}
		ctx.TableCount++
	}
	return nil
}

func validateMemory(ctx *Context, r *parser.MemorySectionReader) error {
	for i := 0; i < r.Count(); i++ {
		mt, err := r.Read()
		if err != nil {
			return err
		}
		if err := validateMemoryLimits(mt.Limits); err != nil {
			return err
		}
		if ctx.MemoryCount >= 1 {
			return wasm.MultipleMemoriesError{}
		}
		ctx.MemoryCount++
	}
	return nil
}

func validateGlobal(ctx *Context, r *parser.GlobalSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		seg, err := r.Read()
		if err != nil {
			return err
		}
		if err := ValidateConstExpr(ctx, seg.Init, seg.Type.ValType); err != nil {
			return err
		}
		ctx.Globals = append(ctx.Globals, seg.Type)
	}
	return nil
}

func validateExport(ctx *Context, r *parser.ExportSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		exp, err := r.Read()
		if err != nil {
			return err
		}
		if ctx.ExportedNames[exp.Name] {
			return wasm.DuplicateExportNameError(exp.Name)
		}
		switch exp.Kind {
		case wasm.ExportKindFunc:
			if int(exp.Index) >= len(ctx.FunctionTypeIndices) {
				return wasm.InvalidFunctionIndexError(exp.Index)
			}
		case wasm.ExportKindTable:
			if int(exp.Index) >= ctx.TableCount {
				return wasm.InvalidTableIndexError(exp.Index)
			}
		case wasm.ExportKindMemory:
			if int(exp.Index) >= ctx.MemoryCount {
				return wasm.InvalidMemoryIndexError(exp.Index)
			}
		case wasm.ExportKindGlobal:
			if int(exp.Index) >= len(ctx.Globals) {
				return wasm.InvalidGlobalIndexError(exp.Index)
			}
		}
		ctx.ExportedNames[exp.Name] = true
	}
	return nil
}

func validateStart(ctx *Context, r *parser.StartSectionReader) error {
	ft, err := ctx.FunctionType(r.Func)
	if err != nil {
		return err
	}
	if len(ft.Params) != 0 || len(ft.Results) != 0 {
		return wasm.StartFunctionSignatureError{Func: r.Func}
	}
	return nil
}

func validateElement(ctx *Context, r *parser.ElementSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		seg, err := r.Read()
		if err != nil {
			return err
		}
		if int(seg.TableIndex) >= ctx.TableCount {
			return wasm.InvalidTableIndexError(seg.TableIndex)
		}
		if err := ValidateConstExpr(ctx, seg.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
		for _, f := range seg.Funcs {
			if int(f) >= len(ctx.FunctionTypeIndices) {
				return wasm.InvalidFunctionIndexError(f)
			}
		}
	}
	return nil
}

func validateData(ctx *Context, r *parser.DataSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		seg, err := r.Read()
		if err != nil {
			return err
		}
		if int(seg.MemoryIndex) >= ctx.MemoryCount {
			return wasm.InvalidMemoryIndexError(seg.MemoryIndex)
		}
		if err := ValidateConstExpr(ctx, seg.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
	}
	return nil
}

// validateCode validates each Code entry against the function type its
// position in the module-defined function index space implies: code
// entries are positionally aligned with Function-section entries, which
// themselves follow all imported functions in the function index space.
func validateCode(ctx *Context, r *parser.CodeSectionReader) error {
	for i := 0; i < r.Count(); i++ {
		code, err := r.Read()
		if err != nil {
			return err
		}
		funcIdx := wasm.FuncIndex(ctx.ImportedFuncCount + ctx.CodeCount)
		ft, err := ctx.FunctionType(funcIdx)
		if err != nil {
			return err
		}
		if err := ValidateFunctionBody(ctx, ft, code); err != nil {
			return err
		}
		ctx.CodeCount++
	}
	return nil
}
