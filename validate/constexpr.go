package validate

import (
	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

// ValidateConstExpr checks that buf is a constant expression (§4.6.3): a
// single producer — a *.const or a global.get of an already-declared
// immutable imported global — followed by End and nothing else, whose
// value type equals expected.
func ValidateConstExpr(ctx *Context, buf []byte, expected wasm.ValueType) error {
	ir := parser.NewInstructionReader(buf)
	inst, err := ir.Read()
	if err != nil {
		return err
	}

	var actual wasm.ValueType
	switch inst.Op {
	case wasm.OpI32Const:
		actual = wasm.ValueTypeI32
	case wasm.OpI64Const:
		actual = wasm.ValueTypeI64
	case wasm.OpF32Const:
		actual = wasm.ValueTypeF32
	case wasm.OpF64Const:
		actual = wasm.ValueTypeF64
	case wasm.OpGlobalGet:
		if int(inst.GlobalIdx) >= ctx.ImportedGlobalCount {
			return wasm.InvalidInitExprError{Reason: "global.get in a constant expression must reference an imported global"}
		}
		gt, err := ctx.Global(inst.GlobalIdx)
		if err != nil {
			return err
		}
		if gt.Mutable {
			return wasm.InvalidInitExprError{Reason: "global.get in a constant expression must reference an immutable global"}
		}
		actual = gt.ValType
	default:
		return wasm.InvalidInitExprError{Reason: "expected a single constant producer"}
	}

	end, err := ir.Read()
	if err != nil {
		return err
	}
	if end.Op != wasm.OpEnd || !ir.EOF() {
		return wasm.InvalidInitExprError{Reason: "expected exactly one producer followed by end"}
	}

	if actual != expected {
		return wasm.TypeMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
