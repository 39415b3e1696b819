package parser

import (
	"github.com/tinywasm/core/decode"
	"github.com/tinywasm/core/wasm"
)

// readInstructionRegion scans forward from c's current position to find the
// byte extent of one expression — a sequence of instructions terminated by
// the End that closes the (implicit) outermost block — tracking nested
// Block/Loop/If depth so a constant expression's own control instructions,
// if any, don't trip an early match. It returns the borrowed region
// including the trailing End byte and leaves c positioned just past it,
// which is how Global/Element/Data initializers are carved out of a
// section body (SPEC_FULL §4.7: the minimal sub-slice spanning the bytes,
// found by a single scan).
func readInstructionRegion(c *decode.Cursor) ([]byte, error) {
	ir := NewInstructionReader(c.Rest())
	depth := 0
	for {
		inst, err := ir.Read()
		if err != nil {
			return nil, err
		}
		switch inst.Op {
		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
			depth++
		case wasm.OpEnd:
			if depth == 0 {
				return c.ReadBytes(ir.Position())
			}
			depth--
		}
	}
}
