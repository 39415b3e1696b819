package validate

import (
	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/wasm"
)

const (
	i32 = wasm.ValueTypeI32
	i64 = wasm.ValueTypeI64
	f32 = wasm.ValueTypeF32
	f64 = wasm.ValueTypeF64
)

// operand models the algorithmic type checker's polymorphic stack entry:
// either a known value type, or Unknown, which unifies with anything
// during popExpected. The zero value is Unknown.
type operand struct {
	isKnown bool
	typ     wasm.ValueType
}

var unknownOperand = operand{}

func known(t wasm.ValueType) operand { return operand{isKnown: true, typ: t} }

type frameKind uint8

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
	frameElse
)

// ctrlFrame is one entry of the control-frame stack. params/results are
// resolved from the instruction's BlockType once, at frame-entry time, so
// later branch-target lookups don't need to re-consult the type section.
type ctrlFrame struct {
	kind        frameKind
	params      []wasm.ValueType
	results     []wasm.ValueType
	height      int
	unreachable bool
}

// funcChecker runs the algorithmic checker (§4.6.4) over one function
// body: an operand stack of Known/Unknown entries and a control-frame
// stack, both driven by a single forward pass over the body's
// instructions.
type funcChecker struct {
	ctx      *Context
	locals   []wasm.ValueType
	operands []operand
	frames   []ctrlFrame
}

// ValidateFunctionBody runs the algorithmic type checker over one Code
// entry against its declared FunctionType.
func ValidateFunctionBody(ctx *Context, ft wasm.FunctionType, code wasm.Code) error {
	locals := make([]wasm.ValueType, 0, len(ft.Params)+len(code.Locals))
	locals = append(locals, ft.Params...)
	for _, run := range code.Locals {
		for i := uint32(0); i < run.Count; i++ {
			locals = append(locals, run.Type)
		}
	}

	fc := &funcChecker{
		ctx:    ctx,
		locals: locals,
		frames: []ctrlFrame{{kind: frameBlock, params: ft.Params, results: ft.Results, height: 0}},
	}

	ir := parser.NewInstructionReader(code.Instructions)
	for {
		inst, err := ir.Read()
		if err != nil {
			return err
		}
		done, err := fc.step(inst)
		if err != nil {
			return err
		}
		if done {
			if !ir.EOF() {
				return wasm.UnneededBytesError{}
			}
			return nil
		}
	}
}

func (fc *funcChecker) top() *ctrlFrame { return &fc.frames[len(fc.frames)-1] }

func (fc *funcChecker) markUnreachable() {
	f := fc.top()
	fc.operands = fc.operands[:f.height]
	f.unreachable = true
}

func (fc *funcChecker) push(op operand) { fc.operands = append(fc.operands, op) }

func (fc *funcChecker) pushKnown(t wasm.ValueType) { fc.push(known(t)) }

func (fc *funcChecker) pop() (operand, error) {
	f := fc.top()
	if len(fc.operands) == f.height {
		if f.unreachable {
			return unknownOperand, nil
		}
		return operand{}, wasm.OperandStackEmptyError{}
	}
	op := fc.operands[len(fc.operands)-1]
	fc.operands = fc.operands[:len(fc.operands)-1]
	return op, nil
}

func (fc *funcChecker) popExpected(expected wasm.ValueType) error {
	op, err := fc.pop()
	if err != nil {
		return err
	}
	if !op.isKnown {
		return nil
	}
	if op.typ != expected {
		return wasm.TypeMismatchError{Expected: expected, Actual: op.typ}
	}
	return nil
}

func (fc *funcChecker) frameAt(l wasm.LabelIndex) (*ctrlFrame, error) {
	idx := len(fc.frames) - 1 - int(l)
	if idx < 0 || idx >= len(fc.frames) {
		return nil, wasm.InvalidLabelIndexError(l)
	}
	return &fc.frames[idx], nil
}

// labelTypes returns the value types a branch to f must supply: a Loop's
// label types are its parameters (branching re-enters the loop), every
// other kind's are its results (branching exits with them).
func (fc *funcChecker) labelTypes(f *ctrlFrame) []wasm.ValueType {
	if f.kind == frameLoop {
		return f.params
	}
	return f.results
}

func blockTypeParams(ctx *Context, bt wasm.BlockType) ([]wasm.ValueType, error) {
	if bt.Kind == wasm.BlockTypeKindTypeIndex {
		ft, err := ctx.Type(bt.Index)
		if err != nil {
			return nil, err
		}
		return ft.Params, nil
	}
	return nil, nil
}

func blockTypeResults(ctx *Context, bt wasm.BlockType) ([]wasm.ValueType, error) {
	switch bt.Kind {
	case wasm.BlockTypeKindValue:
		return []wasm.ValueType{bt.Value}, nil
	case wasm.BlockTypeKindTypeIndex:
		ft, err := ctx.Type(bt.Index)
		if err != nil {
			return nil, err
		}
		return ft.Results, nil
	default:
		return nil, nil
	}
}

// enterBlock handles Block/Loop/If: pop the BlockType's parameters
// (they must already be on the stack, produced by preceding instructions),
// record the frame height, then push them back so the frame's own body
// sees them as its starting stack contents.
func (fc *funcChecker) enterBlock(kind frameKind, bt wasm.BlockType) error {
	params, err := blockTypeParams(fc.ctx, bt)
	if err != nil {
		return err
	}
	results, err := blockTypeResults(fc.ctx, bt)
	if err != nil {
		return err
	}
	for i := len(params) - 1; i >= 0; i-- {
		if err := fc.popExpected(params[i]); err != nil {
			return err
		}
	}
	height := len(fc.operands)
	fc.frames = append(fc.frames, ctrlFrame{kind: kind, params: params, results: results, height: height})
	for _, p := range params {
		fc.pushKnown(p)
	}
	return nil
}

// popCtrl validates that the current frame's results are present at its
// top and nothing else is, then pops the frame. It does not push the
// results back onto the (now-current) enclosing stack; callers that need
// that — End, but not Else — do it themselves.
func (fc *funcChecker) popCtrl() (ctrlFrame, error) {
	f := fc.top()
	for i := len(f.results) - 1; i >= 0; i-- {
		if err := fc.popExpected(f.results[i]); err != nil {
			return ctrlFrame{}, err
		}
	}
	if len(fc.operands) != f.height {
		return ctrlFrame{}, wasm.ValuesAtEndOfBlockError{}
	}
	popped := *f
	fc.frames = fc.frames[:len(fc.frames)-1]
	return popped, nil
}

func (fc *funcChecker) enterElse() error {
	popped, err := fc.popCtrl()
	if err != nil {
		return err
	}
	height := len(fc.operands)
	fc.frames = append(fc.frames, ctrlFrame{kind: frameElse, params: popped.params, results: popped.results, height: height})
	for _, p := range popped.params {
		fc.pushKnown(p)
	}
	return nil
}

func (fc *funcChecker) br(l wasm.LabelIndex) error {
	f, err := fc.frameAt(l)
	if err != nil {
		return err
	}
	types := fc.labelTypes(f)
	for i := len(types) - 1; i >= 0; i-- {
		if err := fc.popExpected(types[i]); err != nil {
			return err
		}
	}
	fc.markUnreachable()
	return nil
}

func (fc *funcChecker) brIf(l wasm.LabelIndex) error {
	if err := fc.popExpected(i32); err != nil {
		return err
	}
	f, err := fc.frameAt(l)
	if err != nil {
		return err
	}
	types := fc.labelTypes(f)
	for i := len(types) - 1; i >= 0; i-- {
		if err := fc.popExpected(types[i]); err != nil {
			return err
		}
	}
	for _, t := range types {
		fc.pushKnown(t)
	}
	return nil
}

func sameTypes(a, b []wasm.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (fc *funcChecker) brTable(labels []wasm.LabelIndex, def wasm.LabelIndex) error {
	if err := fc.popExpected(i32); err != nil {
		return err
	}
	defFrame, err := fc.frameAt(def)
	if err != nil {
		return err
	}
	defTypes := fc.labelTypes(defFrame)
	for _, l := range labels {
		f, err := fc.frameAt(l)
		if err != nil {
			return err
		}
		if !sameTypes(fc.labelTypes(f), defTypes) {
			return wasm.TargetLabelsTypeMismatchError{}
		}
	}
	for i := len(defTypes) - 1; i >= 0; i-- {
		if err := fc.popExpected(defTypes[i]); err != nil {
			return err
		}
	}
	fc.markUnreachable()
	return nil
}

func (fc *funcChecker) doReturn() error {
	f := &fc.frames[0]
	types := fc.labelTypes(f)
	for i := len(types) - 1; i >= 0; i-- {
		if err := fc.popExpected(types[i]); err != nil {
			return err
		}
	}
	fc.markUnreachable()
	return nil
}

func (fc *funcChecker) call(idx wasm.FuncIndex) error {
	ft, err := fc.ctx.FunctionType(idx)
	if err != nil {
		return err
	}
	for i := len(ft.Params) - 1; i >= 0; i-- {
		if err := fc.popExpected(ft.Params[i]); err != nil {
			return err
		}
	}
	for _, r := range ft.Results {
		fc.pushKnown(r)
	}
	return nil
}

func (fc *funcChecker) callIndirect(idx wasm.TypeIndex) error {
	if !fc.ctx.HasTable() {
		return wasm.UndefinedTableError{}
	}
	if err := fc.popExpected(i32); err != nil {
		return err
	}
	ft, err := fc.ctx.Type(idx)
	if err != nil {
		return err
	}
	for i := len(ft.Params) - 1; i >= 0; i-- {
		if err := fc.popExpected(ft.Params[i]); err != nil {
			return err
		}
	}
	for _, r := range ft.Results {
		fc.pushKnown(r)
	}
	return nil
}

func (fc *funcChecker) selectOp() error {
	if err := fc.popExpected(i32); err != nil {
		return err
	}
	a, err := fc.pop()
	if err != nil {
		return err
	}
	b, err := fc.pop()
	if err != nil {
		return err
	}
	switch {
	case a.isKnown && b.isKnown:
		if a.typ != b.typ {
			return wasm.TypeMismatchError{Expected: b.typ, Actual: a.typ}
		}
		fc.push(a)
	case a.isKnown:
		fc.push(a)
	case b.isKnown:
		fc.push(b)
	default:
		fc.push(unknownOperand)
	}
	return nil
}

func (fc *funcChecker) localType(idx wasm.LocalIndex) (wasm.ValueType, error) {
	if int(idx) >= len(fc.locals) {
		return 0, wasm.InvalidLocalIndexError(idx)
	}
	return fc.locals[idx], nil
}

func (fc *funcChecker) localGet(idx wasm.LocalIndex) error {
	t, err := fc.localType(idx)
	if err != nil {
		return err
	}
	fc.pushKnown(t)
	return nil
}

func (fc *funcChecker) localSet(idx wasm.LocalIndex) error {
	t, err := fc.localType(idx)
	if err != nil {
		return err
	}
	return fc.popExpected(t)
}

func (fc *funcChecker) localTee(idx wasm.LocalIndex) error {
	t, err := fc.localType(idx)
	if err != nil {
		return err
	}
	if err := fc.popExpected(t); err != nil {
		return err
	}
	fc.pushKnown(t)
	return nil
}

func (fc *funcChecker) globalGet(idx wasm.GlobalIndex) error {
	gt, err := fc.ctx.Global(idx)
	if err != nil {
		return err
	}
	fc.pushKnown(gt.ValType)
	return nil
}

func (fc *funcChecker) globalSet(idx wasm.GlobalIndex) error {
	gt, err := fc.ctx.Global(idx)
	if err != nil {
		return err
	}
	if !gt.Mutable {
		return wasm.SettingImmutableGlobalError(idx)
	}
	return fc.popExpected(gt.ValType)
}

// memOpInfo describes one load/store opcode's access width and operand
// type, per §4.6.4's width schedule.
type memOpInfo struct {
	width uint32
	typ   wasm.ValueType
	store bool
}

var memOps = map[wasm.Opcode]memOpInfo{
	wasm.OpI32Load:    {4, i32, false},
	wasm.OpI64Load:    {8, i64, false},
	wasm.OpF32Load:    {4, f32, false},
	wasm.OpF64Load:    {8, f64, false},
	wasm.OpI32Load8S:  {1, i32, false},
	wasm.OpI32Load8U:  {1, i32, false},
	wasm.OpI32Load16S: {2, i32, false},
	wasm.OpI32Load16U: {2, i32, false},
	wasm.OpI64Load8S:  {1, i64, false},
	wasm.OpI64Load8U:  {1, i64, false},
	wasm.OpI64Load16S: {2, i64, false},
	wasm.OpI64Load16U: {2, i64, false},
	wasm.OpI64Load32S: {4, i64, false},
	wasm.OpI64Load32U: {4, i64, false},
	wasm.OpI32Store:   {4, i32, true},
	wasm.OpI64Store:   {8, i64, true},
	wasm.OpF32Store:   {4, f32, true},
	wasm.OpF64Store:   {8, f64, true},
	wasm.OpI32Store8:  {1, i32, true},
	wasm.OpI32Store16: {2, i32, true},
	wasm.OpI64Store8:  {1, i64, true},
	wasm.OpI64Store16: {2, i64, true},
	wasm.OpI64Store32: {4, i64, true},
}

func log2Width(w uint32) uint32 {
	switch w {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 0
	}
}

func (fc *funcChecker) memOp(info memOpInfo, mem wasm.MemoryArgument) error {
	if !fc.ctx.HasMemory() {
		return wasm.UndefinedMemoryError{}
	}
	maxAlign := log2Width(info.width)
	if mem.Align > maxAlign {
		return wasm.InvalidMemoryAlignmentError{Requested: mem.Align, MaxAlign: maxAlign}
	}
	if info.store {
		if err := fc.popExpected(info.typ); err != nil {
			return err
		}
		return fc.popExpected(i32)
	}
	if err := fc.popExpected(i32); err != nil {
		return err
	}
	fc.pushKnown(info.typ)
	return nil
}

func (fc *funcChecker) convert(from, to wasm.ValueType) error {
	if err := fc.popExpected(from); err != nil {
		return err
	}
	fc.pushKnown(to)
	return nil
}

func (fc *funcChecker) binop(t wasm.ValueType) error {
	if err := fc.popExpected(t); err != nil {
		return err
	}
	return fc.convert(t, t)
}

func (fc *funcChecker) relop(t wasm.ValueType) error {
	if err := fc.popExpected(t); err != nil {
		return err
	}
	return fc.convert(t, i32)
}

func (fc *funcChecker) truncSat(op wasm.SatOp) error {
	switch op {
	case wasm.SatOpI32TruncF32S, wasm.SatOpI32TruncF32U:
		return fc.convert(f32, i32)
	case wasm.SatOpI32TruncF64S, wasm.SatOpI32TruncF64U:
		return fc.convert(f64, i32)
	case wasm.SatOpI64TruncF32S, wasm.SatOpI64TruncF32U:
		return fc.convert(f32, i64)
	case wasm.SatOpI64TruncF64S, wasm.SatOpI64TruncF64U:
		return fc.convert(f64, i64)
	default:
		return wasm.InvalidSatOpCodeError(op)
	}
}

// numeric covers the nullary comparison/arithmetic/conversion/sign-
// extension opcodes (0x45-0xBF, 0xC0-0xC4): none carry an immediate, so
// their entire effect is the stack transition.
func (fc *funcChecker) numeric(op wasm.Opcode) error {
	switch {
	case op == wasm.OpI32Eqz:
		return fc.convert(i32, i32)
	case op >= wasm.OpI32Eq && op <= wasm.OpI32GeU:
		return fc.relop(i32)
	case op == wasm.OpI64Eqz:
		return fc.convert(i64, i32)
	case op >= wasm.OpI64Eq && op <= wasm.OpI64GeU:
		return fc.relop(i64)
	case op >= wasm.OpF32Eq && op <= wasm.OpF32Ge:
		return fc.relop(f32)
	case op >= wasm.OpF64Eq && op <= wasm.OpF64Ge:
		return fc.relop(f64)
	case op >= wasm.OpI32Clz && op <= wasm.OpI32Popcnt:
		return fc.convert(i32, i32)
	case op >= wasm.OpI32Add && op <= wasm.OpI32Rotr:
		return fc.binop(i32)
	case op >= wasm.OpI64Clz && op <= wasm.OpI64Popcnt:
		return fc.convert(i64, i64)
	case op >= wasm.OpI64Add && op <= wasm.OpI64Rotr:
		return fc.binop(i64)
	case op >= wasm.OpF32Abs && op <= wasm.OpF32Sqrt:
		return fc.convert(f32, f32)
	case op >= wasm.OpF32Add && op <= wasm.OpF32Copysign:
		return fc.binop(f32)
	case op >= wasm.OpF64Abs && op <= wasm.OpF64Sqrt:
		return fc.convert(f64, f64)
	case op >= wasm.OpF64Add && op <= wasm.OpF64Copysign:
		return fc.binop(f64)
	case op == wasm.OpI32WrapI64:
		return fc.convert(i64, i32)
	case op == wasm.OpI32TruncF32S || op == wasm.OpI32TruncF32U:
		return fc.convert(f32, i32)
	case op == wasm.OpI32TruncF64S || op == wasm.OpI32TruncF64U:
		return fc.convert(f64, i32)
	case op == wasm.OpI64ExtendI32S || op == wasm.OpI64ExtendI32U:
		return fc.convert(i32, i64)
	case op == wasm.OpI64TruncF32S || op == wasm.OpI64TruncF32U:
		return fc.convert(f32, i64)
	case op == wasm.OpI64TruncF64S || op == wasm.OpI64TruncF64U:
		return fc.convert(f64, i64)
	case op == wasm.OpF32ConvertI32S || op == wasm.OpF32ConvertI32U:
		return fc.convert(i32, f32)
	case op == wasm.OpF32ConvertI64S || op == wasm.OpF32ConvertI64U:
		return fc.convert(i64, f32)
	case op == wasm.OpF32DemoteF64:
		return fc.convert(f64, f32)
	case op == wasm.OpF64ConvertI32S || op == wasm.OpF64ConvertI32U:
		return fc.convert(i32, f64)
	case op == wasm.OpF64ConvertI64S || op == wasm.OpF64ConvertI64U:
		return fc.convert(i64, f64)
	case op == wasm.OpF64PromoteF32:
		return fc.convert(f32, f64)
	case op == wasm.OpI32ReinterpretF32:
		return fc.convert(f32, i32)
	case op == wasm.OpI64ReinterpretF64:
		return fc.convert(f64, i64)
	case op == wasm.OpF32ReinterpretI32:
		return fc.convert(i32, f32)
	case op == wasm.OpF64ReinterpretI64:
		return fc.convert(i64, f64)
	case op == wasm.OpI32Extend8S || op == wasm.OpI32Extend16S:
		return fc.convert(i32, i32)
	case op == wasm.OpI64Extend8S || op == wasm.OpI64Extend16S || op == wasm.OpI64Extend32S:
		return fc.convert(i64, i64)
	default:
		return wasm.InvalidInstructionError(byte(op))
	}
}

// step applies one decoded instruction to the checker state. It returns
// done=true when the instruction closed the outermost (function-level)
// frame, i.e. the function body's final End.
func (fc *funcChecker) step(inst wasm.Instruction) (bool, error) {
	f := fc.top()
	switch inst.Op {
	case wasm.OpUnreachable:
		fc.markUnreachable()
		return false, nil
	case wasm.OpNop:
		return false, nil
	case wasm.OpBlock:
		return false, fc.enterBlock(frameBlock, inst.Block)
	case wasm.OpLoop:
		return false, fc.enterBlock(frameLoop, inst.Block)
	case wasm.OpIf:
		if err := fc.popExpected(i32); err != nil {
			return false, err
		}
		return false, fc.enterBlock(frameIf, inst.Block)
	case wasm.OpElse:
		if f.kind != frameIf {
			return false, wasm.InvalidInstructionError(byte(inst.Op))
		}
		return false, fc.enterElse()
	case wasm.OpEnd:
		popped, err := fc.popCtrl()
		if err != nil {
			return false, err
		}
		if len(fc.frames) == 0 {
			return true, nil
		}
		for _, t := range popped.results {
			fc.pushKnown(t)
		}
		return false, nil
	case wasm.OpBr:
		return false, fc.br(inst.Label)
	case wasm.OpBrIf:
		return false, fc.brIf(inst.Label)
	case wasm.OpBrTable:
		return false, fc.brTable(inst.Labels, inst.Default)
	case wasm.OpReturn:
		return false, fc.doReturn()
	case wasm.OpCall:
		return false, fc.call(inst.FuncIdx)
	case wasm.OpCallIndirect:
		return false, fc.callIndirect(inst.TypeIdx)
	case wasm.OpDrop:
		_, err := fc.pop()
		return false, err
	case wasm.OpSelect:
		return false, fc.selectOp()
	case wasm.OpLocalGet:
		return false, fc.localGet(inst.LocalIdx)
	case wasm.OpLocalSet:
		return false, fc.localSet(inst.LocalIdx)
	case wasm.OpLocalTee:
		return false, fc.localTee(inst.LocalIdx)
	case wasm.OpGlobalGet:
		return false, fc.globalGet(inst.GlobalIdx)
	case wasm.OpGlobalSet:
		return false, fc.globalSet(inst.GlobalIdx)
	case wasm.OpMemorySize:
		if !fc.ctx.HasMemory() {
			return false, wasm.UndefinedMemoryError{}
		}
		fc.pushKnown(i32)
		return false, nil
	case wasm.OpMemoryGrow:
		if !fc.ctx.HasMemory() {
			return false, wasm.UndefinedMemoryError{}
		}
		if err := fc.popExpected(i32); err != nil {
			return false, err
		}
		fc.pushKnown(i32)
		return false, nil
	case wasm.OpI32Const:
		fc.pushKnown(i32)
		return false, nil
	case wasm.OpI64Const:
		fc.pushKnown(i64)
		return false, nil
	case wasm.OpF32Const:
		fc.pushKnown(f32)
		return false, nil
	case wasm.OpF64Const:
		fc.pushKnown(f64)
		return false, nil
	case wasm.OpTruncSatPrefix:
		return false, fc.truncSat(inst.SatOp)
	default:
		if info, ok := memOps[inst.Op]; ok {
			return false, fc.memOp(info, inst.Mem)
		}
		return false, fc.numeric(inst.Op)
	}
}
