package ir

// Op tags the kind of an Instruction. Rewrites over instructions switch on
// this tag exhaustively; an unhandled op is an error, not a silent skip.
type Op byte

const (
	OpInvalid Op = iota

	// Integer binary ops.
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSRem
	OpURem
	OpShl
	OpLShr
	OpAShr
	OpAnd
	OpOr
	OpXor

	// Floating-point binary ops.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem

	// Comparisons.
	OpICmp
	OpFCmp

	OpSelect
	OpGEP

	// Casts.
	OpTrunc
	OpZExt
	OpSExt
	OpFPTrunc
	OpFPExt
	OpFPToUI
	OpFPToSI
	OpUIToFP
	OpSIToFP
	OpPtrToInt
	OpIntToPtr
	OpBitCast

	// Memory.
	OpAlloca
	OpLoad
	OpStore
	OpCmpXchg
	OpAtomicRMW
	OpFence
	OpVAArg

	// Vector.
	OpExtractElement
	OpInsertElement
	OpShuffleVector

	// Aggregates.
	OpExtractValue
	OpInsertValue

	OpPhi
	OpCall

	// 256-bit zero-predicate tests of the SIMD target. PTestZ yields 1 iff
	// (a AND b) is all zeroes; PTestNZC yields 1 iff neither (a AND b) nor
	// (NOT a AND b) is all zeroes.
	OpPTestZ
	OpPTestNZC

	// Terminators.
	OpRet
	OpBr
	OpSwitch
	OpIndirectBr
	OpUnreachable
	OpInvoke
	OpLandingPad
	OpResume
)

var opNames = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpSDiv: "sdiv", OpUDiv: "udiv",
	OpSRem: "srem", OpURem: "urem", OpShl: "shl", OpLShr: "lshr", OpAShr: "ashr",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv", OpFRem: "frem",
	OpICmp: "icmp", OpFCmp: "fcmp", OpSelect: "select", OpGEP: "getelementptr",
	OpTrunc: "trunc", OpZExt: "zext", OpSExt: "sext", OpFPTrunc: "fptrunc",
	OpFPExt: "fpext", OpFPToUI: "fptoui", OpFPToSI: "fptosi", OpUIToFP: "uitofp",
	OpSIToFP: "sitofp", OpPtrToInt: "ptrtoint", OpIntToPtr: "inttoptr", OpBitCast: "bitcast",
	OpAlloca: "alloca", OpLoad: "load", OpStore: "store", OpCmpXchg: "cmpxchg",
	OpAtomicRMW: "atomicrmw", OpFence: "fence", OpVAArg: "va_arg",
	OpExtractElement: "extractelement", OpInsertElement: "insertelement",
	OpShuffleVector: "shufflevector", OpExtractValue: "extractvalue",
	OpInsertValue: "insertvalue", OpPhi: "phi", OpCall: "call",
	OpPTestZ: "ptestz", OpPTestNZC: "ptestnzc",
	OpRet: "ret", OpBr: "br", OpSwitch: "switch", OpIndirectBr: "indirectbr",
	OpUnreachable: "unreachable", OpInvoke: "invoke", OpLandingPad: "landingpad",
	OpResume: "resume",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "invalid"
}

// IsBinary reports whether op is an integer or floating-point binary op.
func (op Op) IsBinary() bool { return op >= OpAdd && op <= OpFRem }

// IsCast reports whether op is one of the twelve cast ops.
func (op Op) IsCast() bool { return op >= OpTrunc && op <= OpBitCast }

// IsTerminator reports whether op terminates a basic block.
func (op Op) IsTerminator() bool { return op >= OpRet }

// Pred is a comparison predicate for icmp and fcmp.
type Pred byte

const (
	IntEQ Pred = iota
	IntNE
	IntSLT
	IntSLE
	IntSGT
	IntSGE
	IntULT
	IntULE
	IntUGT
	IntUGE
	FloatOEQ
	FloatONE
	FloatOLT
	FloatOLE
	FloatOGT
	FloatOGE
	FloatUEQ
	FloatUNE
	FloatULT
	FloatULE
	FloatUGT
	FloatUGE
	FloatORD
	FloatUNO
)

var predNames = map[Pred]string{
	IntEQ: "eq", IntNE: "ne", IntSLT: "slt", IntSLE: "sle", IntSGT: "sgt",
	IntSGE: "sge", IntULT: "ult", IntULE: "ule", IntUGT: "ugt", IntUGE: "uge",
	FloatOEQ: "oeq", FloatONE: "one", FloatOLT: "olt", FloatOLE: "ole",
	FloatOGT: "ogt", FloatOGE: "oge", FloatUEQ: "ueq", FloatUNE: "une",
	FloatULT: "ult", FloatULE: "ule", FloatUGT: "ugt", FloatUGE: "uge",
	FloatORD: "ord", FloatUNO: "uno",
}

func (p Pred) String() string {
	if s, ok := predNames[p]; ok {
		return s
	}
	return "badpred"
}

// RMWOp is the operation of an atomicrmw instruction.
type RMWOp byte

const (
	RMWXchg RMWOp = iota
	RMWAdd
	RMWSub
	RMWAnd
	RMWOr
	RMWXor
	RMWFAdd
	RMWFSub
)

// Instruction is a single IR instruction. The operand layout depends on the
// op:
//
//	binary, icmp, fcmp       [lhs, rhs]
//	select                   [cond, true, false]
//	getelementptr            [ptr, index...]
//	casts                    [value]
//	phi                      incoming values, parallel to incoming blocks
//	alloca                   [] or [count]
//	load                     [ptr]
//	store                    [value, ptr]
//	cmpxchg                  [ptr, expected, new]
//	atomicrmw                [ptr, value]
//	va_arg                   [list]
//	extractelement           [vector, index]
//	insertelement            [vector, element, index]
//	shufflevector            [v1, v2] with a constant mask
//	extractvalue             [aggregate] with a field index
//	insertvalue              [aggregate, value] with a field index
//	call                     argument list; the callee is a separate field
//	ptestz, ptestnzc         [a, b]
//	ret                      [] or [value]
//	br                       [] or [cond]; blocks [dest] or [then, else]
//	switch                   [selector]; blocks [default, case...]
//	indirectbr               [address]; blocks are the possible targets
type Instruction struct {
	op   Op
	typ  *Type
	name string

	args     []Value
	blocks   []*Block
	caseVals []*Const // switch case values, parallel to blocks[1:]

	pred     Pred
	rmw      RMWOp
	callee   Value
	elemType *Type // alloca allocated type, gep source element type, load type
	mask     []int // shufflevector lane selection
	index    int   // extractvalue/insertvalue field index
	inBounds bool
	volatile bool
	weights  []uint32 // branch profile weights, [taken, not-taken]

	parent *Block
}

func (i *Instruction) Op() Op               { return i.op }
func (i *Instruction) Type() *Type          { return i.typ }
func (i *Instruction) Name() string         { return i.name }
func (i *Instruction) SetName(name string)  { i.name = name }
func (i *Instruction) Parent() *Block       { return i.parent }
func (i *Instruction) Predicate() Pred      { return i.pred }
func (i *Instruction) RMWKind() RMWOp       { return i.rmw }
func (i *Instruction) ElemType() *Type      { return i.elemType }
func (i *Instruction) Mask() []int          { return i.mask }
func (i *Instruction) FieldIndex() int      { return i.index }
func (i *Instruction) InBounds() bool       { return i.inBounds }
func (i *Instruction) Volatile() bool       { return i.volatile }
func (i *Instruction) Weights() []uint32    { return i.weights }
func (i *Instruction) SetWeights(w []uint32) { i.weights = w }

func (i *Instruction) valueString() string {
	if i.name != "" {
		return "%" + i.name
	}
	return "%<" + i.op.String() + ">"
}

// NumOperands returns the number of value operands (the callee of a call is
// not counted; see Callee).
func (i *Instruction) NumOperands() int { return len(i.args) }

// Operand returns the idx-th value operand.
func (i *Instruction) Operand(idx int) Value { return i.args[idx] }

// SetOperand replaces the idx-th value operand.
func (i *Instruction) SetOperand(idx int, v Value) { i.args[idx] = v }

// Operands returns a copy of the value operand list.
func (i *Instruction) Operands() []Value {
	return append([]Value(nil), i.args...)
}

// AllOperands returns every value this instruction references, including the
// callee of a call. Used by use-scans and the instruction analyzer.
func (i *Instruction) AllOperands() []Value {
	ops := append([]Value(nil), i.args...)
	if i.callee != nil {
		ops = append(ops, i.callee)
	}
	return ops
}

// Callee returns the call target of a call instruction, nil otherwise.
func (i *Instruction) Callee() Value { return i.callee }

// SetCallee replaces the call target of a call instruction.
func (i *Instruction) SetCallee(v Value) { i.callee = v }

// CalledFunction returns the statically known called function, or nil for
// indirect and inline-asm calls.
func (i *Instruction) CalledFunction() *Function {
	f, _ := i.callee.(*Function)
	return f
}

// IsInlineAsmCall reports whether a call's target is an inline-asm literal.
func (i *Instruction) IsInlineAsmCall() bool {
	_, ok := i.callee.(*InlineAsm)
	return ok
}

// NumBlocks returns the number of block references (branch targets, phi
// incoming blocks).
func (i *Instruction) NumBlocks() int { return len(i.blocks) }

// Block returns the idx-th referenced block.
func (i *Instruction) Block(idx int) *Block { return i.blocks[idx] }

// Blocks returns a copy of the referenced-block list.
func (i *Instruction) Blocks() []*Block {
	return append([]*Block(nil), i.blocks...)
}

// CaseValue returns the idx-th switch case constant (parallel to the case
// target Blocks()[idx+1]).
func (i *Instruction) CaseValue(idx int) *Const { return i.caseVals[idx] }

// NumCases returns the number of switch cases, excluding the default.
func (i *Instruction) NumCases() int { return len(i.caseVals) }

// IsConditional reports whether a br instruction has a condition.
func (i *Instruction) IsConditional() bool {
	return i.op == OpBr && len(i.args) == 1
}

// Cond returns the condition of a conditional branch or a select.
func (i *Instruction) Cond() Value { return i.args[0] }

// SetCond replaces the condition of a conditional branch or a select.
func (i *Instruction) SetCond(v Value) { i.args[0] = v }

// AddIncoming appends an incoming (value, block) pair to a phi.
func (i *Instruction) AddIncoming(v Value, b *Block) {
	i.args = append(i.args, v)
	i.blocks = append(i.blocks, b)
}

// NumIncoming returns the number of incoming pairs of a phi.
func (i *Instruction) NumIncoming() int { return len(i.args) }

// Incoming returns the idx-th incoming pair of a phi.
func (i *Instruction) Incoming(idx int) (Value, *Block) {
	return i.args[idx], i.blocks[idx]
}

// IncomingForBlock returns the incoming value a phi carries for the given
// predecessor block, or nil if the block is not a predecessor.
func (i *Instruction) IncomingForBlock(b *Block) Value {
	for k, blk := range i.blocks {
		if blk == b {
			return i.args[k]
		}
	}
	return nil
}

// RemoveIncoming deletes the idx-th incoming pair of a phi.
func (i *Instruction) RemoveIncoming(idx int) {
	i.args = append(i.args[:idx], i.args[idx+1:]...)
	i.blocks = append(i.blocks[:idx], i.blocks[idx+1:]...)
}

// Clone returns an unattached copy of the instruction sharing no mutable
// state with the original.
func (i *Instruction) Clone() *Instruction {
	c := *i
	c.args = append([]Value(nil), i.args...)
	c.blocks = append([]*Block(nil), i.blocks...)
	c.caseVals = append([]*Const(nil), i.caseVals...)
	c.mask = append([]int(nil), i.mask...)
	c.weights = append([]uint32(nil), i.weights...)
	c.parent = nil
	return &c
}
