package ir

// Builder inserts instructions at a cursor position inside a block. The
// cursor is anchored to an existing instruction, so it stays valid while
// other builders insert elsewhere in the same block: a before-cursor always
// inserts immediately before its anchor, an after-cursor appends in order
// after it.
type Builder struct {
	blk    *Block
	anchor *Instruction
	after  bool
	n      int // instructions inserted so far by an after-cursor
}

// Before returns a builder inserting immediately before i.
func Before(i *Instruction) *Builder {
	return &Builder{blk: i.parent, anchor: i}
}

// After returns a builder inserting after i, preserving insertion order.
func After(i *Instruction) *Builder {
	return &Builder{blk: i.parent, anchor: i, after: true}
}

// AtEnd returns a builder appending to the end of b.
func AtEnd(b *Block) *Builder {
	return &Builder{blk: b}
}

func (b *Builder) insertIdx() int {
	if b.anchor == nil {
		return len(b.blk.instrs)
	}
	idx := b.blk.IndexOf(b.anchor)
	if b.after {
		return idx + 1 + b.n
	}
	return idx
}

// Insert places a pre-built instruction at the cursor and returns it.
func (b *Builder) Insert(i *Instruction) *Instruction {
	b.blk.insertAt(b.insertIdx(), i)
	if b.after {
		b.n++
	}
	return i
}

// Binary inserts a binary op over x and y. The result type is x's type.
func (b *Builder) Binary(op Op, x, y Value, name string) *Instruction {
	return b.Insert(&Instruction{op: op, typ: x.Type(), name: name, args: []Value{x, y}})
}

// ICmp inserts an integer comparison. Vector operands yield a vector of i1.
func (b *Builder) ICmp(p Pred, x, y Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpICmp, typ: cmpType(x), name: name, pred: p, args: []Value{x, y}})
}

// FCmp inserts a floating-point comparison.
func (b *Builder) FCmp(p Pred, x, y Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpFCmp, typ: cmpType(x), name: name, pred: p, args: []Value{x, y}})
}

func cmpType(x Value) *Type {
	if t := x.Type(); t.IsVector() {
		return VectorOf(I1, t.Lanes)
	}
	return I1
}

// Select inserts a select over cond.
func (b *Builder) Select(cond, tv, fv Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpSelect, typ: tv.Type(), name: name, args: []Value{cond, tv, fv}})
}

// GEP inserts an address computation over elem-typed memory. A vector
// pointer or index operand makes the result a vector of pointers.
func (b *Builder) GEP(elem *Type, ptr Value, idxs []Value, inBounds bool, name string) *Instruction {
	typ := Ptr
	if t := ptr.Type(); t.IsVector() {
		typ = VectorOf(Ptr, t.Lanes)
	} else {
		for _, ix := range idxs {
			if it := ix.Type(); it.IsVector() {
				typ = VectorOf(Ptr, it.Lanes)
				break
			}
		}
	}
	args := append([]Value{ptr}, idxs...)
	return b.Insert(&Instruction{op: OpGEP, typ: typ, name: name, args: args, elemType: elem, inBounds: inBounds})
}

// Cast inserts a cast of v to the destination type.
func (b *Builder) Cast(op Op, v Value, to *Type, name string) *Instruction {
	return b.Insert(&Instruction{op: op, typ: to, name: name, args: []Value{v}})
}

func (b *Builder) Trunc(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpTrunc, v, to, name)
}

func (b *Builder) ZExt(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpZExt, v, to, name)
}

func (b *Builder) SExt(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpSExt, v, to, name)
}

func (b *Builder) BitCast(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpBitCast, v, to, name)
}

func (b *Builder) PtrToInt(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpPtrToInt, v, to, name)
}

func (b *Builder) IntToPtr(v Value, to *Type, name string) *Instruction {
	return b.Cast(OpIntToPtr, v, to, name)
}

// ExtractElement inserts a lane read from a vector.
func (b *Builder) ExtractElement(vec, idx Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpExtractElement, typ: vec.Type().Elem, name: name, args: []Value{vec, idx}})
}

// InsertElement inserts a lane write into a vector.
func (b *Builder) InsertElement(vec, elem, idx Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpInsertElement, typ: vec.Type(), name: name, args: []Value{vec, elem, idx}})
}

// Shuffle inserts a shufflevector over v1 and v2 with a constant mask. The
// result lane count is the mask length.
func (b *Builder) Shuffle(v1, v2 Value, mask []int, name string) *Instruction {
	typ := VectorOf(v1.Type().Elem, len(mask))
	return b.Insert(&Instruction{op: OpShuffleVector, typ: typ, name: name, args: []Value{v1, v2}, mask: mask})
}

// ExtractValue inserts a field read from an aggregate.
func (b *Builder) ExtractValue(agg Value, field int, typ *Type, name string) *Instruction {
	return b.Insert(&Instruction{op: OpExtractValue, typ: typ, name: name, args: []Value{agg}, index: field})
}

// InsertValue inserts a field write into an aggregate.
func (b *Builder) InsertValue(agg, v Value, field int, name string) *Instruction {
	return b.Insert(&Instruction{op: OpInsertValue, typ: agg.Type(), name: name, args: []Value{agg, v}, index: field})
}

// Phi inserts an empty phi of the given type. Incomings are added with
// AddIncoming.
func (b *Builder) Phi(typ *Type, name string) *Instruction {
	return b.Insert(&Instruction{op: OpPhi, typ: typ, name: name})
}

// Alloca inserts a stack allocation of elem. count may be nil.
func (b *Builder) Alloca(elem *Type, count Value, name string) *Instruction {
	i := &Instruction{op: OpAlloca, typ: Ptr, name: name, elemType: elem}
	if count != nil {
		i.args = []Value{count}
	}
	return b.Insert(i)
}

// Load inserts a load of typ through ptr.
func (b *Builder) Load(typ *Type, ptr Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpLoad, typ: typ, name: name, args: []Value{ptr}, elemType: typ})
}

// Store inserts a store of v through ptr.
func (b *Builder) Store(v, ptr Value) *Instruction {
	return b.Insert(&Instruction{op: OpStore, typ: Void, args: []Value{v, ptr}})
}

// CmpXchg inserts an atomic compare-exchange; the result is the loaded value.
func (b *Builder) CmpXchg(ptr, expected, newV Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpCmpXchg, typ: expected.Type(), name: name, args: []Value{ptr, expected, newV}})
}

// AtomicRMW inserts an atomic read-modify-write; the result is the old value.
func (b *Builder) AtomicRMW(kind RMWOp, ptr, v Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpAtomicRMW, typ: v.Type(), name: name, rmw: kind, args: []Value{ptr, v}})
}

// Fence inserts a memory fence.
func (b *Builder) Fence() *Instruction {
	return b.Insert(&Instruction{op: OpFence, typ: Void})
}

// VAArg inserts a variadic-argument read of typ from list.
func (b *Builder) VAArg(list Value, typ *Type, name string) *Instruction {
	return b.Insert(&Instruction{op: OpVAArg, typ: typ, name: name, args: []Value{list}})
}

// Call inserts a call. typ is the result type (Void for none).
func (b *Builder) Call(callee Value, typ *Type, args []Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpCall, typ: typ, name: name, callee: callee, args: args})
}

// PTestZ inserts a 256-bit zero-predicate test: 1 iff (x AND y) == 0.
func (b *Builder) PTestZ(x, y Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpPTestZ, typ: I32, name: name, args: []Value{x, y}})
}

// PTestNZC inserts the combined test: 1 iff neither (x AND y) nor
// (NOT x AND y) is all zeroes.
func (b *Builder) PTestNZC(x, y Value, name string) *Instruction {
	return b.Insert(&Instruction{op: OpPTestNZC, typ: I32, name: name, args: []Value{x, y}})
}

// Ret inserts a return of v, which may be nil for void.
func (b *Builder) Ret(v Value) *Instruction {
	i := &Instruction{op: OpRet, typ: Void}
	if v != nil {
		i.args = []Value{v}
	}
	return b.Insert(i)
}

// Br inserts an unconditional branch.
func (b *Builder) Br(dest *Block) *Instruction {
	return b.Insert(&Instruction{op: OpBr, typ: Void, blocks: []*Block{dest}})
}

// CondBr inserts a conditional branch.
func (b *Builder) CondBr(cond Value, then, els *Block) *Instruction {
	return b.Insert(&Instruction{op: OpBr, typ: Void, args: []Value{cond}, blocks: []*Block{then, els}})
}

// Switch inserts a switch over sel. Cases are added with AddCase.
func (b *Builder) Switch(sel Value, def *Block) *Instruction {
	return b.Insert(&Instruction{op: OpSwitch, typ: Void, args: []Value{sel}, blocks: []*Block{def}})
}

// AddCase appends a case to a switch instruction.
func AddCase(sw *Instruction, v *Const, dest *Block) {
	sw.caseVals = append(sw.caseVals, v)
	sw.blocks = append(sw.blocks, dest)
}

// IndirectBr inserts an indirect branch through addr with the given possible
// targets.
func (b *Builder) IndirectBr(addr Value, targets []*Block) *Instruction {
	return b.Insert(&Instruction{op: OpIndirectBr, typ: Void, args: []Value{addr}, blocks: targets})
}

// Unreachable inserts an unreachable terminator.
func (b *Builder) Unreachable() *Instruction {
	return b.Insert(&Instruction{op: OpUnreachable, typ: Void})
}
