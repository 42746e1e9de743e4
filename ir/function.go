package ir

// Function is a function declaration or definition. A function with no
// blocks is a declaration. As a Value, a function is its address.
type Function struct {
	name   string
	params []*Param
	ret    *Type
	blocks []*Block
	varArg bool
	mod    *Module
}

func (f *Function) Type() *Type         { return Ptr }
func (f *Function) Name() string        { return f.name }
func (f *Function) RetType() *Type      { return f.ret }
func (f *Function) VarArg() bool        { return f.varArg }
func (f *Function) Module() *Module     { return f.mod }
func (f *Function) valueString() string { return "@" + f.name }

// IsDecl reports whether the function has no body.
func (f *Function) IsDecl() bool { return len(f.blocks) == 0 }

// Params returns the live parameter list.
func (f *Function) Params() []*Param { return f.params }

// Blocks returns the live block list in layout order.
func (f *Function) Blocks() []*Block { return f.blocks }

// Entry returns the entry block, or nil for a declaration.
func (f *Function) Entry() *Block {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// NewBlock appends a new empty block with the given name.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{name: name, fn: f}
	f.blocks = append(f.blocks, b)
	return b
}

// NewBlockAfter inserts a new empty block right after the given block in
// layout order.
func (f *Function) NewBlockAfter(after *Block, name string) *Block {
	b := &Block{name: name, fn: f}
	for k, blk := range f.blocks {
		if blk == after {
			f.blocks = append(f.blocks, nil)
			copy(f.blocks[k+2:], f.blocks[k+1:])
			f.blocks[k+1] = b
			return b
		}
	}
	f.blocks = append(f.blocks, b)
	return b
}

// SplitBlockBefore moves i and every instruction after it into a fresh block
// inserted right after i's current block, and retargets phi incoming-block
// references in the moved terminator's successors from the old block to the
// new one. The old block is left unterminated; the caller must terminate it.
func (f *Function) SplitBlockBefore(i *Instruction, name string) *Block {
	blk := i.parent
	idx := blk.IndexOf(i)
	tail := f.NewBlockAfter(blk, name)
	moved := blk.instrs[idx:]
	blk.instrs = blk.instrs[:idx:idx]
	for _, in := range moved {
		in.parent = tail
	}
	tail.instrs = append(tail.instrs, moved...)

	if t := tail.Terminator(); t != nil {
		for _, succ := range t.Blocks() {
			for _, pi := range succ.instrs {
				if pi.op != OpPhi {
					break
				}
				for k, pb := range pi.blocks {
					if pb == blk {
						pi.blocks[k] = tail
					}
				}
			}
		}
	}
	return tail
}

// NumUses counts how many operand slots across the function reference v,
// including phi incomings and call targets.
func (f *Function) NumUses(v Value) int {
	n := 0
	for _, b := range f.blocks {
		for _, i := range b.instrs {
			for _, op := range i.args {
				if op == v {
					n++
				}
			}
			if i.callee == v && i.callee != nil {
				n++
			}
		}
	}
	return n
}
