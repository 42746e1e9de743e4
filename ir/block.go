package ir

// Block is a basic block: a named, ordered list of instructions ending in a
// terminator. A block is also a Value (a label) so it can appear as a branch
// target operand.
type Block struct {
	name   string
	instrs []*Instruction
	fn     *Function
}

func (b *Block) Type() *Type         { return Label }
func (b *Block) Name() string        { return b.name }
func (b *Block) Parent() *Function   { return b.fn }
func (b *Block) valueString() string { return "label %" + b.name }

// Instructions returns the live instruction list. Callers that mutate the
// block while iterating must take a copy first.
func (b *Block) Instructions() []*Instruction { return b.instrs }

// First returns the first instruction, or nil for an empty block.
func (b *Block) First() *Instruction {
	if len(b.instrs) == 0 {
		return nil
	}
	return b.instrs[0]
}

// Terminator returns the block's terminator, or nil if the block is not yet
// terminated.
func (b *Block) Terminator() *Instruction {
	if n := len(b.instrs); n > 0 && b.instrs[n-1].op.IsTerminator() {
		return b.instrs[n-1]
	}
	return nil
}

// IndexOf returns the position of i in the block, or -1.
func (b *Block) IndexOf(i *Instruction) int {
	for k, in := range b.instrs {
		if in == i {
			return k
		}
	}
	return -1
}

// Append adds i at the end of the block.
func (b *Block) Append(i *Instruction) {
	i.parent = b
	b.instrs = append(b.instrs, i)
}

func (b *Block) insertAt(idx int, i *Instruction) {
	i.parent = b
	b.instrs = append(b.instrs, nil)
	copy(b.instrs[idx+1:], b.instrs[idx:])
	b.instrs[idx] = i
}

// Remove deletes i from the block. The instruction keeps its operands but is
// no longer reachable from the function.
func (b *Block) Remove(i *Instruction) {
	idx := b.IndexOf(i)
	if idx < 0 {
		return
	}
	b.instrs = append(b.instrs[:idx], b.instrs[idx+1:]...)
	i.parent = nil
}

// Successors returns the blocks the terminator can transfer control to.
func (b *Block) Successors() []*Block {
	t := b.Terminator()
	if t == nil {
		return nil
	}
	return t.Blocks()
}
