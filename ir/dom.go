package ir

// DomTree is the dominator tree of a function's CFG. Blocks unreachable from
// the entry do not appear in it.
type DomTree struct {
	root     *Block
	idom     map[*Block]*Block
	children map[*Block][]*Block
}

// Predecessors returns the CFG predecessor lists of every block.
func Predecessors(f *Function) map[*Block][]*Block {
	preds := make(map[*Block][]*Block, len(f.blocks))
	for _, b := range f.blocks {
		t := b.Terminator()
		if t == nil {
			continue
		}
		seen := map[*Block]bool{}
		for _, s := range t.Blocks() {
			if !seen[s] {
				seen[s] = true
				preds[s] = append(preds[s], b)
			}
		}
	}
	return preds
}

// BuildDomTree computes the dominator tree with the iterative
// Cooper-Harvey-Kennedy algorithm over a reverse postorder.
func BuildDomTree(f *Function) *DomTree {
	entry := f.Entry()
	t := &DomTree{root: entry, idom: map[*Block]*Block{}, children: map[*Block][]*Block{}}
	if entry == nil {
		return t
	}

	// Postorder numbering of the reachable subgraph.
	order := make([]*Block, 0, len(f.blocks))
	number := map[*Block]int{}
	visited := map[*Block]bool{}
	var walk func(b *Block)
	walk = func(b *Block) {
		visited[b] = true
		for _, s := range b.Successors() {
			if !visited[s] {
				walk(s)
			}
		}
		number[b] = len(order)
		order = append(order, b)
	}
	walk(entry)

	preds := Predecessors(f)
	t.idom[entry] = entry

	intersect := func(a, b *Block) *Block {
		for a != b {
			for number[a] < number[b] {
				a = t.idom[a]
			}
			for number[b] < number[a] {
				b = t.idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		// Reverse postorder skipping the entry.
		for k := len(order) - 2; k >= 0; k-- {
			b := order[k]
			var newIdom *Block
			for _, p := range preds[b] {
				if t.idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != nil && t.idom[b] != newIdom {
				t.idom[b] = newIdom
				changed = true
			}
		}
	}

	// Children in function layout order, for deterministic traversal.
	for _, b := range f.blocks {
		if b == entry {
			continue
		}
		if id := t.idom[b]; id != nil {
			t.children[id] = append(t.children[id], b)
		}
	}
	return t
}

// Idom returns the immediate dominator of b, or nil for the entry and for
// unreachable blocks.
func (t *DomTree) Idom(b *Block) *Block {
	if b == t.root {
		return nil
	}
	return t.idom[b]
}

// Dominates reports whether a dominates b (reflexively).
func (t *DomTree) Dominates(a, b *Block) bool {
	for {
		if a == b {
			return true
		}
		next := t.idom[b]
		if next == nil || next == b {
			return false
		}
		b = next
	}
}

// Preorder returns the blocks in a depth-first preorder of the dominator
// tree, starting at the entry.
func (t *DomTree) Preorder() []*Block {
	if t.root == nil {
		return nil
	}
	out := make([]*Block, 0, len(t.idom))
	var walk func(b *Block)
	walk = func(b *Block) {
		out = append(out, b)
		for _, c := range t.children[b] {
			walk(c)
		}
	}
	walk(t.root)
	return out
}
