package fixtures

import "github.com/simdswift/simdswift/ir"

// BubbleSortLen is the element count of the bubblesort kernel's array.
const BubbleSortLen = 6

// BubbleSort builds the in-place bubble sort over @data: nested loops,
// compared loads, and swaps through memory on the taken path.
func BubbleSort() *ir.Module {
	m := newModule("bubblesort")
	data := m.NewGlobal("data", ir.I32, BubbleSortLen, i32Consts(5, 2, 9, 1, 7, 3))

	f := m.NewFunction("bubblesort", ir.Void)
	entry := f.NewBlock("entry")
	outer := f.NewBlock("outer")
	inner := f.NewBlock("inner")
	swap := f.NewBlock("swap")
	innerLatch := f.NewBlock("inner.latch")
	outerLatch := f.NewBlock("outer.latch")
	exit := f.NewBlock("exit")

	ir.AtEnd(entry).Br(outer)

	b := ir.AtEnd(outer)
	i := b.Phi(ir.I32, "i")
	b.Br(inner)

	b = ir.AtEnd(inner)
	j := b.Phi(ir.I32, "j")
	jNextIdx := b.Binary(ir.OpAdd, j, ir.ConstInt(ir.I32, 1), "j.succ")
	p := b.GEP(ir.I32, data, []ir.Value{j}, true, "p")
	q := b.GEP(ir.I32, data, []ir.Value{jNextIdx}, true, "q")
	a := b.Load(ir.I32, p, "a")
	c := b.Load(ir.I32, q, "c")
	gt := b.ICmp(ir.IntSGT, a, c, "gt")
	b.CondBr(gt, swap, innerLatch)

	b = ir.AtEnd(swap)
	b.Store(c, p)
	b.Store(a, q)
	b.Br(innerLatch)

	b = ir.AtEnd(innerLatch)
	jNext := b.Binary(ir.OpAdd, j, ir.ConstInt(ir.I32, 1), "j.next")
	jCmp := b.ICmp(ir.IntSLT, jNext, ir.ConstInt(ir.I32, BubbleSortLen-1), "j.cmp")
	b.CondBr(jCmp, inner, outerLatch)

	b = ir.AtEnd(outerLatch)
	iNext := b.Binary(ir.OpAdd, i, ir.ConstInt(ir.I32, 1), "i.next")
	iCmp := b.ICmp(ir.IntSLT, iNext, ir.ConstInt(ir.I32, BubbleSortLen-1), "i.cmp")
	b.CondBr(iCmp, outer, exit)

	i.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	i.AddIncoming(iNext, outerLatch)
	j.AddIncoming(ir.ConstInt(ir.I32, 0), outer)
	j.AddIncoming(jNext, innerLatch)

	ir.AtEnd(exit).Ret(nil)
	return m
}
