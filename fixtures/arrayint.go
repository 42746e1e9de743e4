package fixtures

import "github.com/simdswift/simdswift/ir"

// ArrayIntLen is the element count of the arrayint kernel's arrays.
const ArrayIntLen = 8

// ArrayInt builds the integer array kernel: sum_scale multiplies every
// element of @src by its argument, stores the products to @dst and returns
// their sum.
func ArrayInt() *ir.Module {
	m := newModule("arrayint")
	src := m.NewGlobal("src", ir.I32, ArrayIntLen, i32Consts(3, 1, 4, 1, 5, 9, 2, 6))
	dst := m.NewGlobal("dst", ir.I32, ArrayIntLen, nil)

	f := m.NewFunction("sum_scale", ir.I32, ir.NewParam("scale", ir.I32))
	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	exit := f.NewBlock("exit")

	ir.AtEnd(entry).Br(loop)

	b := ir.AtEnd(loop)
	i := b.Phi(ir.I32, "i")
	acc := b.Phi(ir.I32, "acc")
	p := b.GEP(ir.I32, src, []ir.Value{i}, true, "p")
	x := b.Load(ir.I32, p, "x")
	x2 := b.Binary(ir.OpMul, x, f.Params()[0], "x2")
	q := b.GEP(ir.I32, dst, []ir.Value{i}, true, "q")
	b.Store(x2, q)
	accNext := b.Binary(ir.OpAdd, acc, x2, "acc.next")
	iNext := b.Binary(ir.OpAdd, i, ir.ConstInt(ir.I32, 1), "i.next")
	cmp := b.ICmp(ir.IntSLT, iNext, ir.ConstInt(ir.I32, ArrayIntLen), "cmp")
	b.CondBr(cmp, loop, exit)

	i.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	i.AddIncoming(iNext, loop)
	acc.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	acc.AddIncoming(accNext, loop)

	ir.AtEnd(exit).Ret(accNext)
	return m
}
