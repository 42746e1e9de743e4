package fixtures

import "github.com/simdswift/simdswift/ir"

// ArrayFloatLen is the element count of the arrayfloat kernel's arrays.
const ArrayFloatLen = 8

// ArrayFloat builds the float array kernel: axpb computes a*x+b over @fsrc,
// stores to @fdst and returns the running sum.
func ArrayFloat() *ir.Module {
	m := newModule("arrayfloat")
	src := m.NewGlobal("fsrc", ir.Float, ArrayFloatLen,
		floatConsts(0.5, 1.25, -2.0, 3.5, 0.0, -0.75, 4.0, 1.0))
	dst := m.NewGlobal("fdst", ir.Float, ArrayFloatLen, nil)

	f := m.NewFunction("axpb", ir.Float,
		ir.NewParam("a", ir.Float), ir.NewParam("b", ir.Float))
	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	exit := f.NewBlock("exit")

	ir.AtEnd(entry).Br(loop)

	b := ir.AtEnd(loop)
	i := b.Phi(ir.I32, "i")
	sum := b.Phi(ir.Float, "sum")
	p := b.GEP(ir.Float, src, []ir.Value{i}, true, "p")
	x := b.Load(ir.Float, p, "x")
	ax := b.Binary(ir.OpFMul, f.Params()[0], x, "ax")
	y := b.Binary(ir.OpFAdd, ax, f.Params()[1], "y")
	q := b.GEP(ir.Float, dst, []ir.Value{i}, true, "q")
	b.Store(y, q)
	sumNext := b.Binary(ir.OpFAdd, sum, y, "sum.next")
	iNext := b.Binary(ir.OpAdd, i, ir.ConstInt(ir.I32, 1), "i.next")
	cmp := b.ICmp(ir.IntSLT, iNext, ir.ConstInt(ir.I32, ArrayFloatLen), "cmp")
	b.CondBr(cmp, loop, exit)

	i.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	i.AddIncoming(iNext, loop)
	sum.AddIncoming(ir.ConstFloat(ir.Float, 0), entry)
	sum.AddIncoming(sumNext, loop)

	ir.AtEnd(exit).Ret(sumNext)
	return m
}
