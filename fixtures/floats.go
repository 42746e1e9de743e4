package fixtures

import "github.com/simdswift/simdswift/ir"

// FloatsLen is the element count of the floats kernel's input.
const FloatsLen = 4

// Floats builds the double kernel: sumsq reduces the squares of @vals, then
// branches on a comparison against its threshold argument, halving the
// result on the taken path. The halved-or-not result is joined by a double
// phi and stored to @fout.
func Floats() *ir.Module {
	m := newModule("floats")
	vals := m.NewGlobal("vals", ir.Double, FloatsLen,
		doubleConsts(1.5, -2.25, 0.5, 3.0))
	out := m.NewGlobal("fout", ir.Double, 2, nil)

	f := m.NewFunction("sumsq", ir.Double, ir.NewParam("threshold", ir.Double))
	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	check := f.NewBlock("check")
	scale := f.NewBlock("scale")
	done := f.NewBlock("done")

	ir.AtEnd(entry).Br(loop)

	b := ir.AtEnd(loop)
	i := b.Phi(ir.I32, "i")
	s := b.Phi(ir.Double, "s")
	p := b.GEP(ir.Double, vals, []ir.Value{i}, true, "p")
	x := b.Load(ir.Double, p, "x")
	sq := b.Binary(ir.OpFMul, x, x, "sq")
	sNext := b.Binary(ir.OpFAdd, s, sq, "s.next")
	iNext := b.Binary(ir.OpAdd, i, ir.ConstInt(ir.I32, 1), "i.next")
	cmp := b.ICmp(ir.IntSLT, iNext, ir.ConstInt(ir.I32, FloatsLen), "cmp")
	b.CondBr(cmp, loop, check)

	i.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	i.AddIncoming(iNext, loop)
	s.AddIncoming(ir.ConstFloat(ir.Double, 0), entry)
	s.AddIncoming(sNext, loop)

	b = ir.AtEnd(check)
	big := b.FCmp(ir.FloatOGT, sNext, f.Params()[0], "big")
	b.CondBr(big, scale, done)

	b = ir.AtEnd(scale)
	half := b.Binary(ir.OpFMul, sNext, ir.ConstFloat(ir.Double, 0.5), "half")
	p0 := b.GEP(ir.Double, out, []ir.Value{ir.ConstInt(ir.I32, 0)}, true, "p0")
	b.Store(half, p0)
	b.Br(done)

	b = ir.AtEnd(done)
	r := b.Phi(ir.Double, "r")
	r.AddIncoming(sNext, check)
	r.AddIncoming(half, scale)
	p1 := b.GEP(ir.Double, out, []ir.Value{ir.ConstInt(ir.I32, 1)}, true, "p1")
	b.Store(r, p1)
	b.Ret(r)
	return m
}
