package fixtures

import "github.com/simdswift/simdswift/ir"

// Truncation builds the cast probe: narrowing and widening integer casts,
// a byte swap through the host intrinsic, and the float boundary casts the
// float-only variant treats specially. Results land in @tout.
func Truncation() *ir.Module {
	m := newModule("truncation")
	out := m.NewGlobal("tout", ir.I64, 4, nil)
	bswap32 := m.Intrinsic("ir.bswap.i32", ir.I32, ir.I32)

	f := m.NewFunction("truncate", ir.I64, ir.NewParam("v", ir.I64))
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)

	v := ir.Value(f.Params()[0])
	t8 := b.Trunc(v, ir.I8, "t8")
	s32 := b.SExt(t8, ir.I32, "s32")
	z64 := b.ZExt(t8, ir.I64, "z64")
	t32 := b.Trunc(v, ir.I32, "t32")
	sw := b.Call(bswap32, ir.I32, []ir.Value{t32}, "sw")
	sw64 := b.SExt(sw, ir.I64, "sw64")

	// Round-trip through double: the float-only variant splats here and
	// extracts back at the fptosi boundary.
	d := b.Cast(ir.OpSIToFP, s32, ir.Double, "d")
	d2 := b.Binary(ir.OpFMul, d, ir.ConstFloat(ir.Double, 2.0), "d2")
	r32 := b.Cast(ir.OpFPToSI, d2, ir.I32, "r32")
	r64 := b.SExt(r32, ir.I64, "r64")

	store := func(idx int64, val ir.Value) {
		p := b.GEP(ir.I64, out, []ir.Value{ir.ConstInt(ir.I32, idx)}, true, "")
		b.Store(val, p)
	}
	store(0, z64)
	store(1, sw64)
	store(2, r64)
	sum := b.Binary(ir.OpAdd, z64, sw64, "sum")
	sum2 := b.Binary(ir.OpAdd, sum, r64, "sum2")
	store(3, sum2)
	b.Ret(sum2)
	return m
}
