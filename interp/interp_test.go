package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/ir"
)

func TestLoopSumAndStores(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewGlobal("g", ir.I32, 4, []*ir.Const{
		ir.ConstInt(ir.I32, 10), ir.ConstInt(ir.I32, 20),
		ir.ConstInt(ir.I32, 30), ir.ConstInt(ir.I32, 40),
	})
	out := m.NewGlobal("out", ir.I32, 1, nil)

	f := m.NewFunction("sum", ir.I32)
	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	exit := f.NewBlock("exit")
	ir.AtEnd(entry).Br(loop)

	b := ir.AtEnd(loop)
	i := b.Phi(ir.I32, "i")
	acc := b.Phi(ir.I32, "acc")
	p := b.GEP(ir.I32, g, []ir.Value{i}, true, "p")
	x := b.Load(ir.I32, p, "x")
	accNext := b.Binary(ir.OpAdd, acc, x, "acc.next")
	iNext := b.Binary(ir.OpAdd, i, ir.ConstInt(ir.I32, 1), "i.next")
	cmp := b.ICmp(ir.IntSLT, iNext, ir.ConstInt(ir.I32, 4), "cmp")
	b.CondBr(cmp, loop, exit)
	i.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	i.AddIncoming(iNext, loop)
	acc.AddIncoming(ir.ConstInt(ir.I32, 0), entry)
	acc.AddIncoming(accNext, loop)

	be := ir.AtEnd(exit)
	op := be.GEP(ir.I32, out, []ir.Value{ir.ConstInt(ir.I32, 0)}, true, "op")
	be.Store(accNext, op)
	be.Ret(accNext)

	it, err := New(m)
	require.NoError(t, err)
	ret, err := it.Call("sum")
	require.NoError(t, err)
	require.Equal(t, uint64(100), ret.Scalar)

	stores := Stores(it.Trace())
	require.Len(t, stores, 1)
	require.Equal(t, uint64(100), stores[0].Bits)
	require.Equal(t, it.GlobalAddr(out), stores[0].Addr)
	require.Equal(t, uint64(100), it.ReadGlobal(out, 0))
}

func TestPTestSemantics(t *testing.T) {
	allOnes := func() *ir.Const { return ir.Splat(ir.ConstInt(ir.I64, -1), 4) }
	tests := []struct {
		name      string
		op        ir.Op
		lanes     []int64
		expect    uint64
	}{
		{"ptestz all zero", ir.OpPTestZ, []int64{0, 0, 0, 0}, 1},
		{"ptestz some set", ir.OpPTestZ, []int64{0, -1, 0, 0}, 0},
		{"ptestnzc agree ones", ir.OpPTestNZC, []int64{-1, -1, -1, -1}, 0},
		{"ptestnzc agree zeroes", ir.OpPTestNZC, []int64{0, 0, 0, 0}, 0},
		{"ptestnzc disagree", ir.OpPTestNZC, []int64{-1, 0, -1, -1}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := ir.NewModule("test")
			f := m.NewFunction("f", ir.I32)
			entry := f.NewBlock("entry")
			b := ir.AtEnd(entry)
			elems := make([]*ir.Const, 4)
			for k, v := range tc.lanes {
				elems[k] = ir.ConstInt(ir.I64, v)
			}
			var res *ir.Instruction
			if tc.op == ir.OpPTestZ {
				res = b.PTestZ(ir.ConstVector(elems), allOnes(), "res")
			} else {
				res = b.PTestNZC(ir.ConstVector(elems), allOnes(), "res")
			}
			b.Ret(res)

			it, err := New(m)
			require.NoError(t, err)
			ret, err := it.Call("f")
			require.NoError(t, err)
			require.Equal(t, tc.expect, ret.Scalar)
		})
	}
}

func TestBitcastRoundTrip(t *testing.T) {
	v := VectorVal([]uint64{1, 2, 3, 4, 5, 6, 7, 8})
	t32 := ir.VectorOf(ir.I32, 8)
	t64 := ir.VectorOf(ir.I64, 4)

	wide, err := bitcastVal(t32, t64, v)
	require.NoError(t, err)
	require.Equal(t, []uint64{2<<32 | 1, 4<<32 | 3, 6<<32 | 5, 8<<32 | 7}, wide.Lanes)

	back, err := bitcastVal(t64, t32, wide)
	require.NoError(t, err)
	require.Equal(t, v.Lanes, back.Lanes)
}

func TestFaultInjectionFlipsOneLane(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.I64)
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)
	var cur ir.Value = ir.Undefined(ir.VectorOf(ir.I64, 4))
	for k := 0; k < 4; k++ {
		name := ""
		if k == 3 {
			name = "v.simd"
		}
		cur = b.InsertElement(cur, ir.ConstInt(ir.I64, 7), ir.ConstInt(ir.I64, int64(k)), name)
	}
	e := b.ExtractElement(cur, ir.ConstInt(ir.I64, 2), "e")
	b.Ret(e)

	plan := &FaultPlan{Function: "f", Value: "v.simd", Occurrence: 1, Lane: 2, Mask: 0xFF}
	it, err := New(m, WithFault(plan))
	require.NoError(t, err)
	ret, err := it.Call("f")
	require.NoError(t, err)
	require.True(t, plan.Fired)
	require.Equal(t, uint64(7^0xFF), ret.Scalar)
}

func TestFloatArithmetic(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.Double, ir.NewParam("x", ir.Double))
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)
	sq := b.Binary(ir.OpFMul, f.Params()[0], f.Params()[0], "sq")
	h := b.Binary(ir.OpFMul, sq, ir.ConstFloat(ir.Double, 0.5), "h")
	b.Ret(h)

	it, err := New(m)
	require.NoError(t, err)
	ret, err := it.Call("f", ScalarVal(math.Float64bits(3.0)))
	require.NoError(t, err)
	require.Equal(t, 4.5, ret.F64())
}
