package fixtures

import (
	"math"

	"github.com/simdswift/simdswift/ir"
)

// FFTLen is the transform size of the fft kernel.
const FFTLen = 8

// FFT8 builds an iterative radix-2 FFT over the complex input in @re/@im.
// The bit-reversal permutation is unrolled (N=8 swaps 1<->4 and 3<->6); the
// butterfly stages run as nested loops over a shared twiddle table.
func FFT8() *ir.Module {
	m := newModule("fftdouble")

	re := m.NewGlobal("re", ir.Double, FFTLen,
		doubleConsts(1, 2, 3, 4, 5, 6, 7, 8))
	im := m.NewGlobal("im", ir.Double, FFTLen, nil)

	wre := make([]float64, FFTLen/2)
	wim := make([]float64, FFTLen/2)
	for k := range wre {
		ang := -2 * math.Pi * float64(k) / FFTLen
		wre[k] = math.Cos(ang)
		wim[k] = math.Sin(ang)
	}
	gwre := m.NewGlobal("wre", ir.Double, FFTLen/2, doubleConsts(wre...))
	gwim := m.NewGlobal("wim", ir.Double, FFTLen/2, doubleConsts(wim...))

	f := m.NewFunction("fft8", ir.Void)
	entry := f.NewBlock("entry")
	stage := f.NewBlock("stage")
	group := f.NewBlock("group")
	bfly := f.NewBlock("bfly")
	groupLatch := f.NewBlock("group.latch")
	stageLatch := f.NewBlock("stage.latch")
	exit := f.NewBlock("exit")

	b := ir.AtEnd(entry)
	swapPair := func(g *ir.Global, x, y int64) {
		p := b.GEP(ir.Double, g, []ir.Value{ir.ConstInt(ir.I32, x)}, true, "")
		q := b.GEP(ir.Double, g, []ir.Value{ir.ConstInt(ir.I32, y)}, true, "")
		a := b.Load(ir.Double, p, "")
		c := b.Load(ir.Double, q, "")
		b.Store(c, p)
		b.Store(a, q)
	}
	swapPair(re, 1, 4)
	swapPair(re, 3, 6)
	swapPair(im, 1, 4)
	swapPair(im, 3, 6)
	b.Br(stage)

	// Stage loop: len = 2, 4, 8.
	b = ir.AtEnd(stage)
	length := b.Phi(ir.I32, "len")
	half := b.Binary(ir.OpAShr, length, ir.ConstInt(ir.I32, 1), "half")
	step := b.Binary(ir.OpSDiv, ir.ConstInt(ir.I32, FFTLen), length, "step")
	b.Br(group)

	// Group loop: base = 0, len, 2*len, ...
	b = ir.AtEnd(group)
	base := b.Phi(ir.I32, "base")
	b.Br(bfly)

	// Butterfly loop: j = 0 .. half-1.
	b = ir.AtEnd(bfly)
	j := b.Phi(ir.I32, "j")
	tidx := b.Binary(ir.OpMul, j, step, "tidx")
	wr := b.Load(ir.Double, b.GEP(ir.Double, gwre, []ir.Value{tidx}, true, ""), "wr")
	wi := b.Load(ir.Double, b.GEP(ir.Double, gwim, []ir.Value{tidx}, true, ""), "wi")

	i1 := b.Binary(ir.OpAdd, base, j, "i1")
	i2 := b.Binary(ir.OpAdd, i1, half, "i2")
	p1re := b.GEP(ir.Double, re, []ir.Value{i1}, true, "")
	p1im := b.GEP(ir.Double, im, []ir.Value{i1}, true, "")
	p2re := b.GEP(ir.Double, re, []ir.Value{i2}, true, "")
	p2im := b.GEP(ir.Double, im, []ir.Value{i2}, true, "")
	a1re := b.Load(ir.Double, p1re, "a1re")
	a1im := b.Load(ir.Double, p1im, "a1im")
	a2re := b.Load(ir.Double, p2re, "a2re")
	a2im := b.Load(ir.Double, p2im, "a2im")

	tre := b.Binary(ir.OpFSub,
		b.Binary(ir.OpFMul, wr, a2re, ""),
		b.Binary(ir.OpFMul, wi, a2im, ""), "tre")
	tim := b.Binary(ir.OpFAdd,
		b.Binary(ir.OpFMul, wr, a2im, ""),
		b.Binary(ir.OpFMul, wi, a2re, ""), "tim")

	b.Store(b.Binary(ir.OpFSub, a1re, tre, ""), p2re)
	b.Store(b.Binary(ir.OpFSub, a1im, tim, ""), p2im)
	b.Store(b.Binary(ir.OpFAdd, a1re, tre, ""), p1re)
	b.Store(b.Binary(ir.OpFAdd, a1im, tim, ""), p1im)

	jNext := b.Binary(ir.OpAdd, j, ir.ConstInt(ir.I32, 1), "j.next")
	jCmp := b.ICmp(ir.IntSLT, jNext, half, "j.cmp")
	b.CondBr(jCmp, bfly, groupLatch)

	b = ir.AtEnd(groupLatch)
	baseNext := b.Binary(ir.OpAdd, base, length, "base.next")
	baseCmp := b.ICmp(ir.IntSLT, baseNext, ir.ConstInt(ir.I32, FFTLen), "base.cmp")
	b.CondBr(baseCmp, group, stageLatch)

	b = ir.AtEnd(stageLatch)
	lenNext := b.Binary(ir.OpShl, length, ir.ConstInt(ir.I32, 1), "len.next")
	lenCmp := b.ICmp(ir.IntSLE, lenNext, ir.ConstInt(ir.I32, FFTLen), "len.cmp")
	b.CondBr(lenCmp, stage, exit)

	length.AddIncoming(ir.ConstInt(ir.I32, 2), entry)
	length.AddIncoming(lenNext, stageLatch)
	base.AddIncoming(ir.ConstInt(ir.I32, 0), stage)
	base.AddIncoming(baseNext, groupLatch)
	j.AddIncoming(ir.ConstInt(ir.I32, 0), group)
	j.AddIncoming(jNext, bfly)

	ir.AtEnd(exit).Ret(nil)
	return m
}
