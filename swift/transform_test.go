package swift_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/fixtures"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swift"
	"github.com/simdswift/simdswift/swiftrt"
)

func quietOptions() swift.Options {
	return swift.Options{Warnf: func(string, ...interface{}) {}}
}

func findInstr(f *ir.Function, pred func(*ir.Instruction) bool) *ir.Instruction {
	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			if pred(in) {
				return in
			}
		}
	}
	return nil
}

func collectInstrs(f *ir.Function, pred func(*ir.Instruction) bool) []*ir.Instruction {
	var out []*ir.Instruction
	for _, b := range f.Blocks() {
		for _, in := range b.Instructions() {
			if pred(in) {
				out = append(out, in)
			}
		}
	}
	return out
}

func callsTo(f *ir.Function, name string) []*ir.Instruction {
	return collectInstrs(f, func(in *ir.Instruction) bool {
		if in.Op() != ir.OpCall {
			return false
		}
		cf := in.CalledFunction()
		return cf != nil && cf.Name() == name
	})
}

func named(f *ir.Function, name string) *ir.Instruction {
	return findInstr(f, func(in *ir.Instruction) bool { return in.Name() == name })
}

// Scenario: a scalar add becomes an <8 x i32> shadow add, and the store of
// its result is preceded by a majority-vote check whose lane 0 feeds the
// scalar store.
func TestScalarAddGetsShadow(t *testing.T) {
	m := ir.NewModule("s1")
	swiftrt.Declare(m)
	g := m.NewGlobal("g", ir.I32, 1, nil)

	f := m.NewFunction("f", ir.Void,
		ir.NewParam("x", ir.I32), ir.NewParam("y", ir.I32))
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)
	z := b.Binary(ir.OpAdd, f.Params()[0], f.Params()[1], "z")
	b.Store(z, g)
	b.Ret(nil)

	require.NoError(t, swift.NewFull(quietOptions()).Run(m))

	shadow := named(f, "z.simd")
	require.NotNil(t, shadow)
	require.Equal(t, ir.OpAdd, shadow.Op())
	require.True(t, shadow.Type().Equal(ir.VectorOf(ir.I32, 8)))

	// The original scalar add is gone.
	require.Nil(t, findInstr(f, func(in *ir.Instruction) bool {
		return in.Op() == ir.OpAdd && in.Type().Equal(ir.I32) && in.Name() == "z"
	}))

	// A check on the value shadow precedes the store, and the store
	// consumes lane 0 of the corrected shadow.
	checks := callsTo(f, swift.HelperCheckI32)
	require.Len(t, checks, 1)
	require.Equal(t, shadow, checks[0].Operand(0))

	store := findInstr(f, func(in *ir.Instruction) bool { return in.Op() == ir.OpStore })
	require.NotNil(t, store)
	ext, ok := store.Operand(0).(*ir.Instruction)
	require.True(t, ok)
	require.Equal(t, ir.OpExtractElement, ext.Op())
	require.Equal(t, checks[0], ext.Operand(0))

	blk := store.Parent()
	require.Less(t, blk.IndexOf(checks[0]), blk.IndexOf(store))
}

// Scenario: a load-use-store chain on double keeps the scalar load, splats
// the loaded value to <4 x double>, computes on the shadow, and checks
// before the store.
func TestLoadUseStoreDouble(t *testing.T) {
	m := fixtures.Floats()
	require.NoError(t, swift.NewFull(quietOptions()).Run(m))
	f := m.Func("sumsq")

	// Scalar loads survive.
	load := named(f, "x")
	require.NotNil(t, load)
	require.Equal(t, ir.OpLoad, load.Op())
	require.True(t, load.Type().Equal(ir.Double))

	// The loaded value is replicated right after the load.
	splat := named(f, "x.simd")
	require.NotNil(t, splat)
	require.Equal(t, ir.OpInsertElement, splat.Op())
	require.True(t, splat.Type().Equal(ir.VectorOf(ir.Double, 4)))

	// Arithmetic happens on shadows.
	sq := named(f, "sq.simd")
	require.NotNil(t, sq)
	require.Equal(t, ir.OpFMul, sq.Op())
	require.True(t, sq.Type().Equal(ir.VectorOf(ir.Double, 4)))

	// Double stores are checked.
	require.NotEmpty(t, callsTo(f, swift.HelperCheckDouble))
}

// Scenario: a phi join of two integer definitions gets an <8 x i32> shadow
// phi whose incomings are the shadows of the original incomings; the
// original phi is emptied and deleted.
func TestPhiJoinShadowed(t *testing.T) {
	m := fixtures.ArrayInt()
	require.NoError(t, swift.NewFull(quietOptions()).Run(m))
	f := m.Func("sum_scale")

	sphi := named(f, "i.simd")
	require.NotNil(t, sphi)
	require.Equal(t, ir.OpPhi, sphi.Op())
	require.True(t, sphi.Type().Equal(ir.VectorOf(ir.I32, 8)))
	// Two original incomings plus the symmetric edge from the back-edge
	// branch's check block.
	require.Equal(t, 3, sphi.NumIncoming())

	// One incoming is the splatted zero, the other the i.next shadow.
	iNextShadow := named(f, "i.next.simd")
	require.NotNil(t, iNextShadow)
	var sawConst, sawNext bool
	for k := 0; k < sphi.NumIncoming(); k++ {
		v, _ := sphi.Incoming(k)
		if c, ok := v.(*ir.Const); ok && c.Typ.IsVector() {
			sawConst = true
		}
		if v == ir.Value(iNextShadow) {
			sawNext = true
		}
	}
	require.True(t, sawConst)
	require.True(t, sawNext)

	// The original phi is gone.
	require.Nil(t, findInstr(f, func(in *ir.Instruction) bool {
		return in.Op() == ir.OpPhi && in.Name() == "i"
	}))
}

// Scenario: the float-only variant leaves integer computation scalar and
// shadows only the float/double parts, splatting at int-to-float casts and
// extracting at float-to-int casts.
func TestFloatOnlyMixedFunction(t *testing.T) {
	m := fixtures.Truncation()
	require.NoError(t, swift.NewFloatOnly(quietOptions()).Run(m))
	f := m.Func("truncate")

	// Integer arithmetic is untouched.
	for _, name := range []string{"t8", "s32", "z64", "t32", "sum", "sum2"} {
		in := named(f, name)
		require.NotNil(t, in, "integer op %s must survive", name)
		require.False(t, in.Type().IsVector(), "integer op %s must stay scalar", name)
	}

	// The sitofp result is splatted into a double shadow...
	dShadow := named(f, "d.simd")
	require.NotNil(t, dShadow)
	require.True(t, dShadow.Type().Equal(ir.VectorOf(ir.Double, 4)))

	// ...the multiply runs on the shadow...
	d2 := named(f, "d2.simd")
	require.NotNil(t, d2)
	require.Equal(t, ir.OpFMul, d2.Op())

	// ...and the fptosi boundary extracts lane 0 of the (checked) shadow.
	fptosi := findInstr(f, func(in *ir.Instruction) bool { return in.Op() == ir.OpFPToSI })
	require.NotNil(t, fptosi)
	require.False(t, fptosi.Type().IsVector())
	require.NotEmpty(t, callsTo(f, swift.HelperCheckDouble))

	// No integer shadows exist anywhere.
	require.Nil(t, findInstr(f, func(in *ir.Instruction) bool {
		typ := in.Type()
		return typ.IsVector() && typ.Elem.IsInt()
	}))
}

// Switch selectors are extracted from their shadow like any other scalar
// sink operand, with a type-matched check in front.
func TestSwitchSelectorExtracted(t *testing.T) {
	m := ir.NewModule("sw")
	swiftrt.Declare(m)
	g := m.NewGlobal("g", ir.I32, 1, nil)

	f := m.NewFunction("f", ir.Void, ir.NewParam("x", ir.I8), ir.NewParam("y", ir.I8))
	entry := f.NewBlock("entry")
	a := f.NewBlock("a")
	def := f.NewBlock("def")

	b := ir.AtEnd(entry)
	sel := b.Binary(ir.OpAdd, f.Params()[0], f.Params()[1], "sel")
	sw := b.Switch(sel, def)
	ir.AddCase(sw, ir.ConstInt(ir.I8, 1), a)

	ba := ir.AtEnd(a)
	ba.Store(ir.ConstInt(ir.I32, 1), g)
	ba.Ret(nil)
	ir.AtEnd(def).Ret(nil)

	require.NoError(t, swift.NewFull(quietOptions()).Run(m))

	checks := callsTo(f, swift.HelperCheckI8)
	require.Len(t, checks, 1)
	require.Equal(t, ir.Value(named(f, "sel.simd")), checks[0].Operand(0))

	swPost := findInstr(f, func(in *ir.Instruction) bool { return in.Op() == ir.OpSwitch })
	require.NotNil(t, swPost)
	selOp, ok := swPost.Operand(0).(*ir.Instruction)
	require.True(t, ok)
	// Lane 0 of the corrected 32-lane shadow.
	require.Equal(t, ir.OpExtractElement, selOp.Op())
	require.Equal(t, ir.Value(checks[0]), selOp.Operand(0))
}

func TestRefusedInputs(t *testing.T) {
	build := func() (*ir.Module, *ir.Function, *ir.Builder) {
		m := ir.NewModule("bad")
		swiftrt.Declare(m)
		f := m.NewFunction("f", ir.Void, ir.NewParam("p", ir.Ptr))
		entry := f.NewBlock("entry")
		return m, f, ir.AtEnd(entry)
	}

	t.Run("non-empty inline asm", func(t *testing.T) {
		m, _, b := build()
		asm := &ir.InlineAsm{Asm: "nop", SideEffect: true}
		b.Call(asm, ir.Void, nil, "")
		b.Ret(nil)
		err := swift.NewFull(quietOptions()).Run(m)
		require.ErrorIs(t, err, swift.ErrInlineAsm)
	})

	t.Run("empty inline asm passes", func(t *testing.T) {
		m, _, b := build()
		asm := &ir.InlineAsm{Asm: "", SideEffect: true}
		b.Call(asm, ir.Void, nil, "")
		b.Ret(nil)
		require.NoError(t, swift.NewFull(quietOptions()).Run(m))
	})

	t.Run("cmpxchg under float-only", func(t *testing.T) {
		m, f, b := build()
		b.CmpXchg(f.Params()[0], ir.ConstInt(ir.I32, 0), ir.ConstInt(ir.I32, 1), "old")
		b.Ret(nil)
		err := swift.NewFloatOnly(quietOptions()).Run(m)
		require.ErrorIs(t, err, swift.ErrCmpXchgFloatOnly)
	})

	t.Run("vector instruction in input", func(t *testing.T) {
		m, _, b := build()
		vec := ir.Splat(ir.ConstInt(ir.I32, 1), 8)
		b.ExtractElement(vec, ir.ConstInt(ir.I64, 0), "e")
		b.Ret(nil)
		err := swift.NewFull(quietOptions()).Run(m)
		require.ErrorIs(t, err, swift.ErrVectorInput)
	})

	t.Run("missing runtime helpers", func(t *testing.T) {
		m := ir.NewModule("nohelpers")
		f := m.NewFunction("f", ir.Void)
		ir.AtEnd(f.NewBlock("entry")).Ret(nil)
		err := swift.NewFull(quietOptions()).Run(m)
		require.ErrorIs(t, err, swift.ErrMissingHelper)
	})
}

// Ignored functions and the hardener's own helpers pass through untouched.
func TestIgnoredCallSitesPassThrough(t *testing.T) {
	m := ir.NewModule("ignored")
	swiftrt.Declare(m)
	tx := m.NewFunction("tx_start", ir.Void)

	f := m.NewFunction("f", ir.Void, ir.NewParam("x", ir.I32))
	b := ir.AtEnd(f.NewBlock("entry"))
	b.Call(tx, ir.Void, nil, "")
	b.Ret(nil)

	require.NoError(t, swift.NewFull(quietOptions()).Run(m))

	call := callsTo(f, "tx_start")
	require.Len(t, call, 1)
	require.Zero(t, call[0].NumOperands())
	// No check was scheduled for it.
	require.Empty(t, collectInstrs(f, func(in *ir.Instruction) bool {
		cf := in.CalledFunction()
		return cf != nil && strings.HasPrefix(cf.Name(), "SIMDSWIFT_check")
	}))
}

// The hardener's bswap path widens the whole shadow through a 256-bit
// integer instead of splitting it into scalar swaps.
func TestBSwapWidens(t *testing.T) {
	m := fixtures.Truncation()
	require.NoError(t, swift.NewFull(quietOptions()).Run(m))
	f := m.Func("truncate")

	wide := callsTo(f, "ir.bswap.i256")
	require.Len(t, wide, 1)
	require.True(t, wide[0].Type().Equal(ir.IntN(256)))

	shadow := named(f, "sw.simd")
	require.NotNil(t, shadow)
	require.Equal(t, ir.OpBitCast, shadow.Op())
	require.True(t, shadow.Type().Equal(ir.VectorOf(ir.I32, 8)))

	// The scalar bswap call is gone.
	require.Empty(t, callsTo(f, "ir.bswap.i32"))
}
