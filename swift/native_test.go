package swift_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/fixtures"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swift"
	"github.com/simdswift/simdswift/swiftrt"
)

// The native-cost pass inserts exactly one extract per non-constant memory
// operand, one broadcast after every load, and one ptest before every
// conditional branch. Nothing else changes.
func TestNativeCostMarkers(t *testing.T) {
	m := fixtures.ArrayInt()
	require.NoError(t, swift.NewNativeCost(quietOptions()).Run(m))
	f := m.Func("sum_scale")

	extracts := callsTo(f, swift.HelperDummyExtract)
	broadcasts := callsTo(f, swift.HelperDummyBroadcast)
	ptests := callsTo(f, swift.HelperDummyPTest)

	// One load (address), one store (address and value).
	require.Len(t, extracts, 3)
	require.Len(t, broadcasts, 1)
	require.Len(t, ptests, 1)

	load := findInstr(f, func(in *ir.Instruction) bool { return in.Op() == ir.OpLoad })
	require.NotNil(t, load)
	blk := load.Parent()
	require.Equal(t, blk.IndexOf(load)-1, blk.IndexOf(extracts[0]))
	require.Equal(t, blk.IndexOf(load)+1, blk.IndexOf(broadcasts[0]))

	store := findInstr(f, func(in *ir.Instruction) bool { return in.Op() == ir.OpStore })
	require.NotNil(t, store)
	require.Equal(t, blk.IndexOf(store)-1, blk.IndexOf(extracts[2]))
	require.Equal(t, blk.IndexOf(store)-2, blk.IndexOf(extracts[1]))

	br := blk.Terminator()
	require.True(t, br.IsConditional())
	require.Equal(t, blk.IndexOf(br)-1, blk.IndexOf(ptests[0]))

	// No shadows appeared anywhere.
	require.Nil(t, findInstr(f, func(in *ir.Instruction) bool {
		return in.Type().IsVector()
	}))
}

// Calls get no marker: the asymmetry with the hardener is intentional and
// preserved.
func TestNativeCostSkipsCalls(t *testing.T) {
	m := ir.NewModule("native")
	swiftrt.Declare(m)
	callee := m.NewFunction("leaf", ir.I32, ir.NewParam("v", ir.I32))
	bc := ir.AtEnd(callee.NewBlock("entry"))
	bc.Ret(bc.Binary(ir.OpAdd, callee.Params()[0], ir.ConstInt(ir.I32, 1), "r"))

	f := m.NewFunction("f", ir.I32, ir.NewParam("x", ir.I32))
	b := ir.AtEnd(f.NewBlock("entry"))
	r := b.Call(callee, ir.I32, []ir.Value{f.Params()[0]}, "r")
	b.Ret(r)

	require.NoError(t, swift.NewNativeCost(quietOptions()).Run(m))
	require.Empty(t, callsTo(f, swift.HelperDummyExtract))
	require.Empty(t, callsTo(f, swift.HelperDummyBroadcast))
	require.Empty(t, callsTo(f, swift.HelperDummyPTest))
}
