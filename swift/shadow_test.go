package swift

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/ir"
)

func TestShadowLanesTable(t *testing.T) {
	tests := []struct {
		typ       *ir.Type
		lanes     int
		canonical bool
		ok        bool
	}{
		{ir.I8, 32, true, true},
		{ir.I16, 16, true, true},
		{ir.I32, 8, true, true},
		{ir.I64, 4, true, true},
		{ir.I1, 4, true, true},
		{ir.Ptr, 4, true, true},
		{ir.Float, 8, true, true},
		{ir.Double, 4, true, true},
		{ir.IntN(24), 4, false, true},
		{ir.Void, 0, false, false},
		{ir.StructOf(ir.I32), 0, false, false},
	}
	for _, tc := range tests {
		lanes, canonical, ok := shadowLanes(tc.typ)
		require.Equal(t, tc.ok, ok, "type %s", tc.typ)
		if !tc.ok {
			continue
		}
		require.Equal(t, tc.lanes, lanes, "type %s", tc.typ)
		require.Equal(t, tc.canonical, canonical, "type %s", tc.typ)
	}
}

func TestShadowTypeWidensI1(t *testing.T) {
	st, ok := shadowType(ir.I1)
	require.True(t, ok)
	require.True(t, st.Equal(ir.VectorOf(ir.I64, 4)))

	st, ok = shadowType(ir.Float)
	require.True(t, ok)
	require.True(t, st.Equal(ir.VectorOf(ir.Float, 8)))
}

func TestIsShadowType(t *testing.T) {
	require.True(t, isShadowType(ir.VectorOf(ir.I32, 8)))
	require.True(t, isShadowType(ir.VectorOf(ir.I64, 4)))
	require.True(t, isShadowType(ir.VectorOf(ir.Double, 4)))
	require.False(t, isShadowType(ir.VectorOf(ir.I32, 4)))
	require.False(t, isShadowType(ir.I32))

	require.True(t, isFPShadowType(ir.VectorOf(ir.Float, 8)))
	require.False(t, isFPShadowType(ir.VectorOf(ir.I64, 4)))
}

func TestShadowMapSingleAssignment(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.Void, ir.NewParam("x", ir.I32))
	x := f.Params()[0]

	sm := newShadowMap()
	require.False(t, sm.has(x))
	require.NoError(t, sm.add(x, ir.Splat(ir.ConstInt(ir.I32, 0), 8)))
	require.True(t, sm.has(x))

	err := sm.add(x, ir.Splat(ir.ConstInt(ir.I32, 1), 8))
	require.ErrorIs(t, err, ErrShadowExists)
}

func TestGetShadowConstSplat(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.Void)
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)
	gep := b.GEP(ir.I32, ir.ConstNull(), []ir.Value{ir.ConstInt(ir.I32, 0)}, false, "g")
	add := b.Binary(ir.OpAdd, ir.ConstInt(ir.I32, 1), ir.ConstInt(ir.I32, 2), "a")
	b.Ret(nil)

	tr := newTransformer(m, f, VariantFull, &helpers{}, CheckOptions{}, func(string, ...interface{}) {})

	// A value already of shadow width is returned as its own shadow.
	wide := ir.Splat(ir.ConstInt(ir.I32, 7), 8)
	s, err := tr.getShadow(wide, add)
	require.NoError(t, err)
	require.Equal(t, ir.Value(wide), s)

	// Canonical splat for an ordinary consumer.
	s, err = tr.getShadow(ir.ConstInt(ir.I32, 7), add)
	require.NoError(t, err)
	require.True(t, s.Type().Equal(ir.VectorOf(ir.I32, 8)))

	// Address computations force 4 lanes per index.
	s, err = tr.getShadow(ir.ConstInt(ir.I32, 7), gep)
	require.NoError(t, err)
	require.True(t, s.Type().Equal(ir.VectorOf(ir.I32, 4)))

	// i1 constants are sign-extended into the widened predicate shadow.
	s, err = tr.getShadow(ir.ConstInt(ir.I1, 1), add)
	require.NoError(t, err)
	require.True(t, s.Type().Equal(ir.VectorOf(ir.I64, 4)))
	require.Equal(t, int64(-1), s.(*ir.Const).Elems[0].Int)
}

func TestGetShadowMissingIsError(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.I32, ir.NewParam("x", ir.I32))
	entry := f.NewBlock("entry")
	b := ir.AtEnd(entry)
	ret := b.Ret(f.Params()[0])

	tr := newTransformer(m, f, VariantFull, &helpers{}, CheckOptions{}, func(string, ...interface{}) {})
	_, err := tr.getShadow(f.Params()[0], ret)
	require.ErrorIs(t, err, ErrNoShadow)

	// The float-only variant reports no shadow for integers instead.
	trf := newTransformer(m, f, VariantFloatOnly, &helpers{}, CheckOptions{}, func(string, ...interface{}) {})
	s, err := trf.getShadow(f.Params()[0], ret)
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestIgnoredFuncs(t *testing.T) {
	m := ir.NewModule("test")
	tx := m.NewFunction("tx_start", ir.Void)
	helper := m.NewFunction("SIMDSWIFT_check_i32", ir.VectorOf(ir.I32, 8))
	intrin := m.NewFunction("ir.memset", ir.Void)
	lifetime := m.NewFunction("ir.lifetime.start", ir.Void)
	user := m.NewFunction("compute", ir.Void)

	require.True(t, isIgnoredFunc(tx))
	require.True(t, isIgnoredFunc(helper))
	require.True(t, isIgnoredFunc(intrin))
	require.False(t, isIgnoredFunc(lifetime))
	require.False(t, isIgnoredFunc(user))
	require.False(t, isIgnoredFunc(nil)) // function pointers are not ignored
}
