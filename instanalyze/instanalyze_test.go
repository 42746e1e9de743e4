package instanalyze_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/fixtures"
	"github.com/simdswift/simdswift/instanalyze"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swift"
)

func TestCountsScalarModule(t *testing.T) {
	m := fixtures.ArrayInt()
	a := instanalyze.New(instanalyze.Options{})
	a.Run(m)

	var buf bytes.Buffer
	a.Report(&buf)
	out := buf.String()

	// entry: br; loop: 2 phis + 9 body instructions; exit: ret.
	require.Contains(t, out, "----- MODULE STATISTICS -----")
	require.Contains(t, out, "Total number of instructions:        13")
	require.Contains(t, out, "Total number of assembly calls:      0")
	require.Contains(t, out, "Total number of vector instructions: 0")
	require.Contains(t, out, "sum_scale\n")
}

func TestCountsVectorAndAsm(t *testing.T) {
	m := ir.NewModule("test")
	asm := &ir.InlineAsm{Asm: "pause", SideEffect: true}

	f := m.NewFunction("f", ir.Void)
	b := ir.AtEnd(f.NewBlock("entry"))
	v := ir.Splat(ir.ConstInt(ir.I32, 1), 8)
	b.Binary(ir.OpAdd, v, v, "vsum")
	b.Call(asm, ir.Void, nil, "")
	b.Ret(nil)

	a := instanalyze.New(instanalyze.Options{PrintVec: true, PrintAsm: true})
	a.Run(m)

	var buf bytes.Buffer
	a.Report(&buf)
	out := buf.String()

	require.Contains(t, out, "Total number of instructions:        3")
	require.Contains(t, out, "Total number of assembly calls:      1")
	require.Contains(t, out, "Total number of vector instructions: 1")
	require.Contains(t, out, "----- VECTOR INSTRUCTIONS STATISTICS -----")
	require.Contains(t, out, "[0] %vsum = add")
	require.Contains(t, out, "----- ASSEMBLY CALLS STATISTICS -----")
}

// Hardening drives the vector-instruction count up; the analyzer makes the
// difference visible.
func TestHardenedModuleHasVectors(t *testing.T) {
	m := fixtures.ArrayInt()
	p := swift.NewFull(swift.Options{Warnf: func(string, ...interface{}) {}})
	require.NoError(t, p.Run(m))

	a := instanalyze.New(instanalyze.Options{})
	a.Run(m)
	var buf bytes.Buffer
	a.Report(&buf)

	require.NotContains(t, buf.String(), "Total number of vector instructions: 0")
	require.Contains(t, buf.String(), fmt.Sprintf("%s\n", "sum_scale"))
}
