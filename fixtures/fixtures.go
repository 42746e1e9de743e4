// Package fixtures builds the numeric benchmark kernels that exercise the
// hardening passes: dense integer and float array kernels, a double
// reduction with branches, bubble sort, a truncation/bswap probe and a
// fixed-size FFT. Each builder returns a fresh module with the runtime
// helpers already declared, so it can be hardened and executed directly.
package fixtures

import (
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swiftrt"
)

func newModule(name string) *ir.Module {
	m := ir.NewModule(name)
	swiftrt.Declare(m)
	return m
}

func i32Consts(vals ...int64) []*ir.Const {
	out := make([]*ir.Const, len(vals))
	for i, v := range vals {
		out[i] = ir.ConstInt(ir.I32, v)
	}
	return out
}

func doubleConsts(vals ...float64) []*ir.Const {
	out := make([]*ir.Const, len(vals))
	for i, v := range vals {
		out[i] = ir.ConstFloat(ir.Double, v)
	}
	return out
}

func floatConsts(vals ...float64) []*ir.Const {
	out := make([]*ir.Const, len(vals))
	for i, v := range vals {
		out[i] = ir.ConstFloat(ir.Float, v)
	}
	return out
}
