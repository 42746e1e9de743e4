// Package swiftrt stands in for the link-time SIMD-Swift runtime library.
// It declares the SIMDSWIFT_* helpers in an ir.Module so the passes can
// resolve them, and provides Go implementations of the majority-vote
// correctors as interpreter host functions so hardened modules can be
// executed and fault-injected under the interpreter.
package swiftrt

import (
	"fmt"

	"github.com/simdswift/simdswift/interp"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swift"
)

// Declare adds every runtime helper declaration to m. Fixture builders call
// it so that modules are hardenable out of the box.
func Declare(m *ir.Module) {
	shadow := func(elem *ir.Type, lanes int) *ir.Type { return ir.VectorOf(elem, lanes) }

	declareUnary := func(name string, t *ir.Type) {
		if m.Func(name) == nil {
			m.NewFunction(name, t, ir.NewParam("v", t))
		}
	}
	declareVoid := func(name string) {
		if m.Func(name) == nil {
			m.NewFunction(name, ir.Void)
		}
	}

	declareVoid(swift.HelperExit)
	declareUnary(swift.HelperMaskI64, shadow(ir.I64, 4))
	declareUnary(swift.HelperCheckDouble, shadow(ir.Double, 4))
	declareUnary(swift.HelperCheckFloat, shadow(ir.Float, 8))
	declareUnary(swift.HelperCheckI64, shadow(ir.I64, 4))
	declareUnary(swift.HelperCheckI32, shadow(ir.I32, 8))
	declareUnary(swift.HelperCheckI16, shadow(ir.I16, 16))
	declareUnary(swift.HelperCheckI8, shadow(ir.I8, 32))

	declareVoid(swift.HelperDummyExtract)
	declareVoid(swift.HelperDummyBroadcast)
	declareVoid(swift.HelperDummyPTest)
}

// majority returns the lane value the majority of a shadow agrees on. Under
// the at-most-one-corrupted-lane model, if the two low lanes agree they are
// correct; otherwise one of them is the corrupted lane and lane 2 is good.
func majority(lanes []uint64) uint64 {
	if lanes[0] == lanes[1] {
		return lanes[0]
	}
	return lanes[2]
}

func corrector(name string) interp.HostFunc {
	return func(it *interp.Interpreter, args []interp.Val) (interp.Val, error) {
		if len(args) != 1 || !args[0].IsVector() {
			return interp.Val{}, fmt.Errorf("%s: expected one shadow argument", name)
		}
		fixed := majority(args[0].Lanes)
		out := make([]uint64, len(args[0].Lanes))
		for k := range out {
			out[k] = fixed
		}
		return interp.VectorVal(out), nil
	}
}

func noop(it *interp.Interpreter, args []interp.Val) (interp.Val, error) {
	return interp.Val{}, nil
}

func exit(it *interp.Interpreter, args []interp.Val) (interp.Val, error) {
	return interp.Val{}, interp.ErrExit
}

// Host returns the interpreter host-function table implementing the
// helpers.
func Host() map[string]interp.HostFunc {
	return map[string]interp.HostFunc{
		swift.HelperExit:        exit,
		swift.HelperMaskI64:     corrector(swift.HelperMaskI64),
		swift.HelperCheckDouble: corrector(swift.HelperCheckDouble),
		swift.HelperCheckFloat:  corrector(swift.HelperCheckFloat),
		swift.HelperCheckI64:    corrector(swift.HelperCheckI64),
		swift.HelperCheckI32:    corrector(swift.HelperCheckI32),
		swift.HelperCheckI16:    corrector(swift.HelperCheckI16),
		swift.HelperCheckI8:     corrector(swift.HelperCheckI8),

		swift.HelperDummyExtract:   noop,
		swift.HelperDummyBroadcast: noop,
		swift.HelperDummyPTest:     noop,
	}
}

// NewInterpreter instantiates m with the runtime helpers registered.
func NewInterpreter(m *ir.Module, opts ...interp.Option) (*interp.Interpreter, error) {
	opts = append([]interp.Option{interp.WithHostMap(Host())}, opts...)
	return interp.New(m, opts...)
}
