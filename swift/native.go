package swift

import (
	"fmt"

	"github.com/simdswift/simdswift/ir"
)

// NativeCostPass inserts opaque volatile marker calls at the same sync
// points the hardener instruments, so a baseline build pays the encoding
// and scheduling cost without the fault-tolerance benefit. No shadows, no
// map, no phi logic. Calls get no marker.
type NativeCostPass struct {
	warnf warnFunc
}

// NewNativeCost returns the native-cost pass ("slownative").
func NewNativeCost(opts Options) *NativeCostPass {
	w := opts.Warnf
	if w == nil {
		w = stderrWarnf
	}
	return &NativeCostPass{warnf: w}
}

func (p *NativeCostPass) Name() string { return "slownative" }

// Run instruments every defined, non-ignored function of m.
func (p *NativeCostPass) Run(m *ir.Module) error {
	h, err := resolveNativeHelpers(m)
	if err != nil {
		return err
	}
	for _, f := range m.Functions() {
		if f.IsDecl() || isIgnoredNativeFunc(f) {
			continue
		}
		if err := nativeInstrument(f, h); err != nil {
			return fmt.Errorf("slownative: function %s: %w", f.Name(), err)
		}
	}
	return nil
}

func nativeInstrument(f *ir.Function, h *helpers) error {
	return forEachInstruction(f, func(i *ir.Instruction) error {
		before := ir.Before(i)

		switch i.Op() {
		case ir.OpBr:
			if !i.IsConditional() {
				return nil
			}
			if _, isConst := i.Cond().(*ir.Const); isConst {
				return nil
			}
			before.Call(h.dummyPTest, ir.Void, nil, "")
			return nil
		}

		after := ir.After(i)

		switch i.Op() {
		case ir.OpLoad:
			if !isConstOperand(i, 0) {
				// Extract of the address.
				before.Call(h.dummyExtract, ir.Void, nil, "")
			}
			// Broadcast of the loaded value.
			after.Call(h.dummyBroadcast, ir.Void, nil, "")
		case ir.OpStore:
			if !isConstOperand(i, 1) {
				before.Call(h.dummyExtract, ir.Void, nil, "")
			}
			if !isConstOperand(i, 0) {
				before.Call(h.dummyExtract, ir.Void, nil, "")
			}
		case ir.OpCmpXchg:
			for idx := 0; idx < 3; idx++ {
				if !isConstOperand(i, idx) {
					before.Call(h.dummyExtract, ir.Void, nil, "")
				}
			}
			after.Call(h.dummyBroadcast, ir.Void, nil, "")
		case ir.OpAtomicRMW:
			for idx := 0; idx < 2; idx++ {
				if !isConstOperand(i, idx) {
					before.Call(h.dummyExtract, ir.Void, nil, "")
				}
			}
			after.Call(h.dummyBroadcast, ir.Void, nil, "")
		}
		return nil
	})
}

func isConstOperand(i *ir.Instruction, idx int) bool {
	switch i.Operand(idx).(type) {
	case *ir.Const, *ir.Global:
		return true
	}
	return false
}
