package swift

import (
	"fmt"

	"github.com/simdswift/simdswift/ir"
)

// Branch-weight hint for the split-block fast path: the corrective block is
// strongly predicted not-taken.
const (
	checkWeightTaken    = 1
	checkWeightFallThru = 10000
)

// insertChecks walks the pending-check work list in reverse order and
// synthesizes majority-vote code before branches, stores, loads, calls and
// atomics.
func (t *transformer) insertChecks() error {
	if t.checks.NoAll {
		return nil
	}

	for k := len(t.tocheck) - 1; k >= 0; k-- {
		pc := t.tocheck[k]

		if pc.sink.Op() == ir.OpBr {
			if t.checks.NoBranch {
				continue
			}
			if err := t.insertBranchCheck(pc); err != nil {
				return err
			}
			continue
		}

		// Checks on non-branches are inline. Splatted constants carry no
		// fault and are not checked.
		si, ok := pc.shadow.(*ir.Instruction)
		if !ok {
			continue
		}
		switch pc.sink.Op() {
		case ir.OpLoad:
			if t.checks.NoLoad {
				continue
			}
		case ir.OpStore:
			if t.checks.NoStore {
				continue
			}
		case ir.OpCmpXchg, ir.OpAtomicRMW:
			if t.checks.NoAtomic {
				continue
			}
		case ir.OpCall:
			if t.checks.NoCall {
				continue
			}
		}
		if err := t.insertInlineCheck(pc, si); err != nil {
			return err
		}
	}
	return nil
}

// insertBranchCheck wraps a hardened conditional branch in the split-block
// pattern: the fall-through path pays one 256-bit test and a predicted
// not-taken branch; only a lane disagreement enters the corrective block,
// which majority-corrects the predicate and re-derives the branch from it.
func (t *transformer) insertBranchCheck(pc pendingCheck) error {
	branch := pc.sink
	before := ir.Before(branch)

	// 1 iff the shadow is neither all-zeroes nor all-ones, i.e. at least
	// one lane disagrees.
	check := before.PTestNZC(pc.shadow, allOnes(), "")
	checkcond := before.ICmp(ir.IntEQ, check, ir.ConstInt(ir.I32, 1), "")

	scaffold, thenBlk := splitAndInsertIfThen(checkcond, branch)

	bc := ir.Before(scaffold)
	corrected := bc.Call(t.helpers.maskI64, pc.shadow.Type(), []ir.Value{pc.shadow}, "")
	res := bc.PTestZ(corrected, allOnes(), "")
	newcond := bc.ICmp(ir.IntEQ, res, ir.ConstInt(ir.I32, 0), "")

	clone := branch.Clone()
	clone.SetCond(newcond)
	bc.Insert(clone)

	// Every phi in every successor that referenced the branch's block gains
	// a symmetric incoming edge from the corrective block.
	for _, succ := range branch.Blocks() {
		for _, pi := range succ.Instructions() {
			if pi.Op() != ir.OpPhi {
				break
			}
			if v := pi.IncomingForBlock(branch.Parent()); v != nil {
				pi.AddIncoming(v, thenBlk)
			}
		}
	}

	thenBlk.Remove(scaffold)
	return nil
}

// splitAndInsertIfThen splits the block right before the given instruction
// and injects a then-region guarded by cond, biased strongly towards
// fall-through. The then-region is terminated by a scaffold the caller
// replaces; the split-off tail keeps the original instructions.
func splitAndInsertIfThen(cond ir.Value, before *ir.Instruction) (scaffold *ir.Instruction, thenBlk *ir.Block) {
	blk := before.Parent()
	fn := blk.Parent()

	tail := fn.SplitBlockBefore(before, blk.Name()+".cont")
	thenBlk = fn.NewBlockAfter(blk, blk.Name()+".check")

	br := ir.AtEnd(blk).CondBr(cond, thenBlk, tail)
	br.SetWeights([]uint32{checkWeightTaken, checkWeightFallThru})

	scaffold = ir.AtEnd(thenBlk).Unreachable()
	return scaffold, thenBlk
}

// insertInlineCheck calls the type-specific majority-vote helper on the
// shadow, extracts lane 0 of the corrected shadow and substitutes it into
// the sink's operand (or the called-callee field for a function pointer).
func (t *transformer) insertInlineCheck(pc pendingCheck, si *ir.Instruction) error {
	sink := pc.sink
	before := ir.Before(sink)
	sTy := si.Type()
	elem := sTy.Elem

	var corrected ir.Value
	switch {
	case elem.IsPointer():
		// Pointers are corrected through i64.
		i64Shadow := ir.VectorOf(ir.I64, 4)
		casted := before.PtrToInt(si, i64Shadow, "")
		fixed := before.Call(t.helpers.checkI64, i64Shadow, []ir.Value{casted}, "")
		corrected = before.IntToPtr(fixed, sTy, "")
	case elem.IsIntBits(64):
		corrected = t.checkCall(before, t.helpers.checkI64, si)
	case elem.IsIntBits(32):
		corrected = t.checkCall(before, t.helpers.checkI32, si)
	case elem.IsIntBits(16):
		corrected = t.checkCall(before, t.helpers.checkI16, si)
	case elem.IsIntBits(8):
		corrected = t.checkCall(before, t.helpers.checkI8, si)
	case elem.IsDouble():
		corrected = t.checkCall(before, t.helpers.checkDouble, si)
	case elem.IsFloat():
		corrected = t.checkCall(before, t.helpers.checkFloat, si)
	}
	if corrected == nil {
		return fmt.Errorf("%w: %s", ErrBadShadowType, sTy)
	}

	var newOp ir.Value = before.ExtractElement(corrected, lane0(), "")

	if sink.Op() == ir.OpCall && pc.opIdx == calleeOpIdx {
		sink.SetCallee(newOp)
		return nil
	}

	if ob := sink.Operand(pc.opIdx).Type().PrimitiveBits(); ob > 0 && newOp.Type().PrimitiveBits() > ob {
		newOp = before.Trunc(newOp, sink.Operand(pc.opIdx).Type(), "")
	}
	sink.SetOperand(pc.opIdx, newOp)
	return nil
}

// checkCall emits a call to a corrector helper, or returns nil when the
// variant did not resolve it (integer correctors under float-only).
func (t *transformer) checkCall(b *ir.Builder, helper *ir.Function, si *ir.Instruction) ir.Value {
	if helper == nil {
		return nil
	}
	return b.Call(helper, si.Type(), []ir.Value{si}, "")
}
