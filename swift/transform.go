package swift

import (
	"fmt"
	"strings"

	"github.com/simdswift/simdswift/buildoptions"
	"github.com/simdswift/simdswift/ir"
)

// simdSuffix names shadow values after their originals.
const simdSuffix = ".simd"

// calleeOpIdx marks a pending check on the callee of an indirect call
// rather than on a regular operand.
const calleeOpIdx = -1

// pendingCheck records where a majority vote must be inserted: the sink
// instruction, the shadow to vote on, and the operand slot to substitute
// the corrected scalar into.
type pendingCheck struct {
	sink   *ir.Instruction
	shadow ir.Value
	opIdx  int
}

// transformer rewrites one function. It is created on entry and discarded
// on exit; there is no state shared across functions beyond the resolved
// helper references.
type transformer struct {
	mod     *ir.Module
	fn      *ir.Function
	variant Variant
	helpers *helpers
	checks  CheckOptions
	warnf   warnFunc

	simds   *shadowMap
	origs   []*ir.Instruction // originals whose shadow replaced them; deleted at end
	phis    []*ir.Instruction // original phis whose empty shadow must be wired up
	tocheck []pendingCheck
}

func newTransformer(m *ir.Module, f *ir.Function, v Variant, h *helpers, c CheckOptions, warnf warnFunc) *transformer {
	return &transformer{
		mod:     m,
		fn:      f,
		variant: v,
		helpers: h,
		checks:  c,
		warnf:   warnf,
		simds:   newShadowMap(),
	}
}

// run performs the whole per-function pipeline: rewrite in dominator order,
// wire up deferred phis, inject checks, delete replaced originals.
func (t *transformer) run() error {
	shadowedParams := false
	err := forEachInstruction(t.fn, func(in *ir.Instruction) error {
		if !shadowedParams {
			if err := t.shadowParams(in); err != nil {
				return err
			}
			shadowedParams = true
		}
		return t.rewrite(in)
	})
	if err != nil {
		return err
	}
	if err := t.rewirePhis(); err != nil {
		return err
	}
	if err := t.insertChecks(); err != nil {
		return err
	}
	t.removeOriginals()
	return nil
}

func lane0() ir.Value { return ir.ConstInt(ir.I64, 0) }

// allOnes is the <4 x i64> all-ones vector the zero-predicate tests compare
// against.
func allOnes() ir.Value {
	return ir.Splat(ir.ConstInt(ir.I64, -1), 4)
}

func valueName(v ir.Value) string {
	switch w := v.(type) {
	case *ir.Instruction:
		return w.Name()
	case *ir.Param:
		return w.Name()
	}
	return ""
}

// getShadow returns a shadow of v usable by forInstr. Constants synthesize
// a splat on demand; opaque values return nil; anything else must already
// be in the map.
func (t *transformer) getShadow(v ir.Value, forInstr *ir.Instruction) (ir.Value, error) {
	if v == nil {
		return nil, nil
	}
	if t.variant == VariantFloatOnly {
		return t.getShadowFloatOnly(v, forInstr)
	}

	if isShadowType(v.Type()) {
		return v, nil
	}
	if c, ok := v.(*ir.Const); ok {
		if c.Typ.IsIntBits(1) {
			// Sign-extend i1 constants so predicate lanes are all-ones or
			// all-zeroes, matching the widened comparison shadows.
			var bits int64
			if c.Int != 0 {
				bits = -1
			}
			c = ir.ConstInt(ir.I64, bits)
		}
		lanes, canonical, ok := shadowLanes(c.Typ)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadShadowType, c.Typ)
		}
		if !canonical {
			t.warnf("handling illegal type %s", c.Typ)
		}
		if forInstr.Op() == ir.OpGEP {
			// Address computations always consume 4 copies per index.
			lanes = 4
		}
		return ir.Splat(c, lanes), nil
	}
	if g, ok := v.(*ir.Global); ok {
		// Global addresses are link-time constants; splat them like any
		// other pointer constant.
		return ir.Splat(ir.ConstGlobalAddr(g), 4), nil
	}
	if isOpaque(v) {
		return nil, nil
	}
	if s, ok := t.simds.get(v); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s (used by %s)", ErrNoShadow, ir.ValueString(v), forInstr)
}

// getShadowFloatOnly narrows getShadow: values that are not float, double
// or an already-shadowed predicate simply have no shadow, so integer
// computation passes through unchanged.
func (t *transformer) getShadowFloatOnly(v ir.Value, forInstr *ir.Instruction) (ir.Value, error) {
	if isFPShadowType(v.Type()) {
		return v, nil
	}
	if isOpaque(v) {
		return nil, nil
	}
	if v.Type().IsIntBits(1) {
		// Conditions of branches over float comparisons have shadows;
		// integer-derived conditions do not.
		s, _ := t.simds.get(v)
		return s, nil
	}
	if !v.Type().IsFP() {
		return nil, nil
	}
	if c, ok := v.(*ir.Const); ok {
		return ir.Splat(c, fpShadowLanes(c.Typ)), nil
	}
	if s, ok := t.simds.get(v); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s (used by %s)", ErrNoShadow, ir.ValueString(v), forInstr)
}

// createShadow splats a scalar value into its shadow vector right at the
// builder's cursor. i1 values are sign-extended to i64 first, so predicate
// lanes are all-ones or all-zeroes like the widened comparison shadows.
func (t *transformer) createShadow(b *ir.Builder, v ir.Value) (ir.Value, error) {
	sv := v
	var st *ir.Type
	var lanes int
	if t.variant == VariantFloatOnly {
		lanes = fpShadowLanes(v.Type())
		if lanes == 0 {
			return nil, fmt.Errorf("%w: %s", ErrBadShadowType, v.Type())
		}
		st = ir.VectorOf(v.Type(), lanes)
	} else {
		var canonical, ok bool
		lanes, canonical, ok = shadowLanes(v.Type())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadShadowType, v.Type())
		}
		if !canonical {
			t.warnf("handling illegal type %s", v.Type())
		}
		if v.Type().IsIntBits(1) {
			sv = b.SExt(v, ir.I64, "")
			st = ir.VectorOf(ir.I64, 4)
		} else {
			st = ir.VectorOf(v.Type(), lanes)
		}
	}
	var cur ir.Value = ir.Undefined(st)
	for k := 0; k < lanes; k++ {
		name := ""
		if k == lanes-1 {
			if n := valueName(v); n != "" {
				name = n + simdSuffix
			}
		}
		cur = b.InsertElement(cur, sv, ir.ConstInt(ir.I64, int64(k)), name)
	}
	return cur, nil
}

// extractAndSubstitute extracts lane 0 of the operand's shadow, substitutes
// it into the sink, and queues a majority-vote check on the shadow at the
// sink. Operands without a shadow are left alone.
func (t *transformer) extractAndSubstitute(b *ir.Builder, i *ir.Instruction, idx int) error {
	op := i.Operand(idx)
	sOp, err := t.getShadow(op, i)
	if err != nil {
		return err
	}
	if sOp == nil {
		return nil
	}
	t.tocheck = append(t.tocheck, pendingCheck{sink: i, shadow: sOp, opIdx: idx})

	var newOp ir.Value = b.ExtractElement(sOp, lane0(), "")
	if ob := op.Type().PrimitiveBits(); ob > 0 && newOp.Type().PrimitiveBits() > ob {
		newOp = b.Trunc(newOp, op.Type(), "")
	}
	i.SetOperand(idx, newOp)
	return nil
}

// shadowParams splats every replicable function parameter before the first
// instruction of the entry block.
func (t *transformer) shadowParams(firstInst *ir.Instruction) error {
	b := ir.Before(firstInst)
	for _, p := range t.fn.Params() {
		if t.variant == VariantFloatOnly && !p.Type().IsFP() {
			continue
		}
		s, err := t.createShadow(b, p)
		if err != nil {
			return err
		}
		if err := t.simds.add(p, s); err != nil {
			return err
		}
	}
	return nil
}

// replaceWithShadow registers a freshly built shadow instruction for the
// original and schedules the original for deletion.
func (t *transformer) replaceWithShadow(orig, shadow *ir.Instruction) error {
	if err := t.simds.add(orig, shadow); err != nil {
		return err
	}
	t.origs = append(t.origs, orig)
	return nil
}

// rewrite dispatches on the instruction kind. Setup code (extracts, splats,
// predicate widening) is inserted before the instruction, post-hoc
// replication after it.
func (t *transformer) rewrite(i *ir.Instruction) error {
	if buildoptions.IsDebugMode {
		fmt.Printf("rewriting %s\n", i)
	}

	switch i.Op() {
	case ir.OpInvoke, ir.OpLandingPad, ir.OpResume:
		return fmt.Errorf("%w: %s", ErrNonLocalControl, i)
	case ir.OpExtractElement, ir.OpInsertElement, ir.OpShuffleVector:
		return fmt.Errorf("%w: %s", ErrVectorInput, i)
	}

	before := ir.Before(i)

	// Terminators first; they never produce a shadow.
	switch i.Op() {
	case ir.OpRet:
		if i.NumOperands() == 0 {
			return nil
		}
		if t.variant == VariantFull && i.Operand(0).Type().IsStruct() {
			// Struct returns are decomposed at the call boundary; see
			// extractvalue/insertvalue.
			return nil
		}
		return t.extractAndSubstitute(before, i, 0)
	case ir.OpSwitch:
		if t.variant == VariantFloatOnly {
			// Selectors are integers.
			return nil
		}
		return t.extractAndSubstitute(before, i, 0)
	case ir.OpBr:
		return t.rewriteBranch(before, i)
	case ir.OpIndirectBr:
		if t.variant == VariantFloatOnly {
			return nil
		}
		return t.extractAndSubstitute(before, i, 0)
	case ir.OpUnreachable:
		return nil
	}

	after := ir.After(i)

	switch op := i.Op(); {
	case op.IsBinary():
		return t.rewriteBinary(before, after, i)
	case op == ir.OpICmp:
		if t.variant == VariantFloatOnly {
			return nil
		}
		return t.rewriteCmp(before, i)
	case op == ir.OpFCmp:
		return t.rewriteCmp(before, i)
	case op == ir.OpSelect:
		return t.rewriteSelect(before, after, i)
	case op == ir.OpGEP:
		if t.variant == VariantFloatOnly {
			return nil
		}
		return t.rewriteGEP(before, after, i)
	case op.IsCast():
		return t.rewriteCast(before, after, i)
	case op == ir.OpPhi:
		return t.rewritePhi(after, i)
	case op == ir.OpAlloca:
		if t.variant == VariantFloatOnly {
			return nil
		}
		if i.NumOperands() == 1 {
			if err := t.extractAndSubstitute(before, i, 0); err != nil {
				return err
			}
		}
		return t.splatResult(after, i)
	case op == ir.OpLoad:
		return t.rewriteLoad(before, after, i)
	case op == ir.OpStore:
		if err := t.extractAndSubstitute(before, i, 0); err != nil {
			return err
		}
		if t.variant == VariantFloatOnly {
			return nil
		}
		return t.extractAndSubstitute(before, i, 1)
	case op == ir.OpCmpXchg:
		if t.variant == VariantFloatOnly {
			return fmt.Errorf("%w: %s", ErrCmpXchgFloatOnly, i)
		}
		for idx := 0; idx < 3; idx++ {
			if err := t.extractAndSubstitute(before, i, idx); err != nil {
				return err
			}
		}
		return t.splatResult(after, i)
	case op == ir.OpAtomicRMW:
		return t.rewriteAtomicRMW(before, after, i)
	case op == ir.OpFence:
		return nil
	case op == ir.OpExtractValue:
		if t.variant == VariantFloatOnly {
			return nil
		}
		// A scalar extracted from a call-returned struct; replicate it for
		// future use.
		return t.splatResult(after, i)
	case op == ir.OpInsertValue:
		if t.variant == VariantFloatOnly {
			return nil
		}
		// Only the value-to-insert operand needs substitution.
		return t.extractAndSubstitute(before, i, 1)
	case op == ir.OpVAArg:
		if t.variant == VariantFloatOnly {
			return nil
		}
		if err := t.extractAndSubstitute(before, i, 0); err != nil {
			return err
		}
		return t.splatResult(after, i)
	case op == ir.OpCall:
		return t.rewriteCall(before, after, i)
	case op == ir.OpPTestZ || op == ir.OpPTestNZC:
		return fmt.Errorf("%w: %s", ErrVectorInput, i)
	}
	return fmt.Errorf("%w: %s", ErrUnknownInstruction, i)
}

// splatResult replicates a scalar-producing instruction's result into a
// fresh shadow right after it.
func (t *transformer) splatResult(after *ir.Builder, i *ir.Instruction) error {
	s, err := t.createShadow(after, i)
	if err != nil {
		return err
	}
	return t.simds.add(i, s)
}

// rewriteBranch retargets a conditional branch onto a zero-predicate test of
// the shadow condition. The split-block majority vote is added later by the
// check injector.
func (t *transformer) rewriteBranch(before *ir.Builder, i *ir.Instruction) error {
	if !i.IsConditional() {
		return nil
	}
	if _, isConst := i.Cond().(*ir.Const); isConst {
		return nil
	}
	avxcond, err := t.getShadow(i.Cond(), i)
	if err != nil {
		return err
	}
	if avxcond == nil {
		// Float-only: an integer-derived condition stays scalar.
		return nil
	}

	t.tocheck = append(t.tocheck, pendingCheck{sink: i, shadow: avxcond, opIdx: 0})

	// All predicate shadows are <4 x i64> whose lanes are all-ones or
	// all-zeroes, so ptestz against all-ones distinguishes taken from
	// not-taken with a single 256-bit test.
	res := before.PTestZ(avxcond, allOnes(), "")
	newcond := before.ICmp(ir.IntEQ, res, ir.ConstInt(ir.I32, 0), "")
	i.SetCond(newcond)
	return nil
}

func (t *transformer) rewriteBinary(before, after *ir.Builder, i *ir.Instruction) error {
	s0, err := t.getShadow(i.Operand(0), i)
	if err != nil {
		return err
	}
	s1, err := t.getShadow(i.Operand(1), i)
	if err != nil {
		return err
	}

	if t.variant == VariantFloatOnly {
		// Corner case: a predicate shadow derived from fcmp feeds an
		// integer logical op. Extract lane 0, truncate to i1 and
		// substitute; no wide instruction is built.
		special := false
		for idx, s := range []ir.Value{s0, s1} {
			if s != nil && s.Type().IsVector() && s.Type().Elem.IsIntBits(64) {
				e := before.ExtractElement(s, lane0(), "")
				i.SetOperand(idx, before.Trunc(e, ir.I1, ""))
				special = true
			}
		}
		if special {
			return nil
		}
		if s0 == nil || s1 == nil {
			// Not floats/doubles; stays scalar.
			return nil
		}
	}

	shadow := after.Binary(i.Op(), s0, s1, i.Name()+simdSuffix)
	return t.replaceWithShadow(i, shadow)
}

// rewriteCmp coerces every comparison to a uniform <4 x i64> predicate: the
// lane-wise i1 result is sign-extended to fill 256 bits and bit-cast, so a
// single zero-predicate test works regardless of the compared type.
func (t *transformer) rewriteCmp(before *ir.Builder, i *ir.Instruction) error {
	s0, err := t.getShadow(i.Operand(0), i)
	if err != nil {
		return err
	}
	s1, err := t.getShadow(i.Operand(1), i)
	if err != nil {
		return err
	}

	var cmp *ir.Instruction
	if i.Op() == ir.OpICmp {
		cmp = before.ICmp(i.Predicate(), s0, s1, "")
	} else {
		cmp = before.FCmp(i.Predicate(), s0, s1, "")
	}
	lanes := cmp.Type().Lanes
	wide := before.SExt(cmp, ir.VectorOf(ir.IntN(simdWidthBits/lanes), lanes), "")
	shadow := before.BitCast(wide, ir.VectorOf(ir.I64, 4), i.Name()+simdSuffix)
	return t.replaceWithShadow(i, shadow)
}

func (t *transformer) rewriteSelect(before, after *ir.Builder, i *ir.Instruction) error {
	sCond, err := t.getShadow(i.Operand(0), i)
	if err != nil {
		return err
	}
	sT, err := t.getShadow(i.Operand(1), i)
	if err != nil {
		return err
	}
	sF, err := t.getShadow(i.Operand(2), i)
	if err != nil {
		return err
	}
	if t.variant == VariantFloatOnly && (sT == nil || sF == nil) {
		// Selected value is not float/double.
		return nil
	}

	var cond ir.Value
	if sCond != nil {
		// The condition shadow is <4 x i64>; reshape to <N x i1> where N is
		// the selected value's lane count.
		numel := sT.Type().Lanes
		wide := before.BitCast(sCond, ir.VectorOf(ir.IntN(simdWidthBits/numel), numel), "")
		cond = before.Trunc(wide, ir.VectorOf(ir.I1, numel), "")
	} else {
		cond = i.Operand(0)
	}
	shadow := after.Select(cond, sT, sF, i.Name()+simdSuffix)
	return t.replaceWithShadow(i, shadow)
}

func (t *transformer) rewriteGEP(before, after *ir.Builder, i *ir.Instruction) error {
	sPtr, err := t.getShadow(i.Operand(0), i)
	if err != nil {
		return err
	}
	sIdxs := make([]ir.Value, 0, i.NumOperands()-1)
	for k := 1; k < i.NumOperands(); k++ {
		s, err := t.getShadow(i.Operand(k), i)
		if err != nil {
			return err
		}
		sIdxs = append(sIdxs, s)
	}
	shadow := after.GEP(i.ElemType(), sPtr, sIdxs, i.InBounds(), i.Name()+simdSuffix)
	return t.replaceWithShadow(i, shadow)
}

func (t *transformer) rewriteCast(before, after *ir.Builder, i *ir.Instruction) error {
	if t.variant == VariantFloatOnly {
		return t.rewriteCastFloatOnly(before, after, i)
	}

	src := i.Operand(0)
	sVal, err := t.getShadow(src, i)
	if err != nil {
		return err
	}
	destTy, ok := shadowType(i.Type())
	if !ok {
		return fmt.Errorf("%w: %s", ErrBadShadowType, i.Type())
	}
	if src.Type().IsIntBits(1) {
		// The i1 shadow is <4 x i64>; truncate it back to <4 x i1> for
		// uniformity before casting.
		sVal = before.Trunc(sVal, ir.VectorOf(ir.I1, sVal.Type().Lanes), "")
	}
	if srcLanes, dstLanes := sVal.Type().Lanes, destTy.Lanes; srcLanes != dstLanes {
		// Reshape to the destination lane count, e.g. <8 x i32> feeding a
		// widening cast to <4 x i64> keeps the 4 low lanes, a narrowing
		// cast to <32 x i8> replicates lane i mod srcLanes.
		mask := make([]int, dstLanes)
		for k := range mask {
			mask[k] = k % srcLanes
		}
		sVal = before.Shuffle(sVal, ir.Undefined(sVal.Type()), mask, "")
	}
	shadow := after.Cast(i.Op(), sVal, destTy, i.Name()+simdSuffix)
	return t.replaceWithShadow(i, shadow)
}

// rewriteCastFloatOnly handles the float-only variant's casts. Casts into
// and out of float/double are the boundary between the shadowed FP world
// and the scalar integer world.
func (t *transformer) rewriteCastFloatOnly(before, after *ir.Builder, i *ir.Instruction) error {
	src := i.Operand(0)
	switch i.Op() {
	case ir.OpPtrToInt, ir.OpIntToPtr, ir.OpSExt, ir.OpZExt, ir.OpTrunc:
		// Integer and pointer casts stay scalar.
		return nil
	case ir.OpBitCast:
		if src.Type().IsFP() {
			return t.extractAndSubstitute(before, i, 0)
		}
		if i.Type().IsFP() {
			return t.splatResult(after, i)
		}
		return nil
	case ir.OpFPExt:
		// Only possible shape: <8 x float> to <4 x double>.
		sVal, err := t.getShadow(src, i)
		if err != nil {
			return err
		}
		mask := []int{0, 1, 2, 3}
		narrowed := before.Shuffle(sVal, ir.Undefined(sVal.Type()), mask, "")
		shadow := after.Cast(i.Op(), narrowed, fpShadowType(i.Type()), i.Name()+simdSuffix)
		return t.replaceWithShadow(i, shadow)
	case ir.OpFPTrunc:
		// Only possible shape: <4 x double> to <8 x float>.
		sVal, err := t.getShadow(src, i)
		if err != nil {
			return err
		}
		mask := make([]int, 8)
		for k := range mask {
			mask[k] = k % 4
		}
		widened := before.Shuffle(sVal, ir.Undefined(sVal.Type()), mask, "")
		shadow := after.Cast(i.Op(), widened, fpShadowType(i.Type()), i.Name()+simdSuffix)
		return t.replaceWithShadow(i, shadow)
	case ir.OpFPToSI, ir.OpFPToUI:
		return t.extractAndSubstitute(before, i, 0)
	case ir.OpSIToFP, ir.OpUIToFP:
		return t.splatResult(after, i)
	}
	return nil
}

func (t *transformer) rewritePhi(after *ir.Builder, i *ir.Instruction) error {
	var st *ir.Type
	if t.variant == VariantFloatOnly {
		st = fpShadowType(i.Type())
		if st == nil {
			return nil
		}
	} else {
		if i.Type().IsStruct() {
			// A phi can drag a call-returned struct to another block in the
			// extractvalue corner case; leave it alone.
			return nil
		}
		var ok bool
		st, ok = shadowType(i.Type())
		if !ok {
			return fmt.Errorf("%w: %s", ErrBadShadowType, i.Type())
		}
	}
	// Build the shadow phi empty: its incoming values may be defined in
	// blocks not visited yet. Wired up after the whole function is done.
	shadow := after.Phi(st, i.Name()+simdSuffix)
	t.phis = append(t.phis, i)
	return t.replaceWithShadow(i, shadow)
}

func (t *transformer) rewriteLoad(before, after *ir.Builder, i *ir.Instruction) error {
	if t.variant == VariantFloatOnly {
		if !i.Type().IsFP() {
			return nil
		}
		// The scalar load stays; only the loaded value is replicated.
		return t.splatResult(after, i)
	}
	if err := t.extractAndSubstitute(before, i, 0); err != nil {
		return err
	}
	return t.splatResult(after, i)
}

func (t *transformer) rewriteAtomicRMW(before, after *ir.Builder, i *ir.Instruction) error {
	if t.variant == VariantFloatOnly {
		if !i.Type().IsFP() {
			return nil
		}
		if err := t.extractAndSubstitute(before, i, 1); err != nil {
			return err
		}
		return t.splatResult(after, i)
	}
	for idx := 0; idx < 2; idx++ {
		if err := t.extractAndSubstitute(before, i, idx); err != nil {
			return err
		}
	}
	return t.splatResult(after, i)
}

func (t *transformer) rewriteCall(before, after *ir.Builder, i *ir.Instruction) error {
	cf := i.CalledFunction()

	if t.variant == VariantFull && cf != nil && strings.HasPrefix(cf.Name(), bswapPrefix) {
		// bswap exists for integers up to 256 bits, so the whole shadow can
		// be byte-swapped at once through a bitcast.
		i256 := ir.IntN(256)
		sArg, err := t.getShadow(i.Operand(0), i)
		if err != nil {
			return err
		}
		toBswap := before.BitCast(sArg, i256, "")
		bswap := t.mod.Intrinsic("ir.bswap.i256", i256, i256)
		swapped := before.Call(bswap, i256, []ir.Value{toBswap}, "")
		shadow := before.BitCast(swapped, sArg.Type(), i.Name()+simdSuffix)
		return t.replaceWithShadow(i, shadow)
	}

	if isIgnoredFunc(cf) {
		return nil
	}

	if i.IsInlineAsmCall() {
		ia := i.Callee().(*ir.InlineAsm)
		if ia.Asm == "" {
			// An empty asm is an optimization barrier; harmless.
			return nil
		}
		return fmt.Errorf("%w: %s", ErrInlineAsm, i)
	}

	if t.variant == VariantFull && cf == nil {
		// Indirect call: extract a scalar function pointer and schedule it
		// for checking.
		sFP, err := t.getShadow(i.Callee(), i)
		if err != nil {
			return err
		}
		newFP := before.ExtractElement(sFP, lane0(), "")
		i.SetCallee(newFP)
		t.tocheck = append(t.tocheck, pendingCheck{sink: i, shadow: sFP, opIdx: calleeOpIdx})
	}

	for idx := 0; idx < i.NumOperands(); idx++ {
		if err := t.extractAndSubstitute(before, i, idx); err != nil {
			return err
		}
	}

	if t.variant == VariantFloatOnly {
		if i.Type().IsFP() {
			return t.splatResult(after, i)
		}
		return nil
	}
	if !i.Type().IsVoid() && !i.Type().IsStruct() {
		return t.splatResult(after, i)
	}
	return nil
}

// rewirePhis binds the incoming shadow values of every deferred shadow phi.
// By now every incoming value has been seen and either shadowed or
// classified opaque.
func (t *transformer) rewirePhis() error {
	for _, pi := range t.phis {
		sv, err := t.getShadow(pi, pi)
		if err != nil {
			return err
		}
		sphi, ok := sv.(*ir.Instruction)
		if !ok || sphi.Op() != ir.OpPhi {
			return fmt.Errorf("%w: %s", ErrPhiRewire, pi)
		}
		for k := 0; k < pi.NumIncoming(); k++ {
			v, bb := pi.Incoming(k)
			siv, err := t.getShadow(v, pi)
			if err != nil {
				return err
			}
			if siv != nil {
				sphi.AddIncoming(siv, bb)
			}
		}
	}
	return nil
}

// removeOriginals deletes the replaced original instructions in reverse
// insertion order. Original phis are drained of their incoming values first
// to break original-shadow reference cycles through joins.
func (t *transformer) removeOriginals() {
	for _, pi := range t.phis {
		for pi.NumIncoming() > 0 {
			pi.RemoveIncoming(0)
		}
	}
	for k := len(t.origs) - 1; k >= 0; k-- {
		in := t.origs[k]
		if t.fn.NumUses(in) > 0 {
			t.warnf("instruction is still used and cannot be removed: %s", in)
			continue
		}
		if in.Parent() != nil {
			in.Parent().Remove(in)
		}
	}
}
