package interp

import (
	"fmt"
	"math"

	"github.com/simdswift/simdswift/ir"
)

// evalInstr executes one non-terminator, non-phi instruction.
func (it *Interpreter) evalInstr(env map[ir.Value]Val, f *ir.Function, in *ir.Instruction, depth int) (Val, bool, error) {
	op := in.Op()
	switch {
	case op.IsBinary():
		a, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		b, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		v, err := it.lanewise2(in.Type(), a, b, func(elem *ir.Type, x, y uint64) (uint64, error) {
			return binOp(op, elem, x, y)
		})
		return v, true, err

	case op == ir.OpICmp || op == ir.OpFCmp:
		a, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		b, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		srcElem := elemType(in.Operand(0).Type())
		v, err := it.cmpVal(in.Predicate(), srcElem, in.Type(), a, b)
		return v, true, err

	case op == ir.OpSelect:
		return it.execSelect(env, in)
	case op.IsCast():
		return it.execCast(env, in)
	case op == ir.OpGEP:
		return it.execGEP(env, in)
	case op == ir.OpExtractElement:
		vec, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		idx, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		if int(idx.Scalar) >= len(vec.Lanes) {
			return Val{}, false, fmt.Errorf("%w: extractelement lane %d out of range", ErrTrap, idx.Scalar)
		}
		return ScalarVal(vec.Lanes[idx.Scalar]), true, nil
	case op == ir.OpInsertElement:
		vec, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		elem, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		idx, err := it.eval(env, in.Operand(2))
		if err != nil {
			return Val{}, false, err
		}
		lanes := make([]uint64, in.Type().Lanes)
		copy(lanes, vec.Lanes)
		if int(idx.Scalar) >= len(lanes) {
			return Val{}, false, fmt.Errorf("%w: insertelement lane %d out of range", ErrTrap, idx.Scalar)
		}
		lanes[idx.Scalar] = elem.Scalar
		return VectorVal(lanes), true, nil
	case op == ir.OpShuffleVector:
		v1, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		v2, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		n1 := in.Operand(0).Type().Lanes
		mask := in.Mask()
		lanes := make([]uint64, len(mask))
		for k, m := range mask {
			if m < n1 {
				lanes[k] = laneOrZero(v1, m)
			} else {
				lanes[k] = laneOrZero(v2, m-n1)
			}
		}
		return VectorVal(lanes), true, nil

	case op == ir.OpExtractValue:
		agg, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		if in.FieldIndex() >= len(agg.Fields) {
			return Val{}, false, fmt.Errorf("%w: extractvalue field %d out of range", ErrTrap, in.FieldIndex())
		}
		return agg.Fields[in.FieldIndex()], true, nil
	case op == ir.OpInsertValue:
		agg, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		v, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		out := agg.clone()
		if in.FieldIndex() >= len(out.Fields) {
			return Val{}, false, fmt.Errorf("%w: insertvalue field %d out of range", ErrTrap, in.FieldIndex())
		}
		out.Fields[in.FieldIndex()] = v
		return out, true, nil

	case op == ir.OpAlloca:
		count := 1
		if in.NumOperands() == 1 {
			c, err := it.eval(env, in.Operand(0))
			if err != nil {
				return Val{}, false, err
			}
			count = int(c.Scalar)
		}
		addr := it.alloc(sizeOf(in.ElemType()) * count)
		return ScalarVal(addr), true, nil

	case op == ir.OpLoad:
		return it.execLoad(env, in)
	case op == ir.OpStore:
		return Val{}, false, it.execStore(env, in)
	case op == ir.OpCmpXchg:
		return it.execCmpXchg(env, in)
	case op == ir.OpAtomicRMW:
		return it.execAtomicRMW(env, in)
	case op == ir.OpFence:
		return Val{}, false, nil
	case op == ir.OpVAArg:
		return Val{}, false, fmt.Errorf("%w: va_arg is not supported at runtime", ErrTrap)

	case op == ir.OpPTestZ || op == ir.OpPTestNZC:
		a, err := it.eval(env, in.Operand(0))
		if err != nil {
			return Val{}, false, err
		}
		b, err := it.eval(env, in.Operand(1))
		if err != nil {
			return Val{}, false, err
		}
		zf, cf := true, true
		for k := range a.Lanes {
			if a.Lanes[k]&b.Lanes[k] != 0 {
				zf = false
			}
			if ^a.Lanes[k]&b.Lanes[k] != 0 {
				cf = false
			}
		}
		res := uint64(0)
		if op == ir.OpPTestZ && zf {
			res = 1
		}
		if op == ir.OpPTestNZC && !zf && !cf {
			res = 1
		}
		return ScalarVal(res), true, nil

	case op == ir.OpCall:
		return it.execCall(env, in, depth)
	}
	return Val{}, false, fmt.Errorf("%w: cannot execute %s", ErrTrap, in)
}

func elemType(t *ir.Type) *ir.Type {
	if t.IsVector() {
		return t.Elem
	}
	return t
}

func laneOrZero(v Val, k int) uint64 {
	if k < len(v.Lanes) {
		return v.Lanes[k]
	}
	return 0
}

// lanewise2 applies a binary scalar function over matching lanes, or over
// the scalars directly.
func (it *Interpreter) lanewise2(t *ir.Type, a, b Val, fn func(elem *ir.Type, x, y uint64) (uint64, error)) (Val, error) {
	if !t.IsVector() {
		s, err := fn(t, a.Scalar, b.Scalar)
		return ScalarVal(s), err
	}
	lanes := make([]uint64, t.Lanes)
	for k := range lanes {
		s, err := fn(t.Elem, laneOrZero(a, k), laneOrZero(b, k))
		if err != nil {
			return Val{}, err
		}
		lanes[k] = s
	}
	return VectorVal(lanes), nil
}

func binOp(op ir.Op, elem *ir.Type, x, y uint64) (uint64, error) {
	if elem.IsFP() {
		return fpBinOp(op, elem, x, y)
	}
	b := elem.Bits
	if elem.IsPointer() {
		b = 64
	}
	switch op {
	case ir.OpAdd:
		return maskBits(x+y, b), nil
	case ir.OpSub:
		return maskBits(x-y, b), nil
	case ir.OpMul:
		return maskBits(x*y, b), nil
	case ir.OpSDiv:
		if maskBits(y, b) == 0 {
			return 0, fmt.Errorf("%w: integer division by zero", ErrTrap)
		}
		return maskBits(uint64(signExtend(x, b)/signExtend(y, b)), b), nil
	case ir.OpUDiv:
		if maskBits(y, b) == 0 {
			return 0, fmt.Errorf("%w: integer division by zero", ErrTrap)
		}
		return maskBits(maskBits(x, b)/maskBits(y, b), b), nil
	case ir.OpSRem:
		if maskBits(y, b) == 0 {
			return 0, fmt.Errorf("%w: integer division by zero", ErrTrap)
		}
		return maskBits(uint64(signExtend(x, b)%signExtend(y, b)), b), nil
	case ir.OpURem:
		if maskBits(y, b) == 0 {
			return 0, fmt.Errorf("%w: integer division by zero", ErrTrap)
		}
		return maskBits(maskBits(x, b)%maskBits(y, b), b), nil
	case ir.OpShl:
		return maskBits(x<<(y%uint64(b)), b), nil
	case ir.OpLShr:
		return maskBits(maskBits(x, b)>>(y%uint64(b)), b), nil
	case ir.OpAShr:
		return maskBits(uint64(signExtend(x, b)>>(y%uint64(b))), b), nil
	case ir.OpAnd:
		return x & y, nil
	case ir.OpOr:
		return x | y, nil
	case ir.OpXor:
		return maskBits(x^y, b), nil
	}
	return 0, fmt.Errorf("%w: fp op %s on integer type", ErrTrap, op)
}

func fpBinOp(op ir.Op, elem *ir.Type, x, y uint64) (uint64, error) {
	if elem.IsFloat() {
		a, b := math.Float32frombits(uint32(x)), math.Float32frombits(uint32(y))
		var r float32
		switch op {
		case ir.OpFAdd:
			r = a + b
		case ir.OpFSub:
			r = a - b
		case ir.OpFMul:
			r = a * b
		case ir.OpFDiv:
			r = a / b
		case ir.OpFRem:
			r = float32(math.Mod(float64(a), float64(b)))
		default:
			return 0, fmt.Errorf("%w: integer op %s on float type", ErrTrap, op)
		}
		return uint64(math.Float32bits(r)), nil
	}
	a, b := math.Float64frombits(x), math.Float64frombits(y)
	var r float64
	switch op {
	case ir.OpFAdd:
		r = a + b
	case ir.OpFSub:
		r = a - b
	case ir.OpFMul:
		r = a * b
	case ir.OpFDiv:
		r = a / b
	case ir.OpFRem:
		r = math.Mod(a, b)
	default:
		return 0, fmt.Errorf("%w: integer op %s on double type", ErrTrap, op)
	}
	return math.Float64bits(r), nil
}

func (it *Interpreter) cmpVal(p ir.Pred, srcElem, resType *ir.Type, a, b Val) (Val, error) {
	one := func(x, y uint64) (uint64, error) {
		ok, err := cmpScalar(p, srcElem, x, y)
		if err != nil {
			return 0, err
		}
		if ok {
			return 1, nil
		}
		return 0, nil
	}
	if !resType.IsVector() {
		s, err := one(a.Scalar, b.Scalar)
		return ScalarVal(s), err
	}
	lanes := make([]uint64, resType.Lanes)
	for k := range lanes {
		s, err := one(laneOrZero(a, k), laneOrZero(b, k))
		if err != nil {
			return Val{}, err
		}
		lanes[k] = s
	}
	return VectorVal(lanes), nil
}

func cmpScalar(p ir.Pred, elem *ir.Type, x, y uint64) (bool, error) {
	if elem.IsFP() {
		var a, b float64
		if elem.IsFloat() {
			a, b = float64(math.Float32frombits(uint32(x))), float64(math.Float32frombits(uint32(y)))
		} else {
			a, b = math.Float64frombits(x), math.Float64frombits(y)
		}
		unordered := math.IsNaN(a) || math.IsNaN(b)
		switch p {
		case ir.FloatOEQ:
			return !unordered && a == b, nil
		case ir.FloatONE:
			return !unordered && a != b, nil
		case ir.FloatOLT:
			return !unordered && a < b, nil
		case ir.FloatOLE:
			return !unordered && a <= b, nil
		case ir.FloatOGT:
			return !unordered && a > b, nil
		case ir.FloatOGE:
			return !unordered && a >= b, nil
		case ir.FloatUEQ:
			return unordered || a == b, nil
		case ir.FloatUNE:
			return unordered || a != b, nil
		case ir.FloatULT:
			return unordered || a < b, nil
		case ir.FloatULE:
			return unordered || a <= b, nil
		case ir.FloatUGT:
			return unordered || a > b, nil
		case ir.FloatUGE:
			return unordered || a >= b, nil
		case ir.FloatORD:
			return !unordered, nil
		case ir.FloatUNO:
			return unordered, nil
		}
		return false, fmt.Errorf("%w: integer predicate on fp compare", ErrTrap)
	}

	b := elem.Bits
	if elem.IsPointer() {
		b = 64
	}
	ux, uy := maskBits(x, b), maskBits(y, b)
	sx, sy := signExtend(x, b), signExtend(y, b)
	switch p {
	case ir.IntEQ:
		return ux == uy, nil
	case ir.IntNE:
		return ux != uy, nil
	case ir.IntSLT:
		return sx < sy, nil
	case ir.IntSLE:
		return sx <= sy, nil
	case ir.IntSGT:
		return sx > sy, nil
	case ir.IntSGE:
		return sx >= sy, nil
	case ir.IntULT:
		return ux < uy, nil
	case ir.IntULE:
		return ux <= uy, nil
	case ir.IntUGT:
		return ux > uy, nil
	case ir.IntUGE:
		return ux >= uy, nil
	}
	return false, fmt.Errorf("%w: fp predicate on integer compare", ErrTrap)
}

func (it *Interpreter) execSelect(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	cond, err := it.eval(env, in.Operand(0))
	if err != nil {
		return Val{}, false, err
	}
	tv, err := it.eval(env, in.Operand(1))
	if err != nil {
		return Val{}, false, err
	}
	fv, err := it.eval(env, in.Operand(2))
	if err != nil {
		return Val{}, false, err
	}
	if !in.Operand(0).Type().IsVector() {
		if cond.Scalar&1 != 0 {
			return tv, true, nil
		}
		return fv, true, nil
	}
	lanes := make([]uint64, in.Type().Lanes)
	for k := range lanes {
		if laneOrZero(cond, k)&1 != 0 {
			lanes[k] = laneOrZero(tv, k)
		} else {
			lanes[k] = laneOrZero(fv, k)
		}
	}
	return VectorVal(lanes), true, nil
}

func (it *Interpreter) execCast(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	src := in.Operand(0)
	v, err := it.eval(env, src)
	if err != nil {
		return Val{}, false, err
	}
	from, to := src.Type(), in.Type()

	if in.Op() == ir.OpBitCast {
		out, err := bitcastVal(from, to, v)
		return out, true, err
	}

	fe, te := elemType(from), elemType(to)
	if !to.IsVector() {
		s, err := castScalar(in.Op(), fe, te, v.Scalar)
		return ScalarVal(s), true, err
	}
	lanes := make([]uint64, to.Lanes)
	for k := range lanes {
		s, err := castScalar(in.Op(), fe, te, laneOrZero(v, k))
		if err != nil {
			return Val{}, false, err
		}
		lanes[k] = s
	}
	return VectorVal(lanes), true, nil
}

func castScalar(op ir.Op, from, to *ir.Type, x uint64) (uint64, error) {
	switch op {
	case ir.OpTrunc:
		return maskBits(x, to.Bits), nil
	case ir.OpZExt:
		return maskBits(x, from.Bits), nil
	case ir.OpSExt:
		return maskBits(uint64(signExtend(x, from.Bits)), to.Bits), nil
	case ir.OpFPTrunc:
		return uint64(math.Float32bits(float32(math.Float64frombits(x)))), nil
	case ir.OpFPExt:
		return math.Float64bits(float64(math.Float32frombits(uint32(x)))), nil
	case ir.OpFPToSI:
		f := fpDecode(from, x)
		return maskBits(uint64(int64(f)), intBitsOf(to)), nil
	case ir.OpFPToUI:
		f := fpDecode(from, x)
		return maskBits(uint64(f), intBitsOf(to)), nil
	case ir.OpSIToFP:
		return fpEncode(to, float64(signExtend(x, intBitsOf(from)))), nil
	case ir.OpUIToFP:
		return fpEncode(to, float64(maskBits(x, intBitsOf(from)))), nil
	case ir.OpPtrToInt:
		return maskBits(x, intBitsOf(to)), nil
	case ir.OpIntToPtr:
		return x, nil
	}
	return 0, fmt.Errorf("%w: cannot execute cast %s", ErrTrap, op)
}

func intBitsOf(t *ir.Type) int {
	if t.IsPointer() {
		return 64
	}
	return t.Bits
}

func fpDecode(t *ir.Type, x uint64) float64 {
	if t.IsFloat() {
		return float64(math.Float32frombits(uint32(x)))
	}
	return math.Float64frombits(x)
}

func fpEncode(t *ir.Type, f float64) uint64 {
	if t.IsFloat() {
		return uint64(math.Float32bits(float32(f)))
	}
	return math.Float64bits(f)
}

// bitcastVal reinterprets bits between types of equal total width by
// round-tripping through a little-endian byte image.
func bitcastVal(from, to *ir.Type, v Val) (Val, error) {
	if from.Equal(to) {
		return v, nil
	}
	raw, err := valBytes(from, v)
	if err != nil {
		return Val{}, err
	}
	return bytesVal(to, raw)
}

func valBytes(t *ir.Type, v Val) ([]byte, error) {
	switch {
	case t.IsVector():
		es := sizeOf(t.Elem)
		if t.Elem.IsInt() && t.Elem.Bits < 8 {
			return nil, fmt.Errorf("%w: bitcast of sub-byte vector", ErrTrap)
		}
		out := make([]byte, 0, es*t.Lanes)
		for k := 0; k < t.Lanes; k++ {
			lane := laneOrZero(v, k)
			for j := 0; j < es; j++ {
				out = append(out, byte(lane>>uint(8*j)))
			}
		}
		return out, nil
	case t.IsInt() && t.Bits > 64:
		out := make([]byte, 0, t.Bits/8)
		for _, w := range v.Lanes {
			for j := 0; j < 8; j++ {
				out = append(out, byte(w>>uint(8*j)))
			}
		}
		return out, nil
	default:
		size := sizeOf(t)
		out := make([]byte, size)
		for j := 0; j < size; j++ {
			out[j] = byte(v.Scalar >> uint(8*j))
		}
		return out, nil
	}
}

func bytesVal(t *ir.Type, raw []byte) (Val, error) {
	read := func(off, size int) uint64 {
		var x uint64
		for j := 0; j < size; j++ {
			x |= uint64(raw[off+j]) << uint(8*j)
		}
		return x
	}
	switch {
	case t.IsVector():
		es := sizeOf(t.Elem)
		if t.Elem.IsInt() && t.Elem.Bits < 8 {
			return Val{}, fmt.Errorf("%w: bitcast to sub-byte vector", ErrTrap)
		}
		if es*t.Lanes != len(raw) {
			return Val{}, fmt.Errorf("%w: bitcast size mismatch to %s", ErrTrap, t)
		}
		lanes := make([]uint64, t.Lanes)
		for k := range lanes {
			lanes[k] = read(k*es, es)
		}
		return VectorVal(lanes), nil
	case t.IsInt() && t.Bits > 64:
		words := t.Bits / 64
		lanes := make([]uint64, words)
		for k := range lanes {
			lanes[k] = read(k*8, 8)
		}
		return VectorVal(lanes), nil
	default:
		return ScalarVal(read(0, sizeOf(t))), nil
	}
}

func (it *Interpreter) execGEP(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	ptr, err := it.eval(env, in.Operand(0))
	if err != nil {
		return Val{}, false, err
	}
	idxs := make([]Val, 0, in.NumOperands()-1)
	for k := 1; k < in.NumOperands(); k++ {
		v, err := it.eval(env, in.Operand(k))
		if err != nil {
			return Val{}, false, err
		}
		idxs = append(idxs, v)
	}

	one := func(lane int) (uint64, error) {
		var addr uint64
		if ptr.IsVector() {
			addr = laneOrZero(ptr, lane)
		} else {
			addr = ptr.Scalar
		}
		cur := in.ElemType()
		for n, iv := range idxs {
			var raw uint64
			if iv.IsVector() {
				raw = iv.Lanes[lane%len(iv.Lanes)]
			} else {
				raw = iv.Scalar
			}
			off := signExtend(raw, 64)
			if n == 0 {
				addr += uint64(off * int64(sizeOf(cur)))
				continue
			}
			if cur.IsStruct() {
				for fi := 0; fi < int(off); fi++ {
					addr += uint64(sizeOf(cur.Fields[fi]))
				}
				cur = cur.Fields[off]
				continue
			}
			addr += uint64(off * int64(sizeOf(cur)))
		}
		return addr, nil
	}

	if !in.Type().IsVector() {
		addr, err := one(0)
		return ScalarVal(addr), true, err
	}
	lanes := make([]uint64, in.Type().Lanes)
	for k := range lanes {
		addr, err := one(k)
		if err != nil {
			return Val{}, false, err
		}
		lanes[k] = addr
	}
	return VectorVal(lanes), true, nil
}

func (it *Interpreter) execLoad(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	ptr, err := it.eval(env, in.Operand(0))
	if err != nil {
		return Val{}, false, err
	}
	t := in.Type()
	if t.IsVector() {
		es := sizeOf(t.Elem)
		if err := it.checkAddr(ptr.Scalar, es*t.Lanes); err != nil {
			return Val{}, false, err
		}
		lanes := make([]uint64, t.Lanes)
		for k := range lanes {
			lanes[k] = it.loadScalar(ptr.Scalar+uint64(k*es), es)
		}
		return VectorVal(lanes), true, nil
	}
	size := sizeOf(t)
	if err := it.checkAddr(ptr.Scalar, size); err != nil {
		return Val{}, false, err
	}
	return ScalarVal(it.loadScalar(ptr.Scalar, size)), true, nil
}

func (it *Interpreter) execStore(env map[ir.Value]Val, in *ir.Instruction) error {
	v, err := it.eval(env, in.Operand(0))
	if err != nil {
		return err
	}
	ptr, err := it.eval(env, in.Operand(1))
	if err != nil {
		return err
	}
	t := in.Operand(0).Type()
	if t.IsVector() {
		return fmt.Errorf("%w: vector store is not supported at runtime", ErrTrap)
	}
	size := sizeOf(t)
	if err := it.checkAddr(ptr.Scalar, size); err != nil {
		return err
	}
	it.storeScalar(ptr.Scalar, v.Scalar, size)
	it.trace = append(it.trace, StoreEvent{Addr: ptr.Scalar, Bits: maskBits(v.Scalar, 8*size), Size: size})
	return nil
}

func (it *Interpreter) execCmpXchg(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	ptr, err := it.eval(env, in.Operand(0))
	if err != nil {
		return Val{}, false, err
	}
	expected, err := it.eval(env, in.Operand(1))
	if err != nil {
		return Val{}, false, err
	}
	repl, err := it.eval(env, in.Operand(2))
	if err != nil {
		return Val{}, false, err
	}
	size := sizeOf(in.Type())
	if err := it.checkAddr(ptr.Scalar, size); err != nil {
		return Val{}, false, err
	}
	old := it.loadScalar(ptr.Scalar, size)
	if old == maskBits(expected.Scalar, 8*size) {
		it.storeScalar(ptr.Scalar, repl.Scalar, size)
		it.trace = append(it.trace, StoreEvent{Addr: ptr.Scalar, Bits: maskBits(repl.Scalar, 8*size), Size: size})
	}
	return ScalarVal(old), true, nil
}

func (it *Interpreter) execAtomicRMW(env map[ir.Value]Val, in *ir.Instruction) (Val, bool, error) {
	ptr, err := it.eval(env, in.Operand(0))
	if err != nil {
		return Val{}, false, err
	}
	v, err := it.eval(env, in.Operand(1))
	if err != nil {
		return Val{}, false, err
	}
	t := in.Type()
	size := sizeOf(t)
	if err := it.checkAddr(ptr.Scalar, size); err != nil {
		return Val{}, false, err
	}
	old := it.loadScalar(ptr.Scalar, size)
	var updated uint64
	switch in.RMWKind() {
	case ir.RMWXchg:
		updated = v.Scalar
	case ir.RMWAdd:
		updated = old + v.Scalar
	case ir.RMWSub:
		updated = old - v.Scalar
	case ir.RMWAnd:
		updated = old & v.Scalar
	case ir.RMWOr:
		updated = old | v.Scalar
	case ir.RMWXor:
		updated = old ^ v.Scalar
	case ir.RMWFAdd:
		updated, err = fpBinOp(ir.OpFAdd, t, old, v.Scalar)
	case ir.RMWFSub:
		updated, err = fpBinOp(ir.OpFSub, t, old, v.Scalar)
	default:
		err = fmt.Errorf("%w: cannot execute atomicrmw kind %d", ErrTrap, in.RMWKind())
	}
	if err != nil {
		return Val{}, false, err
	}
	updated = maskBits(updated, 8*size)
	it.storeScalar(ptr.Scalar, updated, size)
	it.trace = append(it.trace, StoreEvent{Addr: ptr.Scalar, Bits: updated, Size: size})
	return ScalarVal(old), true, nil
}

func (it *Interpreter) execCall(env map[ir.Value]Val, in *ir.Instruction, depth int) (Val, bool, error) {
	var target *ir.Function
	switch callee := in.Callee().(type) {
	case *ir.Function:
		target = callee
	case *ir.InlineAsm:
		if callee.Asm == "" {
			return Val{}, false, nil
		}
		return Val{}, false, fmt.Errorf("%w: cannot execute inline assembly", ErrTrap)
	default:
		addrV, err := it.eval(env, in.Callee())
		if err != nil {
			return Val{}, false, err
		}
		f, ok := it.funcsByAddr[addrV.Scalar]
		if !ok {
			return Val{}, false, fmt.Errorf("%w: indirect call to bad address %#x", ErrTrap, addrV.Scalar)
		}
		target = f
	}

	args := make([]Val, in.NumOperands())
	for k := range args {
		v, err := it.eval(env, in.Operand(k))
		if err != nil {
			return Val{}, false, err
		}
		args[k] = v
	}
	ret, err := it.run(target, args, depth+1)
	if err != nil {
		return Val{}, false, err
	}
	return ret, !in.Type().IsVoid(), nil
}
