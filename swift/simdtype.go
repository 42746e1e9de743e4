package swift

import "github.com/simdswift/simdswift/ir"

// simdWidthBits is the SIMD register width every shadow occupies exactly, so
// that one 256-bit zero-predicate test inspects a whole shadow.
const simdWidthBits = 256

// shadowLanes returns the canonical lane count for a scalar type: the count
// that makes the shadow exactly 256 bits wide. canonical is false for
// integer widths other than 1/8/16/32/64, which are handled conservatively
// as 4 lanes (the caller warns). ok is false for kinds that have no shadow.
func shadowLanes(t *ir.Type) (lanes int, canonical, ok bool) {
	switch t.Kind {
	case ir.TypeKindInt:
		if t.Bits == 1 {
			return 4, true, true
		}
		if t.Bits != 8 && t.Bits != 16 && t.Bits != 32 && t.Bits != 64 {
			return 4, false, true
		}
		return simdWidthBits / t.Bits, true, true
	case ir.TypeKindPointer:
		return 4, true, true
	case ir.TypeKindDouble:
		return 4, true, true
	case ir.TypeKindFloat:
		return 8, true, true
	}
	return 0, false, false
}

// shadowType returns the shadow vector type of a scalar type. The one-bit
// predicate type has no natural 256-bit vector and is widened to <4 x i64>.
func shadowType(t *ir.Type) (*ir.Type, bool) {
	if t.IsIntBits(1) {
		return ir.VectorOf(ir.I64, 4), true
	}
	lanes, _, ok := shadowLanes(t)
	if !ok {
		return nil, false
	}
	return ir.VectorOf(t, lanes), true
}

// isShadowType reports whether t already is a shadow: a vector of exactly
// the canonical lane count for its element type.
func isShadowType(t *ir.Type) bool {
	if !t.IsVector() {
		return false
	}
	lanes, _, ok := shadowLanes(t.Elem)
	return ok && t.Lanes == lanes
}

// fpShadowLanes is the float-only variant's lane table: only float and
// double have shadows, everything else reports zero.
func fpShadowLanes(t *ir.Type) int {
	switch t.Kind {
	case ir.TypeKindDouble:
		return 4
	case ir.TypeKindFloat:
		return 8
	}
	return 0
}

// fpShadowType returns the float-only shadow type, or nil.
func fpShadowType(t *ir.Type) *ir.Type {
	lanes := fpShadowLanes(t)
	if lanes == 0 {
		return nil
	}
	return ir.VectorOf(t, lanes)
}

// isFPShadowType reports whether t is a float or double shadow.
func isFPShadowType(t *ir.Type) bool {
	if !t.IsVector() {
		return false
	}
	lanes := fpShadowLanes(t.Elem)
	return lanes > 0 && t.Lanes == lanes
}
