package swift

import (
	"fmt"

	"github.com/simdswift/simdswift/ir"
)

// shadowMap is the one-to-one partial mapping from original SSA values to
// their shadow SSA values. Insertion is single-assignment: a second shadow
// for the same value is a programmer error in the rewriter.
type shadowMap struct {
	m map[ir.Value]ir.Value
}

func newShadowMap() *shadowMap {
	return &shadowMap{m: map[ir.Value]ir.Value{}}
}

func (s *shadowMap) add(v, shadow ir.Value) error {
	if _, dup := s.m[v]; dup {
		return fmt.Errorf("%w: %s", ErrShadowExists, ir.ValueString(v))
	}
	s.m[v] = shadow
	return nil
}

func (s *shadowMap) get(v ir.Value) (ir.Value, bool) {
	shadow, ok := s.m[v]
	return shadow, ok
}

func (s *shadowMap) has(v ir.Value) bool {
	_, ok := s.m[v]
	return ok
}

// isOpaque reports whether v is a value for which a shadow cannot and
// should not be constructed: basic-block labels, function symbols,
// inline-asm literals, metadata, and the results of non-local control
// instructions.
func isOpaque(v ir.Value) bool {
	switch w := v.(type) {
	case *ir.Block, *ir.Function, *ir.InlineAsm, *ir.MetadataValue:
		return true
	case *ir.Instruction:
		return w.Op() == ir.OpInvoke || w.Op() == ir.OpLandingPad
	}
	return false
}
