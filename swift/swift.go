// Package swift implements the SIMD-Swift hardening passes: every scalar
// value is replicated across the lanes of a 256-bit vector shadow, control
// flow and arithmetic are recomputed on the lanes, and majority-voting
// checks are inserted at externally observable sync points (stores,
// branches, calls, atomics). The fault model is a single corrupted lane.
//
// Three variants share the core: the full hardener (all scalar types), the
// float-only hardener (float/double computations only), and a native-cost
// pass that inserts opaque markers at the same sync points to price the
// encoding overhead without the protection.
package swift

import (
	"errors"
	"fmt"
	"os"

	"github.com/simdswift/simdswift/ir"
)

// Errors the passes can return. Programmer errors identify input the
// rewriter refuses to approximate; they must be fixed upstream.
var (
	ErrMissingHelper      = errors.New("runtime helper not found (requires linked runtime)")
	ErrShadowExists       = errors.New("value already has a shadow")
	ErrNoShadow           = errors.New("value has no shadow")
	ErrBadShadowType      = errors.New("cannot shadow type")
	ErrUnknownInstruction = errors.New("cannot handle unknown instruction")
	ErrNonLocalControl    = errors.New("cannot work with non-local control flow")
	ErrVectorInput        = errors.New("cannot transform vector instructions in original code")
	ErrInlineAsm          = errors.New("cannot handle inline assembly")
	ErrCmpXchgFloatOnly   = errors.New("cannot transform cmpxchg in the float-only variant")
	ErrPhiRewire          = errors.New("could not find shadow phi to rewire")
)

// Variant selects which scalar types the hardener replicates.
type Variant byte

const (
	// VariantFull replicates every scalar type: integers, floats, doubles,
	// pointers and i1 predicates.
	VariantFull Variant = iota
	// VariantFloatOnly replicates only float and double; integer and
	// pointer computation stays scalar.
	VariantFloatOnly
)

// CheckOptions disables categories of inserted checks.
type CheckOptions struct {
	NoAll    bool
	NoBranch bool
	NoLoad   bool
	NoStore  bool
	NoAtomic bool
	NoCall   bool
}

// Options configures a hardening pass.
type Options struct {
	Checks CheckOptions
	// Warnf receives non-fatal diagnostics. Defaults to stderr.
	Warnf func(format string, args ...interface{})
}

type warnFunc func(format string, args ...interface{})

func stderrWarnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[simd-swift warning] "+format+"\n", args...)
}

// Pass transforms a module in place.
type Pass interface {
	Name() string
	Run(m *ir.Module) error
}

// HardenPass is the shadow-and-check transformation, full or float-only.
type HardenPass struct {
	variant Variant
	checks  CheckOptions
	warnf   warnFunc
}

// NewFull returns the full hardener ("avxswift").
func NewFull(opts Options) *HardenPass {
	return newHarden(VariantFull, opts)
}

// NewFloatOnly returns the float-only hardener ("avxfloatswift").
func NewFloatOnly(opts Options) *HardenPass {
	return newHarden(VariantFloatOnly, opts)
}

func newHarden(v Variant, opts Options) *HardenPass {
	w := opts.Warnf
	if w == nil {
		w = stderrWarnf
	}
	return &HardenPass{variant: v, checks: opts.Checks, warnf: w}
}

func (p *HardenPass) Name() string {
	if p.variant == VariantFloatOnly {
		return "avxfloatswift"
	}
	return "avxswift"
}

// Run hardens every defined, non-ignored function of m.
func (p *HardenPass) Run(m *ir.Module) error {
	h, err := resolveHardenHelpers(m, p.variant)
	if err != nil {
		return err
	}
	for _, f := range m.Functions() {
		if f.IsDecl() || isIgnoredFunc(f) {
			continue
		}
		t := newTransformer(m, f, p.variant, h, p.checks, p.warnf)
		if err := t.run(); err != nil {
			return fmt.Errorf("%s: function %s: %w", p.Name(), f.Name(), err)
		}
	}
	return nil
}

// New returns the pass registered under the given identifier: "avxswift",
// "avxfloatswift" or "slownative".
func New(id string, opts Options) (Pass, error) {
	switch id {
	case "avxswift":
		return NewFull(opts), nil
	case "avxfloatswift":
		return NewFloatOnly(opts), nil
	case "slownative":
		return NewNativeCost(opts), nil
	}
	return nil, fmt.Errorf("unknown pass %q", id)
}

// forEachInstruction walks f the way the transformer needs: blocks in
// depth-first dominator order first, then any block unreachable in the
// dominator tree (landing-pad-rooted regions) in layout order. The
// instruction list of each block is snapshotted so instructions inserted by
// visit are skipped.
func forEachInstruction(f *ir.Function, visit func(*ir.Instruction) error) error {
	visited := map[*ir.Block]bool{}
	dt := ir.BuildDomTree(f)
	for _, bb := range dt.Preorder() {
		visited[bb] = true
		for _, in := range append([]*ir.Instruction(nil), bb.Instructions()...) {
			if err := visit(in); err != nil {
				return err
			}
		}
	}
	for _, bb := range f.Blocks() {
		if visited[bb] {
			continue
		}
		for _, in := range append([]*ir.Instruction(nil), bb.Instructions()...) {
			if err := visit(in); err != nil {
				return err
			}
		}
	}
	return nil
}
