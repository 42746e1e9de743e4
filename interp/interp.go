// Package interp executes modules of the ir package directly. It exists so
// that original and hardened programs can be run side by side: the
// interpreter records every externally observable event (stores, helper
// calls, exits) and can inject a single-lane corruption into a chosen
// shadow value, which is exactly what the hardener's guarantees are stated
// in terms of.
package interp

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/simdswift/simdswift/ir"
)

var (
	// ErrExit is returned by host functions to request program termination;
	// the interpreter records an ExitEvent and unwinds cleanly.
	ErrExit = errors.New("program exit requested")
	// ErrTrap covers runtime conditions the interpreter refuses to
	// continue past: unreachable, division by zero, bad memory access.
	ErrTrap = errors.New("trap")
	// ErrSteps is returned when the step budget is exhausted.
	ErrSteps = errors.New("step budget exceeded")
)

const (
	defaultMaxSteps = 1 << 22
	callDepthLimit  = 512

	// Function addresses live in their own region far above the arena.
	funcAddrBase = uint64(1) << 62
)

// HostFunc implements a declared function in Go.
type HostFunc func(it *Interpreter, args []Val) (Val, error)

// Interpreter executes one module instance: a memory arena holding the
// globals, resolved function addresses, registered host functions, and the
// event trace of the current run.
type Interpreter struct {
	mod *ir.Module

	mem         []byte
	globalAddrs map[*ir.Global]uint64
	funcAddrs   map[*ir.Function]uint64
	funcsByAddr map[uint64]*ir.Function
	host        map[string]HostFunc

	trace    []Event
	steps    int
	maxSteps int
	fault    *FaultPlan
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithHost registers a Go implementation for a declared function.
func WithHost(name string, fn HostFunc) Option {
	return func(it *Interpreter) { it.host[name] = fn }
}

// WithHostMap registers a whole table of host functions.
func WithHostMap(m map[string]HostFunc) Option {
	return func(it *Interpreter) {
		for name, fn := range m {
			it.host[name] = fn
		}
	}
}

// WithMaxSteps overrides the step budget.
func WithMaxSteps(n int) Option {
	return func(it *Interpreter) { it.maxSteps = n }
}

// WithFault arms a single-lane corruption plan.
func WithFault(p *FaultPlan) Option {
	return func(it *Interpreter) { it.fault = p }
}

// New instantiates the module: globals are allocated and initialised,
// functions get addresses for indirect calls.
func New(m *ir.Module, opts ...Option) (*Interpreter, error) {
	it := &Interpreter{
		mod:         m,
		mem:         make([]byte, 8), // address 0 stays null
		globalAddrs: map[*ir.Global]uint64{},
		funcAddrs:   map[*ir.Function]uint64{},
		funcsByAddr: map[uint64]*ir.Function{},
		host:        map[string]HostFunc{},
		maxSteps:    defaultMaxSteps,
	}
	for _, o := range opts {
		o(it)
	}
	for _, g := range m.Globals() {
		size := sizeOf(g.Elem()) * g.Count()
		addr := it.alloc(size)
		it.globalAddrs[g] = addr
		for idx, c := range g.Init() {
			if c == nil {
				continue
			}
			v, err := it.constVal(c)
			if err != nil {
				return nil, err
			}
			it.storeScalar(addr+uint64(idx*sizeOf(g.Elem())), v.Scalar, sizeOf(g.Elem()))
		}
	}
	for k, f := range m.Functions() {
		addr := funcAddrBase + uint64(k+1)*16
		it.funcAddrs[f] = addr
		it.funcsByAddr[addr] = f
	}
	return it, nil
}

// Trace returns the events recorded so far, in program order.
func (it *Interpreter) Trace() []Event { return it.trace }

// GlobalAddr returns the arena address of a global.
func (it *Interpreter) GlobalAddr(g *ir.Global) uint64 { return it.globalAddrs[g] }

// FuncAddr returns the address a function resolves to for indirect calls.
func (it *Interpreter) FuncAddr(f *ir.Function) uint64 { return it.funcAddrs[f] }

// ReadGlobal copies the current contents of a global's element idx.
func (it *Interpreter) ReadGlobal(g *ir.Global, idx int) uint64 {
	size := sizeOf(g.Elem())
	return it.loadScalar(it.globalAddrs[g]+uint64(idx*size), size)
}

// Call runs the named function. A host-requested exit terminates the run
// without error; the trace ends in an ExitEvent.
func (it *Interpreter) Call(name string, args ...Val) (Val, error) {
	f := it.mod.Func(name)
	if f == nil {
		return Val{}, fmt.Errorf("no such function %q", name)
	}
	v, err := it.run(f, args, 0)
	if errors.Is(err, ErrExit) {
		return Val{}, nil
	}
	return v, err
}

func (it *Interpreter) alloc(size int) uint64 {
	if size < 1 {
		size = 1
	}
	// 8-byte alignment keeps scalar loads simple.
	for len(it.mem)%8 != 0 {
		it.mem = append(it.mem, 0)
	}
	addr := uint64(len(it.mem))
	it.mem = append(it.mem, make([]byte, size)...)
	return addr
}

// sizeOf is the in-memory size of a type in bytes.
func sizeOf(t *ir.Type) int {
	switch t.Kind {
	case ir.TypeKindInt:
		if t.Bits <= 8 {
			return 1
		}
		return t.Bits / 8
	case ir.TypeKindFloat:
		return 4
	case ir.TypeKindDouble, ir.TypeKindPointer:
		return 8
	case ir.TypeKindVector:
		return t.Lanes * sizeOf(t.Elem)
	case ir.TypeKindStruct:
		n := 0
		for _, f := range t.Fields {
			n += sizeOf(f)
		}
		return n
	}
	return 0
}

func (it *Interpreter) checkAddr(addr uint64, size int) error {
	if addr == 0 || addr+uint64(size) > uint64(len(it.mem)) {
		return fmt.Errorf("%w: memory access at %#x size %d", ErrTrap, addr, size)
	}
	return nil
}

func (it *Interpreter) storeScalar(addr, v uint64, size int) {
	for k := 0; k < size; k++ {
		it.mem[addr+uint64(k)] = byte(v >> uint(8*k))
	}
}

func (it *Interpreter) loadScalar(addr uint64, size int) uint64 {
	var v uint64
	for k := 0; k < size; k++ {
		v |= uint64(it.mem[addr+uint64(k)]) << uint(8*k)
	}
	return v
}

func (it *Interpreter) constVal(c *ir.Const) (Val, error) {
	t := c.Typ
	switch {
	case c.Global != nil:
		addr, ok := it.globalAddrs[c.Global]
		if !ok {
			return Val{}, fmt.Errorf("constant references unknown global @%s", c.Global.Name())
		}
		return ScalarVal(addr), nil
	case t.IsVector():
		lanes := make([]uint64, t.Lanes)
		for k, e := range c.Elems {
			ev, err := it.constVal(e)
			if err != nil {
				return Val{}, err
			}
			lanes[k] = ev.Scalar
		}
		return VectorVal(lanes), nil
	case t.IsStruct():
		fields := make([]Val, len(t.Fields))
		return Val{Fields: fields}, nil
	case c.Undef || c.Null:
		if t.IsInt() && t.Bits > 64 {
			return VectorVal(make([]uint64, (t.Bits+63)/64)), nil
		}
		return Val{}, nil
	case t.IsFP():
		return ScalarVal(c.FloatBits()), nil
	case t.IsInt():
		return ScalarVal(maskBits(uint64(c.Int), t.Bits)), nil
	case t.IsPointer():
		return ScalarVal(uint64(c.Int)), nil
	}
	return Val{}, fmt.Errorf("cannot evaluate constant of type %s", t)
}

func (it *Interpreter) eval(env map[ir.Value]Val, v ir.Value) (Val, error) {
	switch w := v.(type) {
	case *ir.Const:
		return it.constVal(w)
	case *ir.Global:
		return ScalarVal(it.globalAddrs[w]), nil
	case *ir.Function:
		return ScalarVal(it.funcAddrs[w]), nil
	case *ir.Param, *ir.Instruction:
		val, ok := env[v]
		if !ok {
			return Val{}, fmt.Errorf("%w: use of undefined value %s", ErrTrap, ir.ValueString(v))
		}
		return val, nil
	}
	return Val{}, fmt.Errorf("%w: cannot evaluate %s", ErrTrap, ir.ValueString(v))
}

// run executes one function body (or host implementation).
func (it *Interpreter) run(f *ir.Function, args []Val, depth int) (Val, error) {
	if depth > callDepthLimit {
		return Val{}, fmt.Errorf("%w: call depth limit", ErrTrap)
	}
	if f.IsDecl() {
		return it.runDecl(f, args)
	}

	env := map[ir.Value]Val{}
	for k, p := range f.Params() {
		if k < len(args) {
			env[p] = args[k]
		}
	}

	blk := f.Entry()
	var prev *ir.Block
	for {
		// Evaluate the leading phi cluster as a parallel copy against the
		// predecessor's environment.
		instrs := blk.Instructions()
		nphi := 0
		var phiVals []Val
		for _, in := range instrs {
			if in.Op() != ir.OpPhi {
				break
			}
			inc := in.IncomingForBlock(prev)
			if inc == nil {
				pname := "<entry>"
				if prev != nil {
					pname = prev.Name()
				}
				return Val{}, fmt.Errorf("%w: phi %s has no incoming for %%%s", ErrTrap, in, pname)
			}
			v, err := it.eval(env, inc)
			if err != nil {
				return Val{}, err
			}
			phiVals = append(phiVals, v)
			nphi++
		}
		for k := 0; k < nphi; k++ {
			it.define(env, f, instrs[k], phiVals[k])
		}

		var next *ir.Block
		for _, in := range instrs[nphi:] {
			it.steps++
			if it.steps > it.maxSteps {
				return Val{}, ErrSteps
			}
			if in.Op() == ir.OpPhi {
				return Val{}, fmt.Errorf("%w: phi not at block head: %s", ErrTrap, in)
			}
			if in.Op().IsTerminator() {
				switch in.Op() {
				case ir.OpRet:
					if in.NumOperands() == 0 {
						return Val{}, nil
					}
					return it.eval(env, in.Operand(0))
				case ir.OpBr:
					if !in.IsConditional() {
						next = in.Block(0)
					} else {
						c, err := it.eval(env, in.Cond())
						if err != nil {
							return Val{}, err
						}
						if c.Scalar&1 != 0 {
							next = in.Block(0)
						} else {
							next = in.Block(1)
						}
					}
				case ir.OpSwitch:
					sel, err := it.eval(env, in.Operand(0))
					if err != nil {
						return Val{}, err
					}
					next = in.Block(0)
					for k := 0; k < in.NumCases(); k++ {
						cv, err := it.constVal(in.CaseValue(k))
						if err != nil {
							return Val{}, err
						}
						if cv.Scalar == sel.Scalar {
							next = in.Block(k + 1)
							break
						}
					}
				case ir.OpUnreachable:
					return Val{}, fmt.Errorf("%w: reached unreachable in %s", ErrTrap, f.Name())
				default:
					return Val{}, fmt.Errorf("%w: cannot execute terminator %s", ErrTrap, in)
				}
				break
			}

			v, hasVal, err := it.evalInstr(env, f, in, depth)
			if err != nil {
				return Val{}, err
			}
			if hasVal {
				it.define(env, f, in, v)
			}
		}
		if next == nil {
			return Val{}, fmt.Errorf("%w: block %%%s fell through", ErrTrap, blk.Name())
		}
		prev, blk = blk, next
	}
}

// define binds an instruction result, applying the fault plan when armed.
func (it *Interpreter) define(env map[ir.Value]Val, f *ir.Function, in *ir.Instruction, v Val) {
	if p := it.fault; p != nil && !p.Fired && v.IsVector() &&
		in.Name() != "" && in.Name() == p.Value && f.Name() == p.Function {
		p.hits++
		occ := p.Occurrence
		if occ == 0 {
			occ = 1
		}
		if p.hits == occ {
			v = v.clone()
			v.Lanes[p.Lane] ^= p.Mask
			p.Fired = true
		}
	}
	env[in] = v
}

func (it *Interpreter) runDecl(f *ir.Function, args []Val) (Val, error) {
	name := f.Name()
	if hf, ok := it.host[name]; ok {
		it.trace = append(it.trace, HelperEvent{Name: name})
		v, err := hf(it, args)
		if errors.Is(err, ErrExit) {
			it.trace = append(it.trace, ExitEvent{})
		}
		return v, err
	}
	switch {
	case strings.HasPrefix(name, "ir.lifetime."):
		return Val{}, nil
	case strings.HasPrefix(name, "ir.bswap"):
		return bswapVal(f.RetType(), args[0]), nil
	}
	return Val{}, fmt.Errorf("%w: call to undefined function %s", ErrTrap, name)
}

func bswapVal(t *ir.Type, v Val) Val {
	if t.IsInt() && t.Bits > 64 {
		words := (t.Bits + 63) / 64
		out := make([]uint64, words)
		for k := 0; k < words; k++ {
			out[k] = bits.ReverseBytes64(v.Lanes[words-1-k])
		}
		return VectorVal(out)
	}
	swapped := bits.ReverseBytes64(v.Scalar)
	return ScalarVal(swapped >> uint(64-t.Bits))
}
