package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Value is anything an instruction can take as an operand: instructions,
// constants, function parameters, globals, function symbols, basic-block
// labels, inline-asm literals and metadata.
type Value interface {
	Type() *Type
	// valueString renders the value for diagnostics; see ValueString.
	valueString() string
}

// Const is a constant value: an integer, a float, undef, a null pointer or a
// vector of constants.
type Const struct {
	Typ   *Type
	Int   int64   // integer payload, sign-extended to 64 bits
	Float float64 // float/double payload
	Undef bool
	Null  bool
	Elems []*Const // vector lanes
	// Global makes the constant the address of a module global.
	Global *Global
}

// ConstInt returns an integer constant of the given type.
func ConstInt(t *Type, v int64) *Const {
	return &Const{Typ: t, Int: v}
}

// ConstFloat returns a float or double constant.
func ConstFloat(t *Type, v float64) *Const {
	return &Const{Typ: t, Float: v}
}

// ConstNull returns the null pointer constant.
func ConstNull() *Const {
	return &Const{Typ: Ptr, Null: true}
}

// ConstGlobalAddr returns the address of a module global as a constant.
func ConstGlobalAddr(g *Global) *Const {
	return &Const{Typ: Ptr, Global: g}
}

// Undefined returns the undef constant of the given type.
func Undefined(t *Type) *Const {
	return &Const{Typ: t, Undef: true}
}

// Splat returns the vector constant with the given lane count whose lanes all
// hold c.
func Splat(c *Const, lanes int) *Const {
	elems := make([]*Const, lanes)
	for i := range elems {
		elems[i] = c
	}
	return &Const{Typ: VectorOf(c.Typ, lanes), Elems: elems}
}

// ConstVector returns a vector constant over the given lanes. All lanes must
// share one type.
func ConstVector(elems []*Const) *Const {
	return &Const{Typ: VectorOf(elems[0].Typ, len(elems)), Elems: elems}
}

func (c *Const) Type() *Type { return c.Typ }

func (c *Const) valueString() string {
	switch {
	case c.Undef:
		return "undef"
	case c.Null:
		return "null"
	case c.Global != nil:
		return "@" + c.Global.name
	case c.Typ.IsVector():
		return "<" + c.Typ.Elem.String() + " x" + strconv.Itoa(c.Typ.Lanes) + " const>"
	case c.Typ.IsFP():
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	default:
		return strconv.FormatInt(c.Int, 10)
	}
}

// FloatBits returns the payload of a float/double constant as raw bits of the
// right width.
func (c *Const) FloatBits() uint64 {
	if c.Typ.IsFloat() {
		return uint64(math.Float32bits(float32(c.Float)))
	}
	return math.Float64bits(c.Float)
}

// Param is a function parameter.
type Param struct {
	name string
	typ  *Type
	fn   *Function
}

// NewParam returns a parameter to pass to Module.NewFunction.
func NewParam(name string, typ *Type) *Param {
	return &Param{name: name, typ: typ}
}

func (p *Param) Type() *Type         { return p.typ }
func (p *Param) Name() string        { return p.name }
func (p *Param) Parent() *Function   { return p.fn }
func (p *Param) valueString() string { return "%" + p.name }

// Global is a module-level array allocation. Its value is the address of the
// first element.
type Global struct {
	name  string
	elem  *Type
	count int
	init  []*Const // nil or per-element initialisers; zero-filled otherwise
}

func (g *Global) Type() *Type         { return Ptr }
func (g *Global) Name() string        { return g.name }
func (g *Global) Elem() *Type         { return g.elem }
func (g *Global) Count() int          { return g.count }
func (g *Global) Init() []*Const      { return g.init }
func (g *Global) valueString() string { return "@" + g.name }

// InlineAsm is an inline-assembly literal used as a call target.
type InlineAsm struct {
	Asm         string
	Constraints string
	SideEffect  bool
}

func (a *InlineAsm) Type() *Type         { return Ptr }
func (a *InlineAsm) valueString() string { return fmt.Sprintf("asm %q", a.Asm) }

// MetadataValue is an opaque metadata operand.
type MetadataValue struct {
	name string
}

// NewMetadata returns a named metadata value.
func NewMetadata(name string) *MetadataValue { return &MetadataValue{name: name} }

func (m *MetadataValue) Type() *Type         { return Metadata }
func (m *MetadataValue) valueString() string { return "!" + m.name }

// ValueString renders a value for diagnostics.
func ValueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.valueString()
}
