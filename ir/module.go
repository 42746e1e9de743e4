package ir

// Module is a translation unit: an ordered list of functions and globals.
type Module struct {
	name        string
	funcs       []*Function
	funcsByName map[string]*Function
	globals     []*Global
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{name: name, funcsByName: map[string]*Function{}}
}

func (m *Module) Name() string { return m.name }

// Functions returns the live function list in declaration order.
func (m *Module) Functions() []*Function { return m.funcs }

// Globals returns the live global list.
func (m *Module) Globals() []*Global { return m.globals }

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Function { return m.funcsByName[name] }

// NewFunction adds a function with the given signature. It starts as a
// declaration; adding a block makes it a definition.
func (m *Module) NewFunction(name string, ret *Type, params ...*Param) *Function {
	f := &Function{name: name, ret: ret, params: params, mod: m}
	for _, p := range params {
		p.fn = f
	}
	m.funcs = append(m.funcs, f)
	m.funcsByName[name] = f
	return f
}

// NewVarArgFunction adds a variadic function declaration.
func (m *Module) NewVarArgFunction(name string, ret *Type, params ...*Param) *Function {
	f := m.NewFunction(name, ret, params...)
	f.varArg = true
	return f
}

// Intrinsic returns the declaration of a host intrinsic with the given name,
// declaring it on first use.
func (m *Module) Intrinsic(name string, ret *Type, paramTypes ...*Type) *Function {
	if f := m.funcsByName[name]; f != nil {
		return f
	}
	params := make([]*Param, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = NewParam("", t)
	}
	return m.NewFunction(name, ret, params...)
}

// NewGlobal adds a module-level array of count elements of the given type.
// init may be nil (zero-filled) or hold up to count per-element constants.
func (m *Module) NewGlobal(name string, elem *Type, count int, init []*Const) *Global {
	g := &Global{name: name, elem: elem, count: count, init: init}
	m.globals = append(m.globals, g)
	return g
}
