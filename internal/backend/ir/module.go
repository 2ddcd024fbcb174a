package ir

import (
	"fmt"
	"strconv"
)

// DefaultTriple is the only target the back end emits for.
const DefaultTriple = "x86_64-linux-gnu"

// Module is one compilation unit of backend IR.
type Module struct {
	Name    string
	Triple  string
	Structs []*StructType // named struct types, in registration order
	Globals []*Global
	Funcs   []*Func

	structIndex map[string]*StructType
	funcIndex   map[string]*Func
	globalIndex map[string]*Global
	strConsts   map[string]*Global
}

func NewModule(name string) *Module {
	return &Module{
		Name:        name,
		Triple:      DefaultTriple,
		structIndex: make(map[string]*StructType),
		funcIndex:   make(map[string]*Func),
		globalIndex: make(map[string]*Global),
		strConsts:   make(map[string]*Global),
	}
}

// NamedStruct returns the named struct type, creating an opaque one on first use.
func (m *Module) NamedStruct(name string) *StructType {
	if st, ok := m.structIndex[name]; ok {
		return st
	}
	st := &StructType{Name: name}
	m.structIndex[name] = st
	m.Structs = append(m.Structs, st)
	return st
}

// LookupStruct finds a named struct type.
func (m *Module) LookupStruct(name string) (*StructType, bool) {
	st, ok := m.structIndex[name]
	return st, ok
}

// Func finds a function by name.
func (m *Module) Func(name string) *Func {
	return m.funcIndex[name]
}

// NewFunc adds a function; it fails when the name is taken.
func (m *Module) NewFunc(name string, sig *FuncType, paramNames []string) (*Func, error) {
	if _, ok := m.funcIndex[name]; ok {
		return nil, fmt.Errorf("function %q already exists", name)
	}
	f := &Func{Name: name, Sig: sig, Module: m}
	for i, pt := range sig.Params {
		pn := "arg" + strconv.Itoa(i)
		if i < len(paramNames) && paramNames[i] != "" {
			pn = paramNames[i]
		}
		f.Params = append(f.Params, &Param{Name: pn, Typ: pt, Fn: f, Idx: i})
	}
	m.funcIndex[name] = f
	m.Funcs = append(m.Funcs, f)
	return f, nil
}

// DeclareExternal declares name with sig unless something by that name is
// already present, in which case the existing function is returned.
func (m *Module) DeclareExternal(name string, sig *FuncType) *Func {
	if f, ok := m.funcIndex[name]; ok {
		return f
	}
	f := &Func{Name: name, Sig: sig, Module: m}
	for i, pt := range sig.Params {
		f.Params = append(f.Params, &Param{Name: "arg" + strconv.Itoa(i), Typ: pt, Fn: f, Idx: i})
	}
	m.funcIndex[name] = f
	m.Funcs = append(m.Funcs, f)
	return f
}

// ExternalGlobal declares an external global variable such as @stderr.
func (m *Module) ExternalGlobal(name string, t Type) *Global {
	if g, ok := m.globalIndex[name]; ok {
		return g
	}
	g := &Global{Name: name, Typ: t, External: true}
	m.globalIndex[name] = g
	m.Globals = append(m.Globals, g)
	return g
}

// Global finds a global by name.
func (m *Module) Global(name string) *Global {
	return m.globalIndex[name]
}

// StringConst interns a NUL-terminated private string constant.
func (m *Module) StringConst(s string) *Global {
	if g, ok := m.strConsts[s]; ok {
		return g
	}
	data := make([]byte, 0, len(s)+1)
	data = append(data, s...)
	data = append(data, 0)
	g := &Global{
		Name:     ".str." + strconv.Itoa(len(m.strConsts)),
		Typ:      &ArrayType{Len: len(data), Elem: I8},
		Init:     data,
		Constant: true,
	}
	m.strConsts[s] = g
	m.globalIndex[g.Name] = g
	m.Globals = append(m.Globals, g)
	return g
}

// Verify runs Func.Verify over every defined function.
func (m *Module) Verify() error {
	for _, f := range m.Funcs {
		if err := f.Verify(); err != nil {
			return err
		}
	}
	return nil
}
