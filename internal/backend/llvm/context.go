package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
	"zenc/internal/source"
	"zenc/internal/symbols"
)

// value is a compiled expression: the backend value plus the source type it
// carries. v is nil for void.
type value struct {
	v ir.Value
	t *ast.Type
}

func voidValue() value { return value{t: ast.Void()} }

func (v value) isVoid() bool { return v.v == nil || v.t.IsVoid() }

// Variable is a named stack slot.
type Variable struct {
	Name        string
	Slot        ir.Value
	Type        *ast.Type
	IRType      ir.Type
	Mutable     bool
	Initialized bool
	Span        source.Span
}

// SymbolKind tells what a module-level name denotes.
type SymbolKind uint8

const (
	SymType SymbolKind = iota + 1
	SymVariable
	SymFunction
	SymEnum
)

// Symbol is one module-level binding.
type Symbol struct {
	Kind   SymbolKind
	Struct *structInfo
	Enum   *enumInfo
	Func   *funcInfo
	Var    *Variable
}

type loopFrame struct {
	label string
	cont  *ir.Block
	brk   *ir.Block
}

// FunctionContext is everything that belongs to the function being compiled.
// Closures get a fresh context; the enclosing one is restored afterwards.
type FunctionContext struct {
	info *funcInfo
	fn   *ir.Func
	b    *ir.Builder
	ret  *ast.Type

	scopes *symbols.Table[*Variable]
	// vars holds parameters and function-level locals by name.
	vars map[string]*Variable

	loops  []loopFrame
	defers []*ast.Expr
	// generic maps synthetic keys like Result_Ok_Type to concrete payload types.
	generic map[string]*ast.Type

	runningDefers bool

	// inits lists variables initialised since the innermost open branch set
	// began; see branchInits.
	inits []*Variable
}

func newFunctionContext(fi *funcInfo) *FunctionContext {
	fc := &FunctionContext{
		info:    fi,
		fn:      fi.fn,
		b:       ir.NewBuilder(fi.fn),
		ret:     fi.ret,
		scopes:  symbols.NewTable[*Variable](),
		vars:    make(map[string]*Variable),
		generic: make(map[string]*ast.Type),
	}
	fc.scopes.Enter(symbols.ScopeFunction)
	return fc
}

// withFunction runs body with fc as the current function and restores the
// previous context afterwards, also on error.
func (c *Compiler) withFunction(fc *FunctionContext, body func() error) error {
	saved := c.fc
	c.fc = fc
	defer func() {
		c.fc = saved
		clear(fc.generic)
	}()
	return body()
}

func (fc *FunctionContext) enterScope() { fc.scopes.Enter(symbols.ScopeBlock) }

func (fc *FunctionContext) exitScope() { _ = fc.scopes.Exit() }

// atFunctionScope reports whether declarations land in the function scope
// rather than a nested block.
func (fc *FunctionContext) atFunctionScope() bool {
	cur := fc.scopes.Current()
	return cur != nil && cur.Kind == symbols.ScopeFunction
}

func (fc *FunctionContext) lookupVar(name string) (*Variable, bool) {
	if v, ok := fc.scopes.Find(name); ok {
		return v, true
	}
	v, ok := fc.vars[name]
	return v, ok
}

func (fc *FunctionContext) declare(v *Variable) error {
	if err := fc.scopes.Insert(v.Name, v); err != nil {
		return typeError("duplicate declaration of %q", v.Name)
	}
	if fc.atFunctionScope() {
		fc.vars[v.Name] = v
	}
	return nil
}

func (fc *FunctionContext) pushLoop(label string, cont, brk *ir.Block) {
	fc.loops = append(fc.loops, loopFrame{label: label, cont: cont, brk: brk})
}

func (fc *FunctionContext) popLoop() {
	if len(fc.loops) > 0 {
		fc.loops = fc.loops[:len(fc.loops)-1]
	}
}

// findLoop resolves a break/continue target, innermost first.
func (fc *FunctionContext) findLoop(label, stmt string) (loopFrame, error) {
	if len(fc.loops) == 0 {
		return loopFrame{}, typeError("%s outside of a loop", stmt)
	}
	if label == "" {
		return fc.loops[len(fc.loops)-1], nil
	}
	for i := len(fc.loops) - 1; i >= 0; i-- {
		if fc.loops[i].label == label {
			return fc.loops[i], nil
		}
	}
	return loopFrame{}, typeError("%s to unknown loop label %q", stmt, label)
}

func (fc *FunctionContext) setGeneric(key string, t *ast.Type) {
	if t.IsUnknown() {
		return
	}
	fc.generic[key] = t
}

func (fc *FunctionContext) getGeneric(key string) (*ast.Type, bool) {
	t, ok := fc.generic[key]
	return t, ok && !t.IsUnknown()
}

func genericKey(enum, variant string) string {
	return enum + "_" + variant + "_Type"
}

func varGenericKey(name, enum, variant string) string {
	return name + "_" + enum + "_" + variant + "_Type"
}

func (fc *FunctionContext) markInitialized(v *Variable) {
	if !v.Initialized {
		v.Initialized = true
		fc.inits = append(fc.inits, v)
	}
}

// branchInits tracks forward declarations initialised inside the arms of one
// conditional or match. Each arm starts from the state before the first arm;
// after the last arm a variable counts as initialised if any arm set it.
type branchInits struct {
	fc   *FunctionContext
	mark int
	set  []*Variable
}

func (fc *FunctionContext) beginBranches() *branchInits {
	return &branchInits{fc: fc, mark: len(fc.inits)}
}

// endArm rolls back the initialisations of the arm just compiled.
func (bi *branchInits) endArm() {
	fc := bi.fc
	for _, v := range fc.inits[bi.mark:] {
		v.Initialized = false
		bi.set = append(bi.set, v)
	}
	fc.inits = fc.inits[:bi.mark]
}

func (bi *branchInits) finish() {
	for _, v := range bi.set {
		bi.fc.markInitialized(v)
	}
}
