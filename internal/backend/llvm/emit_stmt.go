package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func (c *Compiler) compileStmts(stmts []*ast.Stmt) error {
	for _, s := range stmts {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(s *ast.Stmt) error {
	if s == nil {
		return internalError("missing statement")
	}
	return withSpan(c.lowerStmt(s), s.Span)
}

func (c *Compiler) lowerStmt(s *ast.Stmt) error {
	fc := c.fc
	switch s.Kind {
	case ast.StmtExpr:
		if s.Expr == nil {
			return internalError("expression statement without an expression")
		}
		_, err := c.compileExpr(s.Expr)
		return err
	case ast.StmtReturn:
		return c.compileReturn(s.Expr)
	case ast.StmtVarDecl:
		if s.Var == nil {
			return internalError("declaration without a variable")
		}
		return c.compileVarDecl(s.Var)
	case ast.StmtAssign, ast.StmtPointerAssign:
		if s.Assign == nil || s.Assign.Value == nil {
			return internalError("assignment without a value")
		}
		if s.Assign.Target != nil && s.Assign.Target.Kind != ast.ExprIdent {
			return c.compileStoreThrough(s.Assign)
		}
		return c.compileAssign(s.Assign)
	case ast.StmtLoop:
		if s.Loop == nil {
			return internalError("loop without a body")
		}
		return c.compileLoop(s.Loop)
	case ast.StmtBreak:
		frame, err := fc.findLoop(s.Label, "break")
		if err != nil {
			return err
		}
		fc.b.Br(frame.brk)
		return nil
	case ast.StmtContinue:
		frame, err := fc.findLoop(s.Label, "continue")
		if err != nil {
			return err
		}
		fc.b.Br(frame.cont)
		return nil
	case ast.StmtDefer:
		if s.Expr == nil {
			return internalError("defer without an expression")
		}
		fc.defers = append(fc.defers, s.Expr)
		return nil
	case ast.StmtComptime:
		return c.compileStmts(s.Block)
	case ast.StmtImport:
		if s.Import == nil {
			return internalError("import without a path")
		}
		c.addImport(s.Import)
		return c.bindImportMarkers()
	}
	return unsupported("statement kind %s", s.Kind)
}

// compileVarDecl declares a local. `name = value` whose name resolves to an
// uninitialised forward declaration or a mutable variable in any enclosing
// scope stores to it instead. Any other name bound in the current scope is a
// duplicate; bindings in outer scopes are shadowed.
func (c *Compiler) compileVarDecl(vd *ast.VarDecl) error {
	fc := c.fc
	if vd.Init != nil && vd.Kind == ast.VarInferredImmutable {
		if existing, ok := fc.lookupVar(vd.Name); ok && (!existing.Initialized || existing.Mutable) {
			return c.storeVar(existing, vd.Init)
		}
	}
	if _, ok := fc.scopes.LookupCurrent(vd.Name); ok {
		return typeError("duplicate declaration of %q", vd.Name)
	}
	mutable := vd.Mutable || vd.Kind == ast.VarInferredMutable || vd.Kind == ast.VarExplicitMutable

	if vd.Init == nil {
		if vd.Type.IsUnknown() {
			return typeError("forward declaration of %q needs a type", vd.Name)
		}
		it, err := c.toIRType(vd.Type)
		if err != nil {
			return err
		}
		if ir.IsVoid(it) {
			return typeError("variable %q has type void", vd.Name)
		}
		slot := fc.b.Alloca(it)
		fc.b.Store(ir.Zero(it), slot)
		return fc.declare(&Variable{Name: vd.Name, Slot: slot, Type: vd.Type, IRType: it, Mutable: mutable})
	}

	var (
		v   value
		err error
	)
	if !vd.Type.IsUnknown() {
		if v, err = c.compileExprWant(vd.Init, vd.Type); err != nil {
			return err
		}
		if v, err = c.coerce(v, vd.Type); err != nil {
			return err
		}
	} else {
		inferred := c.inferType(vd.Init)
		want := inferred
		if inferred.IsUnknown() {
			want = nil
		}
		if v, err = c.compileExprWant(vd.Init, want); err != nil {
			return err
		}
		if !v.isVoid() {
			v.t = mergeTypes(v.t, inferred)
		}
	}
	if v.isVoid() {
		return typeError("cannot initialise %q with a void value", vd.Name)
	}
	it := v.v.Type()
	slot := fc.b.Alloca(it)
	fc.b.Store(v.v, slot)
	c.recordVarGenerics(vd.Name, v.t)
	return fc.declare(&Variable{Name: vd.Name, Slot: slot, Type: v.t, IRType: it, Mutable: mutable, Initialized: true})
}

// recordVarGenerics copies the payload types recorded while constructing an
// enum value into keys specific to the variable holding it.
func (c *Compiler) recordVarGenerics(name string, t *ast.Type) {
	ei, ok := c.enumOf(t)
	if !ok {
		return
	}
	fc := c.fc
	for _, v := range ei.variants {
		if v.Payload == nil {
			continue
		}
		pt := ast.Unknown()
		if ei.builtin && t.EnumName() == ei.name {
			pt = t.Arg(genericSlot(v.Name))
		}
		if !c.concrete(pt) {
			if g, ok := fc.getGeneric(genericKey(ei.name, v.Name)); ok {
				pt = g
			}
		}
		fc.setGeneric(varGenericKey(name, ei.name, v.Name), pt)
	}
}

// storeVar compiles init and stores it into v, marking v initialised.
func (c *Compiler) storeVar(v *Variable, init *ast.Expr) error {
	val, err := c.compileExprWant(init, v.Type)
	if err != nil {
		return err
	}
	if val, err = c.coerce(val, v.Type); err != nil {
		return err
	}
	if val.isVoid() || !ir.Equal(val.v.Type(), v.IRType) {
		return typeMismatch(v.Type, val.t, "assignment to %q", v.Name)
	}
	c.fc.b.Store(val.v, v.Slot)
	c.fc.markInitialized(v)
	return nil
}

// compileAssign handles `name = value`. The first assignment to a forward
// declaration initialises it; later ones need a mutable variable.
func (c *Compiler) compileAssign(a *ast.AssignStmt) error {
	name := a.Name
	if a.Target != nil {
		name = a.Target.Name
	}
	v, ok := c.fc.lookupVar(name)
	if !ok {
		return undeclaredVariable(name)
	}
	if v.Initialized && !v.Mutable {
		return typeError("cannot assign twice to immutable variable %q", name)
	}
	return c.storeVar(v, a.Value)
}

// compileStoreThrough handles stores through pointers, fields and indexes:
// ptr.val = x, s.field = x, arr[i] = x, ptr.val.field = x.
func (c *Compiler) compileStoreThrough(a *ast.AssignStmt) error {
	addr, t, err := c.lvalue(a.Target)
	if err != nil {
		return err
	}
	v, err := c.compileExprWant(a.Value, t)
	if err != nil {
		return err
	}
	if v, err = c.coerce(v, t); err != nil {
		return err
	}
	it, err := c.toIRType(t)
	if err != nil {
		return err
	}
	if v.isVoid() || !ir.Equal(v.v.Type(), it) {
		return typeMismatch(t, v.t, "store through %s", a.Target.Kind)
	}
	c.fc.b.Store(v.v, addr)
	return nil
}
