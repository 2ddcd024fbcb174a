package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
	"zenc/internal/diag"
)

// declareFunction creates the signature of f under name. Declaring the same
// name again returns the existing handle.
func (c *Compiler) declareFunction(f *ast.Function, name string) (*funcInfo, error) {
	if fi, ok := c.funcs[name]; ok {
		return fi, nil
	}
	isMain := name == "main"
	params := make([]*ast.Type, len(f.Params))
	names := make([]string, len(f.Params))
	mutable := make([]bool, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
		names[i] = p.Name
		mutable[i] = p.Mutable
	}
	ret := f.ReturnType()
	sig, err := c.funcSig(params, ret, f.Varargs, isMain)
	if err != nil {
		return nil, err
	}
	fn, err := c.mod.NewFunc(name, sig, names)
	if err != nil {
		return nil, typeError("%v", err)
	}
	fi := &funcInfo{
		name:    name,
		fn:      fn,
		params:  params,
		names:   names,
		mutable: mutable,
		ret:     ret,
		varargs: f.Varargs,
		decl:    f,
		isMain:  isMain,
	}
	c.funcs[name] = fi
	_ = c.globals.Replace(name, Symbol{Kind: SymFunction, Func: fi})
	if isMain && ret.EnumName() == "Result" {
		c.warn(diag.CgnMainReturnsResult, f, "main returning %s is not fully supported; the tag is returned as the exit status", ret)
	}
	return fi, nil
}

// declareExternal declares a C function. A name that is already present is
// reused as is.
func (c *Compiler) declareExternal(ext *ast.ExternalFunction) (*funcInfo, error) {
	if fi, ok := c.funcs[ext.Name]; ok {
		return fi, nil
	}
	sig, err := c.funcSig(ext.Params, ext.Ret, ext.Varargs, false)
	if err != nil {
		return nil, err
	}
	fn := c.mod.DeclareExternal(ext.Name, sig)
	ret := ext.Ret
	if ret == nil {
		ret = ast.Void()
	}
	fi := &funcInfo{
		name:     ext.Name,
		fn:       fn,
		params:   ext.Params,
		ret:      ret,
		varargs:  ext.Varargs,
		external: true,
	}
	c.funcs[ext.Name] = fi
	_ = c.globals.Replace(ext.Name, Symbol{Kind: SymFunction, Func: fi})
	return fi, nil
}

// compileFunction compiles the body of a declared function.
func (c *Compiler) compileFunction(fi *funcInfo) error {
	if fi == nil || fi.decl == nil {
		return internalError("function compiled before it was declared")
	}
	if !fi.fn.IsDeclaration() {
		return typeError("duplicate definition of function %q", fi.name)
	}
	c.tracePoint("fn:"+fi.name, fi.astType().String())
	fc := newFunctionContext(fi)
	return c.withFunction(fc, func() error {
		fc.b.SetInsertPoint(fi.fn.Entry())
		if err := c.bindParams(fi); err != nil {
			return err
		}
		if err := c.bindImportMarkers(); err != nil {
			return err
		}
		return c.compileBody(fi.decl.Body)
	})
}

func (c *Compiler) bindParams(fi *funcInfo) error {
	fc := c.fc
	for i, p := range fi.fn.Params {
		slot := fc.b.Alloca(p.Typ)
		fc.b.Store(p, slot)
		v := &Variable{
			Name:        fi.names[i],
			Slot:        slot,
			Type:        fi.params[i],
			IRType:      p.Typ,
			Mutable:     i < len(fi.mutable) && fi.mutable[i],
			Initialized: true,
		}
		if err := fc.declare(v); err != nil {
			return err
		}
	}
	return nil
}

// bindImportMarkers gives every import alias an i64 local holding the
// marker of the module it names.
func (c *Compiler) bindImportMarkers() error {
	fc := c.fc
	for _, alias := range c.importList {
		if fc.scopes.ExistsInCurrentScope(alias) {
			continue
		}
		slot := fc.b.Alloca(ir.I64)
		fc.b.Store(ir.NewInt(ir.I64, importMarker(c.imports[alias])), slot)
		if err := fc.declare(&Variable{Name: alias, Slot: slot, Type: ast.I64(), IRType: ir.I64, Initialized: true}); err != nil {
			return err
		}
	}
	return nil
}

// compileBody compiles the statements of the current function and applies the
// implicit-return rule to the last one.
func (c *Compiler) compileBody(body []*ast.Stmt) error {
	fc := c.fc
	for i, s := range body {
		if i == len(body)-1 && !fc.ret.IsVoid() {
			if e := implicitReturnExpr(s); e != nil {
				if s.Kind == ast.StmtComptime {
					if err := c.compileStmts(s.Block[:len(s.Block)-1]); err != nil {
						return withSpan(err, s.Span)
					}
				}
				if err := c.compileImplicitReturn(e); err != nil {
					return withSpan(err, s.Span)
				}
				continue
			}
		}
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return c.finishFunction()
}

// implicitReturnExpr returns the trailing expression of s when s is a bare
// expression statement or a comptime block ending in one.
func implicitReturnExpr(s *ast.Stmt) *ast.Expr {
	switch s.Kind {
	case ast.StmtExpr:
		return s.Expr
	case ast.StmtComptime:
		if n := len(s.Block); n > 0 && s.Block[n-1].Kind == ast.StmtExpr {
			return s.Block[n-1].Expr
		}
	}
	return nil
}

func (c *Compiler) compileImplicitReturn(e *ast.Expr) error {
	fc := c.fc
	v, err := c.compileExprWant(e, fc.ret)
	if err != nil {
		return err
	}
	if fc.b.Terminated() || c.inDeadBlock() {
		return nil
	}
	if v.isVoid() {
		return newError(ErrMissingReturn, "function %q must return %s", fc.info.name, fc.ret)
	}
	v, err = c.coerce(v, fc.ret)
	if err != nil {
		return err
	}
	if err := c.runDefers(); err != nil {
		return err
	}
	fc.b.Ret(v.v)
	return nil
}

// finishFunction terminates the final block and seals blocks nothing can
// reach.
func (c *Compiler) finishFunction() error {
	fc := c.fc
	fn := fc.fn
	preds := predecessors(fn)
	cur := fc.b.Block()
	if cur != nil && !cur.Terminated() {
		switch {
		case cur != fn.Entry() && preds[cur] == 0:
			fc.b.Unreachable()
		case fc.ret.IsVoid():
			if err := c.emitVoidReturn(); err != nil {
				return err
			}
		default:
			return newError(ErrMissingReturn, "missing return statement in function %q returning %s", fc.info.name, fc.ret)
		}
	}
	for _, blk := range fn.Blocks {
		if !blk.Terminated() {
			fc.b.SetInsertPoint(blk)
			fc.b.Unreachable()
		}
	}
	return nil
}

// emitVoidReturn runs pending defers and returns from a void function; main
// returns 0 instead.
func (c *Compiler) emitVoidReturn() error {
	if err := c.runDefers(); err != nil {
		return err
	}
	if c.fc.info.isMain {
		c.fc.b.Ret(ir.NewInt(ir.I32, 0))
		return nil
	}
	if !ir.IsVoid(c.fc.fn.Sig.Ret) {
		c.fc.b.Ret(ir.Zero(c.fc.fn.Sig.Ret))
		return nil
	}
	c.fc.b.RetVoid()
	return nil
}

// inDeadBlock reports whether the insertion block can never execute: it is
// not the entry and nothing branches to it.
func (c *Compiler) inDeadBlock() bool {
	cur := c.fc.b.Block()
	if cur == nil || cur == c.fc.fn.Entry() {
		return false
	}
	return predecessors(c.fc.fn)[cur] == 0
}

func predecessors(fn *ir.Func) map[*ir.Block]int {
	preds := make(map[*ir.Block]int, len(fn.Blocks))
	for _, b := range fn.Blocks {
		for _, s := range b.Successors() {
			preds[s]++
		}
	}
	return preds
}
