package llvm

import (
	"fmt"

	"zenc/internal/ast"
)

// compileClosure compiles the closure body as a top-level function named
// __closure_N and yields its address. Closures do not capture: the body sees
// its parameters, module functions and import aliases only.
func (c *Compiler) compileClosure(ce *ast.ClosureExpr) (value, error) {
	name := fmt.Sprintf("__closure_%d", closureSeq.Add(1))
	params := make([]*ast.Type, len(ce.Params))
	names := make([]string, len(ce.Params))
	mutable := make([]bool, len(ce.Params))
	for i, p := range ce.Params {
		if p.Type.IsUnknown() {
			return value{}, typeError("closure parameter %q needs a type", p.Name)
		}
		params[i], names[i], mutable[i] = p.Type, p.Name, p.Mutable
	}
	ret := ce.Ret
	infer := ret.IsUnknown()
	if infer {
		ret = ast.Void()
	}
	sig, err := c.funcSig(params, ret, false, false)
	if err != nil {
		return value{}, err
	}
	fn, err := c.mod.NewFunc(name, sig, names)
	if err != nil {
		return value{}, internalError("%v", err)
	}
	fn.Linkage = "internal"
	fi := &funcInfo{name: name, fn: fn, params: params, names: names, mutable: mutable, ret: ret}
	c.funcs[name] = fi
	c.tracePoint("closure:"+name, "")

	fc := newFunctionContext(fi)
	err = c.withFunction(fc, func() error {
		fc.b.SetInsertPoint(fn.Entry())
		if err := c.bindParams(fi); err != nil {
			return err
		}
		if err := c.bindImportMarkers(); err != nil {
			return err
		}
		if infer {
			if err := c.inferClosureResult(fi, ce.Body); err != nil {
				return err
			}
		}
		if ce.Body.Kind == ast.ExprBlock {
			return c.compileBody(ce.Body.Block)
		}
		return c.compileExprBody(ce.Body, infer)
	})
	if err != nil {
		return value{}, err
	}
	return value{v: fn, t: fi.astType()}, nil
}

// inferClosureResult fixes the result type of a closure declared without
// one. Parameters must already be bound.
func (c *Compiler) inferClosureResult(fi *funcInfo, body *ast.Expr) error {
	t := c.inferType(body)
	if t.IsUnknown() {
		// decided by the compiled body
		return nil
	}
	return c.setResult(fi, t)
}

func (c *Compiler) setResult(fi *funcInfo, t *ast.Type) error {
	rt, err := c.toIRType(t)
	if err != nil {
		return err
	}
	fi.ret = t
	fi.fn.Sig.Ret = rt
	c.fc.ret = t
	return nil
}

// compileExprBody compiles a closure whose body is a single expression.
func (c *Compiler) compileExprBody(body *ast.Expr, infer bool) error {
	fc := c.fc
	if !fc.ret.IsVoid() {
		if err := c.compileImplicitReturn(body); err != nil {
			return err
		}
		return c.finishFunction()
	}
	v, err := c.compileExpr(body)
	if err != nil {
		return err
	}
	if infer && !v.isVoid() && !fc.b.Terminated() {
		if err := c.setResult(fc.info, v.t); err != nil {
			return err
		}
		if err := c.runDefers(); err != nil {
			return err
		}
		fc.b.Ret(v.v)
	}
	return c.finishFunction()
}
