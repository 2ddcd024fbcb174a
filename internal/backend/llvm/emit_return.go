package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// compileReturn evaluates the result, runs the pending defers and returns.
func (c *Compiler) compileReturn(e *ast.Expr) error {
	fc := c.fc
	if fc.ret.IsVoid() {
		if e == nil {
			return c.emitVoidReturn()
		}
		v, err := c.compileExpr(e)
		if err != nil {
			return err
		}
		if v.isVoid() {
			return c.emitVoidReturn()
		}
		if !fc.info.isMain || !ir.IsInt(v.v.Type()) {
			return typeMismatch(ast.Void(), v.t, "return with a value in function %q", fc.info.name)
		}
		// main declared void still returns an exit status
		status := resizeInt(fc.b, v.v, 32, !v.t.IsUnsigned())
		if err := c.runDefers(); err != nil {
			return err
		}
		fc.b.Ret(status)
		return nil
	}
	if e == nil {
		return newError(ErrMissingReturn, "function %q must return %s", fc.info.name, fc.ret)
	}
	v, err := c.compileExprWant(e, fc.ret)
	if err != nil {
		return err
	}
	if v.isVoid() {
		return typeMismatch(fc.ret, v.t, "return value of %q", fc.info.name)
	}
	if v, err = c.coerce(v, fc.ret); err != nil {
		return err
	}
	if want := fc.fn.Sig.Ret; !ir.Equal(v.v.Type(), want) {
		return typeMismatch(fc.ret, v.t, "return value of %q", fc.info.name)
	}
	if err := c.runDefers(); err != nil {
		return err
	}
	fc.b.Ret(v.v)
	return nil
}

// runDefers emits every deferred expression of the current function, last
// registered first. A return inside a deferred expression does not run the
// defers again.
func (c *Compiler) runDefers() error {
	fc := c.fc
	if fc.runningDefers || len(fc.defers) == 0 {
		return nil
	}
	fc.runningDefers = true
	defer func() { fc.runningDefers = false }()
	for i := len(fc.defers) - 1; i >= 0; i-- {
		if _, err := c.compileExpr(fc.defers[i]); err != nil {
			return err
		}
	}
	return nil
}
