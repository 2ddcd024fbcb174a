package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func registerCoreIntrinsics(m map[intrinsicKey]intrinsicFunc) {
	m[intrinsicKey{"core", "assert"}] = (*Compiler).emitAssert
	m[intrinsicKey{"core", "panic"}] = (*Compiler).emitPanic
	m[intrinsicKey{"core", "exit"}] = (*Compiler).emitExit
}

// emitAssert branches to a failure block that reports on stderr and aborts.
func (c *Compiler) emitAssert(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 2)
	if err != nil {
		return value{}, err
	}
	cond := args[0]
	if !ir.Equal(cond.v.Type(), ir.I1) {
		return value{}, typeMismatch(ast.Bool(), cond.t, "core.assert expects a bool condition")
	}
	var msg ir.Value
	if len(args) == 2 {
		if !ir.IsPtr(args[1].v.Type()) {
			return value{}, typeMismatch(ast.StaticString(), args[1].t, "core.assert message must be a string")
		}
		msg = args[1].v
	}
	fc := c.fc
	fail := fc.fn.NewBlock("assert_fail")
	ok := fc.fn.NewBlock("assert_ok")
	fc.b.CondBr(cond.v, ok, fail)

	fc.b.SetInsertPoint(fail)
	if msg != nil {
		err = c.printf("stderr", "assertion failed: %s\n", msg)
	} else {
		err = c.printf("stderr", "assertion failed\n")
	}
	if err != nil {
		return value{}, err
	}
	if _, err := c.callRuntime("abort"); err != nil {
		return value{}, err
	}
	fc.b.Unreachable()

	fc.b.SetInsertPoint(ok)
	return voidValue(), nil
}

func (c *Compiler) emitPanic(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 0, 1)
	if err != nil {
		return value{}, err
	}
	if len(args) == 1 {
		spec, arg, err := c.formatArg(args[0])
		if err != nil {
			return value{}, err
		}
		if err := c.printf("stderr", "panic: "+spec+"\n", arg); err != nil {
			return value{}, err
		}
	} else if err := c.printf("stderr", "panic\n"); err != nil {
		return value{}, err
	}
	return voidValue(), c.exitWith(ir.NewInt(ir.I32, 1))
}

func (c *Compiler) emitExit(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	code := args[0]
	if !ir.IsInt(code.v.Type()) {
		return value{}, typeMismatch(ast.I32(), code.t, "core.exit expects an integer status")
	}
	return voidValue(), c.exitWith(resizeInt(c.fc.b, code.v, 32, !code.t.IsUnsigned()))
}

// exitWith calls exit and terminates the current block.
func (c *Compiler) exitWith(status ir.Value) error {
	if _, err := c.callRuntime("exit", status); err != nil {
		return err
	}
	c.fc.b.Unreachable()
	return nil
}
