package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func registerIOIntrinsics(m map[intrinsicKey]intrinsicFunc) {
	m[intrinsicKey{"io", "print"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitPrint(call, "", false)
	}
	m[intrinsicKey{"io", "println"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitPrint(call, "", true)
	}
	m[intrinsicKey{"io", "eprint"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitPrint(call, "stderr", false)
	}
	m[intrinsicKey{"io", "eprintln"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitPrint(call, "stderr", true)
	}
	m[intrinsicKey{"io", "print_int"}] = (*Compiler).emitPrintInt
	m[intrinsicKey{"io", "print_float"}] = (*Compiler).emitPrintFloat
}

// emitPrint lowers io.print and friends. stream is empty for stdout.
func (c *Compiler) emitPrint(call *ast.CallExpr, stream string, newline bool) (value, error) {
	minArgs := 1
	if newline {
		minArgs = 0
	}
	args, err := c.intrinsicArgs(call, minArgs, 1)
	if err != nil {
		return value{}, err
	}
	nl := ""
	if newline {
		nl = "\n"
	}
	if len(args) == 0 {
		return voidValue(), c.printf(stream, nl)
	}
	spec, arg, err := c.formatArg(args[0])
	if err != nil {
		return value{}, err
	}
	return voidValue(), c.printf(stream, spec+nl, arg)
}

func (c *Compiler) emitPrintInt(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	v := args[0]
	if !ir.IsInt(v.v.Type()) {
		return value{}, typeMismatch(ast.I64(), v.t, "io.print_int expects an integer")
	}
	spec, arg, err := c.formatArg(v)
	if err != nil {
		return value{}, err
	}
	return voidValue(), c.printf("", spec+"\n", arg)
}

func (c *Compiler) emitPrintFloat(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	v := args[0]
	if !isNumericIR(v.v.Type()) {
		return value{}, typeMismatch(ast.F64(), v.t, "io.print_float expects a number")
	}
	if v, err = c.convertNumeric(v, ast.F64()); err != nil {
		return value{}, err
	}
	return voidValue(), c.printf("", "%f\n", v.v)
}

// printf writes through printf, or fprintf when stream names a stdio global.
func (c *Compiler) printf(stream, format string, args ...ir.Value) error {
	fmtStr := c.mod.StringConst(format)
	if stream == "" {
		_, err := c.callRuntime("printf", append([]ir.Value{fmtStr}, args...)...)
		return err
	}
	f := c.stdStream(stream)
	_, err := c.callRuntime("fprintf", append([]ir.Value{f, fmtStr}, args...)...)
	return err
}
