package llvm

import (
	"zenc/internal/ast"
)

// intrinsicKey names one intrinsic as (module, function), for example
// (io, println). The module is the std module name, never an alias.
type intrinsicKey struct {
	module string
	name   string
}

type intrinsicFunc func(c *Compiler, call *ast.CallExpr) (value, error)

// intrinsicModules are the std modules whose calls never fall through to
// ordinary call resolution.
var intrinsicModules = map[string]bool{
	"io":       true,
	"math":     true,
	"core":     true,
	"compiler": true,
}

// builtinIntrinsics builds the dispatch table once per Compiler.
func builtinIntrinsics() map[intrinsicKey]intrinsicFunc {
	m := make(map[intrinsicKey]intrinsicFunc, 64)
	registerIOIntrinsics(m)
	registerMathIntrinsics(m)
	registerCoreIntrinsics(m)
	registerCompilerIntrinsics(m)
	return m
}

// resolveIntrinsicModule maps an import alias onto the module it names.
func (c *Compiler) resolveIntrinsicModule(mod string) string {
	if real, ok := c.imports[mod]; ok {
		return real
	}
	return mod
}

func (c *Compiler) lookupIntrinsic(mod, name string) (intrinsicFunc, bool) {
	if c.isLocal(mod) {
		return nil, false
	}
	fn, ok := c.intrinsics[intrinsicKey{module: c.resolveIntrinsicModule(mod), name: name}]
	return fn, ok
}

// isIntrinsicModule reports whether calls through mod must resolve in the
// intrinsic table.
func (c *Compiler) isIntrinsicModule(mod string) bool {
	if c.isLocal(mod) {
		return false
	}
	if _, ok := c.lookupStruct(mod); ok {
		return false
	}
	return intrinsicModules[c.resolveIntrinsicModule(mod)]
}

// intrinsicResult is the result type of an intrinsic as seen by inference.
func intrinsicResult(module, name string) *ast.Type {
	switch module {
	case "math":
		switch name {
		case "abs", "min", "max":
			return ast.Unknown()
		}
		return ast.F64()
	case "compiler":
		switch name {
		case "raw_allocate", "raw_reallocate", "raw_ptr_offset", "raw_ptr_cast", "null_ptr", "int_to_ptr", "get_payload":
			return ast.RawPtr(ast.U8())
		case "is_null":
			return ast.Bool()
		case "ptr_to_int", "discriminant":
			return ast.I64()
		}
	}
	return ast.Void()
}

// intrinsicArgs checks the arity of call and compiles its arguments.
func (c *Compiler) intrinsicArgs(call *ast.CallExpr, minArgs, maxArgs int) ([]value, error) {
	n := len(call.Args)
	if n < minArgs || n > maxArgs {
		if minArgs == maxArgs {
			return nil, typeError("%s expects %d argument(s), got %d", call.QualifiedName(), minArgs, n)
		}
		return nil, typeError("%s expects %d to %d arguments, got %d", call.QualifiedName(), minArgs, maxArgs, n)
	}
	vals := make([]value, n)
	for i, a := range call.Args {
		v, err := c.compileExpr(a)
		if err != nil {
			return nil, err
		}
		if v.isVoid() {
			return nil, typeError("argument %d of %s is void", i+1, call.QualifiedName())
		}
		vals[i] = v
	}
	return vals, nil
}
