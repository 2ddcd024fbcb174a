package llvm

import (
	"zenc/internal/backend/ir"
)

type builtinDecl struct {
	name     string
	ret      ir.Type
	params   []ir.Type
	variadic bool
}

// runtimeDecls lists the C library functions generated code may call. They
// are declared in the module on first use only.
func runtimeDecls() []builtinDecl {
	p, i32, i64, f64 := ir.Ptr, ir.I32, ir.I64, ir.F64
	decls := []builtinDecl{
		{name: "printf", ret: i32, params: []ir.Type{p}, variadic: true},
		{name: "fprintf", ret: i32, params: []ir.Type{p, p}, variadic: true},
		{name: "snprintf", ret: i32, params: []ir.Type{p, i64, p}, variadic: true},
		{name: "sprintf", ret: i32, params: []ir.Type{p, p}, variadic: true},
		{name: "puts", ret: i32, params: []ir.Type{p}},
		{name: "putchar", ret: i32, params: []ir.Type{i32}},
		{name: "fgets", ret: p, params: []ir.Type{p, i32, p}},
		{name: "fopen", ret: p, params: []ir.Type{p, p}},
		{name: "fclose", ret: i32, params: []ir.Type{p}},
		{name: "fseek", ret: i32, params: []ir.Type{p, i64, i32}},
		{name: "ftell", ret: i64, params: []ir.Type{p}},
		{name: "fread", ret: i64, params: []ir.Type{p, i64, i64, p}},
		{name: "fwrite", ret: i64, params: []ir.Type{p, i64, i64, p}},
		{name: "malloc", ret: p, params: []ir.Type{i64}},
		{name: "calloc", ret: p, params: []ir.Type{i64, i64}},
		{name: "realloc", ret: p, params: []ir.Type{p, i64}},
		{name: "free", ret: ir.Void, params: []ir.Type{p}},
		{name: "memset", ret: p, params: []ir.Type{p, i32, i64}},
		{name: "memcpy", ret: p, params: []ir.Type{p, p, i64}},
		{name: "memmove", ret: p, params: []ir.Type{p, p, i64}},
		{name: "memcmp", ret: i32, params: []ir.Type{p, p, i64}},
		{name: "strlen", ret: i64, params: []ir.Type{p}},
		{name: "strcmp", ret: i32, params: []ir.Type{p, p}},
		{name: "access", ret: i32, params: []ir.Type{p, i32}},
		{name: "unlink", ret: i32, params: []ir.Type{p}},
		{name: "mkdir", ret: i32, params: []ir.Type{p, i32}},
		{name: "exit", ret: ir.Void, params: []ir.Type{i32}},
		{name: "abort", ret: ir.Void},
	}
	for _, fn := range libmUnary {
		decls = append(decls, builtinDecl{name: fn, ret: f64, params: []ir.Type{f64}})
	}
	for _, fn := range libmBinary {
		decls = append(decls, builtinDecl{name: fn, ret: f64, params: []ir.Type{f64, f64}})
	}
	return decls
}

var (
	libmUnary  = []string{"sqrt", "sin", "cos", "tan", "asin", "acos", "atan", "exp", "log", "log10", "floor", "ceil", "round", "fabs"}
	libmBinary = []string{"pow", "atan2", "fmod", "hypot"}
)

var runtimeSigs = func() map[string]*ir.FuncType {
	decls := runtimeDecls()
	m := make(map[string]*ir.FuncType, len(decls))
	for _, d := range decls {
		m[d.name] = &ir.FuncType{Ret: d.ret, Params: d.params, Variadic: d.variadic}
	}
	return m
}()

// runtimeFunc declares a C library function on first use.
func (c *Compiler) runtimeFunc(name string) (*ir.Func, error) {
	sig, ok := runtimeSigs[name]
	if !ok {
		return nil, internalError("unknown runtime function %q", name)
	}
	return c.mod.DeclareExternal(name, sig), nil
}

// callRuntime declares name if needed and calls it.
func (c *Compiler) callRuntime(name string, args ...ir.Value) (ir.Value, error) {
	fn, err := c.runtimeFunc(name)
	if err != nil {
		return nil, err
	}
	return c.fc.b.Call(fn, fn.Sig, args...), nil
}

// stdStream loads one of the C stdio globals (stdin, stdout, stderr).
func (c *Compiler) stdStream(name string) ir.Value {
	g := c.mod.ExternalGlobal(name, ir.Ptr)
	return c.fc.b.Load(ir.Ptr, g)
}
