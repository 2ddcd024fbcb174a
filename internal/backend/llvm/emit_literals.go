package llvm

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func (c *Compiler) compileLiteral(lit *ast.Literal, kind ast.ExprKind) (value, error) {
	switch kind {
	case ast.ExprInt:
		t := ast.Prim(lit.Type)
		if !t.IsInteger() {
			t = ast.I32()
		}
		return value{v: ir.NewInt(ir.IntN(t.BitWidth()), lit.Int), t: t}, nil
	case ast.ExprFloat:
		if lit.Type == ast.TypeF32 {
			return value{v: ir.NewFloat(ir.F32, lit.Float), t: ast.F32()}, nil
		}
		return value{v: ir.NewFloat(ir.F64, lit.Float), t: ast.F64()}, nil
	case ast.ExprBool:
		return value{v: ir.NewBool(lit.Bool), t: ast.Bool()}, nil
	case ast.ExprString:
		return c.stringValue(lit.Str), nil
	}
	return value{}, internalError("literal of kind %s", kind)
}

// stringValue interns s (NFC-normalised) and returns a pointer to it.
func (c *Compiler) stringValue(s string) value {
	return value{v: c.mod.StringConst(norm.NFC.String(s)), t: ast.StaticString()}
}

// compileIdent loads a variable. Names of functions evaluate to their
// address.
func (c *Compiler) compileIdent(name string) (value, error) {
	fc := c.fc
	if v, ok := fc.lookupVar(name); ok {
		if !v.Initialized {
			return value{}, typeError("variable %q is used before it is initialized", name)
		}
		return value{v: fc.b.Load(v.IRType, v.Slot), t: v.Type}, nil
	}
	if fi, ok := c.funcs[name]; ok {
		return value{v: fi.fn, t: fi.astType()}, nil
	}
	if mod, ok := c.imports[name]; ok {
		return value{v: ir.NewInt(ir.I64, importMarker(mod)), t: ast.I64()}, nil
	}
	return value{}, undeclaredVariable(name)
}

// compileInterp lowers string interpolation: snprintf measures the result,
// malloc provides the buffer, a second snprintf fills it.
func (c *Compiler) compileInterp(parts []*ast.Expr) (value, error) {
	var format strings.Builder
	var args []ir.Value
	for _, p := range parts {
		if p.Kind == ast.ExprString && p.Lit != nil {
			format.WriteString(strings.ReplaceAll(norm.NFC.String(p.Lit.Str), "%", "%%"))
			continue
		}
		v, err := c.compileExpr(p)
		if err != nil {
			return value{}, err
		}
		spec, arg, err := c.formatArg(v)
		if err != nil {
			return value{}, err
		}
		format.WriteString(spec)
		args = append(args, arg)
	}
	fmtPtr := c.mod.StringConst(format.String())
	b := c.fc.b

	measureArgs := append([]ir.Value{ir.Null(), ir.NewInt(ir.I64, 0), fmtPtr}, args...)
	n, err := c.callRuntime("snprintf", measureArgs...)
	if err != nil {
		return value{}, err
	}
	size := b.Binary(ir.OpAdd, b.Cast(ir.OpSExt, n, ir.I64), ir.NewInt(ir.I64, 1))
	buf, err := c.callRuntime("malloc", size)
	if err != nil {
		return value{}, err
	}
	fillArgs := append([]ir.Value{buf, size, fmtPtr}, args...)
	if _, err := c.callRuntime("snprintf", fillArgs...); err != nil {
		return value{}, err
	}
	return value{v: buf, t: ast.StaticString()}, nil
}
