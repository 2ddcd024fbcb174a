package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func registerMathIntrinsics(m map[intrinsicKey]intrinsicFunc) {
	for _, name := range libmUnary {
		m[intrinsicKey{"math", name}] = libmCall(name, 1)
	}
	for _, name := range libmBinary {
		m[intrinsicKey{"math", name}] = libmCall(name, 2)
	}
	m[intrinsicKey{"math", "abs"}] = (*Compiler).emitAbs
	m[intrinsicKey{"math", "min"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitMinMax(call, true)
	}
	m[intrinsicKey{"math", "max"}] = func(c *Compiler, call *ast.CallExpr) (value, error) {
		return c.emitMinMax(call, false)
	}
}

// libmCall lowers math.<name> to the libm function of the same name. Every
// argument is converted to f64.
func libmCall(name string, arity int) intrinsicFunc {
	return func(c *Compiler, call *ast.CallExpr) (value, error) {
		args, err := c.intrinsicArgs(call, arity, arity)
		if err != nil {
			return value{}, err
		}
		vals := make([]ir.Value, arity)
		for i, a := range args {
			if !isNumericIR(a.v.Type()) {
				return value{}, typeMismatch(ast.F64(), a.t, "math.%s expects numbers", name)
			}
			f, err := c.convertNumeric(a, ast.F64())
			if err != nil {
				return value{}, err
			}
			vals[i] = f.v
		}
		r, err := c.callRuntime(name, vals...)
		if err != nil {
			return value{}, err
		}
		return value{v: r, t: ast.F64()}, nil
	}
}

func (c *Compiler) emitAbs(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	v := args[0]
	b := c.fc.b
	switch st := v.v.Type(); {
	case ir.IsFloat(st):
		f, err := c.convertNumeric(v, ast.F64())
		if err != nil {
			return value{}, err
		}
		r, err := c.callRuntime("fabs", f.v)
		if err != nil {
			return value{}, err
		}
		return c.convertNumeric(value{v: r, t: ast.F64()}, v.t)
	case ir.IsInt(st) && ir.IntBits(st) > 1:
		if v.t.IsUnsigned() {
			return v, nil
		}
		zero := ir.NewInt(st.(*ir.IntType), 0)
		neg := b.Binary(ir.OpSub, zero, v.v)
		isNeg := b.ICmp(ir.PredSLT, v.v, zero)
		return value{v: b.Select(isNeg, neg, v.v), t: v.t}, nil
	}
	return value{}, typeMismatch(ast.I64(), v.t, "math.abs expects a number")
}

func (c *Compiler) emitMinMax(call *ast.CallExpr, isMin bool) (value, error) {
	args, err := c.intrinsicArgs(call, 2, 2)
	if err != nil {
		return value{}, err
	}
	l, r := args[0], args[1]
	if !isNumericIR(l.v.Type()) || !isNumericIR(r.v.Type()) {
		return value{}, typeMismatch(l.t, r.t, "%s expects numbers", call.QualifiedName())
	}
	op := ast.OpGt
	if isMin {
		op = ast.OpLt
	}
	var cmp value
	if ir.IsInt(l.v.Type()) && ir.IsInt(r.v.Type()) {
		cmp, err = c.intBinary(op, l, r)
	} else {
		cmp, err = c.floatBinary(op, l, r)
	}
	if err != nil {
		return value{}, err
	}
	target := PromoteNumeric(l.t, r.t)
	if lc, err := c.coerce(l, target); err == nil {
		l = lc
	}
	if rc, err := c.coerce(r, target); err == nil {
		r = rc
	}
	if !ir.Equal(l.v.Type(), r.v.Type()) {
		return value{}, typeMismatch(l.t, r.t, "%s operands have different types", call.QualifiedName())
	}
	return value{v: c.fc.b.Select(cmp.v, l.v, r.v), t: target}, nil
}
