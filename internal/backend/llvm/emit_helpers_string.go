package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// formatArg returns the printf conversion for v and the argument to pass,
// applying the C default promotions.
func (c *Compiler) formatArg(v value) (string, ir.Value, error) {
	b := c.fc.b
	switch {
	case v.isVoid():
		return "", nil, typeMismatch(ast.StaticString(), v.t, "cannot format a void value")
	case v.t.Kind == ast.TypeString:
		return "%s", v.v, nil
	case v.t.IsPointer():
		if v.t.Elem != nil && (v.t.Elem.Kind == ast.TypeU8 || v.t.Elem.Kind == ast.TypeI8) {
			return "%s", v.v, nil
		}
		return "%p", v.v, nil
	case v.t.IsBool():
		return "%s", b.Select(v.v, c.mod.StringConst("true"), c.mod.StringConst("false")), nil
	case v.t.IsInteger():
		bits := v.t.BitWidth()
		switch {
		case bits == 64 && v.t.IsSigned():
			return "%lld", v.v, nil
		case bits == 64:
			return "%llu", v.v, nil
		case v.t.IsSigned():
			return "%d", widenInt(b, v.v, 32, true), nil
		default:
			return "%u", widenInt(b, v.v, 32, false), nil
		}
	case v.t.IsFloat():
		if v.t.Kind == ast.TypeF32 {
			return "%f", b.Cast(ir.OpFPExt, v.v, ir.F64), nil
		}
		return "%f", v.v, nil
	case v.t.IsUnknown():
		if ir.IsInt(v.v.Type()) {
			return "%d", widenInt(b, v.v, 32, true), nil
		}
	}
	return "", nil, typeMismatch(ast.StaticString(), v.t, "cannot format value")
}

// widenInt extends an integer value to bits when it is narrower.
func widenInt(b *ir.Builder, v ir.Value, bits int, signed bool) ir.Value {
	have := ir.IntBits(v.Type())
	if have >= bits {
		return v
	}
	if signed && have > 1 {
		return b.Cast(ir.OpSExt, v, ir.IntN(bits))
	}
	return b.Cast(ir.OpZExt, v, ir.IntN(bits))
}

// stringsEqual compares two byte strings through strcmp. The result is i1.
func (c *Compiler) stringsEqual(x, y ir.Value, negate bool) (ir.Value, error) {
	r, err := c.callRuntime("strcmp", x, y)
	if err != nil {
		return nil, err
	}
	pred := ir.PredEQ
	if negate {
		pred = ir.PredNE
	}
	return c.fc.b.ICmp(pred, r, ir.NewInt(ir.I32, 0)), nil
}

// valuesEqual emits an equality test between a scrutinee and a pattern
// literal, converting the literal to the scrutinee's representation.
func (c *Compiler) valuesEqual(scrut, lit value) (ir.Value, error) {
	b := c.fc.b
	st := scrut.v.Type()
	switch {
	case ir.IsPtr(st) && ir.IsPtr(lit.v.Type()):
		return c.stringsEqual(scrut.v, lit.v, false)
	case ir.IsInt(st) && ir.IsInt(lit.v.Type()):
		return b.ICmp(ir.PredEQ, scrut.v, resizeInt(b, lit.v, ir.IntBits(st), lit.t.IsSigned() || lit.t.IsUnknown())), nil
	case ir.IsFloat(st) && (ir.IsFloat(lit.v.Type()) || ir.IsInt(lit.v.Type())):
		lv, err := c.convertNumeric(lit, scrut.t)
		if err != nil {
			return nil, err
		}
		return b.FCmp(ir.PredOEQ, scrut.v, lv.v), nil
	}
	return nil, typeMismatch(scrut.t, lit.t, "pattern literal does not match the scrutinee")
}

// resizeInt sign- or zero-extends or truncates an integer to bits.
func resizeInt(b *ir.Builder, v ir.Value, bits int, signed bool) ir.Value {
	have := ir.IntBits(v.Type())
	switch {
	case have == bits:
		return v
	case have > bits:
		if ci, ok := v.(*ir.ConstInt); ok {
			return ir.NewInt(ir.IntN(bits), ci.V)
		}
		return b.Cast(ir.OpTrunc, v, ir.IntN(bits))
	case signed && have > 1:
		if ci, ok := v.(*ir.ConstInt); ok {
			return ir.NewInt(ir.IntN(bits), ci.V)
		}
		return b.Cast(ir.OpSExt, v, ir.IntN(bits))
	default:
		if ci, ok := v.(*ir.ConstInt); ok {
			return ir.NewInt(ir.IntN(bits), int64(uint64(ci.V)&(1<<uint(have)-1)))
		}
		return b.Cast(ir.OpZExt, v, ir.IntN(bits))
	}
}
