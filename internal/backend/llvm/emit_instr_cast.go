package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func (c *Compiler) compileCast(ce *ast.CastExpr) (value, error) {
	v, err := c.compileExpr(ce.Value)
	if err != nil {
		return value{}, err
	}
	return c.castValue(v, ce.Target)
}

// castValue performs an explicit conversion.
func (c *Compiler) castValue(v value, to *ast.Type) (value, error) {
	if v.isVoid() {
		return value{}, typeMismatch(to, v.t, "cannot cast a void value")
	}
	dt, err := c.toIRType(to)
	if err != nil {
		return value{}, err
	}
	b := c.fc.b
	st := v.v.Type()
	switch {
	case to.IsBool() && ir.IsInt(st) && ir.IntBits(st) > 1:
		return value{v: b.ICmp(ir.PredNE, v.v, ir.NewInt(st.(*ir.IntType), 0)), t: ast.Bool()}, nil
	case to.IsBool() && ir.IsFloat(st):
		return value{v: b.FCmp(ir.PredONE, v.v, ir.Zero(st)), t: ast.Bool()}, nil
	case ir.Equal(st, dt):
		return value{v: v.v, t: to}, nil
	case isNumericIR(st) && isNumericIR(dt):
		return c.convertNumeric(v, to)
	case ir.IsPtr(st) && ir.IsInt(dt):
		return value{v: b.Cast(ir.OpPtrToInt, v.v, dt), t: to}, nil
	case ir.IsInt(st) && ir.IsPtr(dt):
		wide := resizeInt(b, v.v, 64, v.t.IsSigned())
		return value{v: b.Cast(ir.OpIntToPtr, wide, ir.Ptr), t: to}, nil
	}
	return value{}, typeMismatch(to, v.t, "invalid cast")
}

// coerce applies the implicit conversions allowed at assignments, calls,
// returns and match arms: integer resizing, int to float, float resizing and
// pointer to pointer.
func (c *Compiler) coerce(v value, to *ast.Type) (value, error) {
	if to.IsUnknown() {
		return v, nil
	}
	if v.isVoid() {
		if to.IsVoid() {
			return v, nil
		}
		return value{}, typeMismatch(to, v.t, "expected a value")
	}
	if to.IsVoid() {
		return value{}, typeMismatch(to, v.t, "unexpected value")
	}
	dt, err := c.toIRType(to)
	if err != nil {
		return value{}, err
	}
	st := v.v.Type()
	switch {
	case ir.Equal(st, dt):
		return value{v: v.v, t: mergeTypes(to, v.t)}, nil
	case ir.IsInt(st) && ir.IsInt(dt):
		if ir.IntBits(dt) == 1 {
			return value{}, typeMismatch(to, v.t, "integer used as bool")
		}
		return c.convertNumeric(v, to)
	case ir.IsInt(st) && ir.IsFloat(dt), ir.IsFloat(st) && ir.IsFloat(dt):
		return c.convertNumeric(v, to)
	}
	return value{}, typeMismatch(to, v.t, "incompatible types")
}

func isNumericIR(t ir.Type) bool { return ir.IsInt(t) || ir.IsFloat(t) }

// convertNumeric converts between integer and float representations.
// Constants are folded.
func (c *Compiler) convertNumeric(v value, to *ast.Type) (value, error) {
	dt, err := c.toIRType(to)
	if err != nil {
		return value{}, err
	}
	b := c.fc.b
	st := v.v.Type()
	signed := v.t.IsSigned() || v.t.IsUnknown()
	switch {
	case ir.IsInt(st) && ir.IsInt(dt):
		return value{v: resizeInt(b, v.v, ir.IntBits(dt), signed), t: to}, nil
	case ir.IsInt(st) && ir.IsFloat(dt):
		ft := dt.(*ir.FloatType)
		if ci, ok := v.v.(*ir.ConstInt); ok {
			if ir.IntBits(st) == 1 {
				return value{v: ir.NewFloat(ft, float64(ci.V&1)), t: to}, nil
			}
			if signed {
				return value{v: ir.NewFloat(ft, float64(ci.V)), t: to}, nil
			}
			return value{v: ir.NewFloat(ft, float64(uint64(ci.V))), t: to}, nil
		}
		op := ir.OpSIToFP
		if !signed {
			op = ir.OpUIToFP
		}
		return value{v: b.Cast(op, v.v, dt), t: to}, nil
	case ir.IsFloat(st) && ir.IsInt(dt):
		op := ir.OpFPToSI
		if to.IsUnsigned() {
			op = ir.OpFPToUI
		}
		return value{v: b.Cast(op, v.v, dt), t: to}, nil
	case ir.IsFloat(st) && ir.IsFloat(dt):
		sb, db := ir.FloatBits(st), ir.FloatBits(dt)
		if cf, ok := v.v.(*ir.ConstFloat); ok {
			return value{v: ir.NewFloat(dt.(*ir.FloatType), cf.V), t: to}, nil
		}
		switch {
		case sb < db:
			return value{v: b.Cast(ir.OpFPExt, v.v, dt), t: to}, nil
		case sb > db:
			return value{v: b.Cast(ir.OpFPTrunc, v.v, dt), t: to}, nil
		}
		return value{v: v.v, t: to}, nil
	}
	return value{}, typeMismatch(to, v.t, "not a numeric conversion")
}

// mergeTypes returns a with every unknown part filled in from b.
func mergeTypes(a, b *ast.Type) *ast.Type {
	if a.IsUnknown() {
		return b
	}
	if b == nil || a.Kind != b.Kind || a.Name != b.Name {
		return a
	}
	if len(a.Args) != len(b.Args) && len(a.Args) != 0 {
		return a
	}
	out := a.Clone()
	if len(out.Args) == 0 && len(b.Args) > 0 {
		out.Args = make([]*ast.Type, len(b.Args))
		copy(out.Args, b.Args)
		return out
	}
	for i := range out.Args {
		out.Args[i] = mergeTypes(out.Args[i], b.Args[i])
	}
	if out.Elem != nil || b.Elem != nil {
		out.Elem = mergeTypes(out.Elem, b.Elem)
	}
	return out
}
