package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

func (c *Compiler) compileBinary(be *ast.BinaryExpr) (value, error) {
	if be.Op == ast.OpConcat {
		return value{}, typeError("string concatenation with %s is not supported; use a string method with an explicit allocator", be.Op)
	}
	l, err := c.compileExpr(be.Left)
	if err != nil {
		return value{}, err
	}
	r, err := c.compileExpr(be.Right)
	if err != nil {
		return value{}, err
	}
	if l.isVoid() || r.isVoid() {
		return value{}, typeMismatch(l.t, r.t, "operator %s applied to a void value", be.Op)
	}
	lt, rt := l.v.Type(), r.v.Type()
	switch {
	case ir.IsPtr(lt) || ir.IsPtr(rt):
		return c.pointerBinary(be.Op, l, r)
	case !isNumericIR(lt) || !isNumericIR(rt):
		return value{}, typeMismatch(l.t, r.t, "operator %s needs numeric operands", be.Op)
	case be.Op == ast.OpMod && (ir.IsFloat(lt) || ir.IsFloat(rt)):
		return value{}, typeMismatch(ast.I64(), floatSide(l, r), "modulo requires integer operands")
	case ir.IsInt(lt) && ir.IsInt(rt):
		return c.intBinary(be.Op, l, r)
	}
	return c.floatBinary(be.Op, l, r)
}

func floatSide(l, r value) *ast.Type {
	if ir.IsFloat(l.v.Type()) {
		return l.t
	}
	return r.t
}

// intBinary widens both operands to the wider width (sign-extending signed
// operands, zero-extending unsigned ones and bool operands of && and ||)
// and applies op.
func (c *Compiler) intBinary(op ast.BinaryOp, l, r value) (value, error) {
	b := c.fc.b
	lb, rb := ir.IntBits(l.v.Type()), ir.IntBits(r.v.Type())
	width := max(lb, rb)
	boolLogic := op.IsLogical() && (lb == 1 || rb == 1)
	lv := resizeInt(b, l.v, width, !boolLogic && !l.t.IsUnsigned())
	rv := resizeInt(b, r.v, width, !boolLogic && !r.t.IsUnsigned())

	rtype := PromoteNumeric(l.t, r.t)
	if rtype.BitWidth() != width {
		rtype = intTypeOfWidth(width, !rtype.IsUnsigned())
	}
	unsigned := rtype.IsUnsigned()

	if op.IsComparison() {
		return value{v: b.ICmp(intPred(op, unsigned), lv, rv), t: ast.Bool()}, nil
	}
	var opc ir.Opcode
	switch op {
	case ast.OpAdd:
		opc = ir.OpAdd
	case ast.OpSub:
		opc = ir.OpSub
	case ast.OpMul:
		opc = ir.OpMul
	case ast.OpDiv:
		opc = pick(unsigned, ir.OpUDiv, ir.OpSDiv)
	case ast.OpMod:
		opc = pick(unsigned, ir.OpURem, ir.OpSRem)
	case ast.OpAnd:
		opc = ir.OpAnd
	case ast.OpOr:
		opc = ir.OpOr
	default:
		return value{}, typeError("operator %s is not defined on integers", op)
	}
	return value{v: b.Binary(opc, lv, rv), t: rtype}, nil
}

// floatBinary promotes an integer operand to f64 and a narrower float to the
// wider one.
func (c *Compiler) floatBinary(op ast.BinaryOp, l, r value) (value, error) {
	if op.IsLogical() {
		return value{}, typeMismatch(ast.Bool(), floatSide(l, r), "operator %s needs bool operands", op)
	}
	target := ast.F64()
	if ir.IsFloat(l.v.Type()) && ir.IsFloat(r.v.Type()) {
		target = PromoteNumeric(l.t, r.t)
		if !target.IsFloat() {
			target = ast.F64()
		}
	}
	lv, err := c.convertNumeric(l, target)
	if err != nil {
		return value{}, err
	}
	rv, err := c.convertNumeric(r, target)
	if err != nil {
		return value{}, err
	}
	b := c.fc.b
	if op.IsComparison() {
		return value{v: b.FCmp(floatPred(op), lv.v, rv.v), t: ast.Bool()}, nil
	}
	var opc ir.Opcode
	switch op {
	case ast.OpAdd:
		opc = ir.OpFAdd
	case ast.OpSub:
		opc = ir.OpFSub
	case ast.OpMul:
		opc = ir.OpFMul
	case ast.OpDiv:
		opc = ir.OpFDiv
	default:
		return value{}, typeError("operator %s is not defined on floats", op)
	}
	return value{v: b.Binary(opc, lv.v, rv.v), t: target}, nil
}

// pointerBinary handles operators with a pointer operand. Equality on
// strings compares contents; comparisons with null or between typed
// non-byte pointers compare addresses.
func (c *Compiler) pointerBinary(op ast.BinaryOp, l, r value) (value, error) {
	lp, rp := ir.IsPtr(l.v.Type()), ir.IsPtr(r.v.Type())
	switch op {
	case ast.OpEq, ast.OpNe:
		if !lp || !rp {
			return value{}, typeMismatch(l.t, r.t, "operator %s compares a pointer with a non-pointer", op)
		}
		if isNullConst(l.v) || isNullConst(r.v) || !isByteString(l.t) || !isByteString(r.t) {
			return value{v: c.fc.b.ICmp(intPred(op, true), l.v, r.v), t: ast.Bool()}, nil
		}
		eq, err := c.stringsEqual(l.v, r.v, op == ast.OpNe)
		if err != nil {
			return value{}, err
		}
		return value{v: eq, t: ast.Bool()}, nil
	case ast.OpAdd, ast.OpSub:
		return value{}, typeMismatch(l.t, r.t, "pointer arithmetic with %s is not allowed; use a pointer offset", op)
	}
	return value{}, typeMismatch(l.t, r.t, "operator %s is not defined on pointers", op)
}

func isNullConst(v ir.Value) bool {
	_, ok := v.(*ir.ConstNull)
	return ok
}

// isByteString reports strings and pointers to bytes or to unknown data.
func isByteString(t *ast.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case ast.TypeString, ast.TypeUnknown:
		return true
	case ast.TypePtr, ast.TypeMutPtr, ast.TypeRawPtr:
		return t.Elem.IsUnknown() || t.Elem.Kind == ast.TypeU8 || t.Elem.Kind == ast.TypeI8
	}
	return false
}

func intPred(op ast.BinaryOp, unsigned bool) ir.Pred {
	switch op {
	case ast.OpEq:
		return ir.PredEQ
	case ast.OpNe:
		return ir.PredNE
	case ast.OpLt:
		return pick(unsigned, ir.PredULT, ir.PredSLT)
	case ast.OpLe:
		return pick(unsigned, ir.PredULE, ir.PredSLE)
	case ast.OpGt:
		return pick(unsigned, ir.PredUGT, ir.PredSGT)
	case ast.OpGe:
		return pick(unsigned, ir.PredUGE, ir.PredSGE)
	}
	return ir.PredEQ
}

func floatPred(op ast.BinaryOp) ir.Pred {
	switch op {
	case ast.OpNe:
		return ir.PredONE
	case ast.OpLt:
		return ir.PredOLT
	case ast.OpLe:
		return ir.PredOLE
	case ast.OpGt:
		return ir.PredOGT
	case ast.OpGe:
		return ir.PredOGE
	}
	return ir.PredOEQ
}

func pick[T any](cond bool, yes, no T) T {
	if cond {
		return yes
	}
	return no
}

func intTypeOfWidth(width int, signed bool) *ast.Type {
	if width <= 1 {
		return ast.Bool()
	}
	if k, ok := intKinds[signed][width]; ok {
		return ast.Prim(k)
	}
	return ast.I64()
}

func (c *Compiler) compileUnary(ue *ast.UnaryExpr) (value, error) {
	v, err := c.compileExpr(ue.Operand)
	if err != nil {
		return value{}, err
	}
	if v.isVoid() {
		return value{}, typeMismatch(ast.I32(), v.t, "operator %s applied to a void value", ue.Op)
	}
	b := c.fc.b
	t := v.v.Type()
	switch ue.Op {
	case ast.OpNeg:
		switch {
		case ir.IsInt(t) && ir.IntBits(t) > 1:
			if ci, ok := v.v.(*ir.ConstInt); ok {
				return value{v: ir.NewInt(ci.Typ, -ci.V), t: v.t}, nil
			}
			return value{v: b.Binary(ir.OpSub, ir.Zero(t), v.v), t: v.t}, nil
		case ir.IsFloat(t):
			if cf, ok := v.v.(*ir.ConstFloat); ok {
				return value{v: ir.NewFloat(cf.Typ, -cf.V), t: v.t}, nil
			}
			return value{v: b.FNeg(v.v), t: v.t}, nil
		}
		return value{}, typeMismatch(ast.I32(), v.t, "cannot negate")
	case ast.OpNot:
		if ir.IsInt(t) {
			return value{v: b.Binary(ir.OpXor, v.v, ir.NewInt(t.(*ir.IntType), -1)), t: v.t}, nil
		}
		return value{}, typeMismatch(ast.Bool(), v.t, "operator ! needs a bool or integer")
	}
	return value{}, typeError("unknown unary operator %s", ue.Op)
}
