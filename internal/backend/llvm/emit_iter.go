package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// compileLoop lowers infinite and conditioned loops. continue jumps to the
// header (the body itself for infinite loops), break to loop_exit.
func (c *Compiler) compileLoop(l *ast.LoopStmt) error {
	fc := c.fc
	fn, b := fc.fn, fc.b
	body := fn.NewBlock("loop_body")
	exit := fn.NewBlock("loop_exit")
	header := body

	switch l.Kind {
	case ast.LoopInfinite:
		b.Br(body)
	case ast.LoopCondition:
		if l.Cond == nil {
			return internalError("conditioned loop without a condition")
		}
		header = fn.NewBlock("loop_header")
		b.Br(header)
		b.SetInsertPoint(header)
		cond, err := c.compileExpr(l.Cond)
		if err != nil {
			return err
		}
		if cond.isVoid() || !ir.Equal(cond.v.Type(), ir.I1) {
			return typeMismatch(ast.Bool(), cond.t, "loop condition must be a bool")
		}
		b.CondBr(cond.v, body, exit)
	default:
		return unsupported("loop kind %d", l.Kind)
	}

	b.SetInsertPoint(body)
	fc.pushLoop(l.Label, header, exit)
	fc.enterScope()
	err := c.compileStmts(l.Body)
	fc.exitScope()
	fc.popLoop()
	if err != nil {
		return err
	}
	if !b.Terminated() {
		b.Br(header)
	}
	b.SetInsertPoint(exit)
	return nil
}

// rangeIRType is the runtime form of a range: start, end and whether end is
// included.
var rangeIRType = &ir.StructType{Fields: []ir.Type{ir.I64, ir.I64, ir.I1}}

func (c *Compiler) isRange(e *ast.Expr) bool {
	if e.Kind == ast.ExprRange {
		return true
	}
	t := c.inferType(e)
	return t != nil && t.Kind == ast.TypeRange
}

// compileRange builds a range value. Bounds are widened to i64.
func (c *Compiler) compileRange(re *ast.RangeExpr) (value, error) {
	start, end, err := c.rangeBounds(re)
	if err != nil {
		return value{}, err
	}
	b := c.fc.b
	slot := b.Alloca(rangeIRType)
	b.Store(start, b.StructGEP(rangeIRType, slot, 0))
	b.Store(end, b.StructGEP(rangeIRType, slot, 1))
	b.Store(ir.NewBool(re.Inclusive), b.StructGEP(rangeIRType, slot, 2))
	return value{v: b.Load(rangeIRType, slot), t: ast.Range()}, nil
}

func (c *Compiler) rangeBounds(re *ast.RangeExpr) (start, end ir.Value, err error) {
	if re.Start == nil || re.End == nil {
		return nil, nil, typeError("range needs both bounds")
	}
	if start, err = c.rangeBound(re.Start, "start"); err != nil {
		return nil, nil, err
	}
	if end, err = c.rangeBound(re.End, "end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func (c *Compiler) rangeBound(e *ast.Expr, which string) (ir.Value, error) {
	v, err := c.compileExprWant(e, ast.I64())
	if err != nil {
		return nil, err
	}
	if v.isVoid() || !ir.IsInt(v.v.Type()) || ir.IntBits(v.v.Type()) == 1 {
		return nil, typeMismatch(ast.I64(), v.t, "range %s must be an integer", which)
	}
	return resizeInt(c.fc.b, v.v, 64, !v.t.IsUnsigned()), nil
}

// compileRangeLoop lowers `range.loop((i) { ... })`. The closure body is
// inlined: i counts from start up to end, break leaves the loop and continue
// moves on to the next value.
func (c *Compiler) compileRangeLoop(mc *ast.MethodCallExpr) (value, error) {
	if len(mc.Args) != 1 || mc.Args[0] == nil || mc.Args[0].Kind != ast.ExprClosure || mc.Args[0].Closure == nil {
		return value{}, typeError("range loop takes one closure")
	}
	cl := mc.Args[0].Closure
	if len(cl.Params) != 1 || cl.Params[0] == nil || cl.Body == nil {
		return value{}, typeError("range loop closure must take exactly one parameter")
	}
	param := cl.Params[0]
	pt := param.Type
	switch {
	case pt.IsUnknown():
		pt = ast.I64()
	case !pt.IsInteger():
		return value{}, typeMismatch(ast.I64(), pt, "range loop parameter %q", param.Name)
	}
	pit, err := c.toIRType(pt)
	if err != nil {
		return value{}, err
	}

	fc := c.fc
	fn, b := fc.fn, fc.b
	var start, end, inclusive ir.Value
	if re := mc.Receiver.Range; mc.Receiver.Kind == ast.ExprRange && re != nil {
		if start, end, err = c.rangeBounds(re); err != nil {
			return value{}, err
		}
		inclusive = ir.NewBool(re.Inclusive)
	} else {
		r, err := c.compileExpr(mc.Receiver)
		if err != nil {
			return value{}, err
		}
		if r.isVoid() || !ir.Equal(r.v.Type(), rangeIRType) {
			return value{}, typeMismatch(ast.Range(), r.t, "loop receiver")
		}
		tmp := b.Alloca(rangeIRType)
		b.Store(r.v, tmp)
		start = b.Load(ir.I64, b.StructGEP(rangeIRType, tmp, 0))
		end = b.Load(ir.I64, b.StructGEP(rangeIRType, tmp, 1))
		inclusive = b.Load(ir.I1, b.StructGEP(rangeIRType, tmp, 2))
	}

	counter := b.Alloca(ir.I64)
	b.Store(start, counter)
	header := fn.NewBlock("range_header")
	body := fn.NewBlock("range_body")
	step := fn.NewBlock("range_step")
	exit := fn.NewBlock("range_exit")
	b.Br(header)

	b.SetInsertPoint(header)
	cur := b.Load(ir.I64, counter)
	var cond ir.Value
	if k, ok := inclusive.(*ir.ConstInt); ok {
		pred := ir.PredSLT
		if k.V != 0 {
			pred = ir.PredSLE
		}
		cond = b.ICmp(pred, cur, end)
	} else {
		cond = b.Select(inclusive, b.ICmp(ir.PredSLE, cur, end), b.ICmp(ir.PredSLT, cur, end))
	}
	b.CondBr(cond, body, exit)

	b.SetInsertPoint(body)
	fc.pushLoop("", step, exit)
	fc.enterScope()
	slot := b.Alloca(pit)
	b.Store(resizeInt(b, cur, ir.IntBits(pit), pt.IsSigned()), slot)
	err = fc.declare(&Variable{Name: param.Name, Slot: slot, Type: pt, IRType: pit, Mutable: param.Mutable, Initialized: true})
	if err == nil {
		_, err = c.compileExpr(cl.Body)
	}
	fc.exitScope()
	fc.popLoop()
	if err != nil {
		return value{}, err
	}
	if !b.Terminated() {
		b.Br(step)
	}

	b.SetInsertPoint(step)
	next := b.Binary(ir.OpAdd, b.Load(ir.I64, counter), ir.NewInt(ir.I64, 1))
	b.Store(next, counter)
	b.Br(header)

	b.SetInsertPoint(exit)
	return voidValue(), nil
}
