package llvm

import (
	"zenc/internal/ast"
)

// inferType estimates the source type of e without emitting code. It returns
// Unknown when the type depends on something only compilation reveals.
func (c *Compiler) inferType(e *ast.Expr) *ast.Type {
	if e == nil || malformed(e) {
		return ast.Unknown()
	}
	switch e.Kind {
	case ast.ExprInt:
		if e.Lit.Type == ast.TypeUnknown {
			return ast.I32()
		}
		return ast.Prim(e.Lit.Type)
	case ast.ExprFloat:
		if e.Lit.Type == ast.TypeF32 {
			return ast.F32()
		}
		return ast.F64()
	case ast.ExprBool:
		return ast.Bool()
	case ast.ExprString, ast.ExprInterp:
		return ast.StaticString()
	case ast.ExprUnit:
		return ast.Void()
	case ast.ExprIdent:
		if c.fc != nil {
			if v, ok := c.fc.lookupVar(e.Name); ok {
				return v.Type
			}
		}
		if fi, ok := c.funcs[e.Name]; ok {
			return fi.astType()
		}
		if _, ok := c.imports[e.Name]; ok {
			return ast.I64()
		}
	case ast.ExprBinary:
		if e.Binary.Op.IsComparison() || e.Binary.Op.IsLogical() {
			return ast.Bool()
		}
		l, r := c.inferType(e.Binary.Left), c.inferType(e.Binary.Right)
		switch {
		case l.IsNumeric() && r.IsNumeric():
			return PromoteNumeric(l, r)
		case l.IsUnknown():
			return r
		}
		return l
	case ast.ExprUnary:
		if e.Unary.Op == ast.OpNot {
			if t := c.inferType(e.Unary.Operand); !t.IsBool() {
				return t
			}
			return ast.Bool()
		}
		return c.inferType(e.Unary.Operand)
	case ast.ExprCall:
		return c.inferCall(e.Call)
	case ast.ExprMethodCall:
		return c.inferMethodCall(e.Method)
	case ast.ExprMatch, ast.ExprConditional:
		for _, arm := range e.Match.Arms {
			if t := c.inferType(arm.Body); !t.IsUnknown() && !t.IsVoid() {
				return t
			}
		}
	case ast.ExprAddressOf:
		return ast.Ptr(c.inferType(e.Operand))
	case ast.ExprDeref:
		if t := c.inferType(e.Operand); t.IsPointer() && t.Elem != nil {
			return t.Elem
		}
	case ast.ExprPointerOffset:
		return c.inferType(e.Offset.Ptr)
	case ast.ExprStructLit:
		return ast.StructType(e.Struct.Name)
	case ast.ExprField:
		return c.inferField(e.Field)
	case ast.ExprArrayLit:
		elem := e.Array.ElemType
		if elem.IsUnknown() && len(e.Array.Elems) > 0 {
			elem = c.inferType(e.Array.Elems[0])
		}
		return ast.ArrayOf(elem, len(e.Array.Elems))
	case ast.ExprIndex:
		if t := c.inferType(e.Index.Target); t.Kind == ast.TypeArray || t.IsPointer() {
			if t.Kind == ast.TypeString {
				return ast.U8()
			}
			if t.Elem != nil {
				return t.Elem
			}
		}
	case ast.ExprEnumVariant, ast.ExprEnumLiteral, ast.ExprSome, ast.ExprNone:
		return c.inferEnum(e.Enum)
	case ast.ExprRange:
		return ast.Range()
	case ast.ExprClosure:
		ret := e.Closure.Ret
		if ret == nil {
			ret = ast.Unknown()
		}
		params := make([]*ast.Type, len(e.Closure.Params))
		for i, p := range e.Closure.Params {
			params[i] = p.Type
		}
		return ast.FuncPtr(ret, params...)
	case ast.ExprBlock:
		if n := len(e.Block); n > 0 && e.Block[n-1].Kind == ast.StmtExpr {
			return c.inferType(e.Block[n-1].Expr)
		}
		return ast.Void()
	case ast.ExprCast:
		return e.Cast.Target
	case ast.ExprRaise:
		if t := c.inferType(e.Operand); t.EnumName() == "Result" {
			if ok := t.Arg(0); ok != nil {
				return ok
			}
		}
	}
	return ast.Unknown()
}

func (c *Compiler) inferCall(call *ast.CallExpr) *ast.Type {
	if call.Module != "" {
		if _, ok := c.lookupIntrinsic(call.Module, call.Name); ok {
			return intrinsicResult(c.resolveIntrinsicModule(call.Module), call.Name)
		}
		if fi, ok := c.funcs[methodName(call.Module, call.Name)]; ok {
			return fi.ret
		}
		if _, ok := c.lookupEnum(call.Module); ok {
			return c.inferEnum(&ast.EnumExpr{EnumName: call.Module, Variant: call.Name})
		}
		return ast.Unknown()
	}
	if fi, ok := c.funcs[call.Name]; ok {
		return fi.ret
	}
	if c.fc != nil {
		if v, ok := c.fc.lookupVar(call.Name); ok && v.Type.IsCallable() && v.Type.Ret != nil {
			return v.Type.Ret
		}
	}
	return ast.Unknown()
}

func (c *Compiler) inferMethodCall(mc *ast.MethodCallExpr) *ast.Type {
	switch mc.Method {
	case "is_ok", "is_err", "is_some", "is_none":
		return ast.Bool()
	case "raise":
		return c.inferType(&ast.Expr{Kind: ast.ExprRaise, Operand: mc.Receiver})
	}
	if mc.Receiver.Kind == ast.ExprIdent {
		if !c.isLocal(mc.Receiver.Name) {
			return c.inferCall(&ast.CallExpr{Module: mc.Receiver.Name, Name: mc.Method})
		}
	}
	rt := c.inferType(mc.Receiver)
	if si, ok := c.structOf(rt); ok {
		if fi, ok := c.funcs[methodName(si.name, mc.Method)]; ok {
			return fi.ret
		}
	}
	if fi, ok := c.funcs[mc.Method]; ok {
		return fi.ret
	}
	return ast.Unknown()
}

func (c *Compiler) inferField(fe *ast.FieldExpr) *ast.Type {
	if fe.Target.Kind == ast.ExprIdent && !c.isLocal(fe.Target.Name) {
		if _, ok := c.lookupEnum(fe.Target.Name); ok {
			return c.inferEnum(&ast.EnumExpr{EnumName: fe.Target.Name, Variant: fe.Field})
		}
	}
	t := c.inferType(fe.Target)
	switch fe.Field {
	case "len":
		if t.Kind == ast.TypeArray || t.Kind == ast.TypeString {
			return ast.I64()
		}
	case "addr":
		if t.IsPointer() {
			return ast.I64()
		}
	case "val":
		if t.IsPointer() && t.Elem != nil {
			return t.Elem
		}
	}
	if si, ok := c.structOf(t); ok {
		if _, f, ok := si.field(fe.Field); ok {
			return f.Type
		}
	}
	return ast.Unknown()
}

// inferEnum gives the type of an enum construction. Option and Result carry
// their payload type as a generic argument when it can be inferred.
func (c *Compiler) inferEnum(ee *ast.EnumExpr) *ast.Type {
	name := ee.EnumName
	if name == "" {
		name = variantOwner(ee.Variant)
	}
	if name == "" {
		return ast.Unknown()
	}
	ei, ok := c.lookupEnum(name)
	if !ok {
		return ast.Unknown()
	}
	if !ei.builtin {
		return ast.EnumType(ei.name)
	}
	payload := ast.Unknown()
	if ee.Payload != nil {
		payload = c.inferType(ee.Payload)
	}
	switch {
	case name == "Option":
		return ast.Option(payload)
	case ee.Variant == "Err":
		return ast.Result(ast.Unknown(), payload)
	}
	return ast.Result(payload, ast.Unknown())
}

// isLocal reports whether name is a variable of the current function.
func (c *Compiler) isLocal(name string) bool {
	if c.fc == nil {
		return false
	}
	_, ok := c.fc.lookupVar(name)
	return ok
}
