package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// compileCall resolves a call in this order: intrinsic table, struct static
// functions and enum constructors, module-qualified functions, top-level
// functions, then variables holding function pointers.
func (c *Compiler) compileCall(call *ast.CallExpr, want *ast.Type) (value, error) {
	if call.Module != "" {
		return c.compileQualifiedCall(call, want)
	}
	if fi, ok := c.funcs[call.Name]; ok {
		return c.callFunction(fi, nil, call.Args)
	}
	if v, ok := c.fc.lookupVar(call.Name); ok {
		return c.callIndirect(v, call.Args)
	}
	if owner := variantOwner(call.Name); owner != "" && len(call.Args) <= 1 {
		ee := &ast.EnumExpr{Variant: call.Name}
		if len(call.Args) == 1 {
			ee.Payload = call.Args[0]
		}
		return c.compileEnumValue(ee, want)
	}
	return value{}, undeclaredFunction(call.Name)
}

func (c *Compiler) compileQualifiedCall(call *ast.CallExpr, want *ast.Type) (value, error) {
	if fn, ok := c.lookupIntrinsic(call.Module, call.Name); ok {
		return fn(c, call)
	}
	if c.isIntrinsicModule(call.Module) {
		return value{}, undeclaredFunction(call.QualifiedName())
	}
	if c.isLocal(call.Module) {
		return c.compileMethodCall(&ast.MethodCallExpr{
			Receiver: &ast.Expr{Kind: ast.ExprIdent, Name: call.Module},
			Method:   call.Name,
			Args:     call.Args,
		}, want)
	}
	if fi, ok := c.funcs[methodName(call.Module, call.Name)]; ok {
		return c.callFunction(fi, nil, call.Args)
	}
	if _, ok := c.lookupEnum(call.Module); ok {
		if len(call.Args) > 1 {
			return value{}, typeError("variant %s takes at most one payload", call.QualifiedName())
		}
		ee := &ast.EnumExpr{EnumName: call.Module, Variant: call.Name}
		if len(call.Args) == 1 {
			ee.Payload = call.Args[0]
		}
		return c.compileEnumValue(ee, want)
	}
	return value{}, undeclaredFunction(call.QualifiedName())
}

// callFunction calls fi directly. recv, when set, is passed as the first
// argument.
func (c *Compiler) callFunction(fi *funcInfo, recv *value, args []*ast.Expr) (value, error) {
	supplied := len(args)
	if recv != nil {
		supplied++
	}
	n := len(fi.params)
	if supplied < n || (!fi.varargs && supplied > n) {
		return value{}, typeError("function %q expects %d argument(s), got %d", fi.name, n, supplied)
	}
	sig := fi.fn.Sig
	vals := make([]ir.Value, 0, supplied)
	pos := 0
	if recv != nil {
		v, err := c.argValue(*recv, fi, 0)
		if err != nil {
			return value{}, err
		}
		vals = append(vals, v)
		pos = 1
	}
	for _, a := range args {
		var want *ast.Type
		if pos < n {
			want = fi.params[pos]
		}
		v, err := c.compileExprWant(a, want)
		if err != nil {
			return value{}, err
		}
		var arg ir.Value
		if pos < n {
			arg, err = c.argValue(v, fi, pos)
		} else {
			arg, err = c.varargValue(v)
		}
		if err != nil {
			return value{}, withSpan(err, a.Span)
		}
		vals = append(vals, arg)
		pos++
	}
	r := c.fc.b.Call(fi.fn, sig, vals...)
	return callResult(r, sig, fi.ret), nil
}

// argValue coerces v to parameter i of fi.
func (c *Compiler) argValue(v value, fi *funcInfo, i int) (ir.Value, error) {
	if v.isVoid() {
		return nil, typeError("argument %d of %q is void", i+1, fi.name)
	}
	pt := fi.params[i]
	cv, err := c.coerce(v, pt)
	if err != nil {
		return nil, err
	}
	if want := fi.fn.Sig.Params[i]; !ir.Equal(cv.v.Type(), want) {
		return nil, typeMismatch(pt, v.t, "argument %d of %q", i+1, fi.name)
	}
	return cv.v, nil
}

// varargValue applies the C default argument promotions.
func (c *Compiler) varargValue(v value) (ir.Value, error) {
	if v.isVoid() {
		return nil, typeError("void value passed as a variadic argument")
	}
	b := c.fc.b
	t := v.v.Type()
	switch {
	case ir.IsInt(t) && ir.IntBits(t) < 32:
		return resizeInt(b, v.v, 32, v.t.IsSigned()), nil
	case ir.IsFloat(t) && ir.FloatBits(t) < 64:
		return b.Cast(ir.OpFPExt, v.v, ir.F64), nil
	case ir.IsAggregate(t):
		return nil, typeMismatch(nil, v.t, "aggregates cannot be passed as variadic arguments")
	}
	return v.v, nil
}

func callResult(r ir.Value, sig *ir.FuncType, ret *ast.Type) value {
	if ir.IsVoid(sig.Ret) {
		return voidValue()
	}
	if ret.IsVoid() || ret.IsUnknown() {
		// main declared without a result returns i32
		return value{v: r, t: ast.I32()}
	}
	return value{v: r, t: ret}
}

// callIndirect calls through a variable holding a function pointer. The
// signature comes from the variable's declared type.
func (c *Compiler) callIndirect(v *Variable, args []*ast.Expr) (value, error) {
	if !v.Type.IsCallable() {
		return value{}, typeMismatch(ast.FuncPtr(ast.Unknown()), v.Type, "%q is not callable", v.Name)
	}
	if !v.Initialized {
		return value{}, typeError("variable %q is used before it is initialized", v.Name)
	}
	ret := v.Type.Ret
	if ret == nil {
		ret = ast.Void()
	}
	sig, err := c.funcSig(v.Type.Args, ret, false, false)
	if err != nil {
		return value{}, err
	}
	if len(args) != len(sig.Params) {
		return value{}, typeError("%q expects %d argument(s), got %d", v.Name, len(sig.Params), len(args))
	}
	vals := make([]ir.Value, len(args))
	for i, a := range args {
		pt := v.Type.Args[i]
		av, err := c.compileExprWant(a, pt)
		if err != nil {
			return value{}, err
		}
		if av, err = c.coerce(av, pt); err != nil {
			return value{}, withSpan(err, a.Span)
		}
		if av.isVoid() || !ir.Equal(av.v.Type(), sig.Params[i]) {
			return value{}, withSpan(typeMismatch(pt, av.t, "argument %d of %q", i+1, v.Name), a.Span)
		}
		vals[i] = av.v
	}
	fp := c.fc.b.Load(ir.Ptr, v.Slot)
	r := c.fc.b.Call(fp, sig, vals...)
	return callResult(r, sig, ret), nil
}

var variantChecks = map[string]string{
	"is_ok":   "Ok",
	"is_err":  "Err",
	"is_some": "Some",
	"is_none": "None",
}

// compileMethodCall handles the built-in methods raise and is_ok/is_err/
// is_some/is_none, calls through module aliases and type names, struct
// methods and finally UFCS: f(receiver, args...).
func (c *Compiler) compileMethodCall(mc *ast.MethodCallExpr, want *ast.Type) (value, error) {
	if mc.Method == "raise" {
		if len(mc.Args) != 0 {
			return value{}, typeError("raise takes no arguments")
		}
		return c.compileRaise(mc.Receiver)
	}
	if mc.Method == "loop" && c.isRange(mc.Receiver) {
		return c.compileRangeLoop(mc)
	}
	if variant, ok := variantChecks[mc.Method]; ok {
		if len(mc.Args) != 0 {
			return value{}, typeError("%s takes no arguments", mc.Method)
		}
		return c.compileVariantCheck(mc.Receiver, variant)
	}
	if mc.Receiver.Kind == ast.ExprIdent && !c.isLocal(mc.Receiver.Name) {
		name := mc.Receiver.Name
		_, isStruct := c.lookupStruct(name)
		_, isEnum := c.lookupEnum(name)
		_, isImport := c.imports[name]
		if isStruct || isEnum || isImport || intrinsicModules[name] {
			return c.compileQualifiedCall(&ast.CallExpr{Module: name, Name: mc.Method, Args: mc.Args}, want)
		}
	}

	rt := c.inferType(mc.Receiver)
	if si, ok := c.structOf(rt); ok {
		if fi, ok := c.funcs[methodName(si.name, mc.Method)]; ok {
			return c.callWithReceiver(fi, mc)
		}
	}
	if fi, ok := c.funcs[mc.Method]; ok && len(fi.params) > 0 {
		return c.callWithReceiver(fi, mc)
	}
	if rt.IsUnknown() {
		// inference failed; the compiled receiver may still name a struct
		recv, err := c.compileExpr(mc.Receiver)
		if err != nil {
			return value{}, err
		}
		if si, ok := c.structOf(recv.t); ok {
			if fi, ok := c.funcs[methodName(si.name, mc.Method)]; ok {
				return c.callFunction(fi, &recv, mc.Args)
			}
		}
	}
	return value{}, undeclaredFunction(mc.Method)
}

func (c *Compiler) callWithReceiver(fi *funcInfo, mc *ast.MethodCallExpr) (value, error) {
	if len(fi.params) == 0 {
		return value{}, typeError("%q takes no receiver", fi.name)
	}
	recv, err := c.receiverArg(mc.Receiver, fi.params[0])
	if err != nil {
		return value{}, err
	}
	return c.callFunction(fi, &recv, mc.Args)
}

// receiverArg compiles a method receiver, taking its address when the method
// expects a pointer and loading through it when the method expects a value.
func (c *Compiler) receiverArg(recv *ast.Expr, param *ast.Type) (value, error) {
	rt := c.inferType(recv)
	switch {
	case param.IsPointer() && param.Kind != ast.TypeString && rt.Kind == ast.TypeStruct:
		return c.compileAddressOf(recv)
	case param.Kind == ast.TypeStruct && rt.IsPointer() && rt.Kind != ast.TypeString:
		return c.compileDeref(recv)
	}
	return c.compileExprWant(recv, param)
}

// compileVariantCheck compares the tag of an enum value with the index of the
// named variant in its registered enum.
func (c *Compiler) compileVariantCheck(recv *ast.Expr, variant string) (value, error) {
	v, err := c.compileExpr(recv)
	if err != nil {
		return value{}, err
	}
	ei, ok := c.enumOf(v.t)
	if !ok {
		ei, ok = c.lookupEnum(variantOwner(variant))
	}
	if !ok || v.isVoid() || c.enumArg(v, "receiver") != nil {
		return value{}, typeMismatch(ast.EnumType(variantOwner(variant)), v.t, "%s check on a non-enum value", variant)
	}
	idx, _, ok := ei.variant(variant)
	if !ok {
		return value{}, typeError("enum %s has no variant %s", ei.name, variant)
	}
	b := c.fc.b
	tag := b.ExtractValue(v.v, 0)
	return value{v: b.ICmp(ir.PredEQ, tag, ir.NewInt(ir.I64, int64(idx))), t: ast.Bool()}, nil
}
