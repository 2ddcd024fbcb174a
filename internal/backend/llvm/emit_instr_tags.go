package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// minPayloadSize is the smallest heap block allocated for an enum payload.
const minPayloadSize = 8

// resolveEnum finds the enum and variant an enum expression names. The
// shorthand .Variant form is resolved against want first, then against the
// well-known variant names of Option and Result.
func (c *Compiler) resolveEnum(ee *ast.EnumExpr, want *ast.Type) (*enumInfo, int, *ast.EnumVariant, error) {
	name := ee.EnumName
	if name == "" {
		if ei, ok := c.enumOf(want); ok {
			if idx, v, ok := ei.variant(ee.Variant); ok {
				return ei, idx, v, nil
			}
		}
		name = variantOwner(ee.Variant)
		if name == "" {
			return nil, 0, nil, undeclaredVariable(ee.Variant)
		}
	}
	ei, ok := c.lookupEnum(name)
	if !ok {
		owner := variantOwner(ee.Variant)
		if ei, ok = c.lookupEnum(owner); !ok {
			return nil, 0, nil, undeclaredVariable(name)
		}
	}
	idx, v, ok := ei.variant(ee.Variant)
	if !ok {
		return nil, 0, nil, typeError("enum %s has no variant %s", ei.name, ee.Variant)
	}
	return ei, idx, v, nil
}

// genericSlot is the generic argument of Option/Result that types the
// payload of variant.
func genericSlot(variant string) int {
	if variant == "Err" {
		return 1
	}
	return 0
}

// isTypeParam reports an unbound type parameter such as T.
func (c *Compiler) isTypeParam(t *ast.Type) bool {
	if t == nil || t.Kind != ast.TypeGeneric || len(t.Args) > 0 {
		return false
	}
	if _, ok := c.lookupEnum(t.Name); ok {
		return false
	}
	_, ok := c.lookupStruct(t.Name)
	return !ok
}

func (c *Compiler) concrete(t *ast.Type) bool {
	return !t.IsUnknown() && !c.isTypeParam(t)
}

// compileEnumValue builds { tag, payload } on the stack and returns it by
// value. A payload is copied into a fresh heap block that is never freed.
func (c *Compiler) compileEnumValue(ee *ast.EnumExpr, want *ast.Type) (value, error) {
	ei, idx, variant, err := c.resolveEnum(ee, want)
	if err != nil {
		return value{}, err
	}
	fc := c.fc
	b := fc.b
	if variant.Payload == nil && ee.Payload != nil {
		return value{}, typeError("variant %s.%s has no payload", ei.name, variant.Name)
	}
	if variant.Payload != nil && ee.Payload == nil {
		return value{}, typeError("variant %s.%s requires a payload", ei.name, variant.Name)
	}

	var payload ir.Value = ir.Null()
	payloadT := ast.Unknown()
	if ee.Payload != nil {
		expected := variant.Payload
		if ei.builtin || c.isTypeParam(expected) {
			expected = ast.Unknown()
			if w := want.Arg(genericSlot(variant.Name)); want.EnumName() == ei.name && c.concrete(w) {
				expected = w
			}
		}
		key := genericKey(ei.name, variant.Name)
		if expected.IsUnknown() {
			fc.setGeneric(key, c.inferType(ee.Payload))
		} else {
			fc.setGeneric(key, expected)
		}
		pv, err := c.compileExprWant(ee.Payload, expected)
		if err != nil {
			return value{}, err
		}
		if pv.isVoid() {
			return value{}, typeError("payload of %s.%s is void", ei.name, variant.Name)
		}
		if pv, err = c.coerce(pv, expected); err != nil {
			return value{}, err
		}
		payloadT = pv.t
		fc.setGeneric(key, payloadT)
		if payload, err = c.heapCopy(pv); err != nil {
			return value{}, err
		}
	}

	slot := b.Alloca(ei.ty)
	b.Store(ir.NewInt(ir.I64, int64(idx)), b.StructGEP(ei.ty, slot, 0))
	b.Store(payload, b.StructGEP(ei.ty, slot, 1))
	return value{v: b.Load(ei.ty, slot), t: c.enumValueType(ei, variant.Name, payloadT, want)}, nil
}

// heapCopy moves v into a malloc'd block and returns the block.
func (c *Compiler) heapCopy(v value) (ir.Value, error) {
	size, err := c.sizeOf(v.v.Type())
	if err != nil {
		return nil, err
	}
	size = max(size, minPayloadSize)
	p, err := c.callRuntime("malloc", ir.NewInt(ir.I64, int64(size)))
	if err != nil {
		return nil, err
	}
	c.fc.b.Store(v.v, p)
	return p, nil
}

// enumValueType is the source type of a constructed enum value. Builtin
// enums carry their payload types as generic arguments.
func (c *Compiler) enumValueType(ei *enumInfo, variant string, payload, want *ast.Type) *ast.Type {
	if !ei.builtin {
		return ast.EnumType(ei.name)
	}
	var t *ast.Type
	if ei.name == "Option" {
		t = ast.Option(payload)
	} else {
		t = ast.Result(ast.Unknown(), ast.Unknown())
		t.Args[genericSlot(variant)] = payload
	}
	if want.EnumName() == ei.name {
		for i, a := range t.Args {
			if a.IsUnknown() && i < len(want.Args) {
				t.Args[i] = want.Args[i]
			}
		}
	}
	return t
}

// payloadType recovers the concrete type behind an erased payload pointer:
// the scrutinee's generic arguments, the declared payload type, the
// per-variable generic context, the per-enum generic context, the enum named
// by a nested pattern, and finally i32.
func (c *Compiler) payloadType(scrutT *ast.Type, ei *enumInfo, variant *ast.EnumVariant, scrutName string, sub *ast.Pattern) *ast.Type {
	if ei.builtin || c.isTypeParam(variant.Payload) {
		if a := scrutT.Arg(genericSlot(variant.Name)); scrutT.EnumName() == ei.name && c.concrete(a) {
			return a
		}
	}
	if c.concrete(variant.Payload) && !ei.builtin {
		return variant.Payload
	}
	if scrutName != "" {
		if t, ok := c.fc.getGeneric(varGenericKey(scrutName, ei.name, variant.Name)); ok {
			return t
		}
	}
	if t, ok := c.fc.getGeneric(genericKey(ei.name, variant.Name)); ok {
		return t
	}
	if sub != nil && (sub.Kind == ast.PatEnumVariant || sub.Kind == ast.PatEnumLiteral) && sub.Enum != nil {
		name := sub.Enum.EnumName
		if name == "" {
			name = variantOwner(sub.Enum.Variant)
		}
		if inner, ok := c.lookupEnum(name); ok {
			if inner.builtin {
				return ast.Generic(inner.name, ast.Unknown(), ast.Unknown())
			}
			return ast.EnumType(inner.name)
		}
	}
	return ast.I32()
}

// compileRaise unwraps a Result. On Err the pending defers run and the Err
// value is returned from the enclosing function; on Ok the payload is the
// value of the expression.
func (c *Compiler) compileRaise(operand *ast.Expr) (value, error) {
	fc := c.fc
	v, err := c.compileExpr(operand)
	if err != nil {
		return value{}, err
	}
	ei, ok := c.enumOf(v.t)
	if !ok || v.isVoid() || c.enumArg(v, "raise operand") != nil {
		return value{}, typeMismatch(ast.Result(ast.Unknown(), ast.Unknown()), v.t, "raise on a non-Result value")
	}
	errIdx, _, hasErr := ei.variant("Err")
	_, okVariant, hasOk := ei.variant("Ok")
	if !hasErr || !hasOk {
		return value{}, typeMismatch(ast.Result(ast.Unknown(), ast.Unknown()), v.t, "raise on a non-Result value")
	}
	retEnum, ok := c.enumOf(fc.ret)
	if !ok || retEnum != ei {
		return value{}, typeError("raise in function %q, which does not return %s", fc.info.name, ei.name)
	}

	b := fc.b
	errBlk := fc.fn.NewBlock("raise_err")
	okBlk := fc.fn.NewBlock("raise_ok")
	tag := b.ExtractValue(v.v, 0)
	b.CondBr(b.ICmp(ir.PredEQ, tag, ir.NewInt(ir.I64, int64(errIdx))), errBlk, okBlk)

	b.SetInsertPoint(errBlk)
	if err := c.runDefers(); err != nil {
		return value{}, err
	}
	b.Ret(v.v)

	b.SetInsertPoint(okBlk)
	name := ""
	if operand.Kind == ast.ExprIdent {
		name = operand.Name
	}
	okT := c.payloadType(v.t, ei, okVariant, name, nil)
	if okT.IsVoid() {
		return voidValue(), nil
	}
	return c.loadAt(b.ExtractValue(v.v, 1), okT)
}
