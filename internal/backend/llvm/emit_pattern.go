package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// binding is a name a pattern binds, materialised only once the arm is
// known to match.
type binding struct {
	name string
	v    value
}

func trueValue() ir.Value { return ir.NewBool(true) }

// testPattern emits the test of p against scrut and returns an i1. Tests of
// nested payloads branch to fail early, so the returned condition is valid in
// whatever block is current afterwards.
func (c *Compiler) testPattern(p *ast.Pattern, scrut value, scrutName string, fail *ir.Block, binds *[]binding) (ir.Value, error) {
	switch p.Kind {
	case ast.PatWildcard:
		return trueValue(), nil
	case ast.PatIdent:
		if ei, ok := c.enumOf(scrut.t); ok {
			if _, v, ok := ei.variant(p.Name); ok && v.Payload == nil {
				return c.testVariant(&ast.EnumPattern{EnumName: ei.name, Variant: p.Name}, scrut, scrutName, fail, binds)
			}
		}
		*binds = append(*binds, binding{name: p.Name, v: scrut})
		return trueValue(), nil
	case ast.PatBinding:
		if p.Sub == nil {
			*binds = append(*binds, binding{name: p.Name, v: scrut})
			return trueValue(), nil
		}
		cond, err := c.testPattern(p.Sub, scrut, scrutName, fail, binds)
		if err != nil {
			return nil, err
		}
		*binds = append(*binds, binding{name: p.Name, v: scrut})
		return cond, nil
	case ast.PatLiteral:
		if p.Lit == nil {
			return nil, internalError("literal pattern without a value")
		}
		lit, err := c.compileExprWant(p.Lit, scrut.t)
		if err != nil {
			return nil, err
		}
		return c.valuesEqual(scrut, lit)
	case ast.PatRange:
		return c.testRange(p.Range, scrut)
	case ast.PatEnumVariant, ast.PatEnumLiteral:
		if p.Enum == nil {
			return nil, internalError("enum pattern without a variant")
		}
		return c.testVariant(p.Enum, scrut, scrutName, fail, binds)
	case ast.PatStruct:
		return c.testStruct(p, scrut, fail, binds)
	case ast.PatOr:
		return c.testOr(p.Alts, scrut, scrutName, fail)
	case ast.PatType:
		return ir.NewBool(scrut.t.Equal(p.Type)), nil
	}
	return nil, unsupported("pattern kind %s", p.Kind)
}

// testRange checks start <= scrut < end, or <= end when inclusive. Bounds are
// resized to the scrutinee's width.
func (c *Compiler) testRange(rp *ast.RangePattern, scrut value) (ir.Value, error) {
	if rp == nil || rp.Start == nil || rp.End == nil {
		return nil, internalError("range pattern without bounds")
	}
	st := scrut.v.Type()
	if !ir.IsInt(st) || ir.IntBits(st) == 1 {
		return nil, typeMismatch(ast.I64(), scrut.t, "range patterns need an integer scrutinee")
	}
	bits := ir.IntBits(st)
	unsigned := scrut.t.IsUnsigned()
	bound := func(e *ast.Expr) (ir.Value, error) {
		v, err := c.compileExprWant(e, scrut.t)
		if err != nil {
			return nil, err
		}
		if v.isVoid() || !ir.IsInt(v.v.Type()) {
			return nil, typeMismatch(scrut.t, v.t, "range bound must be an integer")
		}
		return resizeInt(c.fc.b, v.v, bits, !v.t.IsUnsigned()), nil
	}
	lo, err := bound(rp.Start)
	if err != nil {
		return nil, err
	}
	hi, err := bound(rp.End)
	if err != nil {
		return nil, err
	}
	b := c.fc.b
	ge := b.ICmp(pick(unsigned, ir.PredUGE, ir.PredSGE), scrut.v, lo)
	upper := pick(unsigned, ir.PredULT, ir.PredSLT)
	if rp.Inclusive {
		upper = pick(unsigned, ir.PredULE, ir.PredSLE)
	}
	lt := b.ICmp(upper, scrut.v, hi)
	return b.Binary(ir.OpAnd, ge, lt), nil
}

// testVariant compares the tag and, for a payload pattern, loads the payload
// in a block entered only when the tag matched.
func (c *Compiler) testVariant(ep *ast.EnumPattern, scrut value, scrutName string, fail *ir.Block, binds *[]binding) (ir.Value, error) {
	ei, ok := c.enumOf(scrut.t)
	if !ok {
		name := ep.EnumName
		if name == "" {
			name = variantOwner(ep.Variant)
		}
		if ei, ok = c.lookupEnum(name); !ok {
			return nil, undeclaredVariable(name)
		}
	}
	if ep.EnumName != "" && ep.EnumName != ei.name {
		if _, known := c.lookupEnum(ep.EnumName); known {
			return nil, typeMismatch(ast.EnumType(ep.EnumName), scrut.t, "pattern names a different enum")
		}
	}
	if err := c.enumArg(scrut, "match scrutinee"); err != nil {
		return nil, err
	}
	idx, variant, ok := ei.variant(ep.Variant)
	if !ok {
		return nil, typeError("enum %s has no variant %s", ei.name, ep.Variant)
	}
	fc := c.fc
	b := fc.b
	tag := b.ExtractValue(scrut.v, 0)
	eq := b.ICmp(ir.PredEQ, tag, ir.NewInt(ir.I64, int64(idx)))
	sub := ep.Payload
	if sub == nil || sub.Kind == ast.PatWildcard {
		return eq, nil
	}
	if variant.Payload == nil {
		return nil, typeError("variant %s.%s has no payload to match", ei.name, variant.Name)
	}
	payloadBlk := fc.fn.NewBlock("pattern_payload")
	b.CondBr(eq, payloadBlk, fail)
	b.SetInsertPoint(payloadBlk)

	pt := c.payloadType(scrut.t, ei, variant, scrutName, sub)
	pv, err := c.loadAt(b.ExtractValue(scrut.v, 1), pt)
	if err != nil {
		return nil, err
	}
	return c.testPattern(sub, pv, "", fail, binds)
}

// testStruct destructures named fields. A field without a sub-pattern binds
// to its own name.
func (c *Compiler) testStruct(p *ast.Pattern, scrut value, fail *ir.Block, binds *[]binding) (ir.Value, error) {
	b := c.fc.b
	if scrut.t.IsPointer() {
		if scrut.t.Elem == nil || scrut.t.Elem.Kind != ast.TypeStruct {
			return nil, typeMismatch(ast.StructType(p.Name), scrut.t, "struct pattern on a non-struct value")
		}
		loaded, err := c.loadAt(scrut.v, scrut.t.Elem)
		if err != nil {
			return nil, err
		}
		scrut = loaded
	}
	si, ok := c.structOf(scrut.t)
	if !ok {
		return nil, typeMismatch(ast.StructType(p.Name), scrut.t, "struct pattern on a non-struct value")
	}
	if p.Name != "" && p.Name != si.name {
		return nil, typeMismatch(ast.StructType(p.Name), scrut.t, "struct pattern names a different struct")
	}
	var acc ir.Value = trueValue()
	for _, fp := range p.Fields {
		idx, field, ok := si.field(fp.Name)
		if !ok {
			return nil, typeError("struct %s has no field %q", si.name, fp.Name)
		}
		fv := value{v: b.ExtractValue(scrut.v, idx), t: field.Type}
		if fp.Pattern == nil {
			*binds = append(*binds, binding{name: fp.Name, v: fv})
			continue
		}
		cond, err := c.testPattern(fp.Pattern, fv, "", fail, binds)
		if err != nil {
			return nil, err
		}
		acc = andConds(b, acc, cond)
	}
	return acc, nil
}

func andConds(b *ir.Builder, x, y ir.Value) ir.Value {
	if ci, ok := x.(*ir.ConstInt); ok && ci.V != 0 {
		return y
	}
	if ci, ok := y.(*ir.ConstInt); ok && ci.V != 0 {
		return x
	}
	return b.Binary(ir.OpAnd, x, y)
}

// testOr tries each alternative in turn; the first that matches jumps to
// or_match. Alternatives may not bind names.
func (c *Compiler) testOr(alts []*ast.Pattern, scrut value, scrutName string, fail *ir.Block) (ir.Value, error) {
	if len(alts) == 0 {
		return nil, internalError("or-pattern without alternatives")
	}
	fn, b := c.fc.fn, c.fc.b
	match := fn.NewBlock("or_match")
	for i, alt := range alts {
		next := fail
		if i+1 < len(alts) {
			next = fn.NewBlock("or_next")
		}
		var inner []binding
		cond, err := c.testPattern(alt, scrut, scrutName, next, &inner)
		if err != nil {
			return nil, err
		}
		if len(inner) > 0 {
			return nil, typeError("or-pattern alternatives cannot bind %q", inner[0].name)
		}
		b.CondBr(cond, match, next)
		if next != fail {
			b.SetInsertPoint(next)
		}
	}
	b.SetInsertPoint(match)
	return trueValue(), nil
}

// applyBindings gives every binding a stack slot in the current scope.
func (c *Compiler) applyBindings(binds []binding) ([]*Variable, error) {
	fc := c.fc
	vars := make([]*Variable, 0, len(binds))
	for _, bd := range binds {
		if bd.name == "_" {
			continue
		}
		if bd.v.isVoid() {
			return nil, typeError("cannot bind %q to a void value", bd.name)
		}
		it := bd.v.v.Type()
		slot := fc.b.Alloca(it)
		fc.b.Store(bd.v.v, slot)
		v := &Variable{Name: bd.name, Slot: slot, Type: bd.v.t, IRType: it, Initialized: true}
		if err := fc.declare(v); err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}
