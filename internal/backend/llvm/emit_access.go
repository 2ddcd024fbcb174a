package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// lvalue computes the address an assignable expression denotes.
func (c *Compiler) lvalue(e *ast.Expr) (ir.Value, *ast.Type, error) {
	fc := c.fc
	switch e.Kind {
	case ast.ExprIdent:
		v, ok := fc.lookupVar(e.Name)
		if !ok {
			return nil, nil, undeclaredVariable(e.Name)
		}
		return v.Slot, v.Type, nil
	case ast.ExprDeref:
		return c.pointee(e.Operand)
	case ast.ExprField:
		return c.fieldAddr(e.Field)
	case ast.ExprIndex:
		return c.indexAddr(e.Index)
	}
	return nil, nil, typeError("%s expression is not assignable", e.Kind)
}

// addressable reports whether lvalue can handle e without materialising a
// temporary.
func (c *Compiler) addressable(e *ast.Expr) bool {
	switch e.Kind {
	case ast.ExprIdent:
		_, ok := c.fc.lookupVar(e.Name)
		return ok
	case ast.ExprDeref:
		return true
	case ast.ExprField:
		t := c.inferType(e.Field.Target)
		return t.IsPointer() || (t.Kind == ast.TypeStruct && c.addressable(e.Field.Target))
	case ast.ExprIndex:
		t := c.inferType(e.Index.Target)
		return t.IsPointer() || (t.Kind == ast.TypeArray && c.addressable(e.Index.Target))
	}
	return false
}

// pointee compiles a pointer expression and returns it with its element type.
func (c *Compiler) pointee(e *ast.Expr) (ir.Value, *ast.Type, error) {
	p, err := c.compileExpr(e)
	if err != nil {
		return nil, nil, err
	}
	if p.isVoid() || !ir.IsPtr(p.v.Type()) {
		return nil, nil, typeMismatch(ast.Ptr(ast.Unknown()), p.t, "dereference of a non-pointer")
	}
	elem := p.t.Elem
	if p.t.Kind == ast.TypeString {
		elem = ast.U8()
	}
	if elem.IsUnknown() || elem.IsVoid() {
		return nil, nil, typeError("cannot dereference %s without an element type", p.t)
	}
	return p.v, elem, nil
}

func (c *Compiler) fieldAddr(fe *ast.FieldExpr) (ir.Value, *ast.Type, error) {
	tt := c.inferType(fe.Target)
	var base ir.Value
	var st *ast.Type
	switch {
	case tt.IsPointer():
		p, elem, err := c.pointee(fe.Target)
		if err != nil {
			return nil, nil, err
		}
		if fe.Field == "val" {
			return p, elem, nil
		}
		base, st = p, elem
	default:
		addr, t, err := c.lvalue(fe.Target)
		if err != nil {
			return nil, nil, err
		}
		if t.IsPointer() {
			// a pointer variable: go through the pointer it holds
			p := c.fc.b.Load(ir.Ptr, addr)
			if fe.Field == "val" {
				return p, t.Elem, nil
			}
			base, st = p, t.Elem
		} else {
			base, st = addr, t
		}
	}
	si, ok := c.structOf(st)
	if !ok {
		return nil, nil, typeError("%s has no field %q", st, fe.Field)
	}
	idx, field, ok := si.field(fe.Field)
	if !ok {
		return nil, nil, typeError("struct %s has no field %q", si.name, fe.Field)
	}
	return c.fc.b.StructGEP(si.ty, base, idx), field.Type, nil
}

func (c *Compiler) indexAddr(ie *ast.IndexExpr) (ir.Value, *ast.Type, error) {
	b := c.fc.b
	tt := c.inferType(ie.Target)
	if tt.IsPointer() {
		p, elem, err := c.pointee(ie.Target)
		if err != nil {
			return nil, nil, err
		}
		idx, err := c.indexValue(ie.Index)
		if err != nil {
			return nil, nil, err
		}
		et, err := c.toIRType(elem)
		if err != nil {
			return nil, nil, err
		}
		return b.GEP(et, p, idx), elem, nil
	}
	var base ir.Value
	var at *ast.Type
	if c.addressable(ie.Target) {
		addr, t, err := c.lvalue(ie.Target)
		if err != nil {
			return nil, nil, err
		}
		base, at = addr, t
	} else {
		v, err := c.compileExpr(ie.Target)
		if err != nil {
			return nil, nil, err
		}
		base, at = c.spill(v), v.t
	}
	if at.Kind != ast.TypeArray {
		return nil, nil, typeMismatch(ast.ArrayOf(ast.Unknown(), 0), at, "indexing a non-array")
	}
	arrT, err := c.toIRType(at)
	if err != nil {
		return nil, nil, err
	}
	idx, err := c.indexValue(ie.Index)
	if err != nil {
		return nil, nil, err
	}
	return b.GEP(arrT, base, ir.NewInt(ir.I64, 0), idx), at.Elem, nil
}

func (c *Compiler) indexValue(e *ast.Expr) (ir.Value, error) {
	v, err := c.compileExpr(e)
	if err != nil {
		return nil, err
	}
	if v.isVoid() || !ir.IsInt(v.v.Type()) {
		return nil, typeMismatch(ast.I64(), v.t, "index must be an integer")
	}
	return resizeInt(c.fc.b, v.v, 64, !v.t.IsUnsigned()), nil
}

// spill stores v in a fresh stack slot and returns the slot.
func (c *Compiler) spill(v value) ir.Value {
	slot := c.fc.b.Alloca(v.v.Type())
	c.fc.b.Store(v.v, slot)
	return slot
}

func (c *Compiler) loadAt(addr ir.Value, t *ast.Type) (value, error) {
	it, err := c.toIRType(t)
	if err != nil {
		return value{}, err
	}
	if ir.IsVoid(it) {
		return value{}, typeError("cannot load a void value")
	}
	return value{v: c.fc.b.Load(it, addr), t: t}, nil
}

func (c *Compiler) compileAddressOf(operand *ast.Expr) (value, error) {
	if c.addressable(operand) {
		addr, t, err := c.lvalue(operand)
		if err != nil {
			return value{}, err
		}
		return value{v: addr, t: ast.Ptr(t)}, nil
	}
	v, err := c.compileExpr(operand)
	if err != nil {
		return value{}, err
	}
	if v.isVoid() {
		return value{}, typeError("cannot take the address of a void value")
	}
	return value{v: c.spill(v), t: ast.Ptr(v.t)}, nil
}

func (c *Compiler) compileDeref(operand *ast.Expr) (value, error) {
	p, elem, err := c.pointee(operand)
	if err != nil {
		return value{}, err
	}
	return c.loadAt(p, elem)
}

func (c *Compiler) compilePointerOffset(po *ast.PointerOffsetExpr) (value, error) {
	p, err := c.compileExpr(po.Ptr)
	if err != nil {
		return value{}, err
	}
	if p.isVoid() || !ir.IsPtr(p.v.Type()) {
		return value{}, typeMismatch(ast.Ptr(ast.Unknown()), p.t, "pointer offset on a non-pointer")
	}
	off, err := c.indexValue(po.Offset)
	if err != nil {
		return value{}, err
	}
	var et ir.Type = ir.I8
	if elem := p.t.Elem; !elem.IsUnknown() && !elem.IsVoid() {
		if et, err = c.toIRType(elem); err != nil {
			return value{}, err
		}
	}
	return value{v: c.fc.b.GEP(et, p.v, off), t: p.t}, nil
}

func (c *Compiler) compileStructLit(se *ast.StructLitExpr) (value, error) {
	si, ok := c.lookupStruct(se.Name)
	if !ok {
		return value{}, undeclaredVariable(se.Name)
	}
	given := make(map[string]*ast.Expr, len(se.Fields))
	for _, f := range se.Fields {
		if _, ok := si.index[f.Name]; !ok {
			return value{}, typeError("struct %s has no field %q", si.name, f.Name)
		}
		if _, dup := given[f.Name]; dup {
			return value{}, typeError("field %s.%s given twice", si.name, f.Name)
		}
		given[f.Name] = f.Value
	}
	b := c.fc.b
	slot := b.Alloca(si.ty)
	for i, f := range si.fields {
		init, ok := given[f.Name]
		if !ok {
			init = f.Default
		}
		if init == nil {
			return value{}, typeError("missing field %s.%s in struct literal", si.name, f.Name)
		}
		v, err := c.compileExprWant(init, f.Type)
		if err != nil {
			return value{}, err
		}
		if v, err = c.coerce(v, f.Type); err != nil {
			return value{}, err
		}
		b.Store(v.v, b.StructGEP(si.ty, slot, i))
	}
	return value{v: b.Load(si.ty, slot), t: ast.StructType(si.name)}, nil
}

// compileField handles struct fields, the pointer pseudo-fields val and
// addr, len of arrays and strings, and Enum.Variant without payload.
func (c *Compiler) compileField(fe *ast.FieldExpr, want *ast.Type) (value, error) {
	fc := c.fc
	if fe.Target.Kind == ast.ExprIdent {
		if _, isVar := fc.lookupVar(fe.Target.Name); !isVar {
			if _, ok := c.lookupEnum(fe.Target.Name); ok {
				return c.compileEnumValue(&ast.EnumExpr{EnumName: fe.Target.Name, Variant: fe.Field}, want)
			}
		}
	}
	tt := c.inferType(fe.Target)
	switch {
	case tt.Kind == ast.TypeStruct && c.addressable(fe.Target):
		addr, ft, err := c.fieldAddr(fe)
		if err != nil {
			return value{}, err
		}
		return c.loadAt(addr, ft)
	case tt.Kind == ast.TypeArray && fe.Field == "len":
		return value{v: ir.NewInt(ir.I64, int64(tt.Len)), t: ast.I64()}, nil
	}

	tv, err := c.compileExpr(fe.Target)
	if err != nil {
		return value{}, err
	}
	if tv.isVoid() {
		return value{}, typeError("field %q of a void value", fe.Field)
	}
	b := fc.b
	switch {
	case tv.t.Kind == ast.TypeString && fe.Field == "len":
		n, err := c.callRuntime("strlen", tv.v)
		if err != nil {
			return value{}, err
		}
		return value{v: n, t: ast.I64()}, nil
	case tv.t.IsPointer() && fe.Field == "addr":
		return value{v: b.Cast(ir.OpPtrToInt, tv.v, ir.I64), t: ast.I64()}, nil
	case tv.t.IsPointer():
		elem := tv.t.Elem
		if fe.Field == "val" {
			if elem.IsUnknown() || elem.IsVoid() {
				return value{}, typeError("cannot dereference %s without an element type", tv.t)
			}
			return c.loadAt(tv.v, elem)
		}
		si, ok := c.structOf(tv.t)
		if !ok {
			return value{}, typeError("%s has no field %q", tv.t, fe.Field)
		}
		idx, field, ok := si.field(fe.Field)
		if !ok {
			return value{}, typeError("struct %s has no field %q", si.name, fe.Field)
		}
		return c.loadAt(b.StructGEP(si.ty, tv.v, idx), field.Type)
	case tv.t.Kind == ast.TypeArray && fe.Field == "len":
		return value{v: ir.NewInt(ir.I64, int64(tv.t.Len)), t: ast.I64()}, nil
	}
	si, ok := c.structOf(tv.t)
	if !ok {
		return value{}, typeError("%s has no field %q", tv.t, fe.Field)
	}
	idx, field, ok := si.field(fe.Field)
	if !ok {
		return value{}, typeError("struct %s has no field %q", si.name, fe.Field)
	}
	return value{v: b.ExtractValue(tv.v, idx), t: field.Type}, nil
}

func (c *Compiler) compileArrayLit(ae *ast.ArrayLitExpr, want *ast.Type) (value, error) {
	elem := ae.ElemType
	if elem.IsUnknown() && want != nil && want.Kind == ast.TypeArray {
		elem = want.Elem
	}
	vals := make([]value, 0, len(ae.Elems))
	for _, e := range ae.Elems {
		v, err := c.compileExprWant(e, elem)
		if err != nil {
			return value{}, err
		}
		if elem.IsUnknown() {
			elem = v.t
		}
		if v, err = c.coerce(v, elem); err != nil {
			return value{}, err
		}
		vals = append(vals, v)
	}
	if elem.IsUnknown() {
		return value{}, typeError("cannot infer the element type of an empty array literal")
	}
	at := ast.ArrayOf(elem, len(vals))
	irT, err := c.toIRType(at)
	if err != nil {
		return value{}, err
	}
	if len(vals) == 0 {
		return value{v: ir.Zero(irT), t: at}, nil
	}
	b := c.fc.b
	slot := b.Alloca(irT)
	for i, v := range vals {
		gep := b.GEP(irT, slot, ir.NewInt(ir.I64, 0), ir.NewInt(ir.I64, int64(i)))
		b.Store(v.v, gep)
	}
	return value{v: b.Load(irT, slot), t: at}, nil
}

func (c *Compiler) compileIndex(ie *ast.IndexExpr) (value, error) {
	addr, elem, err := c.indexAddr(ie)
	if err != nil {
		return value{}, err
	}
	return c.loadAt(addr, elem)
}
