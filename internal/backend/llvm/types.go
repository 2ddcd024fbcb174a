package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

type structInfo struct {
	name   string
	def    *ast.StructDef
	fields []*ast.StructField
	index  map[string]int
	ty     *ir.StructType
}

func (si *structInfo) field(name string) (int, *ast.StructField, bool) {
	i, ok := si.index[name]
	if !ok {
		return -1, nil, false
	}
	return i, si.fields[i], true
}

// enumInfo is a registered enum. Every enum value is { i64 tag, ptr payload }.
type enumInfo struct {
	name     string
	variants []*ast.EnumVariant
	index    map[string]int
	ty       *ir.StructType
	builtin  bool
}

func (ei *enumInfo) variant(name string) (int, *ast.EnumVariant, bool) {
	i, ok := ei.index[name]
	if !ok {
		return -1, nil, false
	}
	return i, ei.variants[i], true
}

type funcInfo struct {
	name     string
	fn       *ir.Func
	params   []*ast.Type
	names    []string
	mutable  []bool
	ret      *ast.Type
	varargs  bool
	external bool
	decl     *ast.Function
	isMain   bool
}

// astType returns the function type of fi as a source type.
func (fi *funcInfo) astType() *ast.Type {
	return ast.FuncPtr(fi.ret, fi.params...)
}

// builtinEnums are registered before user declarations; a user enum of the
// same name replaces them.
func builtinEnums() []*ast.EnumDef {
	return []*ast.EnumDef{
		{Name: "Option", Variants: []*ast.EnumVariant{
			{Name: "Some", Payload: ast.Generic("T")},
			{Name: "None"},
		}},
		{Name: "Result", Variants: []*ast.EnumVariant{
			{Name: "Ok", Payload: ast.Generic("T")},
			{Name: "Err", Payload: ast.Generic("E")},
		}},
	}
}

// variantOwner maps the well-known variant names onto their builtin enum.
func variantOwner(variant string) string {
	switch variant {
	case "Ok", "Err":
		return "Result"
	case "Some", "None":
		return "Option"
	}
	return ""
}

func (c *Compiler) registerEnum(def *ast.EnumDef, builtin bool) *enumInfo {
	ei := &enumInfo{
		name:     def.Name,
		variants: def.Variants,
		index:    make(map[string]int, len(def.Variants)),
		ty:       c.mod.NamedStruct(def.Name),
		builtin:  builtin,
	}
	for i, v := range def.Variants {
		if _, dup := ei.index[v.Name]; !dup {
			ei.index[v.Name] = i
		}
	}
	ei.ty.Fields = []ir.Type{ir.I64, ir.Ptr}
	c.layout.Forget(ei.ty)
	c.enums[def.Name] = ei
	_ = c.globals.Replace(def.Name, Symbol{Kind: SymEnum, Enum: ei})
	return ei
}

func (c *Compiler) lookupEnum(name string) (*enumInfo, bool) {
	if name == "" {
		return nil, false
	}
	if sym, ok := c.globals.Find(name); ok && sym.Kind == SymEnum {
		return sym.Enum, true
	}
	return nil, false
}

func (c *Compiler) lookupStruct(name string) (*structInfo, bool) {
	if name == "" {
		return nil, false
	}
	if sym, ok := c.globals.Find(name); ok && sym.Kind == SymType {
		return sym.Struct, true
	}
	return nil, false
}

// enumOf finds the enum a source type denotes, if any.
func (c *Compiler) enumOf(t *ast.Type) (*enumInfo, bool) {
	if t == nil {
		return nil, false
	}
	switch t.Kind {
	case ast.TypeEnum, ast.TypeGeneric, ast.TypeStruct:
		return c.lookupEnum(t.Name)
	}
	return nil, false
}

// structOf finds the struct a source type denotes, looking through one level
// of pointer.
func (c *Compiler) structOf(t *ast.Type) (*structInfo, bool) {
	if t == nil {
		return nil, false
	}
	switch t.Kind {
	case ast.TypeStruct:
		return c.lookupStruct(t.Name)
	case ast.TypePtr, ast.TypeMutPtr, ast.TypeRawPtr:
		if t.Elem != nil && t.Elem.Kind == ast.TypeStruct {
			return c.lookupStruct(t.Elem.Name)
		}
	}
	return nil, false
}

// toIRType maps a source type to its backend representation.
func (c *Compiler) toIRType(t *ast.Type) (ir.Type, error) {
	if t == nil {
		return ir.Void, nil
	}
	switch t.Kind {
	case ast.TypeUnknown:
		return ir.I32, nil
	case ast.TypeI8, ast.TypeU8:
		return ir.I8, nil
	case ast.TypeI16, ast.TypeU16:
		return ir.I16, nil
	case ast.TypeI32, ast.TypeU32:
		return ir.I32, nil
	case ast.TypeI64, ast.TypeU64, ast.TypeUsize:
		return ir.I64, nil
	case ast.TypeF32:
		return ir.F32, nil
	case ast.TypeF64:
		return ir.F64, nil
	case ast.TypeBool:
		return ir.I1, nil
	case ast.TypeVoid:
		return ir.Void, nil
	case ast.TypeString, ast.TypePtr, ast.TypeMutPtr, ast.TypeRawPtr, ast.TypeVec,
		ast.TypeFunction, ast.TypeFunctionPointer:
		return ir.Ptr, nil
	case ast.TypeArray:
		if t.Len < 0 {
			return nil, typeError("negative array length in %s", t)
		}
		elem, err := c.toIRType(t.Elem)
		if err != nil {
			return nil, err
		}
		if ir.IsVoid(elem) {
			return nil, typeError("array of void")
		}
		return &ir.ArrayType{Len: t.Len, Elem: elem}, nil
	case ast.TypeStruct:
		if si, ok := c.lookupStruct(t.Name); ok {
			return si.ty, nil
		}
		if ei, ok := c.lookupEnum(t.Name); ok {
			return ei.ty, nil
		}
		return nil, undeclaredVariable(t.Name)
	case ast.TypeEnum:
		if ei, ok := c.lookupEnum(t.Name); ok {
			return ei.ty, nil
		}
		return nil, undeclaredVariable(t.Name)
	case ast.TypeGeneric:
		if ei, ok := c.lookupEnum(t.Name); ok {
			return ei.ty, nil
		}
		if si, ok := c.lookupStruct(t.Name); ok {
			return si.ty, nil
		}
		// Array<T>, HashMap<K, V> and unbound type parameters are handles.
		return ir.Ptr, nil
	case ast.TypeRange:
		return rangeIRType, nil
	}
	return nil, internalError("no backend type for %s", t)
}

// funcSig builds the backend signature of a function.
func (c *Compiler) funcSig(params []*ast.Type, ret *ast.Type, varargs, isMain bool) (*ir.FuncType, error) {
	sig := &ir.FuncType{Variadic: varargs}
	for i, p := range params {
		pt, err := c.toIRType(p)
		if err != nil {
			return nil, err
		}
		if ir.IsVoid(pt) {
			return nil, typeError("parameter %d has type void", i)
		}
		sig.Params = append(sig.Params, pt)
	}
	if ret != nil && ret.Kind == ast.TypeRawPtr {
		return nil, typeError("functions cannot return raw pointers")
	}
	rt, err := c.toIRType(ret)
	if err != nil {
		return nil, err
	}
	if isMain && ir.IsVoid(rt) {
		rt = ir.I32
	}
	sig.Ret = rt
	return sig, nil
}

// sizeOf returns the allocation size of a backend type.
func (c *Compiler) sizeOf(t ir.Type) (int, error) {
	n, err := c.layout.SizeOf(t)
	if err != nil {
		return 0, internalError("layout of %s: %v", t, err)
	}
	return n, nil
}

var intKinds = map[bool]map[int]ast.TypeKind{
	true:  {8: ast.TypeI8, 16: ast.TypeI16, 32: ast.TypeI32, 64: ast.TypeI64},
	false: {8: ast.TypeU8, 16: ast.TypeU16, 32: ast.TypeU32, 64: ast.TypeU64},
}

// PromoteNumeric returns the common type of two numeric operands. Any float
// operand yields a float, f64 when either side is 64 bits wide and f32
// otherwise. Two integers yield the wider width, signed when either side is.
func PromoteNumeric(a, b *ast.Type) *ast.Type {
	if a.Equal(b) {
		return a.Clone()
	}
	wa, wb := a.BitWidth(), b.BitWidth()
	width := max(wa, wb)
	if a.IsFloat() || b.IsFloat() {
		if width >= 64 {
			return ast.F64()
		}
		return ast.F32()
	}
	if width <= 1 {
		return ast.Bool()
	}
	if width < 8 {
		width = 8
	}
	signed := a.IsSigned() || b.IsSigned()
	return ast.Prim(intKinds[signed][width])
}

// irIntType returns the integer type of a source type, or nil.
func irIntType(t *ast.Type) *ir.IntType {
	if t.IsInteger() || t.IsBool() {
		return ir.IntN(t.BitWidth())
	}
	return nil
}
