package ast

import (
	"strconv"
	"strings"
)

// TypeKind enumerates every type expressible in source.
type TypeKind uint8

const (
	// TypeUnknown is the zero kind: a type the front end left for inference.
	TypeUnknown TypeKind = iota
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeUsize
	TypeF32
	TypeF64
	TypeBool
	TypeVoid
	TypeString
	TypePtr
	TypeMutPtr
	TypeRawPtr
	TypeArray // fixed size: Elem, Len
	TypeVec   // dynamic vector: Elem
	TypeStruct
	TypeEnum
	TypeGeneric // Name + Args, e.g. Result<T, E>
	TypeFunction
	TypeFunctionPointer
	TypeRange
)

// Type is a structural description of a source type.
type Type struct {
	Kind TypeKind `msgpack:"k"`
	Name string   `msgpack:"n,omitempty"`
	Elem *Type    `msgpack:"el,omitempty"`
	Len  int      `msgpack:"len,omitempty"`
	// Args holds generic arguments or function parameter types.
	Args []*Type `msgpack:"args,omitempty"`
	Ret  *Type   `msgpack:"ret,omitempty"`
}

var primitiveNames = map[TypeKind]string{
	TypeUnknown: "_",
	TypeI8:      "i8",
	TypeI16:     "i16",
	TypeI32:     "i32",
	TypeI64:     "i64",
	TypeU8:      "u8",
	TypeU16:     "u16",
	TypeU32:     "u32",
	TypeU64:     "u64",
	TypeUsize:   "usize",
	TypeF32:     "f32",
	TypeF64:     "f64",
	TypeBool:    "bool",
	TypeVoid:    "void",
	TypeString:  "StaticString",
	TypeRange:   "Range",
}

// Prim returns a fresh primitive type of kind k.
func Prim(k TypeKind) *Type { return &Type{Kind: k} }

func I8() *Type            { return Prim(TypeI8) }
func I16() *Type           { return Prim(TypeI16) }
func I32() *Type           { return Prim(TypeI32) }
func I64() *Type           { return Prim(TypeI64) }
func U8() *Type            { return Prim(TypeU8) }
func U16() *Type           { return Prim(TypeU16) }
func U32() *Type           { return Prim(TypeU32) }
func U64() *Type           { return Prim(TypeU64) }
func Usize() *Type         { return Prim(TypeUsize) }
func F32() *Type           { return Prim(TypeF32) }
func F64() *Type           { return Prim(TypeF64) }
func Bool() *Type          { return Prim(TypeBool) }
func Void() *Type          { return Prim(TypeVoid) }
func StaticString() *Type  { return Prim(TypeString) }
func Unknown() *Type       { return Prim(TypeUnknown) }
func Range() *Type         { return Prim(TypeRange) }
func Ptr(e *Type) *Type    { return &Type{Kind: TypePtr, Elem: e} }
func MutPtr(e *Type) *Type { return &Type{Kind: TypeMutPtr, Elem: e} }
func RawPtr(e *Type) *Type { return &Type{Kind: TypeRawPtr, Elem: e} }

// ArrayOf is a fixed-size array type.
func ArrayOf(e *Type, n int) *Type { return &Type{Kind: TypeArray, Elem: e, Len: n} }

func VecOf(e *Type) *Type { return &Type{Kind: TypeVec, Elem: e} }

func StructType(name string) *Type { return &Type{Kind: TypeStruct, Name: name} }

func EnumType(name string) *Type { return &Type{Kind: TypeEnum, Name: name} }

func Generic(name string, args ...*Type) *Type {
	return &Type{Kind: TypeGeneric, Name: name, Args: args}
}

func Option(t *Type) *Type { return Generic("Option", t) }

func Result(ok, err *Type) *Type { return Generic("Result", ok, err) }

func Func(ret *Type, params ...*Type) *Type {
	return &Type{Kind: TypeFunction, Args: params, Ret: ret}
}

func FuncPtr(ret *Type, params ...*Type) *Type {
	return &Type{Kind: TypeFunctionPointer, Args: params, Ret: ret}
}

func (t *Type) IsInteger() bool {
	if t == nil {
		return false
	}
	return t.Kind >= TypeI8 && t.Kind <= TypeUsize
}

func (t *Type) IsSigned() bool {
	return t != nil && t.Kind >= TypeI8 && t.Kind <= TypeI64
}

func (t *Type) IsUnsigned() bool {
	return t != nil && t.Kind >= TypeU8 && t.Kind <= TypeUsize
}

func (t *Type) IsFloat() bool {
	return t != nil && (t.Kind == TypeF32 || t.Kind == TypeF64)
}

func (t *Type) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

func (t *Type) IsBool() bool { return t != nil && t.Kind == TypeBool }

func (t *Type) IsVoid() bool { return t != nil && t.Kind == TypeVoid }

func (t *Type) IsUnknown() bool { return t == nil || t.Kind == TypeUnknown }

// IsPointer reports pointer wrappers and strings, which are byte pointers.
func (t *Type) IsPointer() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypePtr, TypeMutPtr, TypeRawPtr, TypeString:
		return true
	}
	return false
}

// IsCallable reports function and function-pointer types.
func (t *Type) IsCallable() bool {
	return t != nil && (t.Kind == TypeFunction || t.Kind == TypeFunctionPointer)
}

// EnumName returns the enum a type denotes: the name of a TypeEnum or of a
// generic instantiation such as Option<T>.
func (t *Type) EnumName() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeEnum, TypeGeneric:
		return t.Name
	}
	return ""
}

// Arg returns the i-th generic argument or nil.
func (t *Type) Arg(i int) *Type {
	if t == nil || i < 0 || i >= len(t.Args) {
		return nil
	}
	return t.Args[i]
}

// BitWidth reports the width of integer, float and bool types, 0 otherwise.
func (t *Type) BitWidth() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case TypeI8, TypeU8:
		return 8
	case TypeI16, TypeU16:
		return 16
	case TypeI32, TypeU32, TypeF32:
		return 32
	case TypeI64, TypeU64, TypeUsize, TypeF64:
		return 64
	case TypeBool:
		return 1
	}
	return 0
}

// Equal is structural equality. Generic instantiations match by name plus
// recursive equality of their arguments.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Name != o.Name || t.Len != o.Len || len(t.Args) != len(o.Args) {
		return false
	}
	if !t.Elem.Equal(o.Elem) || !t.Ret.Equal(o.Ret) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Elem = t.Elem.Clone()
	c.Ret = t.Ret.Clone()
	if t.Args != nil {
		c.Args = make([]*Type, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = a.Clone()
		}
	}
	return &c
}

func (t *Type) String() string {
	if t == nil {
		return "_"
	}
	if name, ok := primitiveNames[t.Kind]; ok {
		return name
	}
	var sb strings.Builder
	switch t.Kind {
	case TypePtr:
		sb.WriteString("Ptr<" + t.Elem.String() + ">")
	case TypeMutPtr:
		sb.WriteString("MutPtr<" + t.Elem.String() + ">")
	case TypeRawPtr:
		sb.WriteString("RawPtr<" + t.Elem.String() + ">")
	case TypeArray:
		sb.WriteString("[" + t.Elem.String() + "; " + strconv.Itoa(t.Len) + "]")
	case TypeVec:
		sb.WriteString("DynVec<" + t.Elem.String() + ">")
	case TypeStruct, TypeEnum:
		sb.WriteString(t.Name)
	case TypeGeneric:
		sb.WriteString(t.Name)
		writeTypeList(&sb, "<", t.Args, ">")
	case TypeFunction, TypeFunctionPointer:
		if t.Kind == TypeFunctionPointer {
			sb.WriteString("fn")
		}
		writeTypeList(&sb, "(", t.Args, ")")
		sb.WriteString(" " + t.Ret.String())
	default:
		sb.WriteString("?")
	}
	return sb.String()
}

func writeTypeList(sb *strings.Builder, open string, ts []*Type, closing string) {
	sb.WriteString(open)
	for i, a := range ts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(closing)
}
