package ir

import (
	"strconv"
	"strings"
)

// Type is a backend type. Two types are equal when their textual forms are.
type Type interface {
	String() string
	isType()
}

type IntType struct{ Bits int }

type FloatType struct{ Bits int } // 32 or 64

type PtrType struct{}

type VoidType struct{}

// StructType is either a literal struct or, when Name is set, a named
// (identified) struct printed as %Name.
type StructType struct {
	Name   string
	Fields []Type
}

type ArrayType struct {
	Len  int
	Elem Type
}

type FuncType struct {
	Ret      Type
	Params   []Type
	Variadic bool
}

var (
	I1   = &IntType{Bits: 1}
	I8   = &IntType{Bits: 8}
	I16  = &IntType{Bits: 16}
	I32  = &IntType{Bits: 32}
	I64  = &IntType{Bits: 64}
	F32  = &FloatType{Bits: 32}
	F64  = &FloatType{Bits: 64}
	Ptr  = &PtrType{}
	Void = &VoidType{}
)

// IntN returns the shared integer type of the given width.
func IntN(bits int) *IntType {
	switch bits {
	case 1:
		return I1
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	}
	return &IntType{Bits: bits}
}

func (*IntType) isType()    {}
func (*FloatType) isType()  {}
func (*PtrType) isType()    {}
func (*VoidType) isType()   {}
func (*StructType) isType() {}
func (*ArrayType) isType()  {}
func (*FuncType) isType()   {}

func (t *IntType) String() string { return "i" + strconv.Itoa(t.Bits) }

func (t *FloatType) String() string {
	if t.Bits == 32 {
		return "float"
	}
	return "double"
}

func (*PtrType) String() string  { return "ptr" }
func (*VoidType) String() string { return "void" }

func (t *StructType) String() string {
	if t.Name != "" {
		return "%" + t.Name
	}
	return t.Body()
}

// Body prints the field list regardless of the name.
func (t *StructType) Body() string {
	if len(t.Fields) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (t *ArrayType) String() string {
	return "[" + strconv.Itoa(t.Len) + " x " + t.Elem.String() + "]"
}

func (t *FuncType) String() string {
	parts := make([]string, 0, len(t.Params)+1)
	for _, p := range t.Params {
		parts = append(parts, p.String())
	}
	if t.Variadic {
		parts = append(parts, "...")
	}
	return t.Ret.String() + " (" + strings.Join(parts, ", ") + ")"
}

// Equal compares types by their textual form.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || a.String() == b.String()
}

func IsInt(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

func IsFloat(t Type) bool {
	_, ok := t.(*FloatType)
	return ok
}

func IsPtr(t Type) bool {
	_, ok := t.(*PtrType)
	return ok
}

func IsVoid(t Type) bool {
	_, ok := t.(*VoidType)
	return ok || t == nil
}

func IsAggregate(t Type) bool {
	switch t.(type) {
	case *StructType, *ArrayType:
		return true
	}
	return false
}

// IntBits returns the width of an integer type, 0 otherwise.
func IntBits(t Type) int {
	if it, ok := t.(*IntType); ok {
		return it.Bits
	}
	return 0
}

// FloatBits returns the width of a float type, 0 otherwise.
func FloatBits(t Type) int {
	if ft, ok := t.(*FloatType); ok {
		return ft.Bits
	}
	return 0
}
