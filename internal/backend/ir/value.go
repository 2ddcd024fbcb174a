package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Value is anything an instruction can use as an operand.
type Value interface {
	Type() Type
	// Ident is the operand spelling without its type, e.g. %t3, @main, 42.
	Ident() string
}

// ConstInt is an integer constant. V holds the bits sign-extended to 64.
type ConstInt struct {
	Typ *IntType
	V   int64
}

type ConstFloat struct {
	Typ *FloatType
	V   float64
}

// ConstNull is the null pointer.
type ConstNull struct{}

// ConstZero is zeroinitializer of any type.
type ConstZero struct{ Typ Type }

type ConstUndef struct{ Typ Type }

// Global is a module-level constant or external variable.
type Global struct {
	Name     string
	Typ      Type // type of the stored value
	Init     []byte
	Constant bool
	External bool
}

// Param is a function parameter.
type Param struct {
	Name string
	Typ  Type
	Fn   *Func
	Idx  int
}

func NewInt(t *IntType, v int64) *ConstInt {
	return &ConstInt{Typ: t, V: truncSigned(v, t.Bits)}
}

func NewBool(v bool) *ConstInt {
	if v {
		return &ConstInt{Typ: I1, V: 1}
	}
	return &ConstInt{Typ: I1, V: 0}
}

func NewFloat(t *FloatType, v float64) *ConstFloat {
	if t.Bits == 32 {
		v = float64(float32(v))
	}
	return &ConstFloat{Typ: t, V: v}
}

func Null() *ConstNull { return &ConstNull{} }

func Zero(t Type) Value {
	switch tt := t.(type) {
	case *IntType:
		return NewInt(tt, 0)
	case *FloatType:
		return NewFloat(tt, 0)
	case *PtrType:
		return Null()
	}
	return &ConstZero{Typ: t}
}

func (c *ConstInt) Type() Type { return c.Typ }

func (c *ConstInt) Ident() string {
	if c.Typ.Bits == 1 {
		if c.V != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatInt(c.V, 10)
}

func (c *ConstFloat) Type() Type { return c.Typ }

// Ident prints integral values in decimal and everything else as the exact
// hexadecimal double bit pattern, which LLVM accepts for both widths.
func (c *ConstFloat) Ident() string {
	v := c.V
	if v == math.Trunc(v) && math.Abs(v) < 1e15 && (v != 0 || !math.Signbit(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(v))
}

func (*ConstNull) Type() Type    { return Ptr }
func (*ConstNull) Ident() string { return "null" }

func (c *ConstZero) Type() Type   { return c.Typ }
func (*ConstZero) Ident() string  { return "zeroinitializer" }
func (c *ConstUndef) Type() Type  { return c.Typ }
func (*ConstUndef) Ident() string { return "undef" }
func (g *Global) Type() Type      { return Ptr }
func (g *Global) Ident() string   { return "@" + g.Name }
func (p *Param) Type() Type       { return p.Typ }
func (p *Param) Ident() string    { return "%p." + p.Name }

// truncSigned keeps the low bits and sign-extends them back to 64.
func truncSigned(v int64, bits int) int64 {
	if bits >= 64 || bits <= 0 {
		return v
	}
	shift := uint(64 - bits)
	return v << shift >> shift
}

// IsConst reports compile-time constants.
func IsConst(v Value) bool {
	switch v.(type) {
	case *ConstInt, *ConstFloat, *ConstNull, *ConstZero, *ConstUndef:
		return true
	}
	return false
}

// typed prints "<type> <ident>".
func typed(v Value) string {
	return v.Type().String() + " " + v.Ident()
}
