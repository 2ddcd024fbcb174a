package ast

import (
	"zenc/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprInt
	ExprFloat
	ExprBool
	ExprString
	ExprUnit
	ExprIdent
	ExprBinary
	ExprUnary
	ExprCall
	ExprMethodCall
	ExprMatch       // scrutinee ? | pattern => body ...
	ExprConditional // cond ? | true => a | false => b
	ExprAddressOf
	ExprDeref
	ExprPointerOffset
	ExprStructLit
	ExprField
	ExprArrayLit
	ExprIndex
	ExprEnumVariant // Enum.Variant(payload)
	ExprEnumLiteral // .Variant(payload)
	ExprSome
	ExprNone
	ExprInterp
	ExprRange
	ExprClosure
	ExprBlock
	ExprCast
	ExprRaise
)

var exprKindNames = [...]string{
	ExprInvalid:       "Invalid",
	ExprInt:           "Int",
	ExprFloat:         "Float",
	ExprBool:          "Bool",
	ExprString:        "String",
	ExprUnit:          "Unit",
	ExprIdent:         "Ident",
	ExprBinary:        "Binary",
	ExprUnary:         "Unary",
	ExprCall:          "Call",
	ExprMethodCall:    "MethodCall",
	ExprMatch:         "Match",
	ExprConditional:   "Conditional",
	ExprAddressOf:     "AddressOf",
	ExprDeref:         "Deref",
	ExprPointerOffset: "PointerOffset",
	ExprStructLit:     "StructLit",
	ExprField:         "Field",
	ExprArrayLit:      "ArrayLit",
	ExprIndex:         "Index",
	ExprEnumVariant:   "EnumVariant",
	ExprEnumLiteral:   "EnumLiteral",
	ExprSome:          "Some",
	ExprNone:          "None",
	ExprInterp:        "Interp",
	ExprRange:         "Range",
	ExprClosure:       "Closure",
	ExprBlock:         "Block",
	ExprCast:          "Cast",
	ExprRaise:         "Raise",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// Expr is one expression node. Kind selects which payload field is set.
type Expr struct {
	Kind ExprKind    `msgpack:"k"`
	Span source.Span `msgpack:"sp"`

	Lit     *Literal           `msgpack:"lit,omitempty"`     // Int, Float, Bool, String
	Name    string             `msgpack:"name,omitempty"`    // Ident
	Binary  *BinaryExpr        `msgpack:"bin,omitempty"`     // Binary
	Unary   *UnaryExpr         `msgpack:"un,omitempty"`      // Unary
	Call    *CallExpr          `msgpack:"call,omitempty"`    // Call
	Method  *MethodCallExpr    `msgpack:"mcall,omitempty"`   // MethodCall
	Match   *MatchExpr         `msgpack:"match,omitempty"`   // Match, Conditional
	Operand *Expr              `msgpack:"operand,omitempty"` // AddressOf, Deref, Raise
	Offset  *PointerOffsetExpr `msgpack:"offset,omitempty"`  // PointerOffset
	Struct  *StructLitExpr     `msgpack:"struct,omitempty"`  // StructLit
	Field   *FieldExpr         `msgpack:"field,omitempty"`   // Field
	Array   *ArrayLitExpr      `msgpack:"array,omitempty"`   // ArrayLit
	Index   *IndexExpr         `msgpack:"index,omitempty"`   // Index
	Enum    *EnumExpr          `msgpack:"enum,omitempty"`    // EnumVariant, EnumLiteral, Some, None
	Parts   []*Expr            `msgpack:"parts,omitempty"`   // Interp
	Range   *RangeExpr         `msgpack:"range,omitempty"`   // Range
	Closure *ClosureExpr       `msgpack:"closure,omitempty"` // Closure
	Block   []*Stmt            `msgpack:"block,omitempty"`   // Block
	Cast    *CastExpr          `msgpack:"cast,omitempty"`    // Cast
}

// Literal carries the value of a literal expression. Type is the literal's
// declared kind (i8..u64 for integers, f32/f64 for floats); integer bits are
// stored in Int regardless of signedness.
type Literal struct {
	Type  TypeKind `msgpack:"t"`
	Int   int64    `msgpack:"i,omitempty"`
	Float float64  `msgpack:"f,omitempty"`
	Bool  bool     `msgpack:"b,omitempty"`
	Str   string   `msgpack:"s,omitempty"`
}

type BinaryExpr struct {
	Op    BinaryOp `msgpack:"op"`
	Left  *Expr    `msgpack:"l"`
	Right *Expr    `msgpack:"r"`
}

type UnaryExpr struct {
	Op      UnaryOp `msgpack:"op"`
	Operand *Expr   `msgpack:"x"`
}

// CallExpr is a direct call. Module is set for namespaced calls such as
// io.println or Point.new.
type CallExpr struct {
	Module string  `msgpack:"mod,omitempty"`
	Name   string  `msgpack:"name"`
	Args   []*Expr `msgpack:"args,omitempty"`
}

// QualifiedName returns "module.name" or just the name.
func (c *CallExpr) QualifiedName() string {
	if c.Module == "" {
		return c.Name
	}
	return c.Module + "." + c.Name
}

type MethodCallExpr struct {
	Receiver *Expr   `msgpack:"recv"`
	Method   string  `msgpack:"m"`
	Args     []*Expr `msgpack:"args,omitempty"`
}

type MatchExpr struct {
	Scrutinee *Expr       `msgpack:"scrut"`
	Arms      []*MatchArm `msgpack:"arms"`
}

type MatchArm struct {
	Pattern *Pattern `msgpack:"pat"`
	Guard   *Expr    `msgpack:"guard,omitempty"`
	Body    *Expr    `msgpack:"body"`
}

type PointerOffsetExpr struct {
	Ptr    *Expr `msgpack:"ptr"`
	Offset *Expr `msgpack:"off"`
}

type StructLitExpr struct {
	Name   string       `msgpack:"name"`
	Fields []*FieldInit `msgpack:"fields,omitempty"`
}

type FieldInit struct {
	Name  string `msgpack:"name"`
	Value *Expr  `msgpack:"v"`
}

type FieldExpr struct {
	Target *Expr  `msgpack:"target"`
	Field  string `msgpack:"field"`
}

type ArrayLitExpr struct {
	Elems    []*Expr `msgpack:"elems,omitempty"`
	ElemType *Type   `msgpack:"et,omitempty"`
}

type IndexExpr struct {
	Target *Expr `msgpack:"target"`
	Index  *Expr `msgpack:"index"`
}

// EnumExpr constructs an enum value. EnumName is empty for the shorthand
// literal form and for Some/None.
type EnumExpr struct {
	EnumName string `msgpack:"enum,omitempty"`
	Variant  string `msgpack:"variant"`
	Payload  *Expr  `msgpack:"payload,omitempty"`
}

type RangeExpr struct {
	Start     *Expr `msgpack:"start"`
	End       *Expr `msgpack:"end"`
	Inclusive bool  `msgpack:"incl,omitempty"`
}

type ClosureExpr struct {
	Params []*Param `msgpack:"params,omitempty"`
	Ret    *Type    `msgpack:"ret,omitempty"`
	Body   *Expr    `msgpack:"body"`
}

type CastExpr struct {
	Value  *Expr `msgpack:"v"`
	Target *Type `msgpack:"t"`
}
