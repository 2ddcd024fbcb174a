package ast

import (
	"zenc/internal/source"
)

type PatternKind uint8

const (
	PatInvalid PatternKind = iota
	PatLiteral
	PatIdent
	PatWildcard
	PatRange
	PatEnumVariant // Enum.Variant(payload)
	PatEnumLiteral // .Variant(payload)
	PatStruct
	PatOr
	PatBinding // name @ pattern
	PatType
)

func (k PatternKind) String() string {
	switch k {
	case PatLiteral:
		return "Literal"
	case PatIdent:
		return "Ident"
	case PatWildcard:
		return "Wildcard"
	case PatRange:
		return "Range"
	case PatEnumVariant:
		return "EnumVariant"
	case PatEnumLiteral:
		return "EnumLiteral"
	case PatStruct:
		return "Struct"
	case PatOr:
		return "Or"
	case PatBinding:
		return "Binding"
	case PatType:
		return "Type"
	}
	return "Invalid"
}

type Pattern struct {
	Kind PatternKind `msgpack:"k"`
	Span source.Span `msgpack:"sp"`

	Lit    *Expr           `msgpack:"lit,omitempty"`    // Literal
	Name   string          `msgpack:"name,omitempty"`   // Ident, Binding, Struct name
	Range  *RangePattern   `msgpack:"range,omitempty"`  // Range
	Enum   *EnumPattern    `msgpack:"enum,omitempty"`   // EnumVariant, EnumLiteral
	Fields []*FieldPattern `msgpack:"fields,omitempty"` // Struct
	Alts   []*Pattern      `msgpack:"alts,omitempty"`   // Or
	Sub    *Pattern        `msgpack:"sub,omitempty"`    // Binding
	Type   *Type           `msgpack:"type,omitempty"`   // Type
}

type RangePattern struct {
	Start     *Expr `msgpack:"start"`
	End       *Expr `msgpack:"end"`
	Inclusive bool  `msgpack:"incl,omitempty"`
}

type EnumPattern struct {
	EnumName string   `msgpack:"enum,omitempty"`
	Variant  string   `msgpack:"variant"`
	Payload  *Pattern `msgpack:"payload,omitempty"`
}

type FieldPattern struct {
	Name    string   `msgpack:"name"`
	Pattern *Pattern `msgpack:"pat,omitempty"` // nil binds the field to its own name
}
