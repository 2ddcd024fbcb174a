package ast

import (
	"zenc/internal/source"
)

type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemFunction
	ItemExternal
	ItemStruct
	ItemEnum
	ItemImport
)

func (k ItemKind) String() string {
	switch k {
	case ItemFunction:
		return "Function"
	case ItemExternal:
		return "External"
	case ItemStruct:
		return "Struct"
	case ItemEnum:
		return "Enum"
	case ItemImport:
		return "Import"
	}
	return "Invalid"
}

// Program is an ordered list of top-level declarations.
type Program struct {
	Items []*Item `msgpack:"items"`
}

// Item is one top-level declaration.
type Item struct {
	Kind ItemKind    `msgpack:"k"`
	Span source.Span `msgpack:"sp"`

	Func   *Function         `msgpack:"fn,omitempty"`
	Extern *ExternalFunction `msgpack:"extern,omitempty"`
	Struct *StructDef        `msgpack:"struct,omitempty"`
	Enum   *EnumDef          `msgpack:"enum,omitempty"`
	Import *ModuleImport     `msgpack:"import,omitempty"`
}

type Function struct {
	Name       string      `msgpack:"name"`
	TypeParams []string    `msgpack:"tparams,omitempty"`
	Params     []*Param    `msgpack:"params,omitempty"`
	Ret        *Type       `msgpack:"ret"`
	Body       []*Stmt     `msgpack:"body,omitempty"`
	Varargs    bool        `msgpack:"varargs,omitempty"`
	Public     bool        `msgpack:"pub,omitempty"`
	Span       source.Span `msgpack:"sp"`
}

// ReturnType treats a missing return type as void.
func (f *Function) ReturnType() *Type {
	if f.Ret == nil {
		return Void()
	}
	return f.Ret
}

type Param struct {
	Name    string `msgpack:"name"`
	Type    *Type  `msgpack:"type"`
	Mutable bool   `msgpack:"mut,omitempty"`
}

type ExternalFunction struct {
	Name    string  `msgpack:"name"`
	Params  []*Type `msgpack:"params,omitempty"`
	Ret     *Type   `msgpack:"ret"`
	Varargs bool    `msgpack:"varargs,omitempty"`
}

type StructDef struct {
	Name    string         `msgpack:"name"`
	Fields  []*StructField `msgpack:"fields,omitempty"`
	Methods []*Function    `msgpack:"methods,omitempty"`
}

type StructField struct {
	Name    string `msgpack:"name"`
	Type    *Type  `msgpack:"type"`
	Mutable bool   `msgpack:"mut,omitempty"`
	Default *Expr  `msgpack:"default,omitempty"`
}

type EnumDef struct {
	Name     string         `msgpack:"name"`
	Variants []*EnumVariant `msgpack:"variants"`
}

type EnumVariant struct {
	Name    string `msgpack:"name"`
	Payload *Type  `msgpack:"payload,omitempty"`
}
