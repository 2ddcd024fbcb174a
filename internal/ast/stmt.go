package ast

import (
	"zenc/internal/source"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtExpr
	StmtReturn
	StmtVarDecl
	StmtAssign
	StmtPointerAssign
	StmtLoop
	StmtBreak
	StmtContinue
	StmtDefer
	StmtComptime
	StmtImport
)

var stmtKindNames = [...]string{
	StmtInvalid:       "Invalid",
	StmtExpr:          "Expr",
	StmtReturn:        "Return",
	StmtVarDecl:       "VarDecl",
	StmtAssign:        "Assign",
	StmtPointerAssign: "PointerAssign",
	StmtLoop:          "Loop",
	StmtBreak:         "Break",
	StmtContinue:      "Continue",
	StmtDefer:         "Defer",
	StmtComptime:      "Comptime",
	StmtImport:        "Import",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Unknown"
}

// Stmt is one statement node. Kind selects which payload field is set.
type Stmt struct {
	Kind StmtKind    `msgpack:"k"`
	Span source.Span `msgpack:"sp"`

	// Expr is the expression of StmtExpr, the optional value of StmtReturn
	// and the deferred expression of StmtDefer.
	Expr   *Expr         `msgpack:"expr,omitempty"`
	Var    *VarDecl      `msgpack:"var,omitempty"`
	Assign *AssignStmt   `msgpack:"assign,omitempty"`
	Loop   *LoopStmt     `msgpack:"loop,omitempty"`
	Label  string        `msgpack:"label,omitempty"` // Break, Continue
	Block  []*Stmt       `msgpack:"block,omitempty"` // Comptime
	Import *ModuleImport `msgpack:"import,omitempty"`
}

// VarKind records which declaration syntax introduced a variable.
type VarKind uint8

const (
	VarInferredImmutable VarKind = iota // x = v
	VarInferredMutable                  // x ::= v
	VarExplicitImmutable                // x: T = v
	VarExplicitMutable                  // x:: T = v
)

func (k VarKind) String() string {
	switch k {
	case VarInferredImmutable:
		return "="
	case VarInferredMutable:
		return "::="
	case VarExplicitImmutable:
		return ": T ="
	case VarExplicitMutable:
		return ":: T ="
	}
	return "?"
}

// VarDecl declares a local. Init is nil for a forward declaration.
type VarDecl struct {
	Name    string  `msgpack:"name"`
	Type    *Type   `msgpack:"type,omitempty"`
	Init    *Expr   `msgpack:"init,omitempty"`
	Mutable bool    `msgpack:"mut,omitempty"`
	Kind    VarKind `msgpack:"vk,omitempty"`
}

// AssignStmt is `name = value` (Name set) or `target = value` through a
// pointer, field or index (Target set).
type AssignStmt struct {
	Name   string `msgpack:"name,omitempty"`
	Target *Expr  `msgpack:"target,omitempty"`
	Value  *Expr  `msgpack:"v"`
}

type LoopKind uint8

const (
	LoopInfinite LoopKind = iota
	LoopCondition
)

type LoopStmt struct {
	Kind  LoopKind `msgpack:"lk"`
	Cond  *Expr    `msgpack:"cond,omitempty"`
	Label string   `msgpack:"label,omitempty"`
	Body  []*Stmt  `msgpack:"body,omitempty"`
}

// ModuleImport is `alias := @std.module`.
type ModuleImport struct {
	Alias string `msgpack:"alias"`
	Path  string `msgpack:"path"`
}

// Module returns the last path segment: "@std.io" -> "io".
func (m *ModuleImport) Module() string {
	p := m.Path
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '.' || p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
