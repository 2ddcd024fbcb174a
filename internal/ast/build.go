package ast

// Constructors for building trees in memory. The front end and the tests use
// these; spans are left zero.

func IntLit(kind TypeKind, v int64) *Expr {
	return &Expr{Kind: ExprInt, Lit: &Literal{Type: kind, Int: v}}
}

// Int is an i32 literal, the default integer literal type.
func Int(v int64) *Expr { return IntLit(TypeI32, v) }

func Int64(v int64) *Expr { return IntLit(TypeI64, v) }

func FloatLit(kind TypeKind, v float64) *Expr {
	return &Expr{Kind: ExprFloat, Lit: &Literal{Type: kind, Float: v}}
}

func Float(v float64) *Expr { return FloatLit(TypeF64, v) }

func BoolLit(v bool) *Expr {
	return &Expr{Kind: ExprBool, Lit: &Literal{Type: TypeBool, Bool: v}}
}

func Str(s string) *Expr {
	return &Expr{Kind: ExprString, Lit: &Literal{Type: TypeString, Str: s}}
}

func UnitLit() *Expr { return &Expr{Kind: ExprUnit} }

func Ident(name string) *Expr { return &Expr{Kind: ExprIdent, Name: name} }

func Bin(op BinaryOp, l, r *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Binary: &BinaryExpr{Op: op, Left: l, Right: r}}
}

func Neg(x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Unary: &UnaryExpr{Op: OpNeg, Operand: x}}
}

func Not(x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Unary: &UnaryExpr{Op: OpNot, Operand: x}}
}

func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Call: &CallExpr{Name: name, Args: args}}
}

// ModCall is a namespaced call such as io.println(x).
func ModCall(module, name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Call: &CallExpr{Module: module, Name: name, Args: args}}
}

func MethodCall(recv *Expr, method string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprMethodCall, Method: &MethodCallExpr{Receiver: recv, Method: method, Args: args}}
}

func Match(scrutinee *Expr, arms ...*MatchArm) *Expr {
	return &Expr{Kind: ExprMatch, Match: &MatchExpr{Scrutinee: scrutinee, Arms: arms}}
}

// Cond is the boolean conditional form: cond ? | true => then | false => els.
// A nil els produces a single-arm conditional.
func Cond(cond, then, els *Expr) *Expr {
	arms := []*MatchArm{Arm(PLit(BoolLit(true)), then)}
	if els != nil {
		arms = append(arms, Arm(PLit(BoolLit(false)), els))
	}
	return &Expr{Kind: ExprConditional, Match: &MatchExpr{Scrutinee: cond, Arms: arms}}
}

func Arm(p *Pattern, body *Expr) *MatchArm { return &MatchArm{Pattern: p, Body: body} }

func GuardArm(p *Pattern, guard, body *Expr) *MatchArm {
	return &MatchArm{Pattern: p, Guard: guard, Body: body}
}

func AddrOf(x *Expr) *Expr { return &Expr{Kind: ExprAddressOf, Operand: x} }

func Deref(x *Expr) *Expr { return &Expr{Kind: ExprDeref, Operand: x} }

func PtrOffset(p, off *Expr) *Expr {
	return &Expr{Kind: ExprPointerOffset, Offset: &PointerOffsetExpr{Ptr: p, Offset: off}}
}

func StructLit(name string, fields ...*FieldInit) *Expr {
	return &Expr{Kind: ExprStructLit, Struct: &StructLitExpr{Name: name, Fields: fields}}
}

func FieldVal(name string, v *Expr) *FieldInit { return &FieldInit{Name: name, Value: v} }

func Field(target *Expr, field string) *Expr {
	return &Expr{Kind: ExprField, Field: &FieldExpr{Target: target, Field: field}}
}

func ArrayLit(elems ...*Expr) *Expr {
	return &Expr{Kind: ExprArrayLit, Array: &ArrayLitExpr{Elems: elems}}
}

func Index(target, idx *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Index: &IndexExpr{Target: target, Index: idx}}
}

// EnumVal is Enum.Variant(payload); payload may be nil.
func EnumVal(enum, variant string, payload *Expr) *Expr {
	return &Expr{Kind: ExprEnumVariant, Enum: &EnumExpr{EnumName: enum, Variant: variant, Payload: payload}}
}

// EnumLit is the shorthand .Variant(payload).
func EnumLit(variant string, payload *Expr) *Expr {
	return &Expr{Kind: ExprEnumLiteral, Enum: &EnumExpr{Variant: variant, Payload: payload}}
}

func Some(x *Expr) *Expr {
	return &Expr{Kind: ExprSome, Enum: &EnumExpr{EnumName: "Option", Variant: "Some", Payload: x}}
}

func None() *Expr {
	return &Expr{Kind: ExprNone, Enum: &EnumExpr{EnumName: "Option", Variant: "None"}}
}

func Interp(parts ...*Expr) *Expr { return &Expr{Kind: ExprInterp, Parts: parts} }

func RangeOf(start, end *Expr, inclusive bool) *Expr {
	return &Expr{Kind: ExprRange, Range: &RangeExpr{Start: start, End: end, Inclusive: inclusive}}
}

func Closure(params []*Param, ret *Type, body *Expr) *Expr {
	return &Expr{Kind: ExprClosure, Closure: &ClosureExpr{Params: params, Ret: ret, Body: body}}
}

func Block(stmts ...*Stmt) *Expr { return &Expr{Kind: ExprBlock, Block: stmts} }

func Cast(v *Expr, t *Type) *Expr {
	return &Expr{Kind: ExprCast, Cast: &CastExpr{Value: v, Target: t}}
}

func Raise(x *Expr) *Expr { return &Expr{Kind: ExprRaise, Operand: x} }

// Statements.

func ExprStmt(e *Expr) *Stmt { return &Stmt{Kind: StmtExpr, Expr: e} }

// Return builds `return v`; v may be nil.
func Return(v *Expr) *Stmt { return &Stmt{Kind: StmtReturn, Expr: v} }

// Let is `name = init`.
func Let(name string, init *Expr) *Stmt {
	return &Stmt{Kind: StmtVarDecl, Var: &VarDecl{Name: name, Init: init, Kind: VarInferredImmutable}}
}

// LetMut is `name ::= init`.
func LetMut(name string, init *Expr) *Stmt {
	return &Stmt{Kind: StmtVarDecl, Var: &VarDecl{Name: name, Init: init, Mutable: true, Kind: VarInferredMutable}}
}

// Decl is `name: T = init` or `name:: T = init`; a nil init forward-declares.
func Decl(name string, t *Type, init *Expr, mutable bool) *Stmt {
	kind := VarExplicitImmutable
	if mutable {
		kind = VarExplicitMutable
	}
	return &Stmt{Kind: StmtVarDecl, Var: &VarDecl{Name: name, Type: t, Init: init, Mutable: mutable, Kind: kind}}
}

func Assign(name string, v *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Assign: &AssignStmt{Name: name, Value: v}}
}

func PtrAssign(target, v *Expr) *Stmt {
	return &Stmt{Kind: StmtPointerAssign, Assign: &AssignStmt{Target: target, Value: v}}
}

func Loop(body ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtLoop, Loop: &LoopStmt{Kind: LoopInfinite, Body: body}}
}

func While(cond *Expr, body ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtLoop, Loop: &LoopStmt{Kind: LoopCondition, Cond: cond, Body: body}}
}

// Labeled sets the label of a loop statement and returns it.
func Labeled(label string, loop *Stmt) *Stmt {
	if loop.Loop != nil {
		loop.Loop.Label = label
	}
	return loop
}

func Break(label string) *Stmt { return &Stmt{Kind: StmtBreak, Label: label} }

func Continue(label string) *Stmt { return &Stmt{Kind: StmtContinue, Label: label} }

func Defer(e *Expr) *Stmt { return &Stmt{Kind: StmtDefer, Expr: e} }

func Comptime(stmts ...*Stmt) *Stmt { return &Stmt{Kind: StmtComptime, Block: stmts} }

func ImportStmt(alias, path string) *Stmt {
	return &Stmt{Kind: StmtImport, Import: &ModuleImport{Alias: alias, Path: path}}
}

// Patterns.

func PLit(e *Expr) *Pattern { return &Pattern{Kind: PatLiteral, Lit: e} }

func PInt(v int64) *Pattern { return PLit(Int(v)) }

func PStr(s string) *Pattern { return PLit(Str(s)) }

func PIdent(name string) *Pattern { return &Pattern{Kind: PatIdent, Name: name} }

func PWild() *Pattern { return &Pattern{Kind: PatWildcard} }

func PRange(start, end *Expr, inclusive bool) *Pattern {
	return &Pattern{Kind: PatRange, Range: &RangePattern{Start: start, End: end, Inclusive: inclusive}}
}

func PVariant(enum, variant string, payload *Pattern) *Pattern {
	return &Pattern{Kind: PatEnumVariant, Enum: &EnumPattern{EnumName: enum, Variant: variant, Payload: payload}}
}

// PDot is the shorthand .Variant(payload) pattern.
func PDot(variant string, payload *Pattern) *Pattern {
	return &Pattern{Kind: PatEnumLiteral, Enum: &EnumPattern{Variant: variant, Payload: payload}}
}

func PStruct(name string, fields ...*FieldPattern) *Pattern {
	return &Pattern{Kind: PatStruct, Name: name, Fields: fields}
}

func PField(name string, p *Pattern) *FieldPattern { return &FieldPattern{Name: name, Pattern: p} }

func POr(alts ...*Pattern) *Pattern { return &Pattern{Kind: PatOr, Alts: alts} }

func PBind(name string, sub *Pattern) *Pattern {
	return &Pattern{Kind: PatBinding, Name: name, Sub: sub}
}

// Items.

func P(name string, t *Type) *Param { return &Param{Name: name, Type: t} }

func Fn(name string, params []*Param, ret *Type, body ...*Stmt) *Item {
	return &Item{Kind: ItemFunction, Func: &Function{Name: name, Params: params, Ret: ret, Body: body}}
}

func Extern(name string, ret *Type, varargs bool, params ...*Type) *Item {
	return &Item{Kind: ItemExternal, Extern: &ExternalFunction{Name: name, Params: params, Ret: ret, Varargs: varargs}}
}

func Struct(name string, fields ...*StructField) *Item {
	return &Item{Kind: ItemStruct, Struct: &StructDef{Name: name, Fields: fields}}
}

func SField(name string, t *Type) *StructField { return &StructField{Name: name, Type: t} }

func Enum(name string, variants ...*EnumVariant) *Item {
	return &Item{Kind: ItemEnum, Enum: &EnumDef{Name: name, Variants: variants}}
}

func Variant(name string, payload *Type) *EnumVariant {
	return &EnumVariant{Name: name, Payload: payload}
}

func Import(alias, path string) *Item {
	return &Item{Kind: ItemImport, Import: &ModuleImport{Alias: alias, Path: path}}
}

func NewProgram(items ...*Item) *Program { return &Program{Items: items} }
