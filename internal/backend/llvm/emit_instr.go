package llvm

import (
	"zenc/internal/ast"
)

func (c *Compiler) compileExpr(e *ast.Expr) (value, error) {
	return c.compileExprWant(e, nil)
}

// compileExprWant compiles e. want is the type the context expects, used to
// resolve shorthand enum literals and generic payloads; it may be nil. The
// result is not coerced to want.
func (c *Compiler) compileExprWant(e *ast.Expr, want *ast.Type) (value, error) {
	if c.fc == nil {
		return value{}, internalError("expression compiled outside of a function")
	}
	if e == nil {
		return value{}, internalError("missing expression")
	}
	v, err := c.lowerExpr(e, want)
	if err != nil {
		return value{}, withSpan(err, e.Span)
	}
	return v, nil
}

func (c *Compiler) lowerExpr(e *ast.Expr, want *ast.Type) (value, error) {
	if malformed(e) {
		return value{}, internalError("malformed %s expression", e.Kind)
	}
	switch e.Kind {
	case ast.ExprInt, ast.ExprFloat, ast.ExprBool, ast.ExprString:
		return c.compileLiteral(e.Lit, e.Kind)
	case ast.ExprUnit:
		return voidValue(), nil
	case ast.ExprIdent:
		return c.compileIdent(e.Name)
	case ast.ExprBinary:
		return c.compileBinary(e.Binary)
	case ast.ExprUnary:
		return c.compileUnary(e.Unary)
	case ast.ExprCall:
		return c.compileCall(e.Call, want)
	case ast.ExprMethodCall:
		return c.compileMethodCall(e.Method, want)
	case ast.ExprMatch:
		return c.compileMatch(e.Match, want)
	case ast.ExprConditional:
		return c.compileConditional(e.Match, want)
	case ast.ExprAddressOf:
		return c.compileAddressOf(e.Operand)
	case ast.ExprDeref:
		return c.compileDeref(e.Operand)
	case ast.ExprPointerOffset:
		return c.compilePointerOffset(e.Offset)
	case ast.ExprStructLit:
		return c.compileStructLit(e.Struct)
	case ast.ExprField:
		return c.compileField(e.Field, want)
	case ast.ExprArrayLit:
		return c.compileArrayLit(e.Array, want)
	case ast.ExprIndex:
		return c.compileIndex(e.Index)
	case ast.ExprEnumVariant, ast.ExprEnumLiteral, ast.ExprSome, ast.ExprNone:
		return c.compileEnumValue(e.Enum, want)
	case ast.ExprInterp:
		return c.compileInterp(e.Parts)
	case ast.ExprRange:
		return c.compileRange(e.Range)
	case ast.ExprClosure:
		return c.compileClosure(e.Closure)
	case ast.ExprBlock:
		return c.compileBlockExpr(e.Block, want)
	case ast.ExprCast:
		return c.compileCast(e.Cast)
	case ast.ExprRaise:
		return c.compileRaise(e.Operand)
	}
	return value{}, unsupported("expression kind %s", e.Kind)
}

// malformed reports an expression whose payload does not match its kind.
func malformed(e *ast.Expr) bool {
	switch e.Kind {
	case ast.ExprInt, ast.ExprFloat, ast.ExprBool, ast.ExprString:
		return e.Lit == nil
	case ast.ExprBinary:
		return e.Binary == nil || e.Binary.Left == nil || e.Binary.Right == nil
	case ast.ExprUnary:
		return e.Unary == nil || e.Unary.Operand == nil
	case ast.ExprCall:
		return e.Call == nil
	case ast.ExprMethodCall:
		return e.Method == nil || e.Method.Receiver == nil
	case ast.ExprMatch, ast.ExprConditional:
		return e.Match == nil || e.Match.Scrutinee == nil
	case ast.ExprAddressOf, ast.ExprDeref, ast.ExprRaise:
		return e.Operand == nil
	case ast.ExprPointerOffset:
		return e.Offset == nil || e.Offset.Ptr == nil || e.Offset.Offset == nil
	case ast.ExprStructLit:
		return e.Struct == nil
	case ast.ExprField:
		return e.Field == nil || e.Field.Target == nil
	case ast.ExprArrayLit:
		return e.Array == nil
	case ast.ExprIndex:
		return e.Index == nil || e.Index.Target == nil || e.Index.Index == nil
	case ast.ExprEnumVariant, ast.ExprEnumLiteral, ast.ExprSome, ast.ExprNone:
		return e.Enum == nil
	case ast.ExprRange:
		return e.Range == nil
	case ast.ExprClosure:
		return e.Closure == nil || e.Closure.Body == nil
	case ast.ExprCast:
		return e.Cast == nil || e.Cast.Value == nil || e.Cast.Target == nil
	}
	return false
}

// compileBlockExpr compiles statements in a nested scope. The value of the
// block is the value of its trailing expression statement.
func (c *Compiler) compileBlockExpr(stmts []*ast.Stmt, want *ast.Type) (value, error) {
	fc := c.fc
	fc.enterScope()
	defer fc.exitScope()
	if len(stmts) == 0 {
		return voidValue(), nil
	}
	if err := c.compileStmts(stmts[:len(stmts)-1]); err != nil {
		return value{}, err
	}
	last := stmts[len(stmts)-1]
	if last.Kind != ast.StmtExpr {
		return voidValue(), c.compileStmt(last)
	}
	v, err := c.compileExprWant(last.Expr, want)
	if err != nil {
		return value{}, withSpan(err, last.Span)
	}
	return v, nil
}
