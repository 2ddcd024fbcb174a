package llvm_test

import (
	"testing"

	"zenc/internal/ast"
	"zenc/internal/backend/llvm"
)

// sumOver returns main summing i over recv.loop((i) {...}) with the given
// extra statements run before the addition.
func sumOver(recv *ast.Expr, pre ...*ast.Stmt) *ast.Item {
	sum, i := ast.Ident("sum"), ast.Ident("i")
	body := append(pre, ast.Assign("sum", ast.Bin(ast.OpAdd, sum, i)))
	return mainI32(
		ast.LetMut("sum", ast.Int(0)),
		ast.ExprStmt(ast.MethodCall(recv, "loop",
			ast.Closure([]*ast.Param{ast.P("i", ast.I32())}, nil, ast.Block(body...)))),
		ast.Return(sum),
	)
}

func TestRangeLoop(t *testing.T) {
	i := ast.Ident("i")
	tests := []struct {
		name string
		prog *ast.Program
		want int
	}{
		{"exclusive", ast.NewProgram(sumOver(ast.RangeOf(ast.Int(0), ast.Int(5), false))), 10},
		{"inclusive", ast.NewProgram(sumOver(ast.RangeOf(ast.Int(1), ast.Int(5), true))), 15},
		{"empty", ast.NewProgram(sumOver(ast.RangeOf(ast.Int(5), ast.Int(5), false))), 0},
		{"break and continue", ast.NewProgram(sumOver(ast.RangeOf(ast.Int(0), ast.Int(10), false),
			ast.ExprStmt(ast.Cond(ast.Bin(ast.OpEq, i, ast.Int(3)), ast.Block(ast.Continue("")), nil)),
			ast.ExprStmt(ast.Cond(ast.Bin(ast.OpEq, i, ast.Int(6)), ast.Block(ast.Break("")), nil)),
		)), 0 + 1 + 2 + 4 + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := run(t, tt.prog); code != tt.want {
				t.Fatalf("sum = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRangeValueInVariable(t *testing.T) {
	for _, tt := range []struct {
		inclusive bool
		want      int
	}{{false, 1 + 2 + 3}, {true, 1 + 2 + 3 + 4}} {
		main := sumOver(ast.Ident("r"))
		main.Func.Body = append([]*ast.Stmt{ast.Let("r", ast.RangeOf(ast.Int(1), ast.Int(4), tt.inclusive))}, main.Func.Body...)
		if code, _ := run(t, ast.NewProgram(main)); code != tt.want {
			t.Errorf("inclusive=%v: sum = %d, want %d", tt.inclusive, code, tt.want)
		}
	}
}

func TestRangeLoopNeedsClosure(t *testing.T) {
	prog := ast.NewProgram(mainI32(
		ast.ExprStmt(ast.MethodCall(ast.RangeOf(ast.Int(0), ast.Int(3), false), "loop", ast.Int(1))),
		ast.Return(ast.Int(0)),
	))
	if ce := compileErr(t, prog); ce.Kind != llvm.ErrTypeError {
		t.Fatalf("kind = %s, want TypeError", ce.Kind)
	}
}
