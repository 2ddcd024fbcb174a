package llvm_test

import (
	"errors"
	"strings"
	"testing"

	"zenc/internal/ast"
	"zenc/internal/backend/ir"
	"zenc/internal/backend/llvm"
	"zenc/internal/diag"
	"zenc/internal/vm"
)

func compile(t *testing.T, prog *ast.Program) *ir.Module {
	t.Helper()
	mod, err := llvm.Compile(prog, llvm.Options{ModuleName: t.Name()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := mod.Verify(); err != nil {
		t.Fatalf("verify: %v\n%s", err, mod)
	}
	return mod
}

func run(t *testing.T, prog *ast.Program) (int, string) {
	t.Helper()
	mod := compile(t, prog)
	rt := vm.NewTestRuntime()
	code, err := vm.New(mod, rt, vm.Options{}).RunMain()
	if err != nil {
		t.Fatalf("run: %v\n%s", err, mod)
	}
	return code, rt.Out.String()
}

func compileErr(t *testing.T, prog *ast.Program) *llvm.CompileError {
	t.Helper()
	_, err := llvm.Compile(prog, llvm.Options{})
	if err == nil {
		t.Fatal("expected a compile error")
	}
	var ce *llvm.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not a *CompileError: %v", err, err)
	}
	return ce
}

func mainI32(body ...*ast.Stmt) *ast.Item {
	return ast.Fn("main", nil, ast.I32(), body...)
}

func printLine(e *ast.Expr) *ast.Stmt {
	return ast.ExprStmt(ast.ModCall("io", "println", e))
}

func TestEnumDiscriminant(t *testing.T) {
	prog := ast.NewProgram(
		ast.Enum("Color", ast.Variant("Red", nil), ast.Variant("Green", nil), ast.Variant("Blue", nil)),
		mainI32(ast.Return(ast.Cast(
			ast.ModCall("compiler", "discriminant", ast.EnumVal("Color", "Blue", nil)),
			ast.I32(),
		))),
	)
	if code, _ := run(t, prog); code != 2 {
		t.Fatalf("discriminant = %d, want 2", code)
	}
}

func TestNestedResultOption(t *testing.T) {
	resT := ast.Result(ast.Option(ast.I32()), ast.StaticString())
	prog := ast.NewProgram(
		ast.Fn("get", nil, resT, ast.Return(ast.EnumVal("Result", "Ok", ast.Some(ast.Int(42))))),
		mainI32(
			ast.Let("r", ast.Call("get")),
			ast.Return(ast.Match(ast.Ident("r"),
				ast.Arm(ast.PDot("Ok", ast.PDot("Some", ast.PIdent("v"))), ast.Ident("v")),
				ast.Arm(ast.PWild(), ast.Int(0)),
			)),
		),
	)
	if code, _ := run(t, prog); code != 42 {
		t.Fatalf("match = %d, want 42", code)
	}
}

func TestVariableDeclarations(t *testing.T) {
	t.Run("forward declaration", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.Decl("x", ast.I32(), nil, false),
			ast.Let("x", ast.Int(5)),
			ast.Return(ast.Ident("x")),
		))
		if code, _ := run(t, prog); code != 5 {
			t.Fatalf("x = %d, want 5", code)
		}
	})
	t.Run("mutation", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.LetMut("y", ast.Int(1)),
			ast.Let("y", ast.Int(7)),
			ast.Assign("y", ast.Bin(ast.OpAdd, ast.Ident("y"), ast.Int(1))),
			ast.Return(ast.Ident("y")),
		))
		if code, _ := run(t, prog); code != 8 {
			t.Fatalf("y = %d, want 8", code)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.Let("z", ast.Int(1)),
			ast.Let("z", ast.Int(2)),
			ast.Return(ast.Ident("z")),
		))
		if ce := compileErr(t, prog); ce.Kind != llvm.ErrTypeError {
			t.Fatalf("kind = %s, want TypeError", ce.Kind)
		}
	})
	t.Run("assign to immutable", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.Let("z", ast.Int(1)),
			ast.Assign("z", ast.Int(2)),
			ast.Return(ast.Ident("z")),
		))
		if ce := compileErr(t, prog); ce.Kind != llvm.ErrTypeError {
			t.Fatalf("kind = %s, want TypeError", ce.Kind)
		}
	})
	t.Run("undeclared", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(ast.Return(ast.Ident("nope"))))
		if ce := compileErr(t, prog); ce.Kind != llvm.ErrUndeclaredVariable {
			t.Fatalf("kind = %s, want UndeclaredVariable", ce.Kind)
		}
	})
}

func TestRangePatterns(t *testing.T) {
	n := ast.Ident("n")
	prog := ast.NewProgram(
		ast.Fn("classify", []*ast.Param{ast.P("n", ast.I32())}, ast.I32(),
			ast.Return(ast.Match(n,
				ast.Arm(ast.PRange(ast.Int(0), ast.Int(10), false), ast.Int(1)),
				ast.Arm(ast.PRange(ast.Int(10), ast.Int(20), true), ast.Int(2)),
				ast.Arm(ast.PWild(), ast.Int(3)),
			)),
		),
		mainI32(ast.Return(ast.Int(0))),
	)
	mod := compile(t, prog)
	machine := vm.New(mod, vm.NewTestRuntime(), vm.Options{})
	for _, tc := range []struct {
		in, want int64
	}{
		{0, 1}, {9, 1}, {10, 2}, {20, 2}, {21, 3},
	} {
		got, err := machine.Call("classify", vm.Value{Bits: uint64(tc.in)})
		if err != nil {
			t.Fatalf("classify(%d): %v", tc.in, err)
		}
		if got.Int(32) != tc.want {
			t.Errorf("classify(%d) = %d, want %d", tc.in, got.Int(32), tc.want)
		}
	}
}

func TestMatchWithoutDefaultYieldsZero(t *testing.T) {
	prog := ast.NewProgram(mainI32(
		ast.Let("k", ast.Int(5)),
		ast.Return(ast.Match(ast.Ident("k"),
			ast.Arm(ast.PInt(1), ast.Int(10)),
			ast.Arm(ast.PInt(2), ast.Int(20)),
		)),
	))
	if code, _ := run(t, prog); code != 0 {
		t.Fatalf("fallback = %d, want 0", code)
	}
}

func TestGuardsAndOrPatterns(t *testing.T) {
	k := ast.Ident("k")
	prog := ast.NewProgram(
		ast.Fn("pick", []*ast.Param{ast.P("k", ast.I32())}, ast.I32(),
			ast.Return(ast.Match(k,
				ast.Arm(ast.POr(ast.PInt(1), ast.PInt(2)), ast.Int(12)),
				ast.GuardArm(ast.PIdent("x"), ast.Bin(ast.OpGt, ast.Ident("x"), ast.Int(100)), ast.Int(100)),
				ast.Arm(ast.PWild(), ast.Int(7)),
			)),
		),
		mainI32(ast.Return(ast.Bin(ast.OpAdd,
			ast.Call("pick", ast.Int(2)),
			ast.Bin(ast.OpAdd, ast.Call("pick", ast.Int(500)), ast.Call("pick", ast.Int(50))),
		))),
	)
	if code, _ := run(t, prog); code != 12+100+7 {
		t.Fatalf("sum = %d, want 119", code)
	}
}

func TestOperandErrors(t *testing.T) {
	tests := []struct {
		name string
		expr *ast.Expr
		kind llvm.ErrorKind
		msg  string
	}{
		{"string plus int", ast.Bin(ast.OpAdd, ast.Str("a"), ast.Int(1)), llvm.ErrTypeMismatch, "pointer arithmetic"},
		{"float modulo", ast.Bin(ast.OpMod, ast.Int(3), ast.Float(2.5)), llvm.ErrTypeMismatch, "modulo requires integer operands"},
		{"concat", ast.Bin(ast.OpConcat, ast.Str("a"), ast.Str("b")), llvm.ErrTypeError, "concatenation"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prog := ast.NewProgram(mainI32(ast.Let("v", tc.expr), ast.Return(ast.Int(0))))
			ce := compileErr(t, prog)
			if ce.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", ce.Kind, tc.kind)
			}
			if !strings.Contains(ce.Error(), tc.msg) {
				t.Fatalf("error %q does not mention %q", ce.Error(), tc.msg)
			}
		})
	}
}

func TestRuntimeFunctionsDeclaredOnce(t *testing.T) {
	prog := ast.NewProgram(ast.Fn("main", nil, ast.Void(),
		ast.ExprStmt(ast.ModCall("io", "print", ast.Str("a"))),
		ast.ExprStmt(ast.ModCall("io", "print", ast.Int(1))),
		printLine(ast.Str("b")),
	))
	mod := compile(t, prog)
	text := mod.String()
	if n := strings.Count(text, "declare i32 @printf(ptr, ...)"); n != 1 {
		t.Fatalf("printf declared %d times:\n%s", n, text)
	}
	if !strings.Contains(text, "ret i32 0") {
		t.Fatalf("void main does not return 0:\n%s", text)
	}
}

func TestDefersRunInReverse(t *testing.T) {
	prog := ast.NewProgram(ast.Fn("main", nil, ast.Void(),
		ast.Defer(ast.ModCall("io", "println", ast.Str("a"))),
		ast.Defer(ast.ModCall("io", "println", ast.Str("b"))),
		printLine(ast.Str("body")),
	))
	if _, out := run(t, prog); out != "body\nb\na\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestLabeledBreak(t *testing.T) {
	i, j, n := ast.Ident("i"), ast.Ident("j"), ast.Ident("n")
	prog := ast.NewProgram(mainI32(
		ast.LetMut("n", ast.Int(0)),
		ast.LetMut("i", ast.Int(0)),
		ast.Labeled("outer", ast.Loop(
			ast.Assign("i", ast.Bin(ast.OpAdd, i, ast.Int(1))),
			ast.LetMut("j", ast.Int(0)),
			ast.While(ast.Bin(ast.OpLt, j, ast.Int(10)),
				ast.Assign("j", ast.Bin(ast.OpAdd, j, ast.Int(1))),
				ast.ExprStmt(ast.Cond(ast.Bin(ast.OpEq, j, ast.Int(2)), ast.Block(ast.Continue("")), nil)),
				ast.Assign("n", ast.Bin(ast.OpAdd, n, ast.Int(1))),
				ast.ExprStmt(ast.Cond(ast.Bin(ast.OpEq, i, ast.Int(3)), ast.Block(ast.Break("outer")), nil)),
			),
		)),
		ast.Return(n),
	))
	// two full passes of 9 increments, then one increment before the break
	if code, _ := run(t, prog); code != 19 {
		t.Fatalf("n = %d, want 19", code)
	}
}

func TestClosures(t *testing.T) {
	x := ast.Ident("x")
	prog := ast.NewProgram(mainI32(
		ast.Let("sq", ast.Closure([]*ast.Param{ast.P("x", ast.I32())}, ast.I32(), ast.Bin(ast.OpMul, x, x))),
		ast.Let("inc", ast.Closure([]*ast.Param{ast.P("x", ast.I32())}, nil, ast.Bin(ast.OpAdd, x, ast.Int(1)))),
		ast.Return(ast.Call("inc", ast.Call("sq", ast.Int(7)))),
	))
	if code, _ := run(t, prog); code != 50 {
		t.Fatalf("inc(sq(7)) = %d, want 50", code)
	}
}

func TestRaise(t *testing.T) {
	n := ast.Ident("n")
	resT := ast.Result(ast.I32(), ast.StaticString())
	prog := ast.NewProgram(
		ast.Fn("half", []*ast.Param{ast.P("n", ast.I32())}, resT,
			ast.ExprStmt(ast.Cond(
				ast.Bin(ast.OpNe, ast.Bin(ast.OpMod, n, ast.Int(2)), ast.Int(0)),
				ast.Block(ast.Return(ast.EnumVal("Result", "Err", ast.Str("odd")))),
				nil,
			)),
			ast.Return(ast.EnumVal("Result", "Ok", ast.Bin(ast.OpDiv, n, ast.Int(2)))),
		),
		ast.Fn("step", []*ast.Param{ast.P("n", ast.I32())}, resT,
			ast.Defer(ast.ModCall("io", "println", ast.Str("step done"))),
			ast.Let("v", ast.MethodCall(ast.Call("half", n), "raise")),
			ast.Return(ast.EnumVal("Result", "Ok", ast.Bin(ast.OpAdd, ast.Ident("v"), ast.Int(1)))),
		),
		ast.Fn("score", []*ast.Param{ast.P("n", ast.I32())}, ast.I32(),
			ast.Return(ast.Match(ast.Call("step", n),
				ast.Arm(ast.PDot("Ok", ast.PIdent("v")), ast.Ident("v")),
				ast.Arm(ast.PDot("Err", ast.PWild()), ast.Int(100)),
			)),
		),
		mainI32(ast.Return(ast.Bin(ast.OpAdd, ast.Call("score", ast.Int(8)), ast.Call("score", ast.Int(3))))),
	)
	code, out := run(t, prog)
	if code != 105 {
		t.Fatalf("score = %d, want 105", code)
	}
	if out != "step done\nstep done\n" {
		t.Fatalf("defers on raise: output = %q", out)
	}
}

func TestMethodsAndUFCS(t *testing.T) {
	self := ast.Ident("self")
	point := ast.Struct("Point", ast.SField("x", ast.I32()), ast.SField("y", ast.I32()))
	point.Struct.Methods = []*ast.Function{
		ast.Fn("sum", []*ast.Param{ast.P("self", ast.StructType("Point"))}, ast.I32(),
			ast.Return(ast.Bin(ast.OpAdd, ast.Field(self, "x"), ast.Field(self, "y"))),
		).Func,
	}
	prog := ast.NewProgram(
		point,
		ast.Fn("double", []*ast.Param{ast.P("n", ast.I32())}, ast.I32(),
			ast.Return(ast.Bin(ast.OpMul, ast.Ident("n"), ast.Int(2))),
		),
		mainI32(
			ast.Let("p", ast.StructLit("Point", ast.FieldVal("x", ast.Int(3)), ast.FieldVal("y", ast.Int(4)))),
			ast.Let("s", ast.MethodCall(ast.Ident("p"), "sum")),
			ast.Return(ast.Bin(ast.OpAdd, ast.Ident("s"), ast.MethodCall(ast.Int(21), "double"))),
		),
	)
	if code, _ := run(t, prog); code != 49 {
		t.Fatalf("p.sum() + 21.double() = %d, want 49", code)
	}
}

func TestIntrinsicErrors(t *testing.T) {
	tests := []struct {
		name string
		call *ast.Expr
		kind llvm.ErrorKind
	}{
		{"print arity", ast.ModCall("io", "print"), llvm.ErrTypeError},
		{"println arity", ast.ModCall("io", "println", ast.Int(1), ast.Int(2)), llvm.ErrTypeError},
		{"unknown io function", ast.ModCall("io", "nope"), llvm.ErrUndeclaredFunction},
		{"unknown function", ast.Call("missing"), llvm.ErrUndeclaredFunction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prog := ast.NewProgram(ast.Fn("main", nil, ast.Void(), ast.ExprStmt(tc.call)))
			if ce := compileErr(t, prog); ce.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s (%v)", ce.Kind, tc.kind, ce)
			}
		})
	}
}

func TestMissingReturn(t *testing.T) {
	prog := ast.NewProgram(
		ast.Fn("f", nil, ast.I32(), printLine(ast.Str("x"))),
		mainI32(ast.Return(ast.Call("f"))),
	)
	if ce := compileErr(t, prog); ce.Kind != llvm.ErrMissingReturn {
		t.Fatalf("kind = %s, want MissingReturnStatement", ce.Kind)
	}
}

func TestImplicitReturn(t *testing.T) {
	prog := ast.NewProgram(
		ast.Fn("f", nil, ast.I32(), ast.ExprStmt(ast.Bin(ast.OpAdd, ast.Int(40), ast.Int(2)))),
		mainI32(ast.Return(ast.Call("f"))),
	)
	if code, _ := run(t, prog); code != 42 {
		t.Fatalf("f() = %d, want 42", code)
	}
}

func TestInterpolation(t *testing.T) {
	prog := ast.NewProgram(ast.Fn("main", nil, ast.Void(),
		ast.Let("n", ast.Int(42)),
		printLine(ast.Interp(ast.Str("n="), ast.Ident("n"), ast.Str(" ok="), ast.BoolLit(true), ast.Str(" 100%"))),
	))
	if _, out := run(t, prog); out != "n=42 ok=true 100%\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestMainReturningResultWarns(t *testing.T) {
	bag := diag.NewBag(8)
	prog := ast.NewProgram(ast.Fn("main", nil, ast.Result(ast.I32(), ast.StaticString()),
		ast.Return(ast.EnumVal("Result", "Ok", ast.Int(0))),
	))
	if _, err := llvm.Compile(prog, llvm.Options{Reporter: diag.BagReporter{Bag: bag}}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.CgnMainReturnsResult {
		t.Fatalf("diagnostics = %+v, want one CgnMainReturnsResult", items)
	}
	if bag.HasErrors() {
		t.Fatal("warning reported as an error")
	}
}

func TestErrorKindCodes(t *testing.T) {
	kinds := []llvm.ErrorKind{
		llvm.ErrTypeMismatch, llvm.ErrTypeError, llvm.ErrUndeclaredVariable,
		llvm.ErrUndeclaredFunction, llvm.ErrMissingReturn, llvm.ErrUnsupportedFeature, llvm.ErrInternal,
	}
	seen := make(map[diag.Code]llvm.ErrorKind)
	for _, k := range kinds {
		code := k.Code()
		if prev, dup := seen[code]; dup {
			t.Fatalf("%s and %s share code %v", prev, k, code)
		}
		seen[code] = k
	}
}

func TestStoresReachEnclosingScopes(t *testing.T) {
	i := ast.Ident("i")
	t.Run("loop counter", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.LetMut("i", ast.Int(0)),
			ast.While(ast.Bin(ast.OpLt, i, ast.Int(5)),
				ast.Let("i", ast.Bin(ast.OpAdd, i, ast.Int(1))),
			),
			ast.Return(i),
		))
		if code, _ := run(t, prog); code != 5 {
			t.Fatalf("i = %d, want 5", code)
		}
	})
	t.Run("forward declaration set in a branch", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.Decl("x", ast.I32(), nil, false),
			ast.ExprStmt(ast.Cond(ast.BoolLit(true),
				ast.Block(ast.Let("x", ast.Int(10))),
				ast.Block(ast.Let("x", ast.Int(20))),
			)),
			ast.Return(ast.Ident("x")),
		))
		if code, _ := run(t, prog); code != 10 {
			t.Fatalf("x = %d, want 10", code)
		}
	})
	t.Run("forward declaration set in every arm", func(t *testing.T) {
		n := ast.Ident("n")
		prog := ast.NewProgram(
			ast.Fn("pick", []*ast.Param{ast.P("n", ast.I32())}, ast.I32(),
				ast.Decl("x", ast.I32(), nil, false),
				ast.ExprStmt(ast.Match(n,
					ast.Arm(ast.PInt(1), ast.Block(ast.Let("x", ast.Int(10)))),
					ast.Arm(ast.PInt(2), ast.Block(ast.Let("x", ast.Int(20)))),
					ast.Arm(ast.PWild(), ast.Block(ast.Let("x", ast.Int(30)))),
				)),
				ast.Return(ast.Ident("x")),
			),
			mainI32(ast.Return(ast.Int(0))),
		)
		mod := compile(t, prog)
		machine := vm.New(mod, vm.NewTestRuntime(), vm.Options{})
		for _, tc := range []struct{ in, want int64 }{{1, 10}, {2, 20}, {9, 30}} {
			got, err := machine.Call("pick", vm.Value{Bits: uint64(tc.in)})
			if err != nil {
				t.Fatalf("pick(%d): %v", tc.in, err)
			}
			if got.Int(32) != tc.want {
				t.Errorf("pick(%d) = %d, want %d", tc.in, got.Int(32), tc.want)
			}
		}
	})
	t.Run("outer immutable is shadowed", func(t *testing.T) {
		prog := ast.NewProgram(mainI32(
			ast.Let("y", ast.Int(1)),
			ast.ExprStmt(ast.Block(ast.Let("y", ast.Int(2)))),
			ast.Return(ast.Ident("y")),
		))
		if code, _ := run(t, prog); code != 1 {
			t.Fatalf("y = %d, want 1", code)
		}
	})
}

func TestMatchArmsThatAllReturn(t *testing.T) {
	n := ast.Ident("n")
	prog := ast.NewProgram(
		ast.Fn("f", []*ast.Param{ast.P("n", ast.I32())}, ast.I32(),
			ast.ExprStmt(ast.Match(n,
				ast.Arm(ast.PInt(1), ast.Block(ast.Return(ast.Int(11)))),
				ast.Arm(ast.PWild(), ast.Block(ast.Return(ast.Int(22)))),
			)),
		),
		mainI32(ast.Return(ast.Bin(ast.OpAdd, ast.Call("f", ast.Int(1)), ast.Call("f", ast.Int(5))))),
	)
	if code, _ := run(t, prog); code != 33 {
		t.Fatalf("f(1)+f(5) = %d, want 33", code)
	}
}

func TestEveryEnumVariant(t *testing.T) {
	color := func() *ast.Item {
		return ast.Enum("Color", ast.Variant("Red", nil), ast.Variant("Green", nil), ast.Variant("Blue", nil))
	}
	code := func() *ast.Item {
		return ast.Fn("code", []*ast.Param{ast.P("c", ast.EnumType("Color"))}, ast.I32(),
			ast.Return(ast.Match(ast.Ident("c"),
				ast.Arm(ast.PIdent("Red"), ast.Int(10)),
				ast.Arm(ast.PDot("Green", nil), ast.Int(20)),
				ast.Arm(ast.PVariant("Color", "Blue", nil), ast.Int(30)),
			)),
		)
	}
	for i, v := range []string{"Red", "Green", "Blue"} {
		t.Run(v, func(t *testing.T) {
			prog := ast.NewProgram(color(), code(), mainI32(ast.Return(ast.Call("code", ast.EnumVal("Color", v, nil)))))
			if got, _ := run(t, prog); got != 10*(i+1) {
				t.Errorf("code(%s) = %d, want %d", v, got, 10*(i+1))
			}
			prog = ast.NewProgram(color(), mainI32(ast.Return(ast.Cast(
				ast.ModCall("compiler", "discriminant", ast.EnumVal("Color", v, nil)),
				ast.I32(),
			))))
			if got, _ := run(t, prog); got != i {
				t.Errorf("discriminant(%s) = %d, want %d", v, got, i)
			}
		})
	}
}

func TestNestedMatchInArm(t *testing.T) {
	prog := ast.NewProgram(mainI32(
		ast.Let("x", ast.EnumVal("Result", "Ok", ast.Some(ast.Int(42)))),
		ast.Return(ast.Match(ast.Ident("x"),
			ast.Arm(ast.PDot("Ok", ast.PIdent("inner")), ast.Match(ast.Ident("inner"),
				ast.Arm(ast.PDot("Some", ast.PIdent("v")), ast.Ident("v")),
				ast.Arm(ast.PDot("None", nil), ast.Int(-1)),
			)),
			ast.Arm(ast.PDot("Err", ast.PWild()), ast.Int(-2)),
		)),
	))
	if code, _ := run(t, prog); code != 42 {
		t.Fatalf("nested match = %d, want 42", code)
	}
}

func TestForwardDeclarationMutability(t *testing.T) {
	tests := []struct {
		name    string
		mutable bool
		stores  []int64
		want    int
		fails   bool
	}{
		{"immutable single store", false, []int64{10}, 10, false},
		{"immutable second store", false, []int64{10, 20}, 0, true},
		{"mutable second store", true, []int64{10, 20}, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []*ast.Stmt{ast.Decl("x", ast.I32(), nil, tt.mutable)}
			for _, v := range tt.stores {
				body = append(body, ast.Let("x", ast.Int(v)))
			}
			body = append(body, ast.Return(ast.Ident("x")))
			prog := ast.NewProgram(mainI32(body...))
			if tt.fails {
				if ce := compileErr(t, prog); ce.Kind != llvm.ErrTypeError {
					t.Fatalf("kind = %s, want TypeError", ce.Kind)
				}
				return
			}
			if code, _ := run(t, prog); code != tt.want {
				t.Fatalf("x = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRangePatternStrings(t *testing.T) {
	prog := ast.NewProgram(
		ast.Fn("classify", []*ast.Param{ast.P("age", ast.I32())}, ast.StaticString(),
			ast.Return(ast.Match(ast.Ident("age"),
				ast.Arm(ast.PRange(ast.Int(0), ast.Int(12), true), ast.Str("child")),
				ast.Arm(ast.PRange(ast.Int(13), ast.Int(64), true), ast.Str("adult")),
				ast.Arm(ast.PWild(), ast.Str("other")),
			)),
		),
	)
	ages := []int64{-1, 0, 12, 13, 64, 65}
	want := []string{"other", "child", "child", "adult", "adult", "other"}
	body := make([]*ast.Stmt, 0, len(ages))
	for _, a := range ages {
		body = append(body, printLine(ast.Call("classify", ast.Int(a))))
	}
	prog.Items = append(prog.Items, ast.Fn("main", nil, ast.Void(), body...))
	_, out := run(t, prog)
	if got := strings.Split(strings.TrimSuffix(out, "\n"), "\n"); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("classify(%v) = %v, want %v", ages, got, want)
	}
}
