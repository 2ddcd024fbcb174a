package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"zenc/internal/ast"
)

func sampleUnit() *ast.Unit {
	return &ast.Unit{
		Name: "demo",
		Program: ast.NewProgram(
			ast.Import("io", "@std.io"),
			ast.Enum("Shape", ast.Variant("Circle", ast.F64()), ast.Variant("Empty", nil)),
			ast.Fn("main", nil, ast.I32(),
				ast.LetMut("n", ast.Int(0)),
				ast.Labeled("outer", ast.Loop(ast.Break("outer"))),
				ast.Return(ast.Match(ast.Ident("n"),
					ast.Arm(ast.PRange(ast.Int(0), ast.Int(10), true), ast.Int(1)),
					ast.Arm(ast.POr(ast.PDot("Some", ast.PIdent("v")), ast.PWild()), ast.Int(2)),
				)),
			),
		),
	}
}

func TestFormatASTPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, sampleUnit()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Unit demo (3 items)",
		"├─ Item[0]: Import io := @std.io",
		"Variant Circle(f64)",
		"└─ Item[2]: Function main",
		"VarDecl n ::=: 0i32",
		"Loop 'outer",
		"Break 'outer",
		"Arm 0i32..=10i32",
		"Arm .Some(v) | _",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump misses %q:\n%s", want, out)
		}
	}
}

func TestFormatASTJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, sampleUnit()); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Label != "Unit demo" || len(root.Children) != 3 {
		t.Fatalf("root = %s with %d children", root.Label, len(root.Children))
	}
}

func TestFormatASTEmpty(t *testing.T) {
	if err := FormatASTPretty(&bytes.Buffer{}, &ast.Unit{}); err == nil {
		t.Fatal("expected an error for a unit without a program")
	}
}
