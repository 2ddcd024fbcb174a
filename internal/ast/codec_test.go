package ast

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func sampleProgram() *Program {
	return NewProgram(
		Import("io", "@std.io"),
		Enum("Shape", Variant("Circle", F64()), Variant("Empty", nil)),
		Struct("Point", SField("x", I64()), SField("y", I64())),
		Fn("main", nil, I32(),
			Let("r", EnumVal("Result", "Ok", Some(Int(42)))),
			ExprStmt(Match(Ident("r"),
				Arm(PDot("Ok", PIdent("inner")), Match(Ident("inner"),
					Arm(PDot("Some", PIdent("v")), Ident("v")),
					Arm(PDot("None", nil), Int(-1)))),
				Arm(PDot("Err", PWild()), Int(-2)),
			)),
			ExprStmt(UnitLit()),
		),
	)
}

func TestUnitRoundTrip(t *testing.T) {
	unit := &Unit{Name: "main", Program: sampleProgram()}
	var buf bytes.Buffer
	if err := Encode(&buf, unit); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got.Program, unit.Program) {
		t.Fatalf("decoded program differs from original")
	}
}

func TestUnitLiteralRoundTrip(t *testing.T) {
	unit := &Unit{Name: "unit", Program: NewProgram(Fn("main", nil, Void(), ExprStmt(UnitLit())))}
	var buf bytes.Buffer
	if err := Encode(&buf, unit); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e := got.Program.Items[0].Func.Body[0].Expr; e == nil || e.Kind != ExprUnit {
		t.Fatalf("decoded expression = %+v, want a unit literal", e)
	}
}

func TestDecodeRejectsSchema(t *testing.T) {
	data, err := msgpack.Marshal(&Unit{Schema: UnitSchema + 1, Name: "old", Program: &Program{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, &Unit{Name: "x"}); err == nil {
		t.Fatal("expected error for unit without program")
	}
}
