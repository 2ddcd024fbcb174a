package ir

import (
	"strings"
	"testing"
)

func TestPrintModule(t *testing.T) {
	m := NewModule("demo")
	pt := m.NamedStruct("Point")
	pt.Fields = []Type{I32, I32}
	printf := m.DeclareExternal("printf", &FuncType{Ret: I32, Params: []Type{Ptr}, Variadic: true})
	fmtStr := m.StringConst("%d\n")

	f, err := m.NewFunc("main", &FuncType{Ret: I32}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(f)
	b.SetInsertPoint(f.Entry())
	p := b.Alloca(pt)
	x := b.StructGEP(pt, p, 1)
	b.Store(NewInt(I32, 5), x)
	v := b.Load(I32, x)
	sum := b.Binary(OpAdd, v, NewInt(I32, 2))
	c := b.ICmp(PredSGT, sum, NewInt(I32, 3))
	then := f.NewBlock("then")
	done := f.NewBlock("done")
	b.CondBr(c, then, done)
	b.SetInsertPoint(then)
	b.Call(printf, printf.Sig, fmtStr, sum)
	b.Br(done)
	b.SetInsertPoint(done)
	r := b.Phi(I32, Incoming{Value: NewInt(I32, 1), Block: f.Entry()}, Incoming{Value: NewInt(I32, 0), Block: then})
	b.Ret(r)

	if err := m.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	out := m.String()
	want := []string{
		`target triple = "x86_64-linux-gnu"`,
		`%Point = type { i32, i32 }`,
		`@.str.0 = private unnamed_addr constant [4 x i8] c"%d\0A\00"`,
		`declare i32 @printf(ptr, ...)`,
		`define i32 @main() {`,
		`%t1 = alloca %Point`,
		`getelementptr inbounds %Point, ptr %t1, i32 0, i32 1`,
		`store i32 5, ptr %t2`,
		`load i32, ptr %t2`,
		`add i32 %t3, 2`,
		`icmp sgt i32 %t4, 3`,
		`br i1 %t5, label %then, label %done`,
		`call i32 (ptr, ...) @printf(ptr @.str.0, i32 %t4)`,
		`phi i32 [ 1, %entry ], [ 0, %then ]`,
		`ret i32 %t7`,
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output lacks %q\n%s", w, out)
		}
	}
}

func TestPrintConstants(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{NewInt(I64, -3), "-3"},
		{NewFloat(F64, 2), "2.0"},
		{NewFloat(F64, 0.5), "0x3FE0000000000000"},
		{Null(), "null"},
		{Zero(&StructType{Fields: []Type{I64, Ptr}}), "zeroinitializer"},
	}
	for _, tt := range tests {
		if got := tt.v.Ident(); got != tt.want {
			t.Errorf("%T Ident() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestPrintCasts(t *testing.T) {
	m := NewModule("t")
	f, err := m.NewFunc("f", &FuncType{Ret: I64, Params: []Type{I32}}, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(f)
	b.SetInsertPoint(f.Entry())
	w := b.Cast(OpSExt, f.Param(0), I64)
	b.Ret(w)
	if got := w.String(); got != "%t1 = sext i32 %p.x to i64" {
		t.Fatalf("cast = %q", got)
	}
	if !strings.Contains(m.String(), "define i64 @f(i32 %p.x) {") {
		t.Fatalf("bad signature:\n%s", m.String())
	}
}
