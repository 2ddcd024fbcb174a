package ir

import (
	"strings"
	"testing"
)

func newTestFunc(t *testing.T, m *Module, name string, sig *FuncType, params ...string) (*Func, *Builder) {
	t.Helper()
	f, err := m.NewFunc(name, sig, params)
	if err != nil {
		t.Fatalf("NewFunc(%s): %v", name, err)
	}
	b := NewBuilder(f)
	b.SetInsertPoint(f.Entry())
	return f, b
}

func TestAllocaHoistedToEntry(t *testing.T) {
	m := NewModule("t")
	f, b := newTestFunc(t, m, "f", &FuncType{Ret: I32})
	body := f.NewBlock("body")
	b.Br(body)
	b.SetInsertPoint(body)
	slot := b.Alloca(I32)
	b.Store(NewInt(I32, 7), slot)
	v := b.Load(I32, slot)
	b.Ret(v)

	entry := f.Entry()
	if entry.Instrs[0] != slot {
		t.Fatalf("alloca not hoisted: first entry instr is %s", entry.Instrs[0])
	}
	if entry.Terminator() == nil || entry.Terminator().Op != OpBr {
		t.Fatalf("entry lost its terminator")
	}
	if err := f.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestBlockNamesAreUnique(t *testing.T) {
	m := NewModule("t")
	f, _ := newTestFunc(t, m, "f", &FuncType{Ret: Void})
	a := f.NewBlock("loop_body")
	b := f.NewBlock("loop_body")
	c := f.NewBlock("loop_body")
	if a.Name == b.Name || b.Name == c.Name || a.Name == c.Name {
		t.Fatalf("duplicate block names: %s %s %s", a.Name, b.Name, c.Name)
	}
	if f.Block(b.Name) != b {
		t.Fatalf("Block(%q) did not find the block", b.Name)
	}
}

func TestEmitAfterTerminatorOpensDeadBlock(t *testing.T) {
	m := NewModule("t")
	f, b := newTestFunc(t, m, "f", &FuncType{Ret: I32})
	b.Ret(NewInt(I32, 0))
	b.Binary(OpAdd, NewInt(I32, 1), NewInt(I32, 2))
	if len(f.Blocks) != 2 {
		t.Fatalf("expected a second block, got %d", len(f.Blocks))
	}
	if !strings.HasPrefix(b.Block().Name, "dead") {
		t.Fatalf("insertion block = %s, want dead*", b.Block().Name)
	}
	if err := f.Verify(); err == nil {
		t.Fatalf("unterminated dead block should fail verification")
	}
	b.Unreachable()
	if err := f.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsForeignPhiEdge(t *testing.T) {
	m := NewModule("t")
	f, b := newTestFunc(t, m, "f", &FuncType{Ret: I32, Params: []Type{I1}}, "c")
	then := f.NewBlock("then")
	els := f.NewBlock("else")
	merge := f.NewBlock("merge")
	b.CondBr(f.Param(0), then, els)
	b.SetInsertPoint(then)
	b.Br(merge)
	b.SetInsertPoint(els)
	b.Br(merge)
	b.SetInsertPoint(merge)
	phi := b.Phi(I32)
	phi.AddIncoming(NewInt(I32, 1), then)
	phi.AddIncoming(NewInt(I32, 2), f.Entry())
	b.Ret(phi)
	if err := f.Verify(); err == nil {
		t.Fatalf("expected a predecessor error")
	}
}

func TestNewFuncRejectsDuplicate(t *testing.T) {
	m := NewModule("t")
	if _, err := m.NewFunc("main", &FuncType{Ret: I32}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.NewFunc("main", &FuncType{Ret: I32}, nil); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestDeclareExternalIsIdempotent(t *testing.T) {
	m := NewModule("t")
	sig := &FuncType{Ret: I32, Params: []Type{Ptr}, Variadic: true}
	a := m.DeclareExternal("printf", sig)
	b := m.DeclareExternal("printf", sig)
	if a != b {
		t.Fatalf("second declaration created a new function")
	}
	out := m.String()
	if n := strings.Count(out, "declare i32 @printf(ptr, ...)"); n != 1 {
		t.Fatalf("printf declared %d times:\n%s", n, out)
	}
}

func TestStringConstDedup(t *testing.T) {
	m := NewModule("t")
	a := m.StringConst("hi\n")
	b := m.StringConst("hi\n")
	c := m.StringConst("bye")
	if a != b {
		t.Fatalf("identical strings were not interned")
	}
	if a == c {
		t.Fatalf("distinct strings share a constant")
	}
	if got := a.Typ.String(); got != "[4 x i8]" {
		t.Fatalf("type = %s, want [4 x i8]", got)
	}
}

func TestNewIntTruncates(t *testing.T) {
	tests := []struct {
		typ  *IntType
		in   int64
		want int64
	}{
		{I8, 255, -1},
		{I8, 127, 127},
		{I16, 65535, -1},
		{I32, 1 << 32, 0},
		{I64, -5, -5},
	}
	for _, tt := range tests {
		if got := NewInt(tt.typ, tt.in).V; got != tt.want {
			t.Errorf("NewInt(%s, %d) = %d, want %d", tt.typ, tt.in, got, tt.want)
		}
	}
}
