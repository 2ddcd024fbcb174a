package vm

import (
	"errors"
	"strings"
	"testing"

	"zenc/internal/backend/ir"
)

func newFunc(t *testing.T, m *ir.Module, name string, sig *ir.FuncType, params ...string) (*ir.Func, *ir.Builder) {
	t.Helper()
	fn, err := m.NewFunc(name, sig, params)
	if err != nil {
		t.Fatal(err)
	}
	b := ir.NewBuilder(fn)
	b.SetInsertPoint(fn.Entry())
	return fn, b
}

func runMain(t *testing.T, m *ir.Module) (int, *TestRuntime) {
	t.Helper()
	if err := m.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	rt := NewTestRuntime()
	code, err := New(m, rt, Options{}).RunMain()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return code, rt
}

func TestLoopWithPhi(t *testing.T) {
	m := ir.NewModule("loop")
	fn, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	entry := b.Block()
	header := fn.NewBlock("loop_header")
	body := fn.NewBlock("loop_body")
	exit := fn.NewBlock("loop_exit")
	b.Br(header)

	b.SetInsertPoint(header)
	i := b.Phi(ir.I32, ir.Incoming{Value: ir.NewInt(ir.I32, 1), Block: entry})
	sum := b.Phi(ir.I32, ir.Incoming{Value: ir.NewInt(ir.I32, 0), Block: entry})
	cond := b.ICmp(ir.PredSLE, i, ir.NewInt(ir.I32, 10))
	b.CondBr(cond, body, exit)

	b.SetInsertPoint(body)
	nextSum := b.Binary(ir.OpAdd, sum, i)
	nextI := b.Binary(ir.OpAdd, i, ir.NewInt(ir.I32, 1))
	i.AddIncoming(nextI, body)
	sum.AddIncoming(nextSum, body)
	b.Br(header)

	b.SetInsertPoint(exit)
	b.Ret(sum)

	if code, _ := runMain(t, m); code != 55 {
		t.Fatalf("exit code = %d, want 55", code)
	}
}

func TestStructThroughMemory(t *testing.T) {
	m := ir.NewModule("structs")
	st := m.NamedStruct("Pair")
	st.Fields = []ir.Type{ir.I8, ir.I64, ir.F64}
	_, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})

	slot := b.Alloca(st)
	b.Store(ir.NewInt(ir.I8, -3), b.StructGEP(st, slot, 0))
	b.Store(ir.NewInt(ir.I64, 40), b.StructGEP(st, slot, 1))
	b.Store(ir.NewFloat(ir.F64, 2.5), b.StructGEP(st, slot, 2))

	whole := b.Load(st, slot)
	small := b.ExtractValue(whole, 0)
	big := b.ExtractValue(whole, 1)
	f := b.ExtractValue(whole, 2)
	wide := b.Cast(ir.OpSExt, small, ir.I64)
	sum := b.Binary(ir.OpAdd, big, wide)
	fi := b.Cast(ir.OpFPToSI, b.Binary(ir.OpFMul, f, ir.NewFloat(ir.F64, 2)), ir.I64)
	total := b.Binary(ir.OpAdd, sum, fi)
	b.Ret(b.Cast(ir.OpTrunc, total, ir.I32))

	if code, _ := runMain(t, m); code != 42 {
		t.Fatalf("exit code = %d, want 42", code)
	}
}

func TestInsertValueDoesNotAlias(t *testing.T) {
	m := ir.NewModule("agg")
	st := &ir.StructType{Fields: []ir.Type{ir.I32, ir.I32}}
	_, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	a := b.InsertValue(ir.Zero(st), ir.NewInt(ir.I32, 7), 0)
	c := b.InsertValue(a, ir.NewInt(ir.I32, 9), 0)
	x := b.ExtractValue(a, 0)
	y := b.ExtractValue(c, 0)
	b.Ret(b.Binary(ir.OpSub, y, x))

	if code, _ := runMain(t, m); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRecursionAndIndirectCall(t *testing.T) {
	m := ir.NewModule("calls")
	sig := &ir.FuncType{Ret: ir.I64, Params: []ir.Type{ir.I64}}
	fact, b := newFunc(t, m, "fact", sig, "n")
	base := fact.NewBlock("base")
	rec := fact.NewBlock("rec")
	b.CondBr(b.ICmp(ir.PredSLE, fact.Param(0), ir.NewInt(ir.I64, 1)), base, rec)
	b.SetInsertPoint(base)
	b.Ret(ir.NewInt(ir.I64, 1))
	b.SetInsertPoint(rec)
	sub := b.Call(fact, sig, b.Binary(ir.OpSub, fact.Param(0), ir.NewInt(ir.I64, 1)))
	b.Ret(b.Binary(ir.OpMul, fact.Param(0), sub))

	_, mb := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	slot := mb.Alloca(ir.Ptr)
	mb.Store(fact, slot)
	callee := mb.Load(ir.Ptr, slot)
	r := mb.Call(callee, sig, ir.NewInt(ir.I64, 5))
	mb.Ret(mb.Cast(ir.OpTrunc, r, ir.I32))

	if code, _ := runMain(t, m); code != 120 {
		t.Fatalf("exit code = %d, want 120", code)
	}
}

func TestPrintfAndStreams(t *testing.T) {
	m := ir.NewModule("io")
	printf := m.DeclareExternal("printf", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.Ptr}, Variadic: true})
	fprintf := m.DeclareExternal("fprintf", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.Ptr, ir.Ptr}, Variadic: true})
	puts := m.DeclareExternal("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.Ptr}})
	stderr := m.ExternalGlobal("stderr", ir.Ptr)

	_, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	b.Call(printf, printf.Sig, m.StringConst("%d %s %.2f\n"), ir.NewInt(ir.I32, -7), m.StringConst("zen"), ir.NewFloat(ir.F64, 3.14159))
	b.Call(puts, puts.Sig, m.StringConst("line"))
	b.Call(fprintf, fprintf.Sig, b.Load(ir.Ptr, stderr), m.StringConst("oops %lld\n"), ir.NewInt(ir.I64, 1<<40))
	b.Ret(ir.NewInt(ir.I32, 0))

	code, rt := runMain(t, m)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got, want := rt.Out.String(), "-7 zen 3.14\nline\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got, want := rt.Err.String(), "oops 1099511627776\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestHeapStrings(t *testing.T) {
	m := ir.NewModule("heap")
	decl := func(name string, ret ir.Type, params ...ir.Type) *ir.Func {
		return m.DeclareExternal(name, &ir.FuncType{Ret: ret, Params: params})
	}
	malloc := decl("malloc", ir.Ptr, ir.I64)
	memcpy := decl("memcpy", ir.Ptr, ir.Ptr, ir.Ptr, ir.I64)
	realloc := decl("realloc", ir.Ptr, ir.Ptr, ir.I64)
	strlen := decl("strlen", ir.I64, ir.Ptr)
	strcmp := decl("strcmp", ir.I32, ir.Ptr, ir.Ptr)
	snprintf := m.DeclareExternal("snprintf", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.Ptr, ir.I64, ir.Ptr}, Variadic: true})

	fn, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	buf := b.Call(malloc, malloc.Sig, ir.NewInt(ir.I64, 4))
	b.Call(memcpy, memcpy.Sig, buf, m.StringConst("abc"), ir.NewInt(ir.I64, 4))
	grown := b.Call(realloc, realloc.Sig, buf, ir.NewInt(ir.I64, 64))
	n := b.Call(strlen, strlen.Sig, grown)
	same := b.Call(strcmp, strcmp.Sig, grown, m.StringConst("abc"))

	small := b.Call(malloc, malloc.Sig, ir.NewInt(ir.I64, 4))
	full := b.Call(snprintf, snprintf.Sig, small, ir.NewInt(ir.I64, 4), m.StringConst("%d"), ir.NewInt(ir.I32, 123456))
	cut := b.Call(strlen, strlen.Sig, small)

	bad := fn.NewBlock("bad")
	ok := fn.NewBlock("ok")
	check := b.Binary(ir.OpAnd, b.ICmp(ir.PredEQ, n, ir.NewInt(ir.I64, 3)), b.ICmp(ir.PredEQ, same, ir.NewInt(ir.I32, 0)))
	check = b.Binary(ir.OpAnd, check, b.ICmp(ir.PredEQ, full, ir.NewInt(ir.I32, 6)))
	check = b.Binary(ir.OpAnd, check, b.ICmp(ir.PredEQ, cut, ir.NewInt(ir.I64, 3)))
	b.CondBr(check, ok, bad)
	b.SetInsertPoint(ok)
	b.Ret(ir.NewInt(ir.I32, 0))
	b.SetInsertPoint(bad)
	b.Ret(ir.NewInt(ir.I32, 1))

	if code, _ := runMain(t, m); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestExitStopsProgram(t *testing.T) {
	m := ir.NewModule("exit")
	exit := m.DeclareExternal("exit", &ir.FuncType{Ret: ir.Void, Params: []ir.Type{ir.I32}})
	puts := m.DeclareExternal("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.Ptr}})

	helper, hb := newFunc(t, m, "bail", &ir.FuncType{Ret: ir.Void})
	hb.Call(exit, exit.Sig, ir.NewInt(ir.I32, 3))
	hb.Unreachable()

	_, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
	b.Call(helper, helper.Sig)
	b.Call(puts, puts.Sig, m.StringConst("not printed"))
	b.Ret(ir.NewInt(ir.I32, 0))

	code, rt := runMain(t, m)
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if rt.Out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", rt.Out.String())
	}
	if !rt.Exited() || rt.ExitCode() != 3 {
		t.Errorf("runtime exit = %v/%d", rt.Exited(), rt.ExitCode())
	}
}

func TestMainReturningStruct(t *testing.T) {
	m := ir.NewModule("result")
	st := m.NamedStruct("Result")
	st.Fields = []ir.Type{ir.I32, ir.Ptr}
	_, b := newFunc(t, m, "main", &ir.FuncType{Ret: st})
	b.Ret(b.InsertValue(ir.Zero(st), ir.NewInt(ir.I32, 1), 0))

	if code, _ := runMain(t, m); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRuntimePanics(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *ir.Module, fn *ir.Func, b *ir.Builder)
		code  PanicCode
	}{
		{
			name: "division by zero",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				b.Ret(b.Binary(ir.OpSDiv, ir.NewInt(ir.I32, 1), ir.NewInt(ir.I32, 0)))
			},
			code: PanicDivisionByZero,
		},
		{
			name: "null load",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				b.Ret(b.Load(ir.I32, ir.Null()))
			},
			code: PanicNullDeref,
		},
		{
			name: "unreachable",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				b.Unreachable()
			},
			code: PanicUnreachable,
		},
		{
			name: "abort",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				abort := m.DeclareExternal("abort", &ir.FuncType{Ret: ir.Void})
				b.Call(abort, abort.Sig)
				b.Ret(ir.NewInt(ir.I32, 0))
			},
			code: PanicAbort,
		},
		{
			name: "missing shim",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				f := m.DeclareExternal("fopen", &ir.FuncType{Ret: ir.Ptr, Params: []ir.Type{ir.Ptr, ir.Ptr}})
				b.Call(f, f.Sig, ir.Null(), ir.Null())
				b.Ret(ir.NewInt(ir.I32, 0))
			},
			code: PanicUnsupportedIntrinsic,
		},
		{
			name: "infinite loop",
			build: func(m *ir.Module, fn *ir.Func, b *ir.Builder) {
				loop := fn.NewBlock("loop")
				b.Br(loop)
				b.SetInsertPoint(loop)
				b.Br(loop)
			},
			code: PanicStepLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule("panics")
			fn, b := newFunc(t, m, "main", &ir.FuncType{Ret: ir.I32})
			tt.build(m, fn, b)
			_, err := New(m, NewTestRuntime(), Options{MaxSteps: 10_000}).RunMain()
			var vmErr *VMError
			if !errors.As(err, &vmErr) {
				t.Fatalf("err = %v, want *VMError", err)
			}
			if vmErr.Code != tt.code {
				t.Fatalf("code = %s, want %s (%s)", vmErr.Code, tt.code, vmErr.Message)
			}
			if len(vmErr.Backtrace) == 0 || vmErr.Backtrace[0].FuncName != "main" {
				t.Errorf("backtrace = %+v", vmErr.Backtrace)
			}
			if !strings.HasPrefix(vmErr.Format(), "panic "+tt.code.String()) {
				t.Errorf("format = %q", vmErr.Format())
			}
		})
	}
}

func TestStackOverflow(t *testing.T) {
	m := ir.NewModule("deep")
	sig := &ir.FuncType{Ret: ir.I32}
	fn, b := newFunc(t, m, "main", sig)
	b.Ret(b.Call(fn, sig))

	_, err := New(m, NewTestRuntime(), Options{MaxDepth: 64}).RunMain()
	var vmErr *VMError
	if !errors.As(err, &vmErr) || vmErr.Code != PanicStackOverflow {
		t.Fatalf("err = %v, want stack overflow", err)
	}
}

func TestCallByName(t *testing.T) {
	m := ir.NewModule("lib")
	sig := &ir.FuncType{Ret: ir.F64, Params: []ir.Type{ir.F64}}
	sqrt := m.DeclareExternal("sqrt", sig)
	fn, b := newFunc(t, m, "root", sig, "x")
	b.Ret(b.Call(sqrt, sig, fn.Param(0)))

	v, err := New(m, NewTestRuntime(), Options{}).Call("root", Value{F: 81})
	if err != nil {
		t.Fatal(err)
	}
	if v.F != 9 {
		t.Fatalf("root(81) = %v", v.F)
	}
	if _, err := New(m, NewTestRuntime(), Options{}).Call("missing"); err == nil {
		t.Fatal("expected error for unknown function")
	}
}
