package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"zenc/internal/ast"
	"zenc/internal/diag"
	"zenc/internal/driver"
	"zenc/internal/observ"
	"zenc/internal/trace"
	"zenc/internal/vm"
)

func writeUnit(t *testing.T, dir, name string, prog *ast.Program) string {
	t.Helper()
	path := filepath.Join(dir, name+driver.UnitExt)
	if err := ast.WriteUnitFile(path, &ast.Unit{Name: name, Program: prog}); err != nil {
		t.Fatal(err)
	}
	return path
}

func mainReturning(v int64) *ast.Program {
	return ast.NewProgram(ast.Fn("main", nil, ast.I32(), ast.Return(ast.Int(v))))
}

func brokenProgram() *ast.Program {
	return ast.NewProgram(ast.Fn("main", nil, ast.I32(), ast.Return(ast.Ident("nope"))))
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) statuses(file string, stage Stage) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Status
	for _, e := range s.events {
		if e.File == file && e.Stage == stage {
			out = append(out, e.Status)
		}
	}
	return out
}

func TestBuildWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	var units []string
	for _, name := range []string{"a", "b", "c"} {
		units = append(units, writeUnit(t, dir, name, mainReturning(1)))
	}
	out := filepath.Join(dir, "out")
	sink := &recordingSink{}
	timer := observ.NewTimer()

	res, err := Build(context.Background(), &BuildRequest{
		Units:    units,
		OutDir:   out,
		Target:   "x86_64-linux-gnu",
		Jobs:     2,
		Progress: sink,
		Timer:    timer,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Units) != len(units) {
		t.Fatalf("got %d results", len(res.Units))
	}
	for i, u := range res.Units {
		if u.Path != units[i] {
			t.Fatalf("result %d is for %s", i, u.Path)
		}
		data, err := os.ReadFile(u.OutPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "define i32 @main()") {
			t.Fatalf("%s has no main:\n%s", u.OutPath, data)
		}
		got := sink.statuses(u.Path, StageCodegen)
		if len(got) != 2 || got[0] != StatusWorking || got[1] != StatusDone {
			t.Fatalf("codegen events for %s: %v", u.Path, got)
		}
	}
	if !res.Timings.Has(StageLoad) || !res.Timings.Has(StageEmit) {
		t.Fatal("stage timings missing")
	}
	if n := len(timer.Report().Phases); n != 3*len(units) {
		t.Fatalf("timer phases = %d", n)
	}
}

func TestBuildKeepsGoingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, "good", mainReturning(0))
	bad := writeUnit(t, dir, "bad", brokenProgram())
	missing := filepath.Join(dir, "missing"+driver.UnitExt)
	out := filepath.Join(dir, "out")

	res, err := Build(context.Background(), &BuildRequest{Units: []string{bad, good, missing}, OutDir: out})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v", err)
	}
	if res.Failed() != 2 {
		t.Fatalf("failed = %d", res.Failed())
	}
	if res.Units[1].Err != nil || res.Units[1].OutPath == "" {
		t.Fatalf("good unit: %+v", res.Units[1])
	}
	if _, err := os.Stat(filepath.Join(out, "bad.ll")); !os.IsNotExist(err) {
		t.Fatal("failed unit produced an artifact")
	}
	tests := []struct {
		idx  int
		code diag.Code
	}{
		{0, diag.CgnUndeclaredVariable},
		{2, diag.IOLoadFileError},
	}
	for _, tc := range tests {
		items := res.Units[tc.idx].Bag.Items()
		if len(items) != 1 || items[0].Code != tc.code {
			t.Errorf("unit %d diagnostics = %+v, want %s", tc.idx, items, tc.code.ID())
		}
	}
}

func TestBuildWithoutOutDirWritesNothing(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "only", mainReturning(0))
	res, err := Build(context.Background(), &BuildRequest{Units: []string{unit}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Units[0].OutPath != "" || res.Units[0].IR == "" {
		t.Fatalf("result = %+v", res.Units[0])
	}
}

func TestBuildRejectsEmptyRequest(t *testing.T) {
	if _, err := Build(context.Background(), &BuildRequest{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestBuildCancelled(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "x", mainReturning(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, &BuildRequest{Units: []string{unit}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	prog := ast.NewProgram(ast.Fn("main", nil, ast.I32(),
		ast.ExprStmt(ast.ModCall("io", "println", ast.Str("hi"))),
		ast.Return(ast.Int(7)),
	))
	rt := vm.NewTestRuntime()
	sink := &recordingSink{}
	unit := writeUnit(t, dir, "hi", prog)

	res, err := Run(context.Background(), &RunRequest{Unit: unit, Runtime: rt, Progress: sink})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 7 || rt.Out.String() != "hi\n" {
		t.Fatalf("exit %d, stdout %q", res.ExitCode, rt.Out.String())
	}
	if got := sink.statuses(unit, StageRun); len(got) != 2 || got[1] != StatusDone {
		t.Fatalf("run events: %v", got)
	}
}

func TestRunCompileFailure(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "bad", brokenProgram())
	res, err := Run(context.Background(), &RunRequest{Unit: unit, Runtime: vm.NewTestRuntime()})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("no diagnostics for the failed unit")
	}
}

func TestBuildEmitsTraceSpans(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "traced", mainReturning(0))
	var buf bytes.Buffer
	tracer := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tracer)

	if _, err := Build(ctx, &BuildRequest{Units: []string{unit}}); err != nil {
		t.Fatal(err)
	}
	if err := tracer.Flush(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"→ build", "→ unit:traced.zast", "← unit:traced.zast (ok)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("trace misses %q:\n%s", want, buf.String())
		}
	}
}
