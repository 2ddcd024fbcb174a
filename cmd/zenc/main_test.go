package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zenc/internal/ast"
	"zenc/internal/diag"
	"zenc/internal/project"
)

func writeUnit(t *testing.T, path string, prog *ast.Program) {
	t.Helper()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := ast.WriteUnitFile(path, &ast.Unit{Name: name, Program: prog}); err != nil {
		t.Fatal(err)
	}
}

func returning(v int64) *ast.Program {
	return ast.NewProgram(ast.Fn("main", nil, ast.I32(), ast.Return(ast.Int(v))))
}

func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color=off", "--ui=off"}, args...))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range tests {
		got, err := readUIMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("readUIMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestFormatPathForOutput(t *testing.T) {
	tests := []struct{ root, path, want string }{
		{"", "/a/b", "/a/b"},
		{"/proj", "/proj/build/x.ll", "build/x.ll"},
		{"/proj", "/elsewhere/x.ll", "/elsewhere/x.ll"},
	}
	for _, tc := range tests {
		if got := formatPathForOutput(tc.root, tc.path); got != tc.want {
			t.Errorf("formatPathForOutput(%q, %q) = %q", tc.root, tc.path, got)
		}
	}
}

func TestProjectName(t *testing.T) {
	if got := projectName("/work/demo"); got != "demo" {
		t.Fatalf("projectName = %q", got)
	}
	if got := projectName("/"); got != "zen-project" {
		t.Fatalf("projectName(/) = %q", got)
	}
}

func TestMergeBagsRespectsLimit(t *testing.T) {
	a, b := diag.NewBag(5), diag.NewBag(5)
	for n := 0; n < 3; n++ {
		a.Add(diag.NewUnplaced(diag.SevError, diag.CgnTypeMismatch, "a"))
		b.Add(diag.NewUnplaced(diag.SevError, diag.CgnTypeMismatch, "b"))
	}
	if got := mergeBags(4, a, nil, b).Len(); got != 4 {
		t.Fatalf("merged %d diagnostics", got)
	}
}

func TestBuildFromManifest(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if _, err := project.Init(dir, "demo"); err != nil {
		t.Fatal(err)
	}
	writeUnit(t, filepath.Join(dir, "main.zast"), returning(0))

	out, _, err := execRoot(t, "build", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "built build/main.ll") {
		t.Fatalf("stdout = %q", out)
	}
	ir, err := os.ReadFile(filepath.Join(dir, "build", "main.ll"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ir), "define i32 @main()") {
		t.Fatalf("IR:\n%s", ir)
	}
}

func TestBuildWithoutManifest(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := execRoot(t, "build", "--no-cache")
	if err == nil || !strings.Contains(err.Error(), project.ManifestName) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmitReportsCompileError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	unit := filepath.Join(dir, "bad.zast")
	writeUnit(t, unit, ast.NewProgram(ast.Fn("main", nil, ast.I32(), ast.Return(ast.Ident("ghost")))))

	out, errOut, err := execRoot(t, "emit", unit)
	var ee exitError
	if !errors.As(err, &ee) || ee.code != 1 {
		t.Fatalf("err = %v", err)
	}
	if out != "" {
		t.Fatalf("IR printed for a failed unit: %q", out)
	}
	if !strings.Contains(errOut, diag.CgnUndeclaredVariable.ID()) {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestCachedBuildAndClean(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	if _, err := project.Init(dir, "demo"); err != nil {
		t.Fatal(err)
	}
	writeUnit(t, filepath.Join(dir, "main.zast"), returning(0))

	if _, _, err := execRoot(t, "build", "--no-cache=false"); err != nil {
		t.Fatal(err)
	}
	out, _, err := execRoot(t, "build", "--no-cache=false")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(cached)") {
		t.Fatalf("second build missed the cache: %q", out)
	}

	out, _, err = execRoot(t, "clean")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "removed build") || !strings.Contains(out, "IR cache cleared") {
		t.Fatalf("clean output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "build")); !os.IsNotExist(err) {
		t.Fatal("build directory survived clean")
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", "zenc", "ir")); !os.IsNotExist(err) {
		t.Fatal("cache entries survived clean")
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
