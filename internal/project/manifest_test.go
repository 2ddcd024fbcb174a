package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "hello"

[build]
units = ["src/main.zast", "src/util.zast"]
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if m.Config.Package.Name != "hello" {
		t.Fatalf("name = %q", m.Config.Package.Name)
	}
	if m.Config.Build.OutDir != DefaultOutDir || m.Config.Build.Target != DefaultTarget {
		t.Fatalf("defaults not applied: %+v", m.Config.Build)
	}
	if got, want := m.MainPath(), filepath.Join(root, "src", "main.zast"); got != want {
		t.Fatalf("MainPath = %q, want %q", got, want)
	}
	if units := m.UnitPaths(); len(units) != 2 || units[1] != filepath.Join(root, "src", "util.zast") {
		t.Fatalf("units = %v", units)
	}
	if m.OutDir() != filepath.Join(root, "build") {
		t.Fatalf("OutDir = %q", m.OutDir())
	}
}

func TestLoadMissing(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("Load on an empty tree = %v, %v", ok, err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no name", "[package]\n[build]\nunits = [\"a.zast\"]\n"},
		{"no units", "[package]\nname = \"x\"\n"},
		{"empty unit", "[package]\nname = \"x\"\n[build]\nunits = [\" \"]\n"},
		{"unknown key", "[package]\nname = \"x\"\nedition = 2\n[build]\nunits = [\"a.zast\"]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.content)
			if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("err = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestInitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Init(dir, "demo")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("skeleton does not load: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Run.Main != "main.zast" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := Init(dir, "demo"); err == nil {
		t.Fatal("Init overwrote an existing manifest")
	}
}

func TestDigest(t *testing.T) {
	a := Sum([]byte("unit"))
	if a.IsZero() || len(a.String()) != 64 {
		t.Fatalf("digest = %s", a)
	}
	if Combine(a, []byte("x")) == Combine(a, []byte("y")) {
		t.Fatal("Combine ignores its parts")
	}
}
