package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"zenc/internal/diag"
	"zenc/internal/source"
)

func TestPrettyCaret(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("main = () i32 {\n    x = \"a\" + 1\n}\n")
	fileID := fs.AddVirtual("/home/user/project/src/main.zen", content)

	bag := diag.NewBag(4)
	// span covers `"a" + 1`
	bag.Add(diag.New(diag.SevError, diag.CgnTypeMismatch, source.Span{File: fileID, Start: 24, End: 31}, "operator + needs numeric operands"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/main.zen:2:9"},
		{"basename", PathModeBasename, "main.zen:2:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "CGN3001", "needs numeric operands", `x = "a" + 1`} {
				if !strings.Contains(out, want) {
					t.Errorf("output misses %q:\n%s", want, out)
				}
			}
			lines := strings.Split(out, "\n")
			if len(lines) < 3 || !strings.HasSuffix(lines[2], "        ^~~~~~~") {
				t.Errorf("caret line = %q", lines[2])
			}
		})
	}
}

func TestPrettyWideRunes(t *testing.T) {
	if got := caretLine("s = \"日本\" + 1", source.LineCol{Line: 1, Col: 14}, source.LineCol{Line: 1, Col: 17}); got != strings.Repeat(" ", 11)+"^~~" {
		t.Fatalf("caret = %q", got)
	}
}

func TestPrettyUnplaced(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.NewUnplaced(diag.SevWarning, diag.CgnMainReturnsResult, "main returning Result<i32, StaticString>"))
	var buf bytes.Buffer
	Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{})
	if got := buf.String(); got != "WARNING CGN3008: main returning Result<i32, StaticString>\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("m.zen", []byte("a\nb\nc\nd\n"))
	bag := diag.NewBag(2)
	d := diag.New(diag.SevError, diag.CgnUndeclaredVariable, source.Span{File: fileID, Start: 4, End: 5}, "undeclared variable c").
		WithNote(source.Span{File: fileID, Start: 0, End: 1}, "did you mean a?")
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()
	for _, want := range []string{"2 | b", "3 | c", "4 | d", "note: m.zen:1:1: did you mean a?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdefghij", 6); got != "abc..." {
		t.Fatalf("clip = %q", got)
	}
	if got := clip("short", 0); got != "short" {
		t.Fatalf("clip = %q", got)
	}
}
