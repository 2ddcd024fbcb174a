package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"zenc/internal/diag"
	"zenc/internal/source"
)

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("dir/main.zen", []byte("main = () {\n    io.nope()\n}\n"))

	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevError, diag.CgnUndeclaredFunction, source.Span{File: fileID, Start: 16, End: 25}, "undeclared function io.nope").
		WithNote(source.Span{File: fileID, Start: 0, End: 4}, "in main"))
	bag.Add(diag.NewUnplaced(diag.SevWarning, diag.CgnMainReturnsResult, "main returns Result"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Code != "CGN3004" || first.Severity != "ERROR" || first.Title != "Undeclared function" {
		t.Fatalf("first = %+v", first)
	}
	if first.Location == nil || first.Location.File != "main.zen" || first.Location.StartLine != 2 || first.Location.StartCol != 5 {
		t.Fatalf("location = %+v", first.Location)
	}
	if len(first.Notes) != 1 || first.Notes[0].Message != "in main" {
		t.Fatalf("notes = %+v", first.Notes)
	}
	if out.Diagnostics[1].Location != nil {
		t.Fatalf("unplaced diagnostic has a location: %+v", out.Diagnostics[1].Location)
	}
}

func TestJSONMax(t *testing.T) {
	bag := diag.NewBag(8)
	for n := 0; n < 5; n++ {
		bag.Add(diag.NewUnplaced(diag.SevError, diag.CgnTypeError, "x"))
	}
	out := BuildDiagnosticsOutput(bag, nil, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
}
