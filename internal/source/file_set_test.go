package source

import "testing"

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.zen", []byte("main = () i32 {\n    x = 1\n    x\n}\n"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{"start of file", 0, LineCol{Line: 1, Col: 1}},
		{"inside first line", 7, LineCol{Line: 1, Col: 8}},
		{"newline belongs to its line", 15, LineCol{Line: 1, Col: 16}},
		{"start of second line", 16, LineCol{Line: 2, Col: 1}},
		{"inside second line", 20, LineCol{Line: 2, Col: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestFileSetLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.zen", []byte("first\r\nsecond\nthird"))
	f := fs.Get(id)
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Fatal("expected CRLF normalisation flag")
	}
	want := []string{"", "first", "second", "third", ""}
	for line, w := range want {
		if got := f.Line(uint32(line)); got != w { // #nosec G115
			t.Errorf("Line(%d) = %q, want %q", line, got, w)
		}
	}
}

func TestFileSetLookupLatest(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("dir/../unit.zen", []byte("a"))
	second := fs.AddVirtual("unit.zen", []byte("b"))
	f, ok := fs.Lookup("unit.zen")
	if !ok || f.ID != second {
		t.Fatalf("Lookup returned %v, %v; want id %d", f, ok, second)
	}
	if fs.Get(99) != nil {
		t.Error("Get on unknown id must return nil")
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
	start, end := fs.Resolve(Span{File: 42})
	if start != (LineCol{}) || end != (LineCol{}) {
		t.Error("unknown file must resolve to zero positions")
	}
}
