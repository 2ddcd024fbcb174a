package diag

import (
	"testing"

	"zenc/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewUnplaced(SevWarning, CgnMainReturnsResult, "w")) {
		t.Fatal("first Add must succeed")
	}
	if b.HasErrors() {
		t.Fatal("warning is not an error")
	}
	if !b.HasWarnings() {
		t.Fatal("expected warning")
	}
	b.Add(NewError(CgnTypeMismatch, source.Span{Start: 1, End: 2}, "e"))
	if b.Add(NewError(CgnTypeError, source.Span{}, "dropped")) {
		t.Fatal("Add past the limit must fail")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("unexpected bag state: len=%d errors=%v", b.Len(), b.HasErrors())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(CgnTypeError, source.Span{File: 1, Start: 5, End: 6}, "late"))
	b.Add(NewError(CgnTypeError, source.Span{File: 0, Start: 9, End: 9}, "early file"))
	b.Add(New(SevWarning, CgnMainReturnsResult, source.Span{File: 0, Start: 9, End: 9}, "warn"))
	b.Add(NewError(CgnTypeError, source.Span{File: 1, Start: 5, End: 6}, "late"))
	b.Sort()
	b.Dedup()

	items := b.Items()
	want := []string{"early file", "warn", "late"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Message != w {
			t.Errorf("item %d = %q, want %q", i, items[i].Message, w)
		}
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CgnTypeMismatch, "CGN3001"},
		{IODecodeUnit, "IO4002"},
		{ProjManifestInvalid, "PRJ5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if CgnMissingReturnStatement.Title() != "Missing return statement" {
		t.Errorf("unexpected title %q", CgnMissingReturnStatement.Title())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 3}
	ReportWarning(r, CgnMainReturnsResult, &sp, "main returns Result").Emit()
	ReportWarning(r, CgnMainReturnsResult, &sp, "main returns Result").Emit()
	ReportError(r, CgnTypeError, nil, "no span").WithNote(sp, "here").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if bag.Items()[1].HasSpan {
		t.Error("diagnostic without span must have HasSpan=false")
	}
	if len(bag.Items()[1].Notes) != 1 {
		t.Error("note lost")
	}
}
