package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint right", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"disjoint left", Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 2, End: 10}},
		{"nested", Span{File: 1, Start: 0, End: 10}, Span{File: 1, Start: 3, End: 4}, Span{File: 1, Start: 0, End: 10}},
		{"other file ignored", Span{File: 1, Start: 3, End: 4}, Span{File: 2, Start: 0, End: 40}, Span{File: 1, Start: 3, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanLen(t *testing.T) {
	if got := (Span{Start: 3, End: 9}).Len(); got != 6 {
		t.Errorf("Len() = %d, want 6", got)
	}
	if got := (Span{Start: 9, End: 3}).Len(); got != 0 {
		t.Errorf("Len() of inverted span = %d, want 0", got)
	}
	if !(Span{Start: 5, End: 5}).Empty() {
		t.Error("expected empty span")
	}
	if got := (Span{File: 2, Start: 1, End: 7}).String(); got != "2:1-7" {
		t.Errorf("String() = %q", got)
	}
}
