package ast

import "testing"

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"same primitive", I32(), I32(), true},
		{"different primitive", I32(), I64(), false},
		{"generic by name and args", Result(I32(), StaticString()), Result(I32(), StaticString()), true},
		{"generic arg differs", Option(I32()), Option(I64()), false},
		{"nested generic", Result(Option(Result(I32(), Bool())), I8()), Result(Option(Result(I32(), Bool())), I8()), true},
		{"nested generic differs deep", Result(Option(Result(I32(), Bool())), I8()), Result(Option(Result(I32(), I8())), I8()), false},
		{"pointer elem", Ptr(StructType("Point")), Ptr(StructType("Point")), true},
		{"ptr vs mutptr", Ptr(I32()), MutPtr(I32()), false},
		{"array length", ArrayOf(I32(), 3), ArrayOf(I32(), 4), false},
		{"function ret", Func(I32(), I32()), Func(I64(), I32()), false},
		{"nil vs nil", nil, nil, true},
		{"nil vs type", nil, I32(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		t    *Type
		want string
	}{
		{I32(), "i32"},
		{StaticString(), "StaticString"},
		{Result(Option(I32()), StaticString()), "Result<Option<i32>, StaticString>"},
		{MutPtr(StructType("Point")), "MutPtr<Point>"},
		{ArrayOf(U8(), 16), "[u8; 16]"},
		{FuncPtr(I64(), I32(), Bool()), "fn(i32, bool) i64"},
		{nil, "_"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeClassification(t *testing.T) {
	if !U64().IsUnsigned() || U64().IsSigned() {
		t.Error("u64 must be unsigned")
	}
	if !Usize().IsInteger() || Usize().BitWidth() != 64 {
		t.Error("usize is a 64-bit integer")
	}
	if !StaticString().IsPointer() {
		t.Error("strings are byte pointers")
	}
	if Bool().BitWidth() != 1 || Bool().IsInteger() {
		t.Error("bool is 1 bit and not an integer")
	}
	if got := Option(I32()).EnumName(); got != "Option" {
		t.Errorf("EnumName() = %q", got)
	}
	orig := Result(Ptr(I32()), I8())
	c := orig.Clone()
	c.Args[0].Elem.Kind = TypeI64
	if orig.Args[0].Elem.Kind != TypeI32 {
		t.Error("Clone must not share nested types")
	}
}

func TestModuleImportModule(t *testing.T) {
	tests := map[string]string{
		"@std.io":   "io",
		"@std.math": "math",
		"core":      "core",
		"std/build": "build",
	}
	for path, want := range tests {
		m := &ModuleImport{Alias: "x", Path: path}
		if got := m.Module(); got != want {
			t.Errorf("Module(%q) = %q, want %q", path, got, want)
		}
	}
}
