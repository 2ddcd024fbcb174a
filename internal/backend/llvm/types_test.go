package llvm_test

import (
	"testing"

	"zenc/internal/ast"
	"zenc/internal/backend/llvm"
)

func TestPromoteNumeric(t *testing.T) {
	tests := []struct {
		a, b, want *ast.Type
	}{
		{ast.I32(), ast.I32(), ast.I32()},
		{ast.I8(), ast.I32(), ast.I32()},
		{ast.I32(), ast.I64(), ast.I64()},
		{ast.U8(), ast.I16(), ast.I16()},
		{ast.U32(), ast.U64(), ast.U64()},
		{ast.U32(), ast.I32(), ast.I32()},
		{ast.I32(), ast.F32(), ast.F32()},
		{ast.I64(), ast.F32(), ast.F64()},
		{ast.F32(), ast.F64(), ast.F64()},
		{ast.Bool(), ast.Bool(), ast.Bool()},
		{ast.Bool(), ast.I32(), ast.I32()},
	}
	for _, tc := range tests {
		for _, pair := range [][2]*ast.Type{{tc.a, tc.b}, {tc.b, tc.a}} {
			got := llvm.PromoteNumeric(pair[0], pair[1])
			if !got.Equal(tc.want) {
				t.Errorf("PromoteNumeric(%s, %s) = %s, want %s", pair[0], pair[1], got, tc.want)
			}
		}
	}
}
