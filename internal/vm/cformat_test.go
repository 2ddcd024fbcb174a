package vm

import (
	"math"
	"testing"

	"zenc/internal/backend/ir"
)

func TestFormatC(t *testing.T) {
	m := ir.NewModule("fmt")
	hello := m.StringConst("hello")
	v := New(m, NewTestRuntime(), Options{})
	if vmErr := v.Start(); vmErr != nil {
		t.Fatal(vmErr)
	}
	helloAddr := v.globals[hello]

	tests := []struct {
		format string
		args   []Value
		types  []ir.Type
		want   string
	}{
		{"plain", nil, nil, "plain"},
		{"%d", []Value{intValue(uint64(0xFFFFFFFF), 32)}, []ir.Type{ir.I32}, "-1"},
		{"%u", []Value{intValue(uint64(0xFFFFFFFF), 32)}, []ir.Type{ir.I32}, "4294967295"},
		{"%lld", []Value{{Bits: math.MaxUint64}}, []ir.Type{ir.I64}, "-1"},
		{"%llu", []Value{{Bits: math.MaxUint64}}, []ir.Type{ir.I64}, "18446744073709551615"},
		{"%5d|%-5d|", []Value{{Bits: 42}, {Bits: 42}}, []ir.Type{ir.I32, ir.I32}, "   42|42   |"},
		{"%x %X %#o", []Value{{Bits: 255}, {Bits: 255}, {Bits: 8}}, []ir.Type{ir.I32, ir.I32, ir.I32}, "ff FF 010"},
		{"%f", []Value{{F: 1.5}}, []ir.Type{ir.F64}, "1.500000"},
		{"%.3f", []Value{{F: math.Pi}}, []ir.Type{ir.F64}, "3.142"},
		{"%g", []Value{{F: 0.5}}, []ir.Type{ir.F64}, "0.5"},
		{"%e", []Value{{F: 1234.5}}, []ir.Type{ir.F64}, "1.234500e+03"},
		{"%f", []Value{{F: math.Inf(-1)}}, []ir.Type{ir.F64}, "-inf"},
		{"%s!", []Value{{Bits: helloAddr}}, []ir.Type{ir.Ptr}, "hello!"},
		{"%.3s", []Value{{Bits: helloAddr}}, []ir.Type{ir.Ptr}, "hel"},
		{"%s", []Value{{}}, []ir.Type{ir.Ptr}, "(null)"},
		{"%c%c", []Value{{Bits: 'o'}, {Bits: 'k'}}, []ir.Type{ir.I32, ir.I32}, "ok"},
		{"%p", []Value{{}}, []ir.Type{ir.Ptr}, "(nil)"},
		{"%p", []Value{{Bits: 0x1000}}, []ir.Type{ir.Ptr}, "0x1000"},
		{"100%%", nil, nil, "100%"},
		{"%*d", []Value{{Bits: 4}, {Bits: 7}}, []ir.Type{ir.I32, ir.I32}, "   7"},
		{"%d %d", []Value{{Bits: 1}}, []ir.Type{ir.I32}, "1 0"},
		{"trailing %", nil, nil, "trailing %"},
	}
	for _, tt := range tests {
		got, vmErr := v.formatC(tt.format, tt.args, tt.types)
		if vmErr != nil {
			t.Errorf("formatC(%q): %v", tt.format, vmErr)
			continue
		}
		if got != tt.want {
			t.Errorf("formatC(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestCasts(t *testing.T) {
	tests := []struct {
		name     string
		op       ir.Opcode
		from, to ir.Type
		in       Value
		wantBits uint64
		wantF    float64
	}{
		{"sext i8", ir.OpSExt, ir.I8, ir.I32, Value{Bits: 0xFF}, 0xFFFFFFFF, 0},
		{"zext i8", ir.OpZExt, ir.I8, ir.I32, Value{Bits: 0xFF}, 0xFF, 0},
		{"trunc", ir.OpTrunc, ir.I64, ir.I8, Value{Bits: 0x1234}, 0x34, 0},
		{"sitofp", ir.OpSIToFP, ir.I32, ir.F64, Value{Bits: 0xFFFFFFFE}, 0, -2},
		{"uitofp", ir.OpUIToFP, ir.I32, ir.F64, Value{Bits: 0xFFFFFFFE}, 0, 4294967294},
		{"fptosi", ir.OpFPToSI, ir.F64, ir.I32, Value{F: -2.9}, 0xFFFFFFFE, 0},
		{"fptrunc", ir.OpFPTrunc, ir.F64, ir.F32, Value{F: 0.1}, 0, float64(float32(0.1))},
		{"bool to i32", ir.OpZExt, ir.I1, ir.I32, Value{Bits: 1}, 1, 0},
	}
	for _, tt := range tests {
		got := cast(tt.op, tt.from, tt.to, tt.in)
		if got.Bits != tt.wantBits || got.F != tt.wantF {
			t.Errorf("%s: got bits=%#x f=%v, want bits=%#x f=%v", tt.name, got.Bits, got.F, tt.wantBits, tt.wantF)
		}
	}
}

func TestIntBinaryWidths(t *testing.T) {
	v := New(ir.NewModule("ops"), NewTestRuntime(), Options{})
	tests := []struct {
		op    ir.Opcode
		width int
		x, y  uint64
		want  uint64
	}{
		{ir.OpAdd, 8, 200, 100, 44},
		{ir.OpSDiv, 32, 0xFFFFFFF9, 2, 0xFFFFFFFD}, // -7 / 2 = -3
		{ir.OpUDiv, 32, 0xFFFFFFF9, 2, 0x7FFFFFFC},
		{ir.OpSRem, 32, 0xFFFFFFF9, 2, 0xFFFFFFFF}, // -7 % 2 = -1
		{ir.OpURem, 8, 250, 7, 5},
		{ir.OpAShr, 8, 0x80, 1, 0xC0},
		{ir.OpLShr, 8, 0x80, 1, 0x40},
		{ir.OpShl, 8, 0x81, 1, 0x02},
		{ir.OpShl, 32, 1, 40, 0},
	}
	for _, tt := range tests {
		got, vmErr := v.intBinary(tt.op, tt.width, Value{Bits: tt.x}, Value{Bits: tt.y})
		if vmErr != nil {
			t.Fatalf("%s: %v", tt.op, vmErr)
		}
		if got.Bits != tt.want {
			t.Errorf("%s i%d %#x, %#x = %#x, want %#x", tt.op, tt.width, tt.x, tt.y, got.Bits, tt.want)
		}
	}
}
