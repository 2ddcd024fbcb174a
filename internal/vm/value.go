package vm

import (
	"fmt"
	"math"
	"strings"

	"zenc/internal/backend/ir"
)

// Value is a runtime value of any first-class IR type. Integers and
// pointers live in Bits (integers zero-extended from their width), floats
// in F, aggregates in Elems.
type Value struct {
	Bits  uint64
	F     float64
	Elems []Value
}

func intValue(bits uint64, width int) Value {
	return Value{Bits: bits & mask(width)}
}

func boolValue(b bool) Value {
	if b {
		return Value{Bits: 1}
	}
	return Value{}
}

func floatValue(f float64, width int) Value {
	if width == 32 {
		f = float64(float32(f))
	}
	return Value{F: f}
}

// Int returns Bits sign-extended from width.
func (v Value) Int(width int) int64 {
	return signExtend(v.Bits, width)
}

func (v Value) Bool() bool { return v.Bits&1 != 0 }

func (v Value) String() string {
	if v.Elems != nil {
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if v.F != 0 {
		return fmt.Sprint(v.F)
	}
	return fmt.Sprint(v.Bits)
}

func mask(width int) uint64 {
	if width <= 0 || width >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(width) - 1
}

func signExtend(bits uint64, width int) int64 {
	if width <= 0 || width >= 64 {
		return int64(bits)
	}
	shift := uint(64 - width)
	return int64(bits<<shift) >> shift
}

// zeroValue is zeroinitializer of t.
func zeroValue(t ir.Type) Value {
	switch tt := t.(type) {
	case *ir.StructType:
		elems := make([]Value, len(tt.Fields))
		for i, f := range tt.Fields {
			elems[i] = zeroValue(f)
		}
		return Value{Elems: elems}
	case *ir.ArrayType:
		elems := make([]Value, tt.Len)
		for i := range elems {
			elems[i] = zeroValue(tt.Elem)
		}
		return Value{Elems: elems}
	}
	return Value{}
}

// withMember returns a copy of agg whose member at path is v.
func withMember(agg Value, path []int, v Value) Value {
	if len(path) == 0 {
		return v
	}
	elems := make([]Value, len(agg.Elems))
	copy(elems, agg.Elems)
	idx := path[0]
	if idx >= 0 && idx < len(elems) {
		elems[idx] = withMember(elems[idx], path[1:], v)
	}
	return Value{Elems: elems}
}

func member(agg Value, path []int) (Value, bool) {
	for _, idx := range path {
		if idx < 0 || idx >= len(agg.Elems) {
			return Value{}, false
		}
		agg = agg.Elems[idx]
	}
	return agg, true
}
