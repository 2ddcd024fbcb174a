package vm

import (
	"math"

	"zenc/internal/backend/ir"
)

func (vm *VM) intBinary(op ir.Opcode, width int, x, y Value) (Value, *VMError) {
	a, b := x.Bits&mask(width), y.Bits&mask(width)
	sa, sb := signExtend(a, width), signExtend(b, width)
	var r uint64
	switch op {
	case ir.OpAdd:
		r = a + b
	case ir.OpSub:
		r = a - b
	case ir.OpMul:
		r = a * b
	case ir.OpSDiv, ir.OpSRem, ir.OpUDiv, ir.OpURem:
		if b == 0 {
			return Value{}, vm.eb.makeError(PanicDivisionByZero, "integer division by zero")
		}
		switch op {
		case ir.OpSDiv:
			r = uint64(sa / sb)
		case ir.OpSRem:
			r = uint64(sa % sb)
		case ir.OpUDiv:
			r = a / b
		default:
			r = a % b
		}
	case ir.OpAnd:
		r = a & b
	case ir.OpOr:
		r = a | b
	case ir.OpXor:
		r = a ^ b
	case ir.OpShl, ir.OpLShr, ir.OpAShr:
		if b >= uint64(width) {
			// poison in LLVM; pick the value a full shift would produce
			if op == ir.OpAShr && sa < 0 {
				r = math.MaxUint64
			}
			break
		}
		switch op {
		case ir.OpShl:
			r = a << b
		case ir.OpLShr:
			r = a >> b
		default:
			r = uint64(sa >> b)
		}
	}
	return intValue(r, width), nil
}

func floatBinary(op ir.Opcode, width int, x, y Value) Value {
	var r float64
	switch op {
	case ir.OpFAdd:
		r = x.F + y.F
	case ir.OpFSub:
		r = x.F - y.F
	case ir.OpFMul:
		r = x.F * y.F
	case ir.OpFDiv:
		r = x.F / y.F
	case ir.OpFRem:
		r = math.Mod(x.F, y.F)
	}
	return floatValue(r, width)
}

func icmp(p ir.Pred, width int, x, y Value) (Value, *VMError) {
	a, b := x.Bits&mask(width), y.Bits&mask(width)
	sa, sb := signExtend(a, width), signExtend(b, width)
	switch p {
	case ir.PredEQ:
		return boolValue(a == b), nil
	case ir.PredNE:
		return boolValue(a != b), nil
	case ir.PredSLT:
		return boolValue(sa < sb), nil
	case ir.PredSLE:
		return boolValue(sa <= sb), nil
	case ir.PredSGT:
		return boolValue(sa > sb), nil
	case ir.PredSGE:
		return boolValue(sa >= sb), nil
	case ir.PredULT:
		return boolValue(a < b), nil
	case ir.PredULE:
		return boolValue(a <= b), nil
	case ir.PredUGT:
		return boolValue(a > b), nil
	case ir.PredUGE:
		return boolValue(a >= b), nil
	}
	return Value{}, &VMError{Code: PanicUnimplemented, Message: "icmp " + string(p)}
}

// fcmp implements the ordered predicates: any NaN operand yields false.
func fcmp(p ir.Pred, a, b float64) (Value, *VMError) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return boolValue(false), nil
	}
	switch p {
	case ir.PredOEQ:
		return boolValue(a == b), nil
	case ir.PredONE:
		return boolValue(a != b), nil
	case ir.PredOLT:
		return boolValue(a < b), nil
	case ir.PredOLE:
		return boolValue(a <= b), nil
	case ir.PredOGT:
		return boolValue(a > b), nil
	case ir.PredOGE:
		return boolValue(a >= b), nil
	}
	return Value{}, &VMError{Code: PanicUnimplemented, Message: "fcmp " + string(p)}
}

func cast(op ir.Opcode, from, to ir.Type, x Value) Value {
	fw, tw := ir.IntBits(from), ir.IntBits(to)
	ffw, tfw := ir.FloatBits(from), ir.FloatBits(to)
	if fw == 0 && ir.IsPtr(from) {
		fw = 64
	}
	if tw == 0 && ir.IsPtr(to) {
		tw = 64
	}
	switch op {
	case ir.OpSExt:
		return intValue(uint64(signExtend(x.Bits, fw)), tw)
	case ir.OpZExt, ir.OpTrunc, ir.OpPtrToInt, ir.OpIntToPtr:
		return intValue(x.Bits&mask(fw), tw)
	case ir.OpFPExt, ir.OpFPTrunc:
		return floatValue(x.F, tfw)
	case ir.OpSIToFP:
		return floatValue(float64(signExtend(x.Bits, fw)), tfw)
	case ir.OpUIToFP:
		return floatValue(float64(x.Bits&mask(fw)), tfw)
	case ir.OpFPToSI:
		return intValue(uint64(floatToInt(x.F)), tw)
	case ir.OpFPToUI:
		if x.F < 0 {
			return intValue(uint64(floatToInt(x.F)), tw)
		}
		if x.F >= math.MaxUint64 {
			return intValue(math.MaxUint64, tw)
		}
		return intValue(uint64(x.F), tw)
	case ir.OpBitCast:
		switch {
		case ffw == 64 && tw == 64:
			return Value{Bits: math.Float64bits(x.F)}
		case ffw == 32 && tw == 32:
			return Value{Bits: uint64(math.Float32bits(float32(x.F)))}
		case fw == 64 && tfw == 64:
			return Value{F: math.Float64frombits(x.Bits)}
		case fw == 32 && tfw == 32:
			return Value{F: float64(math.Float32frombits(uint32(x.Bits)))}
		}
	}
	return x
}

// floatToInt saturates instead of leaving the result undefined.
func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}
