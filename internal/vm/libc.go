package vm

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"fortio.org/safecast"

	"zenc/internal/backend/ir"
)

// callExternal dispatches a call to a declared-only function onto the C
// library shims.
func (vm *VM) callExternal(name string, args []Value, types []ir.Type) (Value, *VMError) {
	if f, ok := libmUnary[name]; ok && len(args) == 1 {
		return Value{F: f(args[0].F)}, nil
	}
	if f, ok := libmBinary[name]; ok && len(args) == 2 {
		return Value{F: f(args[0].F, args[1].F)}, nil
	}
	if len(args) < minArgs[name] {
		return Value{}, vm.eb.makeError(PanicBadCall, fmt.Sprintf("%s called with %d argument(s)", name, len(args)))
	}
	switch name {
	case "printf":
		return vm.printTo(streamBase+1, args[0], args[1:], typesFrom(types, 1))
	case "fprintf":
		return vm.printTo(args[0].Bits, args[1], args[2:], typesFrom(types, 2))
	case "sprintf":
		return vm.sprint(args[0].Bits, -1, args[1], args[2:], typesFrom(types, 2))
	case "snprintf":
		return vm.sprint(args[0].Bits, args[1].Int(64), args[2], args[3:], typesFrom(types, 3))
	case "puts":
		s, vmErr := vm.cString(args[0].Bits)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return vm.write(streamBase+1, s+"\n")
	case "putchar":
		if _, vmErr := vm.write(streamBase+1, string([]byte{byte(args[0].Bits)})); vmErr != nil {
			return Value{}, vmErr
		}
		return intValue(args[0].Bits&0xff, 32), nil
	case "malloc":
		return vm.malloc(args[0].Int(64))
	case "calloc":
		return vm.malloc(args[0].Int(64) * args[1].Int(64))
	case "realloc":
		return vm.realloc(args[0].Bits, args[1].Int(64))
	case "free":
		return Value{}, nil
	case "memset":
		b, vmErr := vm.span(args[0].Bits, args[2].Int(64))
		if vmErr != nil {
			return Value{}, vmErr
		}
		for i := range b {
			b[i] = byte(args[1].Bits)
		}
		return args[0], nil
	case "memcpy", "memmove":
		n := args[2].Int(64)
		src, vmErr := vm.span(args[1].Bits, n)
		if vmErr != nil {
			return Value{}, vmErr
		}
		dst, vmErr := vm.span(args[0].Bits, n)
		if vmErr != nil {
			return Value{}, vmErr
		}
		copy(dst, src)
		return args[0], nil
	case "memcmp":
		n := args[2].Int(64)
		a, vmErr := vm.span(args[0].Bits, n)
		if vmErr != nil {
			return Value{}, vmErr
		}
		b, vmErr := vm.span(args[1].Bits, n)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return intValue(uint64(int64(bytes.Compare(a, b))), 32), nil
	case "strlen":
		s, vmErr := vm.cString(args[0].Bits)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return Value{Bits: uint64(len(s))}, nil
	case "strcmp":
		a, vmErr := vm.cString(args[0].Bits)
		if vmErr != nil {
			return Value{}, vmErr
		}
		b, vmErr := vm.cString(args[1].Bits)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return intValue(uint64(int64(strings.Compare(a, b))), 32), nil
	case "exit":
		vm.halt(int(int32(args[0].Int(32))))
		return Value{}, nil
	case "abort":
		return Value{}, vm.eb.makeError(PanicAbort, "abort called")
	}
	return Value{}, vm.eb.unsupportedIntrinsic(name)
}

var minArgs = map[string]int{
	"printf": 1, "fprintf": 2, "sprintf": 2, "snprintf": 3,
	"puts": 1, "putchar": 1,
	"malloc": 1, "calloc": 2, "realloc": 2, "free": 1,
	"memset": 3, "memcpy": 3, "memmove": 3, "memcmp": 3,
	"strlen": 1, "strcmp": 2, "exit": 1,
}

var libmUnary = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"fabs":  math.Abs,
}

var libmBinary = map[string]func(float64, float64) float64{
	"pow":   math.Pow,
	"atan2": math.Atan2,
	"fmod":  math.Mod,
	"hypot": math.Hypot,
}

func typesFrom(types []ir.Type, from int) []ir.Type {
	if from >= len(types) {
		return nil
	}
	return types[from:]
}

// span is bytesAt with a C size_t length.
func (vm *VM) span(addr uint64, n int64) ([]byte, *VMError) {
	size, err := safecast.Conv[int](n)
	if err != nil || size < 0 {
		return nil, vm.eb.outOfBounds(addr, -1)
	}
	return vm.bytesAt(addr, size)
}

func (vm *VM) malloc(n int64) (Value, *VMError) {
	size, err := safecast.Conv[int](n)
	if err != nil || size < 0 {
		return Value{}, vm.eb.makeError(PanicOutOfMemory, fmt.Sprintf("malloc of %d bytes", n))
	}
	addr, vmErr := vm.heapAlloc(max(size, 1), 16)
	if vmErr != nil {
		return Value{}, vmErr
	}
	vm.mem.allocs[addr] = size
	return Value{Bits: addr}, nil
}

func (vm *VM) realloc(p uint64, n int64) (Value, *VMError) {
	if p == 0 {
		return vm.malloc(n)
	}
	old, ok := vm.mem.allocs[p]
	if !ok {
		return Value{}, vm.eb.makeError(PanicOutOfBounds, fmt.Sprintf("realloc of 0x%x, which malloc did not return", p))
	}
	fresh, vmErr := vm.malloc(n)
	if vmErr != nil {
		return Value{}, vmErr
	}
	keep := min(int64(old), n)
	src, vmErr := vm.span(p, keep)
	if vmErr != nil {
		return Value{}, vmErr
	}
	dst, vmErr := vm.span(fresh.Bits, keep)
	if vmErr != nil {
		return Value{}, vmErr
	}
	copy(dst, src)
	return fresh, nil
}

func (vm *VM) stream(handle uint64) (io.Writer, *VMError) {
	switch handle {
	case streamBase + 1:
		return vm.RT.Stdout(), nil
	case streamBase + 2:
		return vm.RT.Stderr(), nil
	}
	return nil, vm.eb.makeError(PanicBadCall, fmt.Sprintf("0x%x is not a writable stream", handle))
}

func (vm *VM) write(handle uint64, s string) (Value, *VMError) {
	w, vmErr := vm.stream(handle)
	if vmErr != nil {
		return Value{}, vmErr
	}
	if _, err := io.WriteString(w, s); err != nil {
		return intValue(uint64(math.MaxUint64), 32), nil
	}
	return intValue(uint64(len(s)), 32), nil
}

func (vm *VM) printTo(handle uint64, format Value, args []Value, types []ir.Type) (Value, *VMError) {
	fs, vmErr := vm.cString(format.Bits)
	if vmErr != nil {
		return Value{}, vmErr
	}
	s, vmErr := vm.formatC(fs, args, types)
	if vmErr != nil {
		return Value{}, vmErr
	}
	return vm.write(handle, s)
}

// sprint formats into buf. limit < 0 means unbounded (sprintf); otherwise
// at most limit-1 bytes plus the terminator are written. The result is the
// full formatted length either way.
func (vm *VM) sprint(buf uint64, limit int64, format Value, args []Value, types []ir.Type) (Value, *VMError) {
	fs, vmErr := vm.cString(format.Bits)
	if vmErr != nil {
		return Value{}, vmErr
	}
	s, vmErr := vm.formatC(fs, args, types)
	if vmErr != nil {
		return Value{}, vmErr
	}
	n := int64(len(s))
	if limit >= 0 {
		if limit == 0 {
			return intValue(uint64(n), 32), nil
		}
		n = min(n, limit-1)
	}
	dst, vmErr := vm.span(buf, n+1)
	if vmErr != nil {
		return Value{}, vmErr
	}
	copy(dst, s[:n])
	dst[n] = 0
	return intValue(uint64(len(s)), 32), nil
}
