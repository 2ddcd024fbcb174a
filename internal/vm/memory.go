package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"fortio.org/safecast"

	"zenc/internal/backend/ir"
)

// Address space. Globals and the heap share the low segment, starting
// above a guard page so null and near-null pointers fault. The stack lives
// in its own segment; stream handles and function addresses are tags that
// never resolve to bytes.
const (
	nullGuard  = 0x1000
	stackBase  = uint64(1) << 40
	streamBase = uint64(1) << 44
	funcBase   = uint64(1) << 48
)

const (
	defaultMaxHeap  = 256 << 20
	defaultMaxStack = 8 << 20
)

type memory struct {
	data     []byte // [0, nullGuard) is never handed out
	stack    []byte
	sp       int
	allocs   map[uint64]int // malloc'd block sizes, for realloc
	maxHeap  int
	maxStack int
}

func newMemory(maxHeap, maxStack int) *memory {
	if maxHeap <= 0 {
		maxHeap = defaultMaxHeap
	}
	if maxStack <= 0 {
		maxStack = defaultMaxStack
	}
	return &memory{
		data:     make([]byte, nullGuard, nullGuard+4096),
		allocs:   make(map[uint64]int, 64),
		maxHeap:  maxHeap,
		maxStack: maxStack,
	}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// heapAlloc bump-allocates zeroed bytes in the low segment.
func (vm *VM) heapAlloc(size, align int) (uint64, *VMError) {
	if size < 0 {
		return 0, vm.eb.makeError(PanicOutOfMemory, fmt.Sprintf("negative allocation size %d", size))
	}
	m := vm.mem
	start := alignUp(len(m.data), align)
	end := start + size
	if end > m.maxHeap {
		return 0, vm.eb.makeError(PanicOutOfMemory, fmt.Sprintf("heap limit of %d bytes exceeded", m.maxHeap))
	}
	if end > cap(m.data) {
		grown := make([]byte, len(m.data), max(end, 2*cap(m.data)))
		copy(grown, m.data)
		m.data = grown
	}
	m.data = m.data[:end]
	clear(m.data[start:end])
	addr, err := safecast.Conv[uint64](start)
	if err != nil {
		return 0, vm.eb.makeError(PanicOutOfMemory, err.Error())
	}
	return addr, nil
}

// stackAlloc reserves zeroed bytes in the current frame.
func (vm *VM) stackAlloc(size, align int) (uint64, *VMError) {
	m := vm.mem
	start := alignUp(m.sp, align)
	end := start + size
	if end > m.maxStack {
		return 0, vm.eb.makeError(PanicStackOverflow, fmt.Sprintf("stack limit of %d bytes exceeded", m.maxStack))
	}
	if end > len(m.stack) {
		grown := make([]byte, max(end, 2*len(m.stack)))
		copy(grown, m.stack)
		m.stack = grown
	}
	clear(m.stack[start:end])
	m.sp = end
	off, err := safecast.Conv[uint64](start)
	if err != nil {
		return 0, vm.eb.makeError(PanicStackOverflow, err.Error())
	}
	return stackBase + off, nil
}

// tail returns the bytes from addr to the end of its segment.
func (vm *VM) tail(addr uint64) ([]byte, *VMError) {
	m := vm.mem
	switch {
	case addr < nullGuard:
		return nil, vm.eb.nullDeref(1)
	case addr >= stackBase && addr < streamBase:
		off := addr - stackBase
		if off >= uint64(m.sp) {
			return nil, vm.eb.outOfBounds(addr, 1)
		}
		return m.stack[off:m.sp], nil
	case addr < uint64(len(m.data)):
		return m.data[addr:], nil
	}
	return nil, vm.eb.outOfBounds(addr, 1)
}

// bytesAt returns the n bytes at addr; they alias VM memory.
func (vm *VM) bytesAt(addr uint64, n int) ([]byte, *VMError) {
	if n == 0 {
		return nil, nil
	}
	if addr < nullGuard {
		return nil, vm.eb.nullDeref(n)
	}
	b, vmErr := vm.tail(addr)
	if vmErr != nil {
		return nil, vm.eb.outOfBounds(addr, n)
	}
	if n < 0 || n > len(b) {
		return nil, vm.eb.outOfBounds(addr, n)
	}
	return b[:n], nil
}

// cString reads a NUL-terminated string.
func (vm *VM) cString(addr uint64) (string, *VMError) {
	b, vmErr := vm.tail(addr)
	if vmErr != nil {
		return "", vmErr
	}
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return "", vm.eb.makeError(PanicOutOfBounds, fmt.Sprintf("string at 0x%x is not terminated", addr))
	}
	return string(b[:n]), nil
}

func (vm *VM) sizeOf(t ir.Type) (int, *VMError) {
	l, err := vm.Layout.LayoutOf(t)
	if err != nil {
		return 0, vm.eb.typeMismatch("sized type", t.String())
	}
	return l.Size, nil
}

func (vm *VM) alignOf(t ir.Type) int {
	l, err := vm.Layout.LayoutOf(t)
	if err != nil || l.Align <= 0 {
		return 1
	}
	return l.Align
}

// stride is the distance between consecutive elements of type t.
func (vm *VM) stride(t ir.Type) (int, *VMError) {
	size, vmErr := vm.sizeOf(t)
	if vmErr != nil {
		return 0, vmErr
	}
	return alignUp(size, vm.alignOf(t)), nil
}

func intBytes(bits int) int {
	return (bits + 7) / 8
}

// load reads a value of type t from addr.
func (vm *VM) load(t ir.Type, addr uint64) (Value, *VMError) {
	switch tt := t.(type) {
	case *ir.IntType:
		n := intBytes(tt.Bits)
		b, vmErr := vm.bytesAt(addr, n)
		if vmErr != nil {
			return Value{}, vmErr
		}
		var buf [8]byte
		copy(buf[:], b)
		return intValue(binary.LittleEndian.Uint64(buf[:]), tt.Bits), nil
	case *ir.FloatType:
		if tt.Bits == 32 {
			b, vmErr := vm.bytesAt(addr, 4)
			if vmErr != nil {
				return Value{}, vmErr
			}
			return Value{F: float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))}, nil
		}
		b, vmErr := vm.bytesAt(addr, 8)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return Value{F: math.Float64frombits(binary.LittleEndian.Uint64(b))}, nil
	case *ir.PtrType:
		b, vmErr := vm.bytesAt(addr, 8)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return Value{Bits: binary.LittleEndian.Uint64(b)}, nil
	case *ir.StructType:
		l, err := vm.Layout.LayoutOf(tt)
		if err != nil {
			return Value{}, vm.eb.typeMismatch("sized struct", tt.String())
		}
		elems := make([]Value, len(tt.Fields))
		for i, ft := range tt.Fields {
			v, vmErr := vm.load(ft, addr+uint64(l.FieldOffsets[i]))
			if vmErr != nil {
				return Value{}, vmErr
			}
			elems[i] = v
		}
		return Value{Elems: elems}, nil
	case *ir.ArrayType:
		step, vmErr := vm.stride(tt.Elem)
		if vmErr != nil {
			return Value{}, vmErr
		}
		elems := make([]Value, tt.Len)
		for i := range elems {
			v, vmErr := vm.load(tt.Elem, addr+uint64(i*step))
			if vmErr != nil {
				return Value{}, vmErr
			}
			elems[i] = v
		}
		return Value{Elems: elems}, nil
	}
	return Value{}, vm.eb.unimplemented("load of " + t.String())
}

// store writes v as type t at addr.
func (vm *VM) store(t ir.Type, v Value, addr uint64) *VMError {
	switch tt := t.(type) {
	case *ir.IntType:
		n := intBytes(tt.Bits)
		b, vmErr := vm.bytesAt(addr, n)
		if vmErr != nil {
			return vmErr
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v.Bits&mask(tt.Bits))
		copy(b, buf[:n])
		return nil
	case *ir.FloatType:
		if tt.Bits == 32 {
			b, vmErr := vm.bytesAt(addr, 4)
			if vmErr != nil {
				return vmErr
			}
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.F)))
			return nil
		}
		b, vmErr := vm.bytesAt(addr, 8)
		if vmErr != nil {
			return vmErr
		}
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.F))
		return nil
	case *ir.PtrType:
		b, vmErr := vm.bytesAt(addr, 8)
		if vmErr != nil {
			return vmErr
		}
		binary.LittleEndian.PutUint64(b, v.Bits)
		return nil
	case *ir.StructType:
		l, err := vm.Layout.LayoutOf(tt)
		if err != nil {
			return vm.eb.typeMismatch("sized struct", tt.String())
		}
		for i, ft := range tt.Fields {
			fv := zeroValue(ft)
			if i < len(v.Elems) {
				fv = v.Elems[i]
			}
			if vmErr := vm.store(ft, fv, addr+uint64(l.FieldOffsets[i])); vmErr != nil {
				return vmErr
			}
		}
		return nil
	case *ir.ArrayType:
		step, vmErr := vm.stride(tt.Elem)
		if vmErr != nil {
			return vmErr
		}
		for i := 0; i < tt.Len; i++ {
			ev := zeroValue(tt.Elem)
			if i < len(v.Elems) {
				ev = v.Elems[i]
			}
			if vmErr := vm.store(tt.Elem, ev, addr+uint64(i*step)); vmErr != nil {
				return vmErr
			}
		}
		return nil
	}
	return vm.eb.unimplemented("store of " + t.String())
}
