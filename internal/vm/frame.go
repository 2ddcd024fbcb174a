package vm

import "zenc/internal/backend/ir"

// Frame represents a function activation record on the call stack.
type Frame struct {
	Func  *ir.Func
	Block *ir.Block // block being executed
	Prev  *ir.Block // block control came from, for phi resolution
	Args  []Value

	regs map[*ir.Instr]Value
	sp   int // stack pointer at entry, restored on return
}

// NewFrame creates a new frame for executing the given function.
func NewFrame(fn *ir.Func, args []Value) *Frame {
	return &Frame{
		Func:  fn,
		Block: fn.Entry(),
		Args:  args,
		regs:  make(map[*ir.Instr]Value, 32),
	}
}

// jump moves the frame to dst.
func (f *Frame) jump(dst *ir.Block) {
	f.Prev = f.Block
	f.Block = dst
}
