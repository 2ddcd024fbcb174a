package vm

import (
	"fmt"
	"strings"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicUseBeforeInit        PanicCode = 1001 // VM1001: register read before definition
	PanicTypeMismatch         PanicCode = 1003 // VM1003: operand of the wrong shape
	PanicOutOfBounds          PanicCode = 1004 // VM1004: memory access outside any region
	PanicUnsupportedIntrinsic PanicCode = 1005 // VM1005: external function without a shim
	PanicNullDeref            PanicCode = 1006 // VM1006: access through a null pointer
	PanicDivisionByZero       PanicCode = 1007 // VM1007: integer division by zero
	PanicUnreachable          PanicCode = 1008 // VM1008: executed unreachable
	PanicAbort                PanicCode = 1009 // VM1009: abort() called
	PanicStackOverflow        PanicCode = 1010 // VM1010: call depth or stack size exceeded
	PanicStepLimit            PanicCode = 1011 // VM1011: step budget exhausted
	PanicOutOfMemory          PanicCode = 1012 // VM1012: heap limit exceeded
	PanicBadCall              PanicCode = 1013 // VM1013: call through a non-function pointer
	PanicUnimplemented        PanicCode = 1999 // VM1999: unimplemented opcode
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	Block    string
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []BacktraceFrame // Stack frames from top to bottom
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its backtrace.
func (p *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s in %%%s\n", i, frame.FuncName, frame.Block)
		}
	}
	return sb.String()
}

// errorBuilder helps construct VMError values.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{
		Code:    code,
		Message: msg,
	}
	stack := eb.vm.Stack
	e.Backtrace = make([]BacktraceFrame, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]
		bf := BacktraceFrame{FuncName: frame.Func.Name}
		if frame.Block != nil {
			bf.Block = frame.Block.Name
		}
		e.Backtrace[len(stack)-1-i] = bf
	}
	return e
}

func (eb *errorBuilder) useBeforeInit(name string) *VMError {
	return eb.makeError(PanicUseBeforeInit, fmt.Sprintf("register %%%s read before it is defined", name))
}

func (eb *errorBuilder) typeMismatch(expected, got string) *VMError {
	return eb.makeError(PanicTypeMismatch, fmt.Sprintf("expected %s, got %s", expected, got))
}

func (eb *errorBuilder) outOfBounds(addr uint64, size int) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("access of %d byte(s) at 0x%x is out of bounds", size, addr))
}

func (eb *errorBuilder) nullDeref(size int) *VMError {
	return eb.makeError(PanicNullDeref, fmt.Sprintf("access of %d byte(s) through a null pointer", size))
}

func (eb *errorBuilder) unsupportedIntrinsic(name string) *VMError {
	return eb.makeError(PanicUnsupportedIntrinsic, fmt.Sprintf("unsupported external function: %s", name))
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, fmt.Sprintf("unimplemented: %s", what))
}
