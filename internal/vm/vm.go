package vm

import (
	"fmt"

	"zenc/internal/backend/ir"
	"zenc/internal/layout"
	"zenc/internal/trace"
)

// Options configures VM execution.
type Options struct {
	MaxSteps int // instructions executed before PanicStepLimit; 0 picks a default
	MaxDepth int // nested calls before PanicStackOverflow
	MaxHeap  int // bytes
	MaxStack int // bytes
	Tracer   trace.Tracer
}

const (
	defaultMaxSteps = 200_000_000
	defaultMaxDepth = 10_000
)

// VM interprets a backend IR module.
type VM struct {
	M        *ir.Module
	RT       Runtime
	Layout   *layout.LayoutEngine
	Stack    []*Frame
	ExitCode int
	Halted   bool
	Steps    int

	opts      Options
	mem       *memory
	globals   map[*ir.Global]uint64
	funcAddrs map[*ir.Func]uint64
	eb        *errorBuilder // for creating errors with backtrace
	started   bool
}

// New creates a new VM for executing the given module.
func New(m *ir.Module, rt Runtime, opts Options) *VM {
	if rt == nil {
		rt = NewDefaultRuntime()
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	vm := &VM{
		M:         m,
		RT:        rt,
		Layout:    layout.New(layout.X86_64LinuxGNU()),
		opts:      opts,
		mem:       newMemory(opts.MaxHeap, opts.MaxStack),
		globals:   make(map[*ir.Global]uint64, len(m.Globals)),
		funcAddrs: make(map[*ir.Func]uint64, len(m.Funcs)),
	}
	vm.eb = &errorBuilder{vm: vm}
	return vm
}

// Start materialises globals and assigns function addresses. It runs once;
// Call and RunMain invoke it on demand.
func (vm *VM) Start() *VMError {
	if vm.started {
		return nil
	}
	vm.started = true
	for i, fn := range vm.M.Funcs {
		vm.funcAddrs[fn] = funcBase + uint64(i)*16
	}
	for _, g := range vm.M.Globals {
		addr, vmErr := vm.materialise(g)
		if vmErr != nil {
			return vmErr
		}
		vm.globals[g] = addr
	}
	return nil
}

func (vm *VM) materialise(g *ir.Global) (uint64, *VMError) {
	if g.External {
		addr, vmErr := vm.heapAlloc(8, 8)
		if vmErr != nil {
			return 0, vmErr
		}
		var handle uint64
		switch g.Name {
		case "stdin":
			handle = streamBase
		case "stdout":
			handle = streamBase + 1
		case "stderr":
			handle = streamBase + 2
		}
		return addr, vm.store(ir.Ptr, Value{Bits: handle}, addr)
	}
	size, vmErr := vm.sizeOf(g.Typ)
	if vmErr != nil {
		return 0, vmErr
	}
	size = max(size, len(g.Init))
	addr, vmErr := vm.heapAlloc(size, max(vm.alignOf(g.Typ), 1))
	if vmErr != nil {
		return 0, vmErr
	}
	if len(g.Init) > 0 {
		b, vmErr := vm.bytesAt(addr, len(g.Init))
		if vmErr != nil {
			return 0, vmErr
		}
		copy(b, g.Init)
	}
	return addr, nil
}

// funcAt resolves a function address produced by funcAddrs.
func (vm *VM) funcAt(addr uint64) *ir.Func {
	if addr < funcBase || (addr-funcBase)%16 != 0 {
		return nil
	}
	idx := (addr - funcBase) / 16
	if idx >= uint64(len(vm.M.Funcs)) {
		return nil
	}
	return vm.M.Funcs[idx]
}

// Call runs the named function with the given arguments.
func (vm *VM) Call(name string, args ...Value) (Value, error) {
	if vmErr := vm.Start(); vmErr != nil {
		return Value{}, vmErr
	}
	fn := vm.M.Func(name)
	if fn == nil {
		return Value{}, fmt.Errorf("vm: no function %q", name)
	}
	v, vmErr := vm.call(fn, args, nil)
	if vmErr != nil {
		return Value{}, vmErr
	}
	return v, nil
}

// RunMain executes main and returns the process exit status: the status
// passed to exit, else main's integer result. A main returning a struct
// reports its first field.
func (vm *VM) RunMain() (int, error) {
	span := trace.Begin(vm.opts.Tracer, trace.ScopePass, "run", 0)
	fn := vm.M.Func("main")
	if fn == nil || fn.IsDeclaration() {
		span.End("no main")
		return 1, fmt.Errorf("vm: module %s has no main function", vm.M.Name)
	}
	if vmErr := vm.Start(); vmErr != nil {
		span.End(vmErr.Error())
		return 1, vmErr
	}
	v, vmErr := vm.call(fn, make([]Value, len(fn.Params)), nil)
	if vmErr != nil {
		span.End(vmErr.Error())
		return 1, vmErr
	}
	code := vm.status(fn.Sig.Ret, v)
	span.WithExtra("steps", fmt.Sprint(vm.Steps)).End(fmt.Sprintf("exit %d", code))
	return code, nil
}

func (vm *VM) status(ret ir.Type, v Value) int {
	if vm.Halted {
		return vm.ExitCode
	}
	switch rt := ret.(type) {
	case *ir.IntType:
		return int(int32(v.Int(rt.Bits)))
	case *ir.StructType:
		if len(rt.Fields) > 0 && len(v.Elems) > 0 {
			return vm.status(rt.Fields[0], v.Elems[0])
		}
	}
	return 0
}

// halt stops the program with code, as exit() does.
func (vm *VM) halt(code int) {
	vm.Halted = true
	vm.ExitCode = code
	vm.RT.Exit(code)
	trace.Point(vm.opts.Tracer, trace.ScopeModule, "exit", fmt.Sprint(code), 0)
}
