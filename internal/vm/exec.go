package vm

import (
	"fmt"

	"zenc/internal/backend/ir"
)

// call runs fn in a fresh frame. argTypes is only consulted by variadic
// external functions.
func (vm *VM) call(fn *ir.Func, args []Value, argTypes []ir.Type) (Value, *VMError) {
	if fn.IsDeclaration() {
		return vm.callExternal(fn.Name, args, argTypes)
	}
	if len(vm.Stack) >= vm.opts.MaxDepth {
		return Value{}, vm.eb.makeError(PanicStackOverflow, fmt.Sprintf("call depth %d exceeded in %s", vm.opts.MaxDepth, fn.Name))
	}
	frame := NewFrame(fn, args)
	frame.sp = vm.mem.sp
	vm.Stack = append(vm.Stack, frame)
	v, vmErr := vm.run(frame)
	if vmErr != nil {
		return Value{}, vmErr
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	vm.mem.sp = frame.sp
	return v, nil
}

// run executes frame until it returns or the program halts.
func (vm *VM) run(f *Frame) (Value, *VMError) {
	for {
		blk := f.Block
		if vmErr := vm.enterBlock(f); vmErr != nil {
			return Value{}, vmErr
		}
		jumped := false
		for _, in := range blk.Instrs {
			if in.Op == ir.OpPhi {
				continue
			}
			vm.Steps++
			if vm.Steps > vm.opts.MaxSteps {
				return Value{}, vm.eb.makeError(PanicStepLimit, fmt.Sprintf("step limit of %d exceeded", vm.opts.MaxSteps))
			}
			switch in.Op {
			case ir.OpRet:
				if len(in.Ops) == 0 {
					return Value{}, nil
				}
				return vm.operand(f, in.Ops[0])
			case ir.OpBr:
				f.jump(in.Targets[0])
				jumped = true
			case ir.OpCondBr:
				c, vmErr := vm.operand(f, in.Ops[0])
				if vmErr != nil {
					return Value{}, vmErr
				}
				if c.Bool() {
					f.jump(in.Targets[0])
				} else {
					f.jump(in.Targets[1])
				}
				jumped = true
			case ir.OpUnreachable:
				return Value{}, vm.eb.makeError(PanicUnreachable, fmt.Sprintf("unreachable executed in %s", f.Func.Name))
			default:
				v, vmErr := vm.exec(f, in)
				if vmErr != nil {
					return Value{}, vmErr
				}
				if vm.Halted {
					return Value{}, nil
				}
				if in.HasResult() {
					f.regs[in] = v
				}
			}
			if jumped {
				break
			}
		}
		if !jumped {
			return Value{}, vm.eb.makeError(PanicUnreachable, fmt.Sprintf("block %%%s of %s has no terminator", blk.Name, f.Func.Name))
		}
	}
}

// enterBlock resolves the leading phis of the current block against the
// predecessor. All incoming values are read before any phi is written.
func (vm *VM) enterBlock(f *Frame) *VMError {
	var pending []Value
	var phis []*ir.Instr
	for _, in := range f.Block.Instrs {
		if in.Op != ir.OpPhi {
			break
		}
		found := false
		for _, inc := range in.Incoming {
			if inc.Block != f.Prev {
				continue
			}
			v, vmErr := vm.operand(f, inc.Value)
			if vmErr != nil {
				return vmErr
			}
			pending = append(pending, v)
			phis = append(phis, in)
			found = true
			break
		}
		if !found {
			from := "<entry>"
			if f.Prev != nil {
				from = f.Prev.Name
			}
			return vm.eb.makeError(PanicUseBeforeInit, fmt.Sprintf("phi %%%s in %%%s has no edge from %%%s", in.Name, f.Block.Name, from))
		}
	}
	for i, in := range phis {
		f.regs[in] = pending[i]
	}
	return nil
}

// operand evaluates an instruction operand in frame f.
func (vm *VM) operand(f *Frame, v ir.Value) (Value, *VMError) {
	switch op := v.(type) {
	case *ir.ConstInt:
		return intValue(uint64(op.V), op.Typ.Bits), nil
	case *ir.ConstFloat:
		return floatValue(op.V, op.Typ.Bits), nil
	case *ir.ConstNull:
		return Value{}, nil
	case *ir.ConstZero:
		return zeroValue(op.Typ), nil
	case *ir.ConstUndef:
		return zeroValue(op.Typ), nil
	case *ir.Global:
		addr, ok := vm.globals[op]
		if !ok {
			return Value{}, vm.eb.makeError(PanicUseBeforeInit, fmt.Sprintf("global @%s is not materialised", op.Name))
		}
		return Value{Bits: addr}, nil
	case *ir.Func:
		return Value{Bits: vm.funcAddrs[op]}, nil
	case *ir.Param:
		if op.Idx < 0 || op.Idx >= len(f.Args) {
			return Value{}, vm.eb.makeError(PanicUseBeforeInit, fmt.Sprintf("parameter %%%s was not passed", op.Name))
		}
		return f.Args[op.Idx], nil
	case *ir.Instr:
		val, ok := f.regs[op]
		if !ok {
			return Value{}, vm.eb.useBeforeInit(op.Name)
		}
		return val, nil
	}
	return Value{}, vm.eb.unimplemented(fmt.Sprintf("operand %T", v))
}

func (vm *VM) operands(f *Frame, vals []ir.Value) ([]Value, *VMError) {
	out := make([]Value, len(vals))
	for i, v := range vals {
		ev, vmErr := vm.operand(f, v)
		if vmErr != nil {
			return nil, vmErr
		}
		out[i] = ev
	}
	return out, nil
}

// exec runs a non-terminator, non-phi instruction.
func (vm *VM) exec(f *Frame, in *ir.Instr) (Value, *VMError) {
	switch {
	case in.Op.IsIntBinary():
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return vm.intBinary(in.Op, ir.IntBits(in.Type()), ops[0], ops[1])
	case in.Op.IsFloatBinary():
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return floatBinary(in.Op, ir.FloatBits(in.Type()), ops[0], ops[1]), nil
	case in.Op.IsCast():
		x, vmErr := vm.operand(f, in.Ops[0])
		if vmErr != nil {
			return Value{}, vmErr
		}
		return cast(in.Op, in.Ops[0].Type(), in.Type(), x), nil
	}

	switch in.Op {
	case ir.OpAlloca:
		size, vmErr := vm.sizeOf(in.ElemType)
		if vmErr != nil {
			return Value{}, vmErr
		}
		addr, vmErr := vm.stackAlloc(max(size, 1), vm.alignOf(in.ElemType))
		return Value{Bits: addr}, vmErr
	case ir.OpLoad:
		p, vmErr := vm.operand(f, in.Ops[0])
		if vmErr != nil {
			return Value{}, vmErr
		}
		t := in.ElemType
		if t == nil {
			t = in.Type()
		}
		return vm.load(t, p.Bits)
	case ir.OpStore:
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return Value{}, vm.store(in.Ops[0].Type(), ops[0], ops[1].Bits)
	case ir.OpGEP:
		return vm.gep(f, in)
	case ir.OpFNeg:
		x, vmErr := vm.operand(f, in.Ops[0])
		if vmErr != nil {
			return Value{}, vmErr
		}
		return floatValue(-x.F, ir.FloatBits(in.Type())), nil
	case ir.OpICmp:
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		width := ir.IntBits(in.Ops[0].Type())
		if width == 0 {
			width = 64 // pointers
		}
		return icmp(in.Pred, width, ops[0], ops[1])
	case ir.OpFCmp:
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return fcmp(in.Pred, ops[0].F, ops[1].F)
	case ir.OpSelect:
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if ops[0].Bool() {
			return ops[1], nil
		}
		return ops[2], nil
	case ir.OpExtractValue:
		agg, vmErr := vm.operand(f, in.Ops[0])
		if vmErr != nil {
			return Value{}, vmErr
		}
		v, ok := member(agg, in.Indices)
		if !ok {
			return Value{}, vm.eb.typeMismatch(fmt.Sprintf("aggregate with member %v", in.Indices), in.Ops[0].Type().String())
		}
		return v, nil
	case ir.OpInsertValue:
		ops, vmErr := vm.operands(f, in.Ops)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return withMember(ops[0], in.Indices, ops[1]), nil
	case ir.OpCall:
		return vm.execCall(f, in)
	}
	return Value{}, vm.eb.unimplemented(in.Op.String())
}

func (vm *VM) execCall(f *Frame, in *ir.Instr) (Value, *VMError) {
	var fn *ir.Func
	if direct, ok := in.Callee().(*ir.Func); ok {
		fn = direct
	} else {
		target, vmErr := vm.operand(f, in.Callee())
		if vmErr != nil {
			return Value{}, vmErr
		}
		if fn = vm.funcAt(target.Bits); fn == nil {
			return Value{}, vm.eb.makeError(PanicBadCall, fmt.Sprintf("call through 0x%x, which is not a function", target.Bits))
		}
	}
	argOps := in.Args()
	args, vmErr := vm.operands(f, argOps)
	if vmErr != nil {
		return Value{}, vmErr
	}
	types := make([]ir.Type, len(argOps))
	for i, a := range argOps {
		types[i] = a.Type()
	}
	return vm.call(fn, args, types)
}

// gep follows getelementptr: the first index steps over whole elements,
// later ones descend into structs and arrays.
func (vm *VM) gep(f *Frame, in *ir.Instr) (Value, *VMError) {
	base, vmErr := vm.operand(f, in.Ops[0])
	if vmErr != nil {
		return Value{}, vmErr
	}
	addr := base.Bits
	t := in.ElemType
	for i, idxOp := range in.Ops[1:] {
		iv, vmErr := vm.operand(f, idxOp)
		if vmErr != nil {
			return Value{}, vmErr
		}
		idx := iv.Int(max(ir.IntBits(idxOp.Type()), 1))
		if i == 0 {
			step, vmErr := vm.stride(t)
			if vmErr != nil {
				return Value{}, vmErr
			}
			addr += uint64(idx * int64(step))
			continue
		}
		switch tt := t.(type) {
		case *ir.StructType:
			if idx < 0 || int(idx) >= len(tt.Fields) {
				return Value{}, vm.eb.typeMismatch(fmt.Sprintf("field index below %d", len(tt.Fields)), fmt.Sprint(idx))
			}
			off, err := vm.Layout.FieldOffset(tt, int(idx))
			if err != nil {
				return Value{}, vm.eb.typeMismatch("sized struct", tt.String())
			}
			addr += uint64(off)
			t = tt.Fields[idx]
		case *ir.ArrayType:
			step, vmErr := vm.stride(tt.Elem)
			if vmErr != nil {
				return Value{}, vmErr
			}
			addr += uint64(idx * int64(step))
			t = tt.Elem
		default:
			return Value{}, vm.eb.typeMismatch("aggregate", t.String())
		}
	}
	return Value{Bits: addr}, nil
}
