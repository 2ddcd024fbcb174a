package ir

import "fmt"

// Builder appends instructions at the end of its current block.
type Builder struct {
	fn    *Func
	block *Block
}

func NewBuilder(fn *Func) *Builder {
	return &Builder{fn: fn}
}

func (b *Builder) Func() *Func { return b.fn }

// Block returns the insertion block.
func (b *Builder) Block() *Block { return b.block }

// SetInsertPoint moves the cursor to the end of blk.
func (b *Builder) SetInsertPoint(blk *Block) { b.block = blk }

// Terminated reports whether the insertion block already has a terminator.
func (b *Builder) Terminated() bool {
	return b.block == nil || b.block.Terminated()
}

func (b *Builder) emit(in *Instr) *Instr {
	if b.block == nil {
		panic(fmt.Sprintf("ir: builder for %s has no insertion block", b.fn.Name))
	}
	if b.block.Terminated() {
		// code after a terminator lands in a block nothing branches to
		b.block = b.fn.NewBlock("dead")
	}
	if in.Typ != nil && !IsVoid(in.Typ) {
		in.Name = b.fn.nextTemp()
	}
	b.block.append(in)
	return in
}

// Alloca reserves a stack slot. Allocas are hoisted to the top of the entry
// block so every slot dominates its uses.
func (b *Builder) Alloca(t Type) *Instr {
	in := &Instr{Op: OpAlloca, Typ: Ptr, ElemType: t, Name: b.fn.nextTemp()}
	entry := b.fn.Entry()
	in.Block = entry
	pos := b.fn.allocas
	entry.Instrs = append(entry.Instrs, nil)
	copy(entry.Instrs[pos+1:], entry.Instrs[pos:])
	entry.Instrs[pos] = in
	b.fn.allocas++
	return in
}

func (b *Builder) Load(t Type, ptr Value) *Instr {
	return b.emit(&Instr{Op: OpLoad, Typ: t, ElemType: t, Ops: []Value{ptr}})
}

func (b *Builder) Store(v, ptr Value) {
	b.emit(&Instr{Op: OpStore, Ops: []Value{v, ptr}})
}

// GEP is getelementptr with arbitrary indices.
func (b *Builder) GEP(elem Type, ptr Value, idx ...Value) *Instr {
	ops := append([]Value{ptr}, idx...)
	return b.emit(&Instr{Op: OpGEP, Typ: Ptr, ElemType: elem, Ops: ops})
}

// StructGEP addresses field i of the struct ptr points to.
func (b *Builder) StructGEP(st Type, ptr Value, field int) *Instr {
	return b.emit(&Instr{
		Op: OpGEP, Typ: Ptr, ElemType: st, Inbounds: true,
		Ops: []Value{ptr, NewInt(I32, 0), NewInt(I32, int64(field))},
	})
}

// Binary emits an arithmetic or bitwise instruction; both operands share a type.
func (b *Builder) Binary(op Opcode, x, y Value) *Instr {
	return b.emit(&Instr{Op: op, Typ: x.Type(), Ops: []Value{x, y}})
}

func (b *Builder) FNeg(x Value) *Instr {
	return b.emit(&Instr{Op: OpFNeg, Typ: x.Type(), Ops: []Value{x}})
}

func (b *Builder) ICmp(p Pred, x, y Value) *Instr {
	return b.emit(&Instr{Op: OpICmp, Typ: I1, Pred: p, Ops: []Value{x, y}})
}

func (b *Builder) FCmp(p Pred, x, y Value) *Instr {
	return b.emit(&Instr{Op: OpFCmp, Typ: I1, Pred: p, Ops: []Value{x, y}})
}

// Cast converts v to t with the given opcode.
func (b *Builder) Cast(op Opcode, v Value, t Type) *Instr {
	return b.emit(&Instr{Op: op, Typ: t, Ops: []Value{v}})
}

// Call emits a direct or indirect call. Void calls produce no result name.
func (b *Builder) Call(callee Value, sig *FuncType, args ...Value) *Instr {
	ops := append([]Value{callee}, args...)
	return b.emit(&Instr{Op: OpCall, Typ: sig.Ret, Sig: sig, Ops: ops})
}

// Phi creates a phi node; edges may be added later with AddIncoming.
func (b *Builder) Phi(t Type, incoming ...Incoming) *Instr {
	return b.emit(&Instr{Op: OpPhi, Typ: t, Incoming: incoming})
}

func (b *Builder) Select(c, x, y Value) *Instr {
	return b.emit(&Instr{Op: OpSelect, Typ: x.Type(), Ops: []Value{c, x, y}})
}

func (b *Builder) ExtractValue(agg Value, idx int) *Instr {
	return b.emit(&Instr{Op: OpExtractValue, Typ: memberType(agg.Type(), idx), Ops: []Value{agg}, Indices: []int{idx}})
}

func (b *Builder) InsertValue(agg, v Value, idx int) *Instr {
	return b.emit(&Instr{Op: OpInsertValue, Typ: agg.Type(), Ops: []Value{agg, v}, Indices: []int{idx}})
}

func (b *Builder) Ret(v Value) {
	b.emit(&Instr{Op: OpRet, Ops: []Value{v}})
}

func (b *Builder) RetVoid() {
	b.emit(&Instr{Op: OpRet})
}

func (b *Builder) Br(dst *Block) {
	b.emit(&Instr{Op: OpBr, Targets: []*Block{dst}})
}

func (b *Builder) CondBr(c Value, then, els *Block) {
	b.emit(&Instr{Op: OpCondBr, Ops: []Value{c}, Targets: []*Block{then, els}})
}

func (b *Builder) Unreachable() {
	b.emit(&Instr{Op: OpUnreachable})
}

// memberType returns the type of field idx of a struct or array type.
func memberType(t Type, idx int) Type {
	switch tt := t.(type) {
	case *StructType:
		if idx >= 0 && idx < len(tt.Fields) {
			return tt.Fields[idx]
		}
	case *ArrayType:
		return tt.Elem
	}
	panic(fmt.Sprintf("ir: no member %d in %s", idx, t))
}
