package ir

// Opcode identifies an instruction.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpAlloca
	OpLoad
	OpStore
	OpGEP
	// integer arithmetic
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSRem
	OpURem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr
	// float arithmetic
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
	OpFNeg
	// comparisons
	OpICmp
	OpFCmp
	// casts
	OpSExt
	OpZExt
	OpTrunc
	OpFPExt
	OpFPTrunc
	OpSIToFP
	OpUIToFP
	OpFPToSI
	OpFPToUI
	OpPtrToInt
	OpIntToPtr
	OpBitCast
	// other
	OpCall
	OpPhi
	OpSelect
	OpExtractValue
	OpInsertValue
	// terminators
	OpRet
	OpBr
	OpCondBr
	OpUnreachable
)

var opcodeNames = [...]string{
	OpAlloca:       "alloca",
	OpLoad:         "load",
	OpStore:        "store",
	OpGEP:          "getelementptr",
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpSDiv:         "sdiv",
	OpUDiv:         "udiv",
	OpSRem:         "srem",
	OpURem:         "urem",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpShl:          "shl",
	OpLShr:         "lshr",
	OpAShr:         "ashr",
	OpFAdd:         "fadd",
	OpFSub:         "fsub",
	OpFMul:         "fmul",
	OpFDiv:         "fdiv",
	OpFRem:         "frem",
	OpFNeg:         "fneg",
	OpICmp:         "icmp",
	OpFCmp:         "fcmp",
	OpSExt:         "sext",
	OpZExt:         "zext",
	OpTrunc:        "trunc",
	OpFPExt:        "fpext",
	OpFPTrunc:      "fptrunc",
	OpSIToFP:       "sitofp",
	OpUIToFP:       "uitofp",
	OpFPToSI:       "fptosi",
	OpFPToUI:       "fptoui",
	OpPtrToInt:     "ptrtoint",
	OpIntToPtr:     "inttoptr",
	OpBitCast:      "bitcast",
	OpCall:         "call",
	OpPhi:          "phi",
	OpSelect:       "select",
	OpExtractValue: "extractvalue",
	OpInsertValue:  "insertvalue",
	OpRet:          "ret",
	OpBr:           "br",
	OpCondBr:       "br",
	OpUnreachable:  "unreachable",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "invalid"
}

// IsTerminator reports ret, br, conditional br and unreachable.
func (op Opcode) IsTerminator() bool {
	return op >= OpRet && op <= OpUnreachable
}

// IsIntBinary reports integer arithmetic and bitwise opcodes.
func (op Opcode) IsIntBinary() bool { return op >= OpAdd && op <= OpAShr }

// IsFloatBinary reports float arithmetic opcodes (not fneg).
func (op Opcode) IsFloatBinary() bool { return op >= OpFAdd && op <= OpFRem }

// IsCast reports conversion opcodes.
func (op Opcode) IsCast() bool { return op >= OpSExt && op <= OpBitCast }

// Pred is an icmp/fcmp predicate.
type Pred string

const (
	PredEQ  Pred = "eq"
	PredNE  Pred = "ne"
	PredSLT Pred = "slt"
	PredSLE Pred = "sle"
	PredSGT Pred = "sgt"
	PredSGE Pred = "sge"
	PredULT Pred = "ult"
	PredULE Pred = "ule"
	PredUGT Pred = "ugt"
	PredUGE Pred = "uge"

	PredOEQ Pred = "oeq"
	PredONE Pred = "one"
	PredOLT Pred = "olt"
	PredOLE Pred = "ole"
	PredOGT Pred = "ogt"
	PredOGE Pred = "oge"
)

// Incoming is one phi edge.
type Incoming struct {
	Value Value
	Block *Block
}

// Instr is a single instruction. Which fields matter depends on Op.
type Instr struct {
	Op    Opcode
	Name  string // result name without '%', empty for void results
	Typ   Type   // result type
	Ops   []Value
	Block *Block

	Pred     Pred      // icmp, fcmp
	ElemType Type      // alloca, load, getelementptr source element type
	Indices  []int     // extractvalue, insertvalue
	Sig      *FuncType // call
	Incoming []Incoming
	Targets  []*Block // br: [dst]; condbr: [then, else]
	Inbounds bool
}

func (in *Instr) Type() Type {
	if in.Typ == nil {
		return Void
	}
	return in.Typ
}

func (in *Instr) Ident() string { return "%" + in.Name }

// HasResult reports whether the instruction defines a value.
func (in *Instr) HasResult() bool { return in.Name != "" }

// AddIncoming appends a phi edge.
func (in *Instr) AddIncoming(v Value, from *Block) {
	in.Incoming = append(in.Incoming, Incoming{Value: v, Block: from})
}

// Callee returns the called value of a call instruction.
func (in *Instr) Callee() Value {
	if in.Op != OpCall || len(in.Ops) == 0 {
		return nil
	}
	return in.Ops[0]
}

// Args returns the arguments of a call instruction.
func (in *Instr) Args() []Value {
	if in.Op != OpCall || len(in.Ops) == 0 {
		return nil
	}
	return in.Ops[1:]
}
