package ir

// Block is a basic block. A well-formed block ends in exactly one terminator.
type Block struct {
	Name   string
	Instrs []*Instr
	Parent *Func
}

func (b *Block) Ident() string { return "%" + b.Name }

// Terminator returns the trailing terminator or nil.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.Op.IsTerminator() {
		return last
	}
	return nil
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return b.Terminator() != nil
}

// Successors lists the blocks control may flow to.
func (b *Block) Successors() []*Block {
	if t := b.Terminator(); t != nil {
		return t.Targets
	}
	return nil
}

func (b *Block) append(in *Instr) {
	in.Block = b
	b.Instrs = append(b.Instrs, in)
}
