package ir

import (
	"fmt"
	"strconv"
)

// Func is a declared or defined function. A Func with no blocks is a
// declaration.
type Func struct {
	Name     string
	Sig      *FuncType
	Params   []*Param
	Blocks   []*Block
	Linkage  string // "" (external) or "internal"
	Module   *Module
	tmpID    int
	allocas  int
	blockIDs map[string]int
}

func (f *Func) Type() Type          { return Ptr }
func (f *Func) Ident() string       { return "@" + f.Name }
func (f *Func) IsDeclaration() bool { return len(f.Blocks) == 0 }

// Param returns the i-th parameter.
func (f *Func) Param(i int) *Param {
	if i < 0 || i >= len(f.Params) {
		return nil
	}
	return f.Params[i]
}

// Entry returns the entry block, creating it when missing.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return f.NewBlock("entry")
	}
	return f.Blocks[0]
}

// NewBlock appends a block. Names are made unique within the function by
// suffixing a counter.
func (f *Func) NewBlock(name string) *Block {
	if f.blockIDs == nil {
		f.blockIDs = make(map[string]int)
	}
	unique := name
	if n, seen := f.blockIDs[name]; seen {
		for {
			n++
			unique = name + "." + strconv.Itoa(n)
			if _, clash := f.blockIDs[unique]; !clash {
				break
			}
		}
		f.blockIDs[name] = n
	}
	f.blockIDs[unique] = 0
	b := &Block{Name: unique, Parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Block finds a block by name.
func (f *Func) Block(name string) *Block {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (f *Func) nextTemp() string {
	f.tmpID++
	return "t" + strconv.Itoa(f.tmpID)
}

// Verify checks block structure: every block ends in exactly one
// terminator, branch targets and phi predecessors belong to f.
func (f *Func) Verify() error {
	if f.IsDeclaration() {
		return nil
	}
	own := make(map[*Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		own[b] = true
	}
	preds := make(map[*Block]map[*Block]bool)
	for _, b := range f.Blocks {
		for _, s := range b.Successors() {
			if preds[s] == nil {
				preds[s] = make(map[*Block]bool)
			}
			preds[s][b] = true
		}
	}
	for _, b := range f.Blocks {
		if !b.Terminated() {
			return fmt.Errorf("%s: block %s has no terminator", f.Name, b.Name)
		}
		for i, in := range b.Instrs {
			if in.Op.IsTerminator() && i != len(b.Instrs)-1 {
				return fmt.Errorf("%s: block %s has %s before its end", f.Name, b.Name, in.Op)
			}
			for _, t := range in.Targets {
				if !own[t] {
					return fmt.Errorf("%s: block %s branches to foreign block %s", f.Name, b.Name, t.Name)
				}
			}
			if in.Op == OpPhi {
				for _, inc := range in.Incoming {
					if !preds[b][inc.Block] {
						return fmt.Errorf("%s: phi %%%s in %s names %s, which is not a predecessor", f.Name, in.Name, b.Name, inc.Block.Name)
					}
				}
			}
		}
	}
	return nil
}
