package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the module as LLVM textual IR.
func (m *Module) String() string {
	var buf strings.Builder
	m.WriteTo(&buf)
	return buf.String()
}

// WriteTo renders the module into buf.
func (m *Module) WriteTo(buf *strings.Builder) {
	fmt.Fprintf(buf, "; ModuleID = '%s'\n", m.Name)
	fmt.Fprintf(buf, "source_filename = \"%s\"\n", m.Name)
	fmt.Fprintf(buf, "target triple = \"%s\"\n\n", m.Triple)

	for _, st := range m.Structs {
		if st.Fields == nil {
			fmt.Fprintf(buf, "%%%s = type opaque\n", st.Name)
			continue
		}
		fmt.Fprintf(buf, "%%%s = type %s\n", st.Name, st.Body())
	}
	if len(m.Structs) > 0 {
		buf.WriteString("\n")
	}

	for _, g := range m.Globals {
		switch {
		case g.External:
			fmt.Fprintf(buf, "@%s = external global %s\n", g.Name, g.Typ)
		case g.Constant:
			fmt.Fprintf(buf, "@%s = private unnamed_addr constant %s c\"%s\"\n", g.Name, g.Typ, formatBytes(g.Init))
		default:
			fmt.Fprintf(buf, "@%s = global %s zeroinitializer\n", g.Name, g.Typ)
		}
	}
	if len(m.Globals) > 0 {
		buf.WriteString("\n")
	}

	for _, f := range m.Funcs {
		if f.IsDeclaration() {
			fmt.Fprintf(buf, "declare %s @%s(%s)\n", f.Sig.Ret, f.Name, paramTypeList(f.Sig))
		}
	}
	for _, f := range m.Funcs {
		if !f.IsDeclaration() {
			buf.WriteString("\n")
			writeFunc(buf, f)
		}
	}
}

func paramTypeList(sig *FuncType) string {
	parts := make([]string, 0, len(sig.Params)+1)
	for _, p := range sig.Params {
		parts = append(parts, p.String())
	}
	if sig.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func writeFunc(buf *strings.Builder, f *Func) {
	params := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		params = append(params, typed(p))
	}
	if f.Sig.Variadic {
		params = append(params, "...")
	}
	linkage := ""
	if f.Linkage != "" {
		linkage = f.Linkage + " "
	}
	fmt.Fprintf(buf, "define %s%s @%s(%s) {\n", linkage, f.Sig.Ret, f.Name, strings.Join(params, ", "))
	for i, b := range f.Blocks {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(buf, "%s:\n", b.Name)
		for _, in := range b.Instrs {
			buf.WriteString("  ")
			buf.WriteString(in.String())
			buf.WriteString("\n")
		}
	}
	buf.WriteString("}\n")
}

// String renders one instruction without indentation.
func (in *Instr) String() string {
	var sb strings.Builder
	if in.HasResult() {
		sb.WriteString("%" + in.Name + " = ")
	}
	switch in.Op {
	case OpAlloca:
		sb.WriteString("alloca " + in.ElemType.String())
	case OpLoad:
		fmt.Fprintf(&sb, "load %s, %s", in.ElemType, typed(in.Ops[0]))
	case OpStore:
		fmt.Fprintf(&sb, "store %s, %s", typed(in.Ops[0]), typed(in.Ops[1]))
	case OpGEP:
		sb.WriteString("getelementptr ")
		if in.Inbounds {
			sb.WriteString("inbounds ")
		}
		sb.WriteString(in.ElemType.String())
		for _, op := range in.Ops {
			sb.WriteString(", " + typed(op))
		}
	case OpFNeg:
		fmt.Fprintf(&sb, "fneg %s", typed(in.Ops[0]))
	case OpICmp, OpFCmp:
		fmt.Fprintf(&sb, "%s %s %s, %s", in.Op, in.Pred, typed(in.Ops[0]), in.Ops[1].Ident())
	case OpCall:
		writeCall(&sb, in)
	case OpPhi:
		fmt.Fprintf(&sb, "phi %s ", in.Typ)
		for i, inc := range in.Incoming {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "[ %s, %%%s ]", inc.Value.Ident(), inc.Block.Name)
		}
	case OpSelect:
		fmt.Fprintf(&sb, "select %s, %s, %s", typed(in.Ops[0]), typed(in.Ops[1]), typed(in.Ops[2]))
	case OpExtractValue:
		fmt.Fprintf(&sb, "extractvalue %s%s", typed(in.Ops[0]), indexList(in.Indices))
	case OpInsertValue:
		fmt.Fprintf(&sb, "insertvalue %s, %s%s", typed(in.Ops[0]), typed(in.Ops[1]), indexList(in.Indices))
	case OpRet:
		if len(in.Ops) == 0 {
			sb.WriteString("ret void")
		} else {
			sb.WriteString("ret " + typed(in.Ops[0]))
		}
	case OpBr:
		fmt.Fprintf(&sb, "br label %%%s", in.Targets[0].Name)
	case OpCondBr:
		fmt.Fprintf(&sb, "br %s, label %%%s, label %%%s", typed(in.Ops[0]), in.Targets[0].Name, in.Targets[1].Name)
	case OpUnreachable:
		sb.WriteString("unreachable")
	default:
		switch {
		case in.Op.IsCast():
			fmt.Fprintf(&sb, "%s %s to %s", in.Op, typed(in.Ops[0]), in.Typ)
		case in.Op.IsIntBinary() || in.Op.IsFloatBinary():
			fmt.Fprintf(&sb, "%s %s, %s", in.Op, typed(in.Ops[0]), in.Ops[1].Ident())
		default:
			fmt.Fprintf(&sb, "; unknown opcode %d", in.Op)
		}
	}
	return sb.String()
}

func writeCall(sb *strings.Builder, in *Instr) {
	sb.WriteString("call ")
	if in.Sig.Variadic {
		sb.WriteString(in.Sig.String())
	} else {
		sb.WriteString(in.Sig.Ret.String())
	}
	sb.WriteString(" " + in.Ops[0].Ident() + "(")
	for i, a := range in.Args() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typed(a))
	}
	sb.WriteString(")")
}

func indexList(idx []int) string {
	var sb strings.Builder
	for _, i := range idx {
		sb.WriteString(", " + strconv.Itoa(i))
	}
	return sb.String()
}

// formatBytes escapes everything outside printable ASCII as \XX.
func formatBytes(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 0x20 && b <= 0x7e && b != '"' && b != '\\' {
			sb.WriteByte(b)
			continue
		}
		fmt.Fprintf(&sb, "\\%02X", b)
	}
	return sb.String()
}
