package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"zenc/internal/ast"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) *treeNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func leaf(format string, args ...any) *treeNode {
	return &treeNode{label: fmt.Sprintf(format, args...)}
}

// FormatASTPretty prints the unit as an indented tree.
func FormatASTPretty(w io.Writer, unit *ast.Unit) error {
	if unit == nil || unit.Program == nil {
		return fmt.Errorf("empty unit")
	}
	name := unit.Name
	if name == "" {
		name = unit.Path
	}
	fmt.Fprintf(w, "Unit %s (%d items)\n", name, len(unit.Program.Items))
	for i, it := range unit.Program.Items {
		writeTree(w, itemNode(it, i), "", i == len(unit.Program.Items)-1)
	}
	return nil
}

func writeTree(w io.Writer, n *treeNode, prefix string, last bool) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	fmt.Fprintf(w, "%s%s%s\n", prefix, branch, n.label)
	for i, c := range n.children {
		writeTree(w, c, prefix+next, i == len(n.children)-1)
	}
}

// ASTNodeOutput is the JSON form of a tree node.
type ASTNodeOutput struct {
	Label    string          `json:"label"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

func toOutput(n *treeNode) ASTNodeOutput {
	out := ASTNodeOutput{Label: n.label}
	for _, c := range n.children {
		out.Children = append(out.Children, toOutput(c))
	}
	return out
}

// FormatASTJSON writes the same tree as FormatASTPretty as JSON.
func FormatASTJSON(w io.Writer, unit *ast.Unit) error {
	if unit == nil || unit.Program == nil {
		return fmt.Errorf("empty unit")
	}
	root := &treeNode{label: "Unit " + unit.Name}
	for i, it := range unit.Program.Items {
		root.add(itemNode(it, i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toOutput(root))
}

func itemNode(it *ast.Item, idx int) *treeNode {
	if it == nil {
		return leaf("Item[%d]: <nil>", idx)
	}
	n := leaf("Item[%d]: %s", idx, it.Kind)
	switch it.Kind {
	case ast.ItemFunction:
		if it.Func != nil {
			n.label += " " + it.Func.Name
			n.add(functionChildren(it.Func)...)
		}
	case ast.ItemExternal:
		if e := it.Extern; e != nil {
			n.label += " " + e.Name
			n.add(leaf("Signature: %s", signature(e.Params, e.Varargs, e.Ret)))
		}
	case ast.ItemStruct:
		if s := it.Struct; s != nil {
			n.label += " " + s.Name
			for _, f := range s.Fields {
				fn := leaf("Field %s: %s", f.Name, f.Type)
				if f.Default != nil {
					fn.add(exprNode("Default", f.Default))
				}
				n.add(fn)
			}
			for _, m := range s.Methods {
				n.add(leaf("Method %s", m.Name).add(functionChildren(m)...))
			}
		}
	case ast.ItemEnum:
		if e := it.Enum; e != nil {
			n.label += " " + e.Name
			for _, v := range e.Variants {
				if v.Payload != nil {
					n.add(leaf("Variant %s(%s)", v.Name, v.Payload))
				} else {
					n.add(leaf("Variant %s", v.Name))
				}
			}
		}
	case ast.ItemImport:
		if imp := it.Import; imp != nil {
			n.label += fmt.Sprintf(" %s := %s", imp.Alias, imp.Path)
		}
	}
	return n
}

func signature(params []*ast.Type, varargs bool, ret *ast.Type) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, p.String())
	}
	if varargs {
		parts = append(parts, "...")
	}
	r := "void"
	if ret != nil {
		r = ret.String()
	}
	return "(" + strings.Join(parts, ", ") + ") " + r
}

func functionChildren(f *ast.Function) []*treeNode {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	sig := "(" + strings.Join(params, ", ") + ") " + f.ReturnType().String()
	out := []*treeNode{leaf("Signature: %s", sig)}
	if len(f.TypeParams) > 0 {
		out = append(out, leaf("Generics: %s", strings.Join(f.TypeParams, ", ")))
	}
	return append(out, blockNode("Body", f.Body))
}

func blockNode(label string, stmts []*ast.Stmt) *treeNode {
	n := leaf("%s (%d stmts)", label, len(stmts))
	for _, s := range stmts {
		n.add(stmtNode(s))
	}
	return n
}

func stmtNode(s *ast.Stmt) *treeNode {
	if s == nil {
		return leaf("<nil stmt>")
	}
	switch s.Kind {
	case ast.StmtExpr:
		return exprNode("Expr", s.Expr)
	case ast.StmtReturn:
		if s.Expr == nil {
			return leaf("Return")
		}
		return exprNode("Return", s.Expr)
	case ast.StmtDefer:
		return exprNode("Defer", s.Expr)
	case ast.StmtVarDecl:
		v := s.Var
		if v == nil {
			return leaf("VarDecl <nil>")
		}
		label := fmt.Sprintf("VarDecl %s %s", v.Name, v.Kind)
		if v.Type != nil {
			label += " " + v.Type.String()
		}
		if v.Init == nil {
			return leaf("%s (forward)", label)
		}
		return exprNode(label, v.Init)
	case ast.StmtAssign, ast.StmtPointerAssign:
		a := s.Assign
		if a == nil {
			return leaf("%s <nil>", s.Kind)
		}
		if a.Target != nil {
			return leaf("%s", s.Kind).add(exprNode("Target", a.Target), exprNode("Value", a.Value))
		}
		return exprNode(fmt.Sprintf("%s %s", s.Kind, a.Name), a.Value)
	case ast.StmtLoop:
		l := s.Loop
		if l == nil {
			return leaf("Loop <nil>")
		}
		label := "Loop"
		if l.Label != "" {
			label += " '" + l.Label
		}
		n := leaf("%s", label)
		if l.Kind == ast.LoopCondition {
			n.add(exprNode("Cond", l.Cond))
		}
		return n.add(blockNode("Body", l.Body))
	case ast.StmtBreak, ast.StmtContinue:
		if s.Label != "" {
			return leaf("%s '%s", s.Kind, s.Label)
		}
		return leaf("%s", s.Kind)
	case ast.StmtComptime:
		return blockNode("Comptime", s.Block)
	case ast.StmtImport:
		if s.Import != nil {
			return leaf("Import %s := %s", s.Import.Alias, s.Import.Path)
		}
	}
	return leaf("%s", s.Kind)
}

// exprNode labels e with prefix; simple expressions render inline.
func exprNode(prefix string, e *ast.Expr) *treeNode {
	if e == nil {
		return leaf("%s: <nil>", prefix)
	}
	if s, ok := inlineExpr(e); ok {
		return leaf("%s: %s", prefix, s)
	}
	n := leaf("%s: %s", prefix, e.Kind)
	switch e.Kind {
	case ast.ExprBinary:
		n.label += " " + e.Binary.Op.String()
		n.add(exprNode("L", e.Binary.Left), exprNode("R", e.Binary.Right))
	case ast.ExprUnary:
		n.label += " " + e.Unary.Op.String()
		n.add(exprNode("X", e.Unary.Operand))
	case ast.ExprCall:
		n.label += " " + e.Call.QualifiedName()
		for i, a := range e.Call.Args {
			n.add(exprNode("Arg"+strconv.Itoa(i), a))
		}
	case ast.ExprMethodCall:
		n.label += " ." + e.Method.Method
		n.add(exprNode("Recv", e.Method.Receiver))
		for i, a := range e.Method.Args {
			n.add(exprNode("Arg"+strconv.Itoa(i), a))
		}
	case ast.ExprMatch, ast.ExprConditional:
		n.add(exprNode("Scrutinee", e.Match.Scrutinee))
		for _, arm := range e.Match.Arms {
			an := leaf("Arm %s", patternText(arm.Pattern))
			if arm.Guard != nil {
				an.add(exprNode("Guard", arm.Guard))
			}
			n.add(an.add(exprNode("Body", arm.Body)))
		}
	case ast.ExprAddressOf, ast.ExprDeref, ast.ExprRaise:
		n.add(exprNode("X", e.Operand))
	case ast.ExprPointerOffset:
		n.add(exprNode("Ptr", e.Offset.Ptr), exprNode("Offset", e.Offset.Offset))
	case ast.ExprStructLit:
		n.label += " " + e.Struct.Name
		for _, f := range e.Struct.Fields {
			n.add(exprNode(f.Name, f.Value))
		}
	case ast.ExprField:
		n.label += " ." + e.Field.Field
		n.add(exprNode("Target", e.Field.Target))
	case ast.ExprArrayLit:
		for i, el := range e.Array.Elems {
			n.add(exprNode(strconv.Itoa(i), el))
		}
	case ast.ExprIndex:
		n.add(exprNode("Target", e.Index.Target), exprNode("Index", e.Index.Index))
	case ast.ExprEnumVariant, ast.ExprEnumLiteral, ast.ExprSome, ast.ExprNone:
		n.label += " " + e.Enum.EnumName + "." + e.Enum.Variant
		if e.Enum.Payload != nil {
			n.add(exprNode("Payload", e.Enum.Payload))
		}
	case ast.ExprInterp:
		for i, p := range e.Parts {
			n.add(exprNode(strconv.Itoa(i), p))
		}
	case ast.ExprRange:
		op := ".."
		if e.Range.Inclusive {
			op = "..="
		}
		n.label += " " + op
		n.add(exprNode("Start", e.Range.Start), exprNode("End", e.Range.End))
	case ast.ExprClosure:
		params := make([]string, len(e.Closure.Params))
		for i, p := range e.Closure.Params {
			params[i] = p.Name + ": " + p.Type.String()
		}
		n.label += " |" + strings.Join(params, ", ") + "| " + e.Closure.Ret.String()
		n.add(exprNode("Body", e.Closure.Body))
	case ast.ExprBlock:
		return blockNode(prefix+": Block", e.Block)
	case ast.ExprCast:
		n.label += " as " + e.Cast.Target.String()
		n.add(exprNode("Value", e.Cast.Value))
	}
	return n
}

func inlineExpr(e *ast.Expr) (string, bool) {
	switch e.Kind {
	case ast.ExprInt, ast.ExprFloat, ast.ExprBool, ast.ExprString:
		return literalText(e), true
	case ast.ExprUnit:
		return "()", true
	case ast.ExprIdent:
		return e.Name, true
	case ast.ExprNone:
		return "None", true
	}
	return "", false
}

func literalText(e *ast.Expr) string {
	if e == nil || e.Lit == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprInt:
		return strconv.FormatInt(e.Lit.Int, 10) + ast.Prim(e.Lit.Type).String()
	case ast.ExprFloat:
		return strconv.FormatFloat(e.Lit.Float, 'g', -1, 64) + ast.Prim(e.Lit.Type).String()
	case ast.ExprBool:
		return strconv.FormatBool(e.Lit.Bool)
	case ast.ExprString:
		return strconv.Quote(e.Lit.Str)
	}
	return e.Kind.String()
}

// patternText renders a pattern in source-like notation.
func patternText(p *ast.Pattern) string {
	if p == nil {
		return "<nil>"
	}
	switch p.Kind {
	case ast.PatLiteral:
		return literalText(p.Lit)
	case ast.PatIdent:
		return p.Name
	case ast.PatWildcard:
		return "_"
	case ast.PatRange:
		op := ".."
		if p.Range.Inclusive {
			op = "..="
		}
		return literalText(p.Range.Start) + op + literalText(p.Range.End)
	case ast.PatEnumVariant, ast.PatEnumLiteral:
		s := p.Enum.EnumName + "." + p.Enum.Variant
		if p.Enum.Payload != nil {
			s += "(" + patternText(p.Enum.Payload) + ")"
		}
		return s
	case ast.PatStruct:
		fields := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = f.Name
			if f.Pattern != nil {
				fields[i] += ": " + patternText(f.Pattern)
			}
		}
		return p.Name + " { " + strings.Join(fields, ", ") + " }"
	case ast.PatOr:
		alts := make([]string, len(p.Alts))
		for i, a := range p.Alts {
			alts[i] = patternText(a)
		}
		return strings.Join(alts, " | ")
	case ast.PatBinding:
		return p.Name + " @ " + patternText(p.Sub)
	case ast.PatType:
		return p.Name + ": " + p.Type.String()
	}
	return p.Kind.String()
}
