package llvm

import (
	"fmt"

	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// phiEdge is one arm's contribution to a match result; v is nil for arms
// that produce no value.
type phiEdge struct {
	v    ir.Value
	from *ir.Block
}

// armMerger collects arm results. The first value-producing arm fixes the
// result type; later arms are coerced to it.
type armMerger struct {
	c     *Compiler
	merge *ir.Block
	t     *ast.Type
	edges []phiEdge
}

// add records the value of the arm ending in the current block and branches
// to the merge block. Arms that already returned contribute nothing.
func (m *armMerger) add(v value) error {
	c := m.c
	b := c.fc.b
	if b.Terminated() {
		return nil
	}
	if c.inDeadBlock() {
		b.Unreachable()
		return nil
	}
	edge := phiEdge{from: b.Block()}
	if !v.isVoid() {
		if m.t == nil {
			m.t = v.t
		} else {
			cv, err := c.coerce(v, m.t)
			if err != nil {
				return typeMismatch(m.t, v.t, "match arms produce different types")
			}
			v = cv
		}
		edge.v = v.v
	}
	m.edges = append(m.edges, edge)
	b.Br(m.merge)
	return nil
}

// finish positions the builder in the merge block and builds the phi. Edges
// without a value get the zero value of the result type.
func (m *armMerger) finish() (value, error) {
	c := m.c
	b := c.fc.b
	b.SetInsertPoint(m.merge)
	if m.t == nil {
		return voidValue(), nil
	}
	rt, err := c.toIRType(m.t)
	if err != nil {
		return value{}, err
	}
	if len(m.edges) == 0 {
		return value{v: ir.Zero(rt), t: m.t}, nil
	}
	incoming := make([]ir.Incoming, len(m.edges))
	for i, e := range m.edges {
		v := e.v
		if v == nil {
			v = ir.Zero(rt)
		}
		if !ir.Equal(v.Type(), rt) {
			return value{}, internalError("match arm value of type %s merged as %s", v.Type(), rt)
		}
		incoming[i] = ir.Incoming{Value: v, Block: e.from}
	}
	return value{v: b.Phi(rt, incoming...), t: m.t}, nil
}

// compileMatch lowers `scrutinee ? | p0 => e0 | p1 => e1 ...`. Arm i tests
// its pattern in arm_i_test, optionally checks a guard, and runs its body in
// arm_i_body. The last test falls through to pattern_default, which yields
// the zero value of the result type.
func (c *Compiler) compileMatch(me *ast.MatchExpr, want *ast.Type) (value, error) {
	fc := c.fc
	scrut, err := c.compileExpr(me.Scrutinee)
	if err != nil {
		return value{}, err
	}
	if scrut.isVoid() {
		return value{}, typeError("match on a void value")
	}
	if len(me.Arms) == 0 {
		return value{}, typeError("match without arms")
	}
	scrutName := ""
	if me.Scrutinee.Kind == ast.ExprIdent {
		scrutName = me.Scrutinee.Name
	}

	fn := fc.fn
	b := fc.b
	tests := make([]*ir.Block, len(me.Arms))
	for i := range me.Arms {
		tests[i] = fn.NewBlock(fmt.Sprintf("arm_%d_test", i))
	}
	def := fn.NewBlock("pattern_default")
	merger := &armMerger{c: c, merge: fn.NewBlock("pattern_merge")}
	inits := fc.beginBranches()
	b.Br(tests[0])

	for i, arm := range me.Arms {
		if arm.Pattern == nil || arm.Body == nil {
			return value{}, internalError("match arm %d is incomplete", i)
		}
		fail := def
		if i+1 < len(me.Arms) {
			fail = tests[i+1]
		}
		b.SetInsertPoint(tests[i])
		var binds []binding
		cond, err := c.testPattern(arm.Pattern, scrut, scrutName, fail, &binds)
		if err != nil {
			return value{}, withSpan(err, arm.Pattern.Span)
		}
		body := fn.NewBlock(fmt.Sprintf("arm_%d_body", i))
		if arm.Guard != nil {
			guard := fn.NewBlock(fmt.Sprintf("arm_%d_guard", i))
			branchOn(b, cond, guard, fail)
			b.SetInsertPoint(guard)
			fc.enterScope()
			vars, err := c.applyBindings(binds)
			if err == nil {
				var g value
				if g, err = c.compileExpr(arm.Guard); err == nil {
					if g.isVoid() || !ir.Equal(g.v.Type(), ir.I1) {
						err = typeMismatch(ast.Bool(), g.t, "match guard must be a bool")
					} else {
						b.CondBr(g.v, body, fail)
					}
				}
			}
			fc.exitScope()
			if err != nil {
				return value{}, err
			}
			b.SetInsertPoint(body)
			fc.enterScope()
			for _, v := range vars {
				if err := fc.declare(v); err != nil {
					fc.exitScope()
					return value{}, err
				}
			}
		} else {
			branchOn(b, cond, body, fail)
			b.SetInsertPoint(body)
			fc.enterScope()
			if _, err := c.applyBindings(binds); err != nil {
				fc.exitScope()
				return value{}, err
			}
		}
		armWant := want
		if merger.t != nil {
			armWant = merger.t
		}
		v, err := c.compileExprWant(arm.Body, armWant)
		fc.exitScope()
		inits.endArm()
		if err != nil {
			return value{}, err
		}
		if err := merger.add(v); err != nil {
			return value{}, withSpan(err, arm.Body.Span)
		}
	}
	inits.finish()

	b.SetInsertPoint(def)
	if err := merger.add(voidValue()); err != nil {
		return value{}, err
	}
	return merger.finish()
}

// compileConditional lowers `cond ? | true => a | false => b`. A missing
// false arm behaves like the default block of a match.
func (c *Compiler) compileConditional(me *ast.MatchExpr, want *ast.Type) (value, error) {
	fc := c.fc
	cond, err := c.compileExpr(me.Scrutinee)
	if err != nil {
		return value{}, err
	}
	if cond.isVoid() || !ir.Equal(cond.v.Type(), ir.I1) {
		return value{}, typeMismatch(ast.Bool(), cond.t, "condition must be a bool")
	}
	thenArm, elseArm, err := splitConditionalArms(me.Arms)
	if err != nil {
		return value{}, err
	}

	fn, b := fc.fn, fc.b
	thenBlk := fn.NewBlock("then")
	elseBlk := fn.NewBlock("else")
	merger := &armMerger{c: c, merge: fn.NewBlock("cond_merge")}
	inits := fc.beginBranches()
	branchOn(b, cond.v, thenBlk, elseBlk)

	for _, side := range []struct {
		blk *ir.Block
		arm *ast.MatchArm
	}{{thenBlk, thenArm}, {elseBlk, elseArm}} {
		b.SetInsertPoint(side.blk)
		v := voidValue()
		if side.arm != nil {
			w := want
			if merger.t != nil {
				w = merger.t
			}
			fc.enterScope()
			v, err = c.compileExprWant(side.arm.Body, w)
			fc.exitScope()
			inits.endArm()
			if err != nil {
				return value{}, err
			}
		}
		if err := merger.add(v); err != nil {
			return value{}, err
		}
	}
	inits.finish()
	return merger.finish()
}

// branchOn branches on cond, jumping straight to the taken block when cond
// is a constant so the other one keeps no edge from here.
func branchOn(b *ir.Builder, cond ir.Value, then, els *ir.Block) {
	if k, ok := cond.(*ir.ConstInt); ok && ir.Equal(k.Type(), ir.I1) {
		if k.V != 0 {
			b.Br(then)
		} else {
			b.Br(els)
		}
		return
	}
	b.CondBr(cond, then, els)
}

// splitConditionalArms picks the arms run for true and for false. Arms with
// a wildcard or binding pattern cover whichever side is still open.
func splitConditionalArms(arms []*ast.MatchArm) (thenArm, elseArm *ast.MatchArm, err error) {
	for _, arm := range arms {
		if arm == nil || arm.Pattern == nil || arm.Body == nil {
			return nil, nil, internalError("incomplete conditional arm")
		}
		p := arm.Pattern
		switch {
		case p.Kind == ast.PatLiteral && p.Lit != nil && p.Lit.Kind == ast.ExprBool:
			if p.Lit.Lit.Bool {
				if thenArm == nil {
					thenArm = arm
				}
			} else if elseArm == nil {
				elseArm = arm
			}
		case p.Kind == ast.PatWildcard || p.Kind == ast.PatIdent:
			if thenArm == nil {
				thenArm = arm
			} else if elseArm == nil {
				elseArm = arm
			}
		default:
			return nil, nil, typeError("conditional arms must match true or false, not %s", p.Kind)
		}
	}
	return thenArm, elseArm, nil
}
