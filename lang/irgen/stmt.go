package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/types"
)

// lowerBlock lowers each statement of blk in order into b, stopping early if
// a statement terminates the block (return, break, continue), matching the
// "statements lowered strictly in source order" ordering guarantee.
func (lo *Lowerer) lowerBlock(b *ir.Block, blk *ast.Block) *ir.Block {
	for _, s := range blk.Stmts {
		if b.Term != nil {
			break
		}
		b = lo.lowerStmt(b, s)
	}
	return b
}

func (lo *Lowerer) lowerStmt(b *ir.Block, s ast.Stmt) *ir.Block {
	switch s := s.(type) {
	case *ast.VarDecl:
		return lo.lowerLocalVarDecl(b, s)
	case *ast.Assign:
		return lo.lowerAssign(b, s)
	case *ast.PtrAssign:
		return lo.lowerPtrAssign(b, s)
	case *ast.Return:
		return lo.lowerReturn(b, s)
	case *ast.If:
		return lo.lowerIf(b, s)
	case *ast.Unless:
		return lo.lowerUnless(b, s)
	case *ast.Block:
		lo.pushScope()
		defer lo.popScope()
		return lo.lowerBlock(b, s)
	case *ast.For:
		return lo.lowerFor(b, s)
	case *ast.While:
		return lo.lowerWhile(b, s)
	case *ast.Switch:
		return lo.lowerSwitch(b, s)
	case *ast.Match:
		return lo.lowerMatch(b, s)
	case *ast.Break:
		return lo.lowerBreak(b, s)
	case *ast.Continue:
		return lo.lowerContinue(b, s)
	case *ast.ExprStmt:
		_, _, nb := lo.lowerExpr(b, s.X)
		return nb
	default:
		lo.errorf(nodeStart(s), "unsupported statement %T", s)
		panic(errPanicMode)
	}
}

func (lo *Lowerer) lowerLocalVarDecl(b *ir.Block, vd *ast.VarDecl) *ir.Block {
	declTy := vd.ResolvedTy
	addr := b.NewAlloca(lo.irType(declTy))

	if vd.Init != nil {
		if sl, ok := vd.Init.(*ast.StructLiteral); ok && declTy.IsRecord() {
			if sl.ResolvedTy != declTy {
				lo.errorf(vd.Start, "cannot initialize %s %s with a value of type %s", lo.reg.TypeName(declTy), vd.Name, lo.reg.TypeName(sl.ResolvedTy))
			}
			lo.populateStructLiteral(b, addr, declTy, sl)
		} else {
			v, vty, nb := lo.lowerExpr(b, vd.Init)
			b = nb
			if vty != declTy {
				if vty.Info().Numeric && declTy.Info().Numeric {
					v = lo.convertNumeric(b, v, vty, declTy, vd.Start)
				} else {
					lo.errorf(vd.Start, "cannot initialize %s %s with a value of type %s", lo.reg.TypeName(declTy), vd.Name, lo.reg.TypeName(vty))
				}
			}
			b.NewStore(v, addr)
		}
	}

	lo.defineLocal(vd.Name, &slot{ptr: addr, ty: declTy, mut: vd.Mutability})
	return b
}

func (lo *Lowerer) lowerAssign(b *ir.Block, a *ast.Assign) *ir.Block {
	s, ok := lo.lookupLocal(a.TargetName)
	if !ok {
		lo.errorf(a.Start, "unknown identifier %q", a.TargetName)
	}
	if s.mut == ast.Immutable || s.mut == ast.ConstMut {
		lo.errorf(a.Start, "cannot assign to immutable variable %q", a.TargetName)
	}

	// a struct literal constructs directly into the destination slot
	if sl, ok := a.Value.(*ast.StructLiteral); ok && s.ty.IsRecord() {
		if sl.ResolvedTy != s.ty {
			lo.errorf(a.Start, "cannot assign a value of type %s to %s", lo.reg.TypeName(sl.ResolvedTy), lo.reg.TypeName(s.ty))
		}
		lo.populateStructLiteral(b, s.ptr, s.ty, sl)
		return b
	}

	v, vty, b := lo.lowerExpr(b, a.Value)
	if vty != s.ty {
		if vty.Info().Numeric && s.ty.Info().Numeric {
			v = lo.convertNumeric(b, v, vty, s.ty, a.Start)
		} else {
			lo.errorf(a.Start, "cannot assign a value of type %s to %s", lo.reg.TypeName(vty), lo.reg.TypeName(s.ty))
		}
	}
	b.NewStore(v, s.ptr)
	return b
}

func (lo *Lowerer) lowerPtrAssign(b *ir.Block, pa *ast.PtrAssign) *ir.Block {
	ptrVal, ptrTy, b := lo.lowerExpr(b, pa.DerefTarget)
	if !ptrTy.IsPointer() {
		lo.errorf(pa.Start, "cannot dereference non-pointer type %s", lo.reg.TypeName(ptrTy))
	}
	pointee := types.PointedTo(ptrTy)

	v, vty, b := lo.lowerExpr(b, pa.Value)
	if vty != pointee {
		if vty.Info().Numeric && pointee.Info().Numeric {
			v = lo.convertNumeric(b, v, vty, pointee, pa.Start)
		} else {
			lo.errorf(pa.Start, "cannot store a value of type %s through a %s", lo.reg.TypeName(vty), lo.reg.TypeName(ptrTy))
		}
	}
	b.NewStore(v, ptrVal)
	return b
}

func (lo *Lowerer) lowerReturn(b *ir.Block, r *ast.Return) *ir.Block {
	if r.Value == nil {
		if lo.curRetTy == types.Void {
			b.NewRet(nil)
		} else {
			b.NewRet(constant.NewZeroInitializer(lo.irType(lo.curRetTy)))
		}
		return b
	}

	v, vty, b := lo.lowerValueExpr(b, r.Value)
	if vty != lo.curRetTy && vty.Info().Numeric && lo.curRetTy.Info().Numeric {
		v = lo.convertNumeric(b, v, vty, lo.curRetTy, r.Start)
	}
	if lo.curRetTy == types.Void {
		b.NewRet(nil)
	} else {
		b.NewRet(v)
	}
	return b
}

// removeBlock drops blk from the current function's block list, used when
// an If/Unless merge block (or a dispatch's exit block) is provably
// unreachable: every path into it already terminated.
func (lo *Lowerer) removeBlock(blk *ir.Block) {
	fn := lo.curFunc
	out := fn.Blocks[:0]
	for _, bl := range fn.Blocks {
		if bl != blk {
			out = append(out, bl)
		}
	}
	fn.Blocks = out
}

func (lo *Lowerer) lowerIf(b *ir.Block, n *ast.If) *ir.Block {
	return lo.lowerBranch(b, n.Cond, n.Then, n.Else, false)
}

func (lo *Lowerer) lowerUnless(b *ir.Block, n *ast.Unless) *ir.Block {
	return lo.lowerBranch(b, n.Cond, n.Then, n.Else, true)
}

// lowerBranch implements If and Unless identically modulo inverting which
// branch is "then".
func (lo *Lowerer) lowerBranch(b *ir.Block, condExpr ast.Expr, then *ast.Block, els ast.Stmt, invert bool) *ir.Block {
	cond, condTy, b := lo.lowerExpr(b, condExpr)
	if condTy != types.Bool {
		lo.errorf(nodeStart(condExpr), "condition must be bool, got %s", lo.reg.TypeName(condTy))
	}

	thenBlk := lo.curFunc.NewBlock("")
	mergeBlk := lo.curFunc.NewBlock("")

	var elseBlk *ir.Block
	if els != nil {
		elseBlk = lo.curFunc.NewBlock("")
	}

	target := mergeBlk
	if elseBlk != nil {
		target = elseBlk
	}
	if invert {
		b.NewCondBr(cond, target, thenBlk)
	} else {
		b.NewCondBr(cond, thenBlk, target)
	}

	lo.pushScope()
	thenEnd := lo.lowerBlock(thenBlk, then)
	lo.popScope()
	thenReaches := thenEnd.Term == nil
	terminate(thenEnd, mergeBlk)

	predCount := 0
	if thenReaches {
		predCount++
	}
	lastArm := thenEnd
	if elseBlk == nil {
		predCount++ // the direct cond->merge edge when there is no else arm
	} else {
		elseEnd := lo.lowerStmt(elseBlk, els)
		elseReaches := elseEnd.Term == nil
		terminate(elseEnd, mergeBlk)
		if elseReaches {
			predCount++
		}
		lastArm = elseEnd
	}

	if predCount == 0 {
		// every incoming edge is dead: delete the merge block and leave the
		// builder on the last arm, whose terminator stops any further
		// statement lowering in this block
		lo.removeBlock(mergeBlk)
		return lastArm
	}
	return mergeBlk
}

func (lo *Lowerer) lowerWhile(b *ir.Block, n *ast.While) *ir.Block {
	condBlk := lo.curFunc.NewBlock("")
	bodyBlk := lo.curFunc.NewBlock("")
	exitBlk := lo.curFunc.NewBlock("")

	terminate(b, condBlk)

	cond, condTy, condEnd := lo.lowerExpr(condBlk, n.Cond)
	if condTy != types.Bool {
		lo.errorf(n.Start, "while condition must be bool, got %s", lo.reg.TypeName(condTy))
	}
	condEnd.NewCondBr(cond, bodyBlk, exitBlk)

	lo.pushLoop(n.Start, exitBlk, condBlk)
	lo.pushScope()
	bodyEnd := lo.lowerBlock(bodyBlk, n.Body)
	lo.popScope()
	lo.popLoop()
	terminate(bodyEnd, condBlk)

	return exitBlk
}

func (lo *Lowerer) lowerFor(b *ir.Block, n *ast.For) *ir.Block {
	lo.pushScope()
	defer lo.popScope()

	if n.Init != nil {
		b = lo.lowerStmt(b, n.Init)
	}

	condBlk := lo.curFunc.NewBlock("")
	bodyBlk := lo.curFunc.NewBlock("")
	updateBlk := lo.curFunc.NewBlock("")
	exitBlk := lo.curFunc.NewBlock("")

	terminate(b, condBlk)

	if n.Cond != nil {
		cond, condTy, condEnd := lo.lowerExpr(condBlk, n.Cond)
		if condTy != types.Bool {
			lo.errorf(n.Start, "for condition must be bool, got %s", lo.reg.TypeName(condTy))
		}
		condEnd.NewCondBr(cond, bodyBlk, exitBlk)
	} else {
		condBlk.NewBr(bodyBlk)
	}

	lo.pushLoop(n.Start, exitBlk, updateBlk)
	bodyEnd := lo.lowerBlock(bodyBlk, n.Body)
	lp := lo.popLoop()
	terminate(bodyEnd, updateBlk)

	if n.Update != nil {
		updateEnd := lo.lowerStmt(updateBlk, n.Update)
		terminate(updateEnd, condBlk)
	} else {
		updateBlk.NewBr(condBlk)
	}

	if n.Cond == nil && lp.breaks == 0 {
		// an infinite loop that never breaks has no edge into exit: delete
		// it and leave the builder on the (terminated) body end so nothing
		// after the loop is lowered
		lo.removeBlock(exitBlk)
		return bodyEnd
	}
	return exitBlk
}

func (lo *Lowerer) lowerBreak(b *ir.Block, s *ast.Break) *ir.Block {
	lp, ok := lo.currentLoop()
	if !ok {
		lo.errorf(s.Start, "break outside of a loop")
	}
	lp.breaks++
	b.NewBr(lp.breakTarget)
	return b
}

func (lo *Lowerer) lowerContinue(b *ir.Block, s *ast.Continue) *ir.Block {
	lp, ok := lo.currentLoop()
	if !ok {
		lo.errorf(s.Start, "continue outside of a loop")
	}
	b.NewBr(lp.continueTarget)
	return b
}

func (lo *Lowerer) lowerSwitch(b *ir.Block, n *ast.Switch) *ir.Block {
	exprVal, exprTy, b := lo.lowerExpr(b, n.Expr)

	values := make([]ast.Expr, len(n.Cases))
	bodies := make([]*ast.Block, len(n.Cases))
	for i, c := range n.Cases {
		values[i] = c.Value
		bodies[i] = c.Body
	}
	return lo.lowerDispatch(b, exprVal, exprTy, values, bodies, n.Default)
}

func (lo *Lowerer) lowerMatch(b *ir.Block, n *ast.Match) *ir.Block {
	exprVal, exprTy, b := lo.lowerExpr(b, n.Expr)

	var values []ast.Expr
	var bodies []*ast.Block
	var defaultBody *ast.Block
	for _, c := range n.Cases {
		if c.Wildcard {
			defaultBody = c.Body
			continue
		}
		values = append(values, c.Pattern)
		bodies = append(bodies, c.Body)
	}
	return lo.lowerDispatch(b, exprVal, exprTy, values, bodies, defaultBody)
}

// lowerDispatch implements the shared multi-way dispatch state machine
// behind both Switch and Match: Match lowers identically to Switch with the
// single addition that a pattern `_` becomes the default target. Each
// candidate value is tested in source order via a chain of equality tests
// rather than a single jump table, so non-constant case expressions lower
// correctly too.
func (lo *Lowerer) lowerDispatch(b *ir.Block, exprVal value.Value, exprTy types.TypeKind, values []ast.Expr, bodies []*ast.Block, defaultBody *ast.Block) *ir.Block {
	exitBlk := lo.curFunc.NewBlock("")

	n := len(values)
	caseBlks := make([]*ir.Block, n)
	for i := range caseBlks {
		caseBlks[i] = lo.curFunc.NewBlock("")
	}

	defaultBlk := exitBlk
	if defaultBody != nil {
		defaultBlk = lo.curFunc.NewBlock("")
	}

	testBlk := b
	for i, v := range values {
		cv, cvTy, nb := lo.lowerExpr(testBlk, v)
		testBlk = nb
		if !types.Comparable(exprTy, cvTy) {
			lo.errorf(nodeStart(v), "case value of type %s is not comparable to %s", lo.reg.TypeName(cvTy), lo.reg.TypeName(exprTy))
		}

		var eq value.Value
		if isFloat(exprTy) {
			eq = testBlk.NewFCmp(enum.FPredOEQ, exprVal, cv)
		} else {
			eq = testBlk.NewICmp(enum.IPredEQ, exprVal, cv)
		}

		if i == n-1 {
			testBlk.NewCondBr(eq, caseBlks[i], defaultBlk)
		} else {
			nextTest := lo.curFunc.NewBlock("")
			testBlk.NewCondBr(eq, caseBlks[i], nextTest)
			testBlk = nextTest
		}
	}
	if n == 0 {
		terminate(b, defaultBlk)
	}

	reaches := 0
	var lastArm *ir.Block
	for i, body := range bodies {
		lo.pushScope()
		end := lo.lowerBlock(caseBlks[i], body)
		lo.popScope()
		if end.Term == nil {
			reaches++
		}
		terminate(end, exitBlk)
		lastArm = end
	}
	if defaultBody != nil {
		lo.pushScope()
		end := lo.lowerBlock(defaultBlk, defaultBody)
		lo.popScope()
		if end.Term == nil {
			reaches++
		}
		terminate(end, exitBlk)
		lastArm = end
	} else {
		reaches++ // the dispatch chain's own fallthrough edge lands on exit
	}

	if reaches == 0 {
		// every arm terminated on its own: the exit block has no
		// predecessors, so delete it and reposition on the last arm
		lo.removeBlock(exitBlk)
		return lastArm
	}
	return exitBlk
}
