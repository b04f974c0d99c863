package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

// declareDecls is lowering's first pass: it builds every record's IR struct
// type and pre-declares every function and method signature, so that
// forward references and mutual recursion resolve regardless of source
// order. Bodies are lowered in the second pass, lowerDecls.
func (lo *Lowerer) declareDecls(decls []ast.Decl) {
	for _, d := range decls {
		if s, ok := d.(*ast.Struct); ok {
			lo.recordType(s.ResolvedID)
		}
	}

	for _, d := range decls {
		switch d := d.(type) {
		case *ast.Function:
			lo.declareFunc(d.Start, d.Name, d.Params, d.RetTy, types.Unknown)

		case *ast.Struct:
			for _, m := range d.Methods {
				mangled := d.Name + "_" + m.Name
				lo.declareFunc(m.Start, mangled, m.Params, m.RetTy, d.ResolvedID)
			}

		case *ast.VarDecl:
			lo.declareGlobalVarDecl(d)
		}
	}
}

// declareFunc builds and registers the IR function signature for name. When
// selfTy is not Unknown, an implicit leading "self" parameter (a pointer to
// the record) is added ahead of params; method symbol names follow the
// mangling convention "<Record>_<Method>".
func (lo *Lowerer) declareFunc(pos token.Pos, name string, params []*ast.Param, retTyName string, selfTy types.TypeKind) {
	retTy := lo.reg.TypeFromName(retTyName)
	if retTy == types.Unknown {
		lo.errorf(pos, "unknown return type %q for %s", retTyName, name)
	}

	var irParams []*ir.Param
	if selfTy != types.Unknown {
		irParams = append(irParams, ir.NewParam("self", lo.irType(types.MakePointer(selfTy))))
	}
	for _, p := range params {
		irParams = append(irParams, ir.NewParam(p.Name, lo.irType(p.ResolvedTy)))
	}

	fn := lo.mod.NewFunc(name, lo.irType(retTy), irParams...)
	lo.funcs.Put(name, &funcInfo{fn: fn, retTy: retTy})
}

// lowerDecls is lowering's second pass: it fills in the bodies of every
// function and method predeclared by declareDecls.
func (lo *Lowerer) lowerDecls(decls []ast.Decl) {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.Function:
			lo.lowerFuncBody(d.Name, types.Unknown, d.Params, d.Body)

		case *ast.Struct:
			for _, m := range d.Methods {
				mangled := d.Name + "_" + m.Name
				lo.lowerFuncBody(mangled, d.ResolvedID, m.Params, m.Body)
			}
		}
	}
}

// lowerFuncBody lowers the body of a predeclared function or method into an
// entry block, spilling every parameter (including the implicit "self") to
// its own alloca so it can be re-loaded or re-assigned uniformly. A
// default return is appended when the body falls through without a
// terminator.
func (lo *Lowerer) lowerFuncBody(name string, selfTy types.TypeKind, params []*ast.Param, body *ast.Block) {
	fi, ok := lo.funcs.Get(name)
	if !ok {
		return
	}

	lo.pushScope()
	defer lo.popScope()

	prevFunc, prevRetTy := lo.curFunc, lo.curRetTy
	lo.curFunc, lo.curRetTy = fi.fn, fi.retTy
	defer func() { lo.curFunc, lo.curRetTy = prevFunc, prevRetTy }()

	entry := fi.fn.NewBlock("entry")

	irParams := fi.fn.Params
	idx := 0
	if selfTy != types.Unknown {
		// the implicit self is a pointer to the record, so its slot holds
		// that pointer, not the record itself
		lo.spillParam(entry, irParams[idx], "self", types.MakePointer(selfTy))
		idx++
	}
	for _, p := range params {
		lo.spillParam(entry, irParams[idx], p.Name, p.ResolvedTy)
		idx++
	}

	end := entry
	if body != nil {
		end = lo.lowerBlock(entry, body)
	}
	if end.Term == nil {
		if fi.retTy == types.Void {
			end.NewRet(nil)
		} else {
			end.NewRet(constant.NewZeroInitializer(lo.irType(fi.retTy)))
		}
	}
}

func (lo *Lowerer) spillParam(b *ir.Block, irParam *ir.Param, name string, ty types.TypeKind) {
	addr := b.NewAlloca(lo.irType(ty))
	b.NewStore(irParam, addr)
	lo.defineLocal(name, &slot{ptr: addr, ty: ty, mut: ast.Mutable})
}

// declareGlobalVarDecl lowers a top-level VarDecl as a global: the language
// has no module-initializer concept, so the initializer must itself already
// be a compile-time constant, e.g. "def const PI: i32 = 3;".
func (lo *Lowerer) declareGlobalVarDecl(vd *ast.VarDecl) {
	declTy := vd.ResolvedTy
	if declTy == types.Unknown {
		lo.errorf(vd.Start, "unknown type %q for %s", vd.Ty, vd.Name)
	}

	var init constant.Constant = constant.NewZeroInitializer(lo.irType(declTy))
	if vd.Init != nil {
		lit, ok := vd.Init.(*ast.Literal)
		if !ok {
			lo.errorf(vd.Start, "global %s must be initialized with a literal constant", vd.Name)
		}
		v, _ := lo.lowerLiteral(lit)
		c, ok := v.(constant.Constant)
		if !ok {
			lo.errorf(vd.Start, "global %s must be initialized with a literal constant", vd.Name)
		}
		init = c
	}

	g := lo.mod.NewGlobalDef(vd.Name, init)
	g.Immutable = vd.Mutability != ast.Mutable
	lo.defineLocal(vd.Name, &slot{ptr: g, ty: declTy, mut: vd.Mutability})
}
