// Package resolver implements a single post-order walk over a parsed
// *ast.Program that fills every ResolvedTy slot it can determine without
// scope-aware symbol lookup, and registers Struct/Enum declarations with
// the type registry.
//
// A single walker struct carries a *token.File and a lexer.ErrorList,
// reports errors through file.Position, and shares the parser's
// "first error aborts" panic/recover skeleton. Identifier types that need
// scope-aware lookup are deliberately left unresolved here; the lowerer's
// symbol table resolves those during IR generation.
package resolver

import (
	"errors"
	"fmt"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/lexer"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

var errPanicMode = errors.New("panic mode")

// ResolveProgram walks prog in place, assigning resolved_ty fields and
// registering every Struct/Enum declaration with reg. The returned error, if
// non-nil, is guaranteed to be a lexer.ErrorList with exactly one entry: the
// first static error encountered.
func ResolveProgram(fset *token.FileSet, filename string, prog *ast.Program, reg *types.Registry) (err error) {
	r := &resolver{reg: reg}
	// record/enum kinds registered below must render their names in any
	// %#v-style annotated dump of the resolved tree.
	types.SetAsDefault(reg)
	r.file = fset.File(prog.Start)
	if r.file == nil {
		// the program may have been parsed against a different fset entry; add
		// a synthetic one so positions still resolve to something.
		r.file = fset.AddFile(filename, -1, int(prog.EndPos-prog.Start)+1)
	}

	defer func() {
		if rec := recover(); rec != nil {
			if rec != errPanicMode {
				panic(rec)
			}
			err = r.errors.Err()
		}
	}()

	for _, d := range prog.Decls {
		r.decl(d)
	}
	return r.errors.Err()
}

type resolver struct {
	file   *token.File
	errors lexer.ErrorList
	reg    *types.Registry
}

func (r *resolver) errorf(pos token.Pos, format string, args ...any) {
	r.errors.Add(r.file.Position(pos), fmt.Sprintf(format, args...))
	panic(errPanicMode)
}

func (r *resolver) decl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.Function:
		r.function(d.Params, d.Body)

	case *ast.Struct:
		fields := make([]types.RecordField, len(d.Fields))
		for i, f := range d.Fields {
			f.ResolvedTy = r.reg.TypeFromName(f.Ty)
			if f.ResolvedTy == types.Unknown {
				r.errorf(f.Start, "unknown type %q for field %s", f.Ty, f.Name)
			}
			fields[i] = types.RecordField{Name: f.Name, Kind: f.ResolvedTy}
		}
		for _, m := range d.Methods {
			r.function(m.Params, m.Body)
		}
		id, err := r.reg.RegisterStruct(d.Name, fields)
		if err != nil {
			r.errorf(d.Start, "%s", err)
		}
		d.ResolvedID = id

	case *ast.Enum:
		names := make([]string, len(d.Variants))
		for i, v := range d.Variants {
			names[i] = v.Name
		}
		id, err := r.reg.RegisterEnum(d.Name, names)
		if err != nil {
			r.errorf(d.Start, "%s", err)
		}
		d.ResolvedID = id

	case *ast.VarDecl:
		r.varDecl(d)

	default:
		panic(fmt.Sprintf("unexpected decl %T", d))
	}
}

func (r *resolver) function(params []*ast.Param, body *ast.Block) {
	for _, p := range params {
		p.ResolvedTy = r.reg.TypeFromName(p.Ty)
		if p.ResolvedTy == types.Unknown {
			r.errorf(p.Start, "unknown type %q for parameter %s", p.Ty, p.Name)
		}
	}
	if body != nil {
		r.block(body)
	}
}

func (r *resolver) varDecl(vd *ast.VarDecl) {
	if vd.Init != nil {
		r.expr(vd.Init)
	}
	vd.ResolvedTy = r.reg.TypeFromName(vd.Ty)
	if vd.ResolvedTy == types.Unknown {
		r.errorf(vd.Start, "unknown type %q for %s", vd.Ty, vd.Name)
	}
}

func (r *resolver) block(b *ast.Block) {
	for _, s := range b.Stmts {
		r.stmt(s)
	}
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		r.varDecl(s)

	case *ast.Assign:
		r.expr(s.Value)

	case *ast.PtrAssign:
		r.expr(s.DerefTarget)
		r.expr(s.Value)

	case *ast.Return:
		if s.Value != nil {
			r.expr(s.Value)
		}

	case *ast.If:
		r.expr(s.Cond)
		r.block(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}

	case *ast.Unless:
		r.expr(s.Cond)
		r.block(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}

	case *ast.Block:
		r.block(s)

	case *ast.For:
		if s.Init != nil {
			r.stmt(s.Init)
		}
		if s.Cond != nil {
			r.expr(s.Cond)
		}
		if s.Update != nil {
			r.stmt(s.Update)
		}
		r.block(s.Body)

	case *ast.While:
		r.expr(s.Cond)
		r.block(s.Body)

	case *ast.Switch:
		r.expr(s.Expr)
		for _, c := range s.Cases {
			r.expr(c.Value)
			r.block(c.Body)
		}
		if s.Default != nil {
			r.block(s.Default)
		}

	case *ast.Match:
		r.expr(s.Expr)
		for _, c := range s.Cases {
			if !c.Wildcard {
				r.expr(c.Pattern)
			}
			r.block(c.Body)
		}

	case *ast.Break, *ast.Continue:
		// nothing to resolve

	case *ast.ExprStmt:
		r.expr(s.X)

	default:
		panic(fmt.Sprintf("unexpected stmt %T", s))
	}
}

// expr resolves the resolved_ty of e where determinable from this pass
// alone, recursing into subexpressions first (post-order). Identifier nodes
// are left untouched: their type is only known once the lowerer's
// scope-aware symbol table is available.
func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		e.ResolvedTy = literalType(e.Kind)

	case *ast.Identifier:
		// deliberately unresolved in this pass; see package doc.

	case *ast.BinaryOp:
		r.expr(e.Left)
		r.expr(e.Right)
		leftTy, rightTy := resolvedTypeOf(e.Left), resolvedTypeOf(e.Right)
		if e.Op.IsComparison() {
			e.ResolvedTy = types.Bool
		} else {
			e.ResolvedTy = types.BinaryResultType(leftTy, rightTy, false)
		}

	case *ast.UnaryOp:
		r.expr(e.Operand)
		operandTy := resolvedTypeOf(e.Operand)
		switch e.Op {
		case ast.AddressOf:
			e.ResolvedTy = types.MakePointer(operandTy)
		case ast.Dereference:
			if operandTy.IsPointer() {
				e.ResolvedTy = types.PointedTo(operandTy)
			} else {
				e.ResolvedTy = types.Unknown
			}
		}

	case *ast.Call:
		for _, a := range e.Args {
			r.expr(a)
		}
		// Call carries no resolved_ty in the data model: builtin and function
		// return types are only known once the lowerer's function table is
		// consulted.

	case *ast.FieldAccess:
		r.expr(e.Object)
		objTy := resolvedTypeOf(e.Object)
		if objTy.IsRecord() {
			if ft, ok := r.reg.FieldType(objTy, e.FieldName); ok {
				e.ResolvedTy = ft
				return
			}
		}
		e.ResolvedTy = types.Unknown

	case *ast.MethodCall:
		r.expr(e.Object)
		for _, a := range e.Args {
			r.expr(a)
		}
		// The registry tracks record fields, not method signatures, so a
		// method's return type is resolved by the lowerer's function table,
		// same as a plain Call.
		e.ResolvedTy = types.Unknown

	case *ast.StructLiteral:
		for _, fp := range e.FieldPairs {
			r.expr(fp.Value)
		}
		ty := r.reg.TypeFromName(e.TypeName)
		if !ty.IsRecord() {
			r.errorf(e.Start, "unknown record type %q", e.TypeName)
		}
		e.ResolvedTy = ty

	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
}

func literalType(k ast.LiteralKind) types.TypeKind {
	switch k {
	case ast.IntLit:
		return types.I32
	case ast.FloatLit:
		return types.F32
	case ast.StringLit:
		return types.String
	case ast.BoolLit:
		return types.Bool
	case ast.NullLit:
		return types.PtrVoid
	default:
		return types.Unknown
	}
}

// resolvedTypeOf extracts the resolved_ty already computed for e. It never
// recurses or mutates; it only reads what an earlier post-order visit
// already set.
func resolvedTypeOf(e ast.Expr) types.TypeKind {
	switch e := e.(type) {
	case *ast.Literal:
		return e.ResolvedTy
	case *ast.Identifier:
		return e.ResolvedTy
	case *ast.BinaryOp:
		return e.ResolvedTy
	case *ast.UnaryOp:
		return e.ResolvedTy
	case *ast.FieldAccess:
		return e.ResolvedTy
	case *ast.MethodCall:
		return e.ResolvedTy
	case *ast.StructLiteral:
		return e.ResolvedTy
	default:
		return types.Unknown
	}
}
