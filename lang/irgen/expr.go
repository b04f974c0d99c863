package irgen

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

// lowerExpr lowers e against the current block b, returning the produced
// value, its source-level type, and the (possibly unchanged) block lowering
// should continue from. This language has no short-circuiting operators,
// so expression lowering never itself introduces a new block; the
// *ir.Block return exists for uniformity with statement lowering and so
// builtin calls that allocate scratch buffers can thread their block
// through.
func (lo *Lowerer) lowerExpr(b *ir.Block, e ast.Expr) (value.Value, types.TypeKind, *ir.Block) {
	switch e := e.(type) {
	case *ast.Literal:
		v, ty := lo.lowerLiteral(e)
		return v, ty, b

	case *ast.Identifier:
		s, ok := lo.lookupLocal(e.Name)
		if !ok {
			lo.errorf(e.Start, "unknown identifier %q", e.Name)
		}
		return b.NewLoad(lo.irType(s.ty), s.ptr), s.ty, b

	case *ast.BinaryOp:
		return lo.lowerBinaryOp(b, e)

	case *ast.UnaryOp:
		return lo.lowerUnaryOp(b, e)

	case *ast.Call:
		return lo.lowerCall(b, e)

	case *ast.FieldAccess:
		return lo.lowerFieldAccess(b, e)

	case *ast.MethodCall:
		return lo.lowerMethodCall(b, e)

	case *ast.StructLiteral:
		addr, ty := lo.lowerStructLiteral(b, e)
		return addr, ty, b

	default:
		lo.errorf(nodeStart(e), "unsupported expression %T", e)
		panic(errPanicMode)
	}
}

func nodeStart(n ast.Node) token.Pos {
	start, _ := n.Span()
	return start
}

func (lo *Lowerer) lowerLiteral(e *ast.Literal) (value.Value, types.TypeKind) {
	switch e.Kind {
	case ast.IntLit:
		n, _ := strconv.ParseInt(e.Text, 10, 64)
		return constant.NewInt(irtypes.I32, n), types.I32

	case ast.FloatLit:
		f, _ := strconv.ParseFloat(e.Text, 64)
		return constant.NewFloat(irtypes.Float, f), types.F32

	case ast.StringLit:
		return lo.globalCString(e.Text), types.String

	case ast.BoolLit:
		if e.Text == "true" {
			return constant.True, types.Bool
		}
		return constant.False, types.Bool

	case ast.NullLit:
		return constant.NewNull(i8ptr), types.PtrVoid

	default:
		lo.errorf(e.Start, "unsupported literal kind")
		panic(errPanicMode)
	}
}

// lowerValueExpr is lowerExpr for positions that need a first-class value:
// a struct literal's "value" is the address of its backing slot, so when
// one appears as a call argument or a return operand, the record is loaded
// out of that slot here.
func (lo *Lowerer) lowerValueExpr(b *ir.Block, e ast.Expr) (value.Value, types.TypeKind, *ir.Block) {
	v, ty, b := lo.lowerExpr(b, e)
	if _, ok := e.(*ast.StructLiteral); ok && ty.IsRecord() {
		v = b.NewLoad(lo.recordType(ty), v)
	}
	return v, ty, b
}

// lowerAddressable lowers e to the address of its storage rather than its
// loaded value, for the limited set of expression shapes the lowerer needs
// an address for: identifiers (their slot), dereferences (the pointer
// value itself is the address of its pointee) and field accesses (GEP off
// the object's own address). Returns ok=false for anything else.
func (lo *Lowerer) lowerAddressable(b *ir.Block, e ast.Expr) (addr value.Value, ty types.TypeKind, retB *ir.Block, ok bool) {
	switch e := e.(type) {
	case *ast.Identifier:
		s, found := lo.lookupLocal(e.Name)
		if !found {
			lo.errorf(e.Start, "unknown identifier %q", e.Name)
		}
		return s.ptr, s.ty, b, true

	case *ast.UnaryOp:
		if e.Op != ast.Dereference {
			return nil, types.Unknown, b, false
		}
		ptrVal, ptrTy, nb := lo.lowerExpr(b, e.Operand)
		if !ptrTy.IsPointer() {
			lo.errorf(e.Start, "cannot dereference non-pointer type %s", lo.reg.TypeName(ptrTy))
		}
		return ptrVal, types.PointedTo(ptrTy), nb, true

	case *ast.FieldAccess:
		objAddr, objTy, nb, found := lo.lowerAddressable(b, e.Object)
		if !found {
			return nil, types.Unknown, b, false
		}
		// accessing a field through a pointer to a record (the implicit
		// "self" parameter, or any *Record variable) reads the pointer out
		// of its slot first
		if objTy.IsPointer() && types.PointedTo(objTy).IsRecord() {
			objAddr = nb.NewLoad(lo.irType(objTy), objAddr)
			objTy = types.PointedTo(objTy)
		}
		if !objTy.IsRecord() {
			lo.errorf(e.Start, "field access on non-record type %s", lo.reg.TypeName(objTy))
		}
		ord, fieldOk := lo.reg.FieldOrdinal(objTy, e.FieldName)
		fieldTy, _ := lo.reg.FieldType(objTy, e.FieldName)
		if !fieldOk {
			lo.errorf(e.Start, "unknown field %q on %s", e.FieldName, lo.reg.TypeName(objTy))
		}
		gep := nb.NewGetElementPtr(lo.recordType(objTy), objAddr,
			constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(ord)))
		return gep, fieldTy, nb, true

	default:
		return nil, types.Unknown, b, false
	}
}

func (lo *Lowerer) lowerBinaryOp(b *ir.Block, e *ast.BinaryOp) (value.Value, types.TypeKind, *ir.Block) {
	lv, lty, b := lo.lowerExpr(b, e.Left)
	rv, rty, b := lo.lowerExpr(b, e.Right)

	if e.Op.IsComparison() {
		return lo.lowerComparison(b, e, lv, lty, rv, rty)
	}
	return lo.lowerArith(b, e, lv, lty, rv, rty)
}

func (lo *Lowerer) lowerComparison(b *ir.Block, e *ast.BinaryOp, lv value.Value, lty types.TypeKind, rv value.Value, rty types.TypeKind) (value.Value, types.TypeKind, *ir.Block) {
	equalityOnly := e.Op == token.EQL || e.Op == token.NEQ
	ok := types.Comparable(lty, rty)
	if !equalityOnly {
		ok = lty == rty && lty.Info().Ordered
	}
	if !ok {
		lo.errorf(e.Start, "cannot compare %s and %s", lo.reg.TypeName(lty), lo.reg.TypeName(rty))
	}

	if isFloat(lty) {
		return b.NewFCmp(fpred(e.Op), lv, rv), types.Bool, b
	}
	return b.NewICmp(ipred(e.Op, isSigned(lty)), lv, rv), types.Bool, b
}

func ipred(op token.Token, signed bool) enum.IPred {
	switch op {
	case token.EQL:
		return enum.IPredEQ
	case token.NEQ:
		return enum.IPredNE
	case token.LT:
		if signed {
			return enum.IPredSLT
		}
		return enum.IPredULT
	case token.GT:
		if signed {
			return enum.IPredSGT
		}
		return enum.IPredUGT
	case token.LE:
		if signed {
			return enum.IPredSLE
		}
		return enum.IPredULE
	default: // token.GE
		if signed {
			return enum.IPredSGE
		}
		return enum.IPredUGE
	}
}

func fpred(op token.Token) enum.FPred {
	switch op {
	case token.EQL:
		return enum.FPredOEQ
	case token.NEQ:
		return enum.FPredONE
	case token.LT:
		return enum.FPredOLT
	case token.GT:
		return enum.FPredOGT
	case token.LE:
		return enum.FPredOLE
	default: // token.GE
		return enum.FPredOGE
	}
}

func (lo *Lowerer) lowerArith(b *ir.Block, e *ast.BinaryOp, lv value.Value, lty types.TypeKind, rv value.Value, rty types.TypeKind) (value.Value, types.TypeKind, *ir.Block) {
	if !types.Compatible(lty, rty) {
		lo.errorf(e.Start, "incompatible operand types %s and %s", lo.reg.TypeName(lty), lo.reg.TypeName(rty))
	}

	if isFloat(lty) {
		switch e.Op {
		case token.PLUS:
			return b.NewFAdd(lv, rv), lty, b
		case token.MINUS:
			return b.NewFSub(lv, rv), lty, b
		case token.STAR:
			return b.NewFMul(lv, rv), lty, b
		default: // token.SLASH
			return b.NewFDiv(lv, rv), lty, b
		}
	}

	signed := isSigned(lty)
	switch e.Op {
	case token.PLUS:
		return b.NewAdd(lv, rv), lty, b
	case token.MINUS:
		return b.NewSub(lv, rv), lty, b
	case token.STAR:
		return b.NewMul(lv, rv), lty, b
	default: // token.SLASH
		if signed {
			return b.NewSDiv(lv, rv), lty, b
		}
		return b.NewUDiv(lv, rv), lty, b
	}
}

func (lo *Lowerer) lowerUnaryOp(b *ir.Block, e *ast.UnaryOp) (value.Value, types.TypeKind, *ir.Block) {
	switch e.Op {
	case ast.AddressOf:
		ident, ok := e.Operand.(*ast.Identifier)
		if !ok {
			lo.errorf(e.Start, "'&' can only be applied to an identifier")
		}
		s, found := lo.lookupLocal(ident.Name)
		if !found {
			lo.errorf(e.Start, "unknown identifier %q", ident.Name)
		}
		pty := types.MakePointer(s.ty)
		if pty == types.Unknown {
			lo.errorf(e.Start, "cannot take the address of a value of type %s", lo.reg.TypeName(s.ty))
		}
		return s.ptr, pty, b

	default: // ast.Dereference
		ptrVal, ptrTy, nb := lo.lowerExpr(b, e.Operand)
		if !ptrTy.IsPointer() {
			lo.errorf(e.Start, "cannot dereference non-pointer type %s", lo.reg.TypeName(ptrTy))
		}
		pointee := types.PointedTo(ptrTy)
		return nb.NewLoad(lo.irType(pointee), ptrVal), pointee, nb
	}
}

func (lo *Lowerer) lowerCall(b *ir.Block, e *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	if isBuiltinCall(e.CalleeName) {
		return lo.lowerBuiltinCall(b, e)
	}

	fi, ok := lo.funcs.Get(e.CalleeName)
	if !ok {
		lo.errorf(e.Start, "unknown function %q", e.CalleeName)
	}

	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, _, nb := lo.lowerValueExpr(b, a)
		b = nb
		args[i] = v
	}
	return b.NewCall(fi.fn, args...), fi.retTy, b
}

func (lo *Lowerer) lowerFieldAccess(b *ir.Block, e *ast.FieldAccess) (value.Value, types.TypeKind, *ir.Block) {
	// "Color.Red" is a variant reference, not a field access, when the
	// object is a bare name that shadows no variable and names an enum.
	if ident, isIdent := e.Object.(*ast.Identifier); isIdent {
		if _, shadowed := lo.lookupLocal(ident.Name); !shadowed {
			if ek := lo.reg.TypeFromName(ident.Name); ek.IsEnum() {
				ord, ok := lo.reg.EnumOrdinal(ek, e.FieldName)
				if !ok {
					lo.errorf(e.Start, "unknown variant %q of enum %s", e.FieldName, ident.Name)
				}
				return constant.NewInt(irtypes.I32, int64(ord)), ek, b
			}
		}
	}

	addr, fieldTy, b, ok := lo.lowerAddressable(b, e)
	if !ok {
		lo.errorf(e.Start, "unsupported operand shape for field access")
	}
	return b.NewLoad(lo.irType(fieldTy), addr), fieldTy, b
}

func (lo *Lowerer) lowerMethodCall(b *ir.Block, e *ast.MethodCall) (value.Value, types.TypeKind, *ir.Block) {
	ident, ok := e.Object.(*ast.Identifier)
	if !ok {
		lo.errorf(e.Start, "method call on a complex lvalue is unsupported")
	}
	s, found := lo.lookupLocal(ident.Name)
	if !found {
		lo.errorf(e.Start, "unknown identifier %q", ident.Name)
	}

	// a *Record receiver (a method's own "self" included) passes the
	// stored pointer along; a Record receiver passes its slot address
	selfPtr, recTy := value.Value(s.ptr), s.ty
	if recTy.IsPointer() && types.PointedTo(recTy).IsRecord() {
		selfPtr = b.NewLoad(lo.irType(recTy), s.ptr)
		recTy = types.PointedTo(recTy)
	}
	if !recTy.IsRecord() {
		lo.errorf(e.Start, "method call on non-record type %s", lo.reg.TypeName(recTy))
	}

	ri, _ := lo.reg.LookupStructByID(recTy)
	mangled := ri.Name + "_" + e.MethodName
	fi, fok := lo.funcs.Get(mangled)
	if !fok {
		lo.errorf(e.Start, "unknown method %q on %s", e.MethodName, ri.Name)
	}

	args := make([]value.Value, len(e.Args)+1)
	args[0] = selfPtr
	for i, a := range e.Args {
		v, _, nb := lo.lowerValueExpr(b, a)
		b = nb
		args[i+1] = v
	}
	return b.NewCall(fi.fn, args...), fi.retTy, b
}

// lowerStructLiteral allocates a fresh record-shaped slot, stores each
// named field at its ordinal, and returns the slot's address as the
// literal's value. VarDecl special-cases a StructLiteral initializer
// instead of routing through this path, to construct directly into the
// destination slot rather than through a temporary.
func (lo *Lowerer) lowerStructLiteral(b *ir.Block, e *ast.StructLiteral) (value.Value, types.TypeKind) {
	recTy := lo.reg.TypeFromName(e.TypeName)
	if !recTy.IsRecord() {
		lo.errorf(e.Start, "unknown record type %q", e.TypeName)
	}
	addr := b.NewAlloca(lo.recordType(recTy))
	lo.populateStructLiteral(b, addr, recTy, e)
	return addr, recTy
}

// populateStructLiteral stores each field_pairs value of e into addr, a
// pointer to a record of type recTy.
func (lo *Lowerer) populateStructLiteral(b *ir.Block, addr value.Value, recTy types.TypeKind, e *ast.StructLiteral) {
	for _, fp := range e.FieldPairs {
		ord, ok := lo.reg.FieldOrdinal(recTy, fp.Name)
		fieldTy, _ := lo.reg.FieldType(recTy, fp.Name)
		if !ok {
			lo.errorf(fp.Start, "unknown field %q on %s", fp.Name, lo.reg.TypeName(recTy))
		}
		v, vty, nb := lo.lowerExpr(b, fp.Value)
		b = nb
		if vty != fieldTy && vty.Info().Numeric && fieldTy.Info().Numeric {
			v = lo.convertNumeric(b, v, vty, fieldTy, fp.Start)
		}
		gep := b.NewGetElementPtr(lo.recordType(recTy), addr,
			constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(ord)))
		b.NewStore(v, gep)
	}
}

// convertNumeric implements VarDecl's automatic-conversion rule:
// sign-extend if both signed, zero-extend otherwise when widening,
// truncate when narrowing, no-op when sizes match and only signedness
// differs. Float<->integer and float-width conversions go through the
// matching SIToFP/FPToSI and FPExt/FPTrunc families, floats counting as
// signed numeric like everywhere else in the language.
func (lo *Lowerer) convertNumeric(b *ir.Block, v value.Value, from, to types.TypeKind, pos token.Pos) value.Value {
	if from == to {
		return v
	}
	fromFloat, toFloat := isFloat(from), isFloat(to)
	fromSize, toSize := from.Info().Size, to.Info().Size

	switch {
	case fromFloat && toFloat:
		if toSize > fromSize {
			return b.NewFPExt(v, lo.irType(to))
		}
		return b.NewFPTrunc(v, lo.irType(to))
	case fromFloat && !toFloat:
		if isSigned(to) {
			return b.NewFPToSI(v, lo.irType(to))
		}
		return b.NewFPToUI(v, lo.irType(to))
	case !fromFloat && toFloat:
		if isSigned(from) {
			return b.NewSIToFP(v, lo.irType(to))
		}
		return b.NewUIToFP(v, lo.irType(to))
	default:
		switch {
		case toSize > fromSize:
			if isSigned(from) && isSigned(to) {
				return b.NewSExt(v, lo.irType(to))
			}
			return b.NewZExt(v, lo.irType(to))
		case toSize < fromSize:
			return b.NewTrunc(v, lo.irType(to))
		default:
			// same width, different signedness: the two kinds share one IR
			// integer type, so the bit pattern carries over with no
			// instruction at all
			_ = pos
			return v
		}
	}
}
