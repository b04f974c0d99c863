package irgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

var i8ptr = irtypes.NewPointer(irtypes.I8)

// registerBuiltins declares the fixed set of C-ABI shim functions so that
// calls to std.* builtins translate to direct calls against them.
func (lo *Lowerer) registerBuiltins() {
	lo.builtins = make(map[string]*ir.Func, 16)

	decl := func(name string, ret irtypes.Type, variadic bool, params ...irtypes.Type) {
		irParams := make([]*ir.Param, len(params))
		for i, p := range params {
			irParams[i] = ir.NewParam("", p)
		}
		f := lo.mod.NewFunc(name, ret, irParams...)
		f.Sig.Variadic = variadic
		lo.builtins[name] = f
	}

	decl("printf", irtypes.I32, true, i8ptr)
	decl("puts", irtypes.I32, false, i8ptr)
	decl("scanf", irtypes.I32, true, i8ptr)
	decl("getline", irtypes.I64, false, irtypes.NewPointer(i8ptr), irtypes.NewPointer(irtypes.I64), i8ptr)
	decl("strlen", irtypes.I64, false, i8ptr)
	decl("atoi", irtypes.I32, false, i8ptr)
	decl("atol", irtypes.I64, false, i8ptr)
	decl("sprintf", irtypes.I32, true, i8ptr)
	decl("malloc", i8ptr, false, irtypes.I64)
	decl("free", irtypes.Void, false, i8ptr)
	decl("realloc", i8ptr, false, i8ptr, irtypes.I64)
}

// isBuiltinCall reports whether name is one of the recognized std.*
// qualified names or the unnamespaced "cast".
func isBuiltinCall(name string) bool {
	switch name {
	case "std.print", "std.println", "std.input", "std.readln",
		"std.to_int", "std.to_i64", "std.to_string",
		"std.malloc", "std.free", "cast":
		return true
	default:
		return false
	}
}

// lowerBuiltinCall dispatches call to its builtin implementation.
func (lo *Lowerer) lowerBuiltinCall(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	switch call.CalleeName {
	case "std.print":
		return lo.lowerPrint(b, call, false)
	case "std.println":
		return lo.lowerPrint(b, call, true)
	case "std.input":
		return lo.lowerInput(b, call)
	case "std.readln":
		return lo.lowerReadln(b, call)
	case "std.to_int":
		return lo.lowerToInt(b, call, types.I32)
	case "std.to_i64":
		return lo.lowerToInt(b, call, types.I64)
	case "std.to_string":
		return lo.lowerToString(b, call)
	case "std.malloc":
		return lo.lowerMalloc(b, call)
	case "std.free":
		return lo.lowerFree(b, call)
	case "cast":
		return lo.lowerCast(b, call)
	default:
		lo.errorf(call.Start, "unknown builtin %q", call.CalleeName)
		panic(errPanicMode)
	}
}

// formatSpec selects the printf/sprintf conversion for a value of type k.
// Bool has no printf conversion of its own: the caller substitutes the
// literal text "true"/"false" instead of formatting the i1 value.
func formatSpec(k types.TypeKind) (spec string, ok bool) {
	switch k {
	case types.String:
		return "%s", true
	case types.I8:
		return "%hhd", true
	case types.I16:
		return "%hd", true
	case types.I32:
		return "%d", true
	case types.I64:
		return "%ld", true
	case types.U8:
		return "%hhu", true
	case types.U16:
		return "%hu", true
	case types.U32:
		return "%u", true
	case types.U64:
		return "%lu", true
	case types.Char:
		return "%c", true
	case types.F32, types.F64:
		return "%f", true
	default:
		return "", false
	}
}

func (lo *Lowerer) requireArgs(call *ast.Call, n int) {
	if len(call.Args) != n {
		lo.errorf(call.Start, "%s() expects exactly %d argument(s)", call.CalleeName, n)
	}
}

func (lo *Lowerer) lowerPrint(b *ir.Block, call *ast.Call, newline bool) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 1)
	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])

	var spec string
	if argTy == types.Bool {
		spec = "%s"
		argVal = lo.boolToStringConst(b, argVal)
	} else {
		s, ok := formatSpec(argTy)
		if !ok {
			lo.errorf(call.Start, "unsupported type %s for %s()", lo.reg.TypeName(argTy), call.CalleeName)
		}
		spec = s
		argVal = promoteVararg(b, argVal, argTy)
	}
	if newline {
		spec += "\n"
	}
	fmtPtr := lo.globalCString(spec)
	b.NewCall(lo.builtins["printf"], fmtPtr, argVal)
	return constant.NewInt(irtypes.I32, 0), types.I32, b
}

// boolToStringConst selects between the "true"/"false" anonymous string
// constants based on a runtime i1 value, via a select instruction, per the
// "emit the textual true/false via a selector" rule.
func (lo *Lowerer) boolToStringConst(b *ir.Block, cond value.Value) value.Value {
	t := lo.globalCString("true")
	f := lo.globalCString("false")
	return b.NewSelect(cond, t, f)
}

func (lo *Lowerer) lowerInput(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 0)
	buf := b.NewAlloca(irtypes.NewArray(256, irtypes.I8))
	bufPtr := b.NewGetElementPtr(irtypes.NewArray(256, irtypes.I8), buf, constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, 0))
	fmtPtr := lo.globalCString("%255s")
	b.NewCall(lo.builtins["scanf"], fmtPtr, bufPtr)
	return bufPtr, types.String, b
}

func (lo *Lowerer) lowerReadln(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 0)
	stdin := b.NewLoad(i8ptr, lo.stdinGlobal())
	lineptr := b.NewAlloca(i8ptr)
	b.NewStore(constant.NewNull(i8ptr), lineptr)
	n := b.NewAlloca(irtypes.I64)
	b.NewStore(constant.NewInt(irtypes.I64, 0), n)
	b.NewCall(lo.builtins["getline"], lineptr, n, stdin)
	line := b.NewLoad(i8ptr, lineptr)
	return line, types.String, b
}

// stdinGlobal lazily declares the libc "stdin" FILE* global, needed only
// by std.readln's use of getline, to model it faithfully against real
// libc.
func (lo *Lowerer) stdinGlobal() *ir.Global {
	if lo.stdin == nil {
		lo.stdin = lo.mod.NewGlobal("stdin", i8ptr)
	}
	return lo.stdin
}

func (lo *Lowerer) lowerToInt(b *ir.Block, call *ast.Call, want types.TypeKind) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 1)
	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])
	if argTy != types.String {
		lo.errorf(call.Start, "%s() requires a string argument", call.CalleeName)
	}
	name := "atoi"
	if want == types.I64 {
		name = "atol"
	}
	res := b.NewCall(lo.builtins[name], argVal)
	return res, want, b
}

func (lo *Lowerer) lowerToString(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 1)
	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])
	if argTy == types.String {
		return argVal, types.String, b
	}

	spec, ok := formatSpec(argTy)
	if !ok {
		lo.errorf(call.Start, "unsupported type %s for std.to_string()", lo.reg.TypeName(argTy))
	}
	buf := b.NewAlloca(irtypes.NewArray(32, irtypes.I8))
	bufPtr := b.NewGetElementPtr(irtypes.NewArray(32, irtypes.I8), buf, constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, 0))
	fmtPtr := lo.globalCString(spec)
	b.NewCall(lo.builtins["sprintf"], bufPtr, fmtPtr, promoteVararg(b, argVal, argTy))
	return bufPtr, types.String, b
}

// promoteVararg applies the C default argument promotion a variadic callee
// expects: f32 goes through the call as double. Integer widths stay as-is
// since the matching length-modified conversions (%hhd and friends) read
// only the low bytes.
func promoteVararg(b *ir.Block, v value.Value, ty types.TypeKind) value.Value {
	if ty == types.F32 {
		return b.NewFPExt(v, irtypes.Double)
	}
	return v
}

func (lo *Lowerer) lowerMalloc(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 1)
	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])
	argVal = lo.convertNumeric(b, argVal, argTy, types.I64, call.Start)
	ptr := b.NewCall(lo.builtins["malloc"], argVal)
	return ptr, types.PtrVoid, b
}

func (lo *Lowerer) lowerFree(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	lo.requireArgs(call, 1)
	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])
	if !argTy.IsPointer() {
		lo.errorf(call.Start, "std.free() requires a pointer argument")
	}
	casted := argVal
	if !argVal.Type().Equal(i8ptr) {
		casted = b.NewBitCast(argVal, i8ptr)
	}
	b.NewCall(lo.builtins["free"], casted)
	return constant.NewInt(irtypes.I32, 0), types.Void, b
}

// lowerCast implements cast(value, type_name): the second argument names a
// type as either a string literal or a bare identifier and is never
// evaluated as an expression. It is metadata read directly off the AST
// node.
func (lo *Lowerer) lowerCast(b *ir.Block, call *ast.Call) (value.Value, types.TypeKind, *ir.Block) {
	if len(call.Args) != 2 {
		lo.errorf(call.Start, "cast() expects exactly 2 arguments")
	}
	typeName, ok := typeNameArg(call.Args[1])
	if !ok {
		lo.errorf(call.Start, "cast()'s second argument must be a type name")
	}
	target := lo.reg.TypeFromName(typeName)
	if target == types.Unknown {
		lo.errorf(call.Start, "cast() to unknown type %q", typeName)
	}

	argVal, argTy, b := lo.lowerExpr(b, call.Args[0])
	return lo.lowerCastValue(b, argVal, argTy, target, call.Start), target, b
}

func typeNameArg(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Literal:
		if e.Kind == ast.StringLit {
			return e.Text, true
		}
	case *ast.Identifier:
		return e.Name, true
	}
	return "", false
}

// lowerCastValue implements the cast builtin's conversion matrix: same-type
// (and same IR representation) is a no-op; widening sign/zero-extends per
// the source's signedness; narrowing truncates; pointer-to-pointer
// bit-casts; integer<->pointer use explicit conversion instructions.
func (lo *Lowerer) lowerCastValue(b *ir.Block, v value.Value, from, to types.TypeKind, pos token.Pos) value.Value {
	if from == to {
		return v
	}
	// an enum value is its i32 ordinal for casting purposes
	if from.IsEnum() {
		from = types.I32
	}
	if to.IsEnum() {
		to = types.I32
	}
	if from == to {
		return v
	}
	// string is pointer-shaped (*i8) for casting purposes
	fromPtr := from.IsPointer() || from == types.String
	toPtr := to.IsPointer() || to == types.String

	switch {
	case fromPtr && toPtr:
		if lo.irType(from).Equal(lo.irType(to)) {
			return v
		}
		return b.NewBitCast(v, lo.irType(to))
	case fromPtr && to.Info().Numeric:
		return b.NewPtrToInt(v, lo.irType(to))
	case from.Info().Numeric && toPtr:
		return b.NewIntToPtr(v, lo.irType(to))
	case from.Info().Numeric && to.Info().Numeric:
		if !isFloat(from) && !isFloat(to) && to.Info().Size > from.Info().Size && isSigned(from) {
			return b.NewSExt(v, lo.irType(to))
		}
		return lo.convertNumeric(b, v, from, to, pos)
	default:
		lo.errorf(pos, "unsupported cast from %s to %s", lo.reg.TypeName(from), lo.reg.TypeName(to))
		panic(errPanicMode)
	}
}

// globalCString interns s as an anonymous NUL-terminated global byte array
// and returns an *i8 pointer to its first element, reusing an existing
// global for a previously seen literal.
func (lo *Lowerer) globalCString(s string) value.Value {
	if g, ok := lo.strings[s]; ok {
		return lo.gepToFirstByte(g)
	}
	data := constant.NewCharArrayFromString(s + "\x00")
	name := fmt.Sprintf(".str.%d", lo.strCount)
	lo.strCount++
	g := lo.mod.NewGlobalDef(name, data)
	g.Immutable = true
	if lo.strings == nil {
		lo.strings = make(map[string]*ir.Global)
	}
	lo.strings[s] = g
	return lo.gepToFirstByte(g)
}

func (lo *Lowerer) gepToFirstByte(g *ir.Global) value.Value {
	zero := constant.NewInt(irtypes.I32, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}
