package irgen

import (
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/mna/gloin/lang/types"
)

// irType maps a source TypeKind to its IR type: packed struct layout for
// records, declaration order, no padding; everything else a direct
// width-preserving mapping.
func (lo *Lowerer) irType(k types.TypeKind) irtypes.Type {
	switch {
	case k.IsPointer() && types.PointedTo(k) == types.Void:
		// C's void* has no direct LLVM equivalent; by convention it is
		// represented as i8*, matching the builtin shims' own signatures
		// (malloc/free/realloc all traffic in i8*).
		return i8ptr
	case k.IsPointer():
		return irtypes.NewPointer(lo.irType(types.PointedTo(k)))
	case k.IsEnum():
		return irtypes.I32
	case k.IsRecord():
		return lo.recordType(k)
	}

	switch k {
	case types.Void:
		return irtypes.Void
	case types.Bool:
		return irtypes.I1
	case types.I8, types.U8, types.Char:
		return irtypes.I8
	case types.I16, types.U16:
		return irtypes.I16
	case types.I32, types.U32:
		return irtypes.I32
	case types.I64, types.U64:
		return irtypes.I64
	case types.I128, types.U128:
		return irtypes.NewInt(128)
	case types.F32:
		return irtypes.Float
	case types.F64:
		return irtypes.Double
	case types.String:
		return irtypes.NewPointer(irtypes.I8)
	default:
		return irtypes.Void
	}
}

// recordType returns the packed struct type for record kind k, building and
// caching it on first use so every reference to the same record shares one
// *irtypes.StructType instance, matching llir/llvm's convention that named
// types be created once and reused.
func (lo *Lowerer) recordType(k types.TypeKind) *irtypes.StructType {
	if st, ok := lo.structs[k]; ok {
		return st
	}
	ri, ok := lo.reg.LookupStructByID(k)
	if !ok {
		// Registered by the resolver; a missing entry here would be an
		// internal inconsistency, not a user-facing error.
		return irtypes.NewStruct()
	}

	fields := make([]irtypes.Type, len(ri.Fields))
	for i, f := range ri.Fields {
		fields[i] = lo.irType(f.Kind)
	}
	st := irtypes.NewStruct(fields...)
	st.Packed = true
	st.TypeName = ri.Name
	lo.mod.NewTypeDef(ri.Name, st)
	lo.structs[k] = st
	return st
}

// isSigned reports whether k's IR arithmetic should use the signed variant
// of an instruction (sign-extend, signed compare, signed division). Per
// DESIGN.md's Open Question decision, this is read from TypeInfo.Signed,
// which is populated for both integer signedness and for floats (ordered
// comparisons on floats use the unsigned-named "O" predicates in LLVM, but
// callers branch on isFloat before consulting signedness).
func isSigned(k types.TypeKind) bool { return k.Info().Signed }

func isFloat(k types.TypeKind) bool { return k == types.F32 || k == types.F64 }
