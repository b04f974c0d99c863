// Package types implements the language's type system: the closed set of
// primitive and pointer kinds, the open range of user-declared record
// kinds, and the registry and compatibility rules that the resolver and IR
// lowerer consult.
package types

import "fmt"

// TypeKind identifies a type. Primitives occupy a small low range, pointer
// kinds a mirrored range starting at ptrBase, enum kinds a narrow range
// starting at enumBase, and user-declared record kinds an open range
// starting at recordBase. Unknown is the sentinel for unresolved or invalid
// types.
type TypeKind int

const (
	Void TypeKind = iota
	Bool
	I8
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Char
	String

	numPrimitives
)

const (
	ptrBase    TypeKind = 100
	enumBase   TypeKind = 150
	recordBase TypeKind = 200
	Unknown    TypeKind = 255
)

// dynPtrBase opens a second pointer range for pointer-to-enum and
// pointer-to-record kinds, which cannot live in the small mirrored
// ptrBase..ptrBase+numPrimitives range reserved for primitive pointers. A
// pointer to enum/record kind k is represented as dynPtrBase+k; since
// recordBase is open-ended this keeps the two ranges from ever colliding.
const dynPtrBase TypeKind = 1 << 20

// Pointer kinds, one per primitive, in the same order as the primitives.
const (
	PtrVoid TypeKind = ptrBase + iota
	PtrBool
	PtrI8
	PtrI16
	PtrI32
	PtrI64
	PtrI128
	PtrU8
	PtrU16
	PtrU32
	PtrU64
	PtrU128
	PtrF32
	PtrF64
	PtrChar
	PtrString
)

// TypeInfo describes the static properties of a TypeKind.
type TypeInfo struct {
	Size       int // size in bytes
	Signed     bool
	Numeric    bool
	Comparable bool
	Ordered    bool
	IsPointer  bool
	PointedTo  TypeKind // valid only when IsPointer
}

var primitiveInfo = [numPrimitives]TypeInfo{
	Void:   {Size: 0},
	Bool:   {Size: 1, Comparable: true},
	I8:     {Size: 1, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	I16:    {Size: 2, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	I32:    {Size: 4, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	I64:    {Size: 8, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	I128:   {Size: 16, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	U8:     {Size: 1, Numeric: true, Comparable: true, Ordered: true},
	U16:    {Size: 2, Numeric: true, Comparable: true, Ordered: true},
	U32:    {Size: 4, Numeric: true, Comparable: true, Ordered: true},
	U64:    {Size: 8, Numeric: true, Comparable: true, Ordered: true},
	U128:   {Size: 16, Numeric: true, Comparable: true, Ordered: true},
	F32:    {Size: 4, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	F64:    {Size: 8, Signed: true, Numeric: true, Comparable: true, Ordered: true},
	Char:   {Size: 1, Numeric: true, Comparable: true, Ordered: true},
	String: {Size: 8, Comparable: true},
}

var primitiveNames = [numPrimitives]string{
	Void: "void", Bool: "bool",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
	F32: "f32", F64: "f64",
	Char: "char", String: "string",
}

var namesToPrimitive map[string]TypeKind

func init() {
	namesToPrimitive = make(map[string]TypeKind, numPrimitives)
	for k, name := range primitiveNames {
		namesToPrimitive[name] = TypeKind(k)
	}
}

// IsPrimitive reports whether k is one of the closed primitive kinds.
func (k TypeKind) IsPrimitive() bool { return k >= Void && k < numPrimitives }

// IsPointer reports whether k is one of the mirrored one-level pointer
// kinds, or a pointer to an enum/record kind.
func (k TypeKind) IsPointer() bool {
	return (k >= ptrBase && k < ptrBase+numPrimitives) || k >= dynPtrBase
}

// IsEnum reports whether k names an enum declared in the current
// compilation.
func (k TypeKind) IsEnum() bool { return k >= enumBase && k < recordBase }

// IsRecord reports whether k names a struct declared in the current
// compilation.
func (k TypeKind) IsRecord() bool { return k >= recordBase && k != Unknown && k < dynPtrBase }

// String implements fmt.Stringer by delegating to a process-wide registry
// lookup for record and enum kinds, falling back to the static name tables
// for primitives and pointers.
func (k TypeKind) String() string {
	return defaultRegistry.typeName(k)
}

// typeFromName maps a textual type name to its TypeKind, consulting reg for
// record and enum names. A single leading '*' denotes a one-level pointer.
// Unknown names yield Unknown.
func typeFromName(reg *Registry, name string) TypeKind {
	if len(name) > 0 && name[0] == '*' {
		base := typeFromName(reg, name[1:])
		return makePointerKind(base)
	}
	if k, ok := namesToPrimitive[name]; ok {
		return k
	}
	if reg != nil {
		if ri, ok := reg.byName[name]; ok {
			return ri.ID
		}
		if ek, ok := reg.enumsByName[name]; ok {
			return ek
		}
	}
	return Unknown
}

// typeName is the inverse of typeFromName.
func (r *Registry) typeName(k TypeKind) string {
	if k >= dynPtrBase {
		return "*" + r.typeName(k-dynPtrBase)
	}
	if k.IsPointer() {
		base := k - ptrBase
		return "*" + r.typeName(base)
	}
	if k.IsPrimitive() {
		return primitiveNames[k]
	}
	if r != nil {
		if en, ok := r.enumNames[k]; ok {
			return en
		}
		if ri, ok := r.byID.Get(k); ok {
			return ri.Name
		}
	}
	return fmt.Sprintf("<unknown type %d>", int(k))
}

// Info returns the TypeInfo describing k, consulting the default
// process-wide registry for record and enum kinds.
func (k TypeKind) Info() TypeInfo { return defaultRegistry.info(k) }

func (r *Registry) info(k TypeKind) TypeInfo {
	if k >= dynPtrBase {
		return TypeInfo{Size: 8, IsPointer: true, PointedTo: k - dynPtrBase, Comparable: true}
	}
	if k.IsPointer() {
		base := k - ptrBase
		return TypeInfo{Size: 8, IsPointer: true, PointedTo: base, Comparable: true}
	}
	if k.IsPrimitive() {
		return primitiveInfo[k]
	}
	if r != nil {
		if _, ok := r.enumNames[k]; ok {
			return TypeInfo{Size: 4, Signed: true, Comparable: true, Ordered: true}
		}
		if ri, ok := r.byID.Get(k); ok {
			return TypeInfo{Size: ri.TotalSize, Comparable: false}
		}
	}
	return TypeInfo{}
}

// makePointerKind returns the pointer TypeKind for base. Primitive bases use
// the mirrored ptrBase range; enum and record bases use the dynPtrBase
// range. Pointer-to-pointer and pointer-to-void-via-Unknown are not
// representable (the grammar only ever applies a single leading '*' to a
// primitive or IDENT type name).
func makePointerKind(base TypeKind) TypeKind {
	switch {
	case base.IsPrimitive():
		return ptrBase + base
	case base.IsEnum() || base.IsRecord():
		return dynPtrBase + base
	default:
		return Unknown
	}
}

// MakePointer returns the pointer TypeKind for base, or Unknown if base is
// not a primitive, enum or record kind.
func MakePointer(base TypeKind) TypeKind { return makePointerKind(base) }

// PointedTo returns the type pointed to by ptr, or Unknown if ptr is not a
// pointer kind.
func PointedTo(ptr TypeKind) TypeKind {
	switch {
	case ptr >= dynPtrBase:
		return ptr - dynPtrBase
	case ptr >= ptrBase && ptr < ptrBase+numPrimitives:
		return ptr - ptrBase
	default:
		return Unknown
	}
}
