package types

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// RecordField describes one field of a registered record: its name, kind
// and byte offset from the start of the record.
type RecordField struct {
	Name   string
	Kind   TypeKind
	Offset int
}

// RecordInfo is the registry entry for a user-declared struct.
type RecordInfo struct {
	Name      string
	ID        TypeKind
	Fields    []RecordField
	TotalSize int
}

// Registry is the process-wide, append-only map of declared record and
// enum types. It is created once per compilation and consulted by the
// resolver (to register Struct/Enum nodes) and the IR lowerer (to look up
// field offsets and enum ordinals).
type Registry struct {
	byName map[string]*RecordInfo
	byID   *swiss.Map[TypeKind, *RecordInfo]

	enumsByName map[string]TypeKind
	enumNames   map[TypeKind]string
	enumOrdinal map[TypeKind]map[string]int32

	nextRecordID TypeKind
	nextEnumID   TypeKind
}

// defaultRegistry backs TypeKind.String and TypeKind.Info for callers that
// do not thread an explicit *Registry through; a fresh Registry should
// still be used per-compilation for the entry points in this package that
// take one explicitly (NewRegistry, RegisterStruct, RegisterEnum).
var defaultRegistry = NewRegistry()

// NewRegistry creates an empty, ready-to-use type registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:       make(map[string]*RecordInfo),
		byID:         swiss.NewMap[TypeKind, *RecordInfo](16),
		enumsByName:  make(map[string]TypeKind),
		enumNames:    make(map[TypeKind]string),
		enumOrdinal:  make(map[TypeKind]map[string]int32),
		nextRecordID: recordBase,
		nextEnumID:   enumBase,
	}
}

// SetAsDefault makes r the backing registry for TypeKind.String and
// TypeKind.Info. ResolveProgram and LowerProgram each call this at the
// start of their pass, so that diagnostic formatting of record and enum
// kinds resolves their names.
func SetAsDefault(r *Registry) { defaultRegistry = r }

// TypeFromName maps a textual type name to its TypeKind, consulting r for
// record and enum names. A single leading '*' denotes a one-level pointer.
// Unknown names yield Unknown.
func (r *Registry) TypeFromName(name string) TypeKind { return typeFromName(r, name) }

// TypeName is the inverse of TypeFromName.
func (r *Registry) TypeName(k TypeKind) string { return r.typeName(k) }

// Info returns the TypeInfo describing k.
func (r *Registry) Info(k TypeKind) TypeInfo { return r.info(k) }

// RegisterStruct registers a new record type with the given fields, laid
// out in declaration order with no padding: each field's offset is the sum
// of the sizes of the fields before it. Duplicate names are rejected (see
// DESIGN.md's Open Question decision), returning an error rather than
// re-registering or shadowing the earlier entry.
func (r *Registry) RegisterStruct(name string, fields []RecordField) (TypeKind, error) {
	if _, ok := r.byName[name]; ok {
		return Unknown, fmt.Errorf("record already declared: %s", name)
	}
	if _, ok := r.enumsByName[name]; ok {
		return Unknown, fmt.Errorf("record name already used by enum: %s", name)
	}

	id := r.nextRecordID
	if id == Unknown {
		// the open record range contains the Unknown sentinel; never hand it out
		id++
	}
	r.nextRecordID = id + 1

	out := make([]RecordField, len(fields))
	offset := 0
	for i, f := range fields {
		out[i] = RecordField{Name: f.Name, Kind: f.Kind, Offset: offset}
		offset += f.Kind.Info().Size
	}

	ri := &RecordInfo{Name: name, ID: id, Fields: out, TotalSize: offset}
	r.byName[name] = ri
	r.byID.Put(id, ri)
	return id, nil
}

// RegisterEnum registers a new enum type with the given variant names in
// declaration order, each lowering to a sequential i32 ordinal starting at
// 0.
func (r *Registry) RegisterEnum(name string, variants []string) (TypeKind, error) {
	if _, ok := r.enumsByName[name]; ok {
		return Unknown, fmt.Errorf("enum already declared: %s", name)
	}
	if _, ok := r.byName[name]; ok {
		return Unknown, fmt.Errorf("enum name already used by record: %s", name)
	}

	id := r.nextEnumID
	r.nextEnumID++

	ords := make(map[string]int32, len(variants))
	for i, v := range variants {
		ords[v] = int32(i)
	}

	r.enumsByName[name] = id
	r.enumNames[id] = name
	r.enumOrdinal[id] = ords
	return id, nil
}

// EnumOrdinal returns the declaration-order ordinal of variant within the
// enum identified by id.
func (r *Registry) EnumOrdinal(id TypeKind, variant string) (int32, bool) {
	ords, ok := r.enumOrdinal[id]
	if !ok {
		return 0, false
	}
	ord, ok := ords[variant]
	return ord, ok
}

// LookupStruct returns the RecordInfo for name, if a struct by that name
// was registered.
func (r *Registry) LookupStruct(name string) (*RecordInfo, bool) {
	ri, ok := r.byName[name]
	return ri, ok
}

// LookupStructByID returns the RecordInfo for id.
func (r *Registry) LookupStructByID(id TypeKind) (*RecordInfo, bool) {
	return r.byID.Get(id)
}

// FieldOffset performs a linear search for name in record's fields and
// returns its byte offset.
func (r *Registry) FieldOffset(record TypeKind, name string) (int, bool) {
	ri, ok := r.byID.Get(record)
	if !ok {
		return 0, false
	}
	for _, f := range ri.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// FieldType performs a linear search for name in record's fields and
// returns its TypeKind.
func (r *Registry) FieldType(record TypeKind, name string) (TypeKind, bool) {
	ri, ok := r.byID.Get(record)
	if !ok {
		return Unknown, false
	}
	for _, f := range ri.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return Unknown, false
}

// FieldOrdinal returns the declaration-order index of name within record's
// fields, used by the lowerer's struct-gep instruction selection.
func (r *Registry) FieldOrdinal(record TypeKind, name string) (int, bool) {
	ri, ok := r.byID.Get(record)
	if !ok {
		return 0, false
	}
	for i, f := range ri.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
