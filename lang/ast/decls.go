package ast

import (
	"fmt"

	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

// Param is a function or method parameter.
type Param struct {
	Name       string
	Ty         string // textual type, e.g. "i32" or "*Point"
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *Param) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "param "+n.Name+": "+n.Ty, n.ResolvedTy), nil)
}
func (n *Param) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Param) Walk(_ Visitor)                {}

// Function is a top-level function declaration.
type Function struct {
	Name    string
	RetTy   string
	Params  []*Param
	Body    *Block

	Start, EndPos token.Pos
}

func (n *Function) decl() {}
func (n *Function) Format(f fmt.State, verb rune) {
	format(f, verb, n, "function "+n.Name, map[string]int{"params": len(n.Params)})
}
func (n *Function) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Function) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// StructField is a field of a Struct declaration.
type StructField struct {
	Name       string
	Ty         string
	ResolvedTy types.TypeKind
	Offset     int

	Start, EndPos token.Pos
}

func (n *StructField) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "field "+n.Name+": "+n.Ty, n.ResolvedTy), nil)
}
func (n *StructField) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *StructField) Walk(_ Visitor)                {}

// StructMethod is a method declared in a Struct's body.
type StructMethod struct {
	Name       string
	RetTy      string
	Params     []*Param
	Body       *Block
	Visibility Visibility

	Start, EndPos token.Pos
}

func (n *StructMethod) Format(f fmt.State, verb rune) {
	format(f, verb, n, "method "+n.Visibility.String()+" "+n.Name, map[string]int{"params": len(n.Params)})
}
func (n *StructMethod) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *StructMethod) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// Struct is a top-level record declaration.
type Struct struct {
	Name       string
	Fields     []*StructField
	Methods    []*StructMethod
	ResolvedID types.TypeKind

	Start, EndPos token.Pos
}

func (n *Struct) decl() {}
func (n *Struct) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct "+n.Name, map[string]int{"fields": len(n.Fields), "methods": len(n.Methods)})
}
func (n *Struct) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Struct) Walk(v Visitor) {
	for _, fld := range n.Fields {
		Walk(v, fld)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}

// EnumVariant is a single member of an Enum declaration.
type EnumVariant struct {
	Name string

	Start, EndPos token.Pos
}

func (n *EnumVariant) Format(f fmt.State, verb rune) { format(f, verb, n, "variant "+n.Name, nil) }
func (n *EnumVariant) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *EnumVariant) Walk(_ Visitor)                {}

// Enum is a top-level enum declaration.
type Enum struct {
	Name       string
	Variants   []*EnumVariant
	ResolvedID types.TypeKind

	Start, EndPos token.Pos
}

func (n *Enum) decl() {}
func (n *Enum) Format(f fmt.State, verb rune) {
	format(f, verb, n, "enum "+n.Name, map[string]int{"variants": len(n.Variants)})
}
func (n *Enum) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Enum) Walk(v Visitor) {
	for _, vr := range n.Variants {
		Walk(v, vr)
	}
}

// VarDecl is a top-level or block-local variable declaration: `def [const|mut] name: ty = init;`.
type VarDecl struct {
	Name       string
	Ty         string
	Init       Expr // may be nil
	Mutability Mutability
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *VarDecl) decl()              {}
func (n *VarDecl) BlockEnding() bool { return false }
func (n *VarDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "vardecl "+n.Mutability.String()+" "+n.Name+": "+n.Ty, n.ResolvedTy), nil)
}
func (n *VarDecl) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *VarDecl) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
