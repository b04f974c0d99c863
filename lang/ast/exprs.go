package ast

import (
	"fmt"

	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

// LiteralKind classifies a Literal's payload.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	BoolLit
	NullLit
)

// Literal is a literal value: integer, float, string, bool or null.
type Literal struct {
	Text       string
	Kind       LiteralKind
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *Literal) expr() {}
func (n *Literal) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "literal "+n.Text, n.ResolvedTy), nil)
}
func (n *Literal) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Literal) Walk(_ Visitor)                {}

// Identifier is a bare name reference.
type Identifier struct {
	Name       string
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *Identifier) expr() {}
func (n *Identifier) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "ident "+n.Name, n.ResolvedTy), nil)
}
func (n *Identifier) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Identifier) Walk(_ Visitor)                {}

// BinaryOp is `left op right`.
type BinaryOp struct {
	Op         token.Token
	Left       Expr
	Right      Expr
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *BinaryOp) expr() {}
func (n *BinaryOp) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "binop "+n.Op.String(), n.ResolvedTy), nil)
}
func (n *BinaryOp) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *BinaryOp) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// UnaryOpKind distinguishes the two unary operators the grammar supports.
type UnaryOpKind int

const (
	AddressOf UnaryOpKind = iota
	Dereference
)

func (k UnaryOpKind) String() string {
	if k == AddressOf {
		return "&"
	}
	return "*"
}

// UnaryOp is `& operand` or `* operand`.
type UnaryOp struct {
	Op         UnaryOpKind
	Operand    Expr
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *UnaryOp) expr() {}
func (n *UnaryOp) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "unop "+n.Op.String(), n.ResolvedTy), nil)
}
func (n *UnaryOp) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *UnaryOp) Walk(v Visitor)               { Walk(v, n.Operand) }

// Call is `callee_name(args...)`; CalleeName may be a qualified builtin
// name such as "std.println" or the bare name "cast".
type Call struct {
	CalleeName string
	Args       []Expr

	Start, EndPos token.Pos
}

func (n *Call) expr() {}
func (n *Call) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call "+n.CalleeName, map[string]int{"args": len(n.Args)})
}
func (n *Call) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Call) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// FieldAccess is `object.field_name`.
type FieldAccess struct {
	Object     Expr
	FieldName  string
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *FieldAccess) expr() {}
func (n *FieldAccess) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "fieldaccess ."+n.FieldName, n.ResolvedTy), nil)
}
func (n *FieldAccess) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *FieldAccess) Walk(v Visitor)               { Walk(v, n.Object) }

// MethodCall is `object.method_name(args...)`.
type MethodCall struct {
	Object     Expr
	MethodName string
	Args       []Expr
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *MethodCall) expr() {}
func (n *MethodCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "methodcall ."+n.MethodName, n.ResolvedTy), map[string]int{"args": len(n.Args)})
}
func (n *MethodCall) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *MethodCall) Walk(v Visitor) {
	Walk(v, n.Object)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// StructLiteralField is one `name: expr` pair of a StructLiteral.
type StructLiteralField struct {
	Name  string
	Value Expr

	Start, EndPos token.Pos
}

func (n *StructLiteralField) Format(f fmt.State, verb rune) {
	format(f, verb, n, "field "+n.Name, nil)
}
func (n *StructLiteralField) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *StructLiteralField) Walk(v Visitor)                { Walk(v, n.Value) }

// StructLiteral is `TypeName { name: expr, ... }`.
type StructLiteral struct {
	TypeName   string
	FieldPairs []*StructLiteralField
	ResolvedTy types.TypeKind

	Start, EndPos token.Pos
}

func (n *StructLiteral) expr() {}
func (n *StructLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, typedLabel(f, "structliteral "+n.TypeName, n.ResolvedTy), map[string]int{"fields": len(n.FieldPairs)})
}
func (n *StructLiteral) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *StructLiteral) Walk(v Visitor) {
	for _, fp := range n.FieldPairs {
		Walk(v, fp)
	}
}
