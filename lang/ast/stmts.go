package ast

import (
	"fmt"

	"github.com/mna/gloin/lang/token"
)

// Assign is `target_name = value;`.
type Assign struct {
	TargetName string
	Value      Expr

	Start, EndPos token.Pos
}

func (n *Assign) BlockEnding() bool             { return false }
func (n *Assign) Format(f fmt.State, verb rune) { format(f, verb, n, "assign "+n.TargetName, nil) }
func (n *Assign) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Assign) Walk(v Visitor)                { Walk(v, n.Value) }

// PtrAssign is `*expr = value;`.
type PtrAssign struct {
	DerefTarget Expr
	Value       Expr

	Start, EndPos token.Pos
}

func (n *PtrAssign) BlockEnding() bool             { return false }
func (n *PtrAssign) Format(f fmt.State, verb rune) { format(f, verb, n, "ptrassign", nil) }
func (n *PtrAssign) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *PtrAssign) Walk(v Visitor) {
	Walk(v, n.DerefTarget)
	Walk(v, n.Value)
}

// Return is `return [value];`.
type Return struct {
	Value Expr // may be nil

	Start, EndPos token.Pos
}

func (n *Return) BlockEnding() bool             { return true }
func (n *Return) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *Return) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Return) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

// If is `if cond then [else]`.
type If struct {
	Cond Expr
	Then *Block
	Else Stmt // *Block or *If, may be nil

	Start, EndPos token.Pos
}

func (n *If) BlockEnding() bool             { return false }
func (n *If) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *If) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *If) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// Unless is `unless cond then [else]`; the lowerer inverts the branch.
type Unless struct {
	Cond Expr
	Then *Block
	Else Stmt

	Start, EndPos token.Pos
}

func (n *Unless) BlockEnding() bool             { return false }
func (n *Unless) Format(f fmt.State, verb rune) { format(f, verb, n, "unless", nil) }
func (n *Unless) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Unless) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// For is `for [init]; [cond]; [update] body`.
type For struct {
	Init   Stmt // may be nil
	Cond   Expr // may be nil
	Update Stmt // may be nil
	Body   *Block

	Start, EndPos token.Pos
}

func (n *For) BlockEnding() bool             { return false }
func (n *For) Format(f fmt.State, verb rune) { format(f, verb, n, "for", nil) }
func (n *For) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *For) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	if n.Update != nil {
		Walk(v, n.Update)
	}
	Walk(v, n.Body)
}

// While is `while cond body`.
type While struct {
	Cond Expr
	Body *Block

	Start, EndPos token.Pos
}

func (n *While) BlockEnding() bool             { return false }
func (n *While) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *While) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *While) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

// SwitchCase is a single `case expr: body` arm of a Switch.
type SwitchCase struct {
	Value Expr
	Body  *Block

	Start, EndPos token.Pos
}

func (n *SwitchCase) Format(f fmt.State, verb rune) { format(f, verb, n, "case", nil) }
func (n *SwitchCase) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *SwitchCase) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Body)
}

// Switch is `switch expr { case ... default: ... }`.
type Switch struct {
	Expr    Expr
	Cases   []*SwitchCase
	Default *Block // may be nil

	Start, EndPos token.Pos
}

func (n *Switch) BlockEnding() bool { return false }
func (n *Switch) Format(f fmt.State, verb rune) {
	format(f, verb, n, "switch", map[string]int{"cases": len(n.Cases)})
}
func (n *Switch) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Switch) Walk(v Visitor) {
	Walk(v, n.Expr)
	for _, c := range n.Cases {
		Walk(v, c)
	}
	if n.Default != nil {
		Walk(v, n.Default)
	}
}

// MatchCase is a single `pattern => body` arm of a Match; Wildcard is true
// for the `_` pattern, in which case Pattern is nil.
type MatchCase struct {
	Pattern  Expr
	Wildcard bool
	Body     *Block

	Start, EndPos token.Pos
}

func (n *MatchCase) Format(f fmt.State, verb rune) { format(f, verb, n, "matchcase", nil) }
func (n *MatchCase) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *MatchCase) Walk(v Visitor) {
	if n.Pattern != nil {
		Walk(v, n.Pattern)
	}
	Walk(v, n.Body)
}

// Match is `match expr { pattern => body ... }`.
type Match struct {
	Expr  Expr
	Cases []*MatchCase

	Start, EndPos token.Pos
}

func (n *Match) BlockEnding() bool { return false }
func (n *Match) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"cases": len(n.Cases)})
}
func (n *Match) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Match) Walk(v Visitor) {
	Walk(v, n.Expr)
	for _, c := range n.Cases {
		Walk(v, c)
	}
}

// Break is `break;`.
type Break struct {
	Start, EndPos token.Pos
}

func (n *Break) BlockEnding() bool             { return true }
func (n *Break) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *Break) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Break) Walk(_ Visitor)                {}

// Continue is `continue;`.
type Continue struct {
	Start, EndPos token.Pos
}

func (n *Continue) BlockEnding() bool             { return true }
func (n *Continue) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *Continue) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *Continue) Walk(_ Visitor)                {}

// ExprStmt is an expression used as a statement (only valid for calls in
// this grammar, but the parser does not enforce that at the node level).
type ExprStmt struct {
	X Expr

	Start, EndPos token.Pos
}

func (n *ExprStmt) BlockEnding() bool             { return false }
func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "exprstmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos)  { return n.Start, n.EndPos }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
