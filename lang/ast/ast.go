// Package ast defines the types that represent the abstract syntax tree of
// the language: a tagged variant for every production in the grammar, each
// carrying the tag plus its payload.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so it can print a
	// description of itself. The only supported verbs are 'v' and 's'. The
	// '#' flag prints count information about children nodes. A width can be
	// set to define the number of runes to print for the description - by
	// default it is padded with spaces on the left if shorter, or truncated
	// to that width if longer. The '-' flag pads on the right instead, and
	// '+' disables padding, only truncating if longer.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each child node to implement the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement may only appear as the last
	// statement of a block (return, break, continue).
	BlockEnding() bool
}

// Decl represents a top-level or struct-body declaration.
type Decl interface {
	Node
	decl()
}

// ImportKind classifies the source of an Import declaration.
type ImportKind int

const (
	// Std is the "@" sigil: a standard-library import, a no-op at lowering
	// time since builtins are already registered.
	Std ImportKind = iota
	// External is the "#" sigil: re-parses includes/<name>.src.
	External
	// Local is the "./" sigil: re-parses <path>.src next to the importer.
	Local
)

func (k ImportKind) String() string {
	switch k {
	case Std:
		return "std"
	case External:
		return "external"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// Mutability classifies how a VarDecl's slot may be reassigned.
type Mutability int

const (
	Immutable Mutability = iota
	Mutable
	ConstMut
)

func (m Mutability) String() string {
	switch m {
	case Immutable:
		return "immutable"
	case Mutable:
		return "mutable"
	case ConstMut:
		return "const"
	default:
		return "unknown"
	}
}

// Visibility classifies a StructMethod's access level.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "priv"
}

// Program is the root of every compiled file: its imports followed by its
// top-level declarations.
type Program struct {
	Imports []*Import
	Decls   []Decl

	Start, EndPos token.Pos
}

func (n *Program) Format(f fmt.State, verb rune) {
	format(f, verb, n, "program", map[string]int{"imports": len(n.Imports), "decls": len(n.Decls)})
}
func (n *Program) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Program) Walk(v Visitor) {
	for _, im := range n.Imports {
		Walk(v, im)
	}
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Import is a single import declaration.
type Import struct {
	Kind ImportKind
	Path string

	Start, EndPos token.Pos
}

func (n *Import) decl() {}
func (n *Import) Format(f fmt.State, verb rune) {
	format(f, verb, n, "import "+n.Kind.String()+" "+n.Path, nil)
}
func (n *Import) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Import) Walk(_ Visitor)                {}

// Block represents a block of statements.
type Block struct {
	Stmts []Stmt

	Start, EndPos token.Pos
}

func (n *Block) BlockEnding() bool { return false }
func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// format is the shared rendering helper for every node's Format method.
// typedLabel appends a node's resolved type to label when the '#' flag is
// set, the same flag the resolve command's printer already uses to ask for
// extra detail (Program's import/decl counts reuse it the same way). Nodes
// with no ResolvedTy field don't call this.
func typedLabel(f fmt.State, label string, k types.TypeKind) string {
	if f.Flag('#') {
		label += " : " + k.String()
	}
	return label
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
