package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mna/gloin/lang/token"
)

// Printer controls pretty-printing of the AST nodes. It is a debugging aid
// only, used by the --debug/--ast CLI flags.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Fset resolves positions to line:column pairs. It is required: Print
	// returns an error if it is nil.
	Fset *token.FileSet

	// NodeFmt is the format string used to print each node. The verb must be
	// either `s` or `v`; a width, and the `#`/`-` flags, are supported as
	// described on Node. Defaults to `%v`.
	NodeFmt string
}

// Print pretty-prints the AST node n.
func (p *Printer) Print(n Node) error {
	if p.Fset == nil {
		return errors.New("fset must be provided to print positions")
	}

	pp := &printer{w: p.Output, fset: p.Fset, nodeFmt: p.NodeFmt}
	if p.NodeFmt == "" {
		pp.nodeFmt = "%v"
	}

	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	fset    *token.FileSet
	nodeFmt string
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}

	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s[%s:%s] " + p.nodeFmt + "\n"
	start, end := n.Span()
	sp, ep := p.fset.Position(start), p.fset.Position(end)
	args := []interface{}{
		strings.Repeat(". ", indent),
		fmt.Sprintf("%d:%d", sp.Line, sp.Column),
		fmt.Sprintf("%d:%d", ep.Line, ep.Column),
		n,
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
