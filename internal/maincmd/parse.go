package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/parser"
	"github.com/mna/gloin/lang/token"
)

// Parse runs the lexer and parser on each file and prints the resulting
// AST.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		fset, prog, err := parseFile(stdio, name)
		if err != nil {
			return err
		}
		if err := printProgram(stdio, fset, prog, ""); err != nil {
			return err
		}
	}
	return nil
}

// parseFile reads and parses name, printing any I/O or syntax error to
// stdio.Stderr before returning it.
func parseFile(stdio mainer.Stdio, name string) (*token.FileSet, *ast.Program, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return nil, nil, err
	}

	fset := token.NewFileSet()
	prog, err := parser.ParseFile(fset, name, src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return fset, prog, err
	}
	return fset, prog, nil
}

// printProgram pretty-prints prog to stdio.Stdout, using nodeFmt (empty
// means the Printer's "%v" default).
func printProgram(stdio mainer.Stdio, fset *token.FileSet, prog *ast.Program, nodeFmt string) error {
	printer := ast.Printer{Output: stdio.Stdout, Fset: fset, NodeFmt: nodeFmt}
	if err := printer.Print(prog); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
