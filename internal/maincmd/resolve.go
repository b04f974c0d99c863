package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/gloin/lang/resolver"
	"github.com/mna/gloin/lang/types"
)

// Resolve runs the lexer, parser and resolver on each file and prints the
// AST annotated with resolved types.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(ctx, stdio, args...)
}

func ResolveFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := resolveAndPrint(stdio, name); err != nil {
			return err
		}
	}
	return nil
}

func resolveAndPrint(stdio mainer.Stdio, name string) error {
	fset, prog, err := parseFile(stdio, name)
	if err != nil {
		// cannot resolve an AST if parsing failed
		return err
	}

	reg := types.NewRegistry()
	if err := resolver.ResolveProgram(fset, name, prog, reg); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	return printProgram(stdio, fset, prog, "%#v")
}
