package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/gloin/lang/irgen"
	"github.com/mna/gloin/lang/resolver"
	"github.com/mna/gloin/lang/types"
)

// Lower runs the full front end (lexer, parser, resolver) and the IR
// lowerer on each file, printing the resulting *ir.Module's textual form.
func (c *Cmd) Lower(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return LowerFiles(ctx, stdio, args...)
}

func LowerFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := lowerAndPrint(stdio, name); err != nil {
			return err
		}
	}
	return nil
}

func lowerAndPrint(stdio mainer.Stdio, name string) error {
	fset, prog, err := parseFile(stdio, name)
	if err != nil {
		return err
	}

	reg := types.NewRegistry()
	if err := resolver.ResolveProgram(fset, name, prog, reg); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	mod, err := irgen.LowerProgram(fset, name, prog, reg)
	if mod != nil {
		fmt.Fprint(stdio.Stdout, mod.String())
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
