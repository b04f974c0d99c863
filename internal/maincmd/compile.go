package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/irgen"
	"github.com/mna/gloin/lang/resolver"
	"github.com/mna/gloin/lang/types"

	"github.com/mna/gloin/internal/project"
)

// Compile runs `gloin <file.src> [flags] [<out>]`: the full pipeline
// (lexer, parser, resolver, IR lowerer) and, absent --ast/--parse-only,
// writes the lowered module's textual IR to the output path. That textual
// dump is the one concrete artifact this compiler produces on its own;
// object-file emission and linking are out of scope.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		err := fmt.Errorf("compile: a source file is required")
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	in := args[0]
	out := c.Output
	if out == "" && len(args) > 1 {
		out = args[1]
	}
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in))
	}

	fset, prog, err := parseFile(stdio, in)
	if err != nil {
		return err
	}

	warnUnlistedImports(stdio, in, prog)

	reg := types.NewRegistry()
	if err := resolver.ResolveProgram(fset, in, prog, reg); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if c.Ast {
		if perr := printProgram(stdio, fset, prog, "%#v"); perr != nil {
			return perr
		}
		mod, lerr := irgen.LowerProgram(fset, in, prog, reg)
		if mod != nil {
			fmt.Fprint(stdio.Stdout, mod.String())
		}
		// --ast/--parse-only stops before writing any output, whether or not
		// lowering itself succeeded.
		return lerr
	}

	mod, err := irgen.LowerProgram(fset, in, prog, reg)
	if c.Debug {
		if perr := printProgram(stdio, fset, prog, "%#v"); perr != nil {
			return perr
		}
		if mod != nil {
			fmt.Fprint(stdio.Stdout, mod.String())
		}
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if werr := os.WriteFile(out, []byte(mod.String()), 0o644); werr != nil {
		fmt.Fprintln(stdio.Stderr, werr)
		return werr
	}
	return nil
}

// warnUnlistedImports checks the root file's External imports against the
// project manifest next to it, printing a warning (never failing) for
// every external name the manifest does not list.
func warnUnlistedImports(stdio mainer.Stdio, sourcePath string, prog *ast.Program) {
	var externals []string
	for _, im := range prog.Imports {
		if im.Kind == ast.External {
			externals = append(externals, im.Path)
		}
	}
	if len(externals) == 0 {
		return
	}
	manifestPath := filepath.Join(filepath.Dir(sourcePath), "project.toml")
	project.WarnUnlistedExternal(stdio.Stderr, manifestPath, externals)
}
