package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/mna/gloin/internal/project"
)

// Init scaffolds main.src, project.toml and includes/ in the chosen
// directory. With no argument, the project is scaffolded in the current
// directory, named after it.
func (c *Cmd) Init(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	name := filepath.Base(abs)

	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if err := project.Scaffold(dir, name); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fmt.Fprintf(stdio.Stdout, "initialized project %q in %s\n", name, dir)
	return nil
}
