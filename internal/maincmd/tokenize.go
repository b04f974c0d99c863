package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/gloin/lang/lexer"
	"github.com/mna/gloin/lang/token"
)

// Tokenize runs the lexer alone on each file and prints every token with
// its source position, in the order it was scanned.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tokenizeFile(stdio, name); err != nil {
			return err
		}
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fset := token.NewFileSet()
	file := fset.AddFile(name, -1, len(src))

	var errs lexer.ErrorList
	var l lexer.Lexer
	l.Init(file, src, errs.Add)

	for {
		var v token.Value
		tok := l.Scan(&v)
		pos := file.Position(v.Pos)
		fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", name, pos.Line, pos.Column, tok)
		if lit := literalOf(tok, v); lit != "" {
			fmt.Fprintf(stdio.Stdout, " %s", lit)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok == token.EOF {
			break
		}
	}

	if err := errs.Err(); err != nil {
		lexer.PrintError(stdio.Stderr, err)
		return err
	}
	return nil
}

func literalOf(tok token.Token, v token.Value) string {
	switch tok {
	case token.IDENT:
		return v.Raw
	case token.INT:
		return fmt.Sprintf("%d", v.Int)
	case token.FLOAT:
		return fmt.Sprintf("%g", v.Float)
	case token.STRING:
		return fmt.Sprintf("%q", v.String)
	default:
		return ""
	}
}
