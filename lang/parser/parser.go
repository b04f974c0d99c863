// Package parser implements a recursive-descent parser with precedence
// climbing for expressions, built around a one-token lookahead buffer and
// an advance/expect/error skeleton. There is no error recovery: the first
// syntax error panics, and a single top-level recover turns it into the
// returned error, ending the parse immediately rather than producing a
// partial tree with bad-node placeholders.
package parser

import (
	"errors"
	"fmt"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/lexer"
	"github.com/mna/gloin/lang/token"
)

// ParseFile parses a single source file into a *ast.Program. The returned
// error, if non-nil, is guaranteed to be a lexer.ErrorList with exactly one
// entry: the first error encountered.
func ParseFile(fset *token.FileSet, filename string, src []byte) (*ast.Program, error) {
	var p parser
	p.init(fset, filename, src)
	return p.parseProgram()
}

var errPanicMode = errors.New("panic mode")

type parser struct {
	lex    lexer.Lexer
	errors lexer.ErrorList
	file   *token.File

	tok token.Token
	val token.Value
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.lex.Init(p.file, src, p.errors.Add)
}

func (p *parser) advance() {
	p.tok = p.lex.Scan(&p.val)
	if len(p.errors) > 0 {
		// a lexical error is already recorded; abort here so it stays the
		// single reported error rather than cascading into a parse error
		// against the EOF the failed lexer now returns
		panic(errPanicMode)
	}
}

// skipNewlines consumes any run of NEWLINE tokens; newlines are only
// significant as statement/declaration separators and are otherwise
// dropped wherever the grammar allows.
func (p *parser) skipNewlines() {
	for p.tok == token.NEWLINE {
		p.advance()
	}
}

// parseProgram is the single top-level entry point: it recovers the one
// panic(errPanicMode) that any parse failure raises and turns it into the
// returned error, per this package's "first error aborts" contract.
func (p *parser) parseProgram() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			prog = nil
			err = p.errors.Err()
		}
	}()

	p.advance() // load the first token, under this recover's protection

	start := p.val.Pos
	pr := &ast.Program{Start: start}

	p.skipNewlines()
	for p.tok == token.IMPORT {
		pr.Imports = append(pr.Imports, p.parseImport())
		p.skipNewlines()
	}
	for p.tok != token.EOF {
		pr.Decls = append(pr.Decls, p.parseDecl())
		p.skipNewlines()
	}
	pr.EndPos = p.val.Pos
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return pr, nil
}

// expect consumes the current token if it is one of toks, returning its
// position; otherwise it records an error and panics with errPanicMode.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, toks...)
	panic(errPanicMode)
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, toks ...token.Token) {
	var want string
	if len(toks) == 1 {
		want = toks[0].GoString()
	} else {
		want = "one of "
		for i, tok := range toks {
			if i > 0 {
				want += ", "
			}
			want += tok.GoString()
		}
	}

	msg := fmt.Sprintf("expected %s, got %s", want, p.tok.GoString())
	if p.val.Raw != "" && p.tok != token.EOF {
		msg = fmt.Sprintf("expected %s, got %q", want, p.val.Raw)
	}
	p.error(pos, msg)
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.error(pos, fmt.Sprintf(format, args...))
	panic(errPanicMode)
}
