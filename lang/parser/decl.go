package parser

import (
	"strings"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
)

// parseIdentName expects an IDENT token and returns its text and position.
func (p *parser) parseIdentName() (string, token.Pos) {
	pos := p.val.Pos
	name := p.val.Raw
	p.expect(token.IDENT)
	return name, pos
}

// parseImport parses `"import" string`, stripping and classifying the
// path's leading sigil: "@" (Std), "#" (External), "./" (Local).
func (p *parser) parseImport() *ast.Import {
	start := p.expect(token.IMPORT)
	lit := p.val.String
	p.expect(token.STRING)

	kind, path := classifyImportPath(lit)
	return &ast.Import{Kind: kind, Path: path, Start: start, EndPos: p.val.Pos}
}

func classifyImportPath(lit string) (ast.ImportKind, string) {
	switch {
	case strings.HasPrefix(lit, "@"):
		return ast.Std, lit[1:]
	case strings.HasPrefix(lit, "#"):
		return ast.External, lit[1:]
	case strings.HasPrefix(lit, "./"):
		return ast.Local, lit[2:]
	default:
		return ast.Local, lit
	}
}

// parseDecl parses a top-level "def"-introduced declaration: a var decl, a
// struct, an enum, or a function.
func (p *parser) parseDecl() ast.Decl {
	start := p.expect(token.DEF)

	switch p.tok {
	case token.STRUCT:
		return p.parseStruct(start)
	case token.ENUM:
		return p.parseEnum(start)
	case token.CONST, token.MUT:
		return p.parseVarDecl(start)
	case token.IDENT:
		name, namePos := p.parseIdentName()
		if p.tok == token.COLON {
			return p.finishVarDecl(start, ast.Immutable, name, namePos)
		}
		return p.finishFunction(start, name)
	default:
		p.errorExpected(p.val.Pos, token.STRUCT, token.ENUM, token.CONST, token.MUT, token.IDENT)
		panic(errPanicMode)
	}
}

func (p *parser) parseVarDecl(start token.Pos) *ast.VarDecl {
	mut := ast.Immutable
	switch p.tok {
	case token.CONST:
		mut = ast.ConstMut
		p.advance()
	case token.MUT:
		mut = ast.Mutable
		p.advance()
	}
	name, namePos := p.parseIdentName()
	return p.finishVarDecl(start, mut, name, namePos)
}

func (p *parser) finishVarDecl(start token.Pos, mut ast.Mutability, name string, _ token.Pos) *ast.VarDecl {
	p.expect(token.COLON)
	ty := p.parseType()
	p.expect(token.EQ)
	init := p.parseExpr()
	p.expect(token.SEMI)
	return &ast.VarDecl{Name: name, Ty: ty, Init: init, Mutability: mut, Start: start, EndPos: p.val.Pos}
}

func (p *parser) parseStruct(start token.Pos) *ast.Struct {
	p.expect(token.STRUCT)
	name, _ := p.parseIdentName()
	p.expect(token.LBRACE)

	s := &ast.Struct{Name: name, Start: start}
	p.skipNewlines()
	for p.tok != token.RBRACE {
		switch p.tok {
		case token.PUB, token.PRIV:
			s.Methods = append(s.Methods, p.parseMethod())
		default:
			s.Fields = append(s.Fields, p.parseStructField())
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	s.EndPos = p.val.Pos
	return s
}

func (p *parser) parseStructField() *ast.StructField {
	start := p.val.Pos
	name, _ := p.parseIdentName()
	p.expect(token.COLON)
	ty := p.parseType()
	p.expect(token.SEMI)
	return &ast.StructField{Name: name, Ty: ty, Start: start, EndPos: p.val.Pos}
}

func (p *parser) parseMethod() *ast.StructMethod {
	start := p.val.Pos
	vis := ast.Private
	if p.tok == token.PUB {
		vis = ast.Public
	}
	p.advance()

	name, _ := p.parseIdentName()
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)

	retTy := "void"
	if p.tok == token.ARROW {
		p.advance()
		retTy = p.parseType()
	}
	body := p.parseBlock()
	return &ast.StructMethod{Name: name, RetTy: retTy, Params: params, Body: body, Visibility: vis, Start: start, EndPos: p.val.Pos}
}

func (p *parser) parseEnum(start token.Pos) *ast.Enum {
	p.expect(token.ENUM)
	name, _ := p.parseIdentName()
	p.expect(token.LBRACE)

	e := &ast.Enum{Name: name, Start: start}
	p.skipNewlines()
	for p.tok != token.RBRACE {
		vStart := p.val.Pos
		vName, _ := p.parseIdentName()
		e.Variants = append(e.Variants, &ast.EnumVariant{Name: vName, Start: vStart, EndPos: p.val.Pos})
		if p.tok == token.COMMA {
			p.advance()
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	e.EndPos = p.val.Pos
	return e
}

func (p *parser) finishFunction(start token.Pos, name string) *ast.Function {
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)
	p.expect(token.ARROW)
	retTy := p.parseType()
	body := p.parseBlock()
	return &ast.Function{Name: name, RetTy: retTy, Params: params, Body: body, Start: start, EndPos: p.val.Pos}
}

func (p *parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.tok == token.RPAREN {
		return params
	}
	for {
		start := p.val.Pos
		name, _ := p.parseIdentName()
		p.expect(token.COLON)
		ty := p.parseType()
		params = append(params, &ast.Param{Name: name, Ty: ty, Start: start, EndPos: p.val.Pos})
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	return params
}

// parseType parses `"*"? (primitive | IDENT)`.
func (p *parser) parseType() string {
	prefix := ""
	if p.tok == token.STAR {
		prefix = "*"
		p.advance()
	}
	if p.tok.IsBuiltinType() {
		name := p.tok.String()
		p.advance()
		return prefix + name
	}
	if p.tok == token.IDENT {
		name := p.val.Raw
		p.advance()
		return prefix + name
	}
	p.errorExpected(p.val.Pos, token.IDENT)
	panic(errPanicMode)
}
