package parser

import (
	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
)

// parseExpr parses `expr := cmp`, the lowest-precedence production.
func (p *parser) parseExpr() ast.Expr {
	return p.parseCmp()
}

// continueExpr resumes precedence climbing from an already-parsed operand
// at the primary level, threading it up through mul, add and cmp. Used by
// statement parsing that has already consumed a leading token (identifier
// or a "*"-prefixed dereference) before it knew whether the token started
// an assignment or an expression.
func (p *parser) continueExpr(left ast.Expr) ast.Expr {
	left = p.continueMul(left)
	left = p.continueAdd(left)
	left = p.continueCmp(left)
	return left
}

func (p *parser) parseCmp() ast.Expr {
	left := p.parseAdd()
	return p.continueCmp(left)
}

func (p *parser) continueCmp(left ast.Expr) ast.Expr {
	for p.tok.IsComparison() {
		op := p.tok
		start, _ := left.Span()
		p.advance()
		right := p.parseAdd()
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Start: start, EndPos: p.val.Pos}
	}
	return left
}

func (p *parser) parseAdd() ast.Expr {
	left := p.parseMul()
	return p.continueAdd(left)
}

func (p *parser) continueAdd(left ast.Expr) ast.Expr {
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op := p.tok
		start, _ := left.Span()
		p.advance()
		right := p.parseMul()
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Start: start, EndPos: p.val.Pos}
	}
	return left
}

func (p *parser) parseMul() ast.Expr {
	left := p.parsePrimary()
	return p.continueMul(left)
}

func (p *parser) continueMul(left ast.Expr) ast.Expr {
	for p.tok == token.STAR || p.tok == token.SLASH {
		op := p.tok
		start, _ := left.Span()
		p.advance()
		right := p.parsePrimary()
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Start: start, EndPos: p.val.Pos}
	}
	return left
}

// parseUnary parses the unary `&`/`*` forms; it is also reused to parse
// the operand of a "*"-led expression statement (see parseExprStmt).
func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.AMP:
		start := p.val.Pos
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: ast.AddressOf, Operand: operand, Start: start, EndPos: p.val.Pos}
	case token.STAR:
		start := p.val.Pos
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: ast.Dereference, Operand: operand, Start: start, EndPos: p.val.Pos}
	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses `primary := "&" primary | "*" primary | "(" expr ")"
// | literal | IDENT suffix?`.
func (p *parser) parsePrimary() ast.Expr {
	start := p.val.Pos

	switch p.tok {
	case token.AMP:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: ast.AddressOf, Operand: operand, Start: start, EndPos: p.val.Pos}
	case token.STAR:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: ast.Dereference, Operand: operand, Start: start, EndPos: p.val.Pos}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return inner
	case token.INT:
		lit := p.val.Raw
		p.advance()
		return &ast.Literal{Text: lit, Kind: ast.IntLit, Start: start, EndPos: p.val.Pos}
	case token.FLOAT:
		lit := p.val.Raw
		p.advance()
		return &ast.Literal{Text: lit, Kind: ast.FloatLit, Start: start, EndPos: p.val.Pos}
	case token.STRING:
		lit := p.val.String
		p.advance()
		return &ast.Literal{Text: lit, Kind: ast.StringLit, Start: start, EndPos: p.val.Pos}
	case token.TRUE:
		p.advance()
		return &ast.Literal{Text: "true", Kind: ast.BoolLit, Start: start, EndPos: p.val.Pos}
	case token.FALSE:
		p.advance()
		return &ast.Literal{Text: "false", Kind: ast.BoolLit, Start: start, EndPos: p.val.Pos}
	case token.NULL:
		p.advance()
		return &ast.Literal{Text: "null", Kind: ast.NullLit, Start: start, EndPos: p.val.Pos}
	case token.IDENT:
		name, pos := p.parseIdentName()
		return p.finishExprFromIdent(name, pos)
	default:
		p.errorExpected(start, token.LPAREN, token.INT, token.FLOAT, token.STRING, token.IDENT)
		panic(errPanicMode)
	}
}

// finishExprFromIdent parses the optional suffix that follows an
// already-consumed identifier: a qualified builtin call ("std.IDENT(...)"),
// a field access or method call (".field" / ".method(...)"), a function
// call ("(...)"), or a record literal ("{...}", only when name starts with
// an uppercase letter). With no suffix, it is a plain identifier reference.
func (p *parser) finishExprFromIdent(name string, pos token.Pos) ast.Expr {
	switch p.tok {
	case token.LBRACE:
		if isUpperFirst(name) {
			return p.parseStructLiteral(name, pos)
		}
		return &ast.Identifier{Name: name, Start: pos, EndPos: p.val.Pos}

	case token.LPAREN:
		args := p.parseArgs()
		return &ast.Call{CalleeName: name, Args: args, Start: pos, EndPos: p.val.Pos}

	case token.DOT:
		p.advance()
		member, _ := p.parseIdentName()

		if name == "std" {
			args := p.parseArgs()
			return &ast.Call{CalleeName: "std." + member, Args: args, Start: pos, EndPos: p.val.Pos}
		}

		obj := ast.Expr(&ast.Identifier{Name: name, Start: pos})
		if p.tok == token.LPAREN {
			args := p.parseArgs()
			return &ast.MethodCall{Object: obj, MethodName: member, Args: args, Start: pos, EndPos: p.val.Pos}
		}
		return &ast.FieldAccess{Object: obj, FieldName: member, Start: pos, EndPos: p.val.Pos}

	default:
		return &ast.Identifier{Name: name, Start: pos, EndPos: pos + token.Pos(len(name))}
	}
}

// parseArgs parses a parenthesized, comma-separated argument list,
// including the surrounding parentheses.
func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if p.tok != token.RPAREN {
		for {
			args = append(args, p.parseExpr())
			if p.tok != token.COMMA {
				break
			}
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return args
}

// parseStructLiteral parses `"{" (IDENT ":" expr ",")* "}"` after the
// leading type name has already been consumed.
func (p *parser) parseStructLiteral(typeName string, start token.Pos) *ast.StructLiteral {
	p.expect(token.LBRACE)
	sl := &ast.StructLiteral{TypeName: typeName, Start: start}
	p.skipNewlines()
	for p.tok != token.RBRACE {
		fStart := p.val.Pos
		fname, _ := p.parseIdentName()
		p.expect(token.COLON)
		val := p.parseExpr()
		sl.FieldPairs = append(sl.FieldPairs, &ast.StructLiteralField{Name: fname, Value: val, Start: fStart, EndPos: p.val.Pos})
		if p.tok == token.COMMA {
			p.advance()
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	sl.EndPos = p.val.Pos
	return sl
}

func isUpperFirst(s string) bool {
	if s == "" {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'Z'
}
