// Package lexer implements a single-pass, one-character lookahead
// byte-stream tokenizer: an advance/peek/Init skeleton with BOM and
// hashbang skipping and go/scanner error aliasing, targeting a token set
// with no string escapes, no long strings, and significant newlines.
package lexer

import (
	"bytes"
	"errors"
	"fmt"
	goscanner "go/scanner"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mna/gloin/lang/token"
)

// Error and ErrorList are aliased directly from the standard library's
// go/scanner package.
type (
	Error     = goscanner.Error
	ErrorList = goscanner.ErrorList
)

// PrintError is re-exported from go/scanner for convenience.
var PrintError = goscanner.PrintError

// Lexer tokenizes a single source file.
//
// There is no error recovery: Lexer stops at the first error. Once an
// error has been recorded, every subsequent call to Scan returns EOF.
type Lexer struct {
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	cur         rune
	off         int
	roff        int
	invalidByte byte
	failed      bool
}

var (
	bom      = [3]byte{0xEF, 0xBB, 0xBF}
	hashBang = [2]byte{'#', '!'}
)

// Init initializes the lexer to tokenize a new file. It panics if the file
// size does not match len(src).
func (s *Lexer) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.failed = false

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	if len(src)-s.roff >= len(hashBang) && bytes.Equal(src[s.roff:s.roff+len(hashBang)], hashBang[:]) {
		for s.cur != '\n' && s.cur != -1 {
			s.advance()
		}
	}
	s.advance()
}

func (s *Lexer) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Lexer) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.src[s.off] == '\n' {
		s.file.AddLine(s.off + 1)
	}

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Lexer) error(off int, msg string) {
	s.failed = true
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Lexer) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Lexer) advanceIf(b byte) bool {
	if s.cur == rune(b) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token. After the first lexical error, Scan always
// returns token.EOF, per the "first error aborts" rule.
func (s *Lexer) Scan(val *token.Value) (tok token.Token) {
	if s.failed {
		return token.EOF
	}

	s.skipSpacesAndComments()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case cur == '\n':
		s.advance()
		tok = token.NEWLINE
		*val = token.Value{Raw: "\n", Pos: pos}

	case isLetter(cur):
		lit := s.ident()
		if lit == "_" {
			tok = token.UNDERSCORE
		} else {
			tok = token.LookupKw(lit)
		}
		*val = token.Value{Raw: lit, Pos: pos}

	case isDigit(cur):
		var lit string
		tok, lit = s.number(start)
		*val = token.Value{Raw: lit, Pos: pos}
		if tok == token.INT {
			n, err := strconv.ParseInt(lit, 10, 64)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, "integer literal value out of range")
			}
			val.Int = n
		} else {
			f, err := strconv.ParseFloat(lit, 64)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, "float literal value out of range")
			}
			val.Float = f
		}

	case cur == '"':
		lit, str := s.stringLit()
		tok = token.STRING
		*val = token.Value{Raw: lit, Pos: pos, String: str}

	default:
		s.advance()
		switch cur {
		case -1:
			tok = token.EOF
			*val = token.Value{Raw: "", Pos: pos}
		case '(':
			tok = token.LPAREN
		case ')':
			tok = token.RPAREN
		case '{':
			tok = token.LBRACE
		case '}':
			tok = token.RBRACE
		case ';':
			tok = token.SEMI
		case ',':
			tok = token.COMMA
		case '@':
			tok = token.AT
		case '#':
			tok = token.HASH
		case '+':
			tok = token.PLUS
		case ':':
			tok = token.COLON
			if s.advanceIf(':') {
				tok = token.COLONCOLON
			}
		case '-':
			tok = token.MINUS
			if s.advanceIf('>') {
				tok = token.ARROW
			}
		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQL
			} else if s.advanceIf('>') {
				tok = token.FATARROW
			}
		case '!':
			if s.advanceIf('=') {
				tok = token.NEQ
			} else {
				s.errorf(start, "illegal character %#U", cur)
				tok = token.ILLEGAL
			}
		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}
		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}
		case '*':
			tok = token.STAR
		case '/':
			tok = token.SLASH
		case '.':
			tok = token.DOT
		case '&':
			tok = token.AMP
		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, "illegal character %#U", cur)
			tok = token.ILLEGAL
		}
		switch tok {
		case token.EOF:
			// *val already set above
		case token.ILLEGAL:
			*val = token.Value{Raw: string(cur), Pos: pos}
		default:
			*val = token.Value{Raw: tok.String(), Pos: pos}
		}
	}
	return tok
}

// skipSpacesAndComments skips spaces, tabs, carriage returns and full line
// comments ("// ... \n"). Newlines are NOT skipped here: they are
// significant tokens.
func (s *Lexer) skipSpacesAndComments() {
	for {
		switch {
		case s.cur == ' ' || s.cur == '\t' || s.cur == '\r':
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Lexer) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans a run of digits with an optional single '.' producing a
// float token; otherwise an integer token.
func (s *Lexer) number(start int) (token.Token, string) {
	tok := token.INT
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(rune(s.peek())) {
		tok = token.FLOAT
		s.advance() // consume '.'
		for isDigit(s.cur) {
			s.advance()
		}
	}
	return tok, string(s.src[start:s.off])
}

// stringLit scans a double-quoted string. No escape processing is done:
// every byte other than '"' is taken verbatim between the quotes.
func (s *Lexer) stringLit() (raw, val string) {
	start := s.off
	s.advance() // consume opening quote
	for s.cur != '"' {
		if s.cur == -1 || s.cur == '\n' {
			s.error(start, "string literal not terminated")
			return string(s.src[start:s.off]), string(s.src[start+1 : s.off])
		}
		s.advance()
	}
	valEnd := s.off
	s.advance() // consume closing quote
	return string(s.src[start:s.off]), string(s.src[start+1 : valEnd])
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9'
}
