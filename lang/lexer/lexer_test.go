package lexer_test

import (
	"testing"

	"github.com/mna/gloin/lang/lexer"
	"github.com/mna/gloin/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, string) {
	t.Helper()

	fset := token.NewFileSet()
	file := fset.AddFile("test.src", -1, len(src))

	var errs lexer.ErrorList
	var l lexer.Lexer
	l.Init(file, []byte(src), errs.Add)

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := l.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	var errStr string
	if err := errs.Err(); err != nil {
		errStr = err.Error()
	}
	return toks, vals, errStr
}

func errString(t *testing.T, src string) string {
	t.Helper()
	_, _, errs := scanAll(t, src)
	return errs
}

func TestScanKeywordsAndIdent(t *testing.T) {
	toks, _, errs := scanAll(t, "def mut x_1")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.DEF, token.MUT, token.IDENT, token.EOF}, toks)
}

func TestScanNewlineIsToken(t *testing.T) {
	toks, _, errs := scanAll(t, "x\ny")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}, toks)
}

func TestScanLineComment(t *testing.T) {
	toks, _, errs := scanAll(t, "x // a comment\ny")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}, toks)
}

func TestScanNumbers(t *testing.T) {
	toks, vals, errs := scanAll(t, "123 1.5")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.EOF}, toks)
	assert.EqualValues(t, 123, vals[0].Int)
	assert.InDelta(t, 1.5, vals[1].Float, 0.0001)
}

func TestScanString(t *testing.T) {
	toks, vals, errs := scanAll(t, `"hi there"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	assert.Equal(t, "hi there", vals[0].String)
}

func TestScanCompoundPunctuation(t *testing.T) {
	toks, _, errs := scanAll(t, ":: -> => == != <= >=")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{
		token.COLONCOLON, token.ARROW, token.FATARROW,
		token.EQL, token.NEQ, token.LE, token.GE, token.EOF,
	}, toks)
}

func TestScanUnderscoreWildcard(t *testing.T) {
	toks, _, errs := scanAll(t, "_ _foo")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.UNDERSCORE, token.IDENT, token.EOF}, toks)
}

func TestScanIllegalCharacterStopsAtFirstError(t *testing.T) {
	toks, _, errs := scanAll(t, "x ` y")
	require.NotEmpty(t, errs)
	// the offending byte is returned as ILLEGAL, and the first error
	// aborts: everything after it is EOF
	require.True(t, len(toks) >= 3)
	assert.Equal(t, token.IDENT, toks[0])
	assert.Equal(t, token.ILLEGAL, toks[1])
	for _, tok := range toks[2:] {
		assert.Equal(t, token.EOF, tok)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	errs := errString(t, `"unterminated`)
	assert.Contains(t, errs, "not terminated")
}

func TestScanHashbangAndBOM(t *testing.T) {
	src := "\xEF\xBB\xBF#!/usr/bin/env gloin\ndef x"
	toks, _, errs := scanAll(t, src)
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.DEF, token.IDENT, token.EOF}, toks)
}
