package token_test

import (
	"fmt"
	"testing"

	"github.com/mna/gloin/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	cases := []struct {
		tok  token.Token
		want string
	}{
		{token.ILLEGAL, "illegal token"},
		{token.EOF, "end of file"},
		{token.IDENT, "identifier"},
		{token.DEF, "def"},
		{token.ARROW, "->"},
		{token.I32, "i32"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.tok.String())
	}
}

func TestTokenGoString(t *testing.T) {
	assert.Equal(t, "'->'", fmt.Sprintf("%#v", token.ARROW))
	assert.Equal(t, "'=='", fmt.Sprintf("%#v", token.EQL))
	assert.Equal(t, "def", fmt.Sprintf("%#v", token.DEF))
	assert.Equal(t, "identifier", fmt.Sprintf("%#v", token.IDENT))
}

func TestLookupKw(t *testing.T) {
	cases := []struct {
		lit  string
		want token.Token
	}{
		{"def", token.DEF},
		{"struct", token.STRUCT},
		{"unless", token.UNLESS},
		{"match", token.MATCH},
		{"i64", token.I64},
		{"true", token.TRUE},
		{"notakeyword", token.IDENT},
		{"", token.IDENT},
	}
	for _, c := range cases {
		require.Equal(t, c.want, token.LookupKw(c.lit), c.lit)
	}
}

func TestTokenPredicates(t *testing.T) {
	assert.True(t, token.DEF.IsKeyword())
	assert.True(t, token.I32.IsKeyword())
	assert.True(t, token.I32.IsBuiltinType())
	assert.False(t, token.DEF.IsBuiltinType())
	assert.False(t, token.IDENT.IsKeyword())

	assert.True(t, token.EQL.IsComparison())
	assert.True(t, token.LE.IsComparison())
	assert.False(t, token.PLUS.IsComparison())
}
