package ast_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWidthAndFlags(t *testing.T) {
	n := &ast.Identifier{Name: "x"}
	assert.Equal(t, "ident x", fmt.Sprintf("%v", n))
	assert.Equal(t, "ident x  ", fmt.Sprintf("%-9v", n))
	assert.Equal(t, "  ident x", fmt.Sprintf("%9v", n))
}

func TestFormatCounts(t *testing.T) {
	prog := &ast.Program{
		Imports: []*ast.Import{{Kind: ast.Std, Path: "io"}},
		Decls:   []ast.Decl{&ast.VarDecl{Name: "x"}},
	}
	assert.Equal(t, "program", fmt.Sprintf("%v", prog))
	assert.Equal(t, "program {decls=1, imports=1}", fmt.Sprintf("%#v", prog))
}

func TestWalkVisitsChildren(t *testing.T) {
	fn := &ast.Function{
		Name: "main",
		Params: []*ast.Param{
			{Name: "n", Ty: "i32"},
		},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.Return{Value: &ast.Identifier{Name: "n"}},
			},
		},
	}

	var visited []string
	var v ast.VisitorFunc
	v = ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			visited = append(visited, fmt.Sprintf("%v", n))
		}
		return v
	})
	ast.Walk(v, fn)

	require.Len(t, visited, 5)
	assert.Equal(t, "function main {params=1}", fmt.Sprintf("%#v", fn))
	assert.Contains(t, visited, "param n: i32")
	assert.Contains(t, visited, "ident n")
}

func TestPrinterPrintsPositions(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("test.src", -1, 100)
	start := file.Pos(0)
	end := file.Pos(5)

	n := &ast.Identifier{Name: "x", Start: start, EndPos: end}

	var buf bytes.Buffer
	p := &ast.Printer{Output: &buf, Fset: fset}
	require.NoError(t, p.Print(n))
	assert.Contains(t, buf.String(), "ident x")
	assert.Contains(t, buf.String(), "1:1")
}
