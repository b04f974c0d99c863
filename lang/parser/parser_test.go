package parser_test

import (
	"testing"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/parser"
	"github.com/mna/gloin/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := parser.ParseFile(fset, "test.src", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "test.src", []byte(src))
	return err
}

func TestParseImports(t *testing.T) {
	prog := mustParse(t, `import "@io"
import "#json"
import "./utils"
`)
	require.Len(t, prog.Imports, 3)
	assert.Equal(t, ast.Std, prog.Imports[0].Kind)
	assert.Equal(t, "io", prog.Imports[0].Path)
	assert.Equal(t, ast.External, prog.Imports[1].Kind)
	assert.Equal(t, "json", prog.Imports[1].Path)
	assert.Equal(t, ast.Local, prog.Imports[2].Kind)
	assert.Equal(t, "utils", prog.Imports[2].Path)
}

func TestParseFunctionDecl(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 { return 0; }`)
	require.Len(t, prog.Decls, 1)
	fn, ok := prog.Decls[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "i32", fn.RetTy)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	lit, ok := ret.Value.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "0", lit.Text)
}

func TestParseGlobalVarDecl(t *testing.T) {
	prog := mustParse(t, `def const PI: i32 = 3;`)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "PI", vd.Name)
	assert.Equal(t, ast.ConstMut, vd.Mutability)
}

func TestParseStructWithFieldsAndMethods(t *testing.T) {
	prog := mustParse(t, `def struct P {
		x: i32;
		y: i32;
		pub dist() -> i32 { return x; }
	}`)
	s, ok := prog.Decls[0].(*ast.Struct)
	require.True(t, ok)
	assert.Equal(t, "P", s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "x", s.Fields[0].Name)
	require.Len(t, s.Methods, 1)
	assert.Equal(t, ast.Public, s.Methods[0].Visibility)
}

func TestParseEnum(t *testing.T) {
	prog := mustParse(t, `def enum Color { Red, Green, Blue }`)
	e, ok := prog.Decls[0].(*ast.Enum)
	require.True(t, ok)
	require.Len(t, e.Variants, 3)
	assert.Equal(t, "Blue", e.Variants[2].Name)
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 { return 1 + 2 * 3 == 7; }`)
	fn := prog.Decls[0].(*ast.Function)
	ret := fn.Body.Stmts[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.EQL, top.Op)
	lhs, ok := top.Left.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, lhs.Op)
	rhs, ok := lhs.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.STAR, rhs.Op)
}

func TestParseAssignVsExprStmt(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		def mut i: i32 = 0;
		i = i + 1;
		std.println("hi");
		return i;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	require.Len(t, fn.Body.Stmts, 4)

	assign, ok := fn.Body.Stmts[1].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "i", assign.TargetName)

	es, ok := fn.Body.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "std.println", call.CalleeName)
}

func TestParsePointerDerefAndAssign(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		def mut v: i32 = 7;
		def p: *i32 = &v;
		*p = 42;
		return v;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	require.Len(t, fn.Body.Stmts, 4)

	pdecl := fn.Body.Stmts[1].(*ast.VarDecl)
	assert.Equal(t, "*i32", pdecl.Ty)
	addr, ok := pdecl.Init.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.AddressOf, addr.Op)

	passign, ok := fn.Body.Stmts[2].(*ast.PtrAssign)
	require.True(t, ok)
	deref, ok := passign.DerefTarget.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "p", deref.Name)
}

func TestParseStructLiteral(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		def mut p: P = P { x: 1, y: 2 };
		return p.x + p.y;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	vd := fn.Body.Stmts[0].(*ast.VarDecl)
	sl, ok := vd.Init.(*ast.StructLiteral)
	require.True(t, ok)
	assert.Equal(t, "P", sl.TypeName)
	require.Len(t, sl.FieldPairs, 2)

	ret := fn.Body.Stmts[1].(*ast.Return)
	bop := ret.Value.(*ast.BinaryOp)
	lhs := bop.Left.(*ast.FieldAccess)
	assert.Equal(t, "x", lhs.FieldName)
}

func TestParseLowercaseIdentFollowedByBraceIsNotStructLiteral(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		if cond {
			return 1;
		}
		return 0;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	ifStmt, ok := fn.Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	ident, ok := ifStmt.Cond.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "cond", ident.Name)
}

func TestParseIfElseIfElse(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		if a == 1 {
			return 1;
		} else if a == 2 {
			return 2;
		} else {
			return 0;
		}
	}`)
	fn := prog.Decls[0].(*ast.Function)
	top := fn.Body.Stmts[0].(*ast.If)
	elseIf, ok := top.Else.(*ast.If)
	require.True(t, ok)
	_, ok = elseIf.Else.(*ast.Block)
	require.True(t, ok)
}

func TestParseUnless(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		unless ok {
			return 1;
		}
		return 0;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	_, ok := fn.Body.Stmts[0].(*ast.Unless)
	require.True(t, ok)
}

func TestParseWhile(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		while i < 3 {
			i = i + 1;
		}
		return i;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	w, ok := fn.Body.Stmts[0].(*ast.While)
	require.True(t, ok)
	require.Len(t, w.Body.Stmts, 1)
}

func TestParseForWithOptionalClauses(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		def mut i: i32 = 0;
		for ; i < 3; i = i + 1 {}
		return i;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	f, ok := fn.Body.Stmts[1].(*ast.For)
	require.True(t, ok)
	assert.Nil(t, f.Init)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Update)
}

func TestParseSwitchWithDefault(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		switch x {
		case 1:
			return 1;
		case 2:
			return 2;
		default:
			return 0;
		}
	}`)
	fn := prog.Decls[0].(*ast.Function)
	sw, ok := fn.Body.Stmts[0].(*ast.Switch)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	require.NotNil(t, sw.Default)
}

func TestParseMatchWithWildcard(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		match x {
			1 => { return 1; }
			_ => { return 0; }
		}
	}`)
	fn := prog.Decls[0].(*ast.Function)
	m, ok := fn.Body.Stmts[0].(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Cases, 2)
	assert.False(t, m.Cases[0].Wildcard)
	assert.True(t, m.Cases[1].Wildcard)
}

func TestParseBreakContinue(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		while true {
			break;
			continue;
		}
		return 0;
	}`)
	fn := prog.Decls[0].(*ast.Function)
	w := fn.Body.Stmts[0].(*ast.While)
	require.Len(t, w.Body.Stmts, 2)
	_, ok := w.Body.Stmts[0].(*ast.Break)
	require.True(t, ok)
	_, ok = w.Body.Stmts[1].(*ast.Continue)
	require.True(t, ok)
}

func TestParseMethodCall(t *testing.T) {
	prog := mustParse(t, `def main() -> i32 {
		return p.dist(1, 2);
	}`)
	fn := prog.Decls[0].(*ast.Function)
	ret := fn.Body.Stmts[0].(*ast.Return)
	mc, ok := ret.Value.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "dist", mc.MethodName)
	require.Len(t, mc.Args, 2)
}

func TestParseErrorOnMismatch(t *testing.T) {
	err := parseErr(t, `def main() -> i32 { return 0 }`)
	require.Error(t, err)
}

func TestParseErrorAbortsAtFirst(t *testing.T) {
	// Two separate malformed constructs; only the first should be reported.
	err := parseErr(t, `def main( -> i32 { } def other( -> i32 { }`)
	require.Error(t, err)
}

// S1-S6 end-to-end scenarios from the design's testable-properties table,
// exercised here at the parse level (the full pipeline is covered by
// resolver/irgen regression tests).

func TestScenarioS1HelloWorld(t *testing.T) {
	mustParse(t, `def main() -> i32 { std.println("hi"); return 0; }`)
}

func TestScenarioS2Factorial(t *testing.T) {
	mustParse(t, `def fact(n: i32) -> i32 { if n <= 1 { return 1; } return n * fact(n - 1); }`)
}

func TestScenarioS3ForLoopCounter(t *testing.T) {
	mustParse(t, `def main() -> i32 { def mut i: i32 = 0; for ; i < 3; i = i + 1 {} return i; }`)
}

func TestScenarioS4BareTopLevelAssignIsAParseError(t *testing.T) {
	// The grammar only allows imports and "def"-declarations at program
	// scope, so a bare assignment there is rejected by the parser itself;
	// the immutability violation described in this scenario is observed one
	// layer up, as the earlier of the two possible errors.
	err := parseErr(t, `def const PI: i32 = 3; PI = 4;`)
	require.Error(t, err)
}

func TestScenarioS5StructFieldSum(t *testing.T) {
	mustParse(t, `def struct P { x: i32; y: i32; } def main() -> i32 { def mut p: P = P { x: 1, y: 2 }; return p.x + p.y; }`)
}

func TestScenarioS6PointerRoundtrip(t *testing.T) {
	mustParse(t, `def main() -> i32 { def mut v: i32 = 7; def p: *i32 = &v; *p = 42; return v; }`)
}
