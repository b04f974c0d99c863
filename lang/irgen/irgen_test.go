package irgen_test

import (
	"testing"

	"github.com/mna/gloin/lang/irgen"
	"github.com/mna/gloin/lang/parser"
	"github.com/mna/gloin/lang/resolver"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSrc(t *testing.T, src string) (string, error) {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := parser.ParseFile(fset, "test.src", []byte(src))
	require.NoError(t, err)

	reg := types.NewRegistry()
	require.NoError(t, resolver.ResolveProgram(fset, "test.src", prog, reg))

	mod, err := irgen.LowerProgram(fset, "test.src", prog, reg)
	require.NotNil(t, mod)
	return mod.String(), err
}

// S1: a hello-world main prints through the printf shim and returns 0.
func TestLowerHelloWorldCallsPrintf(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		std.println("hi");
		return 0;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "define i32 @main()")
	assert.Contains(t, ir, "declare i32 @printf")
	assert.Contains(t, ir, `.str.0`)
	assert.Contains(t, ir, "call i32 (i8*, ...) @printf")
	assert.Contains(t, ir, "ret i32 0")
}

// S2: a recursive function lowers as ordinary mutual self-recursion, the
// call resolving against the first pass's predeclared signature.
func TestLowerRecursiveFactorial(t *testing.T) {
	ir, err := lowerSrc(t, `def fact(n: i32) -> i32 {
		if n <= 1 {
			return 1;
		}
		return n * fact(n - 1);
	}
	def main() -> i32 {
		return fact(5);
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "define i32 @fact(i32 %n)")
	assert.Contains(t, ir, "call i32 @fact(")
	assert.Contains(t, ir, "call i32 @fact(i32 5)")
}

// S3: a C-style for loop lowers its three clauses into cond/body/update
// blocks, with continue branching to update rather than cond.
func TestLowerForLoopCountsToThree(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def mut i: i32 = 0;
		def mut n: i32 = 0;
		for ; i < 3; i = i + 1 {
			n = n + 1;
		}
		return n;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "icmp slt i32")
	assert.Contains(t, ir, "br i1")
}

// S4: assigning to an immutable local is a compile-time error, the first
// one encountered aborting lowering per the panic-mode contract.
func TestLowerImmutableAssignIsRejected(t *testing.T) {
	_, err := lowerSrc(t, `def main() -> i32 {
		def const x: i32 = 3;
		x = 4;
		return x;
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

// S4b: a top-level const global lowers to an immutable IR global, and
// reassigning it through ordinary Assign is rejected the same way.
func TestLowerGlobalConstAssignIsRejected(t *testing.T) {
	_, err := lowerSrc(t, `def const PI: i32 = 3;
	def main() -> i32 {
		PI = 4;
		return PI;
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

// S5: struct field access sums to the stored values via GEP+load off the
// literal's own backing alloca.
func TestLowerStructFieldAccessSums(t *testing.T) {
	ir, err := lowerSrc(t, `def struct P { x: i32; y: i32; }
	def main() -> i32 {
		def mut p: P = P { x: 1, y: 2 };
		return p.x + p.y;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "%P = type <{ i32, i32 }>")
	assert.Contains(t, ir, "getelementptr")
}

// S6: a pointer dereference-assignment stores through the pointee address
// directly, independent of the pointer variable's own slot.
func TestLowerPointerDerefAssignYields42(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def mut v: i32 = 7;
		def p: *i32 = &v;
		*p = 42;
		return v;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "store i32 42")
}

func TestLowerMethodCallMangledName(t *testing.T) {
	ir, err := lowerSrc(t, `def struct P {
		x: i32;
		pub getX() -> i32 { return self.x; }
	}
	def main() -> i32 {
		def mut p: P = P { x: 9 };
		return p.getX();
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "define i32 @P_getX(%P* %self)")
	assert.Contains(t, ir, "call i32 @P_getX(")
}

func TestLowerUnknownIdentifierIsRejected(t *testing.T) {
	_, err := lowerSrc(t, `def main() -> i32 { return nope; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown identifier")
}

func TestLowerWhileLoopBreakAndContinue(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def mut i: i32 = 0;
		while i < 10 {
			i = i + 1;
			if i == 3 {
				break;
			}
		}
		return i;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "br label")
}

func TestLowerSwitchDispatchesOnEquality(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def mut x: i32 = 2;
		switch x {
		case 1:
			return 1;
		case 2:
			return 2;
		default:
			return 0;
		}
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "icmp eq i32")
}

// Enum variants are i32 ordinals in declaration order, referenced as
// Enum.Variant and dispatchable through switch like any comparable value.
func TestLowerEnumVariantSwitch(t *testing.T) {
	ir, err := lowerSrc(t, `def enum Color { Red, Green, Blue }
	def main() -> i32 {
		def c: Color = Color.Green;
		switch c {
		case Color.Red:
			return 1;
		case Color.Green:
			return 2;
		default:
			return 0;
		}
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "icmp eq i32")
	assert.Contains(t, ir, "store i32 1") // Green's ordinal
}

// An infinite for loop with no break has no edge into its exit block, so
// the exit block is deleted rather than left behind unterminated.
func TestLowerInfiniteForDropsExitBlock(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		for ; ; {
		}
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "br label")
	assert.NotContains(t, ir, "unreachable")
}

// 128-bit integers exist as storage/arithmetic types but have no printf
// conversion, so printing one is a compile-time error.
func TestLowerPrint128BitIsRejected(t *testing.T) {
	_, err := lowerSrc(t, `def main() -> i32 {
		def x: i128 = 1;
		std.println(x);
		return 0;
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestLowerCastWidensAndNarrows(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def x: i32 = 5;
		def y: i64 = cast(x, "i64");
		return cast(y, "i32");
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "sext i32")
	assert.Contains(t, ir, "trunc i64")
}

// Reassigning a struct literal to a mutable record variable constructs
// into the existing slot instead of storing the literal's own address.
func TestLowerStructLiteralReassignment(t *testing.T) {
	ir, err := lowerSrc(t, `def struct P { x: i32; y: i32; }
	def main() -> i32 {
		def mut p: P = P { x: 1, y: 2 };
		p = P { x: 3, y: 4 };
		return p.x;
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "store i32 3")
	assert.Contains(t, ir, "store i32 4")
}

func TestLowerMatchWildcard(t *testing.T) {
	ir, err := lowerSrc(t, `def main() -> i32 {
		def mut x: i32 = 5;
		match x {
			1 => { return 1; }
			_ => { return 0; }
		}
	}`)
	require.NoError(t, err)
	assert.Contains(t, ir, "icmp eq i32")
}
