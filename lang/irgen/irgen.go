// Package irgen lowers a resolved AST into an in-memory *ir.Module from
// github.com/llir/llvm. It never reimplements IR constructs, only calls
// into ir.NewModule, (*ir.Module).NewFunc, (*ir.Func).NewBlock and the
// (*ir.Block).NewXxx instruction/terminator builders. Object-file emission
// and linking are out of scope; a Lowerer stops at an in-memory *ir.Module.
// No separate IR verification pass is run over the result.
//
// The build-state struct (variables/functions/loop stack plus an
// error flag) pairs a block/CFG builder with its own loop stack, carried
// through a post-order walk of the resolved tree.
package irgen

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dolthub/swiss"
	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/lexer"
	"github.com/mna/gloin/lang/token"
	"github.com/mna/gloin/lang/types"
)

var errPanicMode = errors.New("panic mode")

const maxLoopDepth = 32

// funcInfo records the IR function and the source-level return type for a
// lowered user function or method, so call sites can type call results
// without re-deriving them from the AST.
type funcInfo struct {
	fn    *ir.Func
	retTy types.TypeKind
}

// Lowerer owns the IR module, the symbol table, the function table, the
// loop-context stack and the builtin shim table for one compilation. It
// also tracks the directory of the root compiled file and of whichever
// file is currently being lowered, since External imports resolve
// relative to the root file's directory while Local imports resolve
// relative to the importer's.
type Lowerer struct {
	mod *ir.Module
	reg *types.Registry
	fs  *token.FileSet

	errors   lexer.ErrorList
	hasError bool

	funcs    *swiss.Map[string, *funcInfo]
	builtins map[string]*ir.Func
	structs  map[types.TypeKind]*irtypes.StructType

	scopes []map[string]*slot
	loops  []loopCtx

	curFunc  *ir.Func
	curRetTy types.TypeKind

	file    *token.File // file of the node currently being lowered
	rootDir string
	curDir  string

	imported map[string]bool

	strCount int
	strings  map[string]*ir.Global
	stdin    *ir.Global
}

// HasError reports whether any construct lowered so far produced a static
// diagnostic.
func (lo *Lowerer) HasError() bool { return lo.hasError }

// Module returns the IR module built so far. Valid to call even after a
// failed lowering, for --debug's "print AST and IR, then compile" contract.
func (lo *Lowerer) Module() *ir.Module { return lo.mod }

// LowerProgram lowers a fully resolved *ast.Program, identified by
// filename, into a fresh *ir.Module. The returned error, when non-nil, is a
// lexer.ErrorList with exactly one entry: the first construct the lowerer
// refused. A non-nil module is still returned in that case so callers can
// still render a partial --debug dump.
func LowerProgram(fs *token.FileSet, filename string, prog *ast.Program, reg *types.Registry) (mod *ir.Module, err error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}

	lo := &Lowerer{
		mod:     ir.NewModule(),
		reg:     reg,
		fs:      fs,
		funcs:   swiss.NewMap[string, *funcInfo](16),
		structs: make(map[types.TypeKind]*irtypes.StructType),
		rootDir: filepath.Dir(abs),
		curDir:  filepath.Dir(abs),
	}
	types.SetAsDefault(reg)
	lo.registerBuiltins()

	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			// lowering stopped mid-function: close every block left open so
			// the partial module can still be rendered
			for _, f := range lo.mod.Funcs {
				for _, blk := range f.Blocks {
					if blk.Term == nil {
						blk.NewUnreachable()
					}
				}
			}
			mod = lo.mod
			err = lo.errors.Err()
		}
	}()

	lo.file = fs.File(prog.Start)
	if lo.file == nil {
		lo.file = fs.AddFile(filename, -1, int(prog.EndPos-prog.Start)+1)
	}

	lo.pushScope() // the file-level scope: holds every top-level global VarDecl's slot
	lo.lowerImports(prog.Imports)
	lo.declareDecls(prog.Decls)
	lo.lowerDecls(prog.Decls)

	if err := lo.errors.Err(); err != nil {
		return lo.mod, err
	}
	return lo.mod, nil
}

func (lo *Lowerer) errorf(pos token.Pos, format string, args ...any) {
	lo.hasError = true
	lo.errors.Add(lo.file.Position(pos), fmt.Sprintf(format, args...))
	panic(errPanicMode)
}

func (lo *Lowerer) pushScope() { lo.scopes = append(lo.scopes, make(map[string]*slot)) }
func (lo *Lowerer) popScope()  { lo.scopes = lo.scopes[:len(lo.scopes)-1] }

func (lo *Lowerer) defineLocal(name string, s *slot) {
	lo.scopes[len(lo.scopes)-1][name] = s
}

// lookupLocal searches the scope stack innermost-first.
func (lo *Lowerer) lookupLocal(name string) (*slot, bool) {
	for i := len(lo.scopes) - 1; i >= 0; i-- {
		if s, ok := lo.scopes[i][name]; ok {
			return s, true
		}
	}
	return nil, false
}

type loopCtx struct {
	breakTarget    *ir.Block
	continueTarget *ir.Block
	breaks         int // number of break statements lowered against this loop
}

func (lo *Lowerer) pushLoop(pos token.Pos, brk, cont *ir.Block) {
	if len(lo.loops) >= maxLoopDepth {
		lo.errorf(pos, "loop nesting exceeds the compiler's limit of %d", maxLoopDepth)
	}
	lo.loops = append(lo.loops, loopCtx{breakTarget: brk, continueTarget: cont})
}

func (lo *Lowerer) popLoop() loopCtx {
	lp := lo.loops[len(lo.loops)-1]
	lo.loops = lo.loops[:len(lo.loops)-1]
	return lp
}

func (lo *Lowerer) currentLoop() (*loopCtx, bool) {
	if len(lo.loops) == 0 {
		return nil, false
	}
	return &lo.loops[len(lo.loops)-1], true
}

// terminate appends an unconditional branch to target unless b already
// ends with a terminator (the arm returned, broke or continued on its
// own).
func terminate(b *ir.Block, target *ir.Block) {
	if b.Term == nil {
		b.NewBr(target)
	}
}
