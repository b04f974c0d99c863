package irgen

import (
	"github.com/llir/llvm/ir/value"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/types"
)

// slot is one entry of the lowerer-local symbol table: the storage cell of
// a variable or a spilled parameter. ptr is the cell's address (a pointer
// one level deeper than ty): an alloca for locals and parameters, an
// *ir.Global for top-level variable declarations.
type slot struct {
	ptr value.Value
	ty  types.TypeKind
	mut ast.Mutability
}
