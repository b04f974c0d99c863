package irgen

import (
	"os"
	"path/filepath"

	"github.com/mna/gloin/lang/ast"
	"github.com/mna/gloin/lang/parser"
	"github.com/mna/gloin/lang/resolver"
	"github.com/mna/gloin/lang/token"
)

// lowerImports resolves and re-parses each import: Local imports re-parse
// "<path>.src" next to the importer's own directory; External imports
// re-parse "includes/<name>.src" rooted at the directory of the file the
// compiler was originally invoked on, regardless of which file currently
// holds the import. Std imports are no-ops: their builtins are already
// registered by registerBuiltins.
func (lo *Lowerer) lowerImports(imports []*ast.Import) {
	for _, im := range imports {
		switch im.Kind {
		case ast.Std:
			continue
		case ast.Local:
			lo.lowerImportFile(im.Start, filepath.Join(lo.curDir, im.Path+".src"))
		case ast.External:
			lo.lowerImportFile(im.Start, filepath.Join(lo.rootDir, "includes", im.Path+".src"))
		}
	}
}

// lowerImportFile re-parses, re-resolves and lowers the file at path into
// the current module, skipping files already imported once (diamond
// imports must not redeclare the same symbols twice).
func (lo *Lowerer) lowerImportFile(pos token.Pos, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if lo.imported == nil {
		lo.imported = make(map[string]bool)
	}
	if lo.imported[abs] {
		return
	}
	lo.imported[abs] = true

	src, err := os.ReadFile(abs)
	if err != nil {
		lo.errorf(pos, "cannot read imported file %q: %s", abs, err)
	}

	prog, err := parser.ParseFile(lo.fs, abs, src)
	if err != nil {
		lo.errorf(pos, "%s", err)
	}
	if err := resolver.ResolveProgram(lo.fs, abs, prog, lo.reg); err != nil {
		lo.errorf(pos, "%s", err)
	}

	prevFile, prevDir := lo.file, lo.curDir
	lo.file = lo.fs.File(prog.Start)
	lo.curDir = filepath.Dir(abs)

	lo.lowerImports(prog.Imports)
	lo.declareDecls(prog.Decls)
	lo.lowerDecls(prog.Decls)

	lo.file, lo.curDir = prevFile, prevDir
}
