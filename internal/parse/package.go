package parse

import (
	"go/ast"
	"path"
	"strconv"
	"strings"

	"github.com/hvlabs/apibind/internal/core"
)

// packageInfo indexes one directory's parsed files for cross-file lookups:
// marker struct declarations, marker method sets, and per-file import tables.
type packageInfo struct {
	dir       string
	files     []*ast.File
	declFiles map[ast.Decl]*ast.File
}

func newPackageInfo(dir string, files []*ast.File) *packageInfo {
	p := &packageInfo{
		dir:       dir,
		files:     files,
		declFiles: map[ast.Decl]*ast.File{},
	}
	for _, f := range files {
		for _, d := range f.Decls {
			p.declFiles[d] = f
		}
	}
	return p
}

// structType looks up a package-level struct type by name.
func (p *packageInfo) structType(name string) (*ast.StructType, bool) {
	for _, f := range p.files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.Name.Name != name {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				return st, ok
			}
		}
	}
	return nil, false
}

// methods returns the exported-or-not method set declared on the named type,
// whether the receiver is a value or a pointer.
func (p *packageInfo) methods(typeName string) map[string]*ast.FuncDecl {
	out := map[string]*ast.FuncDecl{}
	for _, f := range p.files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) != 1 {
				continue
			}
			recv := fd.Recv.List[0].Type
			if star, ok := recv.(*ast.StarExpr); ok {
				recv = star.X
			}
			if id, ok := recv.(*ast.Ident); ok && id.Name == typeName {
				out[fd.Name.Name] = fd
			}
		}
	}
	return out
}

// fileOf returns the file containing a declaration.
func (p *packageInfo) fileOf(decl ast.Decl) *ast.File {
	return p.declFiles[decl]
}

// importsFor walks a type expression and resolves every package qualifier it
// uses against the file's import table. Generated files reproduce signature
// text verbatim, so they need exactly these imports and no others.
func (p *packageInfo) importsFor(f *ast.File, e ast.Expr) []core.Import {
	if f == nil {
		return nil
	}
	var out []core.Import
	ast.Inspect(e, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		qual, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if imp, ok := lookupImport(f, qual.Name); ok {
			out = append(out, imp)
		}
		return true
	})
	return out
}

// lookupImport finds the import a qualifier refers to in one file.
func lookupImport(f *ast.File, qual string) (core.Import, bool) {
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
			if name == "_" || name == "." {
				continue
			}
		}
		effective := name
		if effective == "" {
			effective = defaultImportName(p)
		}
		if effective == qual {
			return core.Import{Name: name, Path: p}, true
		}
	}
	return core.Import{}, false
}

// defaultImportName guesses the package name of an import path: the last
// segment, skipping a trailing major-version element like "v2".
func defaultImportName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.TrimLeft(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}
	return base
}
