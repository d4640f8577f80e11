// Package parse scans Go source trees for apibind directives and builds the
// interface and binding descriptors the generator consumes.
//
// Scanning is single-pass and deterministic: directories are walked in sorted
// order, files are parsed in sorted order, and declarations are processed in
// source order. A declaration that fails validation produces a diagnostic and
// no descriptor; unrelated declarations in the same run are unaffected.
package parse

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hvlabs/apibind/internal/core"
	"github.com/hvlabs/apibind/internal/directive"
)

// GeneratedSuffix marks files emitted by the generator. They are never
// scanned, so a run's input is always the hand-written source alone.
const GeneratedSuffix = "_apibind.go"

// Result holds everything one scan produced.
type Result struct {
	Interfaces []*core.Interface
	Bindings   []*core.Binding
	// Diags are per-declaration usage errors. They abort only the declaration
	// that raised them.
	Diags []*core.Diagnostic
}

// HasDiags reports whether any declaration failed.
func (r *Result) HasDiags() bool { return len(r.Diags) > 0 }

// Scanner parses directories for apibind declarations.
type Scanner struct {
	fset      *token.FileSet
	namespace string
	logger    *slog.Logger
}

// New creates a Scanner registering declarations under namespace.
func New(namespace string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{
		fset:      token.NewFileSet(),
		namespace: namespace,
		logger:    logger,
	}
}

// Fset returns the position set backing all descriptor positions.
func (s *Scanner) Fset() *token.FileSet { return s.fset }

// ScanDirs scans every package directory under the given roots.
func (s *Scanner) ScanDirs(roots []string) (*Result, error) {
	res := &Result{}

	for _, root := range roots {
		dirs, err := packageDirs(root)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
		for _, dir := range dirs {
			if err := s.scanDir(dir, res); err != nil {
				return nil, err
			}
		}
	}

	// Stable ordering regardless of walk interleaving across roots.
	sort.SliceStable(res.Interfaces, func(i, j int) bool {
		a, b := res.Interfaces[i], res.Interfaces[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Pos.Offset < b.Pos.Offset
	})
	sort.SliceStable(res.Bindings, func(i, j int) bool {
		a, b := res.Bindings[i], res.Bindings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Pos.Offset < b.Pos.Offset
	})

	return res, nil
}

// packageDirs lists candidate package directories under root, skipping
// vendor, testdata, hidden, and underscore-prefixed entries.
func packageDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root {
			if name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// scanDir parses one directory's Go files and extracts declarations. The
// whole directory is parsed together so marker method sets can be collected
// across files of the same package.
func (s *Scanner) scanDir(dir string, res *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, GeneratedSuffix) {
			continue
		}
		path := filepath.Join(dir, name)
		f, err := parser.ParseFile(s.fset, path, nil, parser.ParseComments)
		if err != nil {
			res.Diags = append(res.Diags, &core.Diagnostic{
				Pos: token.Position{Filename: path},
				Msg: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil
	}

	pkg := newPackageInfo(dir, files)

	for _, f := range files {
		s.scanFile(f, pkg, res)
	}
	return nil
}

func (s *Scanner) scanFile(f *ast.File, pkg *packageInfo, res *Result) {
	constraint := directive.FileConstraint(f)

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			s.scanGenDecl(d, f, pkg, constraint, res)
		case *ast.FuncDecl:
			if dir, ok := directive.Find(s.fset, d.Doc); ok {
				res.Diags = append(res.Diags, core.Diagf(dir.Pos,
					"//apibind:%s cannot be applied to a function declaration", dir.Name))
			}
		}
	}
}

func (s *Scanner) scanGenDecl(d *ast.GenDecl, f *ast.File, pkg *packageInfo, constraint string, res *Result) {
	dir, ok := directive.Find(s.fset, d.Doc)
	doc := d.Doc
	if !ok && len(d.Specs) == 1 {
		// Parenthesized declarations hang the comment off the spec.
		if ts, isType := d.Specs[0].(*ast.TypeSpec); isType {
			dir, ok = directive.Find(s.fset, ts.Doc)
			doc = ts.Doc
		}
	}
	if !ok {
		return
	}

	switch {
	case dir.Name == directive.Interface && d.Tok == token.TYPE:
		if diag := dir.NoArgs(); diag != nil {
			res.Diags = append(res.Diags, diag)
			return
		}
		if iface, diags := s.buildInterface(d, doc, f, pkg, constraint); iface != nil {
			res.Interfaces = append(res.Interfaces, iface)
			s.logger.Debug("declared interface",
				"name", iface.Name, "ops", len(iface.Ops), "file", iface.File)
		} else {
			res.Diags = append(res.Diags, diags...)
		}

	case dir.Name == directive.Implement && d.Tok == token.VAR:
		if diag := dir.NoArgs(); diag != nil {
			res.Diags = append(res.Diags, diag)
			return
		}
		if b, diags := s.buildBinding(d, f, pkg, constraint); b != nil {
			res.Bindings = append(res.Bindings, b)
			s.logger.Debug("registered binding",
				"interface", b.Iface, "marker", b.Marker, "file", b.File)
		} else {
			res.Diags = append(res.Diags, diags...)
		}

	case dir.Name == directive.Interface:
		res.Diags = append(res.Diags, core.Diagf(dir.Pos,
			"//apibind:interface must be applied to an interface type declaration"))
	case dir.Name == directive.Implement:
		res.Diags = append(res.Diags, core.Diagf(dir.Pos,
			"//apibind:implement must be applied to a 'var _ Iface = Marker{}' assertion"))
	case dir.Name == directive.Build:
		res.Diags = append(res.Diags, core.Diagf(dir.Pos,
			"//apibind:build may only appear on an interface operation"))
	default:
		res.Diags = append(res.Diags, core.Diagf(dir.Pos,
			"unknown directive //apibind:%s", dir.Name))
	}
}

// buildInterface validates the declaration shape and extracts operations.
func (s *Scanner) buildInterface(d *ast.GenDecl, doc *ast.CommentGroup, f *ast.File, pkg *packageInfo, constraint string) (*core.Interface, []*core.Diagnostic) {
	pos := s.fset.Position(d.Pos())
	if len(d.Specs) != 1 {
		return nil, []*core.Diagnostic{core.Diagf(pos,
			"//apibind:interface must be applied to a single type declaration")}
	}
	ts := d.Specs[0].(*ast.TypeSpec)
	it, ok := ts.Type.(*ast.InterfaceType)
	if !ok {
		return nil, []*core.Diagnostic{core.Diagf(pos,
			"//apibind:interface must be applied to an interface type declaration")}
	}
	if ts.TypeParams != nil {
		return nil, []*core.Diagnostic{core.Diagf(pos,
			"interface %s: type parameters are not supported; resolution is nominal", ts.Name.Name)}
	}

	iface := &core.Interface{
		Name:       ts.Name.Name,
		Namespace:  s.namespace,
		Package:    f.Name.Name,
		Dir:        pkg.dir,
		File:       pos.Filename,
		Pos:        pos,
		Doc:        directive.StripDoc(doc),
		Constraint: constraint,
	}

	var diags []*core.Diagnostic
	for _, m := range it.Methods.List {
		if len(m.Names) == 0 {
			diags = append(diags, core.Diagf(s.fset.Position(m.Pos()),
				"interface %s: embedded interfaces are not supported", iface.Name))
			continue
		}
		ft, ok := m.Type.(*ast.FuncType)
		if !ok {
			diags = append(diags, core.Diagf(s.fset.Position(m.Pos()),
				"interface %s: only method elements are supported", iface.Name))
			continue
		}

		op := s.buildOperation(m.Names[0].Name, ft, m.Doc, f, pkg)
		if bd, ok := directive.Find(s.fset, m.Doc); ok {
			switch {
			case bd.Name != directive.Build:
				diags = append(diags, core.Diagf(bd.Pos,
					"//apibind:%s cannot be applied to an operation", bd.Name))
				continue
			case bd.Arg == "":
				diags = append(diags, core.Diagf(bd.Pos,
					"//apibind:build requires a build-constraint expression"))
				continue
			default:
				op.Constraint = bd.Arg
			}
		}
		op.Pos = s.fset.Position(m.Pos())
		iface.Ops = append(iface.Ops, op)
	}

	if diags != nil {
		return nil, diags
	}
	return iface, nil
}

// buildBinding validates the 'var _ Iface = Marker{}' shape and collects the
// marker's method set from the surrounding package.
func (s *Scanner) buildBinding(d *ast.GenDecl, f *ast.File, pkg *packageInfo, constraint string) (*core.Binding, []*core.Diagnostic) {
	pos := s.fset.Position(d.Pos())
	misuse := func(format string, args ...any) (*core.Binding, []*core.Diagnostic) {
		return nil, []*core.Diagnostic{core.Diagf(pos, format, args...)}
	}

	if len(d.Specs) != 1 {
		return misuse("//apibind:implement must be applied to a single var assertion")
	}
	vs := d.Specs[0].(*ast.ValueSpec)
	if len(vs.Names) != 1 || vs.Names[0].Name != "_" || len(vs.Values) != 1 {
		return misuse("//apibind:implement must be applied to a 'var _ Iface = Marker{}' assertion")
	}

	ifaceName := ""
	switch t := vs.Type.(type) {
	case *ast.Ident:
		ifaceName = t.Name
	case *ast.SelectorExpr:
		ifaceName = t.Sel.Name
	default:
		return misuse("//apibind:implement: binding target must name an interface type")
	}

	value := vs.Values[0]
	addr := false
	if u, ok := value.(*ast.UnaryExpr); ok && u.Op == token.AND {
		addr = true
		value = u.X
	}
	cl, ok := value.(*ast.CompositeLit)
	if !ok {
		return misuse("//apibind:implement: marker value must be a composite literal of a marker type")
	}
	markerIdent, ok := cl.Type.(*ast.Ident)
	if !ok {
		return misuse("//apibind:implement: marker type must be declared in the binding package")
	}
	if len(cl.Elts) != 0 {
		return misuse("//apibind:implement: marker value must be empty; markers carry no state")
	}

	marker := markerIdent.Name
	st, ok := pkg.structType(marker)
	if !ok {
		return misuse("//apibind:implement: marker type %s must be a struct declared in this package", marker)
	}
	if st.Fields != nil && len(st.Fields.List) != 0 {
		return nil, []*core.Diagnostic{core.Diagf(s.fset.Position(st.Pos()),
			"marker type %s must be stateless (no fields)", marker)}
	}

	b := &core.Binding{
		Iface:      ifaceName,
		Namespace:  s.namespace,
		Marker:     marker,
		Addr:       addr,
		Package:    f.Name.Name,
		Dir:        pkg.dir,
		File:       pos.Filename,
		Pos:        pos,
		Constraint: constraint,
		Methods:    map[string]core.Operation{},
	}
	for name, fd := range pkg.methods(marker) {
		op := s.buildOperation(name, fd.Type, fd.Doc, pkg.fileOf(fd), pkg)
		op.Pos = s.fset.Position(fd.Pos())
		b.Methods[name] = op
	}
	return b, nil
}

// buildOperation extracts a signature as source text plus the imports that
// text needs when reproduced in a generated file of the same package.
func (s *Scanner) buildOperation(name string, ft *ast.FuncType, doc *ast.CommentGroup, f *ast.File, pkg *packageInfo) core.Operation {
	op := core.Operation{
		Name: name,
		Doc:  directive.StripDoc(doc),
	}

	seen := map[string]core.Import{}
	addImports := func(e ast.Expr) {
		for _, imp := range pkg.importsFor(f, e) {
			seen[imp.Path] = imp
		}
	}

	if ft.Params != nil {
		for _, field := range ft.Params.List {
			typ := field.Type
			variadic := false
			if ell, ok := typ.(*ast.Ellipsis); ok {
				typ = ell.Elt
				variadic = true
			}
			text := s.exprString(typ)
			addImports(typ)

			if len(field.Names) == 0 {
				op.Params = append(op.Params, core.Param{Type: text})
			} else {
				for _, n := range field.Names {
					op.Params = append(op.Params, core.Param{Name: n.Name, Type: text})
				}
			}
			if variadic {
				op.Variadic = true
			}
		}
	}
	if ft.Results != nil {
		for _, field := range ft.Results.List {
			text := s.exprString(field.Type)
			addImports(field.Type)
			if len(field.Names) == 0 {
				op.Results = append(op.Results, core.Param{Type: text})
			} else {
				for _, n := range field.Names {
					op.Results = append(op.Results, core.Param{Name: n.Name, Type: text})
				}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		op.Imports = append(op.Imports, seen[p])
	}
	return op
}

func (s *Scanner) exprString(e ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, s.fset, e)
	return buf.String()
}
