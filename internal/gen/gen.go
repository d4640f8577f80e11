// Package gen renders the generated artifacts: caller-stub files for
// declared interfaces, bridge files for implementation bindings, and the
// assembly stub that lets a package carry bodyless declarations.
//
// Output is deterministic: operations appear in declaration order, constraint
// groups in sorted order, imports in sorted order, and everything passes
// through the formatter. Re-rendering unchanged input yields identical bytes.
package gen

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/hvlabs/apibind/internal/core"
	"github.com/hvlabs/apibind/pkg/link"
)

// Header is the standard generated-code marker, first line of every artifact.
const Header = "// Code generated by apibind. DO NOT EDIT."

// StubName is the assembly stub emitted once per declaring package. Its
// presence tells the compiler that bodyless declarations in the package are
// satisfied elsewhere, in this case by the linker matching //go:linkname symbols.
const StubName = "apibind_link.s"

// File is one rendered artifact.
type File struct {
	// Name is the file name within the package directory.
	Name string
	// Content is the formatted file content.
	Content []byte
}

// Callers renders the caller-stub files for one interface. One file is
// produced per distinct operation constraint; an operation gated to a
// platform has a caller only where the platform condition holds.
func Callers(iface *core.Interface, supportImport string) ([]File, error) {
	var files []File
	for _, group := range constraintGroups(iface.Ops) {
		var b strings.Builder
		writePreamble(&b, combineConstraints(iface.Constraint, group.constraint), iface.Package)
		writeImports(&b, supportImport, group.imports())
		fmt.Fprintf(&b, "// Caller stubs for %s, bound to the single linked implementation.\nconst _ = link.FormatVersion\n", iface.Name)

		for _, op := range group.ops {
			sym := link.Symbol(iface.Namespace, iface.Name, op.Name)
			b.WriteString("\n")
			writeDoc(&b, op, iface.Name)
			fmt.Fprintf(&b, "//go:linkname %s %s\n", op.Name, sym)
			fmt.Fprintf(&b, "func %s%s\n", op.Name, signature(op, false))
		}

		name := generatedName(iface.Name, group.constraint)
		content, err := render(name, b.String())
		if err != nil {
			return nil, fmt.Errorf("rendering callers for %s: %w", iface.Name, err)
		}
		files = append(files, File{Name: name, Content: content})
	}
	return files, nil
}

// Bridges renders the bridge files exporting one binding's operations under
// the interface's link symbols. Signatures are taken from the marker's own
// methods so type text resolves in the binding package; the satisfaction
// assertion already guarantees they match the declaration.
func Bridges(b *core.Binding, iface *core.Interface, supportImport string) ([]File, error) {
	// Pair each interface op with the marker method implementing it,
	// carrying the declaration's availability predicate across so both
	// halves of a gated operation exist under the same condition.
	var ops []core.Operation
	for _, op := range iface.Ops {
		m, ok := b.Methods[op.Name]
		if !ok {
			return nil, fmt.Errorf("binding %s: marker %s does not implement %s", b.Iface, b.Marker, op.Name)
		}
		m.Constraint = op.Constraint
		m.Doc = nil
		ops = append(ops, m)
	}

	recv := b.Marker + "{}"
	if b.Addr {
		recv = "(&" + b.Marker + "{})"
	}

	var files []File
	for _, group := range constraintGroups(ops) {
		var buf strings.Builder
		writePreamble(&buf, combineConstraints(b.Constraint, group.constraint), b.Package)
		writeImports(&buf, supportImport, group.imports())
		fmt.Fprintf(&buf, "// Bridges exporting the %s implementation of %s.\nconst _ = link.FormatVersion\n", b.Marker, b.Iface)

		for _, op := range group.ops {
			sym := link.Symbol(b.Namespace, b.Iface, op.Name)
			local := fmt.Sprintf("_apibind_%s_%s", b.Iface, op.Name)

			buf.WriteString("\n")
			fmt.Fprintf(&buf, "//go:linkname %s %s\n", local, sym)
			fmt.Fprintf(&buf, "func %s%s {\n", local, signature(op, true))

			call := fmt.Sprintf("%s.%s(%s)", recv, op.Name, forwardArgs(op))
			if len(op.Results) > 0 {
				fmt.Fprintf(&buf, "\treturn %s\n", call)
			} else {
				fmt.Fprintf(&buf, "\t%s\n", call)
			}
			buf.WriteString("}\n")
		}

		name := generatedName(b.Marker, group.constraint)
		content, err := render(name, buf.String())
		if err != nil {
			return nil, fmt.Errorf("rendering bridges for %s: %w", b.Iface, err)
		}
		files = append(files, File{Name: name, Content: content})
	}
	return files, nil
}

// Stub returns the assembly stub for a declaring package.
func Stub() File {
	content := Header + "\n" +
		"// This file intentionally contains no code. Its presence allows the\n" +
		"// package to declare functions without bodies; the linker supplies\n" +
		"// them by matching //go:linkname symbols against the one bound\n" +
		"// implementation.\n"
	return File{Name: StubName, Content: []byte(content)}
}

// group is one constraint bucket of operations, in declaration order.
type group struct {
	constraint string
	ops        []core.Operation
}

func (g *group) imports() []core.Import {
	seen := map[string]core.Import{}
	for _, op := range g.ops {
		for _, imp := range op.Imports {
			seen[imp.Path] = imp
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]core.Import, 0, len(paths))
	for _, p := range paths {
		out = append(out, seen[p])
	}
	return out
}

// constraintGroups buckets operations by availability predicate: the ungated
// group first, then gated groups in sorted predicate order.
func constraintGroups(ops []core.Operation) []*group {
	byConstraint := map[string]*group{}
	var keys []string
	for _, op := range ops {
		g, ok := byConstraint[op.Constraint]
		if !ok {
			g = &group{constraint: op.Constraint}
			byConstraint[op.Constraint] = g
			keys = append(keys, op.Constraint)
		}
		g.ops = append(g.ops, op)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "") != (keys[j] == "") {
			return keys[i] == ""
		}
		return keys[i] < keys[j]
	})
	out := make([]*group, 0, len(keys))
	for _, k := range keys {
		out = append(out, byConstraint[k])
	}
	return out
}

func combineConstraints(file, op string) string {
	switch {
	case file == "":
		return op
	case op == "":
		return file
	default:
		return "(" + file + ") && (" + op + ")"
	}
}

func writePreamble(b *strings.Builder, constraint, pkg string) {
	b.WriteString(Header + "\n\n")
	if constraint != "" {
		fmt.Fprintf(b, "//go:build %s\n\n", constraint)
	}
	fmt.Fprintf(b, "package %s\n\n", pkg)
}

// writeImports renders the import block in the grouping the formatter
// settles on: standard library first, everything else after a blank line.
// Emitting that shape directly keeps rendering idempotent.
func writeImports(b *strings.Builder, supportImport string, extra []core.Import) {
	std := []core.Import{{Name: "_", Path: "unsafe"}}
	rest := []core.Import{{Path: supportImport}}
	for _, imp := range extra {
		if stdlibPath(imp.Path) {
			std = append(std, imp)
		} else {
			rest = append(rest, imp)
		}
	}
	sort.Slice(std, func(i, j int) bool { return std[i].Path < std[j].Path })
	sort.Slice(rest, func(i, j int) bool { return rest[i].Path < rest[j].Path })

	b.WriteString("import (\n")
	for _, imp := range std {
		writeImportSpec(b, imp)
	}
	b.WriteString("\n")
	for _, imp := range rest {
		writeImportSpec(b, imp)
	}
	b.WriteString(")\n\n")
}

func writeImportSpec(b *strings.Builder, imp core.Import) {
	if imp.Name != "" {
		fmt.Fprintf(b, "\t%s %q", imp.Name, imp.Path)
	} else {
		fmt.Fprintf(b, "\t%q", imp.Path)
	}
	if imp.Path == "unsafe" {
		b.WriteString(" // go:linkname")
	}
	b.WriteString("\n")
}

// stdlibPath reports whether an import path is standard library: its first
// element carries no dot.
func stdlibPath(path string) bool {
	first := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		first = path[:i]
	}
	return !strings.Contains(first, ".")
}

func writeDoc(b *strings.Builder, op core.Operation, iface string) {
	lines := op.Doc
	if len(lines) == 0 {
		lines = []string{fmt.Sprintf("%s dispatches to the linked %s implementation.", op.Name, iface)}
	}
	for _, line := range lines {
		if line == "" {
			b.WriteString("//\n")
		} else {
			fmt.Fprintf(b, "// %s\n", line)
		}
	}
	b.WriteString("//\n")
}

// signature renders "(params) (results)". With named set, every parameter
// gets a usable name so bridge bodies can forward arguments.
func signature(op core.Operation, named bool) string {
	var b strings.Builder
	b.WriteString("(")
	for i, p := range op.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		name := p.Name
		if named && name == "" {
			name = fmt.Sprintf("a%d", i)
		}
		typ := p.Type
		if op.Variadic && i == len(op.Params)-1 {
			typ = "..." + typ
		}
		if name != "" {
			b.WriteString(name + " " + typ)
		} else {
			b.WriteString(typ)
		}
	}
	b.WriteString(")")

	switch len(op.Results) {
	case 0:
	case 1:
		b.WriteString(" " + op.Results[0].Type)
	default:
		b.WriteString(" (")
		for i, r := range op.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Type)
		}
		b.WriteString(")")
	}
	return b.String()
}

// forwardArgs renders the argument list of a bridge's dispatch call.
func forwardArgs(op core.Operation) string {
	parts := make([]string, 0, len(op.Params))
	for i, p := range op.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("a%d", i)
		}
		if op.Variadic && i == len(op.Params)-1 {
			name += "..."
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

// generatedName builds a deterministic generated-file name from a base
// identifier and an optional constraint expression.
func generatedName(base, constraint string) string {
	name := snake(base)
	if constraint != "" {
		name += "_" + slug(constraint)
	}
	return name + "_apibind.go"
}

// snake converts a Go identifier to snake case for file naming.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// slug reduces a build-constraint expression to a file-name fragment.
func slug(expr string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range expr {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// render formats a rendered source text, fixing up import grouping.
func render(name, src string) ([]byte, error) {
	out, err := imports.Process(name, []byte(src), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", name, err)
	}
	return out, nil
}
