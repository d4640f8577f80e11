// Package core defines the shared descriptor types produced by scanning and
// consumed by the registry, the generator, and the state index.
package core

import (
	"go/token"
	"strings"
)

// Param is one parameter or result in an operation signature. Type holds the
// source text of the type expression exactly as written in the declaring file.
type Param struct {
	// Name is the declared name, or "" if the declaration is unnamed.
	Name string
	// Type is the type expression source text (e.g. "uintptr", "time.Duration").
	Type string
}

// Operation is one named function signature within an interface.
type Operation struct {
	// Name is the operation (method) name.
	Name string
	// Doc is the operation's doc comment with directives stripped, one line
	// per element, without the leading "// ".
	Doc []string
	// Params are the ordered parameters.
	Params []Param
	// Results are the ordered results.
	Results []Param
	// Variadic reports whether the final parameter is variadic.
	Variadic bool
	// Constraint is the operation's own availability predicate (the expression
	// of an //apibind:build directive), or "" if the operation is ungated.
	Constraint string
	// Imports lists the imports the signature's type expressions need when
	// reproduced in a generated file of the declaring package.
	Imports []Import
	// Pos is the method's position in the declaring file.
	Pos token.Position
}

// Import is a single import required by reproduced signature text.
type Import struct {
	// Name is the local alias, or "" when the default package name is used.
	Name string
	// Path is the import path.
	Path string
}

// Interface is a declared operation set registered under a namespace.
// Descriptors are immutable once scanning completes.
type Interface struct {
	// Name is the interface type name.
	Name string
	// Namespace is the symbol namespace the interface is registered under.
	Namespace string
	// Package is the declaring package name.
	Package string
	// Dir is the directory of the declaring file.
	Dir string
	// File is the declaring file path.
	File string
	// Pos is the position of the type declaration.
	Pos token.Position
	// Doc is the interface doc comment with directives stripped.
	Doc []string
	// Constraint is the declaring file's //go:build expression, inherited by
	// every generated file for this interface. Empty when unconstrained.
	Constraint string
	// Ops are the operations in declaration order.
	Ops []Operation
}

// Binding anchors exactly one implementation of an interface to a stateless
// marker type. The marker has no fields and no runtime identity; it exists
// only so the binding has a syntactic home.
type Binding struct {
	// Iface is the name of the bound interface.
	Iface string
	// Namespace is the symbol namespace of the bound interface.
	Namespace string
	// Marker is the marker type name.
	Marker string
	// Addr reports whether the satisfaction assertion used &Marker{}, in
	// which case bridges dispatch through a pointer receiver value.
	Addr bool
	// Package is the binding package name.
	Package string
	// Dir is the directory of the binding file.
	Dir string
	// File is the binding file path.
	File string
	// Pos is the position of the var assertion.
	Pos token.Position
	// Constraint is the binding file's //go:build expression.
	Constraint string
	// Methods are the marker's method signatures, keyed by name. Bridges copy
	// these rather than the declaration's signatures so that type expressions
	// resolve in the binding package's own import scope; the var assertion
	// already forces the two to agree at compile time.
	Methods map[string]Operation
}

// Signature renders the operation as "(params) results" for display and
// indexing. Generated code renders its own signatures; this form is never
// parsed back.
func (o Operation) Signature() string {
	var b strings.Builder
	b.WriteString("(")
	for i, p := range o.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name + " ")
		}
		if o.Variadic && i == len(o.Params)-1 {
			b.WriteString("...")
		}
		b.WriteString(p.Type)
	}
	b.WriteString(")")
	switch len(o.Results) {
	case 0:
	case 1:
		b.WriteString(" " + o.Results[0].Type)
	default:
		b.WriteString(" (")
		for i, r := range o.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Type)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Op returns the operation with the given name, if any.
func (i *Interface) Op(name string) (Operation, bool) {
	for _, op := range i.Ops {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}
