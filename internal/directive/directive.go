// Package directive extracts and validates apibind source directives.
//
// Directives follow the Go toolchain convention: a "//"-comment with no space
// before the tool name, e.g.
//
//	//apibind:interface
//	//apibind:implement
//	//apibind:build amd64 || arm64
//
// The first two accept no arguments; any trailing token is a usage error
// reported at that token's exact span. The third requires a build-constraint
// expression and may only appear on an interface method.
package directive

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/hvlabs/apibind/internal/core"
)

// Prefix introduces every apibind directive.
const Prefix = "//apibind:"

// Directive names.
const (
	Interface = "interface"
	Implement = "implement"
	Build     = "build"
)

// Directive is one parsed apibind directive.
type Directive struct {
	// Name is the directive name ("interface", "implement", "build").
	Name string
	// Arg is the raw argument text after the name, trimmed. Empty when the
	// directive has no argument.
	Arg string
	// Pos is the position of the directive comment.
	Pos token.Position
	// ArgPos is the position of the first argument character. Only valid
	// when Arg is non-empty.
	ArgPos token.Position
}

// Find scans a comment group for an apibind directive. At most one directive
// per comment group is meaningful; the first wins.
func Find(fset *token.FileSet, doc *ast.CommentGroup) (*Directive, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, Prefix) {
			continue
		}
		rest := c.Text[len(Prefix):]

		// Split the directive name from any argument text.
		name := rest
		arg := ""
		argOffset := len(c.Text)
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			name = rest[:i]
			tail := rest[i:]
			trimmed := strings.TrimLeft(tail, " \t")
			arg = strings.TrimRight(trimmed, " \t")
			argOffset = len(Prefix) + i + (len(tail) - len(trimmed))
		}

		d := &Directive{
			Name: name,
			Arg:  arg,
			Pos:  fset.Position(c.Slash),
		}
		if arg != "" {
			d.ArgPos = fset.Position(c.Slash + token.Pos(argOffset))
		}
		return d, true
	}
	return nil, false
}

// NoArgs enforces the zero-argument rule shared by the interface and
// implement directives. The diagnostic is anchored to the stray token, not
// the directive, so editors jump to the text that must be deleted.
func (d *Directive) NoArgs() *core.Diagnostic {
	if d.Arg == "" {
		return nil
	}
	return core.Diagf(d.ArgPos, "//apibind:%s does not accept any arguments", d.Name)
}

// StripDoc returns the comment group's text as doc lines with all apibind
// directives removed, so generated code can carry the human-written comment
// forward without re-emitting tool directives.
func StripDoc(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var lines []string
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, Prefix) {
			continue
		}
		text := strings.TrimPrefix(c.Text, "//")
		text = strings.TrimPrefix(text, " ")
		lines = append(lines, text)
	}
	// Drop trailing blank lines left behind by stripped directives.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// FileConstraint returns the //go:build expression of a file, or "".
// Constraint comments must precede the package clause.
func FileConstraint(f *ast.File) string {
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if expr, ok := strings.CutPrefix(c.Text, "//go:build "); ok {
				return strings.TrimSpace(expr)
			}
		}
	}
	return ""
}
