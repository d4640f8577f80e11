package core

import (
	"fmt"
	"go/token"
)

// Diagnostic is a generation-time error anchored to a source position. The
// mechanism has exactly two failure classes and both are diagnostics: usage
// errors (a directive given arguments, or applied to the wrong declaration
// shape) and resolution errors (the support library missing from the
// consumer's go.mod). Binding errors are the linker's, not ours.
type Diagnostic struct {
	Pos token.Position
	Msg string
}

func (d *Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
	}
	return d.Msg
}

// Diagf builds a Diagnostic at pos.
func Diagf(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
