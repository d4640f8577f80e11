// Package resolve computes how generated code must import the link support
// package, mirroring what the build system knows about the consumer's
// dependency graph.
//
// Generated files reference pkg/link of the defining module. When generation
// runs inside the defining module itself that reference is trivially
// available; in any other module it is only valid if the consumer's go.mod
// actually requires the defining module. Resolution never guesses: a missing
// requirement is a fixed, terminal diagnostic.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/hvlabs/apibind/pkg/link"
)

// ErrMissingDependency reports that the defining module is absent from the
// consumer's go.mod.
var ErrMissingDependency = errors.New("defining module not found in go.mod")

// supportPackage is the path of the support package within the defining module.
const supportPackage = "pkg/link"

// Resolution describes how generated code reaches the support package.
type Resolution struct {
	// ImportPath is the import path generated files must use.
	ImportPath string
	// Self reports whether generation ran inside the defining module.
	Self bool
	// ModFile is the go.mod that answered the query.
	ModFile string
}

// SupportImport resolves the support package import for code generated into
// dir. It walks upward from dir to the enclosing go.mod and inspects it.
func SupportImport(dir string) (*Resolution, error) {
	modPath, err := findModFile(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(modPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", modPath, err)
	}
	mf, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", modPath, err)
	}
	if mf.Module == nil {
		return nil, fmt.Errorf("%s: missing module directive", modPath)
	}

	res := &Resolution{
		ImportPath: link.ModulePath + "/" + supportPackage,
		ModFile:    modPath,
	}

	// Inside the defining module itself: local self-reference.
	if mf.Module.Mod.Path == link.ModulePath {
		res.Self = true
		return res, nil
	}

	// Otherwise the defining module must be a declared dependency. Replace
	// directives are fine, they redirect where the module comes from rather
	// than the import path, but a replace without a require resolves nothing.
	for _, req := range mf.Require {
		if req.Mod.Path == link.ModulePath {
			return res, nil
		}
	}

	return nil, fmt.Errorf("%s: %w: add %q to %s (go get %s)",
		mf.Module.Mod.Path, ErrMissingDependency, link.ModulePath, modPath, link.ModulePath)
}

// findModFile walks upward from dir until it finds a go.mod.
func findModFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		abs = parent
	}
}
