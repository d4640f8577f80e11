// Package link is the runtime-support surface referenced by apibind-generated
// code. It defines the shared symbol namespace and the mangling scheme that
// connects generated caller stubs to implementation bridges at link time.
//
// The package is deliberately dependency-free and stateless: the "registry" of
// interfaces is a naming convention resolved by the Go linker, not a data
// structure. Nothing here executes at runtime beyond constant folding.
package link

// ModulePath is the canonical module path of the defining library. Generated
// code imports this package under whatever path the consumer's go.mod resolves
// it to (see internal/resolve).
const ModulePath = "github.com/hvlabs/apibind"

// DefaultNamespace is the shared namespace under which every interface is
// registered unless a project overrides it. A single flat namespace keeps
// bookkeeping at zero; the cost is that operation names must be unique across
// all interfaces generated into one package.
const DefaultNamespace = "hvapi"

// FormatVersion identifies the generated-code layout. Every generated file
// folds it into a blank constant, so a consumer regenerating against a newer
// incompatible support library fails to compile instead of mislinking.
const FormatVersion = 1

// Symbol returns the link symbol for one operation. The result is the target
// of the //go:linkname directive on both the caller stub (pull) and the
// implementation bridge (push); the linker matching the two is the entire
// resolution mechanism.
//
// Symbol is pure and total: same inputs, same symbol, in every build.
func Symbol(namespace, iface, op string) string {
	return namespace + "." + iface + "." + op
}
