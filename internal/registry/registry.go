// Package registry holds the interfaces and bindings of a single generation
// run and enforces the naming invariants the flat namespace depends on.
//
// The registry lives only for the run: nothing in it survives into the
// generated artifacts. Exactly-one-implementation is the linker's invariant;
// what the registry checks is what must hold before symbols even exist,
// unique interface names and unique (namespace, operation) pairs.
package registry

import (
	"sync"

	"github.com/hvlabs/apibind/internal/core"
)

// Registry indexes one run's declarations.
type Registry struct {
	mu sync.RWMutex

	// byName maps interface names to descriptors.
	byName map[string]*core.Interface

	// byOp maps "namespace.op" to the declaring interface name, backing the
	// build-wide operation-name uniqueness constraint of the flat namespace.
	byOp map[string]string

	// bindings maps interface names to their bindings, in registration order.
	bindings map[string][]*core.Binding

	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName:   make(map[string]*core.Interface),
		byOp:     make(map[string]string),
		bindings: make(map[string][]*core.Binding),
	}
}

// Register adds an interface. It fails with a diagnostic on a duplicate
// interface name or a duplicate (namespace, operation) pair; the descriptor
// is not registered in either case and other registrations are unaffected.
func (r *Registry) Register(iface *core.Interface) *core.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[iface.Name]; ok {
		return core.Diagf(iface.Pos,
			"interface %s already declared at %s", iface.Name, prev.Pos)
	}
	for _, op := range iface.Ops {
		key := iface.Namespace + "." + op.Name
		if owner, ok := r.byOp[key]; ok {
			return core.Diagf(op.Pos,
				"operation %s collides with %s.%s in namespace %q; operation names must be unique across all interfaces sharing a namespace",
				op.Name, owner, op.Name, iface.Namespace)
		}
	}

	r.byName[iface.Name] = iface
	for _, op := range iface.Ops {
		r.byOp[iface.Namespace+"."+op.Name] = iface.Name
	}
	r.order = append(r.order, iface.Name)
	return nil
}

// AddBinding records a binding against its interface. A binding whose
// interface was never declared in this run fails; a second binding for the
// same interface is accepted here; the linker is the judge of that one, and
// the check command reports it as a courtesy.
func (r *Registry) AddBinding(b *core.Binding) *core.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[b.Iface]; !ok {
		return core.Diagf(b.Pos,
			"binding for %s: interface not declared in any scanned directory", b.Iface)
	}
	r.bindings[b.Iface] = append(r.bindings[b.Iface], b)
	return nil
}

// Lookup returns the interface with the given name.
func (r *Registry) Lookup(name string) (*core.Interface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iface, ok := r.byName[name]
	return iface, ok
}

// Bindings returns the bindings registered for an interface.
func (r *Registry) Bindings(name string) []*core.Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bindings[name]
}

// Interfaces returns all interfaces in registration order.
func (r *Registry) Interfaces() []*core.Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*core.Interface, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Count returns the number of registered interfaces.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// OpCount returns the number of registered operations across all interfaces.
func (r *Registry) OpCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOp)
}
