// Package state persists scan snapshots into a SQLite index. The index backs
// the list and docs commands so they can answer without re-parsing a large
// tree; it is tool-side metadata only and plays no part in link resolution.
package state

import "time"

// Run records one indexing run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Interfaces int
	Operations int
	Bindings   int
}

// IndexedInterface is one interface row.
type IndexedInterface struct {
	Name       string
	Namespace  string
	Package    string
	File       string
	Line       int
	Doc        string
	Constraint string
	Ops        int
}

// IndexedOperation is one operation row.
type IndexedOperation struct {
	Interface  string
	Name       string
	Signature  string
	Doc        string
	Constraint string
}

// IndexedBinding is one binding row.
type IndexedBinding struct {
	Interface string
	Marker    string
	Package   string
	File      string
	Line      int
}

// Store is the persistence boundary for scan snapshots.
type Store interface {
	// SaveSnapshot replaces the whole index with one scan's view and
	// records the run.
	SaveSnapshot(run *Run, ifaces []*IndexedInterface, ops []*IndexedOperation, bindings []*IndexedBinding) error
	// Interfaces lists all indexed interfaces sorted by name.
	Interfaces() ([]*IndexedInterface, error)
	// Operations lists one interface's operations in declaration order.
	Operations(iface string) ([]*IndexedOperation, error)
	// Bindings lists all indexed bindings sorted by interface.
	Bindings() ([]*IndexedBinding, error)
	// LastRun returns the most recent run, or nil if none.
	LastRun() (*Run, error)
	Close() error
}
