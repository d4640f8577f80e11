package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store on a modernc.org/sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the index database at path and applies pending
// migrations.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %w", path, err)
	}
	// The index is single-writer; one connection avoids SQLITE_BUSY noise.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection without migrating. Used by tests.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the index contents atomically.
func (s *SQLiteStore) SaveSnapshot(run *Run, ifaces []*IndexedInterface, ops []*IndexedOperation, bindings []*IndexedBinding) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM bindings",
		"DELETE FROM operations",
		"DELETE FROM interfaces",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	for _, i := range ifaces {
		_, err := tx.Exec(
			`INSERT INTO interfaces (name, namespace, package, file, line, doc, constraint_expr, ops)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i.Name, i.Namespace, i.Package, i.File, i.Line, i.Doc, i.Constraint, i.Ops)
		if err != nil {
			return fmt.Errorf("indexing interface %s: %w", i.Name, err)
		}
	}
	for n, op := range ops {
		_, err := tx.Exec(
			`INSERT INTO operations (interface, name, signature, doc, constraint_expr, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			op.Interface, op.Name, op.Signature, op.Doc, op.Constraint, n)
		if err != nil {
			return fmt.Errorf("indexing operation %s.%s: %w", op.Interface, op.Name, err)
		}
	}
	for _, b := range bindings {
		_, err := tx.Exec(
			`INSERT INTO bindings (interface, marker, package, file, line)
			 VALUES (?, ?, ?, ?, ?)`,
			b.Interface, b.Marker, b.Package, b.File, b.Line)
		if err != nil {
			return fmt.Errorf("indexing binding %s: %w", b.Interface, err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, interfaces, operations, bindings)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Interfaces, run.Operations, run.Bindings)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}

	return tx.Commit()
}

// Interfaces lists all indexed interfaces sorted by name.
func (s *SQLiteStore) Interfaces() ([]*IndexedInterface, error) {
	rows, err := s.db.Query(
		`SELECT name, namespace, package, file, line, doc, constraint_expr, ops
		 FROM interfaces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}
	defer rows.Close()

	var out []*IndexedInterface
	for rows.Next() {
		i := &IndexedInterface{}
		if err := rows.Scan(&i.Name, &i.Namespace, &i.Package, &i.File, &i.Line, &i.Doc, &i.Constraint, &i.Ops); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Operations lists one interface's operations in declaration order.
func (s *SQLiteStore) Operations(iface string) ([]*IndexedOperation, error) {
	rows, err := s.db.Query(
		`SELECT interface, name, signature, doc, constraint_expr
		 FROM operations WHERE interface = ? ORDER BY position`, iface)
	if err != nil {
		return nil, fmt.Errorf("listing operations of %s: %w", iface, err)
	}
	defer rows.Close()

	var out []*IndexedOperation
	for rows.Next() {
		op := &IndexedOperation{}
		if err := rows.Scan(&op.Interface, &op.Name, &op.Signature, &op.Doc, &op.Constraint); err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

// Bindings lists all indexed bindings sorted by interface then marker.
func (s *SQLiteStore) Bindings() ([]*IndexedBinding, error) {
	rows, err := s.db.Query(
		`SELECT interface, marker, package, file, line
		 FROM bindings ORDER BY interface, marker`)
	if err != nil {
		return nil, fmt.Errorf("listing bindings: %w", err)
	}
	defer rows.Close()

	var out []*IndexedBinding
	for rows.Next() {
		b := &IndexedBinding{}
		if err := rows.Scan(&b.Interface, &b.Marker, &b.Package, &b.File, &b.Line); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LastRun returns the most recent run, or nil if the index is empty.
func (s *SQLiteStore) LastRun() (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, finished_at, interfaces, operations, bindings
		 FROM runs ORDER BY started_at DESC LIMIT 1`)

	r := &Run{}
	var started, finished time.Time
	err := row.Scan(&r.ID, &started, &finished, &r.Interfaces, &r.Operations, &r.Bindings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}
	r.StartedAt = started
	r.FinishedAt = finished
	return r, nil
}
