// Package duckdb provides a DuckDB-backed feature store. Each feature table
// carries a UCSC bin column so overlap queries can prune rows by bin before
// applying the coordinate test.
package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// ErrNoTable is returned when a feature table is not registered.
var ErrNoTable = errors.New("no such feature table")

// Store manages a DuckDB connection and the feature tables it holds.
type Store struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	tables map[string]*Table
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, tables: make(map[string]*Table)}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, or "" for an in-memory database.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates the catalog tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS feature_tables (
		name VARCHAR PRIMARY KEY,
		kind VARCHAR NOT NULL
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS chrom_sizes (
		chrom VARCHAR PRIMARY KEY,
		size UBIGINT NOT NULL
	)`)
	return err
}

// SetChromSize records the length of a chromosome.
func (s *Store) SetChromSize(chrom string, size uint64) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO chrom_sizes (chrom, size) VALUES (?, ?)`, chrom, size); err != nil {
		return fmt.Errorf("set chrom size: %w", err)
	}
	return nil
}

// ChromSize returns a recorded chromosome length.
func (s *Store) ChromSize(chrom string) (uint64, bool) {
	var size uint64
	if err := s.db.QueryRow(`SELECT size FROM chrom_sizes WHERE chrom = ?`, chrom).Scan(&size); err != nil {
		return 0, false
	}
	return size, true
}

// Tables returns the names of all registered feature tables, sorted.
func (s *Store) Tables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM feature_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

// CreateTable creates a feature table of the given kind and registers it.
// Creating an existing table with the same kind returns it unchanged.
func (s *Store) CreateTable(name string, kind TableKind) (*Table, error) {
	if err := checkIdent(name); err != nil {
		return nil, err
	}
	if !kind.valid() {
		return nil, fmt.Errorf("create table %s: unknown kind %d", name, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.lookup(name)
	if err != nil && !errors.Is(err, ErrNoTable) {
		return nil, err
	}
	if existing != nil {
		if existing.kind != kind {
			return nil, fmt.Errorf("create table %s: exists as %s", name, existing.kind)
		}
		return existing, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range kind.ddl(name) {
		if _, err := tx.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create table %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO feature_tables (name, kind) VALUES (?, ?)`, name, kind.String()); err != nil {
		return nil, fmt.Errorf("register table %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	t := newTable(s, name, kind)
	s.tables[name] = t
	return t, nil
}

// Table returns a registered feature table.
func (s *Store) Table(name string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(name)
}

// lookup finds a table in the registry, falling back to the catalog for
// tables created by an earlier connection. Callers hold s.mu.
func (s *Store) lookup(name string) (*Table, error) {
	if t, ok := s.tables[name]; ok {
		return t, nil
	}

	var kindName string
	err := s.db.QueryRow(`SELECT kind FROM feature_tables WHERE name = ?`, name).Scan(&kindName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup table %s: %w", name, err)
	}
	kind, err := ParseTableKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("lookup table %s: %w", name, err)
	}

	t := newTable(s, name, kind)
	s.tables[name] = t
	return t, nil
}
