// Package duckdb persists enrichment runs in an embedded DuckDB database,
// keeping past analyses queryable without re-running them.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
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

// ensureSchema creates tables if they don't exist. The rank column is
// named term_rank because RANK is a reserved word in DuckDB.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		name VARCHAR,
		gene_set VARCHAR,
		gene_set_size BIGINT,
		library VARCHAR,
		background VARCHAR,
		method VARCHAR,
		num_terms BIGINT,
		created_at TIMESTAMP
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS run_results (
		run_id VARCHAR,
		term_rank BIGINT,
		term VARCHAR,
		description VARCHAR,
		overlap VARCHAR,
		overlap_count BIGINT,
		term_size BIGINT,
		p_value DOUBLE,
		fdr DOUBLE
	)`)
	return err
}
