// Package customerdata owns the customer negotiation dataset: a SQLite
// document store, the HTTP lookup service over it, and the client the
// getCustomerData tool uses to query that service.
package customerdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/dealbrief/dealbrief/internal/logging"
)

// ErrNotFound is returned by Store.Get for unknown customers.
var ErrNotFound = errors.New("customer not found")

// Store is the customer document store. Records are opaque JSON objects
// keyed by customer name; the store never interprets their fields.
type Store struct {
	sql *sql.DB
	log *logging.Logger
}

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "create customers",
		SQL: `
			CREATE TABLE customers (
				name        TEXT PRIMARY KEY,
				record      TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
}

// OpenStore opens (or creates) the store at the given path and runs
// migrations. Use ":memory:" for an in-memory store (useful for tests).
func OpenStore(path string, log *logging.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &Store{sql: sqlDB, log: log.Sub("store")}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("path", path).Msg("customer store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.sql.Close()
}

// Get returns the record for a customer, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (map[string]any, error) {
	var raw string
	err := s.sql.QueryRowContext(ctx, "SELECT record FROM customers WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer %q: %w", name, err)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decoding record for %q: %w", name, err)
	}
	return record, nil
}

// Put inserts or replaces a customer record.
func (s *Store) Put(ctx context.Context, name string, record map[string]any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record for %q: %w", name, err)
	}

	_, err = s.sql.ExecContext(ctx, `
		INSERT INTO customers (name, record) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET record = excluded.record, updated_at = datetime('now')
	`, name, string(raw))
	if err != nil {
		return fmt.Errorf("storing customer %q: %w", name, err)
	}
	return nil
}

// List returns all customer names in alphabetical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sql.QueryContext(ctx, "SELECT name FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a customer record. Returns ErrNotFound if absent.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.sql.ExecContext(ctx, "DELETE FROM customers WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting customer %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate() error {
	if _, err := s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := s.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
