package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/schema"
	_ "modernc.org/sqlite"
)

// Store implements ports.DefinitionStore on a SQLite database. Each
// network is one row holding its JSON document.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS networks (
		name TEXT PRIMARY KEY,
		data JSON NOT NULL,
		processors INTEGER NOT NULL DEFAULT 0,
		connections INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts or replaces the definition stored under name.
func (s *Store) Save(ctx context.Context, name string, def *domain.NetworkDefinition) error {
	if name == "" {
		return fmt.Errorf("save definition: %w", domain.ErrEmptyIdentifier)
	}
	data, err := schema.Marshal(def, schema.FormatJSON)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO networks (name, data, processors, connections)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			processors = excluded.processors,
			connections = excluded.connections,
			updated_at = CURRENT_TIMESTAMP
	`, name, data, len(def.Processors), len(def.Connections))
	if err != nil {
		return fmt.Errorf("failed to save network %q: %w", name, err)
	}
	return nil
}

// Load reads the definition stored under name.
func (s *Store) Load(ctx context.Context, name string) (*domain.NetworkDefinition, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM networks WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", name, domain.ErrNetworkNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query network %q: %w", name, err)
	}

	def, err := schema.Parse(data, schema.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return def, nil
}

// Delete removes the row; deleting a missing network is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM networks WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete network %q: %w", name, err)
	}
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM networks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan network name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
