package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
)

// Dialect captures the few places SQLite and PostgreSQL differ.
type Dialect struct {
	Name     string
	BlobType string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

var (
	// SQLite is for databases opened with the "sqlite" driver (modernc.org/sqlite).
	SQLite = Dialect{
		Name:        "sqlite",
		BlobType:    "BLOB",
		Placeholder: func(int) string { return "?" },
	}

	// Postgres is for databases opened with the "pgx" driver (github.com/jackc/pgx/v5/stdlib).
	Postgres = Dialect{
		Name:        "pgx",
		BlobType:    "BYTEA",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

// DialectFor returns the dialect matching a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
}

// Store is a StateStore backed by a SQL database.
//
// It expects an *sql.DB opened with a driver matching its dialect. The caller
// is responsible for importing the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//	import _ "github.com/jackc/pgx/v5/stdlib"
//
// The snapshot is stored as JSON; owner and current_step are copied into
// columns so they can be inspected with plain SQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// New initializes the schema and returns a Store.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect, table: "souqra_sessions"}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s schema: %w", dialect.Name, err)
	}
	return s, nil
}

// Open opens a database with the given driver and DSN and initializes the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Name, dsn)
	if err != nil {
		return nil, err
	}
	if dialect.Name == SQLite.Name {
		// One writer at a time avoids SQLITE_BUSY under concurrent sessions.
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL DEFAULT '',
			current_step TEXT NOT NULL DEFAULT '',
			state %s NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`, s.table, s.dialect.BlobType))
	return err
}

func (s *Store) ph(n int) string {
	return s.dialect.Placeholder(n)
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner, current_step, state, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			owner = excluded.owner,
			current_step = excluded.current_step,
			state = excluded.state,
			updated_at = excluded.updated_at`,
		s.table, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6))

	_, err = s.db.ExecContext(ctx, query,
		sessionID,
		state.Owner,
		state.CurrentStep,
		data,
		state.CreatedAt.UnixNano(),
		state.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves the snapshot.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	query := fmt.Sprintf(`SELECT state FROM %s WHERE id = %s`, s.table, s.ph(1))

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the session row.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.table, s.ph(1))
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns session IDs, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s ORDER BY created_at, id`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
