package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/pulse/internal/apperr"
)

const slicesSchemaSQL = `
CREATE TABLE IF NOT EXISTS slices (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLite implements Provider with a single slices table.
type SQLite struct {
	conn *sql.DB
}

// sqliteDSN appends the WAL and busy-timeout options, joining with "&"
// when the caller's DSN already carries query options.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(slicesSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Read returns the stored value for key, or apperr.ErrNotFound.
func (s *SQLite) Read(key string) ([]byte, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM slices WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return []byte(value), nil
}

// Write replaces key's value in a single upsert statement.
func (s *SQLite) Write(key string, value []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO slices (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Absent keys are a no-op.
func (s *SQLite) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM slices WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
