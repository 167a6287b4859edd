package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Sqlite wraps a sql.DB for the file-backed state database.
type Sqlite struct {
	conn *sql.DB
}

// OpenSqlite opens or creates the database at path, creating the parent directory.
func OpenSqlite(path string) (*Sqlite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers from blocking the single writer.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Sqlite{conn: conn}, nil
}

// OpenSqliteInMemory opens a private in-memory database, used by tests.
func OpenSqliteInMemory() (*Sqlite, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)
	return &Sqlite{conn: conn}, nil
}

func (s *Sqlite) Conn() *sql.DB {
	return s.conn
}

func (s *Sqlite) Close() error {
	return s.conn.Close()
}
