package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/oss-finder/pkg/db"
)

const currentSchemaVersion = 1

type Sqlite struct {
	db *db.Sqlite
}

// NewSqlite migrates the schema and returns a store over handle.
func NewSqlite(handle *db.Sqlite) (*Sqlite, error) {
	s := &Sqlite{db: handle}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sqlite) migrate() error {
	conn := s.db.Conn()
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	if err := conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		version = 0
	}
	if version >= currentSchemaVersion {
		return nil
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS state_entries (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			revision   INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		)`,
		`DELETE FROM schema_version`,
		fmt.Sprintf(`INSERT INTO schema_version (version) VALUES (%d)`, currentSchemaVersion),
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

func (s *Sqlite) Get(ctx context.Context, namespace, key string) (Entry, error) {
	var (
		entry     Entry
		updatedAt string
	)
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT value, revision, updated_at FROM state_entries WHERE namespace = ? AND key = ?`, namespace, key)
	if err := row.Scan(&entry.Value, &entry.Revision, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
		}
		return Entry{}, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return entry, nil
}

func (s *Sqlite) Put(ctx context.Context, namespace, key string, value []byte, expectedRevision int64) (int64, error) {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT revision FROM state_entries WHERE namespace = ? AND key = ?`, namespace, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read revision %s/%s: %w", namespace, key, err)
	}
	if err := checkRevision(current, expectedRevision); err != nil {
		return current, err
	}

	next := current + 1
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO state_entries (namespace, key, value, revision, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, revision = excluded.revision, updated_at = excluded.updated_at`,
		namespace, key, value, next, now)
	if err != nil {
		return 0, fmt.Errorf("write %s/%s: %w", namespace, key, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func (s *Sqlite) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM state_entries WHERE namespace = ? AND key = ?`, namespace, key)
	return err
}

func (s *Sqlite) Keys(ctx context.Context, namespace string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT key FROM state_entries WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}
