package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore is the local ConfigLog implementation, used when no
// spreadsheet is configured. It keeps the same Config/Logs shape as the
// spreadsheet so the two stores are interchangeable.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS config (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp DATETIME NOT NULL,
        action TEXT NOT NULL,
        details TEXT NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query config: %w", err)
	}
	return value, true, nil
}

// SetConfig upserts a config entry. The spreadsheet store has no write
// path for config; this exists for local setup and tests.
func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendLog(ctx context.Context, action, details string) error {
	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO logs (timestamp, action, details) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare log insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, time.Now().Format(TimestampLayout), action, details)
	if err != nil {
		return fmt.Errorf("failed to execute log insert: %w", err)
	}
	return nil
}

// RecentLogs returns up to limit records, newest first.
func (s *SQLiteStore) RecentLogs(ctx context.Context, limit int) ([]LogRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, timestamp, action, details FROM logs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var records []LogRecord
	for rows.Next() {
		var rec LogRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Action, &rec.Details); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		if parsed, perr := time.Parse(TimestampLayout, ts); perr == nil {
			rec.Timestamp = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
