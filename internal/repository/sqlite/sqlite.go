package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		user_id           INTEGER PRIMARY KEY,
		username          TEXT,
		full_name         TEXT NOT NULL DEFAULT '',
		registration_date DATETIME NOT NULL,
		is_blocked        INTEGER NOT NULL DEFAULT 0,
		is_admin          INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		from_id INTEGER NOT NULL,
		to_id   INTEGER NOT NULL,
		body    TEXT NOT NULL,
		sent_at DATETIME NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_messages_from_to ON messages(from_id, to_id);
	CREATE INDEX IF NOT EXISTS idx_messages_to_from ON messages(to_id, from_id);
`

// Open opens the database file at path, creating parent directories and
// the schema when missing. Both steps are idempotent.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes writers, so pragmas below stick.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}
