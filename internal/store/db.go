package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	token       TEXT NOT NULL,
	first_name  TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL,
	role        TEXT NOT NULL,
	user_id     INTEGER NOT NULL DEFAULT 0,
	officer_id  INTEGER NOT NULL DEFAULT 0,
	department  TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL DEFAULT '',
	expires_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS petition_cache (
	petition_id INTEGER PRIMARY KEY,
	data        TEXT NOT NULL,
	fetched_at  TIMESTAMP NOT NULL
);
`

type DB struct {
	*sqlx.DB
}

// Open opens (creating if necessary) the local state database backing
// persisted sessions and the petition snapshot cache.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// Single client process; serialize access at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
