package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the pragmas this app relies on. The
// pragmas ride in the DSN so every pooled connection gets them, not just the
// first one the pool hands out: WAL plus a busy timeout because offer
// transactions take the write lock up front and concurrent lifecycle calls
// must queue rather than fail, foreign keys because offers reference members
// and items.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}
