package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAppliesPragmasToEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pragmas.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	// Hold two pooled connections at once so both are freshly created, then
	// check each got the DSN pragmas.
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		conn, err := database.Conn(ctx)
		if err != nil {
			t.Fatalf("getting connection %d: %v", i, err)
		}
		defer conn.Close()

		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("reading foreign_keys on connection %d: %v", i, err)
		}
		if fk != 1 {
			t.Errorf("connection %d: expected foreign_keys=1, got %d", i, fk)
		}

		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("reading journal_mode on connection %d: %v", i, err)
		}
		if mode != "wal" {
			t.Errorf("connection %d: expected journal_mode=wal, got %q", i, mode)
		}
	}
}
