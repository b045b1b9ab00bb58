package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: partial index so only one pending offer can hold an exact
	// (offered, requested) pair. The reverse direction is checked in the
	// initiation transaction, since SQLite has no unordered-pair index.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_offers_pending_pair_unique
	     ON offers(offered_item_id, requested_item_id) WHERE status = 'pending'`,

	// Migration 2: drop the non-unique pair index early schemas created; it
	// covers the same expression as the unique one above.
	`DROP INDEX IF EXISTS idx_offers_pending_pair`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
