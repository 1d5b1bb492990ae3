// Package dbtest opens the Postgres database used by integration tests.
// Tests are skipped when TEST_DATABASE_URL is unset or unreachable.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/MrJamesThe3rd/consignd/internal/database"
)

const lockID int64 = 4411020018

// New returns a migrated, empty database. Packages using it are serialized
// with an advisory lock held until the test ends.
func New(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, dsn, database.Options{MaxConns: 8, Migrate: true})
	if err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		t.Fatalf("acquiring lock connection: %v", err)
	}

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockID); err != nil {
		conn.Close()
		db.Close()
		t.Fatalf("acquiring test lock: %v", err)
	}

	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
		conn.Close()
		db.Close()
	})

	Truncate(t, db)

	return db
}

// Truncate empties every application table.
func Truncate(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE listing_history, order_items, orders, listings, processed_webhook_events`); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
}
