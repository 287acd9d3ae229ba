package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/nextai/nextai/internal/config"
	"github.com/nextai/nextai/internal/db"
)

func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "nextai",
		Password: "nextai_pass",
		DBName:   "nextai_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	ResetTables(t, conn)
	return conn, func() {
		_ = conn.Close()
	}
}

// ResetTables empties the mutable tables; plans are seeded by migrations and
// kept.
func ResetTables(t *testing.T, conn *sql.DB) {
	t.Helper()
	tables := []string{
		"notifications",
		"friendships",
		"ai_messages",
		"chat_sessions",
		"verification_codes",
		"contacts",
		"admins",
		"users",
	}
	for _, table := range tables {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}
