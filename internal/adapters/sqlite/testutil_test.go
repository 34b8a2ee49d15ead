// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/custody/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedFamily inserts a co-parent family and returns its ID.
func seedFamily(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "fam-1"
	}
	if _, err := db.Exec("INSERT INTO families (id, name, mode) VALUES (?, 'Test family', 'co-parent')", id); err != nil {
		t.Fatalf("failed to seed family: %v", err)
	}
	return id
}

// seedGuardian inserts a guardian and returns its ID.
func seedGuardian(t *testing.T, db *sql.DB, id, familyID, label string) string {
	t.Helper()
	if _, err := db.Exec("INSERT INTO guardians (id, family_id, label, name) VALUES (?, ?, ?, ?)", id, familyID, label, label); err != nil {
		t.Fatalf("failed to seed guardian: %v", err)
	}
	return id
}

// seedChild inserts a child and returns its ID.
func seedChild(t *testing.T, db *sql.DB, id, familyID, name string) string {
	t.Helper()
	if _, err := db.Exec("INSERT INTO children (id, family_id, name) VALUES (?, ?, ?)", id, familyID, name); err != nil {
		t.Fatalf("failed to seed child: %v", err)
	}
	return id
}

// seedFamilyWithMembers inserts fam-1 with guardians g-dad/g-mom and child c1.
func seedFamilyWithMembers(t *testing.T, db *sql.DB) {
	t.Helper()
	seedFamily(t, db, "fam-1")
	seedGuardian(t, db, "g-dad", "fam-1", "dad")
	seedGuardian(t, db, "g-mom", "fam-1", "mom")
	seedChild(t, db, "c1", "fam-1", "Noa")
}
