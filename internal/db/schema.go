package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs. It reflects the
// state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests load it through GetSchemaSQL(), so a column referenced by an
// adapter but missing here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
//
// Timestamps are stored as RFC 3339 text in UTC and calendar dates as
// YYYY-MM-DD text, so lexical order is chronological order.
const SchemaSQL = `
-- Families
CREATE TABLE IF NOT EXISTS families (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL CHECK(mode IN ('solo', 'co-parent')) DEFAULT 'co-parent',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);

-- Guardians (family membership with role label)
CREATE TABLE IF NOT EXISTS guardians (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	label TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL CHECK(role IN ('admin', 'member')) DEFAULT 'member',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	UNIQUE(family_id, label),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_guardians_family ON guardians(family_id);

-- Children
CREATE TABLE IF NOT EXISTS children (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	name TEXT NOT NULL,
	date_of_birth TEXT,
	status TEXT NOT NULL DEFAULT 'unknown',
	current_guardian_id TEXT,
	status_changed_at TEXT,
	status_changed_by TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE,
	FOREIGN KEY (current_guardian_id) REFERENCES guardians(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_children_family ON children(family_id);

-- Custody cycles (versioned; one open version per family)
CREATE TABLE IF NOT EXISTS custody_cycles (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	cycle_length INTEGER NOT NULL CHECK(cycle_length > 0),
	cycle_data TEXT NOT NULL,
	valid_from TEXT NOT NULL,
	valid_until TEXT,
	default_handoff_time TEXT,
	version_number INTEGER NOT NULL,
	created_by TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	UNIQUE(family_id, version_number),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_custody_cycles_family ON custody_cycles(family_id, valid_from);

-- Custody overrides
CREATE TABLE IF NOT EXISTS custody_overrides (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	from_date TEXT NOT NULL,
	to_date TEXT NOT NULL,
	override_parent TEXT NOT NULL,
	reason TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'rejected')) DEFAULT 'pending',
	requested_by TEXT,
	responded_by TEXT,
	responded_at TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_custody_overrides_family ON custody_overrides(family_id, status);

-- Events
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('school', 'activity', 'pickup', 'dropoff', 'other', 'manual')),
	title TEXT NOT NULL,
	description TEXT,
	location TEXT,
	start_at TEXT NOT NULL,
	end_at TEXT,
	all_day INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('scheduled', 'pending_approval', 'cancelled')) DEFAULT 'scheduled',
	created_by TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_events_family_start ON events(family_id, start_at);

CREATE TABLE IF NOT EXISTS event_children (
	event_id TEXT NOT NULL,
	child_id TEXT NOT NULL,
	PRIMARY KEY (event_id, child_id),
	FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
	FOREIGN KEY (child_id) REFERENCES children(id) ON DELETE CASCADE
);

-- Handoffs (append-only)
CREATE TABLE IF NOT EXISTS handoffs (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	child_id TEXT NOT NULL,
	from_guardian TEXT NOT NULL,
	to_guardian TEXT NOT NULL,
	scheduled_at TEXT,
	actual_at TEXT NOT NULL,
	items TEXT,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE,
	FOREIGN KEY (child_id) REFERENCES children(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_handoffs_child ON handoffs(child_id, actual_at);

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_audit_log_family ON audit_log(family_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
`

// InitSchema brings database up to date. Fresh databases get SchemaSQL
// directly and every migration is marked applied; existing databases run
// pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if tableCount > 0 {
		return RunMigrations(database)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to mark migration %d applied: %w", m.Version, err)
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
