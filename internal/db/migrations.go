package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_family_schedule_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_default_handoff_time_to_cycles",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "move_event_children_to_link_table",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "create_audit_log",
		Up:      migrationV4,
	},
}

// RunMigrations applies every migration newer than the recorded schema
// version, each in its own transaction.
func RunMigrations(database *sql.DB) error {
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the original tables. Events carried a single
// child_id and cycles had no default handoff time.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS families (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL CHECK(mode IN ('solo', 'co-parent')) DEFAULT 'co-parent',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		);
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
		CREATE TABLE IF NOT EXISTS custody_cycles (
			id TEXT PRIMARY KEY,
			family_id TEXT NOT NULL,
			cycle_length INTEGER NOT NULL CHECK(cycle_length > 0),
			cycle_data TEXT NOT NULL,
			valid_from TEXT NOT NULL,
			valid_until TEXT,
			version_number INTEGER NOT NULL,
			created_by TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			UNIQUE(family_id, version_number),
			FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE
		);
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
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			family_id TEXT NOT NULL,
			child_id TEXT,
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
	`)
	return err
}

func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE custody_cycles ADD COLUMN default_handoff_time TEXT`)
	return err
}

// migrationV3 lets an event involve several children.
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS event_children (
			event_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			PRIMARY KEY (event_id, child_id),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
			FOREIGN KEY (child_id) REFERENCES children(id) ON DELETE CASCADE
		);
		INSERT OR IGNORE INTO event_children (event_id, child_id)
			SELECT id, child_id FROM events WHERE child_id IS NOT NULL;
		ALTER TABLE events DROP COLUMN child_id;
		CREATE INDEX IF NOT EXISTS idx_guardians_family ON guardians(family_id);
		CREATE INDEX IF NOT EXISTS idx_children_family ON children(family_id);
		CREATE INDEX IF NOT EXISTS idx_custody_cycles_family ON custody_cycles(family_id, valid_from);
		CREATE INDEX IF NOT EXISTS idx_custody_overrides_family ON custody_overrides(family_id, status);
		CREATE INDEX IF NOT EXISTS idx_events_family_start ON events(family_id, start_at);
		CREATE INDEX IF NOT EXISTS idx_handoffs_child ON handoffs(child_id, actual_at);
	`)
	return err
}

func migrationV4(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	return err
}
