package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// CycleRepository implements secondary.CycleRepository with SQLite.
// Cycles are versioned: a new version closes the open one.
type CycleRepository struct {
	db *sql.DB
}

// NewCycleRepository creates a new SQLite cycle repository.
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

const cycleColumns = `id, family_id, cycle_length, cycle_data, valid_from, valid_until, default_handoff_time, version_number, created_by, created_at`

// GetActive retrieves the cycle in effect for asOf, or nil when none.
func (r *CycleRepository) GetActive(ctx context.Context, familyID, asOf string) (*secondary.CycleRecord, error) {
	record, err := scanCycle(r.db.QueryRowContext(ctx,
		"SELECT "+cycleColumns+` FROM custody_cycles
		 WHERE family_id = ? AND valid_from <= ? AND (valid_until IS NULL OR valid_until > ?)
		 ORDER BY version_number DESC LIMIT 1`,
		familyID, asOf, asOf,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	return record, nil
}

// Supersede closes the open cycle and inserts cycle as the next version.
// cycle.VersionNumber is set on success.
func (r *CycleRepository) Supersede(ctx context.Context, cycle *secondary.CycleRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cycle transaction: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version_number), 0) + 1 FROM custody_cycles WHERE family_id = ?",
		cycle.FamilyID,
	).Scan(&version); err != nil {
		return fmt.Errorf("failed to get next cycle version: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE custody_cycles SET valid_until = ? WHERE family_id = ? AND valid_until IS NULL",
		cycle.ValidFrom, cycle.FamilyID,
	); err != nil {
		return fmt.Errorf("failed to close active cycle: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO custody_cycles (id, family_id, cycle_length, cycle_data, valid_from, valid_until, default_handoff_time, version_number, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		cycle.ID, cycle.FamilyID, cycle.CycleLength, cycle.CycleData, cycle.ValidFrom,
		nullString(cycle.ValidUntil), nullString(cycle.DefaultHandoffTime), version,
		nullString(cycle.CreatedBy), nullString(cycle.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to create cycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}
	cycle.VersionNumber = version
	return nil
}

// List retrieves every cycle version of a family, newest first.
func (r *CycleRepository) List(ctx context.Context, familyID string) ([]*secondary.CycleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+cycleColumns+" FROM custody_cycles WHERE family_id = ? ORDER BY version_number DESC",
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*secondary.CycleRecord
	for rows.Next() {
		record, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, record)
	}
	return cycles, rows.Err()
}

func scanCycle(row rowScanner) (*secondary.CycleRecord, error) {
	var validUntil, handoffTime, createdBy sql.NullString
	record := &secondary.CycleRecord{}
	err := row.Scan(&record.ID, &record.FamilyID, &record.CycleLength, &record.CycleData,
		&record.ValidFrom, &validUntil, &handoffTime, &record.VersionNumber, &createdBy, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.ValidUntil = validUntil.String
	record.DefaultHandoffTime = handoffTime.String
	record.CreatedBy = createdBy.String
	return record, nil
}

// Ensure CycleRepository implements the interface
var _ secondary.CycleRepository = (*CycleRepository)(nil)
