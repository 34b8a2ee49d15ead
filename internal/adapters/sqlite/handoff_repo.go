package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// HandoffRepository implements secondary.HandoffRepository with SQLite.
// Handoffs are immutable - no Update or Delete operations.
type HandoffRepository struct {
	db *sql.DB
}

// NewHandoffRepository creates a new SQLite handoff repository.
func NewHandoffRepository(db *sql.DB) *HandoffRepository {
	return &HandoffRepository{db: db}
}

const handoffColumns = `id, family_id, child_id, from_guardian, to_guardian, scheduled_at, actual_at, items, notes, created_at`

// Create appends a handoff.
func (r *HandoffRepository) Create(ctx context.Context, handoff *secondary.HandoffRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO handoffs (id, family_id, child_id, from_guardian, to_guardian, scheduled_at, actual_at, items, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		handoff.ID, handoff.FamilyID, handoff.ChildID, handoff.FromGuardian, handoff.ToGuardian,
		nullString(handoff.ScheduledAt), handoff.ActualAt, nullString(handoff.Items), nullString(handoff.Notes),
		nullString(handoff.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create handoff: %w", err)
	}
	return nil
}

// LatestFrom retrieves the most recent handoff of child by fromGuardianID,
// or nil when there is none.
func (r *HandoffRepository) LatestFrom(ctx context.Context, childID, fromGuardianID string) (*secondary.HandoffRecord, error) {
	record, err := scanHandoff(r.db.QueryRowContext(ctx,
		"SELECT "+handoffColumns+` FROM handoffs
		 WHERE child_id = ? AND from_guardian = ?
		 ORDER BY actual_at DESC, created_at DESC LIMIT 1`,
		childID, fromGuardianID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest handoff: %w", err)
	}
	return record, nil
}

// ListByChild retrieves a child's handoffs, newest first.
func (r *HandoffRepository) ListByChild(ctx context.Context, childID string, limit int) ([]*secondary.HandoffRecord, error) {
	query := "SELECT " + handoffColumns + " FROM handoffs WHERE child_id = ? ORDER BY actual_at DESC, created_at DESC"
	args := []any{childID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list handoffs: %w", err)
	}
	defer rows.Close()

	var handoffs []*secondary.HandoffRecord
	for rows.Next() {
		record, err := scanHandoff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan handoff: %w", err)
		}
		handoffs = append(handoffs, record)
	}
	return handoffs, rows.Err()
}

func scanHandoff(row rowScanner) (*secondary.HandoffRecord, error) {
	var scheduledAt, items, notes sql.NullString
	record := &secondary.HandoffRecord{}
	err := row.Scan(&record.ID, &record.FamilyID, &record.ChildID, &record.FromGuardian, &record.ToGuardian,
		&scheduledAt, &record.ActualAt, &items, &notes, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.ScheduledAt = scheduledAt.String
	record.Items = items.String
	record.Notes = notes.String
	return record, nil
}

// Ensure HandoffRepository implements the interface
var _ secondary.HandoffRepository = (*HandoffRepository)(nil)
