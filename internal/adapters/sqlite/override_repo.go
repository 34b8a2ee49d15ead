package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// OverrideRepository implements secondary.OverrideRepository with SQLite.
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository creates a new SQLite override repository.
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

const overrideColumns = `id, family_id, from_date, to_date, override_parent, reason, status, requested_by, responded_by, responded_at, created_at`

// Create persists a new override request.
func (r *OverrideRepository) Create(ctx context.Context, o *secondary.OverrideRecord) error {
	status := o.Status
	if status == "" {
		status = "pending"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custody_overrides (id, family_id, from_date, to_date, override_parent, reason, status, requested_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		o.ID, o.FamilyID, o.FromDate, o.ToDate, o.OverrideParent, nullString(o.Reason), status,
		nullString(o.RequestedBy), nullString(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create override: %w", err)
	}
	return nil
}

// GetByID retrieves an override by its ID.
func (r *OverrideRepository) GetByID(ctx context.Context, id string) (*secondary.OverrideRecord, error) {
	record, err := scanOverride(r.db.QueryRowContext(ctx,
		"SELECT "+overrideColumns+" FROM custody_overrides WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("override", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override: %w", err)
	}
	return record, nil
}

// List retrieves a family's overrides filtered by status, oldest first.
func (r *OverrideRepository) List(ctx context.Context, familyID string, statuses []string) ([]*secondary.OverrideRecord, error) {
	query := "SELECT " + overrideColumns + " FROM custody_overrides WHERE family_id = ?"
	args := []any{familyID}
	if len(statuses) > 0 {
		query += " AND status IN (" + placeholders(len(statuses)) + ")"
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []*secondary.OverrideRecord
	for rows.Next() {
		record, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides = append(overrides, record)
	}
	return overrides, rows.Err()
}

// Respond records an answer to a pending override. Answered overrides
// are left untouched.
func (r *OverrideRepository) Respond(ctx context.Context, id, status, respondedBy, respondedAt string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE custody_overrides SET status = ?, responded_by = ?, responded_at = ?
		 WHERE id = ? AND status = 'pending'`,
		status, nullString(respondedBy), nullString(respondedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to respond to override: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("override %s is not pending: %w", id, sql.ErrNoRows)
	}
	return nil
}

func scanOverride(row rowScanner) (*secondary.OverrideRecord, error) {
	var reason, requestedBy, respondedBy, respondedAt sql.NullString
	record := &secondary.OverrideRecord{}
	err := row.Scan(&record.ID, &record.FamilyID, &record.FromDate, &record.ToDate, &record.OverrideParent,
		&reason, &record.Status, &requestedBy, &respondedBy, &respondedAt, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.Reason = reason.String
	record.RequestedBy = requestedBy.String
	record.RespondedBy = respondedBy.String
	record.RespondedAt = respondedAt.String
	return record, nil
}

// Ensure OverrideRepository implements the interface
var _ secondary.OverrideRepository = (*OverrideRepository)(nil)
