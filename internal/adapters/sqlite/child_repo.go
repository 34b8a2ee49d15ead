package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// ChildRepository implements secondary.ChildRepository with SQLite.
type ChildRepository struct {
	db *sql.DB
}

// NewChildRepository creates a new SQLite child repository.
func NewChildRepository(db *sql.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `id, family_id, name, date_of_birth, status, current_guardian_id, status_changed_at, status_changed_by, created_at`

// Create persists a new child.
func (r *ChildRepository) Create(ctx context.Context, child *secondary.ChildRecord) error {
	status := child.Status
	if status == "" {
		status = "unknown"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO children (id, family_id, name, date_of_birth, status, created_at)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		child.ID, child.FamilyID, child.Name, nullString(child.DateOfBirth), status, nullString(child.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// GetByID retrieves a child by its ID.
func (r *ChildRepository) GetByID(ctx context.Context, id string) (*secondary.ChildRecord, error) {
	record, err := scanChild(r.db.QueryRowContext(ctx,
		"SELECT "+childColumns+" FROM children WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("child", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return record, nil
}

// ListByFamily retrieves all children of a family ordered by name.
func (r *ChildRepository) ListByFamily(ctx context.Context, familyID string) ([]*secondary.ChildRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+childColumns+" FROM children WHERE family_id = ? ORDER BY name, id", familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var children []*secondary.ChildRecord
	for rows.Next() {
		record, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, record)
	}
	return children, rows.Err()
}

// UpdateStatus records an explicit status change.
func (r *ChildRepository) UpdateStatus(ctx context.Context, update secondary.ChildStatusUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE children SET status = ?, current_guardian_id = ?, status_changed_at = ?, status_changed_by = ?
		 WHERE id = ?`,
		update.Status, nullString(update.CurrentGuardianID), nullString(update.ChangedAt), nullString(update.ChangedBy), update.ChildID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("child", update.ChildID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (*secondary.ChildRecord, error) {
	var dob, holder, changedAt, changedBy sql.NullString
	record := &secondary.ChildRecord{}
	err := row.Scan(&record.ID, &record.FamilyID, &record.Name, &dob, &record.Status,
		&holder, &changedAt, &changedBy, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.DateOfBirth = dob.String
	record.CurrentGuardianID = holder.String
	record.StatusChangedAt = changedAt.String
	record.StatusChangedBy = changedBy.String
	return record, nil
}

// Ensure ChildRepository implements the interface
var _ secondary.ChildRepository = (*ChildRepository)(nil)
