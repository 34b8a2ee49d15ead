package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// GuardianRepository implements secondary.GuardianRepository with SQLite.
type GuardianRepository struct {
	db *sql.DB
}

// NewGuardianRepository creates a new SQLite guardian repository.
func NewGuardianRepository(db *sql.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// Create adds a guardian to a family.
func (r *GuardianRepository) Create(ctx context.Context, guardian *secondary.GuardianRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guardians (id, family_id, label, name, role, created_at)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		guardian.ID, guardian.FamilyID, guardian.Label, guardian.Name, guardian.Role, nullString(guardian.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create guardian: %w", err)
	}
	return nil
}

// GetByID retrieves a guardian by its ID.
func (r *GuardianRepository) GetByID(ctx context.Context, id string) (*secondary.GuardianRecord, error) {
	record := &secondary.GuardianRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, family_id, label, name, role, created_at FROM guardians WHERE id = ?", id,
	).Scan(&record.ID, &record.FamilyID, &record.Label, &record.Name, &record.Role, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, notFound("guardian", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guardian: %w", err)
	}
	return record, nil
}

// ListByFamily retrieves all guardians of a family in join order.
func (r *GuardianRepository) ListByFamily(ctx context.Context, familyID string) ([]*secondary.GuardianRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, label, name, role, created_at FROM guardians
		 WHERE family_id = ? ORDER BY created_at, id`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	defer rows.Close()

	var guardians []*secondary.GuardianRecord
	for rows.Next() {
		record := &secondary.GuardianRecord{}
		if err := rows.Scan(&record.ID, &record.FamilyID, &record.Label, &record.Name, &record.Role, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guardian: %w", err)
		}
		guardians = append(guardians, record)
	}
	return guardians, rows.Err()
}

// Ensure GuardianRepository implements the interface
var _ secondary.GuardianRepository = (*GuardianRepository)(nil)
