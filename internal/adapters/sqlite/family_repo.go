// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// FamilyRepository implements secondary.FamilyRepository with SQLite.
type FamilyRepository struct {
	db *sql.DB
}

// NewFamilyRepository creates a new SQLite family repository.
func NewFamilyRepository(db *sql.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// Create persists a new family.
func (r *FamilyRepository) Create(ctx context.Context, family *secondary.FamilyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO families (id, name, mode, created_at)
		 VALUES (?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		family.ID, family.Name, family.Mode, nullString(family.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	return nil
}

// GetByID retrieves a family by its ID.
func (r *FamilyRepository) GetByID(ctx context.Context, id string) (*secondary.FamilyRecord, error) {
	record := &secondary.FamilyRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, mode, created_at FROM families WHERE id = ?", id,
	).Scan(&record.ID, &record.Name, &record.Mode, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, notFound("family", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return record, nil
}

// Ensure FamilyRepository implements the interface
var _ secondary.FamilyRepository = (*FamilyRepository)(nil)
