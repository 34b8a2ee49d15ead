package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/custody/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

const auditColumns = `id, family_id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at`

// Create persists a new audit entry.
func (r *AuditLogRepository) Create(ctx context.Context, entry *secondary.AuditLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, family_id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		entry.ID,
		entry.FamilyID,
		nullString(entry.ActorID),
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		nullString(entry.FieldName),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		nullString(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// GetByID retrieves an audit entry by its ID.
func (r *AuditLogRepository) GetByID(ctx context.Context, id string) (*secondary.AuditLogRecord, error) {
	record, err := scanAudit(r.db.QueryRowContext(ctx,
		"SELECT "+auditColumns+" FROM audit_log WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("audit entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}
	return record, nil
}

// List retrieves audit entries matching the given filters.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := "SELECT " + auditColumns + " FROM audit_log WHERE 1=1"
	args := []any{}

	if filters.FamilyID != "" {
		query += " AND family_id = ?"
		args = append(args, filters.FamilyID)
	}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditLogRecord
	for rows.Next() {
		record, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, record)
	}
	return entries, rows.Err()
}

// PruneOlderThan deletes entries created before cutoff.
func (r *AuditLogRepository) PruneOlderThan(ctx context.Context, cutoff string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned entries: %w", err)
	}
	return int(n), nil
}

func scanAudit(row rowScanner) (*secondary.AuditLogRecord, error) {
	var actorID, fieldName, oldValue, newValue sql.NullString
	record := &secondary.AuditLogRecord{}
	err := row.Scan(&record.ID,
		&record.FamilyID,
		&actorID,
		&record.EntityType,
		&record.EntityID,
		&record.Action,
		&fieldName,
		&oldValue,
		&newValue,
		&record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.ActorID = actorID.String
	record.FieldName = fieldName.String
	record.OldValue = oldValue.String
	record.NewValue = newValue.String
	return record, nil
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
