package primary

import "context"

// LogService defines the primary port for the family audit trail.
type LogService interface {
	// ListLogs retrieves audit entries matching the given filters.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// GetLog retrieves a single audit entry by ID.
	GetLog(ctx context.Context, id string) (*LogEntry, error)

	// PruneLogs deletes entries older than the specified number of days.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents an audit entry at the port boundary.
type LogEntry struct {
	ID         string
	FamilyID   string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // For updates only
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// LogFilters contains filter options for querying the audit trail.
type LogFilters struct {
	FamilyID   string
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
