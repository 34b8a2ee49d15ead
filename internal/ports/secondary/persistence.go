// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
//
// Timestamps cross this boundary as RFC 3339 strings in UTC and calendar
// dates as YYYY-MM-DD strings; conversion to domain types happens in the
// application layer.
package secondary

import "context"

// FamilyRepository defines the secondary port for family persistence.
type FamilyRepository interface {
	// Create persists a new family.
	Create(ctx context.Context, family *FamilyRecord) error

	// GetByID retrieves a family by its ID.
	GetByID(ctx context.Context, id string) (*FamilyRecord, error)
}

// FamilyRecord represents a family as stored in persistence.
type FamilyRecord struct {
	ID        string
	Name      string
	Mode      string // 'solo' or 'co-parent'
	CreatedAt string
}

// GuardianRepository defines the secondary port for family membership.
type GuardianRepository interface {
	// Create adds a guardian to a family.
	Create(ctx context.Context, guardian *GuardianRecord) error

	// GetByID retrieves a guardian by its ID.
	GetByID(ctx context.Context, id string) (*GuardianRecord, error)

	// ListByFamily retrieves all guardians of a family in join order.
	ListByFamily(ctx context.Context, familyID string) ([]*GuardianRecord, error)
}

// GuardianRecord represents a family member as stored in persistence.
type GuardianRecord struct {
	ID        string
	FamilyID  string
	Label     string // role label used in cycle data, e.g. "dad"
	Name      string
	Role      string // 'admin' or 'member'
	CreatedAt string
}

// ChildRepository defines the secondary port for child persistence.
type ChildRepository interface {
	// Create persists a new child.
	Create(ctx context.Context, child *ChildRecord) error

	// GetByID retrieves a child by its ID.
	GetByID(ctx context.Context, id string) (*ChildRecord, error)

	// ListByFamily retrieves all children of a family ordered by name.
	ListByFamily(ctx context.Context, familyID string) ([]*ChildRecord, error)

	// UpdateStatus records an explicit status change.
	UpdateStatus(ctx context.Context, update ChildStatusUpdate) error
}

// ChildRecord represents a child as stored in persistence.
type ChildRecord struct {
	ID                string
	FamilyID          string
	Name              string
	DateOfBirth       string
	Status            string
	CurrentGuardianID string
	StatusChangedAt   string
	StatusChangedBy   string
	CreatedAt         string
}

// ChildStatusUpdate carries the fields written by a confirmed pickup or dropoff.
type ChildStatusUpdate struct {
	ChildID           string
	Status            string
	CurrentGuardianID string // empty clears the holder
	ChangedAt         string
	ChangedBy         string
}

// CycleRepository defines the secondary port for custody cycle versions.
type CycleRepository interface {
	// GetActive retrieves the cycle in effect for asOf. Returns nil, nil
	// when the family has no cycle covering that date.
	GetActive(ctx context.Context, familyID, asOf string) (*CycleRecord, error)

	// Supersede closes the family's open cycle at the new cycle's
	// valid_from and inserts the new version in one transaction. The
	// version number is assigned by the repository.
	Supersede(ctx context.Context, cycle *CycleRecord) error

	// List retrieves every cycle version of a family, newest first.
	List(ctx context.Context, familyID string) ([]*CycleRecord, error)
}

// CycleRecord represents one version of a custody cycle.
type CycleRecord struct {
	ID                 string
	FamilyID           string
	CycleLength        int
	CycleData          string // JSON array of slots
	ValidFrom          string
	ValidUntil         string
	DefaultHandoffTime string // HH:MM, empty when unset
	VersionNumber      int
	CreatedBy          string
	CreatedAt          string
}

// OverrideRepository defines the secondary port for schedule override requests.
type OverrideRepository interface {
	// Create persists a new override request.
	Create(ctx context.Context, override *OverrideRecord) error

	// GetByID retrieves an override by its ID.
	GetByID(ctx context.Context, id string) (*OverrideRecord, error)

	// List retrieves a family's overrides whose status is one of statuses
	// (all statuses when empty), oldest first.
	List(ctx context.Context, familyID string, statuses []string) ([]*OverrideRecord, error)

	// Respond records an answer to a pending override.
	Respond(ctx context.Context, id, status, respondedBy, respondedAt string) error
}

// OverrideRecord represents a schedule override as stored in persistence.
type OverrideRecord struct {
	ID             string
	FamilyID       string
	FromDate       string
	ToDate         string
	OverrideParent string
	Reason         string
	Status         string // 'pending', 'approved', 'rejected'
	RequestedBy    string
	RespondedBy    string
	RespondedAt    string
	CreatedAt      string
}

// EventRepository defines the secondary port for calendar events.
type EventRepository interface {
	// Create persists an event and its child links.
	Create(ctx context.Context, event *EventRecord) error

	// GetByID retrieves an event with its child links.
	GetByID(ctx context.Context, id string) (*EventRecord, error)

	// ListInWindow retrieves non-cancelled events starting in [from, to),
	// ordered by start.
	ListInWindow(ctx context.Context, familyID, from, to string) ([]*EventRecord, error)

	// Update rewrites an event's fields and replaces its child links.
	Update(ctx context.Context, event *EventRecord) error

	// Cancel marks an event cancelled. Events are never hard-deleted.
	Cancel(ctx context.Context, id string) error
}

// EventRecord represents a calendar event as stored in persistence.
type EventRecord struct {
	ID          string
	FamilyID    string
	Type        string
	Title       string
	Description string
	Location    string
	StartAt     string
	EndAt       string // empty when the event has no end time
	AllDay      bool
	Status      string
	CreatedBy   string
	ChildIDs    []string
	CreatedAt   string
}

// HandoffRepository defines the secondary port for handoff history.
// Handoffs are append-only.
type HandoffRepository interface {
	// Create appends a handoff.
	Create(ctx context.Context, handoff *HandoffRecord) error

	// LatestFrom retrieves the most recent handoff of child by the given
	// outgoing guardian. Returns nil, nil when there is none.
	LatestFrom(ctx context.Context, childID, fromGuardianID string) (*HandoffRecord, error)

	// ListByChild retrieves a child's handoffs, newest first.
	ListByChild(ctx context.Context, childID string, limit int) ([]*HandoffRecord, error)
}

// HandoffRecord represents a handoff as stored in persistence.
type HandoffRecord struct {
	ID           string
	FamilyID     string
	ChildID      string
	FromGuardian string
	ToGuardian   string
	ScheduledAt  string
	ActualAt     string
	Items        string // JSON array of {name, flagged_missing}
	Notes        string
	CreatedAt    string
}

// AuditLogRepository defines the secondary port for the family audit trail.
type AuditLogRepository interface {
	// Create persists a new audit entry.
	Create(ctx context.Context, entry *AuditLogRecord) error

	// GetByID retrieves an audit entry by its ID.
	GetByID(ctx context.Context, id string) (*AuditLogRecord, error)

	// List retrieves audit entries matching the given filters, newest first.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)

	// PruneOlderThan deletes entries created before the cutoff.
	PruneOlderThan(ctx context.Context, cutoff string) (int, error)
}

// AuditLogRecord represents an audit entry as stored in persistence.
type AuditLogRecord struct {
	ID         string
	FamilyID   string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// AuditLogFilters contains filter options for querying the audit trail.
type AuditLogFilters struct {
	FamilyID   string
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
