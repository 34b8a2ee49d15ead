package primary

import (
	"context"
	"time"

	"github.com/example/custody/internal/core/custody"
)

// EventService defines the primary port for calendar events.
type EventService interface {
	// CreateEvent creates an event. Events on the partner's custody days
	// start as pending approval.
	CreateEvent(ctx context.Context, req CreateEventRequest) (*custody.Event, error)

	// UpdateEvent changes an event's fields and children. The approval
	// status is re-derived from the custody day of the new start.
	UpdateEvent(ctx context.Context, req UpdateEventRequest) (*custody.Event, error)

	// CancelEvent soft-deletes an event.
	CancelEvent(ctx context.Context, eventID string) error

	// ListEvents lists non-cancelled events starting in [from, to).
	ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]*custody.Event, error)
}

// CreateEventRequest contains parameters for creating an event.
type CreateEventRequest struct {
	FamilyID      string
	CreatorID     string
	Type          custody.EventType
	Title         string
	Description   string
	Location      string
	Start         time.Time
	End           *time.Time
	AllDay        bool
	ChildIDs      []string
	BackpackItems []string
}

// UpdateEventRequest contains the changes to an event. Nil fields keep
// their current value.
type UpdateEventRequest struct {
	EventID       string
	EditorID      string
	Type          *custody.EventType
	Title         *string
	Notes         *string
	Location      *string
	Start         *time.Time
	End           *time.Time
	ClearEnd      bool // removes the end time; wins over End
	AllDay        *bool
	ChildIDs      []string // nil keeps the linked children
	BackpackItems []string // nil keeps the backpack items
}
