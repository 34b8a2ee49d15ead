package primary

import (
	"context"

	"github.com/example/custody/internal/core/custody"
)

// CycleService defines the primary port for custody cycles.
type CycleService interface {
	// SetCycle installs a new cycle version, superseding the active one.
	SetCycle(ctx context.Context, req SetCycleRequest) (*custody.Cycle, error)

	// GetActiveCycle returns the cycle in effect on asOf, or nil when the
	// family has none.
	GetActiveCycle(ctx context.Context, familyID string, asOf custody.Date) (*custody.Cycle, error)

	// ListCycles returns every cycle version, newest first.
	ListCycles(ctx context.Context, familyID string) ([]*custody.Cycle, error)

	// Calendar materializes the layered schedule for a viewer over [From, To].
	Calendar(ctx context.Context, req CalendarRequest) ([]CalendarDay, error)
}

// SetCycleRequest contains parameters for a new cycle version.
type SetCycleRequest struct {
	FamilyID           string
	Length             int
	Slots              []custody.Slot
	ValidFrom          custody.Date
	DefaultHandoffTime *custody.TimeOfDay
}

// CalendarRequest selects the calendar window and viewer.
type CalendarRequest struct {
	FamilyID string
	ViewerID string
	From     custody.Date
	To       custody.Date
}

// CalendarDay is one day of the layered schedule.
type CalendarDay struct {
	Date       custody.Date
	Assignment string // canonical role label or "split"; empty when unassigned
	Label      string // viewer-relative: "me", partner label or "split"
	Override   bool   // an approved override decides the day
	Pending    *custody.Override
}
