package primary

import (
	"context"

	"github.com/example/custody/internal/core/custody"
)

// OverrideService defines the primary port for schedule overrides.
type OverrideService interface {
	// RequestOverride records a pending request assigning a date range.
	RequestOverride(ctx context.Context, req RequestOverrideRequest) (*custody.Override, error)

	// RespondToOverride approves or rejects a pending request.
	RespondToOverride(ctx context.Context, req RespondToOverrideRequest) (*custody.Override, error)

	// ListOverrides lists a family's overrides, optionally filtered by status.
	ListOverrides(ctx context.Context, familyID string, statuses ...custody.OverrideStatus) ([]*custody.Override, error)
}

// RequestOverrideRequest contains parameters for an override request.
type RequestOverrideRequest struct {
	FamilyID      string
	RequesterID   string
	From          custody.Date
	To            custody.Date
	GuardianLabel string // role label, guardian ID, or "split"
	Reason        string
}

// RespondToOverrideRequest contains an answer to an override request.
type RespondToOverrideRequest struct {
	OverrideID  string
	ResponderID string
	Approve     bool
}
