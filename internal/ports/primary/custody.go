package primary

import (
	"context"

	"github.com/example/custody/internal/core/custody"
)

// CustodyService defines the primary port for guardian actions. The
// acting guardian and family are taken from the context.
type CustodyService interface {
	// ConfirmPickup records that the acting guardian has the child.
	ConfirmPickup(ctx context.Context, req PickupRequest) (*PickupResult, error)

	// ConfirmDropoff records that the acting guardian left the child at a
	// location.
	ConfirmDropoff(ctx context.Context, req DropoffRequest) (*DropoffResult, error)
}

// PickupRequest contains parameters for a pickup.
type PickupRequest struct {
	ChildID string
	Force   bool
}

// PickupResult is the outcome of a pickup. When UnexpectedGuardian is
// set nothing was written.
type PickupResult struct {
	UnexpectedGuardian bool
	ExpectedLabel      string
	Child              custody.Child
}

// DropoffRequest contains parameters for a dropoff.
type DropoffRequest struct {
	ChildID  string
	Location string
	Items    []string
}

// DropoffResult is the outcome of a dropoff.
type DropoffResult struct {
	Child custody.Child
}
