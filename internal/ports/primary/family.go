package primary

import (
	"context"

	"github.com/example/custody/internal/core/custody"
)

// FamilyService defines the primary port for family membership.
type FamilyService interface {
	// CreateFamily creates a family with its first (admin) guardian.
	CreateFamily(ctx context.Context, req CreateFamilyRequest) (*CreateFamilyResponse, error)

	// AddGuardian adds a guardian with a role label to a family.
	AddGuardian(ctx context.Context, req AddGuardianRequest) (*custody.Guardian, error)

	// AddChild adds a child to a family.
	AddChild(ctx context.Context, req AddChildRequest) (*custody.Child, error)

	// GetFamily retrieves a family with its guardians and children.
	GetFamily(ctx context.Context, familyID string) (*FamilyOverview, error)
}

// CreateFamilyRequest contains parameters for creating a family.
type CreateFamilyRequest struct {
	Name       string
	Mode       custody.FamilyMode
	OwnerLabel string
	OwnerName  string
}

// CreateFamilyResponse contains the result of creating a family.
type CreateFamilyResponse struct {
	Family custody.Family
	Owner  custody.Guardian
}

// AddGuardianRequest contains parameters for adding a guardian.
type AddGuardianRequest struct {
	FamilyID string
	Label    string
	Name     string
}

// AddChildRequest contains parameters for adding a child.
type AddChildRequest struct {
	FamilyID    string
	Name        string
	DateOfBirth string // YYYY-MM-DD, optional
}

// FamilyOverview is a family with its members.
type FamilyOverview struct {
	Family    custody.Family
	Guardians []custody.Guardian
	Children  []custody.Child
}
