package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// FamilyServiceImpl implements the FamilyService interface.
type FamilyServiceImpl struct {
	familyRepo   secondary.FamilyRepository
	guardianRepo secondary.GuardianRepository
	childRepo    secondary.ChildRepository
	logWriter    secondary.LogWriter
}

// NewFamilyService creates a new FamilyService with injected dependencies.
func NewFamilyService(
	familyRepo secondary.FamilyRepository,
	guardianRepo secondary.GuardianRepository,
	childRepo secondary.ChildRepository,
	logWriter secondary.LogWriter,
) *FamilyServiceImpl {
	return &FamilyServiceImpl{
		familyRepo:   familyRepo,
		guardianRepo: guardianRepo,
		childRepo:    childRepo,
		logWriter:    logWriter,
	}
}

// CreateFamily creates a family and its first guardian, who becomes admin.
func (s *FamilyServiceImpl) CreateFamily(ctx context.Context, req primary.CreateFamilyRequest) (*primary.CreateFamilyResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = custody.ModeCoParent
	}
	if mode != custody.ModeSolo && mode != custody.ModeCoParent {
		return nil, fmt.Errorf("unknown family mode %q", mode)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("family name is required")
	}
	if err := custody.CanAddGuardian(custody.GuardianContext{Mode: mode, Label: req.OwnerLabel}).Error(); err != nil {
		return nil, err
	}

	family := &secondary.FamilyRecord{
		ID:   uuid.NewString(),
		Name: req.Name,
		Mode: string(mode),
	}
	if err := s.familyRepo.Create(ctx, family); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	owner := &secondary.GuardianRecord{
		ID:       uuid.NewString(),
		FamilyID: family.ID,
		Label:    strings.TrimSpace(req.OwnerLabel),
		Name:     req.OwnerName,
		Role:     "admin",
	}
	if err := s.guardianRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	// The new owner is the actor of their own family's first entries.
	ctx = ctxutil.WithActorID(ctxutil.WithFamilyID(ctx, family.ID), owner.ID)
	if err := s.audit(ctx, "family", family.ID); err != nil {
		return nil, err
	}
	if err := s.audit(ctx, "guardian", owner.ID); err != nil {
		return nil, err
	}

	return &primary.CreateFamilyResponse{
		Family: recordToFamily(family),
		Owner:  recordToGuardian(owner),
	}, nil
}

// AddGuardian adds a member guardian to a family.
func (s *FamilyServiceImpl) AddGuardian(ctx context.Context, req primary.AddGuardianRequest) (*custody.Guardian, error) {
	family, err := s.familyRepo.GetByID(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	existing, err := s.guardianRepo.ListByFamily(ctx, req.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}

	labels := make([]string, len(existing))
	for i, g := range existing {
		labels[i] = g.Label
	}
	guardCtx := custody.GuardianContext{
		Mode:           custody.FamilyMode(family.Mode),
		GuardianCount:  len(existing),
		Label:          req.Label,
		ExistingLabels: labels,
	}
	if err := custody.CanAddGuardian(guardCtx).Error(); err != nil {
		return nil, err
	}

	record := &secondary.GuardianRecord{
		ID:       uuid.NewString(),
		FamilyID: req.FamilyID,
		Label:    strings.TrimSpace(req.Label),
		Name:     req.Name,
		Role:     "member",
	}
	if err := s.guardianRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add guardian: %w", err)
	}
	if err := s.audit(ctxutil.WithFamilyID(ctx, req.FamilyID), "guardian", record.ID); err != nil {
		return nil, err
	}

	guardian := recordToGuardian(record)
	return &guardian, nil
}

// AddChild adds a child with unknown status to a family.
func (s *FamilyServiceImpl) AddChild(ctx context.Context, req primary.AddChildRequest) (*custody.Child, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("child name is required")
	}
	if req.DateOfBirth != "" {
		if _, err := custody.ParseDate(req.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if _, err := s.familyRepo.GetByID(ctx, req.FamilyID); err != nil {
		return nil, err
	}

	record := &secondary.ChildRecord{
		ID:          uuid.NewString(),
		FamilyID:    req.FamilyID,
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Status:      string(custody.StatusUnknown),
	}
	if err := s.childRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add child: %w", err)
	}
	if err := s.audit(ctxutil.WithFamilyID(ctx, req.FamilyID), "child", record.ID); err != nil {
		return nil, err
	}

	child := recordToChild(record)
	return &child, nil
}

// GetFamily retrieves a family with its guardians and children.
func (s *FamilyServiceImpl) GetFamily(ctx context.Context, familyID string) (*primary.FamilyOverview, error) {
	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	guardians, err := s.guardianRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	children, err := s.childRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	overview := &primary.FamilyOverview{Family: recordToFamily(family)}
	for _, g := range guardians {
		overview.Guardians = append(overview.Guardians, recordToGuardian(g))
	}
	for _, c := range children {
		overview.Children = append(overview.Children, recordToChild(c))
	}
	return overview, nil
}

func (s *FamilyServiceImpl) audit(ctx context.Context, entityType, entityID string) error {
	if s.logWriter == nil {
		return nil
	}
	if err := s.logWriter.LogCreate(ctx, entityType, entityID); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Ensure FamilyServiceImpl implements the interface
var _ primary.FamilyService = (*FamilyServiceImpl)(nil)
