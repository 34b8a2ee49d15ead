package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// OverrideServiceImpl implements the OverrideService interface.
type OverrideServiceImpl struct {
	overrideRepo secondary.OverrideRepository
	familyRepo   secondary.FamilyRepository
	guardianRepo secondary.GuardianRepository
	logWriter    secondary.LogWriter
	clock        clock.Clock
}

// NewOverrideService creates a new OverrideService with injected dependencies.
func NewOverrideService(
	overrideRepo secondary.OverrideRepository,
	familyRepo secondary.FamilyRepository,
	guardianRepo secondary.GuardianRepository,
	logWriter secondary.LogWriter,
	clk clock.Clock,
) *OverrideServiceImpl {
	return &OverrideServiceImpl{
		overrideRepo: overrideRepo,
		familyRepo:   familyRepo,
		guardianRepo: guardianRepo,
		logWriter:    logWriter,
		clock:        clk,
	}
}

// RequestOverride records a pending override. The guardian may be given
// as a role label or identifier; it is stored as the role label.
func (s *OverrideServiceImpl) RequestOverride(ctx context.Context, req primary.RequestOverrideRequest) (*custody.Override, error) {
	records, err := s.guardianRepo.ListByFamily(ctx, req.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	guardians := make([]custody.Guardian, len(records))
	for i, r := range records {
		guardians[i] = recordToGuardian(r)
	}
	resolver := custody.NewResolver(guardians, "")
	label := resolver.Canonical(req.GuardianLabel)

	guardCtx := custody.OverrideRequestContext{
		FromDate:   req.From,
		ToDate:     req.To,
		Label:      label,
		LabelKnown: resolver.IsKnownLabel(label),
	}
	if err := custody.CanRequestOverride(guardCtx).Error(); err != nil {
		return nil, err
	}

	requester := req.RequesterID
	if requester == "" {
		requester = ctxutil.ActorFromContext(ctx)
	}
	record := &secondary.OverrideRecord{
		ID:             uuid.NewString(),
		FamilyID:       req.FamilyID,
		FromDate:       req.From.String(),
		ToDate:         req.To.String(),
		OverrideParent: label,
		Reason:         req.Reason,
		Status:         string(custody.OverridePending),
		RequestedBy:    requester,
		CreatedAt:      formatTime(s.clock.Now()),
	}
	if err := s.overrideRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create override: %w", err)
	}
	if s.logWriter != nil {
		if err := s.logWriter.LogCreate(ctxutil.WithFamilyID(ctx, req.FamilyID), "override", record.ID); err != nil {
			return nil, fmt.Errorf("failed to write audit entry: %w", err)
		}
	}
	return s.get(ctx, record.ID)
}

// RespondToOverride approves or rejects a pending override.
func (s *OverrideServiceImpl) RespondToOverride(ctx context.Context, req primary.RespondToOverrideRequest) (*custody.Override, error) {
	record, err := s.overrideRepo.GetByID(ctx, req.OverrideID)
	if err != nil {
		return nil, err
	}
	family, err := s.familyRepo.GetByID(ctx, record.FamilyID)
	if err != nil {
		return nil, err
	}

	responder := req.ResponderID
	if responder == "" {
		responder = ctxutil.ActorFromContext(ctx)
	}
	member, err := s.isMember(ctx, record.FamilyID, responder)
	if err != nil {
		return nil, err
	}
	guardCtx := custody.OverrideResponseContext{
		OverrideID:        record.ID,
		Status:            custody.OverrideStatus(record.Status),
		RequestedBy:       record.RequestedBy,
		ResponderID:       responder,
		ResponderIsMember: member,
		Solo:              family.Mode == string(custody.ModeSolo),
	}
	if err := custody.CanRespondToOverride(guardCtx).Error(); err != nil {
		return nil, err
	}

	status := custody.OverrideRejected
	if req.Approve {
		status = custody.OverrideApproved
	}
	if err := s.overrideRepo.Respond(ctx, record.ID, string(status), responder, formatTime(s.clock.Now())); err != nil {
		return nil, fmt.Errorf("failed to respond to override: %w", err)
	}
	if s.logWriter != nil {
		auditCtx := ctxutil.WithFamilyID(ctx, record.FamilyID)
		if err := s.logWriter.LogUpdate(auditCtx, "override", record.ID, "status", record.Status, string(status)); err != nil {
			return nil, fmt.Errorf("failed to write audit entry: %w", err)
		}
	}
	return s.get(ctx, record.ID)
}

// isMember reports whether guardianID belongs to familyID.
func (s *OverrideServiceImpl) isMember(ctx context.Context, familyID, guardianID string) (bool, error) {
	if guardianID == "" {
		return false, nil
	}
	guardian, err := s.guardianRepo.GetByID(ctx, guardianID)
	if errors.Is(err, custody.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up guardian: %w", err)
	}
	return guardian.FamilyID == familyID, nil
}

// ListOverrides lists a family's overrides, oldest first.
func (s *OverrideServiceImpl) ListOverrides(ctx context.Context, familyID string, statuses ...custody.OverrideStatus) ([]*custody.Override, error) {
	filter := make([]string, len(statuses))
	for i, st := range statuses {
		filter[i] = string(st)
	}
	records, err := s.overrideRepo.List(ctx, familyID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*custody.Override, 0, len(records))
	for _, r := range records {
		o, err := recordToOverride(r)
		if err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, nil
}

func (s *OverrideServiceImpl) get(ctx context.Context, id string) (*custody.Override, error) {
	record, err := s.overrideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o, err := recordToOverride(record)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Ensure OverrideServiceImpl implements the interface
var _ primary.OverrideService = (*OverrideServiceImpl)(nil)
