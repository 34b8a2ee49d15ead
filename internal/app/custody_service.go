package app

import (
	"context"
	"fmt"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
)

// snapshotSource is the part of SnapshotStore guardian actions need.
type snapshotSource interface {
	Refresh(ctx context.Context) error
	Snapshot() *reconcile.Snapshot
}

// CustodyServiceImpl implements the CustodyService interface.
type CustodyServiceImpl struct {
	store    snapshotSource
	executor EffectExecutor
	clock    clock.Clock
}

// NewCustodyService creates a new CustodyService with injected dependencies.
func NewCustodyService(store snapshotSource, executor EffectExecutor, clk clock.Clock) *CustodyServiceImpl {
	return &CustodyServiceImpl{
		store:    store,
		executor: executor,
		clock:    clk,
	}
}

// ConfirmPickup records that the acting guardian has the child. When the
// schedule expects the other guardian today and Force is not set, nothing
// is written and UnexpectedGuardian is reported.
func (s *CustodyServiceImpl) ConfirmPickup(ctx context.Context, req primary.PickupRequest) (*primary.PickupResult, error) {
	snap, viewer, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	e := reconcile.NewEvaluator(snap)
	expected := ""
	if v, ok := e.Schedule().Assignment(e.Today(now)); ok {
		expected = e.Resolver().Canonical(v)
	}

	child, exists := snap.Child(req.ChildID)
	if !exists {
		return nil, fmt.Errorf("child %s: %w", req.ChildID, custody.ErrNotFound)
	}

	guardCtx := custody.PickupContext{
		ChildID:       req.ChildID,
		ChildExists:   exists,
		ExpectedLabel: expected,
		ViewerLabel:   viewer.Label,
		Force:         req.Force,
	}
	if result := custody.CanConfirmPickup(guardCtx); !result.Allowed {
		return &primary.PickupResult{
			UnexpectedGuardian: true,
			ExpectedLabel:      expected,
			Child:              child,
		}, nil
	}

	effs := custody.PlanPickup(custody.ActionInput{
		FamilyID: snap.Family.ID,
		Child:    child,
		Viewer:   viewer,
		Partner:  snap.Partner(),
		Now:      now,
	})
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, fmt.Errorf("failed to confirm pickup: %w", err)
	}

	updated, err := s.refreshedChild(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	return &primary.PickupResult{ExpectedLabel: expected, Child: updated}, nil
}

// ConfirmDropoff records that the acting guardian left the child at a
// location, with the items sent along.
func (s *CustodyServiceImpl) ConfirmDropoff(ctx context.Context, req primary.DropoffRequest) (*primary.DropoffResult, error) {
	snap, viewer, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	child, exists := snap.Child(req.ChildID)
	guardCtx := custody.DropoffContext{
		ChildID:     req.ChildID,
		ChildExists: exists,
		Location:    req.Location,
	}
	if err := custody.CanConfirmDropoff(guardCtx).Error(); err != nil {
		return nil, err
	}

	effs := custody.PlanDropoff(custody.ActionInput{
		FamilyID: snap.Family.ID,
		Child:    child,
		Viewer:   viewer,
		Partner:  snap.Partner(),
		Now:      s.clock.Now(),
	}, req.Location, req.Items)
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, fmt.Errorf("failed to confirm dropoff: %w", err)
	}

	updated, err := s.refreshedChild(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	return &primary.DropoffResult{Child: updated}, nil
}

// current refreshes the snapshot so the action sees the latest recorded
// status, and returns the acting guardian.
func (s *CustodyServiceImpl) current(ctx context.Context) (*reconcile.Snapshot, custody.Guardian, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, custody.Guardian{}, err
	}
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, custody.Guardian{}, ErrNoSnapshot
	}

	viewer, ok := snap.Viewer()
	if !ok {
		return nil, custody.Guardian{}, fmt.Errorf("guardian %s: %w", snap.ViewerID, custody.ErrNotFound)
	}
	if actor := ctxutil.ActorFromContext(ctx); actor != "" && actor != viewer.ID {
		return nil, custody.Guardian{}, fmt.Errorf("acting guardian %s does not match dashboard guardian %s", actor, viewer.ID)
	}
	return snap, viewer, nil
}

func (s *CustodyServiceImpl) refreshedChild(ctx context.Context, childID string) (custody.Child, error) {
	if err := s.refresh(ctx); err != nil {
		return custody.Child{}, fmt.Errorf("action recorded but reload failed: %w", err)
	}
	child, _ := s.store.Snapshot().Child(childID)
	return child, nil
}

func (s *CustodyServiceImpl) refresh(ctx context.Context) error {
	return RefreshLatest(ctx, s.store)
}

// Ensure CustodyServiceImpl implements the interface
var _ primary.CustodyService = (*CustodyServiceImpl)(nil)
