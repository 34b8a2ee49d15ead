package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// BriefServiceImpl implements the BriefService interface.
type BriefServiceImpl struct {
	childRepo   secondary.ChildRepository
	eventRepo   secondary.EventRepository
	handoffRepo secondary.HandoffRepository
	clock       clock.Clock
	loc         *time.Location
}

// NewBriefService creates a new BriefService with injected dependencies.
func NewBriefService(
	childRepo secondary.ChildRepository,
	eventRepo secondary.EventRepository,
	handoffRepo secondary.HandoffRepository,
	clk clock.Clock,
	loc *time.Location,
) *BriefServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	return &BriefServiceImpl{
		childRepo:   childRepo,
		eventRepo:   eventRepo,
		handoffRepo: handoffRepo,
		clock:       clk,
		loc:         loc,
	}
}

// GenerateBrief lists the child's events from the start of the brief
// period through the end of today.
func (s *BriefServiceImpl) GenerateBrief(ctx context.Context, req primary.BriefRequest) (*primary.Brief, error) {
	viewerID := ctxutil.ActorFromContext(ctx)
	if viewerID == "" {
		return nil, fmt.Errorf("brief requires an acting guardian")
	}
	child, err := s.childRepo.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	today := custody.DateOf(now)
	mode := req.Mode
	if mode == "" {
		mode = primary.BriefSinceLastSeen
	}

	brief := &primary.Brief{
		ChildID:   child.ID,
		ChildName: child.Name,
		Mode:      mode,
	}
	switch mode {
	case primary.BriefToday:
		brief.Since = today.At(custody.TimeOfDay{}, s.loc)
		brief.HadHandoff = true
	case primary.BriefSinceLastSeen:
		last, err := s.handoffRepo.LatestFrom(ctx, child.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to find last handoff: %w", err)
		}
		var lastAt *time.Time
		if last != nil {
			if at, err := parseTime(last.ActualAt); err == nil && !at.IsZero() {
				lastAt = &at
			}
		}
		brief.Since, brief.HadHandoff = custody.BriefSince(now, lastAt, primary.BriefMaxDays)
	default:
		return nil, fmt.Errorf("unknown brief mode %q", mode)
	}

	until := today.AddDays(1).At(custody.TimeOfDay{}, s.loc)
	records, err := s.eventRepo.ListInWindow(ctx, child.FamilyID, formatTime(brief.Since), formatTime(until))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for _, r := range records {
		event, err := recordToEvent(r)
		if err != nil || !event.InvolvesChild(child.ID) {
			continue
		}
		items, notes := custody.ParseDescription(event.Description)
		brief.Items = append(brief.Items, primary.BriefItem{
			Event:    event,
			When:     custody.RelativeTime(event.Start, now),
			Notes:    notes,
			Backpack: items,
		})
	}
	return brief, nil
}

// Ensure BriefServiceImpl implements the interface
var _ primary.BriefService = (*BriefServiceImpl)(nil)
