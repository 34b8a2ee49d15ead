package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// EventServiceImpl implements the EventService interface.
type EventServiceImpl struct {
	repos     Repositories
	logWriter secondary.LogWriter
	loc       *time.Location
}

// NewEventService creates a new EventService. loc is the family's time
// zone, used to decide which custody day an event falls on.
func NewEventService(repos Repositories, logWriter secondary.LogWriter, loc *time.Location) *EventServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	return &EventServiceImpl{repos: repos, logWriter: logWriter, loc: loc}
}

// CreateEvent creates an event linked to children. Backpack items are
// carried in the description.
func (s *EventServiceImpl) CreateEvent(ctx context.Context, req primary.CreateEventRequest) (*custody.Event, error) {
	childRecs, err := s.repos.Children.ListByFamily(ctx, req.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	known := make(map[string]bool, len(childRecs))
	for _, c := range childRecs {
		known[c.ID] = true
	}

	guardCtx := custody.EventContext{
		Type:       req.Type,
		Start:      req.Start,
		End:        req.End,
		ChildIDs:   req.ChildIDs,
		KnownChild: func(id string) bool { return known[id] },
	}
	if err := custody.CanCreateEvent(guardCtx).Error(); err != nil {
		return nil, err
	}

	creator := req.CreatorID
	if creator == "" {
		creator = ctxutil.ActorFromContext(ctx)
	}
	status, err := s.initialStatus(ctx, req.FamilyID, creator, req.Start)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = string(req.Type)
	}
	record := &secondary.EventRecord{
		ID:          uuid.NewString(),
		FamilyID:    req.FamilyID,
		Type:        string(req.Type),
		Title:       title,
		Description: custody.EncodeDescription(req.Description, req.BackpackItems),
		Location:    req.Location,
		StartAt:     formatTime(req.Start),
		AllDay:      req.AllDay,
		Status:      string(status),
		CreatedBy:   creator,
		ChildIDs:    req.ChildIDs,
	}
	if req.End != nil {
		record.EndAt = formatTime(*req.End)
	}
	if err := s.repos.Events.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if s.logWriter != nil {
		if err := s.logWriter.LogCreate(ctxutil.WithFamilyID(ctx, req.FamilyID), "event", record.ID); err != nil {
			return nil, fmt.Errorf("failed to write audit entry: %w", err)
		}
	}

	event, err := recordToEvent(record)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// initialStatus looks up who has custody on the event's day.
func (s *EventServiceImpl) initialStatus(ctx context.Context, familyID, creatorID string, start time.Time) (custody.EventStatus, error) {
	guardianRecs, err := s.repos.Guardians.ListByFamily(ctx, familyID)
	if err != nil {
		return "", fmt.Errorf("failed to list guardians: %w", err)
	}
	guardians := make([]custody.Guardian, len(guardianRecs))
	for i, r := range guardianRecs {
		guardians[i] = recordToGuardian(r)
	}
	resolver := custody.NewResolver(guardians, creatorID)

	day := custody.DateOf(start.In(s.loc))
	cycleRec, err := s.repos.Cycles.GetActive(ctx, familyID, day.String())
	if err != nil {
		return "", fmt.Errorf("failed to load cycle: %w", err)
	}
	var cycle *custody.Cycle
	if cycleRec != nil {
		// An undecodable cycle is treated as no schedule.
		cycle, _ = recordToCycle(cycleRec)
	}
	overrideRecs, err := s.repos.Overrides.List(ctx, familyID, []string{string(custody.OverrideApproved)})
	if err != nil {
		return "", fmt.Errorf("failed to list overrides: %w", err)
	}
	var overrides []custody.Override
	for _, r := range overrideRecs {
		if o, err := recordToOverride(r); err == nil {
			overrides = append(overrides, o)
		}
	}

	expected := ""
	if v, ok := custody.NewSchedule(cycle, overrides).Assignment(day); ok {
		expected = resolver.Canonical(v)
	}
	return custody.InitialEventStatus(expected, resolver.ViewerLabel(), resolver.PartnerLabel() != ""), nil
}

// UpdateEvent applies req to an event. The result is checked like a new
// event and its status re-derived from the editor's view of the custody
// day, so moving an event onto the partner's day needs their approval.
func (s *EventServiceImpl) UpdateEvent(ctx context.Context, req primary.UpdateEventRequest) (*custody.Event, error) {
	record, err := s.repos.Events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if record.Status == string(custody.EventCancelled) {
		return nil, fmt.Errorf("event %s is cancelled", req.EventID)
	}
	event, err := recordToEvent(record)
	if err != nil {
		return nil, err
	}

	items, notes := custody.ParseDescription(event.Description)
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if event.Title == "" {
		event.Title = string(event.Type)
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.BackpackItems != nil {
		items = req.BackpackItems
	}
	event.Description = custody.EncodeDescription(notes, items)
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Start != nil {
		event.Start = *req.Start
	}
	switch {
	case req.ClearEnd:
		event.End = nil
	case req.End != nil:
		end := *req.End
		event.End = &end
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.ChildIDs != nil {
		event.ChildIDs = req.ChildIDs
	}

	childRecs, err := s.repos.Children.ListByFamily(ctx, event.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	known := make(map[string]bool, len(childRecs))
	for _, c := range childRecs {
		known[c.ID] = true
	}
	guardCtx := custody.EventContext{
		Type:       event.Type,
		Start:      event.Start,
		End:        event.End,
		ChildIDs:   event.ChildIDs,
		KnownChild: func(id string) bool { return known[id] },
	}
	if err := custody.CanCreateEvent(guardCtx).Error(); err != nil {
		return nil, err
	}

	editor := req.EditorID
	if editor == "" {
		editor = ctxutil.ActorFromContext(ctx)
	}
	if event.Status, err = s.initialStatus(ctx, event.FamilyID, editor, event.Start); err != nil {
		return nil, err
	}

	updated := &secondary.EventRecord{
		ID:          record.ID,
		FamilyID:    record.FamilyID,
		Type:        string(event.Type),
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartAt:     formatTime(event.Start),
		AllDay:      event.AllDay,
		Status:      string(event.Status),
		CreatedBy:   record.CreatedBy,
		ChildIDs:    event.ChildIDs,
		CreatedAt:   record.CreatedAt,
	}
	if event.End != nil {
		updated.EndAt = formatTime(*event.End)
	}
	if err := s.repos.Events.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if s.logWriter != nil {
		auditCtx := ctxutil.WithFamilyID(ctx, record.FamilyID)
		for _, c := range eventChanges(record, updated) {
			if err := s.logWriter.LogUpdate(auditCtx, "event", record.ID, c.field, c.oldValue, c.newValue); err != nil {
				return nil, fmt.Errorf("failed to write audit entry: %w", err)
			}
		}
	}

	result, err := recordToEvent(updated)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type fieldChange struct {
	field, oldValue, newValue string
}

// eventChanges lists the fields that differ between two versions of an
// event, in a fixed order.
func eventChanges(before, after *secondary.EventRecord) []fieldChange {
	fields := []fieldChange{
		{"type", before.Type, after.Type},
		{"title", before.Title, after.Title},
		{"description", before.Description, after.Description},
		{"location", before.Location, after.Location},
		{"start_at", before.StartAt, after.StartAt},
		{"end_at", before.EndAt, after.EndAt},
		{"all_day", strconv.FormatBool(before.AllDay), strconv.FormatBool(after.AllDay)},
		{"status", before.Status, after.Status},
		{"children", sortedList(before.ChildIDs), sortedList(after.ChildIDs)},
	}
	var changes []fieldChange
	for _, f := range fields {
		if f.oldValue != f.newValue {
			changes = append(changes, f)
		}
	}
	return changes
}

func sortedList(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// CancelEvent soft-deletes an event.
func (s *EventServiceImpl) CancelEvent(ctx context.Context, eventID string) error {
	record, err := s.repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if record.Status == string(custody.EventCancelled) {
		return fmt.Errorf("event %s is already cancelled", eventID)
	}
	if err := s.repos.Events.Cancel(ctx, eventID); err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}
	if s.logWriter != nil {
		auditCtx := ctxutil.WithFamilyID(ctx, record.FamilyID)
		if err := s.logWriter.LogUpdate(auditCtx, "event", eventID, "status", record.Status, string(custody.EventCancelled)); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
	}
	return nil
}

// ListEvents lists non-cancelled events starting in [from, to).
func (s *EventServiceImpl) ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]*custody.Event, error) {
	records, err := s.repos.Events.ListInWindow(ctx, familyID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	events := make([]*custody.Event, 0, len(records))
	for _, r := range records {
		e, err := recordToEvent(r)
		if err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, nil
}

// Ensure EventServiceImpl implements the interface
var _ primary.EventService = (*EventServiceImpl)(nil)
