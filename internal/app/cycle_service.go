package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// maxCalendarDays bounds a single calendar request.
const maxCalendarDays = 366

// CycleServiceImpl implements the CycleService interface.
type CycleServiceImpl struct {
	cycleRepo    secondary.CycleRepository
	overrideRepo secondary.OverrideRepository
	guardianRepo secondary.GuardianRepository
	logWriter    secondary.LogWriter
}

// NewCycleService creates a new CycleService with injected dependencies.
func NewCycleService(
	cycleRepo secondary.CycleRepository,
	overrideRepo secondary.OverrideRepository,
	guardianRepo secondary.GuardianRepository,
	logWriter secondary.LogWriter,
) *CycleServiceImpl {
	return &CycleServiceImpl{
		cycleRepo:    cycleRepo,
		overrideRepo: overrideRepo,
		guardianRepo: guardianRepo,
		logWriter:    logWriter,
	}
}

// SetCycle validates the slots against the family's guardians and stores
// them as a new cycle version.
func (s *CycleServiceImpl) SetCycle(ctx context.Context, req primary.SetCycleRequest) (*custody.Cycle, error) {
	guardians, err := s.guardians(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	resolver := custody.NewResolver(guardians, "")

	guardCtx := custody.CycleContext{
		Length:        req.Length,
		SlotCount:     len(req.Slots),
		UnknownLabels: unknownLabels(resolver, req.Slots),
	}
	if err := custody.CanSetCycle(guardCtx).Error(); err != nil {
		return nil, err
	}
	if req.ValidFrom.IsZero() {
		return nil, fmt.Errorf("cycle requires a valid-from date")
	}

	data, err := custody.EncodeCycleData(req.Slots)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cycle: %w", err)
	}
	record := &secondary.CycleRecord{
		ID:          uuid.NewString(),
		FamilyID:    req.FamilyID,
		CycleLength: req.Length,
		CycleData:   string(data),
		ValidFrom:   req.ValidFrom.String(),
		CreatedBy:   ctxutil.ActorFromContext(ctx),
	}
	if req.DefaultHandoffTime != nil {
		record.DefaultHandoffTime = req.DefaultHandoffTime.String()
	}
	if err := s.cycleRepo.Supersede(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store cycle: %w", err)
	}

	if s.logWriter != nil {
		if err := s.logWriter.LogCreate(ctxutil.WithFamilyID(ctx, req.FamilyID), "cycle", record.ID); err != nil {
			return nil, fmt.Errorf("failed to write audit entry: %w", err)
		}
	}
	return recordToCycle(record)
}

// unknownLabels returns slot values that are neither Split, a family role
// label nor a guardian identifier.
func unknownLabels(resolver custody.Resolver, slots []custody.Slot) []string {
	seen := make(map[string]bool)
	var unknown []string
	check := func(v string) {
		if v == "" || v == custody.Split || seen[v] {
			return
		}
		seen[v] = true
		if !resolver.IsKnownLabel(resolver.Canonical(v)) {
			unknown = append(unknown, v)
		}
	}
	for _, slot := range slots {
		check(slot.ParentLabel)
		for _, a := range slot.Allocations {
			check(a.ParentLabel)
		}
	}
	return unknown
}

// GetActiveCycle returns the cycle in effect on asOf, or nil.
func (s *CycleServiceImpl) GetActiveCycle(ctx context.Context, familyID string, asOf custody.Date) (*custody.Cycle, error) {
	record, err := s.cycleRepo.GetActive(ctx, familyID, asOf.String())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return recordToCycle(record)
}

// ListCycles returns every cycle version, newest first.
func (s *CycleServiceImpl) ListCycles(ctx context.Context, familyID string) ([]*custody.Cycle, error) {
	records, err := s.cycleRepo.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	cycles := make([]*custody.Cycle, 0, len(records))
	for _, r := range records {
		c, err := recordToCycle(r)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, nil
}

// Calendar materializes the layered schedule day by day. Each day uses
// the cycle version valid on it; days before the first version use the
// first version.
func (s *CycleServiceImpl) Calendar(ctx context.Context, req primary.CalendarRequest) ([]primary.CalendarDay, error) {
	if req.To.Before(req.From) {
		return nil, fmt.Errorf("calendar range is inverted: %s is before %s", req.To, req.From)
	}
	if req.To.DaysSince(req.From) >= maxCalendarDays {
		return nil, fmt.Errorf("calendar range exceeds %d days", maxCalendarDays)
	}

	guardians, err := s.guardians(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	cycles, err := s.ListCycles(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	overrideRecs, err := s.overrideRepo.List(ctx, req.FamilyID, []string{
		string(custody.OverrideApproved), string(custody.OverridePending),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	overrides := make([]custody.Override, 0, len(overrideRecs))
	for _, r := range overrideRecs {
		o, err := recordToOverride(r)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}

	// Oldest first for version lookup.
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].VersionNumber < cycles[j].VersionNumber })
	schedules := make(map[string]*custody.Schedule, len(cycles))
	scheduleOn := func(d custody.Date) *custody.Schedule {
		c := cycleOn(cycles, d)
		key := ""
		if c != nil {
			key = c.ID
		}
		if sch, ok := schedules[key]; ok {
			return sch
		}
		sch := custody.NewSchedule(c, overrides)
		schedules[key] = sch
		return sch
	}

	resolver := custody.NewResolver(guardians, req.ViewerID)
	var days []primary.CalendarDay
	for d := req.From; !d.After(req.To); d = d.AddDays(1) {
		sch := scheduleOn(d)
		day := primary.CalendarDay{Date: d, Pending: sch.PendingOverrideFor(d)}
		if v, ok := sch.Assignment(d); ok {
			day.Assignment = resolver.Canonical(v)
			day.Label = resolver.Resolve(v)
		}
		for _, o := range overrides {
			if o.Status == custody.OverrideApproved && o.Covers(d) {
				day.Override = true
				break
			}
		}
		days = append(days, day)
	}
	return days, nil
}

// cycleOn returns the version valid on d from cycles sorted oldest first.
func cycleOn(cycles []*custody.Cycle, d custody.Date) *custody.Cycle {
	if len(cycles) == 0 {
		return nil
	}
	if d.Before(cycles[0].ValidFrom) {
		return cycles[0]
	}
	var found *custody.Cycle
	for _, c := range cycles {
		if d.Before(c.ValidFrom) {
			continue
		}
		if c.ValidUntil != nil && !d.Before(*c.ValidUntil) {
			continue
		}
		found = c
	}
	return found
}

func (s *CycleServiceImpl) guardians(ctx context.Context, familyID string) ([]custody.Guardian, error) {
	records, err := s.guardianRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	guardians := make([]custody.Guardian, len(records))
	for i, r := range records {
		guardians[i] = recordToGuardian(r)
	}
	return guardians, nil
}

// Ensure CycleServiceImpl implements the interface
var _ primary.CycleService = (*CycleServiceImpl)(nil)
