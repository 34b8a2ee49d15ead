package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/secondary"
)

// handoffItemJSON is the at-rest shape of a handoff item.
type handoffItemJSON struct {
	Name           string `json:"name"`
	FlaggedMissing bool   `json:"flagged_missing"`
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// parseTime parses a stored timestamp. Empty strings yield the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// lenientTime is parseTime for audit fields where a bad value should not
// hide the record.
func lenientTime(s string) time.Time {
	t, _ := parseTime(s)
	return t
}

func recordToFamily(r *secondary.FamilyRecord) custody.Family {
	return custody.Family{
		ID:        r.ID,
		Name:      r.Name,
		Mode:      custody.FamilyMode(r.Mode),
		CreatedAt: lenientTime(r.CreatedAt),
	}
}

func recordToGuardian(r *secondary.GuardianRecord) custody.Guardian {
	return custody.Guardian{
		ID:       r.ID,
		FamilyID: r.FamilyID,
		Label:    r.Label,
		Name:     r.Name,
		Role:     r.Role,
	}
}

func recordToChild(r *secondary.ChildRecord) custody.Child {
	status := custody.Status(r.Status)
	if status == "" {
		status = custody.StatusUnknown
	}
	return custody.Child{
		ID:                r.ID,
		FamilyID:          r.FamilyID,
		Name:              r.Name,
		DateOfBirth:       r.DateOfBirth,
		Status:            status,
		CurrentGuardianID: r.CurrentGuardianID,
		StatusChangedAt:   lenientTime(r.StatusChangedAt),
		StatusChangedBy:   r.StatusChangedBy,
	}
}

func recordToCycle(r *secondary.CycleRecord) (*custody.Cycle, error) {
	slots, err := custody.DecodeCycleData([]byte(r.CycleData))
	if err != nil {
		return nil, fmt.Errorf("cycle %s: %w", r.ID, err)
	}
	validFrom, err := custody.ParseDate(r.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("cycle %s: %w", r.ID, err)
	}

	c := &custody.Cycle{
		ID:            r.ID,
		FamilyID:      r.FamilyID,
		Length:        r.CycleLength,
		Slots:         slots,
		ValidFrom:     validFrom,
		VersionNumber: r.VersionNumber,
		CreatedAt:     lenientTime(r.CreatedAt),
	}
	if r.ValidUntil != "" {
		until, err := custody.ParseDate(r.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("cycle %s: %w", r.ID, err)
		}
		c.ValidUntil = &until
	}
	// A malformed handoff time only disables time-based predictions.
	if r.DefaultHandoffTime != "" {
		if tod, err := custody.ParseTimeOfDay(r.DefaultHandoffTime); err == nil {
			c.DefaultHandoffTime = &tod
		}
	}
	return c, nil
}

func recordToOverride(r *secondary.OverrideRecord) (custody.Override, error) {
	from, err := custody.ParseDate(r.FromDate)
	if err != nil {
		return custody.Override{}, fmt.Errorf("override %s: %w", r.ID, err)
	}
	to, err := custody.ParseDate(r.ToDate)
	if err != nil {
		return custody.Override{}, fmt.Errorf("override %s: %w", r.ID, err)
	}

	o := custody.Override{
		ID:             r.ID,
		FamilyID:       r.FamilyID,
		FromDate:       from,
		ToDate:         to,
		OverrideParent: r.OverrideParent,
		Reason:         r.Reason,
		Status:         custody.OverrideStatus(r.Status),
		RequestedBy:    r.RequestedBy,
		RespondedBy:    r.RespondedBy,
		CreatedAt:      lenientTime(r.CreatedAt),
	}
	if r.RespondedAt != "" {
		at := lenientTime(r.RespondedAt)
		o.RespondedAt = &at
	}
	return o, nil
}

func recordToEvent(r *secondary.EventRecord) (custody.Event, error) {
	start, err := parseTime(r.StartAt)
	if err != nil {
		return custody.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}

	e := custody.Event{
		ID:          r.ID,
		FamilyID:    r.FamilyID,
		Type:        custody.EventType(r.Type),
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Start:       start,
		AllDay:      r.AllDay,
		Status:      custody.EventStatus(r.Status),
		ChildIDs:    r.ChildIDs,
		CreatedBy:   r.CreatedBy,
	}
	if r.EndAt != "" {
		end, err := parseTime(r.EndAt)
		if err != nil {
			return custody.Event{}, fmt.Errorf("event %s: %w", r.ID, err)
		}
		e.End = &end
	}
	return e, nil
}

func recordToHandoff(r *secondary.HandoffRecord) custody.Handoff {
	h := custody.Handoff{
		ID:           r.ID,
		FamilyID:     r.FamilyID,
		ChildID:      r.ChildID,
		FromGuardian: r.FromGuardian,
		ToGuardian:   r.ToGuardian,
		ScheduledAt:  lenientTime(r.ScheduledAt),
		ActualAt:     lenientTime(r.ActualAt),
		Notes:        r.Notes,
	}
	var items []handoffItemJSON
	if r.Items != "" && json.Unmarshal([]byte(r.Items), &items) == nil {
		for _, item := range items {
			h.Items = append(h.Items, custody.HandoffItem{Name: item.Name, FlaggedMissing: item.FlaggedMissing})
		}
	}
	return h
}
