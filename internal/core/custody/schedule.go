package custody

import (
	"sort"
	"time"
)

// CycleEpoch returns the Sunday on or before validFrom. Cycle index 0 is
// that Sunday, so index mod 7 always matches the day of week.
func CycleEpoch(validFrom Date) Date {
	return SundayOnOrBefore(validFrom)
}

// CycleDay returns the cycle index for d. The double modulo keeps the
// result in [0, length) for dates before the epoch. length must be > 0.
func CycleDay(epoch Date, length int, d Date) int {
	days := d.DaysSince(epoch)
	return ((days % length) + length) % length
}

// length returns the effective cycle length, falling back to the number
// of stored slots when the declared length is missing.
func (c *Cycle) length() int {
	if c.Length > 0 {
		return c.Length
	}
	return len(c.Slots)
}

// SlotOn returns the cycle slot for d. It reports false when the cycle is
// nil, empty, or the index points past the stored slots.
func (c *Cycle) SlotOn(d Date) (Slot, bool) {
	if c == nil {
		return Slot{}, false
	}
	n := c.length()
	if n <= 0 {
		return Slot{}, false
	}
	idx := CycleDay(CycleEpoch(c.ValidFrom), n, d)
	if idx >= len(c.Slots) {
		return Slot{}, false
	}
	slot := c.Slots[idx]
	if slot.ParentLabel == "" && len(slot.Allocations) == 0 {
		return Slot{}, false
	}
	return slot, true
}

// Materialize expands the cycle over the closed window [from, to] into a
// date to assignment map. Days without an assignment are omitted.
func Materialize(c *Cycle, from, to Date) map[Date]string {
	out := make(map[Date]string)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if slot, ok := c.SlotOn(d); ok && slot.ParentLabel != "" {
			out[d] = slot.ParentLabel
		}
	}
	return out
}

// ApplyOverrides returns a copy of schedule with every approved override
// written over its date range. Pending and rejected overrides are ignored.
// Overlaps resolve in favor of the most recently approved override.
func ApplyOverrides(schedule map[Date]string, overrides []Override) map[Date]string {
	out := make(map[Date]string, len(schedule))
	for d, v := range schedule {
		out[d] = v
	}
	for _, o := range approvedInPrecedence(overrides) {
		for d := o.FromDate; !d.After(o.ToDate); d = d.AddDays(1) {
			out[d] = o.OverrideParent
		}
	}
	return out
}

// approvedInPrecedence returns approved overrides ordered so that a later
// element takes precedence over an earlier one: by approval time, then
// creation time, then ID.
func approvedInPrecedence(overrides []Override) []Override {
	var approved []Override
	for _, o := range overrides {
		if o.Status == OverrideApproved && !o.ToDate.Before(o.FromDate) {
			approved = append(approved, o)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		at, bt := respondedAt(a), respondedAt(b)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return approved
}

func respondedAt(o Override) time.Time {
	if o.RespondedAt == nil {
		return time.Time{}
	}
	return *o.RespondedAt
}

// Schedule is the cycle with approved overrides layered on top. It answers
// lookups for any date without a precomputed window.
type Schedule struct {
	cycle    *Cycle
	approved []Override // ascending precedence
	pending  []Override
}

// NewSchedule builds a Schedule. cycle may be nil (no cycle configured).
func NewSchedule(cycle *Cycle, overrides []Override) *Schedule {
	s := &Schedule{
		cycle:    cycle,
		approved: approvedInPrecedence(overrides),
	}
	for _, o := range overrides {
		if o.Status == OverridePending {
			s.pending = append(s.pending, o)
		}
	}
	return s
}

// Assignment returns the family-wide assignment for d.
func (s *Schedule) Assignment(d Date) (string, bool) {
	return s.AssignmentFor(d, "")
}

// AssignmentFor returns the assignment for childID on d. Approved
// overrides apply to every child; otherwise per-child cycle allocations
// take precedence over the day's family-wide label.
func (s *Schedule) AssignmentFor(d Date, childID string) (string, bool) {
	if s == nil {
		return "", false
	}
	for i := len(s.approved) - 1; i >= 0; i-- {
		if s.approved[i].Covers(d) {
			return s.approved[i].OverrideParent, true
		}
	}
	slot, ok := s.cycle.SlotOn(d)
	if !ok {
		return "", false
	}
	label := slot.ParentLabel
	if childID != "" {
		label = slot.LabelFor(childID)
	}
	if label == "" {
		return "", false
	}
	return label, true
}

// PendingOverrideFor returns the first pending override covering d, or nil.
// Pending overrides never change Assignment.
func (s *Schedule) PendingOverrideFor(d Date) *Override {
	if s == nil {
		return nil
	}
	for i := range s.pending {
		if s.pending[i].Covers(d) {
			o := s.pending[i]
			return &o
		}
	}
	return nil
}

// Materialize expands the layered schedule over [from, to].
func (s *Schedule) Materialize(from, to Date) map[Date]string {
	out := make(map[Date]string)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if v, ok := s.Assignment(d); ok {
			out[d] = v
		}
	}
	return out
}

// HasCycle reports whether a cycle is configured.
func (s *Schedule) HasCycle() bool {
	return s != nil && s.cycle != nil
}

// DefaultHandoffTime returns the cycle's configured fallback handoff time.
func (s *Schedule) DefaultHandoffTime() (TimeOfDay, bool) {
	if s == nil || s.cycle == nil || s.cycle.DefaultHandoffTime == nil {
		return TimeOfDay{}, false
	}
	return *s.cycle.DefaultHandoffTime, true
}
