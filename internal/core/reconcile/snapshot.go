// Package reconcile derives each child's effective custody status, open
// conflicts and next required handoff from an immutable family snapshot.
// This is part of the Functional Core - no I/O, only pure functions.
package reconcile

import (
	"sort"
	"time"

	"github.com/example/custody/internal/core/custody"
)

// Snapshot is everything a reconciliation pass reads, fetched together
// for one family and one viewing guardian. A Snapshot is never mutated
// after construction; refreshes build a new one.
type Snapshot struct {
	Family     custody.Family
	Guardians  []custody.Guardian
	ViewerID   string
	Cycle      *custody.Cycle // nil when no cycle is configured
	Overrides  []custody.Override
	Children   []custody.Child
	Events     []custody.Event
	Location   *time.Location
	LoadedAt   time.Time
	Generation uint64
}

// Viewer returns the viewing guardian.
func (s *Snapshot) Viewer() (custody.Guardian, bool) {
	for _, g := range s.Guardians {
		if g.ID == s.ViewerID {
			return g, true
		}
	}
	return custody.Guardian{}, false
}

// Partner returns the co-guardian, or nil in solo families.
func (s *Snapshot) Partner() *custody.Guardian {
	for i := range s.Guardians {
		if s.Guardians[i].ID != s.ViewerID {
			g := s.Guardians[i]
			return &g
		}
	}
	return nil
}

// Child returns the child with id.
func (s *Snapshot) Child(id string) (custody.Child, bool) {
	for _, c := range s.Children {
		if c.ID == id {
			return c, true
		}
	}
	return custody.Child{}, false
}

func (s *Snapshot) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// Evaluator answers reconciliation questions over one snapshot.
type Evaluator struct {
	snap     *Snapshot
	schedule *custody.Schedule
	resolver custody.Resolver
	loc      *time.Location
	events   []custody.Event // non-cancelled, ordered by start
}

// NewEvaluator prepares the schedule, resolver and event index for snap.
func NewEvaluator(snap *Snapshot) *Evaluator {
	loc := snap.location()
	events := make([]custody.Event, 0, len(snap.Events))
	for _, e := range snap.Events {
		if !e.Cancelled() {
			events = append(events, localEvent(e, loc))
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	return &Evaluator{
		snap:     snap,
		schedule: custody.NewSchedule(snap.Cycle, snap.Overrides),
		resolver: custody.NewResolver(snap.Guardians, snap.ViewerID),
		loc:      loc,
		events:   events,
	}
}

// localEvent returns a copy of ev with its times in loc, so every time
// derived from it reads as the family's wall clock.
func localEvent(ev custody.Event, loc *time.Location) custody.Event {
	ev.Start = ev.Start.In(loc)
	if ev.End != nil {
		end := ev.End.In(loc)
		ev.End = &end
	}
	return ev
}

// Schedule returns the layered schedule.
func (e *Evaluator) Schedule() *custody.Schedule {
	return e.schedule
}

// Resolver returns the viewer's label resolver.
func (e *Evaluator) Resolver() custody.Resolver {
	return e.resolver
}

// Today returns the calendar day of now in the family's location.
func (e *Evaluator) Today(now time.Time) custody.Date {
	return custody.DateOf(now.In(e.loc))
}

// dateOf returns the local calendar day of t.
func (e *Evaluator) dateOf(t time.Time) custody.Date {
	return custody.DateOf(t.In(e.loc))
}

// expected returns the canonical assignment for child on d.
func (e *Evaluator) expected(d custody.Date, childID string) (string, bool) {
	v, ok := e.schedule.AssignmentFor(d, childID)
	if !ok {
		return "", false
	}
	return e.resolver.Canonical(v), true
}

// childEvents returns the child's non-cancelled events in start order.
func (e *Evaluator) childEvents(childID string) []custody.Event {
	var out []custody.Event
	for _, ev := range e.events {
		if ev.InvolvesChild(childID) {
			out = append(out, ev)
		}
	}
	return out
}

// IsExpectedGuardianToday reports whether the viewer is the guardian the
// family schedule expects today. Days without an assignment and Split
// days accept either guardian.
func (e *Evaluator) IsExpectedGuardianToday(now time.Time) bool {
	expected, _ := e.expected(e.Today(now), "")
	return custody.IsExpectedGuardian(expected, e.resolver.ViewerLabel())
}
