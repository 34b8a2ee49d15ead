package reconcile

import (
	"time"

	"github.com/example/custody/internal/core/custody"
)

const (
	// OverdueAfter is how long into a venue event a child still marked
	// with a guardian turns from dropoff_needed into dropoff_overdue.
	OverdueAfter = 15 * time.Minute

	// DropoffLeadTime is how early before a venue event a dropoff
	// reminder is raised.
	DropoffLeadTime = 30 * time.Minute
)

// ConflictKind tags the variant of a Conflict.
type ConflictKind string

const (
	ConflictHandoffPending ConflictKind = "handoff_pending"
	ConflictDropoffNeeded  ConflictKind = "dropoff_needed"
	ConflictDropoffOverdue ConflictKind = "dropoff_overdue"
	ConflictPickupNeeded   ConflictKind = "pickup_needed"
)

// Conflict is a mismatch between a child's effective status and the
// calendar that needs a guardian's attention. Which fields are set
// depends on Kind.
type Conflict struct {
	Kind      ConflictKind
	ChildID   string
	ChildName string

	// handoff_pending
	PreviousHolder   string // label still holding the child
	ExpectedHolder   string // label scheduled for today
	ViewerIsIncoming bool   // viewer picks up (true) or drops off (false)

	// dropoff_needed, dropoff_overdue, pickup_needed
	CurrentHolder string // label from the status, empty at a venue
	Event         *custody.Event
	Elapsed       time.Duration // time since event start (negative before it)
}

// DetectConflict checks the child's effective status against the
// calendar at now. Rules are evaluated in priority order and the first
// match wins, so a pending handoff hides every other conflict.
func (e *Evaluator) DetectConflict(child custody.Child, status EffectiveStatus, now time.Time) *Conflict {
	if status.Pending() {
		return e.handoffPending(child, status, now)
	}

	venueEvents := e.venueEvents(child.ID)
	holder, withGuardian := status.Status.Holder()

	if active := activeEvent(venueEvents, now); active != nil {
		if !withGuardian {
			return nil
		}
		elapsed := now.Sub(active.Start)
		kind := ConflictDropoffNeeded
		if elapsed >= OverdueAfter {
			kind = ConflictDropoffOverdue
		}
		return &Conflict{
			Kind:          kind,
			ChildID:       child.ID,
			ChildName:     child.Name,
			CurrentHolder: holder,
			Event:         active,
			Elapsed:       elapsed,
		}
	}

	if withGuardian {
		if next := upcomingEvent(venueEvents, now, DropoffLeadTime); next != nil {
			return &Conflict{
				Kind:          ConflictDropoffNeeded,
				ChildID:       child.ID,
				ChildName:     child.Name,
				CurrentHolder: holder,
				Event:         next,
				Elapsed:       now.Sub(next.Start),
			}
		}
		return nil
	}

	if status.Status.AtVenue() {
		if last := e.lastStartedToday(venueEvents, now); last != nil && last.End != nil && now.After(*last.End) {
			return &Conflict{
				Kind:      ConflictPickupNeeded,
				ChildID:   child.ID,
				ChildName: child.Name,
				Event:     last,
				Elapsed:   now.Sub(last.Start),
			}
		}
	}

	return nil
}

func (e *Evaluator) handoffPending(child custody.Child, status EffectiveStatus, now time.Time) *Conflict {
	previous, _ := status.Status.Holder()
	expected, _ := e.expected(e.Today(now), child.ID)
	incoming := expected != "" && (expected == e.resolver.ViewerLabel() || expected == custody.Split)
	return &Conflict{
		Kind:             ConflictHandoffPending,
		ChildID:          child.ID,
		ChildName:        child.Name,
		PreviousHolder:   previous,
		ExpectedHolder:   expected,
		ViewerIsIncoming: incoming,
	}
}

// venueEvents returns the child's school and activity events.
func (e *Evaluator) venueEvents(childID string) []custody.Event {
	var out []custody.Event
	for _, ev := range e.childEvents(childID) {
		if ev.Type.IsVenue() {
			out = append(out, ev)
		}
	}
	return out
}

// activeEvent returns the earliest-starting event with start <= now <= end.
// Events without an end time are never active.
func activeEvent(events []custody.Event, now time.Time) *custody.Event {
	for i := range events {
		ev := events[i]
		if ev.End == nil {
			continue
		}
		if !now.Before(ev.Start) && !now.After(*ev.End) {
			return &ev
		}
	}
	return nil
}

// upcomingEvent returns the first event starting in (now, now+lead].
func upcomingEvent(events []custody.Event, now time.Time, lead time.Duration) *custody.Event {
	limit := now.Add(lead)
	for i := range events {
		ev := events[i]
		if ev.Start.After(now) && !ev.Start.After(limit) {
			return &ev
		}
	}
	return nil
}

// lastStartedToday returns today's event with the latest start at or
// before now.
func (e *Evaluator) lastStartedToday(events []custody.Event, now time.Time) *custody.Event {
	today := e.Today(now)
	var last *custody.Event
	for i := range events {
		ev := events[i]
		if ev.Start.After(now) || e.dateOf(ev.Start) != today {
			continue
		}
		if last == nil || !ev.Start.Before(last.Start) {
			last = &ev
		}
	}
	return last
}
