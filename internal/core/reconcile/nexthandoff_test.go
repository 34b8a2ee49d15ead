package reconcile

import (
	"testing"
	"time"

	"github.com/example/custody/internal/core/custody"
)

func TestNextHandoff_DefaultTimeOnTransition(t *testing.T) {
	// Day 6 of the cycle is 2024-03-09 (dad), day 7 is 2024-03-10 (mom).
	tests := []struct {
		viewer   string
		wantType HandoffType
	}{
		{viewer: momID, wantType: HandoffPickup},
		{viewer: dadID, wantType: HandoffDropoff},
	}

	for _, tt := range tests {
		t.Run(string(tt.wantType), func(t *testing.T) {
			snap := newSnapshot(tt.viewer, twoWeekCycle(t))
			e := NewEvaluator(snap)

			got := e.NextHandoff(snap.Children[0], at(9, 10, 0))
			if got == nil {
				t.Fatal("expected a handoff")
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Date.String() != "2024-03-10" || got.Time().String() != "17:00" {
				t.Errorf("handoff at %s %s, want 2024-03-10 17:00", got.Date, got.Time())
			}
			if got.From != "dad" || got.To != "mom" {
				t.Errorf("From/To = %s/%s, want dad/mom", got.From, got.To)
			}
		})
	}
}

func TestNextHandoff_SchoolEndTimesTransition(t *testing.T) {
	snap := newSnapshot(momID, twoWeekCycle(t))
	snap.Events = []custody.Event{event("school", custody.EventSchool, at(9, 8, 0), at(9, 15, 0))}
	e := NewEvaluator(snap)

	got := e.NextHandoff(snap.Children[0], at(9, 7, 0))
	if got == nil || got.Type != HandoffPickup {
		t.Fatalf("expected pickup, got %+v", got)
	}
	if !got.At.Equal(at(9, 15, 0)) || got.Location != "school venue" || got.EventID != "school" {
		t.Errorf("unexpected handoff %+v", got)
	}
}

func TestNextHandoff_PassedTransitionSkipped(t *testing.T) {
	// School ended before now, so the next transition (day 13 -> day 0)
	// on 2024-03-16 -> 2024-03-17 is reported instead.
	snap := newSnapshot(momID, twoWeekCycle(t))
	snap.Events = []custody.Event{event("school", custody.EventSchool, at(9, 8, 0), at(9, 15, 0))}
	e := NewEvaluator(snap)

	got := e.NextHandoff(snap.Children[0], at(9, 16, 0))
	if got == nil || got.Type != HandoffDropoff {
		t.Fatalf("expected dropoff, got %+v", got)
	}
	if got.Date.String() != "2024-03-17" || got.Time().String() != "17:00" {
		t.Errorf("handoff at %s %s, want 2024-03-17 17:00", got.Date, got.Time())
	}
}

func TestNextHandoff_TakeToEvent(t *testing.T) {
	snap := newSnapshot(dadID, twoWeekCycle(t))
	snap.Events = []custody.Event{event("soccer", custody.EventActivity, at(4, 16, 0), at(4, 17, 0))}
	e := NewEvaluator(snap)

	got := e.NextHandoff(snap.Children[0], at(4, 9, 0))
	if got == nil || got.Type != HandoffTakeToEvent {
		t.Fatalf("expected take_to_event, got %+v", got)
	}
	if got.EventID != "soccer" || !got.At.Equal(at(4, 16, 0)) {
		t.Errorf("unexpected handoff %+v", got)
	}
}

func TestNextHandoff_TakeToEventFilters(t *testing.T) {
	sleepover := event("sleepover", custody.EventActivity, at(9, 20, 0), at(10, 10, 0))
	tests := []struct {
		name   string
		events []custody.Event
		now    time.Time
	}{
		{name: "already started today", events: []custody.Event{event("soccer", custody.EventActivity, at(4, 16, 0), at(4, 17, 0))}, now: at(4, 16, 30)},
		{name: "ends on partner's day", events: []custody.Event{sleepover}, now: at(9, 9, 0)},
		{name: "type other never qualifies", events: []custody.Event{event("dentist", custody.EventOther, at(5, 10, 0), at(5, 11, 0))}, now: at(4, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newSnapshot(dadID, twoWeekCycle(t))
			snap.Events = tt.events
			e := NewEvaluator(snap)

			got := e.NextHandoff(snap.Children[0], tt.now)
			if got == nil {
				t.Fatal("expected the transition dropoff")
			}
			if got.Type != HandoffDropoff || got.Date.String() != "2024-03-10" {
				t.Errorf("got %s on %s, want dropoff on 2024-03-10", got.Type, got.Date)
			}
		})
	}
}

func TestNextHandoff_SplitDayIsMineForBoth(t *testing.T) {
	cycle := cycleOf(t, custody.Split)
	for _, viewer := range []string{dadID, momID} {
		snap := newSnapshot(viewer, cycle)
		snap.Events = []custody.Event{event("soccer", custody.EventActivity, at(5, 16, 0), at(5, 17, 0))}
		e := NewEvaluator(snap)

		got := e.NextHandoff(snap.Children[0], at(4, 9, 0))
		if got == nil || got.Type != HandoffTakeToEvent {
			t.Errorf("viewer %s: expected take_to_event, got %+v", viewer, got)
		}
	}
}

func TestNextHandoff_None(t *testing.T) {
	t.Run("no cycle", func(t *testing.T) {
		snap := newSnapshot(dadID, nil)
		if got := NewEvaluator(snap).NextHandoff(snap.Children[0], at(4, 9, 0)); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("no handoff time known", func(t *testing.T) {
		c := twoWeekCycle(t)
		c.DefaultHandoffTime = nil
		snap := newSnapshot(dadID, c)
		if got := NewEvaluator(snap).NextHandoff(snap.Children[0], at(4, 9, 0)); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("viewer never involved", func(t *testing.T) {
		snap := newSnapshot(momID, cycleOf(t, "dad"))
		if got := NewEvaluator(snap).NextHandoff(snap.Children[0], at(4, 9, 0)); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}
