package reconcile

import (
	"testing"
	"time"

	"github.com/example/custody/internal/core/custody"
)

func TestDetectConflict_VenueEvents(t *testing.T) {
	activity := event("soccer", custody.EventActivity, at(4, 17, 0), at(4, 18, 0))

	tests := []struct {
		name     string
		status   custody.Status
		events   []custody.Event
		now      time.Time
		wantKind ConflictKind // "" means no conflict
	}{
		{name: "active event just started", status: custody.WithGuardian("dad"), events: []custody.Event{activity}, now: at(4, 17, 5), wantKind: ConflictDropoffNeeded},
		{name: "active event past threshold", status: custody.WithGuardian("dad"), events: []custody.Event{activity}, now: at(4, 17, 20), wantKind: ConflictDropoffOverdue},
		{name: "threshold is inclusive", status: custody.WithGuardian("dad"), events: []custody.Event{activity}, now: at(4, 17, 15), wantKind: ConflictDropoffOverdue},
		{name: "proactive within lead time", status: custody.WithGuardian("dad"), events: []custody.Event{activity}, now: at(4, 16, 40), wantKind: ConflictDropoffNeeded},
		{name: "before lead time", status: custody.WithGuardian("dad"), events: []custody.Event{activity}, now: at(4, 16, 20)},
		{name: "child already at venue", status: custody.StatusAtActivity, events: []custody.Event{activity}, now: at(4, 17, 30)},
		{name: "pickup after event end", status: custody.StatusAtActivity, events: []custody.Event{activity}, now: at(4, 18, 10), wantKind: ConflictPickupNeeded},
		{name: "school pickup after end", status: custody.StatusAtSchool, events: []custody.Event{event("school", custody.EventSchool, at(4, 8, 0), at(4, 15, 0))}, now: at(4, 15, 30), wantKind: ConflictPickupNeeded},
		{name: "yesterday's event is not a pickup", status: custody.StatusAtActivity, events: []custody.Event{event("old", custody.EventActivity, at(3, 17, 0), at(3, 18, 0))}, now: at(4, 9, 0)},
		{name: "event without end never active", status: custody.WithGuardian("dad"), events: []custody.Event{event("open", custody.EventActivity, at(4, 17, 0), time.Time{})}, now: at(4, 17, 30)},
		{name: "non-venue events ignored", status: custody.WithGuardian("dad"), events: []custody.Event{event("dentist", custody.EventOther, at(4, 17, 0), at(4, 18, 0))}, now: at(4, 17, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := custody.Child{ID: "c1", Name: "Noa", Status: tt.status}
			snap := newSnapshot(dadID, nil, child)
			snap.Events = tt.events
			e := NewEvaluator(snap)

			got := e.DetectConflict(child, e.EffectiveStatus(child, e.Today(tt.now)), tt.now)
			if tt.wantKind == "" {
				if got != nil {
					t.Fatalf("expected no conflict, got %s", got.Kind)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %s, got none", tt.wantKind)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Event == nil {
				t.Error("expected conflict to reference its event")
			}
		})
	}
}

func TestDetectConflict_OverdueCarriesElapsed(t *testing.T) {
	child := custody.Child{ID: "c1", Status: custody.WithGuardian("dad")}
	snap := newSnapshot(dadID, nil, child)
	snap.Events = []custody.Event{event("soccer", custody.EventActivity, at(4, 17, 0), at(4, 18, 0))}
	e := NewEvaluator(snap)

	now := at(4, 17, 20)
	got := e.DetectConflict(child, e.EffectiveStatus(child, e.Today(now)), now)
	if got == nil || got.Elapsed != 20*time.Minute || got.CurrentHolder != "dad" {
		t.Errorf("unexpected conflict %+v", got)
	}
}

func TestDetectConflict_CancelledEventsExcluded(t *testing.T) {
	child := custody.Child{ID: "c1", Status: custody.WithGuardian("dad")}
	cancelled := event("soccer", custody.EventActivity, at(4, 17, 0), at(4, 18, 0))
	cancelled.Status = custody.EventCancelled
	snap := newSnapshot(dadID, nil, child)
	snap.Events = []custody.Event{cancelled}
	e := NewEvaluator(snap)

	now := at(4, 17, 20)
	if got := e.DetectConflict(child, e.EffectiveStatus(child, e.Today(now)), now); got != nil {
		t.Errorf("expected cancelled event to be ignored, got %s", got.Kind)
	}
}

func TestDetectConflict_OtherChildEventsIgnored(t *testing.T) {
	child := custody.Child{ID: "c1", Status: custody.WithGuardian("dad")}
	ev := event("soccer", custody.EventActivity, at(4, 17, 0), at(4, 18, 0))
	ev.ChildIDs = []string{"c2"}
	snap := newSnapshot(dadID, nil, child)
	snap.Events = []custody.Event{ev}
	e := NewEvaluator(snap)

	now := at(4, 17, 20)
	if got := e.DetectConflict(child, e.EffectiveStatus(child, e.Today(now)), now); got != nil {
		t.Errorf("expected no conflict for another child's event, got %s", got.Kind)
	}
}

func TestDetectConflict_HandoffPendingHasPriority(t *testing.T) {
	// 2024-03-05 moves the child from dad to mom while soccer is running.
	cycle := cycleOf(t, "dad", "dad", "mom", "mom")
	child := custody.Child{ID: "c1", Name: "Noa", Status: custody.StatusUnknown}

	for _, tt := range []struct {
		viewer       string
		wantIncoming bool
	}{
		{viewer: momID, wantIncoming: true},
		{viewer: dadID, wantIncoming: false},
	} {
		snap := newSnapshot(tt.viewer, cycle, child)
		snap.Events = []custody.Event{event("soccer", custody.EventActivity, at(5, 17, 0), at(5, 18, 0))}
		e := NewEvaluator(snap)

		now := at(5, 17, 20)
		got := e.DetectConflict(child, e.EffectiveStatus(child, e.Today(now)), now)
		if got == nil || got.Kind != ConflictHandoffPending {
			t.Fatalf("viewer %s: expected handoff_pending, got %+v", tt.viewer, got)
		}
		if got.PreviousHolder != "dad" || got.ExpectedHolder != "mom" {
			t.Errorf("viewer %s: holders = %s -> %s, want dad -> mom", tt.viewer, got.PreviousHolder, got.ExpectedHolder)
		}
		if got.ViewerIsIncoming != tt.wantIncoming {
			t.Errorf("viewer %s: ViewerIsIncoming = %v, want %v", tt.viewer, got.ViewerIsIncoming, tt.wantIncoming)
		}
	}
}
