package reconcile

import (
	"testing"
	"time"

	"github.com/example/custody/internal/core/custody"
)

const (
	dadID = "g-dad"
	momID = "g-mom"
)

// at returns 2024-03-<day> hh:mm in UTC. Sunday 2024-03-03 is the epoch of
// every test cycle.
func at(day, hh, mm int) time.Time {
	return time.Date(2024, 3, day, hh, mm, 0, 0, time.UTC)
}

func date(t *testing.T, s string) custody.Date {
	t.Helper()
	d, err := custody.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func cycleOf(t *testing.T, labels ...string) *custody.Cycle {
	t.Helper()
	slots := make([]custody.Slot, len(labels))
	for i, l := range labels {
		slots[i] = custody.Slot{ParentLabel: l}
	}
	return &custody.Cycle{
		ID:        "cyc-1",
		FamilyID:  "fam-1",
		Length:    len(labels),
		Slots:     slots,
		ValidFrom: date(t, "2024-03-03"),
	}
}

// twoWeekCycle assigns days 0-6 to dad and 7-13 to mom with a 17:00
// default handoff.
func twoWeekCycle(t *testing.T) *custody.Cycle {
	t.Helper()
	labels := make([]string, 14)
	for i := range labels {
		labels[i] = "dad"
		if i >= 7 {
			labels[i] = "mom"
		}
	}
	c := cycleOf(t, labels...)
	c.DefaultHandoffTime = &custody.TimeOfDay{Hour: 17}
	return c
}

func newSnapshot(viewerID string, cycle *custody.Cycle, children ...custody.Child) *Snapshot {
	if len(children) == 0 {
		children = []custody.Child{{ID: "c1", Name: "Noa", Status: custody.StatusUnknown}}
	}
	return &Snapshot{
		Family: custody.Family{ID: "fam-1", Mode: custody.ModeCoParent},
		Guardians: []custody.Guardian{
			{ID: dadID, FamilyID: "fam-1", Label: "dad"},
			{ID: momID, FamilyID: "fam-1", Label: "mom"},
		},
		ViewerID: viewerID,
		Cycle:    cycle,
		Children: children,
		Location: time.UTC,
	}
}

func event(id string, typ custody.EventType, start, end time.Time) custody.Event {
	e := custody.Event{
		ID:       id,
		FamilyID: "fam-1",
		Type:     typ,
		Title:    id,
		Location: string(typ) + " venue",
		Start:    start,
		Status:   custody.EventScheduled,
		ChildIDs: []string{"c1"},
	}
	if !end.IsZero() {
		e.End = &end
	}
	return e
}
