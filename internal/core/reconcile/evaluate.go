package reconcile

import (
	"time"

	"github.com/example/custody/internal/core/custody"
)

// NextAction is the button a guardian is offered for a child.
type NextAction string

const (
	ActionPick NextAction = "pick"
	ActionDrop NextAction = "drop"
)

// ChildView is the reconciled state of one child for the viewer.
type ChildView struct {
	Child       custody.Child
	Effective   EffectiveStatus
	Conflict    *Conflict
	NextHandoff *NextHandoff
	NextEvent   *custody.Event
	NextAction  NextAction
	// Expected is the viewer-relative assignment for today ("" when none).
	Expected string
}

// Report is the outcome of one reconciliation pass over a snapshot.
type Report struct {
	FamilyID              string
	Generation            uint64
	EvaluatedAt           time.Time // in the family's location
	Today                 custody.Date
	ExpectedGuardianToday bool
	PendingOverrideToday  *custody.Override
	Children              []ChildView
}

// Conflicts returns the non-nil conflicts of the report.
func (r Report) Conflicts() []Conflict {
	var out []Conflict
	for _, c := range r.Children {
		if c.Conflict != nil {
			out = append(out, *c.Conflict)
		}
	}
	return out
}

// Evaluate runs the status, conflict and next-handoff rules for every
// child in the snapshot at now. It has no side effects and reads nothing
// outside the snapshot.
func Evaluate(snap *Snapshot, now time.Time) Report {
	e := NewEvaluator(snap)
	today := e.Today(now)

	report := Report{
		FamilyID:              snap.Family.ID,
		Generation:            snap.Generation,
		EvaluatedAt:           now.In(e.loc),
		Today:                 today,
		ExpectedGuardianToday: e.IsExpectedGuardianToday(now),
		PendingOverrideToday:  e.schedule.PendingOverrideFor(today),
		Children:              make([]ChildView, 0, len(snap.Children)),
	}
	for _, child := range snap.Children {
		report.Children = append(report.Children, e.View(child, now))
	}
	return report
}

// View reconciles a single child.
func (e *Evaluator) View(child custody.Child, now time.Time) ChildView {
	today := e.Today(now)
	status := e.EffectiveStatus(child, today)

	action := ActionPick
	if label, ok := status.Status.Holder(); ok && label == e.resolver.ViewerLabel() {
		action = ActionDrop
	}

	expected := ""
	if v, ok := e.schedule.AssignmentFor(today, child.ID); ok {
		expected = e.resolver.Resolve(v)
	}

	return ChildView{
		Child:       child,
		Effective:   status,
		Conflict:    e.DetectConflict(child, status, now),
		NextHandoff: e.NextHandoff(child, now),
		NextEvent:   e.nextEvent(child.ID, now),
		NextAction:  action,
		Expected:    expected,
	}
}

// nextEvent returns the child's first event starting after now.
func (e *Evaluator) nextEvent(childID string, now time.Time) *custody.Event {
	for _, ev := range e.childEvents(childID) {
		if ev.Start.After(now) {
			return &ev
		}
	}
	return nil
}
