package reconcile

import "github.com/example/custody/internal/core/custody"

// Source says where an effective status came from.
type Source string

const (
	SourceExplicit            Source = "explicit"
	SourceCustodyCycle        Source = "custody_cycle"
	SourceCustodyCyclePending Source = "custody_cycle_pending"
	SourceNone                Source = "none"
)

// EffectiveStatus is the best current answer to "who has this child".
// It is derived on every evaluation and never persisted.
type EffectiveStatus struct {
	Status custody.Status
	Source Source
}

// Pending reports whether the status is held over from yesterday
// awaiting a confirmed handoff.
func (s EffectiveStatus) Pending() bool {
	return s.Source == SourceCustodyCyclePending
}

// EffectiveStatus combines the child's recorded status with the schedule.
//
// A recorded status other than unknown always wins. Otherwise the
// schedule is projected, except on transition days: when yesterday's
// guardian differs from today's, the child is assumed to still be with
// yesterday's guardian until a pickup or dropoff is confirmed.
func (e *Evaluator) EffectiveStatus(child custody.Child, today custody.Date) EffectiveStatus {
	if child.Status != "" && child.Status != custody.StatusUnknown {
		return EffectiveStatus{Status: child.Status, Source: SourceExplicit}
	}

	expectedToday, hasToday := e.expected(today, child.ID)
	expectedYesterday, hasYesterday := e.expected(today.AddDays(-1), child.ID)

	if hasYesterday && expectedYesterday != custody.Split && expectedYesterday != expectedToday {
		return EffectiveStatus{
			Status: custody.WithGuardian(expectedYesterday),
			Source: SourceCustodyCyclePending,
		}
	}

	if !hasToday {
		return EffectiveStatus{Status: custody.StatusUnknown, Source: SourceNone}
	}

	label := expectedToday
	if label == custody.Split {
		label = e.resolver.ViewerLabel()
		if label == "" {
			return EffectiveStatus{Status: custody.StatusUnknown, Source: SourceNone}
		}
	}
	return EffectiveStatus{Status: custody.WithGuardian(label), Source: SourceCustodyCycle}
}
