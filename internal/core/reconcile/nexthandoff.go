package reconcile

import (
	"time"

	"github.com/example/custody/internal/core/custody"
)

// HandoffHorizonDays bounds how far ahead NextHandoff scans.
const HandoffHorizonDays = 14

// HandoffType is the kind of action the viewer has to take next.
type HandoffType string

const (
	HandoffTakeToEvent HandoffType = "take_to_event"
	HandoffPickup      HandoffType = "pickup"
	HandoffDropoff     HandoffType = "dropoff"
)

// NextHandoff is the next moment the viewer must move the child.
type NextHandoff struct {
	Type     HandoffType
	At       time.Time
	Date     custody.Date
	Location string
	EventID  string
	From     string // outgoing label (pickup/dropoff)
	To       string // incoming label (pickup/dropoff)
}

// Time returns the local time of day of the handoff.
func (h NextHandoff) Time() custody.TimeOfDay {
	return custody.ClockOf(h.At)
}

// NextHandoff scans forward day by day from today for the viewer's next
// action with child. On days the viewer holds custody (Split counts),
// the earliest event the viewer can see through to its end wins.
// Otherwise the next schedule transition involving the viewer is used,
// timed by a school event's end on the transition day or by the cycle's
// default handoff time on the first day of the new period.
func (e *Evaluator) NextHandoff(child custody.Child, now time.Time) *NextHandoff {
	today := e.Today(now)
	events := e.childEvents(child.ID)

	for offset := 0; offset < HandoffHorizonDays; offset++ {
		day := today.AddDays(offset)
		current, hasCurrent := e.expected(day, child.ID)

		if hasCurrent && e.resolver.IsMine(current) {
			if ev := e.takeToEvent(events, child.ID, day, now, offset == 0); ev != nil {
				return &NextHandoff{
					Type:     HandoffTakeToEvent,
					At:       ev.Start,
					Date:     day,
					Location: ev.Location,
					EventID:  ev.ID,
				}
			}
		}

		next, hasNext := e.expected(day.AddDays(1), child.ID)
		if !hasCurrent || !hasNext || current == next {
			continue
		}
		mineNow, mineNext := e.resolver.IsMine(current), e.resolver.IsMine(next)
		if mineNow == mineNext {
			continue
		}

		h, ok := e.transitionHandoff(events, day)
		if !ok || h.At.Before(now) {
			continue
		}
		h.From, h.To = current, next
		h.Type = HandoffDropoff
		if mineNext {
			h.Type = HandoffPickup
		}
		return &h
	}
	return nil
}

// takeToEvent returns the earliest qualifying event on day. Events of type
// other never qualify; on day 0 events that already started are skipped;
// events with an end time qualify only when the viewer still holds
// custody on the day they end.
func (e *Evaluator) takeToEvent(events []custody.Event, childID string, day custody.Date, now time.Time, isToday bool) *custody.Event {
	for i := range events {
		ev := events[i]
		if ev.Type == custody.EventOther || e.dateOf(ev.Start) != day {
			continue
		}
		if isToday && ev.Start.Before(now) {
			continue
		}
		if ev.End != nil {
			holder, ok := e.expected(e.dateOf(*ev.End), childID)
			if !ok || !e.resolver.IsMine(holder) {
				continue
			}
		}
		return &ev
	}
	return nil
}

// transitionHandoff times the handoff for a transition after day. A school
// event ending on day sets the pickup moment; otherwise the cycle's
// default handoff time on the following day is used.
func (e *Evaluator) transitionHandoff(events []custody.Event, day custody.Date) (NextHandoff, bool) {
	for _, ev := range events {
		if ev.Type != custody.EventSchool || ev.End == nil || e.dateOf(ev.Start) != day {
			continue
		}
		return NextHandoff{At: *ev.End, Date: day, Location: ev.Location, EventID: ev.ID}, true
	}

	tod, ok := e.schedule.DefaultHandoffTime()
	if !ok {
		return NextHandoff{}, false
	}
	handoffDay := day.AddDays(1)
	return NextHandoff{At: handoffDay.At(tod, e.loc), Date: handoffDay}, true
}
