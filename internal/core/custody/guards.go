package custody

import (
	"fmt"
	"strings"
	"time"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// IsExpectedGuardian reports whether viewerLabel may pick up on a day
// whose canonical assignment is expected. No assignment and Split days
// accept either guardian.
func IsExpectedGuardian(expected, viewerLabel string) bool {
	if expected == "" || expected == Split {
		return true
	}
	return expected == viewerLabel
}

// PickupContext provides context for pickup confirmation guards.
type PickupContext struct {
	ChildID       string
	ChildExists   bool
	ExpectedLabel string // canonical assignment for today, "" when none
	ViewerLabel   string
	Force         bool
}

// CanConfirmPickup evaluates whether the viewer may confirm a pickup.
// Rule: only the scheduled guardian picks up unless forced.
func CanConfirmPickup(ctx PickupContext) GuardResult {
	if !ctx.ChildExists {
		return deny("child %s not found", ctx.ChildID)
	}
	if !ctx.Force && !IsExpectedGuardian(ctx.ExpectedLabel, ctx.ViewerLabel) {
		return deny("today is scheduled for %s, not %s. Use --force to confirm anyway", ctx.ExpectedLabel, ctx.ViewerLabel)
	}
	return allow()
}

// DropoffContext provides context for dropoff confirmation guards.
type DropoffContext struct {
	ChildID     string
	ChildExists bool
	Location    string
}

// CanConfirmDropoff evaluates whether a dropoff can be recorded.
// Rule: the child must exist and a location must be given.
func CanConfirmDropoff(ctx DropoffContext) GuardResult {
	if !ctx.ChildExists {
		return deny("child %s not found", ctx.ChildID)
	}
	if ctx.Location == "" {
		return deny("dropoff location is required")
	}
	return allow()
}

// OverrideRequestContext provides context for override request guards.
type OverrideRequestContext struct {
	FromDate   Date
	ToDate     Date
	Label      string
	LabelKnown bool
}

// CanRequestOverride evaluates whether an override request is well formed.
// Malformed ranges are rejected here so the schedule layer can assume
// well-formed input.
func CanRequestOverride(ctx OverrideRequestContext) GuardResult {
	if ctx.FromDate.IsZero() || ctx.ToDate.IsZero() {
		return deny("override requires both a from and a to date")
	}
	if ctx.ToDate.Before(ctx.FromDate) {
		return deny("override range is inverted: %s is before %s", ctx.ToDate, ctx.FromDate)
	}
	if ctx.Label == Split {
		return allow()
	}
	if !ctx.LabelKnown {
		return deny("%q is not a guardian in this family", ctx.Label)
	}
	return allow()
}

// OverrideResponseContext provides context for override response guards.
type OverrideResponseContext struct {
	OverrideID  string
	Status      OverrideStatus
	RequestedBy string
	ResponderID string
	// ResponderIsMember is set when ResponderID is a guardian of the
	// override's family.
	ResponderIsMember bool
	Solo              bool
}

// CanRespondToOverride evaluates whether the responder may answer.
// Rule: only pending overrides can be answered, and in co-parent
// families only the other guardian of the family can answer.
func CanRespondToOverride(ctx OverrideResponseContext) GuardResult {
	if ctx.Status != OverridePending {
		return deny("override %s is %s, only pending overrides can be answered", ctx.OverrideID, ctx.Status)
	}
	if !ctx.Solo && ctx.ResponderID == "" {
		return deny("override %s needs a responding guardian", ctx.OverrideID)
	}
	if !ctx.Solo && !ctx.ResponderIsMember {
		return deny("guardian %s is not a member of this family", ctx.ResponderID)
	}
	if !ctx.Solo && ctx.RequestedBy != "" && ctx.RequestedBy == ctx.ResponderID {
		return deny("override %s must be answered by the other guardian", ctx.OverrideID)
	}
	return allow()
}

// CycleContext provides context for cycle definition guards.
type CycleContext struct {
	Length        int
	SlotCount     int
	UnknownLabels []string
}

// CanSetCycle evaluates whether a cycle definition can be stored.
func CanSetCycle(ctx CycleContext) GuardResult {
	if ctx.Length <= 0 {
		return deny("cycle length must be positive, got %d", ctx.Length)
	}
	if ctx.SlotCount != ctx.Length {
		return deny("cycle has %d days but length is %d", ctx.SlotCount, ctx.Length)
	}
	if len(ctx.UnknownLabels) > 0 {
		return deny("cycle references unknown guardians: %v", ctx.UnknownLabels)
	}
	return allow()
}

// GuardianContext provides context for membership guards.
type GuardianContext struct {
	Mode           FamilyMode
	GuardianCount  int
	Label          string
	ExistingLabels []string
}

// CanAddGuardian evaluates whether a guardian can join the family.
// Rules: solo families have one guardian, co-parent families two, and
// labels are unique within a family.
func CanAddGuardian(ctx GuardianContext) GuardResult {
	label := strings.TrimSpace(ctx.Label)
	if label == "" {
		return deny("guardian label is required")
	}
	if label == Split || label == Me {
		return deny("%q is reserved and cannot be used as a guardian label", label)
	}
	limit := 2
	if ctx.Mode == ModeSolo {
		limit = 1
	}
	if ctx.GuardianCount >= limit {
		return deny("%s family already has %d guardian(s)", ctx.Mode, ctx.GuardianCount)
	}
	for _, existing := range ctx.ExistingLabels {
		if existing == label {
			return deny("label %q is already used in this family", label)
		}
	}
	return allow()
}

// EventContext provides context for event creation guards.
type EventContext struct {
	Type       EventType
	Start      time.Time
	End        *time.Time
	ChildIDs   []string
	KnownChild func(id string) bool
}

// CanCreateEvent evaluates whether an event is well formed.
func CanCreateEvent(ctx EventContext) GuardResult {
	switch ctx.Type {
	case EventSchool, EventActivity, EventPickup, EventDropoff, EventOther, EventManual:
	default:
		return deny("unknown event type %q", ctx.Type)
	}
	if ctx.Start.IsZero() {
		return deny("event start time is required")
	}
	if ctx.End != nil && ctx.End.Before(ctx.Start) {
		return deny("event ends before it starts")
	}
	for _, id := range ctx.ChildIDs {
		if ctx.KnownChild != nil && !ctx.KnownChild(id) {
			return deny("child %s is not in this family", id)
		}
	}
	return allow()
}

// InitialEventStatus decides the status of a new event. An event placed
// on a day scheduled for the partner needs the partner's approval.
func InitialEventStatus(expected, viewerLabel string, hasPartner bool) EventStatus {
	if hasPartner && expected != "" && expected != Split && expected != viewerLabel {
		return EventPendingApproval
	}
	return EventScheduled
}
