package custody

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnexpectedGuardian is returned when a pickup is confirmed by a
	// guardian the schedule did not expect today and force was not set.
	ErrUnexpectedGuardian = errors.New("confirming guardian is not the scheduled guardian today")
)

// Split is the assignment value for days shared by both guardians.
const Split = "split"

// Me is the viewer-relative label for the viewing guardian.
const Me = "me"

// FamilyMode distinguishes one-guardian from two-guardian families.
type FamilyMode string

const (
	ModeSolo     FamilyMode = "solo"
	ModeCoParent FamilyMode = "co-parent"
)

// Family is the unit every computation is scoped to.
type Family struct {
	ID        string
	Name      string
	Mode      FamilyMode
	CreatedAt time.Time
}

// Guardian is a family member who can hold custody.
type Guardian struct {
	ID       string
	FamilyID string
	Label    string // role label: "dad", "mom", or any role tag
	Name     string
	Role     string // "admin" or "member"
}

// Status is a child's recorded whereabouts.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusAtSchool   Status = "at_school"
	StatusAtActivity Status = "at_activity"

	withPrefix = "with_"
)

// WithGuardian returns the status for a child held by the guardian with label.
func WithGuardian(label string) Status {
	return Status(withPrefix + label)
}

// Holder returns the label of the guardian holding the child, if the
// status is a with_<label> status.
func (s Status) Holder() (string, bool) {
	label, ok := strings.CutPrefix(string(s), withPrefix)
	if !ok || label == "" {
		return "", false
	}
	return label, true
}

// AtVenue reports whether the child is at school or an activity.
func (s Status) AtVenue() bool {
	return s == StatusAtSchool || s == StatusAtActivity
}

// Child carries the explicit status written by confirmed pickups and dropoffs.
type Child struct {
	ID                string
	FamilyID          string
	Name              string
	DateOfBirth       string
	Status            Status
	CurrentGuardianID string
	StatusChangedAt   time.Time
	StatusChangedBy   string
}

// Allocation assigns a single child to a guardian on a cycle day,
// overriding the slot's family-wide label for that child.
type Allocation struct {
	ChildID     string
	ParentLabel string
}

// Slot is one normalized day of a custody cycle. ParentLabel holds a role
// label, a guardian identifier, or Split. An empty ParentLabel means the
// day has no assignment.
type Slot struct {
	ParentLabel string
	Allocations []Allocation
}

// LabelFor returns the assignment for childID on this slot.
func (s Slot) LabelFor(childID string) string {
	for _, a := range s.Allocations {
		if a.ChildID == childID && a.ParentLabel != "" {
			return a.ParentLabel
		}
	}
	return s.ParentLabel
}

// Cycle is a repeating custody pattern. ValidUntil is nil for the active cycle.
type Cycle struct {
	ID                 string
	FamilyID           string
	Length             int
	Slots              []Slot
	ValidFrom          Date
	ValidUntil         *Date
	DefaultHandoffTime *TimeOfDay
	VersionNumber      int
	CreatedAt          time.Time
}

// Active reports whether the cycle has not been superseded.
func (c *Cycle) Active() bool {
	return c != nil && c.ValidUntil == nil
}

// OverrideStatus is the approval state of a custody override.
type OverrideStatus string

const (
	OverridePending  OverrideStatus = "pending"
	OverrideApproved OverrideStatus = "approved"
	OverrideRejected OverrideStatus = "rejected"
)

// Override is a one-off exception assigning [FromDate, ToDate] to a guardian.
type Override struct {
	ID             string
	FamilyID       string
	FromDate       Date
	ToDate         Date
	OverrideParent string
	Reason         string
	Status         OverrideStatus
	RequestedBy    string
	RespondedBy    string
	RespondedAt    *time.Time
	CreatedAt      time.Time
}

// Covers reports whether d falls inside the override's closed range.
func (o Override) Covers(d Date) bool {
	return d.Within(o.FromDate, o.ToDate)
}

// EventType classifies calendar events.
type EventType string

const (
	EventSchool   EventType = "school"
	EventActivity EventType = "activity"
	EventPickup   EventType = "pickup"
	EventDropoff  EventType = "dropoff"
	EventOther    EventType = "other"
	EventManual   EventType = "manual"
)

// IsVenue reports whether the event places the child at a venue.
func (t EventType) IsVenue() bool {
	return t == EventSchool || t == EventActivity
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventScheduled       EventStatus = "scheduled"
	EventPendingApproval EventStatus = "pending_approval"
	EventCancelled       EventStatus = "cancelled"
)

// Event is a calendar entry, optionally linked to children.
type Event struct {
	ID          string
	FamilyID    string
	Type        EventType
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         *time.Time
	AllDay      bool
	Status      EventStatus
	ChildIDs    []string
	CreatedBy   string
}

// Cancelled reports whether the event is excluded from reconciliation.
func (e Event) Cancelled() bool {
	return e.Status == EventCancelled
}

// InvolvesChild reports whether the event is linked to childID.
func (e Event) InvolvesChild(childID string) bool {
	for _, id := range e.ChildIDs {
		if id == childID {
			return true
		}
	}
	return false
}

// HandoffItem is an item sent along with a child.
type HandoffItem struct {
	Name           string `json:"name"`
	FlaggedMissing bool   `json:"flagged_missing"`
}

// Handoff is an immutable record of an actual transfer.
type Handoff struct {
	ID           string
	FamilyID     string
	ChildID      string
	FromGuardian string
	ToGuardian   string
	ScheduledAt  time.Time
	ActualAt     time.Time
	Items        []HandoffItem
	Notes        string
}
