package custody

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/custody/internal/core/effects"
)

// ActionInput carries what a pickup or dropoff plan needs. Partner is nil
// in solo families.
type ActionInput struct {
	FamilyID string
	Child    Child
	Viewer   Guardian
	Partner  *Guardian
	Now      time.Time
}

// PlanPickup returns the effects of the viewer confirming a pickup: the
// child is now with the viewer, and a handoff from the partner (or from
// the viewer in solo mode) is recorded.
func PlanPickup(in ActionInput) []effects.Effect {
	status := WithGuardian(in.Viewer.Label)
	from := in.Viewer.ID
	if in.Partner != nil {
		from = in.Partner.ID
	}

	return []effects.Effect{
		effects.ChildStatusEffect{
			ChildID:    in.Child.ID,
			Status:     string(status),
			GuardianID: in.Viewer.ID,
			ChangedAt:  in.Now,
			ChangedBy:  in.Viewer.ID,
		},
		effects.HandoffEffect{
			FamilyID:     in.FamilyID,
			ChildID:      in.Child.ID,
			FromGuardian: from,
			ToGuardian:   in.Viewer.ID,
			At:           in.Now,
		},
		statusAudit(in.Child, status),
	}
}

// PlanDropoff returns the effects of the viewer dropping the child off at
// location with the given items.
func PlanDropoff(in ActionInput, location string, items []string) []effects.Effect {
	partnerLabel := ""
	if in.Partner != nil {
		partnerLabel = in.Partner.Label
	}
	status := StatusForLocation(location, partnerLabel)

	holder := ""
	if _, ok := status.Holder(); ok && in.Partner != nil {
		holder = in.Partner.ID
	}
	to := in.Viewer.ID
	if in.Partner != nil {
		to = in.Partner.ID
	}

	sent := make([]effects.HandoffItem, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			sent = append(sent, effects.HandoffItem{Name: item})
		}
	}

	return []effects.Effect{
		effects.ChildStatusEffect{
			ChildID:    in.Child.ID,
			Status:     string(status),
			GuardianID: holder,
			ChangedAt:  in.Now,
			ChangedBy:  in.Viewer.ID,
		},
		effects.HandoffEffect{
			FamilyID:     in.FamilyID,
			ChildID:      in.Child.ID,
			FromGuardian: in.Viewer.ID,
			ToGuardian:   to,
			At:           in.Now,
			Items:        sent,
			Notes:        fmt.Sprintf("Dropped off at %s", location),
		},
		statusAudit(in.Child, status),
	}
}

func statusAudit(child Child, status Status) effects.AuditEffect {
	return effects.AuditEffect{
		EntityType: "child",
		EntityID:   child.ID,
		Action:     "update",
		FieldName:  "status",
		OldValue:   string(child.Status),
		NewValue:   string(status),
	}
}

// StatusForLocation maps a free-text dropoff location to a status. School,
// daycare and kindergarten count as school; the partner's label (or the
// word "partner") hands the child to the partner; anything else is an
// activity.
func StatusForLocation(location, partnerLabel string) Status {
	loc := strings.ToLower(strings.TrimSpace(location))
	switch {
	case loc == "":
		return StatusUnknown
	case strings.Contains(loc, "school"), strings.Contains(loc, "daycare"), strings.Contains(loc, "kindergarten"):
		return StatusAtSchool
	case partnerLabel != "" && (loc == "partner" || loc == strings.ToLower(partnerLabel)):
		return WithGuardian(partnerLabel)
	default:
		return StatusAtActivity
	}
}
