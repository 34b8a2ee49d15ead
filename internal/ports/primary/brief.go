package primary

import (
	"context"
	"time"

	"github.com/example/custody/internal/core/custody"
)

// BriefMode selects the period a brief covers.
type BriefMode string

const (
	// BriefSinceLastSeen covers the time since the viewer last handed the
	// child over, capped at BriefMaxDays.
	BriefSinceLastSeen BriefMode = "since-last-seen"
	// BriefToday covers the current day.
	BriefToday BriefMode = "today"
)

// BriefMaxDays caps how far back a since-last-seen brief looks.
const BriefMaxDays = 5

// BriefService defines the primary port for catch-up briefs.
type BriefService interface {
	// GenerateBrief summarizes a child's events for the acting guardian.
	GenerateBrief(ctx context.Context, req BriefRequest) (*Brief, error)
}

// BriefRequest contains parameters for a brief.
type BriefRequest struct {
	ChildID string
	Mode    BriefMode
}

// Brief is a summary of what happened to a child.
type Brief struct {
	ChildID    string
	ChildName  string
	Mode       BriefMode
	Since      time.Time
	HadHandoff bool
	Items      []BriefItem
}

// BriefItem is one event in a brief.
type BriefItem struct {
	Event    custody.Event
	When     string // relative label, e.g. "in 5m", "3h ago", "Yesterday"
	Notes    string
	Backpack []string
}
