package custody

import (
	"strconv"
	"strings"
	"time"
)

const backpackPrefix = "[BACKPACK:"

// EncodeDescription prefixes notes with the backpack item list, if any.
func EncodeDescription(notes string, items []string) string {
	var clean []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !strings.ContainsAny(item, ",]") {
			clean = append(clean, item)
		}
	}
	if len(clean) == 0 {
		return notes
	}
	return backpackPrefix + strings.Join(clean, ",") + "]\n" + notes
}

// ParseDescription splits an event description into its backpack items
// and free-text notes.
func ParseDescription(description string) (items []string, notes string) {
	rest, ok := strings.CutPrefix(description, backpackPrefix)
	if !ok {
		return nil, description
	}
	list, after, found := strings.Cut(rest, "]")
	if !found {
		return nil, description
	}
	for _, item := range strings.Split(list, ",") {
		if item != "" {
			items = append(items, item)
		}
	}
	return items, strings.TrimPrefix(after, "\n")
}

// RelativeTime labels t relative to now the way a timeline shows it:
// "in 5m", "Just now", "3h ago", "Yesterday", "2d ago", or the date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		ahead := -diff
		switch {
		case ahead < time.Hour:
			return fmtUnit("in ", int(ahead/time.Minute), "m")
		case ahead < 24*time.Hour:
			return fmtUnit("in ", int(ahead/time.Hour), "h")
		default:
			return DateOf(t).String()
		}
	}
	days := int(diff / (24 * time.Hour))
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmtUnit("", int(diff/time.Minute), "m ago")
	case diff < 24*time.Hour:
		return fmtUnit("", int(diff/time.Hour), "h ago")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmtUnit("", days, "d ago")
	default:
		return DateOf(t).String()
	}
}

func fmtUnit(prefix string, n int, suffix string) string {
	return prefix + strconv.Itoa(n) + suffix
}

// BriefSince returns the start of a since-last-seen brief: the viewer's
// last handoff, capped at maxDays before now. hadHandoff is false when
// there was no handoff to start from.
func BriefSince(now time.Time, lastHandoff *time.Time, maxDays int) (since time.Time, hadHandoff bool) {
	floor := now.Add(-time.Duration(maxDays) * 24 * time.Hour)
	if lastHandoff == nil {
		return floor, false
	}
	if lastHandoff.Before(floor) {
		return floor, true
	}
	return *lastHandoff, true
}
