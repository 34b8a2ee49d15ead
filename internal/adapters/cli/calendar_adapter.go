package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
)

// CalendarAdapter renders the layered custody schedule.
type CalendarAdapter struct {
	service primary.CycleService
	out     io.Writer
}

// NewCalendarAdapter creates a new CalendarAdapter with the given service.
func NewCalendarAdapter(service primary.CycleService, out io.Writer) *CalendarAdapter {
	return &CalendarAdapter{
		service: service,
		out:     out,
	}
}

// Show prints one line per day of the requested window.
func (a *CalendarAdapter) Show(ctx context.Context, req primary.CalendarRequest) ([]primary.CalendarDay, error) {
	days, err := a.service.Calendar(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDAY\tWITH\tNOTE")
	fmt.Fprintln(w, "----\t---\t----\t----")
	for _, d := range days {
		note := ""
		if d.Override {
			note = color.New(color.FgCyan).Sprint("override")
		}
		if d.Pending != nil {
			note = color.New(color.FgHiMagenta).Sprintf("pending: %s", d.Pending.OverrideParent)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Date, d.Date.Weekday().String()[:3], labelColor(d.Label), note)
	}
	w.Flush()
	return days, nil
}

func labelColor(label string) string {
	switch label {
	case "":
		return "-"
	case custody.Me:
		return color.New(color.FgGreen).Sprint(label)
	case custody.Split:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgBlue).Sprint(label)
	}
}
