// Package cli contains thin adapters that translate CLI operations into
// primary port calls and render the results for a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ports/primary"
)

// DashboardAdapter renders reconciled family state.
type DashboardAdapter struct {
	service primary.DashboardService
	out     io.Writer
}

// NewDashboardAdapter creates a new DashboardAdapter with the given service.
func NewDashboardAdapter(service primary.DashboardService, out io.Writer) *DashboardAdapter {
	return &DashboardAdapter{
		service: service,
		out:     out,
	}
}

// Show refreshes the snapshot and renders the report at now.
func (a *DashboardAdapter) Show(ctx context.Context, now time.Time) (reconcile.Report, error) {
	if err := a.service.Refresh(ctx); err != nil {
		return reconcile.Report{}, fmt.Errorf("failed to load family state: %w", err)
	}
	report, err := a.service.Report(now)
	if err != nil {
		return reconcile.Report{}, err
	}
	a.Render(report)
	return report, nil
}

// Render writes one report.
func (a *DashboardAdapter) Render(report reconcile.Report) {
	fmt.Fprintf(a.out, "\n%s  %s\n", color.New(color.Bold).Sprint(report.Today.String()), report.EvaluatedAt.Format("15:04"))
	if !report.ExpectedGuardianToday {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("You are not the scheduled guardian today."))
	}
	if o := report.PendingOverrideToday; o != nil {
		fmt.Fprintf(a.out, "%s override %s..%s for %s awaits a response\n",
			color.New(color.FgHiMagenta).Sprint("Pending:"), o.FromDate, o.ToDate, o.OverrideParent)
	}

	if len(report.Children) == 0 {
		fmt.Fprintln(a.out, "No children yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add one:")
		fmt.Fprintln(a.out, "  custody child add Noa")
		return
	}

	for _, view := range report.Children {
		fmt.Fprintln(a.out)
		a.renderChild(view)
	}
	fmt.Fprintln(a.out)
}

func (a *DashboardAdapter) renderChild(view reconcile.ChildView) {
	status := string(view.Effective.Status)
	if view.Effective.Pending() {
		status += color.New(color.FgYellow).Sprint(" (awaiting handoff)")
	}
	fmt.Fprintf(a.out, "%s  %s\n", color.New(color.Bold).Sprint(view.Child.Name), status)
	if view.Expected != "" {
		fmt.Fprintf(a.out, "  today:    %s\n", view.Expected)
	}

	if c := view.Conflict; c != nil {
		fmt.Fprintf(a.out, "  %s %s\n", conflictMarker(c.Kind), describeConflict(*c))
	}
	if h := view.NextHandoff; h != nil {
		fmt.Fprintf(a.out, "  next:     %s\n", describeHandoff(*h))
	}
	if e := view.NextEvent; e != nil {
		fmt.Fprintf(a.out, "  upcoming: %s %s\n", e.Start.Format("Mon 15:04"), e.Title)
	}
	fmt.Fprintf(a.out, "  action:   %s\n", view.NextAction)
}

func conflictMarker(kind reconcile.ConflictKind) string {
	switch kind {
	case reconcile.ConflictDropoffOverdue:
		return color.New(color.FgRed).Sprint("OVERDUE ")
	case reconcile.ConflictHandoffPending:
		return color.New(color.FgYellow).Sprint("HANDOFF ")
	default:
		return color.New(color.FgCyan).Sprint("TODO    ")
	}
}

func describeConflict(c reconcile.Conflict) string {
	switch c.Kind {
	case reconcile.ConflictHandoffPending:
		if c.ViewerIsIncoming {
			return fmt.Sprintf("pick up from %s", c.PreviousHolder)
		}
		return fmt.Sprintf("hand over to %s", c.ExpectedHolder)
	case reconcile.ConflictDropoffNeeded:
		return fmt.Sprintf("drop off at %s", eventPlace(c.Event))
	case reconcile.ConflictDropoffOverdue:
		return fmt.Sprintf("drop off at %s, started %s ago", eventPlace(c.Event), c.Elapsed.Round(time.Minute))
	case reconcile.ConflictPickupNeeded:
		return fmt.Sprintf("pick up from %s", eventPlace(c.Event))
	default:
		return string(c.Kind)
	}
}

func describeHandoff(h reconcile.NextHandoff) string {
	when := fmt.Sprintf("%s %s", h.Date, h.Time())
	switch h.Type {
	case reconcile.HandoffTakeToEvent:
		if h.Location != "" {
			return fmt.Sprintf("take to %s at %s", h.Location, when)
		}
		return fmt.Sprintf("take to event at %s", when)
	case reconcile.HandoffPickup:
		return fmt.Sprintf("pick up from %s at %s", h.From, when)
	default:
		return fmt.Sprintf("drop off with %s at %s", h.To, when)
	}
}

func eventPlace(e *custody.Event) string {
	if e == nil {
		return "event"
	}
	if e.Location != "" {
		return e.Location
	}
	return e.Title
}
