package primary

import (
	"context"
	"time"

	"github.com/example/custody/internal/core/reconcile"
)

// DashboardService defines the primary port for reconciled family state.
type DashboardService interface {
	// Refresh reloads the family snapshot from storage.
	Refresh(ctx context.Context) error

	// Report evaluates the current snapshot at now.
	Report(now time.Time) (reconcile.Report, error)

	// IsExpectedGuardianToday reports whether the viewer is scheduled today.
	IsExpectedGuardianToday(now time.Time) (bool, error)
}
