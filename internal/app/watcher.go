package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ports/primary"
)

// DefaultTickInterval is how often the watcher re-evaluates.
const DefaultTickInterval = time.Minute

// Watcher re-evaluates the cached snapshot on a fixed interval so that
// wall-clock changes (an event ending, midnight passing) show up without
// a storage fetch.
type Watcher struct {
	dashboard primary.DashboardService
	clock     clock.Clock
	interval  time.Duration
	logger    *slog.Logger
	onReport  func(reconcile.Report)
}

// NewWatcher creates a watcher that hands each report to onReport.
func NewWatcher(dashboard primary.DashboardService, clk clock.Clock, interval time.Duration, logger *slog.Logger, onReport func(reconcile.Report)) *Watcher {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		dashboard: dashboard,
		clock:     clk,
		interval:  interval,
		logger:    logger,
		onReport:  onReport,
	}
}

// Run evaluates once immediately and then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.evaluate(w.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.evaluate(now)
		}
	}
}

func (w *Watcher) evaluate(now time.Time) {
	report, err := w.dashboard.Report(now)
	if errors.Is(err, ErrNoSnapshot) {
		w.logger.Debug("watcher tick skipped, no snapshot yet")
		return
	}
	if err != nil {
		w.logger.Warn("watcher tick failed", "error", err)
		return
	}
	w.onReport(report)
}
