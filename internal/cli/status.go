package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/app"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the children are and what needs doing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			if _, err := requireFamily(wire.Config()); err != nil {
				return err
			}
			_, err := wire.DashboardAdapter().Show(ctx, time.Now().In(location()))
			return err
		},
	}
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var reload time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the status view up to date",
		Long: `Re-evaluate the status every tick_interval so conflicts appear as
events start and end. Data is reloaded every --reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireFamily(wire.Config()); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dashboard := wire.DashboardService()
			if err := dashboard.Refresh(ctx); err != nil {
				return err
			}

			adapter := wire.DashboardAdapter()
			watcher := wire.Watcher(func(report reconcile.Report) {
				adapter.Render(report)
			})

			go reloadLoop(ctx, reload)

			err := watcher.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&reload, "reload", 5*time.Minute, "How often to reload data from the database")
	return cmd
}

// reloadLoop refreshes the snapshot until ctx is done so edits made from
// another terminal show up.
func reloadLoop(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reload(ctx, wire.DashboardService(), wire.Logger())
		}
	}
}

// reload refreshes once. A refresh superseded by a newer one is not a
// failure, and nothing is logged once ctx is done.
func reload(ctx context.Context, dashboard app.Refresher, logger *slog.Logger) {
	if err := app.RefreshLatest(ctx, dashboard); err != nil && ctx.Err() == nil {
		logger.Warn("reload failed", "error", err)
	}
}
