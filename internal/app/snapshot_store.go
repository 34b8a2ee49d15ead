package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ports/primary"
)

var (
	// ErrRefreshFailed is returned when a snapshot fetch fails. The
	// previous snapshot stays in use; the refresh may be retried.
	ErrRefreshFailed = errors.New("snapshot refresh failed")

	// ErrRefreshSuperseded is returned when a newer refresh started or
	// finished first and this one's result was discarded.
	ErrRefreshSuperseded = errors.New("snapshot refresh superseded by a newer refresh")

	// ErrNoSnapshot is returned when no refresh has succeeded yet.
	ErrNoSnapshot = errors.New("no snapshot loaded")
)

// Refresher reloads state from storage.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshLatest refreshes r and reports success when the refresh was
// superseded, since the newer refresh replaces its result.
func RefreshLatest(ctx context.Context, r Refresher) error {
	err := r.Refresh(ctx)
	if errors.Is(err, ErrRefreshSuperseded) {
		return nil
	}
	return err
}

// SnapshotStore holds the current family snapshot and swaps it whole on
// refresh. Readers never observe a partially updated snapshot.
//
// Each refresh is numbered when it starts. Starting a refresh cancels the
// fetch of any older one still in flight, and a completed fetch is only
// installed when nothing newer has been installed.
type SnapshotStore struct {
	loader SnapshotLoader
	logger *slog.Logger

	current atomic.Pointer[reconcile.Snapshot]

	mu        sync.Mutex
	started   uint64
	installed uint64
	cancel    context.CancelFunc
}

// NewSnapshotStore creates an empty store. A nil logger discards output.
func NewSnapshotStore(loader SnapshotLoader, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SnapshotStore{loader: loader, logger: logger}
}

// Refresh fetches a new snapshot and installs it.
func (s *SnapshotStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	gen := s.started
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Debug("snapshot refresh started", "generation", gen)
	snap, err := s.loader.Load(fetchCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if gen == s.started {
		s.cancel = nil
	}

	if gen <= s.installed || (err != nil && gen != s.started) {
		s.logger.Debug("snapshot refresh discarded as stale", "generation", gen, "installed", s.installed)
		return ErrRefreshSuperseded
	}
	if err != nil {
		s.logger.Warn("snapshot refresh failed", "generation", gen, "error", err)
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	snap.Generation = gen
	s.current.Store(snap)
	s.installed = gen
	s.logger.Debug("snapshot installed", "generation", gen, "children", len(snap.Children), "events", len(snap.Events))
	return nil
}

// Snapshot returns the installed snapshot, or nil before the first
// successful refresh.
func (s *SnapshotStore) Snapshot() *reconcile.Snapshot {
	return s.current.Load()
}

// Report evaluates the installed snapshot at now.
func (s *SnapshotStore) Report(now time.Time) (reconcile.Report, error) {
	snap := s.current.Load()
	if snap == nil {
		return reconcile.Report{}, ErrNoSnapshot
	}
	return reconcile.Evaluate(snap, now), nil
}

// IsExpectedGuardianToday reports whether the viewer is scheduled today.
func (s *SnapshotStore) IsExpectedGuardianToday(now time.Time) (bool, error) {
	snap := s.current.Load()
	if snap == nil {
		return false, ErrNoSnapshot
	}
	return reconcile.NewEvaluator(snap).IsExpectedGuardianToday(now), nil
}

// Ensure SnapshotStore implements the interface
var _ primary.DashboardService = (*SnapshotStore)(nil)
