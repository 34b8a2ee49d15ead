package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ports/secondary"
)

// SnapshotLoader fetches everything a reconciliation pass reads.
type SnapshotLoader interface {
	Load(ctx context.Context) (*reconcile.Snapshot, error)
}

// Repositories groups the secondary ports the application reads from.
type Repositories struct {
	Families  secondary.FamilyRepository
	Guardians secondary.GuardianRepository
	Children  secondary.ChildRepository
	Cycles    secondary.CycleRepository
	Overrides secondary.OverrideRepository
	Events    secondary.EventRepository
	Handoffs  secondary.HandoffRepository
}

// LoaderOptions scopes a RepoSnapshotLoader to one family and viewer.
type LoaderOptions struct {
	FamilyID    string
	ViewerID    string
	Location    *time.Location
	EventsPast  time.Duration
	EventsAhead time.Duration
}

// RepoSnapshotLoader builds snapshots from the repositories.
type RepoSnapshotLoader struct {
	repos  Repositories
	opts   LoaderOptions
	clock  clock.Clock
	logger *slog.Logger
}

// NewRepoSnapshotLoader creates a loader. A nil logger discards output.
func NewRepoSnapshotLoader(repos Repositories, opts LoaderOptions, clk clock.Clock, logger *slog.Logger) *RepoSnapshotLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.EventsPast == 0 {
		opts.EventsPast = 7 * 24 * time.Hour
	}
	if opts.EventsAhead == 0 {
		opts.EventsAhead = 90 * 24 * time.Hour
	}
	return &RepoSnapshotLoader{repos: repos, opts: opts, clock: clk, logger: logger}
}

// Load fetches the family, its members, the active cycle, approved and
// pending overrides and the events in the configured window. Records
// that cannot be decoded are skipped with a warning so one bad row never
// hides the rest of the family.
func (l *RepoSnapshotLoader) Load(ctx context.Context) (*reconcile.Snapshot, error) {
	now := l.clock.Now().In(l.opts.Location)
	today := custody.DateOf(now)
	familyID := l.opts.FamilyID

	familyRec, err := l.repos.Families.GetByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family: %w", err)
	}

	guardianRecs, err := l.repos.Guardians.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guardians: %w", err)
	}
	guardians := make([]custody.Guardian, len(guardianRecs))
	for i, r := range guardianRecs {
		guardians[i] = recordToGuardian(r)
	}

	childRecs, err := l.repos.Children.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	children := make([]custody.Child, len(childRecs))
	for i, r := range childRecs {
		children[i] = recordToChild(r)
	}

	var cycle *custody.Cycle
	cycleRec, err := l.repos.Cycles.GetActive(ctx, familyID, today.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle: %w", err)
	}
	if cycleRec != nil {
		cycle, err = recordToCycle(cycleRec)
		if err != nil {
			l.logger.Warn("ignoring undecodable cycle", "family", familyID, "error", err)
			cycle = nil
		}
	}

	overrideRecs, err := l.repos.Overrides.List(ctx, familyID, []string{
		string(custody.OverrideApproved), string(custody.OverridePending),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	overrides := make([]custody.Override, 0, len(overrideRecs))
	for _, r := range overrideRecs {
		o, err := recordToOverride(r)
		if err != nil {
			l.logger.Warn("skipping undecodable override", "family", familyID, "error", err)
			continue
		}
		overrides = append(overrides, o)
	}

	from := formatTime(now.Add(-l.opts.EventsPast))
	to := formatTime(now.Add(l.opts.EventsAhead))
	eventRecs, err := l.repos.Events.ListInWindow(ctx, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	events := make([]custody.Event, 0, len(eventRecs))
	for _, r := range eventRecs {
		e, err := recordToEvent(r)
		if err != nil {
			l.logger.Warn("skipping undecodable event", "family", familyID, "error", err)
			continue
		}
		events = append(events, e)
	}

	return &reconcile.Snapshot{
		Family:    recordToFamily(familyRec),
		Guardians: guardians,
		ViewerID:  l.opts.ViewerID,
		Cycle:     cycle,
		Overrides: overrides,
		Children:  children,
		Events:    events,
		Location:  l.opts.Location,
		LoadedAt:  now,
	}, nil
}

var _ SnapshotLoader = (*RepoSnapshotLoader)(nil)
