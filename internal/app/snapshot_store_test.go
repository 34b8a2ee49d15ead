package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/core/reconcile"
	"github.com/example/custody/internal/ports/secondary"
)

// loaderFunc adapts a function to SnapshotLoader.
type loaderFunc func(ctx context.Context) (*reconcile.Snapshot, error)

func (f loaderFunc) Load(ctx context.Context) (*reconcile.Snapshot, error) { return f(ctx) }

func staticLoader(snap reconcile.Snapshot) loaderFunc {
	return func(ctx context.Context) (*reconcile.Snapshot, error) {
		s := snap
		return &s, nil
	}
}

func TestSnapshotStore_ReportBeforeRefresh(t *testing.T) {
	store := NewSnapshotStore(staticLoader(reconcile.Snapshot{}), nil)

	if _, err := store.Report(at(10, 12, 0)); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Report() error = %v, want ErrNoSnapshot", err)
	}
	if _, err := store.IsExpectedGuardianToday(at(10, 12, 0)); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("IsExpectedGuardianToday() error = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotStore_RefreshNumbersGenerations(t *testing.T) {
	store := NewSnapshotStore(staticLoader(reconcile.Snapshot{Family: custody.Family{ID: testFamilyID}}), nil)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		if err := store.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() failed: %v", err)
		}
		if got := store.Snapshot().Generation; got != want {
			t.Errorf("Generation = %d, want %d", got, want)
		}
	}

	report, err := store.Report(at(10, 12, 0))
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if report.FamilyID != testFamilyID || report.Generation != 3 {
		t.Errorf("report = {%s, %d}, want {%s, 3}", report.FamilyID, report.Generation, testFamilyID)
	}
}

func TestSnapshotStore_FailedRefreshKeepsPrevious(t *testing.T) {
	fail := false
	loadErr := errors.New("database is locked")
	store := NewSnapshotStore(loaderFunc(func(ctx context.Context) (*reconcile.Snapshot, error) {
		if fail {
			return nil, loadErr
		}
		return &reconcile.Snapshot{Family: custody.Family{ID: testFamilyID}}, nil
	}), nil)
	ctx := context.Background()

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh() failed: %v", err)
	}
	before := store.Snapshot()

	fail = true
	err := store.Refresh(ctx)
	if !errors.Is(err, ErrRefreshFailed) || !errors.Is(err, loadErr) {
		t.Fatalf("Refresh() error = %v, want ErrRefreshFailed wrapping the load error", err)
	}
	if store.Snapshot() != before {
		t.Error("failed refresh replaced the snapshot")
	}

	fail = false
	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("retry Refresh() failed: %v", err)
	}
	if store.Snapshot().Generation != 3 {
		t.Errorf("Generation after retry = %d, want 3", store.Snapshot().Generation)
	}
}

func TestSnapshotStore_NewerRefreshCancelsSlowOne(t *testing.T) {
	entered := make(chan struct{})
	calls := 0
	store := NewSnapshotStore(loaderFunc(func(ctx context.Context) (*reconcile.Snapshot, error) {
		calls++
		if calls == 1 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &reconcile.Snapshot{Family: custody.Family{ID: "fresh"}}, nil
	}), nil)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- store.Refresh(ctx) }()
	<-entered

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("newer Refresh() failed: %v", err)
	}
	if err := <-slow; !errors.Is(err, ErrRefreshSuperseded) {
		t.Errorf("slow Refresh() error = %v, want ErrRefreshSuperseded", err)
	}
	if got := store.Snapshot(); got.Family.ID != "fresh" || got.Generation != 2 {
		t.Errorf("installed snapshot = {%s, %d}, want {fresh, 2}", got.Family.ID, got.Generation)
	}
}

func TestSnapshotStore_StaleResultDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	store := NewSnapshotStore(loaderFunc(func(ctx context.Context) (*reconcile.Snapshot, error) {
		calls++
		if calls == 1 {
			close(entered)
			// Ignores cancellation and finishes late with old data.
			<-release
			return &reconcile.Snapshot{Family: custody.Family{ID: "stale"}}, nil
		}
		return &reconcile.Snapshot{Family: custody.Family{ID: "fresh"}}, nil
	}), nil)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- store.Refresh(ctx) }()
	<-entered

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("newer Refresh() failed: %v", err)
	}
	close(release)

	if err := <-slow; !errors.Is(err, ErrRefreshSuperseded) {
		t.Errorf("slow Refresh() error = %v, want ErrRefreshSuperseded", err)
	}
	if got := store.Snapshot().Family.ID; got != "fresh" {
		t.Errorf("installed snapshot = %s, want fresh", got)
	}
}

func TestRepoSnapshotLoader_Load(t *testing.T) {
	f := newTestFixture()
	f.overrides.overrides = []*secondary.OverrideRecord{
		{ID: "o-ok", FamilyID: testFamilyID, FromDate: "2024-03-12", ToDate: "2024-03-12", OverrideParent: "dad", Status: "approved"},
		{ID: "o-rej", FamilyID: testFamilyID, FromDate: "2024-03-13", ToDate: "2024-03-13", OverrideParent: "dad", Status: "rejected"},
		{ID: "o-bad", FamilyID: testFamilyID, FromDate: "someday", ToDate: "2024-03-13", OverrideParent: "dad", Status: "pending"},
	}
	f.events.events = []*secondary.EventRecord{
		{ID: "e-in", FamilyID: testFamilyID, Type: "school", StartAt: "2024-03-11T08:30:00Z", Status: "scheduled", ChildIDs: []string{childID}},
		{ID: "e-old", FamilyID: testFamilyID, Type: "school", StartAt: "2024-02-01T08:30:00Z", Status: "scheduled"},
		{ID: "e-bad", FamilyID: testFamilyID, Type: "school", StartAt: "tomorrow", Status: "scheduled"},
	}

	clk := clock.Fake(at(10, 12, 0))
	loader := NewRepoSnapshotLoader(f.repos, LoaderOptions{FamilyID: testFamilyID, ViewerID: momID, Location: time.UTC}, clk, nil)

	snap, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if snap.ViewerID != momID || len(snap.Guardians) != 2 || len(snap.Children) != 1 {
		t.Errorf("snapshot members = viewer %s, %d guardians, %d children", snap.ViewerID, len(snap.Guardians), len(snap.Children))
	}
	if snap.Cycle == nil || snap.Cycle.Length != 14 || snap.Cycle.DefaultHandoffTime == nil {
		t.Fatalf("cycle = %+v, want 14-day cycle with handoff time", snap.Cycle)
	}
	if len(snap.Overrides) != 1 || snap.Overrides[0].ID != "o-ok" {
		t.Errorf("overrides = %+v, want only o-ok", snap.Overrides)
	}
	if len(snap.Events) != 1 || snap.Events[0].ID != "e-in" {
		t.Errorf("events = %+v, want only e-in", snap.Events)
	}
	if !snap.LoadedAt.Equal(at(10, 12, 0)) {
		t.Errorf("LoadedAt = %v", snap.LoadedAt)
	}
}

func TestRepoSnapshotLoader_NoCycle(t *testing.T) {
	f := newTestFixture()
	f.cycles.cycles = nil

	loader := NewRepoSnapshotLoader(f.repos, LoaderOptions{FamilyID: testFamilyID, ViewerID: dadID, Location: time.UTC}, clock.Fake(at(10, 12, 0)), nil)
	snap, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if snap.Cycle != nil {
		t.Errorf("Cycle = %+v, want nil", snap.Cycle)
	}
}

func TestRepoSnapshotLoader_StorageError(t *testing.T) {
	f := newTestFixture()
	f.events.listErr = errors.New("disk I/O error")

	loader := NewRepoSnapshotLoader(f.repos, LoaderOptions{FamilyID: testFamilyID, ViewerID: dadID}, clock.Fake(at(10, 12, 0)), nil)
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error when events cannot be read")
	}
}

type refreshFunc func(ctx context.Context) error

func (f refreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

func TestRefreshLatest(t *testing.T) {
	boom := errors.New("disk gone")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "success"},
		{name: "superseded counts as success", err: ErrRefreshSuperseded},
		{name: "failure passes through", err: boom, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RefreshLatest(context.Background(), refreshFunc(func(context.Context) error { return tt.err }))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RefreshLatest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
