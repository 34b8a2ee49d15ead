package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

func newTestCycleService(f *testFixture) *CycleServiceImpl {
	return NewCycleService(f.cycles, f.overrides, f.guardians, f.logWriter)
}

func slots(labels ...string) []custody.Slot {
	out := make([]custody.Slot, len(labels))
	for i, l := range labels {
		out[i] = custody.Slot{ParentLabel: l}
	}
	return out
}

func TestSetCycle_SupersedesActive(t *testing.T) {
	f := newTestFixture()
	service := newTestCycleService(f)
	ctx := ctxutil.WithActorID(context.Background(), dadID)

	handoff := custody.TimeOfDay{Hour: 18}
	cycle, err := service.SetCycle(ctx, primary.SetCycleRequest{
		FamilyID:           testFamilyID,
		Length:             4,
		Slots:              slots("dad", "dad", momID, custody.Split),
		ValidFrom:          mustDate("2024-04-01"),
		DefaultHandoffTime: &handoff,
	})
	if err != nil {
		t.Fatalf("SetCycle() failed: %v", err)
	}
	if cycle.VersionNumber != 2 || !cycle.Active() {
		t.Errorf("cycle = version %d active %v, want version 2 active", cycle.VersionNumber, cycle.Active())
	}
	if cycle.DefaultHandoffTime == nil || *cycle.DefaultHandoffTime != handoff {
		t.Errorf("DefaultHandoffTime = %v, want 18:00", cycle.DefaultHandoffTime)
	}
	if old := f.cycles.cycles[0]; old.ValidUntil != "2024-04-01" {
		t.Errorf("old cycle valid_until = %q, want 2024-04-01", old.ValidUntil)
	}
	if rec := f.cycles.cycles[1]; rec.CreatedBy != dadID || rec.CycleData != `["dad","dad","g-mom","split"]` {
		t.Errorf("stored cycle = %+v", rec)
	}
	if len(f.logWriter.calls) != 1 || f.logWriter.calls[0].entityType != "cycle" {
		t.Errorf("audit calls = %+v", f.logWriter.calls)
	}

	active, err := service.GetActiveCycle(ctx, testFamilyID, mustDate("2024-03-20"))
	if err != nil || active == nil || active.VersionNumber != 1 {
		t.Errorf("GetActiveCycle(2024-03-20) = %+v, %v; want version 1", active, err)
	}
	active, err = service.GetActiveCycle(ctx, testFamilyID, mustDate("2024-04-02"))
	if err != nil || active == nil || active.VersionNumber != 2 {
		t.Errorf("GetActiveCycle(2024-04-02) = %+v, %v; want version 2", active, err)
	}
}

func TestSetCycle_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     primary.SetCycleRequest
		wantErr string
	}{
		{
			name:    "unknown label",
			req:     primary.SetCycleRequest{Length: 2, Slots: slots("dad", "grandpa"), ValidFrom: mustDate("2024-04-01")},
			wantErr: "cycle references unknown guardians: [grandpa]",
		},
		{
			name:    "length mismatch",
			req:     primary.SetCycleRequest{Length: 3, Slots: slots("dad", "mom"), ValidFrom: mustDate("2024-04-01")},
			wantErr: "cycle has 2 days but length is 3",
		},
		{
			name:    "missing valid-from",
			req:     primary.SetCycleRequest{Length: 2, Slots: slots("dad", "mom")},
			wantErr: "cycle requires a valid-from date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture()
			tt.req.FamilyID = testFamilyID

			_, err := newTestCycleService(f).SetCycle(context.Background(), tt.req)
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("SetCycle() error = %v, want %q", err, tt.wantErr)
			}
			if len(f.cycles.cycles) != 1 {
				t.Error("rejected cycle was stored")
			}
		})
	}
}

func TestGetActiveCycle_None(t *testing.T) {
	f := newTestFixture()
	f.cycles.cycles = nil

	cycle, err := newTestCycleService(f).GetActiveCycle(context.Background(), testFamilyID, mustDate("2024-03-10"))
	if err != nil || cycle != nil {
		t.Errorf("GetActiveCycle() = %+v, %v; want nil, nil", cycle, err)
	}
}

func TestCalendar(t *testing.T) {
	f := newTestFixture()
	f.overrides.overrides = []*secondary.OverrideRecord{
		{ID: "o-approved", FamilyID: testFamilyID, FromDate: "2024-03-08", ToDate: "2024-03-08", OverrideParent: "mom", Status: "approved"},
		{ID: "o-pending", FamilyID: testFamilyID, FromDate: "2024-03-09", ToDate: "2024-03-10", OverrideParent: "dad", Status: "pending"},
	}

	days, err := newTestCycleService(f).Calendar(context.Background(), primary.CalendarRequest{
		FamilyID: testFamilyID,
		ViewerID: dadID,
		From:     mustDate("2024-03-07"),
		To:       mustDate("2024-03-10"),
	})
	if err != nil {
		t.Fatalf("Calendar() failed: %v", err)
	}

	want := []struct {
		assignment string
		label      string
		override   bool
		pending    bool
	}{
		{"dad", custody.Me, false, false},
		{"mom", "mom", true, false},
		{"dad", custody.Me, false, true},
		{"mom", "mom", false, true},
	}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, w := range want {
		d := days[i]
		if d.Assignment != w.assignment || d.Label != w.label || d.Override != w.override || (d.Pending != nil) != w.pending {
			t.Errorf("%s = {%s, %s, override %v, pending %v}, want %+v", d.Date, d.Assignment, d.Label, d.Override, d.Pending != nil, w)
		}
	}
}

func TestCalendar_UsesVersionPerDay(t *testing.T) {
	f := newTestFixture()
	service := newTestCycleService(f)
	ctx := context.Background()

	if _, err := service.SetCycle(ctx, primary.SetCycleRequest{
		FamilyID:  testFamilyID,
		Length:    1,
		Slots:     slots("mom"),
		ValidFrom: mustDate("2024-03-06"),
	}); err != nil {
		t.Fatalf("SetCycle() failed: %v", err)
	}

	days, err := service.Calendar(ctx, primary.CalendarRequest{
		FamilyID: testFamilyID,
		ViewerID: momID,
		From:     mustDate("2024-03-04"),
		To:       mustDate("2024-03-07"),
	})
	if err != nil {
		t.Fatalf("Calendar() failed: %v", err)
	}
	got := []string{days[0].Assignment, days[1].Assignment, days[2].Assignment, days[3].Assignment}
	want := []string{"dad", "dad", "mom", "mom"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignments = %v, want %v", got, want)
			break
		}
	}
}

func TestCalendar_InvalidRange(t *testing.T) {
	f := newTestFixture()
	_, err := newTestCycleService(f).Calendar(context.Background(), primary.CalendarRequest{
		FamilyID: testFamilyID,
		From:     mustDate("2024-03-10"),
		To:       mustDate("2024-03-01"),
	})
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestCalendar_GuardianLookupFails(t *testing.T) {
	f := newTestFixture()
	f.guardians.listErr = errors.New("boom")
	_, err := newTestCycleService(f).Calendar(context.Background(), primary.CalendarRequest{
		FamilyID: testFamilyID,
		From:     mustDate("2024-03-01"),
		To:       mustDate("2024-03-02"),
	})
	if err == nil {
		t.Fatal("expected guardian lookup error")
	}
}
