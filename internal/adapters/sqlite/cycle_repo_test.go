package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/custody/internal/adapters/sqlite"
	"github.com/example/custody/internal/ports/secondary"
)

func TestCycleRepository_GetActive_NoCycle(t *testing.T) {
	db := setupTestDB(t)
	seedFamily(t, db, "fam-1")
	repo := sqlite.NewCycleRepository(db)

	got, err := repo.GetActive(context.Background(), "fam-1", "2024-03-10")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected no cycle, got %+v", got)
	}
}

func TestCycleRepository_Supersede(t *testing.T) {
	db := setupTestDB(t)
	seedFamily(t, db, "fam-1")
	repo := sqlite.NewCycleRepository(db)
	ctx := context.Background()

	first := &secondary.CycleRecord{
		ID:          "cyc-1",
		FamilyID:    "fam-1",
		CycleLength: 2,
		CycleData:   `["dad","mom"]`,
		ValidFrom:   "2024-03-03",
	}
	if err := repo.Supersede(ctx, first); err != nil {
		t.Fatalf("Supersede failed: %v", err)
	}
	if first.VersionNumber != 1 {
		t.Errorf("first version = %d, want 1", first.VersionNumber)
	}

	second := &secondary.CycleRecord{
		ID:                 "cyc-2",
		FamilyID:           "fam-1",
		CycleLength:        1,
		CycleData:          `["split"]`,
		ValidFrom:          "2024-04-07",
		DefaultHandoffTime: "17:00",
	}
	if err := repo.Supersede(ctx, second); err != nil {
		t.Fatalf("Supersede failed: %v", err)
	}
	if second.VersionNumber != 2 {
		t.Errorf("second version = %d, want 2", second.VersionNumber)
	}

	tests := []struct {
		asOf   string
		wantID string
	}{
		{asOf: "2024-03-02", wantID: ""},
		{asOf: "2024-03-10", wantID: "cyc-1"},
		{asOf: "2024-04-06", wantID: "cyc-1"},
		{asOf: "2024-04-07", wantID: "cyc-2"},
		{asOf: "2025-01-01", wantID: "cyc-2"},
	}
	for _, tt := range tests {
		t.Run(tt.asOf, func(t *testing.T) {
			got, err := repo.GetActive(ctx, "fam-1", tt.asOf)
			if err != nil {
				t.Fatalf("GetActive failed: %v", err)
			}
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.wantID {
				t.Errorf("GetActive(%s) = %q, want %q", tt.asOf, gotID, tt.wantID)
			}
		})
	}

	list, err := repo.List(ctx, "fam-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "cyc-2" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].ValidUntil != "2024-04-07" {
		t.Errorf("superseded valid_until = %q, want 2024-04-07", list[1].ValidUntil)
	}
	if list[0].ValidUntil != "" || list[0].DefaultHandoffTime != "17:00" {
		t.Errorf("unexpected active cycle %+v", list[0])
	}
}
