package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/custody/internal/adapters/sqlite"
	"github.com/example/custody/internal/ports/secondary"
)

// createTestHandoff appends a handoff of c1 from one guardian to another.
func createTestHandoff(t *testing.T, repo *sqlite.HandoffRepository, id, from, to, actualAt string) {
	t.Helper()
	err := repo.Create(context.Background(), &secondary.HandoffRecord{
		ID:           id,
		FamilyID:     "fam-1",
		ChildID:      "c1",
		FromGuardian: from,
		ToGuardian:   to,
		ActualAt:     actualAt,
		Items:        `[{"name":"lunchbox","flagged_missing":false}]`,
		Notes:        "Dropped off at School",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestHandoffRepository_LatestFrom(t *testing.T) {
	db := setupTestDB(t)
	seedFamilyWithMembers(t, db)
	repo := sqlite.NewHandoffRepository(db)
	ctx := context.Background()

	createTestHandoff(t, repo, "ho-1", "g-dad", "g-mom", "2024-03-05T17:00:00Z")
	createTestHandoff(t, repo, "ho-2", "g-mom", "g-dad", "2024-03-07T17:00:00Z")
	createTestHandoff(t, repo, "ho-3", "g-dad", "g-mom", "2024-03-09T17:00:00Z")

	got, err := repo.LatestFrom(ctx, "c1", "g-dad")
	if err != nil {
		t.Fatalf("LatestFrom failed: %v", err)
	}
	if got == nil || got.ID != "ho-3" {
		t.Fatalf("expected ho-3, got %+v", got)
	}
	if got.Items == "" || got.Notes != "Dropped off at School" {
		t.Errorf("unexpected handoff %+v", got)
	}

	none, err := repo.LatestFrom(ctx, "c1", "g-nobody")
	if err != nil || none != nil {
		t.Errorf("expected nil, nil for unknown guardian, got %+v, %v", none, err)
	}
}

func TestHandoffRepository_ListByChild(t *testing.T) {
	db := setupTestDB(t)
	seedFamilyWithMembers(t, db)
	repo := sqlite.NewHandoffRepository(db)
	ctx := context.Background()

	createTestHandoff(t, repo, "ho-1", "g-dad", "g-mom", "2024-03-05T17:00:00Z")
	createTestHandoff(t, repo, "ho-2", "g-mom", "g-dad", "2024-03-07T17:00:00Z")

	list, err := repo.ListByChild(ctx, "c1", 1)
	if err != nil {
		t.Fatalf("ListByChild failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ho-2" {
		t.Errorf("expected newest handoff only, got %+v", list)
	}
}
