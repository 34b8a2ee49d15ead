package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/custody/internal/adapters/sqlite"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/secondary"
)

func TestFamilyRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFamilyRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.FamilyRecord{ID: "fam-1", Name: "Rivera", Mode: "solo"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "fam-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Rivera" || got.Mode != "solo" {
		t.Errorf("unexpected family %+v", got)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at default")
	}
}

func TestFamilyRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFamilyRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, custody.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFamilyRepository_Create_RejectsUnknownMode(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFamilyRepository(db)

	if err := repo.Create(context.Background(), &secondary.FamilyRecord{ID: "fam-1", Mode: "commune"}); err == nil {
		t.Error("expected CHECK constraint to reject mode")
	}
}

func TestGuardianRepository(t *testing.T) {
	db := setupTestDB(t)
	seedFamily(t, db, "fam-1")
	repo := sqlite.NewGuardianRepository(db)
	ctx := context.Background()

	for _, g := range []*secondary.GuardianRecord{
		{ID: "g-dad", FamilyID: "fam-1", Label: "dad", Name: "Sam", Role: "admin", CreatedAt: "2024-03-01T10:00:00Z"},
		{ID: "g-mom", FamilyID: "fam-1", Label: "mom", Name: "Alex", Role: "member", CreatedAt: "2024-03-02T10:00:00Z"},
	} {
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Create %s failed: %v", g.ID, err)
		}
	}

	t.Run("list in join order", func(t *testing.T) {
		list, err := repo.ListByFamily(ctx, "fam-1")
		if err != nil {
			t.Fatalf("ListByFamily failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != "g-dad" || list[1].Label != "mom" {
			t.Errorf("unexpected guardians %+v", list)
		}
	})

	t.Run("label unique per family", func(t *testing.T) {
		err := repo.Create(ctx, &secondary.GuardianRecord{ID: "g-dup", FamilyID: "fam-1", Label: "dad", Role: "member"})
		if err == nil {
			t.Error("expected duplicate label to fail")
		}
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "g-mom")
		if err != nil || got.Name != "Alex" {
			t.Errorf("GetByID = %+v, %v", got, err)
		}
		if _, err := repo.GetByID(ctx, "g-none"); !errors.Is(err, custody.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
