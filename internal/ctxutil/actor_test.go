package ctxutil

import (
	"context"
	"testing"
)

func TestActorAndFamily(t *testing.T) {
	ctx := context.Background()
	if ActorFromContext(ctx) != "" || FamilyFromContext(ctx) != "" {
		t.Fatal("expected empty values on a bare context")
	}

	ctx = WithFamilyID(WithActorID(ctx, "g-dad"), "fam-1")
	if got := ActorFromContext(ctx); got != "g-dad" {
		t.Errorf("ActorFromContext = %q, want g-dad", got)
	}
	if got := FamilyFromContext(ctx); got != "fam-1" {
		t.Errorf("FamilyFromContext = %q, want fam-1", got)
	}
}
