package custody

import (
	"testing"
	"time"

	"github.com/example/custody/internal/core/effects"
)

func TestPlanPickup(t *testing.T) {
	now := time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)
	partner := Guardian{ID: "g-mom", Label: "mom"}
	effs := PlanPickup(ActionInput{
		FamilyID: "fam-1",
		Child:    Child{ID: "c1", Status: StatusAtSchool},
		Viewer:   Guardian{ID: "g-dad", Label: "dad"},
		Partner:  &partner,
		Now:      now,
	})

	if len(effs) != 3 {
		t.Fatalf("expected 3 effects, got %d", len(effs))
	}

	status, ok := effs[0].(effects.ChildStatusEffect)
	if !ok {
		t.Fatalf("expected ChildStatusEffect first, got %T", effs[0])
	}
	if status.Status != "with_dad" || status.GuardianID != "g-dad" || !status.ChangedAt.Equal(now) {
		t.Errorf("unexpected status effect: %+v", status)
	}

	handoff, ok := effs[1].(effects.HandoffEffect)
	if !ok {
		t.Fatalf("expected HandoffEffect second, got %T", effs[1])
	}
	if handoff.FromGuardian != "g-mom" || handoff.ToGuardian != "g-dad" {
		t.Errorf("expected handoff mom -> dad, got %s -> %s", handoff.FromGuardian, handoff.ToGuardian)
	}

	audit, ok := effs[2].(effects.AuditEffect)
	if !ok {
		t.Fatalf("expected AuditEffect third, got %T", effs[2])
	}
	if audit.OldValue != "at_school" || audit.NewValue != "with_dad" {
		t.Errorf("unexpected audit values: %+v", audit)
	}
}

func TestPlanPickup_SoloHandsOffToSelf(t *testing.T) {
	effs := PlanPickup(ActionInput{
		Child:  Child{ID: "c1"},
		Viewer: Guardian{ID: "g-mom", Label: "mom"},
		Now:    time.Now(),
	})

	handoff := effs[1].(effects.HandoffEffect)
	if handoff.FromGuardian != "g-mom" || handoff.ToGuardian != "g-mom" {
		t.Errorf("solo pickup should hand off to self, got %s -> %s", handoff.FromGuardian, handoff.ToGuardian)
	}
}

func TestPlanDropoff(t *testing.T) {
	partner := Guardian{ID: "g-mom", Label: "mom"}
	in := ActionInput{
		FamilyID: "fam-1",
		Child:    Child{ID: "c1", Status: WithGuardian("dad")},
		Viewer:   Guardian{ID: "g-dad", Label: "dad"},
		Partner:  &partner,
		Now:      time.Now(),
	}

	t.Run("to school clears holder", func(t *testing.T) {
		effs := PlanDropoff(in, "Oak Street School", []string{"lunchbox", " ", "coat"})
		status := effs[0].(effects.ChildStatusEffect)
		if status.Status != "at_school" || status.GuardianID != "" {
			t.Errorf("unexpected status effect: %+v", status)
		}
		handoff := effs[1].(effects.HandoffEffect)
		if len(handoff.Items) != 2 {
			t.Errorf("expected blank items dropped, got %+v", handoff.Items)
		}
		if handoff.Notes != "Dropped off at Oak Street School" {
			t.Errorf("unexpected notes %q", handoff.Notes)
		}
	})

	t.Run("to partner sets holder", func(t *testing.T) {
		effs := PlanDropoff(in, "mom", nil)
		status := effs[0].(effects.ChildStatusEffect)
		if status.Status != "with_mom" || status.GuardianID != "g-mom" {
			t.Errorf("unexpected status effect: %+v", status)
		}
	})
}

func TestStatusForLocation(t *testing.T) {
	tests := []struct {
		location string
		want     Status
	}{
		{location: "", want: StatusUnknown},
		{location: "School", want: StatusAtSchool},
		{location: "Sunny Daycare", want: StatusAtSchool},
		{location: "kindergarten", want: StatusAtSchool},
		{location: "Soccer practice", want: StatusAtActivity},
		{location: "Grandma", want: StatusAtActivity},
		{location: "partner", want: WithGuardian("mom")},
		{location: "Mom", want: WithGuardian("mom")},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := StatusForLocation(tt.location, "mom"); got != tt.want {
				t.Errorf("StatusForLocation(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}

	if got := StatusForLocation("partner", ""); got != StatusAtActivity {
		t.Errorf("solo 'partner' location = %q, want at_activity", got)
	}
}
