// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/custody/internal/core/effects"
	"github.com/example/custody/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor with real I/O.
type DefaultEffectExecutor struct {
	childRepo   secondary.ChildRepository
	handoffRepo secondary.HandoffRepository
	logWriter   secondary.LogWriter
}

// NewEffectExecutor creates a new DefaultEffectExecutor with injected repositories.
// logWriter may be nil, in which case audit effects are skipped.
func NewEffectExecutor(childRepo secondary.ChildRepository, handoffRepo secondary.HandoffRepository, logWriter secondary.LogWriter) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		childRepo:   childRepo,
		handoffRepo: handoffRepo,
		logWriter:   logWriter,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.ChildStatusEffect:
		return e.childRepo.UpdateStatus(ctx, secondary.ChildStatusUpdate{
			ChildID:           typed.ChildID,
			Status:            typed.Status,
			CurrentGuardianID: typed.GuardianID,
			ChangedAt:         formatTime(typed.ChangedAt),
			ChangedBy:         typed.ChangedBy,
		})
	case effects.HandoffEffect:
		return e.executeHandoff(ctx, typed)
	case effects.AuditEffect:
		return e.executeAudit(ctx, typed)
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeHandoff(ctx context.Context, eff effects.HandoffEffect) error {
	items := make([]handoffItemJSON, len(eff.Items))
	for i, item := range eff.Items {
		items[i] = handoffItemJSON{Name: item.Name, FlaggedMissing: item.FlaggedMissing}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode handoff items: %w", err)
	}

	at := formatTime(eff.At)
	return e.handoffRepo.Create(ctx, &secondary.HandoffRecord{
		ID:           uuid.NewString(),
		FamilyID:     eff.FamilyID,
		ChildID:      eff.ChildID,
		FromGuardian: eff.FromGuardian,
		ToGuardian:   eff.ToGuardian,
		ScheduledAt:  at,
		ActualAt:     at,
		Items:        string(data),
		Notes:        eff.Notes,
	})
}

func (e *DefaultEffectExecutor) executeAudit(ctx context.Context, eff effects.AuditEffect) error {
	if e.logWriter == nil {
		return nil
	}
	switch eff.Action {
	case "create":
		return e.logWriter.LogCreate(ctx, eff.EntityType, eff.EntityID)
	case "update":
		return e.logWriter.LogUpdate(ctx, eff.EntityType, eff.EntityID, eff.FieldName, eff.OldValue, eff.NewValue)
	case "delete":
		return e.logWriter.LogDelete(ctx, eff.EntityType, eff.EntityID)
	default:
		return fmt.Errorf("unknown audit action: %s", eff.Action)
	}
}
