package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter using AuditLogRepository.
type LogWriterAdapter struct {
	logRepo      secondary.AuditLogRepository
	guardianRepo secondary.GuardianRepository
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
// guardianRepo is used to resolve the family from the acting guardian.
func NewLogWriterAdapter(logRepo secondary.AuditLogRepository, guardianRepo secondary.GuardianRepository) *LogWriterAdapter {
	return &LogWriterAdapter{
		logRepo:      logRepo,
		guardianRepo: guardianRepo,
	}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs a delete operation for an entity.
func (w *LogWriterAdapter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "delete", "", "", "")
}

func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	actorID := ctxutil.ActorFromContext(ctx)

	familyID := ctxutil.FamilyFromContext(ctx)
	if familyID == "" {
		familyID = w.resolveFamily(ctx, actorID)
	}
	if familyID == "" {
		// Nothing outside a family is audited.
		return nil
	}

	return w.logRepo.Create(ctx, &secondary.AuditLogRecord{
		ID:         uuid.NewString(),
		FamilyID:   familyID,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

// resolveFamily returns the family of the acting guardian, or "" when the
// actor is unknown.
func (w *LogWriterAdapter) resolveFamily(ctx context.Context, actorID string) string {
	if actorID == "" || w.guardianRepo == nil {
		return ""
	}
	guardian, err := w.guardianRepo.GetByID(ctx, actorID)
	if err != nil || guardian == nil {
		return ""
	}
	return guardian.FamilyID
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
