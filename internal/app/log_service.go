package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/custody/internal/clock"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	logRepo secondary.AuditLogRepository
	clock   clock.Clock
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(logRepo secondary.AuditLogRepository, clk clock.Clock) *LogServiceImpl {
	return &LogServiceImpl{
		logRepo: logRepo,
		clock:   clk,
	}
}

// ListLogs retrieves audit entries matching the given filters.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	records, err := s.logRepo.List(ctx, secondary.AuditLogFilters{
		FamilyID:   filters.FamilyID,
		EntityType: filters.EntityType,
		EntityID:   filters.EntityID,
		ActorID:    filters.ActorID,
		Action:     filters.Action,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = recordToLogEntry(r)
	}
	return entries, nil
}

// GetLog retrieves a single audit entry by ID.
func (s *LogServiceImpl) GetLog(ctx context.Context, id string) (*primary.LogEntry, error) {
	record, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToLogEntry(record), nil
}

// PruneLogs deletes entries older than the specified number of days.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, fmt.Errorf("days must not be negative, got %d", olderThanDays)
	}
	cutoff := s.clock.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
	return s.logRepo.PruneOlderThan(ctx, formatTime(cutoff))
}

func recordToLogEntry(r *secondary.AuditLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		FamilyID:   r.FamilyID,
		ActorID:    r.ActorID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
