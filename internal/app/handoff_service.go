package app

import (
	"context"
	"fmt"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/ports/secondary"
)

// defaultHandoffLimit caps history listings when no limit is given.
const defaultHandoffLimit = 20

// HandoffServiceImpl implements the HandoffService interface.
// Handoffs are immutable - no update or delete operations.
type HandoffServiceImpl struct {
	handoffRepo secondary.HandoffRepository
}

// NewHandoffService creates a new HandoffService with injected dependencies.
func NewHandoffService(handoffRepo secondary.HandoffRepository) *HandoffServiceImpl {
	return &HandoffServiceImpl{
		handoffRepo: handoffRepo,
	}
}

// ListHandoffs lists a child's handoffs, newest first.
func (s *HandoffServiceImpl) ListHandoffs(ctx context.Context, childID string, limit int) ([]*custody.Handoff, error) {
	if limit <= 0 {
		limit = defaultHandoffLimit
	}
	records, err := s.handoffRepo.ListByChild(ctx, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list handoffs: %w", err)
	}

	handoffs := make([]*custody.Handoff, len(records))
	for i, r := range records {
		h := recordToHandoff(r)
		handoffs[i] = &h
	}
	return handoffs, nil
}

// Ensure HandoffServiceImpl implements the interface
var _ primary.HandoffService = (*HandoffServiceImpl)(nil)
