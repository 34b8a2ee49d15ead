package primary

import (
	"context"

	"github.com/example/custody/internal/core/custody"
)

// HandoffService defines the primary port for handoff history.
// Handoffs are immutable - no update or delete operations.
type HandoffService interface {
	// ListHandoffs lists a child's handoffs, newest first.
	ListHandoffs(ctx context.Context, childID string, limit int) ([]*custody.Handoff, error)
}
