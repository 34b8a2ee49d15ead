package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/example/custody/internal/ports/secondary"
)

// EventRepository implements secondary.EventRepository with SQLite.
// Child links live in event_children.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventSelect = `SELECT e.id, e.family_id, e.type, e.title, e.description, e.location, e.start_at, e.end_at,
	e.all_day, e.status, e.created_by, e.created_at, COALESCE(group_concat(ec.child_id), '')
	FROM events e LEFT JOIN event_children ec ON ec.event_id = e.id`

// Create persists an event and its child links.
func (r *EventRepository) Create(ctx context.Context, event *secondary.EventRecord) error {
	status := event.Status
	if status == "" {
		status = "scheduled"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, family_id, type, title, description, location, start_at, end_at, all_day, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')))`,
		event.ID, event.FamilyID, event.Type, event.Title, nullString(event.Description), nullString(event.Location),
		event.StartAt, nullString(event.EndAt), event.AllDay, status, nullString(event.CreatedBy), nullString(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	for _, childID := range event.ChildIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO event_children (event_id, child_id) VALUES (?, ?)", event.ID, childID,
		); err != nil {
			return fmt.Errorf("failed to link event to child %s: %w", childID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its child links.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*secondary.EventRecord, error) {
	record, err := scanEvent(r.db.QueryRowContext(ctx,
		eventSelect+" WHERE e.id = ? GROUP BY e.id", id,
	))
	if err == sql.ErrNoRows {
		return nil, notFound("event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return record, nil
}

// ListInWindow retrieves non-cancelled events starting in [from, to).
func (r *EventRepository) ListInWindow(ctx context.Context, familyID, from, to string) ([]*secondary.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		eventSelect+` WHERE e.family_id = ? AND e.status != 'cancelled' AND e.start_at >= ? AND e.start_at < ?
		GROUP BY e.id ORDER BY e.start_at, e.id`,
		familyID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		record, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, record)
	}
	return events, rows.Err()
}

// Update rewrites an event's fields and replaces its child links in one
// transaction.
func (r *EventRepository) Update(ctx context.Context, event *secondary.EventRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET type = ?, title = ?, description = ?, location = ?, start_at = ?, end_at = ?, all_day = ?, status = ?
		 WHERE id = ?`,
		event.Type, event.Title, nullString(event.Description), nullString(event.Location),
		event.StartAt, nullString(event.EndAt), event.AllDay, event.Status, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("event", event.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM event_children WHERE event_id = ?", event.ID); err != nil {
		return fmt.Errorf("failed to unlink event children: %w", err)
	}
	for _, childID := range event.ChildIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO event_children (event_id, child_id) VALUES (?, ?)", event.ID, childID,
		); err != nil {
			return fmt.Errorf("failed to link event to child %s: %w", childID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event: %w", err)
	}
	return nil
}

// Cancel marks an event cancelled.
func (r *EventRepository) Cancel(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE events SET status = 'cancelled' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("event", id)
	}
	return nil
}

func scanEvent(row rowScanner) (*secondary.EventRecord, error) {
	var description, location, endAt, createdBy sql.NullString
	var children string
	record := &secondary.EventRecord{}
	err := row.Scan(&record.ID, &record.FamilyID, &record.Type, &record.Title, &description, &location,
		&record.StartAt, &endAt, &record.AllDay, &record.Status, &createdBy, &record.CreatedAt, &children)
	if err != nil {
		return nil, err
	}
	record.Description = description.String
	record.Location = location.String
	record.EndAt = endAt.String
	record.CreatedBy = createdBy.String
	if children != "" {
		record.ChildIDs = strings.Split(children, ",")
		sort.Strings(record.ChildIDs)
	}
	return record, nil
}

// Ensure EventRepository implements the interface
var _ secondary.EventRepository = (*EventRepository)(nil)
