package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/custody/internal/core/custody"
)

// nullString maps the empty string to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// notFound wraps custody.ErrNotFound so callers can test for it.
func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, custody.ErrNotFound)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
