// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting guardian ID.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// FamilyKey is the context key for the family being acted on.
type FamilyKey struct{}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithFamilyID returns a context scoped to familyID.
func WithFamilyID(ctx context.Context, familyID string) context.Context {
	return context.WithValue(ctx, FamilyKey{}, familyID)
}

// FamilyFromContext returns the family ID from context, or empty string if not set.
func FamilyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(FamilyKey{}).(string); ok {
		return v
	}
	return ""
}
