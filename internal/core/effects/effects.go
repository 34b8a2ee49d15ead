// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// ChildStatusEffect records a confirmed change of a child's whereabouts.
type ChildStatusEffect struct {
	ChildID    string
	Status     string
	GuardianID string // empty when the child is at a venue
	ChangedAt  time.Time
	ChangedBy  string
}

func (e ChildStatusEffect) EffectType() string { return "child_status" }

// HandoffItem mirrors custody.HandoffItem without importing the core.
type HandoffItem struct {
	Name           string
	FlaggedMissing bool
}

// HandoffEffect appends an immutable handoff record.
type HandoffEffect struct {
	FamilyID     string
	ChildID      string
	FromGuardian string
	ToGuardian   string
	At           time.Time
	Items        []HandoffItem
	Notes        string
}

func (e HandoffEffect) EffectType() string { return "handoff" }

// AuditEffect represents an audit log entry for an entity change.
type AuditEffect struct {
	EntityType string // e.g., "child", "override", "cycle"
	EntityID   string
	Action     string // "create", "update", "delete"
	FieldName  string
	OldValue   string
	NewValue   string
}

func (e AuditEffect) EffectType() string { return "audit" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
