package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockFamilyRepository implements secondary.FamilyRepository for testing.
type mockFamilyRepository struct {
	families  map[string]*secondary.FamilyRecord
	createErr error
}

func newMockFamilyRepository() *mockFamilyRepository {
	return &mockFamilyRepository{families: make(map[string]*secondary.FamilyRecord)}
}

func (m *mockFamilyRepository) Create(ctx context.Context, family *secondary.FamilyRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.families[family.ID] = family
	return nil
}

func (m *mockFamilyRepository) GetByID(ctx context.Context, id string) (*secondary.FamilyRecord, error) {
	if f, ok := m.families[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("family %s: %w", id, custody.ErrNotFound)
}

// mockGuardianRepository implements secondary.GuardianRepository for testing.
type mockGuardianRepository struct {
	guardians []*secondary.GuardianRecord
	listErr   error
}

func (m *mockGuardianRepository) Create(ctx context.Context, guardian *secondary.GuardianRecord) error {
	m.guardians = append(m.guardians, guardian)
	return nil
}

func (m *mockGuardianRepository) GetByID(ctx context.Context, id string) (*secondary.GuardianRecord, error) {
	for _, g := range m.guardians {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("guardian %s: %w", id, custody.ErrNotFound)
}

func (m *mockGuardianRepository) ListByFamily(ctx context.Context, familyID string) ([]*secondary.GuardianRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.GuardianRecord
	for _, g := range m.guardians {
		if g.FamilyID == familyID {
			out = append(out, g)
		}
	}
	return out, nil
}

// mockChildRepository implements secondary.ChildRepository for testing.
type mockChildRepository struct {
	children  []*secondary.ChildRecord
	updates   []secondary.ChildStatusUpdate
	listErr   error
	updateErr error
}

func (m *mockChildRepository) Create(ctx context.Context, child *secondary.ChildRecord) error {
	m.children = append(m.children, child)
	return nil
}

func (m *mockChildRepository) GetByID(ctx context.Context, id string) (*secondary.ChildRecord, error) {
	for _, c := range m.children {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("child %s: %w", id, custody.ErrNotFound)
}

func (m *mockChildRepository) ListByFamily(ctx context.Context, familyID string) ([]*secondary.ChildRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.ChildRecord
	for _, c := range m.children {
		if c.FamilyID == familyID {
			// Copy so a stored snapshot never aliases a later update.
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockChildRepository) UpdateStatus(ctx context.Context, update secondary.ChildStatusUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, c := range m.children {
		if c.ID == update.ChildID {
			c.Status = update.Status
			c.CurrentGuardianID = update.CurrentGuardianID
			c.StatusChangedAt = update.ChangedAt
			c.StatusChangedBy = update.ChangedBy
			m.updates = append(m.updates, update)
			return nil
		}
	}
	return fmt.Errorf("child %s: %w", update.ChildID, custody.ErrNotFound)
}

// mockCycleRepository implements secondary.CycleRepository for testing.
type mockCycleRepository struct {
	cycles []*secondary.CycleRecord
	getErr error
}

func (m *mockCycleRepository) GetActive(ctx context.Context, familyID, asOf string) (*secondary.CycleRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var found *secondary.CycleRecord
	for _, c := range m.cycles {
		if c.FamilyID != familyID || c.ValidFrom > asOf || (c.ValidUntil != "" && c.ValidUntil <= asOf) {
			continue
		}
		if found == nil || c.VersionNumber > found.VersionNumber {
			found = c
		}
	}
	return found, nil
}

func (m *mockCycleRepository) Supersede(ctx context.Context, cycle *secondary.CycleRecord) error {
	version := 0
	for _, c := range m.cycles {
		if c.FamilyID != cycle.FamilyID {
			continue
		}
		if c.ValidUntil == "" {
			c.ValidUntil = cycle.ValidFrom
		}
		if c.VersionNumber > version {
			version = c.VersionNumber
		}
	}
	cycle.VersionNumber = version + 1
	m.cycles = append(m.cycles, cycle)
	return nil
}

func (m *mockCycleRepository) List(ctx context.Context, familyID string) ([]*secondary.CycleRecord, error) {
	var out []*secondary.CycleRecord
	for _, c := range m.cycles {
		if c.FamilyID == familyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

// mockOverrideRepository implements secondary.OverrideRepository for testing.
type mockOverrideRepository struct {
	overrides []*secondary.OverrideRecord
}

func (m *mockOverrideRepository) Create(ctx context.Context, override *secondary.OverrideRecord) error {
	m.overrides = append(m.overrides, override)
	return nil
}

func (m *mockOverrideRepository) GetByID(ctx context.Context, id string) (*secondary.OverrideRecord, error) {
	for _, o := range m.overrides {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("override %s: %w", id, custody.ErrNotFound)
}

func (m *mockOverrideRepository) List(ctx context.Context, familyID string, statuses []string) ([]*secondary.OverrideRecord, error) {
	var out []*secondary.OverrideRecord
	for _, o := range m.overrides {
		if o.FamilyID != familyID {
			continue
		}
		if len(statuses) == 0 || contains(statuses, o.Status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOverrideRepository) Respond(ctx context.Context, id, status, respondedBy, respondedAt string) error {
	o, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != string(custody.OverridePending) {
		return errors.New("override is not pending")
	}
	o.Status, o.RespondedBy, o.RespondedAt = status, respondedBy, respondedAt
	return nil
}

// mockEventRepository implements secondary.EventRepository for testing.
type mockEventRepository struct {
	events  []*secondary.EventRecord
	listErr error
}

func (m *mockEventRepository) Create(ctx context.Context, event *secondary.EventRecord) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*secondary.EventRecord, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", id, custody.ErrNotFound)
}

func (m *mockEventRepository) ListInWindow(ctx context.Context, familyID, from, to string) ([]*secondary.EventRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.EventRecord
	for _, e := range m.events {
		if e.FamilyID == familyID && e.StartAt >= from && e.StartAt < to && e.Status != string(custody.EventCancelled) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt < out[j].StartAt })
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, event *secondary.EventRecord) error {
	for i, e := range m.events {
		if e.ID == event.ID {
			m.events[i] = event
			return nil
		}
	}
	return fmt.Errorf("event %s: %w", event.ID, custody.ErrNotFound)
}

func (m *mockEventRepository) Cancel(ctx context.Context, id string) error {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	e.Status = string(custody.EventCancelled)
	return nil
}

// mockHandoffRepository implements secondary.HandoffRepository for testing.
type mockHandoffRepository struct {
	handoffs  []*secondary.HandoffRecord
	createErr error
	listErr   error
}

func (m *mockHandoffRepository) Create(ctx context.Context, handoff *secondary.HandoffRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.handoffs = append(m.handoffs, handoff)
	return nil
}

func (m *mockHandoffRepository) LatestFrom(ctx context.Context, childID, fromGuardianID string) (*secondary.HandoffRecord, error) {
	var latest *secondary.HandoffRecord
	for _, h := range m.handoffs {
		if h.ChildID == childID && h.FromGuardian == fromGuardianID && (latest == nil || h.ActualAt > latest.ActualAt) {
			latest = h
		}
	}
	return latest, nil
}

func (m *mockHandoffRepository) ListByChild(ctx context.Context, childID string, limit int) ([]*secondary.HandoffRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.HandoffRecord
	for i := len(m.handoffs) - 1; i >= 0; i-- {
		if m.handoffs[i].ChildID == childID {
			out = append(out, m.handoffs[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// auditCall records one LogWriter invocation.
type auditCall struct {
	action     string
	entityType string
	entityID   string
	fieldName  string
	oldValue   string
	newValue   string
}

// mockLogWriter implements secondary.LogWriter for testing.
type mockLogWriter struct {
	calls []auditCall
	err   error
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.calls = append(m.calls, auditCall{action: "create", entityType: entityType, entityID: entityID})
	return m.err
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.calls = append(m.calls, auditCall{"update", entityType, entityID, fieldName, oldValue, newValue})
	return m.err
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.calls = append(m.calls, auditCall{action: "delete", entityType: entityType, entityID: entityID})
	return m.err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Fixture
// ============================================================================

const (
	testFamilyID = "fam-1"
	dadID        = "g-dad"
	momID        = "g-mom"
	childID      = "c1"
)

// testFixture is a co-parent family with one child and a two-week cycle
// starting Sunday 2024-03-03: days 0-6 dad, days 7-13 mom, handoff 17:00.
type testFixture struct {
	repos     Repositories
	families  *mockFamilyRepository
	guardians *mockGuardianRepository
	children  *mockChildRepository
	cycles    *mockCycleRepository
	overrides *mockOverrideRepository
	events    *mockEventRepository
	handoffs  *mockHandoffRepository
	logWriter *mockLogWriter
}

func newTestFixture() *testFixture {
	f := &testFixture{
		families: newMockFamilyRepository(),
		guardians: &mockGuardianRepository{guardians: []*secondary.GuardianRecord{
			{ID: dadID, FamilyID: testFamilyID, Label: "dad", Name: "Dan", Role: "admin"},
			{ID: momID, FamilyID: testFamilyID, Label: "mom", Name: "Maya", Role: "member"},
		}},
		children: &mockChildRepository{children: []*secondary.ChildRecord{
			{ID: childID, FamilyID: testFamilyID, Name: "Noa", Status: string(custody.StatusUnknown)},
		}},
		cycles: &mockCycleRepository{cycles: []*secondary.CycleRecord{{
			ID:                 "cyc-1",
			FamilyID:           testFamilyID,
			CycleLength:        14,
			CycleData:          `["dad","dad","dad","dad","dad","dad","dad","mom","mom","mom","mom","mom","mom","mom"]`,
			ValidFrom:          "2024-03-03",
			DefaultHandoffTime: "17:00",
			VersionNumber:      1,
		}}},
		overrides: &mockOverrideRepository{},
		events:    &mockEventRepository{},
		handoffs:  &mockHandoffRepository{},
		logWriter: &mockLogWriter{},
	}
	f.families.families[testFamilyID] = &secondary.FamilyRecord{ID: testFamilyID, Name: "Test", Mode: "co-parent"}
	f.repos = Repositories{
		Families:  f.families,
		Guardians: f.guardians,
		Children:  f.children,
		Cycles:    f.cycles,
		Overrides: f.overrides,
		Events:    f.events,
		Handoffs:  f.handoffs,
	}
	return f
}

// at returns 2024-03-<day> hh:mm in UTC.
func at(day, hh, mm int) time.Time {
	return time.Date(2024, 3, day, hh, mm, 0, 0, time.UTC)
}

func mustDate(s string) custody.Date {
	d, err := custody.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
