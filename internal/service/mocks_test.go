package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
	"github.com/nsorokin/web-scheduler/backend/internal/service"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field — set only the ones your test needs.
// This is idiomatic Go: no mock generation library required for simple cases.

type mockTagRepo struct {
	create        func(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	list          func(ctx context.Context) ([]domain.Tag, error)
	update        func(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	deleteCascade func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagRepo) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	return m.create(ctx, tag)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}
func (m *mockTagRepo) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	return m.update(ctx, tag)
}
func (m *mockTagRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return m.deleteCascade(ctx, id)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

type mockTagValueRepo struct {
	create        func(ctx context.Context, tv domain.TagValue) (domain.TagValue, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.TagValue, error)
	listByTag     func(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error)
	listByIDs     func(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error)
	update        func(ctx context.Context, tv domain.TagValue) (domain.TagValue, error)
	deleteCascade func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagValueRepo) Create(ctx context.Context, tv domain.TagValue) (domain.TagValue, error) {
	return m.create(ctx, tv)
}
func (m *mockTagValueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagValueRepo) ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error) {
	return m.listByTag(ctx, tagID)
}
func (m *mockTagValueRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockTagValueRepo) Update(ctx context.Context, tv domain.TagValue) (domain.TagValue, error) {
	return m.update(ctx, tv)
}
func (m *mockTagValueRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return m.deleteCascade(ctx, id)
}

var _ repo.TagValueRepo = (*mockTagValueRepo)(nil)

type mockScheduleRepo struct {
	create          func(ctx context.Context, sched domain.Schedule) (domain.Schedule, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Schedule, error)
	list            func(ctx context.Context, f domain.ScheduleFilter) ([]domain.Schedule, error)
	update          func(ctx context.Context, sched domain.Schedule) (domain.Schedule, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	findOverlapping func(ctx context.Context, valueID uuid.UUID, from, to string, excludeID *uuid.UUID) (domain.Schedule, error)
}

func (m *mockScheduleRepo) Create(ctx context.Context, sched domain.Schedule) (domain.Schedule, error) {
	return m.create(ctx, sched)
}
func (m *mockScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error) {
	return m.getByID(ctx, id)
}
func (m *mockScheduleRepo) List(ctx context.Context, f domain.ScheduleFilter) ([]domain.Schedule, error) {
	return m.list(ctx, f)
}
func (m *mockScheduleRepo) Update(ctx context.Context, sched domain.Schedule) (domain.Schedule, error) {
	return m.update(ctx, sched)
}
func (m *mockScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockScheduleRepo) FindOverlapping(ctx context.Context, valueID uuid.UUID, from, to string, excludeID *uuid.UUID) (domain.Schedule, error) {
	return m.findOverlapping(ctx, valueID, from, to, excludeID)
}

var _ repo.ScheduleRepo = (*mockScheduleRepo)(nil)

type mockAuditRepo struct {
	insert    func(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	listSince func(ctx context.Context, sinceTS string) ([]domain.AuditEntry, error)
}

func (m *mockAuditRepo) Insert(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	return m.insert(ctx, entry)
}
func (m *mockAuditRepo) ListSince(ctx context.Context, sinceTS string) ([]domain.AuditEntry, error) {
	return m.listSince(ctx, sinceTS)
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)

// mockTxManager runs fn against the given repos without a real transaction.
// attempts counts how many times RunSerializable was invoked, which lets
// tests observe the retry behavior on serialization conflicts.
type mockTxManager struct {
	repos    repo.Repos
	attempts int

	// beforeRun, when set, is called before each fn invocation and may
	// return an error to simulate a failed transaction attempt.
	beforeRun func(attempt int) error
}

func (m *mockTxManager) RunSerializable(_ context.Context, fn func(r repo.Repos) error) error {
	m.attempts++
	if m.beforeRun != nil {
		if err := m.beforeRun(m.attempts); err != nil {
			return err
		}
	}
	return fn(m.repos)
}

var _ repo.TxManager = (*mockTxManager)(nil)

// captureSink records every audit entry it receives.
// Safe for concurrent use because the recorder contract allows calls from
// any goroutine.
type captureSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (c *captureSink) Record(entry domain.AuditEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func (c *captureSink) all() []domain.AuditEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.AuditEntry{}, c.entries...)
}

var _ service.AuditSink = (*captureSink)(nil)
