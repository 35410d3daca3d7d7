package handler_test

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/handler"
)

// Hand-written test doubles for the servicer interfaces.
// Each method is a function field — set only the ones your test needs.

type mockTagServicer struct {
	list   func(ctx context.Context) ([]domain.Tag, error)
	create func(ctx context.Context, tag domain.Tag, actor string) (domain.Tag, error)
	update func(ctx context.Context, id uuid.UUID, name *string, required, uniqueResource *bool, actor string) (domain.Tag, error)
	delete func(ctx context.Context, id uuid.UUID, actor string) error
}

func (m *mockTagServicer) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}
func (m *mockTagServicer) Create(ctx context.Context, tag domain.Tag, actor string) (domain.Tag, error) {
	return m.create(ctx, tag, actor)
}
func (m *mockTagServicer) Update(ctx context.Context, id uuid.UUID, name *string, required, uniqueResource *bool, actor string) (domain.Tag, error) {
	return m.update(ctx, id, name, required, uniqueResource, actor)
}
func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	return m.delete(ctx, id, actor)
}

var _ handler.TagServicer = (*mockTagServicer)(nil)

type mockTagValueServicer struct {
	listByTag func(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error)
	create    func(ctx context.Context, tv domain.TagValue, actor string) (domain.TagValue, error)
	update    func(ctx context.Context, id uuid.UUID, value, color *string, actor string) (domain.TagValue, error)
	delete    func(ctx context.Context, id uuid.UUID, actor string) error
}

func (m *mockTagValueServicer) ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error) {
	return m.listByTag(ctx, tagID)
}
func (m *mockTagValueServicer) Create(ctx context.Context, tv domain.TagValue, actor string) (domain.TagValue, error) {
	return m.create(ctx, tv, actor)
}
func (m *mockTagValueServicer) Update(ctx context.Context, id uuid.UUID, value, color *string, actor string) (domain.TagValue, error) {
	return m.update(ctx, id, value, color, actor)
}
func (m *mockTagValueServicer) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	return m.delete(ctx, id, actor)
}

var _ handler.TagValueServicer = (*mockTagValueServicer)(nil)

type mockScheduleServicer struct {
	list   func(ctx context.Context, from, to *string, selectedValueIDs []uuid.UUID) ([]domain.Schedule, error)
	create func(ctx context.Context, sched domain.Schedule, actor string) (domain.Schedule, error)
	update func(ctx context.Context, id uuid.UUID, patch domain.SchedulePatch, actor string) (domain.Schedule, error)
	delete func(ctx context.Context, id uuid.UUID, actor string) error
}

func (m *mockScheduleServicer) List(ctx context.Context, from, to *string, selectedValueIDs []uuid.UUID) ([]domain.Schedule, error) {
	return m.list(ctx, from, to, selectedValueIDs)
}
func (m *mockScheduleServicer) Create(ctx context.Context, sched domain.Schedule, actor string) (domain.Schedule, error) {
	return m.create(ctx, sched, actor)
}
func (m *mockScheduleServicer) Update(ctx context.Context, id uuid.UUID, patch domain.SchedulePatch, actor string) (domain.Schedule, error) {
	return m.update(ctx, id, patch, actor)
}
func (m *mockScheduleServicer) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	return m.delete(ctx, id, actor)
}

var _ handler.ScheduleServicer = (*mockScheduleServicer)(nil)

type mockAuditServicer struct {
	list func(ctx context.Context, days int) ([]domain.AuditEntry, error)
}

func (m *mockAuditServicer) List(ctx context.Context, days int) ([]domain.AuditEntry, error) {
	return m.list(ctx, days)
}

var _ handler.AuditServicer = (*mockAuditServicer)(nil)

// newHTTPHandler wires a Server with the given service mocks.
// Pass nil for mocks that the test does not use.
func newHTTPHandler(tags handler.TagServicer, tagValues handler.TagValueServicer, schedules handler.ScheduleServicer, audit handler.AuditServicer) http.Handler {
	return handler.NewServer(tags, tagValues, schedules, audit).Routes()
}
