// Package handler implements the HTTP handlers for the Web Scheduler API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, tag.go, schedule.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// TagServicer defines the business operations the tag handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TagServicer interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, tag domain.Tag, actor string) (domain.Tag, error)
	Update(ctx context.Context, id uuid.UUID, name *string, required, uniqueResource *bool, actor string) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// TagValueServicer defines the business operations the tag value handlers
// depend on.
type TagValueServicer interface {
	ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error)
	Create(ctx context.Context, tv domain.TagValue, actor string) (domain.TagValue, error)
	Update(ctx context.Context, id uuid.UUID, value, color *string, actor string) (domain.TagValue, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// ScheduleServicer defines the business operations the schedule handlers
// depend on.
type ScheduleServicer interface {
	List(ctx context.Context, from, to *string, selectedValueIDs []uuid.UUID) ([]domain.Schedule, error)
	Create(ctx context.Context, sched domain.Schedule, actor string) (domain.Schedule, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.SchedulePatch, actor string) (domain.Schedule, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// AuditServicer defines the read operation the audit handler depends on.
type AuditServicer interface {
	List(ctx context.Context, days int) ([]domain.AuditEntry, error)
}

// Server holds the services behind all API endpoints.
// Wire it in main.go via Routes(). Methods are in domain-specific files but
// all operate on this struct.
type Server struct {
	tags      TagServicer
	tagValues TagValueServicer
	schedules ScheduleServicer
	audit     AuditServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tags TagServicer, tagValues TagValueServicer, schedules ScheduleServicer, audit AuditServicer) *Server {
	return &Server{tags: tags, tagValues: tagValues, schedules: schedules, audit: audit}
}

// Routes returns the API router. All endpoints live under /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.getHealth)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.listTags)
			r.Post("/", s.createTag)
			r.Put("/{id}", s.updateTag)
			r.Delete("/{id}", s.deleteTag)

			r.Get("/{tagID}/values", s.listTagValues)
			r.Post("/{tagID}/values", s.createTagValue)
			r.Put("/values/{id}", s.updateTagValue)
			r.Delete("/values/{id}", s.deleteTagValue)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.listSchedules)
			r.Post("/", s.createSchedule)
			r.Put("/{id}", s.updateSchedule)
			r.Delete("/{id}", s.deleteSchedule)
		})

		r.Get("/audit", s.listAudit)
	})
	return r
}

// actor returns the acting username passed through by the reverse proxy.
// Empty when the request is anonymous.
func actor(r *http.Request) string {
	return r.Header.Get("X-Remote-User")
}

// pathID parses the named UUID path parameter. ok is false when the
// parameter is not a valid UUID; callers respond 404 since no resource can
// have such an id.
func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}
