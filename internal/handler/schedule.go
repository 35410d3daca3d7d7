package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// Schedule is the wire representation of a schedule. Field names are
// camelCase to match the original API consumed by the frontend; tag value
// ids are always present, resolved, and sorted by the repo layer.
type Schedule struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	DateFrom    string      `json:"dateFrom"`
	DateTo      string      `json:"dateTo"`
	IsCanceled  bool        `json:"isCanceled"`
	Contact     *string     `json:"contact,omitempty"`
	TagValueIDs []uuid.UUID `json:"tagValueIds"`
}

// CreateScheduleRequest is the body of POST /api/schedules.
type CreateScheduleRequest struct {
	Title       string      `json:"title"`
	DateFrom    string      `json:"dateFrom"`
	DateTo      string      `json:"dateTo"`
	Contact     *string     `json:"contact"`
	TagValueIDs []uuid.UUID `json:"tagValueIds"`
}

// UpdateScheduleRequest is the body of PUT /api/schedules/{id}.
// Any subset of fields may be supplied; nil fields are left unchanged. An
// explicit empty tagValueIds list clears the associations.
type UpdateScheduleRequest struct {
	Title       *string      `json:"title"`
	DateFrom    *string      `json:"dateFrom"`
	DateTo      *string      `json:"dateTo"`
	IsCanceled  *bool        `json:"isCanceled"`
	Contact     *string      `json:"contact"`
	TagValueIDs *[]uuid.UUID `json:"tagValueIds"`
}

// listSchedules handles GET /api/schedules?from=&to=&tag_value_ids=.
// tag_value_ids is a comma-joined UUID list.
func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to *string
	if v := q.Get("from"); v != "" {
		from = &v
	}
	if v := q.Get("to"); v != "" {
		to = &v
	}

	var selected []uuid.UUID
	if raw := q.Get("tag_value_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				badRequest(w, "invalid tag_value_ids entry: "+part)
				return
			}
			selected = append(selected, id)
		}
	}

	scheds, err := s.schedules.List(r.Context(), from, to, selected)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]Schedule, len(scheds))
	for i, sched := range scheds {
		out[i] = scheduleToResponse(sched)
	}
	writeJSON(w, http.StatusOK, out)
}

// createSchedule handles POST /api/schedules.
func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.schedules.Create(r.Context(), domain.Schedule{
		Title:       req.Title,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		Contact:     req.Contact,
		TagValueIDs: req.TagValueIDs,
	}, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scheduleToResponse(created))
}

// updateSchedule handles PUT /api/schedules/{id}.
func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "schedule not found")
		return
	}
	var req UpdateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	patch := domain.SchedulePatch{
		Title:      req.Title,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		IsCanceled: req.IsCanceled,
		Contact:    req.Contact,
	}
	if req.TagValueIDs != nil {
		patch.TagValueIDs = *req.TagValueIDs
		patch.HasTagValueIDs = true
	}

	updated, err := s.schedules.Update(r.Context(), id, patch, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(updated))
}

// deleteSchedule handles DELETE /api/schedules/{id}.
func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "schedule not found")
		return
	}
	if err := s.schedules.Delete(r.Context(), id, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// scheduleToResponse converts a domain.Schedule into its wire representation.
func scheduleToResponse(sched domain.Schedule) Schedule {
	resp := Schedule{
		ID:          sched.ID,
		Title:       sched.Title,
		DateFrom:    sched.DateFrom,
		DateTo:      sched.DateTo,
		IsCanceled:  sched.IsCanceled,
		Contact:     sched.Contact,
		TagValueIDs: sched.TagValueIDs,
	}
	if resp.TagValueIDs == nil {
		resp.TagValueIDs = []uuid.UUID{}
	}
	return resp
}
