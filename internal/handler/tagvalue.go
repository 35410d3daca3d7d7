package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// TagValue is the wire representation of a tag value.
type TagValue struct {
	ID    uuid.UUID `json:"id"`
	TagID uuid.UUID `json:"tag_id"`
	Value string    `json:"value"`
	Color *string   `json:"color,omitempty"`
}

// CreateTagValueRequest is the body of POST /api/tags/{tagID}/values.
type CreateTagValueRequest struct {
	Value string  `json:"value"`
	Color *string `json:"color"`
}

// UpdateTagValueRequest is the body of PUT /api/tags/values/{id}.
// Nil fields are left unchanged.
type UpdateTagValueRequest struct {
	Value *string `json:"value"`
	Color *string `json:"color"`
}

// listTagValues handles GET /api/tags/{tagID}/values.
func (s *Server) listTagValues(w http.ResponseWriter, r *http.Request) {
	tagID, ok := pathID(r, "tagID")
	if !ok {
		notFound(w, "tag not found")
		return
	}
	values, err := s.tagValues.ListByTag(r.Context(), tagID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]TagValue, len(values))
	for i, tv := range values {
		out[i] = tagValueToResponse(tv)
	}
	writeJSON(w, http.StatusOK, out)
}

// createTagValue handles POST /api/tags/{tagID}/values.
func (s *Server) createTagValue(w http.ResponseWriter, r *http.Request) {
	tagID, ok := pathID(r, "tagID")
	if !ok {
		notFound(w, "tag not found")
		return
	}
	var req CreateTagValueRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.tagValues.Create(r.Context(), domain.TagValue{
		TagID: tagID,
		Value: req.Value,
		Color: req.Color,
	}, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tagValueToResponse(created))
}

// updateTagValue handles PUT /api/tags/values/{id}.
func (s *Server) updateTagValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "tag value not found")
		return
	}
	var req UpdateTagValueRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.tagValues.Update(r.Context(), id, req.Value, req.Color, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tagValueToResponse(updated))
}

// deleteTagValue handles DELETE /api/tags/values/{id}.
// Deletion removes the value's schedule associations as well.
func (s *Server) deleteTagValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "tag value not found")
		return
	}
	if err := s.tagValues.Delete(r.Context(), id, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tagValueToResponse converts a domain.TagValue into its wire representation.
func tagValueToResponse(tv domain.TagValue) TagValue {
	return TagValue{
		ID:    tv.ID,
		TagID: tv.TagID,
		Value: tv.Value,
		Color: tv.Color,
	}
}
