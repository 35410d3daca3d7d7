package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// Tag is the wire representation of a tag.
type Tag struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Required       bool      `json:"required"`
	UniqueResource bool      `json:"unique_resource"`
}

// CreateTagRequest is the body of POST /api/tags.
// The policy flags default to false when omitted.
type CreateTagRequest struct {
	Name           string `json:"name"`
	Required       bool   `json:"required"`
	UniqueResource bool   `json:"unique_resource"`
}

// UpdateTagRequest is the body of PUT /api/tags/{id}.
// Nil fields are left unchanged.
type UpdateTagRequest struct {
	Name           *string `json:"name"`
	Required       *bool   `json:"required"`
	UniqueResource *bool   `json:"unique_resource"`
}

// listTags handles GET /api/tags.
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = tagToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// createTag handles POST /api/tags.
func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.tags.Create(r.Context(), domain.Tag{
		Name:           req.Name,
		Required:       req.Required,
		UniqueResource: req.UniqueResource,
	}, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tagToResponse(created))
}

// updateTag handles PUT /api/tags/{id}.
func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "tag not found")
		return
	}
	var req UpdateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.tags.Update(r.Context(), id, req.Name, req.Required, req.UniqueResource, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(updated))
}

// deleteTag handles DELETE /api/tags/{id}.
// Deletion cascades over the tag's values and their schedule associations.
func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, "tag not found")
		return
	}
	if err := s.tags.Delete(r.Context(), id, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tagToResponse converts a domain.Tag into its wire representation.
func tagToResponse(t domain.Tag) Tag {
	return Tag{
		ID:             t.ID,
		Name:           t.Name,
		Required:       t.Required,
		UniqueResource: t.UniqueResource,
	}
}
