package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// AuditEntry is the wire representation of one audit log entry.
type AuditEntry struct {
	ID       uuid.UUID  `json:"id"`
	TS       string     `json:"ts"`
	Username *string    `json:"username"`
	Action   string     `json:"action"`
	Entity   string     `json:"entity"`
	EntityID *uuid.UUID `json:"entityId"`
	Details  *string    `json:"details"`
}

// listAudit handles GET /api/audit?days=N.
// An absent days parameter is passed through as zero; the service applies
// the default window and clamps out-of-range values.
func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "days must be an integer")
			return
		}
		days = parsed
	}

	entries, err := s.audit.List(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AuditEntry, len(entries))
	for i, e := range entries {
		out[i] = auditToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// auditToResponse converts a domain.AuditEntry into its wire representation.
func auditToResponse(e domain.AuditEntry) AuditEntry {
	return AuditEntry{
		ID:       e.ID,
		TS:       e.TS,
		Username: e.Username,
		Action:   e.Action,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Details:  e.Details,
	}
}
