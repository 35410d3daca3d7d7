package handler

import "net/http"

// HealthResponse is the body of GET /api/healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// getHealth handles GET /api/healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
