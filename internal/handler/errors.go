package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// ErrorResponse is the JSON body for all non-2xx responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v with the given status. Encoding failures are logged,
// not surfaced — the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error onto an HTTP status and error body.
// Validation-family sentinels become 4xx responses with stable codes;
// anything unrecognized is a 500 with the detail kept out of the body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrDuplicateName):
		writeErrorBody(w, http.StatusConflict, "duplicate_name", err)
	case errors.Is(err, domain.ErrResourceConflict):
		writeErrorBody(w, http.StatusConflict, "resource_conflict", err)
	case errors.Is(err, domain.ErrTxConflict):
		writeErrorBody(w, http.StatusConflict, "tx_conflict", err)
	case errors.Is(err, domain.ErrUnknownTagValue):
		writeErrorBody(w, http.StatusUnprocessableEntity, "unknown_tag_value", err)
	case errors.Is(err, domain.ErrInvalidRange):
		writeErrorBody(w, http.StatusUnprocessableEntity, "invalid_range", err)
	case errors.Is(err, domain.ErrMissingRequiredTag):
		writeErrorBody(w, http.StatusUnprocessableEntity, "missing_required_tag", err)
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", err)
	default:
		slog.Error("unhandled service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "internal", Message: "internal server error"},
		})
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

// notFound writes a 404 with a fixed message, for malformed or unknown ids.
func notFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}})
}

// badRequest writes a 422 for requests rejected before reaching the service
// layer (missing or malformed body, bad query parameters).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}})
}

// decodeJSON decodes the request body into v. Unknown fields are rejected so
// typos in field names fail loudly instead of silently dropping input.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
