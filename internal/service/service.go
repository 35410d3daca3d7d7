// Package service contains the business logic for the Web Scheduler API.
// Services validate inputs, enforce the tag-constraint and conflict rules,
// and orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// AuditSink accepts composed audit entries for asynchronous recording.
// Implemented by audit.Recorder. Implementations must never block and never
// return an error: by the time an entry is recorded the primary operation
// has already committed.
type AuditSink interface {
	Record(entry domain.AuditEntry)
}

// usernamePtr converts the actor header value to the nullable username
// stored on audit entries. An empty actor means anonymous.
func usernamePtr(actor string) *string {
	if actor == "" {
		return nil
	}
	return &actor
}

// strPtr is a tiny helper for optional detail strings.
func strPtr(s string) *string {
	return &s
}
