package domain

import "github.com/google/uuid"

// Audit actions. CREATE/UPDATE/DELETE match the action strings the original
// log consumers expect.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// Audit entity kinds.
const (
	EntityTag      = "tag"
	EntityTagValue = "tag_value"
	EntitySchedule = "schedule"
)

// AuditEntry is an immutable record of one mutating action.
// TS is an ISO-8601 UTC timestamp string ("2006-01-02T15:04:05Z"), ordered
// lexicographically like every other timestamp in the system. Username is
// nil for anonymous actors. Details is a human-readable change description
// composed by the service layer.
type AuditEntry struct {
	ID       uuid.UUID
	TS       string
	Username *string
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Details  *string
}
