package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a titled, time-bounded bookable event.
// DateFrom and DateTo are opaque ISO-8601 UTC strings forming the half-open
// window [DateFrom, DateTo); they are compared lexicographically and never
// parsed. Canceled schedules stay stored but are ignored by conflict checks.
// TagValueIDs is the set of associated tag values; order is irrelevant.
type Schedule struct {
	ID          uuid.UUID
	Title       string
	DateFrom    string
	DateTo      string
	IsCanceled  bool
	Contact     *string
	TagValueIDs []uuid.UUID
	CreatedAt   time.Time
}

// ScheduleFilter narrows a schedule listing.
// From/To, when both set, keep only schedules whose window overlaps
// [From, To). ValueGroups holds selected tag value ids grouped by owning
// tag: a schedule matches when it holds at least one id from every group
// (AND across groups, OR within a group).
type ScheduleFilter struct {
	From        *string
	To          *string
	ValueGroups [][]uuid.UUID
}

// SchedulePatch carries the requested changes of a partial update.
// Nil fields are left unchanged; the service builds a full candidate from
// the stored schedule plus this patch before validating.
type SchedulePatch struct {
	Title       *string
	DateFrom    *string
	DateTo      *string
	IsCanceled  *bool
	Contact     *string
	TagValueIDs []uuid.UUID
	// HasTagValueIDs distinguishes "replace with empty set" from "unchanged".
	HasTagValueIDs bool
}
