package domain

import "github.com/google/uuid"

// Tag is a named classification axis for schedules (e.g. "Room").
// Its flags drive validation for every schedule referencing its values:
// Required means every schedule must carry at least one value of this tag;
// UniqueResource means each value denotes a single-occupancy resource that
// no two overlapping non-canceled schedules may share.
type Tag struct {
	ID             uuid.UUID
	Name           string
	Required       bool
	UniqueResource bool
}

// TagValue is one concrete value under a Tag (e.g. "101" under "Room").
// Value is unique within its owning tag. Color is an optional display hint
// (hex string) and carries no semantics.
type TagValue struct {
	ID    uuid.UUID
	TagID uuid.UUID
	Value string
	Color *string
}
