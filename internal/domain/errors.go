package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty title, malformed id list).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicateName is returned when a tag name collides with an existing tag,
// or a tag value collides with another value under the same tag.
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicateName = errors.New("duplicate name")

// ErrUnknownTagValue is returned when a submitted tag value id does not
// resolve to an existing tag value.
var ErrUnknownTagValue = errors.New("unknown tag value")

// ErrInvalidRange is returned when a schedule's date_to sorts before its
// date_from.
var ErrInvalidRange = errors.New("invalid range")

// ErrMissingRequiredTag is returned when a schedule carries no value for one
// or more required tags. The message names every missing tag, not just the
// first.
var ErrMissingRequiredTag = errors.New("missing required tag")

// ErrResourceConflict is returned when a schedule overlaps another
// non-canceled schedule on a unique-resource tag value. The message names
// the conflicting schedule and its window.
var ErrResourceConflict = errors.New("resource conflict")

// ErrTxConflict is returned when the serializable write transaction keeps
// aborting under concurrent load after retries are exhausted. The request is
// safe to retry; no partial state was written.
var ErrTxConflict = errors.New("transaction conflict")
