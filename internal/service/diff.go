package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// composeScheduleDiff compares the pre-image and post-image of a schedule
// field by field and emits one "field: old -> new" fragment per changed
// field, joined with "; ". Unchanged fields are omitted. The tag value sets
// are compared as sorted sequences so association order never shows up as a
// phantom change. Returns "" when nothing changed.
func composeScheduleDiff(old, updated domain.Schedule) string {
	var parts []string
	if old.Title != updated.Title {
		parts = append(parts, fmt.Sprintf("title: %q -> %q", old.Title, updated.Title))
	}
	if old.DateFrom != updated.DateFrom {
		parts = append(parts, fmt.Sprintf("date_from: %s -> %s", old.DateFrom, updated.DateFrom))
	}
	if old.DateTo != updated.DateTo {
		parts = append(parts, fmt.Sprintf("date_to: %s -> %s", old.DateTo, updated.DateTo))
	}
	if old.IsCanceled != updated.IsCanceled {
		parts = append(parts, fmt.Sprintf("is_canceled: %t -> %t", old.IsCanceled, updated.IsCanceled))
	}
	if optStr(old.Contact) != optStr(updated.Contact) {
		parts = append(parts, fmt.Sprintf("contact: %s -> %s", optStr(old.Contact), optStr(updated.Contact)))
	}
	oldIDs, newIDs := sortedIDList(old.TagValueIDs), sortedIDList(updated.TagValueIDs)
	if oldIDs != newIDs {
		parts = append(parts, fmt.Sprintf("tag_value_ids: [%s] -> [%s]", oldIDs, newIDs))
	}
	return strings.Join(parts, "; ")
}

// summarizeSchedule renders the key fields for CREATE/DELETE entries.
func summarizeSchedule(s domain.Schedule) string {
	return fmt.Sprintf("title=%q window=[%s, %s) canceled=%t tag_value_ids=[%s]",
		s.Title, s.DateFrom, s.DateTo, s.IsCanceled, sortedIDList(s.TagValueIDs))
}

// sortedIDList renders ids as a sorted, space-joined string.
func sortedIDList(ids []uuid.UUID) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	sort.Strings(strs)
	return strings.Join(strs, " ")
}
