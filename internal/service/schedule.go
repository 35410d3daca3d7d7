package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
)

// ScheduleService implements the conflict-validation and tag-constraint
// engine. Every create and update runs inside a single serializable
// transaction: the validator reads catalog and store state, decides, and the
// write lands in the same transaction, so two concurrent candidates for the
// same exclusive resource are strictly ordered — the second committer
// observes the first's write and is rejected.
type ScheduleService struct {
	schedules repo.ScheduleRepo
	tagValues repo.TagValueRepo
	tx        repo.TxManager
	audit     AuditSink
}

// NewScheduleService constructs a ScheduleService backed by the provided repos.
// schedules and tagValues serve the read paths; all writes go through tx.
func NewScheduleService(schedules repo.ScheduleRepo, tagValues repo.TagValueRepo, tx repo.TxManager, audit AuditSink) *ScheduleService {
	return &ScheduleService{schedules: schedules, tagValues: tagValues, tx: tx, audit: audit}
}

// List returns schedules overlapping the [from, to) window (applied only
// when both bounds are present) and matching the tag value selection:
// selected ids are grouped by owning tag, a schedule must hold at least one
// id from every group (AND across tags, OR within a tag). Unknown selected
// ids are ignored. Always returns a non-nil slice.
func (s *ScheduleService) List(ctx context.Context, from, to *string, selectedValueIDs []uuid.UUID) ([]domain.Schedule, error) {
	filter := domain.ScheduleFilter{From: from, To: to}

	if len(selectedValueIDs) > 0 {
		values, err := s.tagValues.ListByIDs(ctx, dedupeIDs(selectedValueIDs))
		if err != nil {
			return nil, fmt.Errorf("service.ScheduleService.List: %w", err)
		}
		filter.ValueGroups = groupByTag(values)
	}

	scheds, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.List: %w", err)
	}
	if scheds == nil {
		return []domain.Schedule{}, nil
	}
	return scheds, nil
}

// Create validates and persists a new schedule, then records an audit entry.
func (s *ScheduleService) Create(ctx context.Context, sched domain.Schedule, actor string) (domain.Schedule, error) {
	if err := validateFields(sched); err != nil {
		return domain.Schedule{}, err
	}
	sched.TagValueIDs = dedupeIDs(sched.TagValueIDs)

	var created domain.Schedule
	err := s.runWrite(ctx, func(r repo.Repos) error {
		if err := validateConstraints(ctx, r, sched, nil); err != nil {
			return err
		}
		var err error
		created, err = r.Schedules.Create(ctx, sched)
		return err
	})
	if err != nil {
		return domain.Schedule{}, err
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditCreate,
		Entity:   domain.EntitySchedule,
		EntityID: &created.ID,
		Details:  strPtr(summarizeSchedule(created)),
	})
	return created, nil
}

// Update builds an immutable candidate from the stored schedule plus the
// requested changes, validates it (excluding the schedule's own id from the
// conflict search), atomically replaces the record, and records the diff of
// the two snapshots.
func (s *ScheduleService) Update(ctx context.Context, id uuid.UUID, patch domain.SchedulePatch, actor string) (domain.Schedule, error) {
	var old, updated domain.Schedule
	err := s.runWrite(ctx, func(r repo.Repos) error {
		var err error
		old, err = r.Schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}

		cand := applyPatch(old, patch)
		if err := validateFields(cand); err != nil {
			return err
		}
		if err := validateConstraints(ctx, r, cand, &id); err != nil {
			return err
		}

		updated, err = r.Schedules.Update(ctx, cand)
		return err
	})
	if err != nil {
		return domain.Schedule{}, err
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditUpdate,
		Entity:   domain.EntitySchedule,
		EntityID: &updated.ID,
		Details:  detailPtr(composeScheduleDiff(old, updated)),
	})
	return updated, nil
}

// Delete removes a schedule and its tag value links, then records the
// deletion with a summary of what was removed.
func (s *ScheduleService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	var old domain.Schedule
	err := s.runWrite(ctx, func(r repo.Repos) error {
		var err error
		old, err = r.Schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return r.Schedules.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditDelete,
		Entity:   domain.EntitySchedule,
		EntityID: &id,
		Details:  strPtr(summarizeSchedule(old)),
	})
	return nil
}

// runWrite executes fn in a serializable transaction, retrying a few times
// with fibonacci backoff when the transaction aborts on a serialization
// failure. Validation errors are caller-input errors and are never retried.
// When retries are exhausted the domain.ErrTxConflict surfaces to the caller
// as a retryable failure.
func (s *ScheduleService) runWrite(ctx context.Context, fn func(r repo.Repos) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.tx.RunSerializable(ctx, fn)
		if errors.Is(err, domain.ErrTxConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// validateFields checks the candidate's intrinsic fields: non-empty title
// and a well-ordered window. Pure; no store access.
func validateFields(sched domain.Schedule) error {
	if strings.TrimSpace(sched.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if sched.DateTo < sched.DateFrom {
		return fmt.Errorf("%w: date_to %s sorts before date_from %s", domain.ErrInvalidRange, sched.DateTo, sched.DateFrom)
	}
	return nil
}

// validateConstraints is the conflict validator proper. It runs against the
// transaction's snapshot and has no side effects:
//
//  1. every supplied tag value id must resolve;
//  2. every required tag must contribute at least one value (all missing
//     tags are reported, not just the first);
//  3. unless the candidate is canceled, each of its values under a
//     unique-resource tag must not be shared with another non-canceled
//     schedule on an overlapping window (first conflict found wins).
//
// excludeID is the candidate's own id on update, so it never conflicts with
// itself.
func validateConstraints(ctx context.Context, r repo.Repos, cand domain.Schedule, excludeID *uuid.UUID) error {
	values, err := r.TagValues.ListByIDs(ctx, cand.TagValueIDs)
	if err != nil {
		return fmt.Errorf("service.ScheduleService: resolve values: %w", err)
	}
	if len(values) != len(cand.TagValueIDs) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTagValue, missingIDs(cand.TagValueIDs, values))
	}
	byTag := make(map[uuid.UUID][]domain.TagValue)
	for _, v := range values {
		byTag[v.TagID] = append(byTag[v.TagID], v)
	}

	tags, err := r.Tags.List(ctx)
	if err != nil {
		return fmt.Errorf("service.ScheduleService: load tags: %w", err)
	}

	var missing []string
	for _, tag := range tags {
		if tag.Required && len(byTag[tag.ID]) == 0 {
			missing = append(missing, tag.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingRequiredTag, strings.Join(missing, ", "))
	}

	// A canceled schedule cannot conflict and is not checked against.
	if cand.IsCanceled {
		return nil
	}

	for _, tag := range tags {
		if !tag.UniqueResource {
			continue
		}
		for _, v := range byTag[tag.ID] {
			conflict, err := r.Schedules.FindOverlapping(ctx, v.ID, cand.DateFrom, cand.DateTo, excludeID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("service.ScheduleService: conflict search: %w", err)
			}
			return fmt.Errorf("%w: %s %q occupies %q for [%s, %s)",
				domain.ErrResourceConflict, conflict.ID, conflict.Title, v.Value, conflict.DateFrom, conflict.DateTo)
		}
	}
	return nil
}

// applyPatch builds a fully-formed candidate from the stored schedule plus
// the requested changes. The stored value is never mutated.
func applyPatch(old domain.Schedule, patch domain.SchedulePatch) domain.Schedule {
	cand := old
	cand.TagValueIDs = append([]uuid.UUID{}, old.TagValueIDs...)
	if patch.Title != nil {
		cand.Title = *patch.Title
	}
	if patch.DateFrom != nil {
		cand.DateFrom = *patch.DateFrom
	}
	if patch.DateTo != nil {
		cand.DateTo = *patch.DateTo
	}
	if patch.IsCanceled != nil {
		cand.IsCanceled = *patch.IsCanceled
	}
	if patch.Contact != nil {
		cand.Contact = patch.Contact
	}
	if patch.HasTagValueIDs {
		cand.TagValueIDs = dedupeIDs(patch.TagValueIDs)
	}
	return cand
}

// dedupeIDs drops duplicate ids, preserving first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// groupByTag groups resolved tag values into id groups by owning tag.
// Group order is sorted by tag id for determinism.
func groupByTag(values []domain.TagValue) [][]uuid.UUID {
	byTag := make(map[uuid.UUID][]uuid.UUID)
	for _, v := range values {
		byTag[v.TagID] = append(byTag[v.TagID], v.ID)
	}
	tagIDs := make([]uuid.UUID, 0, len(byTag))
	for tagID := range byTag {
		tagIDs = append(tagIDs, tagID)
	}
	sort.Slice(tagIDs, func(i, j int) bool { return tagIDs[i].String() < tagIDs[j].String() })

	groups := make([][]uuid.UUID, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		groups = append(groups, byTag[tagID])
	}
	return groups
}

// missingIDs names the submitted ids that did not resolve.
func missingIDs(requested []uuid.UUID, resolved []domain.TagValue) string {
	found := make(map[uuid.UUID]struct{}, len(resolved))
	for _, v := range resolved {
		found[v.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return strings.Join(missing, ", ")
}
