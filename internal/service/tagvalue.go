package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
)

// TagValueService implements business logic for TagValue operations.
// It holds the tag repo as well because creating or listing values requires
// verifying the owning tag exists.
type TagValueService struct {
	tags   repo.TagRepo
	values repo.TagValueRepo
	tx     repo.TxManager
	audit  AuditSink
}

// NewTagValueService constructs a TagValueService backed by the provided repos.
func NewTagValueService(tags repo.TagRepo, values repo.TagValueRepo, tx repo.TxManager, audit AuditSink) *TagValueService {
	return &TagValueService{tags: tags, values: values, tx: tx, audit: audit}
}

// ListByTag returns all values of a tag ordered by value text.
// Returns domain.ErrNotFound if the tag does not exist.
func (s *TagValueService) ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error) {
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		return nil, fmt.Errorf("service.TagValueService.ListByTag: %w", err)
	}
	values, err := s.values.ListByTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("service.TagValueService.ListByTag: %w", err)
	}
	if values == nil {
		return []domain.TagValue{}, nil
	}
	return values, nil
}

// Create validates and persists a new value under a tag.
// Returns domain.ErrNotFound if the tag does not exist and
// domain.ErrDuplicateName if the value is already present on that tag.
func (s *TagValueService) Create(ctx context.Context, tv domain.TagValue, actor string) (domain.TagValue, error) {
	if _, err := s.tags.GetByID(ctx, tv.TagID); err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TagValueService.Create: %w", err)
	}
	if strings.TrimSpace(tv.Value) == "" {
		return domain.TagValue{}, fmt.Errorf("%w: value is required", domain.ErrValidation)
	}

	created, err := s.values.Create(ctx, tv)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TagValueService.Create: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditCreate,
		Entity:   domain.EntityTagValue,
		EntityID: &created.ID,
		Details:  strPtr(summarizeTagValue(created)),
	})
	return created, nil
}

// Update builds a candidate from the stored value plus the requested
// changes, persists it, and records the field diff.
func (s *TagValueService) Update(ctx context.Context, id uuid.UUID, value, color *string, actor string) (domain.TagValue, error) {
	old, err := s.values.GetByID(ctx, id)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TagValueService.Update: %w", err)
	}

	cand := old
	if value != nil {
		cand.Value = *value
	}
	if color != nil {
		cand.Color = color
	}
	if strings.TrimSpace(cand.Value) == "" {
		return domain.TagValue{}, fmt.Errorf("%w: value is required", domain.ErrValidation)
	}

	updated, err := s.values.Update(ctx, cand)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TagValueService.Update: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditUpdate,
		Entity:   domain.EntityTagValue,
		EntityID: &updated.ID,
		Details:  detailPtr(composeTagValueDiff(old, updated)),
	})
	return updated, nil
}

// Delete removes a value and its schedule associations inside one
// transaction, then records the deletion.
func (s *TagValueService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	old, err := s.values.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TagValueService.Delete: %w", err)
	}

	err = s.tx.RunSerializable(ctx, func(r repo.Repos) error {
		return r.TagValues.DeleteCascade(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.TagValueService.Delete: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditDelete,
		Entity:   domain.EntityTagValue,
		EntityID: &id,
		Details:  strPtr(summarizeTagValue(old)),
	})
	return nil
}

// summarizeTagValue renders the key fields for CREATE/DELETE entries.
func summarizeTagValue(tv domain.TagValue) string {
	if tv.Color != nil {
		return fmt.Sprintf("value=%q color=%q tag_id=%s", tv.Value, *tv.Color, tv.TagID)
	}
	return fmt.Sprintf("value=%q tag_id=%s", tv.Value, tv.TagID)
}

// composeTagValueDiff emits one "field: old -> new" fragment per changed field.
func composeTagValueDiff(old, updated domain.TagValue) string {
	var parts []string
	if old.Value != updated.Value {
		parts = append(parts, fmt.Sprintf("value: %q -> %q", old.Value, updated.Value))
	}
	if optStr(old.Color) != optStr(updated.Color) {
		parts = append(parts, fmt.Sprintf("color: %s -> %s", optStr(old.Color), optStr(updated.Color)))
	}
	return strings.Join(parts, "; ")
}

// optStr renders an optional string field for diff output; nil shows as "-".
func optStr(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
