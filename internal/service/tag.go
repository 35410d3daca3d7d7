package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
)

// TagService implements business logic for Tag operations.
// Tag names are unique across the catalog; deleting a tag is a destructive,
// unconditional cascade over its values and their schedule associations.
type TagService struct {
	tags  repo.TagRepo
	tx    repo.TxManager
	audit AuditSink
}

// NewTagService constructs a TagService backed by the provided repos.
func NewTagService(tags repo.TagRepo, tx repo.TxManager, audit AuditSink) *TagService {
	return &TagService{tags: tags, tx: tx, audit: audit}
}

// List returns all tags ordered by name.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// Create validates and persists a new tag, then records an audit entry.
// Returns domain.ErrDuplicateName if the name is taken.
func (s *TagService) Create(ctx context.Context, tag domain.Tag, actor string) (domain.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return domain.Tag{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	created, err := s.tags.Create(ctx, tag)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditCreate,
		Entity:   domain.EntityTag,
		EntityID: &created.ID,
		Details:  strPtr(summarizeTag(created)),
	})
	return created, nil
}

// Update builds a candidate from the stored tag plus the requested changes,
// persists it, and records the field diff.
func (s *TagService) Update(ctx context.Context, id uuid.UUID, name *string, required, uniqueResource *bool, actor string) (domain.Tag, error) {
	old, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}

	cand := old
	if name != nil {
		cand.Name = *name
	}
	if required != nil {
		cand.Required = *required
	}
	if uniqueResource != nil {
		cand.UniqueResource = *uniqueResource
	}
	if strings.TrimSpace(cand.Name) == "" {
		return domain.Tag{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	updated, err := s.tags.Update(ctx, cand)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditUpdate,
		Entity:   domain.EntityTag,
		EntityID: &updated.ID,
		Details:  detailPtr(composeTagDiff(old, updated)),
	})
	return updated, nil
}

// Delete removes a tag and cascades over its values and schedule
// associations inside one transaction, then records the deletion.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	old, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}

	err = s.tx.RunSerializable(ctx, func(r repo.Repos) error {
		return r.Tags.DeleteCascade(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}

	s.audit.Record(domain.AuditEntry{
		Username: usernamePtr(actor),
		Action:   domain.AuditDelete,
		Entity:   domain.EntityTag,
		EntityID: &id,
		Details:  strPtr(summarizeTag(old)),
	})
	return nil
}

// summarizeTag renders the key fields of a tag for CREATE/DELETE entries.
func summarizeTag(t domain.Tag) string {
	return fmt.Sprintf("name=%q required=%t unique_resource=%t", t.Name, t.Required, t.UniqueResource)
}

// composeTagDiff emits one "field: old -> new" fragment per changed field.
func composeTagDiff(old, updated domain.Tag) string {
	var parts []string
	if old.Name != updated.Name {
		parts = append(parts, fmt.Sprintf("name: %q -> %q", old.Name, updated.Name))
	}
	if old.Required != updated.Required {
		parts = append(parts, fmt.Sprintf("required: %t -> %t", old.Required, updated.Required))
	}
	if old.UniqueResource != updated.UniqueResource {
		parts = append(parts, fmt.Sprintf("unique_resource: %t -> %t", old.UniqueResource, updated.UniqueResource))
	}
	return strings.Join(parts, "; ")
}

// detailPtr wraps a diff string, mapping "no changes" to a NULL detail.
func detailPtr(diff string) *string {
	if diff == "" {
		return nil
	}
	return &diff
}
