package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// TagRepo defines the persistence operations for Tags.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TagRepo interface {
	// Create inserts a new tag and returns the persisted record.
	// Returns domain.ErrDuplicateName if the name is already taken.
	Create(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// GetByID retrieves a single tag by its UUID primary key.
	// Returns domain.ErrNotFound if no tag with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]domain.Tag, error)

	// Update overwrites the mutable fields of an existing tag.
	// Returns domain.ErrNotFound if the tag does not exist and
	// domain.ErrDuplicateName if the new name collides.
	Update(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// DeleteCascade removes a tag together with its values and every
	// schedule association referencing those values, in that dependency
	// order. Returns domain.ErrNotFound if the tag does not exist.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Create inserts a new tag row and returns the full persisted record.
func (r *pgTagRepo) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, required, unique_resource)
		VALUES (@name, @required, @unique_resource)
		RETURNING id, name, required, unique_resource`

	args := pgx.NamedArgs{
		"name":            tag.Name,
		"required":        tag.Required,
		"unique_resource": tag.UniqueResource,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a tag by primary key.
func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	const q = `
		SELECT id, name, required, unique_resource
		FROM tags
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all tags ordered by name.
func (r *pgTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	const q = `
		SELECT id, name, required, unique_resource
		FROM tags
		ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.List: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: rows: %w", err)
	}
	return tags, nil
}

// Update overwrites the mutable fields of a tag and returns the updated record.
func (r *pgTagRepo) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	const q = `
		UPDATE tags
		SET name            = @name,
		    required        = @required,
		    unique_resource = @unique_resource
		WHERE id = @id
		RETURNING id, name, required, unique_resource`

	args := pgx.NamedArgs{
		"id":              tag.ID,
		"name":            tag.Name,
		"required":        tag.Required,
		"unique_resource": tag.UniqueResource,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

// DeleteCascade removes schedule associations, then values, then the tag.
// The deletion order is spelled out here rather than delegated to ON DELETE
// CASCADE so the ownership chain is a visible contract of the repo layer.
func (r *pgTagRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	const delLinks = `
		DELETE FROM schedule_tag_values
		WHERE tag_value_id IN (SELECT id FROM tag_values WHERE tag_id = @id)`
	const delValues = `DELETE FROM tag_values WHERE tag_id = @id`
	const delTag = `DELETE FROM tags WHERE id = @id`

	if _, err := r.db.Exec(ctx, delLinks, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TagRepo.DeleteCascade: links: %w", err)
	}
	if _, err := r.db.Exec(ctx, delValues, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TagRepo.DeleteCascade: values: %w", err)
	}
	tag, err := r.db.Exec(ctx, delTag, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.DeleteCascade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.DeleteCascade: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.Required, &t.UniqueResource)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
