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

// TagValueRepo defines the persistence operations for TagValues and their
// schedule associations.
type TagValueRepo interface {
	// Create inserts a new value under its tag and returns the persisted
	// record. Returns domain.ErrDuplicateName if the value already exists
	// for that tag.
	Create(ctx context.Context, tv domain.TagValue) (domain.TagValue, error)

	// GetByID retrieves a single tag value by its UUID primary key.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error)

	// ListByTag returns all values of a tag ordered by value text.
	ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error)

	// ListByIDs returns the tag values for the given ids, in no particular
	// order. Ids that do not resolve are simply absent from the result —
	// callers detect unknown ids by comparing lengths.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error)

	// Update overwrites the value text and color of an existing tag value.
	// Returns domain.ErrNotFound if it does not exist and
	// domain.ErrDuplicateName on a collision within the owning tag.
	Update(ctx context.Context, tv domain.TagValue) (domain.TagValue, error)

	// DeleteCascade removes a tag value together with its schedule
	// associations. Returns domain.ErrNotFound if it does not exist.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// pgTagValueRepo is the Postgres implementation of TagValueRepo.
type pgTagValueRepo struct {
	db db
}

// NewTagValueRepo constructs a TagValueRepo backed by the provided db connection.
func NewTagValueRepo(db db) TagValueRepo {
	return &pgTagValueRepo{db: db}
}

// Create inserts a new tag value row and returns the full persisted record.
func (r *pgTagValueRepo) Create(ctx context.Context, tv domain.TagValue) (domain.TagValue, error) {
	const q = `
		INSERT INTO tag_values (tag_id, value, color)
		VALUES (@tag_id, @value, @color)
		RETURNING id, tag_id, value, color`

	args := pgx.NamedArgs{
		"tag_id": tv.TagID,
		"value":  tv.Value,
		"color":  tv.Color, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTagValue(row)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.TagValueRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a tag value by primary key.
func (r *pgTagValueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error) {
	const q = `
		SELECT id, tag_id, value, color
		FROM tag_values
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTagValue(row)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.TagValueRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTag returns all values of a tag ordered by value text.
func (r *pgTagValueRepo) ListByTag(ctx context.Context, tagID uuid.UUID) ([]domain.TagValue, error) {
	const q = `
		SELECT id, tag_id, value, color
		FROM tag_values
		WHERE tag_id = @tag_id
		ORDER BY value`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tag_id": tagID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagValueRepo.ListByTag: %w", err)
	}
	defer rows.Close()

	values := []domain.TagValue{}
	for rows.Next() {
		tv, err := scanTagValue(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagValueRepo.ListByTag: scan: %w", err)
		}
		values = append(values, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagValueRepo.ListByTag: rows: %w", err)
	}
	return values, nil
}

// ListByIDs returns the tag values matching ids. Unknown ids are absent.
func (r *pgTagValueRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error) {
	if len(ids) == 0 {
		return []domain.TagValue{}, nil
	}

	const q = `
		SELECT id, tag_id, value, color
		FROM tag_values
		WHERE id = ANY(@ids::uuid[])`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.TagValueRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	values := []domain.TagValue{}
	for rows.Next() {
		tv, err := scanTagValue(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagValueRepo.ListByIDs: scan: %w", err)
		}
		values = append(values, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagValueRepo.ListByIDs: rows: %w", err)
	}
	return values, nil
}

// Update overwrites value text and color and returns the updated record.
func (r *pgTagValueRepo) Update(ctx context.Context, tv domain.TagValue) (domain.TagValue, error) {
	const q = `
		UPDATE tag_values
		SET value = @value,
		    color = @color
		WHERE id = @id
		RETURNING id, tag_id, value, color`

	args := pgx.NamedArgs{
		"id":    tv.ID,
		"value": tv.Value,
		"color": tv.Color,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTagValue(row)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.TagValueRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

// DeleteCascade removes schedule associations first, then the value itself.
func (r *pgTagValueRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	const delLinks = `DELETE FROM schedule_tag_values WHERE tag_value_id = @id`
	const delValue = `DELETE FROM tag_values WHERE id = @id`

	if _, err := r.db.Exec(ctx, delLinks, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TagValueRepo.DeleteCascade: links: %w", err)
	}
	tag, err := r.db.Exec(ctx, delValue, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagValueRepo.DeleteCascade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagValueRepo.DeleteCascade: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTagValue maps a single database row into a domain.TagValue.
// It handles the UUID and nullable color conversions.
func scanTagValue(s scanner) (domain.TagValue, error) {
	var (
		tv    domain.TagValue
		id    pgtype.UUID
		tagID pgtype.UUID
		color pgtype.Text
	)
	err := s.Scan(&id, &tagID, &tv.Value, &color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TagValue{}, domain.ErrNotFound
		}
		return domain.TagValue{}, err
	}
	tv.ID = uuid.UUID(id.Bytes)
	tv.TagID = uuid.UUID(tagID.Bytes)
	if color.Valid {
		c := color.String
		tv.Color = &c
	}
	return tv, nil
}
