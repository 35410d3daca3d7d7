package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
)

// ScheduleRepo defines the persistence operations for Schedules and their
// tag value associations.
type ScheduleRepo interface {
	// Create inserts a new schedule together with its tag value links and
	// returns the persisted record.
	Create(ctx context.Context, sched domain.Schedule) (domain.Schedule, error)

	// GetByID retrieves a single schedule, with its tag value ids resolved.
	// Returns domain.ErrNotFound if no schedule with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error)

	// List returns schedules matching the filter, in store order
	// (created_at, id). Window and tag value selection semantics are
	// documented on domain.ScheduleFilter.
	List(ctx context.Context, f domain.ScheduleFilter) ([]domain.Schedule, error)

	// Update overwrites the mutable fields of a schedule and replaces its
	// tag value links with the given set. Returns domain.ErrNotFound if the
	// schedule does not exist.
	Update(ctx context.Context, sched domain.Schedule) (domain.Schedule, error)

	// Delete removes a schedule and its tag value links.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindOverlapping returns the first non-canceled schedule, other than
	// excludeID, that references valueID and whose half-open window
	// intersects [from, to). The search order is fixed (date_from, id) so
	// results are deterministic for a given store state.
	// Returns domain.ErrNotFound when there is no conflict.
	FindOverlapping(ctx context.Context, valueID uuid.UUID, from, to string, excludeID *uuid.UUID) (domain.Schedule, error)
}

// pgScheduleRepo is the Postgres implementation of ScheduleRepo.
type pgScheduleRepo struct {
	db db
}

// NewScheduleRepo constructs a ScheduleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; for atomic check-then-write sequences the
// TxManager passes a serializable pgx.Tx instead.
func NewScheduleRepo(db db) ScheduleRepo {
	return &pgScheduleRepo{db: db}
}

// Create inserts the schedule row, then its links, and returns the record.
func (r *pgScheduleRepo) Create(ctx context.Context, sched domain.Schedule) (domain.Schedule, error) {
	const q = `
		INSERT INTO schedules (title, date_from, date_to, is_canceled, contact)
		VALUES (@title, @date_from, @date_to, @is_canceled, @contact)
		RETURNING id, title, date_from, date_to, is_canceled, contact, created_at`

	args := pgx.NamedArgs{
		"title":       sched.Title,
		"date_from":   sched.DateFrom,
		"date_to":     sched.DateTo,
		"is_canceled": sched.IsCanceled,
		"contact":     sched.Contact, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Create: %w", err)
	}

	if err := r.insertLinks(ctx, result.ID, sched.TagValueIDs); err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Create: %w", err)
	}
	result.TagValueIDs = append([]uuid.UUID{}, sched.TagValueIDs...)
	return result, nil
}

// GetByID retrieves a schedule by primary key, links included.
func (r *pgScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error) {
	const q = `
		SELECT id, title, date_from, date_to, is_canceled, contact, created_at
		FROM schedules
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.GetByID: %w", err)
	}

	links, err := r.valueIDsFor(ctx, []uuid.UUID{result.ID})
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.GetByID: %w", err)
	}
	result.TagValueIDs = links[result.ID]
	return result, nil
}

// List returns schedules matching the filter in store order.
// The WHERE clause is assembled from the filter: an overlap predicate when
// both window bounds are set, and one EXISTS subquery per tag value group.
func (r *pgScheduleRepo) List(ctx context.Context, f domain.ScheduleFilter) ([]domain.Schedule, error) {
	q := `
		SELECT id, title, date_from, date_to, is_canceled, contact, created_at
		FROM schedules`
	args := pgx.NamedArgs{}
	var where []string

	if f.From != nil && f.To != nil {
		where = append(where, "NOT (date_to <= @from OR date_from >= @to)")
		args["from"] = *f.From
		args["to"] = *f.To
	}
	for i, group := range f.ValueGroups {
		param := fmt.Sprintf("group_%d", i)
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM schedule_tag_values stv
			WHERE stv.schedule_id = schedules.id
			  AND stv.tag_value_id = ANY(@%s::uuid[]))`, param))
		args[param] = uuidStrings(group)
	}
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, "\n\t\t  AND ")
	}
	q += "\n\t\tORDER BY created_at, id"

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.List: %w", err)
	}
	defer rows.Close()

	scheds := []domain.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ScheduleRepo.List: scan: %w", err)
		}
		scheds = append(scheds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.List: rows: %w", err)
	}

	ids := make([]uuid.UUID, len(scheds))
	for i, s := range scheds {
		ids[i] = s.ID
	}
	links, err := r.valueIDsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.List: %w", err)
	}
	for i := range scheds {
		scheds[i].TagValueIDs = links[scheds[i].ID]
	}
	return scheds, nil
}

// Update overwrites the schedule row and replaces its links.
func (r *pgScheduleRepo) Update(ctx context.Context, sched domain.Schedule) (domain.Schedule, error) {
	const q = `
		UPDATE schedules
		SET title       = @title,
		    date_from   = @date_from,
		    date_to     = @date_to,
		    is_canceled = @is_canceled,
		    contact     = @contact
		WHERE id = @id
		RETURNING id, title, date_from, date_to, is_canceled, contact, created_at`

	args := pgx.NamedArgs{
		"id":          sched.ID,
		"title":       sched.Title,
		"date_from":   sched.DateFrom,
		"date_to":     sched.DateTo,
		"is_canceled": sched.IsCanceled,
		"contact":     sched.Contact,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Update: %w", err)
	}

	const delLinks = `DELETE FROM schedule_tag_values WHERE schedule_id = @id`
	if _, err := r.db.Exec(ctx, delLinks, pgx.NamedArgs{"id": sched.ID}); err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Update: unlink: %w", err)
	}
	if err := r.insertLinks(ctx, sched.ID, sched.TagValueIDs); err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Update: %w", err)
	}
	result.TagValueIDs = append([]uuid.UUID{}, sched.TagValueIDs...)
	return result, nil
}

// Delete removes the schedule's links, then the schedule itself.
func (r *pgScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const delLinks = `DELETE FROM schedule_tag_values WHERE schedule_id = @id`
	const delSched = `DELETE FROM schedules WHERE id = @id`

	if _, err := r.db.Exec(ctx, delLinks, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.ScheduleRepo.Delete: links: %w", err)
	}
	tag, err := r.db.Exec(ctx, delSched, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ScheduleRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ScheduleRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// FindOverlapping returns the first conflicting schedule for a value id.
func (r *pgScheduleRepo) FindOverlapping(ctx context.Context, valueID uuid.UUID, from, to string, excludeID *uuid.UUID) (domain.Schedule, error) {
	const q = `
		SELECT s.id, s.title, s.date_from, s.date_to, s.is_canceled, s.contact, s.created_at
		FROM schedules s
		JOIN schedule_tag_values stv ON stv.schedule_id = s.id
		WHERE stv.tag_value_id = @value_id
		  AND s.is_canceled = FALSE
		  AND NOT (s.date_to <= @from OR s.date_from >= @to)
		  AND (@exclude_id::uuid IS NULL OR s.id <> @exclude_id::uuid)
		ORDER BY s.date_from, s.id
		LIMIT 1`

	args := pgx.NamedArgs{
		"value_id":   valueID,
		"from":       from,
		"to":         to,
		"exclude_id": excludeID, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.FindOverlapping: %w", err)
	}
	return result, nil
}

// insertLinks writes the schedule_tag_values rows for a schedule in one
// statement via unnest. No-op for an empty set.
func (r *pgScheduleRepo) insertLinks(ctx context.Context, scheduleID uuid.UUID, valueIDs []uuid.UUID) error {
	if len(valueIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO schedule_tag_values (schedule_id, tag_value_id)
		SELECT @schedule_id, unnest(@value_ids::uuid[])`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"schedule_id": scheduleID,
		"value_ids":   uuidStrings(valueIDs),
	})
	if err != nil {
		return fmt.Errorf("link values: %w", err)
	}
	return nil
}

// valueIDsFor loads the tag value ids of the given schedules in one query,
// grouped by schedule id. Ids within a schedule are ordered for determinism.
func (r *pgScheduleRepo) valueIDsFor(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(scheduleIDs))
	for _, id := range scheduleIDs {
		out[id] = []uuid.UUID{}
	}
	if len(scheduleIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT schedule_id, tag_value_id
		FROM schedule_tag_values
		WHERE schedule_id = ANY(@ids::uuid[])
		ORDER BY schedule_id, tag_value_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(scheduleIDs)})
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schedID, valueID pgtype.UUID
		if err := rows.Scan(&schedID, &valueID); err != nil {
			return nil, fmt.Errorf("load links: scan: %w", err)
		}
		sid := uuid.UUID(schedID.Bytes)
		out[sid] = append(out[sid], uuid.UUID(valueID.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load links: rows: %w", err)
	}
	return out, nil
}

// scanSchedule maps a single database row into a domain.Schedule.
// It handles the UUID and nullable contact conversions; TagValueIDs are
// loaded separately.
func scanSchedule(s scanner) (domain.Schedule, error) {
	var (
		sched   domain.Schedule
		id      pgtype.UUID
		contact pgtype.Text
	)
	err := s.Scan(&id, &sched.Title, &sched.DateFrom, &sched.DateTo, &sched.IsCanceled, &contact, &sched.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Schedule{}, domain.ErrNotFound
		}
		return domain.Schedule{}, err
	}
	sched.ID = uuid.UUID(id.Bytes)
	if contact.Valid {
		c := contact.String
		sched.Contact = &c
	}
	return sched, nil
}
