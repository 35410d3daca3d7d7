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

// AuditRepo defines the persistence operations for the append-only audit log.
// Entries are never updated or deleted.
type AuditRepo interface {
	// Insert appends one audit entry and returns the persisted record.
	Insert(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)

	// ListSince returns entries with ts >= sinceTS, newest first
	// (ts descending, then id descending).
	ListSince(ctx context.Context, sinceTS string) ([]domain.AuditEntry, error)
}

// pgAuditRepo is the Postgres implementation of AuditRepo.
type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db connection.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

// Insert appends one audit log row.
func (r *pgAuditRepo) Insert(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	const q = `
		INSERT INTO audit_logs (ts, username, action, entity, entity_id, details)
		VALUES (@ts, @username, @action, @entity, @entity_id, @details)
		RETURNING id, ts, username, action, entity, entity_id, details`

	args := pgx.NamedArgs{
		"ts":        entry.TS,
		"username":  entry.Username,
		"action":    entry.Action,
		"entity":    entry.Entity,
		"entity_id": entry.EntityID,
		"details":   entry.Details,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanAuditEntry(row)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("repo.AuditRepo.Insert: %w", err)
	}
	return result, nil
}

// ListSince returns entries at or after sinceTS, newest first.
// Timestamps are ISO strings, so the >= comparison is lexicographic like
// everywhere else in the system.
func (r *pgAuditRepo) ListSince(ctx context.Context, sinceTS string) ([]domain.AuditEntry, error) {
	const q = `
		SELECT id, ts, username, action, entity, entity_id, details
		FROM audit_logs
		WHERE ts >= @since
		ORDER BY ts DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"since": sinceTS})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListSince: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.ListSince: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListSince: rows: %w", err)
	}
	return entries, nil
}

// scanAuditEntry maps a single database row into a domain.AuditEntry.
func scanAuditEntry(s scanner) (domain.AuditEntry, error) {
	var (
		e        domain.AuditEntry
		id       pgtype.UUID
		username pgtype.Text
		entityID pgtype.UUID
		details  pgtype.Text
	)
	err := s.Scan(&id, &e.TS, &username, &e.Action, &e.Entity, &entityID, &details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AuditEntry{}, domain.ErrNotFound
		}
		return domain.AuditEntry{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	if username.Valid {
		u := username.String
		e.Username = &u
	}
	if entityID.Valid {
		eid := uuid.UUID(entityID.Bytes)
		e.EntityID = &eid
	}
	if details.Valid {
		d := details.String
		e.Details = &d
	}
	return e, nil
}
