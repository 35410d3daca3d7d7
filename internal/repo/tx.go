package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles the repos a write transaction operates on, all bound to the
// same pgx.Tx so the whole read-check-write sequence is atomic.
type Repos struct {
	Tags      TagRepo
	TagValues TagValueRepo
	Schedules ScheduleRepo
}

// TxManager runs a function inside a single serializable transaction.
// Serializable isolation is what closes the double-booking race: two
// concurrent writers against the same exclusive resource are strictly
// ordered, and the second commit fails with a serialization error that
// mapPgError turns into domain.ErrTxConflict.
type TxManager interface {
	RunSerializable(ctx context.Context, fn func(r Repos) error) error
}

// pgTxManager is the pgxpool-backed TxManager.
type pgTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager constructs a TxManager on the given pool.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgTxManager{pool: pool}
}

// txTimeout bounds how long one transaction attempt may hold locks.
// Exceeding it surfaces as an error to the caller, never as corruption.
const txTimeout = 5 * time.Second

// RunSerializable begins a serializable transaction, rebuilds the repos on
// it, runs fn, and commits. Any error from fn rolls the transaction back.
func (m *pgTxManager) RunSerializable(ctx context.Context, fn func(r Repos) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("repo.TxManager.RunSerializable: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op once committed

	err = fn(Repos{
		Tags:      NewTagRepo(tx),
		TagValues: NewTagValueRepo(tx),
		Schedules: NewScheduleRepo(tx),
	})
	if err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TxManager.RunSerializable: commit: %w", mapPgError(err))
	}
	return nil
}
