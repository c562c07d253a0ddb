package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/auth"
)

// GetWaiterByName fetches a staff account for PIN sign-in.
func (s *Store) GetWaiterByName(ctx context.Context, name string) (auth.Waiter, error) {
	if err := s.ready(); err != nil {
		return auth.Waiter{}, err
	}
	var w auth.Waiter
	err := s.pool.QueryRow(ctx, `SELECT id, name, role, pin_hash, active, created_at
FROM waiters WHERE lower(name) = lower($1)`, name).Scan(&w.ID, &w.Name, &w.Role, &w.PINHash, &w.Active, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Waiter{}, auth.ErrWaiterNotFound
	}
	return w, err
}

// GetWaiter fetches a staff account by id.
func (s *Store) GetWaiter(ctx context.Context, id uuid.UUID) (auth.Waiter, error) {
	if err := s.ready(); err != nil {
		return auth.Waiter{}, err
	}
	var w auth.Waiter
	err := s.pool.QueryRow(ctx, `SELECT id, name, role, pin_hash, active, created_at
FROM waiters WHERE id = $1`, id).Scan(&w.ID, &w.Name, &w.Role, &w.PINHash, &w.Active, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Waiter{}, auth.ErrWaiterNotFound
	}
	return w, err
}

// InsertWaiter creates a staff account with a pre-hashed PIN.
func (s *Store) InsertWaiter(ctx context.Context, name string, role auth.Role, pinHash string) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `INSERT INTO waiters (name, role, pin_hash, active)
VALUES ($1, $2, $3, true) RETURNING id`, name, role, pinHash).Scan(&id)
	return id, err
}

// UpdateWaiterPIN replaces the stored PIN hash for a staff account.
func (s *Store) UpdateWaiterPIN(ctx context.Context, id uuid.UUID, pinHash string) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE waiters SET pin_hash = $1 WHERE id = $2`, pinHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrWaiterNotFound
	}
	return nil
}
