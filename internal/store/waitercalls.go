package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/waitercall"
)

// InsertWaiterCall raises a call for a table and returns the generated id.
func (s *Store) InsertWaiterCall(ctx context.Context, tableNo int) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `INSERT INTO waiter_calls (table_no, status)
VALUES ($1, 'pending') RETURNING id`, tableNo).Scan(&id)
	return id, err
}

// GetWaiterCall fetches one call by id.
func (s *Store) GetWaiterCall(ctx context.Context, id uuid.UUID) (waitercall.Call, error) {
	if err := s.ready(); err != nil {
		return waitercall.Call{}, err
	}
	row := s.pool.QueryRow(ctx, `SELECT id, table_no, status, COALESCE(waiter_id, ''), created_at, resolved_at
FROM waiter_calls WHERE id = $1`, id)
	call, err := scanWaiterCall(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return waitercall.Call{}, waitercall.ErrNotFound
	}
	return call, err
}

// ListPendingWaiterCalls returns unresolved calls, oldest first.
func (s *Store) ListPendingWaiterCalls(ctx context.Context) ([]waitercall.Call, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, table_no, status, COALESCE(waiter_id, ''), created_at, resolved_at
FROM waiter_calls WHERE status <> 'resolved' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []waitercall.Call
	for rows.Next() {
		call, err := scanWaiterCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// TransitionWaiterCall moves a call from one status to another, recording the
// acting waiter. Resolution stamps resolved_at.
func (s *Store) TransitionWaiterCall(ctx context.Context, id uuid.UUID, from, to waitercall.Status, waiterID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE waiter_calls
SET status = $1, waiter_id = $2, resolved_at = CASE WHEN $1 = 'resolved' THEN now() ELSE resolved_at END
WHERE id = $3 AND status = $4`, to, waiterID, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return waitercall.ErrNotFound
	}
	return nil
}

func scanWaiterCall(row pgx.Row) (waitercall.Call, error) {
	var call waitercall.Call
	var resolved sql.NullTime
	err := row.Scan(&call.ID, &call.TableNo, &call.Status, &call.WaiterID, &call.CreatedAt, &resolved)
	if err != nil {
		return waitercall.Call{}, err
	}
	if resolved.Valid {
		t := resolved.Time
		call.ResolvedAt = &t
	}
	return call, nil
}
