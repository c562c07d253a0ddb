package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/discount"
)

// ListDiscounts returns the discount catalog, active entries first.
func (s *Store) ListDiscounts(ctx context.Context, includeInactive bool) ([]discount.Discount, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name, kind, percent_bps, amount, active
FROM discounts
WHERE active OR $1
ORDER BY active DESC, name`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []discount.Discount
	for rows.Next() {
		var d discount.Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Kind, &d.PercentBps, &d.Amount, &d.Active); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// GetDiscount fetches one catalog discount by id.
func (s *Store) GetDiscount(ctx context.Context, id uuid.UUID) (discount.Discount, error) {
	if err := s.ready(); err != nil {
		return discount.Discount{}, err
	}
	var d discount.Discount
	err := s.pool.QueryRow(ctx, `SELECT id, name, kind, percent_bps, amount, active
FROM discounts WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.Kind, &d.PercentBps, &d.Amount, &d.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return discount.Discount{}, discount.ErrUnknownDiscount
	}
	return d, err
}

// GetDiscounts resolves a batch of discount ids, failing on the first miss.
func (s *Store) GetDiscounts(ctx context.Context, ids []uuid.UUID) ([]discount.Discount, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := make([]discount.Discount, 0, len(ids))
	for _, id := range ids {
		d, err := s.GetDiscount(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
