package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/catalog"
	"github.com/garsonhq/backend-garson/internal/money"
)

// ListMenuItems returns menu entries ordered by category and name. Inactive
// items are included only when includeInactive is set.
func (s *Store) ListMenuItems(ctx context.Context, includeInactive bool, limit, offset int) ([]catalog.MenuItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), category, price, active, created_at
FROM menu_items
WHERE active OR $1
ORDER BY category, name
LIMIT $2 OFFSET $3`, includeInactive, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []catalog.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetMenuItem fetches a single menu entry by id.
func (s *Store) GetMenuItem(ctx context.Context, id uuid.UUID) (catalog.MenuItem, error) {
	if err := s.ready(); err != nil {
		return catalog.MenuItem{}, err
	}
	row := s.pool.QueryRow(ctx, `SELECT id, name, COALESCE(description, ''), category, price, active, created_at
FROM menu_items WHERE id = $1`, id)
	item, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.MenuItem{}, catalog.ErrNotFound
	}
	return item, err
}

// CountMenuItems reports the catalog size for pagination metadata.
func (s *Store) CountMenuItems(ctx context.Context, includeInactive bool) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items WHERE active OR $1`, includeInactive).Scan(&count)
	return count, err
}

// ListExtras returns every active modifier.
func (s *Store) ListExtras(ctx context.Context) ([]catalog.Extra, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name, price, active FROM extras WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []catalog.Extra
	for rows.Next() {
		var e catalog.Extra
		var price string
		if err := rows.Scan(&e.ID, &e.Name, &price, &e.Active); err != nil {
			return nil, err
		}
		e.Price = money.Parse(price)
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func scanMenuItem(row pgx.Row) (catalog.MenuItem, error) {
	var item catalog.MenuItem
	var price string
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &price, &item.Active, &item.CreatedAt)
	if err != nil {
		return catalog.MenuItem{}, err
	}
	// prices live as decimal text upstream; unparseable values read as zero
	item.Price = money.Parse(price)
	return item, nil
}
