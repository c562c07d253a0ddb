package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/order"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

// InsertOrder opens a new order for a table and returns the generated id.
func (s *Store) InsertOrder(ctx context.Context, tableNo int, waiterID string) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `INSERT INTO orders (table_no, waiter_id, status)
VALUES ($1, $2, 'open') RETURNING id`, tableNo, waiterID).Scan(&id)
	return id, err
}

// GetOrder fetches an order with its lines.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (order.Order, error) {
	if err := s.ready(); err != nil {
		return order.Order{}, err
	}
	var o order.Order
	err := s.pool.QueryRow(ctx, `SELECT id, table_no, waiter_id, status, created_at, updated_at
FROM orders WHERE id = $1`, id).Scan(&o.ID, &o.TableNo, &o.WaiterID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}

	lines, err := s.listOrderLines(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	o.Lines = lines
	for _, l := range lines {
		o.Subtotal += l.Subtotal
	}
	return o, nil
}

// ListOpenOrders returns open orders for the floor view, newest first.
func (s *Store) ListOpenOrders(ctx context.Context, limit, offset int) ([]order.Order, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, table_no, waiter_id, status, created_at, updated_at
FROM orders WHERE status = 'open'
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.TableNo, &o.WaiterID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		lines, err := s.listOrderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
		for _, l := range lines {
			orders[i].Subtotal += l.Subtotal
		}
	}
	return orders, nil
}

// InsertOrderLine appends a priced line to an order.
func (s *Store) InsertOrderLine(ctx context.Context, orderID uuid.UUID, line order.Line) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	extras, err := encodeExtras(line.Extras)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = s.pool.QueryRow(ctx, `INSERT INTO order_lines (order_id, menu_item_id, name, qty, unit_price, extras, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		orderID, line.MenuItemID, line.Name, line.Qty, line.UnitPrice, extras, line.Subtotal).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, s.touchOrder(ctx, orderID)
}

// UpdateOrderLine replaces quantity, extras, and the derived subtotal of a line.
func (s *Store) UpdateOrderLine(ctx context.Context, orderID, lineID uuid.UUID, qty int, selections []pricing.ExtraSelection, subtotal int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	extras, err := encodeExtras(selections)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE order_lines SET qty = $1, extras = $2, subtotal = $3
WHERE id = $4 AND order_id = $5`, qty, extras, subtotal, lineID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrLineNotFound
	}
	return s.touchOrder(ctx, orderID)
}

// DeleteOrderLine removes a line from an open order.
func (s *Store) DeleteOrderLine(ctx context.Context, orderID, lineID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM order_lines WHERE id = $1 AND order_id = $2`, lineID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrLineNotFound
	}
	return s.touchOrder(ctx, orderID)
}

// SetOrderStatus transitions an order, returning ErrNotFound when the order
// is absent or already left the expected status.
func (s *Store) SetOrderStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE orders SET status = $1, updated_at = now()
WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (s *Store) listOrderLines(ctx context.Context, orderID uuid.UUID) ([]order.Line, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, menu_item_id, name, qty, unit_price, extras, subtotal
FROM order_lines WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		var extras []byte
		if err := rows.Scan(&l.ID, &l.MenuItemID, &l.Name, &l.Qty, &l.UnitPrice, &extras, &l.Subtotal); err != nil {
			return nil, err
		}
		if len(extras) > 0 {
			if err := json.Unmarshal(extras, &l.Extras); err != nil {
				return nil, err
			}
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) touchOrder(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE orders SET updated_at = now() WHERE id = $1`, id)
	return err
}

func encodeExtras(selections []pricing.ExtraSelection) ([]byte, error) {
	if len(selections) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(selections)
}
