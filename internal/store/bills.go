package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garsonhq/backend-garson/internal/billing"
	"github.com/garsonhq/backend-garson/internal/discount"
)

// InsertBill persists a freshly computed bill and its applied discounts in
// one transaction, returning the generated id.
func (s *Store) InsertBill(ctx context.Context, b billing.Bill) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `INSERT INTO bills
(order_id, table_no, status, subtotal, discount_total, custom_discount, fee_amount, fee_percent_bps, service_fee, total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		b.OrderID, b.TableNo, b.Status, b.Subtotal, b.DiscountTotal, b.CustomDiscount,
		b.FeeConfig.Amount, b.FeeConfig.PercentBps, b.ServiceFee, b.Total).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	if err := replaceAppliedDiscounts(ctx, tx, id, b.Discounts); err != nil {
		return uuid.Nil, err
	}
	return id, tx.Commit(ctx)
}

// GetBill loads a bill with its applied discounts and full payment history.
func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (billing.Bill, error) {
	if err := s.ready(); err != nil {
		return billing.Bill{}, err
	}
	var b billing.Bill
	err := s.pool.QueryRow(ctx, `SELECT id, order_id, table_no, status, subtotal, discount_total, custom_discount,
fee_amount, fee_percent_bps, service_fee, total, created_at
FROM bills WHERE id = $1`, id).Scan(
		&b.ID, &b.OrderID, &b.TableNo, &b.Status, &b.Subtotal, &b.DiscountTotal, &b.CustomDiscount,
		&b.FeeConfig.Amount, &b.FeeConfig.PercentBps, &b.ServiceFee, &b.Total, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	if err != nil {
		return billing.Bill{}, err
	}

	if b.Discounts, err = s.listAppliedDiscounts(ctx, id); err != nil {
		return billing.Bill{}, err
	}
	if b.Payments, err = s.ListPayments(ctx, id); err != nil {
		return billing.Bill{}, err
	}
	for _, p := range b.Payments {
		b.Paid += p.Amount
	}
	return b, nil
}

// GetBillByOrder resolves the bill created for a finalized order.
func (s *Store) GetBillByOrder(ctx context.Context, orderID uuid.UUID) (billing.Bill, error) {
	if err := s.ready(); err != nil {
		return billing.Bill{}, err
	}
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM bills WHERE order_id = $1`, orderID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	if err != nil {
		return billing.Bill{}, err
	}
	return s.GetBill(ctx, id)
}

// UpdateBillPricing rewrites the priced components of an open bill after a
// discount or fee change. Payments are untouched.
func (s *Store) UpdateBillPricing(ctx context.Context, b billing.Bill) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE bills SET discount_total = $1, custom_discount = $2,
fee_amount = $3, fee_percent_bps = $4, service_fee = $5, total = $6, updated_at = now()
WHERE id = $7 AND status = 'open'`,
		b.DiscountTotal, b.CustomDiscount, b.FeeConfig.Amount, b.FeeConfig.PercentBps,
		b.ServiceFee, b.Total, b.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrBillNotFound
	}
	if err := replaceAppliedDiscounts(ctx, tx, b.ID, b.Discounts); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetBillStatus transitions a bill's lifecycle status.
func (s *Store) SetBillStatus(ctx context.Context, id uuid.UUID, status billing.Status) error {
	if err := s.ready(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE bills SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrBillNotFound
	}
	return nil
}

// InsertPayment appends one ledger entry. The ledger is append-only; there is
// no update or delete counterpart.
func (s *Store) InsertPayment(ctx context.Context, billID uuid.UUID, p billing.Payment) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `INSERT INTO payments (bill_id, method, amount, transaction_id, notes)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, '')) RETURNING id`,
		billID, p.Method, p.Amount, p.TransactionID, p.Notes).Scan(&id)
	return id, err
}

// ListPayments returns the ledger for a bill in recorded order.
func (s *Store) ListPayments(ctx context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT id, method, amount, COALESCE(transaction_id, ''), COALESCE(notes, ''), created_at
FROM payments WHERE bill_id = $1 ORDER BY created_at, id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []billing.Payment
	for rows.Next() {
		var p billing.Payment
		if err := rows.Scan(&p.ID, &p.Method, &p.Amount, &p.TransactionID, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) listAppliedDiscounts(ctx context.Context, billID uuid.UUID) ([]discount.Applied, error) {
	rows, err := s.pool.Query(ctx, `SELECT discount_id, amount FROM applied_discounts
WHERE bill_id = $1 ORDER BY created_at`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applied []discount.Applied
	for rows.Next() {
		var a discount.Applied
		if err := rows.Scan(&a.DiscountID, &a.Amount); err != nil {
			return nil, err
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

func replaceAppliedDiscounts(ctx context.Context, tx pgx.Tx, billID uuid.UUID, applied []discount.Applied) error {
	if _, err := tx.Exec(ctx, `DELETE FROM applied_discounts WHERE bill_id = $1`, billID); err != nil {
		return err
	}
	for _, a := range applied {
		if _, err := tx.Exec(ctx, `INSERT INTO applied_discounts (bill_id, discount_id, amount)
VALUES ($1, $2, $3)`, billID, a.DiscountID, a.Amount); err != nil {
			return err
		}
	}
	return nil
}
