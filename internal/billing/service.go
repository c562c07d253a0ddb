package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/garsonhq/backend-garson/internal/discount"
	"github.com/garsonhq/backend-garson/internal/events"
	"github.com/garsonhq/backend-garson/internal/lock"
	"github.com/garsonhq/backend-garson/internal/money"
	"github.com/garsonhq/backend-garson/internal/obs"
	"github.com/garsonhq/backend-garson/internal/order"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

// ErrOrderNotOpen is returned when finalizing an order that already left the
// open state.
var ErrOrderNotOpen = errors.New("billing: order is not open")

// ErrBillNotCancellable is returned when cancelling a bill that has payments.
var ErrBillNotCancellable = errors.New("billing: bill has payments and cannot be cancelled")

type billStore interface {
	InsertBill(ctx context.Context, b Bill) (uuid.UUID, error)
	GetBill(ctx context.Context, id uuid.UUID) (Bill, error)
	GetBillByOrder(ctx context.Context, orderID uuid.UUID) (Bill, error)
	UpdateBillPricing(ctx context.Context, b Bill) error
	SetBillStatus(ctx context.Context, id uuid.UUID, status Status) error
	InsertPayment(ctx context.Context, billID uuid.UUID, p Payment) (uuid.UUID, error)
}

type orderSource interface {
	GetOrder(ctx context.Context, id uuid.UUID) (order.Order, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error
}

type discountCatalog interface {
	GetDiscounts(ctx context.Context, ids []uuid.UUID) ([]discount.Discount, error)
}

type historySource interface {
	ListEvents(ctx context.Context, aggregateID uuid.UUID, limit int) ([]events.Event, error)
}

// Service owns the bill lifecycle: finalize, discount, fee, payments, cancel.
// Every mutating call runs under the per-bill Redis lock so concurrent waiter
// devices serialize on one writer.
type Service struct {
	store     billStore
	orders    orderSource
	discounts discountCatalog
	bus       *events.Bus
	locker    lock.Locker
	lockTTL   time.Duration
	fee       pricing.ServiceFeeConfig
	history   historySource
	log       zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store      billStore
	Orders     orderSource
	Discounts  discountCatalog
	Bus        *events.Bus
	Locker     lock.Locker
	LockTTL    time.Duration
	DefaultFee pricing.ServiceFeeConfig
	History    historySource
	Logger     zerolog.Logger
}

// NewService constructs the billing service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Service{
		store:     cfg.Store,
		orders:    cfg.Orders,
		discounts: cfg.Discounts,
		bus:       cfg.Bus,
		locker:    cfg.Locker,
		lockTTL:   ttl,
		fee:       cfg.DefaultFee,
		history:   cfg.History,
		log:       cfg.Logger,
	}
}

// Finalize converts an open order into a bill, snapshotting the priced total
// with the default service fee and no discount.
func (s *Service) Finalize(ctx context.Context, orderID uuid.UUID) (Bill, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Bill{}, err
	}
	if o.Status != order.StatusOpen {
		return Bill{}, ErrOrderNotOpen
	}
	if err := s.orders.SetOrderStatus(ctx, orderID, order.StatusOpen, order.StatusFinalized); err != nil {
		return Bill{}, err
	}

	summary := pricing.ComputeBill(o.PricingLines(), 0, s.fee)
	bill := Bill{
		OrderID:    orderID,
		TableNo:    o.TableNo,
		Status:     StatusOpen,
		Subtotal:   summary.Subtotal,
		ServiceFee: summary.ServiceFee,
		Total:      summary.Total,
		FeeConfig:  s.fee,
	}
	id, err := s.store.InsertBill(ctx, bill)
	if err != nil {
		// Put the order back so the waiter can retry; a finalized order
		// without a bill would be unreachable through the API.
		if revertErr := s.orders.SetOrderStatus(ctx, orderID, order.StatusFinalized, order.StatusOpen); revertErr != nil {
			s.log.Error().Err(revertErr).Stringer("order_id", orderID).Msg("revert order status after bill insert failure")
		}
		return Bill{}, err
	}
	s.emit(ctx, events.TopicOrderBilled, id, map[string]any{
		"orderId": orderID,
		"tableNo": o.TableNo,
		"total":   summary.Total,
	})
	return s.store.GetBill(ctx, id)
}

// Get returns the bill with its ledger.
func (s *Service) Get(ctx context.Context, billID uuid.UUID) (Bill, error) {
	return s.store.GetBill(ctx, billID)
}

// GetByOrder resolves the bill created when the order was finalized.
func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (Bill, error) {
	return s.store.GetBillByOrder(ctx, orderID)
}

// History lists the recorded events for a bill, newest first.
func (s *Service) History(ctx context.Context, billID uuid.UUID, limit int) ([]events.Event, error) {
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		return nil, err
	}
	return s.history.ListEvents(ctx, billID, limit)
}

// ApplyDiscounts replaces the bill's discount selection. Selected catalog
// discounts stack additively with the optional custom amount; the stored
// discount total stays unclamped while the payable total floors at zero.
func (s *Service) ApplyDiscounts(ctx context.Context, billID uuid.UUID, selected []uuid.UUID, custom money.Money) (Bill, error) {
	var out Bill
	err := s.withBillLock(ctx, billID, func(ctx context.Context) error {
		bill, err := s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != StatusOpen {
			return ErrBillClosed
		}
		if len(selected) == 0 && custom <= 0 {
			return discount.ErrNoSelection
		}
		selected = dedupeIDs(selected)

		catalog, err := s.discounts.GetDiscounts(ctx, selected)
		if err != nil {
			return err
		}
		for _, d := range catalog {
			if !d.Active {
				return discount.ErrDiscountInactive
			}
		}

		result := discount.Apply(bill.Subtotal, catalog, custom)
		bill.Discounts = result.Applied
		bill.DiscountTotal = result.TotalDiscount
		bill.CustomDiscount = custom
		s.reprice(&bill)
		if err := s.store.UpdateBillPricing(ctx, bill); err != nil {
			return err
		}
		for _, d := range catalog {
			countDiscount(string(d.Kind))
		}
		if custom > 0 {
			countDiscount("custom")
		}
		s.emit(ctx, events.TopicBillDiscountApplied, billID, map[string]any{
			"discountTotal": bill.DiscountTotal,
			"total":         bill.Total,
		})
		out, err = s.store.GetBill(ctx, billID)
		return err
	})
	return out, err
}

// SetServiceFee replaces the bill's fee configuration and recomputes totals.
func (s *Service) SetServiceFee(ctx context.Context, billID uuid.UUID, cfg pricing.ServiceFeeConfig) (Bill, error) {
	var out Bill
	err := s.withBillLock(ctx, billID, func(ctx context.Context) error {
		bill, err := s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != StatusOpen {
			return ErrBillClosed
		}
		bill.FeeConfig = cfg
		s.reprice(&bill)
		if err := s.store.UpdateBillPricing(ctx, bill); err != nil {
			return err
		}
		out, err = s.store.GetBill(ctx, billID)
		return err
	})
	return out, err
}

// RecordPayment appends one payment to the ledger under the bill lock. The
// stored bill is re-read inside the critical section so the validation always
// runs against the authoritative paid amount.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, p Payment) (Bill, error) {
	var out Bill
	err := s.withBillLock(ctx, billID, func(ctx context.Context) error {
		bill, err := s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		updated, err := RecordPayment(bill, p)
		if err != nil {
			countRejection(err)
			return err
		}
		if _, err := s.store.InsertPayment(ctx, billID, p); err != nil {
			return err
		}
		countAccepted(p)
		if updated.State() == StateFullyPaid {
			if err := s.store.SetBillStatus(ctx, billID, StatusPaid); err != nil {
				return err
			}
			countSettled()
			s.emit(ctx, events.TopicBillPaid, billID, map[string]any{
				"total": updated.Total,
				"paid":  updated.Paid,
			})
		}
		out, err = s.store.GetBill(ctx, billID)
		return err
	})
	return out, err
}

// Cancel voids a bill that has no payments, releasing the table.
func (s *Service) Cancel(ctx context.Context, billID uuid.UUID) (Bill, error) {
	var out Bill
	err := s.withBillLock(ctx, billID, func(ctx context.Context) error {
		bill, err := s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != StatusOpen {
			return ErrBillClosed
		}
		if bill.Paid > 0 {
			return ErrBillNotCancellable
		}
		if err := s.store.SetBillStatus(ctx, billID, StatusCancelled); err != nil {
			return err
		}
		s.emit(ctx, events.TopicBillCancelled, billID, nil)
		out, err = s.store.GetBill(ctx, billID)
		return err
	})
	return out, err
}

// reprice recomputes fee and total from the bill's stored components. The fee
// always derives from the post-discount subtotal.
func (s *Service) reprice(bill *Bill) {
	postDiscount := bill.Subtotal - bill.DiscountTotal
	if postDiscount < 0 {
		postDiscount = 0
	}
	bill.ServiceFee = pricing.ServiceFee(postDiscount, bill.FeeConfig)
	bill.Total = pricing.BillTotal(bill.Subtotal, bill.DiscountTotal, bill.ServiceFee)
}

// dedupeIDs drops repeated ids while preserving selection order, so a
// discount can never stack against itself.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) withBillLock(ctx context.Context, billID uuid.UUID, fn func(context.Context) error) error {
	if s.locker.R == nil {
		return fn(ctx)
	}
	return s.locker.WithLock(ctx, lock.BillKey(billID), s.lockTTL, fn)
}

func (s *Service) emit(ctx context.Context, topic string, billID uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	if _, err := s.bus.Emit(ctx, topic, billID, payload); err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Stringer("bill_id", billID).Msg("event emit failed")
	}
}

func countAccepted(p Payment) {
	if obs.PaymentsRecordedTotal != nil {
		obs.PaymentsRecordedTotal.WithLabelValues(string(p.Method)).Inc()
	}
	if obs.PaymentAmountMinor != nil {
		obs.PaymentAmountMinor.WithLabelValues(string(p.Method)).Observe(float64(p.Amount))
	}
}

func countRejection(err error) {
	if obs.PaymentsRejectedTotal == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, ErrInvalidAmount):
		reason = "invalid_amount"
	case errors.Is(err, ErrAmountExceedsRemaining):
		reason = "exceeds_remaining"
	case errors.Is(err, ErrMissingTransactionID):
		reason = "missing_transaction_id"
	case errors.Is(err, ErrUnknownMethod):
		reason = "unknown_method"
	case errors.Is(err, ErrBillClosed):
		reason = "bill_closed"
	}
	obs.PaymentsRejectedTotal.WithLabelValues(reason).Inc()
}

func countDiscount(kind string) {
	if obs.DiscountsAppliedTotal != nil {
		obs.DiscountsAppliedTotal.WithLabelValues(kind).Inc()
	}
}

func countSettled() {
	if obs.BillsSettledTotal != nil {
		obs.BillsSettledTotal.Inc()
	}
}
