package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/garsonhq/backend-garson/internal/catalog"
	"github.com/garsonhq/backend-garson/internal/events"
	"github.com/garsonhq/backend-garson/internal/money"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

var (
	// ErrNotFound is returned when an order id matches no row.
	ErrNotFound = errors.New("order: not found")
	// ErrLineNotFound is returned when a line id is absent from the order.
	ErrLineNotFound = errors.New("order: line not found")
	// ErrNotOpen is returned when mutating an order that already left the open state.
	ErrNotOpen = errors.New("order: not open")
	// ErrItemUnavailable is returned when adding an inactive menu item.
	ErrItemUnavailable = errors.New("order: menu item unavailable")
)

const (
	minQty = 1
	maxQty = 99
)

type orderStore interface {
	InsertOrder(ctx context.Context, tableNo int, waiterID string) (uuid.UUID, error)
	GetOrder(ctx context.Context, id uuid.UUID) (Order, error)
	ListOpenOrders(ctx context.Context, limit, offset int) ([]Order, error)
	InsertOrderLine(ctx context.Context, orderID uuid.UUID, line Line) (uuid.UUID, error)
	UpdateOrderLine(ctx context.Context, orderID, lineID uuid.UUID, qty int, selections []pricing.ExtraSelection, subtotal int64) error
	DeleteOrderLine(ctx context.Context, orderID, lineID uuid.UUID) error
	SetOrderStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type menuSource interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (catalog.MenuItem, error)
	ListExtras(ctx context.Context) ([]catalog.Extra, error)
}

// Service manages a table's open order. Line subtotals are always derived
// through the pricing engine, never accepted from the client.
type Service struct {
	store orderStore
	menu  menuSource
	bus   *events.Bus
	log   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store  orderStore
	Menu   menuSource
	Bus    *events.Bus
	Logger zerolog.Logger
}

// NewService constructs the order service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{store: cfg.Store, menu: cfg.Menu, bus: cfg.Bus, log: cfg.Logger}
}

// Open starts a new order for a table.
func (s *Service) Open(ctx context.Context, tableNo int, waiterID string) (Order, error) {
	id, err := s.store.InsertOrder(ctx, tableNo, waiterID)
	if err != nil {
		return Order{}, err
	}
	s.emit(ctx, events.TopicOrderCreated, id, map[string]any{"tableNo": tableNo})
	return s.store.GetOrder(ctx, id)
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.store.GetOrder(ctx, id)
}

// ListOpen returns open orders for the floor view.
func (s *Service) ListOpen(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.store.ListOpenOrders(ctx, limit, offset)
}

// AddLine prices and appends one line. Quantity is clamped to [1, 99]; the
// extras selection resolves against the live extras catalog with the explicit
// price fallback for entries the catalog no longer carries.
func (s *Service) AddLine(ctx context.Context, orderID, menuItemID uuid.UUID, qty int, extras []pricing.ExtraSelection) (Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusOpen {
		return Order{}, ErrNotOpen
	}
	item, err := s.menu.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return Order{}, err
	}
	if !item.Active {
		return Order{}, ErrItemUnavailable
	}
	prices, err := s.extraPrices(ctx)
	if err != nil {
		return Order{}, err
	}

	qty = clampQty(qty)
	line := Line{
		MenuItemID: menuItemID,
		Name:       item.Name,
		Qty:        qty,
		UnitPrice:  item.Price,
		Extras:     extras,
		Subtotal:   pricing.LineSubtotal(item.Price, qty, extras, prices),
	}
	if _, err := s.store.InsertOrderLine(ctx, orderID, line); err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, orderID)
}

// UpdateLine replaces a line's quantity and extras, re-deriving the subtotal
// from the stored unit price.
func (s *Service) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, qty int, extras []pricing.ExtraSelection) (Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusOpen {
		return Order{}, ErrNotOpen
	}
	line, ok := findLine(o, lineID)
	if !ok {
		return Order{}, ErrLineNotFound
	}
	prices, err := s.extraPrices(ctx)
	if err != nil {
		return Order{}, err
	}

	qty = clampQty(qty)
	subtotal := pricing.LineSubtotal(line.UnitPrice, qty, extras, prices)
	if err := s.store.UpdateOrderLine(ctx, orderID, lineID, qty, extras, int64(subtotal)); err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, orderID)
}

// RemoveLine deletes a line from an open order.
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusOpen {
		return Order{}, ErrNotOpen
	}
	if err := s.store.DeleteOrderLine(ctx, orderID, lineID); err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, orderID)
}

// Abandon discards an open order without producing a bill.
func (s *Service) Abandon(ctx context.Context, orderID uuid.UUID) error {
	if err := s.store.SetOrderStatus(ctx, orderID, StatusOpen, StatusAbandoned); err != nil {
		return err
	}
	s.emit(ctx, events.TopicOrderAbandoned, orderID, nil)
	return nil
}

func (s *Service) extraPrices(ctx context.Context) (map[uuid.UUID]money.Money, error) {
	extras, err := s.menu.ListExtras(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[uuid.UUID]money.Money, len(extras))
	for _, e := range extras {
		prices[e.ID] = e.Price
	}
	return prices, nil
}

func (s *Service) emit(ctx context.Context, topic string, orderID uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	if _, err := s.bus.Emit(ctx, topic, orderID, payload); err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Stringer("order_id", orderID).Msg("event emit failed")
	}
}

func clampQty(qty int) int {
	if qty < minQty {
		return minQty
	}
	if qty > maxQty {
		return maxQty
	}
	return qty
}

func findLine(o Order, lineID uuid.UUID) (Line, bool) {
	for _, l := range o.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return Line{}, false
}
