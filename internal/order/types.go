package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/money"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

// Status is the lifecycle of an open order. Finalizing an order hands it to
// billing; abandoned orders never reach a bill.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFinalized Status = "finalized"
	StatusAbandoned Status = "abandoned"
)

// Line is one persisted order entry with its stored extras selection.
type Line struct {
	ID         uuid.UUID                `json:"id"`
	MenuItemID uuid.UUID                `json:"menuItemId"`
	Name       string                   `json:"name"`
	Qty        int                      `json:"qty"`
	UnitPrice  money.Money              `json:"unitPrice"`
	Extras     []pricing.ExtraSelection `json:"extras,omitempty"`
	Subtotal   money.Money              `json:"subtotal"`
}

// Order is a table's running tab owned by one waiter.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	TableNo   int         `json:"tableNo"`
	WaiterID  string      `json:"waiterId"`
	Status    Status      `json:"status"`
	Lines     []Line      `json:"lines"`
	Subtotal  money.Money `json:"subtotal"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PricingLines converts persisted lines into the pricing engine's shape.
func (o Order) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, pricing.Line{
			MenuItemID: l.MenuItemID,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
			Extras:     l.Extras,
			Subtotal:   l.Subtotal,
		})
	}
	return lines
}
