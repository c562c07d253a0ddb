package pricing

import (
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/money"
)

// Extra is a catalog entry for a menu item modifier with its own unit price.
type Extra struct {
	ID        uuid.UUID
	UnitPrice money.Money
}

// ExtraSelection references a catalog extra with a chosen quantity. Price is an
// optional explicit fallback used when the extra is absent from the catalog
// snapshot the caller holds.
type ExtraSelection struct {
	ExtraID uuid.UUID   `json:"extraId"`
	Qty     int         `json:"qty"`
	Price   money.Money `json:"price,omitempty"`
}

// Line is one priced entry of an open order.
type Line struct {
	MenuItemID uuid.UUID
	Qty        int
	UnitPrice  money.Money
	Extras     []ExtraSelection
	Subtotal   money.Money
}

// ServiceFeeConfig describes the surcharge applied to the post-discount
// subtotal. Amount wins when both are set; a zero config yields no fee.
type ServiceFeeConfig struct {
	Amount     money.Money `json:"amount,omitempty"`
	PercentBps int         `json:"percentBps,omitempty"`
}

// ExtrasUnitTotal sums the per-unit extras contribution for the selections.
// Unit prices resolve from the catalog by extra id; selections missing from
// the catalog fall back to their explicit price, else contribute nothing.
func ExtrasUnitTotal(selections []ExtraSelection, catalog map[uuid.UUID]money.Money) money.Money {
	var total money.Money
	for _, sel := range selections {
		if sel.Qty <= 0 {
			continue
		}
		unit, ok := catalog[sel.ExtraID]
		if !ok {
			unit = sel.Price
		}
		if unit <= 0 {
			continue
		}
		total += unit * money.Money(sel.Qty)
	}
	return total
}

// LineSubtotal computes (unitPrice + extras per unit) x qty. Quantity bounds
// are the caller's concern; the function multiplies whatever it is given.
func LineSubtotal(unitPrice money.Money, qty int, selections []ExtraSelection, catalog map[uuid.UUID]money.Money) money.Money {
	return (unitPrice + ExtrasUnitTotal(selections, catalog)) * money.Money(qty)
}

// OrderTotal sums line subtotals. An empty order totals zero.
func OrderTotal(lines []Line) money.Money {
	var total money.Money
	for _, line := range lines {
		total += line.Subtotal
	}
	return total
}

// ServiceFee computes the surcharge against the post-discount subtotal.
func ServiceFee(postDiscount money.Money, cfg ServiceFeeConfig) money.Money {
	if postDiscount < 0 {
		postDiscount = 0
	}
	if cfg.Amount > 0 {
		return cfg.Amount
	}
	if cfg.PercentBps > 0 {
		return (postDiscount * money.Money(cfg.PercentBps)) / 10000
	}
	return 0
}

// BillTotal is the single source of truth for a bill's payable amount:
// max(0, subtotal - discount) + serviceFee.
func BillTotal(subtotal, discount, serviceFee money.Money) money.Money {
	payable := subtotal - discount
	if payable < 0 {
		payable = 0
	}
	return payable + serviceFee
}

// Summary aggregates the computed components of a bill.
type Summary struct {
	Subtotal      money.Money
	DiscountTotal money.Money
	ServiceFee    money.Money
	Total         money.Money
}

// ComputeBill composes subtotal, discount, and service fee in the one fixed
// order used everywhere: the fee is derived from the discounted subtotal and
// added on top. DiscountTotal carries the unclamped sum; Total is clamped.
func ComputeBill(lines []Line, discountTotal money.Money, fee ServiceFeeConfig) Summary {
	subtotal := OrderTotal(lines)
	if discountTotal < 0 {
		discountTotal = 0
	}
	postDiscount := subtotal - discountTotal
	if postDiscount < 0 {
		postDiscount = 0
	}
	serviceFee := ServiceFee(postDiscount, fee)
	return Summary{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		ServiceFee:    serviceFee,
		Total:         BillTotal(subtotal, discountTotal, serviceFee),
	}
}
