package discount

import (
	"errors"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/money"
)

var (
	// ErrNoSelection is returned when an apply request carries neither a
	// catalog discount nor a positive custom amount.
	ErrNoSelection = errors.New("discount: nothing selected")
	// ErrUnknownDiscount is returned when a selected id is absent from the catalog.
	ErrUnknownDiscount = errors.New("discount: unknown discount")
	// ErrDiscountInactive is returned when a selected discount is disabled.
	ErrDiscountInactive = errors.New("discount: not active")
)

// Kind distinguishes percentage discounts from fixed amounts.
type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

// Discount is an immutable catalog definition fetched from the backend.
type Discount struct {
	ID         uuid.UUID
	Name       string
	Kind       Kind
	PercentBps int32
	Amount     money.Money
	Active     bool
}

// Applied records the resolved monetary contribution of one selected discount
// against a specific bill amount. Percentage discounts are resolved once at
// apply time; the amount is what gets stored, never re-derived.
type Applied struct {
	DiscountID uuid.UUID   `json:"discountId"`
	Amount     money.Money `json:"amount"`
}

// Result carries both the unclamped discount sum and the clamped payable.
type Result struct {
	Applied       []Applied
	TotalDiscount money.Money
	FinalAmount   money.Money
}

// Resolve computes the monetary value of one discount against the bill amount.
// Percent kinds use integer basis-point math, truncating toward zero.
func Resolve(d Discount, billAmount money.Money) money.Money {
	if billAmount < 0 {
		billAmount = 0
	}
	switch d.Kind {
	case KindPercent:
		if d.PercentBps <= 0 {
			return 0
		}
		return (billAmount * money.Money(d.PercentBps)) / 10000
	case KindFixed:
		if d.Amount < 0 {
			return 0
		}
		return d.Amount
	default:
		return 0
	}
}

// Apply stacks every selected discount plus an optional custom amount against
// the bill. Stacking is always additive. TotalDiscount is reported unclamped;
// FinalAmount is floored at zero.
func Apply(billAmount money.Money, selected []Discount, customAmount money.Money) Result {
	res := Result{Applied: make([]Applied, 0, len(selected))}
	for _, d := range selected {
		amount := Resolve(d, billAmount)
		res.Applied = append(res.Applied, Applied{DiscountID: d.ID, Amount: amount})
		res.TotalDiscount += amount
	}
	if customAmount > 0 {
		res.TotalDiscount += customAmount
	}
	res.FinalAmount = billAmount - res.TotalDiscount
	if res.FinalAmount < 0 {
		res.FinalAmount = 0
	}
	return res
}

// Toggle flips the membership of id in the selection. Re-selecting an already
// selected id removes it; a selection never holds duplicates.
func Toggle(selection []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(selection)+1)
	removed := false
	for _, existing := range selection {
		if existing == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		out = append(out, id)
	}
	return out
}
