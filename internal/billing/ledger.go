package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/discount"
	"github.com/garsonhq/backend-garson/internal/money"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

var (
	// ErrInvalidAmount is returned when a payment amount is not positive.
	ErrInvalidAmount = errors.New("billing: payment amount must be positive")
	// ErrAmountExceedsRemaining is returned when a payment is larger than the
	// remaining balance. Overpayment is a hard validation error, never a clamp.
	ErrAmountExceedsRemaining = errors.New("billing: payment exceeds remaining balance")
	// ErrMissingTransactionID is returned for bank card payments without a reference.
	ErrMissingTransactionID = errors.New("billing: bank card payment requires a transaction id")
	// ErrUnknownMethod is returned for payment methods outside the accepted set.
	ErrUnknownMethod = errors.New("billing: unknown payment method")
	// ErrBillClosed is returned when recording against a fully paid or cancelled bill.
	ErrBillClosed = errors.New("billing: bill no longer accepts payments")
	// ErrBillNotFound maps a missing bill row to the API boundary.
	ErrBillNotFound = errors.New("billing: bill not found")
)

// Method enumerates the accepted payment channels.
type Method string

const (
	MethodCash            Method = "cash"
	MethodBankCard        Method = "bank_card"
	MethodGapjykPay       Method = "gapjyk_pay"
	MethodCustomerAccount Method = "customer_account"
)

// Valid reports whether the method is one of the accepted channels.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankCard, MethodGapjykPay, MethodCustomerAccount:
		return true
	}
	return false
}

// State describes how far along settlement a bill is.
type State string

const (
	StateUnpaid        State = "unpaid"
	StatePartiallyPaid State = "partially_paid"
	StateFullyPaid     State = "fully_paid"
)

// Status is the bill lifecycle as persisted.
type Status string

const (
	StatusOpen      Status = "open"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Payment is one settled entry of the ledger. Payments are append-only; once
// recorded they are never edited or removed.
type Payment struct {
	ID            uuid.UUID   `json:"id"`
	Amount        money.Money `json:"amount"`
	Method        Method      `json:"method"`
	TransactionID string      `json:"transactionId,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Bill is the payable record derived from a finalized order.
type Bill struct {
	ID             uuid.UUID                `json:"id"`
	OrderID        uuid.UUID                `json:"orderId"`
	TableNo        int                      `json:"tableNo"`
	Status         Status                   `json:"status"`
	Subtotal       money.Money              `json:"subtotal"`
	DiscountTotal  money.Money              `json:"discountTotal"`
	ServiceFee     money.Money              `json:"serviceFee"`
	Total          money.Money              `json:"total"`
	Paid           money.Money              `json:"paid"`
	Discounts      []discount.Applied       `json:"discounts"`
	CustomDiscount money.Money              `json:"customDiscount,omitempty"`
	FeeConfig      pricing.ServiceFeeConfig `json:"feeConfig"`
	Payments       []Payment                `json:"payments"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// Remaining is the outstanding balance, floored at zero.
func (b Bill) Remaining() money.Money {
	remaining := b.Total - b.Paid
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// State derives the settlement state from the running totals.
func (b Bill) State() State {
	switch {
	case b.Paid <= 0:
		return StateUnpaid
	case b.Paid < b.Total:
		return StatePartiallyPaid
	default:
		return StateFullyPaid
	}
}

// ValidatePayment runs the ledger checks in their defined order without
// mutating anything: open bill, positive amount, fits the remaining balance,
// method known, bank card carries a transaction id.
func ValidatePayment(b Bill, p Payment) error {
	if b.Status == StatusCancelled || b.State() == StateFullyPaid {
		return ErrBillClosed
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Amount > b.Remaining() {
		return ErrAmountExceedsRemaining
	}
	if !p.Method.Valid() {
		return ErrUnknownMethod
	}
	if p.Method == MethodBankCard && strings.TrimSpace(p.TransactionID) == "" {
		return ErrMissingTransactionID
	}
	return nil
}

// RecordPayment validates and applies one payment, returning the updated bill.
// The input bill is untouched on failure. Split payment is the normal case:
// each call validates against the balance as it stands at that moment.
func RecordPayment(b Bill, p Payment) (Bill, error) {
	if err := ValidatePayment(b, p); err != nil {
		return b, err
	}
	updated := b
	updated.Payments = append(append([]Payment(nil), b.Payments...), p)
	updated.Paid += p.Amount
	if updated.State() == StateFullyPaid {
		updated.Status = StatusPaid
	}
	return updated, nil
}
