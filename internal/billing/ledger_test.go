package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openBill(total int64) Bill {
	return Bill{
		ID:       uuid.New(),
		OrderID:  uuid.New(),
		Status:   StatusOpen,
		Subtotal: total,
		Total:    total,
	}
}

func cashPayment(amount int64) Payment {
	return Payment{ID: uuid.New(), Amount: amount, Method: MethodCash, CreatedAt: time.Now()}
}

func TestRecordPaymentRejectsOverpay(t *testing.T) {
	bill := openBill(2750)
	updated, err := RecordPayment(bill, cashPayment(3000))
	if !errors.Is(err, ErrAmountExceedsRemaining) {
		t.Fatalf("expected ErrAmountExceedsRemaining, got %v", err)
	}
	if updated.Paid != 0 || len(updated.Payments) != 0 {
		t.Fatalf("bill must be unchanged on rejection: %+v", updated)
	}
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	bill := openBill(2750)
	for _, amount := range []int64{0, -100} {
		if _, err := RecordPayment(bill, cashPayment(amount)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestSplitPaymentsReachFullyPaid(t *testing.T) {
	bill := openBill(2750)

	bill, err := RecordPayment(bill, cashPayment(1000))
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if bill.State() != StatePartiallyPaid {
		t.Fatalf("expected partially paid, got %s", bill.State())
	}
	if bill.Remaining() != 1750 {
		t.Fatalf("remaining = %d", bill.Remaining())
	}

	bill, err = RecordPayment(bill, cashPayment(1750))
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if bill.Paid != 2750 || bill.State() != StateFullyPaid || bill.Remaining() != 0 {
		t.Fatalf("settlement incomplete: paid=%d state=%s", bill.Paid, bill.State())
	}
	if bill.Status != StatusPaid {
		t.Fatalf("expected bill status paid, got %s", bill.Status)
	}

	// fully paid is terminal for payment acceptance
	if _, err := RecordPayment(bill, cashPayment(100)); !errors.Is(err, ErrBillClosed) {
		t.Fatalf("expected ErrBillClosed, got %v", err)
	}
}

func TestBankCardRequiresTransactionID(t *testing.T) {
	bill := openBill(2750)
	card := Payment{ID: uuid.New(), Amount: 1000, Method: MethodBankCard}
	if _, err := RecordPayment(bill, card); !errors.Is(err, ErrMissingTransactionID) {
		t.Fatalf("expected ErrMissingTransactionID, got %v", err)
	}
	card.TransactionID = "  "
	if _, err := RecordPayment(bill, card); !errors.Is(err, ErrMissingTransactionID) {
		t.Fatalf("blank transaction id must be rejected, got %v", err)
	}
	card.TransactionID = "TXN-0001"
	updated, err := RecordPayment(bill, card)
	if err != nil {
		t.Fatalf("expected success with transaction id, got %v", err)
	}
	if updated.Paid != 1000 {
		t.Fatalf("paid = %d", updated.Paid)
	}
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	bill := openBill(1000)
	p := Payment{ID: uuid.New(), Amount: 500, Method: Method("cheque")}
	if _, err := RecordPayment(bill, p); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestCancelledBillRejectsPayments(t *testing.T) {
	bill := openBill(1000)
	bill.Status = StatusCancelled
	if _, err := RecordPayment(bill, cashPayment(500)); !errors.Is(err, ErrBillClosed) {
		t.Fatalf("expected ErrBillClosed, got %v", err)
	}
}

func TestPaymentsAppendOnly(t *testing.T) {
	bill := openBill(2000)
	first, err := RecordPayment(bill, cashPayment(500))
	if err != nil {
		t.Fatal(err)
	}
	second, err := RecordPayment(first, cashPayment(500))
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Payments) != 1 || len(second.Payments) != 2 {
		t.Fatalf("payments must only ever grow: %d then %d", len(first.Payments), len(second.Payments))
	}
}
