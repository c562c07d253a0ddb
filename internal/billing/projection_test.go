package billing

import (
	"errors"
	"testing"
)

func TestProjectionStageCountsPending(t *testing.T) {
	proj := NewProjection(openBill(2750))

	if err := proj.Stage("c1", cashPayment(2000)); err != nil {
		t.Fatalf("stage c1: %v", err)
	}
	if proj.Remaining() != 750 {
		t.Fatalf("preview remaining = %d", proj.Remaining())
	}
	// the second staged payment must fit what is left after the first
	if err := proj.Stage("c2", cashPayment(1000)); !errors.Is(err, ErrAmountExceedsRemaining) {
		t.Fatalf("expected ErrAmountExceedsRemaining, got %v", err)
	}
	if err := proj.Stage("c2", cashPayment(750)); err != nil {
		t.Fatalf("stage c2: %v", err)
	}
	if proj.Remaining() != 0 {
		t.Fatalf("preview remaining = %d", proj.Remaining())
	}
}

func TestProjectionConfirmReplacesState(t *testing.T) {
	bill := openBill(2750)
	proj := NewProjection(bill)
	if err := proj.Stage("c1", cashPayment(1000)); err != nil {
		t.Fatal(err)
	}

	authoritative := bill
	authoritative.Paid = 1000
	authoritative.Payments = []Payment{cashPayment(1000)}
	if err := proj.Confirm("c1", authoritative); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := proj.Bill().Paid; got != 1000 {
		t.Fatalf("confirmed paid = %d", got)
	}
	if proj.Remaining() != 1750 {
		t.Fatalf("remaining after confirm = %d", proj.Remaining())
	}
}

func TestProjectionRollbackRestoresPreview(t *testing.T) {
	proj := NewProjection(openBill(2750))
	if err := proj.Stage("c1", cashPayment(1000)); err != nil {
		t.Fatal(err)
	}
	if err := proj.Rollback("c1"); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if proj.Remaining() != 2750 {
		t.Fatalf("rollback must restore the preview, remaining = %d", proj.Remaining())
	}
	if err := proj.Rollback("c1"); !errors.Is(err, ErrCorrelationUnknown) {
		t.Fatalf("expected ErrCorrelationUnknown, got %v", err)
	}
}

func TestProjectionRejectsDuplicateCorrelation(t *testing.T) {
	proj := NewProjection(openBill(2750))
	if err := proj.Stage("c1", cashPayment(100)); err != nil {
		t.Fatal(err)
	}
	if err := proj.Stage("c1", cashPayment(100)); !errors.Is(err, ErrCorrelationInUse) {
		t.Fatalf("expected ErrCorrelationInUse, got %v", err)
	}
}
