package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/money"
)

func TestLineSubtotalWithExtras(t *testing.T) {
	extraID := uuid.New()
	catalog := map[uuid.UUID]money.Money{extraID: 200}
	subtotal := LineSubtotal(1000, 2, []ExtraSelection{{ExtraID: extraID, Qty: 1}}, catalog)
	if subtotal != 2400 {
		t.Fatalf("expected 2400, got %d", subtotal)
	}
}

func TestExtrasFallbackPrice(t *testing.T) {
	// unknown extra id resolves from the selection's own price
	sel := []ExtraSelection{
		{ExtraID: uuid.New(), Qty: 2, Price: 150},
		{ExtraID: uuid.New(), Qty: 1},
	}
	if total := ExtrasUnitTotal(sel, nil); total != 300 {
		t.Fatalf("expected 300, got %d", total)
	}
}

func TestOrderTotalPermutationInvariant(t *testing.T) {
	a := Line{Subtotal: 2000}
	b := Line{Subtotal: 500}
	c := Line{Subtotal: 1250}
	want := OrderTotal([]Line{a, b, c})
	if want != 3750 {
		t.Fatalf("expected 3750, got %d", want)
	}
	for _, perm := range [][]Line{{c, a, b}, {b, c, a}, {c, b, a}} {
		if got := OrderTotal(perm); got != want {
			t.Fatalf("order total changed under permutation: %d vs %d", got, want)
		}
	}
	if got := OrderTotal(nil); got != 0 {
		t.Fatalf("empty order should total 0, got %d", got)
	}
}

func TestServiceFeePercentOnPostDiscount(t *testing.T) {
	if fee := ServiceFee(2500, ServiceFeeConfig{PercentBps: 1000}); fee != 250 {
		t.Fatalf("expected 250, got %d", fee)
	}
	if fee := ServiceFee(2500, ServiceFeeConfig{Amount: 300}); fee != 300 {
		t.Fatalf("expected fixed 300, got %d", fee)
	}
	if fee := ServiceFee(2500, ServiceFeeConfig{}); fee != 0 {
		t.Fatalf("absent config should yield 0, got %d", fee)
	}
}

func TestComputeBillCompositionOrder(t *testing.T) {
	lines := []Line{{Subtotal: 2500}}
	summary := ComputeBill(lines, 250, ServiceFeeConfig{PercentBps: 1000})
	if summary.Subtotal != 2500 {
		t.Fatalf("subtotal = %d", summary.Subtotal)
	}
	if summary.DiscountTotal != 250 {
		t.Fatalf("discount = %d", summary.DiscountTotal)
	}
	// fee is 10% of the discounted 2250
	if summary.ServiceFee != 225 {
		t.Fatalf("service fee = %d", summary.ServiceFee)
	}
	if summary.Total != 2475 {
		t.Fatalf("total = %d", summary.Total)
	}
}

func TestComputeBillClampsNegative(t *testing.T) {
	summary := ComputeBill([]Line{{Subtotal: 2500}}, 3000, ServiceFeeConfig{})
	if summary.Total != 0 {
		t.Fatalf("over-discounted bill should total 0, got %d", summary.Total)
	}
	// the stored discount stays unclamped
	if summary.DiscountTotal != 3000 {
		t.Fatalf("discount total should stay unclamped, got %d", summary.DiscountTotal)
	}
}
