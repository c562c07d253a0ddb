package discount

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolvePercent(t *testing.T) {
	d := Discount{Kind: KindPercent, PercentBps: 1000}
	if got := Resolve(d, 2500); got != 250 {
		t.Fatalf("expected 250, got %d", got)
	}
}

func TestResolveFixed(t *testing.T) {
	d := Discount{Kind: KindFixed, Amount: 200}
	if got := Resolve(d, 2500); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestApplyStacksAdditively(t *testing.T) {
	a := Discount{ID: uuid.New(), Kind: KindPercent, PercentBps: 1000}
	b := Discount{ID: uuid.New(), Kind: KindFixed, Amount: 200}
	res := Apply(2500, []Discount{a, b}, 0)
	if res.TotalDiscount != 450 {
		t.Fatalf("expected 450 total discount, got %d", res.TotalDiscount)
	}
	if res.FinalAmount != 2050 {
		t.Fatalf("expected 2050 final, got %d", res.FinalAmount)
	}
	if len(res.Applied) != 2 || res.Applied[0].Amount != 250 || res.Applied[1].Amount != 200 {
		t.Fatalf("unexpected applied breakdown: %+v", res.Applied)
	}
}

func TestApplyClampsFinalAmount(t *testing.T) {
	fixed := Discount{ID: uuid.New(), Kind: KindFixed, Amount: 3000}
	res := Apply(2500, []Discount{fixed}, 0)
	if res.FinalAmount != 0 {
		t.Fatalf("final amount must never go negative, got %d", res.FinalAmount)
	}
	if res.TotalDiscount != 3000 {
		t.Fatalf("total discount stays unclamped, got %d", res.TotalDiscount)
	}
}

func TestApplyCustomAmount(t *testing.T) {
	res := Apply(2500, nil, 500)
	if res.TotalDiscount != 500 || res.FinalAmount != 2000 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// negative custom amounts are ignored
	res = Apply(2500, nil, -100)
	if res.TotalDiscount != 0 || res.FinalAmount != 2500 {
		t.Fatalf("negative custom amount should not apply: %+v", res)
	}
}

func TestToggleIsIdempotent(t *testing.T) {
	d1 := uuid.New()
	d2 := uuid.New()

	selection := Toggle(nil, d1)
	if len(selection) != 1 || selection[0] != d1 {
		t.Fatalf("expected [d1], got %v", selection)
	}
	selection = Toggle(selection, d2)
	selection = Toggle(selection, d1)
	if len(selection) != 1 || selection[0] != d2 {
		t.Fatalf("re-selecting d1 should remove it, got %v", selection)
	}
	selection = Toggle(selection, d2)
	if len(selection) != 0 {
		t.Fatalf("expected empty selection, got %v", selection)
	}
}
