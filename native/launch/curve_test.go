package launch

import (
	"errors"
	"math"
	"testing"
)

func TestComputeCostCanonicalFixture(t *testing.T) {
	// base=1, slope=1, decimals=0: buying 100 from zero supply costs
	// 1*100 + (0*100 + 100*101/2) = 5150.
	cost, err := ComputeCost(1, 1, 0, 0, 100)
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	if cost != 5150 {
		t.Fatalf("expected cost 5150, got %d", cost)
	}
}

func TestComputePayoutCanonicalFixture(t *testing.T) {
	// Selling the same 100 back from supply 100 pays
	// 1*100 + (100*100 - 100*99/2) = 5150 under the symmetric formula.
	payout, err := ComputePayout(1, 1, 0, 100, 100)
	if err != nil {
		t.Fatalf("compute payout: %v", err)
	}
	if payout != 5150 {
		t.Fatalf("expected payout 5150, got %d", payout)
	}
}

func TestComputeCostZeroQty(t *testing.T) {
	cost, err := ComputeCost(7, 3, 9, 12345, 0)
	if err != nil {
		t.Fatalf("compute cost: %v", err)
	}
	if cost != 0 {
		t.Fatalf("zero qty must cost zero, got %d", cost)
	}
	payout, err := ComputePayout(7, 3, 9, 12345, 0)
	if err != nil {
		t.Fatalf("compute payout: %v", err)
	}
	if payout != 0 {
		t.Fatalf("zero qty must pay zero, got %d", payout)
	}
}

func TestComputeCostMonotonic(t *testing.T) {
	prev := uint64(0)
	for qty := uint64(1); qty <= 50; qty++ {
		cost, err := ComputeCost(5, 2, 0, 1000, qty)
		if err != nil {
			t.Fatalf("qty %d: %v", qty, err)
		}
		if cost <= prev {
			t.Fatalf("cost not strictly increasing in qty: qty=%d cost=%d prev=%d", qty, cost, prev)
		}
		prev = cost
	}

	prev = 0
	for supply := uint64(0); supply <= 50; supply++ {
		cost, err := ComputeCost(5, 2, 0, supply, 10)
		if err != nil {
			t.Fatalf("supply %d: %v", supply, err)
		}
		if supply > 0 && cost <= prev {
			t.Fatalf("cost not strictly increasing in supply: supply=%d cost=%d prev=%d", supply, cost, prev)
		}
		prev = cost
	}
}

func TestRoundTripNeverProfits(t *testing.T) {
	cases := []struct {
		basePrice, slope uint64
		decimals         uint8
		supply, qty      uint64
	}{
		{1, 1, 0, 0, 100},
		{3, 7, 0, 500, 42},
		{1000, 5, 6, 1_000_000, 999},
		{1, 0, 9, 12345678, 10000},
	}
	for _, tc := range cases {
		cost, err := ComputeCost(tc.basePrice, tc.slope, tc.decimals, tc.supply, tc.qty)
		if err != nil {
			t.Fatalf("cost %+v: %v", tc, err)
		}
		payout, err := ComputePayout(tc.basePrice, tc.slope, tc.decimals, tc.supply+tc.qty, tc.qty)
		if err != nil {
			t.Fatalf("payout %+v: %v", tc, err)
		}
		if payout > cost {
			t.Fatalf("round trip profits: %+v cost=%d payout=%d", tc, cost, payout)
		}
	}
}

func TestComputeCostOverflow(t *testing.T) {
	supplyCap, err := SupplyCap(9)
	if err != nil {
		t.Fatalf("supply cap: %v", err)
	}
	if _, err := ComputeCost(1, math.MaxUint64, 9, 0, supplyCap); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
}

func TestComputeCostInvalidDecimals(t *testing.T) {
	if _, err := ComputeCost(1, 1, 19, 0, 1); !errors.Is(err, ErrInvalidDecimals) {
		t.Fatalf("expected ErrInvalidDecimals, got %v", err)
	}
	if _, err := ComputePayout(1, 1, 19, 10, 1); !errors.Is(err, ErrInvalidDecimals) {
		t.Fatalf("expected ErrInvalidDecimals, got %v", err)
	}
}

func TestComputeCostRequiresHeadroom(t *testing.T) {
	total, err := SupplyCap(0)
	if err != nil {
		t.Fatalf("supply cap: %v", err)
	}
	if _, err := ComputeCost(1, 1, 0, total-5, 6); !errors.Is(err, ErrInsufficientSupply) {
		t.Fatalf("expected ErrInsufficientSupply, got %v", err)
	}
	// The last unit below the cap is still purchasable.
	if _, err := ComputeCost(1, 1, 0, total-1, 1); err != nil {
		t.Fatalf("final unit: %v", err)
	}
	if cost, err := ComputeCost(1, 1, 0, total, 0); err != nil || cost != 0 {
		t.Fatalf("zero qty at cap: cost=%d err=%v", cost, err)
	}
}

func TestComputePayoutRequiresSupply(t *testing.T) {
	if _, err := ComputePayout(1, 1, 0, 10, 11); !errors.Is(err, ErrInsufficientSupply) {
		t.Fatalf("expected ErrInsufficientSupply, got %v", err)
	}
}

func TestSupplyCapBounds(t *testing.T) {
	total, err := SupplyCap(0)
	if err != nil {
		t.Fatalf("supply cap: %v", err)
	}
	if total != SupplyWholeUnits {
		t.Fatalf("expected %d, got %d", uint64(SupplyWholeUnits), total)
	}
	total, err = SupplyCap(9)
	if err != nil {
		t.Fatalf("supply cap: %v", err)
	}
	if total != 1_000_000_000_000_000_000 {
		t.Fatalf("expected 1e18, got %d", total)
	}
	// 1e9 * 10^11 no longer fits uint64.
	if _, err := SupplyCap(11); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
	if _, err := SupplyCap(19); !errors.Is(err, ErrInvalidDecimals) {
		t.Fatalf("expected ErrInvalidDecimals, got %v", err)
	}
}
