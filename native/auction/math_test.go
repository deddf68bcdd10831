package auction

import (
	"math/big"
	"testing"
)

func eth(num, den int64) *big.Int {
	v := new(big.Int).Mul(big.NewInt(num), big.NewInt(1_000_000_000_000_000_000))
	return v.Div(v, big.NewInt(den))
}

func TestMinimumBid(t *testing.T) {
	start := eth(1, 1)
	if got := minimumBid(start, nil, 500); got.Cmp(start) != 0 {
		t.Fatalf("expected start price for first bid, got %s", got)
	}
	highest := &Bid{Bidder: [20]byte{1}, Amount: eth(1, 1)}
	if got := minimumBid(start, highest, 500); got.Cmp(eth(105, 100)) != 0 {
		t.Fatalf("expected 1.05 ETH, got %s", got)
	}
	// 999 * 10001 / 10000 rounds down to 999.
	small := &Bid{Bidder: [20]byte{1}, Amount: big.NewInt(999)}
	if got := minimumBid(big.NewInt(1), small, 1); got.Cmp(big.NewInt(999)) != 0 {
		t.Fatalf("expected rounded down 999, got %s", got)
	}
}

func TestDecayedPriceScenario(t *testing.T) {
	d := &DutchAuction{
		StartTime:        1_000,
		StartPrice:       eth(1, 1),
		FloorPrice:       eth(1, 2),
		DiscountRateBps:  1_000,
		DiscountInterval: 3_600,
	}
	cases := []struct {
		name string
		now  int64
		want *big.Int
	}{
		{"before start", 0, eth(1, 1)},
		{"at start", 1_000, eth(1, 1)},
		{"within first interval", 1_000 + 3_599, eth(1, 1)},
		{"one interval", 1_000 + 3_600, eth(9, 10)},
		{"ten intervals floored", 1_000 + 36_000, eth(1, 2)},
	}
	for _, tc := range cases {
		got, err := decayedPrice(d, tc.now)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got.Cmp(tc.want) != 0 {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestDecayedPriceMonotonic(t *testing.T) {
	d := &DutchAuction{
		StartTime:        0,
		StartPrice:       big.NewInt(1_000_003),
		FloorPrice:       big.NewInt(17),
		DiscountRateBps:  777,
		DiscountInterval: 60,
	}
	previous, err := decayedPrice(d, 0)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	for now := int64(30); now <= 60*400; now += 30 {
		price, err := decayedPrice(d, now)
		if err != nil {
			t.Fatalf("price at %d: %v", now, err)
		}
		if price.Cmp(previous) > 0 {
			t.Fatalf("price increased at %d: %s > %s", now, price, previous)
		}
		if price.Cmp(d.FloorPrice) < 0 {
			t.Fatalf("price below floor at %d: %s", now, price)
		}
		previous = price
	}
	if previous.Cmp(d.FloorPrice) != 0 {
		t.Fatalf("expected price to settle at floor, got %s", previous)
	}
}

func TestDecayedPriceRejectsMissingAuction(t *testing.T) {
	if _, err := decayedPrice(nil, 10); err != ErrDutchNotCreated {
		t.Fatalf("expected ErrDutchNotCreated, got %v", err)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	d := &DutchAuction{StartPrice: huge, FloorPrice: big.NewInt(1), DiscountRateBps: 1, DiscountInterval: 1}
	if _, err := decayedPrice(d, 5); err == nil {
		t.Fatalf("expected overflow rejection")
	}
}
