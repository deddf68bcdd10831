package metrics

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuctionMetricsObserve(t *testing.T) {
	m := Auction()
	if m != Auction() {
		t.Fatalf("expected singleton registry")
	}
	before := testutil.ToFloat64(m.sales.WithLabelValues("dutch"))
	m.ObserveSettlement("dutch", big.NewInt(1_000), big.NewInt(3), big.NewInt(40))
	if got := testutil.ToFloat64(m.sales.WithLabelValues("dutch")); got != before+1 {
		t.Fatalf("expected settlement counter to increase, got %v", got)
	}
	if got := testutil.ToFloat64(m.feeDust); got != 3 {
		t.Fatalf("expected dust gauge 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.accruedFees); got != 40 {
		t.Fatalf("expected accrued gauge 40, got %v", got)
	}

	m.ObserveRejection("place_bid", "")
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("place_bid", "unknown")); got < 1 {
		t.Fatalf("expected rejection recorded, got %v", got)
	}
}

func TestAuctionMetricsNilSafe(t *testing.T) {
	var m *AuctionMetrics
	m.ObserveBid(true)
	m.ObserveSettlement("english", big.NewInt(1), nil, nil)
	m.ObserveRejection("claim", "state")
	m.ObserveDiscountConsumed()
	m.SetAccruedFees(big.NewInt(1))
}
