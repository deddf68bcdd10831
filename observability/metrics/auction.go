package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// AuctionMetrics exposes counters for the auction settlement engine.
type AuctionMetrics struct {
	bids         *prometheus.CounterVec
	sales        *prometheus.CounterVec
	settledWei   *prometheus.CounterVec
	feeDust      prometheus.Gauge
	accruedFees  prometheus.Gauge
	rejections   *prometheus.CounterVec
	discountUses prometheus.Counter
}

var (
	auctionOnce     sync.Once
	auctionRegistry *AuctionMetrics
)

// Auction returns the lazily registered auction metrics.
func Auction() *AuctionMetrics {
	auctionOnce.Do(func() {
		auctionRegistry = &AuctionMetrics{
			bids: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "bids_total",
				Help:      "Accepted English auction bids segmented by whether a previous bidder was refunded.",
			}, []string{"refund"}),
			sales: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "settlements_total",
				Help:      "Settled sales segmented by auction kind.",
			}, []string{"kind"}),
			settledWei: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "settled_wei_total",
				Help:      "Gross wei settled segmented by auction kind. Precision is limited to float64.",
			}, []string{"kind"}),
			feeDust: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "fee_rounding_dust_wei",
				Help:      "Service fee left undistributed by the most recent settlement.",
			}),
			accruedFees: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "accrued_service_fees_wei",
				Help:      "Service fees held for operator withdrawal.",
			}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "rejections_total",
				Help:      "Rejected engine operations segmented by operation and error kind.",
			}, []string{"operation", "kind"}),
			discountUses: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "editionhouse",
				Subsystem: "auction",
				Name:      "discounts_consumed_total",
				Help:      "Dutch purchases that consumed a discount.",
			}),
		}
		prometheus.MustRegister(
			auctionRegistry.bids,
			auctionRegistry.sales,
			auctionRegistry.settledWei,
			auctionRegistry.feeDust,
			auctionRegistry.accruedFees,
			auctionRegistry.rejections,
			auctionRegistry.discountUses,
		)
	})
	return auctionRegistry
}

func weiFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

func (m *AuctionMetrics) ObserveBid(refunded bool) {
	if m == nil {
		return
	}
	label := "false"
	if refunded {
		label = "true"
	}
	m.bids.WithLabelValues(label).Inc()
}

func (m *AuctionMetrics) ObserveSettlement(kind string, gross, dust, accrued *big.Int) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.sales.WithLabelValues(kind).Inc()
	m.settledWei.WithLabelValues(kind).Add(weiFloat(gross))
	m.feeDust.Set(weiFloat(dust))
	m.accruedFees.Set(weiFloat(accrued))
}

func (m *AuctionMetrics) SetAccruedFees(accrued *big.Int) {
	if m == nil {
		return
	}
	m.accruedFees.Set(weiFloat(accrued))
}

func (m *AuctionMetrics) ObserveRejection(operation, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.rejections.WithLabelValues(operation, kind).Inc()
}

func (m *AuctionMetrics) ObserveDiscountConsumed() {
	if m == nil {
		return
	}
	m.discountUses.Inc()
}
