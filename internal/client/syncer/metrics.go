package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK       = "ok"
	resultFallback = "fallback"
)

// Metrics instruments the refresh path.
type Metrics struct {
	refreshes *prometheus.CounterVec
	duration  prometheus.Histogram
	cached    prometheus.Gauge
}

// NewMetrics registers the sync collectors with reg. A nil reg yields
// working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicekeeper_sync_refresh_total",
			Help: "Invoice cache refreshes by outcome",
		}, []string{"result"}), // result: ok, fallback
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoicekeeper_sync_refresh_duration_seconds",
			Help:    "Duration of the invoice list fetch",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms … ~20s
		}),
		cached: f.NewGauge(prometheus.GaugeOpts{
			Name: "invoicekeeper_sync_cached_invoices",
			Help: "Invoices currently held in the local cache",
		}),
	}
}
