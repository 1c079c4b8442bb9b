// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Settlement metrics
	TradesSettled    *prometheus.CounterVec
	SettlementErrors *prometheus.CounterVec
	TokenVolume      *prometheus.CounterVec
	ReserveVolume    *prometheus.CounterVec
	FeesCollected    prometheus.Counter
	PoolsCreated     prometheus.Counter
	PoolsCompleted   prometheus.Counter
	PoolsWithdrawn   prometheus.Counter

	// Quote metrics
	QuoteLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulTrade prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "curve_engine"
	}

	return &Metrics{
		TradesSettled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "trades_settled_total",
			Help:      "Total number of settled trades by side",
		}, []string{"side"}),
		SettlementErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "errors_total",
			Help:      "Total number of rejected operations by operation and reason",
		}, []string{"operation", "reason"}),
		TokenVolume: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "token_volume_total",
			Help:      "Total token units traded by side",
		}, []string{"side"}),
		ReserveVolume: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "reserve_volume_total",
			Help:      "Total reserve units moved by side",
		}, []string{"side"}),
		FeesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "fees_collected_total",
			Help:      "Total reserve units collected as fees",
		}),
		PoolsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "pools_created_total",
			Help:      "Total number of bonding curve pools created",
		}),
		PoolsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "pools_completed_total",
			Help:      "Total number of pools that reached their market-cap limit",
		}),
		PoolsWithdrawn: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "pools_withdrawn_total",
			Help:      "Total number of pools swept by the owner",
		}),

		QuoteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "quote_latency_seconds",
			Help:      "Quote computation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulTrade: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_trade_timestamp",
			Help:      "Unix timestamp of the last settled trade",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrade records a settled trade.
func (m *Metrics) RecordTrade(side string, tokenAmount, reserveAmount, feeAmount uint64, unixMs int64) {
	m.TradesSettled.WithLabelValues(side).Inc()
	m.TokenVolume.WithLabelValues(side).Add(float64(tokenAmount))
	m.ReserveVolume.WithLabelValues(side).Add(float64(reserveAmount))
	m.FeesCollected.Add(float64(feeAmount))
	m.LastSuccessfulTrade.Set(float64(unixMs) / 1000)
}

// RecordError records a rejected operation.
func (m *Metrics) RecordError(operation, reason string) {
	m.SettlementErrors.WithLabelValues(operation, reason).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
