package metrics

import "github.com/prometheus/client_golang/prometheus"

// Marketplace Prometheus metrics.
var (
	VectorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swapmeet",
			Name:      "vector_requests_total",
			Help:      "Total number of token vector requests to external providers",
		},
		[]string{"provider", "model", "status"},
	)

	VectorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swapmeet",
			Name:      "vector_request_duration_seconds",
			Help:      "Token vector request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	VectorCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swapmeet",
			Name:      "vector_cache_total",
			Help:      "Token vector cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "swapmeet",
			Name:      "rank_duration_seconds",
			Help:      "Full ranking pass duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RankCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "swapmeet",
			Name:      "rank_candidates",
			Help:      "Number of live offers scored per ranking pass",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	TradesSettledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "swapmeet",
			Name:      "trades_settled_total",
			Help:      "Total number of completed trades",
		},
	)

	SettlementFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swapmeet",
			Name:      "settlement_failures_total",
			Help:      "Settlement attempts that did not produce a trade",
		},
		[]string{"reason"},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers marketplace metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(VectorRequestsTotal)
	prometheus.MustRegister(VectorRequestDuration)
	prometheus.MustRegister(VectorCacheTotal)
	prometheus.MustRegister(RankDuration)
	prometheus.MustRegister(RankCandidates)
	prometheus.MustRegister(TradesSettledTotal)
	prometheus.MustRegister(SettlementFailuresTotal)
	domainMetricsRegistered = true
}
