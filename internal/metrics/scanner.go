package metrics

import "github.com/prometheus/client_golang/prometheus"

// Scanner and screening Prometheus metrics.
var (
	ScannerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "scanner_requests_total",
			Help:      "Total number of upstream scanner requests",
		},
		[]string{"endpoint", "status"},
	)

	ScannerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "scanner_request_duration_seconds",
			Help:      "Upstream scanner request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	ScreenCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "screen_cache_total",
			Help:      "Screen result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RateLimitWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time callers spend waiting for rate-limit admission",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

var scannerMetricsRegistered bool

// RegisterScannerMetrics registers scanner and screening Prometheus metrics.
// Must be called once from main.
func RegisterScannerMetrics() {
	if scannerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ScannerRequestsTotal)
	prometheus.MustRegister(ScannerRequestDuration)
	prometheus.MustRegister(ScreenCacheTotal)
	prometheus.MustRegister(RateLimitWaitSeconds)
	scannerMetricsRegistered = true
}
