// Package metrics provides Prometheus instrumentation for the POS terminal.
//
// It pre-defines the counters the terminal cares about (outbound gateway
// calls, scans, checkouts) and exposes them on the diagnostics listener:
//
//	r.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GatewayRequests counts outbound backend calls by method, path, and
	// status ("error" when no HTTP response came back).
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total outbound API requests.",
		},
		[]string{"method", "path", "status"},
	)

	// GatewayDuration tracks outbound call latency.
	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dukaan",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ScansTotal counts scan attempts by outcome.
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "scanner",
			Name:      "scans_total",
			Help:      "Total barcode scan attempts.",
		},
		[]string{"outcome"}, // "decoded" | "rejected" | "no_device" | "failed"
	)

	// ScannerActive is 1 while a scan engine holds a capture device.
	ScannerActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dukaan",
		Subsystem: "scanner",
		Name:      "active",
		Help:      "Whether a capture device is currently held.",
	})

	// BillMutations counts cart changes by operation and result.
	BillMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "billing",
			Name:      "mutations_total",
			Help:      "Total bill mutations.",
		},
		[]string{"op", "result"}, // op: "add" | "quantity" | "remove" | "clear"
	)

	// CheckoutsTotal counts completed and failed checkouts.
	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "billing",
			Name:      "checkouts_total",
			Help:      "Total checkout attempts.",
		},
		[]string{"result"}, // "completed" | "failed"
	)

	// CacheHits / CacheMisses track identity cache effectiveness.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits.",
		},
		[]string{"driver"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dukaan",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses.",
		},
		[]string{"driver"},
	)
)

// DefaultRegistry is the Prometheus registry the diagnostics listener serves.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		GatewayRequests,
		GatewayDuration,
		ScansTotal,
		ScannerActive,
		BillMutations,
		CheckoutsTotal,
		CacheHits,
		CacheMisses,
	)
}

// Register adds a custom prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// Handler exposes the Prometheus metrics page.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveGateway records one outbound call with a simple timer:
//
//	defer metrics.ObserveGateway("GET", "/products", time.Now())
func ObserveGateway(method, path string, start time.Time) {
	GatewayDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}
