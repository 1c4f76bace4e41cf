package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Phase labels for outbound calls.
const (
	PhaseStoreDirectory = "store_directory"
	PhaseStock          = "stock"
	PhaseRender         = "render"
)

// Metrics bundles Prometheus collectors for the stock locator.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	ObservationsTotal *prometheus.CounterVec
	DroppedTotal      prometheus.Counter
	CachedStores      prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcheck_requests_total",
			Help: "Total outbound requests by phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcheck_request_duration_seconds",
			Help:    "Outbound request latency by phase.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcheck_errors_total",
			Help: "Total outbound errors by phase and type.",
		},
		[]string{"phase", "error_type"},
	)
	observations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcheck_stock_observations_total",
			Help: "Stock observations reported, by classified status.",
		},
		[]string{"status"},
	)
	dropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockcheck_stock_observations_dropped_total",
			Help: "Stock observations for stores outside the active store set.",
		},
	)
	cached := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockcheck_cached_stores",
			Help: "Number of stores in the last loaded or refreshed directory.",
		},
	)

	registry.MustRegister(requests, requestDuration, errorsTotal, observations, dropped, cached)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		RequestDuration:   requestDuration,
		ErrorsTotal:       errorsTotal,
		ObservationsTotal: observations,
		DroppedTotal:      dropped,
		CachedStores:      cached,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records a request duration.
func (m *Metrics) ObserveDuration(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(phase, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(phase, errorType).Inc()
}

// IncObservation counts one reported stock observation.
func (m *Metrics) IncObservation(status string) {
	if m == nil {
		return
	}
	m.ObservationsTotal.WithLabelValues(status).Inc()
}

// AddDropped counts observations discarded for unknown stores.
func (m *Metrics) AddDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DroppedTotal.Add(float64(n))
}

// SetCachedStores records the size of the active directory.
func (m *Metrics) SetCachedStores(n int) {
	if m == nil {
		return
	}
	m.CachedStores.Set(float64(n))
}
