package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the peak catalog.
type Metrics struct {
	// Backend REST API metrics.
	BackendRequests *prometheus.CounterVec   // labels: operation, outcome={success,error}
	BackendDuration *prometheus.HistogramVec // labels: operation

	// Session state metrics.
	ActiveSessions   prometheus.Gauge
	StateRefreshes   *prometheus.CounterVec // labels: outcome={success,error}
	SessionEvictions prometheus.Counter

	// Image upload metrics.
	ImageUploads        *prometheus.CounterVec // labels: outcome={success,error}
	ImageUploadDuration prometheus.Histogram

	// Peak change event metrics.
	PeakEventsPublished *prometheus.CounterVec // labels: action={created,updated,deleted}
	PeakEventErrors     prometheus.Counter
}

// NewMetrics creates and registers all catalog metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.ActiveSessions,
		m.StateRefreshes,
		m.SessionEvictions,
		m.ImageUploads,
		m.ImageUploadDuration,
		m.PeakEventsPublished,
		m.PeakEventErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "backend_requests_total",
			Help:      "Backend API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "peak_catalog",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "peak_catalog",
			Name:      "active_sessions",
			Help:      "Sessions currently holding display state.",
		}),
		StateRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "state_refreshes_total",
			Help:      "Wholesale refreshes of session peaks and categories by outcome.",
		}, []string{"outcome"}),
		SessionEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "session_evictions_total",
			Help:      "Sessions evicted because the store reached capacity.",
		}),
		ImageUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "image_uploads_total",
			Help:      "Single-image uploads to the image host by outcome.",
		}, []string{"outcome"}),
		ImageUploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "peak_catalog",
			Name:      "image_upload_duration_seconds",
			Help:      "Duration of a single image upload.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PeakEventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "peak_events_published_total",
			Help:      "Peak change events written to Kafka by action.",
		}, []string{"action"}),
		PeakEventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peak_catalog",
			Name:      "peak_event_errors_total",
			Help:      "Peak change events that could not be published.",
		}),
	}
}
