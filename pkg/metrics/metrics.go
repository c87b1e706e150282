package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TraversalsTotal     *prometheus.CounterVec
	TraversalHops       prometheus.Histogram
	PageFetchesTotal    *prometheus.CounterVec
	PageFetchDuration   *prometheus.HistogramVec
	PageCacheLookups    *prometheus.CounterVec
	QueueLength         prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		TraversalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "traversals_total",
				Help: "Total number of finished traversals.",
			},
			[]string{"outcome", "error_type"},
		),
		TraversalHops: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "traversal_hops",
				Help:    "Number of links followed per traversal.",
				Buckets: []float64{1, 5, 10, 15, 20, 30, 50},
			},
		),
		PageFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_fetches_total",
				Help: "Total number of page fetch attempts.",
			},
			[]string{"source", "status"}, // status: success, failure
		),
		PageFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "page_fetch_duration_seconds",
				Help:    "Duration of page fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		PageCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_lookups_total",
				Help: "Page cache lookups by result.",
			},
			[]string{"result"}, // hit, miss, error
		),
		QueueLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "traversal_queue_length",
				Help: "Current number of queued traversal jobs.",
			},
		),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) ObserveTraversal(outcome, errorType string, hops int) {
	if m == nil {
		return
	}
	m.TraversalsTotal.WithLabelValues(outcome, errorType).Inc()
	m.TraversalHops.Observe(float64(hops))
}

func (m *Metrics) ObservePageFetch(source string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.PageFetchesTotal.WithLabelValues(source, status).Inc()
	m.PageFetchDuration.WithLabelValues(source).Observe(seconds)
}

func (m *Metrics) IncPageCache(result string) {
	if m == nil {
		return
	}
	m.PageCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetQueueLength(n int64) {
	if m == nil {
		return
	}
	m.QueueLength.Set(float64(n))
}
