// Package metrics holds the Prometheus instrumentation for the flood-fill
// service: a Registry wrapping a private *prometheus.Registry, with
// every metric constructed through promauto.With(reg) at startup.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric the service exports.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	FloodfillRequestsTotal    *prometheus.CounterVec
	FloodfillRequestDuration  prometheus.Histogram
	FloodfillIterations       prometheus.Histogram
	FloodfillOriginsPerBatch  prometheus.Histogram

	GraphNodesTotal  *prometheus.GaugeVec
	GraphWalkEdges   *prometheus.GaugeVec
	GraphPTEdges     *prometheus.GaugeVec
	GraphYearsLoaded prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.HTTPRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floodfill_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "floodfill_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "status"},
	)

	r.FloodfillRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floodfill_requests_total",
			Help: "Total number of floodfill_pt batch requests, by outcome",
		},
		[]string{"status"},
	)

	r.FloodfillRequestDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floodfill_request_duration_seconds",
			Help:    "Wall-clock duration of a full floodfill_pt batch request",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
	)

	r.FloodfillIterations = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floodfill_iterations",
			Help:    "Number of nodes expanded by a single origin's flood-fill",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	r.FloodfillOriginsPerBatch = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floodfill_origins_per_batch",
			Help:    "Number of origins dispatched per request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	r.GraphNodesTotal = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "floodfill_graph_nodes_total",
			Help: "Number of nodes in the loaded graph artifact, by year",
		},
		[]string{"year"},
	)

	r.GraphWalkEdges = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "floodfill_graph_walk_edges_total",
			Help: "Number of walk edges in the loaded graph artifact, by year",
		},
		[]string{"year"},
	)

	r.GraphPTEdges = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "floodfill_graph_pt_edges_total",
			Help: "Number of public-transport edges in the loaded graph artifact, by year",
		},
		[]string{"year"},
	)

	r.GraphYearsLoaded = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "floodfill_graph_years_loaded",
			Help: "Number of distinct graph years currently cached in memory",
		},
	)

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into promhttp.HandlerFor.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordHTTPRequest records one HTTP request's outcome and latency.
func (r *Registry) RecordHTTPRequest(path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(path, status).Observe(duration.Seconds())
}

// RecordFloodfillBatch records one floodfill_pt request: its outcome,
// wall-clock duration, origin count, and per-origin iteration counts.
func (r *Registry) RecordFloodfillBatch(status string, duration time.Duration, originCount int, iterationsPerOrigin []int32) {
	r.FloodfillRequestsTotal.WithLabelValues(status).Inc()
	r.FloodfillRequestDuration.Observe(duration.Seconds())
	r.FloodfillOriginsPerBatch.Observe(float64(originCount))
	for _, iters := range iterationsPerOrigin {
		r.FloodfillIterations.Observe(float64(iters))
	}
}

// SetGraphSize records the size of the graph artifact loaded for year.
func (r *Registry) SetGraphSize(year string, nodes, walkEdges, ptEdges int) {
	r.GraphNodesTotal.WithLabelValues(year).Set(float64(nodes))
	r.GraphWalkEdges.WithLabelValues(year).Set(float64(walkEdges))
	r.GraphPTEdges.WithLabelValues(year).Set(float64(ptEdges))
}

// SetYearsLoaded records how many distinct graph years are cached.
func (r *Registry) SetYearsLoaded(n int) {
	r.GraphYearsLoaded.Set(float64(n))
}
