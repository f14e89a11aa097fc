// Package metrics exposes prometheus collectors for the extraction
// pipeline and its HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Pipeline struct {
	registry *prometheus.Registry

	uploadsTotal     *prometheus.CounterVec
	tierAttempts     *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	productsPerDoc   prometheus.Histogram
	sentinelVerdicts prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewPipeline() *Pipeline {
	registry := prometheus.NewRegistry()

	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "uploads_total",
			Help:      "Uploads processed, by detected format and outcome.",
		},
		[]string{"format", "outcome"},
	)
	tierAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "tier_attempts_total",
			Help:      "Extraction tier attempts, by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"stage"},
	)
	productsPerDoc := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "products_per_document",
			Help:      "Product blocks discovered per upload.",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		},
	)
	sentinelVerdicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "classify",
			Name:      "sentinel_verdicts_total",
			Help:      "Verdict entries synthesized because the classifier under-returned.",
		},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(uploadsTotal, tierAttempts, stageDuration, productsPerDoc, sentinelVerdicts, httpRequests, httpDuration)

	return &Pipeline{
		registry:         registry,
		uploadsTotal:     uploadsTotal,
		tierAttempts:     tierAttempts,
		stageDuration:    stageDuration,
		productsPerDoc:   productsPerDoc,
		sentinelVerdicts: sentinelVerdicts,
		httpRequests:     httpRequests,
		httpDuration:     httpDuration,
	}
}

func (m *Pipeline) Upload(format, outcome string) {
	m.uploadsTotal.WithLabelValues(format, outcome).Inc()
}

func (m *Pipeline) TierAttempt(method, outcome string) {
	m.tierAttempts.WithLabelValues(method, outcome).Inc()
}

func (m *Pipeline) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Pipeline) ObserveProducts(n int) {
	m.productsPerDoc.Observe(float64(n))
}

func (m *Pipeline) SentinelVerdicts(n int) {
	if n > 0 {
		m.sentinelVerdicts.Add(float64(n))
	}
}

func (m *Pipeline) HTTPRequest(method, path, status string) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
}

func (m *Pipeline) ObserveHTTP(method, path string, seconds float64) {
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the registry on /metrics.
func (m *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
