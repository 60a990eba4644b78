// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters. One instance is shared by the image
// and CSV ingestion paths.
type Metrics struct {
	registry *prometheus.Registry

	UploadsTotal    *prometheus.CounterVec
	DuplicatesTotal *prometheus.CounterVec
	FallbacksTotal  prometheus.Counter
	ParseDuration   prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billtracker",
			Name:      "uploads_total",
			Help:      "Processed uploads by source and outcome.",
		}, []string{"source", "status"}),
		DuplicatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billtracker",
			Name:      "duplicates_total",
			Help:      "Uploads rejected as duplicates by source.",
		}, []string{"source"}),
		FallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "billtracker",
			Name:      "fallback_bills_total",
			Help:      "Image uploads that produced the fallback bill.",
		}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billtracker",
			Name:      "parse_duration_seconds",
			Help:      "OCR plus extraction latency per image upload.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
