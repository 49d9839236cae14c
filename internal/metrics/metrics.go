// Package metrics exposes pipeline counters and latency histograms over
// a shared Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline instruments on a private registry so tests
// can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested *prometheus.CounterVec
	EventsSkipped  *prometheus.CounterVec
	EnrichSuccess  prometheus.Counter
	EnrichFailure  prometheus.Counter
	InsightsTotal  *prometheus.CounterVec
	ExtractLatency prometheus.Histogram
}

// New builds and registers all pipeline metrics.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.EventsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promo_radar",
		Name:      "events_ingested_total",
		Help:      "New events stored per company",
	}, []string{"company"})
	m.EventsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promo_radar",
		Name:      "events_skipped_total",
		Help:      "Events not stored, by reason (duplicate, invalid, locked)",
	}, []string{"reason"})
	m.EnrichSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_radar",
		Name:      "enrich_success_total",
		Help:      "Events successfully extracted and enriched",
	})
	m.EnrichFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_radar",
		Name:      "enrich_failure_total",
		Help:      "Events whose extract-enrich pass failed",
	})
	m.InsightsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promo_radar",
		Name:      "ai_insights_total",
		Help:      "Insights generated, by source (ai, rule)",
	}, []string{"source"})
	m.ExtractLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "promo_radar",
		Name:      "extraction_latency_seconds",
		Help:      "Wall time per detail-page extraction",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	m.registry.MustRegister(
		m.EventsIngested, m.EventsSkipped,
		m.EnrichSuccess, m.EnrichFailure,
		m.InsightsTotal, m.ExtractLatency,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
