// Package observability holds the Prometheus metrics and slog setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "plat_quake"

// Metrics holds the Prometheus collectors for feed loading and view composition.
type Metrics struct {
	FeedFetches       *prometheus.CounterVec   // labels: feed={quakes,plates}, outcome={success,error}
	FeedFetchDuration *prometheus.HistogramVec // labels: feed
	FeedFeatures      *prometheus.GaugeVec     // labels: feed

	ViewLoads        *prometheus.CounterVec // labels: outcome={success,error}
	ViewLoadDuration prometheus.Histogram
	MarkersByBucket  *prometheus.GaugeVec // labels: bucket
	ViewSubscribers  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "Remote GeoJSON fetches by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Remote GeoJSON fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		FeedFeatures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_features",
			Help:      "Number of features in the last successful fetch of each feed.",
		}, []string{"feed"}),
		ViewLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_loads_total",
			Help:      "Map view loads by outcome.",
		}, []string{"outcome"}),
		ViewLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_load_duration_seconds",
			Help:      "Duration of a complete fetch-and-compose cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MarkersByBucket: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "markers",
			Help:      "Markers in the last composed view by legend bucket.",
		}, []string{"bucket"}),
		ViewSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_subscribers",
			Help:      "Open viewer event streams.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.FeedFeatures,
		m.ViewLoads,
		m.ViewLoadDuration,
		m.MarkersByBucket,
		m.ViewSubscribers,
	)
	return m
}

// NewUnregisteredMetrics creates metrics outside the default registry, for
// tests and one-shot commands that may build several sets.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}
