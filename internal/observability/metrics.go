package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tourism_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Upstream public-data metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={forecast,concentration,visitors}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	CacheLookups     *prometheus.CounterVec   // labels: source, result={hit,miss}

	// Series building metrics.
	SeriesBuilt     *prometheus.CounterVec // labels: kind
	NormalizeIssues *prometheus.CounterVec // labels: kind
	StaleDiscarded  prometheus.Counter

	// Scheduled refresh metrics.
	RefreshRuns        *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration    prometheus.Histogram
	RefreshRunning     prometheus.Gauge
	SnapshotsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.SeriesBuilt,
		m.NormalizeIssues,
		m.StaleDiscarded,
		m.RefreshRuns,
		m.RefreshDuration,
		m.RefreshRunning,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Public-data API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Public-data API request duration in seconds, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by source and result.",
		}, []string{"source", "result"}),
		SeriesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_built_total",
			Help:      "Chart series built by kind.",
		}, []string{"kind"}),
		NormalizeIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_issues_total",
			Help:      "Rows normalized with defaulted or NaN fields, by kind.",
		}, []string{"kind"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Results discarded because a newer request for the same session superseded them.",
		}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Scheduled region refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full refresh across all regions.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_running",
			Help:      "1 when the refresh scheduler is active, 0 when shut down.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Region series snapshots written to the sink.",
		}),
	}
}
