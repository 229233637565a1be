package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// lookup service.
type Metrics struct {
	Lookups         *prometheus.CounterVec // labels: endpoint={coord,zip}, outcome={ok,not_found,invalid,unknown_zip,error}
	ZIPCache        *prometheus.CounterVec // labels: result={hit,miss}
	FarMatches      prometheus.Counter
	NearestDuration prometheus.Histogram

	// Index build metrics, set once at startup.
	IndexStations prometheus.Gauge
	RowsSkipped   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_normals",
			Name:      "lookups_total",
			Help:      "Degree-day lookups by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ZIPCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_normals",
			Name:      "zip_cache_total",
			Help:      "ZIP cache lookups by result.",
		}, []string{"result"}),
		FarMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_normals",
			Name:      "far_matches_total",
			Help:      "Lookups whose nearest station exceeded the plausibility radius.",
		}),
		NearestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_normals",
			Name:      "nearest_duration_seconds",
			Help:      "Duration of a single nearest-station query.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
		IndexStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_normals",
			Name:      "index_stations",
			Help:      "Number of station records in the built index.",
		}),
		RowsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_normals",
			Name:      "build_rows_skipped",
			Help:      "Raw rows rejected by validation during the index build.",
		}),
	}

	prometheus.MustRegister(
		m.Lookups,
		m.ZIPCache,
		m.FarMatches,
		m.NearestDuration,
		m.IndexStations,
		m.RowsSkipped,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Lookups:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_normals", Name: "lookups_total"}, []string{"endpoint", "outcome"}),
		ZIPCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_normals", Name: "zip_cache_total"}, []string{"result"}),
		FarMatches:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_normals", Name: "far_matches_total"}),
		NearestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_normals", Name: "nearest_duration_seconds"}),
		IndexStations:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_normals", Name: "index_stations"}),
		RowsSkipped:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_normals", Name: "build_rows_skipped"}),
	}
}
