package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for a batch run. The tool has no
// long-running HTTP surface, so the collectors live on a private registry
// and are reported as a summary log line when the run completes.
type Metrics struct {
	registry *prometheus.Registry

	VisitsProcessed       prometheus.Counter
	ObservationsProcessed prometheus.Counter
	TimesCorrected        prometheus.Counter
	ReviewFlagged         prometheus.Counter
	RemovalMarked         prometheus.Counter
	SolarMissing          prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates all run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		VisitsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "visits_processed_total",
			Help:      "Total field-visit rows processed.",
		}),
		ObservationsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "observations_processed_total",
			Help:      "Total observation rows processed.",
		}),
		TimesCorrected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "times_corrected_total",
			Help:      "Visits whose suggested start or end differs from the reported one.",
		}),
		ReviewFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "review_flagged_total",
			Help:      "Visits flagged for manual data checking.",
		}),
		RemovalMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "removal_marked_total",
			Help:      "Visits marked for removal by name pattern.",
		}),
		SolarMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "solar_missing_total",
			Help:      "Visits with no computable sunrise or sunset.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldwork_etl",
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.VisitsProcessed,
		m.ObservationsProcessed,
		m.TimesCorrected,
		m.ReviewFlagged,
		m.RemovalMarked,
		m.SolarMissing,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// LogSummary emits one line per non-zero collector at the end of a run.
func (m *Metrics) LogSummary(logger *slog.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		logger.Warn("gather metrics", "error", err)
		return
	}

	attrs := make([]any, 0, len(families)*2)
	for _, fam := range families {
		total := 0.0
		for _, metric := range fam.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
		if total > 0 {
			attrs = append(attrs, fam.GetName(), total)
		}
	}
	logger.Info("run summary", attrs...)
}
