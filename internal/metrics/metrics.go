package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of one remote load.
const (
	OutcomeFresh  = "fresh"
	OutcomeCached = "cached"
	OutcomeFailed = "failed"
)

// Metrics holds the Prometheus collectors for the sync layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RemoteLoads       *prometheus.CounterVec
	RemoteLoadSeconds prometheus.Histogram
	PersistFailures   *prometheus.CounterVec
	CatalogRequests   prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RemoteLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skolapp",
				Subsystem: "sync",
				Name:      "remote_loads_total",
				Help:      "Remote quiz list loads by outcome",
			},
			[]string{"outcome"},
		),
		RemoteLoadSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "skolapp",
				Subsystem: "sync",
				Name:      "remote_load_duration_seconds",
				Help:      "Duration of remote quiz list fetches",
				Buckets:   prometheus.DefBuckets,
			},
		),
		PersistFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skolapp",
				Subsystem: "storage",
				Name:      "persist_failures_total",
				Help:      "Document writes that failed, by storage key",
			},
			[]string{"key"},
		),
		CatalogRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "skolapp",
				Subsystem: "catalog",
				Name:      "requests_total",
				Help:      "Requests served for the published quiz list",
			},
		),
	}
}

func (m *Metrics) RemoteLoad(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RemoteLoads.WithLabelValues(outcome).Inc()
	m.RemoteLoadSeconds.Observe(seconds)
}

func (m *Metrics) PersistFailure(key string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(key).Inc()
}

func (m *Metrics) CatalogRequest() {
	if m == nil {
		return
	}
	m.CatalogRequests.Inc()
}
