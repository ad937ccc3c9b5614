package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the customer module.
type Metrics struct {
	ListRequests         prometheus.Counter
	ListLatency          prometheus.Histogram
	PersonaSaves         prometheus.Counter
	PersonaSaveFailures  prometheus.Counter
	IdentityDegradations prometheus.Counter
}

// New creates a Metrics instance with all customer module metrics registered.
func New() *Metrics {
	return &Metrics{
		ListRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "personadesk_customer_list_requests_total",
			Help: "Total customer listing requests served",
		}),
		ListLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "personadesk_customer_list_duration_seconds",
			Help:    "Duration of customer listing including upstream fetch and merge",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		PersonaSaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "personadesk_persona_saves_total",
			Help: "Total persona records saved",
		}),
		PersonaSaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "personadesk_persona_save_failures_total",
			Help: "Total persona save attempts rejected by the store",
		}),
		IdentityDegradations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "personadesk_identity_degraded_pages_total",
			Help: "Total listing pages served degraded because the identity source failed",
		}),
	}
}

// IncrementListRequests records one listing request.
func (m *Metrics) IncrementListRequests() {
	if m != nil {
		m.ListRequests.Inc()
	}
}

// ObserveListLatency records the duration of one listing request.
func (m *Metrics) ObserveListLatency(d time.Duration) {
	if m != nil {
		m.ListLatency.Observe(d.Seconds())
	}
}

// IncrementPersonaSaves records one successful persona save.
func (m *Metrics) IncrementPersonaSaves() {
	if m != nil {
		m.PersonaSaves.Inc()
	}
}

// IncrementPersonaSaveFailures records one rejected persona save.
func (m *Metrics) IncrementPersonaSaveFailures() {
	if m != nil {
		m.PersonaSaveFailures.Inc()
	}
}

// IncrementIdentityDegradations records one degraded listing page.
func (m *Metrics) IncrementIdentityDegradations() {
	if m != nil {
		m.IdentityDegradations.Inc()
	}
}
